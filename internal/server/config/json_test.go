package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	path := writeTempJSON(t, "", "", map[string]any{
		"endpoint_addr_http":             "127.0.0.1:3000",
		"endpoint_addr_grpc":             "",
		"storage":                        "s3",
		"s3_access_key":                  "user",
		"s3_secret_key":                  "password",
		"s3_bucket":                      "bucket",
		"s3_prefix":                      "accounts",
		"redis_addr":                     "redis:6379",
		"redis_db":                       2,
		"rate_limit_starts":              5,
		"rate_limit_window":              "30s",
		"suite":                          "rfc",
		"server_key":                     "k",
		"session_ttl":                    "45s",
		"sweep_interval":                 1000000000,
		"max_sessions":                   50,
		"secret_key":                     "jwt",
		"access_token_validity_duration": "5m",
	})

	t.Run("loads from json", func(t *testing.T) {
		cfg := defaults()
		parseJson(cfg, []string{"-config", path})

		assert.Equal(t, "127.0.0.1:3000", cfg.EndpointAddrHTTP)
		assert.Equal(t, "", cfg.EndpointAddrGRPC, "explicit empty value disables grpc")
		assert.Equal(t, StorageS3, cfg.Storage)
		assert.Equal(t, "user", cfg.S3AccessKey)
		assert.Equal(t, "password", cfg.S3SecretKey)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "accounts", cfg.S3Prefix)
		assert.Equal(t, "redis:6379", cfg.RedisAddr)
		assert.Equal(t, 2, cfg.RedisDB)
		assert.Equal(t, 5, cfg.RateLimitStarts)
		assert.Equal(t, 30*time.Second, cfg.RateLimitWindow)
		assert.Equal(t, "rfc", cfg.Suite)
		assert.Equal(t, "k", cfg.ServerKey)
		assert.Equal(t, 45*time.Second, cfg.SessionTTL)
		assert.Equal(t, time.Second, cfg.SweepInterval)
		assert.Equal(t, 50, cfg.MaxSessions)
		assert.Equal(t, "jwt", cfg.SecretKey)
		assert.Equal(t, 5*time.Minute, cfg.AccessTokenValidityDuration)
	})

	t.Run("unmentioned fields keep defaults", func(t *testing.T) {
		cfg := defaults()
		parseJson(cfg, []string{"-c", writeTempJSON(t, "", "", map[string]any{"log_level": "debug"})})

		want := defaults()
		want.LogLevel = "debug"
		assert.Equal(t, want, cfg)
	})

	t.Run("no flag means no file", func(t *testing.T) {
		cfg := defaults()
		parseJson(cfg, []string{"-a", ":1"})
		assert.Equal(t, defaults(), cfg)
	})

	t.Run("missing file panics", func(t *testing.T) {
		assert.Panics(t, func() { parseJson(defaults(), []string{"-c", filepath.Join(t.TempDir(), "nope.json")}) })
	})

	t.Run("invalid json panics", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(p, []byte("{"), 0o600))
		assert.Panics(t, func() { parseJson(defaults(), []string{"-c", p}) })
	})

	t.Run("bad duration panics", func(t *testing.T) {
		p := writeTempJSON(t, "", "", map[string]any{"session_ttl": "soon"})
		assert.Panics(t, func() { parseJson(defaults(), []string{"-c", p}) })
	})
}
