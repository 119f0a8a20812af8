package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	t.Setenv("PAKEGATE_HTTP_ADDR", ":9999")
	t.Setenv("PAKEGATE_STORAGE", "s3")
	t.Setenv("PAKEGATE_S3_BUCKET", "accounts")
	t.Setenv("PAKEGATE_REDIS_ADDR", "redis:6379")
	t.Setenv("PAKEGATE_REDIS_DB", "3")
	t.Setenv("PAKEGATE_MAX_SESSIONS", "12")
	t.Setenv("PAKEGATE_SESSION_TTL", "10s")
	t.Setenv("PAKEGATE_ACCESS_TOKEN_VALIDITY", "1h")

	c := defaults()
	require.NoError(t, parseEnv(c))

	assert.Equal(t, ":9999", c.EndpointAddrHTTP)
	assert.Equal(t, StorageS3, c.Storage)
	assert.Equal(t, "accounts", c.S3Bucket)
	assert.Equal(t, "redis:6379", c.RedisAddr)
	assert.Equal(t, 3, c.RedisDB)
	assert.Equal(t, 12, c.MaxSessions)
	assert.Equal(t, 10*time.Second, c.SessionTTL)
	assert.Equal(t, time.Hour, c.AccessTokenValidityDuration)
}

func TestParseEnv_ReportsAllMalformedValues(t *testing.T) {
	t.Setenv("PAKEGATE_REDIS_DB", "x")
	t.Setenv("PAKEGATE_SESSION_TTL", "y")

	err := parseEnv(defaults())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PAKEGATE_REDIS_DB")
	assert.Contains(t, err.Error(), "PAKEGATE_SESSION_TTL")
}
