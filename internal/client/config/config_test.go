package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c := &Config{}
	c.LoadDefaults()

	assert.Empty(t, cmp.Diff(&Config{ServerURL: "http://127.0.0.1:8080", RequestTimeout: 10 * time.Second}, c))
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		expected    *Config
		expectPanic bool
	}{
		{
			name:     "ok",
			args:     []string{"login", "-u", "alice", "-a", "http://example:9000", "-t", "3s"},
			expected: &Config{ServerURL: "http://example:9000", RequestTimeout: 3 * time.Second},
		},
		{
			name:     "subcommand flags ignored",
			args:     []string{"register", "-u", "alice", "-w", "w1", "-s", "s1"},
			expected: &Config{},
		},
		{name: "bad timeout", args: []string{"-t", "soon"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(cfg, tt.args) })
				return
			}
			require.NotPanics(t, func() { parseFlags(cfg, tt.args) })
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}

func TestLoadConfig_JsonThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server_url":"http://json:1","request_timeout":"7s"}`), 0o600))

	cfg := LoadConfig([]string{"login", "-c", path})
	assert.Equal(t, "http://json:1", cfg.ServerURL)
	assert.Equal(t, 7*time.Second, cfg.RequestTimeout)

	cfg = LoadConfig([]string{"login", "-c", path, "-a", "http://flag:2"})
	assert.Equal(t, "http://flag:2", cfg.ServerURL)
	assert.Equal(t, 7*time.Second, cfg.RequestTimeout)
}

func TestLoadConfig_BadJsonPanics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o600))

	assert.Panics(t, func() { LoadConfig([]string{"-c", path}) })
	assert.Panics(t, func() { LoadConfig([]string{"-c", filepath.Join(t.TempDir(), "missing.json")}) })
}
