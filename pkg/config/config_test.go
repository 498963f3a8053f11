package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/pypilink/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pypilink.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "https://pypi.org/pypi", cfg.Registry.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Registry.Timeout)
	assert.Equal(t, ".", cfg.Bot.CommandPrefix)
	assert.Equal(t, "[PyPI] ", cfg.Bot.Tag)
	assert.Equal(t, 2, cfg.Bot.MaxMessages)
	assert.True(t, cfg.Bot.SearchFallback)
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[registry]
timeout = "3s"
user_agent = "test-agent"

[bot]
command_prefix = "!"
search_fallback = false

[server]
addr = "127.0.0.1:9000"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.Registry.Timeout)
	assert.Equal(t, "test-agent", cfg.Registry.UserAgent)
	assert.Equal(t, "!", cfg.Bot.CommandPrefix)
	assert.False(t, cfg.Bot.SearchFallback)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)

	// Untouched keys keep their defaults.
	assert.Equal(t, "https://pypi.org/pypi", cfg.Registry.BaseURL)
	assert.Equal(t, 2, cfg.Bot.MaxMessages)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "[registry\n"},
		{"unknown key", "[bot]\ncolour = \"red\"\n"},
		{"bad duration", "[registry]\ntimeout = \"soon\"\n"},
		{"invalid value", "[bot]\nmax_messages = 0\n"},
		{"bad url", "[registry]\nbase_url = \"ftp://pypi.org\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig), "err = %v", err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero timeout", func(c *Config) { c.Registry.Timeout = 0 }},
		{"empty prefix", func(c *Config) { c.Bot.CommandPrefix = "" }},
		{"short lines", func(c *Config) { c.Bot.MaxLineLength = 10 }},
		{"empty rpc url", func(c *Config) { c.Registry.RPCURL = "" }},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestHeaders(t *testing.T) {
	assert.Equal(t, map[string]string{"User-Agent": DefaultUserAgent}, Default().Registry.Headers())
	assert.Nil(t, Registry{}.Headers())
}

func TestStringRoundTrips(t *testing.T) {
	out := Default().String()
	assert.True(t, strings.Contains(out, "[registry]"), out)
	assert.Contains(t, out, `timeout = "10s"`)

	cfg, err := Load(writeConfig(t, out))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
