package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "demo", cfg.Mode)
	assert.Equal(t, 5*time.Second, cfg.Pricing.Interval.Duration)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown mode", func(c *Config) { c.Mode = "turbo" }},
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"bad server port", func(c *Config) { c.Server.Port = 70000 }},
		{"zero pricing interval", func(c *Config) { c.Pricing.Interval.Duration = 0 }},
		{"step out of range", func(c *Config) { c.Pricing.MaxStep = 1.5 }},
		{"inverted price corridor", func(c *Config) { c.Pricing.MinPrice = 0.90; c.Pricing.MaxPrice = 0.10 }},
		{"half-configured telegram", func(c *Config) { c.Notify.TelegramToken = "tok" }},
		{"server mode without postgres host", func(c *Config) { c.Mode = "server"; c.Postgres.Host = "" }},
		{"server mode without redis addr", func(c *Config) { c.Mode = "server"; c.Redis.Addr = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateServerModeDefaults(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "server"
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults().Server.Port, cfg.Server.Port)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode = "server"
log_level = "debug"

[server]
port = 9100

[pricing]
interval = "2s"
max_step = 0.02
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "server", cfg.Mode)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 2*time.Second, cfg.Pricing.Interval.Duration)
	assert.InDelta(t, 0.02, cfg.Pricing.MaxStep, 1e-9)

	// Untouched sections keep their defaults.
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PAPERTRADER_SERVER_PORT", "9200")
	t.Setenv("PAPERTRADER_MODE", "server")
	t.Setenv("PAPERTRADER_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("PAPERTRADER_PRICING_INTERVAL", "500ms")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, 9200, cfg.Server.Port)
	assert.Equal(t, "server", cfg.Mode)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 500*time.Millisecond, cfg.Pricing.Interval.Duration)
}
