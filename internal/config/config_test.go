package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"position-sizer/internal/errors"
	"position-sizer/internal/sizing"
)

func TestLoadWritesTemplateAndUsesDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "config.toml"))

	assert.Equal(t, 0.01, cfg.Sizing.RiskPercent)
	assert.Equal(t, 14, cfg.Sizing.ATRPeriod)
	assert.Equal(t, 2.0, cfg.Sizing.ATRMultiplier)
	assert.Equal(t, int64(1), cfg.Sizing.LotSize)
	assert.Equal(t, 0.10, cfg.Limits.MaxPositionWeight)
	assert.Equal(t, 0.05, cfg.Limits.MaxRiskPercent)
	assert.Equal(t, 5*time.Minute, cfg.MarketData.CacheTTL)
	assert.Equal(t, filepath.Join(dir, "candles"), cfg.MarketData.CandleDir)
	assert.Equal(t, "info", cfg.Log.Level)

	// The written template must round-trip to the same settings.
	again, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadReadsFile(t *testing.T) {
	dir := t.TempDir()
	body := `
[sizing]
risk_percent = 0.02
lot_size = 10
atr_multiplier = 3.0

[limits]
max_position_weight = 0.25

[marketdata]
base_url = "http://localhost:9000"
cache_ttl = "30s"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(body), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 0.02, cfg.Sizing.RiskPercent)
	assert.Equal(t, int64(10), cfg.Sizing.LotSize)
	assert.Equal(t, 0.25, cfg.Limits.MaxPositionWeight)
	assert.Equal(t, 0.05, cfg.Limits.MaxRiskPercent)
	assert.Equal(t, "http://localhost:9000", cfg.MarketData.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.MarketData.CacheTTL)

	assert.Equal(t, sizing.Limits{MaxPositionWeight: 0.25, MaxRiskPercent: 0.05}, cfg.SizingLimits())
	d := cfg.SizingDefaults()
	assert.Equal(t, 0.02, d.RiskPercent)
	assert.Equal(t, 3.0, d.ATRMultiplier)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[limits]\nmax_risk_percent = 5\n"), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfigInvalid))
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SIZER_RISK_PERCENT", "0.015")
	t.Setenv("SIZER_MARKETDATA_URL", "https://data.example.com")
	t.Setenv("SIZER_LOG_LEVEL", "debug")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 0.015, cfg.Sizing.RiskPercent)
	assert.Equal(t, "https://data.example.com", cfg.MarketData.BaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestEnvOverrideBadNumber(t *testing.T) {
	t.Setenv("SIZER_RISK_PERCENT", "two percent")
	_, err := Load(t.TempDir())
	assert.True(t, errors.Is(err, errors.ErrConfigInvalid))
}

func TestDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SIZER_MARKETDATA_API_KEY=secret-from-dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("SIZER_MARKETDATA_API_KEY") })

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "secret-from-dotenv", cfg.MarketData.APIKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"risk percent above one", func(c *Config) { c.Sizing.RiskPercent = 2 }, false},
		{"zero risk percent", func(c *Config) { c.Sizing.RiskPercent = 0 }, false},
		{"zero avg loss", func(c *Config) { c.Sizing.AvgLoss = 0 }, false},
		{"zero lot", func(c *Config) { c.Sizing.LotSize = 0 }, false},
		{"negative atr multiplier", func(c *Config) { c.Sizing.ATRMultiplier = -1 }, false},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, false},
		{"negative cache", func(c *Config) { c.MarketData.CacheSize = -1 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, errors.ErrConfigInvalid), "got %v", err)
			}
		})
	}
}
