// Package config provides configuration management for the position sizer.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"position-sizer/internal/errors"
	"position-sizer/internal/sizing"
)

// Config holds all application configuration.
type Config struct {
	Sizing     SizingConfig     `mapstructure:"sizing"`
	Limits     LimitsConfig     `mapstructure:"limits"`
	MarketData MarketDataConfig `mapstructure:"marketdata"`
	Log        LogConfig        `mapstructure:"log"`
	UI         UIConfig         `mapstructure:"ui"`
}

// SizingConfig holds defaults merged into every sizing request.
type SizingConfig struct {
	RiskPercent   float64 `mapstructure:"risk_percent"`
	ATRPeriod     int     `mapstructure:"atr_period"`
	ATRMultiplier float64 `mapstructure:"atr_multiplier"`
	LotSize       int64   `mapstructure:"lot_size"`
	WinRate       float64 `mapstructure:"win_rate"`
	AvgWin        float64 `mapstructure:"avg_win"`
	AvgLoss       float64 `mapstructure:"avg_loss"`
}

// LimitsConfig holds the validator thresholds.
type LimitsConfig struct {
	MaxPositionWeight float64 `mapstructure:"max_position_weight"`
	MaxRiskPercent    float64 `mapstructure:"max_risk_percent"`
}

// MarketDataConfig configures where candle history comes from.
type MarketDataConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	APIKey        string        `mapstructure:"api_key"`
	CandleDir     string        `mapstructure:"candle_dir"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RateLimit     float64       `mapstructure:"rate_limit"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
	CacheSize     int           `mapstructure:"cache_size"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       bool   `mapstructure:"file"`
	Path       string `mapstructure:"path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// UIConfig holds output configuration.
type UIConfig struct {
	Currency     string `mapstructure:"currency"`
	ColorEnabled bool   `mapstructure:"color_enabled"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/position-sizer"
	}
	return filepath.Join(home, ".config", "position-sizer")
}

// Default returns the built-in configuration.
func Default() *Config {
	v := viper.New()
	setDefaults(v, DefaultConfigDir())
	cfg := &Config{}
	_ = v.Unmarshal(cfg)
	return cfg
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("sizing.risk_percent", 0.01)
	v.SetDefault("sizing.atr_period", sizing.DefaultATRPeriod)
	v.SetDefault("sizing.atr_multiplier", sizing.DefaultATRMultiplier)
	v.SetDefault("sizing.lot_size", 1)
	v.SetDefault("sizing.win_rate", sizing.DefaultWinRate)
	v.SetDefault("sizing.avg_win", sizing.DefaultAvgWin)
	v.SetDefault("sizing.avg_loss", sizing.DefaultAvgLoss)

	v.SetDefault("limits.max_position_weight", sizing.DefaultMaxPositionWeight)
	v.SetDefault("limits.max_risk_percent", sizing.DefaultMaxRiskPercent)

	v.SetDefault("marketdata.base_url", "")
	v.SetDefault("marketdata.api_key", "")
	v.SetDefault("marketdata.candle_dir", filepath.Join(configDir, "candles"))
	v.SetDefault("marketdata.timeout", "15s")
	v.SetDefault("marketdata.rate_limit", 5.0)
	v.SetDefault("marketdata.cache_ttl", "5m")
	v.SetDefault("marketdata.cache_size", 256)
	v.SetDefault("marketdata.sweep_interval", "1m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", false)
	v.SetDefault("log.path", filepath.Join(configDir, "logs", "sizer.log"))
	v.SetDefault("log.max_size", 20)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age", 30)

	v.SetDefault("ui.currency", "$")
	v.SetDefault("ui.color_enabled", true)
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A missing
// config.toml is replaced by a commented template and defaults are used.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	// .env files only fill variables that are not already set.
	_ = godotenv.Load(filepath.Join(configDir, ".env"))
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v, configDir)
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		if err := createTemplateConfig(configDir); err != nil {
			return nil, fmt.Errorf("writing config template: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("SIZER_RISK_PERCENT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Wrapf(errors.ErrConfigInvalid, "SIZER_RISK_PERCENT=%q", v)
		}
		cfg.Sizing.RiskPercent = f
	}
	if v := os.Getenv("SIZER_MARKETDATA_URL"); v != "" {
		cfg.MarketData.BaseURL = v
	}
	if v := os.Getenv("SIZER_MARKETDATA_API_KEY"); v != "" {
		cfg.MarketData.APIKey = v
	}
	if v := os.Getenv("SIZER_CANDLE_DIR"); v != "" {
		cfg.MarketData.CandleDir = v
	}
	if v := os.Getenv("SIZER_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	fraction := func(name string, v float64) error {
		if v <= 0 || v > 1 {
			return errors.Wrapf(errors.ErrConfigInvalid, "%s must be in (0, 1], got %v", name, v)
		}
		return nil
	}

	checks := []struct {
		name string
		v    float64
	}{
		{"sizing.risk_percent", c.Sizing.RiskPercent},
		{"sizing.win_rate", c.Sizing.WinRate},
		{"limits.max_position_weight", c.Limits.MaxPositionWeight},
		{"limits.max_risk_percent", c.Limits.MaxRiskPercent},
	}
	for _, chk := range checks {
		if err := fraction(chk.name, chk.v); err != nil {
			return err
		}
	}

	if c.Sizing.AvgWin <= 0 || c.Sizing.AvgLoss <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalid, "sizing.avg_win and sizing.avg_loss must be positive")
	}
	if c.Sizing.ATRPeriod <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalid, "sizing.atr_period must be positive")
	}
	if c.Sizing.ATRMultiplier <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalid, "sizing.atr_multiplier must be positive")
	}
	if c.Sizing.LotSize <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalid, "sizing.lot_size must be positive")
	}
	if c.MarketData.CacheSize < 0 || c.MarketData.RateLimit < 0 {
		return errors.Wrapf(errors.ErrConfigInvalid, "marketdata cache_size and rate_limit must not be negative")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.Wrapf(errors.ErrConfigInvalid, "log.level %q", c.Log.Level)
	}

	return nil
}

// SizingDefaults returns the request defaults for the sizing engine.
func (c *Config) SizingDefaults() sizing.Defaults {
	return sizing.Defaults{
		RiskPercent:   c.Sizing.RiskPercent,
		WinRate:       c.Sizing.WinRate,
		AvgWin:        c.Sizing.AvgWin,
		AvgLoss:       c.Sizing.AvgLoss,
		ATRMultiplier: c.Sizing.ATRMultiplier,
	}
}

// SizingLimits returns the validator thresholds.
func (c *Config) SizingLimits() sizing.Limits {
	return sizing.Limits{
		MaxPositionWeight: c.Limits.MaxPositionWeight,
		MaxRiskPercent:    c.Limits.MaxRiskPercent,
	}
}
