// Package config provides configuration management for the profiler.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Profile  ProfileConfig  `mapstructure:"profile"`
	Data     DataConfig     `mapstructure:"data"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ProfileConfig holds volume profile calculation settings.
type ProfileConfig struct {
	NumBins      int     `mapstructure:"num_bins"`
	ValueAreaPct float64 `mapstructure:"value_area_pct"`
}

// DataConfig holds data source settings.
type DataConfig struct {
	Source    string `mapstructure:"source"`    // "yahoo"
	Timeframe string `mapstructure:"timeframe"` // 1min, 5min, 15min
	DBPath    string `mapstructure:"db_path"`
}

// CacheConfig holds Redis cache settings.
type CacheConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTLHours int    `mapstructure:"ttl_hours"`
}

// ScheduleConfig holds the daily batch schedule.
type ScheduleConfig struct {
	DailyCron string `mapstructure:"daily_cron"`
	Workers   int    `mapstructure:"workers"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/nse-profiler"
	}
	return filepath.Join(home, ".config", "nse-profiler")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		if err := createTemplateConfig(configDir); err != nil {
			return nil, fmt.Errorf("creating config template: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("profile.num_bins", 50)
	v.SetDefault("profile.value_area_pct", 70.0)
	v.SetDefault("data.source", "yahoo")
	v.SetDefault("data.timeframe", "1min")
	v.SetDefault("data.db_path", filepath.Join(configDir, "profiler.db"))
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.addr", "localhost:6379")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl_hours", 48)
	// weekdays at 15:45 IST, after market close
	v.SetDefault("schedule.daily_cron", "45 15 * * 1-5")
	v.SetDefault("schedule.workers", 4)
	v.SetDefault("logging.level", "info")
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PROFILER_DB_PATH"); v != "" {
		cfg.Data.DBPath = v
	}
	if v := os.Getenv("PROFILER_REDIS_ADDR"); v != "" {
		cfg.Cache.Addr = v
		cfg.Cache.Enabled = true
	}
	if v := os.Getenv("PROFILER_REDIS_PASSWORD"); v != "" {
		cfg.Cache.Password = v
	}
	if v := os.Getenv("PROFILER_NUM_BINS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Profile.NumBins = n
		}
	}
	if v := os.Getenv("PROFILER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate validates the configuration. Out-of-range values fail here,
// they are never silently clamped.
func (c *Config) Validate() error {
	if c.Profile.NumBins <= 0 {
		return fmt.Errorf("profile.num_bins must be positive, got %d", c.Profile.NumBins)
	}
	if c.Profile.ValueAreaPct <= 0 || c.Profile.ValueAreaPct > 100 {
		return fmt.Errorf("profile.value_area_pct must be in (0, 100], got %g", c.Profile.ValueAreaPct)
	}
	if c.Data.Source != "yahoo" {
		return fmt.Errorf("unknown data source: %s", c.Data.Source)
	}
	switch c.Data.Timeframe {
	case "1min", "5min", "15min":
	default:
		return fmt.Errorf("unsupported timeframe: %s", c.Data.Timeframe)
	}
	if c.Schedule.Workers <= 0 {
		return fmt.Errorf("schedule.workers must be positive, got %d", c.Schedule.Workers)
	}
	return nil
}
