package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config is the top-level application configuration.
type Config struct {
	// Sector is the organizational scope every remote call carries
	// (e.g. "personal", "it", "education", "hotel", "manufacturing").
	Sector string `mapstructure:"sector" yaml:"sector"`

	// Owner identifies the reminder owner within the sector.
	Owner string `mapstructure:"owner" yaml:"owner"`

	// BaseURL is the root URL of the reminder backend.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// ScanIntervalSec is the due-scan period in seconds.
	ScanIntervalSec int `mapstructure:"scan_interval_sec" yaml:"scan_interval_sec"`

	// RefreshIntervalSec is the background refresh period in seconds.
	// Values below 60 are raised to 60 to avoid redundant fetches.
	RefreshIntervalSec int `mapstructure:"refresh_interval_sec" yaml:"refresh_interval_sec"`

	// LedgerPath is the SQLite file holding notification timestamps.
	LedgerPath string `mapstructure:"ledger_path" yaml:"ledger_path"`

	// LogLevel controls the file logger (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// DefaultConfigPath returns the default configuration file location,
// ~/.config/tickler/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "tickler", "config.yaml")
}

// DefaultLedgerPath returns the default ledger database location.
func DefaultLedgerPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "ledger.db")
	}
	return filepath.Join(home, ".config", "tickler", "ledger.db")
}

func defaultConfig() *Config {
	return &Config{
		Sector:             "personal",
		ScanIntervalSec:    30,
		RefreshIntervalSec: 60,
		LedgerPath:         DefaultLedgerPath(),
		LogLevel:           "info",
	}
}

// LoadConfig reads configuration from the given YAML file path using
// Viper. If the file does not exist, defaults are returned.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("sector", "personal")
	v.SetDefault("scan_interval_sec", 30)
	v.SetDefault("refresh_interval_sec", 60)
	v.SetDefault("ledger_path", DefaultLedgerPath())
	v.SetDefault("log_level", "info")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.RefreshIntervalSec < 60 {
		cfg.RefreshIntervalSec = 60
	}
	if cfg.ScanIntervalSec <= 0 {
		cfg.ScanIntervalSec = 30
	}

	return cfg, nil
}

// SaveConfig writes the configuration as YAML at path, creating parent
// directories if needed.
func SaveConfig(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("sector", cfg.Sector)
	v.Set("owner", cfg.Owner)
	v.Set("base_url", cfg.BaseURL)
	v.Set("scan_interval_sec", cfg.ScanIntervalSec)
	v.Set("refresh_interval_sec", cfg.RefreshIntervalSec)
	v.Set("ledger_path", cfg.LedgerPath)
	v.Set("log_level", cfg.LogLevel)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
