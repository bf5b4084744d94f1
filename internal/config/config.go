// Package config loads the eventhubd process's configuration with
// spf13/viper (env/file layered config, ubiquitous across the pack's
// manifests) and validates it with go-playground/validator.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the top-level configuration for the eventhubd process.
type Config struct {
	// ListenAddr is the address the HTTP server (subscription endpoints and
	// the Prometheus /metrics endpoint) binds to.
	ListenAddr string `mapstructure:"listen_addr" validate:"required"`

	// BatchMaxAgeNS is the maximum time a pending batch may remain open
	// before being sealed, in nanoseconds.
	BatchMaxAgeNS uint64 `mapstructure:"batch_max_age_ns" validate:"required,gt=0"`

	// BatchMaxSizeBytes is the inclusive cap on sealed batch size.
	BatchMaxSizeBytes int `mapstructure:"batch_max_size_bytes" validate:"required,gt=0"`

	// HeartbeatInterval is a cron "@every" duration string driving the
	// dispatcher, e.g. "1s".
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval" validate:"required,gt=0"`

	// MetricsAddr is loaded but not read by eventhubd, which always serves
	// /metrics on the ListenAddr server; no separate metrics server exists.
	MetricsAddr string `mapstructure:"metrics_addr"`

	// StorePath is the bbolt database file path used for upgrade-time
	// save/restore of hub state. Empty disables persistence.
	StorePath string `mapstructure:"store_path"`

	// LogLevel is one of debug/info/warn/error.
	LogLevel string `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`

	// LogJSON selects JSON log output over the human-readable console writer.
	LogJSON bool `mapstructure:"log_json"`
}

// Defaults returns the configuration's baseline values before file/env/flag
// overrides are layered on.
func Defaults() Config {
	return Config{
		ListenAddr:        ":8080",
		BatchMaxAgeNS:     uint64(time.Second),
		BatchMaxSizeBytes: 1024 * 1024,
		HeartbeatInterval: time.Second,
		LogLevel:          "info",
	}
}

// Load builds a viper instance layering defaults, an optional config file
// at path (if non-empty), and EVENTHUB_-prefixed environment variables,
// then unmarshals and validates the result.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("eventhub")
	v.AutomaticEnv()

	defaults := Defaults()
	v.SetDefault("listen_addr", defaults.ListenAddr)
	v.SetDefault("batch_max_age_ns", defaults.BatchMaxAgeNS)
	v.SetDefault("batch_max_size_bytes", defaults.BatchMaxSizeBytes)
	v.SetDefault("heartbeat_interval", defaults.HeartbeatInterval)
	v.SetDefault("log_level", defaults.LogLevel)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config: invalid: %w", err)
	}

	return cfg, nil
}
