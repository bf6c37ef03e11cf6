// Package config loads host configuration from a flat YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Remote holds the remote-store integration settings. Both fields empty
// means the integration is unconfigured and sync stays off.
type Remote struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// Config is the host-side configuration.
type Config struct {
	// DBPath is where the local cache lives. Defaults to woodshed.db in
	// the working directory.
	DBPath string `yaml:"db_path"`

	Remote Remote `yaml:"remote"`

	// SyncIntervalMinutes overrides the default 60-minute due-check
	// interval. Zero keeps the default.
	SyncIntervalMinutes int `yaml:"sync_interval_minutes"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{DBPath: "woodshed.db"}
}

// Load reads and parses a YAML config file. A missing path returns the
// defaults; an unreadable or malformed file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = Default().DBPath
	}
	return cfg, nil
}

// RemoteConfigured reports whether the remote integration is usable.
func (c Config) RemoteConfigured() bool {
	return c.Remote.BaseURL != ""
}

// SyncInterval returns the configured due-check interval.
func (c Config) SyncInterval() time.Duration {
	if c.SyncIntervalMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.SyncIntervalMinutes) * time.Minute
}
