// Package config loads the narsvm configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/narsvm/internal/reasoner"
)

// Engines names the engines the runtime can build.
var Engines = []string{"nal", "echo", "void"}

// #region types

// Config is the complete narsvm configuration.
type Config struct {
	Reasoner reasoner.Parameters `yaml:"reasoner"`
	Engine   string              `yaml:"engine"`
	Runtime  RuntimeConfig       `yaml:"runtime"`
	Storage  StorageConfig       `yaml:"storage"`
	Remote   RemoteConfig        `yaml:"remote"`
	Metrics  MetricsConfig       `yaml:"metrics"`
	Bus      BusConfig           `yaml:"bus"`
	Logging  LoggingConfig       `yaml:"logging"`
}

// RuntimeConfig tunes the session wrapper.
type RuntimeConfig struct {
	// Volume is applied with VOL when a session starts.
	Volume int `yaml:"volume"`
	// CheckInvariants runs the invariant harness after every command.
	CheckInvariants bool `yaml:"check_invariants"`
	// Record writes every output into the output log.
	Record bool `yaml:"record"`
}

// StorageConfig points at the sqlite database.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// RemoteConfig is the gRPC listen address.
type RemoteConfig struct {
	Addr string `yaml:"addr"`
}

// MetricsConfig is the HTTP address for /metrics. Empty disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// BusConfig configures output publishing. An empty URL disables it.
type BusConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// LoggingConfig selects the zap level and encoding.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// #endregion types

// #region defaults

// DefaultConfig returns the configuration used when no file is given.
// Environment variables NARSVM_DB, NARSVM_ADDR and NARSVM_NATS_URL override
// the storage path, the gRPC address and the bus URL.
func DefaultConfig() *Config {
	return &Config{
		Reasoner: reasoner.DefaultParameters(),
		Engine:   "nal",
		Runtime:  RuntimeConfig{Volume: 0},
		Storage:  StorageConfig{Path: envOr("NARSVM_DB", "narsvm.db")},
		Remote:   RemoteConfig{Addr: envOr("NARSVM_ADDR", "localhost:50061")},
		Metrics:  MetricsConfig{Addr: ""},
		Bus:      BusConfig{URL: envOr("NARSVM_NATS_URL", ""), Subject: "narsvm.outputs"},
		Logging:  LoggingConfig{Level: "info"},
	}
}

// #endregion defaults

// #region validate

// Validate checks the configuration, reporting every problem at once.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Reasoner.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("reasoner: %w", err))
	}
	if !slices.Contains(Engines, c.Engine) {
		errs = append(errs, fmt.Errorf("engine must be one of %v, got %q", Engines, c.Engine))
	}
	if c.Runtime.Volume < 0 || c.Runtime.Volume > 100 {
		errs = append(errs, fmt.Errorf("runtime.volume must be in 0..100, got %d", c.Runtime.Volume))
	}
	if c.Runtime.Record && c.Storage.Path == "" {
		errs = append(errs, errors.New("runtime.record needs storage.path"))
	}
	if c.Bus.URL != "" && c.Bus.Subject == "" {
		errs = append(errs, errors.New("bus.subject is required when bus.url is set"))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level))
	}
	return errors.Join(errs...)
}

// #endregion validate

// #region file

// LoadFromFile reads a YAML file over the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration as YAML, creating the directory.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// #endregion file

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
