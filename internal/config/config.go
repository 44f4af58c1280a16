// Package config provides configuration management for mosdacbot.
//
// Config file locations (priority order):
//  1. $MOSDACBOT_CONFIG
//  2. ./mosdacbot.yaml
//  3. $XDG_CONFIG_HOME/mosdacbot/config.yaml
//     (~/.config/mosdacbot/config.yaml when XDG_CONFIG_HOME is unset)
//  4. /etc/mosdacbot/config.yaml
//
// Missing values take defaults. Relative catalog, rules and template paths in
// a file are resolved against the file's directory. MOSDACBOT_ADDR,
// MOSDACBOT_LOG_LEVEL and MOSDACBOT_CATALOG then override the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Environment overrides
const (
	EnvAddr     = "MOSDACBOT_ADDR"
	EnvLogLevel = "MOSDACBOT_LOG_LEVEL"
	EnvCatalog  = "MOSDACBOT_CATALOG"
)

var validate = validator.New()

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		cfg := DefaultConfig()
		cfg.ApplyEnv(os.LookupEnv)
		return cfg, "", cfg.Validate()
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	// fields absent from the file keep their defaults
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.resolveRelative(filepath.Dir(path))
	cfg.ApplyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.Metrics.Enabled = true
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(15 * time.Second)
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = Duration(15 * time.Second)
	}
	if c.Catalog.Format == "" {
		c.Catalog.Format = "auto"
	}
	if c.Sessions.IdleTimeout == 0 {
		c.Sessions.IdleTimeout = Duration(30 * time.Minute)
	}
	if c.Sessions.SweepInterval == 0 {
		c.Sessions.SweepInterval = Duration(5 * time.Minute)
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "mosdacbot"
	}
}

// ApplyEnv overrides file values from the environment
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v, ok := lookup(EnvCatalog); ok {
		c.Catalog.Path = v
	}
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Catalog.Watch && c.Catalog.Path == "" {
		return fmt.Errorf("invalid config: catalog.watch requires catalog.path")
	}
	return nil
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	catalog := c.Catalog.Path
	if catalog == "" {
		catalog = "(built-in sample)"
	}

	summary := fmt.Sprintf("Listen: %s, Log: %s/%s\n", c.Server.Addr, c.Log.Level, c.Log.Format)
	summary += fmt.Sprintf("Catalog: %s (format %s, watch %v)\n", catalog, c.Catalog.Format, c.Catalog.Watch)
	summary += fmt.Sprintf("Sessions: idle %s, sweep %s", c.Sessions.IdleTimeout.Duration(), c.Sessions.SweepInterval.Duration())
	if c.Metrics.Enabled {
		summary += fmt.Sprintf("\nMetrics: enabled (namespace %s)", c.Metrics.Namespace)
	}
	return summary
}
