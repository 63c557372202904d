// Package main provides the DocSentry server CLI.
package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the server configuration.
type Config struct {
	Source  SourceConfig `yaml:"source"`
	Scan    ScanConfig   `yaml:"scan"`
	Server  ServerConfig `yaml:"server"`
	Verbose bool         `yaml:"-"` // set via CLI flag
}

// SourceConfig contains document source settings.
type SourceConfig struct {
	BaseURL     string  `yaml:"base_url"`      // document source API base URL
	UseDemoData bool    `yaml:"use_demo_data"` // scan the built-in fixture instead of a live source
	RateLimit   float64 `yaml:"rate_limit"`    // source API requests per second (0 = unlimited)
}

// ScanConfig contains scan scheduling and detection settings.
type ScanConfig struct {
	IntervalMinutes int    `yaml:"interval_minutes"` // minutes between scheduled scans
	StaleAfter      string `yaml:"stale_after"`      // age after which a document is flagged unused, e.g. "2160h"
}

// StaleAfterDuration returns the parsed staleness window. Validate
// must have accepted the config first.
func (c *ScanConfig) StaleAfterDuration() time.Duration {
	d, err := time.ParseDuration(c.StaleAfter)
	if err != nil {
		return 90 * 24 * time.Hour
	}
	return d
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Address        string `yaml:"address"`           // HTTP listen address (default: :8080)
	RateLimitPerIP int    `yaml:"rate_limit_per_ip"` // API requests per minute per client IP
}

// LoadConfig loads configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// setDefaults sets default values for missing config fields.
func (c *Config) setDefaults() {
	if c.Scan.IntervalMinutes == 0 {
		c.Scan.IntervalMinutes = 60
	}
	if c.Scan.StaleAfter == "" {
		c.Scan.StaleAfter = "2160h" // 90 days
	}
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Server.RateLimitPerIP == 0 {
		c.Server.RateLimitPerIP = 120
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if !c.Source.UseDemoData && c.Source.BaseURL == "" {
		return fmt.Errorf("source.base_url is required unless source.use_demo_data is set")
	}
	if c.Source.RateLimit < 0 {
		return fmt.Errorf("source.rate_limit must not be negative")
	}
	if c.Scan.IntervalMinutes < 1 {
		return fmt.Errorf("scan.interval_minutes must be at least 1")
	}
	staleAfter, err := time.ParseDuration(c.Scan.StaleAfter)
	if err != nil {
		return fmt.Errorf("scan.stale_after is not a valid duration: %w", err)
	}
	if staleAfter < time.Hour {
		return fmt.Errorf("scan.stale_after must be at least 1h")
	}
	return nil
}
