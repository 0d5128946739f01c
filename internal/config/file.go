// Package config handles livepatch configuration from YAML files.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level livepatch configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Page      string          `yaml:"page"`
	Browser   BrowserConfig   `yaml:"browser"`
	Status    StatusConfig    `yaml:"status"`
	Highlight HighlightConfig `yaml:"highlight"`
}

// ServerConfig points at the dev server push channel.
type ServerConfig struct {
	URL        string        `yaml:"url"`
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// BrowserConfig controls Chrome lifecycle.
type BrowserConfig struct {
	Remote   string `yaml:"remote"`
	Headless bool   `yaml:"headless"`
}

// StatusConfig controls the local status endpoint.
type StatusConfig struct {
	Listen string `yaml:"listen"`
}

// HighlightConfig tunes the patched-region flash.
type HighlightConfig struct {
	Color    string        `yaml:"color"`
	Duration time.Duration `yaml:"duration"`
	Interval time.Duration `yaml:"interval"`
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Server.URL == "" {
		c.Server.URL = "ws://127.0.0.1:35729/livereload"
	}
	if c.Server.RetryDelay <= 0 {
		c.Server.RetryDelay = 2 * time.Second
	}
	if c.Status.Listen == "" {
		c.Status.Listen = "127.0.0.1:7429"
	}
	if c.Highlight.Color == "" {
		c.Highlight.Color = "#ffff66"
	}
	if c.Highlight.Duration <= 0 {
		c.Highlight.Duration = 5 * time.Second
	}
	if c.Highlight.Interval <= 0 {
		c.Highlight.Interval = 100 * time.Millisecond
	}
}
