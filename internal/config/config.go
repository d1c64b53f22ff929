// Package config provides configuration management for racecal.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/racecal/internal/fetcher"
	"github.com/pfrederiksen/racecal/internal/filter"
	"github.com/pfrederiksen/racecal/internal/logger"
)

// Configuration validation errors.
var (
	ErrMissingAddr     = errors.New("server.addr is required")
	ErrInvalidDelay    = errors.New("fetch.delay_ms must be non-negative")
	ErrInvalidTimeout  = errors.New("fetch.timeout_sec must be at least 1")
	ErrInvalidLogLevel = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrDuplicateSource = errors.New("sources must not repeat")
	ErrInvalidFilter   = errors.New("filter is invalid")
)

// Config represents the complete racecal configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Logging LoggingConfig `yaml:"logging"`
	// Sources restricts which sources are served. Empty means all.
	Sources []string `yaml:"sources"`
	// Filter is the default session filter for crawl output; flags narrow it
	Filter *filter.Filter `yaml:"filter"`
}

// ServerConfig defines the HTTP router settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// FetchConfig defines outbound request behavior.
type FetchConfig struct {
	DelayMs    int    `yaml:"delay_ms"`
	TimeoutSec int    `yaml:"timeout_sec"`
	UserAgent  string `yaml:"user_agent"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8080"},
		Fetch: FetchConfig{
			DelayMs:    int(fetcher.DefaultDelay / time.Millisecond),
			TimeoutSec: int(fetcher.DefaultTimeout / time.Second),
			UserAgent:  fetcher.DefaultUserAgent,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults. A sibling "<name>.local.<ext>" file, when present, is merged on
// top; only its non-zero values override.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	local := LocalPath(path)
	data, err = os.ReadFile(local)
	switch {
	case err == nil:
		var override Config
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to parse YAML in %s: %w", local, err)
		}
		if err := mergo.Merge(cfg, override, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merging %s: %w", local, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LocalPath returns the override file name for path: racecal.yaml becomes
// racecal.local.yaml.
func LocalPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".local" + ext
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return ErrMissingAddr
	}
	if c.Fetch.DelayMs < 0 {
		return ErrInvalidDelay
	}
	if c.Fetch.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return ErrInvalidLogLevel
	}

	seen := make(map[string]bool, len(c.Sources))
	for _, slug := range c.Sources {
		if seen[slug] {
			return fmt.Errorf("%w: %s", ErrDuplicateSource, slug)
		}
		seen[slug] = true
	}

	if f := c.Filter; f != nil {
		for _, t := range f.Types {
			if !t.Valid() {
				return fmt.Errorf("%w: unknown session type %q", ErrInvalidFilter, t)
			}
		}
		if f.DateFrom != nil && f.DateTo != nil && f.DateTo.Before(*f.DateFrom) {
			return fmt.Errorf("%w: date_to is before date_from", ErrInvalidFilter)
		}
	}
	return nil
}

// FetchOptions converts the fetch settings into fetcher options.
func (c *Config) FetchOptions(log *logger.Logger) fetcher.Options {
	return fetcher.Options{
		Delay:     time.Duration(c.Fetch.DelayMs) * time.Millisecond,
		Timeout:   time.Duration(c.Fetch.TimeoutSec) * time.Second,
		UserAgent: c.Fetch.UserAgent,
		Logger:    log,
	}
}

// LogLevel returns the parsed logging level.
func (c *Config) LogLevel() logger.Level {
	level, err := logger.ParseLevel(c.Logging.Level)
	if err != nil {
		return logger.LevelInfo
	}
	return level
}
