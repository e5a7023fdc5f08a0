package config

import (
	"fmt"
	"os"
	"time"

	"github.com/sliceql/internal/cache"
	"github.com/sliceql/internal/logging"
	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
}

// CacheConfig holds compiled-query cache configuration. Durations are
// strings in Go duration syntax ("30m", "1h").
type CacheConfig struct {
	Enabled        bool    `yaml:"enabled"`
	Path           string  `yaml:"path"`
	MaxMemoryMB    int     `yaml:"max_memory_mb"`
	ValueLogMaxMB  int     `yaml:"value_log_max_mb"`
	TTL            string  `yaml:"ttl,omitempty"`
	GCInterval     string  `yaml:"gc_interval,omitempty"`
	GCDiscardRatio float64 `yaml:"gc_discard_ratio"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level"`       // debug, info, warn, error
	File       string `yaml:"file"`        // log file path (optional)
	MaxSize    int    `yaml:"max_size"`    // megabytes
	MaxBackups int    `yaml:"max_backups"` // number of old log files to keep
	MaxAge     int    `yaml:"max_age"`     // days
	Console    bool   `yaml:"console"`     // also log to console
	JSON       bool   `yaml:"json"`        // JSON format instead of text
}

// Default configurations

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:        false,
		Path:           "./cache/badger",
		MaxMemoryMB:    64,
		ValueLogMaxMB:  256,
		TTL:            "1h",
		GCInterval:     "10m",
		GCDiscardRatio: 0.5,
	}
}

func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:      "info",
		Console:    true,
		JSON:       false,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
	}
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Cache:   DefaultCacheConfig(),
		Logging: DefaultLoggingConfig(),
	}
}

// LoadConfig loads configuration from a YAML file. A missing file is
// not an error; defaults apply.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Default(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// validate ensures the configuration is valid and sets defaults where needed
func (c *Config) validate() error {
	if c.Cache.Enabled && c.Cache.Path == "" {
		c.Cache.Path = "./cache/badger"
	}
	if c.Cache.MaxMemoryMB == 0 {
		c.Cache.MaxMemoryMB = 64
	}
	if c.Cache.ValueLogMaxMB == 0 {
		c.Cache.ValueLogMaxMB = 256
	}
	if c.Cache.TTL == "" {
		c.Cache.TTL = "1h"
	}
	if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
		return fmt.Errorf("invalid cache.ttl: %w", err)
	}
	if c.Cache.GCInterval == "" {
		c.Cache.GCInterval = "10m"
	}
	if _, err := time.ParseDuration(c.Cache.GCInterval); err != nil {
		return fmt.Errorf("invalid cache.gc_interval: %w", err)
	}
	if c.Cache.GCDiscardRatio == 0 {
		c.Cache.GCDiscardRatio = 0.5
	}
	if c.Cache.GCDiscardRatio < 0 || c.Cache.GCDiscardRatio > 1 {
		return fmt.Errorf("cache.gc_discard_ratio must be between 0 and 1, got: %v", c.Cache.GCDiscardRatio)
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	validLevels := []string{"debug", "info", "warn", "error"}
	levelValid := false
	for _, l := range validLevels {
		if c.Logging.Level == l {
			levelValid = true
			break
		}
	}
	if !levelValid {
		return fmt.Errorf("logging.level must be one of: %v, got: %s", validLevels, c.Logging.Level)
	}
	if !c.Logging.Console && c.Logging.File == "" {
		c.Logging.Console = true
	}
	if c.Logging.MaxSize == 0 {
		c.Logging.MaxSize = 100
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = 3
	}
	if c.Logging.MaxAge == 0 {
		c.Logging.MaxAge = 28
	}

	return nil
}

// TTLDuration returns the parsed cache entry TTL.
func (c *CacheConfig) TTLDuration() (time.Duration, error) {
	ttl, err := time.ParseDuration(c.TTL)
	if err != nil {
		return 0, fmt.Errorf("invalid ttl: %w", err)
	}
	return ttl, nil
}

// ToLoggingConfig converts LoggingConfig to the logging package's config.
func (c *LoggingConfig) ToLoggingConfig() *logging.Config {
	return &logging.Config{
		Level:      c.Level,
		File:       c.File,
		MaxSize:    c.MaxSize,
		MaxBackups: c.MaxBackups,
		MaxAge:     c.MaxAge,
		Console:    c.Console,
		JSON:       c.JSON,
	}
}

// ToCacheConfig converts CacheConfig to the cache package's factory config.
func (c *CacheConfig) ToCacheConfig() (*cache.Config, error) {
	gcInterval, err := time.ParseDuration(c.GCInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid gc_interval: %w", err)
	}

	return &cache.Config{
		Enabled:              c.Enabled,
		BadgerPath:           c.Path,
		BadgerMaxMemoryMB:    c.MaxMemoryMB,
		BadgerValueLogMaxMB:  c.ValueLogMaxMB,
		BadgerGCInterval:     gcInterval,
		BadgerGCDiscardRatio: c.GCDiscardRatio,
	}, nil
}
