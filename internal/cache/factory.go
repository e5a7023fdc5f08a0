package cache

import (
	"fmt"
	"time"
)

// Config holds configuration for cache creation.
type Config struct {
	// Enabled determines if caching is enabled
	Enabled bool

	// Badger cache configuration
	BadgerPath           string
	BadgerMaxMemoryMB    int
	BadgerValueLogMaxMB  int
	BadgerGCInterval     time.Duration
	BadgerGCDiscardRatio float64
}

// DefaultConfig returns a default cache configuration for BadgerCache
func DefaultConfig() *Config {
	return &Config{
		Enabled:              true,
		BadgerPath:           "./cache/badger",
		BadgerMaxMemoryMB:    64,
		BadgerValueLogMaxMB:  256,
		BadgerGCInterval:     10 * time.Minute,
		BadgerGCDiscardRatio: 0.5,
	}
}

// New creates a new BadgerCache based on the configuration.
// Returns nil if caching is disabled.
func New(config *Config) (Cache, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if !config.Enabled {
		return nil, nil
	}

	if config.BadgerPath == "" {
		return nil, fmt.Errorf("BadgerPath is required when cache is enabled")
	}

	return NewBadgerCache(&BadgerConfig{
		Path:           config.BadgerPath,
		MaxMemoryMB:    config.BadgerMaxMemoryMB,
		ValueLogMaxMB:  config.BadgerValueLogMaxMB,
		GCInterval:     config.BadgerGCInterval,
		GCDiscardRatio: config.BadgerGCDiscardRatio,
	})
}
