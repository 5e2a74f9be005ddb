// Package config defines the YAML configuration for the rate limiter.
package config

import (
	"fmt"
	"time"

	"perkey.ratelimiter/tokenbucket"
)

// LimiterConfig holds the default token bucket parameters applied to
// first-seen keys.
type LimiterConfig struct {
	Capacity       int           `yaml:"capacity"`
	RefillRate     int           `yaml:"refill_rate"`
	RefillInterval time.Duration `yaml:"refill_interval"`
}

// VIPConfig overrides the default parameters for a single key. The refill
// interval always stays the limiter's default.
type VIPConfig struct {
	Key        string `yaml:"key"`
	Capacity   int    `yaml:"capacity"`
	RefillRate int    `yaml:"refill_rate"`
}

// PruneConfig enables periodic eviction of idle buckets. Recommended whenever
// the key space is unbounded, such as per-IP limiting.
type PruneConfig struct {
	MaxIdleAge time.Duration `yaml:"max_idle_age"`
	Interval   time.Duration `yaml:"interval"`
}

// Config is the top-level structure of the configuration file.
type Config struct {
	Limiter LimiterConfig `yaml:"limiter"`
	VIPs    []VIPConfig   `yaml:"vips,omitempty"`
	Prune   *PruneConfig  `yaml:"prune,omitempty"`
}

// Validate checks the configuration eagerly, mirroring the limiter's own
// construction-time validation so a bad file is rejected before any bucket
// arithmetic can run on it.
func (c *Config) Validate() error {
	if err := c.Limiter.validate(); err != nil {
		return fmt.Errorf("limiter: %w", err)
	}

	for i, vip := range c.VIPs {
		if vip.Key == "" {
			return fmt.Errorf("vips[%d]: missing 'key' field", i)
		}
		if vip.Capacity <= 0 {
			return fmt.Errorf("vips[%d] (%s): %w", i, vip.Key, tokenbucket.ErrInvalidCapacity)
		}
		if vip.RefillRate <= 0 {
			return fmt.Errorf("vips[%d] (%s): %w", i, vip.Key, tokenbucket.ErrInvalidRefillRate)
		}
	}

	if c.Prune != nil {
		if c.Prune.MaxIdleAge <= 0 {
			return fmt.Errorf("prune: max_idle_age must be positive, got %v", c.Prune.MaxIdleAge)
		}
		if c.Prune.Interval <= 0 {
			return fmt.Errorf("prune: interval must be positive, got %v", c.Prune.Interval)
		}
	}

	return nil
}

func (lc *LimiterConfig) validate() error {
	if lc.Capacity <= 0 {
		return tokenbucket.ErrInvalidCapacity
	}
	if lc.RefillRate <= 0 {
		return tokenbucket.ErrInvalidRefillRate
	}
	if lc.RefillInterval <= 0 {
		return tokenbucket.ErrInvalidRefillInterval
	}
	return nil
}
