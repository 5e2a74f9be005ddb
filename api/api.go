// Package api assembles a configured rate limiter from a YAML config file.
package api

import (
	"fmt"

	"github.com/rs/zerolog/log"

	apiinternal "perkey.ratelimiter/api/internal"
	"perkey.ratelimiter/config"
	"perkey.ratelimiter/tokenbucket"
)

// NewLimiterFromConfigPath loads and validates the config at configPath,
// builds a string-keyed limiter with the configured defaults, applies every
// VIP override, and starts the background prune loop when one is configured.
// The returned stop function halts the prune loop; it is a no-op when pruning
// is disabled.
func NewLimiterFromConfigPath(configPath string) (*tokenbucket.Limiter[string], func(), error) {
	cfg, err := apiinternal.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading configuration: %w", err)
	}
	return NewLimiterFromConfig(cfg)
}

// NewLimiterFromConfig builds a limiter from an already-loaded config.
func NewLimiterFromConfig(cfg *config.Config) (*tokenbucket.Limiter[string], func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	limiter, err := tokenbucket.New[string](cfg.Limiter.Capacity, cfg.Limiter.RefillRate, cfg.Limiter.RefillInterval)
	if err != nil {
		return nil, nil, fmt.Errorf("create limiter: %w", err)
	}

	for _, vip := range cfg.VIPs {
		log.Info().Str("key", vip.Key).Int("capacity", vip.Capacity).Int("refill_rate", vip.RefillRate).Msg("API: Applying VIP override")
		limiter.SetVIP(vip.Key, vip.Capacity, vip.RefillRate)
	}

	stop := func() {}
	if cfg.Prune != nil {
		log.Info().Dur("max_idle_age", cfg.Prune.MaxIdleAge).Dur("interval", cfg.Prune.Interval).Msg("API: Starting background prune loop")
		stop = limiter.StartPruning(cfg.Prune.Interval, cfg.Prune.MaxIdleAge)
	}

	return limiter, stop, nil
}
