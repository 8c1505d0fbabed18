package config

import (
	"time"

	"github.com/spf13/viper"
)

// RateLimitConfig drives the Redis token bucket.  Capacity is the
// bucket size; RefillTokens are added every RefillInterval.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string
	Prefix         string
	Debug          bool
}

func setRateLimitDefaults(v *viper.Viper) {
	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_CAPACITY", 60)
	v.SetDefault("RATE_LIMIT_REFILL_TOKENS", 1)
	v.SetDefault("RATE_LIMIT_REFILL_INTERVAL", time.Second)
	v.SetDefault("RATE_LIMIT_TTL", 10*time.Minute)
	v.SetDefault("RATE_LIMIT_KEY_STRATEGY", "ip_user_route")
	v.SetDefault("RATE_LIMIT_PREFIX", "rl")
	v.SetDefault("RATE_LIMIT_DEBUG", false)
}

func rateLimitFromViper(v *viper.Viper) RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:        v.GetBool("RATE_LIMIT_ENABLED"),
		Capacity:       v.GetInt("RATE_LIMIT_CAPACITY"),
		RefillTokens:   v.GetInt("RATE_LIMIT_REFILL_TOKENS"),
		RefillInterval: v.GetDuration("RATE_LIMIT_REFILL_INTERVAL"),
		TTL:            v.GetDuration("RATE_LIMIT_TTL"),
		KeyStrategy:    v.GetString("RATE_LIMIT_KEY_STRATEGY"),
		Prefix:         v.GetString("RATE_LIMIT_PREFIX"),
		Debug:          v.GetBool("RATE_LIMIT_DEBUG"),
	}
	if b := v.GetInt("RATE_LIMIT_BURST"); b > 0 {
		cfg.Capacity = b
	}
	if every := v.GetDuration("RATE_LIMIT_REFILL_EVERY"); every > 0 {
		cfg.RefillTokens = 1
		cfg.RefillInterval = every
	}
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.RefillTokens < 1 {
		cfg.RefillTokens = 1
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = time.Second
	}
	if minTTL := 5 * cfg.RefillInterval; cfg.TTL < minTTL {
		cfg.TTL = minTTL
	}
	return cfg
}
