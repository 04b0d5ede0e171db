package config

import "time"

// RateLimitConfig drives the redis token-bucket middleware.
type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"RATE_LIMIT_ENABLED"`
	Capacity       int           `mapstructure:"RATE_LIMIT_CAPACITY"`
	Burst          int           `mapstructure:"RATE_LIMIT_BURST"`
	RefillTokens   int           `mapstructure:"RATE_LIMIT_REFILL_TOKENS"`
	RefillInterval time.Duration `mapstructure:"RATE_LIMIT_REFILL_INTERVAL"`
	RefillEvery    time.Duration `mapstructure:"RATE_LIMIT_REFILL_EVERY"`
	TTL            time.Duration `mapstructure:"RATE_LIMIT_TTL"`
	KeyStrategy    string        `mapstructure:"RATE_LIMIT_KEY_STRATEGY"`
	Prefix         string        `mapstructure:"RATE_LIMIT_PREFIX"`
	Debug          bool          `mapstructure:"RATE_LIMIT_DEBUG"`
}

var rateLimitDefaults = map[string]any{
	"RATE_LIMIT_ENABLED":         true,
	"RATE_LIMIT_CAPACITY":        60,
	"RATE_LIMIT_BURST":           0,
	"RATE_LIMIT_REFILL_TOKENS":   1,
	"RATE_LIMIT_REFILL_INTERVAL": time.Second,
	"RATE_LIMIT_REFILL_EVERY":    time.Duration(0),
	"RATE_LIMIT_TTL":             10 * time.Minute,
	"RATE_LIMIT_KEY_STRATEGY":    "ip_user_route",
	"RATE_LIMIT_PREFIX":          "rl",
	"RATE_LIMIT_DEBUG":           false,
}

// normalize applies the BURST / REFILL_EVERY shorthands and clamps values
// the limiter script cannot work with.
func (r *RateLimitConfig) normalize() {
	if r.Burst > 0 {
		r.Capacity = r.Burst
	}
	if r.RefillEvery > 0 {
		r.RefillTokens = 1
		r.RefillInterval = r.RefillEvery
	}
	if r.Capacity < 1 {
		r.Capacity = 1
	}
	if r.RefillTokens < 1 {
		r.RefillTokens = 1
	}
	if r.RefillInterval <= 0 {
		r.RefillInterval = time.Second
	}
	if minTTL := 5 * r.RefillInterval; r.TTL < minTTL {
		r.TTL = minTTL
	}
}
