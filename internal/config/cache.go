package config

import (
	"strings"
	"time"
)

// CacheConfig defines settings for the response cache middleware. Caching is
// disabled when Enabled is false or no Redis client is available. Methods is
// derived from MethodList (comma separated, upper-cased).
type CacheConfig struct {
	Enabled      bool            `mapstructure:"CACHE_ENABLED"`
	MethodList   string          `mapstructure:"CACHE_METHODS"`
	Methods      map[string]bool `mapstructure:"-"`
	TTL          time.Duration   `mapstructure:"CACHE_TTL"`
	KeyStrategy  string          `mapstructure:"CACHE_KEY_STRATEGY"`
	Prefix       string          `mapstructure:"CACHE_PREFIX"`
	MaxBodyBytes int             `mapstructure:"CACHE_MAX_BODY_BYTES"`
}

var cacheDefaults = map[string]any{
	"CACHE_ENABLED":        true,
	"CACHE_METHODS":        "GET",
	"CACHE_TTL":            30 * time.Second,
	"CACHE_KEY_STRATEGY":   "route_query",
	"CACHE_PREFIX":         "cache",
	"CACHE_MAX_BODY_BYTES": 1 << 20,
}

func parseMethods(s string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}
