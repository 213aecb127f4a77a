package config

import (
	"strings"
	"time"
)

// CacheConfig defines settings for the response cache middleware used on
// public browse endpoints (movies, theaters, showtimes). When Enabled is
// false or no Redis client is configured, caching is disabled. Methods
// lists the HTTP methods to cache. KeyStrategy determines which parts of
// the request contribute to the cache key. MaxBodyBytes caps the size of
// responses worth caching.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	KeyStrategy  string
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
// Defaults are used when variables are not set.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envFlag("CACHE_ENABLED", true),
		Methods:      parseMethods(envString("CACHE_METHODS", "GET")),
		TTL:          envDuration("CACHE_TTL", 30*time.Second),
		KeyStrategy:  envString("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       envString("CACHE_PREFIX", "cache"),
		MaxBodyBytes: envNumber("CACHE_MAX_BODY_BYTES", 1<<20),
	}
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
