package config

import (
	"os"
	"time"
)

// RateLimitConfig describes the Redis token bucket applied to write-heavy
// routes (auth, holds, booking commits). KeyStrategy controls which request
// attributes form the bucket key.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string
	Prefix         string
}

// LoadRateLimitConfig builds a RateLimitConfig from environment variables
// with sane defaults. The bucket TTL is always kept at a multiple of the
// refill interval so idle buckets do not expire mid-refill.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:        envFlag("RATE_LIMIT_ENABLED", true),
		Capacity:       envNumber("RATE_LIMIT_CAPACITY", 60),
		RefillTokens:   envNumber("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: envDuration("RATE_LIMIT_REFILL_INTERVAL", time.Second),
		TTL:            envDuration("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:    envString("RATE_LIMIT_KEY_STRATEGY", "ip_user_route"),
		Prefix:         envString("RATE_LIMIT_PREFIX", "rl"),
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

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envFlag(key string, def bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	case "0", "false", "FALSE", "False", "no", "off":
		return false
	}
	return def
}
