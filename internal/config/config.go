// Package config loads all runtime settings from environment variables.
// Core settings are required and fail fast at startup; the per-concern
// files (booking.go, redis.go, ratelimit.go, cache.go) carry optional
// tunables with defaults.
package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds the settings every deployment must provide.
type Config struct {
	Env            string // deployment environment label ("dev", "prod")
	Port           string // HTTP listen port
	DBUser         string
	DBPass         string // may be empty for passwordless local setups
	DBHost         string
	DBPort         string
	DBName         string
	JWTSecret      string // HS256 signing key for access tokens
	AccessTTLMin   int    // access token lifetime, minutes
	RefreshTTLDays int    // refresh token lifetime, days
	BcryptCost     int    // bcrypt work factor for password hashing
}

// Load reads the required environment variables. A missing value aborts
// startup with a fatal log, so a misconfigured instance never serves.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),
	}
}

func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("env var %s must be an integer, got %q", key, s)
	}
	return n
}
