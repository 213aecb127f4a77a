package config

import (
	"os"
	"strconv"
	"time"
)

// BookingConfig groups the tunables of the seat hold and commit pipeline.
// HoldTTL is how long a seat hold survives without being refreshed,
// committed or released. SweepInterval is the cadence of the background
// sweeper that reclaims expired holds. CommitRetries bounds how many times
// a commit is retried after a transient storage failure before the error
// is surfaced to the client; CommitRetryBackoff is the pause between
// attempts. TaxRateBps is the tax applied to bookings in basis points
// (e.g. 850 = 8.5%).
type BookingConfig struct {
	HoldTTL            time.Duration
	SweepInterval      time.Duration
	CommitRetries      int
	CommitRetryBackoff time.Duration
	TaxRateBps         int
}

// LoadBookingConfig reads the booking pipeline settings from environment
// variables, falling back to defaults when unset. The original observed
// values (5 minute hold, 1 minute sweep) are kept as defaults but are not
// load-tested constants, hence configurable.
func LoadBookingConfig() BookingConfig {
	cfg := BookingConfig{
		HoldTTL:            envDuration("HOLD_TTL", 5*time.Minute),
		SweepInterval:      envDuration("HOLD_SWEEP_INTERVAL", time.Minute),
		CommitRetries:      envNumber("COMMIT_RETRIES", 2),
		CommitRetryBackoff: envDuration("COMMIT_RETRY_BACKOFF", 200*time.Millisecond),
		TaxRateBps:         envNumber("TAX_RATE_BPS", 0),
	}
	if cfg.HoldTTL <= 0 {
		cfg.HoldTTL = 5 * time.Minute
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if cfg.CommitRetries < 0 {
		cfg.CommitRetries = 0
	}
	if cfg.TaxRateBps < 0 {
		cfg.TaxRateBps = 0
	}
	return cfg
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func envNumber(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
