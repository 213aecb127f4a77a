package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/karthikykr/MovieTicketBooking/internal/config"
)

// tokenBucketScript implements a refilling token bucket atomically in Redis.
// State per key is a hash of {tokens, refilled_ms}; the script refills by
// whole intervals elapsed since the last refill, takes one token when
// available, and reports the wait until the next refill otherwise.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local refill = tonumber(ARGV[3])
	local interval_ms = tonumber(ARGV[4])
	local ttl_s = tonumber(ARGV[5])

	local state = redis.call('HMGET', key, 'tokens', 'refilled_ms')
	local tokens = tonumber(state[1])
	local refilled = tonumber(state[2])
	if tokens == nil or refilled == nil then
		tokens = capacity
		refilled = now_ms
	end

	local elapsed = now_ms - refilled
	if elapsed > 0 then
		local steps = math.floor(elapsed / interval_ms)
		if steps > 0 then
			tokens = math.min(capacity, tokens + steps * refill)
			refilled = refilled + steps * interval_ms
		end
	end

	local allowed = 0
	local wait_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		wait_ms = interval_ms - (now_ms - refilled)
		if wait_ms < 0 then wait_ms = 0 end
	end

	redis.call('HMSET', key, 'tokens', tokens, 'refilled_ms', refilled)
	redis.call('EXPIRE', key, ttl_s)
	return { allowed, tokens, wait_ms }
`)

// RateLimit returns an Echo middleware enforcing a per-key token bucket in
// Redis. With rate limiting disabled or no Redis client it is a no-op, and a
// Redis error fails open so the API keeps serving when the cache tier is
// down.
func RateLimit(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passthrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rateKey(cfg, c)
			res, err := tokenBucketScript.Run(c.Request().Context(), rdb, []string{key},
				time.Now().UnixMilli(),
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				int64(cfg.TTL/time.Second),
			).Int64Slice()
			if err != nil || len(res) != 3 {
				return next(c)
			}
			allowed, remaining, waitMs := res[0] == 1, res[1], res[2]

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			if !allowed {
				retry := (waitMs + 999) / 1000
				h.Set("Retry-After", strconv.FormatInt(retry, 10))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":       "too_many_requests",
					"retry_after": retry,
				})
			}
			return next(c)
		}
	}
}

func passthrough(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error { return next(c) }
}

func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	user := "anon"
	if uid, ok := c.Get("user_id").(uint64); ok {
		user = strconv.FormatUint(uid, 10)
	}
	route := c.Request().Method + " " + c.Path()

	parts := []string{cfg.Prefix}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		parts = append(parts, "ip", ip)
	case "user":
		parts = append(parts, "user", user)
	case "route":
		parts = append(parts, "route", route)
	case "ip_route":
		parts = append(parts, "ip", ip, "route", route)
	case "user_route":
		parts = append(parts, "user", user, "route", route)
	default: // ip_user_route
		parts = append(parts, "ip", ip, "user", user, "route", route)
	}
	return strings.Join(parts, ":")
}
