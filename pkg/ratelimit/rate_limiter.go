package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config controls the fixed-window limiter.
type Config struct {
	Enabled         bool
	WindowDuration  time.Duration
	DefaultRequests int
	BookingRequests int
	PublicRequests  int
}

// RateLimiter is a Redis-backed fixed-window request limiter.
type RateLimiter struct {
	client *redis.Client
	config *Config
}

// Result describes the outcome of one limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// NewRateLimiter creates a rate limiter over the given Redis client.
func NewRateLimiter(client *redis.Client, config *Config) *RateLimiter {
	return &RateLimiter{client: client, config: config}
}

// Allow checks and consumes one request for the given key within the
// configured window. If Redis is unreachable the request is allowed; rate
// limiting must not take the API down with it.
func (rl *RateLimiter) Allow(ctx context.Context, key string, limit int) Result {
	window := rl.config.WindowDuration
	windowKey := fmt.Sprintf("ratelimit:%s:%d", key, time.Now().Unix()/int64(window.Seconds()))

	pipe := rl.client.TxPipeline()
	incr := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{Allowed: true, Limit: limit, Remaining: limit}
	}

	count := int(incr.Val())
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   time.Now().Truncate(window).Add(window),
	}
}

// LimitFor picks the per-window budget for a route class.
func (rl *RateLimiter) LimitFor(class string) int {
	switch class {
	case "booking":
		return rl.config.BookingRequests
	case "public":
		return rl.config.PublicRequests
	default:
		return rl.config.DefaultRequests
	}
}
