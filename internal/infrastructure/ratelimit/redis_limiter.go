// Package ratelimit implements the per-key request limiter on top of
// Redis, using the standard fixed-window INCR+PEXPIRE Lua idiom so the
// budget is shared across every API replica.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var fixedWindowScript = redis.NewScript(`
	-- KEYS[1] = counter key
	-- ARGV[1] = window_ms (int)
	--
	-- Returns the post-increment counter value. The TTL is (re)armed only on
	-- the first increment of a window so the window boundary never slides.
	local current = redis.call('INCR', KEYS[1])
	if current == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	return current
	`)

// Limiter enforces a fixed-window request cap per key in Redis.
type Limiter struct {
	rdb *redis.Client
}

func NewLimiter(rdb *redis.Client) *Limiter {
	return &Limiter{rdb: rdb}
}

// Allow increments key's counter for the current window and reports whether
// the request is within limit, how many requests remain, and how long until
// the window resets.
func (l *Limiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, remaining int, retryAfter time.Duration, err error) {
	count, err := fixedWindowScript.Run(ctx, l.rdb, []string{key}, window.Milliseconds()).Int()
	if err != nil {
		return false, 0, 0, fmt.Errorf("rate limit check failed: %w", err)
	}

	ttl, err := l.rdb.PTTL(ctx, key).Result()
	if err != nil {
		return false, 0, 0, fmt.Errorf("failed to read rate limit window ttl: %w", err)
	}
	if ttl < 0 {
		ttl = window
	}

	if count > limit {
		return false, 0, ttl, nil
	}
	return true, limit - count, ttl, nil
}
