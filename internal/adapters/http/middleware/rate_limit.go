// Package middleware - rate limiting. Backed by Redis so the
// limit is shared across every API process, not per-instance.
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Haleralex/payflow/internal/infrastructure/ratelimit"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RateLimitConfig configures one limiter instance.
type RateLimitConfig struct {
	Limiter *ratelimit.Limiter
	Limit   int
	Window  time.Duration
	// KeyFunc determines the limiter bucket; defaults to the authenticated
	// API key id, falling back to client IP for unauthenticated routes.
	KeyFunc func(*gin.Context) string
}

func defaultRateLimitKeyFunc(c *gin.Context) string {
	if keyID := GetAuthApiKeyID(c); keyID != uuid.Nil {
		return "key:" + keyID.String()
	}
	return "ip:" + c.ClientIP()
}

// RateLimit enforces config.Limit requests per config.Window per key,
// returning the standard X-RateLimit-* headers and a 429 with Retry-After
// once exhausted.
func RateLimit(config RateLimitConfig) gin.HandlerFunc {
	keyFunc := config.KeyFunc
	if keyFunc == nil {
		keyFunc = defaultRateLimitKeyFunc
	}

	return func(c *gin.Context) {
		key := "ratelimit:" + c.Request.URL.Path + ":" + keyFunc(c)

		allowed, remaining, retryAfter, err := config.Limiter.Allow(c.Request.Context(), key, config.Limit, config.Window)
		if err != nil {
			// Fail open: a Redis outage should not take the whole API down.
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(retryAfter).Unix(), 10))

		if !allowed {
			retrySeconds := int(retryAfter.Seconds())
			if retrySeconds < 1 {
				retrySeconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(retrySeconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error": gin.H{
					"kind":       "rate_limited",
					"message":    "rate limit exceeded, please try again later",
					"retryAfter": retrySeconds,
				},
			})
			return
		}

		c.Next()
	}
}

// StandardRateLimit is the default per-key request cap: 1000 requests per
// rolling 60-second window.
func StandardRateLimit(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return RateLimit(RateLimitConfig{Limiter: limiter, Limit: 1000, Window: time.Minute})
}

// PostingRateLimit is the stricter cap applied to the money-movement
// endpoints: money movements get a tighter window than reads.
func PostingRateLimit(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return RateLimit(RateLimitConfig{Limiter: limiter, Limit: 300, Window: time.Minute})
}
