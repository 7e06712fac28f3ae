// Package middleware holds the HTTP middleware chain: cross-cutting
// concerns (request IDs, logging, auth, rate limiting, recovery) kept out of
// individual handlers.
package middleware

import (
	"github.com/Haleralex/payflow/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader     = "X-Request-ID"
	RequestIDContextKey = "request_id"
)

// RequestID attaches a unique ID to every request, for log correlation and
// client-side tracing. If the caller sends X-Request-ID, that value is
// reused; otherwise a new UUID is generated.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDContextKey, requestID)

		// Also stash it on the request context, where the structured logger
		// (pkg/logger.ContextHandler) picks it up for every log line this
		// request produces.
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), requestID))

		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}

// GetRequestID reads the request ID set by RequestID out of the gin context.
func GetRequestID(c *gin.Context) string {
	if id, exists := c.Get(RequestIDContextKey); exists {
		if strID, ok := id.(string); ok {
			return strID
		}
	}
	return ""
}
