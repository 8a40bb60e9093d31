package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/craftlane/storefront/internal/ratelimit"
)

// ClientIP derives the rate-limit key from a prioritized header chain:
// the platform's connecting-IP header, then the generic real-IP header,
// then the first forwarded-for entry
func ClientIP(c *gin.Context) string {
	if ip := c.GetHeader("CF-Connecting-IP"); ip != "" {
		return ip
	}
	if ip := c.GetHeader("X-Real-IP"); ip != "" {
		return ip
	}
	if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx >= 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	return "unknown"
}

// CheckRateLimit applies the per-IP budget for one request. When the
// budget is exceeded it writes the 429 response (with Retry-After and
// X-RateLimit-* headers) and returns false. Store errors fail open so
// a counter outage cannot drop legitimate traffic.
func CheckRateLimit(c *gin.Context, store ratelimit.Store, keyPrefix string, limit int64, window time.Duration, logger *zap.Logger) bool {
	key := keyPrefix + ":" + ClientIP(c)

	count, resetAt, err := store.Incr(c.Request.Context(), key, window)
	if err != nil {
		logger.Warn("Rate-limit store unavailable, allowing request", zap.Error(err))
		return true
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
	c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
	c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", resetAt.Unix()))

	if count > limit {
		retryAfter := int64(time.Until(resetAt).Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": "rate limit exceeded",
		})
		return false
	}

	return true
}

// RateLimit wraps CheckRateLimit as middleware for the REST routes
func RateLimit(store ratelimit.Store, keyPrefix string, limit int64, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CheckRateLimit(c, store, keyPrefix, limit, window, logger) {
			return
		}
		c.Next()
	}
}
