package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// KeyFunc picks the bucket a request is counted against
type KeyFunc func(c *gin.Context) string

// ByUserOrIP uses the authenticated user id set by the auth middleware and
// falls back to the client IP.
func ByUserOrIP(c *gin.Context) string {
	if userID := c.GetString("userID"); userID != "" {
		return "user:" + userID
	}
	return "ip:" + c.ClientIP()
}

// Middleware creates a rate limiting middleware for Gin
func Middleware(limiter *RateLimiter, keyFunc KeyFunc) gin.HandlerFunc {
	if keyFunc == nil {
		keyFunc = ByUserOrIP
	}
	limit := strconv.Itoa(limiter.Limit())
	retryAfter := strconv.Itoa(int(limiter.Window().Seconds()))

	return func(c *gin.Context) {
		allowed, remaining, resetTime := limiter.Allow(keyFunc(c))

		c.Header("X-RateLimit-Limit", limit)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", resetTime.UTC().Format(time.RFC3339))

		if !allowed {
			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Try again later.",
				"code":  "RATE_LIMITED",
				"data": gin.H{
					"retry_after": retryAfter + "s",
					"reset_time":  resetTime.UTC().Format(time.RFC3339),
					"limit":       limiter.Limit(),
				},
			})
			return
		}

		c.Next()
	}
}
