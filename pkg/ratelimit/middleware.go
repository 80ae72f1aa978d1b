package ratelimit

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Middleware applies the limiter to every request, keyed by client IP and
// route class.
func Middleware(rl *RateLimiter, class string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil || !rl.config.Enabled {
			c.Next()
			return
		}

		limit := rl.LimitFor(class)
		result := rl.Allow(c.Request.Context(), class+":"+c.ClientIP(), limit)

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		if !result.ResetAt.IsZero() {
			c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
		}

		if !result.Allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"status":      "error",
				"status_code": http.StatusTooManyRequests,
				"message":     "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}
