package middleware

import (
	"fmt"
	"math"
	"net/http"

	"clinic_manager/internal/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RateLimit caps request frequency per client IP for one scope. On a
// store failure the request is let through: throttling is protection,
// not a hard dependency.
func RateLimit(limiter *ratelimit.Limiter, scope ratelimit.Scope, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := limiter.Allow(c.Request.Context(), scope, c.ClientIP())
		if err != nil {
			log.Warnf("rate limit check failed for scope %s: %v", scope, err)
			c.Next()
			return
		}

		if !result.Allowed {
			retryAfter := int(math.Ceil(result.RetryAfter.Seconds()))
			message := "Trop de requetes."
			if retryAfter > 0 {
				message = fmt.Sprintf("Trop de requetes. Reessayer dans %d secondes", retryAfter)
				c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "throttled",
				"message": message,
			})
			return
		}

		c.Next()
	}
}
