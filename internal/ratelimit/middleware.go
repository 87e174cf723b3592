package ratelimit

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Middleware aplica las ventanas dadas por (endpoint, IP del cliente). Si
// el backend de limites falla, el request pasa: preferimos degradar el
// control antes que tirar trafico legitimo.
func Middleware(limiter Limiter, logger *zap.Logger, endpoint string, windows ...Window) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := limiter.Allow(c.Request.Context(), Key(endpoint, c.ClientIP()), windows)
		if err != nil {
			logger.Warn("rate limiter unavailable, allowing request",
				zap.String("endpoint", endpoint), zap.Error(err))
			c.Next()
			return
		}
		if !res.Allowed {
			seconds := int(math.Ceil(res.RetryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			body := gin.H{
				"error":               "too many requests",
				"retry_after_seconds": seconds,
			}
			if id, ok := c.Get("request_id"); ok {
				body["request_id"] = id
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, body)
			return
		}
		c.Next()
	}
}
