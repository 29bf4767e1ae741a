package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/dwusrc/dwu-src-web-application-sub002/pkg/logger"
	"github.com/dwusrc/dwu-src-web-application-sub002/pkg/metrics"
)

// RedisRateLimitMiddleware is a fixed-window limiter shared by every replica.
// The first hit in a window creates the counter with the window as its TTL;
// allowed = floor(rps*windowSeconds)+burst hits per window.
func RedisRateLimitMiddleware(client *redis.Client, rps float64, burst int, window time.Duration) gin.HandlerFunc {
	if client == nil {
		return RateLimitMiddleware(rps, burst)
	}
	windowSeconds := int(window.Seconds())
	if windowSeconds <= 0 {
		windowSeconds = 1
	}
	ttl := time.Duration(windowSeconds) * time.Second
	allowedPerWindow := int64(rps*float64(windowSeconds)) + int64(burst)

	return func(c *gin.Context) {
		key := "rl:" + clientKey(c)
		ctx := c.Request.Context()

		cnt, err := client.Incr(ctx, key).Result()
		if err != nil {
			logger.L().Error().Err(err).Str("key", key).Msg("rate limit check failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if cnt == 1 {
			_ = client.Expire(ctx, key, ttl).Err()
		}
		if cnt > allowedPerWindow {
			c.Header("Retry-After", fmt.Sprintf("%d", windowSeconds))
			metrics.RateLimitRejected.WithLabelValues("redis").Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("redis").Inc()
		c.Next()
	}
}
