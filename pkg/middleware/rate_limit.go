package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/dwusrc/dwu-src-web-application-sub002/pkg/metrics"
)

// SubjectKey is the gin context key under which an authenticated subject id is stored.
const SubjectKey = "subject"

// clientKey prefers the authenticated subject, otherwise the client IP.
func clientKey(c *gin.Context) string {
	if sub := c.GetString(SubjectKey); sub != "" {
		return "sub:" + sub
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}

// limiterSet holds one token bucket per key.
type limiterSet struct {
	rps   float64
	burst int
	m     sync.Map // map[string]*rate.Limiter
}

func (s *limiterSet) get(key string) *rate.Limiter {
	if v, ok := s.m.Load(key); ok {
		return v.(*rate.Limiter)
	}
	v, _ := s.m.LoadOrStore(key, rate.NewLimiter(rate.Limit(s.rps), s.burst))
	return v.(*rate.Limiter)
}

// RateLimitMiddleware returns a Gin middleware enforcing a token-bucket per-key limit.
// rps = allowed events per second, burst = maximum tokens in bucket.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	set := &limiterSet{rps: rps, burst: burst}
	return func(c *gin.Context) {
		if !set.get(clientKey(c)).Allow() {
			c.Header("Retry-After", "1")
			metrics.RateLimitRejected.WithLabelValues("memory").Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("memory").Inc()
		c.Next()
	}
}
