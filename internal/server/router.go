package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dwusrc/dwu-src-web-application-sub002/handlers"
	"github.com/dwusrc/dwu-src-web-application-sub002/pkg/middleware"
)

func (a *App) newRouter(auth *handlers.AuthHandler, portal *handlers.PortalHandler) *gin.Engine {
	if a.cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.RequestLogger("/health", "/ready", "/metrics"), gin.Recovery())
	r.Use(middleware.CORS(middleware.CORSConfig{AllowOrigins: a.cfg.CORS.AllowedOrigins}))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/ready", a.ready)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))
	handlers.RegisterSwagger(r)

	root := r.Group("/")
	auth.Register(root)
	portal.Register(root)
	return r
}

// rateLimiter builds the configured limiter, or nil when rate limiting is off.
// It is installed on the gate rather than the engine so gated routes are keyed by subject.
func (a *App) rateLimiter() gin.HandlerFunc {
	rl := a.cfg.RateLimit
	if !rl.Enabled {
		return nil
	}
	if rl.UseRedis && a.redis != nil {
		return middleware.RedisRateLimitMiddleware(a.redis, rl.RPS, rl.Burst, time.Duration(rl.WindowSeconds)*time.Second)
	}
	return middleware.RateLimitMiddleware(rl.RPS, rl.Burst)
}

// ready reports 200 only when every configured backend answers.
func (a *App) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), a.cfg.Server.ProviderTimeout)
	defer cancel()

	ok := true
	deps := gin.H{}
	if a.mongo != nil {
		up := a.mongo.Ping(ctx, nil) == nil
		deps["mongo"] = up
		ok = ok && up
	} else {
		deps["store"] = "memory"
	}
	if a.redis != nil {
		up := a.redis.Ping(ctx).Err() == nil
		deps["redis"] = up
		ok = ok && up
	}
	deps["objects"] = a.objects != nil
	deps["oidc"] = a.verifier != nil

	status, code := "ready", http.StatusOK
	if !ok {
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": status, "deps": deps, "uptime": time.Since(a.started).String()})
}
