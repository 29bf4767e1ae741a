package gate

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dwusrc/dwu-src-web-application-sub002/internal/config"
)

// SetSessionCookies writes both session cookies on the response headers.
// It must run before anything writes the body.
func SetSessionCookies(c *gin.Context, cfg config.SessionConfig, access string, accessTTL time.Duration, refresh string, refreshTTL time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.AccessCookie, access, int(accessTTL.Seconds()), cookiePath(cfg), cfg.CookieDomain, cfg.CookieSecure, true)
	c.SetCookie(cfg.RefreshCookie, refresh, int(refreshTTL.Seconds()), cookiePath(cfg), cfg.CookieDomain, cfg.CookieSecure, true)
}

// ClearSessionCookies expires both session cookies.
func ClearSessionCookies(c *gin.Context, cfg config.SessionConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.AccessCookie, "", -1, cookiePath(cfg), cfg.CookieDomain, cfg.CookieSecure, true)
	c.SetCookie(cfg.RefreshCookie, "", -1, cookiePath(cfg), cfg.CookieDomain, cfg.CookieSecure, true)
}

func cookiePath(cfg config.SessionConfig) string {
	if cfg.CookiePath == "" {
		return "/"
	}
	return cfg.CookiePath
}
