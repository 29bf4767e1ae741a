package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORSConfig controls the CORS middleware.
type CORSConfig struct {
	// AllowOrigins lists origins that may call the API. "*" allows any origin but
	// then credentials (session cookies) are not allowed.
	AllowOrigins []string
	AllowMethods []string
	AllowHeaders []string
	MaxAge       int
}

var defaultCORS = CORSConfig{
	AllowOrigins: []string{"*"},
	AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
	AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", HeaderRequestID},
	MaxAge:       86400,
}

// CORS answers preflight requests and sets the Access-Control headers for allowed origins.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowOrigins = defaultCORS.AllowOrigins
	}
	if len(cfg.AllowMethods) == 0 {
		cfg.AllowMethods = defaultCORS.AllowMethods
	}
	if len(cfg.AllowHeaders) == 0 {
		cfg.AllowHeaders = defaultCORS.AllowHeaders
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = defaultCORS.MaxAge
	}
	methods := strings.Join(cfg.AllowMethods, ", ")
	headers := strings.Join(cfg.AllowHeaders, ", ")
	maxAge := strconv.Itoa(cfg.MaxAge)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowed := ""
		for _, o := range cfg.AllowOrigins {
			if o == "*" || (origin != "" && strings.EqualFold(o, origin)) {
				allowed = o
				break
			}
		}
		if allowed == "" {
			c.Next()
			return
		}

		h := c.Writer.Header()
		if allowed == "*" {
			h.Set("Access-Control-Allow-Origin", "*")
		} else {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
		}
		h.Set("Access-Control-Expose-Headers", HeaderRequestID)

		if c.Request.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)
			h.Set("Access-Control-Max-Age", maxAge)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
