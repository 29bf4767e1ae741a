package gate

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dwusrc/dwu-src-web-application-sub002/internal/apperr"
	"github.com/dwusrc/dwu-src-web-application-sub002/pkg/logger"
)

const internalMessage = "Internal server error"

// Status maps an error to its HTTP status and client-safe message.
func Status(err error) (int, string) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		return http.StatusInternalServerError, internalMessage
	}
	switch ae.Kind {
	case apperr.Unauthenticated:
		if ae.Message == "" {
			return http.StatusUnauthorized, "Not authenticated"
		}
		return http.StatusUnauthorized, ae.Message
	case apperr.Forbidden:
		return http.StatusForbidden, ae.Message
	case apperr.NotFound:
		return http.StatusNotFound, ae.Message
	case apperr.Validation, apperr.Provider:
		return http.StatusBadRequest, ae.Message
	}
	return http.StatusInternalServerError, internalMessage
}

// Respond writes err as {"error": message} and aborts the chain.
// Server-side failures are logged with their cause; the cause never reaches the client.
func Respond(c *gin.Context, err error) {
	status, msg := Status(err)
	if status >= http.StatusInternalServerError {
		logger.L().Error().Err(err).Str("method", c.Request.Method).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
