package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
)

// Token is minimal interface for a verified token that can expose claims
type Token interface {
	Claims(v interface{}) error
}

// Verifier is the minimal interface the session resolver depends on
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// BearerToken returns the token from an 'Authorization: Bearer <token>' header, or "".
func BearerToken(c *gin.Context) string {
	auth := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(auth) < 7 || !strings.EqualFold(auth[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(auth[7:])
}
