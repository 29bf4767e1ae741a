package gate

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dwusrc/dwu-src-web-application-sub002/internal/config"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/models"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/sessions"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/tokens"
	"github.com/dwusrc/dwu-src-web-application-sub002/pkg/logger"
	"github.com/dwusrc/dwu-src-web-application-sub002/pkg/metrics"
	"github.com/dwusrc/dwu-src-web-application-sub002/pkg/middleware"
)

// Resolver turns request credentials into an Identity.
type Resolver struct {
	sessions  *sessions.Service
	blacklist *sessions.Blacklist
	issuer    *tokens.Issuer
	verifiers []middleware.Verifier
	cookies   config.SessionConfig
}

// NewResolver builds a resolver. The issuer's own verifier is always tried first;
// extra verifiers (e.g. OIDC) follow in the order given.
func NewResolver(s *sessions.Service, bl *sessions.Blacklist, iss *tokens.Issuer, cookies config.SessionConfig, extra ...middleware.Verifier) *Resolver {
	vs := make([]middleware.Verifier, 0, len(extra)+1)
	vs = append(vs, iss)
	for _, v := range extra {
		if v != nil {
			vs = append(vs, v)
		}
	}
	return &Resolver{sessions: s, blacklist: bl, issuer: iss, verifiers: vs, cookies: cookies}
}

// AccessToken returns the raw access token from the cookie, or from a Bearer header.
func (r *Resolver) AccessToken(c *gin.Context) string {
	if v, err := c.Cookie(r.cookies.AccessCookie); err == nil && v != "" {
		return v
	}
	return middleware.BearerToken(c)
}

// RefreshToken returns the raw refresh token cookie, or "".
func (r *Resolver) RefreshToken(c *gin.Context) string {
	v, err := c.Cookie(r.cookies.RefreshCookie)
	if err != nil {
		return ""
	}
	return v
}

// Resolve returns the caller's identity. found=false with a nil error means no session.
// A rotated refresh session is written to the response cookies before returning.
func (r *Resolver) Resolve(ctx context.Context, c *gin.Context) (*models.Identity, bool, error) {
	stale := false
	if raw := r.AccessToken(c); raw != "" {
		id, err := r.verifyAccess(ctx, raw)
		if err != nil {
			return nil, false, err
		}
		if id != nil {
			return id, true, nil
		}
		_, err = c.Cookie(r.cookies.AccessCookie)
		stale = err == nil
	}

	refresh := r.RefreshToken(c)
	if refresh == "" || r.sessions == nil {
		if stale {
			ClearSessionCookies(c, r.cookies)
		}
		return nil, false, nil
	}
	sess, err := r.sessions.Rotate(ctx, refresh)
	if err != nil {
		metrics.SessionRefreshes.WithLabelValues("error").Inc()
		return nil, false, err
	}
	if sess == nil {
		metrics.SessionRefreshes.WithLabelValues("invalid").Inc()
		ClearSessionCookies(c, r.cookies)
		return nil, false, nil
	}
	id := &models.Identity{ID: sess.Sub, Email: sess.Email}
	access, err := r.issuer.GenerateAccessToken(id)
	if err != nil {
		return nil, false, err
	}
	SetSessionCookies(c, r.cookies, access, r.issuer.TTL(), sess.RefreshToken, time.Until(sess.ExpiresAt))
	metrics.SessionRefreshes.WithLabelValues("rotated").Inc()
	return id, true, nil
}

type subjectClaims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
}

// verifyAccess returns (nil, nil) for a token that is revoked or fails every verifier.
func (r *Resolver) verifyAccess(ctx context.Context, raw string) (*models.Identity, error) {
	revoked, err := r.blacklist.Contains(ctx, raw)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, nil
	}
	for _, v := range r.verifiers {
		tok, err := v.Verify(ctx, raw)
		if err != nil {
			continue
		}
		var cl subjectClaims
		if err := tok.Claims(&cl); err != nil || cl.Sub == "" {
			logger.Debugf("verified token without usable subject: %v", err)
			continue
		}
		return &models.Identity{ID: cl.Sub, Email: cl.Email}, nil
	}
	return nil, nil
}
