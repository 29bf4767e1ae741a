package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dwusrc/dwu-src-web-application-sub002/internal/apperr"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/config"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/gate"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/identity"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/models"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/profiles"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/sessions"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/tokens"
	"github.com/dwusrc/dwu-src-web-application-sub002/pkg/logger"
	"github.com/dwusrc/dwu-src-web-application-sub002/pkg/metrics"
)

// SignupRequest is the body of POST /auth/signup.
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"max=120"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthHandler holds dependencies
type AuthHandler struct {
	cookies   config.SessionConfig
	identity  *identity.Provider
	profiles  *profiles.Service
	sessions  *sessions.Service
	blacklist *sessions.Blacklist
	issuer    *tokens.Issuer
	gate      *gate.Factory
}

func NewAuthHandler(cookies config.SessionConfig, idp *identity.Provider, p *profiles.Service, s *sessions.Service, bl *sessions.Blacklist, iss *tokens.Issuer, g *gate.Factory) *AuthHandler {
	return &AuthHandler{cookies: cookies, identity: idp, profiles: p, sessions: s, blacklist: bl, issuer: iss, gate: g}
}

// Register routes under /auth
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	a := rg.Group("/auth", h.gate.Throttle())
	a.POST("/signup", h.Signup)
	a.POST("/login", h.Login)
	a.POST("/logout", h.Logout)
}

// Signup creates the identity, then the student profile. When the profile
// insert fails the identity is deleted again so no orphan remains.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		gate.Respond(c, bindError(err, signupMessages))
		return
	}
	ctx, cancel := h.gate.Bound(c)
	defer cancel()

	id, err := h.identity.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			gate.Respond(c, apperr.Wrap(apperr.Provider, "Unable to create account", err))
			return
		}
		gate.Respond(c, apperr.Wrap(apperr.Unexpected, "sign up", err))
		return
	}

	if _, err := h.profiles.CreateStudent(ctx, id.ID, req.FullName); err != nil {
		h.compensate(id.ID)
		gate.Respond(c, apperr.Wrap(apperr.Store, "create profile", err))
		return
	}
	logger.L().Info().Str("identity", id.ID).Msg("account created")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// compensate runs on its own deadline so it still executes after the request context expired.
func (h *AuthHandler) compensate(identityID string) {
	metrics.SignupCompensations.Inc()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.identity.Delete(ctx, identityID); err != nil {
		logger.L().Error().Err(err).Str("identity", identityID).Msg("orphaned identity: compensation failed")
		return
	}
	logger.L().Warn().Str("identity", identityID).Msg("identity removed after profile insert failure")
}

// Login verifies credentials, opens a refresh session and sets both session cookies.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		gate.Respond(c, apperr.Invalid("Email and password are required"))
		return
	}
	ctx, cancel := h.gate.Bound(c)
	defer cancel()

	id, err := h.identity.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			gate.Respond(c, apperr.Wrap(apperr.Provider, "Invalid email or password", err))
			return
		}
		gate.Respond(c, apperr.Wrap(apperr.Unexpected, "sign in", err))
		return
	}
	p, err := h.profiles.Load(ctx, id.ID)
	if err != nil {
		gate.Respond(c, apperr.StoreErr(err))
		return
	}
	if p == nil || !p.IsActive {
		gate.Respond(c, apperr.New(apperr.Unauthenticated, "Account is not active"))
		return
	}

	sess, err := h.sessions.CreateSession(ctx, id.ID, id.Email)
	if err != nil {
		gate.Respond(c, apperr.StoreErr(err))
		return
	}
	access, err := h.issuer.GenerateAccessToken(id)
	if err != nil {
		gate.Respond(c, apperr.Wrap(apperr.Unexpected, "issue access token", err))
		return
	}
	gate.SetSessionCookies(c, h.cookies, access, h.issuer.TTL(), sess.RefreshToken, h.sessions.TTL())
	c.JSON(http.StatusOK, gin.H{"success": true, "user": id, "role": p.Role, "dashboard": dashboardFor(p.Role)})
}

// Logout revokes the current access token, deletes the refresh session and clears the cookies.
// It succeeds without a session.
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx, cancel := h.gate.Bound(c)
	defer cancel()

	res := h.gate.Resolver()
	if raw := res.AccessToken(c); raw != "" {
		// only tokens this service signed are blacklisted
		if ttl, err := h.issuer.RevocationTTL(ctx, raw); err == nil {
			if err := h.blacklist.Add(ctx, raw, ttl); err != nil {
				gate.Respond(c, apperr.Wrap(apperr.Unexpected, "blacklist access token", err))
				return
			}
		}
	}
	if refresh := res.RefreshToken(c); refresh != "" {
		if err := h.sessions.DeleteRefresh(ctx, refresh); err != nil {
			gate.Respond(c, apperr.StoreErr(err))
			return
		}
	}
	gate.ClearSessionCookies(c, h.cookies)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Signed out successfully"})
}

func dashboardFor(r models.Role) string {
	return "/dashboard/" + string(r)
}
