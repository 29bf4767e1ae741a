// Package gate runs the authorization pipeline in front of every protected route:
// resolve the session, load the profile, evaluate the action, then hand a
// request-scoped context to the handler.
package gate

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dwusrc/dwu-src-web-application-sub002/internal/access"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/apperr"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/models"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/profiles"
	"github.com/dwusrc/dwu-src-web-application-sub002/pkg/metrics"
	"github.com/dwusrc/dwu-src-web-application-sub002/pkg/middleware"
)

const requestKey = "gate.request"

// Request is the per-request session context shared by every pipeline stage.
type Request struct {
	Identity *models.Identity
	Profile  *models.Profile
	Decision access.Decision
	Action   string
}

// Factory holds the injected collaborators and builds a Request per call.
type Factory struct {
	resolver  *Resolver
	profiles  *profiles.Service
	evaluator *access.Evaluator
	timeout   time.Duration
	limit     gin.HandlerFunc
}

func NewFactory(r *Resolver, p *profiles.Service, ev *access.Evaluator, providerTimeout time.Duration) *Factory {
	if providerTimeout <= 0 {
		providerTimeout = 5 * time.Second
	}
	return &Factory{resolver: r, profiles: p, evaluator: ev, timeout: providerTimeout}
}

// WithLimiter installs a rate limiter. Gated routes run it after authorization so
// it keys on the subject; public routes run it through Throttle and key on the client IP.
func (f *Factory) WithLimiter(limit gin.HandlerFunc) *Factory {
	f.limit = limit
	return f
}

// Throttle applies the limiter to an ungated route.
func (f *Factory) Throttle() gin.HandlerFunc {
	if f.limit == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return f.limit
}

// Resolver exposes the session resolver for routes that read sessions without gating (logout).
func (f *Factory) Resolver() *Resolver { return f.resolver }

// Bound derives a context limited by the provider timeout.
func (f *Factory) Bound(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), f.timeout)
}

// Authorize runs resolve, load and evaluate for action. Denials come back as
// *apperr.Error carrying the action's message.
func (f *Factory) Authorize(c *gin.Context, a access.Action) (*Request, error) {
	ctx, cancel := f.Bound(c)
	defer cancel()

	id, found, err := f.resolver.Resolve(ctx, c)
	if err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, "session lookup failed", err)
	}

	req := &Request{Identity: id, Action: a.Name}
	if found {
		p, err := f.profiles.Load(ctx, id.ID)
		if err != nil {
			return nil, apperr.StoreErr(err)
		}
		req.Profile = p
	}
	req.Decision = f.evaluator.Evaluate(req.Profile, a)
	metrics.AccessDecisions.WithLabelValues(a.Name, string(req.Decision.Reason)).Inc()

	switch req.Decision.Reason {
	case access.ReasonOK:
		return req, nil
	case access.ReasonUnauthenticated:
		return nil, apperr.New(apperr.Unauthenticated, a.Message(req.Decision.Reason))
	default:
		return nil, apperr.New(apperr.Forbidden, a.Message(req.Decision.Reason))
	}
}

// Require gates a route on action.
func (f *Factory) Require(a access.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := f.Authorize(c, a)
		if err != nil {
			Respond(c, err)
			return
		}
		c.Set(requestKey, req)
		c.Set(middleware.SubjectKey, req.Identity.ID)
		if f.limit != nil {
			f.limit(c)
			return
		}
		c.Next()
	}
}

// FromContext returns the Request stored by Require, or nil on ungated routes.
func FromContext(c *gin.Context) *Request {
	v, ok := c.Get(requestKey)
	if !ok {
		return nil
	}
	req, _ := v.(*Request)
	return req
}
