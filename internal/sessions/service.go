package sessions

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/dwusrc/dwu-src-web-application-sub002/pkg/logger"
)

// Service wraps repository operations with business logic
type Service struct {
	repo  Repository
	ttl   time.Duration
	grace time.Duration
}

// DefaultRotationGrace is how long a rotated refresh token keeps resolving to its successor.
const DefaultRotationGrace = 10 * time.Second

func NewService(r Repository, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Service{repo: r, ttl: ttl, grace: DefaultRotationGrace}
}

// WithRotationGrace overrides the rotation grace window; zero makes refresh tokens strictly single use.
func (s *Service) WithRotationGrace(d time.Duration) *Service {
	if d < 0 {
		d = 0
	}
	s.grace = d
	return s
}

// TTL is the refresh session lifetime.
func (s *Service) TTL() time.Duration { return s.ttl }

// CreateSession stores a new refresh session and returns it
func (s *Service) CreateSession(ctx context.Context, sub, email string) (*Session, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sess := &Session{
		RefreshToken: hex.EncodeToString(b),
		Sub:          sub,
		Email:        email,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.ttl),
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Rotate consumes the refresh token and issues a replacement session for the same subject.
// A token rotated within the grace window resolves to the session it was rotated into,
// so concurrent requests carrying the same cookie converge on one successor.
// Returns (nil, nil) when the token is unknown, expired or reused after the window.
func (s *Service) Rotate(ctx context.Context, refresh string) (*Session, error) {
	old, err := s.repo.ConsumeByRefresh(ctx, refresh)
	if err != nil {
		return nil, err
	}
	if old == nil {
		if s.grace <= 0 {
			return nil, nil
		}
		return s.repo.Successor(ctx, refresh)
	}
	if old.Expired(time.Now().UTC()) {
		return nil, nil
	}
	next, err := s.CreateSession(ctx, old.Sub, old.Email)
	if err != nil {
		return nil, err
	}
	if s.grace > 0 {
		if err := s.repo.LinkSuccessor(ctx, refresh, next.RefreshToken, s.grace); err != nil {
			logger.Warnf("sessions: link rotated refresh token: %v", err)
		}
	}
	return next, nil
}

// DeleteRefresh removes the session and, for a token rotated within the grace window,
// the session it was rotated into.
func (s *Service) DeleteRefresh(ctx context.Context, refresh string) error {
	next, err := s.repo.Successor(ctx, refresh)
	if err != nil {
		return err
	}
	if next != nil {
		if err := s.repo.DeleteByRefresh(ctx, next.RefreshToken); err != nil {
			return err
		}
	}
	return s.repo.DeleteByRefresh(ctx, refresh)
}
