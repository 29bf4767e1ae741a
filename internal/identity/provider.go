// Package identity is the portal's auth provider: it owns identities and their
// password hashes. Profiles are stored separately and keyed by the identity id.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"

	"github.com/dwusrc/dwu-src-web-application-sub002/internal/models"
)

var (
	ErrEmailTaken         = errors.New("identity: email already registered")
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
)

// Provider creates and authenticates identities.
type Provider struct {
	repo   Repository
	params *argon2id.Params
}

func NewProvider(r Repository) *Provider {
	return &Provider{repo: r, params: argon2id.DefaultParams}
}

// WithParams overrides the argon2id cost parameters (tests use cheaper ones).
func (p *Provider) WithParams(params *argon2id.Params) *Provider {
	p.params = params
	return p
}

func normalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

// SignUp creates a new identity for email/password.
func (p *Provider) SignUp(ctx context.Context, email, password string) (*models.Identity, error) {
	hash, err := argon2id.CreateHash(password, p.params)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	id := &models.Identity{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(email),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := p.repo.Insert(ctx, id); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("insert identity: %w", err)
	}
	return id, nil
}

// SignIn returns the identity when the password matches.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*models.Identity, error) {
	id, err := p.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("lookup identity: %w", err)
	}
	if id == nil {
		return nil, ErrInvalidCredentials
	}
	ok, err := argon2id.ComparePasswordAndHash(password, id.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("compare password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return id, nil
}

// Get returns the identity or (nil, nil).
func (p *Provider) Get(ctx context.Context, id string) (*models.Identity, error) {
	return p.repo.GetByID(ctx, id)
}

// Lookup finds an identity by email, or (nil, nil).
func (p *Provider) Lookup(ctx context.Context, email string) (*models.Identity, error) {
	return p.repo.GetByEmail(ctx, normalizeEmail(email))
}

// Delete removes an identity; used to compensate a failed sign-up.
func (p *Provider) Delete(ctx context.Context, id string) error {
	return p.repo.Delete(ctx, id)
}
