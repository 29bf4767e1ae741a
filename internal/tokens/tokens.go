package tokens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dwusrc/dwu-src-web-application-sub002/internal/config"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/models"
	"github.com/dwusrc/dwu-src-web-application-sub002/pkg/middleware"
)

// Claims carried by portal access tokens.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 access tokens.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewIssuer(cfg config.JWTConfig) *Issuer {
	return &Issuer{secret: []byte(cfg.Secret), issuer: cfg.Issuer, ttl: cfg.AccessTokenTTL}
}

// TTL is the lifetime of tokens produced by Generate.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// GenerateAccessToken creates a signed JWT access token for the identity
func (i *Issuer) GenerateAccessToken(id *models.Identity) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// mapToken exposes verified claims through the Claims(v) shape shared with OIDC ID tokens.
type mapToken struct {
	claims *Claims
}

func (t *mapToken) Claims(v interface{}) error {
	b, err := json.Marshal(t.claims)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// Verify checks signature, algorithm, issuer and expiry.
func (i *Issuer) Verify(_ context.Context, raw string) (middleware.Token, error) {
	var claims Claims
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if i.issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.issuer))
	}
	tok, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !tok.Valid || claims.Subject == "" {
		return nil, errors.New("invalid access token")
	}
	return &mapToken{claims: &claims}, nil
}

// RevocationTTL verifies raw and returns how long it stays usable, capped at the
// issuer's TTL. Tokens this issuer did not sign are rejected.
func (i *Issuer) RevocationTTL(ctx context.Context, raw string) (time.Duration, error) {
	tok, err := i.Verify(ctx, raw)
	if err != nil {
		return 0, err
	}
	claims := tok.(*mapToken).claims
	if claims.ExpiresAt == nil {
		return 0, fmt.Errorf("exp claim not present")
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl > i.ttl {
		ttl = i.ttl
	}
	return ttl, nil
}
