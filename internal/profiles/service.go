package profiles

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dwusrc/dwu-src-web-application-sub002/internal/models"
)

// Service encapsulates profile-related business logic
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// Load returns the profile for an identity. A missing profile is (nil, nil):
// callers treat it as "no permissions", not as a failure.
func (s *Service) Load(ctx context.Context, identityID string) (*models.Profile, error) {
	return s.repo.GetByID(ctx, identityID)
}

// CreateStudent inserts the default profile written right after sign-up.
// Not safe to retry blindly: a second insert for the same identity returns ErrExists.
func (s *Service) CreateStudent(ctx context.Context, identityID, fullName string) (*models.Profile, error) {
	p := &models.Profile{
		ID:       identityID,
		Role:     models.RoleStudent,
		IsActive: true,
		FullName: strings.TrimSpace(fullName),
	}
	if err := s.Put(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Put inserts p with the given role and department, stamping its timestamps.
func (s *Service) Put(ctx context.Context, p *models.Profile) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	return s.repo.Insert(ctx, p)
}

// Assign sets role, department and active flag. Only src profiles keep a department.
func (s *Service) Assign(ctx context.Context, identityID string, a Assignment) error {
	if !a.Role.Valid() {
		return fmt.Errorf("unknown role %q", a.Role)
	}
	a.SRCDepartment = strings.TrimSpace(a.SRCDepartment)
	if a.Role != models.RoleSRC {
		a.SRCDepartment = ""
	}
	return s.repo.Assign(ctx, identityID, a, time.Now().UTC())
}
