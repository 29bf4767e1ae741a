package departments

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dwusrc/dwu-src-web-application-sub002/internal/models"
)

// President is the department whose members may delete reports.
const President = "President"

// Defaults seeded by ensure-indexes on a fresh database.
var Defaults = []string{President, "Vice President", "Secretary", "Treasurer", "Academic Affairs", "Welfare", "Sports", "Public Relations"}

type Service struct {
	repo Repository
}

func NewService(r Repository) *Service { return &Service{repo: r} }

// ListActive returns active departments ordered by name.
func (s *Service) ListActive(ctx context.Context) ([]*models.Department, error) {
	return s.repo.ListActive(ctx)
}

// Seed upserts the named departments as active.
func (s *Service) Seed(ctx context.Context, names ...string) error {
	now := time.Now().UTC()
	for _, n := range names {
		d := &models.Department{ID: uuid.NewString(), Name: n, IsActive: true, CreatedAt: now}
		if err := s.Put(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

// Put upserts a department by name.
func (s *Service) Put(ctx context.Context, d *models.Department) error {
	return s.repo.Upsert(ctx, d)
}
