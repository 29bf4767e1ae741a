package reports

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dwusrc/dwu-src-web-application-sub002/internal/models"
)

// Service defines the report operations used by the handler layer.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service { return &Service{repo: r} }

// Submit stores a new open report authored by authorID.
func (s *Service) Submit(ctx context.Context, authorID, title, content, category string) (*models.Report, error) {
	r := &models.Report{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(title),
		Content:   strings.TrimSpace(content),
		Category:  strings.TrimSpace(category),
		Status:    models.ReportOpen,
		AuthorID:  authorID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Put(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Put stores a report with its own id, defaulting the status to open and the creation time to now.
func (s *Service) Put(ctx context.Context, r *models.Report) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if r.Status == "" {
		r.Status = models.ReportOpen
	}
	return s.repo.Create(ctx, r)
}

// List returns reports newest first.
func (s *Service) List(ctx context.Context, status string) ([]*models.Report, error) {
	return s.repo.List(ctx, Filter{Status: status})
}

// Delete removes a report. Deleting an unknown or already-deleted id returns ErrNotFound.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
