package news

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dwusrc/dwu-src-web-application-sub002/internal/models"
)

// MaxLimit caps how many articles one listing returns.
const MaxLimit = 50

type Service struct {
	repo Repository
}

func NewService(r Repository) *Service { return &Service{repo: r} }

// Latest returns published articles, newest first. limit <= 0 or above MaxLimit means MaxLimit.
func (s *Service) Latest(ctx context.Context, limit int) ([]*models.NewsArticle, error) {
	if limit <= 0 || limit > MaxLimit {
		limit = MaxLimit
	}
	return s.repo.ListPublished(ctx, int64(limit))
}

// Publish stores an article; an empty ID is filled in.
func (s *Service) Publish(ctx context.Context, a *models.NewsArticle) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	return s.repo.Create(ctx, a)
}
