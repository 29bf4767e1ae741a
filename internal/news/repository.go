package news

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dwusrc/dwu-src-web-application-sub002/internal/models"
)

type Repository interface {
	Create(ctx context.Context, a *models.NewsArticle) error
	ListPublished(ctx context.Context, limit int64) ([]*models.NewsArticle, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (m *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := m.col.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "published", Value: 1}, {Key: "createdAt", Value: -1}}})
	return err
}

func (m *MongoRepository) Create(ctx context.Context, a *models.NewsArticle) error {
	_, err := m.col.InsertOne(ctx, a)
	return err
}

func (m *MongoRepository) ListPublished(ctx context.Context, limit int64) ([]*models.NewsArticle, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := m.col.Find(ctx, bson.M{"published": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.NewsArticle{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type MemoryRepository struct {
	mu    sync.RWMutex
	items []*models.NewsArticle
}

func NewMemoryRepository() *MemoryRepository { return &MemoryRepository{} }

func (m *MemoryRepository) Create(_ context.Context, a *models.NewsArticle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.items = append(m.items, &cp)
	return nil
}

func (m *MemoryRepository) ListPublished(_ context.Context, limit int64) ([]*models.NewsArticle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*models.NewsArticle{}
	for _, a := range m.items {
		if a.Published {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}
