package reports

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dwusrc/dwu-src-web-application-sub002/internal/models"
)

var ErrNotFound = errors.New("report not found")

// Filter narrows List results; zero values match everything.
type Filter struct {
	Status string
}

type Repository interface {
	Create(ctx context.Context, r *models.Report) error
	List(ctx context.Context, f Filter) ([]*models.Report, error)
	Delete(ctx context.Context, id string) error
}

// MongoRepository stores reports in the reports collection, keyed by _id.
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (m *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := m.col.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}})
	return err
}

func (m *MongoRepository) Create(ctx context.Context, r *models.Report) error {
	_, err := m.col.InsertOne(ctx, r)
	return err
}

func (m *MongoRepository) List(ctx context.Context, f Filter) ([]*models.Report, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	cur, err := m.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.Report{}
	for cur.Next(ctx) {
		var r models.Report
		if err := cur.Decode(&r); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, cur.Err()
}

func (m *MongoRepository) Delete(ctx context.Context, id string) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MemoryRepository is a simple in-memory repository used for local development and tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	store map[string]*models.Report
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[string]*models.Report)}
}

func (m *MemoryRepository) Create(_ context.Context, r *models.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.store[r.ID] = &cp
	return nil
}

func (m *MemoryRepository) List(_ context.Context, f Filter) ([]*models.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Report, 0, len(m.store))
	for _, r := range m.store {
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return ErrNotFound
	}
	delete(m.store, id)
	return nil
}
