package departments

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
	ListActive(ctx context.Context) ([]*models.Department, error)
	Upsert(ctx context.Context, d *models.Department) error
}

// MongoRepository reads the src_departments collection.
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (m *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := m.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (m *MongoRepository) ListActive(ctx context.Context) ([]*models.Department, error) {
	cur, err := m.col.Find(ctx, bson.M{"isActive": true}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.Department{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert inserts the department or refreshes it by name, keeping its original id.
func (m *MongoRepository) Upsert(ctx context.Context, d *models.Department) error {
	_, err := m.col.UpdateOne(ctx,
		bson.M{"name": d.Name},
		bson.M{
			"$set":         bson.M{"description": d.Description, "isActive": d.IsActive},
			"$setOnInsert": bson.M{"_id": d.ID, "createdAt": d.CreatedAt},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

type MemoryRepository struct {
	mu     sync.RWMutex
	byName map[string]*models.Department
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byName: map[string]*models.Department{}}
}

func (m *MemoryRepository) ListActive(_ context.Context) ([]*models.Department, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*models.Department{}
	for _, d := range m.byName {
		if d.IsActive {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryRepository) Upsert(_ context.Context, d *models.Department) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *d
	if old, ok := m.byName[d.Name]; ok {
		cp.ID = old.ID
		cp.CreatedAt = old.CreatedAt
	}
	m.byName[d.Name] = &cp
	return nil
}
