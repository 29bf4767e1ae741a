package identity

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dwusrc/dwu-src-web-application-sub002/internal/models"
)

// ErrDuplicateEmail is returned by Insert when the email is already registered.
var ErrDuplicateEmail = errors.New("email already registered")

// Repository defines persistence operations for identities.
// Lookups return (nil, nil) when nothing matches.
type Repository interface {
	Insert(ctx context.Context, id *models.Identity) error
	GetByEmail(ctx context.Context, email string) (*models.Identity, error)
	GetByID(ctx context.Context, id string) (*models.Identity, error)
	Delete(ctx context.Context, id string) error
}

// MongoRepository implements Repository using the identities collection
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *MongoRepository) Insert(ctx context.Context, id *models.Identity) error {
	if _, err := r.col.InsertOne(ctx, id); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *MongoRepository) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*models.Identity, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (*models.Identity, error) {
	var id models.Identity
	if err := r.col.FindOne(ctx, filter).Decode(&id); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &id, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// MemoryRepository is an in-process Repository for local development and tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	byID  map[string]*models.Identity
	email map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: map[string]*models.Identity{}, email: map[string]string{}}
}

func (m *MemoryRepository) Insert(_ context.Context, id *models.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(id.Email)
	if _, ok := m.email[key]; ok {
		return ErrDuplicateEmail
	}
	cp := *id
	m.byID[id.ID] = &cp
	m.email[key] = id.ID
	return nil
}

func (m *MemoryRepository) GetByEmail(_ context.Context, email string) (*models.Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.email[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	cp := *m.byID[id]
	return &cp, nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id string) (*models.Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (m *MemoryRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.byID[id]; ok {
		delete(m.email, strings.ToLower(v.Email))
		delete(m.byID, id)
	}
	return nil
}
