package profiles

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dwusrc/dwu-src-web-application-sub002/internal/models"
)

var (
	// ErrExists is returned when a profile for the identity already exists.
	ErrExists = errors.New("profile already exists")
	// ErrNotFound is returned by updates that match no profile.
	ErrNotFound = errors.New("profile not found")
)

// Assignment is the administrative part of a profile.
type Assignment struct {
	Role          models.Role
	SRCDepartment string
	IsActive      bool
}

// Repository defines persistence operations for profiles
type Repository interface {
	Insert(ctx context.Context, p *models.Profile) error
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	Assign(ctx context.Context, id string, a Assignment, at time.Time) error
}

// MongoRepository implements Repository using the profiles collection.
// The identity id is the document _id, so inserts are unique per identity.
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Insert(ctx context.Context, p *models.Profile) error {
	if _, err := r.col.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrExists
		}
		return err
	}
	return nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *MongoRepository) Assign(ctx context.Context, id string, a Assignment, at time.Time) error {
	set := bson.M{"role": a.Role, "isActive": a.IsActive, "updatedAt": at}
	update := bson.M{"$set": set}
	if a.SRCDepartment == "" {
		update["$unset"] = bson.M{"srcDepartment": ""}
	} else {
		set["srcDepartment"] = a.SRCDepartment
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MemoryRepository is an in-process Repository for local development and tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	store map[string]*models.Profile
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: map[string]*models.Profile{}}
}

func (m *MemoryRepository) Insert(_ context.Context, p *models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[p.ID]; ok {
		return ErrExists
	}
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id string) (*models.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryRepository) Assign(_ context.Context, id string, a Assignment, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return ErrNotFound
	}
	p.Role = a.Role
	p.SRCDepartment = a.SRCDepartment
	p.IsActive = a.IsActive
	p.UpdatedAt = at
	return nil
}
