package sessions

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository provides session persistence operations.
// Lookups return (nil, nil) when the refresh token is unknown.
type Repository interface {
	Create(ctx context.Context, s *Session) error
	// ConsumeByRefresh atomically removes and returns the session so a refresh token is usable once.
	ConsumeByRefresh(ctx context.Context, refresh string) (*Session, error)
	DeleteByRefresh(ctx context.Context, refresh string) error
	// LinkSuccessor remembers for grace that refresh was rotated into next.
	LinkSuccessor(ctx context.Context, refresh, next string, grace time.Duration) error
	// Successor returns the live session refresh was rotated into, if the link has not lapsed.
	Successor(ctx context.Context, refresh string) (*Session, error)
}

// MongoRepository implements Repository using a Mongo collection.
// Rotation links share the collection with sessions and are told apart by rotatedTo.
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

// EnsureIndexes creates the unique refresh-token index and a TTL index on expiresAt.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "refreshToken", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
	})
	return err
}

func (r *MongoRepository) Create(ctx context.Context, s *Session) error {
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.ExpiresAt.IsZero() {
		s.ExpiresAt = now.Add(7 * 24 * time.Hour)
	}
	_, err := r.col.InsertOne(ctx, s)
	return err
}

func sessionFilter(refresh string) bson.M {
	return bson.M{"refreshToken": refresh, "rotatedTo": bson.M{"$exists": false}}
}

func (r *MongoRepository) ConsumeByRefresh(ctx context.Context, refresh string) (*Session, error) {
	var s Session
	if err := r.col.FindOneAndDelete(ctx, sessionFilter(refresh)).Decode(&s); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *MongoRepository) DeleteByRefresh(ctx context.Context, refresh string) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"refreshToken": refresh})
	return err
}

func (r *MongoRepository) LinkSuccessor(ctx context.Context, refresh, next string, grace time.Duration) error {
	now := time.Now().UTC()
	_, err := r.col.InsertOne(ctx, bson.M{
		"refreshToken": refresh,
		"rotatedTo":    next,
		"createdAt":    now,
		"expiresAt":    now.Add(grace),
	})
	return err
}

func (r *MongoRepository) Successor(ctx context.Context, refresh string) (*Session, error) {
	var link struct {
		RotatedTo string `bson:"rotatedTo"`
	}
	filter := bson.M{
		"refreshToken": refresh,
		"rotatedTo":    bson.M{"$exists": true},
		"expiresAt":    bson.M{"$gt": time.Now().UTC()},
	}
	if err := r.col.FindOne(ctx, filter).Decode(&link); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	var s Session
	if err := r.col.FindOne(ctx, sessionFilter(link.RotatedTo)).Decode(&s); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	if s.Expired(time.Now().UTC()) {
		return nil, nil
	}
	return &s, nil
}
