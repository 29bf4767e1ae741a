package sessions

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRepository implements Repository using Redis as the backing store.
// Sessions are stored as JSON under "<prefix><refreshToken>" with TTL = expiresAt - now;
// rotation links live under "<prefix>rotated:<refreshToken>".
type RedisRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisRepository creates a Redis-based session repository. Prefix may be empty.
func NewRedisRepository(client *redis.Client, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = "session:"
	}
	return &RedisRepository{client: client, prefix: prefix}
}

func (r *RedisRepository) key(refresh string) string {
	return r.prefix + refresh
}

func (r *RedisRepository) linkKey(refresh string) string {
	return r.prefix + "rotated:" + refresh
}

func (r *RedisRepository) Create(ctx context.Context, s *Session) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	exp := time.Until(s.ExpiresAt)
	if exp <= 0 {
		// ensure a minimal TTL so Redis won't store expired sessions
		exp = time.Second
	}
	return r.client.Set(ctx, r.key(s.RefreshToken), b, exp).Err()
}

func (r *RedisRepository) ConsumeByRefresh(ctx context.Context, refresh string) (*Session, error) {
	var get *redis.StringCmd
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		get = p.Get(ctx, r.key(refresh))
		p.Del(ctx, r.key(refresh))
		return nil
	})
	if err != nil && err != redis.Nil {
		return nil, err
	}
	b, err := get.Bytes()
	return r.decode(ctx, refresh, b, err)
}

func (r *RedisRepository) decode(ctx context.Context, refresh string, b []byte, err error) (*Session, error) {
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	// If session expired from perspective of stored value, treat as missing
	if s.Expired(time.Now().UTC()) {
		_ = r.client.Del(ctx, r.key(refresh)).Err()
		return nil, nil
	}
	return &s, nil
}

func (r *RedisRepository) DeleteByRefresh(ctx context.Context, refresh string) error {
	return r.client.Del(ctx, r.key(refresh), r.linkKey(refresh)).Err()
}

func (r *RedisRepository) LinkSuccessor(ctx context.Context, refresh, next string, grace time.Duration) error {
	return r.client.Set(ctx, r.linkKey(refresh), next, grace).Err()
}

func (r *RedisRepository) Successor(ctx context.Context, refresh string) (*Session, error) {
	next, err := r.client.Get(ctx, r.linkKey(refresh)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	b, err := r.client.Get(ctx, r.key(next)).Bytes()
	return r.decode(ctx, next, b, err)
}
