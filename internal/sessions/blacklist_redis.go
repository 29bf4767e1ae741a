package sessions

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Blacklist records revoked access tokens until they would have expired anyway.
// A Blacklist with a nil client is a no-op.
type Blacklist struct {
	client *redis.Client
}

func NewBlacklist(c *redis.Client) *Blacklist {
	return &Blacklist{client: c}
}

func blacklistKey(token string) string { return "blacklist:access:" + token }

// Add stores the token in the blacklist with TTL.
func (b *Blacklist) Add(ctx context.Context, token string, ttl time.Duration) error {
	if b == nil || b.client == nil || ttl <= 0 {
		return nil
	}
	return b.client.Set(ctx, blacklistKey(token), "1", ttl).Err()
}

// Contains returns true when the token exists in the blacklist.
func (b *Blacklist) Contains(ctx context.Context, token string) (bool, error) {
	if b == nil || b.client == nil {
		return false, nil
	}
	exists, err := b.client.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}
