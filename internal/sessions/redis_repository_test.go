package sessions

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisRepository_CreateDelete(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	repo := NewRedisRepository(client, "test:session:")

	ctx := context.Background()
	s := &Session{
		RefreshToken: "r1",
		Sub:          "sub-1",
		CreatedAt:    time.Now().UTC(),
		ExpiresAt:    time.Now().UTC().Add(5 * time.Second),
	}

	require.NoError(t, repo.Create(ctx, s))
	require.True(t, m.Exists("test:session:r1"))
	require.Greater(t, m.TTL("test:session:r1"), time.Duration(0))

	require.NoError(t, repo.DeleteByRefresh(ctx, "r1"))
	require.False(t, m.Exists("test:session:r1"))
	got, err := repo.ConsumeByRefresh(ctx, "r1")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestRedisRepository_ConsumeIsSingleUse(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	repo := NewRedisRepository(client, "")
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &Session{RefreshToken: "r3", Sub: "sub-3", ExpiresAt: time.Now().UTC().Add(time.Minute)}))
	require.True(t, m.Exists("session:r3"))

	got, err := repo.ConsumeByRefresh(ctx, "r3")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "sub-3", got.Sub)
	require.False(t, m.Exists("session:r3"))

	again, err := repo.ConsumeByRefresh(ctx, "r3")
	require.NoError(t, err)
	require.Nil(t, again)
}

func TestRedisRepository_TTLExpiry(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	repo := NewRedisRepository(client, "test:session:")

	ctx := context.Background()
	s := &Session{
		RefreshToken: "r2",
		Sub:          "sub-2",
		CreatedAt:    time.Now().UTC(),
		ExpiresAt:    time.Now().UTC().Add(1 * time.Second),
	}

	require.NoError(t, repo.Create(ctx, s))
	require.True(t, m.Exists("test:session:r2"))

	// advance miniredis clock past TTL
	m.FastForward(2 * time.Second)

	got, err := repo.ConsumeByRefresh(ctx, "r2")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestRedisRepository_SuccessorWithinGrace(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	repo := NewRedisRepository(client, "")
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &Session{RefreshToken: "r5", Sub: "sub-5", ExpiresAt: time.Now().UTC().Add(time.Hour)}))
	require.NoError(t, repo.LinkSuccessor(ctx, "r4", "r5", 10*time.Second))

	got, err := repo.Successor(ctx, "r4")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "r5", got.RefreshToken)
	require.True(t, m.Exists("session:r5"), "successor lookup must not consume the session")

	m.FastForward(11 * time.Second)
	got, err = repo.Successor(ctx, "r4")
	require.NoError(t, err)
	require.Nil(t, got)

	missing, err := repo.Successor(ctx, "never-rotated")
	require.NoError(t, err)
	require.Nil(t, missing)
}
