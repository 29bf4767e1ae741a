package identity

import (
	"context"
	"testing"

	"github.com/alexedwards/argon2id"
	"github.com/stretchr/testify/require"
)

var cheap = &argon2id.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestSignUpAndSignIn(t *testing.T) {
	p := NewProvider(NewMemoryRepository()).WithParams(cheap)
	ctx := context.Background()

	id, err := p.SignUp(ctx, "  Ama@Uni.edu ", "correct-horse")
	require.NoError(t, err)
	require.NotEmpty(t, id.ID)
	require.Equal(t, "ama@uni.edu", id.Email)
	require.NotContains(t, id.PasswordHash, "correct-horse")

	got, err := p.SignIn(ctx, "AMA@uni.edu", "correct-horse")
	require.NoError(t, err)
	require.Equal(t, id.ID, got.ID)

	_, err = p.SignIn(ctx, "ama@uni.edu", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = p.SignIn(ctx, "nobody@uni.edu", "whatever")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	p := NewProvider(NewMemoryRepository()).WithParams(cheap)
	ctx := context.Background()

	_, err := p.SignUp(ctx, "kofi@uni.edu", "password-1")
	require.NoError(t, err)
	_, err = p.SignUp(ctx, "KOFI@uni.edu", "password-2")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestDelete(t *testing.T) {
	p := NewProvider(NewMemoryRepository()).WithParams(cheap)
	ctx := context.Background()

	id, err := p.SignUp(ctx, "esi@uni.edu", "password-1")
	require.NoError(t, err)
	require.NoError(t, p.Delete(ctx, id.ID))

	got, err := p.Get(ctx, id.ID)
	require.NoError(t, err)
	require.Nil(t, got)

	// email is free again after deletion
	_, err = p.SignUp(ctx, "esi@uni.edu", "password-1")
	require.NoError(t, err)
}

func TestLookup(t *testing.T) {
	p := NewProvider(NewMemoryRepository()).WithParams(cheap)
	ctx := context.Background()

	id, err := p.SignUp(ctx, "tau@uni.edu", "password-1")
	require.NoError(t, err)

	got, err := p.Lookup(ctx, " TAU@uni.edu")
	require.NoError(t, err)
	require.Equal(t, id.ID, got.ID)

	got, err = p.Lookup(ctx, "none@uni.edu")
	require.NoError(t, err)
	require.Nil(t, got)
}
