package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryTokenRevocationStore_Revoke(t *testing.T) {
	store := NewInMemoryTokenRevocationStore()
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "jti-1", time.Minute))

	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	// Other JTIs are unaffected
	revoked, err = store.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryTokenRevocationStore_ExpiredEntryIsCleared(t *testing.T) {
	store := NewInMemoryTokenRevocationStore()
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "jti-1", -time.Second))

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryTokenRevocationStore_RevokeUser(t *testing.T) {
	store := NewInMemoryTokenRevocationStore()
	ctx := context.Background()

	issuedBefore := time.Now()
	require.NoError(t, store.RevokeUser(ctx, "user-1", time.Hour))

	revoked, err := store.IsUserRevoked(ctx, "user-1", issuedBefore)
	require.NoError(t, err)
	assert.True(t, revoked, "token issued before the cutoff should be rejected")

	issuedAfter := time.Now().Add(time.Second)
	revoked, err = store.IsUserRevoked(ctx, "user-1", issuedAfter)
	require.NoError(t, err)
	assert.False(t, revoked, "token issued after the cutoff should pass")

	revoked, err = store.IsUserRevoked(ctx, "user-2", issuedBefore)
	require.NoError(t, err)
	assert.False(t, revoked, "other users are unaffected")
}
