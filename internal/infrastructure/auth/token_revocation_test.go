package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRevocationList_Revoke(t *testing.T) {
	ctx := context.Background()
	list := NewInMemoryRevocationList()

	t.Run("unknown jti is not revoked", func(t *testing.T) {
		revoked, err := list.IsRevoked(ctx, "jti-unknown")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("revoked jti is reported", func(t *testing.T) {
		require.NoError(t, list.Revoke(ctx, "jti-1", time.Hour))

		revoked, err := list.IsRevoked(ctx, "jti-1")
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("entry expires with the token", func(t *testing.T) {
		require.NoError(t, list.Revoke(ctx, "jti-expired", -time.Second))

		revoked, err := list.IsRevoked(ctx, "jti-expired")
		require.NoError(t, err)
		assert.False(t, revoked)
	})
}

func TestInMemoryRevocationList_RevokeUser(t *testing.T) {
	ctx := context.Background()
	list := NewInMemoryRevocationList()

	issuedBefore := time.Now()
	require.NoError(t, list.RevokeUser(ctx, "user-1", time.Hour))

	t.Run("token issued before revocation is rejected", func(t *testing.T) {
		revoked, err := list.IsUserRevoked(ctx, "user-1", issuedBefore)
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("token issued after revocation is accepted", func(t *testing.T) {
		revoked, err := list.IsUserRevoked(ctx, "user-1", time.Now().Add(time.Second))
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("other users are unaffected", func(t *testing.T) {
		revoked, err := list.IsUserRevoked(ctx, "user-2", issuedBefore)
		require.NoError(t, err)
		assert.False(t, revoked)
	})
}
