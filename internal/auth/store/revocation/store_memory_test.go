package revocation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/pkg/platform/sentinel"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewInMemory().WithClock(func() time.Time { return now })

	t.Run("unknown jti is not revoked", func(t *testing.T) {
		revoked, err := store.IsRevoked(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("revoked jti is denied until expiry", func(t *testing.T) {
		require.NoError(t, store.RevokeToken(ctx, "jti-1", time.Minute))

		revoked, err := store.IsRevoked(ctx, "jti-1")
		require.NoError(t, err)
		assert.True(t, revoked)

		now = now.Add(time.Minute)
		revoked, err = store.IsRevoked(ctx, "jti-1")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("empty jti is ignored", func(t *testing.T) {
		require.NoError(t, store.RevokeToken(ctx, "", time.Minute))
		revoked, err := store.IsRevoked(ctx, "")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("non-positive ttl is rejected", func(t *testing.T) {
		err := store.RevokeToken(ctx, "jti-2", 0)
		require.Error(t, err)
		assert.True(t, errors.Is(err, sentinel.ErrInvalidState))
	})
}
