//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toursales/pkg/testutil/containers"
)

func TestRedisGuard(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	rc := containers.NewRedisContainer(t)
	guard := NewRedisGuard(rc.Client)

	t.Run("first claim wins, second is a duplicate", func(t *testing.T) {
		ok, err := guard.Begin(ctx, "1234567890:1:key-a")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = guard.Begin(ctx, "1234567890:1:key-a")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("release frees the key", func(t *testing.T) {
		ok, err := guard.Begin(ctx, "1234567890:1:key-b")
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, guard.Release(ctx, "1234567890:1:key-b"))

		ok, err = guard.Begin(ctx, "1234567890:1:key-b")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("distinct keys do not collide", func(t *testing.T) {
		ok, err := guard.Begin(ctx, "1234567890:1:key-c")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = guard.Begin(ctx, "1234567890:2:key-c")
		require.NoError(t, err)
		assert.True(t, ok, "same client key on another tour is a new purchase")
	})
}
