package storage_test

import (
	"path/filepath"
	"testing"

	"github.com/aaravmahajanofficial/storefront/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore(t *testing.T) {
	ctx := t.Context()

	store, err := storage.OpenSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	t.Run("Missing Key", func(t *testing.T) {
		value, found, err := store.Get(ctx, "cart:none")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Empty(t, value)
	})

	t.Run("Set Then Get", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "cart:a", "first"))

		value, found, err := store.Get(ctx, "cart:a")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "first", value)
	})

	t.Run("Set Overwrites", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "cart:a", "second"))

		value, _, err := store.Get(ctx, "cart:a")
		require.NoError(t, err)
		assert.Equal(t, "second", value)
	})

	t.Run("Remove Is Idempotent", func(t *testing.T) {
		require.NoError(t, store.Remove(ctx, "cart:a"))
		require.NoError(t, store.Remove(ctx, "cart:a"))

		_, found, err := store.Get(ctx, "cart:a")
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	ctx := t.Context()
	path := filepath.Join(t.TempDir(), "carts.db")

	store, err := storage.OpenSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "cart:persisted", `{"id":"c1"}`))
	require.NoError(t, store.Close())

	reopened, err := storage.OpenSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	value, found, err := reopened.Get(ctx, "cart:persisted")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"id":"c1"}`, value)
}
