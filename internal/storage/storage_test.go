package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func TestLocalStoreRoundTrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()

	ok, err := store.Exists(ctx, KeyInventory)
	require.NoError(t, err)
	assert.False(t, ok)

	in := doc{Name: "leite mimosa", Price: 1.29}
	require.NoError(t, store.Save(ctx, KeyInventory, in))

	ok, err = store.Exists(ctx, KeyInventory)
	require.NoError(t, err)
	assert.True(t, ok)

	var out doc
	require.NoError(t, store.Load(ctx, KeyInventory, &out))
	assert.Equal(t, in, out)
}

func TestLocalStoreLoadMissing(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	var out doc
	err = store.Load(context.Background(), "missing.json", &out)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStoreKeySanitized(t *testing.T) {
	base := t.TempDir()
	store, err := NewLocalStore(base)
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background(), "../escape.json", doc{}))

	ok, err := store.Exists(context.Background(), "escape.json")
	require.NoError(t, err)
	assert.True(t, ok)
}
