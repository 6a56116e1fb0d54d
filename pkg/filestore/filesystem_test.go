package filestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSystemStoreRoundTrip(t *testing.T) {
	store, err := NewFileSystemStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "sets/gdp.csv", "country,gdp\nUS,21000\n"))

	got, err := store.Fetch(ctx, "sets/gdp.csv")
	require.NoError(t, err)
	assert.Equal(t, "country,gdp\nUS,21000\n", got)

	require.NoError(t, store.Delete(ctx, "sets/gdp.csv"))
	_, err = store.Fetch(ctx, "sets/gdp.csv")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileSystemStoreFetchMissing(t *testing.T) {
	store, err := NewFileSystemStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Fetch(context.Background(), "missing.csv")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileSystemStoreRejectsTraversal(t *testing.T) {
	store, err := NewFileSystemStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Fetch(ctx, "../outside.csv")
	assert.Error(t, err)

	_, err = store.Fetch(ctx, "/etc/passwd")
	assert.Error(t, err)

	err = store.Put(ctx, "../outside.csv", "nope")
	assert.Error(t, err)
}

func TestFileSystemStoreEmptyRef(t *testing.T) {
	store, err := NewFileSystemStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Fetch(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotFound)
}
