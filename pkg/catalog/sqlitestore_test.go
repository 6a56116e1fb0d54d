package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/AtlasData/atlas-insight-go/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreCRUD(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	ds := &models.Dataset{
		Title:       "GDP by Country",
		Description: "annual figures",
		Category:    "economics",
		Format:      models.FormatCSV,
		FileRef:     "gdp.csv",
		Featured:    true,
	}
	require.NoError(t, store.SaveDataset(ctx, ds))
	require.NotEmpty(t, ds.ID)

	got, err := store.GetDataset(ctx, ds.ID)
	require.NoError(t, err)
	assert.Equal(t, ds.Title, got.Title)
	assert.Equal(t, models.FormatCSV, got.Format)
	assert.True(t, got.Featured)

	ds.Description = "revised"
	require.NoError(t, store.SaveDataset(ctx, ds))
	got, err = store.GetDataset(ctx, ds.ID)
	require.NoError(t, err)
	assert.Equal(t, "revised", got.Description)

	require.NoError(t, store.DeleteDataset(ctx, ds.ID))
	_, err = store.GetDataset(ctx, ds.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStoreListFilters(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveDataset(ctx, &models.Dataset{Title: "a", Category: "economics", Featured: true}))
	require.NoError(t, store.SaveDataset(ctx, &models.Dataset{Title: "b", Category: "health"}))

	byCategory, err := store.ListDatasets(ctx, models.DatasetFilter{Category: "health"})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "b", byCategory[0].Title)

	featured := true
	byFeatured, err := store.ListDatasets(ctx, models.DatasetFilter{Featured: &featured})
	require.NoError(t, err)
	require.Len(t, byFeatured, 1)
	assert.Equal(t, "a", byFeatured[0].Title)
}

func TestSQLiteStoreProfileRoundTrip(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	ds := &models.Dataset{Title: "profiled"}
	require.NoError(t, store.SaveDataset(ctx, ds))

	profile := &models.DatasetProfile{
		RowCount:     120,
		ColumnCount:  5,
		QualityScore: 91.5,
		Domain:       "finance",
		ProfiledAt:   time.Now().UTC(),
	}
	require.NoError(t, store.SaveProfile(ctx, ds.ID, profile))

	got, err := store.GetDataset(ctx, ds.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Profile)
	assert.Equal(t, 120, got.Profile.RowCount)
	assert.Equal(t, "finance", got.Profile.Domain)
}

func TestSQLiteStoreDeleteMissing(t *testing.T) {
	store := newSQLiteStore(t)
	assert.ErrorIs(t, store.DeleteDataset(context.Background(), "nope"), ErrNotFound)
}
