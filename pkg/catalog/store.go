// Package catalog implements the dataset catalog the insight engine
// consults. The engine treats it as an external collaborator; both an
// in-memory store and a SQLite-backed store satisfy the same interface.
package catalog

import (
	"context"
	"errors"

	"github.com/AtlasData/atlas-insight-go/pkg/models"
)

// ErrNotFound is returned when a dataset ID does not exist
var ErrNotFound = errors.New("dataset not found")

// Store is the catalog persistence interface
type Store interface {
	ListDatasets(ctx context.Context, filter models.DatasetFilter) ([]models.Dataset, error)
	GetDataset(ctx context.Context, id string) (*models.Dataset, error)
	SaveDataset(ctx context.Context, ds *models.Dataset) error
	DeleteDataset(ctx context.Context, id string) error
	SaveProfile(ctx context.Context, id string, profile *models.DatasetProfile) error
	Close() error
}

// applyFilter implements the shared filter semantics for both stores
func applyFilter(datasets []models.Dataset, filter models.DatasetFilter) []models.Dataset {
	out := make([]models.Dataset, 0, len(datasets))
	for _, ds := range datasets {
		if filter.Category != "" && ds.Category != filter.Category {
			continue
		}
		if filter.Featured != nil && ds.Featured != *filter.Featured {
			continue
		}
		out = append(out, ds)
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out
}
