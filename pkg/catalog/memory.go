package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AtlasData/atlas-insight-go/pkg/models"
)

// MemoryStore is an in-memory catalog, used in tests and embedded setups
type MemoryStore struct {
	mu       sync.RWMutex
	datasets map[string]models.Dataset
}

// NewMemoryStore creates an empty in-memory catalog
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{datasets: make(map[string]models.Dataset)}
}

// ListDatasets returns datasets matching the filter, newest first
func (m *MemoryStore) ListDatasets(_ context.Context, filter models.DatasetFilter) ([]models.Dataset, error) {
	m.mu.RLock()
	all := make([]models.Dataset, 0, len(m.datasets))
	for _, ds := range m.datasets {
		all = append(all, ds)
	}
	m.mu.RUnlock()

	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return applyFilter(all, filter), nil
}

// GetDataset returns the dataset or ErrNotFound
func (m *MemoryStore) GetDataset(_ context.Context, id string) (*models.Dataset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ds, ok := m.datasets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &ds, nil
}

// SaveDataset creates or updates a dataset, assigning an ID when missing
func (m *MemoryStore) SaveDataset(_ context.Context, ds *models.Dataset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ds.ID == "" {
		ds.ID = uuid.New().String()
	}
	now := time.Now()
	if ds.CreatedAt.IsZero() {
		ds.CreatedAt = now
	}
	ds.UpdatedAt = now
	m.datasets[ds.ID] = *ds
	return nil
}

// DeleteDataset removes a dataset
func (m *MemoryStore) DeleteDataset(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.datasets[id]; !ok {
		return ErrNotFound
	}
	delete(m.datasets, id)
	return nil
}

// SaveProfile attaches a refreshed profile to a dataset
func (m *MemoryStore) SaveProfile(_ context.Context, id string, profile *models.DatasetProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ds, ok := m.datasets[id]
	if !ok {
		return ErrNotFound
	}
	ds.Profile = profile
	ds.UpdatedAt = time.Now()
	m.datasets[id] = ds
	return nil
}

// Close is a no-op for the in-memory store
func (m *MemoryStore) Close() error { return nil }
