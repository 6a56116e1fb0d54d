package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/AtlasData/atlas-insight-go/pkg/models"
)

// SQLiteStore provides SQLite-based catalog persistence
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the catalog database and ensures the
// schema exists
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}
	store := &SQLiteStore{db: db}
	if err := store.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS datasets (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		category TEXT,
		format TEXT,
		file_ref TEXT,
		featured INTEGER DEFAULT 0,
		profile TEXT,
		created_at TIMESTAMP,
		updated_at TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_datasets_category ON datasets(category);
	CREATE INDEX IF NOT EXISTS idx_datasets_featured ON datasets(featured);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create catalog tables: %w", err)
	}
	return nil
}

// ListDatasets returns datasets matching the filter, newest first
func (s *SQLiteStore) ListDatasets(ctx context.Context, filter models.DatasetFilter) ([]models.Dataset, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, category, format, file_ref, featured, profile, created_at, updated_at
		FROM datasets ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer rows.Close()

	var datasets []models.Dataset
	for rows.Next() {
		ds, err := scanDataset(rows)
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, *ds)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read datasets: %w", err)
	}
	return applyFilter(datasets, filter), nil
}

// GetDataset returns the dataset or ErrNotFound
func (s *SQLiteStore) GetDataset(ctx context.Context, id string) (*models.Dataset, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, category, format, file_ref, featured, profile, created_at, updated_at
		FROM datasets WHERE id = ?`, id)
	ds, err := scanDataset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return ds, err
}

// SaveDataset inserts or replaces a dataset row
func (s *SQLiteStore) SaveDataset(ctx context.Context, ds *models.Dataset) error {
	if ds.ID == "" {
		ds.ID = uuid.New().String()
	}
	now := time.Now()
	if ds.CreatedAt.IsZero() {
		ds.CreatedAt = now
	}
	ds.UpdatedAt = now

	profileJSON, err := marshalProfile(ds.Profile)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO datasets (id, title, description, category, format, file_ref, featured, profile, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ds.ID, ds.Title, ds.Description, ds.Category, string(ds.Format), ds.FileRef,
		boolToInt(ds.Featured), profileJSON, ds.CreatedAt, ds.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save dataset %s: %w", ds.ID, err)
	}
	return nil
}

// DeleteDataset removes a dataset row
func (s *SQLiteStore) DeleteDataset(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM datasets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete dataset %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveProfile stores a refreshed profile on a dataset row
func (s *SQLiteStore) SaveProfile(ctx context.Context, id string, profile *models.DatasetProfile) error {
	profileJSON, err := marshalProfile(profile)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE datasets SET profile = ?, updated_at = ? WHERE id = ?`,
		profileJSON, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to save profile for dataset %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDataset(row rowScanner) (*models.Dataset, error) {
	var ds models.Dataset
	var format string
	var featured int
	var profileJSON sql.NullString

	err := row.Scan(&ds.ID, &ds.Title, &ds.Description, &ds.Category, &format,
		&ds.FileRef, &featured, &profileJSON, &ds.CreatedAt, &ds.UpdatedAt)
	if err != nil {
		return nil, err
	}
	ds.Format = models.DatasetFormat(format)
	ds.Featured = featured != 0

	if profileJSON.Valid && profileJSON.String != "" {
		var profile models.DatasetProfile
		if err := json.Unmarshal([]byte(profileJSON.String), &profile); err != nil {
			return nil, fmt.Errorf("failed to decode profile for dataset %s: %w", ds.ID, err)
		}
		ds.Profile = &profile
	}
	return &ds, nil
}

func marshalProfile(profile *models.DatasetProfile) (string, error) {
	if profile == nil {
		return "", nil
	}
	b, err := json.Marshal(profile)
	if err != nil {
		return "", fmt.Errorf("failed to encode profile: %w", err)
	}
	return string(b), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
