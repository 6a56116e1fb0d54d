package models

import "time"

// DatasetFormat identifies the on-disk format of a dataset's file
type DatasetFormat string

const (
	FormatCSV  DatasetFormat = "csv"
	FormatJSON DatasetFormat = "json"
)

// Dataset represents a catalogued dataset entry
type Dataset struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Format      DatasetFormat   `json:"format"`
	FileRef     string          `json:"file_ref,omitempty"` // reference into the blob store
	Featured    bool            `json:"featured"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Profile     *DatasetProfile `json:"profile,omitempty"`
}

// DatasetProfile is a lightweight summary refreshed by the profiling scheduler
type DatasetProfile struct {
	RowCount      int       `json:"row_count"`
	ColumnCount   int       `json:"column_count"`
	NumericCount  int       `json:"numeric_count"`
	DateCount     int       `json:"date_count"`
	Completeness  float64   `json:"completeness"`  // 0-100
	QualityScore  float64   `json:"quality_score"` // 0-100
	ProfiledAt    time.Time `json:"profiled_at"`
	EntityType    string    `json:"entity_type,omitempty"`
	Domain        string    `json:"domain,omitempty"`
	MetricFields  []string  `json:"metric_fields,omitempty"`
	TemporalField string    `json:"temporal_field,omitempty"`
}

// DatasetFilter narrows catalog listings
type DatasetFilter struct {
	Category string
	Featured *bool
	Limit    int
}
