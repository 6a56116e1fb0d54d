package models

// DatasetAnalysis bundles everything the engine produced for one dataset
type DatasetAnalysis struct {
	DatasetID      string          `json:"dataset_id"`
	DatasetTitle   string          `json:"dataset_title"`
	Visualizations []Visualization `json:"visualizations"`
	Insights       []string        `json:"insights"`
	Domain         string          `json:"domain,omitempty"`
	QualityScore   float64         `json:"quality_score"`
}

// ComparisonEntry is one dataset's contribution to a cross-dataset comparison
type ComparisonEntry struct {
	DatasetID    string  `json:"dataset_id"`
	DatasetTitle string  `json:"dataset_title"`
	Metric       string  `json:"metric"`
	Mean         float64 `json:"mean"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
}

// Comparison lines up a shared metric across the answered datasets
type Comparison struct {
	Metric  string            `json:"metric"`
	Entries []ComparisonEntry `json:"entries"`
	Summary string            `json:"summary"`
}

// QueryResult is the top-level answer envelope for a free-text question.
// Created once per query, immutable, never persisted.
type QueryResult struct {
	Question       string            `json:"question"`
	Answer         string            `json:"answer"`
	Datasets       []Dataset         `json:"datasets"`
	Visualizations []Visualization   `json:"visualizations"`
	Insights       []string          `json:"insights"`
	Analyses       []DatasetAnalysis `json:"analyses,omitempty"`
	Comparison     *Comparison       `json:"comparison,omitempty"`
}
