package tabular

import (
	"github.com/montanaflynn/stats"
)

// ColumnType is the storage-level classification of a column
type ColumnType string

const (
	ColumnNumeric     ColumnType = "numeric"
	ColumnDate        ColumnType = "date"
	ColumnCategorical ColumnType = "categorical"
	ColumnText        ColumnType = "text"
)

// ColumnProfile is the per-column statistical summary. Profiles are
// produced fresh by the parser and never mutated in place.
type ColumnProfile struct {
	Name         string     `json:"name"`
	InferredType ColumnType `json:"inferred_type"`
	NullCount    int        `json:"null_count"`
	UniqueCount  int        `json:"unique_count"`
	Min          *float64   `json:"min,omitempty"`
	Max          *float64   `json:"max,omitempty"`
	Mean         *float64   `json:"mean,omitempty"`
	Mode         string     `json:"mode,omitempty"`
}

// buildProfile computes the summary for one classified column
func buildProfile(table *Table, name string, colType ColumnType) *ColumnProfile {
	profile := &ColumnProfile{
		Name:         name,
		InferredType: colType,
	}

	seen := make(map[string]int)
	order := make([]string, 0)
	nums := make([]float64, 0, len(table.Rows))

	for _, row := range table.Rows {
		v, ok := row[name]
		if !ok || v.IsNull() {
			profile.NullCount++
			continue
		}
		if text, ok := v.AsText(); ok {
			if _, dup := seen[text]; !dup {
				order = append(order, text)
			}
			seen[text]++
		}
		if colType == ColumnNumeric {
			if f, ok := v.AsNumber(); ok {
				nums = append(nums, f)
			}
		}
	}

	profile.UniqueCount = len(seen)

	if colType == ColumnNumeric && len(nums) > 0 {
		if min, err := stats.Min(nums); err == nil {
			profile.Min = &min
		}
		if max, err := stats.Max(nums); err == nil {
			profile.Max = &max
		}
		if mean, err := stats.Mean(nums); err == nil {
			profile.Mean = &mean
		}
	}

	if colType == ColumnCategorical || colType == ColumnText {
		// Mode: most frequent value, ties broken by first encounter
		best := ""
		bestCount := 0
		for _, value := range order {
			if seen[value] > bestCount {
				best = value
				bestCount = seen[value]
			}
		}
		profile.Mode = best
	}

	return profile
}
