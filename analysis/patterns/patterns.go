// Package patterns runs the trend, correlation, distribution, categorical,
// and geographic detectors over a parsed table and emits ranked
// visualizations with embedded insights. Every detector fails soft: when
// its preconditions are not met it contributes nothing instead of erroring.
package patterns

import (
	"github.com/google/uuid"

	"github.com/AtlasData/atlas-insight-go/analysis"
	"github.com/AtlasData/atlas-insight-go/analysis/schema"
	"github.com/AtlasData/atlas-insight-go/analysis/tabular"
	"github.com/AtlasData/atlas-insight-go/pkg/models"
)

// Analyzer runs the full detector battery
type Analyzer struct {
	cfg analysis.Config
}

// NewAnalyzer creates a pattern analyzer
func NewAnalyzer(cfg analysis.Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Analyze merges every detector's output in rank order (time-series,
// correlation, distribution, categorical, geographic) and caps the total.
// It never errors for a parseable table; an empty table yields an empty
// slice.
func (a *Analyzer) Analyze(s *schema.InferredSchema, table *tabular.Table) []models.Visualization {
	if table.IsEmpty() {
		return []models.Visualization{}
	}

	merged := []models.Visualization{}
	merged = append(merged, a.detectTimeSeries(table)...)
	merged = append(merged, a.detectCorrelation(table)...)
	merged = append(merged, a.detectDistribution(table)...)
	merged = append(merged, a.detectCategorical(s, table)...)
	merged = append(merged, a.detectGeographic(table)...)

	if len(merged) > a.cfg.MaxVisualizations {
		merged = merged[:a.cfg.MaxVisualizations]
	}
	return merged
}

// primaryNumeric picks the first numeric column
func primaryNumeric(table *tabular.Table) (string, bool) {
	if len(table.NumericColumns) == 0 {
		return "", false
	}
	return table.NumericColumns[0], true
}

// primaryCategorical picks the first categorical column that can act as a
// grouping dimension: identifier-role fields and near-unique columns make
// useless groups.
func primaryCategorical(s *schema.InferredSchema, table *tabular.Table) (string, bool) {
	for _, name := range table.CategoricalColumns {
		if field := s.Field(name); field != nil && field.Role == schema.RoleIdentifier {
			continue
		}
		profile := table.Summary[name]
		if profile == nil || profile.UniqueCount < 2 {
			continue
		}
		if profile.UniqueCount >= table.RowCount() && table.RowCount() > 2 {
			continue
		}
		return name, true
	}
	return "", false
}

func newID() string { return uuid.New().String() }
