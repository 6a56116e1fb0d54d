package patterns

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/AtlasData/atlas-insight-go/analysis/tabular"
	"github.com/AtlasData/atlas-insight-go/pkg/models"
)

// correlatedPair is one entry of the pairwise correlation matrix
type correlatedPair struct {
	X, Y string
	R    float64
}

// detectCorrelation requires at least two numeric columns. The full
// pairwise Pearson matrix is computed, pairs above the keep threshold are
// ranked by |r|, and the single strongest pair becomes a scatter plot.
func (a *Analyzer) detectCorrelation(table *tabular.Table) []models.Visualization {
	if len(table.NumericColumns) < 2 {
		return nil
	}

	var pairs []correlatedPair
	numeric := table.NumericColumns
	for i := 0; i < len(numeric); i++ {
		for j := i + 1; j < len(numeric); j++ {
			xs, ys := table.PairedNumericValues(numeric[i], numeric[j])
			if len(xs) < 2 {
				continue
			}
			r := stat.Correlation(xs, ys, nil)
			if math.IsNaN(r) || math.Abs(r) <= a.cfg.CorrelationKeep {
				continue
			}
			pairs = append(pairs, correlatedPair{X: numeric[i], Y: numeric[j], R: r})
		}
	}
	if len(pairs) == 0 {
		return nil
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return math.Abs(pairs[i].R) > math.Abs(pairs[j].R)
	})
	best := pairs[0]

	sign := "positive"
	if best.R < 0 {
		sign = "negative"
	}
	strength := "moderate"
	confidence := 0.7
	impact := models.ImpactMedium
	if math.Abs(best.R) > a.cfg.CorrelationStrong {
		strength = "strong"
		confidence = 0.9
		impact = models.ImpactHigh
	}

	insight := models.DataInsight{
		Type:        models.InsightCorrelation,
		Title:       fmt.Sprintf("%s %s correlation", strengthTitle(strength), sign),
		Description: fmt.Sprintf("%s and %s show a %s %s correlation (r = %.2f)", best.X, best.Y, strength, sign, best.R),
		Confidence:  confidence,
		Impact:      impact,
		Data: map[string]any{
			"r":     best.R,
			"x":     best.X,
			"y":     best.Y,
			"pairs": len(pairs),
		},
		Recommendations: []string{
			fmt.Sprintf("Investigate whether %s drives %s or both follow a common factor", best.X, best.Y),
		},
	}

	return []models.Visualization{{
		ID:          newID(),
		Title:       fmt.Sprintf("%s vs %s", best.X, best.Y),
		Type:        models.ChartScatter,
		Data:        a.scatterPoints(table, best.X, best.Y),
		Insights:    []models.DataInsight{insight},
		XAxis:       best.X,
		YAxis:       best.Y,
		Description: fmt.Sprintf("Scatter of %s against %s for the strongest correlated pair", best.Y, best.X),
		Purpose:     "correlation",
	}}
}

// scatterPoints samples paired values evenly up to the configured limit
func (a *Analyzer) scatterPoints(table *tabular.Table, x, y string) []map[string]any {
	xs, ys := table.PairedNumericValues(x, y)
	n := len(xs)
	step := 1
	if n > a.cfg.ScatterSampleLimit {
		step = n / a.cfg.ScatterSampleLimit
	}
	points := make([]map[string]any, 0, a.cfg.ScatterSampleLimit)
	for i := 0; i < n && len(points) < a.cfg.ScatterSampleLimit; i += step {
		points = append(points, map[string]any{x: xs[i], y: ys[i]})
	}
	return points
}
