package patterns

import (
	"fmt"
	"sort"

	"github.com/AtlasData/atlas-insight-go/analysis/schema"
	"github.com/AtlasData/atlas-insight-go/analysis/tabular"
	"github.com/AtlasData/atlas-insight-go/pkg/models"
)

// categoryGroup is one group's aggregate of the primary metric
type categoryGroup struct {
	Label string
	Mean  float64
	Count int
}

// detectCategorical groups the primary numeric column by the primary
// categorical column and ranks the per-group averages. This is also the
// fallback when a date-like column (month names, quarters) fails temporal
// parsing and stays categorical.
func (a *Analyzer) detectCategorical(s *schema.InferredSchema, table *tabular.Table) []models.Visualization {
	category, ok := primaryCategorical(s, table)
	if !ok {
		return nil
	}
	metric, ok := primaryNumeric(table)
	if !ok {
		return nil
	}

	groups := groupMeans(table, category, metric)
	if len(groups) == 0 {
		return nil
	}

	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Mean > groups[j].Mean })
	if len(groups) > a.cfg.MaxCategoryGroups {
		groups = groups[:a.cfg.MaxCategoryGroups]
	}

	top := groups[0]
	bottom := groups[len(groups)-1]

	insights := []models.DataInsight{{
		Type:        models.InsightThreshold,
		Title:       fmt.Sprintf("%s leads on %s", top.Label, metric),
		Description: fmt.Sprintf("%s averages %.2f %s, the highest of %d %s groups", top.Label, top.Mean, metric, len(groups), category),
		Confidence:  0.8,
		Impact:      models.ImpactMedium,
		Data:        map[string]any{"top": top.Label, "top_mean": top.Mean, "groups": len(groups)},
	}}

	if bottom.Mean > 0 && top.Mean/bottom.Mean > a.cfg.CategoryGapRatio {
		insights = append(insights, models.DataInsight{
			Type:        models.InsightThreshold,
			Title:       "Significant Performance Gap",
			Description: fmt.Sprintf("%s outperforms %s by %.1fx on %s", top.Label, bottom.Label, top.Mean/bottom.Mean, metric),
			Confidence:  0.85,
			Impact:      models.ImpactHigh,
			Data:        map[string]any{"ratio": top.Mean / bottom.Mean, "top": top.Label, "bottom": bottom.Label},
			Recommendations: []string{
				fmt.Sprintf("Compare what distinguishes %s from %s", top.Label, bottom.Label),
			},
		})
	}

	data := make([]map[string]any, 0, len(groups))
	for _, g := range groups {
		data = append(data, map[string]any{
			category: g.Label,
			metric:   g.Mean,
			"count":  g.Count,
		})
	}

	return []models.Visualization{{
		ID:          newID(),
		Title:       fmt.Sprintf("%s by %s", metric, category),
		Type:        models.ChartBar,
		Data:        data,
		Insights:    insights,
		XAxis:       category,
		YAxis:       metric,
		Description: fmt.Sprintf("Average %s per %s group, highest first", metric, category),
		Purpose:     "comparison",
	}}
}

// groupMeans computes the per-group average of a metric, preserving
// first-encounter order before ranking.
func groupMeans(table *tabular.Table, category, metric string) []categoryGroup {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	var order []string

	for _, row := range table.Rows {
		cv, ok := row[category]
		if !ok || cv.IsNull() {
			continue
		}
		label, ok := cv.AsText()
		if !ok {
			continue
		}
		mv, ok := row[metric]
		if !ok || mv.IsNull() {
			continue
		}
		f, ok := mv.AsNumber()
		if !ok {
			continue
		}
		if _, seen := counts[label]; !seen {
			order = append(order, label)
		}
		sums[label] += f
		counts[label]++
	}

	groups := make([]categoryGroup, 0, len(order))
	for _, label := range order {
		groups = append(groups, categoryGroup{
			Label: label,
			Mean:  sums[label] / float64(counts[label]),
			Count: counts[label],
		})
	}
	return groups
}
