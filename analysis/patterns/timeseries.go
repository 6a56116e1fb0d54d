package patterns

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"github.com/AtlasData/atlas-insight-go/analysis/tabular"
	"github.com/AtlasData/atlas-insight-go/pkg/models"
)

// TrendDirection labels the slope of a fitted trend
type TrendDirection string

const (
	TrendUpward   TrendDirection = "upward"
	TrendDownward TrendDirection = "downward"
	TrendStable   TrendDirection = "stable"
)

// monthBucket is one calendar-month aggregation of a metric
type monthBucket struct {
	Month string
	Mean  float64
	Count int
}

// detectTimeSeries requires at least one date column and one numeric
// column. Each of the first few numeric columns is bucketed by calendar
// month and fitted with ordinary least squares.
func (a *Analyzer) detectTimeSeries(table *tabular.Table) []models.Visualization {
	if len(table.DateColumns) == 0 || len(table.NumericColumns) == 0 {
		return nil
	}
	dateCol := table.DateColumns[0]

	metrics := table.NumericColumns
	if len(metrics) > a.cfg.MaxTimeSeriesMetrics {
		metrics = metrics[:a.cfg.MaxTimeSeriesMetrics]
	}

	var out []models.Visualization
	for _, metric := range metrics {
		buckets := a.monthlyBuckets(table, dateCol, metric)
		if len(buckets) < a.cfg.MinTimeSeriesBuckets {
			continue
		}
		out = append(out, a.buildTrendVisualization(dateCol, metric, buckets))
	}
	return out
}

// monthlyBuckets builds (date, value) pairs, drops unparsable dates, and
// averages values per YYYY-MM key in ascending order.
func (a *Analyzer) monthlyBuckets(table *tabular.Table, dateCol, metric string) []monthBucket {
	sums := make(map[string]float64)
	counts := make(map[string]int)

	for _, row := range table.Rows {
		dv, ok := row[dateCol]
		if !ok || dv.IsNull() {
			continue
		}
		t, ok := dv.AsTime()
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
		key := t.Format("2006-01")
		sums[key] += f
		counts[key]++
	}

	keys := make([]string, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buckets := make([]monthBucket, 0, len(keys))
	for _, k := range keys {
		buckets = append(buckets, monthBucket{
			Month: k,
			Mean:  sums[k] / float64(counts[k]),
			Count: counts[k],
		})
	}
	return buckets
}

// buildTrendVisualization fits the bucketed values and assembles the line
// chart plus trend and volatility insights.
func (a *Analyzer) buildTrendVisualization(dateCol, metric string, buckets []monthBucket) models.Visualization {
	xs := make([]float64, len(buckets))
	ys := make([]float64, len(buckets))
	for i, b := range buckets {
		xs[i] = float64(i)
		ys[i] = b.Mean
	}

	_, slope := stat.LinearRegression(xs, ys, nil, false)
	mean, _ := stats.Mean(ys)
	stdDev, _ := stats.StandardDeviation(ys)

	direction := TrendStable
	band := a.cfg.TrendSlopeBand * math.Abs(mean)
	switch {
	case slope > band:
		direction = TrendUpward
	case slope < -band:
		direction = TrendDownward
	}

	percentSlope := 0.0
	if mean != 0 {
		percentSlope = slope / math.Abs(mean) * 100
	}
	strength := "weak"
	switch {
	case math.Abs(percentSlope) > a.cfg.TrendStrongPercent:
		strength = "strong"
	case math.Abs(percentSlope) > a.cfg.TrendModeratePercent:
		strength = "moderate"
	}

	insights := []models.DataInsight{{
		Type:        models.InsightTrend,
		Title:       fmt.Sprintf("%s %s trend", strengthTitle(strength), direction),
		Description: fmt.Sprintf("%s shows a %s %s trend of %.1f%% per month across %d months", metric, strength, direction, percentSlope, len(buckets)),
		Confidence:  trendConfidence(strength),
		Impact:      trendImpact(strength),
		Data: map[string]any{
			"slope":         slope,
			"percent_slope": percentSlope,
			"direction":     string(direction),
			"buckets":       len(buckets),
		},
	}}

	if mean != 0 {
		volatility := stdDev / math.Abs(mean)
		if volatility > a.cfg.VolatilityThreshold {
			insights = append(insights, models.DataInsight{
				Type:        models.InsightAnomaly,
				Title:       "High Volatility",
				Description: fmt.Sprintf("%s varies %.0f%% around its monthly mean; individual months deviate widely", metric, volatility*100),
				Confidence:  0.8,
				Impact:      models.ImpactMedium,
				Data:        map[string]any{"volatility": volatility},
			})
		}
	}

	data := make([]map[string]any, 0, len(buckets))
	for _, b := range buckets {
		data = append(data, map[string]any{
			"month": b.Month,
			metric:  b.Mean,
		})
	}

	return models.Visualization{
		ID:          newID(),
		Title:       fmt.Sprintf("%s over time", metric),
		Type:        models.ChartLine,
		Data:        data,
		Insights:    insights,
		XAxis:       dateCol,
		YAxis:       metric,
		Description: fmt.Sprintf("Monthly average of %s bucketed by %s", metric, dateCol),
		Purpose:     "trend",
	}
}

func strengthTitle(strength string) string {
	switch strength {
	case "strong":
		return "Strong"
	case "moderate":
		return "Moderate"
	default:
		return "Weak"
	}
}

func trendConfidence(strength string) float64 {
	switch strength {
	case "strong":
		return 0.9
	case "moderate":
		return 0.75
	default:
		return 0.6
	}
}

func trendImpact(strength string) models.ImpactLevel {
	switch strength {
	case "strong":
		return models.ImpactHigh
	case "moderate":
		return models.ImpactMedium
	default:
		return models.ImpactLow
	}
}
