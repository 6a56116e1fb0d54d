package patterns

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/AtlasData/atlas-insight-go/analysis/tabular"
	"github.com/AtlasData/atlas-insight-go/pkg/models"
)

// histogramBin is one equal-width bucket of the primary numeric column
type histogramBin struct {
	Low   float64
	High  float64
	Count int
}

// detectDistribution profiles the primary numeric column: equal-width
// histogram, IQR outliers, and a skewness classification. Requires at
// least the configured minimum of values.
func (a *Analyzer) detectDistribution(table *tabular.Table) []models.Visualization {
	column, ok := primaryNumeric(table)
	if !ok {
		return nil
	}
	nums := table.NumericValues(column)
	if len(nums) < a.cfg.MinDistributionValues {
		return nil
	}

	mean, _ := stats.Mean(nums)
	median, _ := stats.Median(nums)
	stdDev, _ := stats.StandardDeviation(nums)
	min, _ := stats.Min(nums)
	max, _ := stats.Max(nums)

	bins := a.buildHistogram(nums, min, max)
	outliers := iqrOutliers(nums, a.cfg.IQRMultiplier)

	// Skewness approximation: (mean - median) / stdDev
	skew := 0.0
	if stdDev > 0 {
		skew = (mean - median) / stdDev
	}
	shape := "normal"
	switch {
	case skew > a.cfg.SkewThreshold:
		shape = "right-skewed"
	case skew < -a.cfg.SkewThreshold:
		shape = "left-skewed"
	}

	insights := []models.DataInsight{{
		Type:        models.InsightDistribution,
		Title:       fmt.Sprintf("%s distribution is %s", column, shape),
		Description: fmt.Sprintf("%s has mean %.2f, median %.2f, and standard deviation %.2f across %d values (%s)", column, mean, median, stdDev, len(nums), shape),
		Confidence:  0.8,
		Impact:      models.ImpactMedium,
		Data: map[string]any{
			"mean":    mean,
			"median":  median,
			"std_dev": stdDev,
			"skew":    skew,
			"shape":   shape,
		},
	}}

	if len(outliers) > 0 {
		insights = append(insights, models.DataInsight{
			Type:        models.InsightAnomaly,
			Title:       fmt.Sprintf("%d outliers in %s", len(outliers), column),
			Description: fmt.Sprintf("%d of %d values fall outside the interquartile fences for %s", len(outliers), len(nums), column),
			Confidence:  0.85,
			Impact:      outlierImpact(len(outliers), len(nums)),
			Data:        map[string]any{"outlier_count": len(outliers), "sample": sampleFloats(outliers, 5)},
			Recommendations: []string{
				"Review the flagged values for data entry errors before aggregating",
			},
		})
	}

	data := make([]map[string]any, 0, len(bins))
	for _, bin := range bins {
		data = append(data, map[string]any{
			"range": fmt.Sprintf("%.2f - %.2f", bin.Low, bin.High),
			"count": bin.Count,
		})
	}

	return []models.Visualization{{
		ID:          newID(),
		Title:       fmt.Sprintf("Distribution of %s", column),
		Type:        models.ChartDistribution,
		Data:        data,
		Insights:    insights,
		XAxis:       column,
		YAxis:       "count",
		Description: fmt.Sprintf("Equal-width histogram of %s with %d buckets", column, len(bins)),
		Purpose:     "distribution",
	}}
}

// buildHistogram buckets values into min(max bins, ceil(sqrt(n)))
// equal-width bins; the last bin is inclusive of the maximum, so the sum of
// bin counts always equals the number of values.
func (a *Analyzer) buildHistogram(nums []float64, min, max float64) []histogramBin {
	count := int(math.Ceil(math.Sqrt(float64(len(nums)))))
	if count > a.cfg.MaxDistributionBins {
		count = a.cfg.MaxDistributionBins
	}
	if count < 1 {
		count = 1
	}
	width := (max - min) / float64(count)
	if width == 0 {
		return []histogramBin{{Low: min, High: max, Count: len(nums)}}
	}

	bins := make([]histogramBin, count)
	for i := range bins {
		bins[i].Low = min + width*float64(i)
		bins[i].High = min + width*float64(i+1)
	}
	for _, n := range nums {
		idx := int((n - min) / width)
		if idx >= count {
			idx = count - 1 // max lands in the last bucket
		}
		bins[idx].Count++
	}
	return bins
}

// iqrOutliers returns values outside Q1-k*IQR .. Q3+k*IQR
func iqrOutliers(nums []float64, multiplier float64) []float64 {
	if len(nums) < 4 {
		return nil
	}
	q, err := stats.Quartile(nums)
	if err != nil {
		return nil
	}
	iqr := q.Q3 - q.Q1
	lower := q.Q1 - multiplier*iqr
	upper := q.Q3 + multiplier*iqr

	var out []float64
	for _, n := range nums {
		if n < lower || n > upper {
			out = append(out, n)
		}
	}
	return out
}

func outlierImpact(outliers, total int) models.ImpactLevel {
	ratio := float64(outliers) / float64(total)
	switch {
	case ratio > 0.1:
		return models.ImpactHigh
	case ratio > 0.02:
		return models.ImpactMedium
	default:
		return models.ImpactLow
	}
}

func sampleFloats(nums []float64, limit int) []float64 {
	if len(nums) <= limit {
		return nums
	}
	return nums[:limit]
}
