// Package narrator renders numeric findings into short natural-language
// sentences. Generation is pure string templating over the evidence the
// earlier stages produced; no generative model is involved, and identical
// inputs always produce identical output.
package narrator

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/AtlasData/atlas-insight-go/analysis"
	"github.com/AtlasData/atlas-insight-go/analysis/semantic"
	"github.com/AtlasData/atlas-insight-go/analysis/tabular"
	"github.com/AtlasData/atlas-insight-go/pkg/models"
)

// Input bundles the evidence the narrator renders
type Input struct {
	Visualizations []models.Visualization
	Semantics      *semantic.Analysis
	Table          *tabular.Table
	Category       string
	Title          string
	Question       string
}

// Narrator turns analysis output into ranked sentences
type Narrator struct {
	cfg analysis.Config
}

// NewNarrator creates a narrator
func NewNarrator(cfg analysis.Config) *Narrator {
	return &Narrator{cfg: cfg}
}

// Generate renders the insight sentences, most specific first, capped and
// deduplicated. When a question is supplied, the best-matching insight is
// inserted at position 0. The result is never empty: a generic fallback is
// emitted when no framing fires.
func (n *Narrator) Generate(in Input) []string {
	var sentences []string

	// Detector findings, strongest evidence first
	sentences = append(sentences, insightSentences(in.Visualizations)...)

	// Per-column statistical framings
	if in.Table != nil {
		sentences = append(sentences, n.columnFramings(in.Table)...)
		if s, ok := n.seasonalFraming(in.Table); ok {
			sentences = append(sentences, s)
		}
	}

	// Data-quality framing
	if in.Semantics != nil {
		sentences = append(sentences, n.qualityFraming(in.Semantics))
	}

	// Domain one-liners keyed off the catalog category
	if s, ok := domainFraming(in.Category, in.Title); ok {
		sentences = append(sentences, s)
	}

	sentences = dedupe(sentences)

	if in.Question != "" {
		sentences = promoteQuestionMatch(sentences, in.Question)
	}

	if len(sentences) == 0 {
		sentences = append(sentences, "No strong patterns were detected; further analysis may be needed to uncover deeper structure in this dataset.")
	}
	if len(sentences) > n.cfg.MaxInsightSentences {
		sentences = sentences[:n.cfg.MaxInsightSentences]
	}
	return sentences
}

// insightSentences flattens visualization insights ordered by confidence
// and impact
func insightSentences(visualizations []models.Visualization) []string {
	type ranked struct {
		text  string
		score float64
	}
	impactWeight := map[models.ImpactLevel]float64{
		models.ImpactHigh:   3,
		models.ImpactMedium: 2,
		models.ImpactLow:    1,
	}

	var all []ranked
	for _, viz := range visualizations {
		for _, insight := range viz.Insights {
			all = append(all, ranked{
				text:  ensurePeriod(insight.Description),
				score: insight.Confidence * impactWeight[insight.Impact],
			})
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].score > all[j].score })

	out := make([]string, 0, len(all))
	for _, r := range all {
		out = append(out, r.text)
	}
	return out
}

// columnFramings emits statistical one-liners per numeric column: extreme
// range, mixed signs, and the log-normal shape heuristic.
func (n *Narrator) columnFramings(table *tabular.Table) []string {
	var out []string
	for _, column := range table.NumericColumns {
		nums := table.NumericValues(column)
		if len(nums) < 3 {
			continue
		}
		min, _ := stats.Min(nums)
		max, _ := stats.Max(nums)

		if min > 0 && max/min > 1000 {
			out = append(out, fmt.Sprintf("%s spans several orders of magnitude (%.4g to %.4g); consider a logarithmic axis.", column, min, max))
		}
		if min < 0 && max > 0 {
			out = append(out, fmt.Sprintf("%s mixes positive and negative values, so totals may mask offsetting movements.", column))
		}
		if min > 0 {
			logs := make([]float64, len(nums))
			for i, v := range nums {
				logs[i] = math.Log(v)
			}
			sigma, err := stats.StandardDeviation(logs)
			mean, _ := stats.Mean(nums)
			median, _ := stats.Median(nums)
			if err == nil && sigma < n.cfg.LogNormalSigmaMax && mean > median*n.cfg.LogNormalMeanLift {
				out = append(out, fmt.Sprintf("%s looks approximately log-normal; medians will summarize it better than means.", column))
			}
		}
	}
	return out
}

// seasonalFraming reports when monthly averages of the primary metric swing
// more than the configured ratio between the strongest and weakest month.
func (n *Narrator) seasonalFraming(table *tabular.Table) (string, bool) {
	if len(table.DateColumns) == 0 || len(table.NumericColumns) == 0 {
		return "", false
	}
	dateCol := table.DateColumns[0]
	metric := table.NumericColumns[0]

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
		key := t.Format("January")
		sums[key] += f
		counts[key]++
	}
	if len(counts) < 3 {
		return "", false
	}

	minMonth, maxMonth := "", ""
	minMean, maxMean := math.Inf(1), math.Inf(-1)
	for month, count := range counts {
		mean := sums[month] / float64(count)
		if mean < minMean {
			minMean, minMonth = mean, month
		}
		if mean > maxMean {
			maxMean, maxMonth = mean, month
		}
	}
	if minMean <= 0 {
		return "", false
	}
	swing := (maxMean - minMean) / minMean
	if swing <= n.cfg.SeasonalSwingRatio {
		return "", false
	}
	return fmt.Sprintf("%s shows a seasonal pattern: %s averages %.0f%% above %s.", metric, maxMonth, swing*100, minMonth), true
}

// qualityFraming renders the completeness score into a quality sentence
func (n *Narrator) qualityFraming(sem *semantic.Analysis) string {
	completeness := sem.CompletenessScore
	switch {
	case completeness >= n.cfg.ExcellentNullRatio*100:
		return fmt.Sprintf("Data coverage is excellent: %.0f%% of cells are populated.", completeness)
	case completeness >= n.cfg.GoodNullRatio*100:
		return fmt.Sprintf("Data coverage is good (%.0f%% populated), though some fields have gaps.", completeness)
	default:
		return fmt.Sprintf("Data coverage is concerning: only %.0f%% of cells are populated, so aggregates may be unreliable.", completeness)
	}
}

// domainFraming adds a category-specific one-liner
func domainFraming(category, title string) (string, bool) {
	c := strings.ToLower(category)
	switch {
	case strings.Contains(c, "econom"):
		return fmt.Sprintf("Economic indicators like those in %s are best read alongside inflation-adjusted baselines.", displayTitle(title)), true
	case strings.Contains(c, "health"):
		return fmt.Sprintf("Health statistics in %s should be interpreted per capita where population sizes differ.", displayTitle(title)), true
	case strings.Contains(c, "educat"):
		return fmt.Sprintf("Education metrics in %s often track demographic shifts; compare cohorts, not raw counts.", displayTitle(title)), true
	}
	return "", false
}

// promoteQuestionMatch moves the sentence sharing the most question
// keywords to position 0
func promoteQuestionMatch(sentences []string, question string) []string {
	tokens := strings.Fields(strings.ToLower(question))
	bestIdx := -1
	bestHits := 0
	for i, sentence := range sentences {
		lower := strings.ToLower(sentence)
		hits := 0
		for _, token := range tokens {
			if len(token) > 3 && strings.Contains(lower, token) {
				hits++
			}
		}
		if hits > bestHits {
			bestHits = hits
			bestIdx = i
		}
	}
	if bestIdx <= 0 {
		return sentences
	}
	promoted := sentences[bestIdx]
	rest := append(append([]string{}, sentences[:bestIdx]...), sentences[bestIdx+1:]...)
	return append([]string{promoted}, rest...)
}

func dedupe(sentences []string) []string {
	seen := make(map[string]bool, len(sentences))
	out := make([]string, 0, len(sentences))
	for _, s := range sentences {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func ensurePeriod(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	if strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?") {
		return s
	}
	return s + "."
}

func displayTitle(title string) string {
	if title == "" {
		return "this dataset"
	}
	return title
}
