// Package query scores catalogued datasets against free-text questions,
// selects chart types, and composes templated natural-language answers by
// running the full analysis pipeline over the matched datasets.
package query

import (
	"sort"
	"strings"

	"github.com/AtlasData/atlas-insight-go/analysis"
	"github.com/AtlasData/atlas-insight-go/pkg/models"
)

// stopWords are dropped before scoring
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "how": true,
	"in": true, "is": true, "it": true, "me": true, "of": true, "on": true,
	"or": true, "over": true, "show": true, "tell": true, "the": true,
	"to": true, "what": true, "which": true, "with": true, "about": true,
	"do": true, "does": true,
}

// synonymExpansions widens query tokens toward catalog category vocabulary
var synonymExpansions = map[string][]string{
	"gdp":        {"economic", "economy", "finance"},
	"inflation":  {"economic", "economy", "finance"},
	"economy":    {"economic", "finance"},
	"money":      {"economic", "finance"},
	"hospital":   {"health", "healthcare"},
	"disease":    {"health", "healthcare"},
	"patient":    {"health", "healthcare"},
	"school":     {"education"},
	"student":    {"education"},
	"university": {"education"},
	"traffic":    {"transport", "transportation"},
	"bus":        {"transport", "transportation"},
	"train":      {"transport", "transportation"},
	"climate":    {"environment", "environmental"},
	"pollution":  {"environment", "environmental"},
	"emission":   {"environment", "environmental"},
	"population": {"demographics", "census"},
}

// ScoredDataset pairs a dataset with its relevance score
type ScoredDataset struct {
	Dataset models.Dataset
	Score   int
}

// Scorer ranks datasets against queries
type Scorer struct {
	cfg analysis.Config
}

// NewScorer creates a relevance scorer
func NewScorer(cfg analysis.Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Tokenize splits a query, drops stop words, and expands category synonyms
func Tokenize(query string) []string {
	raw := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})

	seen := make(map[string]bool)
	var tokens []string
	add := func(t string) {
		if t != "" && !stopWords[t] && !seen[t] {
			seen[t] = true
			tokens = append(tokens, t)
		}
	}
	for _, t := range raw {
		add(t)
		for _, syn := range synonymExpansions[t] {
			add(syn)
		}
	}
	return tokens
}

// FindRelevantDatasets scores every dataset as 3×title + 2×description +
// 4×category keyword hits, keeps positive scores, and returns the top
// results. When nothing scores it falls back to featured datasets, then to
// the most recent ones.
func (s *Scorer) FindRelevantDatasets(query string, datasets []models.Dataset) []ScoredDataset {
	tokens := Tokenize(query)

	var scored []ScoredDataset
	for _, ds := range datasets {
		score := scoreDataset(ds, tokens)
		if score > 0 {
			scored = append(scored, ScoredDataset{Dataset: ds, Score: score})
		}
	}

	if len(scored) > 0 {
		sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
		if len(scored) > s.cfg.MaxRelevantDatasets {
			scored = scored[:s.cfg.MaxRelevantDatasets]
		}
		return scored
	}

	// Fallback: featured first, then recency
	fallback := make([]models.Dataset, 0, len(datasets))
	for _, ds := range datasets {
		if ds.Featured {
			fallback = append(fallback, ds)
		}
	}
	if len(fallback) == 0 {
		fallback = append(fallback, datasets...)
		sort.SliceStable(fallback, func(i, j int) bool {
			return fallback[i].CreatedAt.After(fallback[j].CreatedAt)
		})
	}
	if len(fallback) > s.cfg.MaxRelevantDatasets {
		fallback = fallback[:s.cfg.MaxRelevantDatasets]
	}

	out := make([]ScoredDataset, 0, len(fallback))
	for _, ds := range fallback {
		out = append(out, ScoredDataset{Dataset: ds, Score: 0})
	}
	return out
}

func scoreDataset(ds models.Dataset, tokens []string) int {
	title := strings.ToLower(ds.Title)
	description := strings.ToLower(ds.Description)
	category := strings.ToLower(ds.Category)

	score := 0
	for _, token := range tokens {
		if strings.Contains(title, token) {
			score += 3
		}
		if strings.Contains(description, token) {
			score += 2
		}
		if strings.Contains(category, token) {
			score += 4
		}
	}
	return score
}
