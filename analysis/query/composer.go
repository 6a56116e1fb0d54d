package query

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/AtlasData/atlas-insight-go/pkg/models"
)

// QuestionIntent is the coarse ask detected in a free-text question
type QuestionIntent string

const (
	IntentTrend        QuestionIntent = "trend"
	IntentComparison   QuestionIntent = "comparison"
	IntentDistribution QuestionIntent = "distribution"
	IntentGeographic   QuestionIntent = "geographic"
	IntentGeneral      QuestionIntent = "general"
)

// DetectIntent classifies the question with the same keyword groups that
// drive chart selection
func DetectIntent(query string) QuestionIntent {
	q := strings.ToLower(query)
	switch {
	case containsAny(q, geographicKeywords):
		return IntentGeographic
	case containsAny(q, trendKeywords):
		return IntentTrend
	case containsAny(q, comparisonKeywords):
		return IntentComparison
	case containsAny(q, distributionKeywords):
		return IntentDistribution
	default:
		return IntentGeneral
	}
}

// answerContext carries everything a template can reference
type answerContext struct {
	Keyword      string
	DatasetNames []string
	TopInsight   string
	ChartTypes   []string
}

// answerTemplate renders the closing call-to-action for one
// (category, intent) cell
type answerTemplate func(ctx answerContext) string

// templateKey addresses the rule table; empty strings act as wildcards
type templateKey struct {
	Category string
	Intent   QuestionIntent
}

// answerTemplates replaces cascading category switch-statements with a
// lookup. Lookup order: exact cell, intent wildcard, global default.
var answerTemplates = map[templateKey]answerTemplate{
	{"economics", IntentTrend}: func(ctx answerContext) string {
		return fmt.Sprintf("Follow the trend lines to see how %s has moved over the covered period.", ctx.Keyword)
	},
	{"health", IntentComparison}: func(ctx answerContext) string {
		return fmt.Sprintf("Compare the bars to see where %s outcomes diverge most.", ctx.Keyword)
	},
	{"", IntentTrend}: func(ctx answerContext) string {
		return fmt.Sprintf("The line charts trace how %s changes over time.", ctx.Keyword)
	},
	{"", IntentComparison}: func(ctx answerContext) string {
		return fmt.Sprintf("The charts rank the groups so differences in %s stand out.", ctx.Keyword)
	},
	{"", IntentDistribution}: func(ctx answerContext) string {
		return fmt.Sprintf("The breakdown shows how %s is distributed across the data.", ctx.Keyword)
	},
	{"", IntentGeographic}: func(ctx answerContext) string {
		return fmt.Sprintf("The map view shows where %s concentrates.", ctx.Keyword)
	},
	{"", IntentGeneral}: func(ctx answerContext) string {
		return fmt.Sprintf("Explore the visualizations to dig further into %s.", ctx.Keyword)
	},
}

func lookupTemplate(category string, intent QuestionIntent) answerTemplate {
	if t, ok := answerTemplates[templateKey{strings.ToLower(category), intent}]; ok {
		return t
	}
	if t, ok := answerTemplates[templateKey{"", intent}]; ok {
		return t
	}
	return answerTemplates[templateKey{"", IntentGeneral}]
}

// ComposeAnswer assembles the templated answer from the matched datasets,
// the top-ranked insight, and the produced chart types. The output is
// deterministic and never empty.
func ComposeAnswer(query string, datasets []models.Dataset, topInsight string, visualizations []models.Visualization) string {
	intent := DetectIntent(query)
	keyword := primaryKeyword(query)

	names := make([]string, 0, len(datasets))
	for _, ds := range datasets {
		names = append(names, ds.Title)
	}

	var sb strings.Builder
	switch len(names) {
	case 0:
		sb.WriteString("No catalogued datasets matched your question.")
	case 1:
		sb.WriteString(fmt.Sprintf("Based on the %s dataset, here is what the data shows.", names[0]))
	default:
		sb.WriteString(fmt.Sprintf("Based on %d datasets (%s), here is what the data shows.", len(names), strings.Join(names, ", ")))
	}

	if topInsight != "" {
		sb.WriteString(" Notably, ")
		sb.WriteString(lowerFirst(strings.TrimRight(strings.TrimSpace(topInsight), ".!?")))
		sb.WriteString(".")
	}

	if types := distinctChartTypes(visualizations); len(types) > 0 {
		sb.WriteString(fmt.Sprintf(" The answer includes %s visualizations.", strings.Join(types, " and ")))
	}

	category := ""
	if len(datasets) > 0 {
		category = datasets[0].Category
	}
	ctx := answerContext{
		Keyword:      keyword,
		DatasetNames: names,
		TopInsight:   topInsight,
		ChartTypes:   distinctChartTypes(visualizations),
	}
	sb.WriteString(" ")
	sb.WriteString(lookupTemplate(category, intent)(ctx))

	return sb.String()
}

// primaryKeyword is the first non-stop-word token of the question
func primaryKeyword(query string) string {
	for _, token := range Tokenize(query) {
		return token
	}
	return "the data"
}

func distinctChartTypes(visualizations []models.Visualization) []string {
	seen := make(map[string]bool)
	var types []string
	for _, viz := range visualizations {
		t := string(viz.Type)
		if !seen[t] {
			seen[t] = true
			types = append(types, t)
		}
	}
	return types
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}
