package query

import (
	"strings"

	"github.com/AtlasData/atlas-insight-go/pkg/models"
)

// Question keyword groups, checked in precedence order: an explicit ask in
// the question always beats the category default.
var (
	geographicKeywords   = []string{"map", "where", "location", "region", "country", "city", "geographic", "across regions"}
	comparisonKeywords   = []string{"compare", "comparison", "versus", "vs", "top", "best", "highest", "lowest", "rank", "difference", "between"}
	trendKeywords        = []string{"trend", "over time", "growth", "change", "history", "evolution", "increase", "decrease", "since"}
	distributionKeywords = []string{"distribution", "percentage", "share", "proportion", "breakdown", "split", "composition"}
)

// categoryDefaults is the fixed per-category fallback encoding
var categoryDefaults = map[string]models.ChartType{
	"economics":      models.ChartBar,
	"economic":       models.ChartBar,
	"finance":        models.ChartBar,
	"health":         models.ChartBar,
	"healthcare":     models.ChartBar,
	"transport":      models.ChartBar,
	"transportation": models.ChartBar,
	"education":      models.ChartBar,
	"environment":    models.ChartLine,
	"environmental":  models.ChartLine,
}

// DetermineVisualizationType picks the chart type for a question against a
// dataset category. Explicit question keywords win over category defaults;
// the final fallback is a bar chart.
func DetermineVisualizationType(query, category string) models.ChartType {
	q := strings.ToLower(query)

	if containsAny(q, geographicKeywords) {
		return models.ChartMap
	}
	if containsAny(q, comparisonKeywords) {
		return models.ChartBar
	}
	if containsAny(q, trendKeywords) {
		return models.ChartLine
	}
	if containsAny(q, distributionKeywords) {
		return models.ChartPie
	}

	if chart, ok := categoryDefaults[strings.ToLower(category)]; ok {
		return chart
	}
	return models.ChartBar
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}
