// Package semantic classifies a dataset's domain, proposes external
// knowledge links, scores data quality, and suggests candidate analyses.
package semantic

import (
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/AtlasData/atlas-insight-go/analysis"
	"github.com/AtlasData/atlas-insight-go/analysis/schema"
	"github.com/AtlasData/atlas-insight-go/analysis/tabular"
)

// LinkStatus marks how firmly a knowledge link applies
type LinkStatus string

const (
	LinkLinked    LinkStatus = "linked"
	LinkSuggested LinkStatus = "suggested"
)

// KnowledgeLink suggests mapping a column to an external reference standard
type KnowledgeLink struct {
	Field       string     `json:"field"`
	Reference   string     `json:"reference"`
	Description string     `json:"description"`
	Confidence  float64    `json:"confidence"` // 0-1
	Status      LinkStatus `json:"status"`
}

// Analysis is the semantic layer's output. All scores are 0-100.
type Analysis struct {
	DomainClassification string          `json:"domain_classification"`
	KnowledgeLinks       []KnowledgeLink `json:"knowledge_links"`
	SuggestedAnalyses    []string        `json:"suggested_analyses"`
	DataQualityScore     float64         `json:"data_quality_score"`
	CompletenessScore    float64         `json:"completeness_score"`
	ConsistencyScore     float64         `json:"consistency_score"`
}

// domainKeywords scores each supported domain by keyword hits over the
// concatenated field names and semantic types. Order fixes tie-breaking.
var domainKeywords = []struct {
	domain   string
	keywords []string
}{
	{"finance", []string{"revenue", "profit", "price", "cost", "income", "gdp", "inflation", "budget", "loan", "interest", "stock", "investment", "expense"}},
	{"healthcare", []string{"patient", "hospital", "disease", "health", "diagnosis", "treatment", "mortality", "vaccine", "medical", "clinic"}},
	{"retail", []string{"product", "sale", "customer", "order", "inventory", "store", "sku", "purchase", "cart"}},
	{"education", []string{"student", "school", "teacher", "grade", "enrollment", "course", "university", "literacy", "exam"}},
	{"transportation", []string{"vehicle", "route", "transit", "traffic", "bus", "train", "flight", "distance", "trip", "passenger"}},
	{"government", []string{"census", "tax", "policy", "public", "municipal", "election", "permit", "ministry"}},
	{"environment", []string{"emission", "pollution", "temperature", "climate", "energy", "rainfall", "co2", "air", "water", "forest"}},
}

// Analyzer produces semantic analyses from an inferred schema
type Analyzer struct {
	cfg analysis.Config
}

// NewAnalyzer creates a semantic analyzer
func NewAnalyzer(cfg analysis.Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Analyze runs domain classification, knowledge linking, analysis
// suggestions, and quality scoring over one table.
func (a *Analyzer) Analyze(s *schema.InferredSchema, table *tabular.Table) *Analysis {
	result := &Analysis{
		KnowledgeLinks:    []KnowledgeLink{},
		SuggestedAnalyses: []string{},
	}
	result.DomainClassification = classifyDomain(s)
	result.KnowledgeLinks = knowledgeLinks(s)
	result.SuggestedAnalyses = a.suggestAnalyses(s, result.DomainClassification)
	result.DataQualityScore = a.dataQualityScore(s, table)
	result.CompletenessScore = completenessScore(s, table)
	result.ConsistencyScore = consistencyScore(s, table)
	return result
}

// classifyDomain picks the highest-scoring domain, defaulting to "general"
// when nothing scores.
func classifyDomain(s *schema.InferredSchema) string {
	var sb strings.Builder
	for _, f := range s.Fields {
		sb.WriteString(strings.ToLower(f.Name))
		sb.WriteString(" ")
		sb.WriteString(f.SemanticType)
		sb.WriteString(" ")
	}
	haystack := sb.String()

	best := "general"
	bestScore := 0
	for _, dk := range domainKeywords {
		score := 0
		for _, kw := range dk.keywords {
			score += strings.Count(haystack, kw)
		}
		if score > bestScore {
			best = dk.domain
			bestScore = score
		}
	}
	return best
}

// knowledgeLinks applies the fixed rule table mapping field names to
// external reference standards.
func knowledgeLinks(s *schema.InferredSchema) []KnowledgeLink {
	links := []KnowledgeLink{}
	for _, f := range s.Fields {
		name := strings.ToLower(f.Name)
		switch {
		case f.DataType == schema.TypeGeographic && strings.Contains(name, "country"):
			links = append(links, KnowledgeLink{
				Field:       f.Name,
				Reference:   "ISO 3166",
				Description: "Country names can be normalized against ISO 3166 codes",
				Confidence:  0.9,
				Status:      LinkLinked,
			})
		case f.DataType == schema.TypeGeographic && strings.Contains(name, "city"):
			links = append(links, KnowledgeLink{
				Field:       f.Name,
				Reference:   "GeoNames gazetteer",
				Description: "City names can be resolved against the GeoNames gazetteer",
				Confidence:  0.8,
				Status:      LinkLinked,
			})
		case f.Role == schema.RoleMetric && (strings.Contains(name, "gdp") || strings.Contains(name, "inflation")):
			links = append(links, KnowledgeLink{
				Field:       f.Name,
				Reference:   "World Bank indicators",
				Description: "Economic indicators can be cross-referenced with World Bank data",
				Confidence:  0.85,
				Status:      LinkLinked,
			})
		case strings.Contains(name, "industry") || strings.Contains(name, "sector"):
			links = append(links, KnowledgeLink{
				Field:       f.Name,
				Reference:   "ISIC codes",
				Description: "Industry labels may map to ISIC classification codes",
				Confidence:  0.7,
				Status:      LinkSuggested,
			})
		}
	}
	return links
}

// suggestAnalyses assembles the deterministic suggestion list from the
// schema shape and classified domain, capped and order-preserving.
func (a *Analyzer) suggestAnalyses(s *schema.InferredSchema, domain string) []string {
	suggestions := []string{}
	add := func(text string) {
		if len(suggestions) < a.cfg.MaxSuggestedAnalyses {
			suggestions = append(suggestions, text)
		}
	}

	if len(s.TemporalFields) > 0 && len(s.MetricFields) > 0 {
		add("Time series and trend analysis across the temporal fields")
	}
	if len(s.GeographicFields) > 0 {
		add("Geographic distribution of records by location fields")
	}
	if len(s.DimensionFields) >= 2 && len(s.MetricFields) > 0 {
		add("Cross-tabulation of metrics across dimension pairs")
	}
	if len(s.MetricFields) >= 2 {
		add("Correlation analysis between metric fields")
	}

	switch domain {
	case "finance":
		add("Period-over-period growth of financial metrics")
	case "healthcare":
		add("Outcome rates segmented by demographic dimensions")
	case "retail":
		add("Top-performing categories by sales metrics")
	case "education":
		add("Attainment comparison across institutions or regions")
	case "transportation":
		add("Route or corridor utilization ranking")
	case "environment":
		add("Seasonal variation of environmental measurements")
	}

	if len(s.Relationships) > 0 {
		add("Drill-down on the detected correlated field pairs")
	}
	if len(suggestions) == 0 {
		add("Descriptive statistics per field")
	}
	return suggestions
}

// dataQualityScore is a weighted average over the achievable per-field
// weight: completeness (20), schema confidence (15), and, for numeric
// fields, outlier cleanliness (10). Fields with no data contribute nothing.
func (a *Analyzer) dataQualityScore(s *schema.InferredSchema, table *tabular.Table) float64 {
	if table.IsEmpty() || len(s.Fields) == 0 {
		return 0
	}
	rows := float64(table.RowCount())
	achieved := 0.0
	achievable := 0.0

	for _, f := range s.Fields {
		profile := table.Summary[f.Name]
		if profile == nil {
			continue
		}
		nonNull := rows - float64(profile.NullCount)

		achievable += 35
		if f.DataType == schema.TypeNumeric {
			achievable += 10
		}
		if nonNull <= 0 {
			continue
		}

		achieved += (nonNull / rows) * 20
		if f.Confidence > a.cfg.HighConfidenceCutoff {
			achieved += 15
		}
		if f.DataType == schema.TypeNumeric {
			nums := table.NumericValues(f.Name)
			achieved += (1 - outlierRatio(nums, a.cfg.IQRMultiplier)) * 10
		}
	}
	if achievable == 0 {
		return 0
	}
	return achieved / achievable * 100
}

// completenessScore is the mean non-null ratio across fields, 0-100
func completenessScore(s *schema.InferredSchema, table *tabular.Table) float64 {
	if table.IsEmpty() || len(s.Fields) == 0 {
		return 0
	}
	rows := float64(table.RowCount())
	total := 0.0
	for _, f := range s.Fields {
		profile := table.Summary[f.Name]
		if profile == nil {
			continue
		}
		total += (rows - float64(profile.NullCount)) / rows
	}
	return total / float64(len(s.Fields)) * 100
}

// consistencyScore checks categorical fields for uniform letter casing and
// temporal fields for a single detected date format. Each applicable field
// passes or fails; the score is the pass fraction, default 100.
func consistencyScore(s *schema.InferredSchema, table *tabular.Table) float64 {
	applicable := 0
	passed := 0

	for _, f := range s.Fields {
		switch f.DataType {
		case schema.TypeCategorical:
			values := textValues(table, f.Name)
			if len(values) == 0 {
				continue
			}
			applicable++
			if uniformCasing(values) {
				passed++
			}
		case schema.TypeTemporal:
			values := textValues(table, f.Name)
			if len(values) == 0 {
				continue
			}
			applicable++
			if singleDateFormat(values) {
				passed++
			}
		}
	}
	if applicable == 0 {
		return 100
	}
	return float64(passed) / float64(applicable) * 100
}

func textValues(table *tabular.Table, name string) []string {
	var out []string
	for _, v := range table.ColumnValues(name) {
		if s, ok := v.AsText(); ok {
			out = append(out, s)
		}
	}
	return out
}

// uniformCasing reports whether every value shares one casing style
func uniformCasing(values []string) bool {
	style := func(s string) string {
		switch {
		case s == strings.ToLower(s):
			return "lower"
		case s == strings.ToUpper(s):
			return "upper"
		case s == strings.Title(strings.ToLower(s)): //nolint:staticcheck
			return "title"
		default:
			return "mixed"
		}
	}
	first := style(values[0])
	for _, v := range values[1:] {
		if style(v) != first {
			return false
		}
	}
	return true
}

// singleDateFormat reports whether every value shares one rough shape
// (digit/separator skeleton), a cheap proxy for a single date layout.
func singleDateFormat(values []string) bool {
	skeleton := func(s string) string {
		var sb strings.Builder
		for _, r := range s {
			switch {
			case r >= '0' && r <= '9':
				sb.WriteByte('9')
			default:
				sb.WriteRune(r)
			}
		}
		return sb.String()
	}
	first := skeleton(values[0])
	for _, v := range values[1:] {
		if skeleton(v) != first {
			return false
		}
	}
	return true
}

// outlierRatio is the fraction of values outside the IQR fences
func outlierRatio(nums []float64, multiplier float64) float64 {
	if len(nums) < 4 {
		return 0
	}
	q, err := stats.Quartile(nums)
	if err != nil {
		return 0
	}
	iqr := q.Q3 - q.Q1
	lower := q.Q1 - multiplier*iqr
	upper := q.Q3 + multiplier*iqr
	outliers := 0
	for _, n := range nums {
		if n < lower || n > upper {
			outliers++
		}
	}
	return float64(outliers) / float64(len(nums))
}
