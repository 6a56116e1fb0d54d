package schema

import (
	"math"
	"regexp"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/AtlasData/atlas-insight-go/analysis"
	"github.com/AtlasData/atlas-insight-go/analysis/tabular"
)

// Engine infers a schema from a parsed table
type Engine struct {
	cfg analysis.Config
}

// NewEngine creates a schema inference engine
func NewEngine(cfg analysis.Config) *Engine {
	return &Engine{cfg: cfg}
}

// Infer classifies every column and assembles the overall schema. An empty
// table yields an empty field list with confidence 0, not an error.
func (e *Engine) Infer(table *tabular.Table) *InferredSchema {
	schema := &InferredSchema{
		EntityType:    "entity",
		Relationships: []FieldRelationship{},
	}
	if table.IsEmpty() {
		return schema
	}

	for _, name := range table.Columns {
		field := e.inferField(table, name)
		schema.Fields = append(schema.Fields, field)

		switch field.DataType {
		case TypeTemporal:
			schema.TemporalFields = append(schema.TemporalFields, name)
		case TypeGeographic:
			schema.GeographicFields = append(schema.GeographicFields, name)
		}
		switch field.Role {
		case RoleDimension:
			schema.DimensionFields = append(schema.DimensionFields, name)
		case RoleMetric:
			schema.MetricFields = append(schema.MetricFields, name)
		}
	}

	schema.EntityType = inferEntityType(table.Columns)
	schema.Relationships = e.inferRelationships(table)

	total := 0.0
	for _, f := range schema.Fields {
		total += f.Confidence
	}
	if len(schema.Fields) > 0 {
		schema.Confidence = total / float64(len(schema.Fields))
	}
	return schema
}

// inferField classifies a single column
func (e *Engine) inferField(table *tabular.Table, name string) FieldSchema {
	profile := table.Summary[name]
	sample := e.sampleValues(table, name)
	nonNull := table.RowCount() - profile.NullCount

	dataType, patterns := e.inferDataType(name, profile, sample)
	semanticType := inferSemanticType(name, sample)
	role := inferRole(name, dataType, semanticType)

	field := FieldSchema{
		Name:         name,
		DataType:     dataType,
		SemanticType: semanticType,
		Role:         role,
		Patterns:     patterns,
		Metadata: FieldMetadata{
			IsUnique:    nonNull > 0 && profile.UniqueCount == nonNull,
			HasNulls:    profile.NullCount > 0,
			Cardinality: profile.UniqueCount,
		},
	}
	if dataType == TypeNumeric {
		field.Metadata.Distribution = "continuous"
	}

	// Confidence: 0.5 base, boosted by a specific semantic type, a literal
	// name match on it, and column size; capped at 1.0.
	confidence := 0.5
	if semanticType != "general" {
		confidence += 0.2
	}
	if strings.Contains(strings.ToLower(name), semanticType) {
		confidence += 0.2
	}
	if nonNull > e.cfg.LargeColumnThreshold {
		confidence += 0.1
	}
	field.Confidence = math.Min(confidence, 1.0)
	return field
}

// sampleValues collects up to SampleSize non-null text values of a column
func (e *Engine) sampleValues(table *tabular.Table, name string) []string {
	values := table.ColumnValues(name)
	if len(values) > e.cfg.SampleSize {
		values = values[:e.cfg.SampleSize]
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.AsText(); ok {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

// inferDataType starts from the parser's majority classification and
// refines it with value-shape checks over the sample.
func (e *Engine) inferDataType(name string, profile *tabular.ColumnProfile, sample []string) (DataType, []string) {
	var patterns []string

	matchRatio := func(re *regexp.Regexp) float64 {
		if len(sample) == 0 {
			return 0
		}
		hits := 0
		for _, s := range sample {
			if re.MatchString(s) {
				hits++
			}
		}
		return float64(hits) / float64(len(sample))
	}

	boolRatio := matchRatio(booleanValuePattern)
	countryRatio := matchRatio(isoCountryPattern)
	latLongRatio := matchRatio(latLongPattern)
	streetRatio := matchRatio(streetPattern)

	// Boolean beats a numeric majority of 0/1 cells
	if len(sample) > 0 && boolRatio >= e.cfg.NumericMajority && profile.UniqueCount <= 3 {
		return TypeBoolean, append(patterns, "boolean-tokens")
	}

	switch profile.InferredType {
	case tabular.ColumnNumeric:
		if latLongRatio >= e.cfg.DateMajority {
			return TypeGeographic, append(patterns, "lat-long")
		}
		return TypeNumeric, patterns
	case tabular.ColumnDate:
		return TypeTemporal, patterns
	}

	lower := strings.ToLower(name)
	if geographicNamePattern.MatchString(lower) {
		patterns = append(patterns, "geographic-name")
		return TypeGeographic, patterns
	}
	if countryRatio >= e.cfg.NumericMajority && len(sample) > 0 {
		return TypeGeographic, append(patterns, "iso-country")
	}
	if latLongRatio >= e.cfg.DateMajority && len(sample) > 0 {
		return TypeGeographic, append(patterns, "lat-long")
	}
	if streetRatio >= e.cfg.DateMajority && len(sample) > 0 {
		return TypeGeographic, append(patterns, "street-address")
	}

	// High-cardinality long strings read as free text, not categories
	if profile.UniqueCount > 0 && len(sample) > 0 {
		avgLen := 0
		for _, s := range sample {
			avgLen += len(s)
		}
		avgLen /= len(sample)
		if avgLen > 50 {
			return TypeText, patterns
		}
	}
	return TypeCategorical, patterns
}

// inferSemanticType matches the column name against the ordered regex
// families, then falls back to value-shape heuristics.
func inferSemanticType(name string, sample []string) string {
	for _, family := range semanticFamilies {
		if family.pattern.MatchString(name) {
			return family.label
		}
	}
	if len(sample) > 0 {
		allDigits := true
		hasEmail := false
		hasURL := false
		for _, s := range sample {
			if !allDigitsPattern.MatchString(s) {
				allDigits = false
			}
			if emailPattern.MatchString(s) {
				hasEmail = true
			}
			if urlPattern.MatchString(s) {
				hasURL = true
			}
		}
		switch {
		case allDigits:
			return "identifier"
		case hasEmail:
			return "email"
		case hasURL:
			return "url"
		}
	}
	return "general"
}

// inferRole assigns the structural role
func inferRole(name string, dataType DataType, semanticType string) FieldRole {
	if semanticType == "identifier" || idNamePattern.MatchString(name) {
		return RoleIdentifier
	}
	if dataType == TypeNumeric && semanticType == "metric" {
		return RoleMetric
	}
	switch dataType {
	case TypeCategorical, TypeGeographic, TypeTemporal, TypeBoolean:
		return RoleDimension
	}
	return RoleDescriptor
}

// inferEntityType scans field names for the priority keyword list
func inferEntityType(columns []string) string {
	joined := strings.ToLower(strings.Join(columns, " "))
	for _, kw := range entityKeywords {
		for _, token := range kw.tokens {
			if strings.Contains(joined, token) {
				return kw.entity
			}
		}
	}
	return "entity"
}

// inferRelationships computes Pearson correlation for every numeric field
// pair with enough paired values and keeps the strong ones.
func (e *Engine) inferRelationships(table *tabular.Table) []FieldRelationship {
	rels := []FieldRelationship{}
	numeric := table.NumericColumns
	for i := 0; i < len(numeric); i++ {
		for j := i + 1; j < len(numeric); j++ {
			xs, ys := table.PairedNumericValues(numeric[i], numeric[j])
			if len(xs) < e.cfg.RelationshipMinPairs {
				continue
			}
			r := stat.Correlation(xs, ys, nil)
			if math.IsNaN(r) || math.Abs(r) <= e.cfg.RelationshipStrength {
				continue
			}
			rels = append(rels, FieldRelationship{
				SourceField: numeric[i],
				TargetField: numeric[j],
				Type:        RelCorrelation,
				Strength:    math.Abs(r),
			})
		}
	}
	return rels
}
