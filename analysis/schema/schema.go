// Package schema infers the structure and semantics of a parsed table:
// per-field data types, semantic types, structural roles, an overall entity
// type, and pairwise field relationships.
package schema

// DataType is the refined storage classification of a field
type DataType string

const (
	TypeNumeric     DataType = "numeric"
	TypeCategorical DataType = "categorical"
	TypeTemporal    DataType = "temporal"
	TypeGeographic  DataType = "geographic"
	TypeText        DataType = "text"
	TypeBoolean     DataType = "boolean"
)

// FieldRole is the structural role a field plays in analysis
type FieldRole string

const (
	RoleDimension  FieldRole = "dimension"
	RoleMetric     FieldRole = "metric"
	RoleIdentifier FieldRole = "identifier"
	RoleDescriptor FieldRole = "descriptor"
)

// RelationshipType categorizes a pairwise field relationship
type RelationshipType string

const (
	RelCorrelation RelationshipType = "correlation"
	RelHierarchy   RelationshipType = "hierarchy"
	RelDependency  RelationshipType = "dependency"
	RelComposition RelationshipType = "composition"
)

// FieldMetadata carries structural facts about a field
type FieldMetadata struct {
	IsUnique     bool   `json:"is_unique"`
	HasNulls     bool   `json:"has_nulls"`
	Cardinality  int    `json:"cardinality"`
	Distribution string `json:"distribution,omitempty"`
}

// FieldSchema describes one column. Immutable once created for a given
// table snapshot.
type FieldSchema struct {
	Name         string        `json:"name"`
	DataType     DataType      `json:"data_type"`
	SemanticType string        `json:"semantic_type"`
	Role         FieldRole     `json:"role"`
	Patterns     []string      `json:"patterns,omitempty"`
	Confidence   float64       `json:"confidence"` // 0-1
	Metadata     FieldMetadata `json:"metadata"`
}

// FieldRelationship links two fields. Only emitted when strength exceeds
// the configured cutoff.
type FieldRelationship struct {
	SourceField string           `json:"source_field"`
	TargetField string           `json:"target_field"`
	Type        RelationshipType `json:"type"`
	Strength    float64          `json:"strength"` // 0-1
}

// InferredSchema aggregates field schemas plus derived name lists. Every
// name in the derived lists references a field present in Fields.
type InferredSchema struct {
	Fields           []FieldSchema       `json:"fields"`
	EntityType       string              `json:"entity_type"`
	TemporalFields   []string            `json:"temporal_fields"`
	GeographicFields []string            `json:"geographic_fields"`
	DimensionFields  []string            `json:"dimension_fields"`
	MetricFields     []string            `json:"metric_fields"`
	Relationships    []FieldRelationship `json:"relationships"`
	Confidence       float64             `json:"confidence"` // mean of field confidences
}

// Field looks up a field schema by name
func (s *InferredSchema) Field(name string) *FieldSchema {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i]
		}
	}
	return nil
}
