package models

// InsightType categorizes a statistical finding
type InsightType string

const (
	InsightTrend        InsightType = "trend"
	InsightCorrelation  InsightType = "correlation"
	InsightAnomaly      InsightType = "anomaly"
	InsightDistribution InsightType = "distribution"
	InsightSeasonal     InsightType = "seasonal"
	InsightThreshold    InsightType = "threshold"
)

// ImpactLevel ranks how actionable an insight is
type ImpactLevel string

const (
	ImpactHigh   ImpactLevel = "high"
	ImpactMedium ImpactLevel = "medium"
	ImpactLow    ImpactLevel = "low"
)

// DataInsight is a single ranked, human-readable statistical finding.
// Insights are produced once by a detector and consumed read-only downstream.
type DataInsight struct {
	Type            InsightType    `json:"type"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	Confidence      float64        `json:"confidence"` // 0-1
	Impact          ImpactLevel    `json:"impact"`
	Data            map[string]any `json:"data,omitempty"`
	Recommendations []string       `json:"recommendations,omitempty"`
}
