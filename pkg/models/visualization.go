package models

// ChartType selects the visual encoding for a visualization
type ChartType string

const (
	ChartLine         ChartType = "line"
	ChartBar          ChartType = "bar"
	ChartPie          ChartType = "pie"
	ChartArea         ChartType = "area"
	ChartScatter      ChartType = "scatter"
	ChartMap          ChartType = "map"
	ChartHeatmap      ChartType = "heatmap"
	ChartDistribution ChartType = "distribution"
)

// Visualization is a renderable chart specification plus the insights that
// motivated it. Rendering is the caller's concern; this engine never draws.
type Visualization struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Type        ChartType        `json:"type"`
	Data        []map[string]any `json:"data"`
	Insights    []DataInsight    `json:"insights,omitempty"`
	XAxis       string           `json:"x_axis,omitempty"`
	YAxis       string           `json:"y_axis,omitempty"`
	Description string           `json:"description,omitempty"`
	Purpose     string           `json:"purpose,omitempty"`
}
