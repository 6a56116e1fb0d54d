// Package analysis holds the shared configuration for the insight engine.
// Every heuristic threshold used by the pipeline stages lives here so the
// detectors stay free of magic numbers and the property tests can
// parametrize them.
package analysis

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config centralizes the engine's heuristic thresholds. All values have
// working defaults; they are heuristics, not statistically justified
// constants, and callers may tune them per deployment.
type Config struct {
	// Parsing
	MaxRows              int     `yaml:"max_rows"`               // rows materialized per table
	NumericMajority      float64 `yaml:"numeric_majority"`       // fraction of values that must parse as numbers
	DateMajority         float64 `yaml:"date_majority"`          // fraction of values that must parse as dates
	SampleSize           int     `yaml:"sample_size"`            // values sampled for pattern checks
	LargeColumnThreshold int     `yaml:"large_column_threshold"` // non-null count that boosts confidence

	// Relationships and correlation
	RelationshipMinPairs  int     `yaml:"relationship_min_pairs"`
	RelationshipStrength  float64 `yaml:"relationship_strength"`  // |r| needed to emit a relationship
	CorrelationKeep       float64 `yaml:"correlation_keep"`       // |r| needed to keep a pair
	CorrelationStrong     float64 `yaml:"correlation_strong"`     // |r| classified as strong
	ScatterSampleLimit    int     `yaml:"scatter_sample_limit"`   // points sampled for scatter plots
	MaxTimeSeriesMetrics  int     `yaml:"max_timeseries_metrics"` // numeric columns plotted over time
	MinTimeSeriesBuckets  int     `yaml:"min_timeseries_buckets"`
	TrendSlopeBand        float64 `yaml:"trend_slope_band"`       // slope/mean band for "stable"
	TrendStrongPercent    float64 `yaml:"trend_strong_percent"`   // % slope for a strong trend
	TrendModeratePercent  float64 `yaml:"trend_moderate_percent"` // % slope for a moderate trend
	VolatilityThreshold   float64 `yaml:"volatility_threshold"`   // stddev/mean flagged as volatile
	SeasonalSwingRatio    float64 `yaml:"seasonal_swing_ratio"`   // monthly mean swing treated as seasonal
	LogNormalSigmaMax     float64 `yaml:"log_normal_sigma_max"`   // log-domain stddev for log-normal shape
	LogNormalMeanLift     float64 `yaml:"log_normal_mean_lift"`   // mean/median ratio confirming right skew
	SkewThreshold         float64 `yaml:"skew_threshold"`         // |skew| classified as skewed
	IQRMultiplier         float64 `yaml:"iqr_multiplier"`         // outlier fence width
	MinDistributionValues int     `yaml:"min_distribution_values"`
	MaxDistributionBins   int     `yaml:"max_distribution_bins"`
	CategoryGapRatio      float64 `yaml:"category_gap_ratio"` // top/bottom group ratio flagged as a gap
	MaxCategoryGroups     int     `yaml:"max_category_groups"`
	MaxGeoEntries         int     `yaml:"max_geo_entries"`

	// Output caps
	MaxVisualizations     int `yaml:"max_visualizations"`
	MaxInsightSentences   int `yaml:"max_insight_sentences"`
	MaxSuggestedAnalyses  int `yaml:"max_suggested_analyses"`
	MaxRelevantDatasets   int `yaml:"max_relevant_datasets"`
	MaxNarratedPerDataset int `yaml:"max_narrated_per_dataset"`

	// Quality scoring
	HighConfidenceCutoff float64 `yaml:"high_confidence_cutoff"`
	ExcellentNullRatio   float64 `yaml:"excellent_null_ratio"` // completeness treated as excellent
	GoodNullRatio        float64 `yaml:"good_null_ratio"`      // completeness treated as good
}

// DefaultConfig returns the engine defaults
func DefaultConfig() Config {
	return Config{
		MaxRows:              1000,
		NumericMajority:      0.8,
		DateMajority:         0.6,
		SampleSize:           100,
		LargeColumnThreshold: 100,

		RelationshipMinPairs: 10,
		RelationshipStrength: 0.5,
		CorrelationKeep:      0.3,
		CorrelationStrong:    0.7,
		ScatterSampleLimit:   100,
		MaxTimeSeriesMetrics: 3,
		MinTimeSeriesBuckets: 3,
		TrendSlopeBand:       0.1,
		TrendStrongPercent:   5.0,
		TrendModeratePercent: 1.0,
		VolatilityThreshold:  0.3,
		SeasonalSwingRatio:   0.3,
		LogNormalSigmaMax:    1.5,
		LogNormalMeanLift:    1.1,
		SkewThreshold:        0.5,
		IQRMultiplier:        1.5,

		MinDistributionValues: 10,
		MaxDistributionBins:   10,
		CategoryGapRatio:      2.0,
		MaxCategoryGroups:     10,
		MaxGeoEntries:         20,

		MaxVisualizations:     6,
		MaxInsightSentences:   12,
		MaxSuggestedAnalyses:  8,
		MaxRelevantDatasets:   3,
		MaxNarratedPerDataset: 5,

		HighConfidenceCutoff: 0.8,
		ExcellentNullRatio:   0.95,
		GoodNullRatio:        0.8,
	}
}

// LoadConfig reads threshold overrides from a YAML file on top of the
// defaults. A missing path returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read analysis config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse analysis config: %w", err)
	}
	return cfg, nil
}
