package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigSane(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 1000, cfg.MaxRows)
	assert.Equal(t, 0.8, cfg.NumericMajority)
	assert.Equal(t, 0.6, cfg.DateMajority)
	assert.Equal(t, 6, cfg.MaxVisualizations)
	assert.Equal(t, 12, cfg.MaxInsightSentences)
	assert.Equal(t, 3, cfg.MaxRelevantDatasets)
	assert.Greater(t, cfg.CorrelationStrong, cfg.CorrelationKeep)
	assert.Greater(t, cfg.ExcellentNullRatio, cfg.GoodNullRatio)
	assert.Greater(t, cfg.LogNormalMeanLift, 1.0)
}

func TestLoadConfigEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_rows: 50\ncorrelation_keep: 0.4\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.MaxRows)
	assert.Equal(t, 0.4, cfg.CorrelationKeep)
	// untouched keys keep their defaults
	assert.Equal(t, DefaultConfig().MaxVisualizations, cfg.MaxVisualizations)
}

func TestLoadConfigMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_rows: [not a number"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
