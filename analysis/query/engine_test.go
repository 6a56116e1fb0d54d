package query

import (
	"context"
	"sync"
	"testing"

	"github.com/AtlasData/atlas-insight-go/analysis"
	"github.com/AtlasData/atlas-insight-go/analysis/tabular"
	"github.com/AtlasData/atlas-insight-go/pkg/models"
	"github.com/AtlasData/atlas-insight-go/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCatalog serves a fixed dataset list
type fakeCatalog struct {
	datasets []models.Dataset
}

func (f *fakeCatalog) ListDatasets(_ context.Context, _ models.DatasetFilter) ([]models.Dataset, error) {
	return f.datasets, nil
}

func (f *fakeCatalog) GetDataset(_ context.Context, id string) (*models.Dataset, error) {
	for i := range f.datasets {
		if f.datasets[i].ID == id {
			return &f.datasets[i], nil
		}
	}
	return nil, nil
}

// fakeFiles serves raw file contents from a map
type fakeFiles struct {
	files map[string]string
}

func (f *fakeFiles) Fetch(_ context.Context, ref string) (string, error) {
	raw, ok := f.files[ref]
	if !ok {
		return "", context.DeadlineExceeded
	}
	return raw, nil
}

// captureEmitter records emitted stage events
type captureEmitter struct {
	mu     sync.Mutex
	events []utils.StageEvent
}

func (c *captureEmitter) Emit(event utils.StageEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureEmitter) byType(eventType string) []utils.StageEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []utils.StageEvent
	for _, e := range c.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func gdpCSV() string {
	return "country,year,gdp\n" +
		"US,2020,20900\n" +
		"US,2021,23000\n" +
		"DE,2020,3800\n" +
		"DE,2021,4200\n" +
		"FR,2020,2600\n" +
		"FR,2021,2950\n"
}

func newTestEngine(datasets []models.Dataset, files map[string]string) (*Engine, *captureEmitter) {
	emitter := &captureEmitter{}
	engine := NewEngine(
		analysis.DefaultConfig(),
		&fakeCatalog{datasets: datasets},
		&fakeFiles{files: files},
		emitter,
		utils.GetLogger(),
	)
	return engine, emitter
}

func TestAnalyzeRawFullPipeline(t *testing.T) {
	engine, emitter := newTestEngine(nil, nil)

	result, err := engine.AnalyzeRaw(context.Background(), gdpCSV(), tabular.FormatCSV, "Economic Indicators", "GDP by Country", "")
	require.NoError(t, err)

	require.NotNil(t, result.Schema)
	assert.Contains(t, result.Schema.MetricFields, "gdp")
	require.NotNil(t, result.Semantics)
	assert.Equal(t, "finance", result.Semantics.DomainClassification)
	assert.NotEmpty(t, result.Insights)
	assert.Len(t, result.Profiles, 3)

	stages := emitter.byType("stage.completed")
	names := make([]string, 0, len(stages))
	for _, e := range stages {
		names = append(names, e.Stage)
	}
	assert.Equal(t, []string{"parser", "schema", "semantic", "patterns", "narrator"}, names)
}

func TestAnalyzeRawParseErrorAborts(t *testing.T) {
	engine, emitter := newTestEngine(nil, nil)

	_, err := engine.AnalyzeRaw(context.Background(), "header\n", tabular.FormatCSV, "", "bad", "")
	require.Error(t, err)

	var parseErr *tabular.ParseError
	require.ErrorAs(t, err, &parseErr)

	failed := emitter.byType("stage.failed")
	require.Len(t, failed, 1)
	assert.Equal(t, "parser", failed[0].Stage)
}

func TestProcessQueryRanksAndAnswers(t *testing.T) {
	datasets := []models.Dataset{
		{
			ID:       "gdp",
			Title:    "GDP by Country",
			Category: "Economic Indicators",
			Format:   models.FormatCSV,
			FileRef:  "gdp.csv",
		},
		{
			ID:       "schools",
			Title:    "School Enrollment",
			Category: "Education",
			Format:   models.FormatCSV,
			FileRef:  "schools.csv",
		},
	}
	files := map[string]string{
		"gdp.csv":     gdpCSV(),
		"schools.csv": "district,students\nnorth,1200\nsouth,900\n",
	}
	engine, emitter := newTestEngine(datasets, files)

	result, err := engine.ProcessQuery(context.Background(), "Show me the GDP trend over time")
	require.NoError(t, err)

	require.NotEmpty(t, result.Datasets)
	assert.Equal(t, "gdp", result.Datasets[0].ID)
	assert.NotEmpty(t, result.Answer)
	assert.NotEmpty(t, result.Insights)

	completed := emitter.byType("query.completed")
	assert.Len(t, completed, 1)
}

func TestProcessQueryEmptyCatalog(t *testing.T) {
	engine, _ := newTestEngine(nil, nil)

	_, err := engine.ProcessQuery(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrNoRelevantData)
}

func TestProcessQuerySkipsFailingDataset(t *testing.T) {
	datasets := []models.Dataset{
		{ID: "good", Title: "traffic counts", Category: "Transportation", Format: models.FormatCSV, FileRef: "good.csv"},
		{ID: "broken", Title: "traffic sensors", Category: "Transportation", Format: models.FormatCSV, FileRef: "missing.csv"},
	}
	files := map[string]string{
		"good.csv": "route,riders\nA,100\nB,80\nA,120\n",
	}
	engine, _ := newTestEngine(datasets, files)

	result, err := engine.ProcessQuery(context.Background(), "traffic volume by route")
	require.NoError(t, err)
	require.Len(t, result.Datasets, 1)
	assert.Equal(t, "good", result.Datasets[0].ID)
}

func TestProcessQueryAllDatasetsFail(t *testing.T) {
	datasets := []models.Dataset{
		{ID: "broken", Title: "traffic sensors", Category: "Transportation", Format: models.FormatCSV, FileRef: "missing.csv"},
	}
	engine, _ := newTestEngine(datasets, map[string]string{})

	_, err := engine.ProcessQuery(context.Background(), "traffic volume")
	assert.ErrorIs(t, err, ErrNoRelevantData)
}

func TestProcessQueryComparison(t *testing.T) {
	datasets := []models.Dataset{
		{ID: "a", Title: "City Air Quality", Category: "Environment", Format: models.FormatCSV, FileRef: "a.csv"},
		{ID: "b", Title: "Rural Air Quality", Category: "Environment", Format: models.FormatCSV, FileRef: "b.csv"},
	}
	files := map[string]string{
		"a.csv": "site,pm25\nx,40\ny,50\nz,60\n",
		"b.csv": "site,pm25\nu,10\nv,20\nw,30\n",
	}
	engine, _ := newTestEngine(datasets, files)

	result, err := engine.ProcessQuery(context.Background(), "compare air pollution levels")
	require.NoError(t, err)
	require.NotNil(t, result.Comparison)

	assert.Equal(t, "pm25", result.Comparison.Metric)
	require.Len(t, result.Comparison.Entries, 2)
	assert.Contains(t, result.Comparison.Summary, "City Air Quality")
}

func TestAnalyzeDatasetCapsInsights(t *testing.T) {
	cfg := analysis.DefaultConfig()
	ds := models.Dataset{ID: "gdp", Title: "GDP by Country", Category: "Economic Indicators", Format: models.FormatCSV, FileRef: "gdp.csv"}
	engine, _ := newTestEngine([]models.Dataset{ds}, map[string]string{"gdp.csv": gdpCSV()})

	analysisResult, raw, err := engine.AnalyzeDataset(context.Background(), ds, "")
	require.NoError(t, err)
	require.NotNil(t, raw)
	assert.LessOrEqual(t, len(analysisResult.Insights), cfg.MaxNarratedPerDataset)
	assert.Equal(t, "gdp", analysisResult.DatasetID)
}
