package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AtlasData/atlas-insight-go/analysis"
	"github.com/AtlasData/atlas-insight-go/analysis/narrator"
	"github.com/AtlasData/atlas-insight-go/analysis/patterns"
	"github.com/AtlasData/atlas-insight-go/analysis/schema"
	"github.com/AtlasData/atlas-insight-go/analysis/semantic"
	"github.com/AtlasData/atlas-insight-go/analysis/tabular"
	"github.com/AtlasData/atlas-insight-go/pkg/models"
	"github.com/AtlasData/atlas-insight-go/utils"
)

// ErrNoRelevantData is returned when the catalog yields zero datasets for
// a query. Callers surface it as an empty state, not a crash.
var ErrNoRelevantData = errors.New("no relevant datasets found for query")

// Catalog is the external dataset catalog the engine consults
type Catalog interface {
	ListDatasets(ctx context.Context, filter models.DatasetFilter) ([]models.Dataset, error)
	GetDataset(ctx context.Context, id string) (*models.Dataset, error)
}

// FileStore is the external blob store holding dataset files
type FileStore interface {
	Fetch(ctx context.Context, ref string) (string, error)
}

// Engine wires the pipeline stages together: parse, infer, analyze,
// narrate, compose. It holds no per-invocation state, so concurrent
// queries need no locking.
type Engine struct {
	cfg      analysis.Config
	parser   *tabular.Parser
	schema   *schema.Engine
	semantic *semantic.Analyzer
	patterns *patterns.Analyzer
	narrator *narrator.Narrator
	scorer   *Scorer
	catalog  Catalog
	files    FileStore
	emitter  utils.StageEmitter
	logger   *utils.Logger
}

// NewEngine creates the insight engine over the given collaborators.
// The emitter may be nil.
func NewEngine(cfg analysis.Config, catalog Catalog, files FileStore, emitter utils.StageEmitter, logger *utils.Logger) *Engine {
	if logger == nil {
		logger = utils.GetLogger()
	}
	return &Engine{
		cfg:      cfg,
		parser:   tabular.NewParser(cfg),
		schema:   schema.NewEngine(cfg),
		semantic: semantic.NewAnalyzer(cfg),
		patterns: patterns.NewAnalyzer(cfg),
		narrator: narrator.NewNarrator(cfg),
		scorer:   NewScorer(cfg),
		catalog:  catalog,
		files:    files,
		emitter:  emitter,
		logger:   logger,
	}
}

// RawAnalysis is the engine output for one materialized table
type RawAnalysis struct {
	Table          *tabular.Table           `json:"-"`
	Schema         *schema.InferredSchema   `json:"schema"`
	Semantics      *semantic.Analysis       `json:"semantics"`
	Visualizations []models.Visualization   `json:"visualizations"`
	Insights       []string                 `json:"insights"`
	Profiles       []*tabular.ColumnProfile `json:"profiles"`
}

// AnalyzeRaw runs the full pipeline over raw text. Parsing failures abort
// the whole analysis; every later stage degrades softly instead.
func (e *Engine) AnalyzeRaw(ctx context.Context, raw string, format tabular.Format, category, title, question string) (*RawAnalysis, error) {
	datasetLabel := title

	table, err := e.timedParse(raw, format, datasetLabel)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	inferred := e.schema.Infer(table)
	e.stageDone("schema", datasetLabel, start)

	start = time.Now()
	semantics := e.semantic.Analyze(inferred, table)
	e.stageDone("semantic", datasetLabel, start)

	start = time.Now()
	visualizations := e.patterns.Analyze(inferred, table)
	e.stageDone("patterns", datasetLabel, start)

	start = time.Now()
	sentences := e.narrator.Generate(narrator.Input{
		Visualizations: visualizations,
		Semantics:      semantics,
		Table:          table,
		Category:       category,
		Title:          title,
		Question:       question,
	})
	e.stageDone("narrator", datasetLabel, start)

	profiles := make([]*tabular.ColumnProfile, 0, len(table.Columns))
	for _, column := range table.Columns {
		profiles = append(profiles, table.Summary[column])
	}

	return &RawAnalysis{
		Table:          table,
		Schema:         inferred,
		Semantics:      semantics,
		Visualizations: visualizations,
		Insights:       sentences,
		Profiles:       profiles,
	}, nil
}

// AnalyzeDataset fetches a catalogued dataset's file and analyzes it
func (e *Engine) AnalyzeDataset(ctx context.Context, ds models.Dataset, question string) (*models.DatasetAnalysis, *RawAnalysis, error) {
	raw, err := e.files.Fetch(ctx, ds.FileRef)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch file for dataset %s: %w", ds.ID, err)
	}

	result, err := e.AnalyzeRaw(ctx, raw, tabular.Format(ds.Format), ds.Category, ds.Title, question)
	if err != nil {
		return nil, nil, err
	}

	insights := result.Insights
	if len(insights) > e.cfg.MaxNarratedPerDataset {
		insights = insights[:e.cfg.MaxNarratedPerDataset]
	}
	return &models.DatasetAnalysis{
		DatasetID:      ds.ID,
		DatasetTitle:   ds.Title,
		Visualizations: result.Visualizations,
		Insights:       insights,
		Domain:         result.Semantics.DomainClassification,
		QualityScore:   result.Semantics.DataQualityScore,
	}, result, nil
}

// ProcessQuery answers a free-text question: rank datasets, analyze the
// matches, and compose a templated answer. One failing dataset does not
// abort the others; the query fails only when nothing can be answered.
func (e *Engine) ProcessQuery(ctx context.Context, question string) (*models.QueryResult, error) {
	datasets, err := e.catalog.ListDatasets(ctx, models.DatasetFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	if len(datasets) == 0 {
		return nil, ErrNoRelevantData
	}

	scored := e.scorer.FindRelevantDatasets(question, datasets)
	if len(scored) == 0 {
		return nil, ErrNoRelevantData
	}

	result := &models.QueryResult{
		Question: question,
	}

	var analyses []*RawAnalysis
	for _, sd := range scored {
		analysisResult, raw, err := e.AnalyzeDataset(ctx, sd.Dataset, question)
		if err != nil {
			e.logger.Warn("skipping dataset in query",
				utils.Component("engine"),
				utils.String("dataset", sd.Dataset.ID),
				utils.String("reason", err.Error()))
			continue
		}
		result.Datasets = append(result.Datasets, sd.Dataset)
		result.Analyses = append(result.Analyses, *analysisResult)
		result.Visualizations = append(result.Visualizations, analysisResult.Visualizations...)
		result.Insights = append(result.Insights, analysisResult.Insights...)
		analyses = append(analyses, raw)
	}
	if len(result.Datasets) == 0 {
		return nil, ErrNoRelevantData
	}

	topInsight := ""
	if len(result.Insights) > 0 {
		topInsight = result.Insights[0]
	}
	result.Answer = ComposeAnswer(question, result.Datasets, topInsight, result.Visualizations)
	result.Comparison = buildComparison(result.Datasets, analyses)

	e.emit(utils.StageEvent{
		Type:    "query.completed",
		Stage:   "composer",
		Payload: map[string]any{"datasets": len(result.Datasets), "visualizations": len(result.Visualizations)},
	})
	return result, nil
}

// buildComparison lines up a shared numeric column across the analyzed
// datasets. Omitted when fewer than two datasets share a metric.
func buildComparison(datasets []models.Dataset, analyses []*RawAnalysis) *models.Comparison {
	if len(analyses) < 2 {
		return nil
	}

	// Find the first numeric column name present in at least two tables
	counts := make(map[string]int)
	var order []string
	for _, a := range analyses {
		for _, column := range a.Table.NumericColumns {
			if counts[column] == 0 {
				order = append(order, column)
			}
			counts[column]++
		}
	}
	shared := ""
	for _, column := range order {
		if counts[column] >= 2 {
			shared = column
			break
		}
	}
	if shared == "" {
		return nil
	}

	comparison := &models.Comparison{Metric: shared}
	for i, a := range analyses {
		profile := a.Table.Summary[shared]
		if profile == nil || profile.Mean == nil {
			continue
		}
		entry := models.ComparisonEntry{
			DatasetID:    datasets[i].ID,
			DatasetTitle: datasets[i].Title,
			Metric:       shared,
			Mean:         *profile.Mean,
		}
		if profile.Min != nil {
			entry.Min = *profile.Min
		}
		if profile.Max != nil {
			entry.Max = *profile.Max
		}
		comparison.Entries = append(comparison.Entries, entry)
	}
	if len(comparison.Entries) < 2 {
		return nil
	}

	best := comparison.Entries[0]
	for _, entry := range comparison.Entries[1:] {
		if entry.Mean > best.Mean {
			best = entry
		}
	}
	comparison.Summary = fmt.Sprintf("Across %d datasets, %s has the highest average %s (%.2f)",
		len(comparison.Entries), best.DatasetTitle, shared, best.Mean)
	return comparison
}

func (e *Engine) timedParse(raw string, format tabular.Format, dataset string) (*tabular.Table, error) {
	start := time.Now()
	table, err := e.parser.Parse(raw, format)
	if err != nil {
		e.emit(utils.StageEvent{
			Type:    "stage.failed",
			Stage:   "parser",
			Dataset: dataset,
			Payload: map[string]any{"error": err.Error()},
		})
		return nil, err
	}
	e.emit(utils.StageEvent{
		Type:     "stage.completed",
		Stage:    "parser",
		Dataset:  dataset,
		Duration: time.Since(start),
		Payload:  map[string]any{"rows": table.RowCount(), "columns": len(table.Columns)},
	})
	return table, nil
}

func (e *Engine) stageDone(stage, dataset string, start time.Time) {
	e.emit(utils.StageEvent{
		Type:     "stage.completed",
		Stage:    stage,
		Dataset:  dataset,
		Duration: time.Since(start),
	})
}

func (e *Engine) emit(event utils.StageEvent) {
	if e.emitter != nil {
		e.emitter.Emit(event)
	}
}
