// Package scheduler periodically re-profiles catalogued datasets so their
// summary cards stay current without re-analyzing on every page view.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/AtlasData/atlas-insight-go/analysis/query"
	"github.com/AtlasData/atlas-insight-go/pkg/catalog"
	"github.com/AtlasData/atlas-insight-go/pkg/models"
	"github.com/AtlasData/atlas-insight-go/utils"
)

// ProfileScheduler re-runs the profiling pipeline on a cron schedule.
// Failures are logged and skipped; a bad dataset never stops the sweep.
type ProfileScheduler struct {
	engine  *query.Engine
	store   catalog.Store
	cron    *cron.Cron
	logger  *utils.Logger
	timeout time.Duration
}

// NewProfileScheduler creates a scheduler over the engine and catalog
func NewProfileScheduler(engine *query.Engine, store catalog.Store, logger *utils.Logger) *ProfileScheduler {
	if logger == nil {
		logger = utils.GetLogger()
	}
	return &ProfileScheduler{
		engine:  engine,
		store:   store,
		cron:    cron.New(),
		logger:  logger,
		timeout: 5 * time.Minute,
	}
}

// Start registers the sweep at the given cron expression and begins the
// schedule
func (p *ProfileScheduler) Start(cronExpr string) error {
	_, err := p.cron.AddFunc(cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		p.RefreshAll(ctx)
	})
	if err != nil {
		return err
	}
	p.cron.Start()
	p.logger.Info("profile scheduler started",
		utils.Component("scheduler"),
		utils.String("cron", cronExpr))
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish
func (p *ProfileScheduler) Stop() {
	ctx := p.cron.Stop()
	<-ctx.Done()
	p.logger.Info("profile scheduler stopped", utils.Component("scheduler"))
}

// RefreshAll re-profiles every catalogued dataset with a file reference
func (p *ProfileScheduler) RefreshAll(ctx context.Context) {
	datasets, err := p.store.ListDatasets(ctx, models.DatasetFilter{})
	if err != nil {
		p.logger.Error("profile sweep failed to list datasets", err, utils.Component("scheduler"))
		return
	}

	refreshed := 0
	for _, ds := range datasets {
		if ds.FileRef == "" {
			continue
		}
		if err := p.RefreshOne(ctx, ds); err != nil {
			p.logger.Warn("profile refresh failed",
				utils.Component("scheduler"),
				utils.String("dataset", ds.ID),
				utils.String("reason", err.Error()))
			continue
		}
		refreshed++
	}
	p.logger.Info("profile sweep completed",
		utils.Component("scheduler"),
		utils.Int("datasets", len(datasets)),
		utils.Int("refreshed", refreshed))
}

// RefreshOne analyzes a single dataset and stores the refreshed profile
func (p *ProfileScheduler) RefreshOne(ctx context.Context, ds models.Dataset) error {
	_, raw, err := p.engine.AnalyzeDataset(ctx, ds, "")
	if err != nil {
		return err
	}

	profile := &models.DatasetProfile{
		RowCount:     raw.Table.RowCount(),
		ColumnCount:  len(raw.Table.Columns),
		NumericCount: len(raw.Table.NumericColumns),
		DateCount:    len(raw.Table.DateColumns),
		Completeness: raw.Semantics.CompletenessScore,
		QualityScore: raw.Semantics.DataQualityScore,
		ProfiledAt:   time.Now(),
		EntityType:   raw.Schema.EntityType,
		Domain:       raw.Semantics.DomainClassification,
		MetricFields: raw.Schema.MetricFields,
	}
	if len(raw.Schema.TemporalFields) > 0 {
		profile.TemporalField = raw.Schema.TemporalFields[0]
	}
	return p.store.SaveProfile(ctx, ds.ID, profile)
}
