package engine

import (
	"context"
	"log/slog"

	"github.com/roach88/shiptrace/internal/catalog"
	"github.com/roach88/shiptrace/internal/config"
	"github.com/roach88/shiptrace/internal/cost"
	"github.com/roach88/shiptrace/internal/query"
	"github.com/roach88/shiptrace/internal/report"
	"github.com/roach88/shiptrace/internal/timeline"
)

// Engine runs investigation operations against one data directory.
type Engine struct {
	cfg       config.Config
	query     *query.Engine
	fuser     *timeline.Fuser
	analyzer  *cost.Analyzer
	assembler *report.Assembler
	traces    TraceGenerator
	clock     report.Clock
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used for report dates.
func WithClock(c report.Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithTraceGenerator sets the trace id source.
func WithTraceGenerator(g TraceGenerator) Option {
	return func(e *Engine) {
		e.traces = g
	}
}

// New builds an Engine from cfg.
func New(cfg config.Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:    cfg,
		traces: UUIDv7Generator{},
		clock:  report.SystemClock{},
	}
	for _, opt := range opts {
		opt(e)
	}

	e.query = query.New(cfg.DataDir)
	e.fuser = timeline.NewFuser(e.query, cfg.TimelinePlan())
	e.analyzer = cost.NewAnalyzer(e.query, cfg.AnalyzerConfig())
	e.assembler = report.NewAssembler(
		report.WithClock(e.clock),
		report.WithPreparedBy(cfg.Report.PreparedBy),
		report.WithDocumentType(cfg.Report.DocumentType),
	)
	return e
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() config.Config {
	return e.cfg
}

// DataDir returns the data root.
func (e *Engine) DataDir() string {
	return e.cfg.DataDir
}

// NewTraceID returns a fresh investigation trace id.
func (e *Engine) NewTraceID() string {
	return e.traces.Generate()
}

// DiscoverSources describes every tabular file under the data root.
// On DIRECTORY_NOT_FOUND the returned catalog is empty but non-nil.
func (e *Engine) DiscoverSources(ctx context.Context) (*catalog.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cat, err := catalog.Discover(e.cfg.DataDir)
	if err != nil {
		return cat, err
	}
	slog.Debug("sources discovered", "data_dir", e.cfg.DataDir, "total", cat.TotalSources)
	return cat, nil
}

// CountSources returns the number of tabular files under the data root.
func (e *Engine) CountSources() (int, error) {
	return catalog.Count(e.cfg.DataDir)
}

// QuerySource filters one source by a column/value mapping.
func (e *Engine) QuerySource(ctx context.Context, source string, filters map[string]any, limit int) (*query.Result, error) {
	return e.query.Query(ctx, source, filters, limit)
}

// QueryWhere filters one source by an expression such as
// "event_type == 'Quarantine' and loss_usd in (1, 2)".
func (e *Engine) QueryWhere(ctx context.Context, source, expr string, limit int) (*query.Result, error) {
	return e.query.Where(ctx, source, expr, limit)
}

// AnalyzeTimeline fuses every configured source into the unit's timeline.
func (e *Engine) AnalyzeTimeline(ctx context.Context, unitID string) (*timeline.Timeline, error) {
	return e.fuser.Fuse(ctx, unitID)
}

// ComputeCost compares the release and reject scenarios for the unit.
func (e *Engine) ComputeCost(ctx context.Context, unitID string) (*cost.Analysis, error) {
	return e.analyzer.Analyze(ctx, unitID)
}

// GenerateReport assembles a CAPA report from caller-supplied findings.
func (e *Engine) GenerateReport(unitID string, findings report.Findings) *report.Report {
	return e.assembler.Assemble(unitID, findings)
}
