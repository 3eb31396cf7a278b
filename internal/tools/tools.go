// Package tools exposes the investigation operations as a closed capability
// table.
//
// Every call returns a self-describing JSON document. Failures are data: an
// error document always carries "error" and "code" plus the context the
// caller needs to recover (the empty result set, the shipment id, the
// columns that do exist). Call never panics on bad arguments.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/roach88/shiptrace/internal/catalog"
	"github.com/roach88/shiptrace/internal/cost"
	"github.com/roach88/shiptrace/internal/ir"
	"github.com/roach88/shiptrace/internal/query"
	"github.com/roach88/shiptrace/internal/report"
	"github.com/roach88/shiptrace/internal/timeline"
)

// Backend runs the operations behind the table. *engine.Engine implements it.
type Backend interface {
	DataDir() string
	DiscoverSources(ctx context.Context) (*catalog.Catalog, error)
	QuerySource(ctx context.Context, source string, filters map[string]any, limit int) (*query.Result, error)
	AnalyzeTimeline(ctx context.Context, unitID string) (*timeline.Timeline, error)
	ComputeCost(ctx context.Context, unitID string) (*cost.Analysis, error)
	GenerateReport(unitID string, findings report.Findings) *report.Report
}

// Result is the outcome of one call.
type Result struct {
	Tool     string
	Document any
	IsError  bool
	Code     ir.ErrorCode
}

// MarshalJSON renders the document alone.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Document)
}

// Table dispatches calls by tool name.
type Table struct {
	backend Backend
}

// New returns a Table backed by b.
func New(b Backend) *Table {
	return &Table{backend: b}
}

// List returns every tool in listing order.
func (t *Table) List() []Tool {
	out := make([]Tool, len(catalogue))
	copy(out, catalogue)
	return out
}

// Lookup returns the named tool.
func (t *Table) Lookup(name string) (Tool, bool) {
	for _, tool := range catalogue {
		if tool.Name == name {
			return tool, true
		}
	}
	return Tool{}, false
}

// Call runs the named tool with args. A nil args is treated as empty.
func (t *Table) Call(ctx context.Context, name string, args map[string]any) Result {
	if args == nil {
		args = map[string]any{}
	}
	start := time.Now()

	var res Result
	switch name {
	case DiscoverSources:
		res = t.discover(ctx)
	case QuerySource:
		res = t.query(ctx, args)
	case AnalyzeTimeline:
		res = t.timeline(ctx, args)
	case ComputeCost:
		res = t.cost(ctx, args)
	case GenerateReport:
		res = t.report(args)
	default:
		res = failure(ir.NewInvalidArgument("Unknown tool: %s", name), nil)
	}
	res.Tool = name

	attrs := []any{
		"tool", name,
		"trace_id", TraceID(ctx),
		"duration", time.Since(start),
	}
	if res.IsError {
		slog.Info("tool failed", append(attrs, "code", res.Code)...)
	} else {
		slog.Info("tool completed", attrs...)
	}
	return res
}

func (t *Table) discover(ctx context.Context) Result {
	cat, err := t.backend.DiscoverSources(ctx)
	if err != nil {
		return failure(err, map[string]any{
			"data_directory": t.backend.DataDir(),
			"total_sources":  0,
			"sources":        []any{},
		})
	}
	return success(cat)
}

func (t *Table) query(ctx context.Context, args map[string]any) Result {
	empty := map[string]any{"results": []any{}}

	source, err := requireString(args, "source_name")
	if err != nil {
		return failure(err, empty)
	}
	filters, err := optionalObject(args, "filters")
	if err != nil {
		return failure(err, empty)
	}
	limit, err := optionalLimit(args, "limit")
	if err != nil {
		return failure(err, empty)
	}

	res, err := t.backend.QuerySource(ctx, source, filters, limit)
	if err != nil {
		return failure(err, empty)
	}
	return success(res)
}

func (t *Table) timeline(ctx context.Context, args map[string]any) Result {
	unitID, err := requireString(args, "shipment_id")
	if err != nil {
		return failure(err, nil)
	}
	tl, err := t.backend.AnalyzeTimeline(ctx, unitID)
	if err != nil {
		return failure(err, map[string]any{"shipment_id": unitID})
	}
	return success(tl)
}

func (t *Table) cost(ctx context.Context, args map[string]any) Result {
	unitID, err := requireString(args, "shipment_id")
	if err != nil {
		return failure(err, nil)
	}
	a, err := t.backend.ComputeCost(ctx, unitID)
	if err != nil {
		return failure(err, map[string]any{"shipment_id": unitID})
	}
	return success(a)
}

func (t *Table) report(args map[string]any) Result {
	unitID, err := requireString(args, "shipment_id")
	if err != nil {
		return failure(err, nil)
	}
	findings, err := optionalObject(args, "investigation_data")
	if err != nil {
		return failure(err, map[string]any{"shipment_id": unitID})
	}
	if findings == nil {
		return failure(ir.NewInvalidArgument("investigation_data is required"), map[string]any{"shipment_id": unitID})
	}
	return success(t.backend.GenerateReport(unitID, report.Findings(findings)))
}

func success(doc any) Result {
	return Result{Document: doc}
}

// failure renders err as an error document merged with extra.
// Details of an *ir.Error are copied in; extra keys win on conflict.
func failure(err error, extra map[string]any) Result {
	doc := map[string]any{}

	code := ir.CodeOf(err)
	message := err.Error()
	var e *ir.Error
	if errors.As(err, &e) {
		message = e.Message
		if e.Code == ir.ErrCodeParseFailure && e.Err != nil {
			message = fmt.Sprintf("%s: %v", e.Message, e.Err)
		}
		for k, v := range e.Details {
			doc[k] = v
		}
	}
	for k, v := range extra {
		doc[k] = v
	}
	doc["error"] = message
	doc["code"] = code

	return Result{Document: doc, IsError: true, Code: code}
}

func requireString(args map[string]any, key string) (string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return "", ir.NewInvalidArgument("%s is required", key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", ir.NewInvalidArgument("%s must be a string, got %T", key, raw)
	}
	if s == "" {
		return "", ir.NewInvalidArgument("%s is required", key)
	}
	return s, nil
}

func optionalObject(args map[string]any, key string) (map[string]any, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, ir.NewInvalidArgument("%s must be an object, got %T", key, raw)
	}
	return m, nil
}

// optionalLimit accepts any integral JSON number. Absent means no limit.
func optionalLimit(args map[string]any, key string) (int, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return 0, nil
	}

	var n float64
	switch v := raw.(type) {
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	case float64:
		n = v
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, ir.NewInvalidArgument("%s must be an integer, got %q", key, v.String())
		}
		n = f
	default:
		return 0, ir.NewInvalidArgument("%s must be an integer, got %T", key, raw)
	}

	if n != math.Trunc(n) || n < 0 || n > math.MaxInt32 {
		return 0, ir.NewInvalidArgument("%s must be a non-negative integer, got %v", key, raw)
	}
	return int(n), nil
}
