// Package query implements the query engine: resolve a source by name, read
// it schema-on-read, validate the filter against the discovered columns and
// run it through an in-memory SQLite store.
package query

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/roach88/shiptrace/internal/catalog"
	"github.com/roach88/shiptrace/internal/ir"
	"github.com/roach88/shiptrace/internal/queryir"
	"github.com/roach88/shiptrace/internal/store"
)

// Result is the outcome of one query.
//
// SourceFile and Columns are set even when no rows match, so callers can
// tell "no matching rows" from "source not found".
type Result struct {
	SourceFile   string      `json:"source_file"`
	TotalRecords int         `json:"total_records"`
	Columns      []string    `json:"columns"`
	Results      []ir.Record `json:"results"`

	// Schema carries column kinds for in-process callers.
	Schema ir.Schema `json:"-"`
}

// Engine queries the sources under one data root.
// An Engine holds no mutable state and is safe for concurrent use.
type Engine struct {
	root string
}

// New returns an Engine reading from root.
func New(root string) *Engine {
	return &Engine{root: root}
}

// Root returns the data root.
func (e *Engine) Root() string {
	return e.root
}

// Query runs a filter mapping against the named source.
//
// A scalar filter value is an equality test, a collection is a membership
// test, and entries combine with AND. limit <= 0 returns every match.
func (e *Engine) Query(ctx context.Context, source string, filters map[string]any, limit int) (*Result, error) {
	sel, err := queryir.FromFilters(source, filters, limit)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx, sel)
}

// Where runs a parsed filter expression against the named source.
func (e *Engine) Where(ctx context.Context, source, expr string, limit int) (*Result, error) {
	pred, err := queryir.ParseFilter(expr)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx, queryir.Select{From: source, Filter: pred, Limit: limit})
}

// Run resolves sel.From and executes sel against it.
func (e *Engine) Run(ctx context.Context, sel queryir.Select) (*Result, error) {
	path, err := catalog.Resolve(e.root, sel.From)
	if err != nil {
		return nil, err
	}

	table, err := catalog.Load(path, 0)
	if err != nil {
		return nil, err
	}

	sel.From = filepath.Base(path)
	if err := queryir.Validate(sel, table.Schema); err != nil {
		return nil, err
	}

	records, err := e.execute(ctx, table, sel)
	if err != nil {
		return nil, err
	}

	slog.Debug("query executed",
		"source", sel.From,
		"fields", queryir.Fields(sel.Filter),
		"rows", len(table.Records),
		"matched", len(records),
	)

	return &Result{
		SourceFile:   path,
		TotalRecords: len(records),
		Columns:      table.Schema.Names(),
		Results:      records,
		Schema:       table.Schema,
	}, nil
}

// execute materializes table into a fresh store and runs sel.
func (e *Engine) execute(ctx context.Context, table *catalog.Table, sel queryir.Select) ([]ir.Record, error) {
	st, err := store.Open(ctx)
	if err != nil {
		return nil, ir.NewInternal("open query store", err)
	}
	defer st.Close()

	if err := st.Load(ctx, table.Schema, table.Records); err != nil {
		return nil, ir.NewInternal("load source", err)
	}

	records, err := st.Select(ctx, sel)
	if err != nil {
		return nil, ir.NewInternal("execute query", err)
	}
	return records, nil
}
