package store

import (
	"context"
	"fmt"

	"github.com/roach88/shiptrace/internal/ir"
	"github.com/roach88/shiptrace/internal/queryir"
)

// Select compiles q against the loaded table and returns matching records
// in natural row order.
//
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) Select(ctx context.Context, q queryir.Query) ([]ir.Record, error) {
	if s.phys == nil {
		return nil, fmt.Errorf("store not loaded")
	}

	sqlText, params, err := s.Compiler().Compile(q)
	if err != nil {
		return nil, fmt.Errorf("compile query: %w", err)
	}

	rows, err := s.Query(ctx, sqlText, params...)
	if err != nil {
		return nil, fmt.Errorf("query source: %w", err)
	}
	defer rows.Close()

	names := s.schema.Names()
	records := []ir.Record{}
	for rows.Next() {
		rec, err := s.scanRecord(rows.Scan, names)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return records, nil
}

// scanRecord reads one row into a Record using the schema's kinds.
func (s *Store) scanRecord(scan func(dest ...any) error, names []string) (ir.Record, error) {
	raw := make([]any, len(names))
	ptrs := make([]any, len(names))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if len(names) > 0 {
		if err := scan(ptrs...); err != nil {
			return ir.Record{}, fmt.Errorf("scan row: %w", err)
		}
	} else {
		var placeholder any
		if err := scan(&placeholder); err != nil {
			return ir.Record{}, fmt.Errorf("scan row: %w", err)
		}
	}

	values := make([]ir.Value, len(names))
	for i, c := range s.schema.Columns {
		v, err := fromSQL(raw[i], c.Kind)
		if err != nil {
			return ir.Record{}, fmt.Errorf("convert column %s: %w", c.Name, err)
		}
		values[i] = v
	}
	return ir.NewRecord(names, values)
}

// fromSQL converts a driver value back to a Value of the column's kind.
func fromSQL(v any, kind ir.Kind) (ir.Value, error) {
	switch val := v.(type) {
	case nil:
		return ir.Null{}, nil
	case int64:
		if kind == ir.KindBool {
			return ir.Bool(val != 0), nil
		}
		return ir.Int(val), nil
	case float64:
		return ir.Float(val), nil
	case bool:
		return ir.Bool(val), nil
	case string:
		return ir.String(val), nil
	case []byte:
		return ir.String(string(val)), nil
	default:
		return nil, fmt.Errorf("unsupported SQL type: %T", v)
	}
}
