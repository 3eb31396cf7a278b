package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/shiptrace/internal/ir"
	"github.com/roach88/shiptrace/internal/queryir"
)

// SQLCompiler compiles queryir to parameterized SQL for SQLite.
//
// Every query orders by rowid so results keep the backing file's row order.
// All values are parameterized, never interpolated; identifiers are quoted.
type SQLCompiler struct {
	// Table overrides the FROM target. Empty uses Select.From.
	Table string

	// Columns maps logical column names to physical ones. When nil, field
	// names are used as-is.
	Columns map[string]string
}

// NewSQLCompiler creates a compiler that reads from table.
func NewSQLCompiler(table string) *SQLCompiler {
	return &SQLCompiler{Table: table}
}

// Compile converts a query to parameterized SQL.
// Returns (sql, params, error).
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	switch query := q.(type) {
	case queryir.Select:
		return c.compileSelect(query)
	case *queryir.Select:
		if query == nil {
			return "", nil, fmt.Errorf("cannot compile nil query")
		}
		return c.compileSelect(*query)
	case nil:
		return "", nil, fmt.Errorf("cannot compile nil query")
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

// compileSelect compiles a Select.
func (c *SQLCompiler) compileSelect(q queryir.Select) (string, []any, error) {
	table := c.Table
	if table == "" {
		table = q.From
	}
	if table == "" {
		return "", nil, fmt.Errorf("select has no source")
	}

	var b strings.Builder
	b.WriteString("SELECT * FROM ")
	b.WriteString(QuoteIdent(table))

	var params []any
	if q.Filter != nil {
		where, whereParams, err := c.compilePredicate(q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		b.WriteString(" WHERE ")
		b.WriteString(where)
		params = whereParams
	}

	b.WriteString(" ORDER BY rowid ASC")

	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		params = append(params, int64(q.Limit))
	}

	return b.String(), params, nil
}

// compilePredicate compiles a predicate to a WHERE fragment.
func (c *SQLCompiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case nil:
		return "1 = 1", nil, nil
	case queryir.Equals:
		return c.compileEquals(pred)
	case *queryir.Equals:
		return c.compileEquals(*pred)
	case queryir.In:
		return c.compileIn(pred)
	case *queryir.In:
		return c.compileIn(*pred)
	case queryir.And:
		return c.compileAnd(pred)
	case *queryir.And:
		return c.compileAnd(*pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// compileEquals compiles Equals to "field = ?".
// Null never equals anything, so an Equals on null compiles to false.
func (c *SQLCompiler) compileEquals(eq queryir.Equals) (string, []any, error) {
	if ir.IsNull(eq.Value) {
		return "0 = 1", nil, nil
	}
	col, err := c.column(eq.Field)
	if err != nil {
		return "", nil, err
	}
	param, err := valueToParam(eq.Value)
	if err != nil {
		return "", nil, fmt.Errorf("field %s: %w", eq.Field, err)
	}
	return col + " = ?", []any{param}, nil
}

// compileIn compiles In to "field IN (?, ...)", adding an IS NULL arm when
// the set contains null.
func (c *SQLCompiler) compileIn(in queryir.In) (string, []any, error) {
	col, err := c.column(in.Field)
	if err != nil {
		return "", nil, err
	}

	var params []any
	hasNull := false
	for _, v := range in.Values {
		if ir.IsNull(v) {
			hasNull = true
			continue
		}
		param, err := valueToParam(v)
		if err != nil {
			return "", nil, fmt.Errorf("field %s: %w", in.Field, err)
		}
		params = append(params, param)
	}

	var arms []string
	if len(params) > 0 {
		arms = append(arms, col+" IN ("+strings.TrimSuffix(strings.Repeat("?, ", len(params)), ", ")+")")
	}
	if hasNull {
		arms = append(arms, col+" IS NULL")
	}

	switch len(arms) {
	case 0:
		return "0 = 1", nil, nil
	case 1:
		return arms[0], params, nil
	default:
		return "(" + strings.Join(arms, " OR ") + ")", params, nil
	}
}

// compileAnd compiles a conjunction.
func (c *SQLCompiler) compileAnd(and queryir.And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil // Vacuous truth
	}

	parts := make([]string, 0, len(and.Predicates))
	var params []any
	for _, pred := range and.Predicates {
		sql, predParams, err := c.compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		if isAnd(pred) && len(and.Predicates) > 1 {
			sql = "(" + sql + ")"
		}
		parts = append(parts, sql)
		params = append(params, predParams...)
	}

	return strings.Join(parts, " AND "), params, nil
}

// column returns the quoted physical name of a logical column.
func (c *SQLCompiler) column(field string) (string, error) {
	if c.Columns == nil {
		return QuoteIdent(field), nil
	}
	phys, ok := c.Columns[field]
	if !ok {
		return "", fmt.Errorf("unknown column: %s", field)
	}
	return QuoteIdent(phys), nil
}

// isAnd reports whether p is a conjunction, which needs parentheses when nested.
func isAnd(p queryir.Predicate) bool {
	switch p.(type) {
	case queryir.And, *queryir.And:
		return true
	default:
		return false
	}
}

// QuoteIdent quotes an identifier for SQLite. Embedded double quotes are
// doubled, so any header text is a safe column name.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// valueToParam converts a Value to a driver parameter.
// Bool binds as 1/0, which SQLite compares numerically.
func valueToParam(v ir.Value) (any, error) {
	switch val := v.(type) {
	case ir.String:
		return string(val), nil
	case ir.Int:
		return int64(val), nil
	case ir.Float:
		return float64(val), nil
	case ir.Bool:
		if val {
			return int64(1), nil
		}
		return int64(0), nil
	default:
		return nil, fmt.Errorf("unsupported value type for SQL parameter: %T", v)
	}
}
