package queryir

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/roach88/shiptrace/internal/ir"
)

// ParseFilter parses a textual filter expression into a Predicate.
//
// Supported expression formats:
//   - "field == value" or "field = value" → Equals
//   - "field in (a, b, c)" → In
//   - "expr1 AND expr2" → And
//
// Values may be quoted ('x' or "x"), integers, floats, true/false or null.
// Anything else is an unquoted string. An empty expression yields nil.
func ParseFilter(expr string) (Predicate, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}

	parts := splitByAnd(expr)
	if len(parts) == 1 {
		return parseComparison(parts[0])
	}

	preds := make([]Predicate, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			return nil, ir.NewInvalidArgument("empty clause in filter: %s", expr)
		}
		pred, err := parseComparison(part)
		if err != nil {
			return nil, err
		}
		preds = append(preds, pred)
	}
	return And{Predicates: preds}, nil
}

// splitByAnd splits on the AND keyword (any case) outside quotes.
func splitByAnd(expr string) []string {
	var parts []string
	var quote byte
	start := 0
	lower := strings.ToLower(expr)
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == ' ' && strings.HasPrefix(lower[i:], " and "):
			parts = append(parts, strings.TrimSpace(expr[start:i]))
			start = i + len(" and ")
			i = start - 1
		}
	}
	return append(parts, strings.TrimSpace(expr[start:]))
}

// parseComparison parses one "field op value" clause.
func parseComparison(expr string) (Predicate, error) {
	if field, list, ok := cutIn(expr); ok {
		values, err := parseList(list)
		if err != nil {
			return nil, fmt.Errorf("%w in: %s", err, expr)
		}
		return In{Field: field, Values: values}, nil
	}

	idx := strings.Index(expr, "=")
	if idx <= 0 {
		return nil, ir.NewInvalidArgument("unsupported expression (no == found): %s", expr)
	}
	if expr[idx-1] == '!' {
		return nil, ir.NewInvalidArgument("unsupported operator != in: %s", expr)
	}

	field := strings.TrimSpace(expr[:idx])
	value := strings.TrimPrefix(expr[idx+1:], "=")
	if field == "" {
		return nil, ir.NewInvalidArgument("missing column in: %s", expr)
	}
	return Equals{Field: field, Value: parseLiteral(strings.TrimSpace(value))}, nil
}

// cutIn recognizes "field in (...)" and returns the field and list body.
func cutIn(expr string) (string, string, bool) {
	lower := strings.ToLower(expr)
	idx := strings.Index(lower, " in ")
	if idx <= 0 {
		return "", "", false
	}
	rest := strings.TrimSpace(expr[idx+len(" in "):])
	if !strings.HasPrefix(rest, "(") || !strings.HasSuffix(rest, ")") {
		return "", "", false
	}
	return strings.TrimSpace(expr[:idx]), rest[1 : len(rest)-1], true
}

// parseList splits a comma separated literal list, honoring quotes.
func parseList(body string) ([]ir.Value, error) {
	values := []ir.Value{}
	if strings.TrimSpace(body) == "" {
		return values, nil
	}
	var quote byte
	start := 0
	for i := 0; i <= len(body); i++ {
		if i < len(body) {
			c := body[i]
			if quote != 0 {
				if c == quote {
					quote = 0
				}
				continue
			}
			if c == '\'' || c == '"' {
				quote = c
				continue
			}
			if c != ',' {
				continue
			}
		}
		item := strings.TrimSpace(body[start:i])
		if item == "" {
			return nil, ir.NewInvalidArgument("empty list element")
		}
		values = append(values, parseLiteral(item))
		start = i + 1
	}
	if quote != 0 {
		return nil, ir.NewInvalidArgument("unterminated quote")
	}
	return values, nil
}

// parseLiteral types a literal the way a filter mapping would carry it.
func parseLiteral(s string) ir.Value {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return ir.String(s[1 : len(s)-1])
	}
	switch s {
	case "null":
		return ir.Null{}
	case "true":
		return ir.Bool(true)
	case "false":
		return ir.Bool(false)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ir.Int(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return ir.Float(f)
	}
	return ir.String(s)
}
