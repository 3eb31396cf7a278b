package queryir

import (
	"fmt"

	"github.com/roach88/shiptrace/internal/ir"
)

// Validate checks q against the schema the source declared when it was read.
//
// Every field a predicate references must be a column of schema. The first
// unknown column fails the whole query with ir.ErrCodeUnknownColumn; the
// error carries the available column list. Validate is a pure function.
func Validate(q Query, schema ir.Schema) error {
	v := &validator{schema: schema}
	return v.validateQuery(q)
}

// validator carries the schema during traversal.
type validator struct {
	schema ir.Schema
	source string
}

// validateQuery validates a query node.
func (v *validator) validateQuery(q Query) error {
	switch query := q.(type) {
	case Select:
		return v.validateSelect(query)
	case *Select:
		if query == nil {
			return ir.NewInternal("validate query", fmt.Errorf("nil select"))
		}
		return v.validateSelect(*query)
	case nil:
		return ir.NewInternal("validate query", fmt.Errorf("nil query"))
	default:
		return ir.NewInternal("validate query", fmt.Errorf("unknown query type: %T", q))
	}
}

// validateSelect validates a Select node.
func (v *validator) validateSelect(sel Select) error {
	v.source = sel.From
	if sel.Filter == nil {
		return nil
	}
	return v.validatePredicate(sel.Filter)
}

// validatePredicate recursively validates a predicate node.
func (v *validator) validatePredicate(p Predicate) error {
	switch pred := p.(type) {
	case nil:
		return nil
	case Equals:
		return v.checkField(pred.Field)
	case *Equals:
		return v.checkField(pred.Field)
	case In:
		return v.checkField(pred.Field)
	case *In:
		return v.checkField(pred.Field)
	case And:
		return v.validateAnd(pred)
	case *And:
		return v.validateAnd(*pred)
	default:
		return ir.NewInternal("validate filter", fmt.Errorf("unknown predicate type: %T", p))
	}
}

// validateAnd validates every conjunct, stopping at the first failure.
func (v *validator) validateAnd(and And) error {
	for _, sub := range and.Predicates {
		if err := v.validatePredicate(sub); err != nil {
			return err
		}
	}
	return nil
}

// checkField fails with UnknownColumn when field is not in the schema.
func (v *validator) checkField(field string) error {
	if !v.schema.Has(field) {
		return ir.NewUnknownColumn(field, v.source, v.schema.Names())
	}
	return nil
}
