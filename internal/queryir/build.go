package queryir

import (
	"reflect"
	"sort"

	"github.com/roach88/shiptrace/internal/ir"
)

// FromFilters lowers a filter mapping into a Select.
//
// Each entry becomes one conjunct: a scalar value is an Equals, a slice or
// array is an In. Conjuncts are ordered by column name so that equal
// mappings produce identical queries. A nil or empty mapping yields a Select
// with no filter.
func FromFilters(from string, filters map[string]any, limit int) (Select, error) {
	sel := Select{From: from, Limit: limit}
	if len(filters) == 0 {
		return sel, nil
	}

	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	preds := make([]Predicate, 0, len(keys))
	for _, field := range keys {
		pred, err := predicateFor(field, filters[field])
		if err != nil {
			return Select{}, err
		}
		preds = append(preds, pred)
	}

	if len(preds) == 1 {
		sel.Filter = preds[0]
	} else {
		sel.Filter = And{Predicates: preds}
	}
	return sel, nil
}

// predicateFor builds Equals or In for a single filter entry.
func predicateFor(field string, raw any) (Predicate, error) {
	if raw != nil {
		rv := reflect.ValueOf(raw)
		if k := rv.Kind(); (k == reflect.Slice || k == reflect.Array) && rv.Type().Elem().Kind() != reflect.Uint8 {
			values := make([]ir.Value, 0, rv.Len())
			for i := 0; i < rv.Len(); i++ {
				v, err := ir.FromAny(rv.Index(i).Interface())
				if err != nil {
					return nil, ir.NewInvalidArgument("filter %q: %v", field, err)
				}
				values = append(values, v)
			}
			return In{Field: field, Values: values}, nil
		}
	}

	v, err := ir.FromAny(raw)
	if err != nil {
		return nil, ir.NewInvalidArgument("filter %q: %v", field, err)
	}
	return Equals{Field: field, Value: v}, nil
}
