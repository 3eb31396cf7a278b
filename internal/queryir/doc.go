// Package queryir is the filter intermediate representation used by the
// query engine.
//
// A caller's filter mapping (column → scalar, or column → set of scalars) or
// a textual filter expression is lowered into a Select whose Filter is a tree
// of sealed predicates. Backends compile the tree; today the only backend is
// querysql, which emits parameterized SQLite.
//
//	[filter mapping]   ┐
//	                   ├→ [Select + Predicate tree] → querysql → store
//	[filter expression]┘
//
// PREDICATES:
//
//   - Equals(field, value) - exact equality; null never matches
//   - In(field, values)    - membership; a null member matches null cells
//   - And(predicates...)   - conjunction; empty And is always true
//
// Filters are commutative: FromFilters orders the conjuncts by column name,
// so two mappings with the same pairs produce the same Select regardless of
// map iteration order.
//
// SCHEMA CHECK:
//
// Sources are schema-on-read. Validate checks every field referenced by a
// query against the schema discovered when the source was loaded and fails
// with ir.ErrCodeUnknownColumn on the first unknown column. A filter on an
// absent column is never treated as a silent no-match.
//
// SEALED INTERFACES:
//
// Query and Predicate use the marker-method pattern so backends can switch
// exhaustively:
//
//	switch p := pred.(type) {
//	case Equals:
//	case In:
//	case And:
//	}
package queryir
