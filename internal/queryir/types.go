package queryir

import "github.com/roach88/shiptrace/internal/ir"

// Query represents an abstract query in the IR.
//
// This is a sealed interface; only Select implements it.
type Query interface {
	queryNode() // Marker method - seals interface to this package
}

// Predicate represents a row filter.
//
// This is a sealed interface. Predicate types:
//   - Equals: field = literal
//   - In: field ∈ {literals}
//   - And: all predicates must be true
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Select reads the rows of one source in natural order.
//
// Semantics:
//
//	SELECT * FROM <from> WHERE <filter> [LIMIT <limit>]
//
// All columns are always returned; the schema travels with the result.
// Limit <= 0 means unlimited. Rows keep the order of the backing file.
type Select struct {
	From   string    // Source name as resolved by the catalog
	Filter Predicate // nil = no filter
	Limit  int       // <= 0 = no limit
}

func (Select) queryNode() {}

// Equals matches rows whose field equals Value.
//
// Int and Float compare numerically; a String never equals a number.
// A Null value matches nothing.
type Equals struct {
	Field string
	Value ir.Value
}

func (Equals) predicateNode() {}

// In matches rows whose field equals any member of Values.
//
// An empty set matches nothing. A Null member matches null cells.
type In struct {
	Field  string
	Values []ir.Value
}

func (In) predicateNode() {}

// And represents a conjunction of predicates (all must be true).
// An empty And is always true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Fields returns the distinct fields referenced by p in first-seen order.
func Fields(p Predicate) []string {
	var out []string
	seen := make(map[string]bool)
	var walk func(Predicate)
	walk = func(p Predicate) {
		switch pred := p.(type) {
		case Equals:
			if !seen[pred.Field] {
				seen[pred.Field] = true
				out = append(out, pred.Field)
			}
		case *Equals:
			walk(*pred)
		case In:
			if !seen[pred.Field] {
				seen[pred.Field] = true
				out = append(out, pred.Field)
			}
		case *In:
			walk(*pred)
		case And:
			for _, sub := range pred.Predicates {
				walk(sub)
			}
		case *And:
			walk(*pred)
		}
	}
	walk(p)
	return out
}
