package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Column describes one column of a source as read from its header.
type Column struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// Schema is the ordered column list a source declares when it is read.
// Schemas are discovered, never declared in code.
type Schema struct {
	Columns []Column `json:"columns"`
}

// Names returns the column names in declaration order.
func (s Schema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Index returns the position of the named column, or -1.
func (s Schema) Index(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Has reports whether the schema declares the named column.
func (s Schema) Has(name string) bool {
	return s.Index(name) >= 0
}

// Record is an ordered mapping from column name to Value.
// Records are immutable once constructed; accessors return copies.
type Record struct {
	columns []string
	values  []Value
}

// NewRecord builds a Record from parallel column and value slices.
// Missing values are filled with Null; extra values are an error.
func NewRecord(columns []string, values []Value) (Record, error) {
	if len(values) > len(columns) {
		return Record{}, fmt.Errorf("record has %d values for %d columns", len(values), len(columns))
	}
	r := Record{
		columns: make([]string, len(columns)),
		values:  make([]Value, len(columns)),
	}
	copy(r.columns, columns)
	for i := range r.values {
		if i < len(values) && values[i] != nil {
			r.values[i] = values[i]
		} else {
			r.values[i] = Null{}
		}
	}
	return r, nil
}

// MustRecord is NewRecord for literals in tests and fixtures.
func MustRecord(columns []string, values ...Value) Record {
	r, err := NewRecord(columns, values)
	if err != nil {
		panic(err)
	}
	return r
}

// Len returns the number of columns.
func (r Record) Len() int {
	return len(r.columns)
}

// Columns returns the column names in order.
func (r Record) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// Get returns the value of the named column and whether the column exists.
func (r Record) Get(column string) (Value, bool) {
	for i, c := range r.columns {
		if c == column {
			return r.values[i], true
		}
	}
	return nil, false
}

// Has reports whether the column exists and holds a non-null value.
func (r Record) Has(column string) bool {
	v, ok := r.Get(column)
	return ok && !IsNull(v)
}

// MarshalJSON writes the record as a JSON object in column order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", c, err)
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", c, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
