package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind identifies the scalar type of a Value or of a schema column.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
)

// String returns the lower-case kind name used in schema descriptors.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalJSON renders the kind by name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Value is a sealed interface representing one scalar cell of a Record.
// Only Null, String, Int, Float, and Bool implement this.
type Value interface {
	value() // Sealed - only these types implement it

	// Kind reports the scalar type.
	Kind() Kind

	// String renders the value as text. Null renders as "".
	String() string
}

// Null represents a missing cell.
type Null struct{}

func (Null) value() {}
func (Null) Kind() Kind { return KindNull }
func (Null) String() string { return "" }
func (Null) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// String represents a text cell.
type String string

func (String) value() {}
func (String) Kind() Kind { return KindString }
func (s String) String() string { return string(s) }

// Int represents an integral numeric cell.
type Int int64

func (Int) value() {}
func (Int) Kind() Kind { return KindInt }
func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

// Float represents a non-integral numeric cell.
type Float float64

func (Float) value() {}
func (Float) Kind() Kind { return KindFloat }
func (f Float) String() string {
	return strconv.FormatFloat(float64(f), 'f', -1, 64)
}

// MarshalJSON renders NaN and infinities as null; JSON has no spelling for them.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

// Bool represents a boolean cell.
type Bool bool

func (Bool) value() {}
func (Bool) Kind() Kind { return KindBool }
func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

// IsNull reports whether v is absent or Null.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}

// Number returns the numeric value of v and whether v is numeric.
// Bool is not numeric here even though storage treats true as 1.
func Number(v Value) (float64, bool) {
	switch val := v.(type) {
	case Int:
		return float64(val), true
	case Float:
		return float64(val), true
	default:
		return 0, false
	}
}

// Native converts a Value to the Go type a JSON encoder or SQL driver expects.
func Native(v Value) any {
	switch val := v.(type) {
	case nil, Null:
		return nil
	case String:
		return string(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case Bool:
		return bool(val)
	default:
		return nil
	}
}

// FromAny converts a decoded JSON or YAML value into a Value.
// json.Number is split into Int or Float depending on its spelling.
// Collections are rejected; membership sets are built element by element.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(int64(val)), nil
	case int32:
		return Int(int64(val)), nil
	case int64:
		return Int(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return Float(float64(val)), nil
		}
		return Int(int64(val)), nil
	case float32:
		return floatValue(float64(val)), nil
	case float64:
		return floatValue(val), nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", val.String(), err)
		}
		return Float(f), nil
	default:
		return nil, fmt.Errorf("unsupported scalar type: %T", v)
	}
}

// floatValue keeps integral floats as Int so that JSON numbers decoded
// without UseNumber compare the same way as their integer spelling.
func floatValue(f float64) Value {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return Int(int64(f))
	}
	return Float(f)
}

// DecodeJSON decodes a JSON document preserving number spelling.
func DecodeJSON(data []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(dst)
}
