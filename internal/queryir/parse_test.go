package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shiptrace/internal/ir"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want Predicate
	}{
		{"empty", "  ", nil},
		{"double equals", "shipment_id == SHP-001-1", Equals{Field: "shipment_id", Value: ir.String("SHP-001-1")}},
		{"single equals", "shipment_id = 'SHP-001-1'", Equals{Field: "shipment_id", Value: ir.String("SHP-001-1")}},
		{"int", "qty == 5", Equals{Field: "qty", Value: ir.Int(5)}},
		{"float", "temp_c == 9.2", Equals{Field: "temp_c", Value: ir.Float(9.2)}},
		{"bool", "flagged == true", Equals{Field: "flagged", Value: ir.Bool(true)}},
		{"null", "decision == null", Equals{Field: "decision", Value: ir.Null{}}},
		{"quoted number stays string", `code == "42"`, Equals{Field: "code", Value: ir.String("42")}},
		{"membership", "severity in ('High', Low, 3)", In{Field: "severity", Values: []ir.Value{
			ir.String("High"), ir.String("Low"), ir.Int(3),
		}}},
		{"empty membership", "severity IN ()", In{Field: "severity", Values: []ir.Value{}}},
		{"and", "shipment_id == SHP-001-1 AND severity == High", And{Predicates: []Predicate{
			Equals{Field: "shipment_id", Value: ir.String("SHP-001-1")},
			Equals{Field: "severity", Value: ir.String("High")},
		}}},
		{"and inside quotes", "reason == 'heat and humidity' and zone == A", And{Predicates: []Predicate{
			Equals{Field: "reason", Value: ir.String("heat and humidity")},
			Equals{Field: "zone", Value: ir.String("A")},
		}}},
		{"comma inside quotes", "reason in ('a, b', c)", In{Field: "reason", Values: []ir.Value{
			ir.String("a, b"), ir.String("c"),
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFilter(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFilter_Errors(t *testing.T) {
	for _, expr := range []string{
		"shipment_id",
		"shipment_id != SHP-001-1",
		"== SHP-001-1",
		"a == 1 AND  AND b == 2",
		"severity in (High,,Low)",
		"severity in ('High)",
	} {
		t.Run(expr, func(t *testing.T) {
			_, err := ParseFilter(expr)
			require.Error(t, err)
			assert.True(t, ir.IsCode(err, ir.ErrCodeInvalidArgument), "got %v", err)
		})
	}
}
