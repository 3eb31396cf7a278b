package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/shiptrace/internal/ir"
)

func TestResolveOwner(t *testing.T) {
	tests := []struct {
		name string
		rec  ir.Record
		want string
	}{
		{
			name: "supplier wins over decision",
			rec:  ir.MustRecord([]string{"supplier_id", "decision"}, ir.String("SUP-17"), ir.String("Reject")),
			want: "Carrier_SUP-17",
		},
		{
			name: "numeric supplier",
			rec:  ir.MustRecord([]string{"supplier_id"}, ir.Int(17)),
			want: "Carrier_17",
		},
		{
			name: "null supplier falls through",
			rec:  ir.MustRecord([]string{"supplier_id", "decision"}, ir.Null{}, ir.String("Release")),
			want: "QA_Team",
		},
		{
			name: "decision",
			rec:  ir.MustRecord([]string{"decision", "status"}, ir.String("Release"), ir.String("Released")),
			want: "QA_Team",
		},
		{
			name: "quarantined status",
			rec:  ir.MustRecord([]string{"decision", "status"}, ir.Null{}, ir.String("Quarantined")),
			want: "QA_Team",
		},
		{
			name: "other status",
			rec:  ir.MustRecord([]string{"status"}, ir.String("quarantined")),
			want: "Unknown",
		},
		{
			name: "nothing",
			rec:  ir.MustRecord([]string{"alert_id"}, ir.String("A-1")),
			want: "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveOwner(DefaultOwnerRules, tt.rec))
		})
	}
}

func TestResolveOwner_CustomChain(t *testing.T) {
	rules := []OwnerRule{{
		Name: "warehouse",
		Resolve: func(rec ir.Record) (string, bool) {
			v, ok := rec.Get("location")
			return "Warehouse_" + v.String(), ok && !ir.IsNull(v)
		},
	}}
	rec := ir.MustRecord([]string{"location"}, ir.String("DUB-WH1"))
	assert.Equal(t, "Warehouse_DUB-WH1", ResolveOwner(rules, rec))
	assert.Equal(t, UnknownOwner, ResolveOwner(nil, rec))
}

func TestResolveTimestamp(t *testing.T) {
	cols := []string{"timestamp", "dispatch_dt", "start_ts", "decision_dt", "event_dt"}

	rec := ir.MustRecord(cols, ir.Null{}, ir.String(""), ir.Null{}, ir.String("2024-01-06T09:00"), ir.String("2024-01-07"))
	ts, ok := ResolveTimestamp(DefaultTimestampColumns, rec)
	assert.True(t, ok)
	assert.Equal(t, ir.String("2024-01-06T09:00"), ts)

	ts, ok = ResolveTimestamp(DefaultTimestampColumns, ir.MustRecord([]string{"timestamp"}, ir.Int(9)))
	assert.True(t, ok)
	assert.Equal(t, ir.Int(9), ts)

	_, ok = ResolveTimestamp(DefaultTimestampColumns, ir.MustRecord([]string{"other"}, ir.String("x")))
	assert.False(t, ok)
}

func TestNormalizeTime(t *testing.T) {
	assert.Equal(t, "2024-01-05T10:00:00.000000000Z", normalizeTime("2024-01-05T10:00"))
	assert.Equal(t, "2024-01-05T10:00:00.000000000Z", normalizeTime("2024-01-05 10:00:00"))
	assert.Equal(t, "2024-01-05T09:00:00.000000000Z", normalizeTime("2024-01-05T10:00:00+01:00"))
	assert.Equal(t, "2024-01-05T00:00:00.000000000Z", normalizeTime("2024-01-05"))
	assert.Equal(t, "not a time", normalizeTime("not a time"))

	// Fractional seconds order after whole seconds.
	assert.Less(t, normalizeTime("2024-01-05T10:00:00Z"), normalizeTime("2024-01-05T10:00:00.5Z"))
}

func TestSortKey_Compare(t *testing.T) {
	tests := []struct {
		name string
		a, b ir.Value
		want int
	}{
		{"ints by magnitude", ir.Int(9), ir.Int(10), -1},
		{"ints by magnitude reversed", ir.Int(100), ir.Int(10), 1},
		{"int equals float", ir.Int(10), ir.Float(10), 0},
		{"float between ints", ir.Float(9.5), ir.Int(10), -1},
		{"number before text", ir.Int(100), ir.String("2024-01-05"), -1},
		{"text after number", ir.String("2024-01-05"), ir.Int(9), 1},
		{"text normalized", ir.String("2024-01-05T10:00:00+01:00"), ir.String("2024-01-05T09:30"), -1},
		{"text equal after normalizing", ir.String("2024-01-05 10:00"), ir.String("2024-01-05T10:00"), 0},
		{"numeric strings stay text", ir.String("10"), ir.String("9"), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, newSortKey(tt.a).compare(newSortKey(tt.b)))
		})
	}
}
