package store

import (
	"context"
	"testing"

	"github.com/roach88/shiptrace/internal/ir"
	"github.com/roach88/shiptrace/internal/queryir"
)

var wasteSchema = ir.Schema{Columns: []ir.Column{
	{Name: "waste_id", Kind: ir.KindString},
	{Name: "event_type", Kind: ir.KindString},
	{Name: "total_loss_usd", Kind: ir.KindFloat},
	{Name: "units", Kind: ir.KindInt},
	{Name: "insured", Kind: ir.KindBool},
	{Name: "Event_Type", Kind: ir.KindString},
}}

func wasteRecords() []ir.Record {
	cols := wasteSchema.Names()
	return []ir.Record{
		ir.MustRecord(cols, ir.String("W-1"), ir.String("Quarantine"), ir.Float(2500), ir.Int(10), ir.Bool(true), ir.String("a")),
		ir.MustRecord(cols, ir.String("W-2"), ir.String("Damage"), ir.Float(800.5), ir.Int(4), ir.Bool(false), ir.String("b")),
		ir.MustRecord(cols, ir.String("W-3"), ir.String("Quarantine"), ir.Null{}, ir.Null{}, ir.Null{}, ir.String("c")),
		ir.MustRecord(cols, ir.String("W-4"), ir.String("10"), ir.Float(3100.25), ir.Int(5), ir.Bool(true), ir.Null{}),
	}
}

// createTestStore opens a store loaded with the waste fixture.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s, err := Open(ctx)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.Load(ctx, wasteSchema, wasteRecords()); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	return s
}

func ids(t *testing.T, records []ir.Record) []string {
	t.Helper()
	out := make([]string, len(records))
	for i, r := range records {
		v, ok := r.Get("waste_id")
		if !ok {
			t.Fatalf("record %d has no waste_id", i)
		}
		out[i] = v.String()
	}
	return out
}

func equalIDs(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestSelect_AllRowsInFileOrder(t *testing.T) {
	s := createTestStore(t)

	got, err := s.Select(context.Background(), queryir.Select{From: "finance_waste_log"})
	if err != nil {
		t.Fatalf("Select() failed: %v", err)
	}
	equalIDs(t, ids(t, got), "W-1", "W-2", "W-3", "W-4")
}

func TestSelect_RoundTripsKinds(t *testing.T) {
	s := createTestStore(t)

	got, err := s.Select(context.Background(), queryir.Select{From: "x"})
	if err != nil {
		t.Fatalf("Select() failed: %v", err)
	}

	want := wasteRecords()
	for i := range want {
		for _, c := range wasteSchema.Columns {
			gv, _ := got[i].Get(c.Name)
			wv, _ := want[i].Get(c.Name)
			if gv != wv {
				t.Errorf("row %d column %s: got %#v, want %#v", i, c.Name, gv, wv)
			}
		}
	}
}

func TestSelect_Filters(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		name string
		pred queryir.Predicate
		want []string
	}{
		{"string equality", queryir.Equals{Field: "event_type", Value: ir.String("Quarantine")}, []string{"W-1", "W-3"}},
		{"int equals float", queryir.Equals{Field: "units", Value: ir.Float(10)}, []string{"W-1"}},
		{"float equals int", queryir.Equals{Field: "total_loss_usd", Value: ir.Int(2500)}, []string{"W-1"}},
		{"string never equals number", queryir.Equals{Field: "event_type", Value: ir.Int(10)}, nil},
		{"number never equals string", queryir.Equals{Field: "units", Value: ir.String("10")}, nil},
		{"bool", queryir.Equals{Field: "insured", Value: ir.Bool(true)}, []string{"W-1", "W-4"}},
		{"null equality", queryir.Equals{Field: "total_loss_usd", Value: ir.Null{}}, nil},
		{"membership", queryir.In{Field: "waste_id", Values: []ir.Value{ir.String("W-4"), ir.String("W-2")}}, []string{"W-2", "W-4"}},
		{"membership with null", queryir.In{Field: "units", Values: []ir.Value{ir.Int(4), ir.Null{}}}, []string{"W-2", "W-3"}},
		{"case-distinct columns", queryir.Equals{Field: "Event_Type", Value: ir.String("c")}, []string{"W-3"}},
		{"conjunction", queryir.And{Predicates: []queryir.Predicate{
			queryir.Equals{Field: "event_type", Value: ir.String("Quarantine")},
			queryir.Equals{Field: "insured", Value: ir.Bool(true)},
		}}, []string{"W-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Select(context.Background(), queryir.Select{From: "x", Filter: tt.pred})
			if err != nil {
				t.Fatalf("Select() failed: %v", err)
			}
			if got == nil {
				t.Fatal("Select() returned nil slice")
			}
			equalIDs(t, ids(t, got), tt.want...)
		})
	}
}

func TestSelect_Limit(t *testing.T) {
	s := createTestStore(t)

	got, err := s.Select(context.Background(), queryir.Select{
		From:   "x",
		Filter: queryir.Equals{Field: "event_type", Value: ir.String("Quarantine")},
		Limit:  1,
	})
	if err != nil {
		t.Fatalf("Select() failed: %v", err)
	}
	equalIDs(t, ids(t, got), "W-1")
}

func TestSelect_NotLoaded(t *testing.T) {
	s, err := Open(context.Background())
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := s.Select(context.Background(), queryir.Select{From: "x"}); err == nil {
		t.Fatal("expected error selecting from an unloaded store")
	}
}

func TestLoad_Twice(t *testing.T) {
	s := createTestStore(t)
	if err := s.Load(context.Background(), wasteSchema, nil); err == nil {
		t.Fatal("expected error loading twice")
	}
}

func TestLoad_NoRows(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if err := s.Load(ctx, wasteSchema, nil); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	got, err := s.Select(ctx, queryir.Select{From: "x"})
	if err != nil {
		t.Fatalf("Select() failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d rows, want 0", len(got))
	}
}

func TestClose_Nil(t *testing.T) {
	var s Store
	if err := s.Close(); err != nil {
		t.Fatalf("Close() on zero store: %v", err)
	}
}
