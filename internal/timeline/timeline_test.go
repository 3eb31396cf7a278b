package timeline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shiptrace/internal/accountability"
	"github.com/roach88/shiptrace/internal/ir"
	"github.com/roach88/shiptrace/internal/query"
	"github.com/roach88/shiptrace/internal/testutil"
)

func TestFuse_Dataset(t *testing.T) {
	root := testutil.WriteDataset(t)
	f := NewFuser(query.New(root), DefaultPlan())

	tl, err := f.Fuse(context.Background(), testutil.UnitID)
	require.NoError(t, err)

	assert.Equal(t, testutil.UnitID, tl.ShipmentID)
	assert.Equal(t, 7, tl.TotalEvents)
	assert.Equal(t, 1, tl.DroppedEvents)
	assert.Empty(t, tl.Skipped)

	type row struct{ ts, source, owner string }
	var got []row
	for _, e := range tl.Timeline {
		got = append(got, row{e.Timestamp, e.Source, e.Owner})
	}
	assert.Equal(t, []row{
		{"2024-01-05T08:00", "logistics_shipments", "Carrier_SUP-17"},
		{"2024-01-05T10:00", "sensor_alerts", "Unknown"},
		{"2024-01-05T12:30", "sensor_alerts", "Unknown"},
		{"2024-01-05T14:00", "wms_quarantine_log", "QA_Team"},
		{"2024-01-05T16:00", "wms_goods_movements", "Unknown"},
		{"2024-01-06T09:00", "wms_quarantine_log", "QA_Team"},
		{"2024-01-07T10:00", "finance_waste_log", "Unknown"},
	}, got)

	assert.Equal(t, accountability.Distribution{
		"Carrier_SUP-17": {ContributionPct: 14.3, EventCount: 1},
		"Unknown":        {ContributionPct: 57.1, EventCount: 4},
		"QA_Team":        {ContributionPct: 28.6, EventCount: 2},
	}, tl.Accountability)
}

func TestFuse_NonDecreasing(t *testing.T) {
	root := testutil.WriteDataset(t)
	tl, err := NewFuser(query.New(root), DefaultPlan()).Fuse(context.Background(), testutil.UnitID)
	require.NoError(t, err)

	var prev time.Time
	for _, e := range tl.Timeline {
		ts, err := time.Parse("2006-01-02T15:04", e.Timestamp)
		require.NoError(t, err)
		assert.False(t, ts.Before(prev), "%s reported after %s", e.Timestamp, prev)
		prev = ts
	}
}

func TestFuse_NumericTimestamps(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "iot/sensor_alerts.csv", `alert_id,shipment_id,timestamp,temp_c,severity
A-1,S1,100,9.2,High
A-2,S1,9,4.1,Low
A-3,S1,10,10.4,High
`)

	tl, err := NewFuser(query.New(root), DefaultPlan()).Fuse(context.Background(), "S1")
	require.NoError(t, err)

	var got []string
	for _, e := range tl.Timeline {
		got = append(got, e.Timestamp)
	}
	assert.Equal(t, []string{"9", "10", "100"}, got)
}

func TestFuse_UnknownUnit(t *testing.T) {
	root := testutil.WriteDataset(t)
	tl, err := NewFuser(query.New(root), DefaultPlan()).Fuse(context.Background(), testutil.MissingUnitID)
	require.NoError(t, err)

	assert.Equal(t, 0, tl.TotalEvents)
	assert.NotNil(t, tl.Timeline)
	assert.Empty(t, tl.Accountability)

	data, err := json.Marshal(tl)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"shipment_id": "SHP-404-1",
		"total_events": 0,
		"dropped_events": 0,
		"timeline": [],
		"accountability": {}
	}`, string(data))
}

func TestFuse_MissingSourcesDegrade(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "iot/sensor_alerts.csv", testutil.Dataset["iot/sensor_alerts.csv"])
	// Present but without the unit column.
	testutil.WriteFile(t, root, "wms/wms_goods_movements.csv", "movement_id,event_dt\nM-1,2024-01-05T16:00\n")

	tl, err := NewFuser(query.New(root), DefaultPlan()).Fuse(context.Background(), testutil.UnitID)
	require.NoError(t, err)

	assert.Equal(t, 2, tl.TotalEvents)
	codes := map[string]ir.ErrorCode{}
	for _, s := range tl.Skipped {
		codes[s.Source] = s.Code
	}
	assert.Equal(t, map[string]ir.ErrorCode{
		"logistics_shipments": ir.ErrCodeSourceNotFound,
		"wms_quarantine_log":  ir.ErrCodeSourceNotFound,
		"wms_goods_movements": ir.ErrCodeUnknownColumn,
		"finance_waste_log":   ir.ErrCodeSourceNotFound,
	}, codes)
}

func TestFuse_MissingDirectoryDegrades(t *testing.T) {
	tl, err := NewFuser(query.New(t.TempDir()+"/missing"), DefaultPlan()).Fuse(context.Background(), testutil.UnitID)
	require.NoError(t, err)
	assert.Equal(t, 0, tl.TotalEvents)
	assert.Len(t, tl.Skipped, 5)
}

// stubQuerier returns canned results per source.
type stubQuerier struct {
	results map[string][]ir.Record
	err     error
	calls   []string
}

func (s *stubQuerier) Query(_ context.Context, source string, filters map[string]any, limit int) (*query.Result, error) {
	s.calls = append(s.calls, source)
	if s.err != nil {
		return nil, s.err
	}
	recs, ok := s.results[source]
	if !ok {
		return nil, ir.NewSourceNotFound(source, "stub")
	}
	return &query.Result{Results: recs, TotalRecords: len(recs)}, nil
}

func TestFuse_TiesKeepDeclarationOrder(t *testing.T) {
	cols := []string{"shipment_id", "timestamp", "n"}
	q := &stubQuerier{results: map[string][]ir.Record{
		"a": {
			ir.MustRecord(cols, ir.String("U"), ir.String("2024-01-01T10:00"), ir.Int(1)),
			ir.MustRecord(cols, ir.String("U"), ir.String("2024-01-01T09:00"), ir.Int(2)),
		},
		"b": {
			ir.MustRecord(cols, ir.String("U"), ir.String("2024-01-01T10:00:00"), ir.Int(3)),
			ir.MustRecord(cols, ir.String("U"), ir.String("2024-01-01 10:00"), ir.Int(4)),
		},
	}}
	plan := DefaultPlan()
	plan.Sources = []string{"a", "b"}

	tl, err := NewFuser(q, plan).Fuse(context.Background(), "U")
	require.NoError(t, err)

	var order []string
	for _, e := range tl.Timeline {
		v, _ := e.Data.Get("n")
		order = append(order, v.String())
	}
	// Different spellings of the same instant tie and keep insertion order.
	assert.Equal(t, []string{"2", "1", "3", "4"}, order)
	assert.Equal(t, []string{"a", "b"}, q.calls)
}

func TestFuse_DroppedAreCounted(t *testing.T) {
	cols := []string{"shipment_id", "timestamp", "event_dt"}
	q := &stubQuerier{results: map[string][]ir.Record{
		"a": {
			ir.MustRecord(cols, ir.String("U"), ir.Null{}, ir.Null{}),
			ir.MustRecord(cols, ir.String("U"), ir.String(""), ir.String("2024-01-02")),
			ir.MustRecord(cols, ir.String("U")),
		},
	}}
	plan := DefaultPlan()
	plan.Sources = []string{"a"}

	tl, err := NewFuser(q, plan).Fuse(context.Background(), "U")
	require.NoError(t, err)
	assert.Equal(t, 1, tl.TotalEvents)
	assert.Equal(t, 2, tl.DroppedEvents)
	assert.Equal(t, "2024-01-02", tl.Timeline[0].Timestamp)
}

func TestFuse_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFuser(&stubQuerier{}, DefaultPlan()).Fuse(ctx, "U")
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFuse_QuerierErrorDegrades(t *testing.T) {
	q := &stubQuerier{err: errors.New("disk on fire")}
	tl, err := NewFuser(q, DefaultPlan()).Fuse(context.Background(), "U")
	require.NoError(t, err)
	assert.Len(t, tl.Skipped, 5)
	assert.Equal(t, ir.ErrCodeInternal, tl.Skipped[0].Code)
}

func TestEvent_JSON(t *testing.T) {
	e := Event{
		Timestamp: "2024-01-05T10:00",
		Source:    "sensor_alerts",
		Owner:     "Unknown",
		Data:      ir.MustRecord([]string{"alert_id", "temp_c"}, ir.String("A-1"), ir.Float(9.2)),
		Seq:       4,
	}
	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"timestamp":"2024-01-05T10:00","source":"sensor_alerts","owner":"Unknown","data":{"alert_id":"A-1","temp_c":9.2}}`, string(data))
}
