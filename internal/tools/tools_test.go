package tools

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shiptrace/internal/config"
	"github.com/roach88/shiptrace/internal/engine"
	"github.com/roach88/shiptrace/internal/ir"
	"github.com/roach88/shiptrace/internal/testutil"
)

func newTable(t *testing.T, dataDir string) *Table {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = dataDir
	return New(engine.New(cfg, engine.WithClock(testutil.NewFixedClock(testutil.FixedTime))))
}

// roundTrip renders a result and decodes it back into a generic document.
func roundTrip(t *testing.T, res Result) map[string]any {
	t.Helper()
	data, err := json.Marshal(res)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, ir.DecodeJSON(data, &doc))
	return doc
}

func TestListIsClosedAndOrdered(t *testing.T) {
	table := newTable(t, t.TempDir())

	var names []string
	for _, tool := range table.List() {
		names = append(names, tool.Name)
		assert.Equal(t, "object", tool.Parameters.Type)
		assert.NotEmpty(t, tool.Description)
		for _, req := range tool.Parameters.Required {
			assert.Contains(t, tool.Parameters.Properties, req)
		}
	}
	assert.Equal(t, []string{
		DiscoverSources, QuerySource, AnalyzeTimeline, ComputeCost, GenerateReport,
	}, names)
}

func TestListSchemaJSON(t *testing.T) {
	table := newTable(t, t.TempDir())

	tool, ok := table.Lookup(DiscoverSources)
	require.True(t, ok)
	data, err := json.Marshal(tool.Parameters)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"object","properties":{},"required":[]}`, string(data))

	tool, ok = table.Lookup(QuerySource)
	require.True(t, ok)
	assert.True(t, tool.Parameters.Properties["filters"].AdditionalProperties)
	assert.Equal(t, "integer", tool.Parameters.Properties["limit"].Type)

	_, ok = table.Lookup("drop_tables")
	assert.False(t, ok)
}

func TestListReturnsCopy(t *testing.T) {
	table := newTable(t, t.TempDir())
	tools := table.List()
	tools[0].Name = "changed"
	assert.Equal(t, DiscoverSources, table.List()[0].Name)
}

func TestCallDiscover(t *testing.T) {
	root := testutil.WriteDataset(t)
	table := newTable(t, root)

	res := table.Call(context.Background(), DiscoverSources, nil)
	require.False(t, res.IsError)

	doc := roundTrip(t, res)
	assert.Equal(t, root, doc["data_directory"])
	assert.Equal(t, json.Number("5"), doc["total_sources"])
}

func TestCallDiscoverMissingDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "absent")
	table := newTable(t, root)

	res := table.Call(context.Background(), DiscoverSources, map[string]any{})
	require.True(t, res.IsError)
	assert.Equal(t, ir.ErrCodeDirectoryNotFound, res.Code)

	doc := roundTrip(t, res)
	assert.Equal(t, "Data directory not found: "+root, doc["error"])
	assert.Equal(t, "DIRECTORY_NOT_FOUND", doc["code"])
	assert.Equal(t, []any{}, doc["sources"])
}

func TestCallQuery(t *testing.T) {
	table := newTable(t, testutil.WriteDataset(t))

	res := table.Call(context.Background(), QuerySource, map[string]any{
		"source_name": "sensor_alerts",
		"filters":     map[string]any{"shipment_id": "SHP-001-1"},
		"limit":       json.Number("1"),
	})
	require.False(t, res.IsError)

	doc := roundTrip(t, res)
	assert.Equal(t, json.Number("1"), doc["total_records"])
	results := doc["results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, "A-1", results[0].(map[string]any)["alert_id"])
}

func TestCallQueryLimitSpellings(t *testing.T) {
	table := newTable(t, testutil.WriteDataset(t))

	for _, limit := range []any{2, int64(2), 2.0, json.Number("2"), json.Number("2.0")} {
		res := table.Call(context.Background(), QuerySource, map[string]any{
			"source_name": "sensor_alerts",
			"limit":       limit,
		})
		require.False(t, res.IsError, "limit %#v", limit)
		assert.Equal(t, 2, roundTripTotal(t, res), "limit %#v", limit)
	}
}

func roundTripTotal(t *testing.T, res Result) int {
	t.Helper()
	n, err := roundTrip(t, res)["total_records"].(json.Number).Int64()
	require.NoError(t, err)
	return int(n)
}

func TestCallQueryErrors(t *testing.T) {
	table := newTable(t, testutil.WriteDataset(t))

	tests := []struct {
		name string
		args map[string]any
		code ir.ErrorCode
		key  string
	}{
		{"missing source", map[string]any{}, ir.ErrCodeInvalidArgument, ""},
		{"empty source", map[string]any{"source_name": ""}, ir.ErrCodeInvalidArgument, ""},
		{"non-string source", map[string]any{"source_name": 7}, ir.ErrCodeInvalidArgument, ""},
		{"filters not object", map[string]any{"source_name": "sensor_alerts", "filters": "x"}, ir.ErrCodeInvalidArgument, ""},
		{"fractional limit", map[string]any{"source_name": "sensor_alerts", "limit": 1.5}, ir.ErrCodeInvalidArgument, ""},
		{"negative limit", map[string]any{"source_name": "sensor_alerts", "limit": -1}, ir.ErrCodeInvalidArgument, ""},
		{"string limit", map[string]any{"source_name": "sensor_alerts", "limit": "3"}, ir.ErrCodeInvalidArgument, ""},
		{"unknown source", map[string]any{"source_name": "pallet_scans"}, ir.ErrCodeSourceNotFound, "searched_in"},
		{"unknown column", map[string]any{
			"source_name": "sensor_alerts",
			"filters":     map[string]any{"vessel": "X"},
		}, ir.ErrCodeUnknownColumn, "available_columns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := table.Call(context.Background(), QuerySource, tt.args)
			require.True(t, res.IsError)
			assert.Equal(t, tt.code, res.Code)

			doc := roundTrip(t, res)
			assert.NotEmpty(t, doc["error"])
			assert.Equal(t, string(tt.code), doc["code"])
			assert.Equal(t, []any{}, doc["results"])
			if tt.key != "" {
				assert.Contains(t, doc, tt.key)
			}
		})
	}
}

func TestCallQueryUnknownColumnMessage(t *testing.T) {
	table := newTable(t, testutil.WriteDataset(t))

	res := table.Call(context.Background(), QuerySource, map[string]any{
		"source_name": "sensor_alerts",
		"filters":     map[string]any{"vessel": "X"},
	})
	doc := roundTrip(t, res)
	assert.Equal(t, "Column 'vessel' not found in sensor_alerts.csv", doc["error"])
	assert.Equal(t,
		[]any{"alert_id", "shipment_id", "timestamp", "temp_c", "severity"},
		doc["available_columns"])
}

func TestCallTimeline(t *testing.T) {
	table := newTable(t, testutil.WriteDataset(t))

	res := table.Call(context.Background(), AnalyzeTimeline, map[string]any{"shipment_id": testutil.UnitID})
	require.False(t, res.IsError)

	doc := roundTrip(t, res)
	assert.Equal(t, testutil.UnitID, doc["shipment_id"])
	assert.Equal(t, json.Number("7"), doc["total_events"])
	assert.Contains(t, doc, "accountability")
	assert.NotContains(t, doc, "skipped_sources")
}

func TestCallTimelineUnknownUnitIsEmpty(t *testing.T) {
	table := newTable(t, testutil.WriteDataset(t))

	res := table.Call(context.Background(), AnalyzeTimeline, map[string]any{"shipment_id": testutil.MissingUnitID})
	require.False(t, res.IsError)

	doc := roundTrip(t, res)
	assert.Equal(t, json.Number("0"), doc["total_events"])
	assert.Equal(t, []any{}, doc["timeline"])
	assert.Equal(t, map[string]any{}, doc["accountability"])
}

func TestCallCost(t *testing.T) {
	table := newTable(t, testutil.WriteDataset(t))

	res := table.Call(context.Background(), ComputeCost, map[string]any{"shipment_id": testutil.UnitID})
	require.False(t, res.IsError)

	doc := roundTrip(t, res)
	assert.Equal(t, json.Number("1866.83"), doc["historical_waste_avg_usd"])
	assert.Contains(t, doc["scenarios"], "conditional_release")
	assert.Contains(t, doc["scenarios"], "reject_reship")
}

func TestCallCostUnitNotFound(t *testing.T) {
	table := newTable(t, testutil.WriteDataset(t))

	res := table.Call(context.Background(), ComputeCost, map[string]any{"shipment_id": testutil.MissingUnitID})
	require.True(t, res.IsError)

	doc := roundTrip(t, res)
	assert.Equal(t, map[string]any{
		"error":       "Shipment not found",
		"code":        "UNIT_NOT_FOUND",
		"shipment_id": testutil.MissingUnitID,
	}, doc)
}

func TestCallReport(t *testing.T) {
	table := newTable(t, t.TempDir())

	res := table.Call(context.Background(), GenerateReport, map[string]any{
		"shipment_id":        testutil.UnitID,
		"investigation_data": map[string]any{"summary": "Cold chain breach at Dublin hub"},
	})
	require.False(t, res.IsError)

	doc := roundTrip(t, res)
	header := doc["header"].(map[string]any)
	assert.Equal(t, "CAPA-SHP-001-1-20240108", header["document_id"])
	assert.Equal(t, "Cold chain breach at Dublin hub", doc["investigation_summary"])
	assert.Equal(t, []any{}, doc["recommendations"])
}

func TestCallReportArguments(t *testing.T) {
	table := newTable(t, t.TempDir())

	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing shipment", map[string]any{"investigation_data": map[string]any{}}},
		{"missing findings", map[string]any{"shipment_id": testutil.UnitID}},
		{"findings not object", map[string]any{"shipment_id": testutil.UnitID, "investigation_data": []any{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := table.Call(context.Background(), GenerateReport, tt.args)
			require.True(t, res.IsError)
			assert.Equal(t, ir.ErrCodeInvalidArgument, res.Code)
		})
	}
}

func TestCallMissingShipmentID(t *testing.T) {
	table := newTable(t, testutil.WriteDataset(t))

	for _, name := range []string{AnalyzeTimeline, ComputeCost} {
		res := table.Call(context.Background(), name, nil)
		require.True(t, res.IsError, name)

		doc := roundTrip(t, res)
		assert.Equal(t, "shipment_id is required", doc["error"], name)
		assert.Equal(t, "INVALID_ARGUMENT", doc["code"], name)
	}
}

func TestCallUnknownTool(t *testing.T) {
	table := newTable(t, t.TempDir())

	res := table.Call(context.Background(), "delete_everything", nil)
	require.True(t, res.IsError)
	assert.Equal(t, "delete_everything", res.Tool)

	doc := roundTrip(t, res)
	assert.Equal(t, "Unknown tool: delete_everything", doc["error"])
	assert.Equal(t, "INVALID_ARGUMENT", doc["code"])
}

func TestCallCancelled(t *testing.T) {
	table := newTable(t, testutil.WriteDataset(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := table.Call(ctx, AnalyzeTimeline, map[string]any{"shipment_id": testutil.UnitID})
	require.True(t, res.IsError)
	assert.Equal(t, ir.ErrCodeInternal, res.Code)
	assert.Equal(t, testutil.UnitID, roundTrip(t, res)["shipment_id"])
}

func TestTraceID(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", TraceID(ctx))
	assert.Equal(t, "abc", TraceID(WithTraceID(ctx, "abc")))
}
