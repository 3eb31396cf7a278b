package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Fixture unit identifiers.
const (
	// UnitID has records in every fused source.
	UnitID = "SHP-001-1"

	// OtherUnitID has a shipment record and one sensor alert.
	OtherUnitID = "SHP-002-1"

	// MissingUnitID appears in no source.
	MissingUnitID = "SHP-404-1"
)

// Dataset is the investigation fixture, keyed by path under the data root.
//
// For UnitID it yields seven timestamped events and one movement without a
// timestamp. The waste log holds three Quarantine records with losses 2500,
// 3100.5 and null, so the historical average is 1866.83.
var Dataset = map[string]string{
	"logistics/logistics_shipments.csv": `shipment_id,supplier_id,product,dispatch_dt,origin,destination,value_usd
SHP-001-1,SUP-17,Insulin,2024-01-05T08:00,Basel,Dublin,48000
SHP-002-1,SUP-04,Vaccine,2024-01-06T09:30,Ghent,Lyon,91000
`,
	"iot/sensor_alerts.csv": `alert_id,shipment_id,timestamp,temp_c,severity
A-1,SHP-001-1,2024-01-05T10:00,9.2,High
A-2,SHP-001-2,2024-01-05T11:00,4.1,Low
A-3,SHP-001-1,2024-01-05T12:30,10.4,High
A-4,SHP-002-1,2024-01-06T12:00,8.7,Medium
`,
	"wms/wms_quarantine_log.csv": `quarantine_id,shipment_id,start_ts,status,decision,decision_dt
Q-1,SHP-001-1,2024-01-05T14:00,Quarantined,,
Q-2,SHP-001-1,,Released,Conditional Release,2024-01-06T09:00
`,
	"wms/wms_goods_movements.csv": `movement_id,shipment_id,event_dt,location,movement_type
M-1,SHP-001-1,2024-01-05T16:00,DUB-WH1,Receipt
M-2,SHP-001-1,,DUB-WH1,Putaway
`,
	"finance/finance_waste_log.csv": `waste_id,shipment_id,event_type,event_dt,total_loss_usd
W-1,SHP-900-1,Quarantine,2023-11-02T10:00,2500
W-2,SHP-901-1,Quarantine,2023-12-14T10:00,3100.5
W-3,SHP-902-1,Damage,2023-12-20T10:00,800
W-4,SHP-001-1,Quarantine,2024-01-07T10:00,
`,
}

// WriteDataset writes Dataset under a fresh temporary directory and returns
// the root.
func WriteDataset(t testing.TB) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range Dataset {
		WriteFile(t, root, rel, content)
	}
	return root
}

// WriteFile writes content to root/rel, creating parent directories.
func WriteFile(t testing.TB, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
	return path
}
