package timeline

import (
	"cmp"
	"strings"
	"time"

	"github.com/roach88/shiptrace/internal/ir"
)

// DefaultTimestampColumns lists the candidate timestamp columns in priority
// order.
var DefaultTimestampColumns = []string{"timestamp", "dispatch_dt", "start_ts", "decision_dt", "event_dt"}

// UnknownOwner is assigned when no owner rule matches.
const UnknownOwner = "Unknown"

// OwnerRule is one step of the owner resolution chain.
// Resolve reports the owner and whether the rule applies to the record.
type OwnerRule struct {
	Name    string
	Resolve func(rec ir.Record) (string, bool)
}

// DefaultOwnerRules is the owner chain, evaluated first match wins:
//
//  1. supplier_id present → "Carrier_<supplier_id>"
//  2. decision present → "QA_Team"
//  3. status == "Quarantined" → "QA_Team"
//
// A field is present when the column exists and the cell is non-null.
var DefaultOwnerRules = []OwnerRule{
	{
		Name: "supplier",
		Resolve: func(rec ir.Record) (string, bool) {
			v, ok := rec.Get("supplier_id")
			if !ok || ir.IsNull(v) {
				return "", false
			}
			return "Carrier_" + v.String(), true
		},
	},
	{
		Name: "decision",
		Resolve: func(rec ir.Record) (string, bool) {
			return "QA_Team", rec.Has("decision")
		},
	},
	{
		Name: "quarantine_status",
		Resolve: func(rec ir.Record) (string, bool) {
			v, ok := rec.Get("status")
			return "QA_Team", ok && v == ir.String("Quarantined")
		},
	},
}

// ResolveOwner applies rules in order and returns the first match, or
// UnknownOwner.
func ResolveOwner(rules []OwnerRule, rec ir.Record) string {
	for _, r := range rules {
		if owner, ok := r.Resolve(rec); ok {
			return owner
		}
	}
	return UnknownOwner
}

// ResolveTimestamp returns the first candidate column holding a non-null,
// non-empty value.
func ResolveTimestamp(columns []string, rec ir.Record) (ir.Value, bool) {
	for _, c := range columns {
		v, ok := rec.Get(c)
		if !ok || ir.IsNull(v) {
			continue
		}
		if v.String() != "" {
			return v, true
		}
	}
	return nil, false
}

// timeLayouts are the timestamp spellings normalized for sorting.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// sortLayout is fixed width so normalized keys compare lexically.
const sortLayout = "2006-01-02T15:04:05.000000000Z"

// normalizeTime converts ts to UTC when it parses under a known layout;
// otherwise ts is returned unchanged.
func normalizeTime(ts string) string {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.UTC().Format(sortLayout)
		}
	}
	return ts
}

// sortKey orders timestamps. Int and Float cells compare as numbers and
// sort before text; everything else compares by its normalized string.
type sortKey struct {
	numeric bool
	num     float64
	text    string
}

func newSortKey(v ir.Value) sortKey {
	if n, ok := ir.Number(v); ok {
		return sortKey{numeric: true, num: n}
	}
	return sortKey{text: normalizeTime(v.String())}
}

// compare returns -1, 0 or +1.
func (k sortKey) compare(o sortKey) int {
	switch {
	case k.numeric && o.numeric:
		return cmp.Compare(k.num, o.num)
	case k.numeric:
		return -1
	case o.numeric:
		return 1
	default:
		return strings.Compare(k.text, o.text)
	}
}
