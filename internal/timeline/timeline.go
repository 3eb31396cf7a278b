// Package timeline fuses the records of several sources into one
// chronological account of a tracked unit.
//
// The fuser issues a fixed query plan: one query per configured source,
// filtered by the unit identifier. Sources that fail to resolve or that lack
// the unit column contribute no events; fusion never aborts on them. Each
// matched record becomes an Event with a resolved timestamp and owner.
// Records with no resolvable timestamp are counted as dropped.
package timeline

import (
	"context"
	"log/slog"
	"sort"

	"github.com/roach88/shiptrace/internal/accountability"
	"github.com/roach88/shiptrace/internal/ir"
	"github.com/roach88/shiptrace/internal/query"
)

// DefaultSources is the fixed query plan in declaration order.
var DefaultSources = []string{
	"logistics_shipments",
	"sensor_alerts",
	"wms_quarantine_log",
	"wms_goods_movements",
	"finance_waste_log",
}

// DefaultUnitColumn is the column every fused source is filtered on.
const DefaultUnitColumn = "shipment_id"

// Querier runs a filter mapping against a named source.
type Querier interface {
	Query(ctx context.Context, source string, filters map[string]any, limit int) (*query.Result, error)
}

// Plan configures which sources are fused and how fields are resolved.
type Plan struct {
	UnitColumn       string
	Sources          []string
	TimestampColumns []string
	OwnerRules       []OwnerRule
}

// DefaultPlan returns the standard five-source plan.
func DefaultPlan() Plan {
	return Plan{
		UnitColumn:       DefaultUnitColumn,
		Sources:          append([]string(nil), DefaultSources...),
		TimestampColumns: append([]string(nil), DefaultTimestampColumns...),
		OwnerRules:       DefaultOwnerRules,
	}
}

// Event is one normalized, timestamped, owner-attributed record.
type Event struct {
	Timestamp string    `json:"timestamp"`
	Source    string    `json:"source"`
	Owner     string    `json:"owner"`
	Data      ir.Record `json:"data"`

	// Seq is the insertion order across the whole plan.
	Seq int64 `json:"-"`

	key sortKey
}

// SkippedSource records a source that contributed no events because its
// query failed.
type SkippedSource struct {
	Source string       `json:"source"`
	Code   ir.ErrorCode `json:"code"`
	Error  string       `json:"error"`
}

// Timeline is the fused account of one unit.
type Timeline struct {
	ShipmentID     string                      `json:"shipment_id"`
	TotalEvents    int                         `json:"total_events"`
	DroppedEvents  int                         `json:"dropped_events"`
	Timeline       []Event                     `json:"timeline"`
	Accountability accountability.Distribution `json:"accountability"`
	Skipped        []SkippedSource             `json:"skipped_sources,omitempty"`
}

// Owners returns the owner of every event in timeline order.
func (t *Timeline) Owners() []string {
	owners := make([]string, len(t.Timeline))
	for i, e := range t.Timeline {
		owners[i] = e.Owner
	}
	return owners
}

// Fuser builds timelines. It holds no per-call state and is safe for
// concurrent use.
type Fuser struct {
	q    Querier
	plan Plan
}

// NewFuser returns a Fuser running plan against q.
func NewFuser(q Querier, plan Plan) *Fuser {
	return &Fuser{q: q, plan: plan}
}

// Fuse builds the timeline of unitID and computes its accountability.
//
// Only context cancellation is returned as an error; source failures
// degrade to zero events.
func (f *Fuser) Fuse(ctx context.Context, unitID string) (*Timeline, error) {
	var (
		clock   seqClock
		events  []Event
		skipped []SkippedSource
		dropped int
	)

	for _, source := range f.plan.Sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := f.q.Query(ctx, source, map[string]any{f.plan.UnitColumn: unitID}, 0)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			slog.Debug("timeline source skipped",
				"source", source,
				"shipment_id", unitID,
				"code", ir.CodeOf(err),
				"error", err,
			)
			skipped = append(skipped, SkippedSource{Source: source, Code: ir.CodeOf(err), Error: err.Error()})
			continue
		}

		for _, rec := range res.Results {
			ts, ok := ResolveTimestamp(f.plan.TimestampColumns, rec)
			if !ok {
				dropped++
				continue
			}
			events = append(events, Event{
				Timestamp: ts.String(),
				Source:    source,
				Owner:     ResolveOwner(f.plan.OwnerRules, rec),
				Data:      rec,
				Seq:       clock.Next(),
				key:       newSortKey(ts),
			})
		}
	}

	sortEvents(events)

	if events == nil {
		events = []Event{}
	}
	tl := &Timeline{
		ShipmentID:    unitID,
		TotalEvents:   len(events),
		DroppedEvents: dropped,
		Timeline:      events,
		Skipped:       skipped,
	}
	tl.Accountability = accountability.Estimate(tl.Owners())

	slog.Debug("timeline fused",
		"shipment_id", unitID,
		"events", tl.TotalEvents,
		"dropped", dropped,
		"skipped_sources", len(skipped),
	)
	return tl, nil
}

// sortEvents orders by timestamp, then insertion sequence.
func sortEvents(events []Event) {
	sort.Slice(events, func(i, j int) bool {
		if c := events[i].key.compare(events[j].key); c != 0 {
			return c < 0
		}
		return events[i].Seq < events[j].Seq
	})
}
