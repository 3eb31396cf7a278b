// Package cost compares the resolution paths for a held shipment.
//
// Two scenarios are always produced. conditional_release charges a fixed QA
// review and expects no waste; reject_reship writes off the historical
// average quarantine loss and pays for a replacement shipment.
package cost

import (
	"context"
	"log/slog"

	"github.com/roach88/shiptrace/internal/ir"
	"github.com/roach88/shiptrace/internal/query"
)

// Querier runs a filter mapping against a named source.
type Querier interface {
	Query(ctx context.Context, source string, filters map[string]any, limit int) (*query.Result, error)
}

// Config holds the sources and fixed amounts used by the analyzer.
type Config struct {
	ShipmentSource            string
	WasteSource               string
	UnitColumn                string
	HistoryEventType          string
	HistoryLimit              int
	QAReviewCostUSD           float64
	ReleaseSuccessProbability float64
	ReshipLogisticsCostUSD    float64
}

// DefaultConfig returns the standard sources and amounts.
func DefaultConfig() Config {
	return Config{
		ShipmentSource:            "logistics_shipments",
		WasteSource:               "finance_waste_log",
		UnitColumn:                "shipment_id",
		HistoryEventType:          "Quarantine",
		HistoryLimit:              10,
		QAReviewCostUSD:           500,
		ReleaseSuccessProbability: 0.85,
		ReshipLogisticsCostUSD:    1200,
	}
}

// lossColumn holds the loss amount of a waste-log record.
const lossColumn = "total_loss_usd"

// Scenario is one candidate resolution path.
type Scenario struct {
	Description            string   `json:"description"`
	ExpectedWasteUSD       float64  `json:"expected_waste_usd"`
	QAReviewCostUSD        *float64 `json:"qa_review_cost_usd,omitempty"`
	ReshipLogisticsCostUSD *float64 `json:"reship_logistics_cost_usd,omitempty"`
	TotalCostUSD           float64  `json:"total_cost_usd"`
	ProbabilitySuccess     float64  `json:"probability_success"`
	ExpectedValueUSD       float64  `json:"expected_value_usd"`
}

// Scenarios is the fixed pair of resolution paths.
type Scenarios struct {
	ConditionalRelease Scenario `json:"conditional_release"`
	RejectReship       Scenario `json:"reject_reship"`
}

// Analysis is the cost comparison for one shipment.
type Analysis struct {
	ShipmentID            string    `json:"shipment_id"`
	ShipmentDetails       ir.Record `json:"shipment_details"`
	Scenarios             Scenarios `json:"scenarios"`
	HistoricalWasteAvgUSD float64   `json:"historical_waste_avg_usd"`
}

// Analyzer computes cost analyses. It is safe for concurrent use.
type Analyzer struct {
	q   Querier
	cfg Config
}

// NewAnalyzer returns an Analyzer reading through q.
func NewAnalyzer(q Querier, cfg Config) *Analyzer {
	return &Analyzer{q: q, cfg: cfg}
}

// Analyze builds both scenarios for unitID.
//
// The shipment must exist: a failed shipment query is returned as is, and
// zero matches is ir.ErrCodeUnitNotFound. Missing waste history is not an
// error; the average falls back to 0.
func (a *Analyzer) Analyze(ctx context.Context, unitID string) (*Analysis, error) {
	res, err := a.q.Query(ctx, a.cfg.ShipmentSource, map[string]any{a.cfg.UnitColumn: unitID}, 1)
	if err != nil {
		return nil, err
	}
	if len(res.Results) == 0 {
		return nil, ir.NewUnitNotFound(unitID)
	}

	avg := a.averageWaste(ctx)

	qa := a.cfg.QAReviewCostUSD
	reship := a.cfg.ReshipLogisticsCostUSD

	release := Scenario{
		Description:        "Release shipment pending QA approval",
		ExpectedWasteUSD:   0,
		QAReviewCostUSD:    &qa,
		TotalCostUSD:       qa,
		ProbabilitySuccess: a.cfg.ReleaseSuccessProbability,
		// Probability is reported but not applied to the expected value.
		ExpectedValueUSD: -qa,
	}

	rejectTotal := avg + reship
	reject := Scenario{
		Description:            "Reject shipment and dispatch replacement",
		ExpectedWasteUSD:       avg,
		ReshipLogisticsCostUSD: &reship,
		TotalCostUSD:           rejectTotal,
		ProbabilitySuccess:     1.0,
		ExpectedValueUSD:       -rejectTotal,
	}

	return &Analysis{
		ShipmentID:      unitID,
		ShipmentDetails: res.Results[0],
		Scenarios: Scenarios{
			ConditionalRelease: release,
			RejectReship:       reject,
		},
		HistoricalWasteAvgUSD: ir.Round(avg, 2),
	}, nil
}

// averageWaste is the mean loss over recent records of the configured
// event type. Null or missing losses count as 0. Any failure is a cold
// start.
func (a *Analyzer) averageWaste(ctx context.Context) float64 {
	res, err := a.q.Query(ctx, a.cfg.WasteSource,
		map[string]any{"event_type": a.cfg.HistoryEventType}, a.cfg.HistoryLimit)
	if err != nil {
		slog.Debug("waste history unavailable",
			"source", a.cfg.WasteSource,
			"code", ir.CodeOf(err),
			"error", err,
		)
		return 0
	}
	if len(res.Results) == 0 {
		return 0
	}

	var total float64
	for _, rec := range res.Results {
		v, _ := rec.Get(lossColumn)
		if n, ok := ir.Number(v); ok {
			total += n
		}
	}
	return total / float64(len(res.Results))
}
