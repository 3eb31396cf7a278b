// Package report packages investigation findings into a fixed-schema
// compliance document for human review.
//
// The assembler originates nothing: findings are copied verbatim, absent
// fields take an empty default, and the document is always a draft that
// requires approval.
package report

import (
	"fmt"
	"time"
)

// Defaults for the report header.
const (
	DefaultPreparedBy   = "AI_Investigation_Agent"
	DefaultDocumentType = "Supply Chain Investigation Report"
	DefaultSummary      = "Investigation complete"
	StatusDraft         = "Draft"
	PendingSignatory    = "TBD"
)

// Clock provides the report date.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current local time.
func (SystemClock) Now() time.Time { return time.Now() }

// Findings is the caller-supplied investigation data. Recognized keys are
// summary, timeline, root_causes, accountability, recommendations,
// corrective_actions and preventive_actions; others are ignored.
type Findings map[string]any

// Header identifies the document.
type Header struct {
	DocumentID   string `json:"document_id"`
	DocumentType string `json:"document_type"`
	ShipmentID   string `json:"shipment_id"`
	ReportDate   string `json:"report_date"`
	PreparedBy   string `json:"prepared_by"`
	Status       string `json:"status"`
}

// Signatory is one signoff line. A nil Date is unsigned.
type Signatory struct {
	Name string  `json:"name"`
	Date *string `json:"date"`
}

// Signoff is the approval block.
type Signoff struct {
	PreparedBy Signatory `json:"prepared_by"`
	ReviewedBy Signatory `json:"reviewed_by"`
	ApprovedBy Signatory `json:"approved_by"`
}

// Report is the compliance document.
type Report struct {
	Header               Header  `json:"header"`
	InvestigationSummary any     `json:"investigation_summary"`
	Timeline             any     `json:"timeline"`
	RootCauseAnalysis    any     `json:"root_cause_analysis"`
	Accountability       any     `json:"accountability"`
	Recommendations      any     `json:"recommendations"`
	CorrectiveActions    any     `json:"corrective_actions"`
	PreventiveActions    any     `json:"preventive_actions"`
	ApprovalRequired     bool    `json:"approval_required"`
	Signoff              Signoff `json:"signoff"`
}

// Assembler builds reports.
type Assembler struct {
	clock        Clock
	preparedBy   string
	documentType string
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithClock sets the clock used for the document id and dates.
func WithClock(c Clock) Option {
	return func(a *Assembler) { a.clock = c }
}

// WithPreparedBy overrides the preparer label.
func WithPreparedBy(name string) Option {
	return func(a *Assembler) {
		if name != "" {
			a.preparedBy = name
		}
	}
}

// WithDocumentType overrides the document type label.
func WithDocumentType(kind string) Option {
	return func(a *Assembler) {
		if kind != "" {
			a.documentType = kind
		}
	}
}

// NewAssembler returns an Assembler with default labels and the wall clock.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{
		clock:        SystemClock{},
		preparedBy:   DefaultPreparedBy,
		documentType: DefaultDocumentType,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble packages findings for unitID. It never fails.
func (a *Assembler) Assemble(unitID string, findings Findings) *Report {
	now := a.clock.Now()
	date := now.Format(time.RFC3339)

	return &Report{
		Header: Header{
			DocumentID:   fmt.Sprintf("CAPA-%s-%s", unitID, now.Format("20060102")),
			DocumentType: a.documentType,
			ShipmentID:   unitID,
			ReportDate:   date,
			PreparedBy:   a.preparedBy,
			Status:       StatusDraft,
		},
		InvestigationSummary: findings.get("summary", DefaultSummary),
		Timeline:             findings.get("timeline", []any{}),
		RootCauseAnalysis:    findings.get("root_causes", []any{}),
		Accountability:       findings.get("accountability", map[string]any{}),
		Recommendations:      findings.get("recommendations", []any{}),
		CorrectiveActions:    findings.get("corrective_actions", []any{}),
		PreventiveActions:    findings.get("preventive_actions", []any{}),
		ApprovalRequired:     true,
		Signoff: Signoff{
			PreparedBy: Signatory{Name: a.preparedBy, Date: &date},
			ReviewedBy: Signatory{Name: PendingSignatory},
			ApprovedBy: Signatory{Name: PendingSignatory},
		},
	}
}

// get returns the value under key verbatim, or def when the key is absent.
func (f Findings) get(key string, def any) any {
	if v, ok := f[key]; ok {
		return v
	}
	return def
}
