package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/shiptrace/internal/cost"
	"github.com/roach88/shiptrace/internal/ir"
	"github.com/roach88/shiptrace/internal/report"
	"github.com/roach88/shiptrace/internal/timeline"
)

// NewTimelineCommand creates the timeline command.
func NewTimelineCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "timeline <shipment-id>",
		Short: "Build the event timeline of a shipment",
		Long: `Join the shipment's records from every configured source into one
chronological timeline, attribute each event to a responsible party and
summarize accountability.

Sources that are missing or lack the shipment column are skipped.

Example:
  shiptrace timeline SHP-001-1`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, eng, f := rootOpts.begin(cmd)
			tl, err := eng.AnalyzeTimeline(ctx, args[0])
			if err != nil {
				return f.Fail(err)
			}
			return f.Render(tl, func(w io.Writer) error {
				return writeTimeline(w, tl)
			})
		},
	}
}

func writeTimeline(w io.Writer, tl *timeline.Timeline) error {
	fmt.Fprintf(w, "Timeline for %s\n", tl.ShipmentID)
	fmt.Fprintf(w, "Events: %d (%d dropped)\n", tl.TotalEvents, tl.DroppedEvents)

	if len(tl.Timeline) > 0 {
		fmt.Fprintln(w)
		for _, ev := range tl.Timeline {
			fmt.Fprintf(w, "%s | %s | %s\n", ev.Timestamp, ev.Source, ev.Owner)
		}
	}

	if len(tl.Accountability) > 0 {
		owners := make([]string, 0, len(tl.Accountability))
		for owner := range tl.Accountability {
			owners = append(owners, owner)
		}
		sort.Strings(owners)

		fmt.Fprintln(w)
		fmt.Fprintln(w, "Accountability:")
		for _, owner := range owners {
			entry := tl.Accountability[owner]
			fmt.Fprintf(w, "%s: %.1f%% (%d events)\n", owner, entry.ContributionPct, entry.EventCount)
		}
		fmt.Fprintf(w, "Total: %.1f%%\n", tl.Accountability.Total())
	}

	if len(tl.Skipped) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Skipped sources:")
		for _, s := range tl.Skipped {
			fmt.Fprintf(w, "%s [%s]\n", s.Source, s.Code)
		}
	}
	return nil
}

// NewCostCommand creates the cost command.
func NewCostCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cost <shipment-id>",
		Short: "Compare release and reject costs for a shipment",
		Long: `Compare conditionally releasing a quarantined shipment against rejecting
it and dispatching a replacement. Rejection carries the average loss of
recent quarantine events from the finance waste log.

Example:
  shiptrace cost SHP-001-1`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, eng, f := rootOpts.begin(cmd)
			a, err := eng.ComputeCost(ctx, args[0])
			if err != nil {
				return f.Fail(err)
			}
			return f.Render(a, func(w io.Writer) error {
				return writeAnalysis(w, a)
			})
		},
	}
}

func writeAnalysis(w io.Writer, a *cost.Analysis) error {
	fmt.Fprintf(w, "Cost analysis for %s\n", a.ShipmentID)
	fmt.Fprintf(w, "Historical waste average: %.2f USD\n", a.HistoricalWasteAvgUSD)
	fmt.Fprintln(w)
	writeScenario(w, "conditional_release", a.Scenarios.ConditionalRelease)
	writeScenario(w, "reject_reship", a.Scenarios.RejectReship)
	return nil
}

func writeScenario(w io.Writer, name string, s cost.Scenario) {
	fmt.Fprintf(w, "%s: %s\n", name, s.Description)
	fmt.Fprintf(w, "  total cost: %.2f USD\n", s.TotalCostUSD)
	fmt.Fprintf(w, "  probability of success: %.2f\n", s.ProbabilitySuccess)
	fmt.Fprintf(w, "  expected value: %.2f USD\n", s.ExpectedValueUSD)
}

// ReportOptions holds flags for the report command.
type ReportOptions struct {
	*RootOptions
	Findings string // path to a JSON or YAML findings file, or "-" for stdin
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "report <shipment-id>",
		Short: "Assemble a draft CAPA report",
		Long: `Package investigation findings into a draft CAPA report.

Findings are read from a JSON or YAML file with any of the keys summary,
timeline, root_causes, accountability, recommendations, corrective_actions
and preventive_actions. Missing keys get empty defaults.

Examples:
  shiptrace report SHP-001-1 --findings findings.yaml
  shiptrace report SHP-001-1 --findings - --format json < findings.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Findings, "findings", "f", "", "findings file (.json, .yaml, .yml, or - for JSON on stdin)")

	return cmd
}

func runReport(opts *ReportOptions, unitID string, cmd *cobra.Command) error {
	_, eng, f := opts.begin(cmd)

	findings, err := readFindings(opts.Findings, cmd.InOrStdin())
	if err != nil {
		return f.Fail(err)
	}

	r := eng.GenerateReport(unitID, findings)
	return f.Render(r, func(w io.Writer) error {
		return writeReport(w, r)
	})
}

// readFindings decodes a findings document. An empty path means no findings.
func readFindings(path string, stdin io.Reader) (report.Findings, error) {
	if path == "" {
		return report.Findings{}, nil
	}

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, ir.NewInvalidArgument("read findings: %v", err)
	}

	findings := report.Findings{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&findings); err != nil && err != io.EOF {
			return nil, ir.NewInvalidArgument("findings must be a YAML mapping: %v", err)
		}
	default:
		if len(bytes.TrimSpace(data)) == 0 {
			return findings, nil
		}
		if err := ir.DecodeJSON(data, &findings); err != nil {
			return nil, ir.NewInvalidArgument("findings must be a JSON object: %v", err)
		}
	}
	return findings, nil
}

func writeReport(w io.Writer, r *report.Report) error {
	h := r.Header
	fmt.Fprintf(w, "%s (%s)\n", h.DocumentID, h.DocumentType)
	fmt.Fprintf(w, "Shipment: %s\n", h.ShipmentID)
	fmt.Fprintf(w, "Status: %s\n", h.Status)
	fmt.Fprintf(w, "Prepared by: %s on %s\n", h.PreparedBy, h.ReportDate)
	fmt.Fprintf(w, "Summary: %v\n", r.InvestigationSummary)
	writeList(w, "Root causes", r.RootCauseAnalysis)
	writeList(w, "Recommendations", r.Recommendations)
	writeList(w, "Corrective actions", r.CorrectiveActions)
	writeList(w, "Preventive actions", r.PreventiveActions)
	fmt.Fprintf(w, "Approval required: reviewed by %s, approved by %s\n",
		r.Signoff.ReviewedBy.Name, r.Signoff.ApprovedBy.Name)
	return nil
}

// writeList prints a findings list; non-list values are printed as is.
func writeList(w io.Writer, title string, v any) {
	items, ok := v.([]any)
	if !ok {
		fmt.Fprintf(w, "%s: %v\n", title, v)
		return
	}
	if len(items) == 0 {
		fmt.Fprintf(w, "%s: none\n", title)
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "  - %v\n", item)
	}
}
