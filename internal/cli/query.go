package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/shiptrace/internal/ir"
	"github.com/roach88/shiptrace/internal/query"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Filters string // JSON object of column:value pairs
	Where   string // filter expression
	Limit   int
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <source>",
		Short: "Filter one data source",
		Long: `Return the records of one source that match every filter, in file order.

Filters are given either as a JSON object (--filters), where a list value
matches any of its members, or as an expression (--where) of
"column == value" and "column in (a, b)" clauses joined by "and".

Examples:
  shiptrace query sensor_alerts --filters '{"shipment_id": "SHP-001-1"}'
  shiptrace query finance_waste_log --where "event_type == 'Quarantine'" --limit 10`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filters, "filters", "", "JSON object of column:value filters")
	cmd.Flags().StringVarP(&opts.Where, "where", "w", "", "filter expression")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 0, "maximum number of records (0 = all)")

	return cmd
}

func runQuery(opts *QueryOptions, source string, cmd *cobra.Command) error {
	ctx, eng, f := opts.begin(cmd)

	if opts.Filters != "" && opts.Where != "" {
		return f.Fail(ir.NewInvalidArgument("--filters and --where are mutually exclusive"))
	}
	if opts.Limit < 0 {
		return f.Fail(ir.NewInvalidArgument("--limit must be non-negative, got %d", opts.Limit))
	}

	var (
		res *query.Result
		err error
	)
	if opts.Where != "" {
		res, err = eng.QueryWhere(ctx, source, opts.Where, opts.Limit)
	} else {
		var filters map[string]any
		if opts.Filters != "" {
			if decodeErr := ir.DecodeJSON([]byte(opts.Filters), &filters); decodeErr != nil {
				return f.Fail(ir.NewInvalidArgument("--filters must be a JSON object: %v", decodeErr))
			}
		}
		res, err = eng.QuerySource(ctx, source, filters, opts.Limit)
	}
	if err != nil {
		return f.Fail(err)
	}

	return f.Render(res, func(w io.Writer) error {
		return writeResult(w, res)
	})
}

func writeResult(w io.Writer, res *query.Result) error {
	fmt.Fprintf(w, "Source: %s\n", res.SourceFile)
	fmt.Fprintf(w, "Matched: %d\n", res.TotalRecords)
	for i, rec := range res.Results {
		fmt.Fprintf(w, "[%d] %s\n", i+1, formatRecord(rec))
	}
	return nil
}

// formatRecord renders a record as space-separated column=value pairs.
func formatRecord(rec ir.Record) string {
	cols := rec.Columns()
	parts := make([]string, len(cols))
	for i, c := range cols {
		v, _ := rec.Get(c)
		parts[i] = c + "=" + formatValue(v)
	}
	return strings.Join(parts, " ")
}

func formatValue(v ir.Value) string {
	if ir.IsNull(v) {
		return "null"
	}
	return v.String()
}
