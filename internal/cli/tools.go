package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/shiptrace/internal/ir"
	"github.com/roach88/shiptrace/internal/tools"
)

// NewToolsCommand creates the tools command group.
func NewToolsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List or call investigation tools",
		Long: `Work with the investigation tool table directly.

The same tools are served over HTTP by "shiptrace serve".`,
	}

	cmd.AddCommand(newToolsListCommand(rootOpts))
	cmd.AddCommand(newToolsCallCommand(rootOpts))

	return cmd
}

func newToolsListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List tools and their parameters",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			list := tools.New(rootOpts.engine()).List()
			return f.Render(list, func(w io.Writer) error {
				return writeTools(w, list)
			})
		},
	}
}

func writeTools(w io.Writer, list []tools.Tool) error {
	for i, tool := range list {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, tool.Name)
		fmt.Fprintf(w, "  %s\n", tool.Description)
		fmt.Fprintf(w, "  parameters: %s\n", describeParameters(tool.Parameters))
	}
	return nil
}

// describeParameters lists required parameters first, in declaration
// order, then the optional ones by name.
func describeParameters(p tools.Parameters) string {
	if len(p.Properties) == 0 {
		return "none"
	}

	required := make(map[string]bool, len(p.Required))
	var parts []string
	for _, name := range p.Required {
		required[name] = true
		parts = append(parts, fmt.Sprintf("%s (%s, required)", name, p.Properties[name].Type))
	}

	var optional []string
	for name := range p.Properties {
		if !required[name] {
			optional = append(optional, name)
		}
	}
	sort.Strings(optional)
	for _, name := range optional {
		parts = append(parts, fmt.Sprintf("%s (%s)", name, p.Properties[name].Type))
	}
	return strings.Join(parts, ", ")
}

// ToolsCallOptions holds flags for the tools call command.
type ToolsCallOptions struct {
	*RootOptions
	Args string // JSON argument object
}

func newToolsCallCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ToolsCallOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "call <tool>",
		Short: "Call a tool and print its JSON document",
		Long: `Call one tool with a JSON argument object and print the resulting
document. The exit status is 1 when the document reports an error.

Example:
  shiptrace tools call query_data_source --args '{"source_name": "sensor_alerts", "limit": 5}'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToolsCall(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Args, "args", "a", "", "JSON object of tool arguments")

	return cmd
}

func runToolsCall(opts *ToolsCallOptions, name string, cmd *cobra.Command) error {
	ctx, eng, f := opts.begin(cmd)

	args := map[string]any{}
	if opts.Args != "" {
		if err := ir.DecodeJSON([]byte(opts.Args), &args); err != nil {
			return f.Fail(ir.NewInvalidArgument("--args must be a JSON object: %v", err))
		}
	}

	res := tools.New(eng).Call(ctx, name, args)

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(res); err != nil {
		return WrapExitError(ExitCommandError, "write output", err)
	}
	if res.IsError {
		return &ExitError{Code: ExitFailure, Message: string(res.Code), Reported: true}
	}
	return nil
}
