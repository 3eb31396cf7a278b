package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/shiptrace/internal/catalog"
)

// SourcesOptions holds flags for the sources command.
type SourcesOptions struct {
	*RootOptions
	Count bool
}

// NewSourcesCommand creates the sources command.
func NewSourcesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SourcesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List the data sources under the data directory",
		Long: `Discover every CSV and TSV file under the data directory.

Each source is listed with its category (parent directory) and columns.
A file that cannot be parsed is listed with its error instead.

Examples:
  shiptrace sources --data-dir ./data
  shiptrace sources --count
  shiptrace sources --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSources(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Count, "count", false, "only count tabular files")

	return cmd
}

func runSources(opts *SourcesOptions, cmd *cobra.Command) error {
	ctx, eng, f := opts.begin(cmd)

	if opts.Count {
		n, err := eng.CountSources()
		if err != nil {
			return f.Fail(err)
		}
		data := map[string]any{"data_directory": eng.DataDir(), "total_sources": n}
		return f.Render(data, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "%d tabular files in %s\n", n, eng.DataDir())
			return err
		})
	}

	cat, err := eng.DiscoverSources(ctx)
	if err != nil {
		return f.Fail(err)
	}
	return f.Render(cat, func(w io.Writer) error {
		return writeCatalog(w, cat)
	})
}

func writeCatalog(w io.Writer, cat *catalog.Catalog) error {
	fmt.Fprintf(w, "Data directory: %s\n", cat.DataDirectory)
	fmt.Fprintf(w, "Sources: %d\n", cat.TotalSources)
	for _, src := range cat.Sources {
		fmt.Fprintln(w)
		if src.Category != "" {
			fmt.Fprintf(w, "%s (%s)\n", src.Name, src.Category)
		} else {
			fmt.Fprintln(w, src.Name)
		}
		fmt.Fprintf(w, "  path: %s\n", src.Path)
		if src.Error != "" {
			fmt.Fprintf(w, "  error: %s\n", src.Error)
			continue
		}
		fmt.Fprintf(w, "  columns: %s\n", strings.Join(src.Columns, ", "))
	}
	return nil
}
