// Package cli implements the shiptrace command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/shiptrace/internal/config"
	"github.com/roach88/shiptrace/internal/engine"
	"github.com/roach88/shiptrace/internal/ir"
	"github.com/roach88/shiptrace/internal/report"
	"github.com/roach88/shiptrace/internal/tools"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	DataDir    string

	// Clock and TraceGenerator override engine defaults (for testing).
	Clock          report.Clock
	TraceGenerator engine.TraceGenerator

	config config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the shiptrace CLI.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWithOptions(&RootOptions{})
}

// NewRootCommandWithOptions creates the root command around opts, letting
// tests inject a clock and trace generator.
func NewRootCommandWithOptions(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "shiptrace",
		Short:   "shiptrace - cold chain shipment investigations",
		Long:    "Investigate pharmaceutical shipment excursions across logistics, IoT, warehouse and finance data.",
		Version: ir.EngineVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.load(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (.yaml, .yml or .cue)")
	cmd.PersistentFlags().StringVarP(&opts.DataDir, "data-dir", "d", "", "data directory (overrides config)")

	// Add subcommands
	cmd.AddCommand(NewSourcesCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewTimelineCommand(opts))
	cmd.AddCommand(NewCostCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))
	cmd.AddCommand(NewToolsCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

// load reads configuration and installs the process logger.
func (o *RootOptions) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}
	if o.DataDir != "" {
		cfg.DataDir = o.DataDir
	}
	o.config = cfg

	level := cfg.Level()
	if o.Verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if o.Format == "json" {
		handler = slog.NewJSONHandler(cmd.ErrOrStderr(), handlerOpts)
	} else {
		handler = slog.NewTextHandler(cmd.ErrOrStderr(), handlerOpts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// engine builds an engine from the loaded configuration.
func (o *RootOptions) engine() *engine.Engine {
	var opts []engine.Option
	if o.Clock != nil {
		opts = append(opts, engine.WithClock(o.Clock))
	}
	if o.TraceGenerator != nil {
		opts = append(opts, engine.WithTraceGenerator(o.TraceGenerator))
	}
	return engine.New(o.config, opts...)
}

// formatter returns an OutputFormatter writing to the command's streams.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// begin starts one traced investigation step.
func (o *RootOptions) begin(cmd *cobra.Command) (context.Context, *engine.Engine, *OutputFormatter) {
	eng := o.engine()
	f := o.formatter(cmd)
	f.TraceID = eng.NewTraceID()
	f.VerboseLog("trace: %s", f.TraceID)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return tools.WithTraceID(ctx, f.TraceID), eng, f
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
