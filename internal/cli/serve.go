package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/roach88/shiptrace/internal/server"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the investigation tools over HTTP",
		Long: `Serve the tool table over HTTP until interrupted.

Endpoints:
  GET  /healthz
  GET  /tools
  POST /tools/<name>

Example:
  shiptrace serve --addr :8080 --data-dir ./data`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides config)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	addr := opts.config.Server.Addr
	if opts.Addr != "" {
		addr = opts.Addr
	}

	if !opts.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	router := server.NewRouter(opts.engine())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Serve(ctx, addr, router); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}
	return nil
}
