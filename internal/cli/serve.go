package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/resourcemap/pkg/server"
	"github.com/matzehuels/resourcemap/pkg/telemetry"
)

// shutdownTimeout bounds the telemetry flush on exit.
const shutdownTimeout = 5 * time.Second

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr   string
		engine engineFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout engine over HTTP and WebSocket",
		Long: `Serve the layout engine over HTTP and WebSocket.

Endpoints:
  GET  /healthz               liveness and solver availability
  GET  /version               build information
  POST /api/v1/layout         compute one layout
  GET  /api/v1/layout/stream  WebSocket; newer requests cancel older ones

Traces are exported over OTLP/HTTP when [telemetry] endpoint is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			return c.runServe(cmd.Context(), addr, engine)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	engine.register(cmd)

	return cmd
}

// runServe starts tracing, builds the runner and blocks until ctx is done.
func (c *CLI) runServe(ctx context.Context, addr string, engine engineFlags) error {
	tc := c.Config.Telemetry
	shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{
		Endpoint:     tc.Endpoint,
		ServiceName:  tc.ServiceName,
		SamplingRate: tc.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			c.Logger.Warn("flush traces", "error", err)
		}
	}()
	if tc.Endpoint != "" {
		telemetry.Register()
		c.Logger.Info("tracing enabled", "endpoint", tc.Endpoint, "sampling", tc.SamplingRate)
	}

	runner, closeRunner, err := c.newRunner(ctx, engine)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer closeRunner()

	if !runner.Engine.HasSolver() {
		printWarning("No solver available, every layout will be empty")
	}
	printSuccess("Listening on %s", StyleLink.Render("http://"+displayAddr(addr)))
	printKeyValue("Engine", runner.EngineName)
	printKeyValue("Cache", c.Config.Cache.Backend)

	srv := server.New(runner,
		server.WithLogger(c.Logger),
		server.WithCORSOrigins(c.Config.Server.CORSOrigins...),
	)
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		return err
	}
	printInfo("Server stopped")
	return nil
}

// displayAddr fills in localhost for addresses like ":8080".
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
