package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pypilink/pkg/observability"
	"github.com/matzehuels/pypilink/pkg/server"
)

// shutdownTimeout bounds how long in-flight messages may finish on exit.
const shutdownTimeout = 10 * time.Second

// serveOpts holds the flags for the serve command.
type serveOpts struct {
	addr string
}

// serveCommand creates the webhook server command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the bot over HTTP for chat gateways",
		Long: `Serve the bot over HTTP. Gateways POST each chat message as JSON to
/v1/messages and relay the replies in the response. Prometheus metrics are
served on /metrics and a liveness probe on /healthz.`,
		Example: `  pypilink serve --addr :9000
  curl -s localhost:9000/v1/messages -d '{"channel":"#python","nick":"ann","text":".pypi sopel"}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (overrides server.addr)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}

	hooks, err := observability.NewPrometheusHooks(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	observability.SetLookupHooks(hooks)
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	rt := newRuntime(cfg, logger)
	defer rt.Close()

	srv := server.New(rt.bot, cfg.Server, nil, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info("Serving", "addr", srv.Addr(), "search_fallback", cfg.Bot.SearchFallback)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
