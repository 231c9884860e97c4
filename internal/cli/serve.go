package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/depscout/depscout/internal/api"
	"github.com/depscout/depscout/pkg/cache"
)

// newServeCmd creates the serve command, exposing resolution over a
// local HTTP API.
func newServeCmd(root *rootOpts) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose resolution over a local HTTP API",
		Long: `Start an HTTP server with resolve and scan endpoints returning the same
JSON report the CLI produces.

Endpoints:
  GET  /healthz
  POST /resolve  {"roots": ["/path/to/pom.xml"], "edges": false}
  POST /scan     {"dirs": ["/path/to/projects"], "edges": false}`,
		RunE: func(c *cobra.Command, args []string) error {
			return runServe(c.Context(), root, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:7171)")
	return cmd
}

func runServe(ctx context.Context, root *rootOpts, addr string) error {
	logger := loggerFromContext(ctx)

	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	backend, err := newBackend(ctx, cfg, root.noCache)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	server := api.NewServer(cfg, cache.DescriptorReader(backend, cfg.Cache.TTL()), logger)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("listening on http://%s", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
