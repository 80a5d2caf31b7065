package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"scholarly/internal/config"
	"scholarly/internal/logger"
	"scholarly/internal/observability"
	"scholarly/internal/pipeline"
	"scholarly/internal/server"
	"scholarly/internal/worker"
)

// NewServeCmd creates the serve command for starting the HTTP server.
func NewServeCmd() *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the scholarly API server.

The server exposes:
  • Paper ingestion and listing under /api/papers
  • Digest creation, polling, and regeneration under /api/digests
  • Settings and credibility weights under /api/settings
  • A health check at /health

Digests are processed by a background worker pool inside the same process.

Examples:
  # Start server on the configured port (default 8080)
  scholarly serve

  # Start on a custom port
  scholarly serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port, host)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP server port (default from config: 8080)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP server host (default from config: 0.0.0.0)")

	return cmd
}

func runServe(ctx context.Context, port int, host string) error {
	log := logger.Get()
	cfg := config.Get()

	serverCfg := cfg.Server
	if port != 0 {
		serverCfg.Port = port
	}
	if host != "" {
		serverCfg.Host = host
	}

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	events, err := observability.New(cfg.PostHog)
	if err != nil {
		return fmt.Errorf("failed to create analytics client: %w", err)
	}
	defer events.Close()

	runner := pipeline.NewRunner(store, nil, events)
	pool := worker.New(runner, cfg.Worker.Count, cfg.Worker.QueueSize)

	srv := server.New(store, runner, pool, serverCfg)

	serverErrors := make(chan error, 1)
	go func() {
		log.Info(fmt.Sprintf("Server listening on http://%s", serverCfg.ListenAddr()))
		log.Info("Press Ctrl+C to stop")
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		pool.Stop()
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Info("Server shutdown initiated", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed, forcing close", "error", err)
			pool.Stop()
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		// The server has stopped accepting requests; drain queued digests
		// so none are lost mid-processing.
		pool.Stop()
		log.Info("Server stopped successfully")
	}

	return nil
}
