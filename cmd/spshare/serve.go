package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/httplog/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"spshare/application"
	"spshare/infrastructure/repositories"
	"spshare/interfaces/web/handlers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog over HTTP",
	Long: `Serve the snapshot catalog as a JSON API on HTTP_ADDR:

  GET  /snapshots?site=&limit=
  GET  /snapshots/{id}
  GET  /snapshots/{id}/lists/{listID}/items?after=&limit=
  POST /snapshots
  GET  /snapshots/running
  POST /snapshots/{id}/cancel
  GET  /health
  GET  /metrics

The POST routes are enabled when a site (--site or SP_SITE_URL) and its
credentials are configured. With --every, that site is also snapshotted on
the given interval while the server runs.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var snapshotEvery time.Duration

func init() {
	serveCmd.Flags().DurationVar(&snapshotEvery, "every", 0, "snapshot the site on this interval (0 disables)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	routes := handlers.RouterConfig{
		Catalog: application.NewCatalogService(
			repositories.NewSqliteSnapshotRepository(db),
			repositories.NewSqliteCatalogRepository(db),
		),
		Health:        db,
		Metrics:       promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		RequestLogger: requestLogger(),
	}

	// Snapshot runs need SharePoint credentials; without them the API is
	// read-only.
	if site, err := siteURL(); err == nil {
		service, err := newSnapshotService(db, site, registry)
		if err != nil {
			if snapshotEvery > 0 {
				return err
			}
			logger.Warn("SharePoint unavailable, serving catalog read-only", "error", err)
		} else {
			runner := application.NewSnapshotRunner(ctx, service)
			defer runner.Wait()
			routes.Runner = runner
			routes.SnapshotDefaults = snapshotParameters(site)
			if snapshotEvery > 0 {
				go scheduleSnapshots(ctx, service, site, snapshotEvery)
			}
		}
	} else if snapshotEvery > 0 {
		return err
	}

	router := handlers.NewRouter(routes)
	return listenAndServe(ctx, router)
}

// requestLogger returns nil when HTTP_LOG_PATH is unset.
func requestLogger() *httplog.Logger {
	if cfg.HTTPLogPath == "" {
		return nil
	}
	logFile, err := os.OpenFile(cfg.HTTPLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		logger.Error("Failed to open HTTP log file", "error", err, "path", cfg.HTTPLogPath)
		return nil
	}
	// logFile stays open for the server lifetime

	logger.Info("HTTP request logging enabled", "path", cfg.HTTPLogPath)
	return httplog.NewLogger("spshare", httplog.Options{
		Writer: logFile,
		JSON:   true,
	})
}

func listenAndServe(ctx context.Context, handler http.Handler) error {
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", cfg.HTTPAddr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("Server stopped")
	return nil
}
