package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v2"

	"spshare/domain/snapshot"
	"spshare/logging"
)

// HealthChecker reports catalog connectivity.
type HealthChecker interface {
	Health(ctx context.Context) (map[string]any, error)
}

// RouterConfig wires the HTTP API. Runner, Metrics and RequestLogger are
// optional; without a Runner the API is read-only.
type RouterConfig struct {
	Catalog          CatalogReader
	Health           HealthChecker
	Runner           SnapshotStarter
	SnapshotDefaults snapshot.Parameters
	Metrics          http.Handler
	RequestLogger    *httplog.Logger
}

// NewRouter builds the JSON API.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if cfg.RequestLogger != nil {
		r.Use(httplog.RequestLogger(cfg.RequestLogger, []string{"/health", "/metrics"}))
	}
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler(cfg.Health))
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics)
	}

	catalog := NewCatalogHandlers(cfg.Catalog)
	r.Route("/snapshots", func(r chi.Router) {
		r.Get("/", catalog.ListSnapshots)
		r.Get("/{snapshotID}", catalog.GetSnapshot)
		r.Get("/{snapshotID}/lists/{listID}/items", catalog.ListItems)

		if cfg.Runner != nil {
			runs := NewSnapshotHandlers(cfg.Runner, cfg.SnapshotDefaults)
			r.Post("/", runs.Start)
			r.Get("/running", runs.Running)
			r.Post("/{snapshotID}/cancel", runs.Cancel)
		}
	})

	return r
}

func healthHandler(checker HealthChecker) http.HandlerFunc {
	logger := logging.Default().WithComponent("health")
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := checker.Health(r.Context())
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "unavailable",
				"error":  err.Error(),
			}, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"database": stats,
		}, logger)
	}
}
