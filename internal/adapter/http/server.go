package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/flood-alert-dashboard/internal/dataset"
	"github.com/couchcryptid/flood-alert-dashboard/internal/observability"
)

// Server exposes health, readiness, metrics, and the dashboard data endpoints.
type Server struct {
	httpServer *http.Server
	data       *dataset.Dataset
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewServer creates an HTTP server over an already built dataset.
func NewServer(addr string, data *dataset.Dataset, logger *slog.Logger, metrics *observability.Metrics) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		data:    data,
		logger:  logger,
		metrics: metrics,
	}

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(data))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/dataset", s.handleDataset)
		r.Get("/options", s.handleOptions)
		r.Route("/pages", func(r chi.Router) {
			r.Get("/introduction", s.handleIntroduction)
			r.Get("/alerts", s.handleAlerts)
			r.Get("/general-map", s.handleGeneralMap)
			r.Get("/territory-map", s.handleTerritoryMap)
		})
	})

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// errNoDataset is reported by data endpoints when the server holds no dataset.
var errNoDataset = errors.New("dataset is not available")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response body
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
