// Package httpapi serves the incident views, the heatmap page, and the
// health/metrics endpoints.
package httpapi

import (
	"context"
	_ "embed"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trafficpulse/waze-incident-service/internal/accumulator"
	"github.com/trafficpulse/waze-incident-service/internal/domain"
)

//go:embed heatmap.html
var heatmapPage []byte

// Views is the read side of the accumulator store.
type Views interface {
	MasterView() []domain.Incident
	LatestView() []domain.Incident
	Stats() accumulator.Statistics
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the view API plus health, readiness, and metrics routes.
type Server struct {
	httpServer *http.Server
	views      Views
	logger     *slog.Logger
}

// NewServer builds the router. All routes are GET; the map page is served at
// the root and at /heatmap.html for compatibility with old bookmarks.
func NewServer(addr string, views Views, ready ReadinessChecker, logger *slog.Logger) *Server {
	s := &Server{views: views, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(viewHeaders)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", handleReady(ready))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/incidents", s.handleMaster)
		r.Get("/incidents/latest", s.handleLatest)
		r.Get("/stats", s.handleStats)
	})

	r.Get("/", s.handleHeatmap)
	r.Get("/heatmap.html", s.handleHeatmap)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
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

// viewHeaders applies the headers the map page relies on: permissive CORS
// for local development and no caching, since the views change every cycle.
func viewHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func (s *Server) handleMaster(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, nonNil(s.views.MasterView()))
}

func (s *Server) handleLatest(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, nonNil(s.views.LatestView()))
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.views.Stats())
}

func (s *Server) handleHeatmap(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(heatmapPage) //nolint:errcheck // best-effort static page
}

// nonNil keeps empty views rendering as [] rather than null.
func nonNil(incidents []domain.Incident) []domain.Incident {
	if incidents == nil {
		return []domain.Incident{}
	}
	return incidents
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
