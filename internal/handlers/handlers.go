// Package handlers exposes the read API and sync triggers over HTTP
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"healthdash-sync/internal/database"
	"healthdash-sync/internal/intervals"
	"healthdash-sync/internal/metrics"
	"healthdash-sync/internal/middleware"
	"healthdash-sync/internal/sync"
)

// Server holds the dependencies of the HTTP handlers
type Server struct {
	db      *database.DB
	client  *intervals.Client
	service *sync.Service
	runner  *sync.Runner
	userID  int64
	logger  *slog.Logger
}

// NewServer creates a handler server for the given dependencies
func NewServer(db *database.DB, client *intervals.Client, service *sync.Service, runner *sync.Runner, userID int64) *Server {
	return &Server{
		db:      db,
		client:  client,
		service: service,
		runner:  runner,
		userID:  userID,
		logger:  slog.Default(),
	}
}

// Router assembles the API route tree. Each resource group carries its own
// metrics endpoint label.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Metrics(metrics.EndpointHealth))
			r.Get("/health", s.handleHealth)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Use(middleware.Metrics(metrics.EndpointDashboard))
			r.Get("/", s.handleDashboard)
			r.Get("/weekly-summary", s.handleWeeklySummary)
		})

		r.Route("/biometrics", func(r chi.Router) {
			r.Use(middleware.Metrics(metrics.EndpointBiometrics))
			r.Get("/", s.handleListBiometrics)
			r.Get("/stats/summary", s.handleBiometricSummary)
			r.Get("/trends/hrv", s.handleHRVTrend)
			r.Get("/{date}", s.handleBiometricByDate)
		})

		r.Route("/activities", func(r chi.Router) {
			r.Use(middleware.Metrics(metrics.EndpointActivities))
			r.Get("/", s.handleListActivities)
			r.Get("/stats/summary", s.handleActivitySummary)
			r.Get("/bests/all", s.handleActivityBests)
			r.Get("/{id}", s.handleActivityByID)
		})

		r.Route("/sync", func(r chi.Router) {
			r.Use(middleware.Metrics(metrics.EndpointSync))
			r.Post("/test", s.handleSyncTest)
			r.Post("/daily", s.handleDailySync)
			r.Post("/historical", s.handleHistoricalSync)
			r.Get("/status", s.handleSyncStatus)
			r.Post("/analyze-bests", s.handleAnalyzeBests)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Health(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  "database unavailable",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError emits the envelope used by sync and internal failures
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"status":  "error",
		"message": message,
	})
}

// writeNotFound emits the bare-error envelope used by resource lookups
func writeNotFound(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": message})
}

// queryInt parses an integer query parameter, falling back to def when the
// parameter is absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
