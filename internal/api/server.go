// Package api exposes the translator over HTTP: synchronous translation,
// queued jobs, and runtime stats.
package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/guidexml/internal/config"
	"github.com/dgallion1/guidexml/internal/metrics"
	"github.com/dgallion1/guidexml/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for guidexml.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	prom         *metrics.PrometheusRecorder
	stats        *metrics.LatencyStats
	recorder     metrics.Recorder
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. prom and stats may be
// nil, in which case /metrics and /api/stats report unavailable.
func NewServer(orch *pipeline.Orchestrator, prom *metrics.PrometheusRecorder, stats *metrics.LatencyStats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		prom:         prom,
		stats:        stats,
		log:          log,
		cfg:          cfg,
	}
	var recs []metrics.Recorder
	if prom != nil {
		recs = append(recs, prom)
	}
	if stats != nil {
		recs = append(recs, stats)
	}
	s.recorder = metrics.Multi(recs...)
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/translate", s.handleTranslate)

		r.Post("/api/jobs", s.handleSubmitJob)
		r.Post("/api/jobs/batch", s.handleBatchSubmit)
		r.Get("/api/jobs/{jobID}/status", s.handleJobStatus)
		r.Get("/api/jobs/{jobID}/result", s.handleJobResult)

		r.Get("/api/stats", s.handleStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.prom == nil {
		jsonError(w, "metrics unavailable", http.StatusServiceUnavailable)
		return
	}
	s.prom.Handler().ServeHTTP(w, r)
}
