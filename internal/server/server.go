package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/claude/vitalsync/internal/buffer"
	"github.com/claude/vitalsync/internal/cache"
	"github.com/claude/vitalsync/internal/pipeline"
	"github.com/claude/vitalsync/internal/queue"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	pipe   *pipeline.Pipeline
	series *buffer.TimeSeries
	syncer *queue.Syncer
	latest *cache.LatestCache // optional, may be nil
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(pipe *pipeline.Pipeline, series *buffer.TimeSeries, syncer *queue.Syncer, latest *cache.LatestCache, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		pipe:   pipe,
		series: series,
		syncer: syncer,
		latest: latest,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Ingest endpoint (API key required)
	s.router.Route("/api/v1/ingest", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/", s.handleIngest)
	})

	// Dashboard API endpoints
	s.router.Get("/api/v1/timeseries", s.handleTimeSeries)
	s.router.Get("/api/v1/chart", s.handleChart)
	s.router.Get("/api/v1/latest", s.handleLatest)
	s.router.Get("/api/v1/queue", s.handleQueueStatus)

	s.router.Get("/healthz", s.handleHealthz)
	s.router.Handle("/metrics", promhttp.Handler())
}

// MountMCP attaches the MCP transport handler under /mcp.
func (s *Server) MountMCP(h http.Handler) {
	s.router.Handle("/mcp", h)
	s.router.Handle("/mcp/*", h)
}
