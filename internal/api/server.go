package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dgallion1/docaffix/internal/config"
	"github.com/dgallion1/docaffix/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server exposes affix rendering over HTTP: single pages and Markdown
// previews inline, whole directories as batch jobs.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	log          *slog.Logger
	cfg          config.Config
}

func NewServer(orch *pipeline.Orchestrator, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		log:          log,
		cfg:          cfg,
	}
	s.router = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.CleanPath)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Route("/affix", func(r chi.Router) {
			r.Post("/", s.handleAffix)
			r.Post("/preview", s.handlePreview)
			r.Post("/batch", s.handleBatch)
			r.Get("/{jobID}/status", s.handleBatchStatus)
		})
		r.Get("/pages", s.handleListPages)
		r.Get("/stats", s.handleStats)
	})

	return r
}

// handleHealth is unauthenticated; it reports only what a load balancer or
// operator needs to tell a stuck queue from an idle one.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":      "ok",
		"queue_depth": s.orchestrator.QueueDepth(),
		"placeholder": s.cfg.PlaceholderID,
	})
}
