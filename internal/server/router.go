package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sevigo/review-bot/internal/config"
	"github.com/sevigo/review-bot/internal/core"
	"github.com/sevigo/review-bot/internal/render"
	"github.com/sevigo/review-bot/internal/server/handler"
	"github.com/sevigo/review-bot/internal/storage"
)

// NewRouter creates and configures a new HTTP router with middleware and API routes.
func NewRouter(cfg *config.Config, job core.Job, store storage.Store, html *render.HTMLRenderer, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Configure middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORS(cfg.Server.AllowedOrigin))
	if cfg.Server.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	}

	r.MethodNotAllowed(handler.MethodNotAllowed(logger))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	feedbackHandler := handler.NewFeedbackHandler(job, html, cfg.Output.ArchiveDir, logger)
	r.Post("/feedback", feedbackHandler.Handle)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		historyHandler := handler.NewHistoryHandler(store, logger)
		r.Get("/reviews", historyHandler.List)
	})

	return r
}
