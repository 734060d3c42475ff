// Package api exposes a read-only HTTP surface over the running pipeline:
// health, stored transcripts, and a live websocket event feed. The control
// plane stays on stdin/stdout; nothing here mutates pipeline state.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/voxproc/voxd/internal/config"
	"github.com/voxproc/voxd/internal/pipeline"
	"github.com/voxproc/voxd/internal/storage/sqlite"
	"github.com/voxproc/voxd/internal/websocket"
	"github.com/voxproc/voxd/pkg/logger"
)

// Router is the API router
type Router struct {
	handler    *Handler
	middleware *Middleware
	config     *config.ServerConfig
	logger     *logger.Logger
}

// NewRouter creates a new API router
func NewRouter(controller *pipeline.Controller, storage *sqlite.TranscriptStorage, wsServer *websocket.Server, cfg *config.ServerConfig, logger *logger.Logger) *Router {
	return &Router{
		handler:    NewHandler(controller, storage, wsServer, logger),
		middleware: NewMiddleware(logger),
		config:     cfg,
		logger:     logger.Named("api-router"),
	}
}

// Routes returns the API routes
func (r *Router) Routes() http.Handler {
	router := chi.NewRouter()

	// Middleware
	router.Use(r.middleware.RequestID)
	router.Use(r.middleware.Logger)
	router.Use(r.middleware.Recoverer)
	router.Use(r.middleware.CORS(r.config.CORSAllowedOrigins))

	router.Route("/api/v1", func(router chi.Router) {
		router.Get("/health", r.handler.GetHealth)

		router.Get("/transcripts", r.handler.GetRecentTranscripts)
		router.Get("/transcripts/time-range", r.handler.GetTranscriptsByTimeRange)

		// WebSocket route
		router.Get("/ws", r.handler.HandleWebSocket)
	})

	return router
}
