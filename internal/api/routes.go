package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ihcair/fleetdash/internal/config"
	"github.com/ihcair/fleetdash/internal/fleet"
	"github.com/ihcair/fleetdash/pkg/logger"
)

// Router is the API router
type Router struct {
	handler    *Handler
	middleware *Middleware
	config     *config.Config
	logger     *logger.Logger
}

// NewRouter creates a new API router
func NewRouter(fleets *fleet.Config, cfg *config.Config, log *logger.Logger) *Router {
	return &Router{
		handler:    NewHandler(fleets, cfg.Paths.DistRoot, log),
		middleware: NewMiddleware(log),
		config:     cfg,
		logger:     log.Named("api-router"),
	}
}

// Routes returns the API routes
func (r *Router) Routes() http.Handler {
	router := chi.NewRouter()

	// Middleware
	router.Use(r.middleware.RequestID)
	router.Use(r.middleware.Logger)
	router.Use(r.middleware.Recoverer)
	router.Use(r.middleware.CORS(r.config.Server.CORSAllowedOrigins))

	// API routes
	router.Route("/api/v1", func(router chi.Router) {
		router.Get("/health", r.handler.GetHealth)
		router.Get("/fleets", r.handler.GetFleets)
		router.Get("/fleets/{id}/dashboard", r.handler.GetFleetDashboard)
		router.Get("/fleets/{id}/positions", r.handler.GetFleetPositions)
	})

	// Serve the frontend from the configured directory
	staticHandler := NewStaticFileHandler(r.config.Server.StaticFilesDir, r.logger)
	router.Handle("/*", staticHandler)

	return router
}
