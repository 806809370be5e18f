// Package rest wires the HTTP surface of the invite-links service.
package rest

import (
	"net/http"

	"invitelinks-backend/application/services"
	"invitelinks-backend/infrastructure/config"
	"invitelinks-backend/interfaces/http/rest/handlers"
	"invitelinks-backend/interfaces/http/rest/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	cfg     *config.Config
	factory services.UpdaterFactory
	logger  *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, factory services.UpdaterFactory, logger *zap.Logger) *Router {
	return &Router{
		cfg:     cfg,
		factory: factory,
		logger:  logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Api-Key", "X-Request-ID"},
			MaxAge:         300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	router.Route("/v1", func(r chi.Router) {
		r.Use(middleware.APIKey(rt.cfg.APIKey, rt.logger))

		updateHandler := handlers.NewUpdateHandler(rt.factory, rt.logger)
		r.Post("/invite-links/update", updateHandler.Update)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
