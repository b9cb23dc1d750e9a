package router

import (
	"gw2vault-api/internal/handler"
	"gw2vault-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler         *handler.Handler
	SnapshotHandler *handler.SnapshotHandler
	ValidateHandler *handler.ValidateHandler
	AdminHandler    *handler.AdminHandler
	LoginKey        string
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-API-Key", "X-Login-Key"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
			r.Get("/ready", cfg.Handler.Ready)
		}

		// validate reports a missing key in its result instead of rejecting
		if cfg.ValidateHandler != nil {
			r.With(middleware.NewAPIKeyMiddleware(middleware.APIKeyConfig{})).
				Post("/validate", cfg.ValidateHandler.Validate)
		}

		if cfg.SnapshotHandler != nil {
			r.Route("/snapshot", func(r chi.Router) {
				r.Use(middleware.NewAPIKeyMiddleware(middleware.APIKeyConfig{Required: true}))
				r.Post("/", cfg.SnapshotHandler.Get)
				r.Delete("/", cfg.SnapshotHandler.Forget)
				r.Get("/meta", cfg.SnapshotHandler.Meta)
				r.Post("/locations/{item_type}", cfg.SnapshotHandler.Locations)
			})
		}

		if cfg.AdminHandler != nil {
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.NewAdminMiddleware(cfg.LoginKey))
				r.Get("/stats", cfg.AdminHandler.GetStats)
				r.Get("/runs", cfg.AdminHandler.ListRuns)
				r.Post("/cleanup", cfg.AdminHandler.Cleanup)
			})
		}
	})

	return r
}
