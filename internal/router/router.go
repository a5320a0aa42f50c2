package router

import (
	"net/http"

	"emote-pack-service/internal/handler"
	"emote-pack-service/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler         *handler.Handler
	ShopHandler     *handler.ShopHandler
	SessionHandler  *handler.SessionHandler
	AdminHandler    *handler.AdminHandler
	AdminMiddleware func(http.Handler) http.Handler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID", "X-Admin-Key"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
		}

		if cfg.ShopHandler != nil {
			r.Route("/packs", func(r chi.Router) {
				r.Get("/", cfg.ShopHandler.ListPacks)
				r.Get("/{id}", cfg.ShopHandler.GetPack)
			})
		}

		if cfg.SessionHandler != nil {
			r.Route("/sessions", func(r chi.Router) {
				r.Post("/", cfg.SessionHandler.Attach)
				r.Get("/{id}/entitlements", cfg.SessionHandler.GetEntitlements)
				r.Delete("/{id}", cfg.SessionHandler.Detach)
			})
		}

		if cfg.AdminHandler != nil {
			r.Group(func(r chi.Router) {
				if cfg.AdminMiddleware != nil {
					r.Use(cfg.AdminMiddleware)
				}
				r.Route("/admin", func(r chi.Router) {
					r.Post("/reload", cfg.AdminHandler.Reload)
					r.Get("/stats", cfg.AdminHandler.Stats)
				})
			})
		}
	})

	return r
}
