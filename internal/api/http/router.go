package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/ideas-service/internal/api/http/handlers"
	"github.com/spec-kit/ideas-service/internal/auth"
	"github.com/spec-kit/ideas-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Ideas          *handlers.IdeasHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	if cfg.Health != nil {
		app.Get("/health/live", cfg.Health.Live)
		app.Get("/health/ready", cfg.Health.Ready)
	}
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Post("/refresh", cfg.Auth.Refresh)

	ideas := api.Group("/ideas")
	ideas.Get("/", cfg.Ideas.List)
	ideas.Get("/:id", cfg.Ideas.Get)
	ideas.Get("/:id/history", cfg.AuthMiddleware.Handle, cfg.Ideas.History)
	ideas.Post("/", cfg.AuthMiddleware.Handle, cfg.Ideas.Create)
	ideas.Put("/:id", cfg.AuthMiddleware.Handle, cfg.Ideas.Update)
	ideas.Delete("/:id", cfg.AuthMiddleware.Handle, cfg.Ideas.Delete)
}
