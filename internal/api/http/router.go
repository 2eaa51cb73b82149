package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/feedback-service/internal/api/http/handlers"
	"github.com/spec-kit/feedback-service/internal/auth"
	"github.com/spec-kit/feedback-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Feedback       *handlers.FeedbackHandler
	Establishments *handlers.EstablishmentHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes. The authentication middleware runs for
// every API route but never rejects; routes that need a customer add
// RequireAuthenticated.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle)

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", cfg.Auth.Signup)
	authGroup.Post("/login", cfg.Auth.Login)

	feedback := api.Group("/feedback")
	feedback.Get("", cfg.Feedback.List)
	feedback.Post("", auth.RequireAuthenticated(), cfg.Feedback.Create)
	feedback.Delete("/:id", auth.RequireAuthenticated(), cfg.Feedback.Delete)

	establishments := api.Group("/establishments")
	establishments.Get("", cfg.Establishments.ListByType)
	establishments.Get("/:id", cfg.Establishments.Get)
}
