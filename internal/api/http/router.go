package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/support-kit/case-assistant/internal/api/http/handlers"
	"github.com/support-kit/case-assistant/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Search         *handlers.SearchHandler
	Workload       *handlers.WorkloadHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireScope(auth.ScopeCasesRead))

	cases := protected.Group("/cases")
	cases.Post("/search", cfg.Search.SearchCases)
	cases.Post("/workload", cfg.Workload.Workload)
	cases.Get("/stale", cfg.Search.StaleCases)
	cases.Get("/oldest", cfg.Search.OldestCases)

	protected.Get("/customers/suggest", cfg.Search.SuggestCustomers)
}
