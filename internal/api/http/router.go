package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/asset-service/internal/api/http/handlers"
	"github.com/spec-kit/asset-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Employees      *handlers.EmployeesHandler
	Assets         *handlers.AssetsHandler
	Assignments    *handlers.AssignmentsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1")

	api.Post("/auth/login", cfg.Auth.Login)
	api.Post("/auth/change-password", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), cfg.Auth.ChangePassword)

	admin := api.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Post("/employees", cfg.Employees.Create)
	admin.Get("/employees", cfg.Employees.List)
	admin.Get("/employees/:id", cfg.Employees.GetByID)

	admin.Post("/assets", cfg.Assets.Create)
	admin.Get("/assets", cfg.Assets.List)
	admin.Get("/assets/:id", cfg.Assets.GetByID)
	admin.Put("/assets/:id/deactivate", cfg.Assets.Deactivate)

	admin.Post("/assignments", cfg.Assignments.Create)
	admin.Get("/assignments", cfg.Assignments.List)
	admin.Put("/assignments/:id/end", cfg.Assignments.End)

	employee := api.Group("/employee", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	employee.Get("/assets", cfg.Assets.MyActiveAssets)
	employee.Get("/assignments", cfg.Assignments.MyHistory)
}
