package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/it-helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/it-helpdesk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Stats          *handlers.StatsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)
	app.Get("/auth/departments", cfg.Auth.Departments)

	protected := app.Group("", cfg.AuthMiddleware.Handle)

	protected.Get("/tickets", cfg.Tickets.List)
	protected.Post("/tickets", cfg.Tickets.Create)
	protected.Get("/tickets/:id", cfg.Tickets.Get)
	protected.Get("/tickets/:id/comments", cfg.Tickets.ListComments)
	protected.Post("/tickets/:id/comments", cfg.Tickets.AddComment)

	protected.Get("/stats", cfg.Stats.Stats)
	protected.Get("/stats/weekly", cfg.Stats.Weekly)
	protected.Get("/departments", cfg.Stats.Departments)

	admin := protected.Group("", auth.RequireAdmin())
	admin.Patch("/tickets/:id", cfg.Tickets.Update)
	admin.Put("/tickets/:id/admin-comments", cfg.Tickets.UpdateAdminComments)
	admin.Get("/stats/metrics", cfg.Stats.Metrics)
	admin.Get("/stats/alerts", cfg.Stats.Alerts)
	admin.Get("/admin/notifications", cfg.Admin.Notifications)
	admin.Get("/admin/backup", cfg.Admin.Backup)
	admin.Get("/admin/http-metrics", cfg.Admin.HTTPMetrics)
	admin.Delete("/admin/data", cfg.Admin.ClearData)
}
