package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/helpdesk-sla/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-sla/internal/auth"
	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	SLA            *handlers.SLAHandler
	Calendar       *handlers.CalendarAdminHandler
	Policies       *handlers.SLAPolicyHandler
	Tickets        *handlers.TicketsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        http.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics))
	}

	app.Post("/auth/technicians/login", cfg.Auth.Login)

	authenticated := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireRole()}

	slaGroup := app.Group("/sla", authenticated...)
	slaGroup.Get("/working-now", cfg.SLA.WorkingNow)
	slaGroup.Post("/due-date", cfg.SLA.DueDate)
	slaGroup.Post("/convert", cfg.SLA.Convert)

	tickets := app.Group("/tickets", authenticated...)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Get("/:id/history", cfg.Tickets.History)
	tickets.Patch("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Patch("/:id/priority", cfg.Tickets.UpdatePriority)
	tickets.Patch("/:id/assignee", cfg.Tickets.Assign)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.TechnicianRoleAdmin))
	admin.Get("/operational-hours", cfg.Calendar.GetOperationalHours)
	admin.Put("/operational-hours", cfg.Calendar.UpdateOperationalHours)
	admin.Get("/holidays", cfg.Calendar.ListHolidays)
	admin.Post("/holidays", cfg.Calendar.CreateHoliday)
	admin.Put("/holidays/:id", cfg.Calendar.UpdateHoliday)
	admin.Delete("/holidays/:id", cfg.Calendar.DeleteHoliday)
	admin.Get("/sla-policies", cfg.Policies.List)
	admin.Post("/sla-policies", cfg.Policies.Create)
	admin.Put("/sla-policies/:id", cfg.Policies.Update)
	admin.Get("/technicians", cfg.Auth.ListTechnicians)
	admin.Post("/technicians", cfg.Auth.CreateTechnician)
}
