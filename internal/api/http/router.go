package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/sla-service/internal/api/http/handlers"
	"github.com/spec-kit/sla-service/internal/auth"
	"github.com/spec-kit/sla-service/internal/domain"
	"github.com/spec-kit/sla-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	SLA            *handlers.SLAHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))

	slaGroup := app.Group("/sla", cfg.AuthMiddleware.Handle, auth.RequireStaffRole())
	slaGroup.Get("/targets/:priority", cfg.SLA.GetTargets)
	slaGroup.Get("/deadline", cfg.SLA.PreviewDeadline)
	slaGroup.Get("/business-minutes", cfg.SLA.BusinessMinutes)

	tickets := slaGroup.Group("/tickets/:id")
	tickets.Get("", cfg.SLA.GetTicketSLA)
	tickets.Get("/history", cfg.SLA.ListTicketHistory)
	tickets.Post("/deadlines", cfg.SLA.InitializeDeadlines)
	tickets.Post("/pause", cfg.SLA.PauseSLA)
	tickets.Post("/resume", cfg.SLA.ResumeSLA)

	slaGroup.Post("/sweep", auth.RequireStaffRole(domain.StaffRoleAdmin), cfg.SLA.RunSweep)
}
