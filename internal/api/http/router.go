package http

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/sla-engine/internal/api/http/handlers"
	"github.com/spec-kit/sla-engine/internal/auth"
	"github.com/spec-kit/sla-engine/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Staff          *handlers.StaffHandler
	Tickets        *handlers.TicketsHandler
	Calendars      *handlers.CalendarsHandler
	Policies       *handlers.PoliciesHandler
	Sla            *handlers.SlaHandler
	AuthMiddleware *auth.AuthMiddleware
	Registry       *prometheus.Registry
}

// RegisterRoutes wires HTTP routes. Ticket ingestion and SLA reads are open
// to any authenticated staff; calendar, policy and recompute administration
// requires ADMIN.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", metricsHandler(cfg.Registry))

	authGroup := app.Group("/auth")
	authGroup.Post("/staff/login", cfg.Staff.Login)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), cfg.Staff.ChangePassword)

	staff := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	staff.Post("/tickets", cfg.Tickets.Register)
	staff.Post("/tickets/:id/status", cfg.Tickets.ChangeStatus)
	staff.Post("/tickets/:id/first-response", cfg.Tickets.RecordFirstResponse)
	staff.Get("/tickets/:id/sla", cfg.Sla.GetStats)
	staff.Get("/tickets/:id/sla/instance", cfg.Sla.GetInstance)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireStaffRole(domain.StaffRoleAdmin))
	admin.Post("/calendars", cfg.Calendars.Create)
	admin.Get("/calendars", cfg.Calendars.List)
	admin.Get("/calendars/:id", cfg.Calendars.Get)
	admin.Put("/calendars/:id", cfg.Calendars.Update)
	admin.Delete("/calendars/:id", cfg.Calendars.Delete)
	admin.Post("/calendars/:id/default", cfg.Calendars.SetDefault)
	admin.Post("/calendars/:id/exceptions", cfg.Calendars.AddException)
	admin.Delete("/calendars/:id/exceptions/:exceptionId", cfg.Calendars.RemoveException)

	admin.Post("/policies", cfg.Policies.Create)
	admin.Get("/policies", cfg.Policies.List)
	admin.Get("/policies/:id", cfg.Policies.Get)
	admin.Put("/policies/:id", cfg.Policies.Update)
	admin.Delete("/policies/:id", cfg.Policies.Delete)

	admin.Post("/sla/recompute", cfg.Sla.Recompute)
}

func metricsHandler(registry *prometheus.Registry) fiber.Handler {
	if registry == nil {
		return adaptor.HTTPHandler(promhttp.Handler())
	}
	return adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
