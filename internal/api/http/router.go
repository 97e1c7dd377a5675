package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/campus-helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/campus-helpdesk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	StaffTickets   *handlers.StaffTicketsHandler
	Notifications  *handlers.NotificationsHandler
	Me             *handlers.MeHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	authenticated := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireAnyRole()}
	app.Get("/me", append(authenticated, cfg.Me.Me)...)

	tickets := app.Group("/tickets", authenticated...)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/history", cfg.Tickets.ListHistory)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Put("/:id", cfg.Tickets.UpdateTicket)
	tickets.Delete("/:id", cfg.Tickets.DeleteTicket)

	notifications := app.Group("/notifications", authenticated...)
	notifications.Get("/", cfg.Notifications.List)
	notifications.Get("/unread", cfg.Notifications.Unread)
	notifications.Post("/read-all", cfg.Notifications.MarkAllRead)

	staff := app.Group("/staff", append(authenticated, auth.RequireStaff())...)
	staff.Get("/offices", cfg.Me.ListOffices)
	staff.Get("/tickets", cfg.StaffTickets.ListTickets)
	staff.Get("/tickets/:id", cfg.StaffTickets.GetTicket)
	staff.Patch("/tickets/:id/status", cfg.StaffTickets.UpdateStatus)
	staff.Post("/tickets/:id/assign", cfg.StaffTickets.Assign)
	staff.Get("/tickets/:id/assignees", cfg.StaffTickets.ListAssignees)
	staff.Post("/tickets/:id/notes", cfg.StaffTickets.AddNote)
	staff.Delete("/tickets/:id", cfg.StaffTickets.DeleteTicket)
}
