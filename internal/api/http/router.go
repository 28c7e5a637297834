package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/barbershop-api/internal/api/http/handlers"
	"github.com/spec-kit/barbershop-api/internal/auth"
	"github.com/spec-kit/barbershop-api/internal/limiter"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Users     *handlers.UsersHandler
	Schedules *handlers.SchedulesHandler
	Gate      *auth.Gate
	// Metrics serves the Prometheus exposition format. Optional.
	Metrics nethttp.Handler
	// ClientLimiter throttles /signup and /login per client address. Optional.
	ClientLimiter *limiter.RequestLimiter
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	if cfg.Health != nil {
		app.Get("/health/live", cfg.Health.Live)
		app.Get("/health/ready", cfg.Health.Ready)
	}
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics))
	}

	authenticated := cfg.Gate.Authenticated()
	admin := cfg.Gate.AdminOnly()

	var public []fiber.Handler
	if cfg.ClientLimiter != nil {
		public = append(public, clientThrottle(cfg.ClientLimiter))
	}

	app.Post("/signup", guarded(public, cfg.Users.Signup)...)
	app.Post("/login", guarded(public, cfg.Users.Login)...)
	app.Get("/me", guarded(authenticated, cfg.Users.Me)...)
	app.Get("/all-users", guarded(admin, cfg.Users.ListUsers)...)
	app.Delete("/user/:id", guarded(admin, cfg.Users.DeleteUser)...)

	app.Get("/schedules", cfg.Schedules.List)
	app.Get("/schedule/:id", cfg.Schedules.Get)
	app.Post("/schedule", guarded(admin, cfg.Schedules.Create)...)
	app.Put("/schedule/:id", guarded(admin, cfg.Schedules.Update)...)
	app.Delete("/schedule/:id", guarded(admin, cfg.Schedules.Delete)...)
}

// guarded runs the admission chain ahead of the handler.
func guarded(chain []fiber.Handler, handler fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(chain)+1)
	out = append(out, chain...)
	return append(out, handler)
}
