package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lectoria/lectoria-api/internal/config"
	"github.com/lectoria/lectoria-api/internal/handler"
	"github.com/lectoria/lectoria-api/internal/middleware"
	"github.com/lectoria/lectoria-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthzHandler      *handler.AuthzHandler
	CourseHandler     *handler.CourseHandler
	AssignmentHandler *handler.AssignmentHandler
	AuditHandler      *handler.AuditHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Authorization checks (any authenticated actor)
	if deps.AuthzHandler != nil {
		authz := api.Group("/authz", jwtMiddleware)
		deps.AuthzHandler.Register(authz)
	}

	// Course reads and content edits (per-assignment permissions enforced in the service)
	if deps.CourseHandler != nil {
		courses := api.Group("/courses", jwtMiddleware)
		deps.CourseHandler.Register(courses)
	}

	// Admin surface: course lifecycle, assignment management, audit trail
	admin := api.Group("/admin",
		jwtMiddleware,
		middleware.RequireAdminTier(),
		middleware.RateLimit("admin", cfg.AdminRateLimit, cfg.AdminRateWindow),
	)

	if deps.CourseHandler != nil {
		deps.CourseHandler.RegisterAdmin(admin.Group("/courses"))
	}
	if deps.AssignmentHandler != nil {
		deps.AssignmentHandler.Register(admin.Group("/assignments"))
	}
	if deps.AuditHandler != nil {
		deps.AuditHandler.Register(admin.Group("/audit"))
	}
}
