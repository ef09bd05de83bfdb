package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hirolabs/hirehub-api/internal/config"
	"github.com/hirolabs/hirehub-api/internal/handler"
	"github.com/hirolabs/hirehub-api/internal/middleware"
	"github.com/hirolabs/hirehub-api/internal/models"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler      *handler.AuthHandler
	SessionHandler   *handler.SessionHandler
	InterviewHandler *handler.InterviewHandler
	PortalHandler    *handler.PortalHandler
	AdminHandler     *handler.AdminHandler
	JWTMiddleware    fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := app.Group("/api/v1/auth")
		deps.AuthHandler.Register(auth)
	}

	// Coding-test sessions and their voice interviews
	if deps.SessionHandler != nil {
		sessions := app.Group("/api/v1/sessions", jwtMiddleware)
		sessions.Use("/:id/run", middleware.RateLimit("code-run", 5, time.Second))
		deps.SessionHandler.Register(sessions)

		if deps.InterviewHandler != nil {
			deps.InterviewHandler.Register(sessions)
		}
	}

	// Candidate job board
	if deps.PortalHandler != nil {
		portal := app.Group("/api/v1/portal", jwtMiddleware)
		deps.PortalHandler.Register(portal)
	}

	// HR console
	if deps.AdminHandler != nil {
		admin := app.Group("/api/v1/admin", jwtMiddleware, middleware.RequireRole(models.ProfileKindHR))
		deps.AdminHandler.Register(admin)
	}
}
