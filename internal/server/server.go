// Package server assembles the Fiber application serving the show pages.
package server

import (
	"context"
	"time"

	"showtrack/internal/handlers"
	"showtrack/internal/services"
	"showtrack/internal/views"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Pinger reports whether the backing store is reachable.
type Pinger func(ctx context.Context) error

// NewApp builds the Fiber app with middleware, the health endpoint and show routes.
// ping may be nil when the store has nothing to check, e.g. the in-memory repository.
func NewApp(showService *services.ShowService, ping Pinger) *fiber.App {
	app := fiber.New(fiber.Config{
		Views:                 views.NewEngine(),
		ErrorHandler:          handlers.ErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		database := "up"
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				database = "down"
			}
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": database,
		})
	})

	handlers.NewShowHandler(showService).RegisterRoutes(app)

	return app
}
