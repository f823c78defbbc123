package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

const apiVersion = "1.0.0"

// RegisterHealthRoutes adds the welcome and health endpoints.
func RegisterHealthRoutes(app *fiber.App, d Deps) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"message": "Welcome to the Loan Application API",
			"version": apiVersion,
		})
	})

	app.Get("/api/health", func(c *fiber.Ctx) error {
		components := fiber.Map{}
		healthy := true

		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if d.DB != nil {
			components["postgres"] = "ok"
			if err := d.DB.Ping(ctx); err != nil {
				components["postgres"] = err.Error()
				healthy = false
			}
		}
		if d.Cache != nil {
			components["redis"] = "ok"
			if err := d.Cache.Ping(ctx).Err(); err != nil {
				components["redis"] = err.Error()
				healthy = false
			}
		}

		status, label := http.StatusOK, "healthy"
		if !healthy {
			status, label = http.StatusServiceUnavailable, "degraded"
		}
		body := fiber.Map{
			"status":    label,
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		}
		if len(components) > 0 {
			body["components"] = components
		}
		return c.Status(status).JSON(body)
	})
}
