package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/loandesk/loandesk/internal/application"
)

// RegisterApplicationRoutes wires loan application endpoints. r must already
// enforce session authentication.
func RegisterApplicationRoutes(r fiber.Router, h *application.Handler, idempotency fiber.Handler) {
	group := r.Group("/application")
	group.Get("/status", h.Status)
	if idempotency != nil {
		group.Post("/submit", idempotency, h.Submit)
	} else {
		group.Post("/submit", h.Submit)
	}
}
