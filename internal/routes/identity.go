package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/loandesk/loandesk/internal/identity"
)

// RegisterIdentityRoutes wires the profile endpoint behind session auth.
func RegisterIdentityRoutes(r fiber.Router, h *identity.Handler) {
	r.Get("/me", h.Me)
}
