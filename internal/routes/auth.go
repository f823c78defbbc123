package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/loandesk/loandesk/internal/auth"
)

// RegisterAuthRoutes wires the OTP login endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter fiber.Handler) {
	group := r.Group("/auth")
	if rateLimiter != nil {
		group.Post("/request-otp", rateLimiter, h.RequestOTP)
	} else {
		group.Post("/request-otp", h.RequestOTP)
	}
	group.Post("/verify-otp", h.VerifyOTP)
}
