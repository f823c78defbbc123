package identity

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// PhoneLocalsKey is where the session middleware stores the authenticated phone.
const PhoneLocalsKey = "phone_number"

// Handler exposes identity endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs an identity HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type profileResponse struct {
	PhoneNumber string `json:"phone_number"`
	CreatedAt   string `json:"created_at"`
}

// Me returns the identity behind the current session.
func (h *Handler) Me(c *fiber.Ctx) error {
	phone, _ := c.Locals(PhoneLocalsKey).(string)
	if phone == "" {
		return fiber.NewError(http.StatusUnauthorized, "Unauthorized")
	}
	user, err := h.service.Get(c.UserContext(), phone)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "user not found")
		}
		return err
	}
	return c.Status(http.StatusOK).JSON(profileResponse{
		PhoneNumber: user.Phone,
		CreatedAt:   user.CreatedAt.Format(time.RFC3339Nano),
	})
}
