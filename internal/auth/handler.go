package auth

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the OTP login endpoints.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type otpRequest struct {
	PhoneNumber string `json:"phone_number"`
	OTP         string `json:"otp"`
}

type verifyResponse struct {
	Message      string `json:"message"`
	SessionToken string `json:"session_token"`
	PhoneNumber  string `json:"phone_number"`
}

// RequestOTP issues a one-time code for the submitted phone number.
func (h *Handler) RequestOTP(c *fiber.Ctx) error {
	var req otpRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "Invalid request body")
	}
	ch, err := h.svc.RequestOTP(c.UserContext(), req.PhoneNumber)
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":      "OTP sent successfully",
		"phone_number": ch.Phone,
	})
}

// VerifyOTP exchanges a valid code for a session token.
func (h *Handler) VerifyOTP(c *fiber.Ctx) error {
	var req otpRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "Invalid request body")
	}
	sess, err := h.svc.VerifyOTP(c.UserContext(), req.PhoneNumber, req.OTP)
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(http.StatusOK).JSON(verifyResponse{
		Message:      "Authentication successful",
		SessionToken: sess.Token,
		PhoneNumber:  sess.Phone,
	})
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidPhone):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidOTP), errors.Is(err, ErrUnauthorized):
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	default:
		return err
	}
}
