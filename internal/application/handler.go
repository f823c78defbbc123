package application

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/loandesk/loandesk/internal/identity"
	"github.com/loandesk/loandesk/internal/validation"
)

// Handler exposes application HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds an application HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type submitRequest struct {
	FullName    string `json:"full_name"`
	NationalID  string `json:"national_id"`
	Email       string `json:"email"`
	DateOfBirth string `json:"date_of_birth"`
	LoanAmount  any    `json:"loan_amount"`
	LoanTerm    any    `json:"loan_term"`
	Purpose     string `json:"purpose"`
}

type applicationResponse struct {
	ID             string      `json:"id"`
	PhoneNumber    string      `json:"phone_number"`
	FullName       string      `json:"full_name"`
	NationalID     string      `json:"national_id"`
	Email          string      `json:"email"`
	DateOfBirth    string      `json:"date_of_birth"`
	LoanAmount     json.Number `json:"loan_amount"`
	LoanTerm       int         `json:"loan_term"`
	Purpose        string      `json:"purpose"`
	Status         string      `json:"status"`
	SubmittedAt    string      `json:"submitted_at"`
	DecisionReason string      `json:"decision_reason"`
}

type statusResponse struct {
	HasApplication bool                 `json:"has_application"`
	Application    *applicationResponse `json:"application,omitempty"`
}

// Status reports whether the caller has an application and returns it.
func (h *Handler) Status(c *fiber.Ctx) error {
	phone, _ := c.Locals(identity.PhoneLocalsKey).(string)
	if phone == "" {
		return fiber.NewError(http.StatusUnauthorized, "Unauthorized")
	}
	app, found, err := h.service.Status(c.UserContext(), phone)
	if err != nil {
		return err
	}
	if !found {
		return c.Status(http.StatusOK).JSON(statusResponse{HasApplication: false})
	}
	resp := toResponse(app)
	return c.Status(http.StatusOK).JSON(statusResponse{HasApplication: true, Application: &resp})
}

// Submit validates and decides a new application for the caller.
func (h *Handler) Submit(c *fiber.Ctx) error {
	phone, _ := c.Locals(identity.PhoneLocalsKey).(string)
	if phone == "" {
		return fiber.NewError(http.StatusUnauthorized, "Unauthorized")
	}

	var req submitRequest
	dec := json.NewDecoder(bytes.NewReader(c.Body()))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "Invalid request body")
	}

	app, err := h.service.Submit(c.UserContext(), phone, validation.ApplicationInput{
		FullName:    req.FullName,
		NationalID:  req.NationalID,
		Email:       req.Email,
		DateOfBirth: req.DateOfBirth,
		LoanAmount:  req.LoanAmount,
		LoanTerm:    req.LoanTerm,
		Purpose:     req.Purpose,
	})
	if err != nil {
		var fieldErrs validation.Errors
		switch {
		case errors.As(err, &fieldErrs):
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"errors": fieldErrs})
		case errors.Is(err, ErrApplicationExists):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		default:
			return err
		}
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message":     "Application submitted successfully",
		"application": toResponse(app),
	})
}

func toResponse(app Application) applicationResponse {
	return applicationResponse{
		ID:             app.ID,
		PhoneNumber:    app.Phone,
		FullName:       app.FullName,
		NationalID:     app.NationalID,
		Email:          app.Email,
		DateOfBirth:    app.DateOfBirth,
		LoanAmount:     json.Number(app.LoanAmount.String()),
		LoanTerm:       app.LoanTerm,
		Purpose:        app.Purpose,
		Status:         string(app.Status),
		SubmittedAt:    app.SubmittedAt.Format(time.RFC3339Nano),
		DecisionReason: app.DecisionReason,
	}
}
