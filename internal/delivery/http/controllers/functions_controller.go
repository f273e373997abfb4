package controllers

import (
	"context"
	"log/slog"
	"net/http"

	"lumaevents/internal/delivery/http/helpers"
	"lumaevents/internal/delivery/http/middleware"
	"lumaevents/internal/domain"
)

// SendRegistrationEmailRequest is the request body for POST /functions/send-registration-email.
type SendRegistrationEmailRequest struct {
	RegistrationID string `json:"registration_id" validate:"required,uuid"`
}

// SendRegistrationEmailResponse is the data payload for POST /functions/send-registration-email (200).
type SendRegistrationEmailResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SendRegistrationEmailSuccessResponse is the success response envelope for POST /functions/send-registration-email (200).
type SendRegistrationEmailSuccessResponse struct {
	Data  SendRegistrationEmailResponse `json:"data"`
	Error *helpers.APIError             `json:"error"`
}

// registrationLookup resolves a registration to its owner.
type registrationLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Registration, error)
}

// FunctionsController exposes server-side actions the client triggers directly.
type FunctionsController struct {
	Logger        *slog.Logger
	Registrations registrationLookup
	Confirmations domain.ConfirmationSender
}

func NewFunctionsController(logger *slog.Logger, registrations registrationLookup, confirmations domain.ConfirmationSender) *FunctionsController {
	return &FunctionsController{
		Logger:        logger,
		Registrations: registrations,
		Confirmations: confirmations,
	}
}

// SendRegistrationEmail godoc
// @Summary Send a registration confirmation email
// @Description Sends the confirmation email for one of the caller's own registrations.
// @Tags functions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SendRegistrationEmailRequest true "Registration to confirm"
// @Success 200 {object} controllers.SendRegistrationEmailSuccessResponse "data contains the delivery result"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /functions/send-registration-email [post]
func (c *FunctionsController) SendRegistrationEmail(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req SendRegistrationEmailRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	reg, err := c.Registrations.GetByID(r.Context(), req.RegistrationID)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	// Only the attendee may trigger mail to their own inbox.
	if reg.UserID != userID {
		helpers.WriteDomainError(w, r, c.Logger, domain.ErrForbidden)
		return
	}
	if err := c.Confirmations.SendRegistrationConfirmation(r.Context(), req.RegistrationID); err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, SendRegistrationEmailResponse{
		Success: true,
		Message: "Registration email sent successfully",
	})
}
