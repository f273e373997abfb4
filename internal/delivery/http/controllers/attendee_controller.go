package controllers

import (
	"log/slog"
	"net/http"

	"lumaevents/internal/delivery/http/helpers"
	"lumaevents/internal/delivery/http/middleware"
	"lumaevents/internal/domain"
	"lumaevents/internal/live"
)

type AttendeeController struct {
	Logger        *slog.Logger
	Registrations domain.RegistrationService
	Views         domain.EventViewModel
}

func NewAttendeeController(logger *slog.Logger, registrations domain.RegistrationService, views domain.EventViewModel) *AttendeeController {
	return &AttendeeController{
		Logger:        logger,
		Registrations: registrations,
		Views:         views,
	}
}

// RegisterSuccessResponse is the success response envelope for POST /events/{eventID}/registrations (201).
type RegisterSuccessResponse struct {
	Data  *domain.Registration `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// RegistrationStatusResponse is the data payload for GET /events/{eventID}/registration.
type RegistrationStatusResponse struct {
	EventID    string `json:"event_id"`
	Registered bool   `json:"registered"`
}

// RegistrationStatusSuccessResponse is the success response envelope for GET /events/{eventID}/registration (200).
type RegistrationStatusSuccessResponse struct {
	Data  RegistrationStatusResponse `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

// ListMyRegistrationsSuccessResponse is the success response envelope for GET /me/registrations (200).
type ListMyRegistrationsSuccessResponse struct {
	Data  []*domain.RegisteredEvent `json:"data"`
	Error *helpers.APIError         `json:"error"`
}

// Register godoc
// @Summary Register the current user for an event
// @Description Creates the registration for the authenticated user. A second registration for the same event is rejected with 409.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 201 {object} controllers.RegisterSuccessResponse "data contains the registration"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: duplicate_registration"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/registrations [post]
func (c *AttendeeController) Register(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	reg, err := live.NewMembership(c.Registrations, userID, eventID).Register(r.Context())
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, reg)
}

// Unregister godoc
// @Summary Unregister the current user from an event
// @Description Removes the authenticated user's registration. Unregistering when not registered also succeeds.
// @Tags registrations
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 204 "Registration removed"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/registrations [delete]
func (c *AttendeeController) Unregister(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := live.NewMembership(c.Registrations, userID, eventID).Unregister(r.Context()); err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RegistrationStatus godoc
// @Summary Check the current user's registration
// @Description Reports whether the authenticated user is registered for the event.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.RegistrationStatusSuccessResponse "data contains the status"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/registration [get]
func (c *AttendeeController) RegistrationStatus(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	m := live.NewMembership(c.Registrations, userID, eventID)
	if err := m.Load(r.Context()); err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, RegistrationStatusResponse{
		EventID:    eventID,
		Registered: m.State().Status == live.StatusRegistered,
	})
}

// ListMyRegistrations godoc
// @Summary List the current user's registered events
// @Description Returns the authenticated user's registrations with their events, newest registration first.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListMyRegistrationsSuccessResponse "data contains registrations with events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /me/registrations [get]
func (c *AttendeeController) ListMyRegistrations(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	regs, err := c.Views.ListRegisteredEvents(r.Context(), userID)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, regs)
}
