package controllers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"lumaevents/internal/delivery/http/helpers"
	"lumaevents/internal/delivery/http/middleware"
	"lumaevents/internal/domain"
)

// maxImageRequestBytes bounds the multipart body of an image upload.
const maxImageRequestBytes = 6 << 20

// ListEventsResponse is the data payload for GET /events.
type ListEventsResponse struct {
	Events     []*domain.EventSummary `json:"events"`
	Notices    []string               `json:"notices,omitempty"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListEventsSuccessResponse is the success response envelope for GET /events (200).
type ListEventsSuccessResponse struct {
	Data  ListEventsResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// GetEventSuccessResponse is the success response envelope for GET /events/{eventID} (200).
type GetEventSuccessResponse struct {
	Data  *domain.EventDetail `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Title       string                   `json:"title" validate:"required,max=200"`
	Description string                   `json:"description" validate:"required"`
	Date        time.Time                `json:"date" validate:"required"`
	EndTime     time.Time                `json:"end_time" validate:"required"`
	Location    string                   `json:"location" validate:"required,max=300"`
	ImageURL    *string                  `json:"image_url" validate:"omitempty,url"`
	Agenda      []domain.AgendaItemInput `json:"agenda" validate:"dive"`
}

// CreateEventResponse is the data payload for POST /events (201).
type CreateEventResponse struct {
	Event  *domain.Event        `json:"event"`
	Agenda []*domain.AgendaItem `json:"agenda"`
}

// CreateEventSuccessResponse is the success response envelope for POST /events (201).
type CreateEventSuccessResponse struct {
	Data  CreateEventResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// UpdateEventRequest is the request body for PATCH /events/{eventID}. All fields optional; omitted fields are unchanged.
type UpdateEventRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,min=1"`
	Date        *time.Time `json:"date"`
	EndTime     *time.Time `json:"end_time"`
	Location    *string    `json:"location" validate:"omitempty,min=1,max=300"`
	ImageURL    *string    `json:"image_url" validate:"omitempty,url"`
}

// UpdateEventSuccessResponse is the success response envelope for PATCH /events/{eventID} (200).
type UpdateEventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// DeleteEventResponse is the data payload for DELETE /events/{eventID} (200).
type DeleteEventResponse struct {
	Status string `json:"status"`
}

// DeleteEventSuccessResponse is the success response envelope for DELETE /events/{eventID} (200).
type DeleteEventSuccessResponse struct {
	Data  DeleteEventResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// UploadImageResponse is the data payload for POST /events/images (201).
type UploadImageResponse struct {
	URL string `json:"url"`
}

// UploadImageSuccessResponse is the success response envelope for POST /events/images (201).
type UploadImageSuccessResponse struct {
	Data  UploadImageResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

type EventController struct {
	Logger  *slog.Logger
	Views   domain.EventViewModel
	Service domain.EventService
	now     func() time.Time
}

func NewEventController(logger *slog.Logger, views domain.EventViewModel, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Views:   views,
		Service: svc,
		now:     time.Now,
	}
}

// ListEvents godoc
// @Summary List events
// @Description Lists events ordered by date with live attendee counts. Search matches title, description and location case-insensitively.
// @Tags events
// @Produce json
// @Param upcoming query bool false "Only events starting now or later"
// @Param q query string false "Search term"
// @Param organizer_id query string false "Only events of this organizer"
// @Param limit query int false "Maximum number of events before pagination"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListEventsSuccessResponse "data contains events and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 503 {object} helpers.APIResponse "error.code: store_unavailable"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	query, ok := parseListQuery(w, r, c.now())
	if !ok {
		return
	}
	params, err := helpers.ParsePagination(r)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	listing, err := c.Views.ListEvents(r.Context(), query)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	events, meta := helpers.Paginate(listing.Events, params)
	helpers.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{
		Events:     events,
		Notices:    listing.Notices,
		Pagination: meta,
	})
}

// parseListQuery reads the listing filters shared by GET /events and the live listing stream.
func parseListQuery(w http.ResponseWriter, r *http.Request, now time.Time) (domain.ListEventsQuery, bool) {
	q := r.URL.Query()
	query := domain.ListEventsQuery{
		OrganizerID: q.Get("organizer_id"),
		Search:      q.Get("q"),
	}
	if s := q.Get("upcoming"); s != "" {
		upcoming, err := strconv.ParseBool(s)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "upcoming must be a boolean")
			return query, false
		}
		query.UpcomingOnly = upcoming
		query.Now = now
	}
	if s := q.Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 0 {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "limit must be a non-negative integer")
			return query, false
		}
		query.Limit = limit
	}
	return query, true
}

// GetEvent godoc
// @Summary Get an event by ID
// @Description Returns the event with its organizer, agenda in display order and attendee count.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.GetEventSuccessResponse "data contains the event detail"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: store_unavailable"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	detail, err := c.Views.GetEventDetail(r.Context(), eventID)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, detail)
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Creates an event with its agenda. The authenticated user becomes the organizer.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.CreateEventSuccessResponse "data contains the created event and agenda"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	event, agenda, err := c.Service.CreateEvent(r.Context(), userID, domain.CreateEventInput{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		EndTime:     req.EndTime,
		Location:    req.Location,
		ImageURL:    req.ImageURL,
		Agenda:      req.Agenda,
	})
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, CreateEventResponse{Event: event, Agenda: agenda})
}

// UpdateEvent godoc
// @Summary Update event details
// @Description Partially updates an event. Only the organizer can update. Omitted fields are unchanged.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body UpdateEventRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.UpdateEventSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	event, err := c.Service.UpdateEvent(r.Context(), userID, eventID, domain.EventUpdate{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		EndTime:     req.EndTime,
		Location:    req.Location,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes an event with its agenda items and registrations. Only the organizer can delete.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.DeleteEventSuccessResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), userID, eventID); err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteEventResponse{Status: "deleted"})
}

// UploadImage godoc
// @Summary Upload an event image
// @Description Uploads a JPEG, PNG, WebP or GIF image (max 5 MiB) to object storage and returns its public URL.
// @Tags events
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image file"
// @Success 201 {object} controllers.UploadImageSuccessResponse "data contains the public URL"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 503 {object} helpers.APIResponse "error.code: store_unavailable"
// @Router /events/images [post]
func (c *EventController) UploadImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxImageRequestBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "image is too large")
			return
		}
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing file")
		return
	}
	defer file.Close()

	body, err := io.ReadAll(file)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "could not read file")
		return
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(body)
	}
	url, err := c.Service.UploadEventImage(r.Context(), userID, header.Filename, contentType, body)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, UploadImageResponse{URL: url})
}
