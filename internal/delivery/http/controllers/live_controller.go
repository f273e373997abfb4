package controllers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"lumaevents/internal/delivery/http/helpers"
	"lumaevents/internal/delivery/http/middleware"
	"lumaevents/internal/live"
)

// DefaultKeepAlive is how often an idle stream sends a comment line.
const DefaultKeepAlive = 25 * time.Second

// livePage is what every live page exposes to a stream.
type livePage interface {
	Updates() <-chan live.Snapshot
	Close()
}

// LiveController streams live pages as server-sent events. Each connection
// owns one page; the page closes when the client goes away.
type LiveController struct {
	Logger    *slog.Logger
	Pages     *live.Pages
	KeepAlive time.Duration
	now       func() time.Time
}

func NewLiveController(logger *slog.Logger, pages *live.Pages) *LiveController {
	return &LiveController{
		Logger:    logger,
		Pages:     pages,
		KeepAlive: DefaultKeepAlive,
		now:       time.Now,
	}
}

// Home godoc
// @Summary Stream the home page
// @Description Server-sent events. Each "snapshot" event carries the featured upcoming events with attendee counts.
// @Tags live
// @Produce text/event-stream
// @Success 200 {object} live.Snapshot "stream of snapshot events"
// @Router /live/home [get]
func (c *LiveController) Home(w http.ResponseWriter, r *http.Request) {
	c.stream(w, r, c.Pages.Home(r.Context()))
}

// Events godoc
// @Summary Stream an event listing
// @Description Server-sent events. Accepts the same filters as GET /events and re-renders on any event or registration change.
// @Tags live
// @Produce text/event-stream
// @Param upcoming query bool false "Only events starting now or later"
// @Param q query string false "Search term"
// @Param organizer_id query string false "Only events of this organizer"
// @Param limit query int false "Maximum number of events"
// @Success 200 {object} live.Snapshot "stream of snapshot events"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /live/events [get]
func (c *LiveController) Events(w http.ResponseWriter, r *http.Request) {
	query, ok := parseListQuery(w, r, c.now())
	if !ok {
		return
	}
	c.stream(w, r, c.Pages.EventList(r.Context(), query))
}

// EventDetail godoc
// @Summary Stream an event detail page
// @Description Server-sent events for one event. Authenticated viewers also receive their membership state.
// @Tags live
// @Produce text/event-stream
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} live.Snapshot "stream of snapshot events"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /live/events/{eventID} [get]
func (c *LiveController) EventDetail(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	identity, _ := middleware.IdentityFromContext(r.Context())
	c.stream(w, r, c.Pages.EventDetail(r.Context(), eventID, identity))
}

// Dashboard godoc
// @Summary Stream the current user's dashboard
// @Description Server-sent events with the user's organized events and registered events, each split into upcoming and past.
// @Tags live
// @Produce text/event-stream
// @Security BearerAuth
// @Success 200 {object} live.Snapshot "stream of snapshot events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /live/dashboard [get]
func (c *LiveController) Dashboard(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	page, err := c.Pages.Dashboard(r.Context(), identity)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	c.stream(w, r, page)
}

func (c *LiveController) stream(w http.ResponseWriter, r *http.Request, page livePage) {
	defer page.Close()

	rc := http.NewResponseController(w)
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		c.Logger.ErrorContext(r.Context(), "streaming unsupported", "path", r.URL.Path, "err", err)
		return
	}

	keepAlive := time.NewTicker(c.KeepAlive)
	defer keepAlive.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case snap, ok := <-page.Updates():
			if !ok {
				return
			}
			if err := writeSnapshot(w, snap); err != nil {
				c.Logger.DebugContext(r.Context(), "live stream write failed", "path", r.URL.Path, "err", err)
				return
			}
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeSnapshot(w http.ResponseWriter, snap live.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %d\nevent: snapshot\ndata: %s\n\n", snap.Seq, payload)
	return err
}
