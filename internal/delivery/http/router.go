package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"lumaevents/internal/delivery/http/controllers"
	"lumaevents/internal/delivery/http/helpers"
)

// Wrapper decorates a handler, for example with authentication.
type Wrapper func(http.HandlerFunc) http.HandlerFunc

// Controllers groups the handlers served by the router.
type Controllers struct {
	Events    *controllers.EventController
	Attendees *controllers.AttendeeController
	Live      *controllers.LiveController
	Functions *controllers.FunctionsController
}

// Guards are the middleware applied per route.
type Guards struct {
	RequireAuth  Wrapper
	OptionalAuth Wrapper
	RateLimit    Wrapper
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(c Controllers, g Guards) *http.ServeMux {
	mux := http.NewServeMux()
	authed := func(h http.HandlerFunc) http.HandlerFunc { return g.RequireAuth(h) }
	mutation := func(h http.HandlerFunc) http.HandlerFunc { return g.RequireAuth(g.RateLimit(h)) }

	// Events
	mux.HandleFunc("GET /events", c.Events.ListEvents)
	mux.HandleFunc("GET /events/{eventID}", c.Events.GetEvent)
	mux.HandleFunc("POST /events", mutation(c.Events.CreateEvent))
	mux.HandleFunc("PATCH /events/{eventID}", mutation(c.Events.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", mutation(c.Events.DeleteEvent))
	mux.HandleFunc("POST /events/images", mutation(c.Events.UploadImage))

	// Registrations
	mux.HandleFunc("POST /events/{eventID}/registrations", mutation(c.Attendees.Register))
	mux.HandleFunc("DELETE /events/{eventID}/registrations", mutation(c.Attendees.Unregister))
	mux.HandleFunc("GET /events/{eventID}/registration", authed(c.Attendees.RegistrationStatus))
	mux.HandleFunc("GET /me/registrations", authed(c.Attendees.ListMyRegistrations))

	// Live views
	mux.HandleFunc("GET /live/home", c.Live.Home)
	mux.HandleFunc("GET /live/events", c.Live.Events)
	mux.HandleFunc("GET /live/events/{eventID}", g.OptionalAuth(c.Live.EventDetail))
	mux.HandleFunc("GET /live/dashboard", authed(c.Live.Dashboard))

	// Functions
	mux.HandleFunc("POST /functions/send-registration-email", mutation(c.Functions.SendRegistrationEmail))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
