package domain

import (
	"context"
	"strings"
	"time"
)

// Event represents an event hosted by an organizer.
// swagger:model Event
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	EndTime     time.Time `json:"end_time"`
	Location    string    `json:"location"`
	ImageURL    *string   `json:"image_url,omitempty"`
	OrganizerID string    `json:"organizer_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is typically set by the repository on create.
func NewEvent(title, description, location, organizerID string, date, endTime, createdAt, updatedAt time.Time) *Event {
	return &Event{
		Title:       title,
		Description: description,
		Location:    location,
		OrganizerID: organizerID,
		Date:        date,
		EndTime:     endTime,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// MatchesSearch reports whether term is a case-insensitive substring of the
// event's title, description or location. An empty term matches everything.
func (e *Event) MatchesSearch(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Title), term) ||
		strings.Contains(strings.ToLower(e.Description), term) ||
		strings.Contains(strings.ToLower(e.Location), term)
}

// IsUpcoming reports whether the event starts at or after now.
func (e *Event) IsUpcoming(now time.Time) bool {
	return !e.Date.Before(now)
}

// AgendaItem is one entry of an event's agenda. DisplayOrder defines the
// render sequence; ties fall back to insertion order.
// swagger:model AgendaItem
type AgendaItem struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	Time         string    `json:"time"`
	Title        string    `json:"title"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

// AgendaItemInput is an agenda entry supplied when creating an event.
type AgendaItemInput struct {
	Time         string `json:"time" validate:"required"`
	Title        string `json:"title" validate:"required"`
	DisplayOrder int    `json:"display_order" validate:"gte=0"`
}

// CreateEventInput holds the organizer-supplied fields of a new event.
type CreateEventInput struct {
	Title       string
	Description string
	Date        time.Time
	EndTime     time.Time
	Location    string
	ImageURL    *string
	Agenda      []AgendaItemInput
}

// EventUpdate holds the optional fields of a partial event update. Nil fields are unchanged.
type EventUpdate struct {
	Title       *string
	Description *string
	Date        *time.Time
	EndTime     *time.Time
	Location    *string
	ImageURL    *string
}

// IsEmpty reports whether no field is set.
func (u EventUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Date == nil &&
		u.EndTime == nil && u.Location == nil && u.ImageURL == nil
}

// EventListFilter is the store-side predicate set for listing events.
// Rows are always ordered by date ascending.
type EventListFilter struct {
	StartsAfter *time.Time // date >= StartsAfter
	OrganizerID string
	Limit       int // 0 means no limit
}

// EventSummary is a listing row: the event plus its live attendee count.
// swagger:model EventSummary
type EventSummary struct {
	*Event
	AttendeeCount int `json:"attendee_count"`
}

// EventListing is the read model of an event list view.
// Notices carry non-fatal problems (for example counts that could not be loaded).
// swagger:model EventListing
type EventListing struct {
	Events  []*EventSummary `json:"events"`
	Notices []string        `json:"notices,omitempty"`
}

// ListEventsQuery selects events for a listing view. Search is applied
// in-process over the fetched set, not pushed to the store.
type ListEventsQuery struct {
	UpcomingOnly bool
	Now          time.Time // zero means time.Now()
	OrganizerID  string
	Search       string
	Limit        int
}

// Placeholder display values for events whose organizer profile is missing.
const (
	PlaceholderOrganizerName   = "Event Organizer"
	PlaceholderOrganizerAvatar = "https://www.gravatar.com/avatar/?d=mp"
)

// EventDetail is the read model of the event detail view.
// swagger:model EventDetail
type EventDetail struct {
	Event              *Event        `json:"event"`
	Organizer          *Profile      `json:"organizer"`
	OrganizerName      string        `json:"organizer_name"`
	OrganizerAvatarURL string        `json:"organizer_avatar_url"`
	Agenda             []*AgendaItem `json:"agenda"`
	AttendeeCount      int           `json:"attendee_count"`
	Notices            []string      `json:"notices,omitempty"`
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, filter EventListFilter) ([]*Event, error)
	ListByIDs(ctx context.Context, ids []string) ([]*Event, error)
	Update(ctx context.Context, eventID string, update EventUpdate) (*Event, error)
	Delete(ctx context.Context, id string) error
}

// AgendaRepository defines storage operations for agenda items.
type AgendaRepository interface {
	CreateItems(ctx context.Context, eventID string, items []AgendaItemInput) ([]*AgendaItem, error)
	ListByEventID(ctx context.Context, eventID string) ([]*AgendaItem, error)
	DeleteByEventID(ctx context.Context, eventID string) error
}

// EventViewModel composes the read models consumed by event pages.
type EventViewModel interface {
	GetEventDetail(ctx context.Context, eventID string) (*EventDetail, error)
	ListEvents(ctx context.Context, query ListEventsQuery) (*EventListing, error)
	ListRegisteredEvents(ctx context.Context, userID string) ([]*RegisteredEvent, error)
}

// EventService defines organizer actions on events.
type EventService interface {
	CreateEvent(ctx context.Context, organizerID string, input CreateEventInput) (*Event, []*AgendaItem, error)
	UpdateEvent(ctx context.Context, organizerID, eventID string, update EventUpdate) (*Event, error)
	DeleteEvent(ctx context.Context, organizerID, eventID string) error
	UploadEventImage(ctx context.Context, organizerID, filename, contentType string, body []byte) (string, error)
}
