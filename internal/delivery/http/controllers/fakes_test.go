package controllers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"lumaevents/internal/delivery/http/middleware"
	"lumaevents/internal/domain"
)

const (
	eventID1 = "6f1d2c3b-0a4e-4b8f-9c1d-2e3f4a5b6c7d"
	eventID2 = "7a2e3d4c-1b5f-4c9a-8d2e-3f4a5b6c7d8e"
	regID1   = "8b3f4e5d-2c6a-4dab-9e3f-4a5b6c7d8e9f"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func withUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(middleware.SetIdentity(r.Context(), &domain.Identity{UserID: userID, Email: userID + "@example.com"}))
}


// fakeViews implements domain.EventViewModel.
type fakeViews struct {
	mu         sync.Mutex
	listing    *domain.EventListing
	detail     *domain.EventDetail
	registered []*domain.RegisteredEvent
	err        error
	lastQuery  domain.ListEventsQuery
	lastUserID string
}

func (f *fakeViews) GetEventDetail(ctx context.Context, eventID string) (*domain.EventDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.detail == nil || f.detail.Event.ID != eventID {
		return nil, domain.ErrNotFound
	}
	return f.detail, nil
}

func (f *fakeViews) ListEvents(ctx context.Context, q domain.ListEventsQuery) (*domain.EventListing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = q
	if f.err != nil {
		return nil, f.err
	}
	if f.listing == nil {
		return &domain.EventListing{Events: []*domain.EventSummary{}}, nil
	}
	return f.listing, nil
}

func (f *fakeViews) ListRegisteredEvents(ctx context.Context, userID string) ([]*domain.RegisteredEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUserID = userID
	if f.err != nil {
		return nil, f.err
	}
	if f.registered == nil {
		return []*domain.RegisteredEvent{}, nil
	}
	return f.registered, nil
}

// fakeEventService implements domain.EventService.
type fakeEventService struct {
	err          error
	organizerID  string
	input        domain.CreateEventInput
	update       domain.EventUpdate
	deletedID    string
	uploadedName string
	uploadedType string
	uploadedBody []byte
}

func (f *fakeEventService) CreateEvent(ctx context.Context, organizerID string, input domain.CreateEventInput) (*domain.Event, []*domain.AgendaItem, error) {
	f.organizerID, f.input = organizerID, input
	if f.err != nil {
		return nil, nil, f.err
	}
	ev := &domain.Event{ID: eventID1, Title: input.Title, OrganizerID: organizerID, Date: input.Date, EndTime: input.EndTime}
	agenda := make([]*domain.AgendaItem, 0, len(input.Agenda))
	for _, a := range input.Agenda {
		agenda = append(agenda, &domain.AgendaItem{EventID: eventID1, Time: a.Time, Title: a.Title, DisplayOrder: a.DisplayOrder})
	}
	return ev, agenda, nil
}

func (f *fakeEventService) UpdateEvent(ctx context.Context, organizerID, eventID string, update domain.EventUpdate) (*domain.Event, error) {
	f.organizerID, f.update = organizerID, update
	if f.err != nil {
		return nil, f.err
	}
	ev := &domain.Event{ID: eventID, OrganizerID: organizerID}
	if update.Title != nil {
		ev.Title = *update.Title
	}
	return ev, nil
}

func (f *fakeEventService) DeleteEvent(ctx context.Context, organizerID, eventID string) error {
	f.organizerID, f.deletedID = organizerID, eventID
	return f.err
}

func (f *fakeEventService) UploadEventImage(ctx context.Context, organizerID, filename, contentType string, body []byte) (string, error) {
	f.organizerID, f.uploadedName, f.uploadedType, f.uploadedBody = organizerID, filename, contentType, body
	if f.err != nil {
		return "", f.err
	}
	return "https://cdn.example.com/" + organizerID + "/" + filename, nil
}

// fakeRegistrations implements domain.RegistrationService over a set of pairs.
type fakeRegistrations struct {
	mu    sync.Mutex
	pairs map[string]bool
	err   error
}

func newFakeRegistrations() *fakeRegistrations {
	return &fakeRegistrations{pairs: map[string]bool{}}
}

func (f *fakeRegistrations) Register(ctx context.Context, userID, eventID string) (*domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	key := eventID + "/" + userID
	if f.pairs[key] {
		return nil, domain.ErrDuplicateRegistration
	}
	f.pairs[key] = true
	return &domain.Registration{ID: regID1, EventID: eventID, UserID: userID}, nil
}

func (f *fakeRegistrations) Unregister(ctx context.Context, userID, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	delete(f.pairs, eventID+"/"+userID)
	return nil
}

func (f *fakeRegistrations) IsRegistered(ctx context.Context, userID, eventID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	return f.pairs[eventID+"/"+userID], nil
}

// fakeConfirmations implements domain.ConfirmationSender.
type fakeConfirmations struct {
	sent []string
	err  error
}

func (f *fakeConfirmations) SendRegistrationConfirmation(ctx context.Context, registrationID string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, registrationID)
	return nil
}
