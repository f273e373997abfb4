package live

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lumaevents/internal/domain"
	"lumaevents/internal/realtime"
)

// memStore is an in-memory store that announces every registration change
// on the hub, the way the table triggers do.
type memStore struct {
	hub *realtime.Hub

	mu     sync.Mutex
	events map[string]*domain.Event
	regs   map[string]map[string]bool

	detailCalls atomic.Int32
	// hold, when set, is called after a detail fetch has read the store and
	// before it returns.
	hold func(call int32)
}

func newMemStore(hub *realtime.Hub, events ...*domain.Event) *memStore {
	s := &memStore{hub: hub, events: map[string]*domain.Event{}, regs: map[string]map[string]bool{}}
	for _, e := range events {
		s.events[e.ID] = e
	}
	return s
}

func (s *memStore) GetEventDetail(ctx context.Context, eventID string) (*domain.EventDetail, error) {
	call := s.detailCalls.Add(1)
	s.mu.Lock()
	e, ok := s.events[eventID]
	count := len(s.regs[eventID])
	s.mu.Unlock()
	if s.hold != nil {
		s.hold(call)
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.EventDetail{
		Event:              e,
		OrganizerName:      domain.PlaceholderOrganizerName,
		OrganizerAvatarURL: domain.PlaceholderOrganizerAvatar,
		Agenda:             []*domain.AgendaItem{},
		AttendeeCount:      count,
	}, nil
}

func (s *memStore) ListEvents(ctx context.Context, q domain.ListEventsQuery) (*domain.EventListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := []*domain.Event{}
	for _, e := range s.events {
		if q.UpcomingOnly && !e.IsUpcoming(q.Now) {
			continue
		}
		if q.OrganizerID != "" && e.OrganizerID != q.OrganizerID {
			continue
		}
		events = append(events, e)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date) })
	if q.Limit > 0 && len(events) > q.Limit {
		events = events[:q.Limit]
	}
	listing := &domain.EventListing{Events: []*domain.EventSummary{}}
	for _, e := range events {
		listing.Events = append(listing.Events, &domain.EventSummary{Event: e, AttendeeCount: len(s.regs[e.ID])})
	}
	return listing, nil
}

func (s *memStore) ListRegisteredEvents(ctx context.Context, userID string) ([]*domain.RegisteredEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.RegisteredEvent{}
	for eventID, users := range s.regs {
		if users[userID] {
			out = append(out, &domain.RegisteredEvent{
				Registration: &domain.Registration{EventID: eventID, UserID: userID},
				Event:        s.events[eventID],
			})
		}
	}
	return out, nil
}

func (s *memStore) Register(ctx context.Context, userID, eventID string) (*domain.Registration, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	s.mu.Lock()
	if s.regs[eventID][userID] {
		s.mu.Unlock()
		return nil, domain.ErrDuplicateRegistration
	}
	if s.regs[eventID] == nil {
		s.regs[eventID] = map[string]bool{}
	}
	s.regs[eventID][userID] = true
	s.mu.Unlock()

	s.hub.Publish(domain.Change{
		Table: domain.TableRegistrations,
		Op:    domain.OpInsert,
		Row:   map[string]string{"event_id": eventID, "user_id": userID},
	})
	return &domain.Registration{ID: eventID + ":" + userID, EventID: eventID, UserID: userID}, nil
}

func (s *memStore) Unregister(ctx context.Context, userID, eventID string) error {
	if userID == "" {
		return domain.ErrUnauthenticated
	}
	s.mu.Lock()
	delete(s.regs[eventID], userID)
	s.mu.Unlock()
	s.hub.Publish(domain.Change{
		Table: domain.TableRegistrations,
		Op:    domain.OpDelete,
		Row:   map[string]string{"event_id": eventID, "user_id": userID},
	})
	return nil
}

// Reschedule moves an event to date and announces the row update.
func (s *memStore) Reschedule(eventID string, date time.Time) {
	s.mu.Lock()
	e := *s.events[eventID]
	e.Date = date
	s.events[eventID] = &e
	s.mu.Unlock()
	s.hub.Publish(domain.Change{
		Table: domain.TableEvents,
		Op:    domain.OpUpdate,
		Row:   map[string]string{"id": eventID, "organizer_id": e.OrganizerID},
	})
}

func (s *memStore) IsRegistered(ctx context.Context, userID, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.regs[eventID][userID], nil
}

type fixture struct {
	hub   *realtime.Hub
	mgr   *realtime.Manager
	store *memStore
	pages *Pages
}

func newFixture(events ...*domain.Event) *fixture {
	hub := realtime.NewHub(nil)
	mgr := realtime.NewManager(hub, nil)
	store := newMemStore(hub, events...)
	pages := NewPages(mgr, store, store, nil)
	pages.now = func() time.Time { return day(2023, 7, 1) }
	return &fixture{hub: hub, mgr: mgr, store: store, pages: pages}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// waitFor reads snapshots until match accepts one.
func waitFor(t *testing.T, updates <-chan Snapshot, match func(Snapshot) bool) Snapshot {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case s, ok := <-updates:
			require.True(t, ok, "updates closed before a matching snapshot")
			if match(s) {
				return s
			}
		case <-timeout:
			t.Fatal("timed out waiting for snapshot")
		}
	}
}

func detailCount(want int) func(Snapshot) bool {
	return func(s Snapshot) bool {
		data, ok := s.Data.(EventDetailData)
		return ok && !data.Detail.Loading && data.Detail.Data != nil && data.Detail.Data.AttendeeCount == want
	}
}
