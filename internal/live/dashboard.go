package live

import (
	"context"
	"sync"
	"time"

	"lumaevents/internal/domain"
	"lumaevents/internal/realtime"
)

// DashboardEvents are the events a user organizes, split by date.
type DashboardEvents struct {
	Upcoming []*domain.EventSummary `json:"upcoming"`
	Past     []*domain.EventSummary `json:"past"`
	Notices  []string               `json:"notices,omitempty"`
}

// DashboardRegistrations are the events a user registered for, split by date.
type DashboardRegistrations struct {
	Upcoming []*domain.RegisteredEvent `json:"upcoming"`
	Past     []*domain.RegisteredEvent `json:"past"`
}

// DashboardData is the snapshot payload of a dashboard page.
type DashboardData struct {
	MyEvents   realtime.State[*DashboardEvents]        `json:"my_events"`
	Registered realtime.State[*DashboardRegistrations] `json:"registered"`
}

// DashboardPage renders the organizer and attendee tabs of one user.
type DashboardPage struct {
	base
	myEvents   *realtime.View[*DashboardEvents]
	registered *realtime.View[*DashboardRegistrations]

	mu   sync.Mutex
	last DashboardData
	// registeredIDs are the event ids of the last registered fetch.
	registeredIDs map[string]bool
}

// Dashboard opens the dashboard for identity.
func (p *Pages) Dashboard(ctx context.Context, identity *domain.Identity) (*DashboardPage, error) {
	if identity == nil || identity.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}
	userID := identity.UserID
	page := p.open(ctx, "dashboard:"+userID)
	dp := &DashboardPage{base: newBase(page)}

	dp.myEvents = realtime.NewView(page, "my_events", func(ctx context.Context) (*DashboardEvents, error) {
		listing, err := p.views.ListEvents(ctx, domain.ListEventsQuery{OrganizerID: userID})
		if err != nil {
			return nil, err
		}
		return splitEvents(listing, p.now()), nil
	}, func(s realtime.State[*DashboardEvents]) {
		dp.mu.Lock()
		defer dp.mu.Unlock()
		dp.last.MyEvents = s
		dp.out.publish(dp.last)
	})
	dp.registered = realtime.NewView(page, "registered", func(ctx context.Context) (*DashboardRegistrations, error) {
		regs, err := p.views.ListRegisteredEvents(ctx, userID)
		if err != nil {
			return nil, err
		}
		ids := make(map[string]bool, len(regs))
		for _, r := range regs {
			if r.Event != nil {
				ids[r.Event.ID] = true
			}
		}
		dp.mu.Lock()
		dp.registeredIDs = ids
		dp.mu.Unlock()
		return splitRegistrations(regs, p.now()), nil
	}, func(s realtime.State[*DashboardRegistrations]) {
		dp.mu.Lock()
		defer dp.mu.Unlock()
		dp.last.Registered = s
		dp.out.publish(dp.last)
	})
	dp.last = DashboardData{MyEvents: dp.myEvents.State(), Registered: dp.registered.State()}

	refreshMine := func() { dp.myEvents.Refresh(page.Context()) }
	refreshRegistered := func() { dp.registered.Refresh(page.Context()) }
	refreshAll := func() {
		refreshMine()
		refreshRegistered()
	}
	page.Watch(domain.RowFilter(domain.TableEvents, "organizer_id", userID), refreshMine)
	page.Watch(domain.TableFilter(domain.TableRegistrations), refreshAll)
	// Edits by other organizers can move a registered event between upcoming and past.
	page.WatchChanges(domain.TableFilter(domain.TableEvents), func(c domain.Change) {
		if dp.showsRegistered(c.Row["id"]) {
			refreshRegistered()
		}
	})
	refreshAll()
	return dp, nil
}

func (dp *DashboardPage) showsRegistered(eventID string) bool {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	return dp.registeredIDs[eventID]
}

func splitEvents(listing *domain.EventListing, now time.Time) *DashboardEvents {
	out := &DashboardEvents{
		Upcoming: []*domain.EventSummary{},
		Past:     []*domain.EventSummary{},
		Notices:  listing.Notices,
	}
	for _, e := range listing.Events {
		if e.IsUpcoming(now) {
			out.Upcoming = append(out.Upcoming, e)
		} else {
			out.Past = append(out.Past, e)
		}
	}
	return out
}

func splitRegistrations(regs []*domain.RegisteredEvent, now time.Time) *DashboardRegistrations {
	out := &DashboardRegistrations{
		Upcoming: []*domain.RegisteredEvent{},
		Past:     []*domain.RegisteredEvent{},
	}
	for _, r := range regs {
		if r.Event.IsUpcoming(now) {
			out.Upcoming = append(out.Upcoming, r)
		} else {
			out.Past = append(out.Past, r)
		}
	}
	return out
}

// State returns the current state of both dashboard views.
func (dp *DashboardPage) State() DashboardData {
	return DashboardData{MyEvents: dp.myEvents.State(), Registered: dp.registered.State()}
}
