package live

import (
	"context"

	"lumaevents/internal/domain"
	"lumaevents/internal/realtime"
)

// EventListPage renders a listing of events with attendee counts.
type EventListPage struct {
	base
	listing *realtime.View[*domain.EventListing]
}

// EventList opens a listing page for query. Any event or registration change
// refreshes it.
func (p *Pages) EventList(ctx context.Context, query domain.ListEventsQuery) *EventListPage {
	return p.openListing(ctx, "events", query)
}

func (p *Pages) openListing(ctx context.Context, name string, query domain.ListEventsQuery) *EventListPage {
	page := p.open(ctx, name)
	lp := &EventListPage{base: newBase(page)}
	lp.listing = realtime.NewView(page, "listing", func(ctx context.Context) (*domain.EventListing, error) {
		q := query
		if q.UpcomingOnly && q.Now.IsZero() {
			q.Now = p.now()
		}
		return p.views.ListEvents(ctx, q)
	}, func(s realtime.State[*domain.EventListing]) {
		lp.out.publish(s)
	})

	refresh := func() { lp.listing.Refresh(page.Context()) }
	page.Watch(domain.TableFilter(domain.TableEvents), refresh)
	page.Watch(domain.TableFilter(domain.TableRegistrations), refresh)
	refresh()
	return lp
}

// State returns the current listing view state.
func (lp *EventListPage) State() realtime.State[*domain.EventListing] {
	return lp.listing.State()
}
