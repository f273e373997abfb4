package live

import (
	"context"
	"sync"

	"lumaevents/internal/domain"
	"lumaevents/internal/realtime"
)

// EventDetailData is the snapshot payload of an event detail page.
type EventDetailData struct {
	Detail     realtime.State[*domain.EventDetail] `json:"detail"`
	Membership *MembershipState                    `json:"membership,omitempty"`
}

// EventDetailPage renders one event, its organizer, agenda and attendee
// count, plus the viewer's membership when authenticated.
type EventDetailPage struct {
	base
	eventID    string
	detail     *realtime.View[*domain.EventDetail]
	membership *Membership

	mu   sync.Mutex
	last EventDetailData
}

// EventDetail opens the page. identity may be nil.
func (p *Pages) EventDetail(ctx context.Context, eventID string, identity *domain.Identity) *EventDetailPage {
	page := p.open(ctx, "event:"+eventID)
	ep := &EventDetailPage{base: newBase(page), eventID: eventID}
	ep.detail = realtime.NewView(page, "detail", func(ctx context.Context) (*domain.EventDetail, error) {
		return p.views.GetEventDetail(ctx, eventID)
	}, ep.onDetail)
	ep.last.Detail = ep.detail.State()
	if identity != nil && identity.UserID != "" {
		ep.membership = NewMembership(p.registrations, identity.UserID, eventID)
	}

	refresh := func() { ep.detail.Refresh(page.Context()) }
	page.Watch(domain.RowFilter(domain.TableRegistrations, "event_id", eventID), func() {
		refresh()
		ep.reloadMembership()
	})
	page.Watch(domain.RowFilter(domain.TableEvents, "id", eventID), refresh)
	page.Watch(domain.RowFilter(domain.TableAgendaItems, "event_id", eventID), refresh)

	refresh()
	ep.reloadMembership()
	return ep
}

func (ep *EventDetailPage) onDetail(s realtime.State[*domain.EventDetail]) {
	ep.mu.Lock()
	defer ep.mu.Unlock()
	ep.last.Detail = s
	ep.emitLocked()
}

func (ep *EventDetailPage) reloadMembership() {
	if ep.membership == nil {
		return
	}
	go func() {
		if err := ep.membership.Load(ep.page.Context()); err != nil {
			ep.page.Logger().Warn("membership load failed", "event_id", ep.eventID, "error", err)
			return
		}
		ep.emitMembership()
	}()
}

func (ep *EventDetailPage) emitMembership() {
	if !ep.page.Alive() {
		return
	}
	ep.mu.Lock()
	defer ep.mu.Unlock()
	ep.emitLocked()
}

func (ep *EventDetailPage) emitLocked() {
	data := ep.last
	if ep.membership != nil {
		st := ep.membership.State()
		data.Membership = &st
	}
	ep.out.publish(data)
}

// Register registers the viewer through the page's membership.
func (ep *EventDetailPage) Register(ctx context.Context) (*domain.Registration, error) {
	if ep.membership == nil {
		return nil, domain.ErrUnauthenticated
	}
	reg, err := ep.membership.Register(ctx)
	ep.emitMembership()
	return reg, err
}

// Unregister unregisters the viewer through the page's membership.
func (ep *EventDetailPage) Unregister(ctx context.Context) error {
	if ep.membership == nil {
		return domain.ErrUnauthenticated
	}
	err := ep.membership.Unregister(ctx)
	ep.emitMembership()
	return err
}

// State returns the current detail view state.
func (ep *EventDetailPage) State() realtime.State[*domain.EventDetail] {
	return ep.detail.State()
}

// Membership returns the viewer's membership, nil for anonymous viewers.
func (ep *EventDetailPage) Membership() *Membership {
	return ep.membership
}
