package live

import (
	"context"
	"errors"
	"sync"

	"lumaevents/internal/domain"
)

// MembershipStatus is whether the user holds a registration for the event.
type MembershipStatus string

const (
	StatusUnregistered MembershipStatus = "unregistered"
	StatusRegistered   MembershipStatus = "registered"
)

// MembershipState is the render state of a Membership.
type MembershipState struct {
	EventID string           `json:"event_id"`
	Status  MembershipStatus `json:"status"`
	Pending bool             `json:"pending"`
}

// Membership tracks one user's registration for one event. The status only
// changes after the store has answered; it is never derived from other views.
type Membership struct {
	svc     domain.RegistrationService
	userID  string
	eventID string

	mu      sync.Mutex
	status  MembershipStatus
	pending bool
}

func NewMembership(svc domain.RegistrationService, userID, eventID string) *Membership {
	return &Membership{
		svc:     svc,
		userID:  userID,
		eventID: eventID,
		status:  StatusUnregistered,
	}
}

// Load reads the current status from the store.
func (m *Membership) Load(ctx context.Context) error {
	ok, err := m.svc.IsRegistered(ctx, m.userID, m.eventID)
	if err != nil {
		return err
	}
	m.set(ok)
	return nil
}

// Register moves unregistered to registered. A duplicate means the row
// already exists, so the status becomes registered and the error is returned
// for the caller to show.
func (m *Membership) Register(ctx context.Context) (*domain.Registration, error) {
	if m.userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	m.begin()
	defer m.end()

	reg, err := m.svc.Register(ctx, m.userID, m.eventID)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateRegistration) {
			m.set(true)
		}
		return nil, err
	}
	m.set(true)
	return reg, nil
}

// Unregister moves registered to unregistered.
func (m *Membership) Unregister(ctx context.Context) error {
	if m.userID == "" {
		return domain.ErrUnauthenticated
	}
	m.begin()
	defer m.end()

	if err := m.svc.Unregister(ctx, m.userID, m.eventID); err != nil {
		return err
	}
	m.set(false)
	return nil
}

func (m *Membership) State() MembershipState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MembershipState{EventID: m.eventID, Status: m.status, Pending: m.pending}
}

func (m *Membership) set(registered bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if registered {
		m.status = StatusRegistered
	} else {
		m.status = StatusUnregistered
	}
}

func (m *Membership) begin() {
	m.mu.Lock()
	m.pending = true
	m.mu.Unlock()
}

func (m *Membership) end() {
	m.mu.Lock()
	m.pending = false
	m.mu.Unlock()
}
