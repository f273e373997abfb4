package domain

import (
	"context"
	"time"
)

// Registration represents a user's membership of an event. At most one
// registration exists per (event, user) pair; there is no update operation.
// swagger:model Registration
type Registration struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewRegistration creates a new Registration. ID is typically set by the repository on create.
func NewRegistration(eventID, userID string, createdAt time.Time) *Registration {
	return &Registration{
		EventID:   eventID,
		UserID:    userID,
		CreatedAt: createdAt,
	}
}

// RegistrationRepository defines storage operations for registrations.
type RegistrationRepository interface {
	// Create inserts the row. A second row for the same pair fails with ErrDuplicateRegistration.
	Create(ctx context.Context, reg *Registration) error
	GetByID(ctx context.Context, id string) (*Registration, error)
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*Registration, error)
	ListByUserID(ctx context.Context, userID string) ([]*Registration, error)
	// DeleteByEventAndUser removes the pair's row and reports how many rows were deleted.
	DeleteByEventAndUser(ctx context.Context, eventID, userID string) (int64, error)
	DeleteByEventID(ctx context.Context, eventID string) error
	CountByEventID(ctx context.Context, eventID string) (int, error)
	CountByEventIDs(ctx context.Context, eventIDs []string) (map[string]int, error)
}

// RegisteredEvent bundles a registration with its related event.
// swagger:model RegisteredEvent
type RegisteredEvent struct {
	Registration *Registration `json:"registration"`
	Event        *Event        `json:"event"`
}

// AggregateReader computes attendee counts. Counts are never persisted.
type AggregateReader interface {
	CountRegistrations(ctx context.Context, eventID string) (int, error)
	CountRegistrationsByEvent(ctx context.Context, eventIDs []string) (map[string]int, error)
}

// RegistrationService performs register/unregister actions for a (user, event) pair.
type RegistrationService interface {
	Register(ctx context.Context, userID, eventID string) (*Registration, error)
	// Unregister is idempotent in effect: deleting zero rows is not an error.
	Unregister(ctx context.Context, userID, eventID string) error
	IsRegistered(ctx context.Context, userID, eventID string) (bool, error)
}
