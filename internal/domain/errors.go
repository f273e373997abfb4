package domain

import "errors"

// Sentinel errors shared by repositories, services and delivery.
var (
	// ErrNotFound is returned when an entity is absent. Views render it as a
	// "not found" state, never as an error banner.
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable wraps network or backend failures of the store.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrUnauthenticated is returned when an action requires an identity and none is present.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrDuplicateRegistration is returned when a registration already exists for the (event, user) pair.
	ErrDuplicateRegistration = errors.New("already registered for this event")

	// ErrForbidden is returned when the caller does not own the entity it is mutating.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput is returned when the request is invalid.
	ErrInvalidInput = errors.New("invalid input")
)
