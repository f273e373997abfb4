package services

import (
	"context"
	"fmt"

	"lumaevents/internal/domain"
)

type aggregateReader struct {
	registrationRepo domain.RegistrationRepository
}

// NewAggregateReader returns an AggregateReader computing attendee counts
// from the registrations table.
func NewAggregateReader(registrationRepo domain.RegistrationRepository) domain.AggregateReader {
	return &aggregateReader{registrationRepo: registrationRepo}
}

func (r *aggregateReader) CountRegistrations(ctx context.Context, eventID string) (int, error) {
	n, err := r.registrationRepo.CountByEventID(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return n, nil
}

// CountRegistrationsByEvent returns a count for every requested id, zero when
// the event has no registrations.
func (r *aggregateReader) CountRegistrationsByEvent(ctx context.Context, eventIDs []string) (map[string]int, error) {
	counts, err := r.registrationRepo.CountByEventIDs(ctx, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("count registrations by event: %w", err)
	}
	for _, id := range eventIDs {
		if _, ok := counts[id]; !ok {
			counts[id] = 0
		}
	}
	return counts, nil
}
