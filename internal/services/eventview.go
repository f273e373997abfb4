package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"lumaevents/internal/domain"
)

// Non-fatal notices attached to view models.
const (
	NoticeCountUnavailable     = "Attendee count is temporarily unavailable."
	NoticeCountsUnavailable    = "Attendee counts are temporarily unavailable."
	NoticeOrganizerUnavailable = "Organizer details could not be loaded."
)

var tracer = otel.Tracer("lumaevents/internal/services")

type eventViewModel struct {
	eventRepo        domain.EventRepository
	agendaRepo       domain.AgendaRepository
	profileRepo      domain.ProfileRepository
	registrationRepo domain.RegistrationRepository
	aggregates       domain.AggregateReader
	logger           *slog.Logger
	now              func() time.Time
}

// NewEventViewModel composes event read models from the repositories.
func NewEventViewModel(
	eventRepo domain.EventRepository,
	agendaRepo domain.AgendaRepository,
	profileRepo domain.ProfileRepository,
	registrationRepo domain.RegistrationRepository,
	aggregates domain.AggregateReader,
	logger *slog.Logger,
) domain.EventViewModel {
	if logger == nil {
		logger = slog.Default()
	}
	return &eventViewModel{
		eventRepo:        eventRepo,
		agendaRepo:       agendaRepo,
		profileRepo:      profileRepo,
		registrationRepo: registrationRepo,
		aggregates:       aggregates,
		logger:           logger,
		now:              time.Now,
	}
}

func (v *eventViewModel) GetEventDetail(ctx context.Context, eventID string) (*domain.EventDetail, error) {
	ctx, span := tracer.Start(ctx, "EventViewModel.GetEventDetail")
	defer span.End()
	span.SetAttributes(attribute.String("event.id", eventID))

	var (
		event    *domain.Event
		agenda   []*domain.AgendaItem
		count    int
		countErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		e, err := v.eventRepo.GetByID(gctx, eventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get event: %w", err)
		}
		event = e
		return nil
	})
	g.Go(func() error {
		items, err := v.agendaRepo.ListByEventID(gctx, eventID)
		if err != nil {
			return fmt.Errorf("list agenda: %w", err)
		}
		agenda = items
		return nil
	})
	g.Go(func() error {
		count, countErr = v.aggregates.CountRegistrations(gctx, eventID)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	detail := &domain.EventDetail{
		Event:  event,
		Agenda: sortAgenda(agenda),
	}
	if countErr != nil {
		v.logger.Warn("attendee count unavailable", "event_id", eventID, "error", countErr)
		detail.Notices = append(detail.Notices, NoticeCountUnavailable)
	} else {
		detail.AttendeeCount = count
	}

	organizer, err := v.profileRepo.GetByID(ctx, event.OrganizerID)
	switch {
	case err == nil:
		detail.Organizer = organizer
	case errors.Is(err, domain.ErrNotFound):
	default:
		v.logger.Warn("organizer profile unavailable", "event_id", eventID, "organizer_id", event.OrganizerID, "error", err)
		detail.Notices = append(detail.Notices, NoticeOrganizerUnavailable)
	}
	detail.OrganizerName = detail.Organizer.DisplayName()
	detail.OrganizerAvatarURL = detail.Organizer.Avatar()
	return detail, nil
}

// sortAgenda orders items by display order. Equal orders keep store order.
func sortAgenda(items []*domain.AgendaItem) []*domain.AgendaItem {
	sorted := make([]*domain.AgendaItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DisplayOrder < sorted[j].DisplayOrder
	})
	return sorted
}

func (v *eventViewModel) ListEvents(ctx context.Context, q domain.ListEventsQuery) (*domain.EventListing, error) {
	ctx, span := tracer.Start(ctx, "EventViewModel.ListEvents")
	defer span.End()
	span.SetAttributes(
		attribute.Bool("query.upcoming", q.UpcomingOnly),
		attribute.String("query.organizer_id", q.OrganizerID),
		attribute.Int("query.limit", q.Limit),
	)

	filter := domain.EventListFilter{OrganizerID: q.OrganizerID}
	if q.UpcomingOnly {
		now := q.Now
		if now.IsZero() {
			now = v.now()
		}
		filter.StartsAfter = &now
	}
	// Search runs over the fetched set, so a limit can only be pushed down without one.
	searching := q.Search != ""
	if !searching {
		filter.Limit = q.Limit
	}

	events, err := v.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if searching {
		matched := make([]*domain.Event, 0, len(events))
		for _, e := range events {
			if e.MatchesSearch(q.Search) {
				matched = append(matched, e)
			}
		}
		events = matched
		if q.Limit > 0 && len(events) > q.Limit {
			events = events[:q.Limit]
		}
	}

	listing := &domain.EventListing{Events: make([]*domain.EventSummary, 0, len(events))}
	if len(events) == 0 {
		return listing, nil
	}
	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	counts, err := v.aggregates.CountRegistrationsByEvent(ctx, ids)
	if err != nil {
		v.logger.Warn("attendee counts unavailable", "events", len(ids), "error", err)
		listing.Notices = append(listing.Notices, NoticeCountsUnavailable)
		counts = map[string]int{}
	}
	for _, e := range events {
		listing.Events = append(listing.Events, &domain.EventSummary{Event: e, AttendeeCount: counts[e.ID]})
	}
	return listing, nil
}

func (v *eventViewModel) ListRegisteredEvents(ctx context.Context, userID string) ([]*domain.RegisteredEvent, error) {
	ctx, span := tracer.Start(ctx, "EventViewModel.ListRegisteredEvents")
	defer span.End()

	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	regs, err := v.registrationRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	result := make([]*domain.RegisteredEvent, 0, len(regs))
	if len(regs) == 0 {
		return result, nil
	}

	ids := make([]string, 0, len(regs))
	for _, reg := range regs {
		ids = append(ids, reg.EventID)
	}
	events, err := v.eventRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list registered events: %w", err)
	}
	eventsByID := make(map[string]*domain.Event, len(events))
	for _, e := range events {
		eventsByID[e.ID] = e
	}
	for _, reg := range regs {
		ev, ok := eventsByID[reg.EventID]
		if !ok {
			// Event deleted but registration remains.
			continue
		}
		result = append(result, &domain.RegisteredEvent{Registration: reg, Event: ev})
	}
	return result, nil
}
