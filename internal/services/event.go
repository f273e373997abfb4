package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"lumaevents/internal/domain"
)

// MaxImageBytes bounds event image uploads.
const MaxImageBytes = 5 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

type eventService struct {
	eventRepo        domain.EventRepository
	agendaRepo       domain.AgendaRepository
	registrationRepo domain.RegistrationRepository
	storage          domain.ObjectStorage
	logger           *slog.Logger
	contextTimeout   time.Duration
	now              func() time.Time
}

func NewEventService(
	eventRepo domain.EventRepository,
	agendaRepo domain.AgendaRepository,
	registrationRepo domain.RegistrationRepository,
	storage domain.ObjectStorage,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	if logger == nil {
		logger = slog.Default()
	}
	return &eventService{
		eventRepo:        eventRepo,
		agendaRepo:       agendaRepo,
		registrationRepo: registrationRepo,
		storage:          storage,
		logger:           logger,
		contextTimeout:   timeout,
		now:              time.Now,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, organizerID string, input domain.CreateEventInput) (*domain.Event, []*domain.AgendaItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if organizerID == "" {
		return nil, nil, domain.ErrUnauthenticated
	}
	if err := validateCreateEvent(input); err != nil {
		return nil, nil, err
	}
	if input.EndTime.Before(input.Date) {
		s.logger.Warn("event ends before it starts", "organizer_id", organizerID, "date", input.Date, "end_time", input.EndTime)
	}

	now := s.now()
	event := domain.NewEvent(
		strings.TrimSpace(input.Title),
		strings.TrimSpace(input.Description),
		strings.TrimSpace(input.Location),
		organizerID,
		input.Date, input.EndTime, now, now,
	)
	event.ImageURL = input.ImageURL
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, nil, fmt.Errorf("create event: %w", err)
	}

	agenda := []*domain.AgendaItem{}
	if len(input.Agenda) > 0 {
		items, err := s.agendaRepo.CreateItems(ctx, event.ID, input.Agenda)
		if err != nil {
			return nil, nil, fmt.Errorf("create agenda: %w", err)
		}
		agenda = sortAgenda(items)
	}
	s.logger.Info("event created", "event_id", event.ID, "organizer_id", organizerID, "agenda_items", len(agenda))
	return event, agenda, nil
}

func validateCreateEvent(input domain.CreateEventInput) error {
	var missing []string
	for _, f := range []struct {
		name  string
		empty bool
	}{
		{"title", strings.TrimSpace(input.Title) == ""},
		{"description", strings.TrimSpace(input.Description) == ""},
		{"date", input.Date.IsZero()},
		{"end_time", input.EndTime.IsZero()},
		{"location", strings.TrimSpace(input.Location) == ""},
	} {
		if f.empty {
			missing = append(missing, f.name)
		}
	}
	for i, item := range input.Agenda {
		if strings.TrimSpace(item.Title) == "" || strings.TrimSpace(item.Time) == "" {
			missing = append(missing, fmt.Sprintf("agenda[%d]", i))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", domain.ErrInvalidInput, strings.Join(missing, ", "))
	}
	return nil
}

// loadOwned returns the event if organizerID owns it.
func (s *eventService) loadOwned(ctx context.Context, organizerID, eventID string) (*domain.Event, error) {
	if organizerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID != organizerID {
		return nil, domain.ErrForbidden
	}
	return event, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, organizerID, eventID string, update domain.EventUpdate) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	current, err := s.loadOwned(ctx, organizerID, eventID)
	if err != nil {
		return nil, err
	}
	for name, v := range map[string]*string{"title": update.Title, "description": update.Description, "location": update.Location} {
		if v != nil && strings.TrimSpace(*v) == "" {
			return nil, fmt.Errorf("%w: %s cannot be empty", domain.ErrInvalidInput, name)
		}
	}
	date, end := current.Date, current.EndTime
	if update.Date != nil {
		date = *update.Date
	}
	if update.EndTime != nil {
		end = *update.EndTime
	}
	if end.Before(date) {
		s.logger.Warn("event ends before it starts", "event_id", eventID, "date", date, "end_time", end)
	}

	updated, err := s.eventRepo.Update(ctx, eventID, update)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

// DeleteEvent removes the event and its dependents. Agenda items and
// registrations go first since the store does not cascade.
func (s *eventService) DeleteEvent(ctx context.Context, organizerID, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.loadOwned(ctx, organizerID, eventID); err != nil {
		return err
	}
	if err := s.agendaRepo.DeleteByEventID(ctx, eventID); err != nil {
		return fmt.Errorf("delete agenda: %w", err)
	}
	if err := s.registrationRepo.DeleteByEventID(ctx, eventID); err != nil {
		return fmt.Errorf("delete registrations: %w", err)
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	s.logger.Info("event deleted", "event_id", eventID, "organizer_id", organizerID)
	return nil
}

// UploadEventImage stores an image under the organizer's folder and returns
// its public URL.
func (s *eventService) UploadEventImage(ctx context.Context, organizerID, filename, contentType string, body []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if organizerID == "" {
		return "", domain.ErrUnauthenticated
	}
	if !allowedImageTypes[contentType] {
		return "", fmt.Errorf("%w: unsupported image type %q", domain.ErrInvalidInput, contentType)
	}
	if len(body) == 0 || len(body) > MaxImageBytes {
		return "", fmt.Errorf("%w: image must be between 1 byte and %d bytes", domain.ErrInvalidInput, MaxImageBytes)
	}
	path := imageObjectPath(organizerID, filename, s.now())
	url, err := s.storage.Upload(ctx, path, contentType, body)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	s.logger.Info("event image uploaded", "organizer_id", organizerID, "path", path)
	return url, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9.\-_]+`)

// imageObjectPath builds "<folder>/<yyyymmdd>-<uuid>-<sanitized name>".
func imageObjectPath(folder, filename string, at time.Time) string {
	safe := unsafeFilenameChars.ReplaceAllString(filename, "_")
	if safe == "" {
		safe = "image"
	}
	return fmt.Sprintf("%s/%s-%s-%s", folder, at.Format("20060102"), uuid.NewString(), safe)
}
