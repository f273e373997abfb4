package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"lumaevents/internal/domain"
)

const registrationConfirmedTemplate = "registration_confirmed"

type confirmationSender struct {
	registrationRepo domain.RegistrationRepository
	eventRepo        domain.EventRepository
	profileRepo      domain.ProfileRepository
	mailer           domain.Mailer
	renderer         domain.EmailTemplateRenderer
	logger           *slog.Logger
}

// NewConfirmationSender returns a ConfirmationSender that renders the
// "registration_confirmed" template and sends it with mailer.
func NewConfirmationSender(
	registrationRepo domain.RegistrationRepository,
	eventRepo domain.EventRepository,
	profileRepo domain.ProfileRepository,
	mailer domain.Mailer,
	renderer domain.EmailTemplateRenderer,
	logger *slog.Logger,
) domain.ConfirmationSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &confirmationSender{
		registrationRepo: registrationRepo,
		eventRepo:        eventRepo,
		profileRepo:      profileRepo,
		mailer:           mailer,
		renderer:         renderer,
		logger:           logger,
	}
}

func (s *confirmationSender) SendRegistrationConfirmation(ctx context.Context, registrationID string) error {
	if registrationID == "" {
		return fmt.Errorf("%w: registration id is required", domain.ErrInvalidInput)
	}
	reg, err := s.registrationRepo.GetByID(ctx, registrationID)
	if err != nil {
		return fmt.Errorf("get registration: %w", err)
	}
	event, err := s.eventRepo.GetByID(ctx, reg.EventID)
	if err != nil {
		return fmt.Errorf("get event: %w", err)
	}
	profile, err := s.profileRepo.GetByID(ctx, reg.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: attendee profile", domain.ErrNotFound)
		}
		return fmt.Errorf("get profile: %w", err)
	}
	if profile.Email == "" {
		return fmt.Errorf("%w: attendee has no email address", domain.ErrInvalidInput)
	}

	data := &domain.RegistrationConfirmationData{
		Email:          profile.Email,
		EventTitle:     event.Title,
		EventDate:      event.Date,
		EventLocation:  event.Location,
		RegistrationID: reg.ID,
	}
	if profile.FullName != nil {
		data.FullName = *profile.FullName
	}
	subject, htmlBody, textBody, err := s.renderer.Render(registrationConfirmedTemplate, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", registrationConfirmedTemplate, err)
	}
	if err := s.mailer.Send(ctx, data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send registration confirmation: %w", err)
	}
	s.logger.Info("registration confirmation sent", "registration_id", reg.ID, "event_id", event.ID)
	return nil
}
