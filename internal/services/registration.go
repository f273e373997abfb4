package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"lumaevents/internal/domain"
)

type registrationService struct {
	registrationRepo domain.RegistrationRepository
	confirmations    domain.ConfirmationSender
	emailTimeout     time.Duration
	logger           *slog.Logger
	now              func() time.Time

	pending sync.WaitGroup
}

// NewRegistrationService returns the register/unregister actions. confirmations
// may be nil, in which case no confirmation email is attempted.
func NewRegistrationService(
	registrationRepo domain.RegistrationRepository,
	confirmations domain.ConfirmationSender,
	emailTimeout time.Duration,
	logger *slog.Logger,
) domain.RegistrationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &registrationService{
		registrationRepo: registrationRepo,
		confirmations:    confirmations,
		emailTimeout:     emailTimeout,
		logger:           logger,
		now:              time.Now,
	}
}

// Register inserts the registration and lets the store's uniqueness
// constraint reject duplicates. The confirmation email is sent in the
// background; its failure never affects the registration.
func (s *registrationService) Register(ctx context.Context, userID, eventID string) (*domain.Registration, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	reg := domain.NewRegistration(eventID, userID, s.now())
	if err := s.registrationRepo.Create(ctx, reg); err != nil {
		if errors.Is(err, domain.ErrDuplicateRegistration) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("create registration: %w", err)
	}
	s.logger.Info("registered for event", "event_id", eventID, "user_id", userID, "registration_id", reg.ID)
	s.sendConfirmation(ctx, reg.ID)
	return reg, nil
}

func (s *registrationService) sendConfirmation(ctx context.Context, registrationID string) {
	if s.confirmations == nil {
		return
	}
	// The request may finish before the mail does.
	detached := context.WithoutCancel(ctx)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(detached, s.emailTimeout)
		defer cancel()
		if err := s.confirmations.SendRegistrationConfirmation(ctx, registrationID); err != nil {
			s.logger.Warn("registration confirmation email failed", "registration_id", registrationID, "error", err)
		}
	}()
}

// Wait blocks until every background confirmation send has finished.
func (s *registrationService) Wait() {
	s.pending.Wait()
}

// Unregister deletes the pair's registration. Deleting nothing is success.
func (s *registrationService) Unregister(ctx context.Context, userID, eventID string) error {
	if userID == "" {
		return domain.ErrUnauthenticated
	}
	n, err := s.registrationRepo.DeleteByEventAndUser(ctx, eventID, userID)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	s.logger.Info("unregistered from event", "event_id", eventID, "user_id", userID, "deleted", n)
	return nil
}

func (s *registrationService) IsRegistered(ctx context.Context, userID, eventID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	_, err := s.registrationRepo.GetByEventAndUser(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get registration: %w", err)
	}
	return true, nil
}
