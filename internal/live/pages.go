package live

import (
	"context"
	"log/slog"
	"time"

	"lumaevents/internal/domain"
	"lumaevents/internal/realtime"
)

// Pages opens live pages. Every page fetches its own views; nothing is
// cached across pages.
type Pages struct {
	manager       *realtime.Manager
	views         domain.EventViewModel
	registrations domain.RegistrationService
	logger        *slog.Logger
	now           func() time.Time
}

func NewPages(manager *realtime.Manager, views domain.EventViewModel, registrations domain.RegistrationService, logger *slog.Logger) *Pages {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pages{
		manager:       manager,
		views:         views,
		registrations: registrations,
		logger:        logger,
		now:           time.Now,
	}
}

func (p *Pages) open(ctx context.Context, name string) *realtime.Page {
	return p.manager.Open(ctx, name)
}
