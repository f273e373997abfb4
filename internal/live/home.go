package live

import (
	"context"

	"lumaevents/internal/domain"
)

// FeaturedEventsLimit is how many upcoming events the home page features.
const FeaturedEventsLimit = 3

// Home opens the home page: the next few upcoming events.
func (p *Pages) Home(ctx context.Context) *EventListPage {
	return p.openListing(ctx, "home", domain.ListEventsQuery{
		UpcomingOnly: true,
		Limit:        FeaturedEventsLimit,
	})
}
