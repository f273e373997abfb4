package realtime

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"lumaevents/internal/domain"
)

// Subscription identifies one registered (filter, callback) pair on a Hub.
type Subscription struct {
	ID     string
	Filter domain.Filter
}

type subscriber struct {
	filter   domain.Filter
	callback func(domain.Change)
}

// Hub fans change notifications out to subscriptions whose filter matches.
// Callbacks run on the publishing goroutine and must not block.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]subscriber
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subs:   make(map[string]subscriber),
		logger: logger,
	}
}

// Subscribe registers callback for every change matching filter.
func (h *Hub) Subscribe(filter domain.Filter, callback func(domain.Change)) Subscription {
	sub := Subscription{ID: uuid.NewString(), Filter: filter}
	h.mu.Lock()
	h.subs[sub.ID] = subscriber{filter: filter, callback: callback}
	h.mu.Unlock()
	h.logger.Debug("subscribed", "subscription", sub.ID, "filter", filter.String())
	return sub
}

// Unsubscribe removes the subscription. Unknown subscriptions are ignored.
func (h *Hub) Unsubscribe(sub Subscription) {
	h.mu.Lock()
	_, ok := h.subs[sub.ID]
	delete(h.subs, sub.ID)
	h.mu.Unlock()
	if ok {
		h.logger.Debug("unsubscribed", "subscription", sub.ID, "filter", sub.Filter.String())
	}
}

// Publish delivers c to every matching subscription.
func (h *Hub) Publish(c domain.Change) {
	h.mu.RLock()
	matched := make([]func(domain.Change), 0, len(h.subs))
	for _, s := range h.subs {
		if s.filter.Matches(c) {
			matched = append(matched, s.callback)
		}
	}
	h.mu.RUnlock()

	if c.Op == domain.OpResync {
		h.logger.Info("resync broadcast", "subscriptions", len(matched))
	}
	for _, cb := range matched {
		cb(c)
	}
}

// Len returns the number of open subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Run pumps source into the hub until ctx is done or the source fails.
func (h *Hub) Run(ctx context.Context, source domain.ChangeSource) error {
	h.logger.Info("change hub started")
	defer h.logger.Info("change hub stopped")
	return source.Listen(ctx, h.Publish)
}
