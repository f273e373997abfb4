package realtime

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"lumaevents/internal/domain"
)

// Manager opens page scopes against a Hub.
type Manager struct {
	hub    *Hub
	logger *slog.Logger
	open   atomic.Int64
}

func NewManager(hub *Hub, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{hub: hub, logger: logger}
}

// Open starts a page scope. The page is closed when ctx is done or Close is
// called, whichever comes first.
func (m *Manager) Open(ctx context.Context, name string) *Page {
	pageCtx, cancel := context.WithCancel(ctx)
	p := &Page{
		name:    name,
		hub:     m.hub,
		ctx:     pageCtx,
		cancel:  cancel,
		manager: m,
		logger:  m.logger.With("page", name),
	}
	m.open.Add(1)
	context.AfterFunc(pageCtx, p.Close)
	p.logger.Debug("page opened")
	return p
}

// OpenPages returns the number of pages not yet closed.
func (m *Manager) OpenPages() int {
	return int(m.open.Load())
}

// Page owns every subscription of one live view. Close releases all of them.
type Page struct {
	name    string
	hub     *Hub
	ctx     context.Context
	cancel  context.CancelFunc
	manager *Manager
	logger  *slog.Logger

	mu     sync.Mutex
	subs   []Subscription
	closed bool
}

func (p *Page) Name() string { return p.name }

// Context is cancelled when the page closes.
func (p *Page) Context() context.Context { return p.ctx }

// Logger returns the page-scoped logger.
func (p *Page) Logger() *slog.Logger { return p.logger }

// Alive reports whether the page is still open.
func (p *Page) Alive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.closed
}

// Watch subscribes refresh to changes matching filter for the page's lifetime.
// Watching on a closed page is a no-op.
func (p *Page) Watch(filter domain.Filter, refresh func()) {
	p.WatchChanges(filter, func(domain.Change) { refresh() })
}

// WatchChanges is Watch for callers that need the change itself, for example
// to narrow a broad filter to rows the page currently shows.
func (p *Page) WatchChanges(filter domain.Filter, onChange func(domain.Change)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	sub := p.hub.Subscribe(filter, func(c domain.Change) {
		if p.Alive() {
			onChange(c)
		}
	})
	p.subs = append(p.subs, sub)
}

// Subscriptions returns the number of subscriptions the page holds.
func (p *Page) Subscriptions() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs)
}

// Close releases every subscription. It is safe to call more than once.
func (p *Page) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	subs := p.subs
	p.subs = nil
	p.mu.Unlock()

	for _, sub := range subs {
		p.hub.Unsubscribe(sub)
	}
	p.cancel()
	p.manager.open.Add(-1)
	p.logger.Debug("page closed", "released", len(subs))
}
