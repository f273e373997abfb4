package live

import (
	"context"
	"sync"

	"lumaevents/internal/realtime"
)

// Snapshot is one rendering of a live page.
type Snapshot struct {
	Page string `json:"page"`
	Seq  uint64 `json:"seq"`
	Data any    `json:"data"`
}

// publisher delivers snapshots through a one-slot channel. A newer snapshot
// replaces one the reader has not taken yet.
type publisher struct {
	page string

	mu     sync.Mutex
	ch     chan Snapshot
	seq    uint64
	closed bool
}

func newPublisher(p *realtime.Page) *publisher {
	pub := &publisher{page: p.Name(), ch: make(chan Snapshot, 1)}
	context.AfterFunc(p.Context(), pub.close)
	return pub
}

func (p *publisher) publish(data any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.seq++
	select {
	case <-p.ch:
	default:
	}
	p.ch <- Snapshot{Page: p.page, Seq: p.seq, Data: data}
}

func (p *publisher) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.ch)
}

// base carries what every live page shares.
type base struct {
	page *realtime.Page
	out  *publisher
}

func newBase(p *realtime.Page) base {
	return base{page: p, out: newPublisher(p)}
}

// Updates delivers snapshots until the page closes, then is closed.
func (b *base) Updates() <-chan Snapshot { return b.out.ch }

// Done is closed when the page closes.
func (b *base) Done() <-chan struct{} { return b.page.Context().Done() }

// Close releases every subscription held by the page.
func (b *base) Close() { b.page.Close() }

// Alive reports whether the page is still open.
func (b *base) Alive() bool { return b.page.Alive() }
