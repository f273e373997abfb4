package realtime

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"lumaevents/internal/domain"
)

// Notices rendered when a fetch fails.
const (
	NoticeStoreUnavailable = "Live data is temporarily unavailable. Showing the last loaded data."
	NoticeFailed           = "Something went wrong while loading this view."
)

var tracer = otel.Tracer("lumaevents/internal/realtime")

// State is the render state of a view.
type State[T any] struct {
	Data       T      `json:"data"`
	Loading    bool   `json:"loading"`
	NotFound   bool   `json:"not_found,omitempty"`
	Failed     bool   `json:"failed,omitempty"`
	Notice     string `json:"notice,omitempty"`
	Generation uint64 `json:"generation"`
}

// FetchFunc loads a view's data from the store.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// View holds the fetch-and-render state of one view on a page. Each Refresh
// is tagged with a generation; a response is applied only while the page is
// alive and only if no newer response has been applied already.
type View[T any] struct {
	name     string
	page     *Page
	fetch    FetchFunc[T]
	onChange func(State[T])

	mu        sync.Mutex
	state     State[T]
	requested uint64
	applied   uint64

	inflight sync.WaitGroup
}

// NewView creates a view in the loading state. onChange is called with the
// new state each time a response is applied; it must not block.
func NewView[T any](page *Page, name string, fetch FetchFunc[T], onChange func(State[T])) *View[T] {
	if onChange == nil {
		onChange = func(State[T]) {}
	}
	return &View[T]{
		name:     name,
		page:     page,
		fetch:    fetch,
		onChange: onChange,
		state:    State[T]{Loading: true},
	}
}

// Refresh dispatches a fetch in its own goroutine.
func (v *View[T]) Refresh(ctx context.Context) {
	if !v.page.Alive() {
		return
	}
	v.mu.Lock()
	v.requested++
	gen := v.requested
	v.state.Loading = true
	v.mu.Unlock()

	v.inflight.Add(1)
	go func() {
		defer v.inflight.Done()
		data, err := v.run(ctx, gen)
		v.apply(gen, data, err)
	}()
}

// Load fetches synchronously and returns the resulting state.
func (v *View[T]) Load(ctx context.Context) State[T] {
	v.mu.Lock()
	v.requested++
	gen := v.requested
	v.mu.Unlock()

	data, err := v.run(ctx, gen)
	v.apply(gen, data, err)
	return v.State()
}

func (v *View[T]) run(ctx context.Context, gen uint64) (T, error) {
	ctx, span := tracer.Start(ctx, "view.fetch", trace.WithAttributes(
		attribute.String("view.page", v.page.Name()),
		attribute.String("view.name", v.name),
		attribute.Int64("view.generation", int64(gen)),
	))
	defer span.End()
	data, err := v.fetch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return data, err
}

func (v *View[T]) apply(gen uint64, data T, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.page.Alive() {
		return
	}
	if gen <= v.applied {
		v.page.Logger().Debug("discarding stale response", "view", v.name, "generation", gen, "applied", v.applied)
		return
	}
	v.applied = gen

	next := v.state
	next.Loading = false
	next.Generation = gen
	switch {
	case err == nil:
		next.Data = data
		next.NotFound = false
		next.Failed = false
		next.Notice = ""
	case errors.Is(err, domain.ErrNotFound):
		var zero T
		next.Data = zero
		next.NotFound = true
		next.Failed = false
		next.Notice = ""
	case errors.Is(err, domain.ErrStoreUnavailable):
		next.Notice = NoticeStoreUnavailable
		v.page.Logger().Warn("view fetch failed, keeping stale data", "view", v.name, "error", err)
	default:
		next.Failed = true
		next.Notice = NoticeFailed
		v.page.Logger().Error("view fetch failed", "view", v.name, "error", err)
	}
	v.state = next
	v.onChange(next)
}

// State returns a copy of the current state.
func (v *View[T]) State() State[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Wait blocks until every dispatched fetch has returned.
func (v *View[T]) Wait() {
	v.inflight.Wait()
}
