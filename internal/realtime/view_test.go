package realtime

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumaevents/internal/domain"
)

func openPage(t *testing.T) *Page {
	t.Helper()
	page := NewManager(NewHub(nil), nil).Open(context.Background(), "test")
	t.Cleanup(page.Close)
	return page
}

// gatedFetch returns a fetch whose n-th call (1-based) blocks until gate n is
// released and then returns n.
type gatedFetch struct {
	calls atomic.Int32
	mu    sync.Mutex
	gates map[int32]chan struct{}
}

func newGatedFetch(n int) *gatedFetch {
	g := &gatedFetch{gates: map[int32]chan struct{}{}}
	for i := 1; i <= n; i++ {
		g.gates[int32(i)] = make(chan struct{})
	}
	return g
}

func (g *gatedFetch) fetch(ctx context.Context) (int, error) {
	n := g.calls.Add(1)
	g.mu.Lock()
	gate := g.gates[n]
	g.mu.Unlock()
	<-gate
	return int(n), nil
}

func (g *gatedFetch) release(n int32) { close(g.gates[n]) }

func TestView_DiscardsStaleResponses(t *testing.T) {
	page := openPage(t)
	g := newGatedFetch(2)

	var applied []int
	var mu sync.Mutex
	view := NewView(page, "count", g.fetch, func(s State[int]) {
		mu.Lock()
		applied = append(applied, s.Data)
		mu.Unlock()
	})

	view.Refresh(context.Background())
	require.Eventually(t, func() bool { return g.calls.Load() == 1 }, time.Second, time.Millisecond)
	view.Refresh(context.Background())
	require.Eventually(t, func() bool { return g.calls.Load() == 2 }, time.Second, time.Millisecond)

	g.release(2)
	require.Eventually(t, func() bool { return view.State().Generation == 2 }, time.Second, time.Millisecond)
	g.release(1)
	view.Wait()

	state := view.State()
	assert.Equal(t, 2, state.Data)
	assert.False(t, state.Loading)
	assert.Equal(t, []int{2}, applied)
}

func TestView_NoUpdateAfterClose(t *testing.T) {
	page := openPage(t)
	g := newGatedFetch(1)

	var changes atomic.Int32
	view := NewView(page, "detail", g.fetch, func(State[int]) { changes.Add(1) })

	view.Refresh(context.Background())
	require.Eventually(t, func() bool { return g.calls.Load() == 1 }, time.Second, time.Millisecond)
	page.Close()
	g.release(1)
	view.Wait()

	assert.Equal(t, int32(0), changes.Load())
	assert.Equal(t, 0, view.State().Data)

	view.Refresh(context.Background())
	view.Wait()
	assert.Equal(t, int32(1), g.calls.Load())
}

func TestView_LoadingClearedOnEveryPath(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantNotFound bool
		wantFailed   bool
		wantNotice   string
		wantData     string
	}{
		{name: "success", wantData: "fresh"},
		{name: "not found", err: domain.ErrNotFound, wantNotFound: true},
		{name: "store unavailable keeps stale data", err: domain.ErrStoreUnavailable, wantNotice: NoticeStoreUnavailable, wantData: "stale"},
		{name: "unexpected failure", err: errors.New("boom"), wantFailed: true, wantNotice: NoticeFailed, wantData: "stale"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := openPage(t)
			first := true
			view := NewView(page, "v", func(ctx context.Context) (string, error) {
				if first {
					first = false
					return "stale", nil
				}
				if tt.err != nil {
					return "", tt.err
				}
				return "fresh", nil
			}, nil)
			require.True(t, view.State().Loading)

			view.Load(context.Background())
			state := view.Load(context.Background())

			assert.False(t, state.Loading)
			assert.Equal(t, tt.wantNotFound, state.NotFound)
			assert.Equal(t, tt.wantFailed, state.Failed)
			assert.Equal(t, tt.wantNotice, state.Notice)
			assert.Equal(t, tt.wantData, state.Data)
		})
	}
}
