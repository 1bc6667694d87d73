package view

import (
	"context"
	"strings"
	"sync"
	"time"

	"mobiblog/internal/api"
	"mobiblog/internal/models"
)

// HomeState is a snapshot of the listing screen.
type HomeState struct {
	Search   string
	Category string
	Blogs    []models.PostSummary
	Loading  bool
	Err      error
}

// Home keeps the published listing of one visitor in step with the search
// term and the active category.
//
// Filter changes re-arm a quiet period; only when it elapses is the listing
// fetched. Starting a fetch cancels the one in flight and the result of a
// superseded fetch is dropped on arrival, so the rows always come from the
// most recently started fetch.
type Home struct {
	backend  Backend
	debounce time.Duration

	base context.Context
	stop context.CancelFunc

	mu       sync.Mutex
	filter   api.BlogFilter
	blogs    []models.PostSummary
	err      error
	armed    bool
	armGen   uint64
	timer    *time.Timer
	inFlight bool
	seq      uint64
	cancel   context.CancelFunc
	settled  chan struct{}
	isIdle   bool
	closed   bool

	observers map[uint64]func(HomeState)
	nextID    uint64
}

// Home returns a listing controller that lives until Close. Fetches run
// under parent and stop with it.
func (v *Views) Home(parent context.Context) *Home {
	base, stop := context.WithCancel(parent)
	settled := make(chan struct{})
	close(settled)

	return &Home{
		backend:   v.backend,
		debounce:  v.debounce,
		base:      base,
		stop:      stop,
		filter:    api.BlogFilter{Category: models.CategoryAll},
		settled:   settled,
		isIdle:    true,
		observers: make(map[uint64]func(HomeState)),
	}
}

// Refresh fetches the listing for the current filters right away.
func (h *Home) Refresh() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}

	h.disarmLocked()
	h.startLocked()
}

func (h *Home) SetSearch(term string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || term == h.filter.Search {
		return
	}
	h.filter.Search = term
	h.armLocked()
}

func (h *Home) SetCategory(category string) {
	if category == "" {
		category = models.CategoryAll
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || category == h.filter.Category {
		return
	}
	h.filter.Category = category
	h.armLocked()
}

// SetFilter applies both dimensions as one change.
func (h *Home) SetFilter(term, category string) {
	if category == "" {
		category = models.CategoryAll
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || (term == h.filter.Search && category == h.filter.Category) {
		return
	}
	h.filter = api.BlogFilter{Search: term, Category: category}
	h.armLocked()
}

func (h *Home) State() HomeState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stateLocked()
}

// Wait blocks until no quiet period is pending and no fetch is in flight.
func (h *Home) Wait(ctx context.Context) (HomeState, error) {
	h.mu.Lock()
	settled := h.settled
	h.mu.Unlock()

	select {
	case <-settled:
		return h.State(), nil
	case <-ctx.Done():
		return h.State(), ctx.Err()
	}
}

// Subscribe registers fn for every settled change and returns a function
// removing it.
func (h *Home) Subscribe(fn func(HomeState)) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.observers[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.observers, id)
			h.mu.Unlock()
		})
	}
}

// Close cancels any pending or running fetch.
func (h *Home) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}

	h.closed = true
	h.disarmLocked()
	h.seq++
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
	h.inFlight = false
	h.settleLocked()
	h.stop()
}

func (h *Home) armLocked() {
	h.disarmLocked()

	h.armed = true
	h.armGen++
	gen := h.armGen
	h.timer = time.AfterFunc(h.debounce, func() { h.fire(gen) })
	h.unsettleLocked()
}

func (h *Home) disarmLocked() {
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	// a timer that already fired sees a newer generation and gives up
	h.armGen++
	h.armed = false
}

func (h *Home) fire(gen uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || gen != h.armGen {
		return
	}
	h.timer = nil
	h.armed = false
	h.startLocked()
}

func (h *Home) startLocked() {
	if h.cancel != nil {
		h.cancel()
	}

	h.seq++
	seq := h.seq
	ctx, cancel := context.WithCancel(h.base)
	h.cancel = cancel
	h.inFlight = true
	h.unsettleLocked()

	filter := api.BlogFilter{Search: strings.TrimSpace(h.filter.Search), Category: h.filter.Category}
	go h.fetch(ctx, seq, filter)
}

func (h *Home) fetch(ctx context.Context, seq uint64, filter api.BlogFilter) {
	blogs, err := h.backend.ListBlogs(ctx, filter)

	h.mu.Lock()
	if seq != h.seq {
		h.mu.Unlock()
		return
	}

	h.cancel()
	h.cancel = nil
	h.inFlight = false
	if err != nil {
		h.err = err
	} else {
		h.blogs, h.err = blogs, nil
	}

	var observers []func(HomeState)
	state := h.stateLocked()
	if h.settleLocked() {
		for _, fn := range h.observers {
			observers = append(observers, fn)
		}
	}
	h.mu.Unlock()

	for _, fn := range observers {
		fn(state)
	}
}

func (h *Home) unsettleLocked() {
	if h.isIdle {
		h.settled = make(chan struct{})
		h.isIdle = false
	}
}

// settleLocked reports whether the listing just became settled.
func (h *Home) settleLocked() bool {
	if h.isIdle || h.armed || h.inFlight {
		return false
	}
	close(h.settled)
	h.isIdle = true
	return true
}

func (h *Home) stateLocked() HomeState {
	return HomeState{
		Search:   h.filter.Search,
		Category: h.filter.Category,
		Blogs:    h.blogs,
		Loading:  h.armed || h.inFlight,
		Err:      h.err,
	}
}
