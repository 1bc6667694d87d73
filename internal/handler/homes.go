package handlers

import (
	"context"
	"sync"
	"time"

	"mobiblog/internal/view"
)

type homeEntry struct {
	home     *view.Home
	lastUsed time.Time
}

// HomeRegistry keeps one listing controller per browser context so that
// quick successive searches share a debounce and cancel each other.
type HomeRegistry struct {
	views *view.Views
	base  context.Context

	mu    sync.Mutex
	homes map[string]*homeEntry
}

func NewHomeRegistry(base context.Context, views *view.Views) *HomeRegistry {
	return &HomeRegistry{
		views: views,
		base:  base,
		homes: make(map[string]*homeEntry),
	}
}

// Get returns the listing of contextID; created reports a fresh one.
func (r *HomeRegistry) Get(contextID string) (home *view.Home, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.homes[contextID]; ok {
		e.lastUsed = time.Now()
		return e.home, false
	}

	e := &homeEntry{home: r.views.Home(r.base), lastUsed: time.Now()}
	r.homes[contextID] = e
	return e.home, true
}

// Sweep closes listings unused for idle.
func (r *HomeRegistry) Sweep(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()

	closed := 0
	for id, e := range r.homes {
		if e.lastUsed.Before(cutoff) {
			e.home.Close()
			delete(r.homes, id)
			closed++
		}
	}
	return closed
}

// Run sweeps every idle/2 until ctx is done, then closes every listing.
func (r *HomeRegistry) Run(ctx context.Context, idle time.Duration) {
	if idle <= 0 {
		idle = 30 * time.Minute
	}

	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return
		case <-ticker.C:
			r.Sweep(idle)
		}
	}
}

func (r *HomeRegistry) closeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, e := range r.homes {
		e.home.Close()
		delete(r.homes, id)
	}
}
