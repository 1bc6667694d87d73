package session

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"mobiblog/internal/storage"
)

const (
	keyPrefix = "mobiblog:"
	// slotName is the fixed local-storage name of the session record.
	slotName = "user"
)

// Key returns the storage key of a browser context's session slot.
func Key(contextID string) string {
	return keyPrefix + contextID + ":" + slotName
}

// Manager opens one Store per browser context and feeds them changes made
// by other front-end nodes.
type Manager struct {
	storage storage.LocalStorage
	codec   *TokenCodec

	mu     sync.Mutex
	stores map[string]*Store
}

func NewManager(st storage.LocalStorage, codec *TokenCodec) *Manager {
	return &Manager{
		storage: st,
		codec:   codec,
		stores:  make(map[string]*Store),
	}
}

// Open returns the store of contextID, loading it on first use. A cached
// store drops an expired session; when the driver has no change feed it is
// also re-read so that changes made by other nodes show up.
func (m *Manager) Open(ctx context.Context, contextID string) (*Store, error) {
	if contextID == "" || strings.Contains(contextID, ":") {
		return nil, fmt.Errorf("invalid browser context id %q", contextID)
	}
	key := Key(contextID)

	m.mu.Lock()
	s, ok := m.stores[key]
	m.mu.Unlock()
	if ok {
		s.touch()
		if _, watched := m.storage.(storage.Watcher); !watched {
			if err := s.refresh(ctx); err != nil {
				return nil, err
			}
		}
		if _, err := s.dropExpired(ctx); err != nil {
			return nil, err
		}
		return s, nil
	}

	s = newStore(key, m.storage, m.codec)
	if err := s.load(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.stores[key]; ok {
		return existing, nil
	}
	m.stores[key] = s
	return s, nil
}

// Run applies remote changes when the driver supports watching and evicts
// stores idle for longer than idle. It blocks until ctx is done.
func (m *Manager) Run(ctx context.Context, idle time.Duration) error {
	if idle <= 0 {
		idle = 30 * time.Minute
	}

	if w, ok := m.storage.(storage.Watcher); ok {
		go func() {
			if err := w.Watch(ctx, m.handle); err != nil {
				log.Printf("session: change feed stopped: %v", err)
			}
		}()
	}

	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Sweep(idle)
		}
	}
}

// Sweep drops cached stores unused for idle that nobody observes. They are
// reloaded from storage on the next Open.
func (m *Manager) Sweep(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for key, s := range m.stores {
		lastUsed, observers := s.idleSince()
		if observers == 0 && lastUsed.Before(cutoff) {
			delete(m.stores, key)
			evicted++
		}
	}
	return evicted
}

func (m *Manager) handle(ev storage.Event) {
	m.mu.Lock()
	s, ok := m.stores[ev.Key]
	m.mu.Unlock()

	if ok {
		s.applyRemote(ev)
	}
}
