package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"mobiblog/internal/models"
	"mobiblog/internal/storage"
)

// Observer receives the new session value; ok is false after a clear.
type Observer func(s models.Session, ok bool)

// slot is one decoded session record.
type slot struct {
	record  string
	session models.Session
	present bool
	expires time.Time
}

// Store holds the single session slot of one browser context.
//
// Get never touches the storage driver: the value loaded when the store was
// opened is cached and every write replaces it whole. A session past its
// expiry reads as absent. Observers run synchronously after each change and
// must not write to the store.
type Store struct {
	key     string
	storage storage.LocalStorage
	codec   *TokenCodec

	writeMu sync.Mutex

	mu        sync.RWMutex
	slot      slot
	observers map[uint64]Observer
	nextID    uint64
	lastUsed  time.Time
}

func newStore(key string, st storage.LocalStorage, codec *TokenCodec) *Store {
	return &Store{
		key:       key,
		storage:   st,
		codec:     codec,
		observers: make(map[uint64]Observer),
		lastUsed:  time.Now(),
	}
}

// decode turns a persisted record into a slot. An unverifiable record gives
// an empty slot and false.
func (s *Store) decode(record string) (slot, bool) {
	sess, expires, err := s.codec.Decode(record)
	if err != nil {
		log.Printf("session: discarding record %s: %v", s.key, err)
		return slot{}, false
	}
	return slot{record: record, session: sess, present: true, expires: expires}, true
}

// load reads the persisted record. A record that fails verification is
// removed and the slot starts empty.
func (s *Store) load(ctx context.Context) error {
	record, found, err := s.storage.GetItem(ctx, s.key)
	if err != nil {
		return fmt.Errorf("loading session %s: %w", s.key, err)
	}
	if !found {
		return nil
	}

	next, ok := s.decode(record)
	if !ok {
		if err := s.storage.RemoveItem(ctx, s.key); err != nil {
			return fmt.Errorf("removing invalid session %s: %w", s.key, err)
		}
		return nil
	}

	s.mu.Lock()
	s.slot = next
	s.mu.Unlock()
	return nil
}

// refresh re-reads the persisted record and applies it when another node
// changed it since this store last saw it.
func (s *Store) refresh(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	record, found, err := s.storage.GetItem(ctx, s.key)
	if err != nil {
		return fmt.Errorf("reloading session %s: %w", s.key, err)
	}

	s.mu.RLock()
	cur := s.slot
	s.mu.RUnlock()

	switch {
	case !found && !cur.present:
		return nil
	case found && cur.present && record == cur.record:
		return nil
	case !found:
		s.replace(slot{})
		return nil
	}

	next, ok := s.decode(record)
	if !ok {
		if err := s.storage.RemoveItem(ctx, s.key); err != nil {
			return fmt.Errorf("removing invalid session %s: %w", s.key, err)
		}
		if !cur.present {
			return nil
		}
	}
	s.replace(next)
	return nil
}

func (s *Store) Get() (models.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.slot.present || s.codec.expired(s.slot.expires) {
		return models.Session{}, false
	}
	return s.slot.session, true
}

// dropExpired removes a session whose expiry has passed and notifies the
// observers. It reports whether anything was removed.
func (s *Store) dropExpired(ctx context.Context) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	expired := s.slot.present && s.codec.expired(s.slot.expires)
	s.mu.RUnlock()
	if !expired {
		return false, nil
	}

	if err := s.storage.RemoveItem(ctx, s.key); err != nil {
		return false, fmt.Errorf("removing expired session %s: %w", s.key, err)
	}
	s.replace(slot{})
	return true, nil
}

func (s *Store) Set(ctx context.Context, sess models.Session) error {
	if sess.Role == models.RoleUnknown {
		return errors.New("session without a role")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	record, expires, err := s.codec.Encode(sess)
	if err != nil {
		return err
	}
	if err := s.storage.SetItem(ctx, s.key, record); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	s.replace(slot{record: record, session: sess, present: true, expires: expires})
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.storage.RemoveItem(ctx, s.key); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}

	s.replace(slot{})
	return nil
}

// Subscribe registers fn and returns a function removing it.
func (s *Store) Subscribe(fn Observer) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

// applyRemote installs a change made by another node.
func (s *Store) applyRemote(ev storage.Event) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if ev.Removed {
		s.replace(slot{})
		return
	}

	next, ok := s.decode(ev.Value)
	if !ok {
		return
	}
	s.replace(next)
}

// replace must be called with writeMu held.
func (s *Store) replace(next slot) {
	s.mu.Lock()
	s.slot = next
	observers := make([]Observer, 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn(next.session, next.present)
	}
}

func (s *Store) touch() {
	s.mu.Lock()
	s.lastUsed = time.Now()
	s.mu.Unlock()
}

func (s *Store) idleSince() (time.Time, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUsed, len(s.observers)
}
