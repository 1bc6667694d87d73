package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"
	"mobiblog/internal/storage"
)

// NotifyChannel is the channel the local_storage trigger notifies on.
const NotifyChannel = "mobiblog_storage"

// Watch listens for changes to local_storage made by other nodes. Each node
// connects with its own application_name, which the trigger reports as the
// event origin.
func (r *StorageRepositoryImpl) Watch(ctx context.Context, fn func(storage.Event)) error {
	if r.dsn == "" {
		return errors.New("postgres change feed needs a connection string")
	}

	listener := pq.NewListener(r.dsn, time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Printf("storage: postgres listener: %v", err)
		}
	})
	defer listener.Close()

	if err := listener.Listen(NotifyChannel); err != nil {
		return fmt.Errorf("listen %s: %w", NotifyChannel, err)
	}

	ping := time.NewTicker(90 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			// nil after a reconnect; notifications sent meanwhile are lost
			if n == nil {
				log.Printf("storage: postgres listener reconnected")
				continue
			}
			if ev, ok := decodeNotification(n.Extra, r.origin); ok {
				fn(ev)
			}
		case <-ping.C:
			if err := listener.Ping(); err != nil {
				log.Printf("storage: postgres listener ping: %v", err)
			}
		}
	}
}

// decodeNotification parses a trigger payload. Changes made by origin itself
// and malformed payloads are skipped.
func decodeNotification(payload, origin string) (storage.Event, bool) {
	var ev storage.Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		log.Printf("storage: dropping malformed change event: %v", err)
		return storage.Event{}, false
	}
	if ev.Key == "" || ev.Origin == origin {
		return storage.Event{}, false
	}
	return ev, true
}
