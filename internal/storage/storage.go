package storage

import (
	"context"
	"errors"
)

// LocalStorage is the key/value store that stands in for browser-local
// storage. Values are opaque strings.
type LocalStorage interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// Watcher is implemented by drivers shared between several front-end nodes.
// Watch blocks until ctx is done, calling fn for every change made by
// another node.
type Watcher interface {
	Watch(ctx context.Context, fn func(Event)) error
}

// Pinger is implemented by drivers backed by a network service.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Event struct {
	Key     string `json:"key"`
	Value   string `json:"value,omitempty"`
	Removed bool   `json:"removed,omitempty"`
	Origin  string `json:"origin"`
}

var ErrUnknownDriver = errors.New("unknown storage driver")
