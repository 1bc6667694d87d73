package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"mobiblog/internal/storage"
)

// StorageRepository is the SQL side of browser-local storage.
type StorageRepository interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	CountItems(ctx context.Context) (int, error)
	Watch(ctx context.Context, fn func(storage.Event)) error
}

type Repository struct {
	Storage StorageRepository
}

// NewRepository builds the repositories over db. dsn and origin feed the
// storage change feed.
func NewRepository(db *sqlx.DB, dsn, origin string) *Repository {
	return &Repository{
		Storage: NewWatchedStorageRepository(db, dsn, origin),
	}
}
