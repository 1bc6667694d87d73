package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type StorageRepositoryImpl struct {
	DB *sqlx.DB

	dsn    string
	origin string
}

type storageItem struct {
	Key       string    `db:"storage_key"`
	Value     string    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}

func NewStorageRepository(db *sqlx.DB) *StorageRepositoryImpl {
	return &StorageRepositoryImpl{DB: db}
}

// NewWatchedStorageRepository also carries what Watch needs: the connection
// string for the LISTEN connection and the application_name of this node.
func NewWatchedStorageRepository(db *sqlx.DB, dsn, origin string) *StorageRepositoryImpl {
	return &StorageRepositoryImpl{DB: db, dsn: dsn, origin: origin}
}

func (r *StorageRepositoryImpl) GetItem(ctx context.Context, key string) (string, bool, error) {
	query := `SELECT value FROM local_storage WHERE storage_key = $1`

	var value string
	err := r.DB.GetContext(ctx, &value, query, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading storage item %s: %w", key, err)
	}

	return value, true, nil
}

func (r *StorageRepositoryImpl) SetItem(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO local_storage (storage_key, value, updated_at)
		VALUES (:storage_key, :value, :updated_at)
		ON CONFLICT (storage_key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	item := storageItem{Key: key, Value: value, UpdatedAt: time.Now()}

	if _, err := r.DB.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("writing storage item %s: %w", key, err)
	}

	return nil
}

func (r *StorageRepositoryImpl) RemoveItem(ctx context.Context, key string) error {
	query := `DELETE FROM local_storage WHERE storage_key = $1`

	if _, err := r.DB.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("removing storage item %s: %w", key, err)
	}

	return nil
}

func (r *StorageRepositoryImpl) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

// CountItems reports how many sessions are persisted; used by the health page.
func (r *StorageRepositoryImpl) CountItems(ctx context.Context) (int, error) {
	var count int

	err := r.DB.GetContext(ctx, &count, `SELECT COUNT(*) FROM local_storage`)
	if err != nil {
		return 0, fmt.Errorf("counting storage items: %w", err)
	}

	return count, nil
}
