package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"mobiblog/internal/api"
	"mobiblog/internal/config"
	"mobiblog/internal/database"
	handlers "mobiblog/internal/handler"
	"mobiblog/internal/middleware"
	"mobiblog/internal/repository"
	"mobiblog/internal/session"
	"mobiblog/internal/storage"
	"mobiblog/internal/view"
)

// App holds the long-lived parts of the front end.
type App struct {
	Handlers *handlers.Handlers
	Manager  *session.Manager
	Homes    *handlers.HomeRegistry

	closers []func() error
}

// New wires the storage driver, session manager, backend client and pages.
// ctx bounds the background work started later by Run.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}

	st, health, err := a.openStorage(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	codec := session.NewTokenCodec(cfg.SessionSecret, cfg.SessionTTL)
	a.Manager = session.NewManager(st, codec)

	views := view.New(api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout), cfg)
	a.Homes = handlers.NewHomeRegistry(ctx, views)

	h, err := handlers.NewHandlers(views, a.Homes, a.Manager, newCookieStore(cfg), health, cfg.Storage.Driver, cfg.MaxUploadSize)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Handlers = h
	return a, nil
}

func (a *App) openStorage(ctx context.Context, cfg *config.Config) (storage.LocalStorage, handlers.HealthChecker, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return storage.NewMemoryStorage(), nil, nil

	case "file":
		st, err := storage.NewFileStorage(cfg.Storage.FilePath)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Session storage: file %s", cfg.Storage.FilePath)
		return st, nil, nil

	case "redis":
		rdb, err := storage.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, rdb.Close)
		st := storage.NewRedisStorage(rdb, cfg.Redis.Channel, uuid.NewString(), cfg.SessionTTL)
		log.Printf("Session storage: redis %s", cfg.Redis.Addr)
		return st, st, nil

	case "postgres":
		origin := uuid.NewString()
		db, err := database.ConnectDB(cfg, origin)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, db.CloseDB)
		repo := repository.NewRepository(db.DB, db.DSN, origin)
		log.Printf("Session storage: postgres %s", cfg.DB.DbHOST)
		return repo.Storage, repo.Storage, nil
	}

	return nil, nil, fmt.Errorf("%w: %q", storage.ErrUnknownDriver, cfg.Storage.Driver)
}

func newCookieStore(cfg *config.Config) *sessions.CookieStore {
	maxAge := 30 * 24 * 60 * 60
	if cfg.SessionTTL > 0 {
		maxAge = int(cfg.SessionTTL.Seconds())
	}
	return middleware.NewCookieStore(cfg.SessionSecret, cfg.CookieSecure, maxAge)
}

// Run evicts idle stores and listings until ctx is done.
func (a *App) Run(ctx context.Context, idle time.Duration) {
	go a.Homes.Run(ctx, idle)
	if err := a.Manager.Run(ctx, idle); err != nil {
		log.Printf("session manager stopped: %v", err)
	}
}

// Close releases the storage connections.
func (a *App) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			log.Printf("Error closing storage: %v", err)
		}
	}
	a.closers = nil
}
