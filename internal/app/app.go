package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mitanshu610/chat-threads/internal/db"
	"github.com/mitanshu610/chat-threads/internal/observability"
	"github.com/mitanshu610/chat-threads/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Services Services

	store        *db.Service
	shutdownOtel func(context.Context) error
}

// New builds the logger, tracing, store connection and the repo/service
// graph from cfg. Close releases what New opened.
func New(ctx context.Context, cfg Config) (*App, error) {
	log, err := logger.NewWithLevel(cfg.LogMode, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	shutdown := observability.InitOTel(ctx, log, cfg.Otel)

	store, err := db.Open(cfg.DB, log)
	if err != nil {
		_ = shutdown(ctx)
		log.Sync()
		return nil, fmt.Errorf("init db: %w", err)
	}
	if cfg.AutoMigrate {
		if err := store.AutoMigrateAll(); err != nil {
			_ = store.Close()
			_ = shutdown(ctx)
			log.Sync()
			return nil, fmt.Errorf("db automigrate: %w", err)
		}
	}

	a := Wire(store.DB(), log)
	a.Cfg = cfg
	a.store = store
	a.shutdownOtel = shutdown
	return a, nil
}

// Wire builds the repo/service graph over an existing handle. The caller
// keeps ownership of theDB.
func Wire(theDB *gorm.DB, log *logger.Logger) *App {
	reposet := wireRepos(theDB, log)
	return &App{
		Log:      log,
		DB:       theDB,
		Repos:    reposet,
		Services: wireServices(theDB, log, reposet),
	}
}

func (a *App) Close(ctx context.Context) error {
	if a == nil {
		return nil
	}
	var firstErr error
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			firstErr = err
		}
		a.store = nil
	}
	if a.shutdownOtel != nil {
		if err := a.shutdownOtel(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
		a.shutdownOtel = nil
	}
	if a.Log != nil {
		a.Log.Sync()
	}
	return firstErr
}

func (a *App) Ping() error {
	if a == nil || a.store == nil {
		return fmt.Errorf("store not opened")
	}
	return a.store.Ping()
}

// Migrate runs the schema migration regardless of cfg.AutoMigrate.
func (a *App) Migrate() error {
	if a == nil || a.store == nil {
		return fmt.Errorf("store not opened")
	}
	return a.store.AutoMigrateAll()
}
