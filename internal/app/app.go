package app

import (
	"context"
	"fmt"

	"catalog-service/internal/blob"
	"catalog-service/internal/catalog"
	"catalog-service/internal/events"
	"catalog-service/internal/repository"
	"catalog-service/pkg/config"
	"catalog-service/pkg/database"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds the wired dependencies shared by the server and the CLI
type App struct {
	Config  *config.Config
	DB      *gorm.DB
	Store   catalog.Store
	Blobs   blob.Store
	Service *catalog.Service

	closers []func() error
}

// Build connects every backend selected by cfg and assembles the catalog service
func Build(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	a := &App{Config: cfg}

	if cfg.Store.Kind == "postgres" {
		db, err := database.InitDB(&cfg.DB)
		if err != nil {
			return nil, err
		}
		a.DB = db
		a.closers = append(a.closers, func() error { return database.Close(db) })
	}

	store, err := repository.NewStore(cfg.Store.Kind, a.DB)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Store = store
	if cfg.Store.Kind == "memory" {
		log.Warn("Using in-memory catalog store; data is lost on restart")
	}

	if cfg.Minio.Endpoint != "" {
		minioStore, err := blob.NewMinioStore(ctx, cfg.Minio)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Blobs = minioStore
		log.Info("MinIO image storage enabled",
			zap.String("endpoint", cfg.Minio.Endpoint),
			zap.String("bucket", cfg.Minio.Bucket))
	} else {
		a.Blobs = blob.NewMemoryStore()
		log.Warn("MINIO_ENDPOINT not set, variant images are kept in memory")
	}

	var dispatcher catalog.EventDispatcher
	if cfg.Redis.Addr != "" {
		redisDispatcher, err := events.NewRedisDispatcher(ctx, &redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Redis.Channel)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, redisDispatcher.Close)
		dispatcher = redisDispatcher
		log.Info("Publishing catalog events to redis",
			zap.String("addr", cfg.Redis.Addr),
			zap.String("channel", cfg.Redis.Channel))
	} else {
		dispatcher = events.NewLogDispatcher(log)
	}

	svc, err := catalog.NewService(catalog.ServiceDeps{
		Store:      store,
		Blobs:      a.Blobs,
		Dispatcher: dispatcher,
		Logger:     log,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to build catalog service: %w", err)
	}
	a.Service = svc
	return a, nil
}

// Migrate creates the catalog schema; it is a no-op for the memory store
func (a *App) Migrate() error {
	if a.DB == nil {
		return nil
	}
	return database.MigrateModels(a.DB)
}

// Close releases every backend connection, returning the first error
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
