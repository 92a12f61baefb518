package initializer

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/amirasaad/fxwidget/infra"
	infra_cache "github.com/amirasaad/fxwidget/infra/cache"
	"github.com/amirasaad/fxwidget/pkg/cache"
	"github.com/amirasaad/fxwidget/pkg/config"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// OpenedStore is the store NewStore settled on.
type OpenedStore struct {
	Store cache.Store
	// Closer may be nil.
	Closer io.Closer
	// Driver is the backend actually in use, which is DriverMemory after a
	// fallback.
	Driver string
}

// NewStore opens the key-value store selected by cfg.Store.Driver. A store
// that cannot be reached is replaced by an in-memory one, so the widget
// keeps working without persistence.
func NewStore(ctx context.Context, cfg *config.App, logger *slog.Logger) (*OpenedStore, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store configuration is missing")
	}
	driver := cfg.Store.Driver
	if driver == "" {
		driver = DriverFile
	}

	switch driver {
	case DriverMemory:
		return &OpenedStore{Store: infra_cache.NewMemoryStore(), Driver: driver}, nil
	case DriverFile:
		return &OpenedStore{Store: infra_cache.NewFileStore(cfg.Store.FilePath), Driver: driver}, nil
	case DriverRedis:
		store, err := newRedisStore(ctx, cfg)
		if err != nil {
			return memoryFallback(logger, driver, err), nil
		}
		return &OpenedStore{Store: store, Closer: store, Driver: driver}, nil
	case DriverPostgres:
		store, closer, err := newGormStore(ctx, cfg)
		if err != nil {
			return memoryFallback(logger, driver, err), nil
		}
		return &OpenedStore{Store: store, Closer: closer, Driver: driver}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

func memoryFallback(logger *slog.Logger, driver string, err error) *OpenedStore {
	logger.Warn("Store unavailable, rates and preferences will not persist",
		"driver", driver, "error", err)
	return &OpenedStore{Store: infra_cache.NewMemoryStore(), Driver: DriverMemory}
}

func newRedisStore(ctx context.Context, cfg *config.App) (*infra_cache.RedisStore, error) {
	if cfg.Redis == nil || cfg.Redis.URL == "" {
		return nil, fmt.Errorf("REDIS_URL is not set")
	}
	// Keys are already namespaced by STORE_KEY_PREFIX.
	store, err := infra_cache.NewRedisStore(cfg.Redis.URL, "", slog.Default())
	if err != nil {
		return nil, err
	}
	if err := store.Ping(ctx, cfg.Store.ConnectAttempts); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return store, nil
}

func newGormStore(ctx context.Context, cfg *config.App) (*infra_cache.GormStore, io.Closer, error) {
	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	store := infra_cache.NewGormStore(db)
	if err := store.Migrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("migrate kv_records: %w", err)
	}
	return store, sqlDB, nil
}
