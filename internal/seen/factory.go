package seen

import (
	"context"
	"errors"
	"fmt"

	"butler/config"
	"butler/internal/storage"
)

// Result holds the initialized store and the storage connection it owns.
type Result struct {
	Store   Store
	Storage *storage.Conn
}

// Close releases resources held by the store.
func (r *Result) Close() error {
	var errs []error
	if r.Store != nil {
		if err := r.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store close: %w", err))
		}
	}
	if r.Storage != nil {
		if err := r.Storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage close: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %w", errors.Join(errs...))
	}
	return nil
}

// New creates a seen store from app configuration.
func New(ctx context.Context, cfg *config.Config) (*Result, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	storageCfg := buildStorageConfig(cfg)
	if storageCfg.Type == storage.TypeMemory {
		return &Result{Store: NewMemoryStore()}, nil
	}

	conn, err := storage.New(ctx, storageCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage: %w", err)
	}

	store, err := createStore(ctx, conn, storageCfg)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &Result{Store: store, Storage: conn}, nil
}

func buildStorageConfig(cfg *config.Config) storage.Config {
	storageCfg := storage.DefaultConfig()
	if cfg.Storage.Type != "" {
		storageCfg.Type = cfg.Storage.Type
	}
	if cfg.Storage.SQLite.Path != "" {
		storageCfg.SQLite.Path = cfg.Storage.SQLite.Path
	}
	storageCfg.PostgreSQL.URL = cfg.Storage.PostgreSQL.URL
	if cfg.Storage.PostgreSQL.MaxConns > 0 {
		storageCfg.PostgreSQL.MaxConns = cfg.Storage.PostgreSQL.MaxConns
	}
	storageCfg.MongoDB.URL = cfg.Storage.MongoDB.URL
	if cfg.Storage.MongoDB.Database != "" {
		storageCfg.MongoDB.Database = cfg.Storage.MongoDB.Database
	}
	storageCfg.Redis.URL = cfg.Storage.Redis.URL
	if cfg.Storage.Redis.Key != "" {
		storageCfg.Redis.Key = cfg.Storage.Redis.Key
	}
	storageCfg.Redis.TTL = cfg.Storage.Redis.TTL
	return storageCfg
}

func createStore(ctx context.Context, conn *storage.Conn, cfg storage.Config) (Store, error) {
	switch conn.Type {
	case storage.TypeSQLite:
		return NewSQLiteStore(conn.SQLite)
	case storage.TypePostgreSQL:
		return NewPostgreSQLStore(ctx, conn.Postgres)
	case storage.TypeMongoDB:
		return NewMongoDBStore(conn.Mongo)
	case storage.TypeRedis:
		return NewRedisStore(conn.Redis, cfg.Redis.Key, cfg.Redis.TTL)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", conn.Type)
	}
}
