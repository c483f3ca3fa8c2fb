package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

var errClosed = errors.New("storage: backend closed")

// Open creates the backend selected by config.Type, wrapped in a read cache when enabled
func Open(ctx context.Context, config Config) (Backend, error) {
	backend, err := openBackend(ctx, config)
	if err != nil {
		return nil, err
	}

	if !config.CacheEnabled || config.CacheSize <= 0 {
		return backend, nil
	}

	cached, err := NewCached(backend, config.CacheSize)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return cached, nil
}

func openBackend(ctx context.Context, config Config) (Backend, error) {
	switch config.Type {
	case TypeMemory:
		return NewMemory(), nil
	case TypeLevelDB:
		if config.LevelDBPath == "" {
			return NewLevelDBInMemory()
		}
		return NewLevelDB(config.LevelDBPath)
	case TypeRedis:
		return NewRedis(config)
	case TypePostgres:
		return openSQL(ctx, DialectPostgres, config.PostgresURL, config)
	case TypeSQLite:
		return openSQL(ctx, DialectSQLite, config.SQLitePath, config)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", config.Type)
	}
}

func openSQL(ctx context.Context, dialect, dsn string, config Config) (Backend, error) {
	db, err := sql.Open(dialect, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", dialect, err)
	}

	if dialect == DialectPostgres {
		db.SetMaxOpenConns(config.PostgresMaxConns)
		db.SetMaxIdleConns(config.PostgresMinConns)
	} else {
		// sqlite serializes writers anyway
		db.SetMaxOpenConns(1)
	}

	pingCtx := ctx
	if config.PostgresTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, config.PostgresTimeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", dialect, err)
	}

	backend, err := NewSQL(db, dialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := backend.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return backend, nil
}
