package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	lvlstorage "github.com/syndtr/goleveldb/leveldb/storage"
)

// LevelDB is a Backend on an embedded LevelDB database
type LevelDB struct {
	db   *leveldb.DB
	sync bool
}

// NewLevelDB opens (or creates) a LevelDB database at path.
// Commits are fsynced so an acknowledged invocation survives a crash.
func NewLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb at %s: %w", path, err)
	}
	return &LevelDB{db: db, sync: true}, nil
}

// NewLevelDBInMemory opens a LevelDB database backed by memory storage
func NewLevelDBInMemory() (*LevelDB, error) {
	db, err := leveldb.Open(lvlstorage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory leveldb: %w", err)
	}
	return &LevelDB{db: db}, nil
}

// Get returns the value stored under key
func (l *LevelDB) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := l.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("leveldb get failed: %w", err)
	}
	return v, nil
}

// Commit writes all mutations as a single leveldb batch
func (l *LevelDB) Commit(ctx context.Context, writes []Write) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	batch := new(leveldb.Batch)
	for _, w := range writes {
		if w.Delete {
			batch.Delete([]byte(w.Key))
			continue
		}
		batch.Put([]byte(w.Key), w.Value)
	}

	if err := l.db.Write(batch, &opt.WriteOptions{Sync: l.sync}); err != nil {
		return fmt.Errorf("leveldb batch write failed: %w", err)
	}
	return nil
}

// HealthCheck verifies the database is still open
func (l *LevelDB) HealthCheck(ctx context.Context) error {
	if _, err := l.db.GetProperty("leveldb.stats"); err != nil {
		return fmt.Errorf("leveldb unhealthy: %w", err)
	}
	return nil
}

// Close closes the database
func (l *LevelDB) Close() error {
	return l.db.Close()
}
