// Package storage provides the persistent key-value backends the vision records ledger runs on.
//
// # Overview
//
// The ledger treats its host store as an opaque, deterministic key-value map. Every backend
// here implements the same small Backend interface:
//
//	type Backend interface {
//		Get(ctx context.Context, key string) ([]byte, error)   // ErrNotFound on miss
//		Commit(ctx context.Context, writes []Write) error      // all-or-nothing
//		HealthCheck(ctx context.Context) error
//		Close() error
//	}
//
// Commit is the only mutation path. A ledger invocation buffers its writes and hands the whole
// write-set to Commit once the invocation succeeded, so a backend only has to guarantee that a
// single batch is applied atomically.
//
// # Backends
//
//	Memory   - map guarded by a mutex; tests and throwaway nodes
//	LevelDB  - embedded ordered store, commits through leveldb.Batch (default)
//	Redis    - MULTI/EXEC pipeline per commit, optional key prefix
//	SQL      - single ledger_kv table on PostgreSQL or SQLite, one transaction per commit
//
// Cached wraps any backend with an LRU read cache. Since commits go through the wrapper,
// the cache is updated in the same step and never serves a value older than the last commit.
//
// # Opening a backend
//
//	backend, err := storage.Open(ctx, storage.Config{Type: storage.TypeLevelDB, LevelDBPath: dir})
//	if err != nil {
//		return err
//	}
//	defer backend.Close()
package storage
