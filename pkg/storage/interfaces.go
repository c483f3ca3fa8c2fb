package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when a key has no value
var ErrNotFound = errors.New("storage: key not found")

// Write is a single mutation in an atomic commit
type Write struct {
	Key    string
	Value  []byte
	Delete bool
}

// Reader reads raw values by key
type Reader interface {
	// Get returns the value stored under key, or ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)
}

// Committer applies a set of writes atomically: either every write lands or none does
type Committer interface {
	Commit(ctx context.Context, writes []Write) error
}

// HealthChecker reports backend health
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Backend is the persistent key-value store the ledger runs on
type Backend interface {
	Reader
	Committer
	HealthChecker

	// Close releases the backend's resources
	Close() error
}

// Backend types
const (
	TypeMemory   = "memory"
	TypeLevelDB  = "leveldb"
	TypeRedis    = "redis"
	TypePostgres = "postgres"
	TypeSQLite   = "sqlite"
)

// Config for storage backend
type Config struct {
	Type string `yaml:"type"` // "memory", "leveldb", "redis", "postgres", "sqlite"

	// LevelDB config
	LevelDBPath string `yaml:"leveldb_path"`

	// SQL config (postgres and sqlite)
	PostgresURL      string        `yaml:"postgres_url"`
	PostgresMaxConns int           `yaml:"postgres_max_conns"`
	PostgresMinConns int           `yaml:"postgres_min_conns"`
	PostgresTimeout  time.Duration `yaml:"postgres_timeout"`
	SQLitePath       string        `yaml:"sqlite_path"`

	// Redis config
	RedisURL        string `yaml:"redis_url"`
	RedisPassword   string `yaml:"redis_password"`
	RedisDB         int    `yaml:"redis_db"`
	RedisMaxRetries int    `yaml:"redis_max_retries"`
	RedisPoolSize   int    `yaml:"redis_pool_size"`
	RedisKeyPrefix  string `yaml:"redis_key_prefix"`

	// Read cache config
	CacheEnabled bool `yaml:"cache_enabled"`
	CacheSize    int  `yaml:"cache_size"` // entries
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		Type:             TypeLevelDB,
		LevelDBPath:      "/var/lib/visionrecords/ledger",
		PostgresMaxConns: 20,
		PostgresMinConns: 2,
		PostgresTimeout:  10 * time.Second,
		SQLitePath:       "/var/lib/visionrecords/ledger.db",
		RedisDB:          0,
		RedisMaxRetries:  3,
		RedisPoolSize:    10,
		RedisKeyPrefix:   "vision:",
		CacheEnabled:     true,
		CacheSize:        4096,
	}
}
