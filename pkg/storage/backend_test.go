package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testBackendContract runs the behaviour every Backend must share
func testBackendContract(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := b.Get(ctx, "USER/nobody")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("commit and read back", func(t *testing.T) {
		err := b.Commit(ctx, []Write{
			{Key: "RECORD/1", Value: []byte(`{"id":1}`)},
			{Key: "CTR/record", Value: []byte("1")},
		})
		require.NoError(t, err)

		v, err := b.Get(ctx, "RECORD/1")
		require.NoError(t, err)
		assert.Equal(t, `{"id":1}`, string(v))

		v, err = b.Get(ctx, "CTR/record")
		require.NoError(t, err)
		assert.Equal(t, "1", string(v))
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, b.Commit(ctx, []Write{{Key: "CTR/record", Value: []byte("2")}}))

		v, err := b.Get(ctx, "CTR/record")
		require.NoError(t, err)
		assert.Equal(t, "2", string(v))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, b.Commit(ctx, []Write{{Key: "RECORD/1", Delete: true}}))

		_, err := b.Get(ctx, "RECORD/1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty commit", func(t *testing.T) {
		assert.NoError(t, b.Commit(ctx, nil))
	})

	t.Run("health", func(t *testing.T) {
		assert.NoError(t, b.HealthCheck(ctx))
	})
}

func TestMemory(t *testing.T) {
	b := NewMemory()
	testBackendContract(t, b)

	require.NoError(t, b.Close())
	assert.Error(t, b.HealthCheck(context.Background()))
}

func TestMemory_ValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	b := NewMemory()

	value := []byte("abc")
	require.NoError(t, b.Commit(ctx, []Write{{Key: "k", Value: value}}))
	value[0] = 'z'

	got, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestMemory_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := NewMemory()
	err := b.Commit(ctx, []Write{{Key: "k", Value: []byte("v")}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, b.Len())
}

func TestLevelDB(t *testing.T) {
	b, err := NewLevelDB(filepath.Join(t.TempDir(), "ledger"))
	require.NoError(t, err)
	defer b.Close()

	testBackendContract(t, b)
}

func TestLevelDB_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger")

	b, err := NewLevelDB(path)
	require.NoError(t, err)
	require.NoError(t, b.Commit(ctx, []Write{{Key: "REC_HIST/7", Value: []byte("[]")}}))
	require.NoError(t, b.Close())

	b, err = NewLevelDB(path)
	require.NoError(t, err)
	defer b.Close()

	v, err := b.Get(ctx, "REC_HIST/7")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(v))
}

func TestLevelDBInMemory(t *testing.T) {
	b, err := NewLevelDBInMemory()
	require.NoError(t, err)
	defer b.Close()

	testBackendContract(t, b)
}

func setupRedisBackend(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	b, err := NewRedis(Config{
		RedisURL:       "redis://" + mr.Addr(),
		RedisKeyPrefix: "test:",
	})
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })

	return b, mr
}

func TestRedis(t *testing.T) {
	b, _ := setupRedisBackend(t)
	testBackendContract(t, b)
}

func TestRedis_KeyPrefix(t *testing.T) {
	b, mr := setupRedisBackend(t)

	require.NoError(t, b.Commit(context.Background(), []Write{{Key: "ACCESS/a/b", Value: []byte("x")}}))

	assert.True(t, mr.Exists("test:ACCESS/a/b"))
	assert.False(t, mr.Exists("ACCESS/a/b"))
}

func TestNewRedis_InvalidURL(t *testing.T) {
	_, err := NewRedis(Config{RedisURL: "invalid://url"})
	assert.Error(t, err)
}

func TestNewRedis_ConnectionFailure(t *testing.T) {
	_, err := NewRedis(Config{RedisURL: "redis://localhost:1"})
	assert.Error(t, err)
}

func TestSQL_SQLite(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	b, err := NewSQL(db, DialectSQLite)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.Migrate(context.Background()))
	// migrating twice is harmless
	require.NoError(t, b.Migrate(context.Background()))

	testBackendContract(t, b)
}

func TestNewSQL_UnsupportedDialect(t *testing.T) {
	_, err := NewSQL(nil, "oracle")
	assert.Error(t, err)
}

func TestCached(t *testing.T) {
	b, err := NewCached(NewMemory(), 16)
	require.NoError(t, err)
	defer b.Close()

	testBackendContract(t, b)
}

func TestCached_ServesMissesFromCache(t *testing.T) {
	ctx := context.Background()
	inner := NewMemory()
	b, err := NewCached(inner, 16)
	require.NoError(t, err)

	_, err = b.Get(ctx, "ACCESS/p/g")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, b.Len())

	// a commit through the wrapper replaces the cached miss
	require.NoError(t, b.Commit(ctx, []Write{{Key: "ACCESS/p/g", Value: []byte("grant")}}))

	v, err := b.Get(ctx, "ACCESS/p/g")
	require.NoError(t, err)
	assert.Equal(t, "grant", string(v))
}

func TestCached_ReadsThrough(t *testing.T) {
	ctx := context.Background()
	inner := NewMemory()
	require.NoError(t, inner.Commit(ctx, []Write{{Key: "USER/a", Value: []byte("alice")}}))

	b, err := NewCached(inner, 16)
	require.NoError(t, err)

	v, err := b.Get(ctx, "USER/a")
	require.NoError(t, err)
	assert.Equal(t, "alice", string(v))
	assert.Equal(t, 1, b.Len())
}

func TestNewCached_InvalidSize(t *testing.T) {
	_, err := NewCached(NewMemory(), 0)
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "memory", config: Config{Type: TypeMemory}},
		{name: "memory cached", config: Config{Type: TypeMemory, CacheEnabled: true, CacheSize: 8}},
		{name: "leveldb in memory", config: Config{Type: TypeLevelDB}},
		{name: "leveldb on disk", config: Config{Type: TypeLevelDB, LevelDBPath: filepath.Join(t.TempDir(), "db")}},
		{name: "sqlite", config: Config{Type: TypeSQLite, SQLitePath: filepath.Join(t.TempDir(), "ledger.db")}},
		{name: "unknown", config: Config{Type: "tape"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Open(ctx, tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer b.Close()

			assert.NoError(t, b.HealthCheck(ctx))
		})
	}
}
