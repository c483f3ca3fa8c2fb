package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQL dialects
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

// SQL is a Backend on a single key-value table in a relational database
type SQL struct {
	db      *sql.DB
	dialect string
}

// NewSQL wraps an open database handle. Call Migrate before first use.
func NewSQL(db *sql.DB, dialect string) (*SQL, error) {
	switch dialect {
	case DialectPostgres, DialectSQLite:
	default:
		return nil, fmt.Errorf("unsupported sql dialect: %s", dialect)
	}
	return &SQL{db: db, dialect: dialect}, nil
}

// placeholder returns the n-th (1-based) bind parameter for the dialect
func (s *SQL) placeholder(n int) string {
	if s.dialect == DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Migrate creates the ledger_kv table if it does not exist
func (s *SQL) Migrate(ctx context.Context) error {
	valueType := "BYTEA"
	if s.dialect == DialectSQLite {
		valueType = "BLOB"
	}

	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS ledger_kv (
		k TEXT PRIMARY KEY,
		v %s NOT NULL
	)`, valueType)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create ledger_kv table: %w", err)
	}
	return nil
}

// Get returns the value stored under key
func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	query := "SELECT v FROM ledger_kv WHERE k = " + s.placeholder(1)

	var v []byte
	err := s.db.QueryRowContext(ctx, query, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}
	return v, nil
}

// Commit applies all writes in one database transaction
func (s *SQL) Commit(ctx context.Context, writes []Write) error {
	if len(writes) == 0 {
		return nil
	}

	upsert := fmt.Sprintf(
		"INSERT INTO ledger_kv (k, v) VALUES (%s, %s) ON CONFLICT (k) DO UPDATE SET v = EXCLUDED.v",
		s.placeholder(1), s.placeholder(2),
	)
	del := "DELETE FROM ledger_kv WHERE k = " + s.placeholder(1)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, w := range writes {
		if w.Delete {
			_, err = tx.ExecContext(ctx, del, w.Key)
		} else {
			_, err = tx.ExecContext(ctx, upsert, w.Key, w.Value)
		}
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to write key %s: %w", w.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// HealthCheck pings the database
func (s *SQL) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database handle
func (s *SQL) Close() error {
	return s.db.Close()
}
