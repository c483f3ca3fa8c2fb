package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockSQL(t *testing.T) (*SQL, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	b, err := NewSQL(db, DialectPostgres)
	require.NoError(t, err)
	return b, mock
}

func TestSQL_MigratePostgres(t *testing.T) {
	b, mock := setupMockSQL(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS ledger_kv").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, b.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQL_MigrateError(t *testing.T) {
	b, mock := setupMockSQL(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS ledger_kv").WillReturnError(errors.New("permission denied"))

	err := b.Migrate(context.Background())
	assert.ErrorContains(t, err, "permission denied")
}

func TestSQL_GetUsesPostgresPlaceholders(t *testing.T) {
	b, mock := setupMockSQL(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT v FROM ledger_kv WHERE k = $1")).
		WithArgs("RECORD/1").
		WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow([]byte(`{"id":1}`)))

	v, err := b.Get(context.Background(), "RECORD/1")
	require.NoError(t, err)
	assert.Equal(t, `{"id":1}`, string(v))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQL_GetNotFound(t *testing.T) {
	b, mock := setupMockSQL(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT v FROM ledger_kv WHERE k = $1")).
		WithArgs("RECORD/9").
		WillReturnRows(sqlmock.NewRows([]string{"v"}))

	_, err := b.Get(context.Background(), "RECORD/9")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQL_CommitIsTransactional(t *testing.T) {
	b, mock := setupMockSQL(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ledger_kv (k, v) VALUES ($1, $2)")).
		WithArgs("RECORD/1", []byte("a")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM ledger_kv WHERE k = $1")).
		WithArgs("ACCESS/p/g").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := b.Commit(context.Background(), []Write{
		{Key: "RECORD/1", Value: []byte("a")},
		{Key: "ACCESS/p/g", Delete: true},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQL_CommitRollsBackOnError(t *testing.T) {
	b, mock := setupMockSQL(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ledger_kv")).
		WithArgs("RECORD/1", []byte("a")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ledger_kv")).
		WithArgs("REC_HIST/1", []byte("b")).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := b.Commit(context.Background(), []Write{
		{Key: "RECORD/1", Value: []byte("a")},
		{Key: "REC_HIST/1", Value: []byte("b")},
	})
	assert.ErrorContains(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQL_CommitBeginError(t *testing.T) {
	b, mock := setupMockSQL(t)

	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	err := b.Commit(context.Background(), []Write{{Key: "k", Value: []byte("v")}})
	assert.ErrorContains(t, err, "failed to begin transaction")
}
