package storage

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPostgresKV(t *testing.T) (*PostgresKV, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectPing()
	kv, err := NewPostgresKV(db)
	require.NoError(t, err)
	return kv, mock
}

func TestNewPostgresKV_NilConnection(t *testing.T) {
	_, err := NewPostgresKV(nil)
	assert.Error(t, err)
}

func TestPostgresKV_Get(t *testing.T) {
	kv, mock := newMockPostgresKV(t)

	rows := sqlmock.NewRows([]string{"value"}).AddRow(`[{"id":"1"}]`)
	mock.ExpectQuery("SELECT value FROM kv WHERE key = \\$1").
		WithArgs(KeyRecords).
		WillReturnRows(rows)

	value, err := kv.Get(context.Background(), KeyRecords)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1"}]`, value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresKV_GetMissingKey(t *testing.T) {
	kv, mock := newMockPostgresKV(t)

	mock.ExpectQuery("SELECT value FROM kv WHERE key = \\$1").
		WithArgs("never-written").
		WillReturnError(sql.ErrNoRows)

	_, err := kv.Get(context.Background(), "never-written")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresKV_Put(t *testing.T) {
	kv, mock := newMockPostgresKV(t)

	mock.ExpectExec("INSERT INTO kv").
		WithArgs(KeyProfile, `{"name":"Jane"}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := kv.Put(context.Background(), KeyProfile, `{"name":"Jane"}`)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresKV_Delete(t *testing.T) {
	kv, mock := newMockPostgresKV(t)

	mock.ExpectExec("DELETE FROM kv WHERE key = \\$1").
		WithArgs(KeyRecords).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := kv.Delete(context.Background(), KeyRecords)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// getLiveTestDB returns a real database connection for integration testing.
// Skip test if TEST_DATABASE_URL is not set.
func getLiveTestDB(t *testing.T) *sql.DB {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping PostgreSQL tests")
	}

	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	require.NoError(t, err)

	_, err = db.Exec("DELETE FROM kv")
	require.NoError(t, err)

	return db
}

func TestPostgresKV_Live_RoundTrip(t *testing.T) {
	db := getLiveTestDB(t)
	defer db.Close()

	kv, err := NewPostgresKV(db)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, kv.Put(ctx, KeyRecords, "first"))
	require.NoError(t, kv.Put(ctx, KeyRecords, "second"))

	value, err := kv.Get(ctx, KeyRecords)
	require.NoError(t, err)
	assert.Equal(t, "second", value)

	require.NoError(t, kv.Delete(ctx, KeyRecords))
	_, err = kv.Get(ctx, KeyRecords)
	assert.ErrorIs(t, err, ErrNotFound)
}
