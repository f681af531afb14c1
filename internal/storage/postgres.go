package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresKV implements the KV interface using PostgreSQL.
// It expects the kv table to already exist (created via migrations).
type PostgresKV struct {
	db *sql.DB
}

// NewPostgresKV creates a new PostgreSQL key-value store over an existing
// connection.
func NewPostgresKV(db *sql.DB) (*PostgresKV, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresKV{db: db}, nil
}

// NewPostgresKVFromURL creates a new PostgreSQL key-value store from a
// connection URL.
func NewPostgresKVFromURL(databaseURL string) (*PostgresKV, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	store, err := NewPostgresKV(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// Get returns the value stored under key, or ErrNotFound.
func (s *PostgresKV) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM kv WHERE key = $1", key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return value, nil
}

// Put stores or replaces the value under key using an upsert.
func (s *PostgresKV) Put(ctx context.Context, key string, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = NOW()
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

// Delete removes a key. Deleting a missing key is not an error.
func (s *PostgresKV) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = $1", key)
	return err
}

// Close closes the store and releases resources.
func (s *PostgresKV) Close() error {
	return s.db.Close()
}
