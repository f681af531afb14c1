// Package storage provides the persistent key-value store the tracker keeps
// its two JSON blobs in: the record collection and the patient profile.
package storage

import (
	"context"
	"errors"
)

// Stable keys the application state is persisted under.
const (
	KeyRecords = "thyrotrack_records"
	KeyProfile = "thyrotrack_profile"
)

// ErrNotFound is returned by Get when a key has never been written.
var ErrNotFound = errors.New("storage: key not found")

// KV defines the interface for the persistent key-value store.
type KV interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Put stores or replaces the value under key.
	Put(ctx context.Context, key string, value string) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close closes the store and releases resources.
	Close() error
}
