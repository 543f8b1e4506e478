// Package storage defines the key/blob persistence contract the history cache
// relies on. Backends (memory, file, Redis, PostgreSQL, SQLite) live in
// sub-packages and are interchangeable.
//
//go:generate mockgen -package mockstorage -source=interface.go -destination=mock/mockstorage.go *
package storage

import "context"

// BlobStorage stores opaque byte blobs under string keys. Writes overwrite any
// previous value for the key.
type BlobStorage interface {
	// Get returns the blob stored under key, or nil and no error when the key
	// has never been set or was deleted.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Storage is a BlobStorage that owns external resources.
type Storage interface {
	BlobStorage

	// Close releases any resources held by the backend (connection pools,
	// clients). After Close, the instance should not be used.
	Close() error
}
