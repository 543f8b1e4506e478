// Package memory provides a process-local storage.Storage. Nothing survives a
// restart; it is the default for development and the backend used by tests.
package memory

import (
	"bytes"
	"context"
	"linkexpander/pkg/storage"
	"sync"
)

// Store keeps blobs in a map guarded by a mutex.
type Store struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// Ensure Store conforms to the storage.Storage interface at compile time.
var _ storage.Storage = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	return &Store{blobs: make(map[string][]byte)}
}

// Get returns a copy of the blob stored under key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, storage.ErrEmptyKey
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.blobs[key]
	if !ok {
		return nil, nil
	}

	return bytes.Clone(v), nil
}

// Set stores a copy of value under key.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	if key == "" {
		return storage.ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// bytes.Clone keeps nil as nil; a stored key must read back non-nil
	v := make([]byte, len(value))
	copy(v, value)
	s.blobs[key] = v

	return nil
}

// Delete removes key.
func (s *Store) Delete(_ context.Context, key string) error {
	if key == "" {
		return storage.ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.blobs, key)

	return nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
