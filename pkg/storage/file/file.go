// Package file provides a storage.Storage that keeps one file per key inside a
// directory. It is the default for the CLI, mirroring a browser's local storage.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"linkexpander/pkg/storage"
	"net/url"
	"os"
	"path/filepath"
)

const fileMode = 0o600

// Store persists blobs under dir.
type Store struct {
	dir string
}

// Ensure Store conforms to the storage.Storage interface at compile time.
var _ storage.Storage = (*Store)(nil)

// New creates dir if needed and returns a Store rooted at it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create storage directory: %w", err)
	}

	return &Store{dir: dir}, nil
}

// path maps key to a file name; escaping keeps keys like "a/b" inside dir.
func (s *Store) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+".blob")
}

// Get reads the file for key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, storage.ErrEmptyKey
	}

	b, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("could not read blob file: %w", err)
	}

	return b, nil
}

// Set writes value to a temporary file and renames it over the previous one,
// so readers never observe a partially written blob.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	if key == "" {
		return storage.ErrEmptyKey
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("could not create temp file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("could not write temp file: %w", err)
	}
	if err := tmp.Chmod(fileMode); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("could not chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		return fmt.Errorf("could not replace blob file: %w", err)
	}

	return nil
}

// Delete removes the file for key.
func (s *Store) Delete(_ context.Context, key string) error {
	if key == "" {
		return storage.ErrEmptyKey
	}

	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("could not delete blob file: %w", err)
	}

	return nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
