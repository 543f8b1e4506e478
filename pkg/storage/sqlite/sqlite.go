// Package sqlite provides a storage.Storage backed by a single SQLite file,
// for deployments that want durable history without a database server.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"linkexpander/pkg/storage"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	_ "modernc.org/sqlite"
)

const (
	blobsTable = "blobs"

	schema = `
CREATE TABLE IF NOT EXISTS blobs (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);`
)

// SQLite implements storage.Storage on top of modernc.org/sqlite.
type SQLite struct {
	db      *sql.DB
	builder *goqu.Database
}

// Ensure SQLite conforms to the storage.Storage interface at compile time.
var _ storage.Storage = (*SQLite)(nil)

// New opens (or creates) the database file at path and makes sure the blobs
// table exists. Use ":memory:" for a private in-memory database.
func New(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("could not open sqlite database: %w", err)
	}
	// a single connection keeps ":memory:" databases alive and serialises writers
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("could not ping sqlite database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("could not create schema: %w", err)
	}

	return &SQLite{
		db:      db,
		builder: goqu.Dialect("sqlite3").DB(db),
	}, nil
}

// Close closes the database handle.
func (s *SQLite) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("could not close sqlite database: %w", err)
	}

	return nil
}

// Get returns the blob stored under key or nil when no row exists.
func (s *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, storage.ErrEmptyKey
	}

	var value []byte
	found, err := s.builder.From(blobsTable).
		Prepared(true).
		Select("value").
		Where(goqu.I("key").Eq(key)).
		ScanValContext(ctx, &value)
	if err != nil {
		return nil, fmt.Errorf("could not fetch blob from sqlite: %w", err)
	}
	if !found {
		return nil, nil
	}

	return value, nil
}

// Set upserts the blob stored under key.
func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return storage.ErrEmptyKey
	}

	_, err := s.builder.Insert(blobsTable).
		Prepared(true).
		Rows(goqu.Record{
			"key":        key,
			"value":      value,
			"updated_at": goqu.L("CURRENT_TIMESTAMP"),
		}).
		OnConflict(goqu.DoUpdate("key", goqu.Record{
			"value":      goqu.L("excluded.value"),
			"updated_at": goqu.L("CURRENT_TIMESTAMP"),
		})).
		Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("could not store blob into sqlite: %w", err)
	}

	return nil
}

// Delete removes the row for key, if any.
func (s *SQLite) Delete(ctx context.Context, key string) error {
	if key == "" {
		return storage.ErrEmptyKey
	}

	_, err := s.builder.Delete(blobsTable).
		Prepared(true).
		Where(goqu.I("key").Eq(key)).
		Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("could not delete blob from sqlite: %w", err)
	}

	return nil
}
