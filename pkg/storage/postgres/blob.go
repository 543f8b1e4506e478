package postgres

import (
	"context"
	"fmt"
	"linkexpander/pkg/storage"

	"github.com/doug-martin/goqu/v9"
)

const (
	blobsTable = "blobs"
)

// Ensure PgSQL conforms to the storage.Storage interface at compile time.
var _ storage.Storage = (*PgSQL)(nil)

// Get returns the blob stored under key or nil when no row exists.
func (p *PgSQL) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, storage.ErrEmptyKey
	}

	var value []byte
	found, err := p.Builder.From(blobsTable).
		Prepared(true).
		Select("value").
		Where(goqu.I("key").Eq(key)).
		ScanValContext(ctx, &value)
	if err != nil {
		return nil, fmt.Errorf("could not fetch blob from pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	return value, nil
}

// Set upserts the blob stored under key.
func (p *PgSQL) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return storage.ErrEmptyKey
	}

	_, err := p.Builder.Insert(blobsTable).
		Prepared(true).
		Rows(goqu.Record{
			"key":        key,
			"value":      value,
			"updated_at": goqu.L("CURRENT_TIMESTAMP"),
		}).
		OnConflict(goqu.DoUpdate("key", goqu.Record{
			"value":      goqu.L("EXCLUDED.value"),
			"updated_at": goqu.L("CURRENT_TIMESTAMP"),
		})).
		Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("could not store blob into pg: %w", err)
	}

	return nil
}

// Delete removes the row for key, if any.
func (p *PgSQL) Delete(ctx context.Context, key string) error {
	if key == "" {
		return storage.ErrEmptyKey
	}

	_, err := p.Builder.Delete(blobsTable).
		Prepared(true).
		Where(goqu.I("key").Eq(key)).
		Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("could not delete blob from pg: %w", err)
	}

	return nil
}
