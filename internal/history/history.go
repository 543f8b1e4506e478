// Package history keeps the bounded, newest-first list of past expansions and
// persists it as a single JSON blob through a storage.BlobStorage.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"linkexpander/internal/config"
	"linkexpander/pkg/domain"
	"linkexpander/pkg/serrors"
	"linkexpander/pkg/storage"
	"sync"
)

const (
	// DefaultCapacity is the number of entries kept.
	DefaultCapacity = 10
	// DefaultKey is the storage key the whole list is written under.
	DefaultKey = "linkHistory"
)

// Options configure the cache.
type Options struct {
	// Key overrides DefaultKey.
	Key string
	// Capacity overrides DefaultCapacity when positive.
	Capacity int
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		Key:      cfg.History.Key,
		Capacity: cfg.History.Capacity,
	}
}

// Cache is the in-memory history mirrored to a blob store. Every mutation
// rewrites the full list under one key.
type Cache struct {
	mu      sync.Mutex
	store   storage.BlobStorage
	key     string
	cap     int
	entries []domain.HistoryEntry
}

// New loads the persisted list, if any, and returns a ready Cache. A blob that
// is not a JSON array of entries is reported as serrors.ErrInternal. A
// persisted list longer than the capacity is truncated in memory.
func New(ctx context.Context, store storage.BlobStorage, options Options) (*Cache, error) {
	c := &Cache{
		store: store,
		key:   options.Key,
		cap:   options.Capacity,
	}
	if c.key == "" {
		c.key = DefaultKey
	}
	if c.cap <= 0 {
		c.cap = DefaultCapacity
	}

	b, err := store.Get(ctx, c.key)
	if err != nil {
		return nil, fmt.Errorf("could not load history: %w", err)
	}
	if b == nil {
		return c, nil
	}

	var entries []domain.HistoryEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, serrors.Wrap(serrors.ErrInternal, err, "could not decode persisted history")
	}
	if len(entries) > c.cap {
		entries = entries[:c.cap]
	}
	c.entries = entries

	return c, nil
}

// Append puts entry at the front, evicts the oldest entries beyond capacity
// and persists the result. The in-memory list is only replaced once the write
// succeeded.
func (c *Cache) Append(ctx context.Context, entry domain.HistoryEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := make([]domain.HistoryEntry, 0, min(len(c.entries)+1, c.cap))
	next = append(next, entry)
	next = append(next, c.entries[:min(len(c.entries), c.cap-1)]...)

	b, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("could not encode history: %w", err)
	}
	if err := c.store.Set(ctx, c.key, b); err != nil {
		return fmt.Errorf("could not persist history: %w", err)
	}
	c.entries = next

	return nil
}

// List returns a copy of the entries, newest first. It is never nil.
func (c *Cache) List() []domain.HistoryEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.HistoryEntry, len(c.entries))
	copy(out, c.entries)

	return out
}

// Clear empties the list and removes the persisted blob.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Delete(ctx, c.key); err != nil {
		return fmt.Errorf("could not delete history: %w", err)
	}
	c.entries = nil

	return nil
}
