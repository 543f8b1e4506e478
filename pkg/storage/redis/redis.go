// Package redis provides a storage.Storage backed by Redis string keys, so
// several service replicas can share one history.
package redis

import (
	"context"
	"errors"
	"fmt"
	"linkexpander/pkg/storage"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options configures the Redis connection.
type Options struct {
	Addr         string        // Redis address (ex: "localhost:6379")
	Username     string        // Optional username
	Password     string        // Optional password
	DB           int           // Redis DB number
	DialTimeout  time.Duration // Redis dial timeout
	ReadTimeout  time.Duration // Redis read timeout
	WriteTimeout time.Duration // Redis write timeout
	PoolSize     int           // Redis connection pool size
	// KeyPrefix namespaces every key written by this store (ex: "linkexpander:").
	KeyPrefix string
}

// Store implements storage.Storage on top of a go-redis client.
type Store struct {
	client    *redis.Client
	keyPrefix string
}

// Ensure Store conforms to the storage.Storage interface at compile time.
var _ storage.Storage = (*Store)(nil)

// New creates the client and pings the server once so misconfiguration is
// reported at startup.
func New(ctx context.Context, options Options) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         options.Addr,
		Username:     options.Username,
		Password:     options.Password,
		DB:           options.DB,
		DialTimeout:  options.DialTimeout,
		ReadTimeout:  options.ReadTimeout,
		WriteTimeout: options.WriteTimeout,
		PoolSize:     options.PoolSize,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("could not ping redis at %s: %w", options.Addr, err)
	}

	return &Store{client: client, keyPrefix: options.KeyPrefix}, nil
}

func (s *Store) key(k string) string {
	return s.keyPrefix + k
}

// Get returns the blob stored under key, or nil on a cache miss.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, storage.ErrEmptyKey
	}

	b, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, fmt.Errorf("could not get blob from redis: %w", err)
	}

	return b, nil
}

// Set stores value under key without expiration.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return storage.ErrEmptyKey
	}

	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("could not set blob in redis: %w", err)
	}

	return nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return storage.ErrEmptyKey
	}

	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("could not delete blob from redis: %w", err)
	}

	return nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("could not close redis client: %w", err)
	}

	return nil
}
