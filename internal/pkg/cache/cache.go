// Package cache provides the small key/value surface the settings resolver
// needs, backed by Redis or by nothing at all.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a key is absent or expired.
var ErrNotFound = errors.New("key not found in cache")

// Cache is the cache contract used by the application.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Increment(ctx context.Context, key string) (int64, error)
	Close() error
}

// GetJSON retrieves and decodes a JSON value from c.
func GetJSON(ctx context.Context, c Cache, key string, dest interface{}) error {
	val, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(val), dest)
}

// SetJSON stores a JSON-encoded value in c.
func SetJSON(ctx context.Context, c Cache, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, expiration)
}

// Noop is used when Redis is disabled: every read misses and writes vanish.
type Noop struct{}

func (Noop) Get(context.Context, string) (string, error) { return "", ErrNotFound }

func (Noop) Set(context.Context, string, interface{}, time.Duration) error { return nil }

func (Noop) Delete(context.Context, ...string) error { return nil }

func (Noop) Increment(context.Context, string) (int64, error) { return 0, nil }

func (Noop) Close() error { return nil }
