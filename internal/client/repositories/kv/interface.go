package kv

import (
	"context"
)

// Store is a durable string-keyed, string-valued store.
type Store interface {
	// Get returns the value stored under key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	Close() error
}

// Batcher is implemented by stores that can write several keys in one
// transaction.
type Batcher interface {
	SetMany(ctx context.Context, values map[string]string) error
}

// SetMany writes every entry of values. It is atomic only when s implements
// Batcher; otherwise keys are written one by one and a failure may leave
// earlier keys written.
func SetMany(ctx context.Context, s Store, values map[string]string) error {
	if b, ok := s.(Batcher); ok {
		return b.SetMany(ctx, values)
	}
	for k, v := range values {
		if err := s.Set(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}

// RemoveMany deletes every key, stopping at the first failure.
func RemoveMany(ctx context.Context, s Store, keys ...string) error {
	for _, k := range keys {
		if err := s.Remove(ctx, k); err != nil {
			return err
		}
	}
	return nil
}
