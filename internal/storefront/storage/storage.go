// Package storage provides the durable key-value backends that persist the cart.
package storage

import (
	"context"
)

// KeyValue is a durable key-value store.
// It abstracts the underlying storage, allowing for different implementations (e.g., in-memory, file, database).
type KeyValue interface {
	// Get returns the value stored under key.
	// found is false, with a nil error, when the key has never been set.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
}
