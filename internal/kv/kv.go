// Package kv provides the persistent string key/value primitive every cache
// component is built on. The port keeps the rest of the code ignorant of
// whether values land in SQLite on a device or in a map inside a test.
package kv

import "context"

// Store is the storage port.
type Store interface {
	// Get returns the value for key. The second result is false when the
	// key has never been written (or was deleted); that is not an error.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set overwrites the value for key.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error
}
