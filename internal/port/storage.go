package port

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

const (
	KeySession = "session"
	KeyTheme   = "theme"
)

// KeyValueStore is the storage that survives a restart of the storefront.
type KeyValueStore interface {
	// Get returns the stored value or ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	Close() error
}
