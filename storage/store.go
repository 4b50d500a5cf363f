// Package storage provides the durable client storage used to keep a
// session across restarts: a flat string key/value store, the Go
// counterpart of a browser origin's local storage.
package storage

import (
	"context"
	"errors"
)

// Keys written by the session store. They are always written and removed as a pair.
const (
	KeyToken = "jwt_token"
	KeyUser  = "user"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("storage: key not found")

// Store is a durable string key/value store.
type Store interface {
	// Get returns the value for key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set creates or replaces the value for key.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}
