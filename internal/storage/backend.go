// Package storage persists session snapshots and user settings.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound indicates that no value is stored under a key.
var ErrNotFound = errors.New("key not found")

// Backend is a durable key/value store holding raw snapshot bytes.
type Backend interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
	Close() error
}
