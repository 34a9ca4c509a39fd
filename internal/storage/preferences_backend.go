package storage

import (
	"context"

	"fyne.io/fyne/v2"
)

// PreferencesBackend keeps snapshots in the fyne application preferences.
type PreferencesBackend struct {
	preferences fyne.Preferences
}

// NewPreferencesBackend wraps preferences, usually app.Preferences().
func NewPreferencesBackend(preferences fyne.Preferences) *PreferencesBackend {
	return &PreferencesBackend{preferences: preferences}
}

// Read returns the value stored under key.
func (backend *PreferencesBackend) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	value := backend.preferences.String(key)
	if value == "" {
		return nil, ErrNotFound
	}
	return []byte(value), nil
}

// Write stores data under key.
func (backend *PreferencesBackend) Write(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	backend.preferences.SetString(key, string(data))
	return nil
}

// Close is a no-op; fyne flushes preferences itself.
func (backend *PreferencesBackend) Close() error {
	return nil
}
