package storage

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"wartally/internal/core/model"
)

// Persister saves and restores the session snapshot under a single key.
// Storage failures never reach the caller; the session keeps running in memory.
type Persister struct {
	backend Backend
	key     string
}

// NewPersister binds backend to key. An empty key falls back to DefaultStateKey.
func NewPersister(backend Backend, key string) *Persister {
	if key == "" {
		key = DefaultStateKey
	}
	return &Persister{backend: backend, key: key}
}

// Key returns the storage key in use.
func (persister *Persister) Key() string {
	return persister.key
}

// Save writes snapshot. Errors are logged.
func (persister *Persister) Save(ctx context.Context, snapshot model.Snapshot) {
	data, err := EncodeSnapshot(snapshot)
	if err != nil {
		log.Error().Err(err).Str("key", persister.key).Msg("Failed to encode snapshot")
		return
	}
	if err := persister.backend.Write(ctx, persister.key, data); err != nil {
		log.Warn().Err(err).Str("key", persister.key).Msg("Failed to save snapshot")
	}
}

// Load returns the stored snapshot, or the defaults when nothing usable is stored.
func (persister *Persister) Load(ctx context.Context) model.Snapshot {
	data, err := persister.backend.Read(ctx, persister.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Warn().Err(err).Str("key", persister.key).Msg("Failed to read snapshot, using defaults")
		}
		return model.DefaultSnapshot()
	}

	snapshot, err := DecodeSnapshot(data)
	if err != nil {
		log.Warn().Err(err).Str("key", persister.key).Msg("Discarding malformed snapshot")
		return model.DefaultSnapshot()
	}
	return snapshot
}
