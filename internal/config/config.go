// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Storage backend names accepted in WARTALLY_STORAGE.
const (
	StorageFile        = "file"
	StorageSQLite      = "sqlite"
	StoragePreferences = "preferences"
)

// Config holds process-level settings. User-editable settings live in settings.yaml.
type Config struct {
	DataDir    string `env:"WARTALLY_DATA_DIR"`
	Storage    string `env:"WARTALLY_STORAGE"     envDefault:"file"`
	StateKey   string `env:"WARTALLY_STATE_KEY"   envDefault:"wartally-state"`
	LogLevel   string `env:"WARTALLY_LOG_LEVEL"   envDefault:"info"`
	LogJSON    bool   `env:"WARTALLY_LOG_JSON"    envDefault:"false"`
	SampleRate int    `env:"WARTALLY_SAMPLE_RATE" envDefault:"44100"`
}

// Load reads an optional .env file from the working directory and parses the environment.
func Load() (Config, error) {
	return LoadFile(".env")
}

// LoadFile reads the dotenv file at path, if present, and parses the environment.
// Variables already set in the environment win over the file.
func LoadFile(path string) (Config, error) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Level returns the zerolog level, falling back to info for unknown names.
func (cfg Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.LogLevel)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

func (cfg *Config) validate() error {
	cfg.Storage = strings.ToLower(strings.TrimSpace(cfg.Storage))
	switch cfg.Storage {
	case StorageFile, StorageSQLite, StoragePreferences:
	default:
		return fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
	if strings.TrimSpace(cfg.StateKey) == "" {
		return errors.New("state key must not be empty")
	}
	if cfg.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", cfg.SampleRate)
	}
	return nil
}
