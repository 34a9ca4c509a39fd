package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"wartally/internal/ui/preferences"
)

const settingsFileName = "settings.yaml"

// Pointer fields keep keys missing from older files at their defaults.
type yamlSettings struct {
	SoundEnabled   *bool `yaml:"sound_enabled"`
	HapticEnabled  *bool `yaml:"haptic_enabled"`
	AlarmOverlay   *bool `yaml:"alarm_overlay"`
	AlwaysShowTray *bool `yaml:"always_show_tray"`
}

// LoadSettings reads user preferences from settings.yaml inside dir.
// If the file does not exist, default settings are returned.
func LoadSettings(dir string) (preferences.Settings, error) {
	settings := preferences.DefaultSettings()

	rawData, err := os.ReadFile(filepath.Join(dir, settingsFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes user preferences to settings.yaml inside dir.
func SaveSettings(dir string, settings preferences.Settings) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	fileData := yamlSettings{
		SoundEnabled:   &settings.SoundEnabled,
		HapticEnabled:  &settings.HapticEnabled,
		AlarmOverlay:   &settings.AlarmOverlay,
		AlwaysShowTray: &settings.AlwaysShowTray,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, settingsFileName), serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	if fileData.SoundEnabled != nil {
		settings.SoundEnabled = *fileData.SoundEnabled
	}
	if fileData.HapticEnabled != nil {
		settings.HapticEnabled = *fileData.HapticEnabled
	}
	if fileData.AlarmOverlay != nil {
		settings.AlarmOverlay = *fileData.AlarmOverlay
	}
	if fileData.AlwaysShowTray != nil {
		settings.AlwaysShowTray = *fileData.AlwaysShowTray
	}
}
