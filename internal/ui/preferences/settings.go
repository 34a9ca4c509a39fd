package preferences

// Settings defines editable user preferences.
type Settings struct {
	SoundEnabled   bool
	HapticEnabled  bool
	AlarmOverlay   bool
	AlwaysShowTray bool
}

// DefaultSettings returns default settings for WarTally.
func DefaultSettings() Settings {
	return Settings{
		SoundEnabled:   true,
		HapticEnabled:  true,
		AlarmOverlay:   true,
		AlwaysShowTray: true,
	}
}
