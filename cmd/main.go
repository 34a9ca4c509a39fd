package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"wartally/internal/audio"
	"wartally/internal/config"
	"wartally/internal/core/countdown"
	"wartally/internal/core/model"
	"wartally/internal/core/timekeeper"
	"wartally/internal/platform"
	"wartally/internal/storage"
	"wartally/internal/ui/board"
	"wartally/internal/ui/overlay"
	"wartally/internal/ui/preferences"
	"wartally/internal/ui/tray"
)

const (
	appName = "WarTally"
	appID   = "com.wartally.app"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	setupLogging(cfg)

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir, err = platform.NewService().AppDir(appName)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to resolve data directory")
		}
	}

	guard, err := platform.AcquireSingleInstance(appName, nil)
	if errors.Is(err, platform.ErrAlreadyRunning) {
		log.Info().Msg("WarTally is already running, raised the existing board")
		return
	}
	if err != nil {
		log.Warn().Err(err).Msg("single instance lock unavailable")
	}
	defer func() {
		_ = guard.Release()
	}()

	fyneApp := app.NewWithID(appID)

	backend := openBackend(cfg, dataDir, fyneApp)
	defer func() {
		if err := backend.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close storage")
		}
	}()
	persister := storage.NewPersister(backend, cfg.StateKey)
	snapshot := persister.Load(context.Background())

	settings, err := storage.LoadSettings(dataDir)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load settings, using defaults")
	}

	player := audio.NewPlayer(audio.NewEbitenOutput(cfg.SampleRate), cfg.SampleRate)
	player.SetEnabled(settings.SoundEnabled)

	keeper := timekeeper.New(snapshot, timekeeper.Config{
		Player:   player,
		Vibrator: platform.NewVibrator(),
		Saver:    persister,
	})
	keeper.SetHapticEnabled(settings.HapticEnabled)

	log.Info().
		Str("data_dir", dataDir).
		Str("storage", cfg.Storage).
		Str("key", persister.Key()).
		Msg("session restored")

	boardWindow := board.New(fyneApp, keeper, keeper.View())
	overlayWindow := overlay.New(fyneApp, overlay.DefaultConfig())
	overlayWindow.SetOnSilence(keeper.Silence)
	overlayWindow.SetOnReset(keeper.Reset)

	prefsWindow := preferences.New(fyneApp, settings, keeper.View().Clock.DefaultMinutes, func(updated preferences.Settings, minutes int) {
		settings = updated
		player.SetEnabled(settings.SoundEnabled)
		keeper.SetHapticEnabled(settings.HapticEnabled)
		if keeper.SetDuration(minutes) {
			log.Info().Int("minutes", minutes).Msg("round length changed")
		}
		if err := storage.SaveSettings(dataDir, settings); err != nil {
			log.Warn().Err(err).Msg("failed to save settings")
		}
	})

	quit := func() {
		keeper.Close()
		fyneApp.Quit()
	}

	var trayManager *tray.Manager
	if desktopApp, ok := fyneApp.(desktop.App); ok {
		trayManager = tray.New(desktopApp, traySections(), tray.Callbacks{
			OnTogglePause:   keeper.TogglePause,
			OnReset:         keeper.Reset,
			OnSilence:       keeper.Silence,
			OnResetCounters: keeper.ResetAll,
			OnToggleSection: func(key string) {
				keeper.ToggleVisibility(key)
			},
			OnShowBoard:   boardWindow.Show,
			OnPreferences: prefsWindow.Show,
			OnQuit:        quit,
		})
		view := keeper.View()
		trayManager.SetClock(view.Clock.Display, view.Clock.Phase == countdown.PhaseRunning)
		for _, section := range model.FixedSections() {
			trayManager.SetSectionVisible(section, view.Visible(section))
		}
	} else {
		log.Info().Msg("system tray unsupported on this platform")
	}

	boardWindow.Window().SetMainMenu(fyne.NewMainMenu(fyne.NewMenu("WarTally",
		fyne.NewMenuItem("Preferences", prefsWindow.Show),
	)))
	boardWindow.Window().SetCloseIntercept(func() {
		if settings.AlwaysShowTray && trayManager != nil {
			boardWindow.Window().Hide()
			return
		}
		quit()
	})

	guard.SetOnRaise(func() {
		fyne.Do(boardWindow.Show)
	})

	events := keeper.Subscribe(64)
	go func() {
		for event := range events {
			fyne.Do(func() {
				boardWindow.Apply(event)
				handleEvent(event, settings, overlayWindow, trayManager)
			})
		}
	}()

	boardWindow.Show()
	fyneApp.Run()
	keeper.Close()
}

func setupLogging(cfg config.Config) {
	if cfg.LogJSON {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	zerolog.SetGlobalLevel(cfg.Level())

	session := uuid.NewString()[:8]
	log.Logger = log.With().Str("session", session).Logger()
}

// openBackend opens the configured store, falling back to plain files when it cannot.
func openBackend(cfg config.Config, dataDir string, fyneApp fyne.App) storage.Backend {
	switch cfg.Storage {
	case config.StorageSQLite:
		backend, err := storage.OpenSQLite(filepath.Join(dataDir, "wartally.db"))
		if err == nil {
			return backend
		}
		log.Warn().Err(err).Msg("failed to open sqlite storage, falling back to files")
	case config.StoragePreferences:
		return storage.NewPreferencesBackend(fyneApp.Preferences())
	}
	return storage.NewFileBackend(dataDir)
}

func traySections() []tray.Section {
	fixed := model.FixedCounters()
	sections := make([]tray.Section, 0, len(fixed))
	for _, counter := range fixed {
		sections = append(sections, tray.Section{Key: counter.Section, Label: counter.Name})
	}
	return sections
}

func handleEvent(event timekeeper.Event, settings preferences.Settings, overlayWindow *overlay.Window, trayManager *tray.Manager) {
	switch event.Type {
	case timekeeper.EventFinished:
		if settings.AlarmOverlay {
			overlayWindow.Show(event.Clock.Display)
		}
	case timekeeper.EventAlarm:
		overlayWindow.SetAlarming(event.Alarming)
	case timekeeper.EventClock:
		if event.Clock.Phase != countdown.PhaseFinished && overlayWindow.Visible() {
			overlayWindow.Hide()
		}
	}

	if trayManager == nil {
		return
	}
	trayManager.SetClock(event.Clock.Display, event.Clock.Phase == countdown.PhaseRunning)
	trayManager.SetAlarming(event.Clock.Alarming)
	if event.Type == timekeeper.EventVisibility {
		trayManager.SetSectionVisible(event.Section, event.Visible)
	}
}
