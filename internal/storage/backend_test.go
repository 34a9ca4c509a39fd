package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"fyne.io/fyne/v2/test"

	"wartally/internal/core/model"
	"wartally/internal/ui/preferences"
)

func openSQLite(t *testing.T) Backend {
	t.Helper()
	backend, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "state.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = backend.Close() })
	return backend
}

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	app := test.NewApp()
	t.Cleanup(app.Quit)
	return map[string]Backend{
		"file":        NewFileBackend(filepath.Join(t.TempDir(), "state")),
		"sqlite":      openSQLite(t),
		"preferences": NewPreferencesBackend(app.Preferences()),
	}
}

func TestBackendReadWrite(t *testing.T) {
	ctx := context.Background()
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := backend.Read(ctx, DefaultStateKey); !errors.Is(err, ErrNotFound) {
				t.Fatalf("read missing key: err = %v, want ErrNotFound", err)
			}

			if err := backend.Write(ctx, DefaultStateKey, []byte(`{"version":2}`)); err != nil {
				t.Fatalf("write: %v", err)
			}
			if err := backend.Write(ctx, DefaultStateKey, []byte(`{"version":3}`)); err != nil {
				t.Fatalf("overwrite: %v", err)
			}

			data, err := backend.Read(ctx, DefaultStateKey)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if string(data) != `{"version":3}` {
				t.Errorf("read %q", data)
			}
		})
	}
}

func TestFileBackendRejectsPathKeys(t *testing.T) {
	backend := NewFileBackend(t.TempDir())
	for _, key := range []string{"", "..", "a/b", `a\b`} {
		if err := backend.Write(context.Background(), key, []byte("{}")); err == nil {
			t.Errorf("write %q: expected error", key)
		}
	}
}

func TestFileBackendLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	backend := NewFileBackend(dir)
	if err := backend.Write(context.Background(), "session", []byte("{}")); err != nil {
		t.Fatalf("write: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "session.json" {
		t.Errorf("unexpected directory contents: %v", entries)
	}
}

func TestPersisterRoundTrip(t *testing.T) {
	ctx := context.Background()
	persister := NewPersister(NewFileBackend(t.TempDir()), "")
	if persister.Key() != DefaultStateKey {
		t.Errorf("key = %q", persister.Key())
	}

	if got := persister.Load(ctx); !reflect.DeepEqual(got, model.DefaultSnapshot()) {
		t.Errorf("load on empty store = %+v, want defaults", got)
	}

	snapshot := model.DefaultSnapshot()
	snapshot.CannonPoints = 4
	snapshot.Custom = []model.CustomSnapshot{{ID: 1, Name: "Wounds", DefaultValue: 10, Value: 8}}
	snapshot.NextCustomID = 2
	snapshot.Visibility["custom-1"] = true
	persister.Save(ctx, snapshot)

	if got := persister.Load(ctx); !reflect.DeepEqual(got, snapshot) {
		t.Errorf("load = %+v, want %+v", got, snapshot)
	}
}

func TestPersisterLoadMalformed(t *testing.T) {
	ctx := context.Background()
	backend := NewFileBackend(t.TempDir())
	if err := backend.Write(ctx, "broken", []byte("{{{{")); err != nil {
		t.Fatalf("write: %v", err)
	}
	persister := NewPersister(backend, "broken")
	if got := persister.Load(ctx); !reflect.DeepEqual(got, model.DefaultSnapshot()) {
		t.Errorf("load = %+v, want defaults", got)
	}
}

type failingBackend struct{}

func (failingBackend) Read(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func (failingBackend) Write(context.Context, string, []byte) error {
	return errors.New("quota exceeded")
}

func (failingBackend) Close() error { return nil }

func TestPersisterSwallowsBackendErrors(t *testing.T) {
	ctx := context.Background()
	persister := NewPersister(failingBackend{}, "state")
	persister.Save(ctx, model.DefaultSnapshot())
	if got := persister.Load(ctx); !reflect.DeepEqual(got, model.DefaultSnapshot()) {
		t.Errorf("load = %+v, want defaults", got)
	}
}

func TestSettingsYAML(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "WarTally")

	settings, err := LoadSettings(dir)
	if err != nil {
		t.Fatalf("load missing settings: %v", err)
	}
	if settings != preferences.DefaultSettings() {
		t.Errorf("settings = %+v, want defaults", settings)
	}

	settings.SoundEnabled = false
	settings.AlwaysShowTray = false
	if err := SaveSettings(dir, settings); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := LoadSettings(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != settings {
		t.Errorf("loaded %+v, want %+v", loaded, settings)
	}
}

func TestSettingsYAMLMissingKeysDefault(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, settingsFileName), []byte("haptic_enabled: false\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	settings, err := LoadSettings(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := preferences.DefaultSettings()
	want.HapticEnabled = false
	if settings != want {
		t.Errorf("settings = %+v, want %+v", settings, want)
	}
}

func TestSettingsYAMLInvalid(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, settingsFileName), []byte("sound_enabled: [oops"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	settings, err := LoadSettings(dir)
	if err == nil {
		t.Error("expected parse error")
	}
	if settings != preferences.DefaultSettings() {
		t.Errorf("settings = %+v, want defaults", settings)
	}
}
