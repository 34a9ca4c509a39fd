package storage

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"wartally/internal/core/model"
)

const (
	// SnapshotVersion is written into every saved snapshot. Snapshots without a
	// version field predate the visibility map and count as version 1.
	SnapshotVersion = 2

	// DefaultStateKey is the fixed key the session snapshot lives under.
	DefaultStateKey = "wartally-state"

	legacyShowLibrarian = "showLibrarian"
)

type wireTimer struct {
	Minutes        int `json:"minutes"`
	Seconds        int `json:"seconds"`
	DefaultMinutes int `json:"defaultMinutes"`
}

type wireTracker struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	DefaultValue int    `json:"defaultValue"`
	Value        int    `json:"value"`
}

type wireSnapshot struct {
	Version        int             `json:"version"`
	Timer          wireTimer       `json:"timer"`
	PsychicPoints  int             `json:"psychicPoints"`
	CannonPoints   int             `json:"cannonPoints"`
	CommandPoints  int             `json:"commandPoints"`
	CustomTrackers []wireTracker   `json:"customTrackers"`
	NextTrackerID  int             `json:"nextTrackerId"`
	Visibility     map[string]bool `json:"visibility"`
}

// EncodeSnapshot serializes snapshot in the current wire format.
func EncodeSnapshot(snapshot model.Snapshot) ([]byte, error) {
	wire := wireSnapshot{
		Version: SnapshotVersion,
		Timer: wireTimer{
			Minutes:        snapshot.Timer.Minutes,
			Seconds:        snapshot.Timer.Seconds,
			DefaultMinutes: snapshot.Timer.DefaultMinutes,
		},
		PsychicPoints:  snapshot.PsychicPoints,
		CannonPoints:   snapshot.CannonPoints,
		CommandPoints:  snapshot.CommandPoints,
		CustomTrackers: make([]wireTracker, 0, len(snapshot.Custom)),
		NextTrackerID:  snapshot.NextCustomID,
		Visibility:     snapshot.Visibility,
	}
	for _, custom := range snapshot.Custom {
		wire.CustomTrackers = append(wire.CustomTrackers, wireTracker{
			ID:           custom.ID,
			Name:         custom.Name,
			DefaultValue: custom.DefaultValue,
			Value:        custom.Value,
		})
	}
	if wire.Visibility == nil {
		wire.Visibility = map[string]bool{}
	}

	data, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses a saved snapshot of any known version.
// Input that is not a JSON object yields the defaults and an error. Otherwise each
// field is read independently and replaced by its default when missing or mistyped,
// so a partially damaged snapshot still loads.
func DecodeSnapshot(data []byte) (model.Snapshot, error) {
	defaults := model.DefaultSnapshot()

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return defaults, fmt.Errorf("parse snapshot: %w", err)
	}
	if fields == nil {
		return defaults, fmt.Errorf("parse snapshot: not an object")
	}

	snapshot := defaults
	snapshot.Timer = decodeTimer(fields["timer"])
	snapshot.PsychicPoints = nonNegativeField(fields, "psychicPoints", defaults.PsychicPoints)
	snapshot.CannonPoints = nonNegativeField(fields, "cannonPoints", defaults.CannonPoints)
	snapshot.CommandPoints = nonNegativeField(fields, "commandPoints", defaults.CommandPoints)
	snapshot.Custom = decodeTrackers(fields["customTrackers"])
	snapshot.NextCustomID = decodeNextID(fields["nextTrackerId"], snapshot.Custom)

	snapshot.Visibility = migrateVisibility(fields)
	pruneVisibility(&snapshot)
	return snapshot, nil
}

// migrateVisibility reads the visibility map, seeding it from the legacy
// showLibrarian flag when the map is absent.
func migrateVisibility(fields map[string]json.RawMessage) map[string]bool {
	visibility := make(map[string]bool)

	var entries map[string]json.RawMessage
	if raw, ok := fields["visibility"]; ok && json.Unmarshal(raw, &entries) == nil && entries != nil {
		for key, value := range entries {
			if visible, ok := boolField(value); ok {
				visibility[key] = visible
			}
		}
		return visibility
	}

	if showLibrarian, ok := boolField(fields[legacyShowLibrarian]); ok {
		visibility[model.SectionLibrarian] = showLibrarian
	}
	return visibility
}

// pruneVisibility drops keys that match no counter and fills in known ones.
func pruneVisibility(snapshot *model.Snapshot) {
	known := snapshot.KnownSections()
	for key := range snapshot.Visibility {
		if _, ok := known[key]; !ok {
			delete(snapshot.Visibility, key)
		}
	}
	for key := range known {
		if _, ok := snapshot.Visibility[key]; !ok {
			snapshot.Visibility[key] = true
		}
	}
}

func decodeTimer(raw json.RawMessage) model.TimerSnapshot {
	timer := model.DefaultSnapshot().Timer

	var fields map[string]json.RawMessage
	if json.Unmarshal(raw, &fields) != nil || fields == nil {
		return timer
	}

	if value, ok := intField(fields["defaultMinutes"]); ok {
		timer.DefaultMinutes = clamp(value, model.MinTimerMinutes, model.MaxTimerMinutes)
	}
	timer.Minutes = timer.DefaultMinutes
	timer.Seconds = 0

	if value, ok := intField(fields["minutes"]); ok {
		timer.Minutes = clamp(value, 0, model.MaxTimerMinutes)
	}
	if value, ok := intField(fields["seconds"]); ok {
		timer.Seconds = clamp(value, 0, 59)
	}
	if timer.Minutes == model.MaxTimerMinutes {
		timer.Seconds = 0
	}
	return timer
}

func decodeTrackers(raw json.RawMessage) []model.CustomSnapshot {
	trackers := []model.CustomSnapshot{}

	var entries []json.RawMessage
	if json.Unmarshal(raw, &entries) != nil {
		return trackers
	}

	seen := make(map[int]struct{}, len(entries))
	for _, entry := range entries {
		var fields map[string]json.RawMessage
		if json.Unmarshal(entry, &fields) != nil || fields == nil {
			continue
		}
		id, ok := intField(fields["id"])
		if !ok || id <= 0 {
			continue
		}
		if _, duplicate := seen[id]; duplicate {
			continue
		}
		seen[id] = struct{}{}

		var name string
		if json.Unmarshal(fields["name"], &name) != nil || strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("Tracker %d", id)
		}
		defaultValue := nonNegativeField(fields, "defaultValue", model.DefaultCustomValue)
		value := nonNegativeField(fields, "value", defaultValue)

		trackers = append(trackers, model.CustomSnapshot{
			ID:           id,
			Name:         strings.TrimSpace(name),
			DefaultValue: defaultValue,
			Value:        value,
		})
	}
	return trackers
}

// decodeNextID keeps issued ids monotonic even when the stored counter lags.
func decodeNextID(raw json.RawMessage, trackers []model.CustomSnapshot) int {
	next := 1
	if value, ok := intField(raw); ok && value > next {
		next = value
	}
	for _, tracker := range trackers {
		if tracker.ID >= next {
			next = tracker.ID + 1
		}
	}
	return next
}

func nonNegativeField(fields map[string]json.RawMessage, key string, fallback int) int {
	value, ok := intField(fields[key])
	if !ok {
		return fallback
	}
	if value < 0 {
		return 0
	}
	return value
}

// intField reads a JSON number, truncating any fraction.
func intField(raw json.RawMessage) (int, bool) {
	if isNull(raw) {
		return 0, false
	}
	var number float64
	if json.Unmarshal(raw, &number) != nil {
		return 0, false
	}
	if math.IsNaN(number) || math.Abs(number) > math.MaxInt32 {
		return 0, false
	}
	return int(math.Trunc(number)), true
}

func boolField(raw json.RawMessage) (bool, bool) {
	if isNull(raw) {
		return false, false
	}
	var value bool
	if json.Unmarshal(raw, &value) != nil {
		return false, false
	}
	return value, true
}

func isNull(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed == "" || trimmed == "null"
}

func clamp(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
