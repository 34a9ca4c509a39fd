package timekeeper

import (
	"time"

	"wartally/internal/audio"
	"wartally/internal/core/countdown"
	"wartally/internal/core/model"
)

// EventType defines the type of Keeper event.
type EventType string

const (
	EventClock      EventType = "clock"
	EventMilestone  EventType = "milestone"
	EventFinished   EventType = "finished"
	EventAlarm      EventType = "alarm"
	EventCounter    EventType = "counter"
	EventCounters   EventType = "counters"
	EventVisibility EventType = "visibility"
)

// ClockView is the rendered state of the countdown.
type ClockView struct {
	Display        string
	Phase          countdown.Phase
	Style          string
	Remaining      time.Duration
	DefaultMinutes int
	Alarming       bool
}

// Event represents a Keeper update for observers.
//
// Clock is filled on every event. The remaining fields depend on Type:
// Cue for milestone, Alarming for alarm, Counter for counter, Counters for
// counters, Section and Visible for visibility.
type Event struct {
	Type     EventType
	Clock    ClockView
	Cue      audio.Cue
	Alarming bool
	Counter  model.Counter
	Counters []model.Counter
	Section  string
	Visible  bool
	At       time.Time
}

// View is a full copy of the keeper state for initial rendering.
type View struct {
	Clock      ClockView
	Counters   []model.Counter
	Visibility map[string]bool
}

// Visible reports whether section is shown. Missing sections are visible.
func (view View) Visible(section string) bool {
	visible, ok := view.Visibility[section]
	return !ok || visible
}

func newClockView(clock countdown.Clock) ClockView {
	return ClockView{
		Display:        clock.Display(),
		Phase:          clock.Phase,
		Style:          clock.Style(),
		Remaining:      clock.Remaining(),
		DefaultMinutes: clock.DefaultMinutes,
		Alarming:       clock.Alarming,
	}
}
