// Package countdown implements the game clock as a pure state machine.
//
// Every transition takes the clock by value and returns the next clock together
// with the effects the caller must carry out (scheduling, audio cues, rendering).
// Nothing here touches timers or I/O.
package countdown

import (
	"fmt"
	"time"

	"wartally/internal/core/model"
)

const (
	oneMinuteMark     = 60
	thirtySecondsMark = 30
)

// Clock is the countdown state.
type Clock struct {
	Minutes            int
	Seconds            int
	DefaultMinutes     int
	Phase              Phase
	Alarming           bool
	OneMinuteFired     bool
	ThirtySecondsFired bool
}

// New returns an idle clock set to minutes.
func New(minutes int) Clock {
	minutes = ClampMinutes(minutes)
	return Clock{
		Minutes:        minutes,
		DefaultMinutes: minutes,
		Phase:          PhaseIdle,
	}
}

// Restore rebuilds a stopped clock from persisted values.
// The clock is idle when the remaining time equals the configured duration and
// paused otherwise.
func Restore(timer model.TimerSnapshot) Clock {
	clock := New(timer.DefaultMinutes)
	clock.Minutes = clampRange(timer.Minutes, 0, model.MaxTimerMinutes)
	clock.Seconds = clampRange(timer.Seconds, 0, 59)
	if clock.Minutes == model.MaxTimerMinutes {
		clock.Seconds = 0
	}
	if clock.total() != clock.DefaultMinutes*60 {
		clock.Phase = PhasePaused
	}
	return clock
}

// Snapshot returns the durable part of the clock.
func (clock Clock) Snapshot() model.TimerSnapshot {
	return model.TimerSnapshot{
		Minutes:        clock.Minutes,
		Seconds:        clock.Seconds,
		DefaultMinutes: clock.DefaultMinutes,
	}
}

// Running reports whether the clock advances on ticks.
func (clock Clock) Running() bool {
	return clock.Phase == PhaseRunning
}

// Remaining returns the remaining time.
func (clock Clock) Remaining() time.Duration {
	return time.Duration(clock.total()) * time.Second
}

// Display formats the remaining time as MM:SS.
func (clock Clock) Display() string {
	return fmt.Sprintf("%02d:%02d", clock.Minutes, clock.Seconds)
}

// Style returns the presentation class for the remaining time.
func (clock Clock) Style() string {
	total := clock.total()
	switch {
	case total <= thirtySecondsMark:
		return StyleDanger
	case total <= oneMinuteMark:
		return StyleWarning
	default:
		return ""
	}
}

// Configure sets the configured duration. A stopped clock is also rewound to it.
func (clock Clock) Configure(minutes int) (Clock, []Effect) {
	clock.DefaultMinutes = ClampMinutes(minutes)
	if clock.Running() {
		return clock, []Effect{EffectChanged}
	}

	effects := []Effect{EffectChanged}
	if clock.Alarming {
		clock.Alarming = false
		effects = append(effects, EffectStopAlarm)
	}
	clock = clock.rewind()
	clock.Phase = PhaseIdle
	return clock, effects
}

// Start begins advancing the clock. A finished or exhausted clock is rewound first.
func (clock Clock) Start() (Clock, []Effect) {
	if clock.Running() {
		return clock, nil
	}

	var effects []Effect
	if clock.Alarming {
		clock.Alarming = false
		effects = append(effects, EffectStopAlarm)
	}
	if clock.Phase == PhaseFinished || clock.total() == 0 {
		clock = clock.rewind()
	}
	clock.Phase = PhaseRunning
	return clock, append(effects, EffectStartTicker, EffectChanged)
}

// Pause halts a running clock, or silences the alarm of a finished one.
func (clock Clock) Pause() (Clock, []Effect) {
	switch {
	case clock.Running():
		clock.Phase = PhasePaused
		return clock, []Effect{EffectStopTicker, EffectChanged}
	case clock.Alarming:
		return clock.Silence()
	default:
		return clock, nil
	}
}

// Silence stops a repeating completion alarm.
func (clock Clock) Silence() (Clock, []Effect) {
	if !clock.Alarming {
		return clock, nil
	}
	clock.Alarming = false
	return clock, []Effect{EffectStopAlarm, EffectChanged}
}

// Reset stops the clock and rewinds it to the configured duration.
func (clock Clock) Reset() (Clock, []Effect) {
	clock.Alarming = false
	clock = clock.rewind()
	clock.Phase = PhaseIdle
	return clock, []Effect{EffectStopTicker, EffectStopAlarm, EffectChanged}
}

// Tick advances a running clock by one second.
// Milestones are evaluated on the remaining time before the decrement.
func (clock Clock) Tick() (Clock, []Effect) {
	if !clock.Running() {
		return clock, nil
	}

	var effects []Effect
	total := clock.total()
	if total == oneMinuteMark && !clock.OneMinuteFired {
		clock.OneMinuteFired = true
		effects = append(effects, EffectCueOneMinute)
	} else if total == thirtySecondsMark && !clock.ThirtySecondsFired {
		clock.ThirtySecondsFired = true
		effects = append(effects, EffectCueThirtySeconds)
	}

	switch {
	case clock.Seconds > 0:
		clock.Seconds--
	case clock.Minutes > 0:
		clock.Minutes--
		clock.Seconds = 59
	}

	if clock.total() == 0 {
		clock.Phase = PhaseFinished
		clock.Alarming = true
		effects = append(effects, EffectStopTicker, EffectFinished, EffectStartAlarm)
	}
	return clock, append(effects, EffectChanged)
}

// ClampMinutes bounds a configured duration to the supported range.
func ClampMinutes(minutes int) int {
	return clampRange(minutes, model.MinTimerMinutes, model.MaxTimerMinutes)
}

func (clock Clock) rewind() Clock {
	clock.Minutes = clock.DefaultMinutes
	clock.Seconds = 0
	clock.OneMinuteFired = false
	clock.ThirtySecondsFired = false
	return clock
}

func (clock Clock) total() int {
	return clock.Minutes*60 + clock.Seconds
}

func clampRange(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
