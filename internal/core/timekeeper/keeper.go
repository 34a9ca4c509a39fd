// Package timekeeper runs the game session: it owns the clock, counters and
// visibility, schedules ticks and the alarm, persists every change and
// publishes events to the presentation layer.
package timekeeper

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"wartally/internal/audio"
	"wartally/internal/core/countdown"
	"wartally/internal/core/counters"
	"wartally/internal/core/model"
	"wartally/internal/core/scheduler"
	"wartally/internal/core/visibility"
	"wartally/internal/platform"
)

const (
	DefaultTickInterval  = time.Second
	DefaultAlarmInterval = 2 * time.Second
)

// CuePlayer sounds audio cues without reporting failures.
type CuePlayer interface {
	Play(cue audio.Cue)
}

// SnapshotSaver persists session snapshots without reporting failures.
type SnapshotSaver interface {
	Save(ctx context.Context, snapshot model.Snapshot)
}

// Config contains runtime options for Keeper. Zero values select defaults.
type Config struct {
	Clock         clockwork.Clock
	Player        CuePlayer
	Vibrator      platform.Vibrator
	Saver         SnapshotSaver
	TickInterval  time.Duration
	AlarmInterval time.Duration
}

// Keeper serializes every command and scheduled callback behind one mutex.
type Keeper struct {
	mu         sync.Mutex
	clock      countdown.Clock
	counters   *counters.Store
	visibility *visibility.Registry

	scheduler     *scheduler.Scheduler
	tickInterval  time.Duration
	alarmInterval time.Duration
	ticker        *scheduler.Task
	alarm         *scheduler.Task

	player         CuePlayer
	vibrator       platform.Vibrator
	saver          SnapshotSaver
	hapticEnabled  bool
	hapticReported bool
	events         []chan Event
	closed         bool
}

// New restores a Keeper from snapshot. The clock comes back stopped.
func New(snapshot model.Snapshot, config Config) *Keeper {
	if config.TickInterval <= 0 {
		config.TickInterval = DefaultTickInterval
	}
	if config.AlarmInterval <= 0 {
		config.AlarmInterval = DefaultAlarmInterval
	}

	store := counters.FromSnapshot(snapshot)
	registry := visibility.New(snapshot.Visibility)
	restored := model.Snapshot{Visibility: registry.Map()}
	store.Fill(&restored)
	registry.Prune(restored.KnownSections())

	return &Keeper{
		clock:         countdown.Restore(snapshot.Timer),
		counters:      store,
		visibility:    registry,
		scheduler:     scheduler.New(config.Clock),
		tickInterval:  config.TickInterval,
		alarmInterval: config.AlarmInterval,
		player:        config.Player,
		vibrator:      config.Vibrator,
		saver:         config.Saver,
		hapticEnabled: true,
	}
}

// Subscribe registers a new observer channel.
func (keeper *Keeper) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	keeper.mu.Lock()
	if keeper.closed {
		close(ch)
	} else {
		keeper.events = append(keeper.events, ch)
	}
	keeper.mu.Unlock()
	return ch
}

// View returns the current state.
func (keeper *Keeper) View() View {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return View{
		Clock:      newClockView(keeper.clock),
		Counters:   keeper.counters.Counters(),
		Visibility: keeper.visibility.Map(),
	}
}

// Snapshot returns the durable state.
func (keeper *Keeper) Snapshot() model.Snapshot {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.snapshotLocked()
}

// SetHapticEnabled turns the alarm vibration on or off.
func (keeper *Keeper) SetHapticEnabled(enabled bool) {
	keeper.mu.Lock()
	keeper.hapticEnabled = enabled
	keeper.mu.Unlock()
}

// Close cancels scheduled work and closes observers.
func (keeper *Keeper) Close() {
	keeper.mu.Lock()
	if keeper.closed {
		keeper.mu.Unlock()
		return
	}
	keeper.closed = true
	keeper.ticker.Cancel()
	keeper.alarm.Cancel()
	keeper.ticker = nil
	keeper.alarm = nil
	events := keeper.events
	keeper.events = nil
	keeper.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

// Start runs the clock.
func (keeper *Keeper) Start() {
	keeper.withClock(countdown.Clock.Start)
}

// Pause halts the clock, or silences the alarm once it has finished.
func (keeper *Keeper) Pause() {
	keeper.withClock(countdown.Clock.Pause)
}

// TogglePause pauses a running clock and starts any other.
func (keeper *Keeper) TogglePause() {
	keeper.withClock(func(clock countdown.Clock) (countdown.Clock, []countdown.Effect) {
		if clock.Running() {
			return clock.Pause()
		}
		return clock.Start()
	})
}

// Reset rewinds the clock to its configured duration.
func (keeper *Keeper) Reset() {
	keeper.withClock(countdown.Clock.Reset)
}

// Silence stops the completion alarm.
func (keeper *Keeper) Silence() {
	keeper.withClock(countdown.Clock.Silence)
}

// Configure sets the clock duration in minutes. Out-of-range values are clamped.
func (keeper *Keeper) Configure(minutes int) {
	keeper.withClock(func(clock countdown.Clock) (countdown.Clock, []countdown.Effect) {
		return clock.Configure(minutes)
	})
}

// SetDuration configures the clock only when the clamped duration differs
// from the current default. It reports whether the clock was reconfigured.
func (keeper *Keeper) SetDuration(minutes int) bool {
	changed := false
	keeper.withClock(func(clock countdown.Clock) (countdown.Clock, []countdown.Effect) {
		if countdown.ClampMinutes(minutes) == clock.DefaultMinutes {
			return clock, nil
		}
		changed = true
		return clock.Configure(minutes)
	})
	return changed
}

// Adjust moves a counter by delta, never below zero.
func (keeper *Keeper) Adjust(ref string, delta int) (model.Counter, bool) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	counter, ok := keeper.counters.Adjust(ref, delta)
	if ok {
		keeper.counterChangedLocked(counter)
	}
	return counter, ok
}

// ResetCounter restores a counter to its default.
func (keeper *Keeper) ResetCounter(ref string) (model.Counter, bool) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	counter, ok := keeper.counters.ResetToDefault(ref)
	if ok {
		keeper.counterChangedLocked(counter)
	}
	return counter, ok
}

// ResetAll restores every counter to its default.
func (keeper *Keeper) ResetAll() {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	for _, counter := range keeper.counters.ResetAll() {
		keeper.emitLocked(keeper.eventLocked(EventCounter, func(event *Event) {
			event.Counter = counter
		}))
	}
	keeper.persistLocked()
}

// SetCommandPoints sets the command counter from free-form input.
func (keeper *Keeper) SetCommandPoints(input string) model.Counter {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	counter := keeper.counters.SetCommandPoints(input)
	keeper.counterChangedLocked(counter)
	return counter
}

// AddCustom creates a visible custom counter. defaultInput is parsed leniently.
func (keeper *Keeper) AddCustom(name, defaultInput string) (model.Counter, error) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	counter, err := keeper.counters.AddCustom(name, counters.ParseDefaultValue(defaultInput))
	if err != nil {
		return model.Counter{}, err
	}
	keeper.visibility.Set(counter.Section, true)
	keeper.countersChangedLocked()
	keeper.emitLocked(keeper.eventLocked(EventVisibility, func(event *Event) {
		event.Section = counter.Section
		event.Visible = true
	}))
	keeper.persistLocked()
	return counter, nil
}

// RemoveCustom deletes a custom counter and its visibility entry.
func (keeper *Keeper) RemoveCustom(id int) bool {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	counter, ok := keeper.counters.RemoveCustom(id)
	if !ok {
		return false
	}
	keeper.visibility.Delete(counter.Section)
	keeper.countersChangedLocked()
	keeper.persistLocked()
	return true
}

// ToggleVisibility flips a section and returns the new value.
// Unknown sections are left alone and reported as visible.
func (keeper *Keeper) ToggleVisibility(section string) bool {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if !keeper.knownSectionLocked(section) {
		return true
	}
	visible := keeper.visibility.Toggle(section)
	keeper.visibilityChangedLocked(section, visible)
	return visible
}

// SetVisibility shows or hides a section.
func (keeper *Keeper) SetVisibility(section string, visible bool) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if !keeper.knownSectionLocked(section) {
		return
	}
	if keeper.visibility.Set(section, visible) {
		keeper.visibilityChangedLocked(section, visible)
	}
}

func (keeper *Keeper) withClock(transition func(countdown.Clock) (countdown.Clock, []countdown.Effect)) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if keeper.closed {
		return
	}
	next, effects := transition(keeper.clock)
	keeper.applyLocked(next, effects)
}

func (keeper *Keeper) applyLocked(next countdown.Clock, effects []countdown.Effect) {
	keeper.clock = next
	changed := false
	for _, effect := range effects {
		switch effect {
		case countdown.EffectStartTicker:
			keeper.startTickerLocked()
		case countdown.EffectStopTicker:
			keeper.ticker.Cancel()
			keeper.ticker = nil
		case countdown.EffectStartAlarm:
			keeper.startAlarmLocked()
		case countdown.EffectStopAlarm:
			keeper.stopAlarmLocked()
		case countdown.EffectCueOneMinute:
			keeper.milestoneLocked(audio.CueOneMinute)
		case countdown.EffectCueThirtySeconds:
			keeper.milestoneLocked(audio.CueThirtySeconds)
		case countdown.EffectFinished:
			log.Info().Int("minutes", keeper.clock.DefaultMinutes).Msg("countdown finished")
			keeper.emitLocked(keeper.eventLocked(EventFinished, nil))
		case countdown.EffectChanged:
			changed = true
		}
	}
	if changed {
		keeper.emitLocked(keeper.eventLocked(EventClock, nil))
		keeper.persistLocked()
	}
}

func (keeper *Keeper) startTickerLocked() {
	keeper.ticker.Cancel()
	keeper.stopAlarmLocked()
	keeper.ticker = keeper.scheduler.Every("tick", keeper.tickInterval, keeper.onTick)
}

func (keeper *Keeper) onTick(task *scheduler.Task) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if keeper.closed {
		return
	}
	if task != keeper.ticker {
		log.Debug().Str("task", task.Name()).Msg("ignoring stale task delivery")
		return
	}
	next, effects := keeper.clock.Tick()
	keeper.applyLocked(next, effects)
}

func (keeper *Keeper) startAlarmLocked() {
	keeper.alarm.Cancel()
	keeper.alarm = keeper.scheduler.Every("alarm", keeper.alarmInterval, keeper.onAlarm)
	keeper.emitLocked(keeper.eventLocked(EventAlarm, func(event *Event) {
		event.Alarming = true
	}))
	keeper.alarmBurstLocked()
}

func (keeper *Keeper) stopAlarmLocked() {
	if keeper.alarm == nil {
		return
	}
	keeper.alarm.Cancel()
	keeper.alarm = nil
	keeper.emitLocked(keeper.eventLocked(EventAlarm, func(event *Event) {
		event.Alarming = false
	}))
}

func (keeper *Keeper) onAlarm(task *scheduler.Task) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if keeper.closed || !keeper.clock.Alarming {
		return
	}
	if task != keeper.alarm {
		log.Debug().Str("task", task.Name()).Msg("ignoring stale task delivery")
		return
	}
	keeper.alarmBurstLocked()
}

func (keeper *Keeper) alarmBurstLocked() {
	keeper.playLocked(audio.CueAlarm)
	if !keeper.hapticEnabled || keeper.vibrator == nil {
		return
	}
	err := keeper.vibrator.Vibrate(platform.AlarmPattern)
	switch {
	case err == nil:
	case errors.Is(err, platform.ErrHapticUnsupported):
		if !keeper.hapticReported {
			keeper.hapticReported = true
			log.Debug().Err(err).Msg("haptic alarm skipped")
		}
	default:
		log.Warn().Err(err).Msg("Failed to vibrate")
	}
}

func (keeper *Keeper) milestoneLocked(cue audio.Cue) {
	keeper.playLocked(cue)
	keeper.emitLocked(keeper.eventLocked(EventMilestone, func(event *Event) {
		event.Cue = cue
	}))
}

func (keeper *Keeper) playLocked(cue audio.Cue) {
	if keeper.player != nil {
		keeper.player.Play(cue)
	}
}

func (keeper *Keeper) counterChangedLocked(counter model.Counter) {
	keeper.emitLocked(keeper.eventLocked(EventCounter, func(event *Event) {
		event.Counter = counter
	}))
	keeper.persistLocked()
}

func (keeper *Keeper) countersChangedLocked() {
	keeper.emitLocked(keeper.eventLocked(EventCounters, func(event *Event) {
		event.Counters = keeper.counters.Counters()
	}))
}

func (keeper *Keeper) visibilityChangedLocked(section string, visible bool) {
	keeper.emitLocked(keeper.eventLocked(EventVisibility, func(event *Event) {
		event.Section = section
		event.Visible = visible
	}))
	keeper.persistLocked()
}

func (keeper *Keeper) knownSectionLocked(section string) bool {
	_, ok := keeper.snapshotLocked().KnownSections()[section]
	return ok
}

func (keeper *Keeper) snapshotLocked() model.Snapshot {
	snapshot := model.Snapshot{
		Timer:      keeper.clock.Snapshot(),
		Visibility: keeper.visibility.Map(),
	}
	keeper.counters.Fill(&snapshot)
	return snapshot
}

func (keeper *Keeper) persistLocked() {
	if keeper.saver == nil {
		return
	}
	keeper.saver.Save(context.Background(), keeper.snapshotLocked())
}

func (keeper *Keeper) eventLocked(eventType EventType, fill func(*Event)) Event {
	event := Event{
		Type:  eventType,
		Clock: newClockView(keeper.clock),
		At:    keeper.scheduler.Clock().Now(),
	}
	if fill != nil {
		fill(&event)
	}
	return event
}

func (keeper *Keeper) emitLocked(event Event) {
	events := append([]chan Event(nil), keeper.events...)
	for _, ch := range events {
		select {
		case ch <- event:
		default:
		}
	}
}
