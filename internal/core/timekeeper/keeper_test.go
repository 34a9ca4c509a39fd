package timekeeper

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"wartally/internal/audio"
	"wartally/internal/core/countdown"
	"wartally/internal/core/counters"
	"wartally/internal/core/model"
	"wartally/internal/platform"
)

type recordingPlayer struct {
	played chan audio.Cue
}

func (player *recordingPlayer) Play(cue audio.Cue) {
	player.played <- cue
}

type recordingSaver struct {
	mu    sync.Mutex
	saves int
	last  model.Snapshot
}

func (saver *recordingSaver) Save(_ context.Context, snapshot model.Snapshot) {
	saver.mu.Lock()
	defer saver.mu.Unlock()
	saver.saves++
	saver.last = snapshot
}

func (saver *recordingSaver) state() (int, model.Snapshot) {
	saver.mu.Lock()
	defer saver.mu.Unlock()
	return saver.saves, saver.last
}

type recordingVibrator struct {
	mu       sync.Mutex
	patterns int
	err      error
}

func (vibrator *recordingVibrator) Vibrate([]time.Duration) error {
	vibrator.mu.Lock()
	defer vibrator.mu.Unlock()
	vibrator.patterns++
	return vibrator.err
}

func (vibrator *recordingVibrator) count() int {
	vibrator.mu.Lock()
	defer vibrator.mu.Unlock()
	return vibrator.patterns
}

type harness struct {
	keeper   *Keeper
	clock    *clockwork.FakeClock
	player   *recordingPlayer
	saver    *recordingSaver
	vibrator *recordingVibrator
	events   <-chan Event
}

func newHarness(t *testing.T, snapshot model.Snapshot) *harness {
	t.Helper()
	h := &harness{
		clock:    clockwork.NewFakeClock(),
		player:   &recordingPlayer{played: make(chan audio.Cue, 64)},
		saver:    &recordingSaver{},
		vibrator: &recordingVibrator{},
	}
	h.keeper = New(snapshot, Config{
		Clock:    h.clock,
		Player:   h.player,
		Vibrator: h.vibrator,
		Saver:    h.saver,
	})
	h.events = h.keeper.Subscribe(1024)
	t.Cleanup(h.keeper.Close)
	return h
}

func snapshotWithMinutes(minutes int) model.Snapshot {
	snapshot := model.DefaultSnapshot()
	snapshot.Timer = model.TimerSnapshot{Minutes: minutes, DefaultMinutes: minutes}
	return snapshot
}

// advance moves the fake clock once the scheduled task is waiting on it.
func (h *harness) advance(t *testing.T, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := h.clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("no task scheduled: %v", err)
	}
	h.clock.Advance(d)
}

// tick advances one second and returns every event up to the clock update.
func (h *harness) tick(t *testing.T) []Event {
	t.Helper()
	h.drain()
	h.advance(t, time.Second)
	var seen []Event
	for {
		event := h.next(t)
		seen = append(seen, event)
		if event.Type == EventClock {
			return seen
		}
	}
}

func (h *harness) next(t *testing.T) Event {
	t.Helper()
	select {
	case event := <-h.events:
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func (h *harness) drain() []Event {
	var seen []Event
	for {
		select {
		case event := <-h.events:
			seen = append(seen, event)
		default:
			return seen
		}
	}
}

func (h *harness) expectCue(t *testing.T, want audio.Cue) {
	t.Helper()
	select {
	case cue := <-h.player.played:
		if cue != want {
			t.Fatalf("played %q, want %q", cue, want)
		}
	case <-time.After(time.Second):
		t.Fatalf("cue %q never played", want)
	}
}

func (h *harness) expectNoCue(t *testing.T) {
	t.Helper()
	select {
	case cue := <-h.player.played:
		t.Fatalf("unexpected cue %q", cue)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestKeeper_RunsToFinishWithMilestones(t *testing.T) {
	h := newHarness(t, snapshotWithMinutes(2))
	h.keeper.Start()
	h.drain()

	var milestones []string
	finished := 0
	for i := 1; i <= 120; i++ {
		for _, event := range h.tick(t) {
			switch event.Type {
			case EventMilestone:
				milestones = append(milestones, event.Clock.Display+" "+string(event.Cue))
			case EventFinished:
				finished++
				if i != 120 {
					t.Fatalf("finished after %d ticks", i)
				}
			}
		}
	}

	want := []string{"00:59 one_minute", "00:29 thirty_seconds"}
	if len(milestones) != len(want) || milestones[0] != want[0] || milestones[1] != want[1] {
		t.Errorf("milestones = %v, want %v", milestones, want)
	}
	if finished != 1 {
		t.Errorf("finished %d times, want 1", finished)
	}

	view := h.keeper.View()
	if view.Clock.Display != "00:00" || view.Clock.Phase != countdown.PhaseFinished || !view.Clock.Alarming {
		t.Errorf("clock = %+v", view.Clock)
	}
	h.expectCue(t, audio.CueOneMinute)
	h.expectCue(t, audio.CueThirtySeconds)
	h.expectCue(t, audio.CueAlarm)
}

func TestKeeper_AlarmRepeatsUntilSilenced(t *testing.T) {
	h := newHarness(t, snapshotWithMinutes(1))
	h.keeper.Start()
	for i := 0; i < 60; i++ {
		h.tick(t)
	}
	h.expectCue(t, audio.CueOneMinute)
	h.expectCue(t, audio.CueThirtySeconds)
	h.expectCue(t, audio.CueAlarm)

	h.advance(t, 2*time.Second)
	h.expectCue(t, audio.CueAlarm)
	if got := h.vibrator.count(); got != 2 {
		t.Errorf("vibrations = %d, want 2", got)
	}

	h.keeper.Silence()
	h.clock.Advance(10 * time.Second)
	h.expectNoCue(t)

	view := h.keeper.View()
	if view.Clock.Phase != countdown.PhaseFinished || view.Clock.Alarming {
		t.Errorf("clock after silence = %+v", view.Clock)
	}

	var alarmOff bool
	for _, event := range h.drain() {
		if event.Type == EventAlarm && !event.Alarming {
			alarmOff = true
		}
	}
	if !alarmOff {
		t.Error("missing alarm stopped event")
	}
}

func TestKeeper_PauseSilencesFinishedAlarm(t *testing.T) {
	h := newHarness(t, snapshotWithMinutes(1))
	h.keeper.Start()
	for i := 0; i < 60; i++ {
		h.tick(t)
	}
	h.keeper.Pause()
	if view := h.keeper.View(); view.Clock.Alarming || view.Clock.Phase != countdown.PhaseFinished {
		t.Errorf("clock after pause = %+v", view.Clock)
	}
}

func TestKeeper_StartAfterFinishRewinds(t *testing.T) {
	h := newHarness(t, snapshotWithMinutes(1))
	h.keeper.Start()
	for i := 0; i < 60; i++ {
		h.tick(t)
	}
	h.keeper.Start()
	view := h.keeper.View()
	if view.Clock.Display != "01:00" || view.Clock.Phase != countdown.PhaseRunning || view.Clock.Alarming {
		t.Errorf("clock after restart = %+v", view.Clock)
	}

	h.tick(t)
	if got := h.keeper.View().Clock.Display; got != "00:59" {
		t.Errorf("display = %s, want 00:59", got)
	}
}

func TestKeeper_PauseStopsTicking(t *testing.T) {
	h := newHarness(t, model.DefaultSnapshot())
	h.keeper.Start()
	for i := 0; i < 5; i++ {
		h.tick(t)
	}
	h.keeper.Pause()
	h.drain()

	h.clock.Advance(5 * time.Second)
	time.Sleep(20 * time.Millisecond)
	for _, event := range h.drain() {
		if event.Type == EventClock {
			t.Fatalf("clock changed while paused: %+v", event.Clock)
		}
	}
	if got := h.keeper.View().Clock.Display; got != "02:55" {
		t.Errorf("display = %s, want 02:55", got)
	}

	h.keeper.TogglePause()
	h.tick(t)
	if got := h.keeper.View().Clock.Display; got != "02:54" {
		t.Errorf("display after resume = %s, want 02:54", got)
	}
}

func TestKeeper_IgnoresStaleTick(t *testing.T) {
	h := newHarness(t, model.DefaultSnapshot())
	h.keeper.Start()

	h.keeper.mu.Lock()
	stale := h.keeper.ticker
	h.keeper.mu.Unlock()

	h.keeper.Pause()
	h.keeper.Start()
	h.keeper.onTick(stale)

	if got := h.keeper.View().Clock.Display; got != "03:00" {
		t.Errorf("stale tick advanced the clock to %s", got)
	}
}

func TestKeeper_ConfigureClampsAndRewindsWhenStopped(t *testing.T) {
	h := newHarness(t, model.DefaultSnapshot())

	h.keeper.Configure(90)
	view := h.keeper.View()
	if view.Clock.Display != "60:00" || view.Clock.DefaultMinutes != 60 {
		t.Errorf("clock = %+v", view.Clock)
	}

	h.keeper.Start()
	h.tick(t)
	h.keeper.Configure(5)
	view = h.keeper.View()
	if view.Clock.Display != "59:59" || view.Clock.DefaultMinutes != 5 {
		t.Errorf("configure while running changed position: %+v", view.Clock)
	}

	h.keeper.Reset()
	if got := h.keeper.View().Clock.Display; got != "05:00" {
		t.Errorf("display after reset = %s, want 05:00", got)
	}
	_, saved := h.saver.state()
	if saved.Timer != (model.TimerSnapshot{Minutes: 5, DefaultMinutes: 5}) {
		t.Errorf("saved timer = %+v", saved.Timer)
	}
}

func TestKeeper_SetDurationKeepsPausedPositionWhenUnchanged(t *testing.T) {
	h := newHarness(t, model.DefaultSnapshot())

	h.keeper.Start()
	for i := 0; i < 5; i++ {
		h.tick(t)
	}
	h.keeper.Pause()
	h.drain()

	if h.keeper.SetDuration(3) {
		t.Error("same duration should not reconfigure the clock")
	}
	view := h.keeper.View()
	if view.Clock.Phase != countdown.PhasePaused || view.Clock.Display != "02:55" {
		t.Errorf("clock after saving the same duration = %+v, want paused at 02:55", view.Clock)
	}
	select {
	case event := <-h.events:
		t.Errorf("unexpected event %s", event.Type)
	default:
	}

	if !h.keeper.SetDuration(4) {
		t.Error("new duration should reconfigure the clock")
	}
	if got := h.keeper.View().Clock.Display; got != "04:00" {
		t.Errorf("display after new duration = %s, want 04:00", got)
	}
}

func TestKeeper_RestoresStoppedClock(t *testing.T) {
	snapshot := model.DefaultSnapshot()
	snapshot.Timer = model.TimerSnapshot{Minutes: 1, Seconds: 30, DefaultMinutes: 3}
	snapshot.Visibility["custom-9"] = false

	h := newHarness(t, snapshot)
	view := h.keeper.View()
	if view.Clock.Phase != countdown.PhasePaused || view.Clock.Display != "01:30" {
		t.Errorf("restored clock = %+v", view.Clock)
	}
	if _, ok := view.Visibility["custom-9"]; ok {
		t.Error("stale visibility key survived restore")
	}
}

func TestKeeper_CountersPersistAndNotify(t *testing.T) {
	h := newHarness(t, model.DefaultSnapshot())

	for i := 0; i < 12; i++ {
		h.keeper.Adjust(model.CounterCannon, -1)
	}
	counter, ok := h.keeper.Adjust(model.CounterCannon, -1)
	if !ok || counter.Value != 0 {
		t.Errorf("cannon = %+v, want 0", counter)
	}
	if _, ok := h.keeper.Adjust("nonexistent", 1); ok {
		t.Error("adjusting an unknown counter should fail")
	}

	counter = h.keeper.SetCommandPoints("3")
	if counter.Style() != model.StyleLow {
		t.Errorf("command style = %q, want low", counter.Style())
	}

	_, saved := h.saver.state()
	if saved.CannonPoints != 0 || saved.CommandPoints != 3 {
		t.Errorf("saved = %+v", saved)
	}

	h.keeper.ResetAll()
	_, saved = h.saver.state()
	if saved.CannonPoints != model.DefaultCannonPoints || saved.CommandPoints != model.DefaultCommandPoints {
		t.Errorf("saved after reset all = %+v", saved)
	}

	var counterEvents int
	for _, event := range h.drain() {
		if event.Type == EventCounter {
			counterEvents++
		}
	}
	if counterEvents != 13+1+3 {
		t.Errorf("counter events = %d, want 17", counterEvents)
	}
}

func TestKeeper_CustomCounters(t *testing.T) {
	h := newHarness(t, model.DefaultSnapshot())

	savesBefore, _ := h.saver.state()
	if _, err := h.keeper.AddCustom("   ", "5"); !errors.Is(err, counters.ErrEmptyName) {
		t.Fatalf("err = %v, want ErrEmptyName", err)
	}
	if saves, snapshot := h.saver.state(); saves != savesBefore || snapshot.NextCustomID != 0 {
		t.Errorf("rejected add touched state: saves=%d snapshot=%+v", saves, snapshot)
	}

	first, err := h.keeper.AddCustom("Wounds", "-3")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if first.Value != 0 || first.Default != 0 {
		t.Errorf("first = %+v", first)
	}
	if !h.keeper.View().Visible(first.Section) {
		t.Error("new counter should be visible")
	}

	if visible := h.keeper.ToggleVisibility(first.Section); visible {
		t.Error("toggle should hide the counter")
	}
	if !h.keeper.RemoveCustom(first.CustomID) {
		t.Fatal("remove failed")
	}
	if h.keeper.RemoveCustom(first.CustomID) {
		t.Error("second remove should fail")
	}

	_, saved := h.saver.state()
	if _, ok := saved.Visibility[first.Section]; ok {
		t.Error("visibility key survived removal")
	}

	second, err := h.keeper.AddCustom("Faith", "oops")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if second.CustomID <= first.CustomID {
		t.Errorf("id %d not greater than %d", second.CustomID, first.CustomID)
	}
	if second.Default != model.DefaultCustomValue {
		t.Errorf("default = %d, want %d", second.Default, model.DefaultCustomValue)
	}
}

func TestKeeper_VisibilityIgnoresUnknownSections(t *testing.T) {
	h := newHarness(t, model.DefaultSnapshot())
	h.keeper.SetVisibility("custom-42", false)
	if _, ok := h.keeper.Snapshot().Visibility["custom-42"]; ok {
		t.Error("unknown section stored")
	}

	h.keeper.SetVisibility(model.SectionLibrarian, false)
	if h.keeper.View().Visible(model.SectionLibrarian) {
		t.Error("librarian should be hidden")
	}
}

func TestKeeper_HapticDisabledAndUnsupported(t *testing.T) {
	h := newHarness(t, snapshotWithMinutes(1))
	h.vibrator.err = platform.ErrHapticUnsupported
	h.keeper.SetHapticEnabled(false)
	h.keeper.Start()
	for i := 0; i < 60; i++ {
		h.tick(t)
	}
	if got := h.vibrator.count(); got != 0 {
		t.Errorf("vibrated %d times while disabled", got)
	}

	h.keeper.SetHapticEnabled(true)
	h.advance(t, 2*time.Second)
	h.expectCue(t, audio.CueOneMinute)
	h.expectCue(t, audio.CueThirtySeconds)
	h.expectCue(t, audio.CueAlarm)
	h.expectCue(t, audio.CueAlarm)
	if got := h.vibrator.count(); got != 1 {
		t.Errorf("vibrations = %d, want 1", got)
	}
}

func TestKeeper_CloseClosesSubscribers(t *testing.T) {
	h := newHarness(t, model.DefaultSnapshot())
	h.keeper.Start()
	h.keeper.Close()
	h.keeper.Close()

	for range h.events {
	}
	if _, open := <-h.keeper.Subscribe(1); open {
		t.Error("subscribe after close should return a closed channel")
	}

	h.clock.Advance(5 * time.Second)
	if got := h.keeper.View().Clock.Display; got != "03:00" {
		t.Errorf("clock advanced after close: %s", got)
	}
}
