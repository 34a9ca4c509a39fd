package model

// Timer bounds and defaults, in minutes.
const (
	DefaultTimerMinutes = 3
	MinTimerMinutes     = 1
	MaxTimerMinutes     = 60
)

// TimerSnapshot is the durable part of the countdown clock.
type TimerSnapshot struct {
	Minutes        int
	Seconds        int
	DefaultMinutes int
}

// CustomSnapshot is the durable form of a custom counter.
type CustomSnapshot struct {
	ID           int
	Name         string
	DefaultValue int
	Value        int
}

// Snapshot is the full persisted state of a session.
type Snapshot struct {
	Timer         TimerSnapshot
	PsychicPoints int
	CannonPoints  int
	CommandPoints int
	Custom        []CustomSnapshot
	NextCustomID  int
	Visibility    map[string]bool
}

// DefaultSnapshot returns the state of a fresh install.
func DefaultSnapshot() Snapshot {
	visibility := make(map[string]bool, len(FixedSections()))
	for _, section := range FixedSections() {
		visibility[section] = true
	}
	return Snapshot{
		Timer: TimerSnapshot{
			Minutes:        DefaultTimerMinutes,
			Seconds:        0,
			DefaultMinutes: DefaultTimerMinutes,
		},
		PsychicPoints: DefaultPsychicPoints,
		CannonPoints:  DefaultCannonPoints,
		CommandPoints: DefaultCommandPoints,
		Custom:        []CustomSnapshot{},
		NextCustomID:  1,
		Visibility:    visibility,
	}
}

// KnownSections returns every visibility key valid for the snapshot.
func (snapshot Snapshot) KnownSections() map[string]struct{} {
	known := make(map[string]struct{}, len(FixedSections())+len(snapshot.Custom))
	for _, section := range FixedSections() {
		known[section] = struct{}{}
	}
	for _, custom := range snapshot.Custom {
		known[CustomRef(custom.ID)] = struct{}{}
	}
	return known
}
