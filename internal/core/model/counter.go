package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Fixed counter identifiers.
const (
	CounterPsychic = "psychic"
	CounterCannon  = "cannon"
	CounterCommand = "command"
)

// Visibility sections of the fixed counters.
const (
	SectionLibrarian = "librarian"
	SectionCannon    = "cannon"
	SectionCommand   = "command"
)

const (
	DefaultPsychicPoints = 20
	DefaultCannonPoints  = 10
	DefaultCommandPoints = 0
	DefaultCustomValue   = 10

	// LowThreshold is the highest positive value still styled as low.
	LowThreshold = 3

	customPrefix = "custom-"
)

// StyleLow marks a counter whose value is in (0, LowThreshold].
const StyleLow = "low"

// Counter is a tracked point pool.
type Counter struct {
	ID       string
	Name     string
	Default  int
	Value    int
	Section  string
	CustomID int
}

// Low reports whether the counter is running out but not empty.
func (counter Counter) Low() bool {
	return counter.Value > 0 && counter.Value <= LowThreshold
}

// Style returns the presentation class for the counter value.
func (counter Counter) Style() string {
	if counter.Low() {
		return StyleLow
	}
	return ""
}

// IsCustom reports whether the counter was created by the player.
func (counter Counter) IsCustom() bool {
	return counter.CustomID > 0
}

// FixedCounters returns the built-in counters at their default values.
func FixedCounters() []Counter {
	return []Counter{
		{ID: CounterPsychic, Name: "Psychic Points", Default: DefaultPsychicPoints, Value: DefaultPsychicPoints, Section: SectionLibrarian},
		{ID: CounterCannon, Name: "Cannon Points", Default: DefaultCannonPoints, Value: DefaultCannonPoints, Section: SectionCannon},
		{ID: CounterCommand, Name: "Command Points", Default: DefaultCommandPoints, Value: DefaultCommandPoints, Section: SectionCommand},
	}
}

// FixedSections lists the visibility keys of the fixed counters.
func FixedSections() []string {
	return []string{SectionLibrarian, SectionCannon, SectionCommand}
}

// CustomRef builds the counter reference and visibility key of a custom counter.
func CustomRef(id int) string {
	return customPrefix + strconv.Itoa(id)
}

// ParseCustomRef extracts the numeric id from a custom counter reference.
func ParseCustomRef(ref string) (int, bool) {
	if !strings.HasPrefix(ref, customPrefix) {
		return 0, false
	}
	id, err := strconv.Atoi(strings.TrimPrefix(ref, customPrefix))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// NewCustomCounter builds a player-created counter.
func NewCustomCounter(id int, name string, defaultValue, value int) Counter {
	ref := CustomRef(id)
	if name == "" {
		name = fmt.Sprintf("Tracker %d", id)
	}
	return Counter{
		ID:       ref,
		Name:     name,
		Default:  defaultValue,
		Value:    value,
		Section:  ref,
		CustomID: id,
	}
}
