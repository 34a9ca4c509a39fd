// Package counters holds the point pools tracked during a game.
package counters

import (
	"errors"
	"strconv"
	"strings"

	"wartally/internal/core/model"
)

// ErrEmptyName indicates a custom counter name that is blank after trimming.
var ErrEmptyName = errors.New("counter name is empty")

// Store owns the fixed counters and the ordered list of custom counters.
type Store struct {
	fixed  []model.Counter
	custom []model.Counter
	nextID int
}

// New returns a store with fixed counters at their defaults and no custom counters.
func New() *Store {
	return &Store{
		fixed:  model.FixedCounters(),
		nextID: 1,
	}
}

// FromSnapshot rebuilds a store from persisted values.
func FromSnapshot(snapshot model.Snapshot) *Store {
	store := New()
	store.fixed[0].Value = nonNegative(snapshot.PsychicPoints)
	store.fixed[1].Value = nonNegative(snapshot.CannonPoints)
	store.fixed[2].Value = nonNegative(snapshot.CommandPoints)

	for _, custom := range snapshot.Custom {
		store.custom = append(store.custom, model.NewCustomCounter(
			custom.ID,
			custom.Name,
			nonNegative(custom.DefaultValue),
			nonNegative(custom.Value),
		))
		if custom.ID >= store.nextID {
			store.nextID = custom.ID + 1
		}
	}
	if snapshot.NextCustomID > store.nextID {
		store.nextID = snapshot.NextCustomID
	}
	return store
}

// Fill copies the counter values into snapshot.
func (store *Store) Fill(snapshot *model.Snapshot) {
	for _, counter := range store.fixed {
		switch counter.ID {
		case model.CounterPsychic:
			snapshot.PsychicPoints = counter.Value
		case model.CounterCannon:
			snapshot.CannonPoints = counter.Value
		case model.CounterCommand:
			snapshot.CommandPoints = counter.Value
		}
	}
	snapshot.Custom = make([]model.CustomSnapshot, 0, len(store.custom))
	for _, counter := range store.custom {
		snapshot.Custom = append(snapshot.Custom, model.CustomSnapshot{
			ID:           counter.CustomID,
			Name:         counter.Name,
			DefaultValue: counter.Default,
			Value:        counter.Value,
		})
	}
	snapshot.NextCustomID = store.nextID
}

// Counters returns the fixed counters followed by the custom ones.
func (store *Store) Counters() []model.Counter {
	all := make([]model.Counter, 0, len(store.fixed)+len(store.custom))
	all = append(all, store.fixed...)
	return append(all, store.custom...)
}

// Custom returns the custom counters in creation order.
func (store *Store) Custom() []model.Counter {
	return append([]model.Counter(nil), store.custom...)
}

// Get returns the counter for ref.
func (store *Store) Get(ref string) (model.Counter, bool) {
	counter := store.find(ref)
	if counter == nil {
		return model.Counter{}, false
	}
	return *counter, true
}

// NextID returns the id the next custom counter will receive.
func (store *Store) NextID() int {
	return store.nextID
}

// Adjust moves a counter by delta, never below zero.
func (store *Store) Adjust(ref string, delta int) (model.Counter, bool) {
	counter := store.find(ref)
	if counter == nil {
		return model.Counter{}, false
	}
	counter.Value = nonNegative(counter.Value + delta)
	return *counter, true
}

// ResetToDefault restores a counter to its stored default.
func (store *Store) ResetToDefault(ref string) (model.Counter, bool) {
	counter := store.find(ref)
	if counter == nil {
		return model.Counter{}, false
	}
	counter.Value = counter.Default
	return *counter, true
}

// ResetAll restores every counter to its default.
func (store *Store) ResetAll() []model.Counter {
	for i := range store.fixed {
		store.fixed[i].Value = store.fixed[i].Default
	}
	for i := range store.custom {
		store.custom[i].Value = store.custom[i].Default
	}
	return store.Counters()
}

// SetCommandPoints sets the command counter from user input.
// Unparseable input counts as zero.
func (store *Store) SetCommandPoints(input string) model.Counter {
	value, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		value = 0
	}
	counter := store.find(model.CounterCommand)
	counter.Value = nonNegative(value)
	return *counter
}

// AddCustom appends a player-created counter.
func (store *Store) AddCustom(name string, defaultValue int) (model.Counter, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Counter{}, ErrEmptyName
	}
	defaultValue = nonNegative(defaultValue)
	counter := model.NewCustomCounter(store.nextID, name, defaultValue, defaultValue)
	store.nextID++
	store.custom = append(store.custom, counter)
	return counter, nil
}

// RemoveCustom deletes a custom counter by id.
func (store *Store) RemoveCustom(id int) (model.Counter, bool) {
	for i, counter := range store.custom {
		if counter.CustomID == id {
			store.custom = append(store.custom[:i], store.custom[i+1:]...)
			return counter, true
		}
	}
	return model.Counter{}, false
}

// ParseDefaultValue reads a custom counter default from user input.
// Negative values clamp to zero; anything unparseable yields the standard default.
func ParseDefaultValue(input string) int {
	value, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return model.DefaultCustomValue
	}
	return nonNegative(value)
}

func (store *Store) find(ref string) *model.Counter {
	for i := range store.fixed {
		if store.fixed[i].ID == ref {
			return &store.fixed[i]
		}
	}
	for i := range store.custom {
		if store.custom[i].ID == ref {
			return &store.custom[i]
		}
	}
	return nil
}

func nonNegative(value int) int {
	if value < 0 {
		return 0
	}
	return value
}
