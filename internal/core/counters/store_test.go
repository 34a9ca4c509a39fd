package counters

import (
	"errors"
	"testing"

	"wartally/internal/core/model"
)

func TestStore_AdjustNeverGoesNegative(t *testing.T) {
	store := New()
	for _, ref := range []string{model.CounterPsychic, model.CounterCannon, model.CounterCommand} {
		for i := 0; i < 30; i++ {
			store.Adjust(ref, -1)
		}
		counter, ok := store.Get(ref)
		if !ok {
			t.Fatalf("missing counter %s", ref)
		}
		if counter.Value != 0 {
			t.Errorf("%s = %d, want 0", ref, counter.Value)
		}

		counter, _ = store.Adjust(ref, -1)
		if counter.Value != 0 {
			t.Errorf("%s went below zero: %d", ref, counter.Value)
		}
	}
}

func TestStore_AdjustUnknownRef(t *testing.T) {
	store := New()
	if _, ok := store.Adjust("custom-42", 1); ok {
		t.Error("adjusting an unknown ref should report no change")
	}
}

func TestStore_ResetToDefault(t *testing.T) {
	store := New()
	store.Adjust(model.CounterPsychic, -7)
	store.Adjust(model.CounterCommand, 4)

	psychic, _ := store.ResetToDefault(model.CounterPsychic)
	if psychic.Value != model.DefaultPsychicPoints {
		t.Errorf("psychic = %d, want %d", psychic.Value, model.DefaultPsychicPoints)
	}
	command, _ := store.ResetToDefault(model.CounterCommand)
	if command.Value != model.DefaultCommandPoints {
		t.Errorf("command = %d, want %d", command.Value, model.DefaultCommandPoints)
	}

	custom, _ := store.AddCustom("Wounds", 6)
	store.Adjust(custom.ID, -4)
	reset, _ := store.ResetToDefault(custom.ID)
	if reset.Value != 6 {
		t.Errorf("custom = %d, want 6", reset.Value)
	}
}

func TestStore_SetCommandPoints(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{input: "4", want: 4},
		{input: " 7 ", want: 7},
		{input: "-3", want: 0},
		{input: "abc", want: 0},
		{input: "", want: 0},
	}
	for _, tt := range tests {
		store := New()
		store.Adjust(model.CounterCommand, 2)
		if got := store.SetCommandPoints(tt.input).Value; got != tt.want {
			t.Errorf("SetCommandPoints(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestStore_AddCustomRejectsEmptyName(t *testing.T) {
	store := New()
	before := store.NextID()

	_, err := store.AddCustom("   ", 5)
	if !errors.Is(err, ErrEmptyName) {
		t.Fatalf("err = %v, want ErrEmptyName", err)
	}
	if len(store.Custom()) != 0 {
		t.Error("rejected add mutated the custom list")
	}
	if store.NextID() != before {
		t.Errorf("next id = %d, want %d", store.NextID(), before)
	}
}

func TestStore_AddCustom(t *testing.T) {
	store := New()
	counter, err := store.AddCustom("  Vehicle Wounds ", -4)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if counter.Name != "Vehicle Wounds" {
		t.Errorf("name = %q", counter.Name)
	}
	if counter.Default != 0 || counter.Value != 0 {
		t.Errorf("default/value = %d/%d, want 0/0", counter.Default, counter.Value)
	}
	if counter.ID != "custom-1" || counter.Section != "custom-1" {
		t.Errorf("ref = %q section = %q", counter.ID, counter.Section)
	}
}

func TestStore_RemovedIDsAreNeverReused(t *testing.T) {
	store := New()
	first, _ := store.AddCustom("A", 1)
	second, _ := store.AddCustom("B", 1)

	if _, ok := store.RemoveCustom(second.CustomID); !ok {
		t.Fatal("remove reported no change")
	}
	if _, ok := store.RemoveCustom(second.CustomID); ok {
		t.Error("removing twice should be a no-op")
	}

	third, _ := store.AddCustom("C", 1)
	if third.CustomID <= second.CustomID || third.CustomID <= first.CustomID {
		t.Errorf("re-added id %d not greater than previous ids", third.CustomID)
	}

	custom := store.Custom()
	if len(custom) != 2 || custom[0].Name != "A" || custom[1].Name != "C" {
		t.Errorf("custom list = %+v", custom)
	}
}

func TestParseDefaultValue(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{input: "12", want: 12},
		{input: "0", want: 0},
		{input: "-2", want: 0},
		{input: "ten", want: model.DefaultCustomValue},
		{input: "", want: model.DefaultCustomValue},
	}
	for _, tt := range tests {
		if got := ParseDefaultValue(tt.input); got != tt.want {
			t.Errorf("ParseDefaultValue(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestStore_SnapshotRoundTrip(t *testing.T) {
	store := New()
	store.Adjust(model.CounterPsychic, -3)
	store.AddCustom("A", 4)
	removed, _ := store.AddCustom("B", 2)
	store.RemoveCustom(removed.CustomID)

	snapshot := model.DefaultSnapshot()
	store.Fill(&snapshot)
	restored := FromSnapshot(snapshot)

	if restored.NextID() != store.NextID() {
		t.Errorf("next id = %d, want %d", restored.NextID(), store.NextID())
	}
	got, want := restored.Counters(), store.Counters()
	if len(got) != len(want) {
		t.Fatalf("counters = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("counter %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestCounter_Low(t *testing.T) {
	for value, want := range map[int]bool{0: false, 1: true, 3: true, 4: false} {
		counter := model.Counter{Value: value}
		if counter.Low() != want {
			t.Errorf("Low(%d) = %v, want %v", value, counter.Low(), want)
		}
	}
}
