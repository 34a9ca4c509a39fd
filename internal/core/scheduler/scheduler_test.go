package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func waitForTask(t *testing.T, clock *clockwork.FakeClock) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("task never registered: %v", err)
	}
}

func TestScheduler_EveryFiresOnEachInterval(t *testing.T) {
	clock := clockwork.NewFakeClock()
	scheduler := New(clock)

	fired := make(chan string, 4)
	task := scheduler.Every("tick", time.Second, func(task *Task) {
		fired <- task.Name()
	})
	defer task.Cancel()

	for i := 0; i < 3; i++ {
		waitForTask(t, clock)
		clock.Advance(time.Second)
		select {
		case name := <-fired:
			if name != "tick" {
				t.Errorf("got task %q, want tick", name)
			}
		case <-time.After(time.Second):
			t.Fatalf("tick %d never fired", i+1)
		}
	}
}

func TestScheduler_CancelStopsDelivery(t *testing.T) {
	clock := clockwork.NewFakeClock()
	scheduler := New(clock)

	fired := make(chan struct{}, 4)
	task := scheduler.Every("alarm", 2*time.Second, func(*Task) {
		fired <- struct{}{}
	})
	waitForTask(t, clock)

	task.Cancel()
	task.Cancel()
	clock.Advance(10 * time.Second)

	select {
	case <-fired:
		t.Fatal("cancelled task fired")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTask_CancelNil(t *testing.T) {
	var task *Task
	task.Cancel()
	if task.Name() != "" {
		t.Error("nil task should have an empty name")
	}
}
