// Package scheduler runs named, cancellable repeating tasks on an injectable clock.
package scheduler

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Scheduler creates repeating tasks.
// In production use clockwork.NewRealClock(). In tests, a FakeClock.
type Scheduler struct {
	clock clockwork.Clock
}

// Task is a handle to a running repeating task.
type Task struct {
	name   string
	ticker clockwork.Ticker
	stopCh chan struct{}
	once   sync.Once
}

// New creates a scheduler on clock. A nil clock uses the real clock.
func New(clock clockwork.Clock) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{clock: clock}
}

// Clock returns the underlying clock.
func (scheduler *Scheduler) Clock() clockwork.Clock {
	return scheduler.clock
}

// Every calls fn once per interval until the task is cancelled.
// fn receives its own handle so callers can ignore deliveries from tasks they
// have already replaced.
func (scheduler *Scheduler) Every(name string, interval time.Duration, fn func(*Task)) *Task {
	task := &Task{
		name:   name,
		ticker: scheduler.clock.NewTicker(interval),
		stopCh: make(chan struct{}),
	}

	go func() {
		for {
			select {
			case <-task.stopCh:
				return
			case <-task.ticker.Chan():
				select {
				case <-task.stopCh:
					return
				default:
				}
				fn(task)
			}
		}
	}()

	log.Debug().Str("task", name).Dur("interval", interval).Msg("scheduled repeating task")
	return task
}

// Name returns the task name.
func (task *Task) Name() string {
	if task == nil {
		return ""
	}
	return task.name
}

// Cancel stops the task. It is safe to call more than once, on a nil task, and
// from inside the task callback.
func (task *Task) Cancel() {
	if task == nil {
		return
	}
	task.once.Do(func() {
		task.ticker.Stop()
		close(task.stopCh)
		log.Debug().Str("task", task.name).Msg("cancelled repeating task")
	})
}
