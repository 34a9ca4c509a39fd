package platform

import (
	"errors"
	"time"
)

// ErrHapticUnsupported indicates the host has no vibration motor.
var ErrHapticUnsupported = errors.New("haptic feedback unsupported")

// AlarmPattern alternates buzz and pause durations, starting with a buzz.
var AlarmPattern = []time.Duration{
	200 * time.Millisecond,
	100 * time.Millisecond,
	200 * time.Millisecond,
	100 * time.Millisecond,
	200 * time.Millisecond,
}

// Vibrator pulses a vibration motor.
type Vibrator interface {
	Vibrate(pattern []time.Duration) error
}

type unsupportedVibrator struct{}

// NewVibrator returns the vibrator for this host. Desktop hosts have none.
func NewVibrator() Vibrator {
	return unsupportedVibrator{}
}

func (unsupportedVibrator) Vibrate([]time.Duration) error {
	return ErrHapticUnsupported
}
