// Package audio synthesizes and plays the clock's chimes and alarm.
package audio

import "time"

// Cue identifies a clock sound.
type Cue string

const (
	CueOneMinute     Cue = "one_minute"
	CueThirtySeconds Cue = "thirty_seconds"
	CueAlarm         Cue = "alarm"
)

// Pitch is the frequency shared by every tone, in hertz.
const Pitch = 880.0

// Shape describes a burst of identical tones.
type Shape struct {
	Tones        int
	ToneDuration time.Duration
	Spacing      time.Duration
	Volume       float64
}

var shapes = map[Cue]Shape{
	CueOneMinute: {
		Tones:        2,
		ToneDuration: 150 * time.Millisecond,
		Spacing:      250 * time.Millisecond,
		Volume:       0.25,
	},
	CueThirtySeconds: {
		Tones:        3,
		ToneDuration: 150 * time.Millisecond,
		Spacing:      200 * time.Millisecond,
		Volume:       0.25,
	},
	CueAlarm: {
		Tones:        5,
		ToneDuration: 200 * time.Millisecond,
		Spacing:      300 * time.Millisecond,
		Volume:       0.30,
	},
}

// ShapeOf returns the burst shape of cue.
func ShapeOf(cue Cue) (Shape, bool) {
	shape, ok := shapes[cue]
	return shape, ok
}

// Length returns the duration from the first tone onset to the end of the last tone.
func (shape Shape) Length() time.Duration {
	if shape.Tones <= 0 {
		return 0
	}
	return time.Duration(shape.Tones-1)*shape.Spacing + shape.ToneDuration
}
