package audio

import (
	"encoding/binary"
	"math"
	"time"
)

const (
	attackDuration = 10 * time.Millisecond
	// decayFloor is the fraction of peak volume a tone decays to by its end.
	decayFloor     = 0.01
	channels       = 2
	bytesPerSample = 2
)

// Synthesize renders shape as 16-bit little-endian stereo PCM.
func Synthesize(shape Shape, sampleRate int) []byte {
	if sampleRate <= 0 || shape.Tones <= 0 {
		return nil
	}

	frames := durationToFrames(shape.Length(), sampleRate)
	samples := make([]float64, frames)
	toneFrames := durationToFrames(shape.ToneDuration, sampleRate)

	for tone := 0; tone < shape.Tones; tone++ {
		start := durationToFrames(time.Duration(tone)*shape.Spacing, sampleRate)
		for frame := 0; frame < toneFrames && start+frame < frames; frame++ {
			elapsed := float64(frame) / float64(sampleRate)
			samples[start+frame] += Envelope(shape, elapsed) * math.Sin(2*math.Pi*Pitch*elapsed)
		}
	}

	pcm := make([]byte, frames*channels*bytesPerSample)
	for frame, sample := range samples {
		value := uint16(toInt16(sample))
		offset := frame * channels * bytesPerSample
		binary.LittleEndian.PutUint16(pcm[offset:], value)
		binary.LittleEndian.PutUint16(pcm[offset+bytesPerSample:], value)
	}
	return pcm
}

// Envelope returns the gain at elapsed seconds into a tone: a linear attack to
// the peak volume followed by an exponential decay to decayFloor of the peak.
func Envelope(shape Shape, elapsed float64) float64 {
	attack := attackDuration.Seconds()
	duration := shape.ToneDuration.Seconds()
	switch {
	case elapsed < 0 || elapsed > duration:
		return 0
	case elapsed < attack:
		return shape.Volume * elapsed / attack
	default:
		decay := duration - attack
		if decay <= 0 {
			return shape.Volume
		}
		return shape.Volume * math.Pow(decayFloor, (elapsed-attack)/decay)
	}
}

func durationToFrames(duration time.Duration, sampleRate int) int {
	scaled := int64(duration) * int64(sampleRate)
	return int((scaled + int64(time.Second) - 1) / int64(time.Second))
}

func toInt16(sample float64) int16 {
	scaled := sample * math.MaxInt16
	if scaled > math.MaxInt16 {
		return math.MaxInt16
	}
	if scaled < math.MinInt16 {
		return math.MinInt16
	}
	return int16(scaled)
}
