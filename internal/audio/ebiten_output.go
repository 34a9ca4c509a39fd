package audio

import (
	"fmt"
	"sync"

	ebitenaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// EbitenOutput plays PCM through a single ebiten audio context created on first use.
type EbitenOutput struct {
	sampleRate int
	once       sync.Once
	context    *ebitenaudio.Context
	err        error

	mu      sync.Mutex
	playing []*ebitenaudio.Player
}

// NewEbitenOutput returns an output that opens the device lazily.
func NewEbitenOutput(sampleRate int) *EbitenOutput {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &EbitenOutput{sampleRate: sampleRate}
}

// Play starts pcm without waiting for it to finish.
func (output *EbitenOutput) Play(pcm []byte) error {
	context, err := output.ensureContext()
	if err != nil {
		return err
	}

	player := context.NewPlayerFromBytes(pcm)
	player.Play()

	output.mu.Lock()
	defer output.mu.Unlock()
	// Players are retained until they finish.
	active := output.playing[:0]
	for _, existing := range output.playing {
		if existing.IsPlaying() {
			active = append(active, existing)
		} else {
			_ = existing.Close()
		}
	}
	output.playing = append(active, player)
	return nil
}

func (output *EbitenOutput) ensureContext() (*ebitenaudio.Context, error) {
	output.once.Do(func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				output.err = fmt.Errorf("%w: %v", ErrUnavailable, recovered)
			}
		}()
		if existing := ebitenaudio.CurrentContext(); existing != nil {
			output.context = existing
			return
		}
		output.context = ebitenaudio.NewContext(output.sampleRate)
	})
	if output.err != nil {
		return nil, output.err
	}
	if output.context == nil {
		return nil, ErrUnavailable
	}
	return output.context, nil
}
