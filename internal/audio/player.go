package audio

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrUnavailable indicates that no audio output can be opened on this host.
var ErrUnavailable = errors.New("audio output unavailable")

// DefaultSampleRate is used when no sample rate is configured.
const DefaultSampleRate = 44100

// Output plays rendered PCM.
type Output interface {
	Play(pcm []byte) error
}

// Player renders cues once and hands them to an Output. It never reports errors.
type Player struct {
	mu          sync.Mutex
	output      Output
	sampleRate  int
	enabled     bool
	unavailable bool
	rendered    map[Cue][]byte
}

// NewPlayer creates an enabled player.
func NewPlayer(output Output, sampleRate int) *Player {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Player{
		output:     output,
		sampleRate: sampleRate,
		enabled:    true,
		rendered:   make(map[Cue][]byte),
	}
}

// SetEnabled mutes or unmutes the player.
func (player *Player) SetEnabled(enabled bool) {
	player.mu.Lock()
	player.enabled = enabled
	player.mu.Unlock()
}

// Play sounds cue. Failures are logged and dropped.
func (player *Player) Play(cue Cue) {
	player.mu.Lock()
	defer player.mu.Unlock()

	if !player.enabled || player.unavailable || player.output == nil {
		return
	}

	pcm, ok := player.rendered[cue]
	if !ok {
		shape, known := ShapeOf(cue)
		if !known {
			log.Warn().Str("cue", string(cue)).Msg("unknown audio cue")
			return
		}
		pcm = Synthesize(shape, player.sampleRate)
		player.rendered[cue] = pcm
	}

	if err := player.output.Play(pcm); err != nil {
		if errors.Is(err, ErrUnavailable) {
			player.unavailable = true
			log.Warn().Err(err).Msg("audio disabled for this session")
			return
		}
		log.Debug().Err(err).Str("cue", string(cue)).Msg("play audio cue")
	}
}
