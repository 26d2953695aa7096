package synth

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"go-pianoroll/audio"
	"go-pianoroll/debug"
)

const DefaultSampleRate = 44100

// Device latency. The mixer clock runs ahead of what is audible by roughly
// this much, which shifts everything equally.
const bufferSize = 40 * time.Millisecond

// Synth is an audio.Engine playing a Mixer through the system audio device.
// The device is opened on the first Resume.
type Synth struct {
	mixer *Mixer

	mu     sync.Mutex
	ctx    *oto.Context
	player *oto.Player
}

var _ audio.Engine = (*Synth)(nil)
var _ audio.Notifier = (*Synth)(nil)

// New creates a synth rendering at sampleRate (DefaultSampleRate if <= 0)
func New(sampleRate int) *Synth {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Synth{mixer: NewMixer(sampleRate)}
}

// Resume opens the audio device once and starts pulling from the mixer.
// Only one oto context may exist per process.
func (s *Synth) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.player != nil {
		return nil
	}
	if s.ctx == nil {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   s.mixer.SampleRate(),
			ChannelCount: channels,
			Format:       oto.FormatFloat32LE,
			BufferSize:   bufferSize,
		})
		if err != nil {
			return fmt.Errorf("cannot create oto context: %w", err)
		}
		<-ready
		s.ctx = ctx
	}
	s.player = s.ctx.NewPlayer(s.mixer)
	s.player.Play()
	debug.Log("synth", "device open rate=%d", s.mixer.SampleRate())
	return nil
}

func (s *Synth) Now() float64 {
	return s.mixer.Now()
}

func (s *Synth) ScheduleTone(freqHz, gain, startAt, duration float64) (audio.Voice, error) {
	if duration <= 0 {
		return audio.NoVoice, fmt.Errorf("synth: duration %v", duration)
	}
	return s.mixer.Schedule(freqHz, gain, startAt, duration), nil
}

func (s *Synth) CancelVoice(v audio.Voice) {
	s.mixer.Cancel(v)
}

func (s *Synth) Ended() <-chan audio.Voice {
	return s.mixer.Ended()
}

// Close stops the player. The oto context cannot be closed and lives until
// the process exits.
func (s *Synth) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player == nil {
		return nil
	}
	err := s.player.Close()
	s.player = nil
	if err != nil {
		return fmt.Errorf("error closing player: %w", err)
	}
	return nil
}
