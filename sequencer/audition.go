package sequencer

import (
	"fmt"

	"go-pianoroll/audio"
	"go-pianoroll/debug"
	"go-pianoroll/grid"
)

// Auditioner plays short previews of notes being edited. At most one
// preview voice exists; a new preview cancels the previous one.
type Auditioner struct {
	engine audio.Engine
	voice  audio.Voice // audio.NoVoice when silent
}

func NewAuditioner(engine audio.Engine) *Auditioner {
	return &Auditioner{engine: engine}
}

// Audition sounds n (already resolved against the layers) for its duration
// at the mapper's tempo
func (a *Auditioner) Audition(n Note, m grid.Mapper) error {
	a.Cancel()
	if err := a.engine.Resume(); err != nil {
		return fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
	}
	v, err := a.engine.ScheduleTone(
		audio.Frequency(n.Pitch),
		audio.Gain(n.Velocity),
		a.engine.Now(),
		m.BeatToSeconds(n.DurationBeats),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
	}
	a.voice = v
	debug.Log("audition", "pitch=%d vel=%d voice=%d", n.Pitch, n.Velocity, v)
	return nil
}

// Cancel silences the current preview, if any
func (a *Auditioner) Cancel() {
	if a.voice == audio.NoVoice {
		return
	}
	a.engine.CancelVoice(a.voice)
	a.voice = audio.NoVoice
}

// ToneEnded handles an engine notification. Only the current preview clears
// the slot; an ended-callback for a superseded preview is stale and ignored.
func (a *Auditioner) ToneEnded(v audio.Voice) bool {
	if v == audio.NoVoice || v != a.voice {
		return false
	}
	a.voice = audio.NoVoice
	return true
}

// Voice returns the sounding preview voice
func (a *Auditioner) Voice() (audio.Voice, bool) {
	return a.voice, a.voice != audio.NoVoice
}
