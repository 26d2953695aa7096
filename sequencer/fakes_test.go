package sequencer

import (
	"errors"

	"go-pianoroll/audio"
	"go-pianoroll/frame"
)

type tone struct {
	voice    audio.Voice
	freq     float64
	gain     float64
	startAt  float64
	duration float64
}

// fakeEngine is a manually clocked engine that records every request
type fakeEngine struct {
	now       float64
	next      audio.Voice
	tones     []tone
	live      map[audio.Voice]bool
	cancelled []audio.Voice

	resumeErr   error
	scheduleErr error
	failAfter   int // schedule fails once this many tones exist (0 = never)
}

var errNoDevice = errors.New("no output device")

func newFakeEngine() *fakeEngine {
	return &fakeEngine{live: make(map[audio.Voice]bool)}
}

func (e *fakeEngine) Resume() error { return e.resumeErr }
func (e *fakeEngine) Now() float64  { return e.now }

func (e *fakeEngine) ScheduleTone(freq, gain, startAt, duration float64) (audio.Voice, error) {
	if e.scheduleErr != nil {
		return audio.NoVoice, e.scheduleErr
	}
	if e.failAfter > 0 && len(e.tones) >= e.failAfter {
		return audio.NoVoice, errNoDevice
	}
	e.next++
	e.tones = append(e.tones, tone{e.next, freq, gain, startAt, duration})
	e.live[e.next] = true
	return e.next, nil
}

func (e *fakeEngine) CancelVoice(v audio.Voice) {
	if e.live[v] {
		delete(e.live, v)
		e.cancelled = append(e.cancelled, v)
	}
}

// notesOnly filters out metronome clicks
func (e *fakeEngine) notesOnly() []tone {
	var out []tone
	for _, t := range e.tones {
		if t.freq != clickHz && t.freq != accentHz {
			out = append(out, t)
		}
	}
	return out
}

func (e *fakeEngine) clicks() []tone {
	var out []tone
	for _, t := range e.tones {
		if t.freq == clickHz || t.freq == accentHz {
			out = append(out, t)
		}
	}
	return out
}

// recorder counts redraws and keeps the last frame
type recorder struct {
	count int
	last  Frame
}

func (r *recorder) RequestRedraw(f Frame) {
	r.count++
	r.last = f
}

type rig struct {
	seq    *Sequencer
	engine *fakeEngine
	frames *frame.Loop
	rec    *recorder
}

func newRig() *rig {
	engine := newFakeEngine()
	frames := frame.NewLoop()
	rec := &recorder{}
	return &rig{
		seq:    New(NewSession(), engine, frames, rec),
		engine: engine,
		frames: frames,
		rec:    rec,
	}
}

// advance moves the engine clock and runs one display frame
func (r *rig) advance(seconds float64) {
	r.engine.now += seconds
	r.frames.Run()
}
