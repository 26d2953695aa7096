package sequencer

import (
	"fmt"
	"math"

	"go-pianoroll/audio"
	"go-pianoroll/debug"
	"go-pianoroll/frame"
	"go-pianoroll/grid"
)

// TransportState is the playback lifecycle
type TransportState int

const (
	Stopped TransportState = iota
	Playing
	Paused
)

func (s TransportState) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// FrameLoop delivers one callback per display frame
type FrameLoop interface {
	RequestFrame(fn func()) frame.Token
	CancelFrame(t frame.Token)
}

// Metronome click voice
const (
	clickSeconds = 0.04
	clickGain    = 0.5
	clickHz      = 880.0
	accentHz     = 1760.0
)

// Transport plays the note store through an audio engine. All notes are
// handed to the engine as one batch at play time; the frame loop only moves
// the playhead, which is always derived from the engine clock.
type Transport struct {
	engine  audio.Engine
	frames  FrameLoop
	store   *NoteStore
	session *Session

	state    TransportState
	playhead float64 // beats

	// valid while Playing
	mapper        grid.Mapper // tempo the batch was scheduled at
	t0            float64     // engine time of beat 0
	endBeat       float64
	voices        map[audio.Voice]uint64 // voice -> session token
	frameToken    frame.Token
	armed         bool
	lastAnnounced int // last beat given a metronome click

	// token identifies the current play session; frame callbacks and engine
	// notifications carrying an older token are stale
	token uint64

	onRedraw func()
}

func NewTransport(engine audio.Engine, frames FrameLoop, store *NoteStore, session *Session) *Transport {
	return &Transport{
		engine:        engine,
		frames:        frames,
		store:         store,
		session:       session,
		lastAnnounced: -1,
	}
}

// SetOnRedraw sets the callback invoked whenever the playhead or state changes
func (t *Transport) SetOnRedraw(fn func()) {
	t.onRedraw = fn
}

func (t *Transport) State() TransportState {
	return t.state
}

// Playhead returns the playback position in beats
func (t *Transport) Playhead() float64 {
	return t.playhead
}

// EndBeat returns where the playing batch ends (0 unless Playing)
func (t *Transport) EndBeat() float64 {
	if t.state != Playing {
		return 0
	}
	return t.endBeat
}

// Play starts or resumes playback from the playhead. Notes already over
// are skipped; a note the playhead is inside sounds only its remainder.
func (t *Transport) Play() error {
	if t.state == Playing {
		return nil
	}
	if err := t.engine.Resume(); err != nil {
		debug.Log("transport", "resume failed: %v", err)
		return fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
	}

	notes := t.effectiveNotes()
	end := 0.0
	for _, n := range notes {
		end = math.Max(end, n.EndBeat())
	}
	if end <= t.playhead {
		// nothing left to sound
		t.reset()
		t.redraw()
		return nil
	}

	m := t.session.Mapper()
	t0 := t.engine.Now() - m.BeatToSeconds(t.playhead)
	token := t.token + 1
	voices := make(map[audio.Voice]uint64, len(notes))
	for _, n := range notes {
		if n.EndBeat() <= t.playhead {
			continue
		}
		onset := math.Max(n.StartBeat, t.playhead)
		v, err := t.engine.ScheduleTone(
			audio.Frequency(n.Pitch),
			audio.Gain(n.Velocity),
			t0+m.BeatToSeconds(onset),
			m.BeatToSeconds(n.EndBeat()-onset),
		)
		if err != nil {
			for v := range voices {
				t.engine.CancelVoice(v)
			}
			debug.Log("transport", "schedule failed: %v", err)
			return fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
		}
		voices[v] = token
	}

	t.token = token
	t.mapper = m
	t.t0 = t0
	t.endBeat = end
	t.voices = voices
	t.state = Playing
	t.lastAnnounced = int(math.Ceil(t.playhead)) - 1
	debug.Log("transport", "play from=%.3f end=%.3f voices=%d tempo=%v", t.playhead, end, len(voices), m.Tempo)

	if t.session.Metronome {
		t.announce(t.playhead)
	}
	t.arm()
	t.redraw()
	return nil
}

// Pause freezes the playhead and silences everything scheduled for this
// session, including notes that are sounding right now
func (t *Transport) Pause() {
	if t.state != Playing {
		return
	}
	beat := t.clockBeat()
	if beat >= t.endBeat {
		t.Stop()
		return
	}
	t.halt()
	t.playhead = beat
	t.state = Paused
	debug.Log("transport", "pause at=%.3f", beat)
	t.redraw()
}

// Stop ends playback and rewinds. Stopping while stopped does nothing.
func (t *Transport) Stop() {
	if t.state == Stopped {
		return
	}
	t.halt()
	t.reset()
	debug.Log("transport", "stop")
	t.redraw()
}

// TogglePlay pauses while playing and plays otherwise
func (t *Transport) TogglePlay() error {
	if t.state == Playing {
		t.Pause()
		return nil
	}
	return t.Play()
}

// Retime reschedules the remainder of a playing batch after a tempo change,
// keeping the musical position. Paused and stopped positions are already
// in beats and need nothing.
func (t *Transport) Retime() error {
	if t.state != Playing {
		return nil
	}
	beat := t.clockBeat()
	if beat >= t.endBeat {
		t.Stop()
		return nil
	}
	t.halt()
	t.playhead = beat
	t.state = Paused
	debug.Log("transport", "retime at=%.3f tempo=%v", beat, t.session.Tempo)
	return t.Play()
}

// VoiceEnded handles an engine notification for a finished voice. Voices
// from an earlier play session are ignored.
func (t *Transport) VoiceEnded(v audio.Voice) bool {
	tok, ok := t.voices[v]
	if !ok || tok != t.token {
		return false
	}
	delete(t.voices, v)
	return true
}

// Voices returns how many voices of the current session are outstanding
func (t *Transport) Voices() int {
	return len(t.voices)
}

func (t *Transport) onFrame(token uint64) {
	if token != t.token || t.state != Playing {
		return
	}
	t.armed = false

	beat := t.clockBeat()
	if beat >= t.endBeat {
		t.Stop()
		return
	}
	t.playhead = beat
	if t.session.Metronome {
		t.announce(beat)
	}
	debug.LogEvery(60, "frame", "playhead=%.3f", beat)
	t.redraw()
	t.arm()
}

// announce schedules a click on the next beat boundary at or after beat,
// once per beat
func (t *Transport) announce(beat float64) {
	next := int(math.Ceil(beat))
	if next <= t.lastAnnounced || float64(next) >= t.endBeat {
		return
	}
	hz := clickHz
	if bpb := t.session.BeatsPerBar; bpb > 0 && next%bpb == 0 {
		hz = accentHz
	}
	v, err := t.engine.ScheduleTone(hz, clickGain, t.t0+t.mapper.BeatToSeconds(float64(next)), clickSeconds)
	if err != nil {
		debug.Log("transport", "metronome click failed: %v", err)
		return
	}
	t.voices[v] = t.token
	t.lastAnnounced = next
}

func (t *Transport) clockBeat() float64 {
	return math.Max(0, t.mapper.SecondsToBeat(t.engine.Now()-t.t0))
}

func (t *Transport) effectiveNotes() []Note {
	notes := t.store.Notes()
	for i := range notes {
		notes[i] = t.session.Layers.Effective(notes[i], t.session.Defaults)
	}
	return notes
}

func (t *Transport) arm() {
	token := t.token
	t.frameToken = t.frames.RequestFrame(func() { t.onFrame(token) })
	t.armed = true
}

// halt cancels the frame callback and every voice of the session, and
// retires the session token
func (t *Transport) halt() {
	if t.armed {
		t.frames.CancelFrame(t.frameToken)
		t.armed = false
	}
	for v := range t.voices {
		t.engine.CancelVoice(v)
	}
	t.voices = nil
	t.token++
}

func (t *Transport) reset() {
	t.state = Stopped
	t.playhead = 0
	t.endBeat = 0
	t.lastAnnounced = -1
}

func (t *Transport) redraw() {
	if t.onRedraw != nil {
		t.onRedraw()
	}
}
