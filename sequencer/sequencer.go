package sequencer

import (
	"fmt"

	"go-pianoroll/audio"
	"go-pianoroll/debug"
)

// Sequencer wires the note store, editor, transport and auditioner to one
// session and is the single entry point for the event loop. Every handler
// runs to completion before the next; none of it is safe for concurrent use.
type Sequencer struct {
	session    *Session
	store      *NoteStore
	editor     *Editor
	transport  *Transport
	auditioner *Auditioner
	renderer   Renderer
}

// New creates a sequencer. renderer may be nil.
func New(session *Session, engine audio.Engine, frames FrameLoop, renderer Renderer) *Sequencer {
	store := NewNoteStore(session.MinPitch, session.MaxPitch)
	auditioner := NewAuditioner(engine)
	s := &Sequencer{
		session:    session,
		store:      store,
		editor:     NewEditor(store, session, auditioner),
		transport:  NewTransport(engine, frames, store, session),
		auditioner: auditioner,
		renderer:   renderer,
	}
	s.transport.SetOnRedraw(s.redraw)
	return s
}

func (s *Sequencer) Session() *Session     { return s.session }
func (s *Sequencer) Store() *NoteStore     { return s.store }
func (s *Sequencer) Editor() *Editor       { return s.editor }
func (s *Sequencer) Transport() *Transport { return s.transport }

// Pointer input, in grid-local pixels

func (s *Sequencer) PointerDown(x, y float64) error {
	err := s.editor.PointerDown(x, y)
	s.logErr("pointer-down", err)
	s.redraw()
	return err
}

func (s *Sequencer) PointerMove(x, y float64) error {
	if s.editor.Mode() == ModeIdle {
		return nil
	}
	err := s.editor.PointerMove(x, y)
	s.logErr("pointer-move", err)
	s.redraw()
	return err
}

func (s *Sequencer) PointerUp() {
	if s.editor.Mode() == ModeIdle {
		return
	}
	s.editor.PointerUp()
	s.redraw()
}

func (s *Sequencer) DoubleClick(x, y float64) {
	if s.editor.DoubleClick(x, y) {
		s.redraw()
	}
}

// Keyboard and widget input

func (s *Sequencer) DeleteSelected() {
	if s.editor.DeleteSelected() {
		s.redraw()
	}
}

func (s *Sequencer) VelocityChanged(v int) error {
	err := s.editor.VelocityChanged(v)
	s.redraw()
	return err
}

func (s *Sequencer) NudgeVelocity(delta int) error {
	err := s.editor.NudgeVelocity(delta)
	s.redraw()
	return err
}

// ToggleLayer flips one editable axis. An edit in flight keeps going and
// simply stops touching that axis.
func (s *Sequencer) ToggleLayer(l Layer) {
	s.session.Layers = s.session.Layers.Toggle(l)
	debug.Log("layers", "%s=%v", l, s.session.Layers.Enabled(l))
	s.redraw()
}

func (s *Sequencer) ToggleMetronome() {
	s.session.Metronome = !s.session.Metronome
	s.redraw()
}

// SetTempo changes BPM without touching any stored note. A playing batch is
// rescheduled from the current musical position.
func (s *Sequencer) SetTempo(bpm float64) error {
	if err := s.session.SetTempo(bpm); err != nil {
		return err
	}
	debug.Log("tempo", "bpm=%v", bpm)
	err := s.transport.Retime()
	s.logErr("retime", err)
	s.redraw()
	return err
}

// SetGrid changes the snap subdivision. Stored notes keep their positions.
func (s *Sequencer) SetGrid(beats float64) error {
	if beats <= 0 {
		return fmt.Errorf("%w: grid %v", ErrInvalidRange, beats)
	}
	s.session.GridBeats = beats
	s.redraw()
	return nil
}

// SetZoom changes pixels per beat. The resize margin stays the same number
// of pixels, so it covers a different share of a beat.
func (s *Sequencer) SetZoom(pixelsPerBeat float64) error {
	if err := s.session.SetZoom(pixelsPerBeat); err != nil {
		return err
	}
	s.redraw()
	return nil
}

// Transport

func (s *Sequencer) Play() error {
	err := s.transport.Play()
	s.logErr("play", err)
	return err
}

func (s *Sequencer) Pause() { s.transport.Pause() }
func (s *Sequencer) Stop()  { s.transport.Stop() }

func (s *Sequencer) TogglePlay() error {
	err := s.transport.TogglePlay()
	s.logErr("play", err)
	return err
}

// VoiceEnded routes an engine notification, already moved onto the event
// loop, to whichever part owns the voice
func (s *Sequencer) VoiceEnded(v audio.Voice) {
	if s.auditioner.ToneEnded(v) {
		return
	}
	s.transport.VoiceEnded(v)
}

// Frame builds the current render snapshot
func (s *Sequencer) Frame() Frame {
	sel, ok := s.store.Selected()
	return Frame{
		Notes:        s.store.Notes(),
		Selected:     sel,
		HasSelection: ok,
		Playhead:     s.transport.Playhead(),
		Layers:       s.session.Layers,
		Defaults:     s.session.Defaults,
		State:        s.transport.State(),
		Mode:         s.editor.Mode(),
		Tempo:        s.session.Tempo,
		Velocity:     s.session.Velocity,
		Metronome:    s.session.Metronome,
	}
}

// Close stops playback and silences any preview
func (s *Sequencer) Close() {
	s.transport.Stop()
	s.auditioner.Cancel()
}

func (s *Sequencer) redraw() {
	if s.renderer != nil {
		s.renderer.RequestRedraw(s.Frame())
	}
}

func (s *Sequencer) logErr(op string, err error) {
	if err != nil {
		debug.Log("error", "%s: %v", op, err)
	}
}
