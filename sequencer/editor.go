package sequencer

import (
	"fmt"
	"math"
)

// EditMode is the state of the pointer interaction
type EditMode int

const (
	ModeIdle EditMode = iota
	ModeCreating
	ModeMoving
	ModeResizing
)

func (m EditMode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeCreating:
		return "creating"
	case ModeMoving:
		return "moving"
	case ModeResizing:
		return "resizing"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Editor turns pointer gestures into note store mutations. Events arrive
// serialized: a pointer-up always closes a gesture before the next
// pointer-down.
type Editor struct {
	store      *NoteStore
	session    *Session
	auditioner *Auditioner

	mode   EditMode
	active NoteID // note under edit, 0 when idle

	// pointer minus note origin at press time, so a moved note does not jump
	dragOffsetBeat float64
	dragOffsetRow  float64
}

func NewEditor(store *NoteStore, session *Session, auditioner *Auditioner) *Editor {
	return &Editor{
		store:      store,
		session:    session,
		auditioner: auditioner,
	}
}

// Mode returns the current interaction state
func (e *Editor) Mode() EditMode {
	return e.mode
}

// Active returns the note being edited
func (e *Editor) Active() (NoteID, bool) {
	return e.active, e.active != 0
}

// PointerDown grabs the note under the pointer, or draws a new one. The
// returned error is only ever an audition failure; the edit itself has
// already been applied.
func (e *Editor) PointerDown(x, y float64) error {
	s := e.session
	m := s.Mapper()
	beat := m.PixelToBeat(x)
	row := m.YToRow(y)
	pitch := m.RowToPitch(row)

	if id, ok := e.store.FindAt(beat, pitch, s.Layers, s.Defaults); ok {
		n, _ := e.store.Get(id)
		eff := s.Layers.Effective(n, s.Defaults)
		e.store.Select(id)
		e.syncVelocity(n)
		e.active = id

		endPx := m.BeatToPixel(eff.EndBeat())
		if s.Layers.Duration && x > endPx-s.ResizeMarginPx {
			e.mode = ModeResizing
		} else {
			e.mode = ModeMoving
			e.dragOffsetBeat = beat - n.StartBeat
			e.dragOffsetRow = row - m.PitchToRow(eff.Pitch)
		}
		return e.audition(id)
	}

	q := s.Quantizer()
	start := math.Max(0, q.Beat(beat))
	id, err := e.store.Create(pitch, start, q.MinDuration(), s.Velocity)
	if err != nil {
		return err
	}
	e.active = id
	e.mode = ModeCreating
	return e.audition(id)
}

// PointerMove drags the active note. It is a no-op while idle.
func (e *Editor) PointerMove(x, y float64) error {
	if e.mode == ModeIdle {
		return nil
	}
	n, ok := e.store.Get(e.active)
	if !ok {
		// deleted under us; abandon the gesture
		e.reset()
		return nil
	}

	s := e.session
	m := s.Mapper()
	q := s.Quantizer()
	beat := m.PixelToBeat(x)

	switch e.mode {
	case ModeCreating, ModeResizing:
		if !s.Layers.Duration {
			return nil
		}
		d := q.Duration(beat - n.StartBeat)
		return e.store.Update(n.ID, NotePatch{DurationBeats: &d}, s.Layers)

	case ModeMoving:
		start := math.Max(0, q.Beat(beat-e.dragOffsetBeat))
		patch := NotePatch{StartBeat: &start}
		pitchChanged := false
		if s.Layers.Pitch {
			p := m.RowToPitch(m.YToRow(y) - e.dragOffsetRow)
			if p != n.Pitch {
				patch.Pitch = &p
				pitchChanged = true
			}
		}
		if err := e.store.Update(n.ID, patch, s.Layers); err != nil {
			return err
		}
		if pitchChanged {
			return e.audition(n.ID)
		}
	}
	return nil
}

// PointerUp commits the gesture. Nothing is discarded: a plain click still
// leaves a minimum-length note.
func (e *Editor) PointerUp() {
	e.reset()
}

// DoubleClick deletes the note under the pointer
func (e *Editor) DoubleClick(x, y float64) bool {
	s := e.session
	m := s.Mapper()
	id, ok := e.store.FindAt(m.PixelToBeat(x), m.RowToPitch(m.YToRow(y)), s.Layers, s.Defaults)
	if !ok {
		return false
	}
	return e.delete(id)
}

// DeleteSelected removes the selected note
func (e *Editor) DeleteSelected() bool {
	id, ok := e.store.Selected()
	if !ok {
		return false
	}
	return e.delete(id)
}

// VelocityChanged records the slider value and applies it to the selected
// note when the velocity layer is on
func (e *Editor) VelocityChanged(v int) error {
	if v < 0 || v > MaxVelocity {
		return fmt.Errorf("%w: velocity %d", ErrInvalidRange, v)
	}
	e.session.Velocity = v
	id, ok := e.store.Selected()
	if !ok || !e.session.Layers.Velocity {
		return nil
	}
	return e.store.Update(id, NotePatch{Velocity: &v}, e.session.Layers)
}

// NudgeVelocity moves the slider by delta, clamped to the velocity range
func (e *Editor) NudgeVelocity(delta int) error {
	return e.VelocityChanged(ClampVelocity(e.session.Velocity + delta))
}

func (e *Editor) delete(id NoteID) bool {
	if !e.store.Delete(id) {
		return false
	}
	if e.active == id {
		e.reset()
	}
	return true
}

// syncVelocity moves the slider to a freshly selected note, like the
// velocity widget following the selection
func (e *Editor) syncVelocity(n Note) {
	if e.session.Layers.Velocity {
		e.session.Velocity = n.Velocity
	}
}

func (e *Editor) audition(id NoteID) error {
	if e.auditioner == nil {
		return nil
	}
	n, ok := e.store.Get(id)
	if !ok {
		return nil
	}
	s := e.session
	return e.auditioner.Audition(s.Layers.Effective(n, s.Defaults), s.Mapper())
}

func (e *Editor) reset() {
	e.mode = ModeIdle
	e.active = 0
	e.dragOffsetBeat = 0
	e.dragOffsetRow = 0
}
