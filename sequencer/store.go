package sequencer

import "fmt"

// NotePatch carries the fields an edit wants to change; nil fields are left alone
type NotePatch struct {
	Pitch         *int
	StartBeat     *float64
	DurationBeats *float64
	Velocity      *int
}

// NoteStore owns the notes of a session and the selection. Notes keep their
// insertion order, which doubles as z-order: later notes sit on top.
type NoteStore struct {
	notes    []Note
	nextID   NoteID
	selected NoteID // 0 = nothing selected
	minPitch int
	maxPitch int
}

// NewNoteStore creates an empty store accepting pitches in [minPitch, maxPitch]
func NewNoteStore(minPitch, maxPitch int) *NoteStore {
	return &NoteStore{
		minPitch: minPitch,
		maxPitch: maxPitch,
	}
}

// Create inserts a note and selects it
func (s *NoteStore) Create(pitch int, startBeat, durationBeats float64, velocity int) (NoteID, error) {
	n := Note{
		Pitch:         pitch,
		StartBeat:     startBeat,
		DurationBeats: durationBeats,
		Velocity:      velocity,
	}
	if err := s.validate(n); err != nil {
		return 0, err
	}
	s.nextID++
	n.ID = s.nextID
	s.notes = append(s.notes, n)
	s.selected = n.ID
	return n.ID, nil
}

// Update applies the patch fields allowed by layers. Start is always
// editable. A missing id is a lost race and is ignored.
func (s *NoteStore) Update(id NoteID, p NotePatch, layers Layers) error {
	i := s.index(id)
	if i < 0 {
		return nil
	}
	n := s.notes[i]
	if p.StartBeat != nil {
		n.StartBeat = *p.StartBeat
	}
	if p.Pitch != nil && layers.Pitch {
		n.Pitch = *p.Pitch
	}
	if p.DurationBeats != nil && layers.Duration {
		n.DurationBeats = *p.DurationBeats
	}
	if p.Velocity != nil && layers.Velocity {
		n.Velocity = *p.Velocity
	}
	if err := s.validate(n); err != nil {
		return err
	}
	s.notes[i] = n
	return nil
}

// Delete removes a note, clearing the selection if it pointed at it
func (s *NoteStore) Delete(id NoteID) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.notes = append(s.notes[:i], s.notes[i+1:]...)
	if s.selected == id {
		s.selected = 0
	}
	return true
}

// FindAt returns the topmost note whose effective box contains the point
func (s *NoteStore) FindAt(beat float64, pitch int, layers Layers, d Defaults) (NoteID, bool) {
	for i := len(s.notes) - 1; i >= 0; i-- {
		e := layers.Effective(s.notes[i], d)
		if e.Pitch == pitch && beat >= e.StartBeat && beat <= e.EndBeat() {
			return e.ID, true
		}
	}
	return 0, false
}

// Get returns a copy of a note
func (s *NoteStore) Get(id NoteID) (Note, bool) {
	i := s.index(id)
	if i < 0 {
		return Note{}, false
	}
	return s.notes[i], true
}

// Notes returns a copy of all notes in insertion order
func (s *NoteStore) Notes() []Note {
	out := make([]Note, len(s.notes))
	copy(out, s.notes)
	return out
}

func (s *NoteStore) Len() int {
	return len(s.notes)
}

// Select marks a note as selected; unknown ids are ignored
func (s *NoteStore) Select(id NoteID) {
	if s.index(id) >= 0 {
		s.selected = id
	}
}

// Selected returns the selected note id, if any
func (s *NoteStore) Selected() (NoteID, bool) {
	return s.selected, s.selected != 0
}

func (s *NoteStore) ClearSelection() {
	s.selected = 0
}

func (s *NoteStore) index(id NoteID) int {
	if id == 0 {
		return -1
	}
	for i := range s.notes {
		if s.notes[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *NoteStore) validate(n Note) error {
	switch {
	case n.Pitch < s.minPitch || n.Pitch > s.maxPitch:
		return fmt.Errorf("%w: pitch %d not in %d..%d", ErrInvalidRange, n.Pitch, s.minPitch, s.maxPitch)
	case n.Velocity < 0 || n.Velocity > MaxVelocity:
		return fmt.Errorf("%w: velocity %d not in 0..%d", ErrInvalidRange, n.Velocity, MaxVelocity)
	case n.StartBeat < 0:
		return fmt.Errorf("%w: start beat %v is negative", ErrInvalidRange, n.StartBeat)
	case n.DurationBeats <= 0:
		return fmt.Errorf("%w: duration %v is not positive", ErrInvalidRange, n.DurationBeats)
	}
	return nil
}
