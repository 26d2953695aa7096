package sequencer

import (
	"fmt"

	"go-pianoroll/grid"
)

// MaxVelocity is the top of the velocity range (MIDI style 0-127)
const MaxVelocity = 127

// Tempo limits applied by UI collaborators before calling SetTempo
const (
	MinTempo = 20
	MaxTempo = 300
)

// NoteID identifies a note for the lifetime of the store. IDs are never reused.
type NoteID uint64

// Note is one pitched time interval. Time is kept in beats so tempo and zoom
// changes never rewrite it.
type Note struct {
	ID            NoteID
	Pitch         int
	StartBeat     float64
	DurationBeats float64
	Velocity      int
}

// EndBeat returns where the note stops sounding
func (n Note) EndBeat() float64 {
	return n.StartBeat + n.DurationBeats
}

// Layer names one editable axis of a note
type Layer int

const (
	LayerPitch Layer = iota
	LayerDuration
	LayerVelocity
	LayerSnap
)

func (l Layer) String() string {
	switch l {
	case LayerPitch:
		return "pitch"
	case LayerDuration:
		return "duration"
	case LayerVelocity:
		return "velocity"
	case LayerSnap:
		return "snap"
	default:
		return fmt.Sprintf("layer(%d)", int(l))
	}
}

// Layers gates which axes are editable. A disabled axis is also replaced by
// its default for hit testing, rendering and playback.
type Layers struct {
	Pitch    bool
	Duration bool
	Velocity bool
	Snap     bool
}

// AllLayers returns layers with every axis enabled
func AllLayers() Layers {
	return Layers{Pitch: true, Duration: true, Velocity: true, Snap: true}
}

func (l Layers) Enabled(layer Layer) bool {
	switch layer {
	case LayerPitch:
		return l.Pitch
	case LayerDuration:
		return l.Duration
	case LayerVelocity:
		return l.Velocity
	case LayerSnap:
		return l.Snap
	}
	return false
}

// Toggle returns a copy with one layer flipped
func (l Layers) Toggle(layer Layer) Layers {
	switch layer {
	case LayerPitch:
		l.Pitch = !l.Pitch
	case LayerDuration:
		l.Duration = !l.Duration
	case LayerVelocity:
		l.Velocity = !l.Velocity
	case LayerSnap:
		l.Snap = !l.Snap
	}
	return l
}

// Defaults are substituted for disabled axes
type Defaults struct {
	Pitch         int
	DurationBeats float64
	Velocity      int
}

// DefaultDefaults returns middle C, one beat, velocity 100
func DefaultDefaults() Defaults {
	return Defaults{Pitch: 60, DurationBeats: 1, Velocity: 100}
}

// Effective returns the note as it is seen and heard under these layers
func (l Layers) Effective(n Note, d Defaults) Note {
	if !l.Pitch {
		n.Pitch = d.Pitch
	}
	if !l.Duration {
		n.DurationBeats = d.DurationBeats
	}
	if !l.Velocity {
		n.Velocity = d.Velocity
	}
	return n
}

// Session is the editing session state shared by the editor and transport.
// It is passed explicitly; nothing reads UI widgets.
type Session struct {
	Tempo          float64 // BPM
	PixelsPerBeat  float64 // zoom
	GridBeats      float64 // snap subdivision
	ResizeMarginPx float64 // resize handle width, fixed in pixels
	RowHeight      float64
	MinPitch       int
	MaxPitch       int

	Layers   Layers
	Defaults Defaults

	Velocity    int // velocity slider value, used for new notes
	Metronome   bool
	BeatsPerBar int
}

// NewSession creates a session with default settings
func NewSession() *Session {
	return &Session{
		Tempo:          120,
		PixelsPerBeat:  40,
		GridBeats:      grid.Sixteenth,
		ResizeMarginPx: 5,
		RowHeight:      grid.DefaultRowHeight,
		MinPitch:       grid.DefaultMinPitch,
		MaxPitch:       grid.DefaultMaxPitch,
		Layers:         AllLayers(),
		Defaults:       DefaultDefaults(),
		Velocity:       100,
		BeatsPerBar:    4,
	}
}

// Mapper returns the coordinate mapping for the current tempo and zoom
func (s *Session) Mapper() grid.Mapper {
	return grid.Mapper{
		Tempo:         s.Tempo,
		PixelsPerBeat: s.PixelsPerBeat,
		RowHeight:     s.RowHeight,
		MinPitch:      s.MinPitch,
		MaxPitch:      s.MaxPitch,
	}
}

// Quantizer returns the snapping rules for the current layers and zoom
func (s *Session) Quantizer() grid.Quantizer {
	return grid.Quantizer{
		Grid:    s.GridBeats,
		Enabled: s.Layers.Snap,
		Min:     1 / s.PixelsPerBeat,
	}
}

// SetTempo changes BPM. Notes are stored in beats so nothing else changes.
func (s *Session) SetTempo(bpm float64) error {
	if bpm <= 0 {
		return fmt.Errorf("%w: tempo %v", ErrInvalidRange, bpm)
	}
	s.Tempo = bpm
	return nil
}

// SetZoom changes pixels per beat
func (s *Session) SetZoom(pixelsPerBeat float64) error {
	if pixelsPerBeat <= 0 {
		return fmt.Errorf("%w: zoom %v", ErrInvalidRange, pixelsPerBeat)
	}
	s.PixelsPerBeat = pixelsPerBeat
	return nil
}

// ClampVelocity limits v to 0..MaxVelocity
func ClampVelocity(v int) int {
	return max(0, min(MaxVelocity, v))
}

// ClampTempo limits bpm to MinTempo..MaxTempo
func ClampTempo(bpm int) int {
	return max(MinTempo, min(MaxTempo, bpm))
}
