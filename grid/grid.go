// Package grid converts between the three time representations of the piano
// roll (pointer pixels, musical beats, audio-clock seconds) and between
// pitches and grid rows.
package grid

import "math"

// Pitch range defaults (MIDI note numbers)
const (
	DefaultMinPitch = 24
	DefaultMaxPitch = 84
)

// DefaultRowHeight is the height of one pitch row in pixels
const DefaultRowHeight = 10.0

// Mapper holds the parameters of the coordinate mapping. The zero value is
// not usable; build one with NewMapper or fill every field.
type Mapper struct {
	Tempo         float64 // BPM
	PixelsPerBeat float64 // horizontal zoom
	RowHeight     float64 // pixels per semitone row
	MinPitch      int
	MaxPitch      int
}

// NewMapper creates a mapper over the default pitch range
func NewMapper(tempo, pixelsPerBeat float64) Mapper {
	return Mapper{
		Tempo:         tempo,
		PixelsPerBeat: pixelsPerBeat,
		RowHeight:     DefaultRowHeight,
		MinPitch:      DefaultMinPitch,
		MaxPitch:      DefaultMaxPitch,
	}
}

func (m Mapper) PixelToBeat(x float64) float64 {
	return x / m.PixelsPerBeat
}

func (m Mapper) BeatToPixel(b float64) float64 {
	return b * m.PixelsPerBeat
}

func (m Mapper) BeatToSeconds(b float64) float64 {
	return b * 60 / m.Tempo
}

func (m Mapper) SecondsToBeat(s float64) float64 {
	return s * m.Tempo / 60
}

// PitchToRow returns the row index of a pitch; the highest pitch is row 0
func (m Mapper) PitchToRow(pitch int) float64 {
	return float64(m.MaxPitch - pitch)
}

// RowToPitch returns the pitch under a (possibly fractional) row, clamped
// to the mapper's pitch range
func (m Mapper) RowToPitch(row float64) int {
	return m.ClampPitch(m.MaxPitch - int(math.Floor(row)))
}

func (m Mapper) YToRow(y float64) float64 {
	return y / m.RowHeight
}

func (m Mapper) RowToY(row float64) float64 {
	return row * m.RowHeight
}

// Rows returns the number of pitch rows in the grid
func (m Mapper) Rows() int {
	return m.MaxPitch - m.MinPitch + 1
}

// ClampPitch limits pitch to [MinPitch, MaxPitch]
func (m Mapper) ClampPitch(pitch int) int {
	return max(m.MinPitch, min(m.MaxPitch, pitch))
}

// MinDuration is the unquantized duration floor: one pixel at the current zoom
func (m Mapper) MinDuration() float64 {
	return 1 / m.PixelsPerBeat
}
