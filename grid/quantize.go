package grid

import "math"

// Grid subdivisions in beats
const (
	Sixteenth = 0.25
	Eighth    = 0.5
	Quarter   = 1.0
)

// SnapBeat rounds b to the nearest multiple of gridBeats
func SnapBeat(b, gridBeats float64) float64 {
	return math.Round(b/gridBeats) * gridBeats
}

// SnapDuration is SnapBeat floored at one grid step, so it never yields a
// zero or negative duration
func SnapDuration(d, gridBeats float64) float64 {
	return math.Max(gridBeats, SnapBeat(d, gridBeats))
}

// Quantizer applies snapping when enabled and otherwise only enforces a
// positive duration floor.
type Quantizer struct {
	Grid    float64 // subdivision in beats
	Enabled bool
	Min     float64 // duration floor when disabled
}

func (q Quantizer) Beat(b float64) float64 {
	if !q.Enabled {
		return b
	}
	return SnapBeat(b, q.Grid)
}

func (q Quantizer) Duration(d float64) float64 {
	if !q.Enabled {
		return math.Max(q.Min, d)
	}
	return SnapDuration(d, q.Grid)
}

// MinDuration is the shortest duration the quantizer can produce
func (q Quantizer) MinDuration() float64 {
	if q.Enabled {
		return q.Grid
	}
	return q.Min
}
