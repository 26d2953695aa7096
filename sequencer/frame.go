package sequencer

// Frame is a read-only snapshot handed to the renderer. It is a copy; the
// renderer never mutates core state through it.
type Frame struct {
	Notes        []Note // stored values, insertion order
	Selected     NoteID
	HasSelection bool
	Playhead     float64
	Layers       Layers
	Defaults     Defaults
	State        TransportState
	Mode         EditMode
	Tempo        float64
	Velocity     int
	Metronome    bool
}

// Visible returns the notes as drawn: disabled axes replaced by defaults
func (f Frame) Visible() []Note {
	out := make([]Note, len(f.Notes))
	for i, n := range f.Notes {
		out[i] = f.Layers.Effective(n, f.Defaults)
	}
	return out
}

// Renderer draws frames
type Renderer interface {
	RequestRedraw(f Frame)
}

// RendererFunc adapts a function to Renderer
type RendererFunc func(Frame)

func (fn RendererFunc) RequestRedraw(f Frame) {
	fn(f)
}
