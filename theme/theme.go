package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	NoteBody   rune // █
	NoteHandle rune // ▐ last cell, resize handle
	Selected   rune // ▓ selected note body
	Playhead   rune // │
	Beat       rune // ┊ beat line on empty cells
	Empty      rune // · empty cell
	On         rune // ● toggle on
	Off        rune // ○ toggle off
}

func New(palette *Palette) *Theme {
	if palette == nil {
		palette = DefaultPalette()
	}
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			NoteBody:   '█',
			NoteHandle: '▐',
			Selected:   '▓',
			Playhead:   '│',
			Beat:       '┊',
			Empty:      '·',
			On:         '●',
			Off:        '○',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0
	RoleSurface = 0.1
	RoleMuted   = 0.2
	RoleFG      = 0.4
	RoleAccent  = 0.5
	RoleCursor  = 0.6
	RoleActive  = 0.7
	RoleWarning = 0.8
	RoleSuccess = 1.0
)

func (t *Theme) BG() lipgloss.Color      { return t.Color(RoleBG) }
func (t *Theme) Surface() lipgloss.Color { return t.Color(RoleSurface) }
func (t *Theme) FG() lipgloss.Color      { return t.Color(RoleFG) }
func (t *Theme) Accent() lipgloss.Color  { return t.Color(RoleAccent) }
func (t *Theme) Muted() lipgloss.Color   { return t.Color(RoleMuted) }
func (t *Theme) Cursor() lipgloss.Color  { return t.Color(RoleCursor) }
func (t *Theme) Active() lipgloss.Color  { return t.Color(RoleActive) }
func (t *Theme) Warning() lipgloss.Color { return t.Color(RoleWarning) }
func (t *Theme) Success() lipgloss.Color { return t.Color(RoleSuccess) }

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return lipgloss.Color(t.Palette.Lookup(norm).Hex())
}

// Note fill: a fixed blue hue whose lightness falls from white at velocity 0
// to full saturation at 127
const (
	noteHue        = 200
	noteSaturation = 1.0
)

// VelocityRGB returns the note fill for a 0..127 velocity
func VelocityRGB(velocity int) RGB {
	v := float64(max(0, min(127, velocity)))
	l := 1 - v/127*0.5
	return fromColorful(colorful.Hsl(noteHue, noteSaturation, l).Clamped())
}

// Velocity returns the note fill as a lipgloss color
func (t *Theme) Velocity(velocity int) lipgloss.Color {
	return lipgloss.Color(VelocityRGB(velocity).Hex())
}
