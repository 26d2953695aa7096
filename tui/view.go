package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-pianoroll/grid"
	"go-pianoroll/sequencer"
	"go-pianoroll/widgets"
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func noteName(pitch int) string {
	return fmt.Sprintf("%s%d", noteNames[pitch%12], pitch/12-1)
}

func isBlackKey(pitch int) bool {
	switch pitch % 12 {
	case 1, 3, 6, 8, 10:
		return true
	}
	return false
}

// cellStyle identifies a run of identically styled cells
type cellStyle struct {
	fg, bg lipgloss.Color
}

// runWriter merges adjacent cells with the same style into one Render call
type runWriter struct {
	out   strings.Builder
	run   strings.Builder
	style cellStyle
}

func (w *runWriter) put(r rune, st cellStyle) {
	if st != w.style {
		w.flush()
		w.style = st
	}
	w.run.WriteRune(r)
}

func (w *runWriter) flush() {
	if w.run.Len() == 0 {
		return
	}
	s := lipgloss.NewStyle()
	if w.style.fg != "" {
		s = s.Foreground(w.style.fg)
	}
	if w.style.bg != "" {
		s = s.Background(w.style.bg)
	}
	w.out.WriteString(s.Render(w.run.String()))
	w.run.Reset()
}

func (w *runWriter) String() string {
	w.flush()
	return w.out.String()
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	f := m.screen.frame
	s := m.seq.Session()

	var out strings.Builder
	out.WriteString(m.renderHeader(f, s))
	out.WriteString("\n")
	out.WriteString(m.renderStatus(f))
	out.WriteString("\n")
	out.WriteString(m.renderGrid(f, s))
	out.WriteString("\n")

	if m.status != "" {
		out.WriteString(lipgloss.NewStyle().Foreground(m.theme.Warning()).Render(m.status))
	}
	out.WriteString("\n")
	out.WriteString(m.help.View(m.keys))
	return out.String()
}

func (m Model) renderHeader(f sequencer.Frame, s *sequencer.Session) string {
	headerStyle := lipgloss.NewStyle().Foreground(m.theme.Accent()).Bold(true)
	state := strings.ToUpper(f.State.String())
	return headerStyle.Render(fmt.Sprintf("go-pianoroll  %-7s %3.0fbpm  beat %6.2f  grid %s  zoom %3.0fpx",
		state, f.Tempo, f.Playhead, gridLabel(s.GridBeats), s.PixelsPerBeat))
}

func (m Model) renderStatus(f sequencer.Frame) string {
	on, off := m.theme.Success(), m.theme.Muted()
	parts := []string{
		widgets.Toggle("pitch", f.Layers.Pitch, on, off),
		widgets.Toggle("dur", f.Layers.Duration, on, off),
		widgets.Toggle("vel", f.Layers.Velocity, on, off),
		widgets.Toggle("snap", f.Layers.Snap, on, off),
		widgets.Toggle("click", f.Metronome, on, off),
		widgets.Meter("vel", f.Velocity, sequencer.MaxVelocity, 16, m.theme.Velocity(f.Velocity)),
	}
	if f.Mode != sequencer.ModeIdle {
		parts = append(parts, lipgloss.NewStyle().Foreground(m.theme.Cursor()).Render(f.Mode.String()))
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderGrid(f sequencer.Frame, s *sequencer.Session) string {
	l := m.layout()
	mp := s.Mapper()
	sym := m.theme.Symbols

	byPitch := make(map[int][]sequencer.Note)
	for _, n := range f.Visible() {
		byPitch[n.Pitch] = append(byPitch[n.Pitch], n)
	}
	showPlayhead := f.State != sequencer.Stopped

	labelStyle := lipgloss.NewStyle().Foreground(m.theme.FG())
	blackLabel := lipgloss.NewStyle().Foreground(m.theme.Muted())
	surface := m.theme.Surface()
	muted := m.theme.Muted()
	fg := m.theme.FG()

	lines := make([]string, 0, l.rows)
	for r := 0; r < l.rows; r++ {
		row := mp.YToRow(l.rowCenter(r))
		if row >= float64(mp.Rows()) {
			lines = append(lines, "")
			continue
		}
		pitch := mp.RowToPitch(row)
		black := isBlackKey(pitch)

		label := fmt.Sprintf("%-4s│", noteName(pitch))
		if black {
			label = blackLabel.Render(label)
		} else {
			label = labelStyle.Render(label)
		}

		var bg lipgloss.Color
		if black {
			bg = surface
		}

		var w runWriter
		notes := byPitch[pitch]
		for c := 0; c < l.cols; c++ {
			x0, x1 := l.cellSpan(c)
			b0, b1 := mp.PixelToBeat(x0), mp.PixelToBeat(x1)

			if n, ok := topmost(notes, b0, b1); ok {
				glyph := sym.NoteBody
				switch {
				case f.HasSelection && n.ID == f.Selected:
					glyph = sym.Selected
				case f.Layers.Duration && n.EndBeat() <= b1:
					glyph = sym.NoteHandle
				}
				st := cellStyle{fg: m.theme.Velocity(n.Velocity), bg: bg}
				if f.HasSelection && n.ID == f.Selected {
					st.bg = m.theme.Cursor()
				}
				w.put(glyph, st)
				continue
			}

			switch {
			case showPlayhead && f.Playhead >= b0 && f.Playhead < b1:
				w.put(sym.Playhead, cellStyle{fg: m.theme.Warning(), bg: bg})
			case math.Ceil(b0) < b1:
				beat := int(math.Ceil(b0))
				st := cellStyle{fg: muted, bg: bg}
				if s.BeatsPerBar > 0 && beat%s.BeatsPerBar == 0 {
					st.fg = fg
				}
				w.put(sym.Beat, st)
			default:
				w.put(' ', cellStyle{bg: bg})
			}
		}
		lines = append(lines, label+w.String())
	}
	return strings.Join(lines, "\n")
}

// topmost returns the last note overlapping [b0, b1)
func topmost(notes []sequencer.Note, b0, b1 float64) (sequencer.Note, bool) {
	for i := len(notes) - 1; i >= 0; i-- {
		n := notes[i]
		if n.StartBeat < b1 && n.EndBeat() > b0 {
			return n, true
		}
	}
	return sequencer.Note{}, false
}

func gridLabel(beats float64) string {
	switch beats {
	case grid.Sixteenth:
		return "1/16"
	case grid.Eighth:
		return "1/8"
	case grid.Quarter:
		return "1/4"
	}
	return fmt.Sprintf("%gb", beats)
}
