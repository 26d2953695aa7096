package tui

import (
	"math"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-pianoroll/audio"
	"go-pianoroll/debug"
	"go-pianoroll/frame"
	"go-pianoroll/grid"
	"go-pianoroll/sequencer"
	"go-pianoroll/theme"
)

const (
	headerLines = 2
	gutterWidth = 5
	scrollStepX = 4

	minZoom = 8
	maxZoom = 256
)

var gridSteps = []float64{grid.Sixteenth, grid.Eighth, grid.Quarter}

// Options tune the terminal front end
type Options struct {
	FPS        int
	CellWidth  float64 // grid pixels per terminal column
	CellHeight float64 // grid pixels per terminal line
}

// screen is the sequencer's renderer: it keeps the latest snapshot for View
type screen struct {
	frame   sequencer.Frame
	redraws int
}

func (s *screen) RequestRedraw(f sequencer.Frame) {
	s.frame = f
	s.redraws++
}

type Model struct {
	seq    *sequencer.Sequencer
	frames *frame.Loop
	screen *screen
	theme  *theme.Theme
	keys   keyMap
	help   help.Model
	ended  <-chan audio.Voice
	clicks *clickTracker
	clock  func() time.Time
	opts   Options

	width    int
	height   int
	scrollX  int
	scrollY  int
	dragging bool
	status   string
	quitting bool
}

type tickMsg time.Time

// VoiceEndedMsg carries an engine notification onto the event loop
type VoiceEndedMsg audio.Voice

// NewModel builds the editor around session and engine. If the engine
// reports finished voices, the model listens for them.
func NewModel(session *sequencer.Session, engine audio.Engine, th *theme.Theme, opts Options) Model {
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if opts.CellWidth <= 0 {
		opts.CellWidth = 8
	}
	if opts.CellHeight <= 0 {
		opts.CellHeight = session.RowHeight
	}
	if th == nil {
		th = theme.New(nil)
	}

	frames := frame.NewLoop()
	sc := &screen{}
	seq := sequencer.New(session, engine, frames, sc)
	sc.frame = seq.Frame()

	var ended <-chan audio.Voice
	if n, ok := engine.(audio.Notifier); ok {
		ended = n.Ended()
	}

	m := Model{
		seq:    seq,
		frames: frames,
		screen: sc,
		theme:  th,
		keys:   defaultKeys(),
		help:   help.New(),
		ended:  ended,
		clicks: newClickTracker(DoubleClickWindow),
		clock:  time.Now,
		opts:   opts,
	}
	m.resize(80, 24)
	m.centerOn(session.Defaults.Pitch)
	return m
}

// Sequencer returns the editor core
func (m Model) Sequencer() *sequencer.Sequencer {
	return m.seq
}

func ListenForVoices(ch <-chan audio.Voice) tea.Cmd {
	return func() tea.Msg {
		v, ok := <-ch
		if !ok {
			return nil
		}
		return VoiceEndedMsg(v)
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	if m.ended == nil {
		return m.tick()
	}
	return tea.Batch(m.tick(), ListenForVoices(m.ended))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tickMsg:
		m.frames.Run()
		return m, m.tick()

	case VoiceEndedMsg:
		m.seq.VoiceEnded(audio.Voice(msg))
		return m, ListenForVoices(m.ended)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.seq.Session()
	m.status = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.seq.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Play):
		m.report(m.seq.TogglePlay())

	case key.Matches(msg, m.keys.Stop):
		m.seq.Stop()

	case key.Matches(msg, m.keys.TempoUp):
		m.report(m.seq.SetTempo(float64(sequencer.ClampTempo(int(math.Round(s.Tempo)) + 5))))

	case key.Matches(msg, m.keys.TempoDown):
		m.report(m.seq.SetTempo(float64(sequencer.ClampTempo(int(math.Round(s.Tempo)) - 5))))

	case key.Matches(msg, m.keys.Pitch):
		m.seq.ToggleLayer(sequencer.LayerPitch)
	case key.Matches(msg, m.keys.Duration):
		m.seq.ToggleLayer(sequencer.LayerDuration)
	case key.Matches(msg, m.keys.Velocity):
		m.seq.ToggleLayer(sequencer.LayerVelocity)
	case key.Matches(msg, m.keys.Snap):
		m.seq.ToggleLayer(sequencer.LayerSnap)

	case key.Matches(msg, m.keys.VelUp):
		m.report(m.seq.NudgeVelocity(8))
	case key.Matches(msg, m.keys.VelDown):
		m.report(m.seq.NudgeVelocity(-8))

	case key.Matches(msg, m.keys.Metronome):
		m.seq.ToggleMetronome()

	case key.Matches(msg, m.keys.Grid):
		m.report(m.seq.SetGrid(nextGrid(s.GridBeats)))

	case key.Matches(msg, m.keys.ZoomIn):
		m.zoom(2)
	case key.Matches(msg, m.keys.ZoomOut):
		m.zoom(0.5)

	case key.Matches(msg, m.keys.Delete):
		m.seq.DeleteSelected()

	case key.Matches(msg, m.keys.Up):
		m.scroll(0, -1)
	case key.Matches(msg, m.keys.Down):
		m.scroll(0, 1)
	case key.Matches(msg, m.keys.Left):
		m.scroll(-scrollStepX, 0)
	case key.Matches(msg, m.keys.Right):
		m.scroll(scrollStepX, 0)

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize(m.width, m.height)
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	l := m.layout()

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.scroll(0, -1)
	case msg.Button == tea.MouseButtonWheelDown:
		m.scroll(0, 1)

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if !l.contains(msg.X, msg.Y) {
			return
		}
		m.status = ""
		m.dragging = true
		m.report(m.seq.PointerDown(l.pixel(msg.X, msg.Y)))

	case msg.Action == tea.MouseActionMotion:
		if m.dragging {
			m.report(m.seq.PointerMove(l.pixel(msg.X, msg.Y)))
		}

	case msg.Action == tea.MouseActionRelease:
		if !m.dragging {
			return
		}
		m.dragging = false
		m.seq.PointerUp()
		if m.clicks.Release(m.clock(), msg.X, msg.Y) {
			m.seq.DoubleClick(l.pixel(msg.X, msg.Y))
		}
	}
}

func (m *Model) report(err error) {
	if err != nil {
		m.status = err.Error()
		debug.Log("tui", "error: %v", err)
	}
}

func (m *Model) zoom(factor float64) {
	s := m.seq.Session()
	ppb := math.Max(minZoom, math.Min(maxZoom, s.PixelsPerBeat*factor))
	if ppb == s.PixelsPerBeat {
		return
	}
	// keep the beat at the left edge in place
	left := float64(m.scrollX) * m.opts.CellWidth / s.PixelsPerBeat
	if err := m.seq.SetZoom(ppb); err != nil {
		m.report(err)
		return
	}
	m.scrollX = int(math.Round(left * ppb / m.opts.CellWidth))
	m.clampScroll()
}

func (m *Model) scroll(dx, dy int) {
	m.scrollX += dx
	m.scrollY += dy
	m.clampScroll()
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	m.help.Width = w
	m.clampScroll()
}

// centerOn scrolls vertically so pitch sits in the middle of the grid
func (m *Model) centerOn(pitch int) {
	mp := m.seq.Session().Mapper()
	line := int(mp.RowToY(mp.PitchToRow(pitch)) / m.opts.CellHeight)
	m.scrollY = line - m.gridRows()/2
	m.clampScroll()
}

func (m *Model) clampScroll() {
	m.scrollX = max(0, m.scrollX)
	m.scrollY = max(0, min(m.totalLines()-m.gridRows(), m.scrollY))
}

// totalLines is how many terminal lines the whole pitch range takes
func (m Model) totalLines() int {
	s := m.seq.Session()
	return int(math.Ceil(float64(s.Mapper().Rows()) * s.RowHeight / m.opts.CellHeight))
}

// footerLines is the status line plus help
func (m Model) footerLines() int {
	return 1 + lipgloss.Height(m.help.View(m.keys))
}

func (m Model) gridRows() int {
	return max(1, min(m.height-headerLines-m.footerLines(), m.totalLines()))
}

func (m Model) layout() layout {
	return layout{
		top:     headerLines,
		left:    gutterWidth,
		rows:    m.gridRows(),
		cols:    max(1, m.width-gutterWidth),
		scrollX: m.scrollX,
		scrollY: m.scrollY,
		cellW:   m.opts.CellWidth,
		cellH:   m.opts.CellHeight,
	}
}

func nextGrid(current float64) float64 {
	for i, g := range gridSteps {
		if g == current {
			return gridSteps[(i+1)%len(gridSteps)]
		}
	}
	return gridSteps[0]
}
