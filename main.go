package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"go-pianoroll/audio"
	"go-pianoroll/config"
	"go-pianoroll/debug"
	"go-pianoroll/frame"
	"go-pianoroll/midi"
	"go-pianoroll/sequencer"
	"go-pianoroll/synth"
	"go-pianoroll/theme"
	"go-pianoroll/tui"
)

var (
	configPath  string
	tempoFlag   float64
	engineFlag  string
	portFlag    string
	channelFlag int
	debugFlag   bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "go-pianoroll",
	Short: "Terminal piano roll editor",
	Long: `go-pianoroll draws, moves, resizes and plays notes on a pitch x time grid.

Click an empty cell to draw a note and drag to lengthen it. Drag a note to
move it, or drag its last cell to resize it. Double click deletes.

Examples:
  go-pianoroll
  go-pianoroll --tempo 90 --engine midi --port "IAC Driver"
  go-pianoroll ports
  go-pianoroll scale`,
	SilenceUsage: true,
	RunE:         runEditor,
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI input and output ports",
	Args:  cobra.NoArgs,
	RunE:  runPorts,
}

var scaleCmd = &cobra.Command{
	Use:   "scale",
	Short: "Play a C major scale through the configured engine",
	Args:  cobra.NoArgs,
	RunE:  runScale,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "config file (default ~/.config/go-pianoroll/config.yaml)")
	pf.Float64VarP(&tempoFlag, "tempo", "t", 0, "tempo in BPM")
	pf.StringVarP(&engineFlag, "engine", "e", "", "audio engine (synth, midi)")
	pf.StringVarP(&portFlag, "port", "p", "", "MIDI output port name")
	pf.IntVar(&channelFlag, "channel", 0, "MIDI channel (0-15)")
	pf.BoolVar(&debugFlag, "debug", false, "write a debug log next to the config")

	rootCmd.AddCommand(portsCmd, scaleCmd)
}

// loadConfig reads the config file and applies flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("tempo") {
		cfg.Tempo = tempoFlag
	}
	if flags.Changed("engine") {
		cfg.Audio.Engine = engineFlag
	}
	if flags.Changed("port") {
		cfg.Audio.MIDIPort = portFlag
	}
	if flags.Changed("channel") {
		cfg.Audio.MIDIChannel = channelFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func enableDebug() error {
	if !debugFlag {
		return nil
	}
	dir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	return debug.Enable(filepath.Join(dir, "debug.log"))
}

// newEngine builds the configured audio engine and its cleanup
func newEngine(cfg *config.Config) (audio.Engine, func()) {
	switch cfg.Audio.Engine {
	case config.EngineMIDI:
		e := midi.NewEngine(cfg.Audio.MIDIPort, uint8(cfg.Audio.MIDIChannel))
		return e, func() {
			e.Close()
			midi.CloseDriver()
		}
	default:
		s := synth.New(cfg.Audio.SampleRate)
		return s, func() { s.Close() }
	}
}

func loadTheme(cfg *config.Config) (*theme.Theme, error) {
	if cfg.UI.Palette == "" {
		return theme.New(nil), nil
	}
	p, err := theme.LoadGPL(cfg.UI.Palette)
	if err != nil {
		return nil, fmt.Errorf("palette: %w", err)
	}
	return theme.New(p), nil
}

func runEditor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := enableDebug(); err != nil {
		return err
	}
	defer debug.Disable()

	th, err := loadTheme(cfg)
	if err != nil {
		return err
	}
	engine, closeEngine := newEngine(cfg)
	defer closeEngine()

	debug.Log("main", "start engine=%s tempo=%v", cfg.Audio.Engine, cfg.Tempo)
	m := tui.NewModel(cfg.Session(), engine, th, tui.Options{
		FPS:        cfg.UI.FPS,
		CellWidth:  cfg.UI.CellWidth,
		CellHeight: cfg.UI.CellHeight,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	return nil
}

func runPorts(cmd *cobra.Command, args []string) error {
	fmt.Printf("(waiting up to %v...)\n", midi.PortTimeout)
	ports, err := midi.ListPorts(midi.PortTimeout)
	defer midi.CloseDriver()
	if err != nil {
		return fmt.Errorf("%w (try: sudo killall coreaudiod midiserver)", err)
	}

	fmt.Println("=== MIDI Input Ports ===")
	for i, name := range ports.In {
		fmt.Printf("  %d: %s\n", i, name)
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, name := range ports.Out {
		fmt.Printf("  %d: %s\n", i, name)
	}
	return nil
}

// runScale plays a fixed sequence through the transport without the
// terminal UI, driving the frame loop from a ticker
func runScale(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := enableDebug(); err != nil {
		return err
	}
	defer debug.Disable()

	engine, closeEngine := newEngine(cfg)
	defer closeEngine()

	frames := frame.NewLoop()
	seq := sequencer.New(cfg.Session(), engine, frames, nil)
	defer seq.Close()

	for i, pitch := range []int{60, 62, 64, 65, 67, 69, 71, 72} {
		if _, err := seq.Store().Create(pitch, float64(i)*0.5, 0.5, cfg.Velocity); err != nil {
			return err
		}
	}
	if err := seq.Play(); err != nil {
		return err
	}
	fmt.Printf("playing %d notes at %v bpm on %s\n", seq.Store().Len(), cfg.Tempo, cfg.Audio.Engine)

	var ended <-chan audio.Voice
	if n, ok := engine.(audio.Notifier); ok {
		ended = n.Ended()
	}
	ticker := time.NewTicker(time.Second / time.Duration(cfg.UI.FPS))
	defer ticker.Stop()

	for seq.Transport().State() == sequencer.Playing {
		select {
		case <-ticker.C:
			frames.Run()
		case v := <-ended:
			seq.VoiceEnded(v)
		}
	}
	// let the device play out its buffer
	time.Sleep(200 * time.Millisecond)
	return nil
}
