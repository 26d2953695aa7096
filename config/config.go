package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"go-pianoroll/grid"
	"go-pianoroll/sequencer"
)

// Engine names
const (
	EngineSynth = "synth"
	EngineMIDI  = "midi"
)

// GridConfig sets the editing geometry
type GridConfig struct {
	PixelsPerBeat  float64 `yaml:"pixelsPerBeat"`
	GridBeats      float64 `yaml:"gridBeats"`
	ResizeMarginPx float64 `yaml:"resizeMarginPx"`
	RowHeight      float64 `yaml:"rowHeight"`
	MinPitch       int     `yaml:"minPitch"`
	MaxPitch       int     `yaml:"maxPitch"`
}

// DefaultsConfig is what a disabled layer falls back to
type DefaultsConfig struct {
	Pitch         int     `yaml:"pitch"`
	DurationBeats float64 `yaml:"durationBeats"`
	Velocity      int     `yaml:"velocity"`
}

// LayersConfig sets which axes start enabled
type LayersConfig struct {
	Pitch    bool `yaml:"pitch"`
	Duration bool `yaml:"duration"`
	Velocity bool `yaml:"velocity"`
	Snap     bool `yaml:"snap"`
}

// UIConfig stores terminal preferences. A terminal cell stands for
// CellWidth x CellHeight grid pixels.
type UIConfig struct {
	FPS        int     `yaml:"fps"`
	CellWidth  float64 `yaml:"cellWidth"`
	CellHeight float64 `yaml:"cellHeight"`
	Palette    string  `yaml:"palette,omitempty"` // GIMP .gpl file
}

// AudioConfig selects and tunes the audio engine
type AudioConfig struct {
	Engine      string `yaml:"engine"`
	SampleRate  int    `yaml:"sampleRate"`
	MIDIPort    string `yaml:"midiPort,omitempty"`
	MIDIChannel int    `yaml:"midiChannel"`
}

// Config is the main configuration structure
type Config struct {
	Tempo       float64        `yaml:"tempo"`
	Velocity    int            `yaml:"velocity"`
	Metronome   bool           `yaml:"metronome"`
	BeatsPerBar int            `yaml:"beatsPerBar"`
	Grid        GridConfig     `yaml:"grid"`
	Defaults    DefaultsConfig `yaml:"defaults"`
	Layers      LayersConfig   `yaml:"layers"`
	UI          UIConfig       `yaml:"ui"`
	Audio       AudioConfig    `yaml:"audio"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Tempo:       120,
		Velocity:    100,
		BeatsPerBar: 4,
		Grid: GridConfig{
			PixelsPerBeat:  32,
			GridBeats:      grid.Sixteenth,
			ResizeMarginPx: 5,
			RowHeight:      grid.DefaultRowHeight,
			MinPitch:       grid.DefaultMinPitch,
			MaxPitch:       grid.DefaultMaxPitch,
		},
		Defaults: DefaultsConfig{
			Pitch:         60,
			DurationBeats: 1,
			Velocity:      100,
		},
		Layers: LayersConfig{Pitch: true, Duration: true, Velocity: true, Snap: true},
		UI: UIConfig{
			FPS:        60,
			CellWidth:  8,
			CellHeight: 10,
		},
		Audio: AudioConfig{
			Engine:     EngineSynth,
			SampleRate: 44100,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-pianoroll"), nil
}

// ConfigPath returns the full path to config.yaml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config from the default path, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. Fields missing from the file keep
// their defaults; a missing file is all defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to the default path
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects values the editor cannot work with
func (c *Config) Validate() error {
	g := c.Grid
	switch {
	case c.Tempo < sequencer.MinTempo || c.Tempo > sequencer.MaxTempo:
		return fmt.Errorf("tempo %v not in %d..%d", c.Tempo, sequencer.MinTempo, sequencer.MaxTempo)
	case c.Velocity < 0 || c.Velocity > sequencer.MaxVelocity:
		return fmt.Errorf("velocity %d not in 0..%d", c.Velocity, sequencer.MaxVelocity)
	case c.BeatsPerBar < 1:
		return fmt.Errorf("beatsPerBar %d must be positive", c.BeatsPerBar)
	case g.PixelsPerBeat <= 0 || g.GridBeats <= 0 || g.RowHeight <= 0:
		return errors.New("grid sizes must be positive")
	case g.ResizeMarginPx < 0:
		return fmt.Errorf("resizeMarginPx %v is negative", g.ResizeMarginPx)
	case g.MinPitch < 0 || g.MaxPitch > 127 || g.MinPitch > g.MaxPitch:
		return fmt.Errorf("pitch range %d..%d invalid", g.MinPitch, g.MaxPitch)
	case c.Defaults.Pitch < g.MinPitch || c.Defaults.Pitch > g.MaxPitch:
		return fmt.Errorf("default pitch %d outside %d..%d", c.Defaults.Pitch, g.MinPitch, g.MaxPitch)
	case c.Defaults.DurationBeats <= 0:
		return errors.New("default duration must be positive")
	case c.Defaults.Velocity < 0 || c.Defaults.Velocity > sequencer.MaxVelocity:
		return fmt.Errorf("default velocity %d not in 0..%d", c.Defaults.Velocity, sequencer.MaxVelocity)
	case c.UI.FPS < 1 || c.UI.FPS > 240:
		return fmt.Errorf("fps %d not in 1..240", c.UI.FPS)
	case c.UI.CellWidth <= 0 || c.UI.CellHeight <= 0:
		return errors.New("cell size must be positive")
	case c.Audio.Engine != EngineSynth && c.Audio.Engine != EngineMIDI:
		return fmt.Errorf("unknown engine %q", c.Audio.Engine)
	case c.Audio.SampleRate < 8000:
		return fmt.Errorf("sampleRate %d too low", c.Audio.SampleRate)
	case c.Audio.MIDIChannel < 0 || c.Audio.MIDIChannel > 15:
		return fmt.Errorf("midiChannel %d not in 0..15", c.Audio.MIDIChannel)
	}
	return nil
}

// Session builds the editing session the config describes
func (c *Config) Session() *sequencer.Session {
	s := sequencer.NewSession()
	s.Tempo = c.Tempo
	s.PixelsPerBeat = c.Grid.PixelsPerBeat
	s.GridBeats = c.Grid.GridBeats
	s.ResizeMarginPx = c.Grid.ResizeMarginPx
	s.RowHeight = c.Grid.RowHeight
	s.MinPitch = c.Grid.MinPitch
	s.MaxPitch = c.Grid.MaxPitch
	s.Layers = sequencer.Layers{
		Pitch:    c.Layers.Pitch,
		Duration: c.Layers.Duration,
		Velocity: c.Layers.Velocity,
		Snap:     c.Layers.Snap,
	}
	s.Defaults = sequencer.Defaults{
		Pitch:         c.Defaults.Pitch,
		DurationBeats: c.Defaults.DurationBeats,
		Velocity:      c.Defaults.Velocity,
	}
	s.Velocity = c.Velocity
	s.Metronome = c.Metronome
	s.BeatsPerBar = c.BeatsPerBar
	return s
}
