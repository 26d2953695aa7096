package tui

import "github.com/charmbracelet/bubbles/key"

func binding(help string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], help))
}

type keyMap struct {
	Play      key.Binding
	Stop      key.Binding
	TempoUp   key.Binding
	TempoDown key.Binding
	Pitch     key.Binding
	Duration  key.Binding
	Velocity  key.Binding
	Snap      key.Binding
	VelUp     key.Binding
	VelDown   key.Binding
	Metronome key.Binding
	Grid      key.Binding
	ZoomIn    key.Binding
	ZoomOut   key.Binding
	Delete    key.Binding
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Play:      key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "play/pause")),
		Stop:      binding("stop", "s"),
		TempoUp:   binding("tempo +5", "+", "="),
		TempoDown: binding("tempo -5", "-", "_"),
		Pitch:     binding("pitch layer", "1"),
		Duration:  binding("duration layer", "2"),
		Velocity:  binding("velocity layer", "3"),
		Snap:      binding("snap", "4"),
		VelUp:     binding("velocity +8", "]"),
		VelDown:   binding("velocity -8", "["),
		Metronome: binding("metronome", "m"),
		Grid:      binding("grid 1/16 1/8 1/4", "g"),
		ZoomIn:    binding("zoom in", "."),
		ZoomOut:   binding("zoom out", ","),
		Delete:    binding("delete selected", "x", "delete", "backspace"),
		Up:        binding("scroll up", "up", "k"),
		Down:      binding("scroll down", "down", "j"),
		Left:      binding("scroll left", "left", "h"),
		Right:     binding("scroll right", "right", "l"),
		Help:      binding("more keys", "?"),
		Quit:      binding("quit", "q", "ctrl+c"),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Stop, k.TempoUp, k.TempoDown, k.Delete, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Play, k.Stop, k.TempoUp, k.TempoDown, k.Metronome},
		{k.Pitch, k.Duration, k.Velocity, k.Snap},
		{k.VelUp, k.VelDown, k.Delete, k.Grid},
		{k.Up, k.Down, k.Left, k.Right, k.ZoomIn, k.ZoomOut},
		{k.Help, k.Quit},
	}
}
