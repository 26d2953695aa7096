// Package midi plays the sequencer through a MIDI output port.
package midi

import (
	"errors"
	"fmt"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// ErrTimeout is returned when the MIDI driver does not answer. CoreMIDI is
// known to hang; `sudo killall coreaudiod midiserver` clears it.
var ErrTimeout = errors.New("midi: driver timeout")

// PortTimeout bounds every port enumeration
const PortTimeout = 3 * time.Second

// Ports lists input and output port names
type Ports struct {
	In  []string
	Out []string
}

// ListPorts enumerates ports, giving up after timeout
func ListPorts(timeout time.Duration) (Ports, error) {
	ch := make(chan Ports, 1)
	go func() {
		var p Ports
		for _, in := range gomidi.GetInPorts() {
			p.In = append(p.In, in.String())
		}
		for _, out := range gomidi.GetOutPorts() {
			p.Out = append(p.Out, out.String())
		}
		ch <- p
	}()

	select {
	case p := <-ch:
		return p, nil
	case <-time.After(timeout):
		return Ports{}, ErrTimeout
	}
}

// findOut picks the output port named name: an exact match first, then a
// case-insensitive substring. An empty name takes the first port.
func findOut(name string) (drivers.Out, error) {
	outs := gomidi.GetOutPorts()
	if len(outs) == 0 {
		return nil, errors.New("no MIDI output ports")
	}
	if name == "" {
		return outs[0], nil
	}
	for _, out := range outs {
		if out.String() == name {
			return out, nil
		}
	}
	lower := strings.ToLower(name)
	for _, out := range outs {
		if strings.Contains(strings.ToLower(out.String()), lower) {
			return out, nil
		}
	}
	return nil, fmt.Errorf("no MIDI output port matching %q", name)
}

// openPort opens a sender for the named output port
func openPort(name string) (func(gomidi.Message) error, error) {
	type result struct {
		send func(gomidi.Message) error
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		out, err := findOut(name)
		if err != nil {
			ch <- result{err: err}
			return
		}
		send, err := gomidi.SendTo(out)
		ch <- result{send: send, err: err}
	}()

	select {
	case r := <-ch:
		return r.send, r.err
	case <-time.After(PortTimeout):
		return nil, ErrTimeout
	}
}

// CloseDriver releases the MIDI driver
func CloseDriver() {
	gomidi.CloseDriver()
}
