package midi

import (
	"fmt"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-pianoroll/audio"
	"go-pianoroll/debug"
)

// OpenFunc opens a sender for a port name
type OpenFunc func(port string) (func(gomidi.Message) error, error)

type voice struct {
	key      uint8
	on, off  *time.Timer
	sounding bool
}

// Engine is an audio.Engine that turns tones into note on/off messages.
// Frequencies are mapped back to the nearest key and gain to velocity. The
// clock is wall time since the engine was created; timers fire on their own
// goroutines, so state sits behind mu.
type Engine struct {
	port    string
	channel uint8
	open    OpenFunc
	start   time.Time

	mu     sync.Mutex
	send   func(gomidi.Message) error
	next   audio.Voice
	voices map[audio.Voice]*voice

	ended chan audio.Voice
}

var _ audio.Engine = (*Engine)(nil)
var _ audio.Notifier = (*Engine)(nil)

// NewEngine creates an engine for the named output port on channel 0..15.
// The port is opened on the first Resume.
func NewEngine(port string, channel uint8) *Engine {
	return NewEngineWith(port, channel, openPort)
}

// NewEngineWith creates an engine that opens its port through open
func NewEngineWith(port string, channel uint8, open OpenFunc) *Engine {
	return &Engine{
		port:    port,
		channel: channel & 0x0F,
		open:    open,
		start:   time.Now(),
		voices:  make(map[audio.Voice]*voice),
		ended:   make(chan audio.Voice, 256),
	}
}

func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.send != nil {
		return nil
	}
	send, err := e.open(e.port)
	if err != nil {
		return fmt.Errorf("cannot open MIDI port %q: %w", e.port, err)
	}
	e.send = send
	debug.Log("midi", "opened port=%q channel=%d", e.port, e.channel)
	return nil
}

func (e *Engine) Now() float64 {
	return time.Since(e.start).Seconds()
}

func (e *Engine) ScheduleTone(freqHz, gain, startAt, duration float64) (audio.Voice, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.send == nil {
		return audio.NoVoice, fmt.Errorf("MIDI port %q not open", e.port)
	}

	key := uint8(max(0, min(127, audio.Pitch(freqHz))))
	vel := uint8(max(1, min(127, int(gain*127+0.5))))
	delay := seconds(startAt - e.Now())
	length := seconds(duration)

	e.next++
	id := e.next
	v := &voice{key: key}
	v.on = time.AfterFunc(delay, func() { e.noteOn(id, vel) })
	v.off = time.AfterFunc(delay+length, func() { e.noteOff(id) })
	e.voices[id] = v
	return id, nil
}

// CancelVoice stops a pending voice, or releases a sounding one
func (e *Engine) CancelVoice(id audio.Voice) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.voices[id]
	if !ok {
		return
	}
	v.on.Stop()
	v.off.Stop()
	if v.sounding {
		e.sendLocked(gomidi.NoteOff(e.channel, v.key))
	}
	delete(e.voices, id)
}

func (e *Engine) Ended() <-chan audio.Voice {
	return e.ended
}

// Close releases every sounding note
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id, v := range e.voices {
		v.on.Stop()
		v.off.Stop()
		if v.sounding {
			e.sendLocked(gomidi.NoteOff(e.channel, v.key))
		}
		delete(e.voices, id)
	}
	return nil
}

func (e *Engine) noteOn(id audio.Voice, vel uint8) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.voices[id]
	if !ok {
		return
	}
	v.sounding = true
	e.sendLocked(gomidi.NoteOn(e.channel, v.key, vel))
}

func (e *Engine) noteOff(id audio.Voice) {
	e.mu.Lock()
	v, ok := e.voices[id]
	if !ok {
		e.mu.Unlock()
		return
	}
	delete(e.voices, id)
	if v.sounding {
		e.sendLocked(gomidi.NoteOff(e.channel, v.key))
	}
	e.mu.Unlock()

	select {
	case e.ended <- id:
	default:
	}
}

func (e *Engine) sendLocked(msg gomidi.Message) {
	if err := e.send(msg); err != nil {
		debug.Log("midi", "send %s: %v", msg, err)
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(max(0, s) * float64(time.Second))
}
