// Package synth is a small software synthesizer: a sine mixer rendered on
// demand by the audio device. The number of frames rendered is the clock
// the sequencer schedules against.
package synth

import (
	"encoding/binary"
	"math"
	"sync"

	"go-pianoroll/audio"
)

const (
	channels      = 2
	bytesPerFrame = channels * 4 // float32 LE
	rampSeconds   = 0.005
	masterGain    = 0.3
	endedBuffer   = 256
)

type voice struct {
	freq  float64
	gain  float64
	start int64 // frames
	end   int64
	phase float64
}

// Mixer renders scheduled sine voices as interleaved stereo float32. It is
// read from the device goroutine and scheduled from the event loop, so all
// state sits behind mu.
type Mixer struct {
	mu     sync.Mutex
	rate   int
	frame  int64 // frames rendered so far
	next   audio.Voice
	voices map[audio.Voice]*voice
	ramp   int64
	buf    []float64

	ended chan audio.Voice
}

// NewMixer creates a silent mixer at sampleRate
func NewMixer(sampleRate int) *Mixer {
	return &Mixer{
		rate:   sampleRate,
		voices: make(map[audio.Voice]*voice),
		ramp:   max(1, int64(rampSeconds*float64(sampleRate))),
		ended:  make(chan audio.Voice, endedBuffer),
	}
}

// SampleRate returns the rate the mixer renders at
func (m *Mixer) SampleRate() int {
	return m.rate
}

// Now returns the mixer clock in seconds
func (m *Mixer) Now() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return float64(m.frame) / float64(m.rate)
}

// Schedule adds a voice. A start time already in the past starts at the
// next rendered frame.
func (m *Mixer) Schedule(freqHz, gain, startAt, duration float64) audio.Voice {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := max(m.frame, int64(math.Round(startAt*float64(m.rate))))
	length := max(1, int64(math.Round(duration*float64(m.rate))))
	m.next++
	m.voices[m.next] = &voice{
		freq:  freqHz,
		gain:  gain,
		start: start,
		end:   start + length,
	}
	return m.next
}

// Cancel drops a voice without an ended notification
func (m *Mixer) Cancel(v audio.Voice) {
	m.mu.Lock()
	delete(m.voices, v)
	m.mu.Unlock()
}

// Active returns how many voices are scheduled or sounding
func (m *Mixer) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.voices)
}

// Ended delivers voices that played to completion. Notifications are
// dropped if nobody drains the channel.
func (m *Mixer) Ended() <-chan audio.Voice {
	return m.ended
}

// Read renders len(p)/8 frames into p
func (m *Mixer) Read(p []byte) (int, error) {
	n := len(p) / bytesPerFrame

	m.mu.Lock()
	defer m.mu.Unlock()

	if cap(m.buf) < n {
		m.buf = make([]float64, n)
	}
	buf := m.buf[:n]
	clear(buf)

	from, to := m.frame, m.frame+int64(n)
	for id, v := range m.voices {
		if v.start < to && v.end > from {
			m.render(v, buf, from)
		}
		if v.end <= to {
			delete(m.voices, id)
			select {
			case m.ended <- id:
			default:
			}
		}
	}
	m.frame = to

	for i, s := range buf {
		bits := math.Float32bits(float32(max(-1, min(1, s*masterGain))))
		off := i * bytesPerFrame
		binary.LittleEndian.PutUint32(p[off:], bits)
		binary.LittleEndian.PutUint32(p[off+4:], bits)
	}
	return n * bytesPerFrame, nil
}

func (m *Mixer) render(v *voice, buf []float64, from int64) {
	step := 2 * math.Pi * v.freq / float64(m.rate)
	lo := max(v.start, from)
	hi := min(v.end, from+int64(len(buf)))
	for f := lo; f < hi; f++ {
		env := min(1, float64(f-v.start+1)/float64(m.ramp), float64(v.end-f)/float64(m.ramp))
		buf[f-from] += v.gain * env * math.Sin(v.phase)
		v.phase += step
	}
	v.phase = math.Mod(v.phase, 2*math.Pi)
}
