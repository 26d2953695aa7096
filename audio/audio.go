// Package audio defines the contract between the sequencer core and a sound
// producing engine.
package audio

import "math"

// Voice identifies one scheduled or sounding tone inside an engine. Engines
// never reuse a Voice value within a process.
type Voice uint64

// NoVoice is the zero handle; engines never return it for a scheduled tone.
const NoVoice Voice = 0

// Engine schedules tones against its own monotonic clock. Times are in
// seconds on that clock.
type Engine interface {
	// Resume makes the engine ready to produce sound, creating the output
	// device on first use.
	Resume() error
	// Now returns the engine clock in seconds.
	Now() float64
	// ScheduleTone queues a tone starting at startAt and lasting duration.
	// gain is 0..1.
	ScheduleTone(freqHz, gain, startAt, duration float64) (Voice, error)
	// CancelVoice silences a voice immediately, whether it has started yet
	// or not. Cancelling an unknown or finished voice is a no-op.
	CancelVoice(v Voice)
}

// Notifier is implemented by engines that report finished voices. Ended
// voices are delivered asynchronously; consumers must hand them back to the
// event loop before touching sequencer state.
type Notifier interface {
	Ended() <-chan Voice
}

// Frequency returns the equal-tempered frequency of a MIDI pitch (A4 = 69 = 440Hz)
func Frequency(pitch int) float64 {
	return 440 * math.Pow(2, float64(pitch-69)/12)
}

// Pitch returns the nearest MIDI pitch for a frequency
func Pitch(freqHz float64) int {
	return int(math.Round(69 + 12*math.Log2(freqHz/440)))
}

// Gain maps a 0..127 velocity to 0..1
func Gain(velocity int) float64 {
	return float64(velocity) / 127
}
