package sequencer

import "errors"

var (
	// ErrInvalidRange rejects a pitch, velocity, tempo or position outside
	// its bounds. Callers clamp before mutating; the store never does.
	ErrInvalidRange = errors.New("value out of range")

	// ErrEngineUnavailable means the audio engine could not be created or
	// resumed. Playback does not start and the editor stays usable.
	ErrEngineUnavailable = errors.New("audio engine unavailable")
)
