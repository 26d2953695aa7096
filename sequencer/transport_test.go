package sequencer

import (
	"errors"
	"testing"

	"go-pianoroll/audio"
)

// At the default 120 BPM one beat is half a second.

func TestPlaySchedulesBatch(t *testing.T) {
	r := newRig()
	st := r.seq.Store()
	st.Create(60, 0, 1, 100)
	st.Create(64, 2, 0.5, 64)
	r.engine.now = 10

	if err := r.seq.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	tr := r.seq.Transport()
	if tr.State() != Playing {
		t.Fatalf("state = %v", tr.State())
	}
	if tr.EndBeat() != 2.5 {
		t.Errorf("end = %v, want 2.5", tr.EndBeat())
	}

	tones := r.engine.notesOnly()
	want := []tone{
		{freq: audio.Frequency(60), gain: audio.Gain(100), startAt: 10, duration: 0.5},
		{freq: audio.Frequency(64), gain: audio.Gain(64), startAt: 11, duration: 0.25},
	}
	if len(tones) != len(want) {
		t.Fatalf("scheduled %d tones, want %d", len(tones), len(want))
	}
	for i, w := range want {
		g := tones[i]
		if !approx(g.freq, w.freq) || !approx(g.gain, w.gain) || !approx(g.startAt, w.startAt) || !approx(g.duration, w.duration) {
			t.Errorf("tone %d = %+v, want %+v", i, g, w)
		}
	}
	if !r.frames.Pending() {
		t.Error("no frame requested")
	}
}

func TestPlayUsesEffectiveNotes(t *testing.T) {
	r := newRig()
	r.seq.Store().Create(72, 0, 3, 20)
	r.seq.ToggleLayer(LayerDuration)
	r.seq.ToggleLayer(LayerVelocity)
	r.seq.Play()

	tones := r.engine.notesOnly()
	if len(tones) != 1 {
		t.Fatalf("scheduled %d tones", len(tones))
	}
	if !approx(tones[0].duration, 0.5) || !approx(tones[0].gain, audio.Gain(100)) {
		t.Errorf("tone %+v, want default duration and velocity", tones[0])
	}
	if !approx(tones[0].freq, audio.Frequency(72)) {
		t.Errorf("pitch layer is on, stored pitch should sound")
	}
}

func TestPauseResumePlaysRemainder(t *testing.T) {
	r := newRig()
	r.seq.Store().Create(60, 0, 1, 100)
	r.seq.Store().Create(62, 1, 1, 100)
	tr := r.seq.Transport()

	r.seq.Play()
	r.advance(0.75)
	if !approx(tr.Playhead(), 1.5) {
		t.Fatalf("playhead = %v, want 1.5", tr.Playhead())
	}
	r.seq.Pause()
	if tr.State() != Paused || !approx(tr.Playhead(), 1.5) {
		t.Fatalf("after pause: %v at %v", tr.State(), tr.Playhead())
	}
	if len(r.engine.live) != 0 {
		t.Errorf("%d voices still live after pause", len(r.engine.live))
	}
	if r.frames.Pending() {
		t.Error("frame callback survived pause")
	}

	before := len(r.engine.tones)
	r.seq.Play()
	resumed := r.engine.tones[before:]
	if len(resumed) != 1 {
		t.Fatalf("resume scheduled %d tones, want 1", len(resumed))
	}
	got := resumed[0]
	if !approx(got.freq, audio.Frequency(62)) || !approx(got.startAt, r.engine.now) || !approx(got.duration, 0.25) {
		t.Errorf("resumed tone %+v, want pitch 62 now for 0.25s", got)
	}
}

func TestPlayheadFollowsClock(t *testing.T) {
	r := newRig()
	r.seq.Store().Create(60, 0, 8, 100)
	r.seq.Play()

	// a long stall between frames must not slow the playhead down
	r.advance(1.3)
	if got := r.seq.Transport().Playhead(); !approx(got, 2.6) {
		t.Errorf("playhead = %v, want 2.6", got)
	}
	r.advance(0.2)
	if got := r.seq.Transport().Playhead(); !approx(got, 3) {
		t.Errorf("playhead = %v, want 3", got)
	}
}

func TestAutoStopAtEnd(t *testing.T) {
	r := newRig()
	r.seq.Store().Create(60, 0, 1, 100)
	r.seq.Play()
	r.advance(0.25)
	if r.seq.Transport().State() != Playing {
		t.Fatal("stopped early")
	}
	r.advance(0.25)
	tr := r.seq.Transport()
	if tr.State() != Stopped || tr.Playhead() != 0 {
		t.Errorf("after end: %v at %v", tr.State(), tr.Playhead())
	}
	if r.frames.Pending() {
		t.Error("frame callback left after auto-stop")
	}
}

func TestPauseAfterEndStops(t *testing.T) {
	r := newRig()
	r.seq.Store().Create(60, 0, 1, 100)
	r.seq.Play()
	r.engine.now = 0.6 // past the end, no frame yet
	r.seq.Pause()
	if s := r.seq.Transport().State(); s != Stopped {
		t.Errorf("state = %v, want stopped", s)
	}
}

func TestStopIdempotent(t *testing.T) {
	r := newRig()
	r.seq.Store().Create(60, 0, 4, 100)
	r.seq.Play()
	r.advance(0.5)

	r.seq.Stop()
	tr := r.seq.Transport()
	if tr.State() != Stopped || tr.Playhead() != 0 {
		t.Fatalf("after stop: %v at %v", tr.State(), tr.Playhead())
	}
	cancelled := len(r.engine.cancelled)
	redraws := r.rec.count

	r.seq.Stop()
	if len(r.engine.cancelled) != cancelled || r.rec.count != redraws {
		t.Error("second stop had side effects")
	}
}

func TestPlayWithNothingToPlay(t *testing.T) {
	r := newRig()
	if err := r.seq.Play(); err != nil {
		t.Fatalf("Play on empty store: %v", err)
	}
	if r.seq.Transport().State() != Stopped || len(r.engine.tones) != 0 {
		t.Error("empty store started playback")
	}
	if r.frames.Pending() {
		t.Error("frame requested for empty playback")
	}
}

func TestPlayWhilePlaying(t *testing.T) {
	r := newRig()
	r.seq.Store().Create(60, 0, 4, 100)
	r.seq.Play()
	n := len(r.engine.tones)
	r.seq.Play()
	if len(r.engine.tones) != n {
		t.Error("second Play rescheduled the batch")
	}
}

func TestTogglePlay(t *testing.T) {
	r := newRig()
	r.seq.Store().Create(60, 0, 4, 100)
	tr := r.seq.Transport()

	steps := []TransportState{Playing, Paused, Playing}
	for i, want := range steps {
		if err := r.seq.TogglePlay(); err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
		if tr.State() != want {
			t.Errorf("toggle %d: state %v, want %v", i, tr.State(), want)
		}
		r.advance(0.1)
	}
}

func TestPlayEngineUnavailable(t *testing.T) {
	r := newRig()
	r.seq.Store().Create(60, 0, 1, 100)
	r.engine.resumeErr = errNoDevice

	err := r.seq.Play()
	if !errors.Is(err, ErrEngineUnavailable) {
		t.Fatalf("Play = %v, want ErrEngineUnavailable", err)
	}
	if r.seq.Transport().State() != Stopped || len(r.engine.tones) != 0 {
		t.Error("failed play changed state")
	}
}

func TestPlayPartialBatchCancelled(t *testing.T) {
	r := newRig()
	r.seq.Store().Create(60, 0, 1, 100)
	r.seq.Store().Create(62, 1, 1, 100)
	r.engine.failAfter = 1

	err := r.seq.Play()
	if !errors.Is(err, ErrEngineUnavailable) || !errors.Is(err, errNoDevice) {
		t.Fatalf("Play = %v", err)
	}
	if len(r.engine.live) != 0 {
		t.Errorf("%d voices from the failed batch still live", len(r.engine.live))
	}
	tr := r.seq.Transport()
	if tr.State() != Stopped || tr.Voices() != 0 || r.frames.Pending() {
		t.Error("failed play left transport armed")
	}
}

func TestMetronomeClicksOncePerBeat(t *testing.T) {
	r := newRig()
	r.seq.Store().Create(60, 0, 4, 100)
	r.seq.ToggleMetronome()
	r.seq.Play()

	for i := 0; i < 100 && r.seq.Transport().State() == Playing; i++ {
		r.advance(0.1)
	}
	if s := r.seq.Transport().State(); s != Stopped {
		t.Fatalf("never reached the end: %v", s)
	}

	clicks := r.engine.clicks()
	if len(clicks) != 4 {
		t.Fatalf("%d clicks, want 4", len(clicks))
	}
	for i, c := range clicks {
		if !approx(c.startAt, float64(i)*0.5) {
			t.Errorf("click %d at %v, want %v", i, c.startAt, float64(i)*0.5)
		}
		wantHz := clickHz
		if i == 0 {
			wantHz = accentHz
		}
		if c.freq != wantHz {
			t.Errorf("click %d freq %v, want %v", i, c.freq, wantHz)
		}
	}
}

func TestMetronomeResumeMidBeat(t *testing.T) {
	r := newRig()
	r.seq.Store().Create(60, 0, 4, 100)
	r.seq.ToggleMetronome()
	r.seq.Play()
	r.advance(0.6) // beat 1.2
	r.seq.Pause()

	before := len(r.engine.clicks())
	r.seq.Play()
	clicks := r.engine.clicks()[before:]
	if len(clicks) != 1 {
		t.Fatalf("resume announced %d clicks, want 1", len(clicks))
	}
	// next boundary is beat 2, 0.8 beats ahead
	if !approx(clicks[0].startAt, r.engine.now+0.4) {
		t.Errorf("click at %v, want %v", clicks[0].startAt, r.engine.now+0.4)
	}
}

func TestTempoChangeRetimes(t *testing.T) {
	r := newRig()
	id, _ := r.seq.Store().Create(60, 0, 4, 100)
	before, _ := r.seq.Store().Get(id)
	r.seq.Play()
	r.advance(0.5) // beat 1
	first := r.engine.tones[0].voice

	if err := r.seq.SetTempo(60); err != nil {
		t.Fatalf("SetTempo: %v", err)
	}
	tr := r.seq.Transport()
	if tr.State() != Playing || !approx(tr.Playhead(), 1) {
		t.Fatalf("after retime: %v at %v", tr.State(), tr.Playhead())
	}
	if r.engine.live[first] {
		t.Error("old batch still live")
	}
	last := r.engine.tones[len(r.engine.tones)-1]
	if !approx(last.startAt, r.engine.now) || !approx(last.duration, 3) {
		t.Errorf("rescheduled tone %+v, want now for 3s", last)
	}
	if after, _ := r.seq.Store().Get(id); after != before {
		t.Errorf("tempo change edited the note: %+v -> %+v", before, after)
	}

	r.advance(1) // one beat at 60 BPM
	if !approx(tr.Playhead(), 2) {
		t.Errorf("playhead = %v, want 2", tr.Playhead())
	}
}

func TestTempoChangeWhilePaused(t *testing.T) {
	r := newRig()
	r.seq.Store().Create(60, 0, 4, 100)
	r.seq.Play()
	r.advance(0.5)
	r.seq.Pause()
	n := len(r.engine.tones)

	r.seq.SetTempo(90)
	tr := r.seq.Transport()
	if tr.State() != Paused || !approx(tr.Playhead(), 1) || len(r.engine.tones) != n {
		t.Error("tempo change disturbed a paused transport")
	}
}

func TestStaleFrameCallbackIgnored(t *testing.T) {
	r := newRig()
	r.seq.Store().Create(60, 0, 4, 100)
	tr := r.seq.Transport()

	r.seq.Play()
	stale := tr.token
	r.seq.Stop()
	r.seq.Play()

	r.engine.now = 0.25
	tr.onFrame(stale)
	if tr.Playhead() != 0 {
		t.Errorf("stale frame moved the playhead to %v", tr.Playhead())
	}
	if ran := r.frames.Run(); ran != 1 {
		t.Errorf("ran %d frame callbacks, want 1", ran)
	}
	if !approx(tr.Playhead(), 0.5) {
		t.Errorf("playhead = %v, want 0.5", tr.Playhead())
	}
}

func TestStaleVoiceEndedIgnored(t *testing.T) {
	r := newRig()
	r.seq.Store().Create(60, 0, 1, 100)
	tr := r.seq.Transport()

	r.seq.Play()
	old := r.engine.tones[0].voice
	r.seq.Stop()
	r.seq.Play()
	cur := r.engine.tones[1].voice

	if tr.VoiceEnded(old) {
		t.Error("voice from a stopped session accepted")
	}
	if tr.Voices() != 1 {
		t.Fatalf("outstanding = %d, want 1", tr.Voices())
	}
	r.seq.VoiceEnded(cur)
	if tr.Voices() != 0 {
		t.Errorf("outstanding = %d after end, want 0", tr.Voices())
	}
}

func TestFramesRedraw(t *testing.T) {
	r := newRig()
	r.seq.Store().Create(60, 0, 4, 100)
	r.seq.Play()
	n := r.rec.count
	r.advance(0.1)
	r.advance(0.1)
	if r.rec.count != n+2 {
		t.Errorf("redraws = %d, want %d", r.rec.count, n+2)
	}
	if r.rec.last.State != Playing || !approx(r.rec.last.Playhead, 0.4) {
		t.Errorf("last frame %v at %v", r.rec.last.State, r.rec.last.Playhead)
	}
}
