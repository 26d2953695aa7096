package grid

import (
	"math"
	"testing"
)

func TestPixelBeatRoundTrip(t *testing.T) {
	for _, ppb := range []float64{16, 32, 40, 50, 64} {
		m := NewMapper(120, ppb)
		for x := 0; x <= 2000; x += 7 {
			got := m.BeatToPixel(m.PixelToBeat(float64(x)))
			if math.Abs(got-float64(x)) > 1e-9 {
				t.Fatalf("ppb=%v: pixel %d round-tripped to %v", ppb, x, got)
			}
		}
	}
}

func TestPitchRowRoundTrip(t *testing.T) {
	m := NewMapper(120, 40)
	for p := m.MinPitch; p <= m.MaxPitch; p++ {
		if got := m.RowToPitch(m.PitchToRow(p)); got != p {
			t.Errorf("RowToPitch(PitchToRow(%d)) = %d", p, got)
		}
	}
}

func TestRowToPitch(t *testing.T) {
	m := NewMapper(120, 40)
	tests := []struct {
		row  float64
		want int
	}{
		{0, 84},
		{0.9, 84},
		{1, 83},
		{24.5, 60},
		{-3, 84},  // above the grid
		{200, 24}, // below the grid
	}
	for _, tt := range tests {
		if got := m.RowToPitch(tt.row); got != tt.want {
			t.Errorf("RowToPitch(%v) = %d, want %d", tt.row, got, tt.want)
		}
	}
}

func TestSecondsTempo(t *testing.T) {
	m := NewMapper(120, 40)
	if got := m.BeatToSeconds(1); got != 0.5 {
		t.Errorf("BeatToSeconds(1) at 120bpm = %v, want 0.5", got)
	}
	if got := m.SecondsToBeat(0.75); got != 1.5 {
		t.Errorf("SecondsToBeat(0.75) at 120bpm = %v, want 1.5", got)
	}

	// Tempo never moves a note on screen: pixel geometry only depends on zoom.
	slow := NewMapper(60, 40)
	for _, b := range []float64{0, 0.25, 1, 3.75} {
		if slow.BeatToPixel(b) != m.BeatToPixel(b) {
			t.Errorf("beat %v maps to different pixels at different tempi", b)
		}
		if slow.PixelToBeat(slow.BeatToPixel(b)) != b {
			t.Errorf("beat %v not recovered after tempo change", b)
		}
	}
}

func TestRows(t *testing.T) {
	m := NewMapper(120, 40)
	if got := m.Rows(); got != 61 {
		t.Errorf("Rows() = %d, want 61", got)
	}
	if got := m.RowToY(m.YToRow(125)); got != 125 {
		t.Errorf("RowToY(YToRow(125)) = %v", got)
	}
}
