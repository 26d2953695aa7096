package grid

import "testing"

func TestSnapBeat(t *testing.T) {
	tests := []struct {
		b, grid, want float64
	}{
		{0, 0.25, 0},
		{0.1, 0.25, 0},
		{0.13, 0.25, 0.25},
		{1.37, 0.25, 1.25},
		{1.38, 0.25, 1.5},
		{2.9, 1, 3},
		{0.4, 0.5, 0.5},
	}
	for _, tt := range tests {
		if got := SnapBeat(tt.b, tt.grid); got != tt.want {
			t.Errorf("SnapBeat(%v, %v) = %v, want %v", tt.b, tt.grid, got, tt.want)
		}
	}
}

func TestSnapBeatIdempotent(t *testing.T) {
	grids := []float64{0.25, 0.5, 1, 1.0 / 3, 0.1, 0.75}
	for _, g := range grids {
		for i := -400; i <= 400; i++ {
			x := float64(i) * 0.0137
			once := SnapBeat(x, g)
			if twice := SnapBeat(once, g); twice != once {
				t.Fatalf("SnapBeat not idempotent for x=%v g=%v: %v then %v", x, g, once, twice)
			}
		}
	}
}

func TestSnapDurationFloor(t *testing.T) {
	tests := []struct {
		d, grid, want float64
	}{
		{0, 0.25, 0.25},
		{-1, 0.25, 0.25},
		{0.1, 0.25, 0.25},
		{0.6, 0.25, 0.5},
		{3.3, 1, 3},
	}
	for _, tt := range tests {
		if got := SnapDuration(tt.d, tt.grid); got != tt.want {
			t.Errorf("SnapDuration(%v, %v) = %v, want %v", tt.d, tt.grid, got, tt.want)
		}
	}
}

func TestQuantizer(t *testing.T) {
	t.Run("enabled", func(t *testing.T) {
		q := Quantizer{Grid: 0.25, Enabled: true, Min: 0.025}
		if got := q.Beat(0.3); got != 0.25 {
			t.Errorf("Beat(0.3) = %v", got)
		}
		if got := q.Duration(0.01); got != 0.25 {
			t.Errorf("Duration(0.01) = %v", got)
		}
		if got := q.MinDuration(); got != 0.25 {
			t.Errorf("MinDuration() = %v", got)
		}
	})
	t.Run("disabled", func(t *testing.T) {
		q := Quantizer{Grid: 0.25, Enabled: false, Min: 0.025}
		if got := q.Beat(0.3); got != 0.3 {
			t.Errorf("Beat(0.3) = %v", got)
		}
		if got := q.Duration(0.3); got != 0.3 {
			t.Errorf("Duration(0.3) = %v", got)
		}
		if got := q.Duration(-2); got != 0.025 {
			t.Errorf("Duration(-2) = %v, want floor", got)
		}
		if got := q.MinDuration(); got != 0.025 {
			t.Errorf("MinDuration() = %v", got)
		}
	})
}
