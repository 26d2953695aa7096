package theme

import (
	"os"
	"path/filepath"
	"testing"
)

func TestVelocityRamp(t *testing.T) {
	tests := []struct {
		velocity int
		want     RGB
	}{
		{0, RGB{255, 255, 255}},
		{127, RGB{0, 170, 255}},
		{-5, RGB{255, 255, 255}},
		{500, RGB{0, 170, 255}},
	}
	for _, tt := range tests {
		if got := VelocityRGB(tt.velocity); got != tt.want {
			t.Errorf("VelocityRGB(%d) = %v, want %v", tt.velocity, got, tt.want)
		}
	}

	// louder is darker
	prev := 3 * 255
	for v := 0; v <= 127; v += 16 {
		c := VelocityRGB(v)
		sum := int(c[0]) + int(c[1]) + int(c[2])
		if sum > prev {
			t.Errorf("velocity %d brighter than a quieter note", v)
		}
		prev = sum
	}
}

func TestLookupEnds(t *testing.T) {
	p := &Palette{Colors: []RGB{{0, 0, 0}, {255, 255, 255}}}
	if got := p.Lookup(-1); got != (RGB{0, 0, 0}) {
		t.Errorf("Lookup(-1) = %v", got)
	}
	if got := p.Lookup(2); got != (RGB{255, 255, 255}) {
		t.Errorf("Lookup(2) = %v", got)
	}
	mid := p.Lookup(0.5)
	if mid[0] == 0 || mid[0] == 255 || mid[0] != mid[1] || mid[1] != mid[2] {
		t.Errorf("Lookup(0.5) = %v, want a mid grey", mid)
	}
}

func TestDefaultPalette(t *testing.T) {
	p := DefaultPalette()
	if len(p.Colors) != len(plasma) {
		t.Fatalf("%d colors", len(p.Colors))
	}
	if got := p.Colors[0].Hex(); got != "#0d0887" {
		t.Errorf("first color %s", got)
	}
}

func TestLoadGPL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.gpl")
	data := "GIMP Palette\nName: Test\nColumns: 2\n# comment\n255 0 0\tred\n0 0 255 blue\n300 0 0 bad\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	p, err := LoadGPL(path)
	if err != nil {
		t.Fatalf("LoadGPL: %v", err)
	}
	if p.Name != "Test" || len(p.Colors) != 2 || p.Colors[1] != (RGB{0, 0, 255}) {
		t.Errorf("palette %+v", p)
	}

	empty := filepath.Join(t.TempDir(), "empty.gpl")
	os.WriteFile(empty, []byte("GIMP Palette\n"), 0644)
	if _, err := LoadGPL(empty); err == nil {
		t.Error("empty palette accepted")
	}
}
