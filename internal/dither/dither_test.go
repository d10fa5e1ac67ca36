package dither

import (
	"bytes"
	"testing"

	"github.com/EduardoPava11/RGB2GIF2VOXEL-sub002/internal/classify"
	"github.com/EduardoPava11/RGB2GIF2VOXEL-sub002/internal/palette"
	"github.com/EduardoPava11/RGB2GIF2VOXEL-sub002/internal/pattern"
)

var testBank = pattern.NewBank(pattern.Config{Size: 16, Iterations: 25})

func uniformRGBA(w, h int, r, g, b byte) []byte {
	f := make([]byte, w*h*4)
	for p := 0; p < len(f); p += 4 {
		f[p], f[p+1], f[p+2], f[p+3] = r, g, b, 255
	}
	return f
}

func TestFrame_Deterministic(t *testing.T) {
	frame := make([]byte, 32*32*4)
	for i := range frame {
		frame[i] = byte(i * 37)
	}
	pal := palette.Build(frame)

	for _, pat := range []classify.Pattern{
		classify.PatternSTBN, classify.PatternBayer,
		classify.PatternBlueNoise, classify.PatternComposite,
	} {
		d, err := New(testBank, pat, Options{})
		if err != nil {
			t.Fatal(err)
		}
		a, err := d.Frame(frame, 32, 32, 3, pal)
		if err != nil {
			t.Fatal(err)
		}
		b, err := d.Frame(frame, 32, 32, 3, pal)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(a, b) {
			t.Errorf("pattern %v: two runs differ", pat)
		}
	}
}

func TestFrame_UniformGrayMajority(t *testing.T) {
	frame := uniformRGBA(32, 32, 128, 128, 128)
	pal := palette.Build(frame)

	d, err := New(testBank, classify.PatternSTBN, Options{})
	if err != nil {
		t.Fatal(err)
	}
	idx, err := d.Frame(frame, 32, 32, 0, pal)
	if err != nil {
		t.Fatal(err)
	}

	// Dither perturbation may push a minority of pixels to neighboring
	// entries, but the gray entry itself must dominate.
	grayHits := 0
	for _, i := range idx {
		if pal[i] == (palette.RGB{R: 128, G: 128, B: 128}) {
			grayHits++
		}
	}
	if grayHits*2 < len(idx) {
		t.Errorf("gray entry selected for %d/%d pixels, want a majority", grayHits, len(idx))
	}
}

func TestFrame_IndicesInRange(t *testing.T) {
	frame := make([]byte, 16*16*4)
	for i := range frame {
		frame[i] = byte(255 - i)
	}
	pal := palette.Build(frame)

	d, err := New(testBank, classify.PatternComposite, Options{})
	if err != nil {
		t.Fatal(err)
	}
	idx, err := d.Frame(frame, 16, 16, 0, pal)
	if err != nil {
		t.Fatal(err)
	}
	if len(idx) != 16*16 {
		t.Fatalf("len = %d, want 256", len(idx))
	}
	for i, v := range idx {
		if int(v) >= len(pal) {
			t.Fatalf("idx[%d] = %d exceeds palette", i, v)
		}
	}
}

func TestFrame_TemporalRotation(t *testing.T) {
	// A gradient frame dithered at different frame indices should not
	// produce identical index buffers: the mask rotates over time.
	frame := make([]byte, 32*32*4)
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			p := (y*32 + x) * 4
			v := byte(x * 8)
			frame[p], frame[p+1], frame[p+2], frame[p+3] = v, v, v, 255
		}
	}
	pal := palette.Build(frame)

	d, err := New(testBank, classify.PatternSTBN, Options{})
	if err != nil {
		t.Fatal(err)
	}
	f0, err := d.Frame(frame, 32, 32, 0, pal)
	if err != nil {
		t.Fatal(err)
	}
	f1, err := d.Frame(frame, 32, 32, 1, pal)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(f0, f1) {
		t.Error("frame 0 and frame 1 produced identical dither output")
	}
}

func TestNearestColor_TieBreaksLowestIndex(t *testing.T) {
	pal := []palette.RGB{
		{R: 10}, // distance 100 from origin+r=0? compute below
		{B: 10}, // same distance from a gray probe
		{R: 10}, // duplicate of entry 0
	}
	// Probe (0,0,0): entries 0 and 1 are equidistant (100), entry 2
	// duplicates entry 0. The first-found entry must win.
	if got := nearestColor(0, 0, 0, pal); got != 0 {
		t.Errorf("nearestColor = %d, want 0 on tie", got)
	}
}

func TestLocalVariance_FlatIsZero(t *testing.T) {
	lum := make([]float32, 16*16)
	for i := range lum {
		lum[i] = 77
	}
	v := localVariance(lum, 16, 16)
	for i, x := range v {
		if x != 0 {
			t.Fatalf("variance[%d] = %v, want 0 for a flat plane", i, x)
		}
	}
}

func TestLocalVariance_EdgeRaisesVariance(t *testing.T) {
	// Left half black, right half white: variance peaks near the seam.
	const w, h = 16, 16
	lum := make([]float32, w*h)
	for y := 0; y < h; y++ {
		for x := w / 2; x < w; x++ {
			lum[y*w+x] = 255
		}
	}
	v := localVariance(lum, w, h)
	center := v[(h/2)*w+w/2]
	corner := v[0]
	if center <= corner {
		t.Errorf("variance at seam (%v) not above flat corner (%v)", center, corner)
	}
	if corner != 0 {
		t.Errorf("corner variance = %v, want 0", corner)
	}
}

func TestKernel_RejectsShortBuffers(t *testing.T) {
	k, err := NewKernel()
	if err != nil {
		t.Fatal(err)
	}
	_, err = k.Run(&Job{
		RGBA:       make([]byte, 8),
		Width:      4,
		Height:     4,
		Thresholds: make([]float32, 16),
		Strength:   make([]float32, 16),
		Palette:    []palette.RGB{{}},
	})
	if err == nil {
		t.Fatal("Run accepted a truncated RGBA buffer")
	}
}
