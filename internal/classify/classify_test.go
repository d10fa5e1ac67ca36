package classify

import (
	"math/rand"
	"testing"
)

func makeFrame(width, height int, fill func(x, y int) (r, g, b byte)) []byte {
	f := make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p := (y*width + x) * 4
			r, g, b := fill(x, y)
			f[p], f[p+1], f[p+2], f[p+3] = r, g, b, 255
		}
	}
	return f
}

func TestFrames_EmptyBatch(t *testing.T) {
	if _, err := Frames(nil, 16, 16); err != ErrEmptyBatch {
		t.Fatalf("err = %v, want ErrEmptyBatch", err)
	}
}

func TestFrames_UniformIsNotPhotographic(t *testing.T) {
	f := makeFrame(32, 32, func(x, y int) (byte, byte, byte) { return 128, 128, 128 })
	res, err := Frames([][]byte{f}, 32, 32)
	if err != nil {
		t.Fatal(err)
	}
	if res.Variance != 0 {
		t.Errorf("Variance = %v, want 0 for a uniform frame", res.Variance)
	}
	if res.Kind == Photographic {
		t.Errorf("Kind = %v; a flat frame cannot be photographic", res.Kind)
	}
}

func TestFrames_GradientIsSmooth(t *testing.T) {
	f := makeFrame(64, 64, func(x, y int) (byte, byte, byte) {
		v := byte(x * 255 / 63)
		return v, v, v
	})
	res, err := Frames([][]byte{f}, 64, 64)
	if err != nil {
		t.Fatal(err)
	}
	if res.Smoothness <= gradientSmooth {
		t.Errorf("Smoothness = %v, want > %v for a slow ramp", res.Smoothness, gradientSmooth)
	}
	if res.Kind != Gradient {
		t.Errorf("Kind = %v, want Gradient", res.Kind)
	}
}

func TestFrames_CheckerboardIsGraphic(t *testing.T) {
	f := makeFrame(64, 64, func(x, y int) (byte, byte, byte) {
		if (x+y)%2 == 0 {
			return 255, 255, 255
		}
		return 0, 0, 0
	})
	res, err := Frames([][]byte{f}, 64, 64)
	if err != nil {
		t.Fatal(err)
	}
	if res.EdgeStrength <= graphicEdges {
		t.Errorf("EdgeStrength = %v, want > %v for a checkerboard", res.EdgeStrength, graphicEdges)
	}
	if res.Kind != Graphic {
		t.Errorf("Kind = %v, want Graphic", res.Kind)
	}
}

func TestFrames_NoiseIsPhotographicOrMixed(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	// Blurred noise: random per 4x4 block keeps variance high and Sobel
	// response moderate, like photographic content.
	blocks := make([]byte, 16*16)
	for i := range blocks {
		blocks[i] = byte(rng.Intn(256))
	}
	f := makeFrame(64, 64, func(x, y int) (byte, byte, byte) {
		v := blocks[(y/4)*16+(x/4)]
		return v, v, v
	})
	res, err := Frames([][]byte{f}, 64, 64)
	if err != nil {
		t.Fatal(err)
	}
	if res.Variance < 0.01 {
		t.Errorf("Variance = %v, want noisy content to carry variance", res.Variance)
	}
	if res.Kind == Gradient {
		t.Errorf("Kind = Gradient for block noise")
	}
}

func TestFrames_SamplesAtMostEight(t *testing.T) {
	// 64 frames: only every 8th should be touched. Give non-sampled frames
	// a short buffer so they would panic if read.
	good := makeFrame(16, 16, func(x, y int) (byte, byte, byte) { return 100, 100, 100 })
	frames := make([][]byte, 64)
	for i := range frames {
		if i%8 == 0 {
			frames[i] = good
		} else {
			frames[i] = nil
		}
	}
	if _, err := Frames(frames, 16, 16); err != nil {
		t.Fatalf("sampling touched a non-sampled frame: %v", err)
	}
}

func TestSelectPattern(t *testing.T) {
	tests := []struct {
		kind Kind
		want Pattern
	}{
		{Photographic, PatternSTBN},
		{Graphic, PatternBayer},
		{Gradient, PatternBlueNoise},
		{Mixed, PatternComposite},
	}
	for _, tt := range tests {
		if got := SelectPattern(tt.kind); got != tt.want {
			t.Errorf("SelectPattern(%v) = %v, want %v", tt.kind, got, tt.want)
		}
	}
}
