package pattern

import (
	"math"
	"math/rand"
	"testing"
)

func TestGenerateBayer_Order1(t *testing.T) {
	got := generateBayer(1)
	// The classic 2x2 matrix [[0,2],[3,1]] normalized by 4.
	want := []float32{0, 0.5, 0.75, 0.25}
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("bayer[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestGenerateBayer_Order3Range(t *testing.T) {
	m := generateBayer(3)
	if len(m) != 64 {
		t.Fatalf("len = %d, want 64", len(m))
	}
	seen := make(map[float32]bool)
	for _, v := range m {
		if v < 0 || v >= 1 {
			t.Errorf("value %v out of [0,1)", v)
		}
		if seen[v] {
			t.Errorf("duplicate threshold %v", v)
		}
		seen[v] = true
	}
}

func TestNewBank_Deterministic(t *testing.T) {
	cfg := Config{Size: 16, Iterations: 50}
	a := NewBank(cfg)
	b := NewBank(cfg)

	for i := range a.STBN {
		if a.STBN[i] != b.STBN[i] {
			t.Fatalf("STBN[%d] differs between runs: %v vs %v", i, a.STBN[i], b.STBN[i])
		}
	}
	for i := range a.BlueNoise {
		if a.BlueNoise[i] != b.BlueNoise[i] {
			t.Fatalf("BlueNoise[%d] differs between runs", i)
		}
	}
}

func TestNewBank_SizeRoundsUpToPowerOfTwo(t *testing.T) {
	tests := []struct {
		size int
		want int
	}{
		{3, 4},
		{48, 64},
		{16, 16},
		{-5, DefaultSize},
	}
	for _, tt := range tests {
		b := NewBank(Config{Size: tt.size, Iterations: 1})
		if b.Size != tt.want {
			t.Errorf("Size %d: bank size = %d, want %d", tt.size, b.Size, tt.want)
		}
		if len(b.Bayer) != tt.want*tt.want {
			t.Errorf("Size %d: Bayer len = %d, want %d", tt.size, len(b.Bayer), tt.want*tt.want)
		}
		if len(b.HilbertOrder) != tt.want*tt.want {
			t.Errorf("Size %d: HilbertOrder len = %d, want %d", tt.size, len(b.HilbertOrder), tt.want*tt.want)
		}
		if got := len(b.Plane(0)); got != tt.want*tt.want {
			t.Errorf("Size %d: plane len = %d, want %d", tt.size, got, tt.want*tt.want)
		}
	}
}

func TestNewBank_Dimensions(t *testing.T) {
	b := NewBank(Config{Size: 16, Iterations: 10})
	if len(b.STBN) != 16*16*16 {
		t.Errorf("STBN len = %d, want %d", len(b.STBN), 16*16*16)
	}
	for _, m := range [][]float32{b.Bayer, b.BlueNoise, b.Hilbert} {
		if len(m) != 16*16 {
			t.Errorf("mask len = %d, want 256", len(m))
		}
	}
	if len(b.HilbertOrder) != 16*16 {
		t.Errorf("HilbertOrder len = %d, want 256", len(b.HilbertOrder))
	}
}

func TestNewBank_Normalized(t *testing.T) {
	b := NewBank(Config{Size: 16, Iterations: 10})
	for name, m := range map[string][]float32{
		"stbn": b.STBN, "bayer": b.Bayer, "bluenoise": b.BlueNoise, "hilbert": b.Hilbert,
	} {
		for i, v := range m {
			if v < 0 || v > 1 {
				t.Fatalf("%s[%d] = %v, outside [0,1]", name, i, v)
			}
		}
	}
}

func TestPlane_SelectsByFrameModulo(t *testing.T) {
	b := NewBank(Config{Size: 8, Iterations: 10})
	p0 := b.Plane(0)
	p8 := b.Plane(8) // wraps to plane 0
	if len(p0) != 64 {
		t.Fatalf("plane len = %d, want 64", len(p0))
	}
	for i := range p0 {
		if p0[i] != p8[i] {
			t.Fatalf("Plane(8) should alias Plane(0)")
		}
	}
	p1 := b.Plane(1)
	same := true
	for i := range p0 {
		if p0[i] != p1[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("Plane(0) and Plane(1) are identical; expected distinct noise planes")
	}
}

func TestGenerateBlueNoiseVoid_MinRadius(t *testing.T) {
	// Re-run the sampling loop and check the accepted point set honors the
	// spacing constraint. The field itself only exposes distances, so the
	// constraint is verified on a fresh point set with the same PRNG.
	rng := rand.New(rand.NewSource(7))
	const size = 32
	const minRadius = 3.0
	fsize := float64(size)
	points := []point{{rng.Float64() * fsize, rng.Float64() * fsize}}
	for len(points) < size*size {
		best := point{}
		bestDist := -1.0
		for c := 0; c < poissonCandidates; c++ {
			cand := point{rng.Float64() * fsize, rng.Float64() * fsize}
			if d := minDistance(cand, points); d > bestDist {
				bestDist = d
				best = cand
			}
		}
		if bestDist <= minRadius {
			break
		}
		points = append(points, best)
	}

	if len(points) < 10 {
		t.Fatalf("accepted only %d points; sampling collapsed", len(points))
	}
	for i := range points {
		for j := i + 1; j < len(points); j++ {
			dx := points[i].x - points[j].x
			dy := points[i].y - points[j].y
			if d := math.Sqrt(dx*dx + dy*dy); d <= minRadius {
				t.Fatalf("points %d and %d are %.3f apart, want > %.1f", i, j, d, minRadius)
			}
		}
	}
}

func TestGenerateHilbertOrder_IsPermutation(t *testing.T) {
	const size = 16
	order := generateHilbertOrder(size)
	seen := make([]bool, size*size)
	for i, d := range order {
		if int(d) >= size*size {
			t.Fatalf("order[%d] = %d out of range", i, d)
		}
		if seen[d] {
			t.Fatalf("visit index %d appears twice", d)
		}
		seen[d] = true
	}
}

func TestGenerateHilbertOrder_Adjacency(t *testing.T) {
	// Consecutive curve steps must land on 4-connected cells.
	const size = 8
	for d := uint32(0); d < size*size-1; d++ {
		x0, y0 := hilbertXY(size, d)
		x1, y1 := hilbertXY(size, d+1)
		manhattan := abs(x1-x0) + abs(y1-y0)
		if manhattan != 1 {
			t.Fatalf("steps %d->%d jump from (%d,%d) to (%d,%d)", d, d+1, x0, y0, x1, y1)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
