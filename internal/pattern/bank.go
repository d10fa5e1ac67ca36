// Package pattern synthesizes the dither threshold masks used by the
// adaptive ditherer: a spatiotemporal blue-noise cube (STBN), a recursive
// Bayer matrix, a Poisson-disk blue-noise field, and a Hilbert-curve
// traversal table.
//
// A Bank is built once per process, is immutable after construction, and
// may be read concurrently from any number of goroutines without locking.
package pattern

import (
	"math/rand"
)

// Default generation parameters. Masks tile the frame via modulo indexing,
// so the bank size is independent of the frame edge length.
const (
	DefaultSize           = 64
	DefaultSigmaSpatial   = 1.5
	DefaultSigmaTemporal  = 1.0
	DefaultTemporalWeight = 0.4
	DefaultIterations     = 500
	DefaultMinRadius      = 2.0
	DefaultSeed           = 1
)

// Config holds the deterministic generation parameters for a Bank.
// The zero value of any field selects the package default.
type Config struct {
	// Size is the mask edge length, a power of two. Other values are
	// rounded up to the next power of two. The STBN cube has Size planes,
	// one per frame index modulo Size.
	Size int

	// SigmaSpatial is the Gaussian sigma of the 3x3 spatial energy window.
	SigmaSpatial float64

	// SigmaTemporal is the Gaussian sigma of the +/-2 frame temporal window.
	SigmaTemporal float64

	// TemporalWeight scales the temporal energy contribution relative to
	// the spatial one.
	TemporalWeight float64

	// Iterations is the fixed void-and-cluster swap budget.
	Iterations int

	// MinRadius is the Poisson-disk minimum point spacing.
	MinRadius float64

	// Seed seeds the generation PRNG. Identical configs produce
	// bit-identical banks.
	Seed int64
}

func (c Config) withDefaults() Config {
	if c.Size <= 0 {
		c.Size = DefaultSize
	} else if c.Size&(c.Size-1) != 0 {
		// The Bayer recursion and Hilbert traversal need a power-of-two
		// edge; round up so every mask shares one size.
		c.Size = 1 << log2(c.Size)
	}
	if c.SigmaSpatial == 0 {
		c.SigmaSpatial = DefaultSigmaSpatial
	}
	if c.SigmaTemporal == 0 {
		c.SigmaTemporal = DefaultSigmaTemporal
	}
	if c.TemporalWeight == 0 {
		c.TemporalWeight = DefaultTemporalWeight
	}
	if c.Iterations == 0 {
		c.Iterations = DefaultIterations
	}
	if c.MinRadius == 0 {
		c.MinRadius = DefaultMinRadius
	}
	if c.Seed == 0 {
		c.Seed = DefaultSeed
	}
	return c
}

// Bank holds the four precomputed threshold masks. All threshold values are
// normalized to [0,1]. Fields must not be mutated after NewBank returns.
type Bank struct {
	// Size is the edge length of every mask.
	Size int

	// STBN is the spatiotemporal blue-noise cube, Size^3 values in
	// plane-major order: STBN[(z*Size+y)*Size+x].
	STBN []float32

	// Bayer is the ordered-dither matrix, Size^2 values row-major.
	Bayer []float32

	// BlueNoise is the Poisson-disk distance field, Size^2 values row-major.
	BlueNoise []float32

	// Hilbert is the Hilbert-curve visit order normalized by Size^2,
	// Size^2 values row-major.
	Hilbert []float32

	// HilbertOrder is the raw Hilbert visit index per cell.
	HilbertOrder []uint32
}

// NewBank synthesizes all four masks. Generation is deterministic for a
// given Config. It never fails: the iteration budgets are fixed and no
// external input is consumed.
func NewBank(cfg Config) *Bank {
	cfg = cfg.withDefaults()
	rng := rand.New(rand.NewSource(cfg.Seed))

	b := &Bank{Size: cfg.Size}
	b.STBN = generateSTBN3D(cfg, rng)
	b.Bayer = generateBayer(log2(cfg.Size))
	b.BlueNoise = generateBlueNoiseVoid(cfg.Size, cfg.MinRadius, rng)
	b.HilbertOrder = generateHilbertOrder(cfg.Size)
	b.Hilbert = make([]float32, cfg.Size*cfg.Size)
	n := float32(cfg.Size * cfg.Size)
	for i, o := range b.HilbertOrder {
		b.Hilbert[i] = float32(o) / n
	}
	return b
}

// Plane returns the STBN z-plane for the given frame index.
func (b *Bank) Plane(frame int) []float32 {
	z := frame % b.Size
	area := b.Size * b.Size
	return b.STBN[z*area : (z+1)*area]
}

func log2(n int) int {
	k := 0
	for 1<<k < n {
		k++
	}
	return k
}

// minMaxNormalize rescales v to [0,1] in place. A constant slice maps to 0.
func minMaxNormalize(v []float32) {
	if len(v) == 0 {
		return
	}
	lo, hi := v[0], v[0]
	for _, x := range v[1:] {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	span := hi - lo
	if span == 0 {
		for i := range v {
			v[i] = 0
		}
		return
	}
	for i := range v {
		v[i] = (v[i] - lo) / span
	}
}
