// Package dither maps RGBA frames to palette indices using variance-adaptive
// threshold perturbation. Per pixel it selects one of the precomputed masks
// by local luminance variance, perturbs the color channels by the mask
// threshold, and picks the nearest palette entry.
//
// The per-pixel arithmetic runs on a Kernel backend; the reference backend
// is plain CPU loops. For a fixed frame, palette and pattern the output
// indices are bit-for-bit reproducible.
package dither

import (
	"github.com/EduardoPava11/RGB2GIF2VOXEL-sub002/internal/classify"
	"github.com/EduardoPava11/RGB2GIF2VOXEL-sub002/internal/palette"
	"github.com/EduardoPava11/RGB2GIF2VOXEL-sub002/internal/pattern"
	"github.com/EduardoPava11/RGB2GIF2VOXEL-sub002/internal/pool"
)

// DefaultStrength is the dither amplitude in 8-bit channel units.
const DefaultStrength = 32

// Variance thresholds selecting the threshold source.
const (
	lowVariance  = 0.1
	highVariance = 0.3
)

// edgeDamping scales dither strength down on edges: detail is preserved on
// hard transitions while smooth areas get the full amplitude to hide
// banding.
const edgeDamping = 0.7

// Per-frame mask rotation primes. Offsetting 2-D masks by a per-frame
// stride keeps a static pattern from burning into the animation.
const (
	temporalStrideX = 7
	temporalStrideY = 11
)

// Ditherer applies the adaptive dither to frames of one batch. It holds
// only read-only state and is safe for concurrent use across frames.
type Ditherer struct {
	bank     *pattern.Bank
	pat      classify.Pattern
	strength float32
	edges    bool
	kernel   Kernel
}

// Options configures a Ditherer. Zero values select defaults.
type Options struct {
	// Strength is the dither amplitude in 8-bit units (default 32).
	Strength float32

	// DisableEdgeAware turns off the Sobel-based strength damping.
	DisableEdgeAware bool

	// Kernel overrides the compute backend (default: CPU reference).
	Kernel Kernel
}

// New builds a Ditherer over a pattern bank and the batch's selected
// pattern.
func New(bank *pattern.Bank, pat classify.Pattern, opts Options) (*Ditherer, error) {
	k := opts.Kernel
	if k == nil {
		var err error
		k, err = NewKernel()
		if err != nil {
			return nil, err
		}
	}
	s := opts.Strength
	if s == 0 {
		s = DefaultStrength
	}
	return &Ditherer{
		bank:     bank,
		pat:      pat,
		strength: s,
		edges:    !opts.DisableEdgeAware,
		kernel:   k,
	}, nil
}

// Kernel reports the compute backend in use.
func (d *Ditherer) Kernel() string { return d.kernel.Name() }

// Frame maps one compacted RGBA frame to palette indices. frameIndex picks
// the STBN plane and the temporal rotation of the 2-D masks. The input
// frame and palette are only read.
func (d *Ditherer) Frame(rgba []byte, width, height, frameIndex int, pal []palette.RGB) ([]uint8, error) {
	n := width * height
	lum := classify.Luminance(rgba, width, height)
	variance := localVariance(lum, width, height)

	thr := pool.GetPlane(n)
	str := pool.GetPlane(n)
	defer pool.PutPlane(thr)
	defer pool.PutPlane(str)
	d.thresholds(thr, variance, width, height, frameIndex)
	d.strengths(str, lum, width, height)

	job := &Job{
		RGBA:       rgba,
		Width:      width,
		Height:     height,
		Thresholds: thr,
		Strength:   str,
		Palette:    pal,
	}
	return d.kernel.Run(job)
}

// thresholds resolves each pixel's [0,1] threshold from the selected
// pattern and its local variance, writing into out.
func (d *Ditherer) thresholds(out, variance []float32, width, height, frameIndex int) {
	size := d.bank.Size
	plane := d.bank.Plane(frameIndex)
	ox := (frameIndex * temporalStrideX) % size
	oy := (frameIndex * temporalStrideY) % size

	for y := 0; y < height; y++ {
		my := y % size
		ry := (y + oy) % size
		for x := 0; x < width; x++ {
			i := y*width + x
			mx := x % size
			rx := (x + ox) % size

			if d.pat == classify.PatternComposite {
				// Composite blends regardless of variance.
				out[i] = classify.CompositeSTBNWeight*plane[my*size+mx] +
					classify.CompositeBayerWeight*d.bank.Bayer[ry*size+rx]
				continue
			}

			switch {
			case variance[i] < lowVariance:
				out[i] = plane[my*size+mx]
			case variance[i] < highVariance:
				out[i] = d.bank.BlueNoise[ry*size+rx]
			default:
				out[i] = d.bank.Bayer[ry*size+rx]
			}
		}
	}
}

// strengths resolves each pixel's effective dither amplitude, writing
// into out.
func (d *Ditherer) strengths(out, lum []float32, width, height int) {
	if !d.edges {
		for i := range out {
			out[i] = d.strength
		}
		return
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			if x == 0 || y == 0 || x == width-1 || y == height-1 {
				out[i] = d.strength
				continue
			}
			edge := classify.SobelAt(lum, width, x, y)
			out[i] = d.strength * (1 - edgeDamping*edge)
		}
	}
}
