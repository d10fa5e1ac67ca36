package dither

import (
	"errors"

	"github.com/EduardoPava11/RGB2GIF2VOXEL-sub002/internal/palette"
)

// ErrNoKernel is returned when no compute backend is available for the
// per-pixel math.
var ErrNoKernel = errors.New("dither: no compute kernel available")

// Job is one frame's worth of per-pixel work, fully resolved: the ditherer
// has already selected every pixel's threshold and effective strength, so a
// Kernel only performs the channel perturbation and nearest-color mapping.
type Job struct {
	// RGBA is the compacted source frame, Width*Height*4 bytes.
	RGBA []byte

	// Width and Height are the frame dimensions in pixels.
	Width, Height int

	// Thresholds holds one [0,1] threshold per pixel.
	Thresholds []float32

	// Strength holds the per-pixel dither amplitude in 8-bit units.
	Strength []float32

	// Palette is the frame's 256-entry color table.
	Palette []palette.RGB
}

// Kernel is the compute substrate executing a Job's per-pixel math. The
// reference implementation is plain Go loops; an accelerated backend may be
// substituted as long as results are identical (the mapping is integer
// math, so no floating-point divergence is tolerated in the indices).
type Kernel interface {
	// Name identifies the backend.
	Name() string

	// Run maps every pixel of the job to a palette index.
	Run(job *Job) ([]uint8, error)
}

// NewKernel selects a compute backend. The CPU reference kernel is always
// available.
func NewKernel() (Kernel, error) {
	return cpuKernel{}, nil
}

// cpuKernel is the reference backend: sequential per-pixel loops.
type cpuKernel struct{}

func (cpuKernel) Name() string { return "cpu" }

func (cpuKernel) Run(job *Job) ([]uint8, error) {
	n := job.Width * job.Height
	if len(job.RGBA) < n*4 || len(job.Thresholds) < n || len(job.Strength) < n {
		return nil, errors.New("dither: job buffers shorter than frame")
	}
	if len(job.Palette) == 0 {
		return nil, errors.New("dither: empty palette")
	}

	out := make([]uint8, n)
	for i := 0; i < n; i++ {
		p := i * 4
		perturb := (job.Thresholds[i] - 0.5) * job.Strength[i]
		r := clampChannel(float32(job.RGBA[p]) + perturb)
		g := clampChannel(float32(job.RGBA[p+1]) + perturb)
		b := clampChannel(float32(job.RGBA[p+2]) + perturb)
		out[i] = nearestColor(r, g, b, job.Palette)
	}
	return out, nil
}

// nearestColor returns the palette index with the smallest squared RGB
// distance. Ties keep the lowest index: the scan is linear and only a
// strictly smaller distance replaces the current best.
func nearestColor(r, g, b int32, pal []palette.RGB) uint8 {
	best := 0
	bestDist := int32(1<<31 - 1)
	for i, c := range pal {
		dr := r - int32(c.R)
		dg := g - int32(c.G)
		db := b - int32(c.B)
		d := dr*dr + dg*dg + db*db
		if d < bestDist {
			bestDist = d
			best = i
			if d == 0 {
				break
			}
		}
	}
	return uint8(best)
}

func clampChannel(v float32) int32 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return int32(v)
}
