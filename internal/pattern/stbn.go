package pattern

import (
	"math"
	"math/rand"
)

// stbnOffset is one neighborhood tap of the void-and-cluster energy
// function: a spatial 3x3 window crossed with a +/-2 frame temporal window,
// Gaussian-weighted, wrapping toroidally on all three axes.
type stbnOffset struct {
	dx, dy, dz int
	w          float32
}

func stbnNeighborhood(sigmaS, sigmaT, temporalWeight float64) []stbnOffset {
	var offs []stbnOffset
	for dz := -2; dz <= 2; dz++ {
		wt := 1.0
		if dz != 0 {
			wt = temporalWeight * math.Exp(-float64(dz*dz)/(2*sigmaT*sigmaT))
		}
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				ws := math.Exp(-float64(dx*dx+dy*dy) / (2 * sigmaS * sigmaS))
				offs = append(offs, stbnOffset{dx, dy, dz, float32(ws * wt)})
			}
		}
	}
	return offs
}

// generateSTBN3D builds the spatiotemporal blue-noise cube. The cube starts
// as uniform random values; each iteration locates the lowest-energy cell
// (the void) and the highest-energy cell (the cluster) under the combined
// spatiotemporal neighborhood energy and swaps their values. Energies are
// maintained incrementally: a swap only perturbs the energies of the two
// cells' neighborhoods.
func generateSTBN3D(cfg Config, rng *rand.Rand) []float32 {
	size := cfg.Size
	area := size * size
	n := area * size

	vals := make([]float32, n)
	for i := range vals {
		vals[i] = rng.Float32()
	}

	offs := stbnNeighborhood(cfg.SigmaSpatial, cfg.SigmaTemporal, cfg.TemporalWeight)

	// Initial energy pass.
	energy := make([]float32, n)
	for z := 0; z < size; z++ {
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				var e float32
				for _, o := range offs {
					e += o.w * vals[wrapIndex(x+o.dx, y+o.dy, z+o.dz, size)]
				}
				energy[(z*size+y)*size+x] = e
			}
		}
	}

	for iter := 0; iter < cfg.Iterations; iter++ {
		void, cluster := 0, 0
		for i := 1; i < n; i++ {
			if energy[i] < energy[void] {
				void = i
			}
			if energy[i] > energy[cluster] {
				cluster = i
			}
		}
		if void == cluster {
			break
		}
		delta := vals[cluster] - vals[void]
		vals[void], vals[cluster] = vals[cluster], vals[void]
		propagateSwap(energy, void, delta, offs, size)
		propagateSwap(energy, cluster, -delta, offs, size)
	}

	minMaxNormalize(vals)
	return vals
}

// propagateSwap adds delta, scaled by the neighborhood weights, to the
// energies of every cell whose window covers idx.
func propagateSwap(energy []float32, idx int, delta float32, offs []stbnOffset, size int) {
	area := size * size
	z := idx / area
	y := (idx % area) / size
	x := idx % size
	// The neighborhood is symmetric, so the cells affected by a value
	// change at idx are exactly the cells idx's own window covers.
	for _, o := range offs {
		energy[wrapIndex(x+o.dx, y+o.dy, z+o.dz, size)] += o.w * delta
	}
}

func wrapIndex(x, y, z, size int) int {
	x = (x + size) % size
	y = (y + size) % size
	z = (z + size) % size
	return (z*size+y)*size + x
}
