package pattern

import (
	"math"
	"math/rand"
)

// poissonCandidates is the number of candidate points drawn per accepted
// point, after Bridson's dart-throwing constant.
const poissonCandidates = 30

type point struct {
	x, y float64
}

// generateBlueNoiseVoid builds a blue-noise threshold field from a greedy
// Poisson-disk point set. Starting from one random seed point, each round
// draws up to poissonCandidates candidates and accepts the one farthest
// from the existing set, provided that distance still exceeds minRadius.
// Sampling stops when no candidate clears the radius. The point set is then
// converted to a dense field by taking, per cell, the distance to the
// nearest accepted point, normalized to [0,1].
func generateBlueNoiseVoid(size int, minRadius float64, rng *rand.Rand) []float32 {
	fsize := float64(size)
	points := []point{{rng.Float64() * fsize, rng.Float64() * fsize}}

	// The disk packing bounds the point count; the cap only guards against
	// a degenerate minRadius.
	maxPoints := size * size
	for len(points) < maxPoints {
		best := point{}
		bestDist := -1.0
		for c := 0; c < poissonCandidates; c++ {
			cand := point{rng.Float64() * fsize, rng.Float64() * fsize}
			d := minDistance(cand, points)
			if d > bestDist {
				bestDist = d
				best = cand
			}
		}
		if bestDist <= minRadius {
			break
		}
		points = append(points, best)
	}

	field := make([]float32, size*size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			cell := point{float64(x) + 0.5, float64(y) + 0.5}
			field[y*size+x] = float32(minDistance(cell, points))
		}
	}
	minMaxNormalize(field)
	return field
}

func minDistance(p point, pts []point) float64 {
	best := math.Inf(1)
	for _, q := range pts {
		dx := p.x - q.x
		dy := p.y - q.y
		if d := dx*dx + dy*dy; d < best {
			best = d
		}
	}
	return math.Sqrt(best)
}
