// Package quality computes the advisory post-encode metrics: mean CIEDE2000
// color difference against the source, SSIM over luma, and inter-frame
// index stability. The metrics never gate the pipeline; they are reported
// alongside the encoded output so callers can compare tuning parameters.
package quality

// SSIM over 8-bit luma planes using windowed statistics accumulated in
// integer arithmetic, with the usual stabilizing constants
// C1=(0.01*255)^2 and C2=(0.03*255)^2.

// ssimWindow is the half-width of the sliding comparison window.
const ssimWindow = 3

const (
	ssimC1 = 6.5025  // (0.01 * 255)^2
	ssimC2 = 58.5225 // (0.03 * 255)^2
)

// distoStats accumulates paired-pixel statistics for one SSIM window.
type distoStats struct {
	w             uint32
	xm, ym        uint32
	xxm, xym, yym uint64
}

func (s *distoStats) accumulate(x, y uint8) {
	s.w++
	s.xm += uint32(x)
	s.ym += uint32(y)
	s.xxm += uint64(x) * uint64(x)
	s.xym += uint64(x) * uint64(y)
	s.yym += uint64(y) * uint64(y)
}

func (s *distoStats) value() float64 {
	if s.w == 0 {
		return 1
	}
	n := float64(s.w)
	mx := float64(s.xm) / n
	my := float64(s.ym) / n
	vx := float64(s.xxm)/n - mx*mx
	vy := float64(s.yym)/n - my*my
	cov := float64(s.xym)/n - mx*my

	num := (2*mx*my + ssimC1) * (2*cov + ssimC2)
	den := (mx*mx + my*my + ssimC1) * (vx + vy + ssimC2)
	if den == 0 {
		return 1
	}
	return num / den
}

// SSIM returns the mean windowed SSIM between two equally sized 8-bit luma
// planes. Windows are clipped at the borders. The result lies in (0, 1]
// with 1 meaning identical planes.
func SSIM(a, b []uint8, width, height int) float64 {
	if width == 0 || height == 0 {
		return 1
	}
	var total float64
	for y := 0; y < height; y++ {
		y0, y1 := clipRange(y, height)
		for x := 0; x < width; x++ {
			x0, x1 := clipRange(x, width)
			var s distoStats
			for wy := y0; wy <= y1; wy++ {
				row := wy * width
				for wx := x0; wx <= x1; wx++ {
					s.accumulate(a[row+wx], b[row+wx])
				}
			}
			total += s.value()
		}
	}
	return total / float64(width*height)
}

func clipRange(c, limit int) (lo, hi int) {
	lo = c - ssimWindow
	if lo < 0 {
		lo = 0
	}
	hi = c + ssimWindow
	if hi > limit-1 {
		hi = limit - 1
	}
	return lo, hi
}

// TemporalCoherence returns the mean fraction of pixels whose palette index
// is unchanged between consecutive frames. A single frame is perfectly
// coherent.
func TemporalCoherence(indexFrames [][]uint8) float64 {
	if len(indexFrames) < 2 {
		return 1
	}
	var total float64
	pairs := 0
	for i := 1; i < len(indexFrames); i++ {
		prev, cur := indexFrames[i-1], indexFrames[i]
		if len(prev) != len(cur) || len(cur) == 0 {
			continue
		}
		stable := 0
		for j := range cur {
			if cur[j] == prev[j] {
				stable++
			}
		}
		total += float64(stable) / float64(len(cur))
		pairs++
	}
	if pairs == 0 {
		return 1
	}
	return total / float64(pairs)
}
