package dither

// Local variance estimation for threshold-source selection. A true sliding
// window (not the frame-level approximation) is used: summed-area tables
// over luma and squared luma give each pixel its windowed variance in one
// linear pass.

// varianceWindow is the sliding window radius; the window is
// (2r+1) x (2r+1) clipped at the frame border.
const varianceWindow = 2

// localVariance returns the per-pixel luminance variance over the sliding
// window, normalized by 255^2.
func localVariance(lum []float32, width, height int) []float32 {
	// Integral images with a one-cell border so lookups need no branches.
	iw := width + 1
	sum := make([]float64, iw*(height+1))
	sqSum := make([]float64, iw*(height+1))
	for y := 0; y < height; y++ {
		var rowSum, rowSq float64
		for x := 0; x < width; x++ {
			v := float64(lum[y*width+x])
			rowSum += v
			rowSq += v * v
			sum[(y+1)*iw+x+1] = sum[y*iw+x+1] + rowSum
			sqSum[(y+1)*iw+x+1] = sqSum[y*iw+x+1] + rowSq
		}
	}

	out := make([]float32, width*height)
	for y := 0; y < height; y++ {
		y0 := y - varianceWindow
		y1 := y + varianceWindow + 1
		if y0 < 0 {
			y0 = 0
		}
		if y1 > height {
			y1 = height
		}
		for x := 0; x < width; x++ {
			x0 := x - varianceWindow
			x1 := x + varianceWindow + 1
			if x0 < 0 {
				x0 = 0
			}
			if x1 > width {
				x1 = width
			}
			n := float64((y1 - y0) * (x1 - x0))
			s := sum[y1*iw+x1] - sum[y0*iw+x1] - sum[y1*iw+x0] + sum[y0*iw+x0]
			sq := sqSum[y1*iw+x1] - sqSum[y0*iw+x1] - sqSum[y1*iw+x0] + sqSum[y0*iw+x0]
			mean := s / n
			v := sq/n - mean*mean
			if v < 0 {
				v = 0 // numeric noise
			}
			out[y*width+x] = float32(v / (255.0 * 255.0))
		}
	}
	return out
}
