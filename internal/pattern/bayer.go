package pattern

// bayerAt returns the unnormalized Bayer threshold at (x, y) for the given
// recursion order. bayer(0) is the single cell 0; each further order
// subdivides into quadrants with offsets {0, 2, 3, 1}.
func bayerAt(order, x, y int) int {
	if order == 0 {
		return 0
	}
	half := 1 << (order - 1)
	quadrant := 0
	if y >= half {
		quadrant += 2
	}
	if x >= half {
		quadrant++
	}
	offset := [4]int{0, 2, 3, 1}[quadrant]
	return 4*bayerAt(order-1, x%half, y%half) + offset
}

// generateBayer builds the 2^order x 2^order ordered-dither matrix,
// normalized by 4^order.
func generateBayer(order int) []float32 {
	size := 1 << order
	norm := float32(int(1) << (2 * order)) // 4^order
	m := make([]float32, size*size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			m[y*size+x] = float32(bayerAt(order, x, y)) / norm
		}
	}
	return m
}
