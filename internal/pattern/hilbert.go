package pattern

// hilbertXY maps a distance d along the Hilbert curve of the given
// (power-of-two) size to its (x, y) cell, by the standard bit-unrolling
// construction with per-level rotation.
func hilbertXY(size int, d uint32) (x, y int) {
	t := d
	for s := 1; s < size; s *= 2 {
		rx := int(1 & (t / 2))
		ry := int(1 & (t ^ uint32(rx)))
		// Rotate the quadrant.
		if ry == 0 {
			if rx == 1 {
				x = s - 1 - x
				y = s - 1 - y
			}
			x, y = y, x
		}
		x += s * rx
		y += s * ry
		t /= 4
	}
	return x, y
}

// generateHilbertOrder inverts the curve into a per-cell visit order:
// out[y*size+x] is the step at which the curve reaches (x, y).
func generateHilbertOrder(size int) []uint32 {
	order := make([]uint32, size*size)
	for d := uint32(0); d < uint32(size*size); d++ {
		x, y := hilbertXY(size, d)
		order[y*size+x] = d
	}
	return order
}
