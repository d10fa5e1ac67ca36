// Package pool provides size-bucketed sync.Pool instances for the
// per-frame scratch planes of the dither stage. Each dithered frame
// needs two full float32 planes; pooling them keeps the parallel frame
// workers from churning the allocator.
package pool

import "sync"

// Size classes in float32 elements. The largest class covers a 256x256
// plane; anything bigger is allocated directly and not pooled.
const (
	size1K  = 1 << 10
	size4K  = 1 << 12
	size16K = 1 << 14
	size64K = 1 << 16
)

var planeSizes = [4]int{size1K, size4K, size16K, size64K}

var planePools [4]sync.Pool

func init() {
	for i := range planePools {
		n := planeSizes[i]
		planePools[i] = sync.Pool{
			New: func() any {
				s := make([]float32, n)
				return &s
			},
		}
	}
}

func planeIndex(n int) int {
	for i, sz := range planeSizes {
		if n <= sz {
			return i
		}
	}
	return -1
}

// GetPlane returns a float32 slice of the requested length. Contents are
// unspecified; callers overwrite every element. Hand the plane back with
// PutPlane when done.
func GetPlane(n int) []float32 {
	idx := planeIndex(n)
	if idx < 0 {
		return make([]float32, n)
	}
	sp := planePools[idx].Get().(*[]float32)
	return (*sp)[:n]
}

// PutPlane returns a plane obtained from GetPlane. Planes that did not
// come from a size class are dropped.
func PutPlane(s []float32) {
	c := cap(s)
	idx := planeIndex(c)
	if idx < 0 || planeSizes[idx] != c {
		return
	}
	s = s[:c]
	planePools[idx].Put(&s)
}
