// Package classify derives a per-batch content label from a sampled subset
// of frames. The label drives dither pattern selection only and is never
// persisted.
package classify

import (
	"errors"
	"math"
)

// Kind labels the dominant content of a capture batch.
type Kind int

const (
	// Mixed is the fallback when no single signal dominates.
	Mixed Kind = iota
	// Photographic content: high luminance variance, soft edges.
	Photographic
	// Graphic content: hard edges, flat fills.
	Graphic
	// Gradient content: smooth low-frequency ramps.
	Gradient
)

func (k Kind) String() string {
	switch k {
	case Photographic:
		return "photographic"
	case Graphic:
		return "graphic"
	case Gradient:
		return "gradient"
	default:
		return "mixed"
	}
}

// Classification thresholds. Variance is normalized by 255^2, edge strength
// and smoothness to [0,1].
const (
	photoVariance  = 0.3
	photoMaxEdges  = 0.2
	graphicEdges   = 0.4
	gradientSmooth = 0.7

	// smoothDelta is the luminance step (out of 255) below which two
	// neighboring pixels count as smooth.
	smoothDelta = 8.0
)

// maxSamples caps how many frames of a batch are inspected.
const maxSamples = 8

// ErrEmptyBatch is returned when no frames are supplied.
var ErrEmptyBatch = errors.New("classify: empty batch")

// Result carries the batch label and the averaged signals it was derived
// from.
type Result struct {
	Kind Kind

	// Variance is the mean luminance variance across samples, normalized
	// by 255^2.
	Variance float64

	// EdgeStrength is the mean Sobel gradient magnitude, normalized to [0,1].
	EdgeStrength float64

	// Smoothness is the fraction of neighbor pairs whose luminance step is
	// below smoothDelta.
	Smoothness float64
}

// Frames inspects up to maxSamples frames, evenly spaced across the batch,
// and classifies the batch content. Each frame is width*height RGBA bytes;
// only the first three channels contribute to luminance.
func Frames(frames [][]byte, width, height int) (Result, error) {
	if len(frames) == 0 {
		return Result{}, ErrEmptyBatch
	}

	step := len(frames) / maxSamples
	if step == 0 {
		step = 1
	}

	var res Result
	samples := 0
	for i := 0; i < len(frames) && samples < maxSamples; i += step {
		lum := Luminance(frames[i], width, height)
		res.Variance += NormalizedVariance(lum)
		res.EdgeStrength += meanSobel(lum, width, height)
		res.Smoothness += smoothness(lum, width, height)
		samples++
	}
	inv := 1 / float64(samples)
	res.Variance *= inv
	res.EdgeStrength *= inv
	res.Smoothness *= inv

	switch {
	case res.Variance > photoVariance && res.EdgeStrength < photoMaxEdges:
		res.Kind = Photographic
	case res.EdgeStrength > graphicEdges:
		res.Kind = Graphic
	case res.Smoothness > gradientSmooth:
		res.Kind = Gradient
	default:
		res.Kind = Mixed
	}
	return res, nil
}

// Luminance converts an RGBA frame to a Rec.601 luma plane in [0,255].
func Luminance(rgba []byte, width, height int) []float32 {
	lum := make([]float32, width*height)
	for i := range lum {
		p := i * 4
		lum[i] = 0.299*float32(rgba[p]) + 0.587*float32(rgba[p+1]) + 0.114*float32(rgba[p+2])
	}
	return lum
}

// NormalizedVariance returns the variance of a luma plane normalized by
// 255^2, so the result lies in [0, 0.25].
func NormalizedVariance(lum []float32) float64 {
	if len(lum) == 0 {
		return 0
	}
	var sum float64
	for _, v := range lum {
		sum += float64(v)
	}
	mean := sum / float64(len(lum))
	var acc float64
	for _, v := range lum {
		d := float64(v) - mean
		acc += d * d
	}
	return acc / float64(len(lum)) / (255.0 * 255.0)
}

// meanSobel returns the mean Sobel gradient magnitude over the frame
// interior, normalized to [0,1].
func meanSobel(lum []float32, width, height int) float64 {
	if width < 3 || height < 3 {
		return 0
	}
	var acc float64
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			g := SobelAt(lum, width, x, y)
			acc += float64(g)
		}
	}
	return acc / float64((width-2)*(height-2))
}

// SobelAt returns the Sobel gradient magnitude at (x, y), normalized to
// [0,1]. The caller must keep (x, y) in the frame interior.
func SobelAt(lum []float32, width, x, y int) float32 {
	i := func(dx, dy int) float32 { return lum[(y+dy)*width+x+dx] }
	gx := -i(-1, -1) - 2*i(-1, 0) - i(-1, 1) + i(1, -1) + 2*i(1, 0) + i(1, 1)
	gy := -i(-1, -1) - 2*i(0, -1) - i(1, -1) + i(-1, 1) + 2*i(0, 1) + i(1, 1)
	mag := float32(math.Sqrt(float64(gx*gx+gy*gy))) / (4 * 255)
	if mag > 1 {
		mag = 1
	}
	return mag
}

func smoothness(lum []float32, width, height int) float64 {
	smooth, total := 0, 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			if x+1 < width {
				if diff := lum[i] - lum[i+1]; diff < smoothDelta && diff > -smoothDelta {
					smooth++
				}
				total++
			}
			if y+1 < height {
				if diff := lum[i] - lum[i+width]; diff < smoothDelta && diff > -smoothDelta {
					smooth++
				}
				total++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(smooth) / float64(total)
}
