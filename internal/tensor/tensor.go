// Package tensor assembles the voxel tensor: the batch's dithered,
// palette-mapped frames concatenated frame-major as RGBA bytes, addressable
// as a width x height x frames volume for downstream visualization.
package tensor

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ErrFrameRange is returned for an out-of-range frame index.
var ErrFrameRange = errors.New("tensor: frame index out of range")

// Shape describes the voxel volume.
type Shape struct {
	Width, Height, Frames int
}

// Cube returns the shape of a size x size x size volume.
func Cube(size int) Shape {
	return Shape{Width: size, Height: size, Frames: size}
}

// FrameBytes is the byte size of one RGBA frame.
func (s Shape) FrameBytes() int { return s.Width * s.Height * 4 }

// TotalBytes is the byte size of the whole volume.
func (s Shape) TotalBytes() int { return s.FrameBytes() * s.Frames }

// VoxelIndex converts voxel coordinates to the byte offset of the voxel's
// R channel.
func (s Shape) VoxelIndex(x, y, z int) int {
	return (z*s.Width*s.Height + y*s.Width + x) * 4
}

// Build concatenates the frames into a frame-major tensor. Every frame must
// be exactly one frame's worth of RGBA bytes.
func Build(frames [][]byte, shape Shape) ([]byte, error) {
	if len(frames) != shape.Frames {
		return nil, fmt.Errorf("tensor: %d frames for shape with %d", len(frames), shape.Frames)
	}
	fb := shape.FrameBytes()
	out := make([]byte, 0, shape.TotalBytes())
	for i, f := range frames {
		if len(f) != fb {
			return nil, fmt.Errorf("tensor: frame %d is %d bytes, want %d", i, len(f), fb)
		}
		out = append(out, f...)
	}
	return out, nil
}

// ExtractFrame returns a copy of one frame's RGBA bytes.
func ExtractFrame(t []byte, shape Shape, frame int) ([]byte, error) {
	if frame < 0 || frame >= shape.Frames {
		return nil, fmt.Errorf("%w: %d of %d", ErrFrameRange, frame, shape.Frames)
	}
	fb := shape.FrameBytes()
	start := frame * fb
	if start+fb > len(t) {
		return nil, errors.New("tensor: buffer shorter than shape")
	}
	out := make([]byte, fb)
	copy(out, t[start:start+fb])
	return out, nil
}

// Preview downsamples every frame to target x target with a Lanczos filter
// and concatenates the results, giving a small tensor suitable for preview
// rendering.
func Preview(frames [][]byte, shape Shape, target int) ([]byte, error) {
	if target <= 0 || target > shape.Width {
		return nil, fmt.Errorf("tensor: invalid preview size %d", target)
	}
	out := make([]byte, 0, target*target*4*len(frames))
	for i, f := range frames {
		if len(f) != shape.FrameBytes() {
			return nil, fmt.Errorf("tensor: frame %d is %d bytes, want %d", i, len(f), shape.FrameBytes())
		}
		img := &image.NRGBA{
			Pix:    f,
			Stride: shape.Width * 4,
			Rect:   image.Rect(0, 0, shape.Width, shape.Height),
		}
		small := imaging.Resize(img, target, target, imaging.Lanczos)
		out = append(out, small.Pix...)
	}
	return out, nil
}
