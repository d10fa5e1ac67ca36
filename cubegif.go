package cubegif

import (
	"errors"
	"fmt"
	"time"
)

// Defaults for Options fields left at their zero value.
const (
	DefaultEdgeSize   = 128
	DefaultFrameCount = 128
	DefaultFPS        = 25
)

// Error taxonomy. Every failure reported by the pipeline wraps one of
// these sentinels inside a *PipelineError naming the originating stage.
var (
	// ErrInvalidInput covers frame count or size mismatches and empty
	// batches.
	ErrInvalidInput = errors.New("cubegif: invalid input")

	// ErrPatternGeneration is reserved for pattern bank synthesis
	// failures. The generators are deterministic with fixed budgets, so
	// seeing this error indicates a bug, not bad input.
	ErrPatternGeneration = errors.New("cubegif: pattern generation failed")

	// ErrPaletteBuild is reserved for palette construction failures.
	ErrPaletteBuild = errors.New("cubegif: palette build failed")

	// ErrEncoding covers serialization failures: out-of-range palette
	// indices or zero frames reaching the encoder.
	ErrEncoding = errors.New("cubegif: encoding failed")

	// ErrResourceUnavailable means no compute backend could run the
	// per-pixel quantize/dither math.
	ErrResourceUnavailable = errors.New("cubegif: no compute backend available")
)

// Stage names the pipeline phases, in execution order.
type Stage string

const (
	StageIdle      Stage = "idle"
	StageAnalyzing Stage = "analyzing-content"
	StagePatterns  Stage = "generating-patterns"
	StagePalettes  Stage = "optimizing-palettes"
	StageDither    Stage = "applying-dither"
	StageEncoding  Stage = "encoding-gif"
	StageComplete  Stage = "complete"
)

// PipelineError reports a terminal pipeline failure and the stage that
// raised it.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("cubegif: stage %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// Options tunes a batch encode. The zero value is a valid configuration
// for 128x128, 128-frame input. Quality targets are advisory: they shape
// the quality report but never gate the output.
type Options struct {
	// EdgeSize is the frame edge length in pixels (default 128). All
	// frames of a batch must be EdgeSize x EdgeSize.
	EdgeSize int

	// FrameCount, when non-zero, asserts the expected batch length;
	// a mismatch is an input error.
	FrameCount int

	// RowStride is the source row stride in bytes when frames carry row
	// padding. 0 means frames are already compact (EdgeSize*4 per row);
	// padded frames are compacted on ingestion.
	RowStride int

	// FPS sets the playback rate; the per-frame delay is 100/FPS
	// centiseconds (default 25 fps -> 4 cs).
	FPS int

	// LoopCount is the GIF loop count; 0 loops forever.
	LoopCount int

	// DitherStrength is the threshold perturbation amplitude in 8-bit
	// units (default 32).
	DitherStrength float32

	// DisableEdgeAware turns off Sobel-based dither damping on edges.
	DisableEdgeAware bool

	// PatternSize is the dither mask edge length, a power of two
	// (default 64). Masks tile the frame, so this is independent of
	// EdgeSize. Any other value is rejected as invalid input.
	PatternSize int

	// PatternSeed seeds mask generation (default 1). Banks are cached
	// per (PatternSize, PatternSeed) for the process lifetime.
	PatternSeed int64

	// Workers bounds the per-frame parallelism (default GOMAXPROCS).
	Workers int

	// IncludeTensor additionally emits the frame-major RGBA voxel tensor
	// of the dithered, palette-mapped frames.
	IncludeTensor bool

	// PreviewSize, when non-zero, emits a downsampled
	// PreviewSize x PreviewSize per-frame preview tensor (Lanczos).
	PreviewSize int

	// ReportQuality computes the advisory quality report (mean CIEDE2000
	// delta-E, luma SSIM, temporal coherence) against the source frames.
	ReportQuality bool

	// TargetDeltaE, TargetSSIM and TargetCoherence are the advisory
	// quality targets reflected in the report (defaults 1.5, 0.95,
	// 0.875).
	TargetDeltaE    float64
	TargetSSIM      float64
	TargetCoherence float64

	// Progress, when set, receives stage transitions and per-frame
	// completion counts. Calls may come from worker goroutines.
	Progress func(stage Stage, done, total int)
}

// normalize clamps and defaults an Options value. The palette size is a
// hard GIF limit and not configurable.
func (o Options) normalize() Options {
	if o.EdgeSize <= 0 {
		o.EdgeSize = DefaultEdgeSize
	}
	if o.FPS <= 0 {
		o.FPS = DefaultFPS
	}
	if o.FPS > 100 {
		o.FPS = 100
	}
	if o.TargetDeltaE == 0 {
		o.TargetDeltaE = 1.5
	}
	if o.TargetSSIM == 0 {
		o.TargetSSIM = 0.95
	}
	if o.TargetCoherence == 0 {
		o.TargetCoherence = 0.875
	}
	return o
}

// QualityReport carries the advisory post-encode metrics.
type QualityReport struct {
	// MeanDeltaE is the mean CIEDE2000 difference between source and
	// dithered frames.
	MeanDeltaE float64

	// SSIM is the mean luma structural similarity.
	SSIM float64

	// TemporalCoherence is the mean inter-frame palette index stability.
	TemporalCoherence float64

	// MeetsTargets reports whether all three advisory targets were hit.
	MeetsTargets bool
}

// Result is the outcome of one batch encode.
type Result struct {
	// GIF is the complete GIF89a byte stream.
	GIF []byte

	// Tensor is the frame-major RGBA voxel tensor (nil unless
	// Options.IncludeTensor).
	Tensor []byte

	// Preview is the downsampled preview tensor (nil unless
	// Options.PreviewSize > 0).
	Preview []byte

	// FrameCount is the number of encoded frames.
	FrameCount int

	// PaletteSize is the per-frame color table size (always 256).
	PaletteSize int

	// Content is the detected content label.
	Content string

	// Pattern is the dither pattern selected for the batch.
	Pattern string

	// Kernel is the compute backend that ran the per-pixel math.
	Kernel string

	// Elapsed is the wall-clock processing time.
	Elapsed time.Duration

	// Quality is the advisory metrics report (nil unless
	// Options.ReportQuality).
	Quality *QualityReport
}

// Compact copies a row-padded RGBA buffer into a tightly packed one.
// stride is the source row size in bytes and must be at least width*4.
func Compact(src []byte, width, height, stride int) ([]byte, error) {
	rowBytes := width * 4
	if stride < rowBytes {
		return nil, fmt.Errorf("%w: stride %d below row size %d", ErrInvalidInput, stride, rowBytes)
	}
	if len(src) < (height-1)*stride+rowBytes {
		return nil, fmt.Errorf("%w: buffer too short for %dx%d with stride %d",
			ErrInvalidInput, width, height, stride)
	}
	if stride == rowBytes {
		out := make([]byte, rowBytes*height)
		copy(out, src[:rowBytes*height])
		return out, nil
	}
	out := make([]byte, 0, rowBytes*height)
	for y := 0; y < height; y++ {
		row := src[y*stride : y*stride+rowBytes]
		out = append(out, row...)
	}
	return out, nil
}
