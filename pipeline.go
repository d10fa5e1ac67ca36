package cubegif

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/EduardoPava11/RGB2GIF2VOXEL-sub002/internal/classify"
	"github.com/EduardoPava11/RGB2GIF2VOXEL-sub002/internal/dither"
	"github.com/EduardoPava11/RGB2GIF2VOXEL-sub002/internal/gifenc"
	"github.com/EduardoPava11/RGB2GIF2VOXEL-sub002/internal/palette"
	"github.com/EduardoPava11/RGB2GIF2VOXEL-sub002/internal/pattern"
	"github.com/EduardoPava11/RGB2GIF2VOXEL-sub002/internal/quality"
	"github.com/EduardoPava11/RGB2GIF2VOXEL-sub002/internal/tensor"
)

// Pattern banks are immutable once built, so they are cached per
// configuration for the process lifetime and shared read-only across all
// concurrent batches.
var (
	bankMu    sync.Mutex
	bankCache = map[pattern.Config]*pattern.Bank{}
)

func bankFor(cfg pattern.Config) *pattern.Bank {
	bankMu.Lock()
	defer bankMu.Unlock()
	if b, ok := bankCache[cfg]; ok {
		return b
	}
	b := pattern.NewBank(cfg)
	bankCache[cfg] = b
	return b
}

// Process encodes a batch of compacted RGBA frames. It is shorthand for
// ProcessContext with a background context.
func Process(frames [][]byte, opts Options) (*Result, error) {
	return ProcessContext(context.Background(), frames, opts)
}

// ProcessContext runs the full pipeline: content analysis, pattern
// selection, per-frame palette optimization and adaptive dithering (both
// parallel across frames), and in-order GIF89a serialization. Cancellation
// is checked between stages; a cancelled context aborts before the next
// stage starts. The whole batch either succeeds or fails; no partial GIF
// is ever returned.
func ProcessContext(ctx context.Context, frames [][]byte, opts Options) (*Result, error) {
	start := time.Now()
	opts = opts.normalize()

	frames, err := validateBatch(frames, opts)
	if err != nil {
		return nil, &PipelineError{Stage: StageIdle, Err: err}
	}
	edge := opts.EdgeSize
	n := len(frames)

	// Analyze content on a sampled subset.
	report(opts, StageAnalyzing, 0, n)
	content, err := classify.Frames(frames, edge, edge)
	if err != nil {
		return nil, &PipelineError{Stage: StageAnalyzing, Err: fmt.Errorf("%w: %v", ErrInvalidInput, err)}
	}
	pat := classify.SelectPattern(content.Kind)

	if err := checkCancel(ctx, StageAnalyzing); err != nil {
		return nil, err
	}

	// The bank is precomputed and cached; only the first batch for a
	// given configuration pays the synthesis cost.
	report(opts, StagePatterns, 0, n)
	bank := bankFor(pattern.Config{Size: opts.PatternSize, Seed: opts.PatternSeed})

	d, err := dither.New(bank, pat, dither.Options{
		Strength:         opts.DitherStrength,
		DisableEdgeAware: opts.DisableEdgeAware,
	})
	if err != nil {
		return nil, &PipelineError{Stage: StagePatterns, Err: fmt.Errorf("%w: %v", ErrResourceUnavailable, err)}
	}

	if err := checkCancel(ctx, StagePatterns); err != nil {
		return nil, err
	}

	// Optimize one palette per frame.
	report(opts, StagePalettes, 0, n)
	palettes := make([][]palette.RGB, n)
	err = forEachFrame(opts, StagePalettes, n, func(i int) error {
		palettes[i] = palette.Build(frames[i])
		return nil
	})
	if err != nil {
		return nil, &PipelineError{Stage: StagePalettes, Err: fmt.Errorf("%w: %v", ErrPaletteBuild, err)}
	}

	if err := checkCancel(ctx, StagePalettes); err != nil {
		return nil, err
	}

	// Dither every frame against its own palette.
	report(opts, StageDither, 0, n)
	indexFrames := make([][]uint8, n)
	err = forEachFrame(opts, StageDither, n, func(i int) error {
		idx, derr := d.Frame(frames[i], edge, edge, i, palettes[i])
		if derr != nil {
			return derr
		}
		indexFrames[i] = idx
		return nil
	})
	if err != nil {
		return nil, &PipelineError{Stage: StageDither, Err: err}
	}

	if err := checkCancel(ctx, StageDither); err != nil {
		return nil, err
	}

	// Serialize in strict capture order.
	report(opts, StageEncoding, 0, n)
	delay := 100 / opts.FPS
	encFrames := make([]gifenc.Frame, n)
	for i := range encFrames {
		encFrames[i] = gifenc.Frame{
			Indices: indexFrames[i],
			Palette: palettes[i],
			DelayCS: delay,
		}
	}
	gifData, err := gifenc.EncodeBytes(encFrames, gifenc.Options{
		Width:     edge,
		Height:    edge,
		LoopCount: opts.LoopCount,
	})
	if err != nil {
		return nil, &PipelineError{Stage: StageEncoding, Err: fmt.Errorf("%w: %v", ErrEncoding, err)}
	}

	res := &Result{
		GIF:         gifData,
		FrameCount:  n,
		PaletteSize: palette.Size,
		Content:     content.Kind.String(),
		Pattern:     pat.String(),
		Kernel:      d.Kernel(),
	}

	if opts.IncludeTensor || opts.PreviewSize > 0 || opts.ReportQuality {
		colorFrames := make([][]byte, n)
		// Tensor rendering is bookkeeping after serialization; reporting
		// it under a stage name would rewind the visible progress.
		if err := forEachFrame(opts, "", n, func(i int) error {
			colorFrames[i] = renderFrame(indexFrames[i], palettes[i], frames[i])
			return nil
		}); err != nil {
			return nil, &PipelineError{Stage: StageEncoding, Err: err}
		}
		shape := tensor.Shape{Width: edge, Height: edge, Frames: n}

		if opts.IncludeTensor {
			res.Tensor, err = tensor.Build(colorFrames, shape)
			if err != nil {
				return nil, &PipelineError{Stage: StageEncoding, Err: fmt.Errorf("%w: %v", ErrEncoding, err)}
			}
		}
		if opts.PreviewSize > 0 {
			res.Preview, err = tensor.Preview(colorFrames, shape, opts.PreviewSize)
			if err != nil {
				return nil, &PipelineError{Stage: StageEncoding, Err: fmt.Errorf("%w: %v", ErrEncoding, err)}
			}
		}
		if opts.ReportQuality {
			res.Quality = qualityReport(frames, colorFrames, indexFrames, edge, opts)
		}
	}

	report(opts, StageComplete, n, n)
	res.Elapsed = time.Since(start)
	return res, nil
}

// validateBatch enforces the input contract and compacts padded rows.
func validateBatch(frames [][]byte, opts Options) ([][]byte, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: empty batch", ErrInvalidInput)
	}
	if opts.FrameCount != 0 && len(frames) != opts.FrameCount {
		return nil, fmt.Errorf("%w: got %d frames, want %d", ErrInvalidInput, len(frames), opts.FrameCount)
	}
	if ps := opts.PatternSize; ps < 0 || (ps != 0 && ps&(ps-1) != 0) {
		return nil, fmt.Errorf("%w: pattern size %d is not a power of two", ErrInvalidInput, ps)
	}
	edge := opts.EdgeSize
	want := edge * edge * 4

	if opts.RowStride != 0 && opts.RowStride != edge*4 {
		compacted := make([][]byte, len(frames))
		for i, f := range frames {
			c, err := Compact(f, edge, edge, opts.RowStride)
			if err != nil {
				return nil, fmt.Errorf("frame %d: %w", i, err)
			}
			compacted[i] = c
		}
		return compacted, nil
	}

	for i, f := range frames {
		if len(f) != want {
			return nil, fmt.Errorf("%w: frame %d is %d bytes, want %d (%dx%dx4)",
				ErrInvalidInput, i, len(f), want, edge, edge)
		}
	}
	return frames, nil
}

// forEachFrame runs fn for every frame index on a bounded worker pool,
// reporting per-frame progress for the given stage. The first error wins
// and is returned after all workers drain.
func forEachFrame(opts Options, stage Stage, n int, fn func(i int) error) error {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			if err := fn(i); err != nil {
				return err
			}
			report(opts, stage, i+1, n)
		}
		return nil
	}

	work := make(chan int, n)
	for i := 0; i < n; i++ {
		work <- i
	}
	close(work)

	errs := make(chan error, n)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				errs <- fn(i)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(errs)
	}()

	var firstErr error
	done := 0
	for err := range errs {
		if err != nil && firstErr == nil {
			firstErr = err
		}
		done++
		report(opts, stage, done, n)
	}
	return firstErr
}

// renderFrame expands palette indices back to RGBA, carrying the source
// frame's alpha channel through unchanged.
func renderFrame(indices []uint8, pal []palette.RGB, src []byte) []byte {
	out := make([]byte, len(indices)*4)
	for i, idx := range indices {
		c := pal[idx]
		p := i * 4
		out[p] = c.R
		out[p+1] = c.G
		out[p+2] = c.B
		out[p+3] = src[p+3]
	}
	return out
}

func qualityReport(src, rendered [][]byte, indexFrames [][]uint8, edge int, opts Options) *QualityReport {
	var deltaE, ssim float64
	for i := range src {
		deltaE += quality.MeanDeltaE(src[i], rendered[i])
		ssim += quality.SSIM(lumaPlane(src[i]), lumaPlane(rendered[i]), edge, edge)
	}
	n := float64(len(src))
	r := &QualityReport{
		MeanDeltaE:        deltaE / n,
		SSIM:              ssim / n,
		TemporalCoherence: quality.TemporalCoherence(indexFrames),
	}
	r.MeetsTargets = r.MeanDeltaE < opts.TargetDeltaE &&
		r.SSIM >= opts.TargetSSIM &&
		r.TemporalCoherence >= opts.TargetCoherence
	return r
}

func lumaPlane(rgba []byte) []uint8 {
	n := len(rgba) / 4
	out := make([]uint8, n)
	for i := 0; i < n; i++ {
		p := i * 4
		l := 0.299*float64(rgba[p]) + 0.587*float64(rgba[p+1]) + 0.114*float64(rgba[p+2])
		out[i] = uint8(l + 0.5)
	}
	return out
}

// report forwards a progress event. An empty stage marks internal
// bookkeeping work that is not part of the visible stage sequence.
func report(opts Options, stage Stage, done, total int) {
	if stage == "" {
		return
	}
	if opts.Progress != nil {
		opts.Progress(stage, done, total)
	}
}

func checkCancel(ctx context.Context, stage Stage) error {
	select {
	case <-ctx.Done():
		return &PipelineError{Stage: stage, Err: ctx.Err()}
	default:
		return nil
	}
}
