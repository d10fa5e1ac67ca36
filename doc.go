// Package cubegif provides a pure Go pipeline that encodes a batch of
// square RGBA frames into a quality-optimized, palette-indexed GIF89a
// animation, with an optional raw voxel tensor of the same frames for
// volumetric visualization.
//
// The pipeline supports:
//   - Precomputed dither masks: spatiotemporal blue noise (void-and-cluster),
//     recursive Bayer matrices, Poisson-disk blue noise, Hilbert traversal
//   - Per-batch content classification driving pattern selection
//   - Per-frame 256-entry palettes with complementary-color augmentation
//   - Variance-adaptive, edge-aware ordered dithering
//   - GIF89a serialization with loop metadata and per-frame color tables
//   - Frame-major voxel tensor output, raw or zstd-compressed
//
// Basic usage:
//
//	res, err := cubegif.Process(frames, cubegif.Options{IncludeTensor: true})
//	if err != nil {
//		return err
//	}
//	os.WriteFile("out.gif", res.GIF, 0o644)
package cubegif
