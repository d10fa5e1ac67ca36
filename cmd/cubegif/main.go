// Command cubegif turns a batch of frames into a dithered GIF89a
// animation, with an optional RGBA voxel tensor sidecar.
//
// Usage:
//
//	cubegif enc [options] <frame.png ...>   image sequence → GIF
//	cubegif enc -raw <input.rgba> ...       packed RGBA frames → GIF
//	cubegif info <input.gif>                display GIF metadata
package main

import (
	"flag"
	"fmt"
	"image"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	xdraw "golang.org/x/image/draw"

	cubegif "github.com/EduardoPava11/RGB2GIF2VOXEL-sub002"
	"github.com/EduardoPava11/RGB2GIF2VOXEL-sub002/internal/tensor"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "enc":
		err = runEnc(os.Args[2:])
	case "info":
		err = runInfo(os.Args[2:])
	case "-h", "-help", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "cubegif: unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "cubegif: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage:
  cubegif enc [options] <frame.png ...>   Encode an image sequence to GIF
  cubegif enc -raw <input.rgba>           Encode packed RGBA frames to GIF
  cubegif info <input.gif>                Display GIF metadata

Frames given as images are resampled to the target edge size.

Run "cubegif <command> -h" for command-specific options.
`)
}

// fileConfig is the TOML shape accepted by -config. Field names follow
// the option names; explicit CLI flags override file values.
type fileConfig struct {
	Edge        int     `toml:"edge"`
	FPS         int     `toml:"fps"`
	Loop        int     `toml:"loop"`
	Strength    float32 `toml:"strength"`
	NoEdgeAware bool    `toml:"no_edge_aware"`
	PatternSize int     `toml:"pattern_size"`
	Seed        int64   `toml:"seed"`
	Workers     int     `toml:"workers"`
	Tensor      string  `toml:"tensor"`
	Preview     int     `toml:"preview"`
	PreviewOut  string  `toml:"preview_out"`
	Quality     bool    `toml:"quality"`
}

// --- enc ---

func runEnc(args []string) error {
	fs := flag.NewFlagSet("enc", flag.ContinueOnError)
	configPath := fs.String("config", "", "TOML config file (flags override)")
	raw := fs.Bool("raw", false, "input is packed RGBA frames, not images")
	stride := fs.Int("stride", 0, "row stride in bytes for -raw input (0=tight)")
	edge := fs.Int("edge", 0, "frame edge size in pixels (default 128)")
	frames := fs.Int("frames", 0, "expected frame count (0=any)")
	fps := fs.Int("fps", 0, "playback rate (default 25)")
	loop := fs.Int("loop", 0, "loop count (0=forever)")
	strength := fs.Float64("strength", 0, "dither strength in 8-bit units (default 32)")
	noEdgeAware := fs.Bool("no_edge_aware", false, "disable edge-aware dither damping")
	patternSize := fs.Int("pattern_size", 0, "dither mask edge, power of two (default 64)")
	seed := fs.Int64("seed", 0, "pattern generation seed (default 1)")
	workers := fs.Int("workers", 0, "parallel workers (default GOMAXPROCS)")
	tensorOut := fs.String("tensor", "", "write RGBA voxel tensor (.zst for compressed)")
	preview := fs.Int("preview", 0, "emit NxN preview tensor")
	previewOut := fs.String("preview_out", "", "preview tensor output path")
	quality := fs.Bool("quality", false, "print the quality report")
	progress := fs.Bool("progress", false, "report stage progress on stderr")
	output := fs.String("o", "", `output path (default: <input>.gif, "-" for stdout)`)

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("enc: missing input\nUsage: cubegif enc [options] <frame.png ...>")
	}

	opts := cubegif.Options{}
	var cfg fileConfig
	if *configPath != "" {
		if _, err := toml.DecodeFile(*configPath, &cfg); err != nil {
			return fmt.Errorf("enc: reading config: %w", err)
		}
		opts.EdgeSize = cfg.Edge
		opts.FPS = cfg.FPS
		opts.LoopCount = cfg.Loop
		opts.DitherStrength = cfg.Strength
		opts.DisableEdgeAware = cfg.NoEdgeAware
		opts.PatternSize = cfg.PatternSize
		opts.PatternSeed = cfg.Seed
		opts.Workers = cfg.Workers
		opts.PreviewSize = cfg.Preview
		opts.ReportQuality = cfg.Quality
		if *tensorOut == "" {
			*tensorOut = cfg.Tensor
		}
		if *previewOut == "" {
			*previewOut = cfg.PreviewOut
		}
	}
	// Explicit flags take precedence over the config file.
	if *edge > 0 {
		opts.EdgeSize = *edge
	}
	if *fps > 0 {
		opts.FPS = *fps
	}
	if *loop > 0 {
		opts.LoopCount = *loop
	}
	if *strength > 0 {
		opts.DitherStrength = float32(*strength)
	}
	if *noEdgeAware {
		opts.DisableEdgeAware = true
	}
	if *patternSize > 0 {
		opts.PatternSize = *patternSize
	}
	if *seed != 0 {
		opts.PatternSeed = *seed
	}
	if *workers > 0 {
		opts.Workers = *workers
	}
	if *preview > 0 {
		opts.PreviewSize = *preview
	}
	if *quality {
		opts.ReportQuality = true
	}
	opts.FrameCount = *frames
	opts.IncludeTensor = *tensorOut != ""
	if opts.PreviewSize > 0 && *previewOut == "" {
		return fmt.Errorf("enc: -preview requires -preview_out")
	}
	if opts.EdgeSize == 0 {
		opts.EdgeSize = cubegif.DefaultEdgeSize
	}
	if *progress {
		opts.Progress = func(stage cubegif.Stage, done, total int) {
			fmt.Fprintf(os.Stderr, "\r%-20s %d/%d", stage, done, total)
			if stage == cubegif.StageComplete {
				fmt.Fprintln(os.Stderr)
			}
		}
	}

	if *stride > 0 && !*raw {
		return fmt.Errorf("enc: -stride only applies to -raw input")
	}

	var batch [][]byte
	var err error
	if *raw {
		batch, err = loadRaw(fs.Arg(0), opts.EdgeSize, *stride)
	} else {
		batch, err = loadImages(fs.Args(), opts.EdgeSize)
	}
	if err != nil {
		return fmt.Errorf("enc: %w", err)
	}

	res, err := cubegif.Process(batch, opts)
	if err != nil {
		return fmt.Errorf("enc: %w", err)
	}

	outPath := *output
	if outPath == "" {
		base := strings.TrimSuffix(filepath.Base(fs.Arg(0)), filepath.Ext(fs.Arg(0)))
		outPath = base + ".gif"
	}
	if err := writeOutput(outPath, res.GIF); err != nil {
		return fmt.Errorf("enc: %w", err)
	}

	if *tensorOut != "" {
		if err := writeTensor(*tensorOut, res.Tensor); err != nil {
			return fmt.Errorf("enc: %w", err)
		}
	}
	if *previewOut != "" {
		if err := writeOutput(*previewOut, res.Preview); err != nil {
			return fmt.Errorf("enc: %w", err)
		}
	}

	fmt.Fprintf(os.Stderr, "Encoded %d frames → %s (%d bytes, %s content, %s pattern, %v)\n",
		res.FrameCount, outPath, len(res.GIF), res.Content, res.Pattern, res.Elapsed.Round(time.Millisecond))
	if res.Quality != nil {
		fmt.Fprintf(os.Stderr, "Quality: ΔE=%.2f SSIM=%.3f coherence=%.3f targets met=%v\n",
			res.Quality.MeanDeltaE, res.Quality.SSIM, res.Quality.TemporalCoherence, res.Quality.MeetsTargets)
	}
	return nil
}

// loadImages decodes and resamples each input image to edge x edge RGBA.
// Inputs are processed in sorted name order so shell globs behave.
func loadImages(paths []string, edge int) ([][]byte, error) {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	batch := make([][]byte, 0, len(sorted))
	for _, p := range sorted {
		f, err := os.Open(p)
		if err != nil {
			return nil, err
		}
		img, _, err := image.Decode(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", p, err)
		}
		batch = append(batch, resample(img, edge))
	}
	return batch, nil
}

// resample scales img to edge x edge using Catmull-Rom interpolation and
// returns the packed RGBA pixels.
func resample(img image.Image, edge int) []byte {
	dst := image.NewNRGBA(image.Rect(0, 0, edge, edge))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	return dst.Pix
}

// loadRaw splits a packed RGBA file into frames. With a non-zero stride
// rows are compacted first.
func loadRaw(path string, edge, stride int) ([][]byte, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	frameBytes := edge * edge * 4
	if stride > 0 {
		frameBytes = edge * stride
	}
	if frameBytes == 0 || len(data)%frameBytes != 0 {
		return nil, fmt.Errorf("input size %d is not a multiple of the %d-byte frame", len(data), frameBytes)
	}

	batch := make([][]byte, 0, len(data)/frameBytes)
	for off := 0; off < len(data); off += frameBytes {
		frame := data[off : off+frameBytes]
		if stride > 0 {
			frame, err = cubegif.Compact(frame, edge, edge, stride)
			if err != nil {
				return nil, err
			}
		}
		batch = append(batch, frame)
	}
	return batch, nil
}

func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// writeTensor writes the voxel tensor, zstd-compressed when the path ends
// in .zst.
func writeTensor(path string, t []byte) error {
	if !strings.HasSuffix(path, ".zst") {
		return writeOutput(path, t)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := tensor.WriteCompressed(f, t); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// --- info ---

func runInfo(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("info: missing input file\nUsage: cubegif info <input.gif>")
	}
	inputPath := args[0]

	var r io.Reader
	if inputPath == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(inputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	g, err := gif.DecodeAll(r)
	if err != nil {
		return fmt.Errorf("info: %w", err)
	}

	name := inputPath
	if inputPath == "-" {
		name = "<stdin>"
	}

	fmt.Printf("File:       %s\n", name)
	fmt.Printf("Dimensions: %d x %d\n", g.Config.Width, g.Config.Height)
	fmt.Printf("Frames:     %d\n", len(g.Image))
	loop := "infinite"
	if g.LoopCount > 0 {
		loop = fmt.Sprintf("%d", g.LoopCount)
	}
	fmt.Printf("Loop count: %s\n", loop)
	if len(g.Delay) > 0 {
		fmt.Printf("Delay:      %d cs\n", g.Delay[0])
	}
	if len(g.Image) > 0 {
		fmt.Printf("Palette:    %d colors\n", len(g.Image[0].Palette))
	}

	if inputPath != "-" {
		fi, err := os.Stat(inputPath)
		if err == nil {
			fmt.Printf("File size:  %d bytes\n", fi.Size())
		}
	}

	return nil
}
