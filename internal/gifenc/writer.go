// Package gifenc serializes palette-indexed frames into a GIF89a stream:
// logical screen descriptor, global color table, NETSCAPE2.0 loop
// extension, then one graphic control + image descriptor + LZW-compressed
// data block per frame, closed by the trailer.
//
// Palettes are written exactly as supplied, never re-quantized. The first
// frame's palette becomes the global color table; frames whose palette
// differs get a local color table.
package gifenc

import (
	"bufio"
	"compress/lzw"
	"errors"
	"fmt"
	"io"

	"github.com/EduardoPava11/RGB2GIF2VOXEL-sub002/internal/palette"
)

var (
	// ErrNoFrames is returned when encoding is attempted with zero frames.
	ErrNoFrames = errors.New("gifenc: no frames")

	// ErrIndexRange is returned when a frame references a palette index
	// beyond its color table.
	ErrIndexRange = errors.New("gifenc: palette index out of range")
)

// Frame is one serialized animation step.
type Frame struct {
	// Indices holds one palette index per pixel, row-major.
	Indices []uint8

	// Palette is the frame's color table, at most 256 entries.
	Palette []palette.RGB

	// DelayCS is the display delay in centiseconds.
	DelayCS int
}

// Options controls the container-level metadata.
type Options struct {
	// Width and Height describe the logical screen and every frame.
	Width, Height int

	// LoopCount is the NETSCAPE2.0 repetition count; 0 loops forever.
	LoopCount int
}

// Encode validates and serializes the frames to w in order.
func Encode(w io.Writer, frames []Frame, opts Options) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	if opts.Width <= 0 || opts.Height <= 0 || opts.Width > 0xFFFF || opts.Height > 0xFFFF {
		return fmt.Errorf("gifenc: invalid screen size %dx%d", opts.Width, opts.Height)
	}
	for i, f := range frames {
		if len(f.Palette) == 0 || len(f.Palette) > 256 {
			return fmt.Errorf("gifenc: frame %d: palette has %d entries", i, len(f.Palette))
		}
		if len(f.Indices) != opts.Width*opts.Height {
			return fmt.Errorf("gifenc: frame %d: %d indices for %dx%d frame",
				i, len(f.Indices), opts.Width, opts.Height)
		}
		for _, idx := range f.Indices {
			if int(idx) >= len(f.Palette) {
				return fmt.Errorf("gifenc: frame %d: %w: %d >= %d",
					i, ErrIndexRange, idx, len(f.Palette))
			}
		}
	}

	bw := bufio.NewWriter(w)
	e := &encoder{w: bw, opts: opts}
	e.writeHeader(frames[0].Palette)
	for i := range frames {
		e.writeFrame(&frames[i], frames[0].Palette)
	}
	e.writeByte(0x3B) // trailer
	if e.err != nil {
		return e.err
	}
	return bw.Flush()
}

// EncodeBytes serializes to a fresh byte slice.
func EncodeBytes(frames []Frame, opts Options) ([]byte, error) {
	var buf writerBuffer
	if err := Encode(&buf, frames, opts); err != nil {
		return nil, err
	}
	return buf.b, nil
}

type writerBuffer struct{ b []byte }

func (w *writerBuffer) Write(p []byte) (int, error) {
	w.b = append(w.b, p...)
	return len(p), nil
}

// encoder tracks the first write error and stops emitting after it, so the
// block writers stay branch-free.
type encoder struct {
	w    *bufio.Writer
	opts Options
	err  error
	buf  [16]byte
}

func (e *encoder) write(p []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(p)
}

func (e *encoder) writeByte(b byte) {
	if e.err != nil {
		return
	}
	e.err = e.w.WriteByte(b)
}

func (e *encoder) writeUint16(v int) {
	e.buf[0] = byte(v)
	e.buf[1] = byte(v >> 8)
	e.write(e.buf[:2])
}

// paletteSizeBits returns the descriptor size field: the color table holds
// 2^(bits+1) entries.
func paletteSizeBits(n int) int {
	bits := 0
	for 1<<(bits+1) < n {
		bits++
	}
	return bits
}

// writeColorTable emits the palette as packed RGB triples, zero-padded to
// the power-of-two table size the descriptor declares.
func (e *encoder) writeColorTable(pal []palette.RGB, bits int) {
	entries := 1 << (bits + 1)
	for _, c := range pal {
		e.buf[0], e.buf[1], e.buf[2] = c.R, c.G, c.B
		e.write(e.buf[:3])
	}
	e.buf[0], e.buf[1], e.buf[2] = 0, 0, 0
	for i := len(pal); i < entries; i++ {
		e.write(e.buf[:3])
	}
}

func (e *encoder) writeHeader(global []palette.RGB) {
	e.write([]byte("GIF89a"))

	// Logical screen descriptor.
	e.writeUint16(e.opts.Width)
	e.writeUint16(e.opts.Height)
	bits := paletteSizeBits(len(global))
	// Global color table present, 8 bits of color resolution.
	e.writeByte(byte(0x80 | 0x70 | bits))
	e.writeByte(0) // background color index
	e.writeByte(0) // pixel aspect ratio
	e.writeColorTable(global, bits)

	// NETSCAPE2.0 application extension: loop count.
	e.writeByte(0x21) // extension introducer
	e.writeByte(0xFF) // application extension
	e.writeByte(0x0B)
	e.write([]byte("NETSCAPE2.0"))
	e.writeByte(0x03)
	e.writeByte(0x01)
	e.writeUint16(e.opts.LoopCount)
	e.writeByte(0x00) // block terminator
}

func (e *encoder) writeFrame(f *Frame, global []palette.RGB) {
	// Graphic control extension.
	e.writeByte(0x21)
	e.writeByte(0xF9)
	e.writeByte(0x04)
	e.writeByte(0x04) // disposal: do not dispose
	e.writeUint16(f.DelayCS)
	e.writeByte(0x00) // no transparent index
	e.writeByte(0x00) // block terminator

	// Image descriptor.
	e.writeByte(0x2C)
	e.writeUint16(0) // left
	e.writeUint16(0) // top
	e.writeUint16(e.opts.Width)
	e.writeUint16(e.opts.Height)

	local := !paletteEqual(f.Palette, global)
	if local {
		bits := paletteSizeBits(len(f.Palette))
		e.writeByte(byte(0x80 | bits))
		e.writeColorTable(f.Palette, bits)
	} else {
		e.writeByte(0x00)
	}

	// LZW minimum code size, then the compressed stream in sub-blocks.
	litWidth := paletteSizeBits(len(f.Palette)) + 1
	if litWidth < 2 {
		litWidth = 2
	}
	e.writeByte(byte(litWidth))
	if e.err != nil {
		return
	}
	bw := &blockWriter{e: e}
	lw := lzw.NewWriter(bw, lzw.LSB, litWidth)
	if _, err := lw.Write(f.Indices); err != nil && e.err == nil {
		e.err = err
	}
	if err := lw.Close(); err != nil && e.err == nil {
		e.err = err
	}
	bw.flush()
	e.writeByte(0x00) // data sub-block terminator
}

func paletteEqual(a, b []palette.RGB) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// blockWriter chops the LZW stream into GIF data sub-blocks of at most 255
// bytes, each preceded by its length.
type blockWriter struct {
	e   *encoder
	buf [255]byte
	n   int
}

func (b *blockWriter) Write(p []byte) (int, error) {
	if b.e.err != nil {
		return 0, b.e.err
	}
	total := len(p)
	for len(p) > 0 {
		n := copy(b.buf[b.n:], p)
		b.n += n
		p = p[n:]
		if b.n == len(b.buf) {
			b.emit()
		}
	}
	return total, b.e.err
}

func (b *blockWriter) emit() {
	b.e.writeByte(byte(b.n))
	b.e.write(b.buf[:b.n])
	b.n = 0
}

func (b *blockWriter) flush() {
	if b.n > 0 {
		b.emit()
	}
}
