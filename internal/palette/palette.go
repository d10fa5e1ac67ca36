// Package palette builds the 256-entry color table used for each frame:
// up to 128 base colors quantized from the frame, their 180-degree hue
// complements, and black padding up to exactly 256 entries.
package palette

import (
	"image/color"
)

// Size is the fixed palette length. GIF caps color tables at 256 entries.
const Size = 256

// baseColors is the quantized half of the palette; the other half holds
// the complements.
const baseColors = Size / 2

// RGB is one palette entry. Alpha is not part of a GIF color table.
type RGB struct {
	R, G, B uint8
}

// Build quantizes an RGBA frame into its 256-entry palette. The output is
// ordered base colors first (in first-appearance scan order), then their
// complements, then black padding; its length is always exactly Size.
// Build only reads the frame and is safe to run concurrently on distinct
// outputs.
func Build(rgba []byte) []RGB {
	// 5 bits per channel: drop the low 3 bits, giving 32768 buckets.
	var seen [1 << 15]bool
	base := make([]RGB, 0, baseColors)

	for p := 0; p+3 < len(rgba); p += 4 {
		r := rgba[p] >> 3
		g := rgba[p+1] >> 3
		b := rgba[p+2] >> 3
		key := uint(r)<<10 | uint(g)<<5 | uint(b)
		if seen[key] {
			continue
		}
		seen[key] = true
		// Reconstruct the 8-bit bucket center.
		base = append(base, RGB{r << 3, g << 3, b << 3})
		if len(base) == baseColors {
			break
		}
	}

	out := make([]RGB, 0, Size)
	out = append(out, base...)
	for _, c := range base {
		out = append(out, Complement(c))
	}
	for len(out) < Size {
		out = append(out, RGB{})
	}
	return out
}

// Complement returns the color with the same saturation and value but the
// hue rotated by 180 degrees.
func Complement(c RGB) RGB {
	h, s, v := RGBToHSV(c)
	h += 180
	if h >= 360 {
		h -= 360
	}
	return HSVToRGB(h, s, v)
}

// ToColorPalette converts the entries to a stdlib color.Palette of opaque
// colors, for interop with image.Paletted.
func ToColorPalette(p []RGB) color.Palette {
	cp := make(color.Palette, len(p))
	for i, c := range p {
		cp[i] = color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
	}
	return cp
}
