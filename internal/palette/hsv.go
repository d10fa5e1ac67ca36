package palette

// RGBToHSV converts an 8-bit RGB color to HSV with hue in degrees [0,360),
// saturation and value in [0,1]. An achromatic color has hue 0 and
// saturation 0.
func RGBToHSV(c RGB) (h, s, v float64) {
	r := float64(c.R) / 255
	g := float64(c.G) / 255
	b := float64(c.B) / 255

	max := r
	if g > max {
		max = g
	}
	if b > max {
		max = b
	}
	min := r
	if g < min {
		min = g
	}
	if b < min {
		min = b
	}

	v = max
	delta := max - min
	if max > 0 {
		s = delta / max
	}
	if delta == 0 {
		return 0, s, v
	}

	switch max {
	case r:
		h = 60 * ((g - b) / delta)
	case g:
		h = 60 * (2 + (b-r)/delta)
	default:
		h = 60 * (4 + (r-g)/delta)
	}
	if h < 0 {
		h += 360
	}
	return h, s, v
}

// HSVToRGB converts HSV (hue in degrees, s and v in [0,1]) back to 8-bit
// RGB. For s == 0 the result is the gray with all channels equal to v, so
// RGB -> HSV -> RGB round-trips achromatic colors exactly up to rounding.
func HSVToRGB(h, s, v float64) RGB {
	if s == 0 {
		g := clamp255(v * 255)
		return RGB{g, g, g}
	}

	for h < 0 {
		h += 360
	}
	for h >= 360 {
		h -= 360
	}
	sector := int(h / 60)
	f := h/60 - float64(sector)
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	var r, g, b float64
	switch sector {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return RGB{clamp255(r * 255), clamp255(g * 255), clamp255(b * 255)}
}

func clamp255(v float64) uint8 {
	// Round half away from zero; inputs are non-negative here.
	n := int(v + 0.5)
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return uint8(n)
}
