package quality

import "math"

// CIEDE2000 color difference between 8-bit sRGB colors, via CIE Lab under
// the D65 illuminant. Reference: Sharma, Wu, Dalal, "The CIEDE2000
// Color-Difference Formula: Implementation Notes" (2005).

type lab struct {
	l, a, b float64
}

func srgbToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// rgbToLab converts 8-bit sRGB to Lab (D65 reference white).
func rgbToLab(r8, g8, b8 uint8) lab {
	r := srgbToLinear(float64(r8) / 255)
	g := srgbToLinear(float64(g8) / 255)
	b := srgbToLinear(float64(b8) / 255)

	// Linear sRGB -> XYZ, scaled to the D65 white point.
	x := (0.4124564*r + 0.3575761*g + 0.1804375*b) / 0.95047
	y := 0.2126729*r + 0.7151522*g + 0.0721750*b
	z := (0.0193339*r + 0.1191920*g + 0.9503041*b) / 1.08883

	f := func(t float64) float64 {
		const delta = 6.0 / 29.0
		if t > delta*delta*delta {
			return math.Cbrt(t)
		}
		return t/(3*delta*delta) + 4.0/29.0
	}
	fx, fy, fz := f(x), f(y), f(z)
	return lab{
		l: 116*fy - 16,
		a: 500 * (fx - fy),
		b: 200 * (fy - fz),
	}
}

// DeltaE2000 returns the CIEDE2000 difference between two 8-bit sRGB
// colors. Values below ~1.5 are generally imperceptible.
func DeltaE2000(r1, g1, b1, r2, g2, b2 uint8) float64 {
	c1 := rgbToLab(r1, g1, b1)
	c2 := rgbToLab(r2, g2, b2)
	return deltaE2000Lab(c1, c2)
}

func deltaE2000Lab(x, y lab) float64 {
	const rad = math.Pi / 180

	cab1 := math.Hypot(x.a, x.b)
	cab2 := math.Hypot(y.a, y.b)
	cabMean := (cab1 + cab2) / 2

	g := 0.5 * (1 - math.Sqrt(math.Pow(cabMean, 7)/(math.Pow(cabMean, 7)+math.Pow(25, 7))))
	a1p := (1 + g) * x.a
	a2p := (1 + g) * y.a
	c1p := math.Hypot(a1p, x.b)
	c2p := math.Hypot(a2p, y.b)

	h1p := hueAngle(x.b, a1p)
	h2p := hueAngle(y.b, a2p)

	dL := y.l - x.l
	dC := c2p - c1p

	var dhp float64
	switch {
	case c1p*c2p == 0:
		dhp = 0
	case math.Abs(h2p-h1p) <= 180:
		dhp = h2p - h1p
	case h2p-h1p > 180:
		dhp = h2p - h1p - 360
	default:
		dhp = h2p - h1p + 360
	}
	dH := 2 * math.Sqrt(c1p*c2p) * math.Sin(dhp/2*rad)

	lMean := (x.l + y.l) / 2
	cMean := (c1p + c2p) / 2

	var hMean float64
	switch {
	case c1p*c2p == 0:
		hMean = h1p + h2p
	case math.Abs(h1p-h2p) <= 180:
		hMean = (h1p + h2p) / 2
	case h1p+h2p < 360:
		hMean = (h1p + h2p + 360) / 2
	default:
		hMean = (h1p + h2p - 360) / 2
	}

	t := 1 - 0.17*math.Cos((hMean-30)*rad) + 0.24*math.Cos(2*hMean*rad) +
		0.32*math.Cos((3*hMean+6)*rad) - 0.20*math.Cos((4*hMean-63)*rad)

	dTheta := 30 * math.Exp(-math.Pow((hMean-275)/25, 2))
	rc := 2 * math.Sqrt(math.Pow(cMean, 7)/(math.Pow(cMean, 7)+math.Pow(25, 7)))
	rt := -rc * math.Sin(2*dTheta*rad)

	lm50 := (lMean - 50) * (lMean - 50)
	sl := 1 + 0.015*lm50/math.Sqrt(20+lm50)
	sc := 1 + 0.045*cMean
	sh := 1 + 0.015*cMean*t

	return math.Sqrt(
		math.Pow(dL/sl, 2) +
			math.Pow(dC/sc, 2) +
			math.Pow(dH/sh, 2) +
			rt*(dC/sc)*(dH/sh))
}

func hueAngle(b, ap float64) float64 {
	if b == 0 && ap == 0 {
		return 0
	}
	h := math.Atan2(b, ap) * 180 / math.Pi
	if h < 0 {
		h += 360
	}
	return h
}

// MeanDeltaE returns the mean CIEDE2000 difference between two equally
// sized RGBA buffers, ignoring alpha.
func MeanDeltaE(a, b []byte) float64 {
	n := len(a) / 4
	if n == 0 || len(b) < len(a) {
		return 0
	}
	var total float64
	for i := 0; i < n; i++ {
		p := i * 4
		total += DeltaE2000(a[p], a[p+1], a[p+2], b[p], b[p+1], b[p+2])
	}
	return total / float64(n)
}
