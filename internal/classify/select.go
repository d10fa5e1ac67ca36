package classify

// Pattern names the dither threshold source chosen for a batch.
type Pattern int

const (
	// PatternSTBN uses the spatiotemporal blue-noise cube.
	PatternSTBN Pattern = iota
	// PatternBayer uses the ordered Bayer matrix.
	PatternBayer
	// PatternBlueNoise uses the Poisson-disk blue-noise field.
	PatternBlueNoise
	// PatternComposite blends STBN and Bayer per pixel at dither time.
	PatternComposite
)

func (p Pattern) String() string {
	switch p {
	case PatternSTBN:
		return "stbn3d"
	case PatternBayer:
		return "bayer"
	case PatternBlueNoise:
		return "bluenoise"
	default:
		return "composite"
	}
}

// SelectPattern maps a content label to its dither pattern.
func SelectPattern(k Kind) Pattern {
	switch k {
	case Photographic:
		return PatternSTBN
	case Graphic:
		return PatternBayer
	case Gradient:
		return PatternBlueNoise
	default:
		return PatternComposite
	}
}

// Composite blend weights, applied per pixel at dither time.
const (
	CompositeSTBNWeight  = 0.7
	CompositeBayerWeight = 0.3
)
