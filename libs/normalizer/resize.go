package normalizer

// Policy computes the target dimensions of a normalized image. Implementations
// only ever downscale and preserve the aspect ratio.
type Policy interface {
	Bounds(width, height int) (int, int)
}

// MaxWidth limits the width. Taller-than-wide images are not constrained on height.
type MaxWidth int

// Bounds implements Policy.
func (b MaxWidth) Bounds(width, height int) (int, int) {
	bound := int(b)
	if bound <= 0 || width <= bound {
		return width, height
	}
	return bound, atLeastOne(height * bound / width)
}

// MaxSide limits the longest side.
type MaxSide int

// Bounds implements Policy.
func (b MaxSide) Bounds(width, height int) (int, int) {
	bound := int(b)
	longest := max(width, height)
	if bound <= 0 || longest <= bound {
		return width, height
	}
	return atLeastOne(width * bound / longest), atLeastOne(height * bound / longest)
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
