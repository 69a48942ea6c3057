package core

import "math"

// FitWithin returns the size of a w×h image scaled uniformly to fit the
// maxW×maxH box. A zero bound leaves that axis unconstrained; when both are
// zero the size is returned unchanged. The ratio may exceed 1, so an image
// smaller than the box is enlarged to touch it.
func FitWithin(w, h, maxW, maxH int) Dimensions {
	if w <= 0 || h <= 0 {
		return Dimensions{Width: w, Height: h}
	}

	var ratio float64
	switch {
	case maxW > 0 && maxH > 0:
		ratio = math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	case maxW > 0:
		ratio = float64(maxW) / float64(w)
	case maxH > 0:
		ratio = float64(maxH) / float64(h)
	default:
		return Dimensions{Width: w, Height: h}
	}

	return Dimensions{
		Width:  scaleAxis(w, ratio),
		Height: scaleAxis(h, ratio),
	}
}

func scaleAxis(n int, ratio float64) int {
	v := int(math.Round(float64(n) * ratio))
	if v < 1 {
		return 1
	}
	return v
}
