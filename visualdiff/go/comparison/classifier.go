package comparison

import (
	"image"
	"image/draw"
)

const (
	// strictTolerance is the largest per-channel difference two pixels may
	// have and still be considered equal.
	strictTolerance = 2

	// antialiasingTolerance replaces strictTolerance when anti-aliasing
	// differences are ignored.
	antialiasingTolerance = 10
)

// PixelsEqual returns true if every channel of a and b differs by at most the
// tolerance. It is used both to count differing pixels for PixelDiff and to
// decide which pixels are painted in the diff image, whatever algorithm
// produced the score.
func PixelsEqual(a, b RGB, ignoreAntialiasing bool) bool {
	if a == b {
		return true
	}
	tolerance := strictTolerance
	if ignoreAntialiasing {
		tolerance = antialiasingTolerance
	}
	return absDiff(a.R, b.R) <= tolerance &&
		absDiff(a.G, b.G) <= tolerance &&
		absDiff(a.B, b.B) <= tolerance
}

// absDiff returns |m - n| as an int.
func absDiff(m, n uint8) int {
	if m > n {
		return int(m - n)
	}
	return int(n - m)
}

// toNRGBA returns img as an *image.NRGBA whose bounds start at the origin,
// converting it if needed.
func toNRGBA(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Rect.Min == (image.Point{}) {
		return nrgba
	}
	b := img.Bounds()
	ret := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(ret, ret.Bounds(), img, b.Min, draw.Src)
	return ret
}

// rgbAt returns the color channels at (x, y), ignoring alpha.
func rgbAt(img *image.NRGBA, x, y int) RGB {
	i := img.PixOffset(x, y)
	return RGB{R: img.Pix[i], G: img.Pix[i+1], B: img.Pix[i+2]}
}
