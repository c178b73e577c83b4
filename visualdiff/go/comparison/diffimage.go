package comparison

import (
	"image"
	"image/color"

	"go.skia.org/webshot/go/skerr"
	"go.skia.org/webshot/go/sklog"
	"go.skia.org/webshot/visualdiff/go/imgio"
)

// DiffImage returns an opaque image the size of the inputs in which every
// pixel that PixelsEqual considers equal is copied from img1 and every other
// pixel is painted in diffColor. Returns a *DimensionMismatchError if the
// images differ in size.
func DiffImage(img1, img2 image.Image, ignoreAntialiasing bool, diffColor RGB) (*image.NRGBA, error) {
	if err := checkDimensions(img1, img2); err != nil {
		return nil, skerr.Wrap(err)
	}
	return diffImage(toNRGBA(img1), toNRGBA(img2), ignoreAntialiasing, diffColor), nil
}

func diffImage(img1, img2 *image.NRGBA, ignoreAntialiasing bool, diffColor RGB) *image.NRGBA {
	b := img1.Bounds()
	ret := image.NewNRGBA(b)
	highlight := color.NRGBA{R: diffColor.R, G: diffColor.G, B: diffColor.B, A: 0xff}
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c1 := rgbAt(img1, x, y)
			if PixelsEqual(c1, rgbAt(img2, x, y), ignoreAntialiasing) {
				ret.SetNRGBA(x, y, color.NRGBA{R: c1.R, G: c1.G, B: c1.B, A: 0xff})
			} else {
				ret.SetNRGBA(x, y, highlight)
			}
		}
	}
	return ret
}

// writeDiffImage synthesizes the diff image and saves it to path, returning a
// *WriteError on failure.
func writeDiffImage(img1, img2 *image.NRGBA, path string, ignoreAntialiasing bool, diffColor RGB) error {
	diff := diffImage(img1, img2, ignoreAntialiasing, diffColor)
	if imgio.IsLossy(path) {
		sklog.Warningf("%s uses a lossy format; its pixels may not exactly match the first image or the diff color %s", path, diffColor)
	}
	if err := imgio.Save(path, diff); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	sklog.Infof("Difference image saved to: %s", path)
	return nil
}
