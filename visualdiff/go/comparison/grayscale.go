package comparison

import (
	"image"
)

// Luma weights of the red, green and blue channels.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// Grayscale returns the luma of img, truncated to 8 bits, with bounds starting
// at the origin.
func Grayscale(img image.Image) *image.Gray {
	return grayscale(toNRGBA(img))
}

func grayscale(img *image.NRGBA) *image.Gray {
	b := img.Bounds()
	ret := image.NewGray(b)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := rgbAt(img, x, y)
			ret.Pix[ret.PixOffset(x, y)] = uint8(lumaR*float64(c.R) + lumaG*float64(c.G) + lumaB*float64(c.B))
		}
	}
	return ret
}
