package comparison

import (
	"image"
	"math"

	"gonum.org/v1/gonum/stat"

	"go.skia.org/webshot/go/sklog"
)

// SSIM stabilizing constants for an 8-bit dynamic range.
const (
	dynamicRange = 255.0
	ssimC1       = (0.01 * dynamicRange) * (0.01 * dynamicRange)
	ssimC2       = (0.03 * dynamicRange) * (0.03 * dynamicRange)
)

// All of the functions below expect two images of identical size whose bounds
// start at the origin. An empty image is treated as identical to another empty
// image.

// pixelDiffSimilarity returns 1 - d/total, where d is the number of pixels for
// which PixelsEqual is false, along with d.
func pixelDiffSimilarity(img1, img2 *image.NRGBA, ignoreAntialiasing bool) (float64, int) {
	b := img1.Bounds()
	total := b.Dx() * b.Dy()
	if total == 0 {
		return 1, 0
	}
	different := 0
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if !PixelsEqual(rgbAt(img1, x, y), rgbAt(img2, x, y), ignoreAntialiasing) {
				different++
			}
		}
	}
	sklog.Debugf("Pixel diff: %d/%d different pixels", different, total)
	return 1 - float64(different)/float64(total), different
}

// ssimSimilarity computes SSIM once over the whole luma image, using the
// unbiased (n-1) estimators for variance and covariance, clamped to [0, 1].
func ssimSimilarity(img1, img2 *image.NRGBA) float64 {
	g1 := grayValues(grayscale(img1))
	g2 := grayValues(grayscale(img2))
	if len(g1) == 0 {
		return 1
	}

	mean1 := stat.Mean(g1, nil)
	mean2 := stat.Mean(g2, nil)
	// The unbiased estimators are undefined for a single pixel, where there is
	// no spread to measure.
	var var1, var2, covar float64
	if len(g1) > 1 {
		var1 = stat.Variance(g1, nil)
		var2 = stat.Variance(g2, nil)
		covar = stat.Covariance(g1, g2, nil)
	}

	numerator := (2*mean1*mean2 + ssimC1) * (2*covar + ssimC2)
	denominator := (mean1*mean1 + mean2*mean2 + ssimC1) * (var1 + var2 + ssimC2)
	return clamp01(numerator / denominator)
}

// grayValues returns the pixels of img as float64s, row by row.
func grayValues(img *image.Gray) []float64 {
	b := img.Bounds()
	ret := make([]float64, 0, b.Dx()*b.Dy())
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+b.Dx()]
		for _, v := range row {
			ret = append(ret, float64(v))
		}
	}
	return ret
}

// meanSquaredError returns the mean of the squared differences of every
// channel of every pixel, i.e. divided by width*height*3.
func meanSquaredError(img1, img2 *image.NRGBA) float64 {
	b := img1.Bounds()
	n := b.Dx() * b.Dy() * 3
	if n == 0 {
		return 0
	}
	sum := 0.0
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c1 := rgbAt(img1, x, y)
			c2 := rgbAt(img2, x, y)
			for _, d := range [3]float64{
				float64(c1.R) - float64(c2.R),
				float64(c1.G) - float64(c2.G),
				float64(c1.B) - float64(c2.B),
			} {
				sum += d * d
			}
		}
	}
	return sum / float64(n)
}

// mseSimilarity maps the mean squared error onto (0, 1] as 1 / (1 + mse/255).
// The mapping is not a standard normalization, but thresholds in existing
// configurations depend on it.
func mseSimilarity(img1, img2 *image.NRGBA) float64 {
	mse := meanSquaredError(img1, img2)
	return 1 / (1 + mse/dynamicRange)
}

// psnrSimilarity rescales PSNR in dB linearly onto [0, 1] by dividing by 100
// and clamping. This is a coarse rescaling and not a perceptual mapping. PSNR
// is infinite for identical images, which map to exactly 1.
func psnrSimilarity(img1, img2 *image.NRGBA) float64 {
	mse := meanSquaredError(img1, img2)
	if mse == 0 {
		return 1
	}
	psnr := 20*math.Log10(dynamicRange) - 10*math.Log10(mse)
	return clamp01(psnr / 100)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
