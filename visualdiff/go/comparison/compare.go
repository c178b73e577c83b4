package comparison

import (
	"image"

	"go.skia.org/webshot/go/skerr"
	"go.skia.org/webshot/go/sklog"
	"go.skia.org/webshot/visualdiff/go/imgio"
)

// Compare scores img1 against img2 with the algorithm selected in opts and
// decides whether they are similar.
//
// The options are validated before the images are looked at. Images of
// different sizes are never compared and produce a *DimensionMismatchError.
// If a diff image was requested and cannot be written the whole call fails
// with a *WriteError.
//
// Compare keeps no state between calls and may be called concurrently, as
// long as concurrent calls use distinct diff output paths.
func Compare(img1, img2 image.Image, opts Options) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, skerr.Wrap(err)
	}
	if err := checkDimensions(img1, img2); err != nil {
		return Result{}, skerr.Wrap(err)
	}
	nrgba1 := toNRGBA(img1)
	nrgba2 := toNRGBA(img2)
	b := nrgba1.Bounds()

	sklog.Infof("Comparing images using %s algorithm", opts.Algorithm)
	var similarity float64
	var differentPixels *int
	switch opts.Algorithm {
	case PixelDiff:
		var d int
		similarity, d = pixelDiffSimilarity(nrgba1, nrgba2, opts.IgnoreAntialiasing)
		differentPixels = &d
	case SSIM:
		similarity = ssimSimilarity(nrgba1, nrgba2)
	case MSE:
		similarity = mseSimilarity(nrgba1, nrgba2)
	case PSNR:
		similarity = psnrSimilarity(nrgba1, nrgba2)
	default:
		// Unreachable, Validate rejects unknown algorithms.
		return Result{}, skerr.Wrap(newConfigError("unknown algorithm: %q", opts.Algorithm))
	}

	ret := Result{
		Similar:         similarity >= 1-opts.Threshold,
		Similarity:      similarity,
		DifferentPixels: differentPixels,
		TotalPixels:     b.Dx() * b.Dy(),
		Algorithm:       opts.Algorithm,
		Threshold:       opts.Threshold,
	}

	if opts.GenerateDiffImage {
		sklog.Info("Generating difference image")
		if err := writeDiffImage(nrgba1, nrgba2, opts.DiffOutputPath, opts.IgnoreAntialiasing, opts.DiffColor); err != nil {
			return Result{}, skerr.Wrap(err)
		}
		ret.DiffImagePath = opts.DiffOutputPath
	}
	return ret, nil
}

// CompareFiles is like Compare, but loads the two images from files first. A
// failure to load either image is reported as a *LoadError that says which
// of the two could not be loaded.
func CompareFiles(path1, path2 string, opts Options) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, skerr.Wrap(err)
	}
	sklog.Info("Loading images for comparison")
	img1, err := imgio.Load(path1)
	if err != nil {
		return Result{}, skerr.Wrap(&LoadError{Which: FirstImage, Path: path1, Err: err})
	}
	img2, err := imgio.Load(path2)
	if err != nil {
		return Result{}, skerr.Wrap(&LoadError{Which: SecondImage, Path: path2, Err: err})
	}
	return Compare(img1, img2, opts)
}

// checkDimensions returns a *DimensionMismatchError if the images differ in size.
func checkDimensions(img1, img2 image.Image) error {
	s1 := img1.Bounds().Size()
	s2 := img2.Bounds().Size()
	if s1 != s2 {
		return &DimensionMismatchError{First: s1, Second: s2}
	}
	return nil
}
