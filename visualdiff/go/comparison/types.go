// Package comparison compares two rendered images and decides whether they
// are similar enough, for use in visual regression tests.
//
// A comparison scores the pair with one of a closed set of algorithms, applies
// a threshold to the score and can optionally write a diff image that paints
// the differing pixels in a highlight color.
package comparison

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// Algorithm names one of the supported similarity algorithms.
type Algorithm string

const (
	// PixelDiff counts the pixels that differ by more than a small per-channel
	// tolerance. It is the only algorithm that reports a differing pixel count.
	PixelDiff Algorithm = "PixelDiff"

	// SSIM is the structural similarity index, computed once over the whole
	// grayscale image rather than over sliding windows.
	SSIM Algorithm = "SSIM"

	// MSE is the mean squared error over all channels, mapped onto (0, 1].
	MSE Algorithm = "MSE"

	// PSNR is the peak signal-to-noise ratio, linearly rescaled onto [0, 1].
	PSNR Algorithm = "PSNR"
)

// AllAlgorithms returns every supported Algorithm.
func AllAlgorithms() []Algorithm {
	return []Algorithm{PixelDiff, SSIM, MSE, PSNR}
}

// supportedNames lists the names accepted by ParseAlgorithm, for error messages.
const supportedNames = "pixel-diff, ssim, mse, psnr"

// ParseAlgorithm returns the Algorithm for the given user supplied name. Names
// are case insensitive. Returns a *ConfigError for unknown names.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "pixel-diff", "pixel", "pixeldiff":
		return PixelDiff, nil
	case "ssim":
		return SSIM, nil
	case "mse":
		return MSE, nil
	case "psnr":
		return PSNR, nil
	}
	if suggestion := closestAlgorithmName(name); suggestion != "" {
		return "", newConfigError("unknown algorithm: %q. Did you mean %q? Supported: %s", name, suggestion, supportedNames)
	}
	return "", newConfigError("unknown algorithm: %q. Supported: %s", name, supportedNames)
}

// maxSuggestionDistance is the largest edit distance for which ParseAlgorithm
// suggests a name.
const maxSuggestionDistance = 2

// editOptions weighs insertions, deletions and substitutions equally.
var editOptions = levenshtein.Options{
	InsCost: 1,
	DelCost: 1,
	SubCost: 1,
	Matches: levenshtein.IdenticalRunes,
}

// closestAlgorithmName returns the canonical algorithm name closest to name,
// or "" if none is within maxSuggestionDistance edits.
func closestAlgorithmName(name string) string {
	src := []rune(strings.ToLower(strings.TrimSpace(name)))
	best, bestDist := "", maxSuggestionDistance+1
	for _, candidate := range []string{"pixel-diff", "ssim", "mse", "psnr"} {
		d := levenshtein.DistanceForStrings(src, []rune(candidate), editOptions)
		if d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}

// Valid returns true if a is one of the known algorithms.
func (a Algorithm) Valid() bool {
	switch a {
	case PixelDiff, SSIM, MSE, PSNR:
		return true
	}
	return false
}

// RGB is an 8-bit per channel color.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String returns the color in the "R,G,B" notation accepted by ParseRGB.
func (c RGB) String() string {
	return fmt.Sprintf("%d,%d,%d", c.R, c.G, c.B)
}

// ParseRGB parses a color given either as "R,G,B" with decimal components in
// [0, 255], e.g. "255,0,0", or as a hex string, e.g. "#ff0000".
func ParseRGB(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(s)
		if err != nil {
			return RGB{}, newConfigError("invalid color %q: %s", s, err)
		}
		r, g, b := c.RGB255()
		return RGB{R: r, G: g, B: b}, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return RGB{}, newConfigError("invalid color format: %q. Expected format: R,G,B (e.g. 255,0,0) or #rrggbb", s)
	}
	var ch [3]uint8
	for i, name := range []string{"red", "green", "blue"} {
		v, err := strconv.ParseUint(strings.TrimSpace(parts[i]), 10, 8)
		if err != nil {
			return RGB{}, newConfigError("invalid %s value: %q", name, parts[i])
		}
		ch[i] = uint8(v)
	}
	return RGB{R: ch[0], G: ch[1], B: ch[2]}, nil
}

// DefaultThreshold is the threshold used when none is given.
const DefaultThreshold = 0.1

// DefaultDiffColor is the color differing pixels are painted with by default.
var DefaultDiffColor = RGB{R: 255, G: 0, B: 0}

// Options configures a single comparison. Build it with DefaultOptions and
// the With* helpers, or as a struct literal, and check it with Validate.
type Options struct {
	// Algorithm selects how the similarity score is computed.
	Algorithm Algorithm

	// Threshold is the largest dissimilarity (1 - similarity) that still counts
	// as similar. Must be in [0, 1].
	Threshold float64

	// GenerateDiffImage requests a diff image be written to DiffOutputPath.
	GenerateDiffImage bool

	// DiffOutputPath is where the diff image is written. The file extension
	// picks the encoding. Required iff GenerateDiffImage is true.
	DiffOutputPath string

	// IgnoreAntialiasing widens the per-channel tolerance used to decide if two
	// pixels are equal.
	IgnoreAntialiasing bool

	// DiffColor is the color used to paint differing pixels in the diff image.
	DiffColor RGB
}

// DefaultOptions returns PixelDiff with a 0.1 threshold, no diff image, strict
// tolerance and a red diff color.
func DefaultOptions() Options {
	return Options{
		Algorithm: PixelDiff,
		Threshold: DefaultThreshold,
		DiffColor: DefaultDiffColor,
	}
}

// WithAlgorithm returns a copy of o using the given algorithm.
func (o Options) WithAlgorithm(a Algorithm) Options {
	o.Algorithm = a
	return o
}

// WithThreshold returns a copy of o using the given threshold. The value is
// not clamped; Validate reports values outside [0, 1].
func (o Options) WithThreshold(threshold float64) Options {
	o.Threshold = threshold
	return o
}

// WithDiffImage returns a copy of o that writes a diff image to path.
func (o Options) WithDiffImage(path string) Options {
	o.GenerateDiffImage = true
	o.DiffOutputPath = path
	return o
}

// WithIgnoreAntialiasing returns a copy of o with the widened pixel tolerance.
func (o Options) WithIgnoreAntialiasing() Options {
	o.IgnoreAntialiasing = true
	return o
}

// WithDiffColor returns a copy of o that paints differing pixels in c.
func (o Options) WithDiffColor(c RGB) Options {
	o.DiffColor = c
	return o
}

// Validate returns a *ConfigError if the options cannot be used.
func (o Options) Validate() error {
	if !o.Algorithm.Valid() {
		return newConfigError("unknown algorithm: %q. Supported: %s", o.Algorithm, supportedNames)
	}
	if math.IsNaN(o.Threshold) || o.Threshold < 0 || o.Threshold > 1 {
		return newConfigError("threshold must be between 0.0 and 1.0, got: %v", o.Threshold)
	}
	if o.GenerateDiffImage && o.DiffOutputPath == "" {
		return newConfigError("diff output path must be specified when generating a diff image")
	}
	return nil
}

// Result is the outcome of a single comparison.
type Result struct {
	// Similar is true iff Similarity >= 1 - Threshold.
	Similar bool `json:"similar"`

	// Similarity is in [0, 1], where 1 means identical.
	Similarity float64 `json:"similarity"`

	// DifferentPixels is only set for PixelDiff.
	DifferentPixels *int `json:"different_pixels,omitempty"`

	// TotalPixels is width * height of the compared images.
	TotalPixels int `json:"total_pixels"`

	Algorithm Algorithm `json:"algorithm"`
	Threshold float64   `json:"threshold"`

	// DiffImagePath is only set if a diff image was written.
	DiffImagePath string `json:"diff_image_path,omitempty"`
}

// DifferentPixelsPercent returns the percentage of differing pixels, and false
// if the result has no pixel count.
func (r Result) DifferentPixelsPercent() (float64, bool) {
	if r.DifferentPixels == nil {
		return 0, false
	}
	if r.TotalPixels == 0 {
		return 0, true
	}
	return float64(*r.DifferentPixels) / float64(r.TotalPixels) * 100, true
}
