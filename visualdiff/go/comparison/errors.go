package comparison

import (
	"fmt"
	"image"
)

// ConfigError reports unusable options, e.g. a threshold outside [0, 1], a
// missing diff output path or an unknown algorithm. It is always returned
// before any image is read.
type ConfigError struct {
	Msg string
}

func newConfigError(format string, args ...interface{}) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "configuration error: " + e.Msg
}

// ImagePosition identifies one of the two compared images.
type ImagePosition int

const (
	FirstImage ImagePosition = iota
	SecondImage
)

// String returns "first" or "second".
func (p ImagePosition) String() string {
	if p == FirstImage {
		return "first"
	}
	return "second"
}

// LoadError reports that one of the two images could not be read or decoded.
type LoadError struct {
	Which ImagePosition
	Path  string
	Err   error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s image %q: %s", e.Which, e.Path, e.Err)
}

// Unwrap returns the underlying decode or I/O error.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// DimensionMismatchError reports that the two images differ in size. The
// comparison is never attempted on a partial overlap.
type DimensionMismatchError struct {
	First  image.Point
	Second image.Point
}

// Error implements the error interface.
func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("image dimensions don't match: %dx%d vs %dx%d", e.First.X, e.First.Y, e.Second.X, e.Second.Y)
}

// WriteError reports that the diff image could not be encoded or written.
type WriteError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to save diff image %q: %s", e.Path, e.Err)
}

// Unwrap returns the underlying encode or I/O error.
func (e *WriteError) Unwrap() error {
	return e.Err
}
