// Convenience utilities for testing.
package testutils

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"github.com/stretchr/testify/require"
)

// SolidNRGBA returns a width x height opaque image filled with the given color.
func SolidNRGBA(width, height int, r, g, b uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.NRGBA{R: r, G: g, B: b, A: 0xff}}, image.Point{}, draw.Src)
	return img
}

// WritePNG encodes img as a PNG named name inside dir and returns the full path.
func WritePNG(t require.TestingT, dir, name string, img image.Image) string {
	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	CloseInTest(t, f)
	return p
}

// ReadImage decodes the image at path with any registered decoder.
func ReadImage(t require.TestingT, path string) image.Image {
	f, err := os.Open(path)
	require.NoError(t, err)
	defer CloseInTest(t, f)
	img, _, err := image.Decode(f)
	require.NoError(t, err)
	return img
}

// CloseInTest takes an io.Closer-like value and Closes it, reporting any error.
func CloseInTest(t require.TestingT, c interface{ Close() error }) {
	require.NoError(t, c.Close())
}
