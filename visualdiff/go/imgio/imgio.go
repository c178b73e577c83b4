// Package imgio reads and writes raster images, picking the codec from the
// file contents when reading and from the file extension when writing.
package imgio

import (
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // Register the WebP decoder.

	"go.skia.org/webshot/go/skerr"
	"go.skia.org/webshot/go/util"
)

// jpegQuality is used when writing JPEG files.
const jpegQuality = 95

const maxGIFColors = 256

// encoderFn writes img to w in a specific format.
type encoderFn func(w io.Writer, img image.Image) error

type format struct {
	encode encoderFn
	// lossy formats may not reproduce pixel values exactly.
	lossy bool
}

// formats maps lower case file extensions to encoders.
var formats = map[string]format{
	".png":  {encode: png.Encode},
	".jpg":  {encode: encodeJPEG, lossy: true},
	".jpeg": {encode: encodeJPEG, lossy: true},
	".gif":  {encode: encodeGIF},
	".bmp":  {encode: bmp.Encode},
	".tif":  {encode: encodeTIFF},
	".tiff": {encode: encodeTIFF},
}

func encodeJPEG(w io.Writer, img image.Image) error {
	return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
}

// encodeGIF writes img with a palette of exactly the colors it uses, so
// opaque pixels are never approximated. Images with more than 256 distinct colors are
// rejected rather than quantized.
func encodeGIF(w io.Writer, img image.Image) error {
	pal, err := exactPalette(img)
	if err != nil {
		return err
	}
	return gif.Encode(w, pal, &gif.Options{NumColors: len(pal.Palette), Drawer: draw.Src})
}

func exactPalette(img image.Image) (*image.Paletted, error) {
	b := img.Bounds()
	index := map[color.NRGBA]uint8{}
	var palette color.Palette
	indices := make([]uint8, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			i, ok := index[c]
			if !ok {
				if len(palette) == maxGIFColors {
					return nil, skerr.Fmt("GIF can hold at most %d colors; image has more", maxGIFColors)
				}
				i = uint8(len(palette))
				index[c] = i
				palette = append(palette, c)
			}
			indices = append(indices, i)
		}
	}
	if len(palette) == 0 {
		palette = color.Palette{color.NRGBA{A: 0xff}}
	}
	pal := image.NewPaletted(b, palette)
	for y := 0; y < b.Dy(); y++ {
		copy(pal.Pix[y*pal.Stride:y*pal.Stride+b.Dx()], indices[y*b.Dx():(y+1)*b.Dx()])
	}
	return pal, nil
}

func encodeTIFF(w io.Writer, img image.Image) error {
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
}

// SupportedExtensions returns the file extensions Save can write, sorted.
func SupportedExtensions() []string {
	ret := make([]string, 0, len(formats))
	for ext := range formats {
		ret = append(ret, ext)
	}
	sort.Strings(ret)
	return ret
}

// IsLossy reports whether Save may alter pixel values when writing path, based
// on its extension. Unsupported extensions are not lossy.
func IsLossy(path string) bool {
	return formats[strings.ToLower(filepath.Ext(path))].lossy
}

// Load decodes the image stored at path. PNG, JPEG, GIF, BMP, TIFF and WebP
// are recognized by their contents.
func Load(path string) (image.Image, error) {
	var img image.Image
	err := util.WithReadFile(path, func(r io.Reader) error {
		var err error
		img, _, err = image.Decode(r)
		return err
	})
	if err != nil {
		return nil, skerr.Wrapf(err, "decoding %s", path)
	}
	return img, nil
}

// Save encodes img to path in the format given by the file extension. The
// file is replaced atomically. The parent directory must exist.
func Save(path string, img image.Image) error {
	ext := strings.ToLower(filepath.Ext(path))
	f, ok := formats[ext]
	if !ok {
		return skerr.Fmt("unsupported image extension %q for %s; supported: %s", ext, path, strings.Join(SupportedExtensions(), ", "))
	}
	if err := util.WithWriteFile(path, func(w io.Writer) error {
		return f.encode(w, img)
	}); err != nil {
		return skerr.Wrapf(err, "encoding %s", path)
	}
	return nil
}
