// Package text contains a plain text image format, used to write small images
// inline in tests.
//
// The format looks like:
//
//	! SKTEXTSIMPLE
//	width height
//	0x000000ff 0xffffffff ...
//	0xddddddff 0xffffff88 ...
//
// Pixels are 0xRRGGBBAA, 0xRRGGBB (opaque) or 0xXX (opaque gray). Rows are
// separated by newlines and pixels within a row by whitespace.
package text

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"io"
	"strconv"
	"strings"

	"go.skia.org/webshot/go/skerr"
)

const header = "! SKTEXTSIMPLE"

// readDimensions consumes the header and dimension lines.
func readDimensions(s *bufio.Scanner) (int, int, error) {
	if !nextLine(s) {
		return 0, 0, skerr.Fmt("missing SKTEXTSIMPLE header")
	}
	if got := strings.TrimSpace(s.Text()); got != header {
		return 0, 0, skerr.Fmt("not a SKTEXTSIMPLE image, header was %q", got)
	}
	if !nextLine(s) {
		return 0, 0, skerr.Fmt("missing dimensions line")
	}
	var width, height int
	if n, err := fmt.Sscanf(strings.TrimSpace(s.Text()), "%d %d", &width, &height); err != nil || n != 2 {
		return 0, 0, skerr.Fmt("invalid dimensions line %q", s.Text())
	}
	if width < 0 || height < 0 {
		return 0, 0, skerr.Fmt("negative dimensions %dx%d", width, height)
	}
	return width, height, nil
}

// nextLine advances to the next non-blank line.
func nextLine(s *bufio.Scanner) bool {
	for s.Scan() {
		if strings.TrimSpace(s.Text()) != "" {
			return true
		}
	}
	return false
}

func parsePixel(h string) (color.NRGBA, error) {
	if !strings.HasPrefix(h, "0x") {
		return color.NRGBA{}, skerr.Fmt("pixel %q must start with 0x", h)
	}
	v, err := strconv.ParseUint(h[2:], 16, 32)
	if err != nil {
		return color.NRGBA{}, skerr.Wrapf(err, "parsing pixel %q", h)
	}
	switch len(h) - 2 {
	case 2:
		g := uint8(v)
		return color.NRGBA{R: g, G: g, B: g, A: 0xff}, nil
	case 6:
		return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
	case 8:
		return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
	}
	return color.NRGBA{}, skerr.Fmt("pixel %q must be 0xXX, 0xRRGGBB or 0xRRGGBBAA", h)
}

// Decode reads an SKTEXTSIMPLE image. The returned image is always an *image.NRGBA.
func Decode(r io.Reader) (image.Image, error) {
	s := bufio.NewScanner(r)
	width, height, err := readDimensions(s)
	if err != nil {
		return nil, skerr.Wrap(err)
	}
	ret := image.NewNRGBA(image.Rect(0, 0, width, height))
	y := 0
	for nextLine(s) {
		if y >= height {
			return nil, skerr.Fmt("too many rows, expected %d", height)
		}
		fields := strings.Fields(s.Text())
		if len(fields) != width {
			return nil, skerr.Fmt("row %d has %d pixels, expected %d", y, len(fields), width)
		}
		for x, f := range fields {
			c, err := parsePixel(f)
			if err != nil {
				return nil, skerr.Wrapf(err, "row %d", y)
			}
			ret.SetNRGBA(x, y, c)
		}
		y++
	}
	if err := s.Err(); err != nil {
		return nil, skerr.Wrap(err)
	}
	if y != height {
		return nil, skerr.Fmt("found %d rows, expected %d", y, height)
	}
	return ret, nil
}

// DecodeConfig returns the dimensions of an SKTEXTSIMPLE image without
// decoding the pixels.
func DecodeConfig(r io.Reader) (image.Config, error) {
	width, height, err := readDimensions(bufio.NewScanner(r))
	if err != nil {
		return image.Config{}, skerr.Wrap(err)
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      width,
		Height:     height,
	}, nil
}

// Encode writes m in SKTEXTSIMPLE format using 0xRRGGBBAA pixels.
func Encode(w io.Writer, m *image.NRGBA) error {
	b := m.Bounds()
	if _, err := fmt.Fprintf(w, "%s\n%d %d\n", header, b.Dx(), b.Dy()); err != nil {
		return skerr.Wrap(err)
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := make([]string, 0, b.Dx())
		for x := b.Min.X; x < b.Max.X; x++ {
			c := m.NRGBAAt(x, y)
			row = append(row, fmt.Sprintf("0x%02x%02x%02x%02x", c.R, c.G, c.B, c.A))
		}
		if _, err := fmt.Fprintln(w, strings.Join(row, " ")); err != nil {
			return skerr.Wrap(err)
		}
	}
	return nil
}

func init() {
	image.RegisterFormat("sktext", header, Decode, DecodeConfig)
}

// MustToNRGBA decodes s, which must be an SKTEXTSIMPLE image, and panics
// otherwise. Suitable only for test data.
func MustToNRGBA(s string) *image.NRGBA {
	img, err := Decode(strings.NewReader(s))
	if err != nil {
		panic(fmt.Sprintf("Failed to decode a valid image: %s", err))
	}
	return img.(*image.NRGBA)
}
