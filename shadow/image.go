package shadow

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
)

// Width is the default number of shadow bytes per image row.
const Width = 64

// MaxPixels bounds the size of a rendered image.
const MaxPixels = 1 << 26

var (
	ErrEmptyRegion = errors.New("shadow: region too small for one row")
	ErrTooLarge    = errors.New("shadow: image too large")
)

// Palette holds the two levels of a bit-depth-1 image. A shadow byte is
// drawn with the entry picked by its low bit.
var Palette = color.Palette{
	color.Gray{Y: 0x00},
	color.Gray{Y: 0xff},
}

type Options struct {
	// Width of the image, Width when zero.
	Width int
	// Rows fixes the height of the image, padding short regions with
	// zeros and cutting long ones. When zero, the height is the number of
	// complete rows in the region and trailing bytes are dropped. The first
	// dumps were always rendered 256 rows high.
	Rows int
	// Layout of the dump lines read by Writer.Convert.
	Layout Layout
}

func (o Options) width() int {
	if o.Width <= 0 {
		return Width
	}
	return o.Width
}

func (o Options) rows(size int) int {
	if o.Rows > 0 {
		return o.Rows
	}
	return size / o.width()
}

// Filename gives the name of the image rendered for the region at addr.
func Filename(addr uint64) string {
	return fmt.Sprintf("app_%x.png", addr)
}

// Render lays out the shadow bytes of reg row by row.
func Render(reg Region, opts Options) (*image.Paletted, error) {
	var (
		width = opts.width()
		rows  = opts.rows(len(reg.Shadow))
	)
	if rows == 0 {
		return nil, fmt.Errorf("%#x (%d bytes): %w", reg.Addr, len(reg.Shadow), ErrEmptyRegion)
	}
	if width > MaxPixels || rows > MaxPixels/width {
		return nil, fmt.Errorf("%#x: %dx%d: %w", reg.Addr, width, rows, ErrTooLarge)
	}
	img := image.NewPaletted(image.Rect(0, 0, width, rows), Palette)
	size := min(len(reg.Shadow), len(img.Pix))
	for i := 0; i < size; i++ {
		img.Pix[i] = reg.Shadow[i] & 1
	}
	return img, nil
}

// Encode writes img as PNG. A two colour palette is stored with one bit
// per pixel.
func Encode(w io.Writer, img image.Image) error {
	e := png.Encoder{
		CompressionLevel: png.BestCompression,
	}
	return e.Encode(w, img)
}
