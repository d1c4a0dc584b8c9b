package ir

import (
	"errors"
	"fmt"
	"math"
)

// BytesPerPixel is the width of one packed R,G,B sample.
const BytesPerPixel = 3

// ErrAllocation is returned when a pixel buffer cannot be allocated.
var ErrAllocation = errors.New("allocation failed")

// RGBImage is the intermediate representation passed between the JPEG decoder
// and the JPEG encoder. Pixels are stored as interleaved R,G,B bytes (3 bytes
// per pixel, row-major order) regardless of the source component count.
type RGBImage struct {
	Width  int
	Height int
	Pixels []byte // len = Width * Height * 3
	ICC    []byte // ICC profile to embed in output, nil for none
}

// NewRGBImage allocates a zeroed image. maxPixels caps Width*Height; zero
// means no cap beyond what the address space allows.
func NewRGBImage(width, height, maxPixels int) (*RGBImage, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", width, height)
	}
	if height > 0 && width > math.MaxInt/BytesPerPixel/height {
		return nil, fmt.Errorf("%w: %dx%d overflows", ErrAllocation, width, height)
	}
	if maxPixels > 0 && width*height > maxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrAllocation, width, height, maxPixels)
	}
	return &RGBImage{
		Width:  width,
		Height: height,
		Pixels: make([]byte, width*height*BytesPerPixel),
	}, nil
}

// Stride returns the number of bytes in one row.
func (m *RGBImage) Stride() int {
	return m.Width * BytesPerPixel
}

// Row returns the bytes of row y.
func (m *RGBImage) Row(y int) []byte {
	off := y * m.Stride()
	return m.Pixels[off : off+m.Stride()]
}
