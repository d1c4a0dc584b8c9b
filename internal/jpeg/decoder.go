package jpeg

import (
	"fmt"

	"github.com/davesmith10/jpgtranscode/internal/ir"
)

// DecodeOptions controls how a JPEG is decoded. Probe and the decoders must
// be given the same options for their dimensions to agree.
type DecodeOptions struct {
	// Scale is the DCT downscale denominator: 1, 2, 4 or 8. Zero means 1.
	Scale int
	// MaxPixels caps the image DecodeRGB allocates; zero means no cap.
	MaxPixels int
}

func (o DecodeOptions) scaleDenom() (int, error) {
	switch o.Scale {
	case 0, 1:
		return 1, nil
	case 2, 4, 8:
		return o.Scale, nil
	default:
		return 0, fmt.Errorf("unsupported scale 1/%d (want 1, 2, 4 or 8)", o.Scale)
	}
}

// DecodeInto decodes a JPEG from memory into dst as packed RGB. dst must
// have the dimensions Probe reports for the same data and options.
// Grayscale sources are expanded to three identical channels. Zero-length
// data is a no-op and leaves dst untouched.
func DecodeInto(data []byte, dst *ir.RGBImage, opts DecodeOptions) error {
	if len(data) == 0 {
		return nil
	}
	scale, err := opts.scaleDenom()
	if err != nil {
		return err
	}

	d, err := newDecompressor(data, false)
	if err != nil {
		return err
	}
	defer d.close()

	if err := d.readHeader(scale); err != nil {
		return err
	}
	if err := d.start(); err != nil {
		return err
	}

	h := d.header()
	if h.components != 1 && h.components != 3 {
		return fmt.Errorf("%w: %d components (%s)",
			ErrUnsupportedComponents, h.components, colorSpaceName(h.colorSpace))
	}
	if dst.Width != h.width || dst.Height != h.height || len(dst.Pixels) != h.width*h.height*ir.BytesPerPixel {
		return fmt.Errorf("%w: buffer %dx%d (%d bytes), decoded %dx%d",
			ErrDimensionMismatch, dst.Width, dst.Height, len(dst.Pixels), h.width, h.height)
	}

	rows := d.scanlines()
	for rows.Next() {
		if err := expandRow(dst.Row(rows.Y()), rows.Row(), h.width, h.components); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if err := d.finish(); err != nil {
		return err
	}

	d.logWarnings()
	return nil
}

// DecodeRGB decodes a JPEG from memory into a freshly allocated RGB image,
// carrying over any embedded ICC profile. Frame headers that claim more
// pixels than the data can hold fail with ErrAllocation.
func DecodeRGB(data []byte, opts DecodeOptions) (*ir.RGBImage, error) {
	info, err := Probe(data, opts)
	if err != nil {
		return nil, err
	}
	if err := CheckFrameSize(info, len(data)); err != nil {
		return nil, err
	}
	img, err := ir.NewRGBImage(info.Width, info.Height, opts.MaxPixels)
	if err != nil {
		return nil, err
	}
	if err := DecodeInto(data, img, opts); err != nil {
		return nil, err
	}
	img.ICC = info.ICC
	return img, nil
}

// expandRow converts one native scanline into packed RGB.
func expandRow(dst, src []byte, width, components int) error {
	switch components {
	case 1:
		for x, v := range src[:width] {
			dst[3*x] = v
			dst[3*x+1] = v
			dst[3*x+2] = v
		}
	case 3:
		copy(dst[:width*3], src[:width*3])
	default:
		return fmt.Errorf("%w: %d components", ErrUnsupportedComponents, components)
	}
	return nil
}
