package jpeg

import (
	"fmt"
	"log/slog"

	"github.com/davesmith10/jpgtranscode/internal/ir"
)

// markerAPP2 carries ICC profile chunks.
const markerAPP2 = 0xE2

// EncoderOptions controls RGB JPEG encoding.
type EncoderOptions struct {
	Quality        int  // 0-100; libjpeg treats 0 as 1
	OptimizeCoding bool // compute optimal Huffman tables (slower, smaller)
	// InitialCapacity sizes the output buffer before it has to grow.
	InitialCapacity int
}

// EncodeRGB encodes packed RGB pixels to JPEG entirely in memory. img.Pixels
// must be img.Width*img.Height*3 bytes. img.ICC, when set, is embedded as
// APP2 markers.
func EncodeRGB(img *ir.RGBImage, opts EncoderOptions) ([]byte, error) {
	if opts.Quality < 0 || opts.Quality > 100 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQuality, opts.Quality)
	}
	expectedSize := img.Width * img.Height * ir.BytesPerPixel
	if len(img.Pixels) != expectedSize {
		return nil, fmt.Errorf("expected %d RGB bytes, got %d", expectedSize, len(img.Pixels))
	}

	c, err := newCompressor(opts.InitialCapacity)
	if err != nil {
		return nil, err
	}
	defer c.close()

	if err := c.start(img.Width, img.Height, opts.Quality, opts.OptimizeCoding); err != nil {
		return nil, err
	}

	if len(img.ICC) > 0 {
		chunks, err := ChunkICC(img.ICC)
		if err != nil {
			return nil, fmt.Errorf("chunking ICC: %w", err)
		}
		for _, chunk := range chunks {
			if err := c.writeMarker(markerAPP2, chunk); err != nil {
				return nil, err
			}
		}
	}

	for c.nextScanline() < img.Height {
		if err := c.writeScanline(img.Row(c.nextScanline())); err != nil {
			return nil, err
		}
	}

	if err := c.finish(); err != nil {
		return nil, err
	}

	encoded := c.dst.bytes()
	output := make([]byte, len(encoded))
	copy(output, encoded)

	if c.dst.grows > 0 {
		slog.Debug("jpeg: output buffer grew",
			"initial_capacity", opts.InitialCapacity,
			"grows", c.dst.grows,
			"size", len(output),
		)
	}
	return output, nil
}
