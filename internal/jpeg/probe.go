package jpeg

import (
	"fmt"

	"github.com/davesmith10/jpgtranscode/internal/ir"
)

// defaultDimension is reported for an empty source, matching the CSS default
// width and height of an image with unknown size.
const defaultDimension = 100

// maxPixelsPerByte bounds how many frame pixels one byte of input may claim.
// Baseline Huffman coding spends at least one bit on the DC term of every
// 8x8 block, so a complete grayscale stream backs at most 512 pixels per
// byte; the slack admits truncated streams, whose missing blocks are padded.
const maxPixelsPerByte = 1 << 13

// colorSpaceName returns a string for libjpeg's J_COLOR_SPACE.
func colorSpaceName(cs int) string {
	switch cs {
	case 0:
		return "Unknown"
	case 1:
		return "Grayscale"
	case 2:
		return "RGB"
	case 3:
		return "YCbCr"
	case 4:
		return "CMYK"
	case 5:
		return "YCCK"
	default:
		return fmt.Sprintf("J_COLOR_SPACE(%d)", cs)
	}
}

// ImageInfo contains metadata about a JPEG stream.
type ImageInfo struct {
	Width         int // output width after DCT scaling
	Height        int // output height after DCT scaling
	ImageWidth    int // width stored in the frame header
	ImageHeight   int // height stored in the frame header
	NumComponents int
	ColorSpace    string
	BitsPerPixel  int // 8 per component in the frame
	Progressive   bool
	Quality       int    // estimated IJG quality of the luminance table, 0 if unknown
	ICC           []byte // extracted ICC profile, nil if absent
}

// Probe reads JPEG metadata without decoding any scanlines. An empty source
// is not an error: it reports a 100x100 image.
func Probe(data []byte, opts DecodeOptions) (*ImageInfo, error) {
	if len(data) == 0 {
		return &ImageInfo{
			Width:        defaultDimension,
			Height:       defaultDimension,
			ImageWidth:   defaultDimension,
			ImageHeight:  defaultDimension,
			ColorSpace:   colorSpaceName(0),
			BitsPerPixel: 24,
		}, nil
	}
	scale, err := opts.scaleDenom()
	if err != nil {
		return nil, err
	}

	d, err := newDecompressor(data, true)
	if err != nil {
		return nil, err
	}
	defer d.close()

	if err := d.readHeader(scale); err != nil {
		return nil, err
	}
	h := d.header()

	icc, err := ExtractICC(d.app2Markers())
	if err != nil {
		return nil, fmt.Errorf("extracting ICC: %w", err)
	}

	info := &ImageInfo{
		Width:         h.width,
		Height:        h.height,
		ImageWidth:    h.imageWidth,
		ImageHeight:   h.imageHeight,
		NumComponents: h.numComponents,
		ColorSpace:    colorSpaceName(h.colorSpace),
		BitsPerPixel:  8 * h.numComponents,
		Progressive:   h.progressive,
		ICC:           icc,
	}
	if h.lumaQuant != nil {
		info.Quality = EstimateQuality(*h.lumaQuant)
	}
	return info, nil
}

// Dimensions returns the output width and height Probe reports.
func Dimensions(data []byte, opts DecodeOptions) (width, height int, err error) {
	info, err := Probe(data, opts)
	if err != nil {
		return 0, 0, err
	}
	return info.Width, info.Height, nil
}

// CheckFrameSize rejects frame headers whose dimensions srcLen bytes of
// input are too small to encode, before any buffer is sized from them.
func CheckFrameSize(info *ImageInfo, srcLen int) error {
	if srcLen == 0 {
		return nil
	}
	pixels := int64(info.ImageWidth) * int64(info.ImageHeight)
	if pixels > int64(srcLen)*maxPixelsPerByte {
		return fmt.Errorf("%w: %dx%d frame cannot be backed by %d bytes of input",
			ir.ErrAllocation, info.ImageWidth, info.ImageHeight, srcLen)
	}
	return nil
}
