package transcode

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/davesmith10/jpgtranscode/internal/color"
	"github.com/davesmith10/jpgtranscode/internal/ir"
	"github.com/davesmith10/jpgtranscode/internal/jpeg"
)

// Options controls a decode → recompress run.
type Options struct {
	Quality        int    // output JPEG quality (0-100)
	Scale          int    // DCT downscale denominator: 1, 2, 4 or 8
	KeepICC        bool   // carry the source ICC profile into the output
	ICC            []byte // optional: profile to embed instead of the source one
	OptimizeCoding bool
	// MaxPixels refuses sources with more pixels than this. Zero means
	// DefaultMaxPixels, a negative value disables the cap.
	MaxPixels int
}

// DefaultMaxPixels caps the decoded image at 100 megapixels (300 MB of RGB).
const DefaultMaxPixels = 100_000_000

func (o Options) pixelCap() int {
	switch {
	case o.MaxPixels == 0:
		return DefaultMaxPixels
	case o.MaxPixels < 0:
		return 0
	default:
		return o.MaxPixels
	}
}

// Result holds the output of a transcode run.
type Result struct {
	Data          []byte // encoded JPEG; len(Data) is the output length
	Width         int
	Height        int
	SrcComponents int
	SrcQuality    int // estimated quality of the source, 0 if unknown
	SessionID     string
}

// Run decodes a JPEG held in memory and re-encodes it at opts.Quality:
// probe → allocate RGB buffer → decode → encode. An empty source yields a
// black 100x100 image.
func Run(src []byte, opts Options) (*Result, error) {
	id := uuid.New().String()
	decOpts := jpeg.DecodeOptions{Scale: opts.Scale}

	// 1. Probe dimensions
	info, err := jpeg.Probe(src, decOpts)
	if err != nil {
		return nil, fmt.Errorf("probe: %w", err)
	}
	slog.Debug("transcode: probed source",
		"session", id,
		"size", len(src),
		"width", info.Width,
		"height", info.Height,
		"components", info.NumComponents,
		"quality", info.Quality,
	)

	// 2. Allocate the pixel buffer
	if err := jpeg.CheckFrameSize(info, len(src)); err != nil {
		return nil, fmt.Errorf("pixel buffer: %w", err)
	}
	img, err := ir.NewRGBImage(info.Width, info.Height, opts.pixelCap())
	if err != nil {
		return nil, fmt.Errorf("pixel buffer: %w", err)
	}

	// 3. Decode into it
	if err := jpeg.DecodeInto(src, img, decOpts); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	// 4. Pick the profile to embed
	img.ICC = outputICC(info.ICC, opts)

	// 5. Recompress
	encoded, err := jpeg.EncodeRGB(img, jpeg.EncoderOptions{
		Quality:         opts.Quality,
		OptimizeCoding:  opts.OptimizeCoding,
		InitialCapacity: len(src),
	})
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	slog.Debug("transcode: encoded output",
		"session", id,
		"quality", opts.Quality,
		"size", len(encoded),
		"icc", len(img.ICC),
	)

	return &Result{
		Data:          encoded,
		Width:         img.Width,
		Height:        img.Height,
		SrcComponents: info.NumComponents,
		SrcQuality:    info.Quality,
		SessionID:     id,
	}, nil
}

// outputICC returns the profile to embed, or nil. The output is always RGB,
// so a source profile for any other space (grayscale in practice) is not
// carried over.
func outputICC(src []byte, opts Options) []byte {
	if opts.ICC != nil {
		return opts.ICC
	}
	if !opts.KeepICC || src == nil {
		return nil
	}
	pi, err := color.ParseProfileInfo(src)
	if err != nil {
		slog.Warn("transcode: dropping unreadable source ICC profile", "error", err)
		return nil
	}
	if !pi.MatchesComponents(ir.BytesPerPixel) {
		slog.Debug("transcode: dropping source ICC profile", "space", color.ColorSpaceName(pi.ColorSpace))
		return nil
	}
	return src
}
