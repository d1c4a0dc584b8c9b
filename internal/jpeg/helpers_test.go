package jpeg

import (
	"bytes"
	"image"
	"image/color"
	stdjpeg "image/jpeg"
	"math/rand/v2"
	"testing"

	"github.com/davesmith10/jpgtranscode/internal/ir"
)

// encodeFixture writes img as a baseline JPEG with the standard library encoder.
func encodeFixture(t *testing.T, img image.Image, quality int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := stdjpeg.Encode(&buf, img, &stdjpeg.Options{Quality: quality}); err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}
	return buf.Bytes()
}

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func noiseImage(w, h int, seed uint64) *image.RGBA {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = byte(rng.IntN(256))
		img.Pix[i+1] = byte(rng.IntN(256))
		img.Pix[i+2] = byte(rng.IntN(256))
		img.Pix[i+3] = 0xFF
	}
	return img
}

func grayGradient(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: byte((x*255)/max(w-1, 1)/2 + (y*255)/max(h-1, 1)/2)})
		}
	}
	return img
}

// checkerboard returns a packed RGB image of alternating black and white pixels.
func checkerboard(w, h int) *ir.RGBImage {
	img := &ir.RGBImage{Width: w, Height: h, Pixels: make([]byte, w*h*3)}
	for y := 0; y < h; y++ {
		row := img.Row(y)
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				row[3*x], row[3*x+1], row[3*x+2] = 0xFF, 0xFF, 0xFF
			}
		}
	}
	return img
}

// rgbFromImage packs any image into an ir.RGBImage.
func rgbFromImage(src image.Image) *ir.RGBImage {
	b := src.Bounds()
	img := &ir.RGBImage{Width: b.Dx(), Height: b.Dy(), Pixels: make([]byte, b.Dx()*b.Dy()*3)}
	for y := 0; y < b.Dy(); y++ {
		row := img.Row(y)
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, _ := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
			row[3*x], row[3*x+1], row[3*x+2] = byte(r>>8), byte(g>>8), byte(bl>>8)
		}
	}
	return img
}

func isJPEG(data []byte) bool {
	return len(data) >= 4 &&
		data[0] == 0xFF && data[1] == 0xD8 &&
		data[len(data)-2] == 0xFF && data[len(data)-1] == 0xD9
}

func absDiff(a, b byte) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

// goHeap backs memDest with Go memory for adapter tests that never reach libjpeg.
type goHeap struct {
	failAt   int // fail the failAt-th realloc, 0 never fails
	reallocs int
}

func (h *goHeap) alloc(n int) ([]byte, error) {
	return make([]byte, n), nil
}

func (h *goHeap) realloc(buf []byte, n int) ([]byte, error) {
	h.reallocs++
	if h.failAt > 0 && h.reallocs >= h.failAt {
		return nil, ErrAllocation
	}
	out := make([]byte, n)
	copy(out, buf)
	return out, nil
}

func (h *goHeap) free([]byte) {}

// cmykJPEG is a complete 8x8 baseline JPEG with four components and no Adobe
// marker, which libjpeg reads as CMYK. Every block is flat.
func cmykJPEG() []byte {
	var b []byte
	b = append(b, 0xFF, 0xD8) // SOI

	b = append(b, 0xFF, 0xDB, 0x00, 0x43, 0x00) // DQT, table 0
	b = append(b, bytes.Repeat([]byte{0x01}, 64)...)

	b = append(b, 0xFF, 0xC0, 0x00, 0x14, 0x08, // SOF0, 8-bit
		0x00, 0x08, 0x00, 0x08, // 8x8
		0x04,
		0x01, 0x11, 0x00,
		0x02, 0x11, 0x00,
		0x03, 0x11, 0x00,
		0x04, 0x11, 0x00,
	)

	// DHT: one-code DC and AC tables, DC symbol 0 and AC symbol EOB.
	oneCode := append([]byte{0x01}, make([]byte, 15)...)
	b = append(b, 0xFF, 0xC4, 0x00, 0x26)
	b = append(b, 0x00)
	b = append(b, oneCode...)
	b = append(b, 0x00)
	b = append(b, 0x10)
	b = append(b, oneCode...)
	b = append(b, 0x00)

	b = append(b, 0xFF, 0xDA, 0x00, 0x0E, 0x04, // SOS, 4 components
		0x01, 0x00, 0x02, 0x00, 0x03, 0x00, 0x04, 0x00,
		0x00, 0x3F, 0x00,
	)
	b = append(b, 0x00)       // one MCU: DC 0 + EOB for each block
	b = append(b, 0xFF, 0xD9) // EOI
	return b
}

// withFrameSize rewrites the SOF0 dimensions of a baseline stream.
func withFrameSize(t *testing.T, data []byte, w, h int) []byte {
	t.Helper()
	out := bytes.Clone(data)
	for i := 2; i+8 < len(out); i += 2 + (int(out[i+2])<<8 | int(out[i+3])) {
		if out[i+1] == 0xC0 {
			out[i+5], out[i+6] = byte(h>>8), byte(h)
			out[i+7], out[i+8] = byte(w>>8), byte(w)
			return out
		}
	}
	t.Fatal("no SOF0 marker in fixture")
	return nil
}
