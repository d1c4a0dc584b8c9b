// Package color inspects the ICC profiles carried in JPEG APP2 markers.
package color

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

const (
	headerSize     = 128
	maxProfileSize = 4 * 1024 * 1024 // 4 MB
	acspMagic      = 0x61637370      // 'acsp'
)

// ErrInvalidProfile is returned for data that is not a usable ICC profile.
var ErrInvalidProfile = errors.New("invalid ICC profile")

// ProfileInfo contains metadata parsed from an ICC profile header.
type ProfileInfo struct {
	Size       uint32 // size declared in the header
	Version    string
	ColorSpace string // data color space signature: "RGB ", "GRAY", "CMYK", ...
	PCS        string // "XYZ ", "Lab "
	Class      string // "mntr", "prtr", "scnr", etc.
	Intent     uint32 // rendering intent, 0-3
}

// Channels returns the number of components the profile's color space
// describes, or 0 for spaces a JPEG transcode never meets.
func (p *ProfileInfo) Channels() int {
	switch p.ColorSpace {
	case "GRAY":
		return 1
	case "RGB ", "YCbr", "Lab ", "XYZ ":
		return 3
	case "CMYK":
		return 4
	default:
		return 0
	}
}

// MatchesComponents reports whether the profile can describe pixels with n
// components.
func (p *ProfileInfo) MatchesComponents(n int) bool {
	return p.Channels() == n
}

func (p *ProfileInfo) String() string {
	return fmt.Sprintf("%s %s profile v%s (%d bytes, PCS %s)",
		ColorSpaceName(p.ColorSpace), ProfileClassName(p.Class), p.Version, p.Size, p.PCS)
}

// ParseProfileInfo reads ICC header metadata from raw profile bytes.
func ParseProfileInfo(data []byte) (*ProfileInfo, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: too short (%d < %d bytes)", ErrInvalidProfile, len(data), headerSize)
	}
	if len(data) > maxProfileSize {
		return nil, fmt.Errorf("%w: too large (%d bytes, max %d)", ErrInvalidProfile, len(data), maxProfileSize)
	}
	sig := binary.BigEndian.Uint32(data[36:40])
	if sig != acspMagic {
		return nil, fmt.Errorf("%w: signature 0x%08x (expected 0x%08x)", ErrInvalidProfile, sig, acspMagic)
	}
	size := binary.BigEndian.Uint32(data[0:4])
	if int64(size) > int64(len(data)) {
		return nil, fmt.Errorf("%w: header declares %d bytes, have %d", ErrInvalidProfile, size, len(data))
	}

	return &ProfileInfo{
		Size:       size,
		Version:    fmt.Sprintf("%d.%d.%d", data[8], data[9]>>4, data[9]&0x0f),
		ColorSpace: string(data[16:20]),
		PCS:        string(data[20:24]),
		Class:      string(data[12:16]),
		Intent:     binary.BigEndian.Uint32(data[64:68]),
	}, nil
}

// LoadProfile reads an ICC profile from disk and validates it for embedding
// in an RGB JPEG.
func LoadProfile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ICC profile: %w", err)
	}
	info, err := ParseProfileInfo(data)
	if err != nil {
		return nil, fmt.Errorf("validating ICC profile %s: %w", path, err)
	}
	if !info.MatchesComponents(3) {
		return nil, fmt.Errorf("validating ICC profile %s: %w: %s space cannot describe RGB output",
			path, ErrInvalidProfile, ColorSpaceName(info.ColorSpace))
	}
	return data, nil
}

// ColorSpaceName returns a human-readable name for an ICC color space signature.
func ColorSpaceName(sig string) string {
	switch sig {
	case "RGB ":
		return "RGB"
	case "CMYK":
		return "CMYK"
	case "GRAY":
		return "Grayscale"
	case "YCbr":
		return "YCbCr"
	case "Lab ":
		return "CIELAB"
	case "XYZ ":
		return "CIEXYZ"
	default:
		return sig
	}
}

// ProfileClassName returns a human-readable name for an ICC profile class.
func ProfileClassName(sig string) string {
	switch sig {
	case "mntr":
		return "Display"
	case "prtr":
		return "Output"
	case "scnr":
		return "Input"
	case "link":
		return "DeviceLink"
	case "spac":
		return "ColorSpace"
	case "abst":
		return "Abstract"
	case "nmcl":
		return "NamedColor"
	default:
		return sig
	}
}
