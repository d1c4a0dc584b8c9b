package jpeg

import (
	"errors"
	"fmt"

	"github.com/davesmith10/jpgtranscode/internal/ir"
)

var (
	// ErrEmptySource is returned when a decode session is opened over zero bytes.
	ErrEmptySource = errors.New("jpeg: empty source")

	// ErrMalformedHeader is returned when libjpeg rejects the stream while parsing its header.
	ErrMalformedHeader = errors.New("jpeg: malformed header")

	// ErrCodecFatal is returned when libjpeg aborts a session after the header.
	ErrCodecFatal = errors.New("jpeg: codec fatal error")

	// ErrAllocation is returned when a session or buffer cannot be allocated.
	ErrAllocation = ir.ErrAllocation

	ErrUnsupportedComponents = errors.New("jpeg: unsupported component layout")
	ErrSkipOutOfRange        = errors.New("jpeg: skip past end of source")
	ErrInvalidQuality        = errors.New("jpeg: invalid quality (must be 0-100)")
	ErrDimensionMismatch     = errors.New("jpeg: pixel buffer does not match decoded dimensions")
)

// CodecError carries the message libjpeg formatted before aborting a session.
// Err is set when the abort was triggered by one of the memory adapters.
type CodecError struct {
	Op  string // libjpeg step that failed, e.g. "read_header"
	Msg string
	Err error
}

func (e *CodecError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("libjpeg %s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("libjpeg %s: %s", e.Op, e.Msg)
}

// Unwrap classifies the failure: header parsing errors are ErrMalformedHeader,
// everything else is ErrCodecFatal. An adapter cause is reported as well.
func (e *CodecError) Unwrap() []error {
	class := ErrCodecFatal
	if e.Op == opReadHeader {
		class = ErrMalformedHeader
	}
	if e.Err != nil {
		return []error{class, e.Err}
	}
	return []error{class}
}

const (
	opCreate      = "create"
	opReadHeader  = "read_header"
	opStart       = "start_decompress"
	opReadLine    = "read_scanlines"
	opFinish      = "finish_decompress"
	opStartComp   = "start_compress"
	opWriteMarker = "write_marker"
	opWriteLine   = "write_scanlines"
	opFinishComp  = "finish_compress"
)
