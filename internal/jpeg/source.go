package jpeg

import "fmt"

// eoiMarker is handed to the decoder once the real bytes are exhausted so it
// terminates instead of reading past the buffer.
var eoiMarker = [2]byte{0xFF, 0xD9}

// memSource presents a fully buffered JPEG stream to libjpeg's pull interface.
// The whole buffer is exposed as a single window; there is no suspension.
type memSource struct {
	data   []byte
	marker []byte // 2 bytes, filled with eoiMarker
	window []byte // bytes not yet consumed by the decoder
	filled bool
	eofs   int // synthetic markers handed out
}

// newMemSource wraps data. marker must have room for the 2-byte EOI marker;
// both slices must stay valid for the whole session.
func newMemSource(data, marker []byte) *memSource {
	copy(marker, eoiMarker[:])
	return &memSource{data: data, marker: marker[:len(eoiMarker)]}
}

// reset prepares the source for a new decode session.
func (s *memSource) reset() {
	s.window = nil
	s.filled = false
	s.eofs = 0
}

// fill returns the next window: the whole buffer the first time, the EOI
// marker on every later call.
func (s *memSource) fill() ([]byte, error) {
	if len(s.data) == 0 {
		return nil, ErrEmptySource
	}
	if !s.filled {
		s.filled = true
		s.window = s.data
		return s.window, nil
	}
	s.eofs++
	s.window = s.marker
	return s.window, nil
}

// skip discards n bytes from the current window. remaining is the number of
// window bytes the decoder has not consumed yet.
func (s *memSource) skip(remaining, n int) ([]byte, error) {
	if remaining < 0 || remaining > len(s.window) {
		return nil, fmt.Errorf("%w: decoder reports %d unread bytes, window holds %d",
			ErrSkipOutOfRange, remaining, len(s.window))
	}
	s.window = s.window[len(s.window)-remaining:]
	if n > len(s.window) {
		return nil, fmt.Errorf("%w: skip %d with %d remaining", ErrSkipOutOfRange, n, len(s.window))
	}
	s.window = s.window[n:]
	return s.window, nil
}

// truncated reports whether the decoder asked for bytes beyond the source.
func (s *memSource) truncated() bool {
	return s.eofs > 0
}
