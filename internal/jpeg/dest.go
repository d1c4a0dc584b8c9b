package jpeg

// minDestCapacity is the smallest buffer the destination grows to.
const minDestCapacity = 4096

// allocator owns the memory behind a destination buffer. libjpeg keeps raw
// pointers into it between calls, so production code uses the C heap.
type allocator interface {
	alloc(n int) ([]byte, error)
	realloc(buf []byte, n int) ([]byte, error)
	free(buf []byte)
}

// memDest presents a growable in-memory buffer to libjpeg's push interface.
// When the encoder fills the buffer it is grown to twice its size and the
// written bytes are kept, so output is never truncated.
type memDest struct {
	heap  allocator
	buf   []byte
	n     int // final length, set by term
	grows int
}

// newMemDest wraps a pre-allocated buffer obtained from heap.
func newMemDest(heap allocator, buf []byte) *memDest {
	return &memDest{heap: heap, buf: buf}
}

// init resets the write cursor to the start of the buffer and returns the
// writable window, which is the whole buffer.
func (d *memDest) init() ([]byte, error) {
	d.n = 0
	if len(d.buf) == 0 {
		buf, err := d.heap.realloc(d.buf, minDestCapacity)
		if err != nil {
			return nil, err
		}
		d.buf = buf
	}
	return d.buf, nil
}

// overflow is called when every byte of the buffer has been written. It
// grows the buffer and returns the window of fresh bytes.
func (d *memDest) overflow() ([]byte, error) {
	used := len(d.buf)
	size := 2 * used
	if size < minDestCapacity {
		size = minDestCapacity
	}
	buf, err := d.heap.realloc(d.buf, size)
	if err != nil {
		return nil, err
	}
	d.buf = buf
	d.grows++
	return d.buf[used:], nil
}

// term records the final length from the number of bytes left unwritten.
func (d *memDest) term(free int) {
	d.n = len(d.buf) - free
}

// bytes returns the encoded stream. It aliases the destination buffer.
func (d *memDest) bytes() []byte {
	return d.buf[:d.n]
}

func (d *memDest) release() {
	if d.buf != nil {
		d.heap.free(d.buf)
		d.buf = nil
	}
}
