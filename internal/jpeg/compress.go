package jpeg

/*
#cgo pkg-config: libjpeg
#include "glue.h"
*/
import "C"

import (
	"runtime/cgo"
	"unsafe"
)

// compressor is one libjpeg encode session writing to a memDest.
type compressor struct {
	c      *C.glue_compress
	handle cgo.Handle
	dst    *memDest
	cbErr  error
}

// newCompressor opens a session whose destination starts with capacity bytes.
func newCompressor(capacity int) (*compressor, error) {
	buf, err := cHeap{}.alloc(capacity)
	if err != nil {
		return nil, err
	}

	c := &compressor{dst: newMemDest(cHeap{}, buf)}
	c.handle = cgo.NewHandle(c)
	c.c = C.glue_compress_new(C.uintptr_t(c.handle))
	if c.c == nil {
		c.close()
		return nil, &CodecError{Op: opCreate, Msg: "cannot allocate compressor", Err: ErrAllocation}
	}
	return c, nil
}

// start configures the session for packed RGB input and writes the stream
// header.
func (c *compressor) start(width, height, quality int, optimize bool) error {
	opt := C.int(0)
	if optimize {
		opt = 1
	}
	if C.glue_start_compress(c.c, C.int(width), C.int(height), C.int(quality), opt) != 0 {
		return c.fail(opStartComp)
	}
	return nil
}

func (c *compressor) writeMarker(marker int, payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	rc := C.glue_write_marker(c.c, C.int(marker),
		(*C.uchar)(unsafe.Pointer(&payload[0])), C.uint(len(payload)))
	if rc != 0 {
		return c.fail(opWriteMarker)
	}
	return nil
}

func (c *compressor) nextScanline() int {
	return int(C.glue_next_scanline(c.c))
}

func (c *compressor) writeScanline(row []byte) error {
	n := C.glue_write_scanline(c.c, (*C.uchar)(unsafe.Pointer(&row[0])))
	switch {
	case n < 0:
		return c.fail(opWriteLine)
	case n == 0:
		return &CodecError{Op: opWriteLine, Msg: "encoder accepted no rows"}
	}
	return nil
}

func (c *compressor) finish() error {
	if C.glue_finish_compress(c.c) != 0 {
		return c.fail(opFinishComp)
	}
	return nil
}

func (c *compressor) fail(op string) error {
	err := &CodecError{
		Op:  op,
		Msg: C.GoString(C.glue_compress_message(c.c)),
		Err: c.cbErr,
	}
	c.cbErr = nil
	return err
}

func (c *compressor) close() {
	if c.c != nil {
		C.glue_compress_free(c.c)
		c.c = nil
	}
	if c.handle != 0 {
		c.handle.Delete()
		c.handle = 0
	}
	c.dst.release()
}
