package jpeg

/*
#cgo pkg-config: libjpeg
#include "glue.h"
*/
import "C"

import "unsafe"

// scanlines yields the decoded rows of a started session, top to bottom.
// The sequence is finite and cannot be restarted. Row is only valid until
// the next call to Next.
type scanlines struct {
	d      *decompressor
	height int
	row    []byte
	y      int
	err    error
}

func (d *decompressor) scanlines() *scanlines {
	h := d.header()
	return &scanlines{
		d:      d,
		height: h.height,
		row:    make([]byte, h.width*h.components),
		y:      -1,
	}
}

// Next reads the next row. It returns false when every row has been read or
// the decoder failed; Err distinguishes the two.
func (s *scanlines) Next() bool {
	if s.err != nil || int(C.glue_output_scanline(s.d.c)) >= s.height {
		return false
	}
	if len(s.row) == 0 {
		s.err = &CodecError{Op: opReadLine, Msg: "zero-width scanline"}
		return false
	}
	n := C.glue_read_scanline(s.d.c, (*C.uchar)(unsafe.Pointer(&s.row[0])))
	switch {
	case n < 0:
		s.err = s.d.fail(opReadLine)
		return false
	case n == 0:
		// Only a suspending source returns no rows; ours never suspends.
		s.err = &CodecError{Op: opReadLine, Msg: "decoder returned no rows"}
		return false
	}
	s.y++
	return true
}

// Row returns the most recent row in the decoder's native layout.
func (s *scanlines) Row() []byte { return s.row }

// Y returns the index of the most recent row.
func (s *scanlines) Y() int { return s.y }

func (s *scanlines) Err() error { return s.err }
