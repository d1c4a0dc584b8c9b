package jpeg

/*
#cgo pkg-config: libjpeg
#include <stdlib.h>
#include "glue.h"
*/
import "C"

import (
	"log/slog"
	"runtime"
	"runtime/cgo"
	"unsafe"
)

// LibjpegVersion returns the JPEG library version.
func LibjpegVersion() int {
	return int(C.JPEG_LIB_VERSION)
}

// header mirrors glue_header in Go types.
type header struct {
	imageWidth    int
	imageHeight   int
	width         int // scaled output width
	height        int // scaled output height
	components    int // output components per pixel
	numComponents int // components in the frame
	colorSpace    int
	progressive   bool
	lumaQuant     *[64]uint16
}

// decompressor is one libjpeg decode session reading from a memSource.
type decompressor struct {
	c      *C.glue_decompress
	handle cgo.Handle
	src    *memSource
	pinner runtime.Pinner // keeps the caller's stream in place while libjpeg reads it
	marker []byte         // C memory holding the synthetic EOI marker
	hdr    C.glue_header
	cbErr  error
}

// newDecompressor opens a session reading data in place. data must not be
// modified until the session is closed.
func newDecompressor(data []byte, saveICC bool) (*decompressor, error) {
	marker, err := cHeap{}.alloc(len(eoiMarker))
	if err != nil {
		return nil, err
	}

	d := &decompressor{
		marker: marker,
		src:    newMemSource(data, marker),
	}
	if len(data) > 0 {
		d.pinner.Pin(&data[0])
	}
	d.handle = cgo.NewHandle(d)

	save := C.int(0)
	if saveICC {
		save = 1
	}
	d.c = C.glue_decompress_new(C.uintptr_t(d.handle), save)
	if d.c == nil {
		d.close()
		return nil, &CodecError{Op: opCreate, Msg: "cannot allocate decompressor", Err: ErrAllocation}
	}
	return d, nil
}

// readHeader parses the stream header and computes the output dimensions
// for the given DCT scale denominator.
func (d *decompressor) readHeader(scale int) error {
	if C.glue_read_header(d.c, C.int(scale), &d.hdr) != 0 {
		return d.fail(opReadHeader)
	}
	return nil
}

func (d *decompressor) start() error {
	if C.glue_start_decompress(d.c, &d.hdr) != 0 {
		return d.fail(opStart)
	}
	return nil
}

func (d *decompressor) finish() error {
	if C.glue_finish_decompress(d.c) != 0 {
		return d.fail(opFinish)
	}
	return nil
}

func (d *decompressor) header() header {
	h := header{
		imageWidth:    int(d.hdr.image_width),
		imageHeight:   int(d.hdr.image_height),
		width:         int(d.hdr.output_width),
		height:        int(d.hdr.output_height),
		components:    int(d.hdr.output_components),
		numComponents: int(d.hdr.num_components),
		colorSpace:    int(d.hdr.color_space),
		progressive:   d.hdr.progressive != 0,
	}
	if d.hdr.has_luma_quant != 0 {
		var q [64]uint16
		for i := range q {
			q[i] = uint16(d.hdr.luma_quant[i])
		}
		h.lumaQuant = &q
	}
	return h
}

// app2Markers returns copies of the saved APP2 payloads, in stream order.
func (d *decompressor) app2Markers() [][]byte {
	var markers [][]byte
	for m := C.glue_markers(d.c); m != nil; m = m.next {
		if m.marker != C.JPEG_APP0+2 || m.data_length == 0 {
			continue
		}
		markers = append(markers, C.GoBytes(unsafe.Pointer(m.data), C.int(m.data_length)))
	}
	return markers
}

// fail builds the error for a libjpeg call that aborted.
func (d *decompressor) fail(op string) error {
	err := &CodecError{
		Op:  op,
		Msg: C.GoString(C.glue_decompress_message(d.c)),
		Err: d.cbErr,
	}
	d.cbErr = nil
	return err
}

// logWarnings reports recoverable problems libjpeg met during the session.
func (d *decompressor) logWarnings() {
	if d.src.truncated() {
		slog.Warn("jpeg: premature end of data, substituted EOI marker",
			"size", len(d.src.data),
			"markers", d.src.eofs,
		)
	}
	if n := int(C.glue_decompress_warnings(d.c)); n > 0 {
		slog.Debug("jpeg: decoder warnings", "count", n)
	}
}

func (d *decompressor) close() {
	if d.c != nil {
		C.glue_decompress_free(d.c)
		d.c = nil
	}
	if d.handle != 0 {
		d.handle.Delete()
		d.handle = 0
	}
	d.pinner.Unpin()
	cHeap{}.free(d.marker)
	d.marker = nil
}
