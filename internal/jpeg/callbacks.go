package jpeg

// Exported callbacks for the source and destination managers in glue.c.
// Each manager carries the cgo.Handle of the session that owns it, so
// concurrent sessions never share state. A callback that fails records the
// cause on its session and returns non-zero; the C side then aborts the
// session through error_exit once control is back in C.

/*
#cgo pkg-config: libjpeg
#include "glue.h"
*/
import "C"

import (
	"runtime/cgo"
	"unsafe"
)

//export goSourceInit
func goSourceInit(h C.uintptr_t) {
	d := cgo.Handle(h).Value().(*decompressor)
	d.src.reset()
}

//export goSourceFill
func goSourceFill(h C.uintptr_t, mgr *C.struct_jpeg_source_mgr) C.int {
	d := cgo.Handle(h).Value().(*decompressor)
	win, err := d.src.fill()
	if err != nil {
		d.cbErr = err
		return 1
	}
	setInputWindow(mgr, win)
	return 0
}

//export goSourceSkip
func goSourceSkip(h C.uintptr_t, mgr *C.struct_jpeg_source_mgr, n C.long) C.int {
	d := cgo.Handle(h).Value().(*decompressor)
	win, err := d.src.skip(int(mgr.bytes_in_buffer), int(n))
	if err != nil {
		d.cbErr = err
		return 1
	}
	setInputWindow(mgr, win)
	return 0
}

//export goDestInit
func goDestInit(h C.uintptr_t, mgr *C.struct_jpeg_destination_mgr) C.int {
	c := cgo.Handle(h).Value().(*compressor)
	win, err := c.dst.init()
	if err != nil {
		c.cbErr = err
		return 1
	}
	setOutputWindow(mgr, win)
	return 0
}

//export goDestEmpty
func goDestEmpty(h C.uintptr_t, mgr *C.struct_jpeg_destination_mgr) C.int {
	c := cgo.Handle(h).Value().(*compressor)
	win, err := c.dst.overflow()
	if err != nil {
		c.cbErr = err
		return 1
	}
	setOutputWindow(mgr, win)
	return 0
}

//export goDestTerm
func goDestTerm(h C.uintptr_t, mgr *C.struct_jpeg_destination_mgr) {
	c := cgo.Handle(h).Value().(*compressor)
	c.dst.term(int(mgr.free_in_buffer))
}

// win must point into C memory or pinned Go memory.
func setInputWindow(mgr *C.struct_jpeg_source_mgr, win []byte) {
	mgr.bytes_in_buffer = C.size_t(len(win))
	mgr.next_input_byte = nil
	if len(win) > 0 {
		mgr.next_input_byte = (*C.JOCTET)(unsafe.Pointer(&win[0]))
	}
}

// win must point into C memory and be non-empty.
func setOutputWindow(mgr *C.struct_jpeg_destination_mgr, win []byte) {
	mgr.next_output_byte = (*C.JOCTET)(unsafe.Pointer(&win[0]))
	mgr.free_in_buffer = C.size_t(len(win))
}
