package jpeg

/*
#cgo pkg-config: libjpeg
#include <stdlib.h>
#include "glue.h"
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// cHeap allocates from the C heap. libjpeg holds pointers into the
// destination buffer across calls, and the buffer is reallocated as it grows,
// so it cannot be pinned Go memory.
type cHeap struct{}

func (cHeap) alloc(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	p := C.glue_malloc(C.size_t(n))
	if p == nil {
		return nil, fmt.Errorf("%w: %d bytes", ErrAllocation, n)
	}
	return unsafe.Slice((*byte)(p), n), nil
}

func (cHeap) realloc(buf []byte, n int) ([]byte, error) {
	var old unsafe.Pointer
	if cap(buf) > 0 {
		old = unsafe.Pointer(unsafe.SliceData(buf))
	}
	p := C.glue_realloc(old, C.size_t(n))
	if p == nil {
		return nil, fmt.Errorf("%w: growing to %d bytes", ErrAllocation, n)
	}
	return unsafe.Slice((*byte)(p), n), nil
}

func (cHeap) free(buf []byte) {
	if cap(buf) > 0 {
		C.free(unsafe.Pointer(unsafe.SliceData(buf)))
	}
}
