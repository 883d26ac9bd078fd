//go:build cgo

package cmpi

import "unsafe"

/*
#include <stdlib.h>
#include <string.h>
*/
import "C"

// AllocBytes allocates size bytes of zeroed C memory. Buffers handed to
// in-flight engine operations live here so the Go collector never observes
// them.
func AllocBytes(size uintptr) unsafe.Pointer {
	if size == 0 {
		return nil
	}
	return C.calloc(1, C.size_t(size))
}

// FreeBytes releases memory obtained from AllocBytes.
func FreeBytes(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	C.free(ptr)
}

// Memcpy copies length bytes from src to dst.
func Memcpy(dst, src unsafe.Pointer, length uintptr) {
	if dst == nil || src == nil || length == 0 {
		return
	}
	C.memcpy(dst, src, C.size_t(length))
}
