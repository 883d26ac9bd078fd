//go:build cgo

package cmpi

import (
	"runtime/cgo"
	"unsafe"
)

/*
#include <mpi.h>
*/
import "C"

// mpigoAttrCopy is invoked by the engine for every attribute of a
// communicator being duplicated. The stored payload is resolved back into
// Go and the installed policy decides whether a clone is attached to the
// new communicator.
//
//export mpigoAttrCopy
func mpigoAttrCopy(oldcomm C.MPI_Comm, keyval C.int, extra, in, out unsafe.Pointer, flag *C.int) C.int {
	*flag = 0
	if in == nil {
		return C.MPI_SUCCESS
	}
	hook, _ := attrCopyHook.Load().(func(any) (any, bool))
	if hook == nil {
		return C.MPI_SUCCESS
	}
	value := cgo.Handle(uintptr(in)).Value()
	clone, keep := hook(value)
	if !keep {
		return C.MPI_SUCCESS
	}
	*(*uintptr)(out) = uintptr(cgo.NewHandle(clone))
	*flag = 1
	return C.MPI_SUCCESS
}

// mpigoAttrDelete is invoked by the engine when an attribute is deleted or
// its communicator is freed. Each communicator copy owns its own handle, so
// the payload is dropped exactly once per copy.
//
//export mpigoAttrDelete
func mpigoAttrDelete(comm C.MPI_Comm, keyval C.int, val, extra unsafe.Pointer) C.int {
	if val != nil {
		cgo.Handle(uintptr(val)).Delete()
	}
	return C.MPI_SUCCESS
}
