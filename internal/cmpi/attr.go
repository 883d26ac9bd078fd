//go:build cgo

package cmpi

import (
	"runtime/cgo"
	"sync/atomic"
	"unsafe"
)

/*
#cgo !mpich pkg-config: ompi
#cgo mpich pkg-config: mpich
#include <mpi.h>

extern int mpigoAttrCopy(MPI_Comm oldcomm, int keyval, void *extra, void *in, void *out, int *flag);
extern int mpigoAttrDelete(MPI_Comm comm, int keyval, void *val, void *extra);

static int mpigo_keyval_create(int *keyval) {
    return MPI_Comm_create_keyval(
        (MPI_Comm_copy_attr_function *)mpigoAttrCopy,
        (MPI_Comm_delete_attr_function *)mpigoAttrDelete,
        keyval, NULL);
}
*/
import "C"

// attrCopyHook decides whether a stored payload propagates across a
// communicator duplication and, if so, with what value. Installed once by
// the typed layer before any attribute is set.
var attrCopyHook atomic.Value // func(any) (any, bool)

// SetAttrCopyHook installs the duplication policy applied by the engine's
// copy callback.
func SetAttrCopyHook(fn func(any) (any, bool)) {
	if fn == nil {
		return
	}
	attrCopyHook.Store(fn)
}

// KeyvalCreate provisions an engine keyval wired to the Go copy and delete
// callbacks.
func KeyvalCreate() (int, error) {
	var keyval C.int
	if err := ErrorFromStatus(int(C.mpigo_keyval_create(&keyval)), "MPI_Comm_create_keyval"); err != nil {
		return 0, err
	}
	return int(keyval), nil
}

// KeyvalFree releases an engine keyval. Attributes stored under it survive
// until their communicators are freed.
func KeyvalFree(keyval int) error {
	ck := C.int(keyval)
	return ErrorFromStatus(int(C.MPI_Comm_free_keyval(&ck)), "MPI_Comm_free_keyval")
}

// SetAttrValue boxes the payload and attaches it to the communicator under
// the keyval. An existing payload under the same keyval is released via the
// delete callback first.
func (c Comm) SetAttrValue(keyval int, v any) error {
	h := cgo.NewHandle(v)
	status := C.MPI_Comm_set_attr(c.h, C.int(keyval), handlePointer(h))
	if err := ErrorFromStatus(int(status), "MPI_Comm_set_attr"); err != nil {
		h.Delete()
		return err
	}
	return nil
}

// AttrValue retrieves the payload stored under the keyval. The boolean
// reports whether one was present.
func (c Comm) AttrValue(keyval int) (any, bool, error) {
	var val unsafe.Pointer
	var flag C.int
	status := C.MPI_Comm_get_attr(c.h, C.int(keyval), unsafe.Pointer(&val), &flag)
	if err := ErrorFromStatus(int(status), "MPI_Comm_get_attr"); err != nil {
		return nil, false, err
	}
	if flag == 0 || val == nil {
		return nil, false, nil
	}
	return cgo.Handle(uintptr(val)).Value(), true, nil
}

// DeleteAttrValue removes the payload stored under the keyval, running the
// delete callback.
func (c Comm) DeleteAttrValue(keyval int) error {
	status := C.MPI_Comm_delete_attr(c.h, C.int(keyval))
	return ErrorFromStatus(int(status), "MPI_Comm_delete_attr")
}

func handlePointer(h cgo.Handle) unsafe.Pointer {
	return unsafe.Pointer(uintptr(h)) //nolint:govet // handle is an index, not a Go pointer
}
