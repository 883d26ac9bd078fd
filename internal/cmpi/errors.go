//go:build cgo

package cmpi

import "fmt"

/*
#cgo !mpich pkg-config: ompi
#cgo mpich pkg-config: mpich
#include <mpi.h>
*/
import "C"

// Errno represents an MPI error code as returned by the engine.
type Errno int32

// ErrClass identifies the standard MPI error class an Errno belongs to.
type ErrClass int32

// Error classes mirrored from <mpi.h>. The list covers the classes the
// bindings need to distinguish for recovery decisions; everything else maps
// to ClassOther.
const (
	ClassSuccess     ErrClass = ErrClass(C.MPI_SUCCESS)
	ClassBuffer      ErrClass = ErrClass(C.MPI_ERR_BUFFER)
	ClassCount       ErrClass = ErrClass(C.MPI_ERR_COUNT)
	ClassType        ErrClass = ErrClass(C.MPI_ERR_TYPE)
	ClassTag         ErrClass = ErrClass(C.MPI_ERR_TAG)
	ClassComm        ErrClass = ErrClass(C.MPI_ERR_COMM)
	ClassRank        ErrClass = ErrClass(C.MPI_ERR_RANK)
	ClassRequest     ErrClass = ErrClass(C.MPI_ERR_REQUEST)
	ClassRoot        ErrClass = ErrClass(C.MPI_ERR_ROOT)
	ClassGroup       ErrClass = ErrClass(C.MPI_ERR_GROUP)
	ClassOp          ErrClass = ErrClass(C.MPI_ERR_OP)
	ClassTopology    ErrClass = ErrClass(C.MPI_ERR_TOPOLOGY)
	ClassDims        ErrClass = ErrClass(C.MPI_ERR_DIMS)
	ClassArg         ErrClass = ErrClass(C.MPI_ERR_ARG)
	ClassUnknown     ErrClass = ErrClass(C.MPI_ERR_UNKNOWN)
	ClassTruncate    ErrClass = ErrClass(C.MPI_ERR_TRUNCATE)
	ClassOther       ErrClass = ErrClass(C.MPI_ERR_OTHER)
	ClassIntern      ErrClass = ErrClass(C.MPI_ERR_INTERN)
	ClassInStatus    ErrClass = ErrClass(C.MPI_ERR_IN_STATUS)
	ClassPending     ErrClass = ErrClass(C.MPI_ERR_PENDING)
	ClassKeyval      ErrClass = ErrClass(C.MPI_ERR_KEYVAL)
	ClassNoMem       ErrClass = ErrClass(C.MPI_ERR_NO_MEM)
	ClassInfo        ErrClass = ErrClass(C.MPI_ERR_INFO)
	ClassUnsupported ErrClass = ErrClass(C.MPI_ERR_UNSUPPORTED_OPERATION)
)

// Error returns the engine-provided message for the code.
func (e Errno) Error() string {
	return e.String()
}

// String returns the message produced by MPI_Error_string.
func (e Errno) String() string {
	if e == Errno(C.MPI_SUCCESS) {
		return "success"
	}
	var buf [C.MPI_MAX_ERROR_STRING]C.char
	var length C.int
	if C.MPI_Error_string(C.int(e), &buf[0], &length) != C.MPI_SUCCESS {
		return fmt.Sprintf("mpi error %d", int32(e))
	}
	return C.GoStringN(&buf[0], length)
}

// Class resolves the standard error class for the code via MPI_Error_class.
func (e Errno) Class() ErrClass {
	var class C.int
	if C.MPI_Error_class(C.int(e), &class) != C.MPI_SUCCESS {
		return ClassUnknown
	}
	return ErrClass(class)
}

// WithOp adds operation context to the provided Errno.
func (e Errno) WithOp(op string) error {
	if op == "" {
		return e
	}
	return fmt.Errorf("%s: %w", op, e)
}

// ErrorFromStatus converts an MPI return code into a Go error. MPI APIs
// return MPI_SUCCESS (zero) on success and a positive error code otherwise.
func ErrorFromStatus(status int, op string) error {
	if status == int(C.MPI_SUCCESS) {
		return nil
	}
	return Errno(status).WithOp(op)
}

// MustSucceed panics if the status represents an error. Intended for
// bootstrapping code paths where failure is fatal.
func MustSucceed(status int, op string) {
	if err := ErrorFromStatus(status, op); err != nil {
		panic(err)
	}
}
