//go:build cgo

package cmpi

import "fmt"

/*
#cgo !mpich pkg-config: ompi
#cgo mpich pkg-config: mpich
#include <mpi.h>

static int mpigo_init_thread(int required, int *provided) {
    return MPI_Init_thread(NULL, NULL, required, provided);
}
*/
import "C"

// ThreadLevel mirrors the MPI thread-support levels.
type ThreadLevel int

const (
	ThreadSingle     ThreadLevel = ThreadLevel(C.MPI_THREAD_SINGLE)
	ThreadFunneled   ThreadLevel = ThreadLevel(C.MPI_THREAD_FUNNELED)
	ThreadSerialized ThreadLevel = ThreadLevel(C.MPI_THREAD_SERIALIZED)
	ThreadMultiple   ThreadLevel = ThreadLevel(C.MPI_THREAD_MULTIPLE)
)

func (l ThreadLevel) String() string {
	switch l {
	case ThreadSingle:
		return "single"
	case ThreadFunneled:
		return "funneled"
	case ThreadSerialized:
		return "serialized"
	case ThreadMultiple:
		return "multiple"
	default:
		return fmt.Sprintf("thread-level(%d)", int(l))
	}
}

// Initialized reports whether the engine has already been initialized.
func Initialized() (bool, error) {
	var flag C.int
	if err := ErrorFromStatus(int(C.MPI_Initialized(&flag)), "MPI_Initialized"); err != nil {
		return false, err
	}
	return flag != 0, nil
}

// Finalized reports whether the engine has already been torn down.
func Finalized() (bool, error) {
	var flag C.int
	if err := ErrorFromStatus(int(C.MPI_Finalized(&flag)), "MPI_Finalized"); err != nil {
		return false, err
	}
	return flag != 0, nil
}

// InitThread initializes the engine requesting the supplied thread-support
// level and returns the level actually granted.
func InitThread(required ThreadLevel) (ThreadLevel, error) {
	var provided C.int
	status := C.mpigo_init_thread(C.int(required), &provided)
	if err := ErrorFromStatus(int(status), "MPI_Init_thread"); err != nil {
		return 0, err
	}
	return ThreadLevel(provided), nil
}

// QueryThread reports the thread-support level granted at initialization.
func QueryThread() (ThreadLevel, error) {
	var provided C.int
	if err := ErrorFromStatus(int(C.MPI_Query_thread(&provided)), "MPI_Query_thread"); err != nil {
		return 0, err
	}
	return ThreadLevel(provided), nil
}

// Finalize tears down the engine. No engine calls may follow.
func Finalize() error {
	return ErrorFromStatus(int(C.MPI_Finalize()), "MPI_Finalize")
}

// Abort terminates all processes of the communicator with the given exit code.
func Abort(comm Comm, code int) error {
	return ErrorFromStatus(int(C.MPI_Abort(comm.h, C.int(code))), "MPI_Abort")
}

// Version represents the MPI standard version implemented by the engine.
type Version struct {
	Major int
	Minor int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// RuntimeVersion queries the standard version reported by the linked engine.
func RuntimeVersion() (Version, error) {
	var major, minor C.int
	if err := ErrorFromStatus(int(C.MPI_Get_version(&major, &minor)), "MPI_Get_version"); err != nil {
		return Version{}, err
	}
	return Version{Major: int(major), Minor: int(minor)}, nil
}

// LibraryVersion returns the engine's own version banner.
func LibraryVersion() (string, error) {
	var buf [C.MPI_MAX_LIBRARY_VERSION_STRING]C.char
	var length C.int
	if err := ErrorFromStatus(int(C.MPI_Get_library_version(&buf[0], &length)), "MPI_Get_library_version"); err != nil {
		return "", err
	}
	return C.GoStringN(&buf[0], length), nil
}

// ProcessorName returns the name of the processor the calling process runs on.
func ProcessorName() (string, error) {
	var buf [C.MPI_MAX_PROCESSOR_NAME]C.char
	var length C.int
	if err := ErrorFromStatus(int(C.MPI_Get_processor_name(&buf[0], &length)), "MPI_Get_processor_name"); err != nil {
		return "", err
	}
	return C.GoStringN(&buf[0], length), nil
}

// Wtime returns the engine wall-clock time in seconds.
func Wtime() float64 {
	return float64(C.MPI_Wtime())
}

// Wtick returns the resolution of Wtime in seconds.
func Wtick() float64 {
	return float64(C.MPI_Wtick())
}
