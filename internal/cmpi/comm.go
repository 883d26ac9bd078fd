//go:build cgo

package cmpi

/*
#cgo !mpich pkg-config: ompi
#cgo mpich pkg-config: mpich
#include <mpi.h>

static MPI_Comm mpigo_comm_world(void) { return MPI_COMM_WORLD; }
static MPI_Comm mpigo_comm_self(void)  { return MPI_COMM_SELF; }
static MPI_Comm mpigo_comm_null(void)  { return MPI_COMM_NULL; }

static int mpigo_comm_is_null(MPI_Comm c) { return c == MPI_COMM_NULL; }

static int mpigo_errors_return(MPI_Comm c) {
    return MPI_Comm_set_errhandler(c, MPI_ERRORS_RETURN);
}
*/
import "C"

// Comm wraps an opaque MPI_Comm handle. The zero value is not a valid
// handle; use CommWorld, CommSelf, or one of the constructors.
type Comm struct {
	h C.MPI_Comm
}

// Comparison results produced by CommCompare, mirroring <mpi.h>.
const (
	CommIdent     = int(C.MPI_IDENT)
	CommCongruent = int(C.MPI_CONGRUENT)
	CommSimilar   = int(C.MPI_SIMILAR)
	CommUnequal   = int(C.MPI_UNEQUAL)
)

// Matching wildcards and the null process rank.
const (
	AnySource = int(C.MPI_ANY_SOURCE)
	AnyTag    = int(C.MPI_ANY_TAG)
	ProcNull  = int(C.MPI_PROC_NULL)
	Undefined = int(C.MPI_UNDEFINED)
)

// CommWorld returns the predefined handle covering every launched process.
func CommWorld() Comm {
	return Comm{h: C.mpigo_comm_world()}
}

// CommSelf returns the predefined handle containing only the calling process.
func CommSelf() Comm {
	return Comm{h: C.mpigo_comm_self()}
}

// CommNull returns the null communicator handle.
func CommNull() Comm {
	return Comm{h: C.mpigo_comm_null()}
}

// IsNull reports whether the handle is the null communicator.
func (c Comm) IsNull() bool {
	return C.mpigo_comm_is_null(c.h) != 0
}

// ErrorsReturn installs the MPI_ERRORS_RETURN handler so engine failures
// surface as return codes instead of aborting the job.
func (c Comm) ErrorsReturn() error {
	return ErrorFromStatus(int(C.mpigo_errors_return(c.h)), "MPI_Comm_set_errhandler")
}

// Rank returns the rank of the calling process within the communicator.
func (c Comm) Rank() (int, error) {
	var rank C.int
	if err := ErrorFromStatus(int(C.MPI_Comm_rank(c.h, &rank)), "MPI_Comm_rank"); err != nil {
		return 0, err
	}
	return int(rank), nil
}

// Size returns the number of processes in the communicator.
func (c Comm) Size() (int, error) {
	var size C.int
	if err := ErrorFromStatus(int(C.MPI_Comm_size(c.h, &size)), "MPI_Comm_size"); err != nil {
		return 0, err
	}
	return int(size), nil
}

// Dup duplicates the communicator, creating a new communication context.
// Attribute copy callbacks run as part of the call.
func (c Comm) Dup() (Comm, error) {
	var dup C.MPI_Comm
	if err := ErrorFromStatus(int(C.MPI_Comm_dup(c.h, &dup)), "MPI_Comm_dup"); err != nil {
		return Comm{}, err
	}
	return Comm{h: dup}, nil
}

// Split partitions the communicator by color, ordering ranks by key.
// A color of Undefined yields the null communicator for the caller.
func (c Comm) Split(color, key int) (Comm, error) {
	var out C.MPI_Comm
	if err := ErrorFromStatus(int(C.MPI_Comm_split(c.h, C.int(color), C.int(key), &out)), "MPI_Comm_split"); err != nil {
		return Comm{}, err
	}
	return Comm{h: out}, nil
}

// Compare relates two communicator handles, returning one of CommIdent,
// CommCongruent, CommSimilar, or CommUnequal.
func (c Comm) Compare(other Comm) (int, error) {
	var result C.int
	if err := ErrorFromStatus(int(C.MPI_Comm_compare(c.h, other.h, &result)), "MPI_Comm_compare"); err != nil {
		return 0, err
	}
	return int(result), nil
}

// Group returns the process group backing the communicator.
func (c Comm) Group() (Group, error) {
	var g C.MPI_Group
	if err := ErrorFromStatus(int(C.MPI_Comm_group(c.h, &g)), "MPI_Comm_group"); err != nil {
		return Group{}, err
	}
	return Group{h: g}, nil
}

// Create builds a communicator containing the processes of the group.
// Processes outside the group receive the null communicator.
func (c Comm) Create(g Group) (Comm, error) {
	var out C.MPI_Comm
	if err := ErrorFromStatus(int(C.MPI_Comm_create(c.h, g.h, &out)), "MPI_Comm_create"); err != nil {
		return Comm{}, err
	}
	return Comm{h: out}, nil
}

// Free releases a user-created communicator handle. Attribute delete
// callbacks run as part of the call.
func (c *Comm) Free() error {
	if c == nil || c.IsNull() {
		return nil
	}
	if err := ErrorFromStatus(int(C.MPI_Comm_free(&c.h)), "MPI_Comm_free"); err != nil {
		return err
	}
	return nil
}
