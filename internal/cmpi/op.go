//go:build cgo

package cmpi

/*
#cgo !mpich pkg-config: ompi
#cgo mpich pkg-config: mpich
#include <mpi.h>

static MPI_Op mpigo_op_sum(void)  { return MPI_SUM; }
static MPI_Op mpigo_op_prod(void) { return MPI_PROD; }
static MPI_Op mpigo_op_max(void)  { return MPI_MAX; }
static MPI_Op mpigo_op_min(void)  { return MPI_MIN; }
static MPI_Op mpigo_op_land(void) { return MPI_LAND; }
static MPI_Op mpigo_op_lor(void)  { return MPI_LOR; }
static MPI_Op mpigo_op_band(void) { return MPI_BAND; }
static MPI_Op mpigo_op_bor(void)  { return MPI_BOR; }
static MPI_Op mpigo_op_bxor(void) { return MPI_BXOR; }
*/
import "C"

// Op wraps an opaque MPI_Op reduction-operation handle.
type Op struct {
	h C.MPI_Op
}

// Engine-predefined reduction operations.
func OpSum() Op  { return Op{h: C.mpigo_op_sum()} }
func OpProd() Op { return Op{h: C.mpigo_op_prod()} }
func OpMax() Op  { return Op{h: C.mpigo_op_max()} }
func OpMin() Op  { return Op{h: C.mpigo_op_min()} }
func OpLAnd() Op { return Op{h: C.mpigo_op_land()} }
func OpLOr() Op  { return Op{h: C.mpigo_op_lor()} }
func OpBAnd() Op { return Op{h: C.mpigo_op_band()} }
func OpBOr() Op  { return Op{h: C.mpigo_op_bor()} }
func OpBXor() Op { return Op{h: C.mpigo_op_bxor()} }
