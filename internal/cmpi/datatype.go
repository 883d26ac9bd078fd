//go:build cgo

package cmpi

/*
#cgo !mpich pkg-config: ompi
#cgo mpich pkg-config: mpich
#include <mpi.h>

static MPI_Datatype mpigo_type_int8(void)       { return MPI_INT8_T; }
static MPI_Datatype mpigo_type_int16(void)      { return MPI_INT16_T; }
static MPI_Datatype mpigo_type_int32(void)      { return MPI_INT32_T; }
static MPI_Datatype mpigo_type_int64(void)      { return MPI_INT64_T; }
static MPI_Datatype mpigo_type_uint8(void)      { return MPI_UINT8_T; }
static MPI_Datatype mpigo_type_uint16(void)     { return MPI_UINT16_T; }
static MPI_Datatype mpigo_type_uint32(void)     { return MPI_UINT32_T; }
static MPI_Datatype mpigo_type_uint64(void)     { return MPI_UINT64_T; }
static MPI_Datatype mpigo_type_float(void)      { return MPI_FLOAT; }
static MPI_Datatype mpigo_type_double(void)     { return MPI_DOUBLE; }
static MPI_Datatype mpigo_type_byte(void)       { return MPI_BYTE; }
static MPI_Datatype mpigo_type_complex64(void)  { return MPI_C_FLOAT_COMPLEX; }
static MPI_Datatype mpigo_type_complex128(void) { return MPI_C_DOUBLE_COMPLEX; }
static MPI_Datatype mpigo_type_null(void)       { return MPI_DATATYPE_NULL; }

static int mpigo_type_is_null(MPI_Datatype t) { return t == MPI_DATATYPE_NULL; }
*/
import "C"

// Datatype wraps an opaque MPI_Datatype handle.
type Datatype struct {
	h C.MPI_Datatype
}

// System (engine-predefined) datatype descriptors. These handles are valid
// for the whole process lifetime and must not be freed.
func TypeInt8() Datatype       { return Datatype{h: C.mpigo_type_int8()} }
func TypeInt16() Datatype      { return Datatype{h: C.mpigo_type_int16()} }
func TypeInt32() Datatype      { return Datatype{h: C.mpigo_type_int32()} }
func TypeInt64() Datatype      { return Datatype{h: C.mpigo_type_int64()} }
func TypeUint8() Datatype      { return Datatype{h: C.mpigo_type_uint8()} }
func TypeUint16() Datatype     { return Datatype{h: C.mpigo_type_uint16()} }
func TypeUint32() Datatype     { return Datatype{h: C.mpigo_type_uint32()} }
func TypeUint64() Datatype     { return Datatype{h: C.mpigo_type_uint64()} }
func TypeFloat32() Datatype    { return Datatype{h: C.mpigo_type_float()} }
func TypeFloat64() Datatype    { return Datatype{h: C.mpigo_type_double()} }
func TypeByte() Datatype       { return Datatype{h: C.mpigo_type_byte()} }
func TypeComplex64() Datatype  { return Datatype{h: C.mpigo_type_complex64()} }
func TypeComplex128() Datatype { return Datatype{h: C.mpigo_type_complex128()} }
func TypeNull() Datatype       { return Datatype{h: C.mpigo_type_null()} }

// IsNull reports whether the handle is the null datatype.
func (t Datatype) IsNull() bool {
	return C.mpigo_type_is_null(t.h) != 0
}

// Size returns the number of payload bytes the datatype describes,
// excluding alignment gaps.
func (t Datatype) Size() (int, error) {
	var size C.int
	if err := ErrorFromStatus(int(C.MPI_Type_size(t.h, &size)), "MPI_Type_size"); err != nil {
		return 0, err
	}
	return int(size), nil
}

// Extent returns the lower bound and extent of the datatype in bytes. The
// extent includes alignment gaps and governs element spacing in sequences.
func (t Datatype) Extent() (lb, extent int64, err error) {
	var clb, cextent C.MPI_Aint
	if err := ErrorFromStatus(int(C.MPI_Type_get_extent(t.h, &clb, &cextent)), "MPI_Type_get_extent"); err != nil {
		return 0, 0, err
	}
	return int64(clb), int64(cextent), nil
}

// TypeContiguous builds a descriptor for count contiguous repetitions of the
// element type.
func TypeContiguous(count int, elem Datatype) (Datatype, error) {
	var out C.MPI_Datatype
	if err := ErrorFromStatus(int(C.MPI_Type_contiguous(C.int(count), elem.h, &out)), "MPI_Type_contiguous"); err != nil {
		return Datatype{}, err
	}
	return Datatype{h: out}, nil
}

// TypeVector builds a descriptor for count blocks of blocklength elements,
// with block starts stride elements apart.
func TypeVector(count, blocklength, stride int, elem Datatype) (Datatype, error) {
	var out C.MPI_Datatype
	status := C.MPI_Type_vector(C.int(count), C.int(blocklength), C.int(stride), elem.h, &out)
	if err := ErrorFromStatus(int(status), "MPI_Type_vector"); err != nil {
		return Datatype{}, err
	}
	return Datatype{h: out}, nil
}

// TypeIndexed builds a descriptor for blocks of varying length at explicit
// element offsets. Callers guarantee len(blocklengths) == len(displacements).
func TypeIndexed(blocklengths, displacements []int, elem Datatype) (Datatype, error) {
	count := len(blocklengths)
	lengths := make([]C.int, count)
	displs := make([]C.int, count)
	for i := range blocklengths {
		lengths[i] = C.int(blocklengths[i])
		displs[i] = C.int(displacements[i])
	}
	var lengthsPtr, displsPtr *C.int
	if count > 0 {
		lengthsPtr = &lengths[0]
		displsPtr = &displs[0]
	}
	var out C.MPI_Datatype
	status := C.MPI_Type_indexed(C.int(count), lengthsPtr, displsPtr, elem.h, &out)
	if err := ErrorFromStatus(int(status), "MPI_Type_indexed"); err != nil {
		return Datatype{}, err
	}
	return Datatype{h: out}, nil
}

// TypeIndexedBlock builds a descriptor for fixed-length blocks at explicit
// element offsets.
func TypeIndexedBlock(blocklength int, displacements []int, elem Datatype) (Datatype, error) {
	count := len(displacements)
	displs := make([]C.int, count)
	for i, d := range displacements {
		displs[i] = C.int(d)
	}
	var displsPtr *C.int
	if count > 0 {
		displsPtr = &displs[0]
	}
	var out C.MPI_Datatype
	status := C.MPI_Type_create_indexed_block(C.int(count), C.int(blocklength), displsPtr, elem.h, &out)
	if err := ErrorFromStatus(int(status), "MPI_Type_create_indexed_block"); err != nil {
		return Datatype{}, err
	}
	return Datatype{h: out}, nil
}

// TypeHIndexed builds a descriptor for blocks of varying length at explicit
// byte offsets. Callers guarantee len(blocklengths) == len(byteOffsets).
func TypeHIndexed(blocklengths []int, byteOffsets []int64, elem Datatype) (Datatype, error) {
	count := len(blocklengths)
	lengths := make([]C.int, count)
	displs := make([]C.MPI_Aint, count)
	for i := range blocklengths {
		lengths[i] = C.int(blocklengths[i])
		displs[i] = C.MPI_Aint(byteOffsets[i])
	}
	var lengthsPtr *C.int
	var displsPtr *C.MPI_Aint
	if count > 0 {
		lengthsPtr = &lengths[0]
		displsPtr = &displs[0]
	}
	var out C.MPI_Datatype
	status := C.MPI_Type_create_hindexed(C.int(count), lengthsPtr, displsPtr, elem.h, &out)
	if err := ErrorFromStatus(int(status), "MPI_Type_create_hindexed"); err != nil {
		return Datatype{}, err
	}
	return Datatype{h: out}, nil
}

// TypeStruct builds a descriptor for an arbitrary layout: per-block lengths,
// byte offsets, and per-block element types. Callers guarantee the three
// slices have equal length.
func TypeStruct(blocklengths []int, byteOffsets []int64, types []Datatype) (Datatype, error) {
	count := len(blocklengths)
	lengths := make([]C.int, count)
	displs := make([]C.MPI_Aint, count)
	handles := make([]C.MPI_Datatype, count)
	for i := range blocklengths {
		lengths[i] = C.int(blocklengths[i])
		displs[i] = C.MPI_Aint(byteOffsets[i])
		handles[i] = types[i].h
	}
	var lengthsPtr *C.int
	var displsPtr *C.MPI_Aint
	var typesPtr *C.MPI_Datatype
	if count > 0 {
		lengthsPtr = &lengths[0]
		displsPtr = &displs[0]
		typesPtr = &handles[0]
	}
	var out C.MPI_Datatype
	status := C.MPI_Type_create_struct(C.int(count), lengthsPtr, displsPtr, typesPtr, &out)
	if err := ErrorFromStatus(int(status), "MPI_Type_create_struct"); err != nil {
		return Datatype{}, err
	}
	return Datatype{h: out}, nil
}

// TypeResized overrides the lower bound and extent of a descriptor, used to
// make a derived type's extent match the Go type's in-memory footprint.
func TypeResized(t Datatype, lb, extent int64) (Datatype, error) {
	var out C.MPI_Datatype
	status := C.MPI_Type_create_resized(t.h, C.MPI_Aint(lb), C.MPI_Aint(extent), &out)
	if err := ErrorFromStatus(int(status), "MPI_Type_create_resized"); err != nil {
		return Datatype{}, err
	}
	return Datatype{h: out}, nil
}

// Commit registers a user-constructed descriptor with the engine. Required
// exactly once before first use in communication.
func (t *Datatype) Commit() error {
	if t == nil {
		return nil
	}
	return ErrorFromStatus(int(C.MPI_Type_commit(&t.h)), "MPI_Type_commit")
}

// Free releases a user-constructed descriptor. Predefined descriptors must
// never be freed.
func (t *Datatype) Free() error {
	if t == nil || t.IsNull() {
		return nil
	}
	return ErrorFromStatus(int(C.MPI_Type_free(&t.h)), "MPI_Type_free")
}
