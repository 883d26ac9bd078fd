package mpi

import (
	"fmt"
	"sync"

	"github.com/rivergrid/mpi-go/internal/cmpi"
)

// Datatype describes the in-memory layout of values exchanged with the
// engine. System datatypes wrap engine-predefined descriptors; user
// datatypes are built from the combinator constructors below and are
// committed before they are handed out, so every reachable Datatype is
// valid for communication.
type Datatype struct {
	handle cmpi.Datatype
	user   bool
}

// AsRaw exposes the underlying engine handle for raw calls.
func (t *Datatype) AsRaw() cmpi.Datatype {
	if t == nil {
		return cmpi.TypeNull()
	}
	return t.handle
}

// Size returns the number of payload bytes the datatype describes.
func (t *Datatype) Size() (int, error) {
	if t == nil {
		return 0, ErrInvalidHandle{"datatype"}
	}
	return t.handle.Size()
}

// Extent returns the lower bound and extent of the datatype in bytes.
func (t *Datatype) Extent() (lb, extent int64, err error) {
	if t == nil {
		return 0, 0, ErrInvalidHandle{"datatype"}
	}
	return t.handle.Extent()
}

// span returns the number of bytes a sequence of count elements occupies,
// including alignment gaps.
func (t *Datatype) span(count int) uintptr {
	lb, extent, err := t.handle.Extent()
	if err != nil || extent <= 0 {
		return 0
	}
	if lb < 0 {
		lb = 0
	}
	return uintptr(lb) + uintptr(extent)*uintptr(count)
}

var committedTypes struct {
	mu    sync.Mutex
	types []*Datatype
}

// newUserDatatype commits a freshly constructed descriptor and registers it
// for release at Finalize. Committing here keeps the committed-before-use
// invariant structural: no uncommitted descriptor ever escapes.
func newUserDatatype(h cmpi.Datatype, op string) (*Datatype, error) {
	if err := h.Commit(); err != nil {
		_ = h.Free()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	t := &Datatype{handle: h, user: true}
	committedTypes.mu.Lock()
	committedTypes.types = append(committedTypes.types, t)
	committedTypes.mu.Unlock()
	return t, nil
}

// freeCachedDatatypes releases every user descriptor exactly once. Called
// from Universe.Finalize, the single teardown point.
func freeCachedDatatypes() {
	committedTypes.mu.Lock()
	types := committedTypes.types
	committedTypes.types = nil
	committedTypes.mu.Unlock()
	for _, t := range types {
		h := t.handle
		_ = h.Free()
		t.handle = cmpi.TypeNull()
	}
}

// Contiguous builds a descriptor for count gap-free repetitions of elem.
func Contiguous(count int, elem *Datatype) (*Datatype, error) {
	if elem == nil {
		return nil, ErrInvalidHandle{"datatype"}
	}
	if count < 0 {
		panic(fmt.Sprintf("mpi: contiguous datatype with negative count %d", count))
	}
	h, err := cmpi.TypeContiguous(count, elem.handle)
	if err != nil {
		return nil, err
	}
	return newUserDatatype(h, "contiguous")
}

// Vector builds a descriptor for count blocks of blocklength elements of
// elem, with block starts stride elements apart. Strided views of larger
// arrays (sub-rows, columns) are described this way.
func Vector(count, blocklength, stride int, elem *Datatype) (*Datatype, error) {
	if elem == nil {
		return nil, ErrInvalidHandle{"datatype"}
	}
	h, err := cmpi.TypeVector(count, blocklength, stride, elem.handle)
	if err != nil {
		return nil, err
	}
	return newUserDatatype(h, "vector")
}

// Indexed builds a descriptor for blocks of varying length at explicit
// element offsets. Panics when the parallel arrays differ in length.
func Indexed(blocklengths, displacements []int, elem *Datatype) (*Datatype, error) {
	if elem == nil {
		return nil, ErrInvalidHandle{"datatype"}
	}
	if len(blocklengths) != len(displacements) {
		panic(fmt.Sprintf("mpi: indexed datatype with %d blocklengths but %d displacements", len(blocklengths), len(displacements)))
	}
	h, err := cmpi.TypeIndexed(blocklengths, displacements, elem.handle)
	if err != nil {
		return nil, err
	}
	return newUserDatatype(h, "indexed")
}

// IndexedBlock builds a descriptor for fixed-length blocks at explicit
// element offsets.
func IndexedBlock(blocklength int, displacements []int, elem *Datatype) (*Datatype, error) {
	if elem == nil {
		return nil, ErrInvalidHandle{"datatype"}
	}
	h, err := cmpi.TypeIndexedBlock(blocklength, displacements, elem.handle)
	if err != nil {
		return nil, err
	}
	return newUserDatatype(h, "indexed block")
}

// HeterogeneousIndexed builds a descriptor for blocks of varying length at
// explicit byte offsets. Panics when the parallel arrays differ in length.
func HeterogeneousIndexed(blocklengths []int, byteOffsets []int64, elem *Datatype) (*Datatype, error) {
	if elem == nil {
		return nil, ErrInvalidHandle{"datatype"}
	}
	if len(blocklengths) != len(byteOffsets) {
		panic(fmt.Sprintf("mpi: heterogeneous indexed datatype with %d blocklengths but %d offsets", len(blocklengths), len(byteOffsets)))
	}
	h, err := cmpi.TypeHIndexed(blocklengths, byteOffsets, elem.handle)
	if err != nil {
		return nil, err
	}
	return newUserDatatype(h, "heterogeneous indexed")
}

// Structured builds a descriptor for an arbitrary layout: per-block lengths,
// byte offsets, and per-block element types. This is the general case used
// for user struct layouts. Panics when the parallel arrays differ in length.
func Structured(blocklengths []int, byteOffsets []int64, types []*Datatype) (*Datatype, error) {
	if len(blocklengths) != len(byteOffsets) || len(blocklengths) != len(types) {
		panic(fmt.Sprintf("mpi: structured datatype with mismatched parallel arrays (%d lengths, %d offsets, %d types)", len(blocklengths), len(byteOffsets), len(types)))
	}
	raw := make([]cmpi.Datatype, len(types))
	for i, t := range types {
		if t == nil {
			return nil, ErrInvalidHandle{"datatype"}
		}
		raw[i] = t.handle
	}
	h, err := cmpi.TypeStruct(blocklengths, byteOffsets, raw)
	if err != nil {
		return nil, err
	}
	return newUserDatatype(h, "structured")
}

// structuredResized builds a struct descriptor whose extent is forced to the
// Go type's full footprint so sequences of the type stride correctly.
func structuredResized(blocklengths []int, byteOffsets []int64, types []cmpi.Datatype, footprint int64) (*Datatype, error) {
	inner, err := cmpi.TypeStruct(blocklengths, byteOffsets, types)
	if err != nil {
		return nil, err
	}
	if footprint <= 0 {
		return newUserDatatype(inner, "structured")
	}
	resized, err := cmpi.TypeResized(inner, 0, footprint)
	if err != nil {
		_ = inner.Free()
		return nil, err
	}
	// The inner descriptor is only a construction step; the resized handle
	// keeps its own reference.
	_ = inner.Free()
	return newUserDatatype(resized, "structured")
}
