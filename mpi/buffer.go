package mpi

import (
	"fmt"
	"unsafe"
)

// Buffer is a read-only, non-owning view coupling a start address, an
// element count, and a wire datatype. It never owns the memory it
// describes; it is valid for the duration of a blocking call or, when
// handed to a non-blocking operation, for the lifetime of the request
// that borrows it.
type Buffer struct {
	ptr   unsafe.Pointer
	count int
	dtype *Datatype
	ref   any
}

// BufferMut is the writable counterpart of Buffer. The two are deliberately
// distinct types: a call site demanding write access cannot be handed a
// read-only view, and read-only call sites cannot be satisfied by accident
// with memory the engine is allowed to scribble on.
type BufferMut struct {
	ptr   unsafe.Pointer
	count int
	dtype *Datatype
	ref   any
}

// ValueOf describes a single value as a collection of count 1.
func ValueOf[T any](v *T) Buffer {
	return Buffer{ptr: unsafe.Pointer(v), count: 1, dtype: DatatypeOf[T](), ref: v}
}

// SliceOf describes a contiguous sequence of describable values.
func SliceOf[T any](s []T) Buffer {
	var ptr unsafe.Pointer
	if len(s) > 0 {
		ptr = unsafe.Pointer(&s[0])
	}
	return Buffer{ptr: ptr, count: len(s), dtype: DatatypeOf[T](), ref: s}
}

// MutOf describes a single value the engine may write into. Panics when T
// is not safe to receive into (see SafeToReceive).
func MutOf[T any](v *T) BufferMut {
	mustBeReceivable[T]()
	return BufferMut{ptr: unsafe.Pointer(v), count: 1, dtype: DatatypeOf[T](), ref: v}
}

// MutSliceOf describes a contiguous sequence the engine may write into.
// Panics when T is not safe to receive into.
func MutSliceOf[T any](s []T) BufferMut {
	mustBeReceivable[T]()
	var ptr unsafe.Pointer
	if len(s) > 0 {
		ptr = unsafe.Pointer(&s[0])
	}
	return BufferMut{ptr: ptr, count: len(s), dtype: DatatypeOf[T](), ref: s}
}

func mustBeReceivable[T any]() {
	if !SafeToReceive[T]() {
		var zero T
		panic(fmt.Sprintf("mpi: %T is not safe to receive into; wrap native bools in mpi.Bool", zero))
	}
}

// Count returns the number of elements the view describes.
func (b Buffer) Count() int { return b.count }

// Datatype returns the wire descriptor of the view's elements.
func (b Buffer) Datatype() *Datatype { return b.dtype }

// Pointer exposes the view's start address for raw calls.
func (b Buffer) Pointer() unsafe.Pointer { return b.ptr }

// Count returns the number of elements the view describes.
func (b BufferMut) Count() int { return b.count }

// Datatype returns the wire descriptor of the view's elements.
func (b BufferMut) Datatype() *Datatype { return b.dtype }

// Pointer exposes the view's start address for raw calls.
func (b BufferMut) Pointer() unsafe.Pointer { return b.ptr }

func (b Buffer) byteSpan() uintptr {
	if b.dtype == nil {
		return 0
	}
	return b.dtype.span(b.count)
}

func (b BufferMut) byteSpan() uintptr {
	if b.dtype == nil {
		return 0
	}
	return b.dtype.span(b.count)
}

// UnsafeView imposes an arbitrary (count, datatype) pair onto the storage
// behind an existing view. The caller must guarantee the descriptor does not
// reach past the memory the original view covers; the engine will read
// whatever range the descriptor describes.
func UnsafeView(b Buffer, count int, dtype *Datatype) Buffer {
	return Buffer{ptr: b.ptr, count: count, dtype: dtype, ref: b.ref}
}

// UnsafeViewMut is the writable counterpart of UnsafeView. The caller must
// guarantee the descriptor stays within the original view's storage; the
// engine will write whatever range the descriptor describes.
func UnsafeViewMut(b BufferMut, count int, dtype *Datatype) BufferMut {
	return BufferMut{ptr: b.ptr, count: count, dtype: dtype, ref: b.ref}
}

// DynBuffer is a read-only view whose element type is only known at
// runtime: a raw pointer, a count, and a datatype handle. It is used by
// call sites that forward payloads without knowing their static type.
type DynBuffer struct {
	ptr   unsafe.Pointer
	count int
	dtype *Datatype
	ref   any
}

// DynBufferMut is the writable counterpart of DynBuffer.
type DynBufferMut struct {
	ptr   unsafe.Pointer
	count int
	dtype *Datatype
	ref   any
}

// Erase drops the static element type of a view.
func (b Buffer) Erase() DynBuffer {
	return DynBuffer{ptr: b.ptr, count: b.count, dtype: b.dtype, ref: b.ref}
}

// Erase drops the static element type of a view.
func (b BufferMut) Erase() DynBufferMut {
	return DynBufferMut{ptr: b.ptr, count: b.count, dtype: b.dtype, ref: b.ref}
}

// Count returns the number of elements the view describes.
func (b DynBuffer) Count() int { return b.count }

// Datatype returns the wire descriptor of the view's elements.
func (b DynBuffer) Datatype() *Datatype { return b.dtype }

// Count returns the number of elements the view describes.
func (b DynBufferMut) Count() int { return b.count }

// Datatype returns the wire descriptor of the view's elements.
func (b DynBufferMut) Datatype() *Datatype { return b.dtype }

// Downcast recovers the statically typed elements behind a dynamic view.
// It fails with ErrTypeMismatch unless the stored descriptor is exactly the
// descriptor of T.
func Downcast[T any](b DynBuffer) ([]T, error) {
	if b.dtype != DatatypeOf[T]() {
		return nil, ErrTypeMismatch
	}
	if b.count == 0 || b.ptr == nil {
		return nil, nil
	}
	return unsafe.Slice((*T)(b.ptr), b.count), nil
}

// DowncastMut recovers the statically typed elements behind a writable
// dynamic view, failing with ErrTypeMismatch on any descriptor difference.
func DowncastMut[T any](b DynBufferMut) ([]T, error) {
	if b.dtype != DatatypeOf[T]() {
		return nil, ErrTypeMismatch
	}
	if b.count == 0 || b.ptr == nil {
		return nil, nil
	}
	return unsafe.Slice((*T)(b.ptr), b.count), nil
}

// PartitionedBuffer couples a read-only view with per-segment counts and
// element displacements for varying-count collective operations.
type PartitionedBuffer struct {
	buf    Buffer
	counts []int
	displs []int
}

// PartitionedBufferMut is the writable counterpart of PartitionedBuffer.
type PartitionedBufferMut struct {
	buf    BufferMut
	counts []int
	displs []int
}

// Partitioned builds a partitioned view. Panics when counts and displs
// differ in length; returns an error when any segment reaches past the end
// of the underlying view.
func Partitioned(b Buffer, counts, displs []int) (PartitionedBuffer, error) {
	if err := checkPartitions(b.count, counts, displs); err != nil {
		return PartitionedBuffer{}, err
	}
	return PartitionedBuffer{buf: b, counts: counts, displs: displs}, nil
}

// PartitionedMut builds a writable partitioned view with the same
// construction checks as Partitioned.
func PartitionedMut(b BufferMut, counts, displs []int) (PartitionedBufferMut, error) {
	if err := checkPartitions(b.count, counts, displs); err != nil {
		return PartitionedBufferMut{}, err
	}
	return PartitionedBufferMut{buf: b, counts: counts, displs: displs}, nil
}

func checkPartitions(total int, counts, displs []int) error {
	if len(counts) != len(displs) {
		panic(fmt.Sprintf("mpi: partitioned buffer with %d counts but %d displacements", len(counts), len(displs)))
	}
	for i := range counts {
		if counts[i] < 0 || displs[i] < 0 {
			return fmt.Errorf("mpi: negative count or displacement in segment %d", i)
		}
		if counts[i]+displs[i] > total {
			return fmt.Errorf("mpi: segment %d (count %d, displacement %d) exceeds buffer length %d", i, counts[i], displs[i], total)
		}
	}
	return nil
}

// Counts returns the per-segment element counts.
func (p PartitionedBuffer) Counts() []int { return p.counts }

// Displs returns the per-segment element displacements.
func (p PartitionedBuffer) Displs() []int { return p.displs }

// Counts returns the per-segment element counts.
func (p PartitionedBufferMut) Counts() []int { return p.counts }

// Displs returns the per-segment element displacements.
func (p PartitionedBufferMut) Displs() []int { return p.displs }
