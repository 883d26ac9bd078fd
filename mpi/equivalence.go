package mpi

import (
	"fmt"
	"reflect"
	"strconv"
	"sync"

	"github.com/rivergrid/mpi-go/internal/cmpi"
)

// DatatypeOf returns the wire descriptor equivalent to T's memory layout.
// The descriptor is derived on first use, recursing through struct fields,
// nested arrays, and user types using their concrete byte offsets, then
// committed and memoized for the remainder of the process. Concurrent first
// accesses from multiple goroutines converge on one definitive descriptor.
//
// Supported types are the fixed-width integers, floats, complex numbers,
// int/uint, native bool (send side only), the checked Bool wrapper, and
// structs and arrays composed of them. Passing any other type is a
// programming error and panics.
func DatatypeOf[T any]() *Datatype {
	return datatypeFor(reflect.TypeOf((*T)(nil)).Elem())
}

var equivalenceCache sync.Map // reflect.Type -> *equivalenceEntry

type equivalenceEntry struct {
	once sync.Once
	dt   *Datatype
	err  error
}

func datatypeFor(t reflect.Type) *Datatype {
	value, _ := equivalenceCache.LoadOrStore(t, &equivalenceEntry{})
	entry := value.(*equivalenceEntry)
	entry.once.Do(func() {
		entry.dt, entry.err = buildDatatype(t)
	})
	if entry.err != nil {
		// The primitive mapping is total over the supported set; a failure
		// here means the engine could not represent the layout at all.
		panic(fmt.Sprintf("mpi: cannot describe %s to the engine: %v", t, entry.err))
	}
	return entry.dt
}

var boolWrapperType = reflect.TypeOf(Bool{})

func systemDatatype(h cmpi.Datatype) (*Datatype, error) {
	return &Datatype{handle: h}, nil
}

func buildDatatype(t reflect.Type) (*Datatype, error) {
	if t == boolWrapperType {
		return systemDatatype(cmpi.TypeByte())
	}
	switch t.Kind() {
	case reflect.Int8:
		return systemDatatype(cmpi.TypeInt8())
	case reflect.Int16:
		return systemDatatype(cmpi.TypeInt16())
	case reflect.Int32:
		return systemDatatype(cmpi.TypeInt32())
	case reflect.Int64:
		return systemDatatype(cmpi.TypeInt64())
	case reflect.Int:
		if strconv.IntSize == 64 {
			return systemDatatype(cmpi.TypeInt64())
		}
		return systemDatatype(cmpi.TypeInt32())
	case reflect.Uint8:
		return systemDatatype(cmpi.TypeUint8())
	case reflect.Uint16:
		return systemDatatype(cmpi.TypeUint16())
	case reflect.Uint32:
		return systemDatatype(cmpi.TypeUint32())
	case reflect.Uint64:
		return systemDatatype(cmpi.TypeUint64())
	case reflect.Uint:
		if strconv.IntSize == 64 {
			return systemDatatype(cmpi.TypeUint64())
		}
		return systemDatatype(cmpi.TypeUint32())
	case reflect.Float32:
		return systemDatatype(cmpi.TypeFloat32())
	case reflect.Float64:
		return systemDatatype(cmpi.TypeFloat64())
	case reflect.Complex64:
		return systemDatatype(cmpi.TypeComplex64())
	case reflect.Complex128:
		return systemDatatype(cmpi.TypeComplex128())
	case reflect.Bool:
		// Layout-equivalent to one byte. Receiving into a native bool is
		// rejected separately; see safeToReceive.
		return systemDatatype(cmpi.TypeByte())
	case reflect.Array:
		return buildArrayDatatype(t)
	case reflect.Struct:
		return buildStructDatatype(t)
	default:
		return nil, fmt.Errorf("kind %s has no fixed wire layout", t.Kind())
	}
}

func buildArrayDatatype(t reflect.Type) (*Datatype, error) {
	if t.Len() == 0 {
		// A zero-length array round-trips as the empty structured type.
		return structuredResized(nil, nil, nil, 0)
	}
	elem := datatypeFor(t.Elem())
	h, err := cmpi.TypeContiguous(t.Len(), elem.handle)
	if err != nil {
		return nil, err
	}
	return newUserDatatype(h, "contiguous")
}

func buildStructDatatype(t reflect.Type) (*Datatype, error) {
	n := t.NumField()
	blocklengths := make([]int, 0, n)
	offsets := make([]int64, 0, n)
	subtypes := make([]cmpi.Datatype, 0, n)
	for i := 0; i < n; i++ {
		field := t.Field(i)
		if field.Type.Size() == 0 {
			continue
		}
		sub := datatypeFor(field.Type)
		blocklengths = append(blocklengths, 1)
		offsets = append(offsets, int64(field.Offset))
		subtypes = append(subtypes, sub.handle)
	}
	return structuredResized(blocklengths, offsets, subtypes, int64(t.Size()))
}

// SafeToReceive reports whether every bit pattern the wire could deliver is
// a valid value of T. Native bool fields fail the check (any of 254 byte
// values would be undefined); use the checked Bool wrapper in receive
// buffers instead.
func SafeToReceive[T any]() bool {
	return safeToReceive(reflect.TypeOf((*T)(nil)).Elem())
}

func safeToReceive(t reflect.Type) bool {
	if t == boolWrapperType {
		return true
	}
	switch t.Kind() {
	case reflect.Bool:
		return false
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int,
		reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		if t.Len() == 0 {
			return true
		}
		return safeToReceive(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !safeToReceive(t.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
