package mpi

import "testing"

func TestContiguous(t *testing.T) {
	world(t)

	dt, err := Contiguous(5, DatatypeOf[int32]())
	if err != nil {
		t.Fatalf("Contiguous failed: %v", err)
	}
	size, err := dt.Size()
	if err != nil {
		t.Fatalf("Size failed: %v", err)
	}
	if size != 20 {
		t.Fatalf("size %d, want 20", size)
	}
}

func TestVector(t *testing.T) {
	world(t)

	// Three blocks of two elements, starts four elements apart: a column
	// pair out of a 3x4 row-major matrix.
	dt, err := Vector(3, 2, 4, DatatypeOf[float64]())
	if err != nil {
		t.Fatalf("Vector failed: %v", err)
	}
	size, err := dt.Size()
	if err != nil {
		t.Fatalf("Size failed: %v", err)
	}
	if size != 3*2*8 {
		t.Fatalf("size %d, want %d", size, 3*2*8)
	}
	_, extent, err := dt.Extent()
	if err != nil {
		t.Fatalf("Extent failed: %v", err)
	}
	// Extent runs from the first element to the end of the last block.
	if extent != int64((2*4+2)*8) {
		t.Fatalf("extent %d, want %d", extent, (2*4+2)*8)
	}
}

func TestIndexed(t *testing.T) {
	world(t)

	dt, err := Indexed([]int{1, 3}, []int{0, 5}, DatatypeOf[int16]())
	if err != nil {
		t.Fatalf("Indexed failed: %v", err)
	}
	size, err := dt.Size()
	if err != nil {
		t.Fatalf("Size failed: %v", err)
	}
	if size != 4*2 {
		t.Fatalf("size %d, want 8", size)
	}
}

func TestIndexedBlock(t *testing.T) {
	world(t)

	dt, err := IndexedBlock(2, []int{0, 4, 8}, DatatypeOf[uint8]())
	if err != nil {
		t.Fatalf("IndexedBlock failed: %v", err)
	}
	size, err := dt.Size()
	if err != nil {
		t.Fatalf("Size failed: %v", err)
	}
	if size != 6 {
		t.Fatalf("size %d, want 6", size)
	}
}

func TestHeterogeneousIndexed(t *testing.T) {
	world(t)

	dt, err := HeterogeneousIndexed([]int{2, 1}, []int64{0, 24}, DatatypeOf[float32]())
	if err != nil {
		t.Fatalf("HeterogeneousIndexed failed: %v", err)
	}
	size, err := dt.Size()
	if err != nil {
		t.Fatalf("Size failed: %v", err)
	}
	if size != 12 {
		t.Fatalf("size %d, want 12", size)
	}
}

func TestStructured(t *testing.T) {
	world(t)

	dt, err := Structured(
		[]int{1, 2},
		[]int64{0, 8},
		[]*Datatype{DatatypeOf[int64](), DatatypeOf[uint16]()},
	)
	if err != nil {
		t.Fatalf("Structured failed: %v", err)
	}
	size, err := dt.Size()
	if err != nil {
		t.Fatalf("Size failed: %v", err)
	}
	if size != 8+2*2 {
		t.Fatalf("size %d, want 12", size)
	}
}

func TestDatatypeParallelArrayPanics(t *testing.T) {
	world(t)

	assertPanics := func(name string, fn func()) {
		t.Helper()
		defer func() {
			if recover() == nil {
				t.Fatalf("%s: expected panic on mismatched parallel arrays", name)
			}
		}()
		fn()
	}
	elem := DatatypeOf[int32]()
	assertPanics("Indexed", func() { _, _ = Indexed([]int{1, 2}, []int{0}, elem) })
	assertPanics("HeterogeneousIndexed", func() { _, _ = HeterogeneousIndexed([]int{1}, []int64{0, 8}, elem) })
	assertPanics("Structured", func() { _, _ = Structured([]int{1}, []int64{0, 8}, []*Datatype{elem, elem}) })
	assertPanics("Contiguous negative", func() { _, _ = Contiguous(-1, elem) })
}

func TestNilDatatypeHandles(t *testing.T) {
	world(t)

	if _, err := Contiguous(1, nil); err == nil {
		t.Fatal("Contiguous accepted a nil element type")
	}
	var nilType *Datatype
	if _, err := nilType.Size(); err == nil {
		t.Fatal("Size on nil descriptor did not fail")
	}
}
