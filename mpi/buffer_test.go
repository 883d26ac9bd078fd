package mpi

import (
	"errors"
	"testing"
)

func TestSliceOfShape(t *testing.T) {
	world(t)

	s := []int32{1, 2, 3}
	b := SliceOf(s)
	if b.Count() != 3 {
		t.Fatalf("count %d, want 3", b.Count())
	}
	if b.Datatype() != DatatypeOf[int32]() {
		t.Fatal("descriptor does not match the element type")
	}

	empty := SliceOf([]int32(nil))
	if empty.Count() != 0 || empty.Pointer() != nil {
		t.Fatal("nil slice must describe an empty view")
	}
}

func TestMutOfRejectsNativeBool(t *testing.T) {
	world(t)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic describing a writable native bool")
		}
	}()
	v := true
	_ = MutOf(&v)
}

func TestMutOfAcceptsCheckedBool(t *testing.T) {
	world(t)

	v := True()
	b := MutOf(&v)
	if b.Count() != 1 {
		t.Fatalf("count %d, want 1", b.Count())
	}
}

func TestValueOfAllowsNativeBoolForSending(t *testing.T) {
	world(t)

	// Sending a native bool is fine; only receiving into one is unsafe.
	v := true
	b := ValueOf(&v)
	if b.Count() != 1 {
		t.Fatalf("count %d, want 1", b.Count())
	}
}

func TestEraseAndDowncast(t *testing.T) {
	world(t)

	s := []float64{1.5, 2.5}
	dyn := SliceOf(s).Erase()

	back, err := Downcast[float64](dyn)
	if err != nil {
		t.Fatalf("Downcast failed: %v", err)
	}
	if len(back) != 2 || back[0] != 1.5 || back[1] != 2.5 {
		t.Fatalf("unexpected recovered elements: %v", back)
	}

	if _, err := Downcast[float32](dyn); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch, got %v", err)
	}
}

func TestDowncastMut(t *testing.T) {
	world(t)

	s := []uint16{7, 8, 9}
	dyn := MutSliceOf(s).Erase()

	back, err := DowncastMut[uint16](dyn)
	if err != nil {
		t.Fatalf("DowncastMut failed: %v", err)
	}
	back[0] = 42
	if s[0] != 42 {
		t.Fatal("recovered slice does not alias the original storage")
	}

	if _, err := DowncastMut[int16](dyn); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch, got %v", err)
	}
}

func TestUnsafeView(t *testing.T) {
	world(t)

	s := []uint64{0, 0}
	v := UnsafeView(SliceOf(s), 4, DatatypeOf[uint32]())
	if v.Count() != 4 || v.Datatype() != DatatypeOf[uint32]() {
		t.Fatal("reinterpreted view has the wrong shape")
	}
}

func TestPartitionedChecks(t *testing.T) {
	world(t)

	s := make([]int32, 10)
	if _, err := Partitioned(SliceOf(s), []int{4, 6}, []int{0, 4}); err != nil {
		t.Fatalf("valid partition rejected: %v", err)
	}
	if _, err := Partitioned(SliceOf(s), []int{4, 7}, []int{0, 4}); err == nil {
		t.Fatal("segment past the end of the buffer accepted")
	}
	if _, err := Partitioned(SliceOf(s), []int{-1}, []int{0}); err == nil {
		t.Fatal("negative count accepted")
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on mismatched counts and displacements")
		}
	}()
	_, _ = Partitioned(SliceOf(s), []int{1, 2}, []int{0})
}
