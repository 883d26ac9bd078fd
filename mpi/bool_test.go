package mpi

import (
	"errors"
	"testing"
	"unsafe"
)

func TestBoolRoundTrip(t *testing.T) {
	if !FromBool(true).Equal(True()) {
		t.Fatal("FromBool(true) != True()")
	}
	if !FromBool(false).Equal(False()) {
		t.Fatal("FromBool(false) != False()")
	}
	if True().Raw() != 1 || False().Raw() != 0 {
		t.Fatalf("unexpected raw encodings: %d %d", True().Raw(), False().Raw())
	}
}

func TestBoolValid(t *testing.T) {
	for _, b := range []Bool{True(), False()} {
		v, err := b.Valid()
		if err != nil {
			t.Fatalf("Valid returned error for %v: %v", b, err)
		}
		if v != (b.Raw() == 1) {
			t.Fatalf("Valid mismatch for raw %d", b.Raw())
		}
		if !b.IsValid() {
			t.Fatalf("IsValid false for raw %d", b.Raw())
		}
	}
}

func TestBoolInvalidEncoding(t *testing.T) {
	// A hostile or buggy peer can put any byte on the wire.
	b := Bool{raw: 0xAB}

	if b.IsValid() {
		t.Fatal("IsValid accepted raw 0xAB")
	}
	_, err := b.Valid()
	var inv *InvalidBoolError
	if !errors.As(err, &inv) {
		t.Fatalf("expected InvalidBoolError, got %v", err)
	}
	if inv.Raw != 0xAB {
		t.Fatalf("InvalidBoolError.Raw = %#x, want 0xAB", inv.Raw)
	}
}

func TestBoolInvalidComparesUnequal(t *testing.T) {
	a := Bool{raw: 7}
	b := Bool{raw: 7}

	if a.Equal(b) {
		t.Fatal("invalid values must not compare equal, even to themselves")
	}
	if a.Equal(True()) || a.Equal(False()) {
		t.Fatal("invalid value compared equal to a valid one")
	}
}

func TestBoolWireShape(t *testing.T) {
	if unsafe.Sizeof(Bool{}) != 1 {
		t.Fatalf("Bool must occupy one byte, got %d", unsafe.Sizeof(Bool{}))
	}
}
