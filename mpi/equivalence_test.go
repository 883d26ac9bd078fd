package mpi

import (
	"sync"
	"testing"
	"unsafe"
)

type sensorReading struct {
	Valid   Bool
	Value   float64
	Channel uint16
}

func TestDatatypeOfIdentity(t *testing.T) {
	world(t)

	if DatatypeOf[int32]() != DatatypeOf[int32]() {
		t.Fatal("repeated derivations of the same type returned distinct descriptors")
	}
	if DatatypeOf[sensorReading]() != DatatypeOf[sensorReading]() {
		t.Fatal("repeated struct derivations returned distinct descriptors")
	}
	if DatatypeOf[int32]() == DatatypeOf[uint32]() {
		t.Fatal("distinct types shared a descriptor")
	}
}

func TestDatatypeOfScalarSizes(t *testing.T) {
	world(t)

	cases := []struct {
		name string
		dt   *Datatype
		want int
	}{
		{"int8", DatatypeOf[int8](), 1},
		{"uint16", DatatypeOf[uint16](), 2},
		{"int32", DatatypeOf[int32](), 4},
		{"float64", DatatypeOf[float64](), 8},
		{"complex128", DatatypeOf[complex128](), 16},
		{"int", DatatypeOf[int](), int(unsafe.Sizeof(int(0)))},
		{"Bool", DatatypeOf[Bool](), 1},
	}
	for _, c := range cases {
		size, err := c.dt.Size()
		if err != nil {
			t.Fatalf("%s: Size failed: %v", c.name, err)
		}
		if size != c.want {
			t.Fatalf("%s: size %d, want %d", c.name, size, c.want)
		}
	}
}

func TestDatatypeOfStructMatchesLayout(t *testing.T) {
	world(t)

	dt := DatatypeOf[sensorReading]()
	size, err := dt.Size()
	if err != nil {
		t.Fatalf("Size failed: %v", err)
	}
	// Significant bytes only: padding between fields is skipped on the wire.
	want := int(unsafe.Sizeof(Bool{}) + unsafe.Sizeof(float64(0)) + unsafe.Sizeof(uint16(0)))
	if size != want {
		t.Fatalf("struct wire size %d, want %d", size, want)
	}

	lb, extent, err := dt.Extent()
	if err != nil {
		t.Fatalf("Extent failed: %v", err)
	}
	if lb != 0 {
		t.Fatalf("lower bound %d, want 0", lb)
	}
	if extent != int64(unsafe.Sizeof(sensorReading{})) {
		t.Fatalf("extent %d, want full in-memory footprint %d", extent, unsafe.Sizeof(sensorReading{}))
	}
}

func TestDatatypeOfArray(t *testing.T) {
	world(t)

	dt := DatatypeOf[[4]float32]()
	size, err := dt.Size()
	if err != nil {
		t.Fatalf("Size failed: %v", err)
	}
	if size != 16 {
		t.Fatalf("array size %d, want 16", size)
	}
}

func TestDatatypeOfNestedStruct(t *testing.T) {
	world(t)

	type inner struct {
		A int16
		B int64
	}
	type outer struct {
		X inner
		Y [2]inner
	}
	dt := DatatypeOf[outer]()
	size, err := dt.Size()
	if err != nil {
		t.Fatalf("Size failed: %v", err)
	}
	if size != 3*(2+8) {
		t.Fatalf("nested size %d, want 30", size)
	}
}

func TestDatatypeOfZeroSize(t *testing.T) {
	world(t)

	type empty struct{}
	for _, c := range []struct {
		name string
		dt   *Datatype
	}{
		{"empty struct", DatatypeOf[empty]()},
		{"zero array", DatatypeOf[[0]float64]()},
	} {
		size, err := c.dt.Size()
		if err != nil {
			t.Fatalf("%s: Size failed: %v", c.name, err)
		}
		if size != 0 {
			t.Fatalf("%s: size %d, want 0", c.name, size)
		}
	}
}

func TestDatatypeOfConcurrentFirstAccess(t *testing.T) {
	world(t)

	// A type nothing else derives, so every goroutine races on first access.
	type contended struct {
		A int64
		B [3]uint16
	}
	const workers = 16
	results := make(chan *Datatype, workers)
	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < workers; i++ {
		go func() {
			start.Wait()
			results <- DatatypeOf[contended]()
		}()
	}
	start.Done()

	first := <-results
	for i := 1; i < workers; i++ {
		if got := <-results; got != first {
			t.Fatal("concurrent first derivations diverged")
		}
	}
}

func TestDatatypeOfRejectsUndescribable(t *testing.T) {
	world(t)

	assertPanics := func(name string, fn func()) {
		t.Helper()
		defer func() {
			if recover() == nil {
				t.Fatalf("%s: expected panic for undescribable type", name)
			}
		}()
		fn()
	}
	assertPanics("string", func() { DatatypeOf[string]() })
	assertPanics("pointer", func() { DatatypeOf[*int]() })
	assertPanics("slice field", func() {
		type bad struct{ S []int }
		DatatypeOf[bad]()
	})
	assertPanics("map", func() { DatatypeOf[map[int]int]() })
}

func TestSafeToReceive(t *testing.T) {
	if SafeToReceive[bool]() {
		t.Fatal("native bool must not be receivable")
	}
	if !SafeToReceive[Bool]() {
		t.Fatal("checked Bool wrapper must be receivable")
	}
	if !SafeToReceive[sensorReading]() {
		t.Fatal("struct of receivable fields must be receivable")
	}
	type carrier struct {
		OK bool
		N  int32
	}
	if SafeToReceive[carrier]() {
		t.Fatal("struct embedding a native bool must not be receivable")
	}
	if SafeToReceive[[3]bool]() {
		t.Fatal("array of native bool must not be receivable")
	}
	if !SafeToReceive[[3]Bool]() {
		t.Fatal("array of checked Bool must be receivable")
	}
}
