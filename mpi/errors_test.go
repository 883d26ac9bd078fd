package mpi

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfNonEngineError(t *testing.T) {
	if kind := KindOf(errors.New("disk on fire")); kind != KindUnknown {
		t.Fatalf("kind %v, want %v", kind, KindUnknown)
	}
	if kind := KindOf(nil); kind != KindUnknown {
		t.Fatalf("kind %v for nil, want %v", kind, KindUnknown)
	}
}

func TestKindOfWrappedError(t *testing.T) {
	w := world(t)

	v := int32(0)
	err := w.Send(ValueOf(&v), w.Size()+10, 1)
	if err == nil {
		t.Fatal("expected a rank error")
	}
	wrapped := fmt.Errorf("posting heartbeat: %w", err)
	if kind := KindOf(wrapped); kind != KindInvalidRank {
		t.Fatalf("kind %v through wrapping, want %v", kind, KindInvalidRank)
	}
}

func TestErrorKindStrings(t *testing.T) {
	cases := map[ErrorKind]string{
		KindInvalidRank: "invalid rank",
		KindTruncated:   "message truncated",
		KindNoMemory:    "out of memory",
		KindUnknown:     "unknown",
	}
	for k, want := range cases {
		if k.String() != want {
			t.Fatalf("%d.String() = %q, want %q", int(k), k.String(), want)
		}
	}
}

func TestInvalidHandleError(t *testing.T) {
	err := ErrInvalidHandle{Kind: "request"}
	if err.Error() != "mpi: invalid request handle" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}
