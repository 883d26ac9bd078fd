package mpi

import "fmt"

// Bool is a checked wrapper around the single-byte wire boolean. The wire
// carries one byte which may hold any of 256 values; receiving into a native
// Go bool would make out-of-range bytes undefined behavior, so receive
// buffers use this wrapper and validate after the transfer.
type Bool struct {
	raw uint8
}

// InvalidBoolError reports a wire boolean byte outside {0, 1}.
type InvalidBoolError struct {
	Raw uint8
}

func (e *InvalidBoolError) Error() string {
	return fmt.Sprintf("mpi: invalid boolean byte 0x%02x", e.Raw)
}

// True returns the wrapper for the boolean value true.
func True() Bool {
	return Bool{raw: 1}
}

// False returns the wrapper for the boolean value false.
func False() Bool {
	return Bool{raw: 0}
}

// FromBool wraps a native boolean.
func FromBool(v bool) Bool {
	if v {
		return True()
	}
	return False()
}

// Raw returns the wire byte as received.
func (b Bool) Raw() uint8 {
	return b.raw
}

// Valid returns the boolean value, or an InvalidBoolError carrying the
// offending byte when the wire carried something other than 0 or 1. Whether
// an invalid value is fatal is the caller's protocol decision.
func (b Bool) Valid() (bool, error) {
	switch b.raw {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, &InvalidBoolError{Raw: b.raw}
	}
}

// IsValid reports whether the byte holds a well-formed boolean.
func (b Bool) IsValid() bool {
	return b.raw <= 1
}

// Equal implements partial equality: invalid values compare unequal to
// everything, including another invalid value with the same byte. Use this
// instead of == when either operand may have come off the wire.
func (b Bool) Equal(other Bool) bool {
	if !b.IsValid() || !other.IsValid() {
		return false
	}
	return b.raw == other.raw
}

func (b Bool) String() string {
	switch b.raw {
	case 0:
		return "false"
	case 1:
		return "true"
	default:
		return fmt.Sprintf("invalid(0x%02x)", b.raw)
	}
}
