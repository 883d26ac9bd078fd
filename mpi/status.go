package mpi

import "github.com/rivergrid/mpi-go/internal/cmpi"

// Status describes a completed receive or probe: where the message came
// from, its tag, and how many elements arrived.
type Status struct {
	raw cmpi.Status
}

// Source returns the rank the message originated from.
func (s *Status) Source() int {
	return s.raw.Source()
}

// Tag returns the tag the message was sent with.
func (s *Status) Tag() int {
	return s.raw.Tag()
}

// Count returns the number of elements of the given datatype the operation
// transferred, or false when the byte count is not a whole multiple of the
// datatype's size.
func (s *Status) Count(t *Datatype) (int, bool, error) {
	if t == nil {
		return 0, false, ErrInvalidHandle{"datatype"}
	}
	count, err := s.raw.Count(t.handle)
	if err != nil {
		return 0, false, err
	}
	if count == cmpi.Undefined {
		return 0, false, nil
	}
	return count, true, nil
}

// Cancelled reports whether the operation was cancelled before completing.
func (s *Status) Cancelled() (bool, error) {
	return s.raw.Cancelled()
}
