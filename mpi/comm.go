package mpi

import (
	"github.com/rivergrid/mpi-go/internal/cmpi"
)

// Comm identifies a set of cooperating processes with a private
// communication context. The predefined world and self communicators come
// from the Universe; user communicators come from Dup, Split, or Create
// and own their handle.
type Comm struct {
	handle cmpi.Comm
	owned  bool
}

// CommComparison relates two communicators.
type CommComparison int

const (
	// Identical means both handles name the same communication context.
	Identical CommComparison = iota
	// Congruent means same members in the same order, distinct context.
	Congruent
	// Similar means same members in a different order.
	Similar
	// Unequal means differing membership.
	Unequal
)

// Matching wildcards for point-to-point receives and probes.
const (
	AnySource = cmpi.AnySource
	AnyTag    = cmpi.AnyTag
	ProcNull  = cmpi.ProcNull
)

// AsRaw exposes the underlying engine handle for raw calls.
func (c *Comm) AsRaw() cmpi.Comm {
	if c == nil {
		return cmpi.CommNull()
	}
	return c.handle
}

// Rank returns the rank of the calling process within the communicator.
// Only an invalid handle can make this fail, which is a caller bug, so the
// failure panics rather than returning an error.
func (c *Comm) Rank() int {
	if c == nil {
		panic(ErrInvalidHandle{"communicator"})
	}
	rank, err := c.handle.Rank()
	if err != nil {
		panic(err)
	}
	return rank
}

// Size returns the number of processes in the communicator.
func (c *Comm) Size() int {
	if c == nil {
		panic(ErrInvalidHandle{"communicator"})
	}
	size, err := c.handle.Size()
	if err != nil {
		panic(err)
	}
	return size
}

// Dup duplicates the communicator into a new communication context.
// Attributes stored on the communicator propagate according to their
// payload type's duplication policy.
func (c *Comm) Dup() (*Comm, error) {
	if c == nil {
		return nil, ErrInvalidHandle{"communicator"}
	}
	dup, err := c.handle.Dup()
	if err != nil {
		return nil, err
	}
	if err := dup.ErrorsReturn(); err != nil {
		_ = dup.Free()
		return nil, err
	}
	return &Comm{handle: dup, owned: true}, nil
}

// Split partitions the communicator: processes passing the same color land
// in the same new communicator, ordered by key. Passing a negative color
// opts the caller out and returns nil.
func (c *Comm) Split(color, key int) (*Comm, error) {
	if c == nil {
		return nil, ErrInvalidHandle{"communicator"}
	}
	if color < 0 {
		color = cmpi.Undefined
	}
	out, err := c.handle.Split(color, key)
	if err != nil {
		return nil, err
	}
	if out.IsNull() {
		return nil, nil
	}
	if err := out.ErrorsReturn(); err != nil {
		_ = out.Free()
		return nil, err
	}
	return &Comm{handle: out, owned: true}, nil
}

// Compare relates two communicators.
func (c *Comm) Compare(other *Comm) (CommComparison, error) {
	if c == nil || other == nil {
		return Unequal, ErrInvalidHandle{"communicator"}
	}
	result, err := c.handle.Compare(other.handle)
	if err != nil {
		return Unequal, err
	}
	switch result {
	case cmpi.CommIdent:
		return Identical, nil
	case cmpi.CommCongruent:
		return Congruent, nil
	case cmpi.CommSimilar:
		return Similar, nil
	default:
		return Unequal, nil
	}
}

// Group returns the process group backing the communicator.
func (c *Comm) Group() (*Group, error) {
	if c == nil {
		return nil, ErrInvalidHandle{"communicator"}
	}
	g, err := c.handle.Group()
	if err != nil {
		return nil, err
	}
	return &Group{handle: g}, nil
}

// Create builds a communicator containing the processes of the group.
// Callers outside the group receive nil.
func (c *Comm) Create(g *Group) (*Comm, error) {
	if c == nil {
		return nil, ErrInvalidHandle{"communicator"}
	}
	if g == nil {
		return nil, ErrInvalidHandle{"group"}
	}
	out, err := c.handle.Create(g.handle)
	if err != nil {
		return nil, err
	}
	if out.IsNull() {
		return nil, nil
	}
	if err := out.ErrorsReturn(); err != nil {
		_ = out.Free()
		return nil, err
	}
	return &Comm{handle: out, owned: true}, nil
}

// Free releases a user-created communicator; attributes stored on it are
// dropped via their delete callbacks. Freeing the predefined world or self
// communicator is a no-op.
func (c *Comm) Free() error {
	if c == nil || !c.owned {
		return nil
	}
	return c.handle.Free()
}
