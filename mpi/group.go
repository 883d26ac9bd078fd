package mpi

import "github.com/rivergrid/mpi-go/internal/cmpi"

// Group is an ordered set of processes, used to build communicators with
// explicit membership.
type Group struct {
	handle cmpi.Group
}

// AsRaw exposes the underlying engine handle for raw calls.
func (g *Group) AsRaw() cmpi.Group {
	if g == nil {
		return cmpi.GroupEmpty()
	}
	return g.handle
}

// Rank returns the calling process's rank within the group, or false when
// the caller is not a member.
func (g *Group) Rank() (int, bool, error) {
	if g == nil {
		return 0, false, ErrInvalidHandle{"group"}
	}
	rank, err := g.handle.Rank()
	if err != nil {
		return 0, false, err
	}
	if rank == cmpi.Undefined {
		return 0, false, nil
	}
	return rank, true, nil
}

// Size returns the number of processes in the group.
func (g *Group) Size() (int, error) {
	if g == nil {
		return 0, ErrInvalidHandle{"group"}
	}
	return g.handle.Size()
}

// Union returns the group containing the members of either group.
func (g *Group) Union(other *Group) (*Group, error) {
	if g == nil || other == nil {
		return nil, ErrInvalidHandle{"group"}
	}
	out, err := g.handle.Union(other.handle)
	if err != nil {
		return nil, err
	}
	return &Group{handle: out}, nil
}

// Intersection returns the group containing the members of both groups.
func (g *Group) Intersection(other *Group) (*Group, error) {
	if g == nil || other == nil {
		return nil, ErrInvalidHandle{"group"}
	}
	out, err := g.handle.Intersection(other.handle)
	if err != nil {
		return nil, err
	}
	return &Group{handle: out}, nil
}

// Difference returns the group containing the members of g absent from other.
func (g *Group) Difference(other *Group) (*Group, error) {
	if g == nil || other == nil {
		return nil, ErrInvalidHandle{"group"}
	}
	out, err := g.handle.Difference(other.handle)
	if err != nil {
		return nil, err
	}
	return &Group{handle: out}, nil
}

// Include builds a subgroup containing the listed ranks in the given order.
func (g *Group) Include(ranks ...int) (*Group, error) {
	if g == nil {
		return nil, ErrInvalidHandle{"group"}
	}
	out, err := g.handle.Include(ranks)
	if err != nil {
		return nil, err
	}
	return &Group{handle: out}, nil
}

// Exclude builds a subgroup containing every member except the listed ranks.
func (g *Group) Exclude(ranks ...int) (*Group, error) {
	if g == nil {
		return nil, ErrInvalidHandle{"group"}
	}
	out, err := g.handle.Exclude(ranks)
	if err != nil {
		return nil, err
	}
	return &Group{handle: out}, nil
}

// TranslateRanks maps ranks in g to the corresponding ranks in other;
// processes absent from other map to -1.
func (g *Group) TranslateRanks(ranks []int, other *Group) ([]int, error) {
	if g == nil || other == nil {
		return nil, ErrInvalidHandle{"group"}
	}
	out, err := g.handle.TranslateRanks(ranks, other.handle)
	if err != nil {
		return nil, err
	}
	for i, r := range out {
		if r == cmpi.Undefined {
			out[i] = -1
		}
	}
	return out, nil
}

// Free releases the group handle.
func (g *Group) Free() error {
	if g == nil {
		return nil
	}
	return g.handle.Free()
}
