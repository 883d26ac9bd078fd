//go:build cgo

package cmpi

/*
#cgo !mpich pkg-config: ompi
#cgo mpich pkg-config: mpich
#include <mpi.h>

static MPI_Group mpigo_group_empty(void) { return MPI_GROUP_EMPTY; }
static MPI_Group mpigo_group_null(void)  { return MPI_GROUP_NULL; }

static int mpigo_group_is_null(MPI_Group g) { return g == MPI_GROUP_NULL; }
*/
import "C"

// Group wraps an opaque MPI_Group handle.
type Group struct {
	h C.MPI_Group
}

// GroupEmpty returns the predefined empty group.
func GroupEmpty() Group {
	return Group{h: C.mpigo_group_empty()}
}

// IsNull reports whether the handle is the null group.
func (g Group) IsNull() bool {
	return C.mpigo_group_is_null(g.h) != 0
}

// Rank returns the calling process's rank within the group, or Undefined
// when the caller is not a member.
func (g Group) Rank() (int, error) {
	var rank C.int
	if err := ErrorFromStatus(int(C.MPI_Group_rank(g.h, &rank)), "MPI_Group_rank"); err != nil {
		return 0, err
	}
	return int(rank), nil
}

// Size returns the number of processes in the group.
func (g Group) Size() (int, error) {
	var size C.int
	if err := ErrorFromStatus(int(C.MPI_Group_size(g.h, &size)), "MPI_Group_size"); err != nil {
		return 0, err
	}
	return int(size), nil
}

// Union returns the group containing the members of both groups.
func (g Group) Union(other Group) (Group, error) {
	var out C.MPI_Group
	if err := ErrorFromStatus(int(C.MPI_Group_union(g.h, other.h, &out)), "MPI_Group_union"); err != nil {
		return Group{}, err
	}
	return Group{h: out}, nil
}

// Intersection returns the group containing the members common to both groups.
func (g Group) Intersection(other Group) (Group, error) {
	var out C.MPI_Group
	if err := ErrorFromStatus(int(C.MPI_Group_intersection(g.h, other.h, &out)), "MPI_Group_intersection"); err != nil {
		return Group{}, err
	}
	return Group{h: out}, nil
}

// Difference returns the group containing the members of g absent from other.
func (g Group) Difference(other Group) (Group, error) {
	var out C.MPI_Group
	if err := ErrorFromStatus(int(C.MPI_Group_difference(g.h, other.h, &out)), "MPI_Group_difference"); err != nil {
		return Group{}, err
	}
	return Group{h: out}, nil
}

// Include builds a subgroup containing the listed ranks in the given order.
func (g Group) Include(ranks []int) (Group, error) {
	var out C.MPI_Group
	cRanks := make([]C.int, len(ranks))
	for i, r := range ranks {
		cRanks[i] = C.int(r)
	}
	var ptr *C.int
	if len(cRanks) > 0 {
		ptr = &cRanks[0]
	}
	if err := ErrorFromStatus(int(C.MPI_Group_incl(g.h, C.int(len(ranks)), ptr, &out)), "MPI_Group_incl"); err != nil {
		return Group{}, err
	}
	return Group{h: out}, nil
}

// Exclude builds a subgroup containing every member except the listed ranks.
func (g Group) Exclude(ranks []int) (Group, error) {
	var out C.MPI_Group
	cRanks := make([]C.int, len(ranks))
	for i, r := range ranks {
		cRanks[i] = C.int(r)
	}
	var ptr *C.int
	if len(cRanks) > 0 {
		ptr = &cRanks[0]
	}
	if err := ErrorFromStatus(int(C.MPI_Group_excl(g.h, C.int(len(ranks)), ptr, &out)), "MPI_Group_excl"); err != nil {
		return Group{}, err
	}
	return Group{h: out}, nil
}

// TranslateRanks maps ranks in g to the corresponding ranks in other.
// Processes absent from other map to Undefined.
func (g Group) TranslateRanks(ranks []int, other Group) ([]int, error) {
	if len(ranks) == 0 {
		return nil, nil
	}
	in := make([]C.int, len(ranks))
	for i, r := range ranks {
		in[i] = C.int(r)
	}
	out := make([]C.int, len(ranks))
	if err := ErrorFromStatus(int(C.MPI_Group_translate_ranks(g.h, C.int(len(ranks)), &in[0], other.h, &out[0])), "MPI_Group_translate_ranks"); err != nil {
		return nil, err
	}
	result := make([]int, len(ranks))
	for i, r := range out {
		result[i] = int(r)
	}
	return result, nil
}

// Compare relates two groups, returning CommIdent, CommSimilar, or CommUnequal.
func (g Group) Compare(other Group) (int, error) {
	var result C.int
	if err := ErrorFromStatus(int(C.MPI_Group_compare(g.h, other.h, &result)), "MPI_Group_compare"); err != nil {
		return 0, err
	}
	return int(result), nil
}

// Free releases the group handle.
func (g *Group) Free() error {
	if g == nil || g.IsNull() {
		return nil
	}
	return ErrorFromStatus(int(C.MPI_Group_free(&g.h)), "MPI_Group_free")
}
