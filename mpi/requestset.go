package mpi

import (
	"sort"

	"github.com/rivergrid/mpi-go/internal/cmpi"
)

// Completion reports one finished operation from a RequestCollection. Index
// is the value Add returned for the request and never changes as other
// requests complete.
type Completion struct {
	Index   int
	Status  Status
	Payload any
}

// RequestCollection waits on many requests at once. Each request keeps the
// index assigned at Add for its whole life, so a Completion can be matched
// back to application state without bookkeeping on the caller's side; the
// optional payload carries that state directly.
//
// A collection is not safe for concurrent use.
type RequestCollection struct {
	slots   []collectionSlot
	pending int
}

type collectionSlot struct {
	req     *Request
	payload any
}

// NewRequestCollection returns an empty collection.
func NewRequestCollection() *RequestCollection {
	return &RequestCollection{}
}

// Add registers a request and returns its index. The payload is handed
// back verbatim in the Completion for this request. Adding a nil or
// already resolved request panics.
func (c *RequestCollection) Add(r *Request, payload any) int {
	if r == nil || r.resolved {
		panic("mpi: Add of resolved request to RequestCollection")
	}
	c.slots = append(c.slots, collectionSlot{req: r, payload: payload})
	c.pending++
	return len(c.slots) - 1
}

// Len returns the number of requests ever added.
func (c *RequestCollection) Len() int {
	return len(c.slots)
}

// Incomplete returns the indices of requests that have not completed yet,
// in ascending order.
func (c *RequestCollection) Incomplete() []int {
	var idx []int
	for i, s := range c.slots {
		if s.req != nil && !s.req.resolved {
			idx = append(idx, i)
		}
	}
	return idx
}

// gather collects the raw handles of unresolved slots together with their
// collection indices.
func (c *RequestCollection) gather() ([]*cmpi.Request, []int) {
	raws := make([]*cmpi.Request, 0, c.pending)
	idx := make([]int, 0, c.pending)
	for i, s := range c.slots {
		if s.req != nil && !s.req.resolved {
			raws = append(raws, s.req.raw)
			idx = append(idx, i)
		}
	}
	return raws, idx
}

func (c *RequestCollection) complete(i int, st cmpi.Status) Completion {
	s := &c.slots[i]
	s.req.finish(true)
	c.pending--
	return Completion{Index: i, Status: Status{raw: st}, Payload: s.payload}
}

// WaitAny blocks until one request completes and returns its completion.
// It returns ErrNotCompletable when every request in the collection has
// already been resolved, since waiting would otherwise block forever.
func (c *RequestCollection) WaitAny() (Completion, error) {
	raws, idx := c.gather()
	if len(raws) == 0 {
		return Completion{}, ErrNotCompletable
	}
	pos, st, ok, err := cmpi.WaitAny(raws)
	if err != nil {
		return Completion{}, err
	}
	if !ok {
		return Completion{}, ErrNotCompletable
	}
	return c.complete(idx[pos], st), nil
}

// TestAny checks whether any request has completed without blocking. The
// second return is false when nothing has completed yet. An exhausted
// collection reports ErrNotCompletable like WaitAny.
func (c *RequestCollection) TestAny() (Completion, bool, error) {
	raws, idx := c.gather()
	if len(raws) == 0 {
		return Completion{}, false, ErrNotCompletable
	}
	pos, st, ok, err := cmpi.TestAny(raws)
	if err != nil {
		return Completion{}, false, err
	}
	if !ok {
		return Completion{}, false, nil
	}
	return c.complete(idx[pos], st), true, nil
}

// WaitSome blocks until at least one request completes and returns every
// completion available at that moment, ordered by ascending index. It
// returns ErrNotCompletable on an exhausted collection.
func (c *RequestCollection) WaitSome() ([]Completion, error) {
	raws, idx := c.gather()
	if len(raws) == 0 {
		return nil, ErrNotCompletable
	}
	done, sts, err := cmpi.WaitSome(raws)
	if err != nil {
		return nil, err
	}
	return c.completeAll(done, sts, idx), nil
}

// TestSome returns every completion available right now, ordered by
// ascending index, without blocking. An empty result with a nil error
// means nothing has completed yet.
func (c *RequestCollection) TestSome() ([]Completion, error) {
	raws, idx := c.gather()
	if len(raws) == 0 {
		return nil, ErrNotCompletable
	}
	done, sts, err := cmpi.TestSome(raws)
	if err != nil {
		return nil, err
	}
	return c.completeAll(done, sts, idx), nil
}

// WaitAll blocks until every unresolved request completes and returns the
// completions ordered by ascending index. A fully resolved collection
// returns an empty slice.
func (c *RequestCollection) WaitAll() ([]Completion, error) {
	raws, idx := c.gather()
	if len(raws) == 0 {
		return nil, nil
	}
	sts, err := cmpi.WaitAll(raws)
	if err != nil {
		return nil, err
	}
	done := make([]int, len(raws))
	for i := range done {
		done[i] = i
	}
	return c.completeAll(done, sts, idx), nil
}

// TestAll resolves and returns every completion only when all unresolved
// requests have finished; otherwise it resolves nothing and returns false.
func (c *RequestCollection) TestAll() ([]Completion, bool, error) {
	raws, idx := c.gather()
	if len(raws) == 0 {
		return nil, true, nil
	}
	sts, done, err := cmpi.TestAll(raws)
	if err != nil {
		return nil, false, err
	}
	if !done {
		return nil, false, nil
	}
	all := make([]int, len(raws))
	for i := range all {
		all[i] = i
	}
	return c.completeAll(all, sts, idx), true, nil
}

func (c *RequestCollection) completeAll(done []int, sts []cmpi.Status, idx []int) []Completion {
	out := make([]Completion, 0, len(done))
	for i, pos := range done {
		out = append(out, c.complete(idx[pos], sts[i]))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
