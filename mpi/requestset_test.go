package mpi

import (
	"errors"
	"testing"
)

func TestRequestCollectionExhausted(t *testing.T) {
	world(t)

	c := NewRequestCollection()
	if _, err := c.WaitAny(); !errors.Is(err, ErrNotCompletable) {
		t.Fatalf("WaitAny on empty collection: expected ErrNotCompletable, got %v", err)
	}
	if _, _, err := c.TestAny(); !errors.Is(err, ErrNotCompletable) {
		t.Fatalf("TestAny on empty collection: expected ErrNotCompletable, got %v", err)
	}
	if _, err := c.WaitSome(); !errors.Is(err, ErrNotCompletable) {
		t.Fatalf("WaitSome on empty collection: expected ErrNotCompletable, got %v", err)
	}
	if out, err := c.WaitAll(); err != nil || len(out) != 0 {
		t.Fatalf("WaitAll on empty collection: got (%v, %v)", out, err)
	}
}

func TestRequestCollectionWaitAll(t *testing.T) {
	w := world(t)
	rank := w.Rank()

	const n = 4
	c := NewRequestCollection()
	inboxes := make([][]int32, n)

	for i := 0; i < n; i++ {
		inboxes[i] = make([]int32, 1)
		req, err := w.IRecv(MutSliceOf(inboxes[i]), rank, 100+i)
		if err != nil {
			t.Fatalf("IRecv %d failed: %v", i, err)
		}
		idx := c.Add(req, i)
		if idx != i {
			t.Fatalf("Add returned index %d, want %d", idx, i)
		}
	}
	for i := 0; i < n; i++ {
		v := int32(i * 10)
		req, err := w.ISend(ValueOf(&v), rank, 100+i)
		if err != nil {
			t.Fatalf("ISend %d failed: %v", i, err)
		}
		c.Add(req, nil)
	}

	out, err := c.WaitAll()
	if err != nil {
		t.Fatalf("WaitAll failed: %v", err)
	}
	if len(out) != 2*n {
		t.Fatalf("got %d completions, want %d", len(out), 2*n)
	}
	for i := 1; i < len(out); i++ {
		if out[i].Index <= out[i-1].Index {
			t.Fatalf("completions not in ascending index order: %d after %d", out[i].Index, out[i-1].Index)
		}
	}
	for _, comp := range out {
		if comp.Index >= n {
			continue
		}
		slot, ok := comp.Payload.(int)
		if !ok || slot != comp.Index {
			t.Fatalf("payload %v does not match index %d", comp.Payload, comp.Index)
		}
		if inboxes[slot][0] != int32(slot*10) {
			t.Fatalf("inbox %d holds %d, want %d", slot, inboxes[slot][0], slot*10)
		}
	}
	if left := c.Incomplete(); len(left) != 0 {
		t.Fatalf("Incomplete after WaitAll: %v", left)
	}
}

func TestRequestCollectionWaitAny(t *testing.T) {
	w := world(t)
	rank := w.Rank()

	c := NewRequestCollection()
	inbox := make([]int32, 1)
	recvReq, err := w.IRecv(MutSliceOf(inbox), rank, 200)
	if err != nil {
		t.Fatalf("IRecv failed: %v", err)
	}
	c.Add(recvReq, "the receive")

	v := int32(31)
	sendReq, err := w.ISend(ValueOf(&v), rank, 200)
	if err != nil {
		t.Fatalf("ISend failed: %v", err)
	}
	c.Add(sendReq, "the send")

	seen := map[int]bool{}
	for len(seen) < 2 {
		comp, err := c.WaitAny()
		if err != nil {
			t.Fatalf("WaitAny failed: %v", err)
		}
		if seen[comp.Index] {
			t.Fatalf("index %d completed twice", comp.Index)
		}
		seen[comp.Index] = true
	}
	if _, err := c.WaitAny(); !errors.Is(err, ErrNotCompletable) {
		t.Fatalf("drained collection: expected ErrNotCompletable, got %v", err)
	}
	if inbox[0] != 31 {
		t.Fatalf("unexpected inbox: %v", inbox)
	}
}

func TestRequestCollectionTestAll(t *testing.T) {
	w := world(t)

	c := NewRequestCollection()
	inbox := make([]int32, 1)
	req, err := w.IRecv(MutSliceOf(inbox), AnySource, 300)
	if err != nil {
		t.Fatalf("IRecv failed: %v", err)
	}
	c.Add(req, nil)

	_, done, err := c.TestAll()
	if err != nil {
		t.Fatalf("TestAll failed: %v", err)
	}
	if done {
		t.Fatal("unmatched receive reported complete")
	}
	if left := c.Incomplete(); len(left) != 1 || left[0] != 0 {
		t.Fatalf("Incomplete = %v, want [0]", left)
	}

	if err := req.Cancel(); err != nil {
		t.Fatalf("cleanup cancel failed: %v", err)
	}
	if left := c.Incomplete(); len(left) != 0 {
		t.Fatalf("Incomplete after cancel: %v", left)
	}
}

func TestRequestCollectionWaitSome(t *testing.T) {
	w := world(t)
	rank := w.Rank()

	c := NewRequestCollection()
	inbox := make([]int32, 1)
	recvReq, err := w.IRecv(MutSliceOf(inbox), rank, 400)
	if err != nil {
		t.Fatalf("IRecv failed: %v", err)
	}
	c.Add(recvReq, nil)

	v := int32(1)
	sendReq, err := w.ISend(ValueOf(&v), rank, 400)
	if err != nil {
		t.Fatalf("ISend failed: %v", err)
	}
	c.Add(sendReq, nil)

	total := 0
	for total < 2 {
		out, err := c.WaitSome()
		if err != nil {
			t.Fatalf("WaitSome failed: %v", err)
		}
		if len(out) == 0 {
			t.Fatal("WaitSome returned without completions")
		}
		total += len(out)
	}
	if _, err := c.WaitSome(); !errors.Is(err, ErrNotCompletable) {
		t.Fatalf("drained collection: expected ErrNotCompletable, got %v", err)
	}
}

func TestRequestCollectionRejectsResolved(t *testing.T) {
	w := world(t)

	inbox := make([]int32, 1)
	req, err := w.IRecv(MutSliceOf(inbox), AnySource, 500)
	if err != nil {
		t.Fatalf("IRecv failed: %v", err)
	}
	if err := req.Cancel(); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	c := NewRequestCollection()
	defer func() {
		if recover() == nil {
			t.Fatal("Add of a resolved request did not panic")
		}
	}()
	c.Add(req, nil)
}
