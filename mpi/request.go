package mpi

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/rivergrid/mpi-go/internal/cmpi"
)

// RequestKind identifies what an in-flight request is doing with its
// buffer. It appears in diagnostics when a request is abandoned.
type RequestKind int

const (
	RequestSend RequestKind = iota
	RequestReceive
	RequestBarrier
	RequestCollective
)

func (k RequestKind) String() string {
	switch k {
	case RequestSend:
		return "send request"
	case RequestReceive:
		return "receive request"
	case RequestBarrier:
		return "barrier request"
	case RequestCollective:
		return "collective request"
	default:
		return fmt.Sprintf("request(%d)", int(k))
	}
}

// stage is the C-heap copy of a buffer that a non-blocking operation works
// on. The progress engine may touch it at any moment between posting and
// completion, so it lives outside the Go heap. For receives the contents
// are copied back into the original Go memory once the operation completes.
type stage struct {
	cptr     unsafe.Pointer
	span     uintptr
	back     unsafe.Pointer
	ref      any
	copyBack bool
}

func newStage(ptr unsafe.Pointer, span uintptr, ref any, copyBack bool) *stage {
	st := &stage{span: span, back: ptr, ref: ref, copyBack: copyBack}
	if span > 0 {
		st.cptr = cmpi.AllocBytes(span)
		cmpi.Memcpy(st.cptr, ptr, span)
	}
	return st
}

func (st *stage) release(completed bool) {
	if st.cptr == nil {
		return
	}
	if completed && st.copyBack {
		cmpi.Memcpy(st.back, st.cptr, st.span)
	}
	cmpi.FreeBytes(st.cptr)
	st.cptr = nil
	st.ref = nil
}

// Request is an in-flight non-blocking operation. Every Request must be
// resolved exactly once, by Wait, by a successful Test, or by Cancel.
// Dropping an unresolved Request is a bug: the progress engine still owns
// the staged buffer, and silently forgetting it would leak the buffer and
// possibly lose a matched message. A finalizer backstop crashes the process
// with a diagnostic if an unresolved Request becomes garbage.
//
// Resolving methods are not safe for concurrent use on the same Request.
type Request struct {
	raw      *cmpi.Request
	kind     RequestKind
	stage    *stage
	scope    *Scope
	resolved bool
}

func newRequest(raw *cmpi.Request, kind RequestKind, st *stage) *Request {
	r := &Request{raw: raw, kind: kind, stage: st}
	runtime.SetFinalizer(r, finalizeAbandoned)
	return r
}

func finalizeAbandoned(r *Request) {
	if !r.resolved {
		panic(fmt.Sprintf("mpi: %s abandoned before being waited on, tested to completion, or cancelled", r.kind))
	}
}

// Kind reports what the request is doing with its buffer.
func (r *Request) Kind() RequestKind {
	return r.kind
}

// Resolved reports whether the request has already completed or been
// cancelled.
func (r *Request) Resolved() bool {
	return r == nil || r.resolved
}

func (r *Request) finish(completed bool) {
	r.resolved = true
	runtime.SetFinalizer(r, nil)
	if r.stage != nil {
		r.stage.release(completed)
		r.stage = nil
	}
	if r.scope != nil {
		r.scope.remove(r)
		r.scope = nil
	}
}

// Wait blocks until the operation completes and resolves the request.
// For receives the arrived data is visible in the original buffer once
// Wait returns.
func (r *Request) Wait() (Status, error) {
	if r == nil || r.resolved {
		return Status{}, ErrInvalidHandle{"request"}
	}
	st, err := r.raw.Wait()
	r.finish(err == nil)
	return Status{raw: st}, err
}

// Test checks for completion without blocking. It resolves the request
// only when the operation has completed; an incomplete request stays live
// and must still be waited on, tested again, or cancelled.
func (r *Request) Test() (Status, bool, error) {
	if r == nil || r.resolved {
		return Status{}, false, ErrInvalidHandle{"request"}
	}
	st, done, err := r.raw.Test()
	if err != nil {
		r.finish(false)
		return Status{}, false, err
	}
	if !done {
		return Status{}, false, nil
	}
	r.finish(true)
	return Status{raw: st}, true, nil
}

// Cancel withdraws the operation and resolves the request. A receive that
// is cancelled never writes into its buffer, even if the cancellation
// raced with a matching message.
func (r *Request) Cancel() error {
	if r == nil || r.resolved {
		return ErrInvalidHandle{"request"}
	}
	err := r.raw.Cancel()
	r.finish(false)
	return err
}

// Scope tracks a group of requests and verifies on Close that every one
// of them was resolved. Unlike the finalizer backstop, which fires at the
// garbage collector's whim, a Scope fails deterministically at a known
// program point, which makes forgotten requests testable.
type Scope struct {
	mu     sync.Mutex
	live   map[*Request]struct{}
	closed bool
}

// NewScope returns an empty scope.
func NewScope() *Scope {
	return &Scope{live: make(map[*Request]struct{})}
}

// Track registers a request with the scope and returns it unchanged.
func (s *Scope) Track(r *Request) *Request {
	if r == nil || r.resolved {
		return r
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		panic("mpi: Track on closed Scope")
	}
	s.live[r] = struct{}{}
	r.scope = s
	return r
}

func (s *Scope) remove(r *Request) {
	s.mu.Lock()
	delete(s.live, r)
	s.mu.Unlock()
}

// Close panics if any tracked request is still unresolved, naming the
// kinds of the leaked requests. Closing an empty or fully resolved scope
// is a no-op.
func (s *Scope) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if len(s.live) == 0 {
		return
	}
	counts := make(map[RequestKind]int)
	for r := range s.live {
		counts[r.kind]++
	}
	msg := "mpi: Scope closed with unresolved requests:"
	for _, k := range []RequestKind{RequestSend, RequestReceive, RequestBarrier, RequestCollective} {
		if n := counts[k]; n > 0 {
			msg += fmt.Sprintf(" %dx %s", n, k)
		}
	}
	panic(msg)
}

// WaitGuard resolves a request by waiting when its Close runs, so a
// request can be tied to a function's exit with defer. The status and
// error of the implied Wait are available afterwards from Status and Err.
type WaitGuard struct {
	r      *Request
	status Status
	err    error
}

// WaitOnClose wraps a request so that Close waits for it.
func WaitOnClose(r *Request) *WaitGuard {
	return &WaitGuard{r: r}
}

// Close waits for the request if it has not been resolved yet. It is safe
// to call more than once.
func (g *WaitGuard) Close() error {
	if g.r != nil && !g.r.resolved {
		g.status, g.err = g.r.Wait()
	}
	return g.err
}

// Status returns the status recorded by Close.
func (g *WaitGuard) Status() Status { return g.status }

// Err returns the error recorded by Close.
func (g *WaitGuard) Err() error { return g.err }

// CancelGuard cancels a request on Close unless it was resolved some other
// way first.
type CancelGuard struct {
	r   *Request
	err error
}

// CancelOnClose wraps a request so that Close cancels it if it is still
// in flight.
func CancelOnClose(r *Request) *CancelGuard {
	return &CancelGuard{r: r}
}

// Close cancels the request if it has not been resolved yet. It is safe
// to call more than once.
func (g *CancelGuard) Close() error {
	if g.r != nil && !g.r.resolved {
		g.err = g.r.Cancel()
	}
	return g.err
}
