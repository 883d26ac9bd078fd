package mailbox

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rivergrid/mpi-go/mpi"
)

// OperationKind identifies the type of messaging operation tracked by a
// future.
type OperationKind int

const (
	OperationSend OperationKind = iota
	OperationReceive
)

func (k OperationKind) String() string {
	switch k {
	case OperationSend:
		return "send"
	case OperationReceive:
		return "receive"
	default:
		return "operation"
	}
}

// OperationError wraps an engine failure surfaced through a future.
type OperationError struct {
	Kind OperationKind
	Err  error
}

func (e OperationError) Error() string {
	return fmt.Sprintf("mailbox %s error: %v", e.Kind, e.Err)
}

// Unwrap allows errors.Is / errors.As to reach the engine error, so
// mpi.KindOf still classifies it.
func (e OperationError) Unwrap() error {
	return e.Err
}

// SendCompletion describes the outcome of a send delivered through a handler.
type SendCompletion struct {
	Size int
	Peer int
	Err  error
}

// ReceiveCompletion describes a completed receive delivered through a
// handler. Payload is a private copy; handlers may keep it.
type ReceiveCompletion struct {
	Payload []byte
	Source  int
	Err     error
}

// SendHandler is invoked for every completed send.
type SendHandler func(SendCompletion)

// ReceiveHandler is invoked for every completed receive.
type ReceiveHandler func(ReceiveCompletion)

type operationResult struct {
	length int
	source int
	err    error
}

type operation struct {
	mailbox *Mailbox
	kind    OperationKind
	req     *mpi.Request
	peer    int
	size    int
	buf     []byte
	done    chan struct{}

	mu        sync.Mutex
	once      sync.Once
	completed bool
	result    operationResult
	callbacks []func(operationResult)
}

func newOperation(m *Mailbox, kind OperationKind, req *mpi.Request, peer, size int, buf []byte) *operation {
	return &operation{
		mailbox: m,
		kind:    kind,
		req:     req,
		peer:    peer,
		size:    size,
		buf:     buf,
		done:    make(chan struct{}),
	}
}

func (op *operation) complete(res operationResult) {
	op.once.Do(func() {
		op.mu.Lock()
		op.result = res
		op.completed = true
		callbacks := op.callbacks
		op.callbacks = nil
		op.mu.Unlock()

		if op.mailbox != nil {
			op.mailbox.emit(op, res)
		}
		close(op.done)

		for _, cb := range callbacks {
			go cb(res)
		}
	})
}

func (op *operation) resultSnapshot() operationResult {
	op.mu.Lock()
	defer op.mu.Unlock()
	return op.result
}

func (op *operation) addCallback(cb func(operationResult)) {
	if cb == nil {
		return
	}
	op.mu.Lock()
	if op.completed {
		res := op.result
		op.mu.Unlock()
		go cb(res)
		return
	}
	op.callbacks = append(op.callbacks, cb)
	op.mu.Unlock()
}

// SendFuture tracks the completion of a posted send.
type SendFuture struct {
	op *operation
}

// Await blocks until the send completes or the context is cancelled.
func (f *SendFuture) Await(ctx context.Context) error {
	if f == nil || f.op == nil {
		return errors.New("mailbox: nil send future")
	}
	ctx = ensureContext(ctx)
	select {
	case <-ctx.Done():
		select {
		case <-f.op.done:
			return f.op.resultSnapshot().err
		default:
		}
		return ctx.Err()
	case <-f.op.done:
		return f.op.resultSnapshot().err
	}
}

// Done exposes a channel that closes when the send resolves.
func (f *SendFuture) Done() <-chan struct{} {
	if f == nil || f.op == nil {
		return nil
	}
	return f.op.done
}

// OnComplete registers a callback invoked asynchronously when the send
// resolves.
func (f *SendFuture) OnComplete(fn func(error)) {
	if f == nil || f.op == nil || fn == nil {
		return
	}
	f.op.addCallback(func(res operationResult) {
		fn(res.err)
	})
}

// ReceiveFuture tracks the completion of a posted receive.
type ReceiveFuture struct {
	op *operation
}

// Await blocks until data arrives or the context is cancelled, returning
// the number of payload bytes written into the buffer.
func (f *ReceiveFuture) Await(ctx context.Context) (int, error) {
	if f == nil || f.op == nil {
		return 0, errors.New("mailbox: nil receive future")
	}
	ctx = ensureContext(ctx)
	select {
	case <-ctx.Done():
		select {
		case <-f.op.done:
			res := f.op.resultSnapshot()
			return res.length, res.err
		default:
		}
		return 0, ctx.Err()
	case <-f.op.done:
		res := f.op.resultSnapshot()
		return res.length, res.err
	}
}

// Buffer returns the caller-provided buffer passed to ReceiveAsync.
func (f *ReceiveFuture) Buffer() []byte {
	if f == nil || f.op == nil {
		return nil
	}
	return f.op.buf
}

// Source returns the rank the message came from. Only meaningful after the
// future has resolved.
func (f *ReceiveFuture) Source() int {
	if f == nil || f.op == nil {
		return mpi.ProcNull
	}
	return f.op.resultSnapshot().source
}

// Done exposes a channel that closes when the receive resolves.
func (f *ReceiveFuture) Done() <-chan struct{} {
	if f == nil || f.op == nil {
		return nil
	}
	return f.op.done
}

// OnComplete registers a callback invoked asynchronously once data arrives.
func (f *ReceiveFuture) OnComplete(fn func(int, error)) {
	if f == nil || f.op == nil || fn == nil {
		return
	}
	f.op.addCallback(func(res operationResult) {
		fn(res.length, res.err)
	})
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}
