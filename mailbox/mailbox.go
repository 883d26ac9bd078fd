// Package mailbox provides asynchronous byte-oriented messaging between the
// members of a communicator. A Mailbox owns a private duplicate of the
// communicator, posts non-blocking operations on behalf of callers, and
// resolves them from a background dispatcher, surfacing completions through
// futures and registered handlers.
package mailbox

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"

	"github.com/rivergrid/mpi-go/mpi"
)

// ErrClosed indicates the mailbox has already been closed.
var ErrClosed = errors.New("mailbox: closed")

// Config controls Open behaviour for a Mailbox.
type Config struct {
	// Tag is the message tag all mailbox traffic uses. Mailboxes with
	// different tags on the same communicator exchange independently.
	Tag int
	// Timeout bounds blocking Send/Receive when the caller's context has
	// no deadline. Defaults to 5s.
	Timeout time.Duration
	// PollInterval is the dispatcher's idle poll floor. Defaults to 200µs;
	// the dispatcher backs off to 10ms when nothing completes.
	PollInterval time.Duration

	Logger           Logger
	StructuredLogger StructuredLogger
	Tracer           Tracer
	Metrics          MetricHook
}

// Stats contains counters for mailbox operations.
type Stats struct {
	SendPosted     uint64
	SendCompleted  uint64
	SendErrored    uint64
	ReceivePosted  uint64
	ReceiveMatched uint64
	ReceiveErrored uint64
}

type mailboxStats struct {
	sendPosted    atomic.Uint64
	sendCompleted atomic.Uint64
	sendErrored   atomic.Uint64
	recvPosted    atomic.Uint64
	recvMatched   atomic.Uint64
	recvErrored   atomic.Uint64
}

type errorHolder struct {
	err error
}

// Mailbox owns the resources necessary to exchange messages with peers.
type Mailbox struct {
	cfg    Config
	comm   *mpi.Comm
	rank   int
	size   int
	closed atomic.Bool

	dispatcherErr atomic.Pointer[errorHolder]

	stopCh       chan struct{}
	dispatcherWg sync.WaitGroup
	deliverWg    sync.WaitGroup

	mu      sync.Mutex
	pending *mpi.RequestCollection
	live    map[*operation]struct{}

	deliveries *deliveryQueue

	handlersMu      sync.RWMutex
	sendHandlers    map[uint64]SendHandler
	receiveHandlers map[uint64]ReceiveHandler
	handlerSeq      atomic.Uint64

	logger           Logger
	structuredLogger StructuredLogger
	tracer           Tracer
	metrics          MetricHook
	stats            mailboxStats
}

// Open prepares a mailbox on the given communicator. The communicator is
// duplicated, so mailbox traffic can never match messages exchanged
// directly on comm or on any other mailbox.
func Open(comm *mpi.Comm, cfg Config) (*Mailbox, error) {
	if comm == nil {
		return nil, errors.New("mailbox: nil communicator")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 200 * time.Microsecond
	}

	dup, err := comm.Dup()
	if err != nil {
		return nil, fmt.Errorf("duplicate communicator: %w", err)
	}

	structured := cfg.StructuredLogger
	if structured == nil {
		if logger, ok := cfg.Logger.(StructuredLogger); ok {
			structured = logger
		}
	}

	m := &Mailbox{
		cfg:              cfg,
		comm:             dup,
		rank:             dup.Rank(),
		size:             dup.Size(),
		stopCh:           make(chan struct{}),
		pending:          mpi.NewRequestCollection(),
		live:             make(map[*operation]struct{}),
		deliveries:       newDeliveryQueue(),
		logger:           cfg.Logger,
		structuredLogger: structured,
		tracer:           cfg.Tracer,
		metrics:          cfg.Metrics,
	}

	m.dispatcherWg.Add(1)
	go m.dispatch()
	m.deliverWg.Add(1)
	go m.deliver()

	return m, nil
}

// Rank returns the caller's rank on the mailbox's communicator.
func (m *Mailbox) Rank() int { return m.rank }

// Size returns the number of peers on the mailbox's communicator.
func (m *Mailbox) Size() int { return m.size }

// Close cancels every outstanding operation, stops the dispatcher, and
// releases the duplicated communicator. Pending futures resolve with
// ErrClosed.
func (m *Mailbox) Close() error {
	if m == nil {
		return nil
	}
	if !m.closed.CompareAndSwap(false, true) {
		return nil
	}

	close(m.stopCh)
	m.dispatcherWg.Wait()

	m.mu.Lock()
	ops := make([]*operation, 0, len(m.live))
	for op := range m.live {
		ops = append(ops, op)
	}
	m.live = nil
	m.mu.Unlock()

	var err error
	for _, op := range ops {
		if cerr := op.req.Cancel(); cerr != nil {
			err = multierr.Append(err, cerr)
		}
		op.complete(operationResult{err: ErrClosed})
	}

	m.handlersMu.Lock()
	m.sendHandlers = nil
	m.receiveHandlers = nil
	m.handlersMu.Unlock()

	m.deliveries.close()
	m.deliverWg.Wait()

	if ferr := m.comm.Free(); ferr != nil {
		err = multierr.Append(err, ferr)
	}
	return err
}

// Send transmits payload to the peer, blocking until the engine reports
// completion. The configured timeout applies when ctx has no deadline.
func (m *Mailbox) Send(ctx context.Context, to int, payload []byte) error {
	ctx, cancel := m.operationContext(ctx)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return err
	}
	future, err := m.SendAsync(to, payload)
	if err != nil {
		return err
	}
	return future.Await(ctx)
}

// SendAsync posts a send and returns a future that resolves when the
// engine reports completion. The payload is captured at post time; the
// caller may reuse it immediately.
func (m *Mailbox) SendAsync(to int, payload []byte) (*SendFuture, error) {
	if err := m.ensureOpen(); err != nil {
		return nil, err
	}
	if len(payload) == 0 {
		return nil, errors.New("mailbox: empty payload")
	}
	if err := m.dispatchFailure(); err != nil {
		return nil, err
	}

	req, err := m.comm.ISend(mpi.SliceOf(payload), to, m.cfg.Tag)
	if err != nil {
		return nil, fmt.Errorf("post send: %w", err)
	}
	op := newOperation(m, OperationSend, req, to, len(payload), nil)
	m.track(op)
	m.stats.sendPosted.Add(1)
	m.logf("mailbox: send posted size=%d to=%d", len(payload), to)
	return &SendFuture{op: op}, nil
}

// Receive blocks until a message arrives in buf, returning the payload
// length and the sender's rank.
func (m *Mailbox) Receive(ctx context.Context, buf []byte) (int, int, error) {
	ctx, cancel := m.operationContext(ctx)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return 0, mpi.ProcNull, err
	}
	future, err := m.ReceiveAsync(buf)
	if err != nil {
		return 0, mpi.ProcNull, err
	}
	n, err := future.Await(ctx)
	if err != nil {
		return 0, mpi.ProcNull, err
	}
	return n, future.Source(), nil
}

// ReceiveAsync posts a receive matching any peer and returns a future that
// resolves when data arrives. The buffer is borrowed until then.
func (m *Mailbox) ReceiveAsync(buf []byte) (*ReceiveFuture, error) {
	if err := m.ensureOpen(); err != nil {
		return nil, err
	}
	if len(buf) == 0 {
		return nil, errors.New("mailbox: buffer must be non-empty")
	}
	if err := m.dispatchFailure(); err != nil {
		return nil, err
	}

	req, err := m.comm.IRecv(mpi.MutSliceOf(buf), mpi.AnySource, m.cfg.Tag)
	if err != nil {
		return nil, fmt.Errorf("post receive: %w", err)
	}
	op := newOperation(m, OperationReceive, req, mpi.AnySource, len(buf), buf)
	m.track(op)
	m.stats.recvPosted.Add(1)
	m.logf("mailbox: receive posted size=%d", len(buf))
	return &ReceiveFuture{op: op}, nil
}

// RegisterSendHandler installs a callback invoked for every completed send.
// The returned function unregisters the handler. Handlers run on the
// delivery goroutine in completion order.
func (m *Mailbox) RegisterSendHandler(handler SendHandler) func() {
	if m == nil || handler == nil {
		return func() {}
	}
	id := m.handlerSeq.Add(1)
	m.handlersMu.Lock()
	if m.sendHandlers == nil {
		m.sendHandlers = make(map[uint64]SendHandler)
	}
	m.sendHandlers[id] = handler
	m.handlersMu.Unlock()
	return func() {
		m.handlersMu.Lock()
		delete(m.sendHandlers, id)
		m.handlersMu.Unlock()
	}
}

// RegisterReceiveHandler installs a callback invoked for every completed
// receive. The returned function unregisters the handler.
func (m *Mailbox) RegisterReceiveHandler(handler ReceiveHandler) func() {
	if m == nil || handler == nil {
		return func() {}
	}
	id := m.handlerSeq.Add(1)
	m.handlersMu.Lock()
	if m.receiveHandlers == nil {
		m.receiveHandlers = make(map[uint64]ReceiveHandler)
	}
	m.receiveHandlers[id] = handler
	m.handlersMu.Unlock()
	return func() {
		m.handlersMu.Lock()
		delete(m.receiveHandlers, id)
		m.handlersMu.Unlock()
	}
}

// Stats returns a snapshot of mailbox counters.
func (m *Mailbox) Stats() Stats {
	if m == nil {
		return Stats{}
	}
	return Stats{
		SendPosted:     m.stats.sendPosted.Load(),
		SendCompleted:  m.stats.sendCompleted.Load(),
		SendErrored:    m.stats.sendErrored.Load(),
		ReceivePosted:  m.stats.recvPosted.Load(),
		ReceiveMatched: m.stats.recvMatched.Load(),
		ReceiveErrored: m.stats.recvErrored.Load(),
	}
}

func (m *Mailbox) ensureOpen() error {
	if m == nil || m.closed.Load() {
		return ErrClosed
	}
	return nil
}

func (m *Mailbox) track(op *operation) {
	m.mu.Lock()
	m.pending.Add(op.req, op)
	m.live[op] = struct{}{}
	m.mu.Unlock()
}

func (m *Mailbox) dispatchFailure() error {
	if err := m.dispatcherError(); err != nil {
		return fmt.Errorf("mailbox dispatcher failed: %w", err)
	}
	return nil
}

func (m *Mailbox) recordDispatcherError(err error) {
	if err == nil {
		return
	}
	m.dispatcherErr.CompareAndSwap(nil, &errorHolder{err: err})
}

func (m *Mailbox) dispatcherError() error {
	if m == nil {
		return nil
	}
	if holder := m.dispatcherErr.Load(); holder != nil {
		return holder.err
	}
	return nil
}

func (m *Mailbox) operationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	if m.cfg.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, m.cfg.Timeout)
}

func (m *Mailbox) dispatch() {
	defer m.dispatcherWg.Done()

	span := m.startDispatcherSpan()
	startFields := []logField{logKV(labelRank, m.rank), logKV(labelTag, m.cfg.Tag)}
	m.logDispatcherEvent("start", startFields...)
	spanAddEvent(span, "start", startFields...)
	m.metricDispatcherStarted(startFields...)

	defer func() {
		err := m.dispatcherError()
		fields := []logField{logKV("status", "ok")}
		if err != nil {
			fields = []logField{logKV("status", "error"), logKV("error", err)}
			spanRecordError(span, err)
		}
		m.logDispatcherEvent("stop", fields...)
		spanAddEvent(span, "stop", fields...)
		m.metricDispatcherStopped(fields...)
		if span != nil {
			span.End(err)
		}
	}()

	backoff := m.cfg.PollInterval
	for {
		select {
		case <-m.stopCh:
			return
		default:
		}

		comps, err := m.poll()
		if err != nil {
			pollErr := fmt.Errorf("poll completions: %w", err)
			fields := []logField{logKV("error", pollErr)}
			m.logDispatcherEvent("poll_error", fields...)
			spanAddEvent(span, "poll_error", fields...)
			spanRecordError(span, pollErr)
			m.metricDispatcherPollError("poll_error", pollErr, fields...)
			m.recordDispatcherError(pollErr)
		}
		if len(comps) > 0 {
			for _, comp := range comps {
				m.resolve(comp, span)
			}
			backoff = m.cfg.PollInterval
			continue
		}

		select {
		case <-m.stopCh:
			return
		case <-time.After(backoff):
		}
		if backoff < 10*time.Millisecond {
			backoff *= 2
		}
	}
}

func (m *Mailbox) poll() ([]mpi.Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	comps, err := m.pending.TestSome()
	if errors.Is(err, mpi.ErrNotCompletable) {
		// Everything resolved; drop the grown slot table.
		if m.pending.Len() > 0 {
			m.pending = mpi.NewRequestCollection()
		}
		return nil, nil
	}
	return comps, err
}

func (m *Mailbox) resolve(comp mpi.Completion, span Span) {
	op, ok := comp.Payload.(*operation)
	if !ok || op == nil {
		return
	}
	m.mu.Lock()
	delete(m.live, op)
	m.mu.Unlock()

	res := operationResult{source: mpi.ProcNull}
	switch op.kind {
	case OperationSend:
		res.length = op.size
	case OperationReceive:
		st := comp.Status
		res.source = st.Source()
		if n, exact, err := st.Count(mpi.DatatypeOf[byte]()); err == nil && exact {
			res.length = n
		}
	}

	m.logOperationCompletion(op, res, span)
	op.complete(res)
}

func (m *Mailbox) logOperationCompletion(op *operation, res operationResult, span Span) {
	status := "ok"
	if res.err != nil {
		status = "error"
	}
	fields := []logField{
		logKV(labelOperation, op.kind.String()),
		logKV(labelStatus, status),
		logKV("length", res.length),
	}
	if op.kind == OperationReceive && res.source != mpi.ProcNull {
		fields = append(fields, logKV("source", res.source))
	}
	if res.err != nil {
		fields = append(fields, logKV("error", res.err))
	}
	m.logDispatcherEvent("completion", fields...)
	spanAddEvent(span, "completion", fields...)
	if res.err != nil {
		spanRecordError(span, res.err)
	}
	switch op.kind {
	case OperationSend:
		if res.err != nil {
			m.metricSendFailed(res.err, fields...)
		} else {
			m.metricSendCompleted(fields...)
		}
	case OperationReceive:
		if res.err != nil {
			m.metricReceiveFailed(res.err, fields...)
		} else {
			m.metricReceiveCompleted(fields...)
		}
	}
}

// emit updates counters and queues the completion for handler delivery.
// Called exactly once per operation from complete.
func (m *Mailbox) emit(op *operation, res operationResult) {
	switch op.kind {
	case OperationSend:
		if res.err != nil {
			m.stats.sendErrored.Add(1)
		} else {
			m.stats.sendCompleted.Add(1)
		}
		m.deliveries.push(SendCompletion{Size: res.length, Peer: op.peer, Err: res.err})
	case OperationReceive:
		if res.err != nil {
			m.stats.recvErrored.Add(1)
		} else {
			m.stats.recvMatched.Add(1)
		}
		var payload []byte
		if res.err == nil && res.length > 0 && len(op.buf) >= res.length {
			payload = make([]byte, res.length)
			copy(payload, op.buf[:res.length])
		}
		m.deliveries.push(ReceiveCompletion{Payload: payload, Source: res.source, Err: res.err})
	}
}

// deliver drains the delivery queue and fans completions out to the
// registered handlers, one completion at a time.
func (m *Mailbox) deliver() {
	defer m.deliverWg.Done()
	for {
		item, ok := m.deliveries.pop()
		if !ok {
			return
		}
		switch c := item.(type) {
		case SendCompletion:
			m.handlersMu.RLock()
			handlers := make([]SendHandler, 0, len(m.sendHandlers))
			for _, h := range m.sendHandlers {
				handlers = append(handlers, h)
			}
			m.handlersMu.RUnlock()
			for _, h := range handlers {
				h(c)
			}
		case ReceiveCompletion:
			m.handlersMu.RLock()
			handlers := make([]ReceiveHandler, 0, len(m.receiveHandlers))
			for _, h := range m.receiveHandlers {
				handlers = append(handlers, h)
			}
			m.handlersMu.RUnlock()
			for _, h := range handlers {
				copyc := c
				if c.Payload != nil {
					copyc.Payload = append([]byte(nil), c.Payload...)
				}
				h(copyc)
			}
		}
	}
}

func (m *Mailbox) startDispatcherSpan() Span {
	if m == nil || m.tracer == nil {
		return nil
	}
	return m.tracer.StartSpan("mailbox-dispatcher",
		TraceAttribute{Key: "component", Value: "mailbox"},
		TraceAttribute{Key: labelRank, Value: m.rank},
		TraceAttribute{Key: labelTag, Value: m.cfg.Tag},
	)
}
