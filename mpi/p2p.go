package mpi

import (
	"runtime"

	"github.com/rivergrid/mpi-go/internal/cmpi"
)

// Send posts a blocking standard-mode send of the buffer to dest. The
// buffer is only read for the duration of the call.
func (c *Comm) Send(buf Buffer, dest, tag int) error {
	err := cmpi.Send(buf.ptr, buf.count, buf.dtype.handle, dest, tag, c.handle)
	runtime.KeepAlive(buf.ref)
	return err
}

// SSend posts a blocking synchronous-mode send; it returns only after the
// matching receive has started.
func (c *Comm) SSend(buf Buffer, dest, tag int) error {
	err := cmpi.SSend(buf.ptr, buf.count, buf.dtype.handle, dest, tag, c.handle)
	runtime.KeepAlive(buf.ref)
	return err
}

// Recv blocks until a matching message arrives and receives it into the
// buffer. Use AnySource and AnyTag to match any envelope; the returned
// status carries the actual source, tag, and element count.
func (c *Comm) Recv(buf BufferMut, source, tag int) (Status, error) {
	st, err := cmpi.Recv(buf.ptr, buf.count, buf.dtype.handle, source, tag, c.handle)
	runtime.KeepAlive(buf.ref)
	if err != nil {
		return Status{}, err
	}
	return Status{raw: st}, nil
}

// ISend posts a non-blocking standard-mode send. The buffer contents are
// captured when ISend returns; the caller may modify the original memory
// immediately, and must resolve the returned request.
func (c *Comm) ISend(buf Buffer, dest, tag int) (*Request, error) {
	st := newStage(buf.ptr, buf.byteSpan(), buf.ref, false)
	raw, err := cmpi.ISend(st.cptr, buf.count, buf.dtype.handle, dest, tag, c.handle)
	if err != nil {
		st.release(false)
		return nil, err
	}
	return newRequest(raw, RequestSend, st), nil
}

// ISSend posts a non-blocking synchronous-mode send.
func (c *Comm) ISSend(buf Buffer, dest, tag int) (*Request, error) {
	st := newStage(buf.ptr, buf.byteSpan(), buf.ref, false)
	raw, err := cmpi.ISSend(st.cptr, buf.count, buf.dtype.handle, dest, tag, c.handle)
	if err != nil {
		st.release(false)
		return nil, err
	}
	return newRequest(raw, RequestSend, st), nil
}

// IRecv posts a non-blocking receive. The buffer is borrowed until the
// returned request resolves; the arrived data becomes visible in it only
// once the request completes through Wait, Test, or a collection wait.
func (c *Comm) IRecv(buf BufferMut, source, tag int) (*Request, error) {
	st := newStage(buf.ptr, buf.byteSpan(), buf.ref, true)
	raw, err := cmpi.IRecv(st.cptr, buf.count, buf.dtype.handle, source, tag, c.handle)
	if err != nil {
		st.release(false)
		return nil, err
	}
	return newRequest(raw, RequestReceive, st), nil
}

// Probe blocks until a matching message is available and returns its
// envelope without receiving it.
func (c *Comm) Probe(source, tag int) (Status, error) {
	st, err := cmpi.Probe(source, tag, c.handle)
	if err != nil {
		return Status{}, err
	}
	return Status{raw: st}, nil
}

// IProbe polls once for a matching message. The boolean reports whether
// one is available.
func (c *Comm) IProbe(source, tag int) (Status, bool, error) {
	st, ok, err := cmpi.IProbe(source, tag, c.handle)
	if err != nil {
		return Status{}, false, err
	}
	return Status{raw: st}, ok, nil
}
