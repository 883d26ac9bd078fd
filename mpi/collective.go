package mpi

import (
	"runtime"

	"github.com/rivergrid/mpi-go/internal/cmpi"
)

// Op selects the combining function of a reduction.
type Op int

const (
	OpSum Op = iota
	OpProd
	OpMax
	OpMin
	OpLogicalAnd
	OpLogicalOr
	OpBitwiseAnd
	OpBitwiseOr
	OpBitwiseXor
)

func (o Op) raw() cmpi.Op {
	switch o {
	case OpSum:
		return cmpi.OpSum()
	case OpProd:
		return cmpi.OpProd()
	case OpMax:
		return cmpi.OpMax()
	case OpMin:
		return cmpi.OpMin()
	case OpLogicalAnd:
		return cmpi.OpLAnd()
	case OpLogicalOr:
		return cmpi.OpLOr()
	case OpBitwiseAnd:
		return cmpi.OpBAnd()
	case OpBitwiseOr:
		return cmpi.OpBOr()
	case OpBitwiseXor:
		return cmpi.OpBXor()
	default:
		panic("mpi: unknown reduction op")
	}
}

func (o Op) String() string {
	switch o {
	case OpSum:
		return "sum"
	case OpProd:
		return "prod"
	case OpMax:
		return "max"
	case OpMin:
		return "min"
	case OpLogicalAnd:
		return "land"
	case OpLogicalOr:
		return "lor"
	case OpBitwiseAnd:
		return "band"
	case OpBitwiseOr:
		return "bor"
	case OpBitwiseXor:
		return "bxor"
	default:
		return "op(?)"
	}
}

// Barrier blocks until every member of the communicator has entered it.
func (c *Comm) Barrier() error {
	return cmpi.Barrier(c.handle)
}

// IBarrier posts a non-blocking barrier. The returned request must be
// resolved like any other.
func (c *Comm) IBarrier() (*Request, error) {
	raw, err := cmpi.IBarrier(c.handle)
	if err != nil {
		return nil, err
	}
	return newRequest(raw, RequestBarrier, nil), nil
}

// Bcast replicates the root's buffer into every member's buffer. Every
// member, the root included, passes a writable view of the same shape.
func (c *Comm) Bcast(buf BufferMut, root int) error {
	err := cmpi.Bcast(buf.ptr, buf.count, buf.dtype.handle, root, c.handle)
	runtime.KeepAlive(buf.ref)
	return err
}

// IBcast posts a non-blocking broadcast. The buffer is borrowed until the
// request resolves.
func (c *Comm) IBcast(buf BufferMut, root int) (*Request, error) {
	st := newStage(buf.ptr, buf.byteSpan(), buf.ref, true)
	raw, err := cmpi.IBcast(st.cptr, buf.count, buf.dtype.handle, root, c.handle)
	if err != nil {
		st.release(false)
		return nil, err
	}
	return newRequest(raw, RequestCollective, st), nil
}

// Gather collects equal-sized contributions from every member at the root.
// recv is only read at the root; other members may pass the zero BufferMut.
func (c *Comm) Gather(send Buffer, recv BufferMut, root int) error {
	var recvCount int
	var recvType cmpi.Datatype
	if recv.dtype != nil {
		recvCount = recv.count / max(c.Size(), 1)
		recvType = recv.dtype.handle
	}
	err := cmpi.Gather(send.ptr, send.count, send.dtype.handle, recv.ptr, recvCount, recvType, root, c.handle)
	runtime.KeepAlive(send.ref)
	runtime.KeepAlive(recv.ref)
	return err
}

// GatherVaried collects varying-sized contributions at the root. The
// partitioned view carries the per-rank counts and displacements; it is
// only significant at the root.
func (c *Comm) GatherVaried(send Buffer, recv PartitionedBufferMut, root int) error {
	var recvType cmpi.Datatype
	if recv.buf.dtype != nil {
		recvType = recv.buf.dtype.handle
	}
	err := cmpi.GatherV(send.ptr, send.count, send.dtype.handle, recv.buf.ptr, recv.counts, recv.displs, recvType, root, c.handle)
	runtime.KeepAlive(send.ref)
	runtime.KeepAlive(recv.buf.ref)
	return err
}

// AllGather collects equal-sized contributions from every member at every
// member.
func (c *Comm) AllGather(send Buffer, recv BufferMut) error {
	recvCount := recv.count / max(c.Size(), 1)
	err := cmpi.AllGather(send.ptr, send.count, send.dtype.handle, recv.ptr, recvCount, recv.dtype.handle, c.handle)
	runtime.KeepAlive(send.ref)
	runtime.KeepAlive(recv.ref)
	return err
}

// Scatter distributes equal-sized slices of the root's buffer to every
// member. send is only read at the root.
func (c *Comm) Scatter(send Buffer, recv BufferMut, root int) error {
	var sendCount int
	var sendType cmpi.Datatype
	if send.dtype != nil {
		sendCount = send.count / max(c.Size(), 1)
		sendType = send.dtype.handle
	}
	err := cmpi.Scatter(send.ptr, sendCount, sendType, recv.ptr, recv.count, recv.dtype.handle, root, c.handle)
	runtime.KeepAlive(send.ref)
	runtime.KeepAlive(recv.ref)
	return err
}

// ScatterVaried distributes varying-sized slices of the root's buffer.
// The partitioned view is only significant at the root.
func (c *Comm) ScatterVaried(send PartitionedBuffer, recv BufferMut, root int) error {
	var sendType cmpi.Datatype
	if send.buf.dtype != nil {
		sendType = send.buf.dtype.handle
	}
	err := cmpi.ScatterV(send.buf.ptr, send.counts, send.displs, sendType, recv.ptr, recv.count, recv.dtype.handle, root, c.handle)
	runtime.KeepAlive(send.buf.ref)
	runtime.KeepAlive(recv.ref)
	return err
}

// Reduce combines each member's contribution element-wise with op and
// deposits the result at the root. recv is only written at the root.
func (c *Comm) Reduce(send Buffer, recv BufferMut, op Op, root int) error {
	err := cmpi.Reduce(send.ptr, recv.ptr, send.count, send.dtype.handle, op.raw(), root, c.handle)
	runtime.KeepAlive(send.ref)
	runtime.KeepAlive(recv.ref)
	return err
}

// AllReduce combines contributions element-wise and deposits the result at
// every member.
func (c *Comm) AllReduce(send Buffer, recv BufferMut, op Op) error {
	err := cmpi.AllReduce(send.ptr, recv.ptr, send.count, send.dtype.handle, op.raw(), c.handle)
	runtime.KeepAlive(send.ref)
	runtime.KeepAlive(recv.ref)
	return err
}
