//go:build cgo

package cmpi

import "unsafe"

/*
#cgo !mpich pkg-config: ompi
#cgo mpich pkg-config: mpich
#include <mpi.h>
*/
import "C"

// Barrier blocks until every member of the communicator has entered it.
func Barrier(comm Comm) error {
	return ErrorFromStatus(int(C.MPI_Barrier(comm.h)), "MPI_Barrier")
}

// IBarrier posts a non-blocking barrier.
func IBarrier(comm Comm) (*Request, error) {
	r := &Request{}
	if err := ErrorFromStatus(int(C.MPI_Ibarrier(comm.h, &r.h)), "MPI_Ibarrier"); err != nil {
		return nil, err
	}
	return r, nil
}

// Bcast replicates the root's buffer to every member of the communicator.
func Bcast(buf unsafe.Pointer, count int, t Datatype, root int, comm Comm) error {
	status := C.MPI_Bcast(buf, C.int(count), t.h, C.int(root), comm.h)
	return ErrorFromStatus(int(status), "MPI_Bcast")
}

// IBcast posts a non-blocking broadcast.
func IBcast(buf unsafe.Pointer, count int, t Datatype, root int, comm Comm) (*Request, error) {
	r := &Request{}
	status := C.MPI_Ibcast(buf, C.int(count), t.h, C.int(root), comm.h, &r.h)
	if err := ErrorFromStatus(int(status), "MPI_Ibcast"); err != nil {
		return nil, err
	}
	return r, nil
}

// Gather collects equal-sized contributions from every member at the root.
// recvBuf and its count/type are only significant at the root.
func Gather(sendBuf unsafe.Pointer, sendCount int, sendType Datatype, recvBuf unsafe.Pointer, recvCount int, recvType Datatype, root int, comm Comm) error {
	status := C.MPI_Gather(sendBuf, C.int(sendCount), sendType.h, recvBuf, C.int(recvCount), recvType.h, C.int(root), comm.h)
	return ErrorFromStatus(int(status), "MPI_Gather")
}

// GatherV collects varying-sized contributions at the root using explicit
// per-rank counts and displacements.
func GatherV(sendBuf unsafe.Pointer, sendCount int, sendType Datatype, recvBuf unsafe.Pointer, recvCounts, displs []int, recvType Datatype, root int, comm Comm) error {
	counts, displacements := packCounts(recvCounts, displs)
	var countsPtr, displsPtr *C.int
	if len(counts) > 0 {
		countsPtr = &counts[0]
		displsPtr = &displacements[0]
	}
	status := C.MPI_Gatherv(sendBuf, C.int(sendCount), sendType.h, recvBuf, countsPtr, displsPtr, recvType.h, C.int(root), comm.h)
	return ErrorFromStatus(int(status), "MPI_Gatherv")
}

// AllGather collects equal-sized contributions from every member at every
// member.
func AllGather(sendBuf unsafe.Pointer, sendCount int, sendType Datatype, recvBuf unsafe.Pointer, recvCount int, recvType Datatype, comm Comm) error {
	status := C.MPI_Allgather(sendBuf, C.int(sendCount), sendType.h, recvBuf, C.int(recvCount), recvType.h, comm.h)
	return ErrorFromStatus(int(status), "MPI_Allgather")
}

// Scatter distributes equal-sized slices of the root's buffer to every
// member. sendBuf and its count/type are only significant at the root.
func Scatter(sendBuf unsafe.Pointer, sendCount int, sendType Datatype, recvBuf unsafe.Pointer, recvCount int, recvType Datatype, root int, comm Comm) error {
	status := C.MPI_Scatter(sendBuf, C.int(sendCount), sendType.h, recvBuf, C.int(recvCount), recvType.h, C.int(root), comm.h)
	return ErrorFromStatus(int(status), "MPI_Scatter")
}

// ScatterV distributes varying-sized slices of the root's buffer using
// explicit per-rank counts and displacements.
func ScatterV(sendBuf unsafe.Pointer, sendCounts, displs []int, sendType Datatype, recvBuf unsafe.Pointer, recvCount int, recvType Datatype, root int, comm Comm) error {
	counts, displacements := packCounts(sendCounts, displs)
	var countsPtr, displsPtr *C.int
	if len(counts) > 0 {
		countsPtr = &counts[0]
		displsPtr = &displacements[0]
	}
	status := C.MPI_Scatterv(sendBuf, countsPtr, displsPtr, sendType.h, recvBuf, C.int(recvCount), recvType.h, C.int(root), comm.h)
	return ErrorFromStatus(int(status), "MPI_Scatterv")
}

// Reduce combines contributions element-wise with the given operation,
// depositing the result at the root.
func Reduce(sendBuf, recvBuf unsafe.Pointer, count int, t Datatype, op Op, root int, comm Comm) error {
	status := C.MPI_Reduce(sendBuf, recvBuf, C.int(count), t.h, op.h, C.int(root), comm.h)
	return ErrorFromStatus(int(status), "MPI_Reduce")
}

// AllReduce combines contributions element-wise and deposits the result at
// every member.
func AllReduce(sendBuf, recvBuf unsafe.Pointer, count int, t Datatype, op Op, comm Comm) error {
	status := C.MPI_Allreduce(sendBuf, recvBuf, C.int(count), t.h, op.h, comm.h)
	return ErrorFromStatus(int(status), "MPI_Allreduce")
}

func packCounts(counts, displs []int) ([]C.int, []C.int) {
	cCounts := make([]C.int, len(counts))
	cDispls := make([]C.int, len(displs))
	for i, c := range counts {
		cCounts[i] = C.int(c)
	}
	for i, d := range displs {
		cDispls[i] = C.int(d)
	}
	return cCounts, cDispls
}
