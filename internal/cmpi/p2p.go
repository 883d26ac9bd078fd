//go:build cgo

package cmpi

import "unsafe"

/*
#cgo !mpich pkg-config: ompi
#cgo mpich pkg-config: mpich
#include <mpi.h>
*/
import "C"

// Send posts a blocking standard-mode send. The buffer is only accessed for
// the duration of the call.
func Send(buf unsafe.Pointer, count int, t Datatype, dest, tag int, comm Comm) error {
	status := C.MPI_Send(buf, C.int(count), t.h, C.int(dest), C.int(tag), comm.h)
	return ErrorFromStatus(int(status), "MPI_Send")
}

// SSend posts a blocking synchronous-mode send; it returns only after the
// matching receive has started.
func SSend(buf unsafe.Pointer, count int, t Datatype, dest, tag int, comm Comm) error {
	status := C.MPI_Ssend(buf, C.int(count), t.h, C.int(dest), C.int(tag), comm.h)
	return ErrorFromStatus(int(status), "MPI_Ssend")
}

// Recv posts a blocking receive and returns the completion status.
func Recv(buf unsafe.Pointer, count int, t Datatype, source, tag int, comm Comm) (Status, error) {
	var st Status
	status := C.MPI_Recv(buf, C.int(count), t.h, C.int(source), C.int(tag), comm.h, &st.st)
	if err := ErrorFromStatus(int(status), "MPI_Recv"); err != nil {
		return Status{}, err
	}
	return st, nil
}

// ISend posts a non-blocking standard-mode send. The engine may read from
// the buffer until the returned request reaches a terminal state.
func ISend(buf unsafe.Pointer, count int, t Datatype, dest, tag int, comm Comm) (*Request, error) {
	r := &Request{}
	status := C.MPI_Isend(buf, C.int(count), t.h, C.int(dest), C.int(tag), comm.h, &r.h)
	if err := ErrorFromStatus(int(status), "MPI_Isend"); err != nil {
		return nil, err
	}
	return r, nil
}

// ISSend posts a non-blocking synchronous-mode send.
func ISSend(buf unsafe.Pointer, count int, t Datatype, dest, tag int, comm Comm) (*Request, error) {
	r := &Request{}
	status := C.MPI_Issend(buf, C.int(count), t.h, C.int(dest), C.int(tag), comm.h, &r.h)
	if err := ErrorFromStatus(int(status), "MPI_Issend"); err != nil {
		return nil, err
	}
	return r, nil
}

// IRecv posts a non-blocking receive. The engine may write into the buffer
// until the returned request reaches a terminal state.
func IRecv(buf unsafe.Pointer, count int, t Datatype, source, tag int, comm Comm) (*Request, error) {
	r := &Request{}
	status := C.MPI_Irecv(buf, C.int(count), t.h, C.int(source), C.int(tag), comm.h, &r.h)
	if err := ErrorFromStatus(int(status), "MPI_Irecv"); err != nil {
		return nil, err
	}
	return r, nil
}

// Probe blocks until a matching message is available and returns its
// envelope without receiving it.
func Probe(source, tag int, comm Comm) (Status, error) {
	var st Status
	status := C.MPI_Probe(C.int(source), C.int(tag), comm.h, &st.st)
	if err := ErrorFromStatus(int(status), "MPI_Probe"); err != nil {
		return Status{}, err
	}
	return st, nil
}

// IProbe polls once for a matching message. The boolean reports whether the
// returned status describes one.
func IProbe(source, tag int, comm Comm) (Status, bool, error) {
	var st Status
	var flag C.int
	status := C.MPI_Iprobe(C.int(source), C.int(tag), comm.h, &flag, &st.st)
	if err := ErrorFromStatus(int(status), "MPI_Iprobe"); err != nil {
		return Status{}, false, err
	}
	return st, flag != 0, nil
}
