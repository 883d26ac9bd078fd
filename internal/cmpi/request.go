//go:build cgo

package cmpi

/*
#cgo !mpich pkg-config: ompi
#cgo mpich pkg-config: mpich
#include <mpi.h>

static MPI_Request mpigo_request_null(void) { return MPI_REQUEST_NULL; }

static int mpigo_request_is_null(MPI_Request r) { return r == MPI_REQUEST_NULL; }
*/
import "C"

// Request wraps an opaque MPI_Request handle for one posted non-blocking
// operation. The engine resets the handle to the null request when the
// operation reaches a terminal state.
type Request struct {
	h C.MPI_Request
}

// Status carries the completion metadata of a receive or probe.
type Status struct {
	st C.MPI_Status
}

// Source returns the rank the message originated from.
func (s *Status) Source() int {
	return int(s.st.MPI_SOURCE)
}

// Tag returns the tag the message was sent with.
func (s *Status) Tag() int {
	return int(s.st.MPI_TAG)
}

// Errno returns the per-operation error code recorded in the status.
func (s *Status) Errno() Errno {
	return Errno(s.st.MPI_ERROR)
}

// Count returns the number of elements of the given datatype received,
// or Undefined when the received byte count is not a whole multiple.
func (s *Status) Count(t Datatype) (int, error) {
	var count C.int
	if err := ErrorFromStatus(int(C.MPI_Get_count(&s.st, t.h, &count)), "MPI_Get_count"); err != nil {
		return 0, err
	}
	return int(count), nil
}

// Cancelled reports whether the operation the status describes was cancelled.
func (s *Status) Cancelled() (bool, error) {
	var flag C.int
	if err := ErrorFromStatus(int(C.MPI_Test_cancelled(&s.st, &flag)), "MPI_Test_cancelled"); err != nil {
		return false, err
	}
	return flag != 0, nil
}

// RequestNull returns the null request handle.
func RequestNull() Request {
	return Request{h: C.mpigo_request_null()}
}

// IsNull reports whether the handle has reached the null (terminal) state.
func (r *Request) IsNull() bool {
	if r == nil {
		return true
	}
	return C.mpigo_request_is_null(r.h) != 0
}

// Wait blocks until the operation completes and returns its status.
func (r *Request) Wait() (Status, error) {
	var st Status
	if err := ErrorFromStatus(int(C.MPI_Wait(&r.h, &st.st)), "MPI_Wait"); err != nil {
		return Status{}, err
	}
	return st, nil
}

// Test polls the operation once. The boolean reports completion; when false
// the request remains in flight.
func (r *Request) Test() (Status, bool, error) {
	var st Status
	var flag C.int
	if err := ErrorFromStatus(int(C.MPI_Test(&r.h, &flag, &st.st)), "MPI_Test"); err != nil {
		return Status{}, false, err
	}
	return st, flag != 0, nil
}

// Cancel asks the engine to abort the operation and then drives the request
// to its terminal state, releasing the underlying resource.
func (r *Request) Cancel() error {
	if err := ErrorFromStatus(int(C.MPI_Cancel(&r.h)), "MPI_Cancel"); err != nil {
		return err
	}
	var st Status
	return ErrorFromStatus(int(C.MPI_Wait(&r.h, &st.st)), "MPI_Wait")
}

func packRequests(reqs []*Request) []C.MPI_Request {
	raw := make([]C.MPI_Request, len(reqs))
	for i, r := range reqs {
		if r == nil {
			raw[i] = C.mpigo_request_null()
			continue
		}
		raw[i] = r.h
	}
	return raw
}

func unpackRequests(reqs []*Request, raw []C.MPI_Request) {
	for i, r := range reqs {
		if r == nil {
			continue
		}
		r.h = raw[i]
	}
}

// WaitAny blocks until one of the supplied requests completes. The boolean
// is false when every request is already terminal (engine reports an
// undefined index).
func WaitAny(reqs []*Request) (int, Status, bool, error) {
	if len(reqs) == 0 {
		return 0, Status{}, false, nil
	}
	raw := packRequests(reqs)
	var index C.int
	var st Status
	status := C.MPI_Waitany(C.int(len(raw)), &raw[0], &index, &st.st)
	unpackRequests(reqs, raw)
	if err := ErrorFromStatus(int(status), "MPI_Waitany"); err != nil {
		return 0, Status{}, false, err
	}
	if int(index) == Undefined {
		return 0, Status{}, false, nil
	}
	return int(index), st, true, nil
}

// TestAny polls the supplied requests once. The boolean reports whether one
// completed during the call.
func TestAny(reqs []*Request) (int, Status, bool, error) {
	if len(reqs) == 0 {
		return 0, Status{}, false, nil
	}
	raw := packRequests(reqs)
	var index, flag C.int
	var st Status
	status := C.MPI_Testany(C.int(len(raw)), &raw[0], &index, &flag, &st.st)
	unpackRequests(reqs, raw)
	if err := ErrorFromStatus(int(status), "MPI_Testany"); err != nil {
		return 0, Status{}, false, err
	}
	if flag == 0 || int(index) == Undefined {
		return 0, Status{}, false, nil
	}
	return int(index), st, true, nil
}

// WaitSome blocks until at least one request completes and returns the
// indices and statuses of every request that completed during the call.
// A nil index slice means every request was already terminal.
func WaitSome(reqs []*Request) ([]int, []Status, error) {
	if len(reqs) == 0 {
		return nil, nil, nil
	}
	raw := packRequests(reqs)
	indices := make([]C.int, len(raw))
	statuses := make([]C.MPI_Status, len(raw))
	var outcount C.int
	status := C.MPI_Waitsome(C.int(len(raw)), &raw[0], &outcount, &indices[0], &statuses[0])
	unpackRequests(reqs, raw)
	if err := ErrorFromStatus(int(status), "MPI_Waitsome"); err != nil {
		return nil, nil, err
	}
	if int(outcount) == Undefined {
		return nil, nil, nil
	}
	done := make([]int, int(outcount))
	sts := make([]Status, int(outcount))
	for i := 0; i < int(outcount); i++ {
		done[i] = int(indices[i])
		sts[i] = Status{st: statuses[i]}
	}
	return done, sts, nil
}

// TestSome is the non-blocking counterpart of WaitSome; it may report zero
// completions.
func TestSome(reqs []*Request) ([]int, []Status, error) {
	if len(reqs) == 0 {
		return nil, nil, nil
	}
	raw := packRequests(reqs)
	indices := make([]C.int, len(raw))
	statuses := make([]C.MPI_Status, len(raw))
	var outcount C.int
	status := C.MPI_Testsome(C.int(len(raw)), &raw[0], &outcount, &indices[0], &statuses[0])
	unpackRequests(reqs, raw)
	if err := ErrorFromStatus(int(status), "MPI_Testsome"); err != nil {
		return nil, nil, err
	}
	if int(outcount) == Undefined {
		return nil, nil, nil
	}
	done := make([]int, int(outcount))
	sts := make([]Status, int(outcount))
	for i := 0; i < int(outcount); i++ {
		done[i] = int(indices[i])
		sts[i] = Status{st: statuses[i]}
	}
	return done, sts, nil
}

// WaitAll blocks until every supplied request completes and returns their
// statuses in request order.
func WaitAll(reqs []*Request) ([]Status, error) {
	if len(reqs) == 0 {
		return nil, nil
	}
	raw := packRequests(reqs)
	statuses := make([]C.MPI_Status, len(raw))
	status := C.MPI_Waitall(C.int(len(raw)), &raw[0], &statuses[0])
	unpackRequests(reqs, raw)
	if err := ErrorFromStatus(int(status), "MPI_Waitall"); err != nil {
		return nil, err
	}
	sts := make([]Status, len(raw))
	for i := range statuses {
		sts[i] = Status{st: statuses[i]}
	}
	return sts, nil
}

// TestAll polls every supplied request once. Statuses are only meaningful
// when the boolean reports that all requests completed.
func TestAll(reqs []*Request) ([]Status, bool, error) {
	if len(reqs) == 0 {
		return nil, true, nil
	}
	raw := packRequests(reqs)
	statuses := make([]C.MPI_Status, len(raw))
	var flag C.int
	status := C.MPI_Testall(C.int(len(raw)), &raw[0], &flag, &statuses[0])
	unpackRequests(reqs, raw)
	if err := ErrorFromStatus(int(status), "MPI_Testall"); err != nil {
		return nil, false, err
	}
	if flag == 0 {
		return nil, false, nil
	}
	sts := make([]Status, len(raw))
	for i := range statuses {
		sts[i] = Status{st: statuses[i]}
	}
	return sts, true, nil
}
