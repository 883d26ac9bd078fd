package mpi

import (
	"errors"

	"github.com/rivergrid/mpi-go/internal/cmpi"
)

var (
	// ErrNotCompletable indicates a wait on a collection with no pending requests.
	ErrNotCompletable = errors.New("mpi: no requests completable")
	// ErrTypeMismatch indicates a dynamic buffer downcast to the wrong element type.
	ErrTypeMismatch = errors.New("mpi: buffer datatype does not match requested type")
	// ErrFinalized indicates an operation attempted after library teardown.
	ErrFinalized = errors.New("mpi: library already finalized")
)

// ErrInvalidHandle reports use of a nil or already-released typed handle.
type ErrInvalidHandle struct {
	Kind string
}

func (e ErrInvalidHandle) Error() string {
	return "mpi: invalid " + e.Kind + " handle"
}

// Errno re-exports the engine error code type for consumers of the mpi package.
type Errno = cmpi.Errno

// ErrorKind classifies an engine-reported failure so callers can pick a
// recovery strategy without parsing message text.
type ErrorKind int

const (
	// KindUnknown covers engine failures outside the enumerated classes.
	KindUnknown ErrorKind = iota
	// KindInvalidRank reports a rank outside the communicator.
	KindInvalidRank
	// KindInvalidTag reports a tag outside the engine's valid range.
	KindInvalidTag
	// KindInvalidCommunicator reports an invalid or null communicator handle.
	KindInvalidCommunicator
	// KindInvalidDatatype reports an uncommitted or invalid datatype handle.
	KindInvalidDatatype
	// KindInvalidCount reports a negative or otherwise invalid element count.
	KindInvalidCount
	// KindInvalidBuffer reports an invalid buffer argument.
	KindInvalidBuffer
	// KindInvalidOp reports an invalid reduction operation.
	KindInvalidOp
	// KindInvalidRoot reports a root rank outside the communicator.
	KindInvalidRoot
	// KindTruncated reports a received message longer than the posted buffer.
	KindTruncated
	// KindInvalidRequest reports an invalid request handle.
	KindInvalidRequest
	// KindInvalidGroup reports an invalid group handle.
	KindInvalidGroup
	// KindInvalidKeyval reports an invalid attribute keyval.
	KindInvalidKeyval
	// KindNoMemory reports engine resource exhaustion.
	KindNoMemory
	// KindInternal reports an internal engine failure.
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidRank:
		return "invalid rank"
	case KindInvalidTag:
		return "invalid tag"
	case KindInvalidCommunicator:
		return "invalid communicator"
	case KindInvalidDatatype:
		return "invalid datatype"
	case KindInvalidCount:
		return "invalid count"
	case KindInvalidBuffer:
		return "invalid buffer"
	case KindInvalidOp:
		return "invalid operation"
	case KindInvalidRoot:
		return "invalid root"
	case KindTruncated:
		return "message truncated"
	case KindInvalidRequest:
		return "invalid request"
	case KindInvalidGroup:
		return "invalid group"
	case KindInvalidKeyval:
		return "invalid keyval"
	case KindNoMemory:
		return "out of memory"
	case KindInternal:
		return "internal error"
	default:
		return "unknown"
	}
}

// KindOf classifies an error returned by any operation in this package.
// Errors that did not originate in the engine classify as KindUnknown.
func KindOf(err error) ErrorKind {
	var errno Errno
	if !errors.As(err, &errno) {
		return KindUnknown
	}
	switch errno.Class() {
	case cmpi.ClassRank:
		return KindInvalidRank
	case cmpi.ClassTag:
		return KindInvalidTag
	case cmpi.ClassComm:
		return KindInvalidCommunicator
	case cmpi.ClassType:
		return KindInvalidDatatype
	case cmpi.ClassCount:
		return KindInvalidCount
	case cmpi.ClassBuffer:
		return KindInvalidBuffer
	case cmpi.ClassOp:
		return KindInvalidOp
	case cmpi.ClassRoot:
		return KindInvalidRoot
	case cmpi.ClassTruncate:
		return KindTruncated
	case cmpi.ClassRequest:
		return KindInvalidRequest
	case cmpi.ClassGroup:
		return KindInvalidGroup
	case cmpi.ClassKeyval:
		return KindInvalidKeyval
	case cmpi.ClassNoMem:
		return KindNoMemory
	case cmpi.ClassIntern:
		return KindInternal
	default:
		return KindUnknown
	}
}
