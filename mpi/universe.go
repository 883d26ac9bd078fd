package mpi

import (
	"sync"
	"sync/atomic"

	"github.com/rivergrid/mpi-go/internal/cmpi"
)

// ThreadLevel re-exports the engine thread-support level for consumers of
// the mpi package.
type ThreadLevel = cmpi.ThreadLevel

const (
	ThreadSingle     = cmpi.ThreadSingle
	ThreadFunneled   = cmpi.ThreadFunneled
	ThreadSerialized = cmpi.ThreadSerialized
	ThreadMultiple   = cmpi.ThreadMultiple
)

// Universe represents an initialized engine. At most one exists per process;
// it owns the predefined communicators and the library teardown step.
type Universe struct {
	threadLevel ThreadLevel
	world       *Comm
	self        *Comm
	finalized   atomic.Bool
}

var initOnce sync.Once

// Init initializes the engine requesting full multi-thread support and
// returns the process's Universe. It returns nil when the engine is already
// initialized (or already torn down); there is no universe to hand out in
// that case and the call is otherwise a no-op.
func Init() *Universe {
	return InitThread(ThreadMultiple)
}

// InitThread behaves like Init but requests a specific thread-support level.
// The granted level is recorded on the returned Universe and may be lower
// than requested.
func InitThread(required ThreadLevel) *Universe {
	var u *Universe
	initOnce.Do(func() {
		if done, err := cmpi.Initialized(); err != nil || done {
			return
		}
		if done, err := cmpi.Finalized(); err != nil || done {
			return
		}
		granted, err := cmpi.InitThread(required)
		if err != nil {
			return
		}
		world := cmpi.CommWorld()
		self := cmpi.CommSelf()
		// Failures must surface as error codes, not engine-side aborts.
		_ = world.ErrorsReturn()
		_ = self.ErrorsReturn()
		u = &Universe{
			threadLevel: granted,
			world:       &Comm{handle: world},
			self:        &Comm{handle: self},
		}
	})
	return u
}

// ThreadLevel reports the thread-support level the engine granted.
func (u *Universe) ThreadLevel() ThreadLevel {
	if u == nil {
		return ThreadSingle
	}
	return u.threadLevel
}

// World returns the communicator covering every launched process.
func (u *Universe) World() *Comm {
	if u == nil || u.finalized.Load() {
		return nil
	}
	return u.world
}

// Self returns the communicator containing only the calling process.
func (u *Universe) Self() *Comm {
	if u == nil || u.finalized.Load() {
		return nil
	}
	return u.self
}

// Finalize tears down the engine. Cached user datatype descriptors are
// freed first; no operation in this package may be used afterwards.
func (u *Universe) Finalize() error {
	if u == nil {
		return nil
	}
	if !u.finalized.CompareAndSwap(false, true) {
		return ErrFinalized
	}
	freeCachedDatatypes()
	freeCachedKeyvals()
	return cmpi.Finalize()
}

// Version reports the MPI standard version implemented by the engine.
func Version() (string, error) {
	v, err := cmpi.RuntimeVersion()
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// LibraryVersion reports the engine's own version banner.
func LibraryVersion() (string, error) {
	return cmpi.LibraryVersion()
}

// ProcessorName reports the name of the processor the calling process runs on.
func ProcessorName() (string, error) {
	return cmpi.ProcessorName()
}

// Wtime returns the engine wall-clock time in seconds.
func Wtime() float64 {
	return cmpi.Wtime()
}
