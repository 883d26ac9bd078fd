package mpi

import (
	"os"
	"testing"
)

var testUniverse *Universe

// The tests run as a singleton: one process, world size 1. Everything that
// needs a peer talks to itself over the world or self communicator.
func TestMain(m *testing.M) {
	testUniverse = Init()
	code := m.Run()
	if testUniverse != nil {
		_ = testUniverse.Finalize()
	}
	os.Exit(code)
}

func world(t *testing.T) *Comm {
	t.Helper()
	if testUniverse == nil {
		t.Skip("engine unavailable; is an MPI runtime installed?")
	}
	return testUniverse.World()
}
