package mailbox

import (
	"os"
	"testing"

	"github.com/rivergrid/mpi-go/mpi"
)

var testUniverse *mpi.Universe

func TestMain(m *testing.M) {
	testUniverse = mpi.Init()
	code := m.Run()
	if testUniverse != nil {
		_ = testUniverse.Finalize()
	}
	os.Exit(code)
}

func testWorld(t *testing.T) *mpi.Comm {
	t.Helper()
	if testUniverse == nil {
		t.Skip("engine unavailable; is an MPI runtime installed?")
	}
	return testUniverse.World()
}
