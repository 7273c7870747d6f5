package scan

import (
	"errors"
	"testing"

	"github.com/camac-tools/camacdaq/internal/mock"
	"github.com/camac-tools/camacdaq/pkg/types"
)

func TestScanFindsConfiguredStations(t *testing.T) {
	crateMap := types.CrateMap{
		"QVT":  {Name: "QVT", Branch: 1, Crate: 1, Station: 2},
		"GATE": {Name: "GATE", Branch: 1, Crate: 1, Station: 9},
	}
	b := mock.NewBackend(crateMap)
	if err := b.Open(); err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	hits, err := Run(b, Options{Crate: 1, SubaddressEnd: 1})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Two stations, subaddresses 0 and 1 each.
	if len(hits) != 4 {
		t.Fatalf("got %d hits, want 4: %+v", len(hits), hits)
	}
	stations := map[int]bool{}
	for _, h := range hits {
		stations[h.Station] = true
		if !h.Q {
			t.Errorf("hit without Q: %+v", h)
		}
	}
	if !stations[2] || !stations[9] {
		t.Errorf("stations hit = %v, want 2 and 9", stations)
	}
}

func TestScanRejectsNonReadFunction(t *testing.T) {
	b := mock.NewBackend(types.CrateMap{})
	if err := b.Open(); err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	_, err := Run(b, Options{Function: 16})
	if !errors.Is(err, types.ErrFunctionRange) {
		t.Fatalf("expected ErrFunctionRange, got %v", err)
	}
}

// failingExecutor aborts every command with a transport failure.
type failingExecutor struct{}

func (failingExecutor) Execute(cmd types.Command) (types.Result, error) {
	return types.Result{}, types.NewCommandError(types.KindTransport, cmd, errors.New("bus down"))
}

func TestScanAbortsOnTransportError(t *testing.T) {
	_, err := Run(failingExecutor{}, Options{})
	if types.KindOf(err) != types.KindTransport {
		t.Fatalf("KindOf = %v, want TRANSPORT", types.KindOf(err))
	}
}
