package mock

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/camac-tools/camacdaq/pkg/types"
)

func crateMap() types.CrateMap {
	return types.CrateMap{
		"QVT":  {Name: "QVT", Branch: 1, Crate: 1, Station: 2},
		"GATE": {Name: "GATE", Branch: 1, Crate: 1, Station: 9},
	}
}

func openBackend(t *testing.T) *Backend {
	t.Helper()
	b := NewBackend(crateMap())
	if err := b.Open(); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func build(t *testing.T, module string, subaddress, function int, data *uint32) types.Command {
	t.Helper()
	cmd, err := types.BuildCommand(crateMap(), module, subaddress, function, data)
	if err != nil {
		t.Fatalf("BuildCommand failed: %v", err)
	}
	return cmd
}

func TestWriteReadRoundTrip(t *testing.T) {
	b := openBackend(t)

	data := uint32(0x1234)
	wr, err := b.Execute(build(t, "GATE", 0, 16, &data))
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if !wr.Q || !wr.X {
		t.Errorf("write response Q=%v X=%v, want both true", wr.Q, wr.X)
	}

	rd, err := b.Execute(build(t, "GATE", 0, 0, nil))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !rd.Q {
		t.Error("read response Q=false")
	}
	if rd.Data != 0x1234 {
		t.Errorf("read back 0x%X, want 0x1234", rd.Data)
	}
}

func TestSlotsAreIndependent(t *testing.T) {
	b := openBackend(t)

	for a, word := range map[int]uint32{0: 0x11, 1: 0x22, 5: 0x330000} {
		w := word
		if _, err := b.Execute(build(t, "QVT", a, 17, &w)); err != nil {
			t.Fatalf("write A=%d failed: %v", a, err)
		}
	}
	rd, err := b.Execute(build(t, "QVT", 1, 2, nil))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if rd.Data != 0x22 {
		t.Errorf("A=1 read 0x%X, want 0x22", rd.Data)
	}
}

func TestUnconfiguredStationDoesNotRespond(t *testing.T) {
	b := openBackend(t)

	// Station 5 is not in the crate map; route around BuildCommand to
	// address it directly.
	cmd := types.Command{Module: "N5", Branch: 1, Crate: 1, Station: 5, Function: 0, Direction: types.DirectionRead}
	res, err := b.Execute(cmd)
	if res.Q || res.X {
		t.Errorf("unconfigured slot answered Q=%v X=%v", res.Q, res.X)
	}
	if types.KindOf(err) != types.KindProtocol {
		t.Errorf("KindOf = %v, want PROTOCOL", types.KindOf(err))
	}
	if !errors.Is(err, types.ErrNoResponse) {
		t.Errorf("expected ErrNoResponse, got %v", err)
	}
}

func TestControlReturnsNoData(t *testing.T) {
	b := openBackend(t)

	res, err := b.Execute(build(t, "GATE", 0, 9, nil)) // F9: clear, control class
	if err != nil {
		t.Fatalf("control failed: %v", err)
	}
	if !res.Q || !res.X || res.Data != 0 {
		t.Errorf("control result Q=%v X=%v data=%d", res.Q, res.X, res.Data)
	}
}

func TestResponseOverride(t *testing.T) {
	b := openBackend(t)
	b.SetResponse(1, 9, false, false)

	res, err := b.Execute(build(t, "GATE", 0, 0, nil))
	if res.Q || res.X {
		t.Errorf("overridden slot answered Q=%v X=%v", res.Q, res.X)
	}
	if types.KindOf(err) != types.KindProtocol {
		t.Errorf("KindOf = %v, want PROTOCOL", types.KindOf(err))
	}
}

func TestResetClearsMemory(t *testing.T) {
	b := openBackend(t)

	data := uint32(42)
	if _, err := b.Execute(build(t, "QVT", 0, 16, &data)); err != nil {
		t.Fatal(err)
	}
	b.Reset()

	rd, err := b.Execute(build(t, "QVT", 0, 0, nil))
	if err != nil {
		t.Fatalf("read after reset failed: %v", err)
	}
	if rd.Data != 0 {
		t.Errorf("word after reset = %d, want 0", rd.Data)
	}
}

func TestDebugTrace(t *testing.T) {
	b := openBackend(t)
	var buf bytes.Buffer
	b.traceOut = &buf
	b.SetDebug(1)

	data := uint32(7)
	if _, err := b.Execute(build(t, "QVT", 0, 16, &data)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "N=02") || !strings.Contains(out, "F=16") {
		t.Errorf("trace output = %q", out)
	}

	b.SetDebug(0)
	buf.Reset()
	if _, err := b.Execute(build(t, "QVT", 0, 0, nil)); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("trace written with debug off: %q", buf.String())
	}
}

func TestLifecycle(t *testing.T) {
	b := NewBackend(crateMap())

	if err := b.Open(); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := b.Open(); err != types.ErrAlreadyOpen {
		t.Errorf("second Open = %v, want ErrAlreadyOpen", err)
	}

	if err := b.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}

	_, err := b.Execute(types.Command{Station: 2, Crate: 1})
	if types.KindOf(err) != types.KindSessionClosed {
		t.Errorf("Execute after Close kind = %v, want SESSION_CLOSED", types.KindOf(err))
	}
}
