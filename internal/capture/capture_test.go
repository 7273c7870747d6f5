package capture

import (
	"bytes"
	"strings"
	"testing"

	"github.com/camac-tools/camacdaq/internal/dispatch"
	"github.com/camac-tools/camacdaq/pkg/types"
)

func TestParseTargets(t *testing.T) {
	targets, err := ParseTargets("QVT:0:0; GATE:1:2 ;ADC:0x2:0")
	if err != nil {
		t.Fatalf("ParseTargets failed: %v", err)
	}
	if len(targets) != 3 {
		t.Fatalf("got %d targets, want 3", len(targets))
	}
	if targets[1].Module != "GATE" || targets[1].Subaddress != 1 || targets[1].Function != 2 {
		t.Errorf("second target = %+v", targets[1])
	}
	if targets[2].Subaddress != 2 {
		t.Errorf("hex subaddress = %d, want 2", targets[2].Subaddress)
	}
}

func TestParseTargetsErrors(t *testing.T) {
	for _, in := range []string{"", ";;", "QVT:0", "QVT:x:0"} {
		if _, err := ParseTargets(in); err == nil {
			t.Errorf("ParseTargets(%q) should fail", in)
		}
	}
}

func testDispatcher(t *testing.T) *dispatch.Dispatcher {
	t.Helper()
	crateMap := types.CrateMap{
		"QVT":  {Name: "QVT", Branch: 1, Crate: 1, Station: 2},
		"GATE": {Name: "GATE", Branch: 1, Crate: 1, Station: 9},
	}
	d, err := dispatch.New(types.Config{Mode: types.ModeMock}, crateMap)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Open(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestRunRecordsToCSV(t *testing.T) {
	d := testDispatcher(t)

	var buf bytes.Buffer
	targets := []Target{{Module: "QVT", Subaddress: 0, Function: 0}, {Module: "GATE", Subaddress: 0, Function: 0}}
	n, err := Run(d, targets, Options{Count: 3}, NewCSVRecorder(&buf))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if n != 6 {
		t.Errorf("recorded %d samples, want 6", n)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 7 { // header + 6 rows
		t.Fatalf("got %d CSV lines, want 7:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "timestamp,module,") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "QVT") {
		t.Errorf("first row = %q", lines[1])
	}
}

func TestRunKeepsRowsForFailedReads(t *testing.T) {
	d := testDispatcher(t)

	var buf bytes.Buffer
	// TDC is not configured: every read fails validation, but rows are
	// still recorded with an empty data column.
	n, err := Run(d, []Target{{Module: "TDC"}}, Options{Count: 2}, NewCSVRecorder(&buf))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if n != 2 {
		t.Errorf("recorded %d samples, want 2", n)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d CSV lines, want 3", len(lines))
	}
	if !strings.Contains(lines[1], ",,") {
		t.Errorf("failed read should leave data empty: %q", lines[1])
	}
}

func TestRunRejectsZeroCount(t *testing.T) {
	d := testDispatcher(t)
	if _, err := Run(d, []Target{{Module: "QVT"}}, Options{}); err == nil {
		t.Error("expected error for zero count")
	}
}
