package capture

import (
	"path/filepath"
	"testing"
	"time"
)

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	store, err := OpenStore(path)
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	defer store.Close()

	targets := []Target{{Module: "QVT", Subaddress: 0, Function: 0}}
	runID, err := store.BeginRun("mock", targets)
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	if runID == "" {
		t.Fatal("empty run ID")
	}

	samples := []Sample{
		{Time: time.Now(), Module: "QVT", Data: 0x1234, Q: true},
		{Time: time.Now(), Module: "QVT", Err: "module not responding"},
	}
	for _, s := range samples {
		if err := store.Record(s); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	n, err := store.SampleCount(runID)
	if err != nil {
		t.Fatalf("SampleCount failed: %v", err)
	}
	if n != 2 {
		t.Errorf("SampleCount = %d, want 2", n)
	}
}

func TestStoreRecordWithoutRun(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if err := store.Record(Sample{Module: "QVT"}); err == nil {
		t.Error("Record without BeginRun should fail")
	}
}

func TestStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	store, err := OpenStore(path)
	if err != nil {
		t.Fatal(err)
	}
	runID, err := store.BeginRun("mock", []Target{{Module: "GATE"}})
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Record(Sample{Time: time.Now(), Module: "GATE", Data: 7, Q: true}); err != nil {
		t.Fatal(err)
	}
	store.Close()

	// Reopening must keep the history.
	store, err = OpenStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer store.Close()
	n, err := store.SampleCount(runID)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("SampleCount after reopen = %d, want 1", n)
	}
}
