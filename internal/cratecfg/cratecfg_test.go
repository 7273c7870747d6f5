package cratecfg

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleCfg = `* CIT DAQ crate configuration
# name  branch crate station
QVT   1 1 2   LeCroy qVt
GATE  1 1 9
ADC   1 1 15  LeCroy 2249A 12ch
! trailing annotation
HV    1 1 19

bogus line without numbers
SHORT 1 1
`

func TestParse(t *testing.T) {
	m := Parse(sampleCfg)

	if len(m) != 4 {
		t.Fatalf("parsed %d entries, want 4: %v", len(m), m.Names())
	}

	qvt, ok := m.Lookup("qvt")
	if !ok {
		t.Fatal("QVT not found")
	}
	if qvt.Branch != 1 || qvt.Crate != 1 || qvt.Station != 2 {
		t.Errorf("QVT position = B%d C%d N%d", qvt.Branch, qvt.Crate, qvt.Station)
	}
	if qvt.Comment != "LeCroy qVt" {
		t.Errorf("QVT comment = %q", qvt.Comment)
	}

	adc, _ := m.Lookup("ADC")
	if adc.Comment != "LeCroy 2249A 12ch" {
		t.Errorf("multi-word comment = %q", adc.Comment)
	}

	if _, ok := m.Lookup("SHORT"); ok {
		t.Error("line with too few fields should be skipped")
	}
	if _, ok := m.Lookup("BOGUS"); ok {
		t.Error("non-numeric line should be skipped")
	}
}

func TestParseKeepsLastDuplicate(t *testing.T) {
	m := Parse("QVT 1 1 2\nQVT 1 1 5\n")
	entry, _ := m.Lookup("QVT")
	if entry.Station != 5 {
		t.Errorf("duplicate should keep last entry, got N=%d", entry.Station)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daq.cfg")
	if err := os.WriteFile(path, []byte(sampleCfg), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, ok := m.Lookup("GATE"); !ok {
		t.Error("GATE not found after Load")
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.cfg")); err == nil {
		t.Error("expected error for missing file")
	}
}
