package capture

import (
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Store keeps capture runs and their samples in a SQLite database so
// acquisition history survives across sessions. One Store records one
// run at a time.
type Store struct {
	mu    sync.Mutex
	db    *sql.DB
	runID string
}

// OpenStore opens (creating if needed) the run store at path and applies
// the schema.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open run store: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply run store schema: %w", err)
	}
	return &Store{db: db}, nil
}

// BeginRun registers a new capture run and makes it the target of
// subsequent Record calls. Returns the generated run ID.
func (s *Store) BeginRun(mode string, targets []Target) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate run ID: %w", err)
	}

	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = t.String()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.Exec(
		`INSERT INTO runs (run_id, started_at, mode, targets) VALUES (?, ?, ?, ?)`,
		id.String(), time.Now().UTC().Format(time.RFC3339Nano), mode, strings.Join(names, ";"),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	s.runID = id.String()
	return s.runID, nil
}

// Record inserts one sample row for the current run.
func (s *Store) Record(sample Sample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runID == "" {
		return fmt.Errorf("no run begun")
	}

	var data any
	if sample.Err == "" {
		data = int64(sample.Data)
	}
	var errText any
	if sample.Err != "" {
		errText = sample.Err
	}

	_, err := s.db.Exec(
		`INSERT INTO samples (run_id, ts, module, subaddress, function, data, q, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.runID, sample.Time.UTC().Format(time.RFC3339Nano),
		sample.Module, sample.Subaddress, sample.Function,
		data, boolToInt(sample.Q), errText,
	)
	if err != nil {
		return fmt.Errorf("insert sample: %w", err)
	}
	return nil
}

// SampleCount returns the number of samples stored for runID.
func (s *Store) SampleCount(runID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM samples WHERE run_id = ?`, runID).Scan(&n)
	return n, err
}

// Close releases the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
