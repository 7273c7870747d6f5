// Package audit records every dispatched CAMAC command as one JSON line,
// with size-based rotation so long acquisition sessions cannot fill the
// disk. The log is an operator trail: it captures what was asked of the
// crate and how the crate answered, including failures.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/camac-tools/camacdaq/pkg/types"
)

// Entry is one audit record.
type Entry struct {
	Timestamp  time.Time `json:"ts"`
	Module     string    `json:"module,omitempty"`
	Branch     int       `json:"branch"`
	Crate      int       `json:"crate"`
	Station    int       `json:"station"`
	Subaddress int       `json:"subaddress"`
	Function   int       `json:"function"`
	Ext        uint32    `json:"ext"`
	Direction  string    `json:"direction"`
	Data       uint32    `json:"data"`
	Q          bool      `json:"q"`
	X          bool      `json:"x"`
	Outcome    string    `json:"outcome"`
	Error      string    `json:"error,omitempty"`
}

// Logger appends JSONL audit entries to a rotating file.
type Logger struct {
	mu  sync.Mutex
	out *lumberjack.Logger
}

// Rotation policy for the command log.
const (
	maxSizeMB  = 10
	maxBackups = 5
	maxAgeDays = 28
)

// NewLogger creates (or reopens) the audit log under dir.
func NewLogger(dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audit directory: %w", err)
	}
	return &Logger{
		out: &lumberjack.Logger{
			Filename:   filepath.Join(dir, "commands.jsonl"),
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
		},
	}, nil
}

// Record writes one entry for an executed command. A failed write is
// reported on stderr rather than failing the command: the audit trail is
// advisory, the bus transaction already happened.
func (l *Logger) Record(cmd types.Command, res types.Result, execErr error) {
	entry := Entry{
		Timestamp:  time.Now().UTC(),
		Module:     cmd.Module,
		Branch:     cmd.Branch,
		Crate:      cmd.Crate,
		Station:    cmd.Station,
		Subaddress: cmd.Subaddress,
		Function:   cmd.Function,
		Ext:        cmd.Ext(),
		Direction:  cmd.Direction.String(),
		Data:       res.Data,
		Q:          res.Q,
		X:          res.X,
		Outcome:    "OK",
	}
	if execErr != nil {
		entry.Outcome = types.KindOf(execErr).String()
		entry.Error = execErr.Error()
	}

	line, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "audit: marshal entry: %v\n", err)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.out.Write(append(line, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "audit: write entry: %v\n", err)
	}
}

// Close flushes and closes the underlying log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.out.Close()
}
