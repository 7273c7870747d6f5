// Package capture performs repeated timed CAMAC reads and records the
// samples. Recorders are pluggable: a CSV writer for quick plots and a
// SQLite run store for keeping acquisition history across sessions.
package capture

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/camac-tools/camacdaq/pkg/types"
)

// Target is one module address sampled each cycle.
type Target struct {
	Module     string
	Subaddress int
	Function   int
}

func (t Target) String() string {
	return fmt.Sprintf("%s:%d:%d", t.Module, t.Subaddress, t.Function)
}

// ParseTargets parses the target list syntax NAME:A:F;NAME2:A2:F2.
// A and F accept 0x-prefixed literals.
func ParseTargets(list string) ([]Target, error) {
	var targets []Target
	for _, part := range strings.Split(list, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Split(part, ":")
		if len(fields) != 3 {
			return nil, fmt.Errorf("target %q: want NAME:A:F", part)
		}
		subaddress, err := strconv.ParseInt(fields[1], 0, 32)
		if err != nil {
			return nil, fmt.Errorf("target %q: subaddress: %w", part, err)
		}
		function, err := strconv.ParseInt(fields[2], 0, 32)
		if err != nil {
			return nil, fmt.Errorf("target %q: function: %w", part, err)
		}
		targets = append(targets, Target{
			Module:     fields[0],
			Subaddress: int(subaddress),
			Function:   int(function),
		})
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("no targets in %q", list)
	}
	return targets, nil
}

// Runner executes one named CAMAC operation. *dispatch.Dispatcher
// satisfies it.
type Runner interface {
	Run(moduleName string, subaddress, function int, data *uint32) (types.Result, error)
}

// Sample is one recorded reading. Err keeps the failure text when the
// read did not produce data; the row is still recorded so gaps stay
// visible in the output.
type Sample struct {
	Time       time.Time
	Module     string
	Subaddress int
	Function   int
	Data       uint32
	Q          bool
	Err        string
}

// Recorder consumes samples.
type Recorder interface {
	Record(s Sample) error
}

// Options controls the sampling loop.
type Options struct {
	Interval time.Duration // pause between cycles
	Count    int           // number of cycles; must be positive
}

// Run samples every target Count times, Interval apart, fanning each
// sample out to all recorders. Per-sample read failures are recorded and
// the loop continues; a recorder failure aborts. Returns the number of
// samples recorded.
func Run(runner Runner, targets []Target, opts Options, recorders ...Recorder) (int, error) {
	if opts.Count <= 0 {
		return 0, fmt.Errorf("capture count must be positive, got %d", opts.Count)
	}

	recorded := 0
	for cycle := 0; cycle < opts.Count; cycle++ {
		if cycle > 0 && opts.Interval > 0 {
			time.Sleep(opts.Interval)
		}
		for _, target := range targets {
			sample := Sample{
				Time:       time.Now(),
				Module:     target.Module,
				Subaddress: target.Subaddress,
				Function:   target.Function,
			}
			res, err := runner.Run(target.Module, target.Subaddress, target.Function, nil)
			if err != nil {
				sample.Err = err.Error()
			} else {
				sample.Data = res.Data
				sample.Q = res.Q
			}
			for _, rec := range recorders {
				if rerr := rec.Record(sample); rerr != nil {
					return recorded, fmt.Errorf("record sample: %w", rerr)
				}
			}
			recorded++
		}
	}
	return recorded, nil
}

// CSVRecorder writes samples as CSV rows with a header matching the
// acquisition tooling: timestamp, module, subaddress, function, data in
// decimal and hex, and the Q bit. Failed reads leave the data columns
// empty.
type CSVRecorder struct {
	w      *csv.Writer
	header bool
}

// NewCSVRecorder wraps out in a CSV sample sink.
func NewCSVRecorder(out io.Writer) *CSVRecorder {
	return &CSVRecorder{w: csv.NewWriter(out)}
}

// Record appends one CSV row, writing the header first on first use.
func (c *CSVRecorder) Record(s Sample) error {
	if !c.header {
		if err := c.w.Write([]string{"timestamp", "module", "subaddress", "function", "data_dec", "data_hex", "q"}); err != nil {
			return err
		}
		c.header = true
	}

	row := []string{
		s.Time.Format("2006-01-02T15:04:05.000"),
		s.Module,
		strconv.Itoa(s.Subaddress),
		strconv.Itoa(s.Function),
		"", "", "0",
	}
	if s.Err == "" {
		row[4] = strconv.FormatUint(uint64(s.Data), 10)
		row[5] = fmt.Sprintf("0x%X", s.Data)
		if s.Q {
			row[6] = "1"
		}
	}
	if err := c.w.Write(row); err != nil {
		return err
	}
	c.w.Flush()
	return c.w.Error()
}
