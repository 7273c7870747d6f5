// Package scan sweeps a crate for responsive station/subaddress pairs by
// issuing a read-class function across a configurable N/A range. Empty
// stations answer with module non-response, which the sweep records as a
// miss and moves on; anything else that fails aborts the sweep.
package scan

import (
	"fmt"
	"time"

	"github.com/camac-tools/camacdaq/pkg/types"
)

// Executor runs one already-built command. *dispatch.Dispatcher
// satisfies it.
type Executor interface {
	Execute(cmd types.Command) (types.Result, error)
}

// Options bounds the sweep. Zero values select the conventional crate
// geometry: stations 1..23, subaddresses 0..15, function F0.
type Options struct {
	Branch          int
	Crate           int
	StationStart    int
	StationEnd      int
	SubaddressStart int
	SubaddressEnd   int
	Function        int
	Delay           time.Duration
}

// Hit is one responsive address found by the sweep.
type Hit struct {
	Station    int
	Subaddress int
	Function   int
	Data       uint32
	Q          bool
	X          bool
}

func (o *Options) applyDefaults() {
	if o.Branch == 0 {
		o.Branch = 1
	}
	if o.Crate == 0 {
		o.Crate = 1
	}
	if o.StationStart == 0 {
		o.StationStart = 1
	}
	if o.StationEnd == 0 {
		o.StationEnd = 23
	}
	if o.SubaddressEnd == 0 {
		o.SubaddressEnd = types.MaxSubaddress
	}
}

// Run performs the sweep and returns every responsive address in scan
// order. The function must be read-class; probing with writes would
// clobber module state.
func Run(exec Executor, opts Options) ([]Hit, error) {
	opts.applyDefaults()
	if types.DirectionOf(opts.Function) != types.DirectionRead {
		return nil, fmt.Errorf("scan function F%d: %w", opts.Function, types.ErrFunctionRange)
	}

	var hits []Hit
	for n := opts.StationStart; n <= opts.StationEnd; n++ {
		for a := opts.SubaddressStart; a <= opts.SubaddressEnd; a++ {
			cmd := types.Command{
				Module:     fmt.Sprintf("N%d", n),
				Branch:     opts.Branch,
				Crate:      opts.Crate,
				Station:    n,
				Subaddress: a,
				Function:   opts.Function,
				Direction:  types.DirectionRead,
			}
			res, err := exec.Execute(cmd)
			if err != nil {
				if types.KindOf(err) == types.KindProtocol {
					continue // empty station
				}
				return hits, err
			}
			if res.Q {
				hits = append(hits, Hit{
					Station:    n,
					Subaddress: a,
					Function:   opts.Function,
					Data:       res.Data,
					Q:          res.Q,
					X:          res.X,
				})
			}
			if opts.Delay > 0 {
				time.Sleep(opts.Delay)
			}
		}
	}
	return hits, nil
}
