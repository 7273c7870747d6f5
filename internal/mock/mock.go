// Package mock implements the in-memory simulated crate backend. It
// satisfies the same contract as the hardware-backed variants so the
// dispatcher and its callers can run without a crate attached.
package mock

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/camac-tools/camacdaq/pkg/types"
)

// slotKey addresses one stored data word in the simulated crate.
type slotKey struct {
	crate      int
	station    int
	subaddress int
}

// stationKey addresses one occupied station.
type stationKey struct {
	crate   int
	station int
}

// response is the Q/X pair a station answers with.
type response struct {
	q bool
	x bool
}

// Backend simulates a CAMAC crate in memory. Stations present in the
// crate map respond with Q=1, X=1 by default; every other address
// answers Q=0, X=0, the deterministic "module not responding" condition.
// Stored words start at zero and survive until Reset or Close.
type Backend struct {
	mu        sync.Mutex
	open      bool
	debug     int
	stations  map[stationKey]bool
	words     map[slotKey]uint32
	responses map[stationKey]response

	// traceOut receives debug transaction lines; stderr by default.
	traceOut io.Writer
}

// NewBackend creates a simulated crate populated with the stations of the
// given crate map. The backend is not open; call Open before Execute.
func NewBackend(crateMap types.CrateMap) *Backend {
	stations := make(map[stationKey]bool, len(crateMap))
	for _, entry := range crateMap {
		stations[stationKey{crate: entry.Crate, station: entry.Station}] = true
	}
	return &Backend{
		stations:  stations,
		words:     make(map[slotKey]uint32),
		responses: make(map[stationKey]response),
		traceOut:  os.Stderr,
	}
}

// Open marks the simulated crate ready. Returns ErrAlreadyOpen on a
// second call.
func (b *Backend) Open() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.open {
		return types.ErrAlreadyOpen
	}
	b.open = true
	return nil
}

// Execute performs one simulated transaction. Read-class functions return
// the stored word, write-class functions store the data word and echo it,
// control-class functions return only the response bits. Addresses whose
// station is absent from the crate answer Q=0, X=0 together with a
// protocol-kind error, matching how a real crate times out.
func (b *Backend) Execute(cmd types.Command) (types.Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return types.Result{}, types.NewCommandError(types.KindSessionClosed, cmd, types.ErrSessionClosed)
	}

	sk := stationKey{crate: cmd.Crate, station: cmd.Station}
	result := types.Result{Timestamp: time.Now()}

	if !b.stations[sk] {
		b.trace(cmd, result)
		return result, types.NewCommandError(types.KindProtocol, cmd, types.ErrNoResponse)
	}

	resp, ok := b.responses[sk]
	if !ok {
		resp = response{q: true, x: true}
	}
	result.Q = resp.q
	result.X = resp.x
	if !resp.q && !resp.x {
		b.trace(cmd, result)
		return result, types.NewCommandError(types.KindProtocol, cmd, types.ErrNoResponse)
	}

	key := slotKey{crate: cmd.Crate, station: cmd.Station, subaddress: cmd.Subaddress}
	switch cmd.Direction {
	case types.DirectionRead:
		result.Data = b.words[key]
	case types.DirectionWrite:
		b.words[key] = cmd.Data & types.DataMask
		result.Data = cmd.Data & types.DataMask
	case types.DirectionControl:
		// No data transfer for control-class functions.
	}
	b.trace(cmd, result)
	return result, nil
}

// SetDebug sets the transaction trace level; nonzero levels log every
// Execute, the same hook the native driver exposes.
func (b *Backend) SetDebug(level int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.debug = level
}

// trace writes one transaction line. Caller holds the lock.
func (b *Backend) trace(cmd types.Command, res types.Result) {
	if b.debug <= 0 {
		return
	}
	fmt.Fprintf(b.traceOut, "mock: N=%02d A=%02d F=%02d data=0x%06X Q=%v X=%v\n",
		cmd.Station, cmd.Subaddress, cmd.Function, res.Data, res.Q, res.X)
}

// Close releases the simulated crate. Idempotent.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.open = false
	return nil
}

// Reset zeroes every stored word and clears response overrides, keeping
// the station population. Intended for use between test cases.
func (b *Backend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.words = make(map[slotKey]uint32)
	b.responses = make(map[stationKey]response)
}

// SetResponse overrides the Q/X answer of one station. Setting Q=0, X=0
// makes an occupied station stop responding.
func (b *Backend) SetResponse(crate, station int, q, x bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.responses[stationKey{crate: crate, station: station}] = response{q: q, x: x}
}

// SetWord preloads the stored word at one slot, clipping to the 24-bit
// data width.
func (b *Backend) SetWord(crate, station, subaddress int, word uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.words[slotKey{crate: crate, station: station, subaddress: subaddress}] = word & types.DataMask
}

var _ types.Backend = (*Backend)(nil)
