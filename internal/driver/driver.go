// Package driver implements the hardware crate backend on top of the
// native CAMAC driver library (crate controller reachable over GPIB).
// The library is loaded at Open and detached at Close; the required
// entry points are the classic ESONE trio cdset, cdreg, and cfsa.
package driver

import (
	"fmt"
	"time"

	"github.com/ebitengine/purego"

	"github.com/camac-tools/camacdaq/pkg/types"
)

// CallError reports a nonzero return code from a native driver call.
// Driver call failures are fatal for the session.
type CallError struct {
	Func string
	Code int
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s returned %d", e.Func, e.Code)
}

// Backend drives a real crate through the loaded native library. The X
// response bit is reported equal to Q: the cdset/cdreg/cfsa contract
// only exposes the Q line.
type Backend struct {
	libPath string
	debug   int

	handle uintptr
	open   bool

	cdset func(int32, int32)
	cdreg func(*int32, int32, int32, int32, int32)
	cfsa  func(int32, int32, *int32, *int32) int32

	// setDebug is nil when the library does not export setCamacDebug.
	setDebug func(int32)
}

// NewBackend creates a native driver backend. libPath may be empty, in
// which case Open resolves the library via CAMAC_LIB and the platform
// candidate names.
func NewBackend(libPath string) *Backend {
	return &Backend{libPath: libPath}
}

// Open loads the driver library and initializes the branch highway.
// Every candidate location is tried in order; if none loads, or the
// required symbols are missing, Open fails with ErrBackendUnavailable
// and no native resource stays held.
func (b *Backend) Open() error {
	if b.open {
		return types.ErrAlreadyOpen
	}

	candidates := Candidates(b.libPath)
	var lastErr error
	for _, cand := range candidates {
		handle, err := purego.Dlopen(cand, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			lastErr = err
			continue
		}
		if err := b.bind(handle); err != nil {
			purego.Dlclose(handle)
			lastErr = err
			continue
		}
		b.handle = handle
		b.open = true
		b.cdset(0, 0)
		if b.setDebug != nil && b.debug > 0 {
			b.setDebug(int32(b.debug))
		}
		return nil
	}

	return fmt.Errorf("%w: no driver library loadable, tried %v: %v",
		types.ErrBackendUnavailable, candidates, lastErr)
}

// bind registers the library entry points. RegisterLibFunc panics on a
// missing symbol, so each required symbol is located first.
func (b *Backend) bind(handle uintptr) error {
	for _, sym := range []string{"cdset", "cdreg", "cfsa"} {
		if _, err := purego.Dlsym(handle, sym); err != nil {
			return fmt.Errorf("symbol %s: %w", sym, err)
		}
	}
	purego.RegisterLibFunc(&b.cdset, handle, "cdset")
	purego.RegisterLibFunc(&b.cdreg, handle, "cdreg")
	purego.RegisterLibFunc(&b.cfsa, handle, "cfsa")

	if _, err := purego.Dlsym(handle, "setCamacDebug"); err == nil {
		purego.RegisterLibFunc(&b.setDebug, handle, "setCamacDebug")
	} else {
		b.setDebug = nil
	}
	return nil
}

// SetDebug forwards the debug level to the driver when supported and
// remembers it for a later Open.
func (b *Backend) SetDebug(level int) {
	b.debug = level
	if b.open && b.setDebug != nil {
		b.setDebug(int32(level))
	}
}

// Execute registers the command's crate address and issues the function
// through cfsa. A nonzero cfsa return is a driver failure (fatal for the
// session); Q=0 means the addressed module did not respond.
func (b *Backend) Execute(cmd types.Command) (types.Result, error) {
	if !b.open {
		return types.Result{}, types.NewCommandError(types.KindSessionClosed, cmd, types.ErrSessionClosed)
	}

	var ext int32
	b.cdreg(&ext, int32(cmd.Branch), int32(cmd.Crate), int32(cmd.Station), int32(cmd.Subaddress))

	data := int32(cmd.Data & types.DataMask)
	var q int32
	if ret := b.cfsa(int32(cmd.Function), ext, &data, &q); ret != 0 {
		return types.Result{}, types.NewCommandError(types.KindDriver, cmd,
			&CallError{Func: "cfsa", Code: int(ret)})
	}

	result := newResult(q != 0, uint32(data)&types.DataMask)
	if !result.Q {
		return result, types.NewCommandError(types.KindProtocol, cmd, types.ErrNoResponse)
	}
	if cmd.Direction == types.DirectionControl {
		result.Data = 0
	}
	return result, nil
}

func newResult(q bool, data uint32) types.Result {
	return types.Result{Q: q, X: q, Data: data, Timestamp: time.Now()}
}

// Close detaches the driver library. Idempotent, and safe to call on an
// error path: the handle is dropped regardless of the dlclose outcome.
func (b *Backend) Close() error {
	if !b.open {
		return nil
	}
	b.open = false
	handle := b.handle
	b.handle = 0
	b.cdset = nil
	b.cdreg = nil
	b.cfsa = nil
	b.setDebug = nil
	if err := purego.Dlclose(handle); err != nil {
		return fmt.Errorf("detach driver library: %w", err)
	}
	return nil
}

var _ types.Backend = (*Backend)(nil)
