// Package dispatch selects an execution backend, owns it for the
// session, and normalizes every CAMAC operation through it. Callers see
// one surface regardless of whether a real crate or the simulated one is
// answering.
package dispatch

import (
	"fmt"
	"sync"
	"time"

	"github.com/camac-tools/camacdaq/internal/audit"
	"github.com/camac-tools/camacdaq/internal/driver"
	"github.com/camac-tools/camacdaq/internal/ks3988"
	"github.com/camac-tools/camacdaq/internal/mock"
	"github.com/camac-tools/camacdaq/pkg/types"
)

// Session states. Run is only valid while open.
const (
	stateUninitialized = iota
	stateOpen
	stateClosed
)

// Dispatcher routes commands to the selected backend and applies the
// session policies: validation before execution, a bounded retry for
// transient transport failures, and per-command audit logging when
// configured. It exclusively owns its backend; concurrent sessions need
// one Dispatcher each.
type Dispatcher struct {
	mu       sync.Mutex
	state    int
	mode     string // effective mode after auto resolution
	backend  types.Backend
	crateMap types.CrateMap

	retryLimit int
	retryDelay time.Duration
	auditDir   string
	audit      *audit.Logger

	// sleep is replaceable in tests.
	sleep func(time.Duration)
}

// New validates the configuration and constructs a Dispatcher with its
// backend chosen by mode. Mode auto prefers the real driver backend when
// a library location is resolvable and otherwise uses the simulated
// crate. The crate map is shared by reference and never mutated.
func New(cfg types.Config, crateMap types.CrateMap) (*Dispatcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mode := cfg.Mode
	if mode == types.ModeAuto {
		if driver.Resolvable(cfg.LibPath) {
			mode = types.ModeReal
		} else {
			mode = types.ModeMock
		}
	}

	var backend types.Backend
	switch mode {
	case types.ModeMock:
		backend = mock.NewBackend(crateMap)
	case types.ModeReal:
		backend = driver.NewBackend(cfg.LibPath)
	case types.ModeGPIB:
		backend = ks3988.NewBackend(cfg.Resource, cfg.WidthBytes, cfg.Timeout)
	}

	retryLimit := cfg.RetryLimit
	if retryLimit == 0 {
		retryLimit = types.DefaultRetryLimit
	}
	retryDelay := cfg.RetryDelay
	if retryDelay == 0 {
		retryDelay = types.DefaultRetryDelay
	}

	return &Dispatcher{
		mode:       mode,
		backend:    backend,
		crateMap:   crateMap,
		retryLimit: retryLimit,
		retryDelay: retryDelay,
		auditDir:   cfg.AuditDir,
		sleep:      time.Sleep,
	}, nil
}

// Mode returns the effective backend mode after auto resolution.
func (d *Dispatcher) Mode() string { return d.mode }

// CrateMap returns the shared, read-only module map.
func (d *Dispatcher) CrateMap() types.CrateMap { return d.crateMap }

// Open brings the backend up and starts the audit log when configured.
// A session can be opened once; after Close it stays closed.
func (d *Dispatcher) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.state {
	case stateOpen:
		return types.ErrAlreadyOpen
	case stateClosed:
		return types.ErrSessionClosed
	}

	if err := d.backend.Open(); err != nil {
		return err
	}

	if d.auditDir != "" {
		logger, err := audit.NewLogger(d.auditDir)
		if err != nil {
			d.backend.Close()
			return fmt.Errorf("start audit log: %w", err)
		}
		d.audit = logger
	}

	d.state = stateOpen
	return nil
}

// Run builds a Command from the caller's invocation and executes it.
// Validation failures are returned unchanged and do not consume the
// session; execution errors are classified by kind.
func (d *Dispatcher) Run(moduleName string, subaddress, function int, data *uint32) (types.Result, error) {
	cmd, err := types.BuildCommand(d.crateMap, moduleName, subaddress, function, data)
	if err != nil {
		return types.Result{}, err
	}
	return d.Execute(cmd)
}

// Execute performs one already-built Command, retrying up to the
// configured limit on a transient transport failure. Protocol and
// driver failures are never retried, and a driver failure closes the
// session.
func (d *Dispatcher) Execute(cmd types.Command) (types.Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != stateOpen {
		return types.Result{}, types.NewCommandError(types.KindSessionClosed, cmd, types.ErrSessionClosed)
	}

	result, err := d.backend.Execute(cmd)
	for attempt := 0; attempt < d.retryLimit && types.Retryable(err); attempt++ {
		d.sleep(d.retryDelay)
		result, err = d.backend.Execute(cmd)
	}

	if d.audit != nil {
		d.audit.Record(cmd, result, err)
	}

	// A driver fault ends the session: release the backend so every
	// later command fails closed until a fresh Dispatcher is opened.
	if types.KindOf(err) == types.KindDriver {
		d.state = stateClosed
		d.backend.Close()
		if d.audit != nil {
			d.audit.Close()
			d.audit = nil
		}
	}
	return result, err
}

// SetDebug forwards a debug level to backends that support one (the
// native driver); others ignore it.
func (d *Dispatcher) SetDebug(level int) {
	if b, ok := d.backend.(interface{ SetDebug(int) }); ok {
		b.SetDebug(level)
	}
}

// Close releases the backend and the audit log. Idempotent; guaranteed
// to release the backend even when the audit log fails to close.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != stateOpen {
		d.state = stateClosed
		return nil
	}
	d.state = stateClosed

	err := d.backend.Close()
	if d.audit != nil {
		if cerr := d.audit.Close(); err == nil {
			err = cerr
		}
		d.audit = nil
	}
	return err
}
