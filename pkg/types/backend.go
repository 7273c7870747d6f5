package types

// Backend is the execution contract shared by the simulated crate and the
// hardware-backed variants. The dispatcher is written only against this
// interface; it never depends on a concrete backend.
//
// A backend holds its connection state internally: Open acquires it,
// Execute requires it, Close releases it. Close is idempotent and must
// release native resources even when the session ends due to an earlier
// error.
type Backend interface {
	// Open acquires the backend's resources (driver library, transport,
	// or in-memory crate state). Returns ErrBackendUnavailable (possibly
	// wrapped) when the backend cannot be brought up.
	Open() error

	// Execute performs one CAMAC transaction and returns the normalized
	// Result. Errors are classified via CommandError kinds so the caller
	// can distinguish transient transport faults from module
	// non-response and fatal driver failures.
	Execute(cmd Command) (Result, error)

	// Close releases backend resources. Idempotent: multiple calls
	// succeed. After Close, Execute returns ErrSessionClosed.
	Close() error
}
