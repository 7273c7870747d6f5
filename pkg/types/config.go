package types

import (
	"errors"
	"time"
)

// Backend selection modes. ModeAuto prefers the real driver backend when
// a driver library location resolves, falling back to the mock crate.
const (
	ModeMock = "mock"
	ModeReal = "real"
	ModeGPIB = "gpib"
	ModeAuto = "auto"
)

// knownModes lists the modes Validate accepts.
var knownModes = map[string]bool{
	ModeMock: true,
	ModeReal: true,
	ModeGPIB: true,
	ModeAuto: true,
}

// Config validation errors.
var (
	ErrModeEmpty        = errors.New("mode must not be empty")
	ErrModeUnknown      = errors.New("unknown backend mode")
	ErrResourceRequired = errors.New("resource address required for gpib mode")
	ErrRetryInvalid     = errors.New("retry limit must not be negative")
	ErrWidthInvalid     = errors.New("word width must be 1, 2, or 3 bytes")
)

// Config holds backend selection and session parameters for the
// dispatcher. Zero values mean "use the default".
type Config struct {
	// Mode selects the backend: mock, real, gpib, or auto.
	Mode string `json:"mode" yaml:"mode"`

	// LibPath is an explicit path to the native CAMAC driver library.
	// When empty the CAMAC_LIB environment variable and platform
	// candidate names are tried (real and auto modes).
	LibPath string `json:"lib_path" yaml:"lib_path"`

	// Resource is the transport address of the crate controller for
	// gpib mode, passed through unmodified (e.g. a GPIB-LAN gateway
	// host:port).
	Resource string `json:"resource" yaml:"resource"`

	// WidthBytes is the read width for the GPIB framing, 1..3 bytes.
	// Zero means 3 (the full 24-bit word).
	WidthBytes int `json:"width_bytes" yaml:"width_bytes"`

	// RetryLimit bounds transport-error retries per command. Zero means
	// the default of one retry; set negative values are rejected.
	RetryLimit int `json:"retry_limit" yaml:"retry_limit"`

	// RetryDelay is the fixed pause before a transport retry.
	// Zero means the default.
	RetryDelay time.Duration `json:"retry_delay" yaml:"retry_delay"`

	// Timeout bounds one transaction on the gpib transport.
	// Zero means the default.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// AuditDir, when non-empty, enables the per-command JSONL audit log
	// rooted at this directory.
	AuditDir string `json:"audit_dir" yaml:"audit_dir"`
}

// Session defaults.
const (
	DefaultRetryLimit = 1
	DefaultRetryDelay = 50 * time.Millisecond
	DefaultTimeout    = 2 * time.Second
	DefaultWidthBytes = 3
)

// Validate checks that the Config is well-formed, returning a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.Mode == "" {
		return ErrModeEmpty
	}
	if !knownModes[c.Mode] {
		return ErrModeUnknown
	}
	if c.Mode == ModeGPIB && c.Resource == "" {
		return ErrResourceRequired
	}
	if c.RetryLimit < 0 {
		return ErrRetryInvalid
	}
	if c.WidthBytes < 0 || c.WidthBytes > 3 {
		return ErrWidthInvalid
	}
	return nil
}
