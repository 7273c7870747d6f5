package types

import (
	"errors"
	"fmt"
)

// Kind classifies every failure the dispatch layer can surface. The CLI
// maps kinds to distinct exit codes; callers use KindOf to branch on the
// class without inspecting messages.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindBackendUnavailable
	KindProtocol
	KindTransport
	KindDriver
	KindSessionClosed
)

// String returns the canonical name of the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION"
	case KindBackendUnavailable:
		return "BACKEND_UNAVAILABLE"
	case KindProtocol:
		return "PROTOCOL"
	case KindTransport:
		return "TRANSPORT"
	case KindDriver:
		return "DRIVER"
	case KindSessionClosed:
		return "SESSION_CLOSED"
	}
	return "UNKNOWN"
}

// Command validation errors.
var (
	ErrSubaddressRange = errors.New("subaddress out of range 0..15")
	ErrFunctionRange   = errors.New("function out of range 0..31")
	ErrMissingData     = errors.New("data required for write-class function")
	ErrDataWidth       = errors.New("data exceeds 24-bit word")
	ErrUnknownModule   = errors.New("unknown module name")
)

// Session and backend errors.
var (
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrNoResponse         = errors.New("module not responding (Q=0, X=0)")
	ErrSessionClosed      = errors.New("session is closed")
	ErrAlreadyOpen        = errors.New("session is already open")
)

// CommandError wraps a failure with its kind and the offending CAMAC
// coordinates so operators can tell a wiring problem from a software bug.
type CommandError struct {
	Kind       Kind
	Module     string
	Station    int
	Subaddress int
	Function   int
	Err        error
}

func (e *CommandError) Error() string {
	if e.Module != "" {
		return fmt.Sprintf("%s: module %s N=%d A=%d F=%d: %v",
			e.Kind, e.Module, e.Station, e.Subaddress, e.Function, e.Err)
	}
	return fmt.Sprintf("%s: N=%d A=%d F=%d: %v",
		e.Kind, e.Station, e.Subaddress, e.Function, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError attaches a kind and the command's coordinates to err.
func NewCommandError(kind Kind, cmd Command, err error) *CommandError {
	return &CommandError{
		Kind:       kind,
		Module:     cmd.Module,
		Station:    cmd.Station,
		Subaddress: cmd.Subaddress,
		Function:   cmd.Function,
		Err:        err,
	}
}

// KindOf reports the classification of err. Errors that carry no explicit
// kind are classified by their sentinel; anything else is KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	switch {
	case errors.Is(err, ErrSubaddressRange),
		errors.Is(err, ErrFunctionRange),
		errors.Is(err, ErrMissingData),
		errors.Is(err, ErrDataWidth),
		errors.Is(err, ErrUnknownModule):
		return KindValidation
	case errors.Is(err, ErrBackendUnavailable):
		return KindBackendUnavailable
	case errors.Is(err, ErrNoResponse):
		return KindProtocol
	case errors.Is(err, ErrSessionClosed):
		return KindSessionClosed
	}
	return KindUnknown
}

// Retryable reports whether err is a transient transport failure that the
// dispatcher may retry. Protocol non-response and driver failures are
// never retried.
func Retryable(err error) bool {
	return KindOf(err) == KindTransport
}
