// Package ks3988 implements the crate backend for a KineticSystems 3988
// GPIB crate controller using its binary N-A-F protocol:
//
//   - every transaction starts with exactly 3 bytes: N, A, F (each 0-31)
//   - read-class functions are followed by reading 1..3 data bytes,
//     high byte first
//   - write-class functions send 3 data bytes after the NAF, high first
//   - control-class functions send nothing beyond the NAF
//
// The controller is reached through a byte transport; in production a TCP
// connection to a GPIB-LAN gateway addressed by the configured resource
// string, in tests an in-memory pipe. No termination characters are used.
package ks3988

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/camac-tools/camacdaq/pkg/types"
)

// Backend talks the 3988 binary protocol over a single connection. One
// transaction is outstanding at a time, matching the bus.
type Backend struct {
	resource string
	width    int
	timeout  time.Duration

	// dial is replaceable in tests.
	dial func(resource string, timeout time.Duration) (net.Conn, error)

	mu   sync.Mutex
	open bool
	conn net.Conn
}

// NewBackend creates a 3988 backend for the given resource address.
// width is the read width in bytes (1..3); zero selects the full 24-bit
// word. A zero timeout selects the session default.
func NewBackend(resource string, width int, timeout time.Duration) *Backend {
	if width < 1 || width > 3 {
		width = types.DefaultWidthBytes
	}
	if timeout <= 0 {
		timeout = types.DefaultTimeout
	}
	return &Backend{
		resource: resource,
		width:    width,
		timeout:  timeout,
		dial: func(resource string, timeout time.Duration) (net.Conn, error) {
			return net.DialTimeout("tcp", resource, timeout)
		},
	}
}

// Open establishes the transport connection. Fails with
// ErrBackendUnavailable when the resource cannot be reached.
func (b *Backend) Open() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.open {
		return types.ErrAlreadyOpen
	}
	conn, err := b.dial(b.resource, b.timeout)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", types.ErrBackendUnavailable, b.resource, err)
	}
	b.conn = conn
	b.open = true
	return nil
}

// Execute runs one N-A-F transaction. Connection-level failures are
// transport errors (retryable by the dispatcher); a read timeout after an
// accepted NAF is reported as module non-response, which is how the 3988
// signals an empty station.
func (b *Backend) Execute(cmd types.Command) (types.Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return types.Result{}, types.NewCommandError(types.KindSessionClosed, cmd, types.ErrSessionClosed)
	}

	if err := b.conn.SetDeadline(time.Now().Add(b.timeout)); err != nil {
		return types.Result{}, types.NewCommandError(types.KindTransport, cmd, err)
	}

	naf := [3]byte{byte(cmd.Station & 0x1F), byte(cmd.Subaddress & 0x1F), byte(cmd.Function & 0x1F)}
	if _, err := b.conn.Write(naf[:]); err != nil {
		return types.Result{}, types.NewCommandError(types.KindTransport, cmd, fmt.Errorf("send NAF: %w", err))
	}

	result := types.Result{Timestamp: time.Now()}
	switch cmd.Direction {
	case types.DirectionRead:
		buf := make([]byte, b.width)
		if _, err := io.ReadFull(b.conn, buf); err != nil {
			if isTimeout(err) {
				// NAF accepted but no data came back: the addressed
				// station is not answering.
				return result, types.NewCommandError(types.KindProtocol, cmd, types.ErrNoResponse)
			}
			return result, types.NewCommandError(types.KindTransport, cmd, fmt.Errorf("read data: %w", err))
		}
		result.Data = beWord(buf)
		result.Q = true
		result.X = true

	case types.DirectionWrite:
		// Always send 3 bytes; the controller ignores the upper bytes
		// for narrower widths.
		word := cmd.Data & types.DataMask
		payload := [3]byte{byte(word >> 16), byte(word >> 8), byte(word)}
		if _, err := b.conn.Write(payload[:]); err != nil {
			return result, types.NewCommandError(types.KindTransport, cmd, fmt.Errorf("send data: %w", err))
		}
		result.Data = word
		result.Q = true
		result.X = true

	case types.DirectionControl:
		result.Q = true
		result.X = true
	}
	return result, nil
}

// Close shuts the transport down. Idempotent, safe on error paths.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		return nil
	}
	b.open = false
	conn := b.conn
	b.conn = nil
	if err := conn.Close(); err != nil {
		return fmt.Errorf("close transport: %w", err)
	}
	return nil
}

// beWord assembles a big-endian data word from 1..3 bytes.
func beWord(buf []byte) uint32 {
	var word uint32
	for _, b := range buf {
		word = word<<8 | uint32(b)
	}
	return word & types.DataMask
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

var _ types.Backend = (*Backend)(nil)
