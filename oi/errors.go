package oi

import (
	"fmt"

	"github.com/juju/errors"
)

// UnknownPacketError: requested id or name has no registry entry.
// Caller bug, not retryable.
type UnknownPacketError struct {
	ID   PacketID
	Name string
}

func (e UnknownPacketError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("oi: unknown packet name=%s", e.Name)
	}
	return fmt.Sprintf("oi: unknown packet id=%d", e.ID)
}

// MalformedDataError: wire bytes do not decode under the descriptor.
// Fatal to that decode attempt.
type MalformedDataError struct {
	ID     PacketID
	Reason string
}

func (e MalformedDataError) Error() string {
	return fmt.Sprintf("oi: malformed data packet=%d %s", e.ID, e.Reason)
}

// IncompleteResponseError: one-shot request timed out before the full
// response arrived. Actual carries the partial byte count. Caller may
// retry; this layer never does.
type IncompleteResponseError struct {
	Expect int
	Actual int
}

func (e IncompleteResponseError) Error() string {
	return fmt.Sprintf("oi: incomplete response expected=%d received=%d", e.Expect, e.Actual)
}
func (IncompleteResponseError) Timeout() bool { return true }

// StreamTooLargeError: requested packet set does not fit in one stream
// tick at the transport baud rate. Raised before any transport write.
type StreamTooLargeError struct {
	FrameSize int
	Capacity  int
}

func (e StreamTooLargeError) Error() string {
	return fmt.Sprintf("oi: stream frame=%dB exceeds tick capacity=%dB", e.FrameSize, e.Capacity)
}

// ProtocolFramingError: bad sentinel, declared length mismatch, or
// id/order mismatch mid-stream. Fatal to the session, no resync.
type ProtocolFramingError struct {
	Reason string
}

func (e ProtocolFramingError) Error() string {
	return "oi: framing: " + e.Reason
}

// ChecksumError: streaming frame bytes do not sum to 0 mod 256.
// Fatal to the session.
type ChecksumError struct {
	Received byte
	Actual   byte
}

func (e ChecksumError) Error() string {
	return fmt.Sprintf("oi: invalid checksum received=%02x actual=%02x", e.Received, e.Actual)
}

type Timeouter interface {
	Timeout() bool
}

// IsTimeout reports whether err (or its cause) is a read timeout in
// the net.Error sense or a juju timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if t, ok := errors.Cause(err).(Timeouter); ok {
		return t.Timeout()
	}
	return errors.IsTimeout(err)
}
