package oi

import "time"

// Transport is an opaque duplex byte channel to the device. This
// package never assumes more than the operations below.
//
// Read blocks until at least one byte is available or the configured
// timeout elapses; a timeout with no data returns (0, ErrReadTimeout).
// The transport owner may perform reads/writes from one goroutine at
// a time, with a single sanctioned exception: another goroutine may
// Write the stream pause command while the reader goroutine is
// blocked in Read. Implementations must tolerate that overlap; any
// other concurrent access is undefined.
type Transport interface {
	Write(p []byte) (int, error)
	Read(p []byte) (int, error)
	DiscardInput() error
	SetTimeout(d time.Duration) error
	Timeout() time.Duration
	BaudRate() int
}

type timeoutError string

func (e timeoutError) Error() string { return string(e) }
func (timeoutError) Timeout() bool   { return true }

const ErrReadTimeout = timeoutError("oi: read timeout")

// readFull reads len(p) bytes, looping over short reads. Returns the
// byte count actually read; n < len(p) only together with an error
// (timeout included).
func readFull(t Transport, p []byte) (int, error) {
	n := 0
	for n < len(p) {
		m, err := t.Read(p[n:])
		n += m
		if err != nil {
			return n, err
		}
		if m == 0 {
			return n, ErrReadTimeout
		}
	}
	return n, nil
}
