package oi

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/alive/v2"
)

// StreamSentinel is the fixed first byte of every streaming frame.
const StreamSentinel byte = 19

// The device emits one frame per 15ms tick.
const streamTick = 15 * time.Millisecond

// Read deadlines inside the frame loop: the first frame takes longer
// to start, payload bytes follow the header within one tick, and the
// next header arrives within two.
const (
	streamTimeoutFirst  = 100 * time.Millisecond
	streamTimeoutData   = 15 * time.Millisecond
	streamTimeoutHeader = 30 * time.Millisecond
)

type StreamState uint32

const (
	StreamIdle StreamState = iota
	StreamRequesting
	StreamAwaitHeader
	StreamAwaitPayload
	StreamAwaitChecksum
	StreamDelivering
	StreamPaused
	StreamStopped
	StreamCorrupt
)

func (s StreamState) String() string {
	switch s {
	case StreamIdle:
		return "idle"
	case StreamRequesting:
		return "requesting"
	case StreamAwaitHeader:
		return "await-header"
	case StreamAwaitPayload:
		return "await-payload"
	case StreamAwaitChecksum:
		return "await-checksum"
	case StreamDelivering:
		return "delivering"
	case StreamPaused:
		return "paused"
	case StreamStopped:
		return "stopped"
	case StreamCorrupt:
		return "corrupt"
	}
	return "unknown"
}

// Consumer receives one decoded record per frame, in arrival order.
// Return false to stop the stream.
type Consumer func(*Record) bool

// streamCapacity is how many bytes one tick can carry at the given
// baud rate, 10 wire bits per byte.
func streamCapacity(baud int) int {
	return baud * int(streamTick/time.Millisecond) / 10000
}

func (c *Client) setStreamState(s StreamState) {
	atomic.StoreUint32(&c.stream.state, uint32(s))
}

func (c *Client) StreamState() StreamState {
	return StreamState(atomic.LoadUint32(&c.stream.state))
}

func (c *Client) pauseRequested() bool {
	return atomic.LoadUint32(&c.stream.pauseReq) != 0
}

// Stream subscribes to a continuous push stream of the given packet
// ids and runs the read loop on the calling goroutine until the
// consumer returns false, PauseStream is called, or the session
// fails. The requested set must fit in one tick at the transport
// baud rate; violation fails with StreamTooLargeError before any
// byte is written.
func (c *Client) Stream(consumer Consumer, ids ...PacketID) error {
	if len(ids) < 1 || len(ids) > 255 {
		return errors.NotValidf("%s stream count=%d", modName, len(ids))
	}
	packets, err := ResolveAll(ids)
	if err != nil {
		return errors.Trace(err)
	}
	// sentinel + length + checksum + (id + payload) per packet
	frameSize := 3 + len(ids)
	for _, p := range packets {
		frameSize += p.size
	}
	if capacity := streamCapacity(c.t.BaudRate()); frameSize > capacity {
		return StreamTooLargeError{FrameSize: frameSize, Capacity: capacity}
	}
	c.stream.ids = ids
	c.stream.packets = packets

	c.setStreamState(StreamRequesting)
	if err = c.send(cmdStream(ids)); err != nil {
		c.setStreamState(StreamCorrupt)
		return errors.Trace(err)
	}
	if err = c.t.DiscardInput(); err != nil {
		c.setStreamState(StreamCorrupt)
		return errors.Trace(err)
	}
	return c.streamRead(consumer)
}

// StreamNames is Stream with symbolic lookup.
func (c *Client) StreamNames(consumer Consumer, names ...string) error {
	packets, err := ResolveNames(names)
	if err != nil {
		return errors.Trace(err)
	}
	ids := make([]PacketID, len(packets))
	for i, p := range packets {
		ids[i] = p.ID
	}
	return c.Stream(consumer, ids...)
}

// PauseStream asks the device to stop pushing frames without
// clearing its packet list. Never call it from the consumer callback
// (return false there instead); it is meant for another goroutine
// while the read loop is blocked. The loop then observes a read
// timeout, notices the pending pause and exits clean through the
// Paused state.
//
// The write below intentionally bypasses the client lock: the read
// loop is inside the locked region for the whole session and waiting
// for the lock would deadlock. This is the single sanctioned
// concurrent transport access, see Transport.
func (c *Client) PauseStream() error {
	atomic.StoreUint32(&c.stream.pauseReq, 1)
	c.Log.Debugf("%s send out=%x (pause)", modName, cmdStreamPause())
	_, err := c.t.Write(cmdStreamPause())
	return errors.Trace(err)
}

// ResumeStream restarts a paused stream with the packet list of the
// previous Stream call and re-enters the read loop.
func (c *Client) ResumeStream(consumer Consumer) error {
	if c.stream.packets == nil {
		return errors.Errorf("%s resume before stream", modName)
	}
	c.setStreamState(StreamRequesting)
	if err := c.send(cmdStreamResume()); err != nil {
		c.setStreamState(StreamCorrupt)
		return errors.Trace(err)
	}
	return c.streamRead(consumer)
}

// StreamWait blocks until the current read loop exits. Useful after
// PauseStream from another goroutine.
func (c *Client) StreamWait() {
	if a := c.stream.alive; a != nil {
		a.Wait()
	}
}

func (c *Client) streamRead(consumer Consumer) (err error) {
	c.lk.Lock()
	defer c.lk.Unlock()

	a := alive.NewAlive()
	c.stream.alive = a
	if !a.Add(1) {
		return errors.Errorf("%s stream lifecycle", modName)
	}
	atomic.StoreUint32(&c.stream.pauseReq, 0)
	c.stream.started.SetNow()

	origTimeout := c.t.Timeout()
	_ = c.t.SetTimeout(streamTimeoutFirst)
	defer func() {
		// Scoped release: the device must stop pushing into a
		// now-unread buffer whatever way the loop exited.
		if _, werr := c.t.Write(cmdStreamPause()); werr != nil && err == nil {
			err = errors.Trace(werr)
		}
		_ = c.t.SetTimeout(origTimeout)
		a.Stop()
		a.Done()
	}()

	expectPayload := 0
	for _, p := range c.stream.packets {
		expectPayload += 1 + p.size
	}

	hdr := make([]byte, 2)
	payload := make([]byte, 255)
	chk := make([]byte, 1)

	for a.IsRunning() {
		c.setStreamState(StreamAwaitHeader)
		if n, rerr := readFull(c.t, hdr); rerr != nil || n != len(hdr) {
			if IsTimeout(rerr) && c.pauseRequested() {
				c.setStreamState(StreamPaused)
				return nil
			}
			atomic.AddUint32(&c.stat.Error, 1)
			c.setStreamState(StreamCorrupt)
			if rerr == nil {
				rerr = IncompleteResponseError{Expect: len(hdr), Actual: n}
			}
			return errors.Annotatef(rerr, "%s stream header", modName)
		}
		if hdr[0] != StreamSentinel {
			atomic.AddUint32(&c.stat.Error, 1)
			c.setStreamState(StreamCorrupt)
			return ProtocolFramingError{Reason: fmt.Sprintf("header=%02x expected=%02x", hdr[0], StreamSentinel)}
		}
		// Validate the declared length early, but still consume the
		// declared byte count to keep the channel framed for the
		// next frame.
		plen := int(hdr[1])
		lengthOk := plen == expectPayload

		c.setStreamState(StreamAwaitPayload)
		_ = c.t.SetTimeout(streamTimeoutData)
		pb := payload[:plen]
		if n, rerr := readFull(c.t, pb); rerr != nil || n != plen {
			if IsTimeout(rerr) && c.pauseRequested() {
				c.setStreamState(StreamPaused)
				return nil
			}
			atomic.AddUint32(&c.stat.Error, 1)
			c.setStreamState(StreamCorrupt)
			if rerr == nil {
				rerr = IncompleteResponseError{Expect: plen, Actual: n}
			}
			return errors.Annotatef(rerr, "%s stream payload", modName)
		}

		c.setStreamState(StreamAwaitChecksum)
		if n, rerr := readFull(c.t, chk); rerr != nil || n != 1 {
			if IsTimeout(rerr) && c.pauseRequested() {
				c.setStreamState(StreamPaused)
				return nil
			}
			atomic.AddUint32(&c.stat.Error, 1)
			c.setStreamState(StreamCorrupt)
			if rerr == nil {
				rerr = IncompleteResponseError{Expect: 1, Actual: n}
			}
			return errors.Annotatef(rerr, "%s stream checksum", modName)
		}
		_ = c.t.SetTimeout(streamTimeoutHeader)

		sum := hdr[0] + hdr[1] + chk[0]
		for _, b := range pb {
			sum += b
		}
		if sum != 0 {
			atomic.AddUint32(&c.stat.Error, 1)
			c.setStreamState(StreamCorrupt)
			return ChecksumError{Received: chk[0], Actual: chk[0] - sum}
		}
		if !lengthOk {
			atomic.AddUint32(&c.stat.Error, 1)
			c.setStreamState(StreamCorrupt)
			return ProtocolFramingError{Reason: fmt.Sprintf("payload length declared=%d expected=%d", plen, expectPayload)}
		}

		c.setStreamState(StreamDelivering)
		rec, derr := c.parseStreamPayload(pb)
		if derr != nil {
			atomic.AddUint32(&c.stat.Error, 1)
			c.setStreamState(StreamCorrupt)
			return errors.Trace(derr)
		}
		c.stream.lastFrame.SetNow()
		atomic.AddUint32(&c.stat.Frame, 1)

		if !consumer(rec) {
			c.setStreamState(StreamStopped)
			return nil
		}
		if c.pauseRequested() {
			c.setStreamState(StreamPaused)
			return nil
		}
	}
	c.setStreamState(StreamStopped)
	return nil
}

// parseStreamPayload parses repeated (id, value bytes) tuples in wire
// order and aligns the decoded values to the originally requested id
// order. The device may reorder tuples within a frame; missing,
// duplicate or unexpected ids fail the session.
func (c *Client) parseStreamPayload(b []byte) (*Record, error) {
	values := make(map[PacketID]interface{}, len(c.stream.packets))
	pos := 0
	for pos < len(b) {
		id := PacketID(b[pos])
		pos++
		p, err := Resolve(id)
		if err != nil {
			return nil, ProtocolFramingError{Reason: fmt.Sprintf("payload unknown id=%d", id)}
		}
		if pos+p.size > len(b) {
			return nil, ProtocolFramingError{Reason: fmt.Sprintf("payload truncated id=%d", id)}
		}
		v, err := p.Decode(b[pos : pos+p.size])
		if err != nil {
			return nil, errors.Trace(err)
		}
		pos += p.size
		if _, dup := values[id]; dup {
			return nil, ProtocolFramingError{Reason: fmt.Sprintf("payload duplicate id=%d", id)}
		}
		values[id] = v
	}

	rec := newRecord(len(c.stream.packets))
	for _, p := range c.stream.packets {
		v, ok := values[p.ID]
		if !ok {
			return nil, ProtocolFramingError{Reason: fmt.Sprintf("payload missing id=%d", p.ID)}
		}
		delete(values, p.ID)
		switch p.Kind {
		case KindPadding:
		case KindGroup:
			for _, f := range v.(*Record).Fields() {
				rec.append(f.Name, f.Value)
			}
		default:
			rec.append(p.Name, v)
		}
	}
	if len(values) != 0 {
		return nil, ProtocolFramingError{Reason: fmt.Sprintf("payload unexpected ids=%d", len(values))}
	}
	return rec, nil
}
