package oi

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/alive/v2"
	"github.com/temoto/atomic_clock"
	"github.com/temoto/roomba/log2"
)

const modName = "oi"

// Response timing slack, subtracted from the bit-serial budget before
// sleeping. Values match device behavior observed by the protocol
// authors: single packet responses begin slightly sooner than list
// responses.
const (
	requestSlackOne  = 500 * time.Microsecond
	requestSlackMany = 1 * time.Millisecond
)

type Stat struct {
	Request uint32
	Frame   uint32
	Error   uint32
}

// Client owns one Transport and performs OI request/response and
// streaming operations over it. One-shot requests are serialized by
// an internal lock. The streaming read loop runs on the calling
// goroutine; only PauseStream may touch the transport concurrently
// (see Transport).
type Client struct {
	Log *log2.Log

	lk          sync.Mutex
	t           Transport
	sleep       func(time.Duration)
	stat        Stat
	lastRequest *atomic_clock.Clock

	stream struct {
		alive     *alive.Alive
		state     uint32
		pauseReq  uint32
		ids       []PacketID
		packets   []*Packet
		started   *atomic_clock.Clock
		lastFrame *atomic_clock.Clock
	}
}

func NewClient(t Transport, log *log2.Log) *Client {
	c := &Client{
		Log:         log,
		t:           t,
		sleep:       time.Sleep,
		lastRequest: atomic_clock.New(),
	}
	c.stream.started = atomic_clock.New()
	c.stream.lastFrame = atomic_clock.New()
	return c
}

func (c *Client) Stat() Stat {
	return Stat{
		Request: atomic.LoadUint32(&c.stat.Request),
		Frame:   atomic.LoadUint32(&c.stat.Frame),
		Error:   atomic.LoadUint32(&c.stat.Error),
	}
}

// LastRequest returns the start time of the most recent one-shot
// request, zero before the first one.
func (c *Client) LastRequest() *atomic_clock.Clock { return c.lastRequest }

func (c *Client) send(b []byte) error {
	c.lk.Lock()
	defer c.lk.Unlock()
	return c.locked_send(b)
}

func (c *Client) locked_send(b []byte) error {
	c.Log.Debugf("%s send out=%x", modName, b)
	_, err := c.t.Write(b)
	if err != nil {
		atomic.AddUint32(&c.stat.Error, 1)
	}
	return errors.Trace(err)
}

// RequestOne queries a single packet id and returns its typed value.
func (c *Client) RequestOne(id PacketID) (interface{}, error) {
	p, err := Resolve(id)
	if err != nil {
		return nil, errors.Trace(err)
	}
	b, err := c.requestBytes(cmdSensors(p.ID), p.size, requestSlackOne)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return p.Decode(b)
}

// RequestOneName is RequestOne with symbolic lookup.
func (c *Client) RequestOneName(name string) (interface{}, error) {
	p, err := ResolveName(name)
	if err != nil {
		return nil, errors.Trace(err)
	}
	b, err := c.requestBytes(cmdSensors(p.ID), p.size, requestSlackOne)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return p.Decode(b)
}

// RequestMany queries an ordered list of packet ids in one round trip
// and returns the decoded record. The device replies in the order
// requested.
func (c *Client) RequestMany(ids ...PacketID) (*Record, error) {
	packets, err := ResolveAll(ids)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return c.requestMany(ids, packets)
}

// RequestManyNames is RequestMany with symbolic lookup.
func (c *Client) RequestManyNames(names ...string) (*Record, error) {
	packets, err := ResolveNames(names)
	if err != nil {
		return nil, errors.Trace(err)
	}
	ids := make([]PacketID, len(packets))
	for i, p := range packets {
		ids[i] = p.ID
	}
	return c.requestMany(ids, packets)
}

func (c *Client) requestMany(ids []PacketID, packets []*Packet) (*Record, error) {
	if len(ids) < 1 || len(ids) > 255 {
		return nil, errors.NotValidf("%s query count=%d", modName, len(ids))
	}
	lay := LayoutOf(packets...)
	b, err := c.requestBytes(cmdQueryList(ids), lay.TotalSize, requestSlackMany)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return DecodeList(packets, b)
}

// requestBytes performs one request/response exchange: drop any stale
// buffered input so the bytes read belong to this request, write the
// command, sleep out the bit-serial transfer budget, then read
// exactly size bytes.
func (c *Client) requestBytes(cmd []byte, size int, slack time.Duration) ([]byte, error) {
	c.lk.Lock()
	defer c.lk.Unlock()

	atomic.AddUint32(&c.stat.Request, 1)
	c.lastRequest.SetNow()

	if err := c.t.DiscardInput(); err != nil {
		atomic.AddUint32(&c.stat.Error, 1)
		return nil, errors.Trace(err)
	}
	if err := c.locked_send(cmd); err != nil {
		return nil, errors.Trace(err)
	}
	if wait := responseBudget(size, c.t.BaudRate()) - slack; wait > 0 {
		c.sleep(wait)
	}

	buf := make([]byte, size)
	n, err := readFull(c.t, buf)
	if n != size {
		atomic.AddUint32(&c.stat.Error, 1)
		if err == nil || IsTimeout(err) {
			return nil, IncompleteResponseError{Expect: size, Actual: n}
		}
		return nil, errors.Trace(err)
	}
	c.Log.Debugf("%s recv in=%x", modName, buf)
	return buf, nil
}

// responseBudget is the serial transfer time of n bytes: 10 wire bits
// per byte (8 data + start + stop).
func responseBudget(n, baud int) time.Duration {
	if baud <= 0 {
		return 0
	}
	return time.Duration(n) * 10 * time.Second / time.Duration(baud)
}
