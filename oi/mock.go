package oi

import (
	"bytes"
	"encoding/hex"
	"sync"
	"time"
)

var _ Transport = (*MockTransport)(nil)

// MockTransport is an in-memory Transport for tests: reads drain a
// prefed buffer, writes accumulate for inspection. An empty read
// buffer acts like a silent device and returns ErrReadTimeout
// immediately.
type MockTransport struct {
	lk       sync.Mutex
	rd       bytes.Buffer
	wr       bytes.Buffer
	timeout  time.Duration
	baud     int
	reads    int
	discards int

	// readHook runs at the start of every Read, before the lock is
	// taken, so it may call back into the client (e.g. PauseStream).
	readHook func(*MockTransport)
}

func NewMockTransport(baud int) *MockTransport {
	return &MockTransport{
		timeout: 45 * time.Millisecond,
		baud:    baud,
	}
}

func (self *MockTransport) Feed(b []byte) {
	self.lk.Lock()
	defer self.lk.Unlock()
	self.rd.Write(b)
}

func (self *MockTransport) FeedHex(s string) {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	self.Feed(b)
}

func (self *MockTransport) Read(p []byte) (int, error) {
	if hook := self.readHook; hook != nil {
		hook(self)
	}
	self.lk.Lock()
	defer self.lk.Unlock()
	self.reads++
	if self.rd.Len() == 0 {
		return 0, ErrReadTimeout
	}
	return self.rd.Read(p)
}

func (self *MockTransport) Write(p []byte) (int, error) {
	self.lk.Lock()
	defer self.lk.Unlock()
	return self.wr.Write(p)
}

func (self *MockTransport) DiscardInput() error {
	self.lk.Lock()
	defer self.lk.Unlock()
	self.discards++
	self.rd.Reset()
	return nil
}

func (self *MockTransport) SetTimeout(d time.Duration) error {
	self.lk.Lock()
	defer self.lk.Unlock()
	self.timeout = d
	return nil
}

func (self *MockTransport) Timeout() time.Duration {
	self.lk.Lock()
	defer self.lk.Unlock()
	return self.timeout
}

func (self *MockTransport) BaudRate() int { return self.baud }

func (self *MockTransport) Written() []byte {
	self.lk.Lock()
	defer self.lk.Unlock()
	return append([]byte(nil), self.wr.Bytes()...)
}

func (self *MockTransport) TakeWritten() []byte {
	self.lk.Lock()
	defer self.lk.Unlock()
	b := append([]byte(nil), self.wr.Bytes()...)
	self.wr.Reset()
	return b
}

func (self *MockTransport) Reads() int {
	self.lk.Lock()
	defer self.lk.Unlock()
	return self.reads
}

func (self *MockTransport) Discards() int {
	self.lk.Lock()
	defer self.lk.Unlock()
	return self.discards
}

func (self *MockTransport) Unread() int {
	self.lk.Lock()
	defer self.lk.Unlock()
	return self.rd.Len()
}
