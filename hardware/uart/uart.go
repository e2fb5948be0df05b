// Package uart is a Linux serial port in raw 8N1 mode, arbitrary
// baud rate via termios2 BOTHER.
package uart

import (
	"os"
	"sync/atomic"
	"syscall"
	"time"
	"unsafe"

	"github.com/juju/errors"
	"golang.org/x/sys/unix"

	"github.com/temoto/roomba/log2"
	"github.com/temoto/roomba/oi"
)

const (
	cBOTHER   = 0x1000
	cFIONREAD = 0x541b
	cNCCS     = 19
	cTCSETS2  = 0x402c542b
	cTCSETSF2 = 0x402c542d
)

type cc_t byte
type speed_t uint32
type tcflag_t uint32
type termios2 struct {
	c_iflag  tcflag_t    // input mode flags
	c_oflag  tcflag_t    // output mode flags
	c_cflag  tcflag_t    // control mode flags
	c_lflag  tcflag_t    // local mode flags
	c_line   cc_t        // line discipline
	c_cc     [cNCCS]cc_t // control characters
	c_ispeed speed_t     // input speed
	c_ospeed speed_t     // output speed
}

var _ oi.Transport = (*Port)(nil)

// Port implements oi.Transport over a serial device file. The read
// timeout is stored atomically so the reader goroutine and the pause
// writer never contend.
type Port struct {
	Log *log2.Log

	f         *os.File
	t2        termios2
	baud      int
	timeoutNs int64
}

func Open(path string, baud int, timeout time.Duration, log *log2.Log) (*Port, error) {
	f, err := os.OpenFile(path, syscall.O_RDWR|syscall.O_NOCTTY, 0600)
	if err != nil {
		return nil, errors.Annotatef(err, "uart open path=%s", path)
	}
	p := &Port{
		Log:  log,
		f:    f,
		baud: baud,
	}
	atomic.StoreInt64(&p.timeoutNs, int64(timeout))
	if err = p.resetTermios(); err != nil {
		f.Close()
		return nil, errors.Annotatef(err, "uart termios path=%s baud=%d", path, baud)
	}
	log.Debugf("uart open path=%s baud=%d timeout=%v", path, baud, timeout)
	return p, nil
}

func (self *Port) resetTermios() error {
	self.t2 = termios2{
		c_cflag:  cBOTHER | syscall.CLOCAL | syscall.CREAD | syscall.CS8,
		c_ispeed: speed_t(self.baud),
		c_ospeed: speed_t(self.baud),
	}
	// raw mode, reads return whatever is buffered
	self.t2.c_cc[syscall.VMIN] = 0
	self.t2.c_cc[syscall.VTIME] = 0
	// flush both queues while applying
	return ioctl(self.f.Fd(), cTCSETSF2, uintptr(unsafe.Pointer(&self.t2)))
}

func ioctl(fd uintptr, op, arg uintptr) error {
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, fd, op, arg)
	if errno != 0 {
		return os.NewSyscallError("SYS_IOCTL", errno)
	}
	return nil
}

// Read blocks until at least one byte is buffered or the timeout
// elapses, then drains what is available into p.
func (self *Port) Read(p []byte) (int, error) {
	if err := self.waitRead(1, self.Timeout()); err != nil {
		return 0, err
	}
	return syscall.Read(int(self.f.Fd()), p)
}

func (self *Port) waitRead(min int, wait time.Duration) error {
	var avail int
	tfinal := time.Now().Add(wait)
	for {
		if err := ioctl(self.f.Fd(), cFIONREAD, uintptr(unsafe.Pointer(&avail))); err != nil {
			return err
		}
		if avail >= min {
			return nil
		}
		if time.Now().After(tfinal) {
			return oi.ErrReadTimeout
		}
		time.Sleep(wait / 16)
	}
}

func (self *Port) Write(p []byte) (int, error) { return self.f.Write(p) }

func (self *Port) DiscardInput() error {
	return unix.IoctlSetInt(int(self.f.Fd()), unix.TCFLSH, unix.TCIFLUSH)
}

func (self *Port) SetTimeout(d time.Duration) error {
	atomic.StoreInt64(&self.timeoutNs, int64(d))
	return nil
}

func (self *Port) Timeout() time.Duration {
	return time.Duration(atomic.LoadInt64(&self.timeoutNs))
}

func (self *Port) BaudRate() int { return self.baud }

// SetBaud reprograms the port speed in place, for use after the
// device side switched rates.
func (self *Port) SetBaud(baud int) error {
	self.baud = baud
	return errors.Annotatef(self.resetTermios(), "uart set baud=%d", baud)
}

func (self *Port) Close() error { return self.f.Close() }
