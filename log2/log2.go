// Package log2 is a thin leveled wrapper around stdlib log.
// It exists for two reasons: protocol byte-level debug output must be
// cheap to switch off at runtime, and parallel tests must be able to
// log through t.Logf safely. A nil *Log discards everything, so
// optional logging needs no guards at call sites.
package log2

import (
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"math"
	"os"
	"sync/atomic"
	"testing"
)

const (
	Lmicroseconds     int = log.Lmicroseconds
	Lshortfile        int = log.Lshortfile
	LStdFlags         int = log.Ltime | Lshortfile
	LInteractiveFlags int = log.Ltime | Lshortfile | Lmicroseconds
	LTestFlags        int = Lshortfile | Lmicroseconds
)

type Level int32

const (
	LError = iota
	LInfo
	LDebug
	LAll = math.MaxInt32
)

type Log struct {
	l      *log.Logger
	level  Level
	w      io.Writer
	fatalf Func
}

func NewStderr(level Level) *Log { return NewWriter(os.Stderr, level) }

func NewWriter(w io.Writer, level Level) *Log {
	if w == ioutil.Discard {
		return nil
	}
	return &Log{
		l:     log.New(w, "", LStdFlags),
		level: level,
		w:     w,
	}
}

type Func func(format string, args ...interface{})
type FuncWriter struct{ Func }

func NewFunc(f Func, level Level) *Log { return NewWriter(FuncWriter{f}, level) }

func (fw FuncWriter) Write(b []byte) (int, error) {
	fw.Func(string(b))
	return len(b), nil
}

// NewTest routes messages into t.Logf and Fatalf into t.Fatalf.
func NewTest(t testing.TB, level Level) *Log {
	self := NewFunc(t.Logf, level)
	self.fatalf = t.Fatalf
	self.SetFlags(LTestFlags)
	return self
}

func (self *Log) Clone(level Level) *Log {
	if self == nil {
		return nil
	}
	l := NewWriter(self.w, level)
	l.fatalf = self.fatalf
	l.SetFlags(self.l.Flags())
	return l
}

func (self *Log) SetLevel(l Level) {
	if self == nil {
		return
	}
	atomic.StoreInt32((*int32)(&self.level), int32(l))
}

func (self *Log) SetFlags(f int) {
	if self == nil {
		return
	}
	self.l.SetFlags(f)
}

func (self *Log) SetPrefix(prefix string) {
	if self == nil {
		return
	}
	self.l.SetPrefix(prefix)
}

func (self *Log) Enabled(level Level) bool {
	if self == nil {
		return false
	}
	return atomic.LoadInt32((*int32)(&self.level)) >= int32(level)
}

func (self *Log) Log(level Level, s string) {
	if self.Enabled(level) {
		self.l.Output(3, s)
	}
}

func (self *Log) Logf(level Level, format string, args ...interface{}) {
	if self.Enabled(level) {
		self.l.Output(3, fmt.Sprintf(format, args...))
	}
}

func (self *Log) Error(args ...interface{}) {
	self.Log(LError, "error: "+fmt.Sprint(args...))
}
func (self *Log) Errorf(format string, args ...interface{}) {
	self.Logf(LError, "error: "+format, args...)
}
func (self *Log) Info(args ...interface{}) {
	self.Log(LInfo, fmt.Sprint(args...))
}
func (self *Log) Infof(format string, args ...interface{}) {
	self.Logf(LInfo, format, args...)
}
func (self *Log) Debug(args ...interface{}) {
	self.Log(LDebug, "debug: "+fmt.Sprint(args...))
}
func (self *Log) Debugf(format string, args ...interface{}) {
	self.Logf(LDebug, "debug: "+format, args...)
}

// Printf and Println satisfy logger interfaces of third-party
// libraries (paho mqtt). Both map to Info level.
func (self *Log) Printf(format string, args ...interface{}) {
	self.Logf(LInfo, format, args...)
}
func (self *Log) Println(args ...interface{}) {
	self.Log(LInfo, fmt.Sprintln(args...))
}

func (self *Log) Fatalf(format string, args ...interface{}) {
	if self.fatalf != nil {
		self.fatalf(format, args...)
	} else {
		self.Logf(LError, "fatal: "+format, args...)
		os.Exit(1)
	}
}
func (self *Log) Fatal(args ...interface{}) {
	s := fmt.Sprint(args...)
	if self.fatalf != nil {
		self.fatalf(s)
	} else {
		self.Logf(LError, "fatal: "+s)
		os.Exit(1)
	}
}
