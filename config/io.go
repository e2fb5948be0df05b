package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
)

type FullReader interface {
	Normalize(key string) string
	// nil,nil = not found
	ReadAll(key string) ([]byte, error)
}

type OsFullReader struct {
	base string
}

func NewOsFullReader() *OsFullReader { return &OsFullReader{} }

func (self *OsFullReader) SetBase(dir string) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		panic(err)
	}
	self.base = abs
}

func (self *OsFullReader) Normalize(path string) string {
	return filepath.Clean(filepath.Join(self.base, path))
}

func (*OsFullReader) ReadAll(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	b, err := ioutil.ReadAll(f)
	f.Close()
	return b, err
}

type MockFullReader struct {
	Map map[string]string
}

func NewMockFullReader(sources map[string]string) *MockFullReader {
	return &MockFullReader{Map: sources}
}

func (self *MockFullReader) Normalize(name string) string {
	return filepath.Clean(name)
}

func (self *MockFullReader) ReadAll(name string) ([]byte, error) {
	if s, ok := self.Map[name]; ok {
		return []byte(s), nil
	}
	return nil, nil
}
