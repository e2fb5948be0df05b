// Package config loads HCL configuration with include support.
package config

import (
	"path/filepath"
	"sync"

	"github.com/hashicorp/hcl"
	"github.com/juju/errors"
	"github.com/temoto/roomba/helpers"
	"github.com/temoto/roomba/log2"
	"github.com/temoto/roomba/tele"
)

const (
	DefaultDevice    = "/dev/ttyUSB0"
	DefaultBaud      = 115200
	DefaultTimeoutMs = 45
)

type Config struct {
	// includeSeen contains absolute paths to prevent include loops
	includeSeen map[string]struct{}
	// only used for Unmarshal, do not access
	XXX_Include []Source `hcl:"include"`

	UART struct {
		Device    string `hcl:"device"`
		Baud      int    `hcl:"baud"`
		TimeoutMs int    `hcl:"timeout_ms"`
	} `hcl:"uart"`

	Tele tele.Config `hcl:"tele"`

	_copy_guard sync.Mutex //nolint:unused
}

type Source struct {
	Name     string `hcl:"name,key"`
	Optional bool   `hcl:"optional"`
}

func (c *Config) defaults() {
	if c.UART.Device == "" {
		c.UART.Device = DefaultDevice
	}
	if c.UART.Baud == 0 {
		c.UART.Baud = DefaultBaud
	}
	if c.UART.TimeoutMs == 0 {
		c.UART.TimeoutMs = DefaultTimeoutMs
	}
}

func (c *Config) validate() error {
	errs := make([]error, 0, 4)
	switch c.UART.Baud {
	case 300, 600, 1200, 2400, 4800, 9600, 14400, 19200, 28800, 38400, 57600, 115200:
	default:
		errs = append(errs, errors.NotValidf("uart baud=%d", c.UART.Baud))
	}
	if c.UART.TimeoutMs < 0 {
		errs = append(errs, errors.NotValidf("uart timeout_ms=%d", c.UART.TimeoutMs))
	}
	if c.Tele.Enable && c.Tele.Broker == "" {
		errs = append(errs, errors.NotValidf("tele broker"))
	}
	return helpers.FoldErrors(errs)
}

func (c *Config) read(log *log2.Log, fs FullReader, source Source, errs *[]error) {
	norm := fs.Normalize(source.Name)
	if _, ok := c.includeSeen[norm]; ok {
		log.Fatalf("config duplicate source=%s", source.Name)
	} else {
		log.Debugf("config reading source='%s' path=%s", source.Name, norm)
	}
	c.includeSeen[source.Name] = struct{}{}
	c.includeSeen[norm] = struct{}{}

	bs, err := fs.ReadAll(norm)
	if bs == nil && err == nil {
		if !source.Optional {
			err = errors.NotFoundf("config required name=%s path=%s", source.Name, norm)
			*errs = append(*errs, err)
		}
		return
	}
	if err != nil {
		*errs = append(*errs, errors.Annotatef(err, "config source=%s", source.Name))
		return
	}

	err = hcl.Unmarshal(bs, c)
	if err != nil {
		err = errors.Annotatef(err, "config unmarshal source=%s content='%s'", source.Name, string(bs))
		*errs = append(*errs, err)
		return
	}

	var includes []Source
	includes, c.XXX_Include = c.XXX_Include, nil
	for _, include := range includes {
		includeNorm := fs.Normalize(include.Name)
		if _, ok := c.includeSeen[includeNorm]; ok {
			err = errors.Errorf("config include loop: from=%s include=%s", source.Name, include.Name)
			*errs = append(*errs, err)
			continue
		}
		c.read(log, fs, include, errs)
	}
}

func ReadConfig(log *log2.Log, fs FullReader, names ...string) (*Config, error) {
	if len(names) == 0 {
		log.Fatal("code error [Must]ReadConfig() without names")
	}

	if osfs, ok := fs.(*OsFullReader); ok {
		dir, name := filepath.Split(names[0])
		osfs.SetBase(dir)
		names[0] = name
	}
	c := &Config{
		includeSeen: make(map[string]struct{}),
	}
	errs := make([]error, 0, 8)
	for _, name := range names {
		c.read(log, fs, Source{Name: name}, &errs)
	}
	c.defaults()
	if err := helpers.FoldErrors(errs); err != nil {
		return c, err
	}
	return c, c.validate()
}

func MustReadConfig(log *log2.Log, fs FullReader, names ...string) *Config {
	c, err := ReadConfig(log, fs, names...)
	if err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
	return c
}
