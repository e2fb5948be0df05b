package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/roomba/log2"
)

func TestReadConfig(t *testing.T) {
	t.Parallel()

	type Case struct {
		name      string
		sources   map[string]string
		check     func(testing.TB, *Config)
		expectErr string
	}
	cases := []Case{
		{"defaults", map[string]string{"main": ""},
			func(t testing.TB, c *Config) {
				assert.Equal(t, DefaultDevice, c.UART.Device)
				assert.Equal(t, DefaultBaud, c.UART.Baud)
				assert.Equal(t, DefaultTimeoutMs, c.UART.TimeoutMs)
				assert.False(t, c.Tele.Enable)
			}, ""},

		{"uart", map[string]string{"main": `uart { device = "/dev/shmoo" baud = 19200 }`},
			func(t testing.TB, c *Config) {
				assert.Equal(t, "/dev/shmoo", c.UART.Device)
				assert.Equal(t, 19200, c.UART.Baud)
			}, ""},

		{"tele", map[string]string{"main": `
tele {
	enable = true
	broker = "tcp://localhost:1883"
	client_id = "r1"
}`},
			func(t testing.TB, c *Config) {
				assert.True(t, c.Tele.Enable)
				assert.Equal(t, "tcp://localhost:1883", c.Tele.Broker)
				assert.Equal(t, "r1", c.Tele.ClientID)
			}, ""},

		{"include", map[string]string{
			"main":  `include "local" {} uart { baud = 57600 }`,
			"local": `uart { device = "/dev/ttyAMA0" }`,
		},
			func(t testing.TB, c *Config) {
				assert.Equal(t, "/dev/ttyAMA0", c.UART.Device)
				assert.Equal(t, 57600, c.UART.Baud)
			}, ""},

		{"include-optional-missing", map[string]string{
			"main": `include "nope" { optional = true }`,
		},
			func(t testing.TB, c *Config) {
				assert.Equal(t, DefaultDevice, c.UART.Device)
			}, ""},

		{"include-required-missing", map[string]string{
			"main": `include "nope" {}`,
		}, nil, "config required name=nope"},

		{"bad-baud", map[string]string{"main": `uart { baud = 31250 }`},
			nil, "uart baud=31250 not valid"},

		{"tele-no-broker", map[string]string{"main": `tele { enable = true }`},
			nil, "tele broker not valid"},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			log := log2.NewTest(t, log2.LDebug)
			fs := NewMockFullReader(c.sources)
			cfg, err := ReadConfig(log, fs, "main")
			if c.expectErr == "" {
				require.NoError(t, err)
				c.check(t, cfg)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), c.expectErr)
			}
		})
	}
}
