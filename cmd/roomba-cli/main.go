package main

import (
	"encoding/hex"
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	prompt "github.com/c-bata/go-prompt"
	"github.com/juju/errors"

	"github.com/temoto/roomba/config"
	"github.com/temoto/roomba/hardware/uart"
	"github.com/temoto/roomba/helpers"
	"github.com/temoto/roomba/helpers/cli"
	"github.com/temoto/roomba/log2"
	"github.com/temoto/roomba/oi"
	"github.com/temoto/roomba/tele"
)

const usage = `syntax: commands separated by whitespace
(mode)
- start safe full clean spot dock power stop reset

(sensors)
- sensor=NAME|ID      one-shot read of a single packet
- query=A,B,C         one-shot read of a packet list
- stream=A,B,C:N      push stream, print N frames then pause

(drive)
- drive=V,R           velocity mm/s, radius mm (straight, cw, ccw)
- halt                stop wheels

(misc)
- digit=TEXT          up to 4 chars on the display
- @XX...              transmit raw bytes from hex
- sN                  pause N milliseconds

(meta)
- log=yes|no          debug logging
`

var log = log2.NewStderr(log2.LDebug)

type app struct {
	client *oi.Client
	port   *uart.Port
	tele   tele.Tele
}

func main() {
	cmdline := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	configPath := cmdline.String("config", "", "path to HCL config, optional")
	devicePath := cmdline.String("device", "", "serial device, overrides config")
	baud := cmdline.Int("baud", 0, "baud rate, overrides config")
	cmdline.Parse(os.Args[1:])

	log.SetFlags(log2.LInteractiveFlags)

	var cfg *config.Config
	if *configPath != "" {
		cfg = config.MustReadConfig(log, config.NewOsFullReader(), *configPath)
	} else {
		cfg = config.MustReadConfig(log, config.NewMockFullReader(map[string]string{"empty": ""}), "empty")
	}
	if *devicePath != "" {
		cfg.UART.Device = *devicePath
	}
	if *baud != 0 {
		cfg.UART.Baud = *baud
	}

	a := &app{}
	var err error
	a.port, err = uart.Open(cfg.UART.Device, cfg.UART.Baud,
		helpers.IntMillisecondDefault(cfg.UART.TimeoutMs, config.DefaultTimeoutMs*time.Millisecond), log)
	if err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
	defer a.port.Close()
	a.client = oi.NewClient(a.port, log)

	if err = a.tele.Init(log, cfg.Tele); err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
	defer a.tele.Close()

	if err = a.client.Start(); err != nil {
		log.Fatal(errors.ErrorStack(err))
	}

	cli.MainLoop(log, a.newExecutor(), newCompleter(), a.tele.Close)
}

func newCompleter() func(d prompt.Document) []prompt.Suggest {
	suggests := []prompt.Suggest{
		{Text: "start", Description: "passive mode"},
		{Text: "safe", Description: "safe mode"},
		{Text: "full", Description: "full mode"},
		{Text: "clean", Description: "default cleaning"},
		{Text: "spot", Description: "spot cleaning"},
		{Text: "dock", Description: "seek charging dock"},
		{Text: "power", Description: "power down"},
		{Text: "stop", Description: "close command interface"},
		{Text: "reset", Description: "reboot device"},
		{Text: "sensor=", Description: "read one packet by name or id"},
		{Text: "query=", Description: "read packet list a,b,c"},
		{Text: "stream=", Description: "stream a,b,c:N frames"},
		{Text: "drive=", Description: "drive velocity,radius"},
		{Text: "halt", Description: "stop wheels"},
		{Text: "digit=", Description: "display text"},
		{Text: "sN", Description: "pause for N ms"},
		{Text: "log=yes", Description: "debug logging on"},
		{Text: "log=no", Description: "debug logging off"},
	}
	return func(d prompt.Document) []prompt.Suggest {
		return prompt.FilterFuzzy(suggests, d.GetWordBeforeCursor(), true)
	}
}

func (a *app) newExecutor() func(string) {
	return func(line string) {
		for _, word := range strings.Split(line, " ") {
			word = strings.TrimSpace(word)
			if word == "" {
				continue
			}
			if err := a.execWord(word); err != nil {
				log.Errorf(errors.ErrorStack(err))
				return
			}
		}
	}
}

func (a *app) execWord(word string) error {
	c := a.client
	switch {
	case word == "help":
		log.Infof(usage)
		return nil
	case word == "start":
		return c.Start()
	case word == "safe":
		return c.Safe()
	case word == "full":
		return c.Full()
	case word == "clean":
		return c.Clean()
	case word == "spot":
		return c.Spot()
	case word == "dock":
		return c.SeekDock()
	case word == "power":
		return c.Power()
	case word == "stop":
		return c.Stop()
	case word == "reset":
		return c.Reset()
	case word == "halt":
		return c.DriveStop()
	case word == "log=yes":
		log.SetLevel(log2.LDebug)
		return nil
	case word == "log=no":
		log.SetLevel(log2.LError)
		return nil
	case strings.HasPrefix(word, "sensor="):
		return a.doSensor(word[len("sensor="):])
	case strings.HasPrefix(word, "query="):
		return a.doQuery(word[len("query="):])
	case strings.HasPrefix(word, "stream="):
		return a.doStream(word[len("stream="):])
	case strings.HasPrefix(word, "drive="):
		return a.doDrive(word[len("drive="):])
	case strings.HasPrefix(word, "digit="):
		return c.DigitLedsAscii(word[len("digit="):])
	case word[0] == '@':
		bs, err := hex.DecodeString(word[1:])
		if err != nil {
			return errors.Annotatef(err, "word=%s", word)
		}
		_, err = a.port.Write(bs)
		return errors.Trace(err)
	case word[0] == 's':
		i, err := strconv.ParseUint(word[1:], 10, 32)
		if err != nil {
			return errors.Annotatef(err, "word=%s", word)
		}
		time.Sleep(time.Duration(i) * time.Millisecond)
		return nil
	}
	return errors.Errorf("invalid command: '%s' try help", word)
}

func (a *app) doSensor(arg string) error {
	v, err := requestOneFlexible(a.client, arg)
	if err != nil {
		return errors.Trace(err)
	}
	log.Infof("%s=%v", arg, v)
	return nil
}

func requestOneFlexible(c *oi.Client, arg string) (interface{}, error) {
	if id, err := strconv.ParseUint(arg, 10, 8); err == nil {
		return c.RequestOne(oi.PacketID(id))
	}
	return c.RequestOneName(arg)
}

func (a *app) doQuery(arg string) error {
	ids, err := parseIDList(arg)
	if err != nil {
		return errors.Trace(err)
	}
	rec, err := a.client.RequestMany(ids...)
	if err != nil {
		return errors.Trace(err)
	}
	log.Infof("%s", rec.String())
	return errors.Trace(a.tele.SendRecord(rec))
}

func (a *app) doStream(arg string) error {
	parts := strings.SplitN(arg, ":", 2)
	frames := 10
	if len(parts) == 2 {
		i, err := strconv.ParseUint(parts[1], 10, 32)
		if err != nil {
			return errors.Annotatef(err, "stream=%s", arg)
		}
		frames = int(i)
	}
	ids, err := parseIDList(parts[0])
	if err != nil {
		return errors.Trace(err)
	}
	n := 0
	return a.client.Stream(func(r *oi.Record) bool {
		n++
		log.Infof("frame %d: %s", n, r.String())
		if terr := a.tele.SendRecord(r); terr != nil {
			log.Errorf("tele: %v", terr)
		}
		return n < frames
	}, ids...)
}

func (a *app) doDrive(arg string) error {
	parts := strings.SplitN(arg, ",", 2)
	if len(parts) != 2 {
		return errors.Errorf("drive=%s expected velocity,radius", arg)
	}
	v, err := strconv.Atoi(parts[0])
	if err != nil {
		return errors.Annotatef(err, "drive=%s", arg)
	}
	var r int
	switch parts[1] {
	case "straight":
		r = oi.DriveStraight
	case "cw":
		r = oi.DriveTurnCW
	case "ccw":
		r = oi.DriveTurnCCW
	default:
		if r, err = strconv.Atoi(parts[1]); err != nil {
			return errors.Annotatef(err, "drive=%s", arg)
		}
	}
	return a.client.Drive(v, r)
}

func parseIDList(s string) ([]oi.PacketID, error) {
	parts := strings.Split(s, ",")
	ids := make([]oi.PacketID, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if i, err := strconv.ParseUint(part, 10, 8); err == nil {
			ids = append(ids, oi.PacketID(i))
			continue
		}
		p, err := oi.ResolveName(part)
		if err != nil {
			return nil, errors.Trace(err)
		}
		ids = append(ids, p.ID)
	}
	if len(ids) == 0 {
		return nil, errors.Errorf("empty packet list")
	}
	return ids, nil
}
