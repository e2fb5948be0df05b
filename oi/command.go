package oi

import (
	"strings"
	"time"

	"github.com/juju/errors"
)

// Velocity and radius limits of the drive commands, device units
// (mm/s and mm).
const (
	DriveVelocityMax = 500
	DriveRadiusMax   = 2000

	// Special radius values: drive straight (two accepted encodings)
	// and turn in place.
	DriveStraight    = -32768
	DriveStraightAlt = 0x7fff
	DriveTurnCW      = -1
	DriveTurnCCW     = 1
)

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func bitflags(bs ...bool) byte {
	var r byte
	for i, b := range bs {
		if b {
			r |= 1 << uint(i)
		}
	}
	return r
}

func int16be(v int) (byte, byte) {
	u := uint16(int16(v))
	return byte(u >> 8), byte(u)
}

// Start switches the device into the passive mode. Required before
// any other command after power-on.
func (c *Client) Start() error { return c.send(OpStart.cmd()) }

// Stop closes the command interface; the device stops responding
// until the next Start.
func (c *Client) Stop() error { return c.send(OpStop.cmd()) }

// Reset reboots the device as if the battery was reinserted. The
// device prints a boot banner on the wire, which is discarded.
func (c *Client) Reset() error {
	if err := c.send(OpReset.cmd()); err != nil {
		return errors.Trace(err)
	}
	c.sleep(5 * time.Second)
	return errors.Trace(c.t.DiscardInput())
}

func (c *Client) Safe() error     { return c.send(OpSafe.cmd()) }
func (c *Client) Full() error     { return c.send(OpFull.cmd()) }
func (c *Client) Clean() error    { return c.send(OpClean.cmd()) }
func (c *Client) Spot() error     { return c.send(OpSpot.cmd()) }
func (c *Client) Max() error      { return c.send(OpMax.cmd()) }
func (c *Client) SeekDock() error { return c.send(OpSeekDock.cmd()) }

// Power puts the device into the powered-down sleep state.
func (c *Client) Power() error { return c.send(OpPower.cmd()) }

var baudCodes = map[int]byte{
	300: 0, 600: 1, 1200: 2, 2400: 3, 4800: 4, 9600: 5,
	14400: 6, 19200: 7, 28800: 8, 38400: 9, 57600: 10, 115200: 11,
}

// SetBaud changes the device baud rate. The caller must reopen the
// transport at the new rate afterwards; the device needs 100ms to
// switch.
func (c *Client) SetBaud(baud int) error {
	code, ok := baudCodes[baud]
	if !ok {
		return errors.NotValidf("%s baud=%d", modName, baud)
	}
	if err := c.send(OpBaud.cmd(code)); err != nil {
		return errors.Trace(err)
	}
	c.sleep(100 * time.Millisecond)
	return nil
}

// Drive sets wheel motion by velocity (mm/s) and turn radius (mm).
// Both are clamped to device range; the special radius values pass
// through unclamped.
func (c *Client) Drive(velocity, radius int) error {
	velocity = clampInt(velocity, -DriveVelocityMax, DriveVelocityMax)
	switch radius {
	case DriveStraight, DriveStraightAlt, DriveTurnCW, DriveTurnCCW:
	default:
		radius = clampInt(radius, -DriveRadiusMax, DriveRadiusMax)
	}
	vh, vl := int16be(velocity)
	rh, rl := int16be(radius)
	return c.send(OpDrive.cmd(vh, vl, rh, rl))
}

// DriveDirect sets each wheel velocity independently, mm/s, clamped.
func (c *Client) DriveDirect(right, left int) error {
	right = clampInt(right, -DriveVelocityMax, DriveVelocityMax)
	left = clampInt(left, -DriveVelocityMax, DriveVelocityMax)
	rh, rl := int16be(right)
	lh, ll := int16be(left)
	return c.send(OpDriveDirect.cmd(rh, rl, lh, ll))
}

// DrivePwm sets raw wheel PWM duty, -255..255, clamped.
func (c *Client) DrivePwm(right, left int) error {
	right = clampInt(right, -255, 255)
	left = clampInt(left, -255, 255)
	rh, rl := int16be(right)
	lh, ll := int16be(left)
	return c.send(OpDrivePwm.cmd(rh, rl, lh, ll))
}

// DriveStop halts both wheels.
func (c *Client) DriveStop() error { return c.Drive(0, DriveStraight) }

// Motors switches the cleaning motors on or off. The direction flags
// are only meaningful while the corresponding motor runs.
func (c *Client) Motors(sideBrush, vacuum, mainBrush, sideBrushCW, mainBrushOutward bool) error {
	return c.send(OpMotors.cmd(bitflags(sideBrush, vacuum, mainBrush, sideBrushCW, mainBrushOutward)))
}

// MotorsPwm sets cleaning motor duty directly. Main and side brush
// accept -127..127 (sign is direction), vacuum 0..127.
func (c *Client) MotorsPwm(mainBrush, sideBrush, vacuum int) error {
	mainBrush = clampInt(mainBrush, -127, 127)
	sideBrush = clampInt(sideBrush, -127, 127)
	vacuum = clampInt(vacuum, 0, 127)
	return c.send(OpMotorsPwm.cmd(byte(int8(mainBrush)), byte(int8(sideBrush)), byte(vacuum)))
}

// Leds drives the main indicator LEDs. powerColor 0 is green, 255 is
// red; powerIntensity 0 is off, 255 full.
func (c *Client) Leds(debris, spot, home, checkRobot bool, powerColor, powerIntensity byte) error {
	return c.send(OpLeds.cmd(bitflags(debris, spot, home, checkRobot), powerColor, powerIntensity))
}

// SchedulingLeds drives the scheduling display LEDs directly.
func (c *Client) SchedulingLeds(days Days, schedule, clock, am, pm, colon bool) error {
	return c.send(OpLedsScheduling.cmd(byte(days), bitflags(colon, pm, am, clock, schedule)))
}

// DigitLedsAscii shows up to 4 printable ASCII characters on the
// 7-segment display, left to right, space padded. Lowercase is
// folded to uppercase.
func (c *Client) DigitLedsAscii(s string) error {
	if len(s) > 4 {
		return errors.NotValidf("%s digit leds text=%q", modName, s)
	}
	s = strings.ToUpper(s)
	d := [4]byte{' ', ' ', ' ', ' '}
	for i := 0; i < len(s); i++ {
		if s[i] < 32 || s[i] > 126 {
			return errors.NotValidf("%s digit leds char=%d", modName, s[i])
		}
		d[i] = s[i]
	}
	return c.send(OpLedsDigitAscii.cmd(d[0], d[1], d[2], d[3]))
}

// PressButtons simulates physical button presses; the device
// auto-releases them after 1/6 second.
func (c *Client) PressButtons(bs Buttons) error {
	return c.send(OpButtons.cmd(byte(bs)))
}

type DayTime struct {
	Hour   int
	Minute int
}

func (dt DayTime) valid() bool {
	return dt.Hour >= 0 && dt.Hour <= 23 && dt.Minute >= 0 && dt.Minute <= 59
}

// Schedule programs the cleaning schedule, one optional entry per day
// indexed Sunday..Saturday. Nil entries disable that day. Passing all
// nil clears the schedule.
func (c *Client) Schedule(days [7]*DayTime) error {
	var mask Days
	data := make([]byte, 0, 15)
	data = append(data, 0)
	for i, dt := range days {
		if dt == nil {
			data = append(data, 0, 0)
			continue
		}
		if !dt.valid() {
			return errors.NotValidf("%s schedule day=%d time=%d:%d", modName, i, dt.Hour, dt.Minute)
		}
		mask |= 1 << uint(i)
		data = append(data, byte(dt.Hour), byte(dt.Minute))
	}
	data[0] = byte(mask)
	return c.send(OpSchedule.cmd(data...))
}

// SetDayTime sets the device clock.
func (c *Client) SetDayTime(day Day, hour, minute int) error {
	if !day.Valid() {
		return errors.NotValidf("%s day=%d", modName, day)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return errors.NotValidf("%s time=%d:%d", modName, hour, minute)
	}
	return c.send(OpSetDayTime.cmd(byte(day), byte(hour), byte(minute)))
}

// Note is one song step: MIDI note number 31..127 (anything outside
// is played as rest) and duration in 1/64s units.
type Note struct {
	Number   byte
	Duration byte
}

var noteNames = map[string]int{
	"c": 0, "c#": 1, "db": 1, "d": 2, "d#": 3, "eb": 3, "e": 4, "f": 5,
	"f#": 6, "gb": 6, "g": 7, "g#": 8, "ab": 8, "a": 9, "a#": 10, "bb": 10, "b": 11,
}

// NoteNumber translates a note name with octave, like "c4" or "g#5",
// to the MIDI number the song commands expect.
func NoteNumber(name string) (byte, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if len(name) < 2 {
		return 0, errors.NotValidf("%s note=%q", modName, name)
	}
	octave := int(name[len(name)-1] - '0')
	semitone, ok := noteNames[name[:len(name)-1]]
	if !ok || octave < 0 || octave > 9 {
		return 0, errors.NotValidf("%s note=%q", modName, name)
	}
	n := (octave+1)*12 + semitone
	if n < 31 || n > 127 {
		return 0, errors.NotValidf("%s note=%q out of range", modName, name)
	}
	return byte(n), nil
}

// Song stores a melody in device slot 0..3 and returns its play
// duration.
func (c *Client) Song(slot int, notes []Note) (time.Duration, error) {
	if slot < 0 || slot > 3 {
		return 0, errors.NotValidf("%s song slot=%d", modName, slot)
	}
	if len(notes) < 1 || len(notes) > 16 {
		return 0, errors.NotValidf("%s song length=%d", modName, len(notes))
	}
	data := make([]byte, 0, 2+2*len(notes))
	data = append(data, byte(slot), byte(len(notes)))
	total := time.Duration(0)
	for _, n := range notes {
		data = append(data, n.Number, n.Duration)
		total += time.Duration(n.Duration) * time.Second / 64
	}
	if err := c.send(OpSong.cmd(data...)); err != nil {
		return 0, errors.Trace(err)
	}
	return total, nil
}

// PlaySong starts playback of a stored slot. The device ignores it
// while another song plays.
func (c *Client) PlaySong(slot int) error {
	if slot < 0 || slot > 3 {
		return errors.NotValidf("%s song slot=%d", modName, slot)
	}
	return c.send(OpPlay.cmd(byte(slot)))
}
