package oi

import (
	"fmt"
	"strings"
)

// Sensor value sets. Each is a 1-byte integer-backed type with an
// explicit validity predicate; the codec enforces membership instead
// of passing raw integers through.

type wireByter interface {
	wireByte() byte
}

func flagString(b byte, names []string) string {
	if b == 0 {
		return "none"
	}
	ss := make([]string, 0, len(names))
	for i, name := range names {
		if b&(1<<uint(i)) != 0 {
			ss = append(ss, name)
		}
	}
	return strings.Join(ss, "|")
}

// BumpsWheelDrops: which bump and wheel drop sensors are triggered.
type BumpsWheelDrops byte

const (
	BumpRight      BumpsWheelDrops = 1 << 0
	BumpLeft       BumpsWheelDrops = 1 << 1
	WheelDropRight BumpsWheelDrops = 1 << 2
	WheelDropLeft  BumpsWheelDrops = 1 << 3
)

func (b BumpsWheelDrops) Valid() bool { return b&^0x0f == 0 }
func (b BumpsWheelDrops) String() string {
	return flagString(byte(b), []string{"bump-right", "bump-left", "wheel-drop-right", "wheel-drop-left"})
}
func (b BumpsWheelDrops) wireByte() byte { return byte(b) }

// WheelOvercurrents: which motors trip their overcurrent sensor.
// Bit 0x02 is reserved by the device (vacuum, not reported).
type WheelOvercurrents byte

const (
	OvercurrentSideBrush  WheelOvercurrents = 1 << 0
	OvercurrentMainBrush  WheelOvercurrents = 1 << 2
	OvercurrentRightWheel WheelOvercurrents = 1 << 3
	OvercurrentLeftWheel  WheelOvercurrents = 1 << 4
)

func (b WheelOvercurrents) Valid() bool { return b&^0x1f == 0 }
func (b WheelOvercurrents) String() string {
	return flagString(byte(b), []string{"side-brush", "reserved", "main-brush", "right-wheel", "left-wheel"})
}
func (b WheelOvercurrents) wireByte() byte { return byte(b) }

// Buttons: which buttons are pressed. Day/hour/minute/clock/schedule
// exist only on some models, others always report 0.
type Buttons byte

const (
	ButtonClean    Buttons = 1 << 0
	ButtonSpot     Buttons = 1 << 1
	ButtonDock     Buttons = 1 << 2
	ButtonMinute   Buttons = 1 << 3
	ButtonHour     Buttons = 1 << 4
	ButtonDay      Buttons = 1 << 5
	ButtonSchedule Buttons = 1 << 6
	ButtonClock    Buttons = 1 << 7
)

func (b Buttons) Valid() bool { return true }
func (b Buttons) String() string {
	return flagString(byte(b), []string{"clean", "spot", "dock", "minute", "hour", "day", "schedule", "clock"})
}
func (b Buttons) wireByte() byte { return byte(b) }

// ChargingState: discrete charging state.
type ChargingState byte

const (
	ChargeNone ChargingState = iota
	ChargeReconditioning
	ChargeFull
	ChargeTrickle
	ChargeWaiting
	ChargeFault
)

func (s ChargingState) Valid() bool { return s <= ChargeFault }
func (s ChargingState) String() string {
	switch s {
	case ChargeNone:
		return "not-charging"
	case ChargeReconditioning:
		return "reconditioning"
	case ChargeFull:
		return "full-charging"
	case ChargeTrickle:
		return "trickle"
	case ChargeWaiting:
		return "waiting"
	case ChargeFault:
		return "fault"
	}
	return fmt.Sprintf("invalid:%d", byte(s))
}
func (s ChargingState) wireByte() byte { return byte(s) }

// ChargingSources: which charging sources are available.
type ChargingSources byte

const (
	ChargingSourceInternal ChargingSources = 1 << 0
	ChargingSourceHomeBase ChargingSources = 1 << 1
)

func (b ChargingSources) Valid() bool { return b&^0x03 == 0 }
func (b ChargingSources) String() string {
	return flagString(byte(b), []string{"internal", "home-base"})
}
func (b ChargingSources) wireByte() byte { return byte(b) }

// Mode: current OI mode. ModeOff cannot actually be reported by a
// running stream but is a defined value.
type Mode byte

const (
	ModeOff Mode = iota
	ModePassive
	ModeSafe
	ModeFull
)

func (m Mode) Valid() bool { return m <= ModeFull }
func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "off"
	case ModePassive:
		return "passive"
	case ModeSafe:
		return "safe"
	case ModeFull:
		return "full"
	}
	return fmt.Sprintf("invalid:%d", byte(m))
}
func (m Mode) wireByte() byte { return byte(m) }

// LightBumper: which light bumper sensors are triggered.
type LightBumper byte

const (
	LightBumpLeft        LightBumper = 1 << 0
	LightBumpFrontLeft   LightBumper = 1 << 1
	LightBumpCenterLeft  LightBumper = 1 << 2
	LightBumpCenterRight LightBumper = 1 << 3
	LightBumpFrontRight  LightBumper = 1 << 4
	LightBumpRight       LightBumper = 1 << 5
)

func (b LightBumper) Valid() bool { return b&^0x3f == 0 }
func (b LightBumper) String() string {
	return flagString(byte(b), []string{"left", "front-left", "center-left", "center-right", "front-right", "right"})
}
func (b LightBumper) wireByte() byte { return byte(b) }

// Stasis: caster sensor. Toggling means forward progress; disabled
// means the wheel is too dirty to read.
type Stasis byte

const (
	StasisToggling Stasis = 1 << 0
	StasisDisabled Stasis = 1 << 1
)

func (b Stasis) Valid() bool { return b&^0x03 == 0 }
func (b Stasis) String() string {
	return flagString(byte(b), []string{"toggling", "disabled"})
}
func (b Stasis) wireByte() byte { return byte(b) }

// Command-side enums, used by one-way encoders only.

// Days: schedule bit-flags for days of the week.
type Days byte

const (
	DaySunday Days = 1 << iota
	DayMonday
	DayTuesday
	DayWednesday
	DayThursday
	DayFriday
	DaySaturday
)

func (d Days) Valid() bool { return d&^0x7f == 0 }
func (d Days) String() string {
	return flagString(byte(d), []string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"})
}

// Day: day of week for the device clock, Sunday=0.
type Day byte

const (
	Sunday Day = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

func (d Day) Valid() bool { return d <= Saturday }
func (d Day) String() string {
	names := []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}
	if d.Valid() {
		return names[d]
	}
	return fmt.Sprintf("invalid:%d", byte(d))
}
