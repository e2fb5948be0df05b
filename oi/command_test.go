package oi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/roomba/helpers"
)

func TestModeCommands(t *testing.T) {
	t.Parallel()
	c, mt := newTestClient(t, 115200)
	require.NoError(t, c.Start())
	require.NoError(t, c.Safe())
	require.NoError(t, c.Full())
	require.NoError(t, c.Clean())
	require.NoError(t, c.Spot())
	require.NoError(t, c.SeekDock())
	require.NoError(t, c.Power())
	require.NoError(t, c.Stop())
	assert.Equal(t, []byte{128, 131, 132, 135, 134, 143, 133, 173}, mt.TakeWritten())
}

func TestReset(t *testing.T) {
	t.Parallel()
	c, mt := newTestClient(t, 115200)
	var slept time.Duration
	c.sleep = func(d time.Duration) { slept = d }
	mt.Feed([]byte("boot banner noise"))

	require.NoError(t, c.Reset())
	assert.Equal(t, []byte{7}, mt.TakeWritten())
	assert.Equal(t, 5*time.Second, slept)
	assert.Equal(t, 0, mt.Unread())
}

func TestSetBaud(t *testing.T) {
	t.Parallel()
	c, mt := newTestClient(t, 115200)
	var slept time.Duration
	c.sleep = func(d time.Duration) { slept = d }

	require.NoError(t, c.SetBaud(19200))
	assert.Equal(t, []byte{129, 7}, mt.TakeWritten())
	assert.Equal(t, 100*time.Millisecond, slept)

	require.Error(t, c.SetBaud(31250))
}

func TestDrive(t *testing.T) {
	t.Parallel()
	c, mt := newTestClient(t, 115200)

	require.NoError(t, c.Drive(-200, 500))
	assert.Equal(t, helpers.MustHex("89ff3801f4"), mt.TakeWritten())

	require.NoError(t, c.Drive(-200, DriveStraight))
	assert.Equal(t, helpers.MustHex("89ff388000"), mt.TakeWritten())

	require.NoError(t, c.Drive(100, DriveTurnCCW))
	assert.Equal(t, []byte{137, 0x00, 0x64, 0x00, 0x01}, mt.TakeWritten())

	// Out of range values clamp instead of failing.
	require.NoError(t, c.Drive(1000, 3000))
	assert.Equal(t, []byte{137, 0x01, 0xf4, 0x07, 0xd0}, mt.TakeWritten())

	require.NoError(t, c.DriveStop())
	assert.Equal(t, []byte{137, 0, 0, 0x80, 0x00}, mt.TakeWritten())
}

func TestDriveDirect(t *testing.T) {
	t.Parallel()
	c, mt := newTestClient(t, 115200)
	require.NoError(t, c.DriveDirect(250, -250))
	assert.Equal(t, []byte{145, 0x00, 0xfa, 0xff, 0x06}, mt.TakeWritten())

	require.NoError(t, c.DriveDirect(600, -600))
	assert.Equal(t, []byte{145, 0x01, 0xf4, 0xfe, 0x0c}, mt.TakeWritten())
}

func TestDrivePwm(t *testing.T) {
	t.Parallel()
	c, mt := newTestClient(t, 115200)
	require.NoError(t, c.DrivePwm(-255, 255))
	assert.Equal(t, []byte{146, 0xff, 0x01, 0x00, 0xff}, mt.TakeWritten())
}

func TestMotors(t *testing.T) {
	t.Parallel()
	c, mt := newTestClient(t, 115200)
	require.NoError(t, c.Motors(true, false, true, false, false))
	assert.Equal(t, []byte{138, 0x05}, mt.TakeWritten())

	require.NoError(t, c.Motors(false, true, false, false, false))
	assert.Equal(t, []byte{138, 0x02}, mt.TakeWritten())
}

func TestMotorsPwm(t *testing.T) {
	t.Parallel()
	c, mt := newTestClient(t, 115200)
	require.NoError(t, c.MotorsPwm(-127, 64, 127))
	assert.Equal(t, []byte{144, 0x81, 0x40, 0x7f}, mt.TakeWritten())

	require.NoError(t, c.MotorsPwm(0, 0, -5))
	assert.Equal(t, []byte{144, 0, 0, 0}, mt.TakeWritten())
}

func TestLeds(t *testing.T) {
	t.Parallel()
	c, mt := newTestClient(t, 115200)
	require.NoError(t, c.Leds(true, false, false, true, 0, 255))
	assert.Equal(t, []byte{139, 0x09, 0, 255}, mt.TakeWritten())
}

func TestSchedulingLeds(t *testing.T) {
	t.Parallel()
	c, mt := newTestClient(t, 115200)
	require.NoError(t, c.SchedulingLeds(DayMonday|DayFriday, true, false, true, false, false))
	assert.Equal(t, []byte{162, 0x22, 0x14}, mt.TakeWritten())
}

func TestDigitLedsAscii(t *testing.T) {
	t.Parallel()
	c, mt := newTestClient(t, 115200)
	require.NoError(t, c.DigitLedsAscii("ab"))
	assert.Equal(t, []byte{164, 'A', 'B', ' ', ' '}, mt.TakeWritten())

	require.NoError(t, c.DigitLedsAscii("8:15"))
	assert.Equal(t, []byte{164, '8', ':', '1', '5'}, mt.TakeWritten())

	require.Error(t, c.DigitLedsAscii("12345"))
	require.Error(t, c.DigitLedsAscii("a\tb"))
	assert.Empty(t, mt.Written())
}

func TestPressButtons(t *testing.T) {
	t.Parallel()
	c, mt := newTestClient(t, 115200)
	require.NoError(t, c.PressButtons(ButtonClean|ButtonDock))
	assert.Equal(t, []byte{165, 0x05}, mt.TakeWritten())
}

func TestSchedule(t *testing.T) {
	t.Parallel()
	c, mt := newTestClient(t, 115200)

	var days [7]*DayTime
	days[1] = &DayTime{Hour: 10, Minute: 30}
	require.NoError(t, c.Schedule(days))
	assert.Equal(t, []byte{167, 0x02, 0, 0, 10, 30, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, mt.TakeWritten())

	// All nil clears the schedule.
	require.NoError(t, c.Schedule([7]*DayTime{}))
	assert.Equal(t, []byte{167, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, mt.TakeWritten())

	days[1] = &DayTime{Hour: 24}
	require.Error(t, c.Schedule(days))
	assert.Empty(t, mt.Written())
}

func TestSetDayTime(t *testing.T) {
	t.Parallel()
	c, mt := newTestClient(t, 115200)
	require.NoError(t, c.SetDayTime(Tuesday, 9, 5))
	assert.Equal(t, []byte{168, 2, 9, 5}, mt.TakeWritten())

	require.Error(t, c.SetDayTime(Day(7), 0, 0))
	require.Error(t, c.SetDayTime(Monday, 24, 0))
	require.Error(t, c.SetDayTime(Monday, 0, 60))
	assert.Empty(t, mt.Written())
}

func TestNoteNumber(t *testing.T) {
	t.Parallel()
	n, err := NoteNumber("c4")
	require.NoError(t, err)
	assert.Equal(t, byte(60), n)

	n, err = NoteNumber("G2")
	require.NoError(t, err)
	assert.Equal(t, byte(43), n)

	n, err = NoteNumber("g#5")
	require.NoError(t, err)
	assert.Equal(t, byte(80), n)

	_, err = NoteNumber("c0")
	require.Error(t, err)
	_, err = NoteNumber("x4")
	require.Error(t, err)
	_, err = NoteNumber("")
	require.Error(t, err)
}

func TestSongAndPlay(t *testing.T) {
	t.Parallel()
	c, mt := newTestClient(t, 115200)

	d, err := c.Song(0, []Note{{60, 32}, {64, 32}})
	require.NoError(t, err)
	assert.Equal(t, time.Second, d)
	assert.Equal(t, []byte{140, 0, 2, 60, 32, 64, 32}, mt.TakeWritten())

	require.NoError(t, c.PlaySong(1))
	assert.Equal(t, []byte{141, 1}, mt.TakeWritten())

	_, err = c.Song(4, []Note{{60, 32}})
	require.Error(t, err)
	_, err = c.Song(0, nil)
	require.Error(t, err)
	_, err = c.Song(0, make([]Note, 17))
	require.Error(t, err)
	require.Error(t, c.PlaySong(-1))
	assert.Empty(t, mt.Written())
}
