package oi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/roomba/log2"
)

func newTestClient(t testing.TB, baud int) (*Client, *MockTransport) {
	mt := NewMockTransport(baud)
	c := NewClient(mt, log2.NewTest(t, log2.LDebug))
	return c, mt
}

func TestRequestOne(t *testing.T) {
	t.Parallel()
	c, mt := newTestClient(t, 9600)
	var slept time.Duration
	c.sleep = func(d time.Duration) {
		slept = d
		// Response arrives during the transfer wait, after the
		// stale-input discard.
		mt.Feed([]byte{0x3f, 0xd0})
	}

	v, err := c.RequestOne(25)
	require.NoError(t, err)
	assert.Equal(t, 16336, v)

	assert.Equal(t, []byte{142, 25}, mt.TakeWritten())
	assert.Equal(t, 1, mt.Discards())
	assert.Equal(t, responseBudget(2, 9600)-requestSlackOne, slept)
	assert.Equal(t, uint32(1), c.Stat().Request)
	assert.False(t, c.LastRequest().IsZero())
}

func TestRequestOneName(t *testing.T) {
	t.Parallel()
	c, mt := newTestClient(t, 9600)
	c.sleep = func(time.Duration) { mt.FeedHex("9c") }

	v, err := c.RequestOneName("temperature")
	require.NoError(t, err)
	assert.Equal(t, -100, v)
	assert.Equal(t, []byte{142, 24}, mt.TakeWritten())
}

func TestRequestOneShortResponse(t *testing.T) {
	t.Parallel()
	c, mt := newTestClient(t, 9600)
	c.sleep = func(time.Duration) { mt.Feed([]byte{0x3f}) }

	_, err := c.RequestOne(25)
	require.Error(t, err)
	require.IsType(t, IncompleteResponseError{}, err)
	assert.Equal(t, 2, err.(IncompleteResponseError).Expect)
	assert.Equal(t, 1, err.(IncompleteResponseError).Actual)
	assert.True(t, IsTimeout(err))
	assert.Equal(t, uint32(1), c.Stat().Error)
}

func TestRequestOneSilence(t *testing.T) {
	t.Parallel()
	c, _ := newTestClient(t, 9600)
	c.sleep = func(time.Duration) {}

	_, err := c.RequestOne(7)
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
}

func TestRequestOneUnknown(t *testing.T) {
	t.Parallel()
	c, mt := newTestClient(t, 9600)
	_, err := c.RequestOne(59)
	require.Error(t, err)
	assert.IsType(t, UnknownPacketError{}, err)
	assert.Empty(t, mt.Written())
}

func TestRequestMany(t *testing.T) {
	t.Parallel()
	c, mt := newTestClient(t, 9600)
	var slept time.Duration
	c.sleep = func(d time.Duration) {
		slept = d
		mt.Feed([]byte{0x01, 0xff, 0x38})
	}

	rec, err := c.RequestMany(7, 19)
	require.NoError(t, err)
	assert.Equal(t, []byte{149, 2, 7, 19}, mt.TakeWritten())
	assert.Equal(t, responseBudget(3, 9600)-requestSlackMany, slept)

	v, ok := rec.Get("bumps_wheel_drops")
	require.True(t, ok)
	assert.Equal(t, BumpRight, v)
	v, ok = rec.Get("distance")
	require.True(t, ok)
	assert.Equal(t, -200, v)
}

func TestRequestManyNames(t *testing.T) {
	t.Parallel()
	c, mt := newTestClient(t, 9600)
	c.sleep = func(time.Duration) { mt.Feed([]byte{0x00, 0x14, 0x01}) }

	rec, err := c.RequestManyNames("voltage", "wall")
	require.NoError(t, err)
	assert.Equal(t, []byte{149, 2, 22, 8}, mt.TakeWritten())
	assert.Equal(t, "voltage=20 wall=true", rec.String())
}

func TestRequestManyGroup(t *testing.T) {
	t.Parallel()
	c, mt := newTestClient(t, 9600)
	c.sleep = func(time.Duration) {
		mt.Feed([]byte{
			0x00, 0x01, // infrared_omni=0 buttons=spot
			0x00, 0x64, // distance=100
			0xff, 0x9c, // angle=-100
		})
	}

	rec, err := c.RequestMany(2)
	require.NoError(t, err)
	assert.Equal(t, 4, rec.Len())
	v, _ := rec.Get("angle")
	assert.Equal(t, -100, v)
}

func TestRequestManyCountValidation(t *testing.T) {
	t.Parallel()
	c, mt := newTestClient(t, 9600)
	_, err := c.RequestMany()
	require.Error(t, err)
	assert.Empty(t, mt.Written())
}

func TestResponseBudget(t *testing.T) {
	t.Parallel()
	assert.Equal(t, time.Duration(0), responseBudget(10, 0))
	// 26 bytes at 115200 baud, 10 wire bits each.
	assert.Equal(t, 2256944*time.Nanosecond, responseBudget(26, 115200))
	assert.Equal(t, time.Second, responseBudget(960, 9600))
}
