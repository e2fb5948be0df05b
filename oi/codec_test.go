package oi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustResolve(t testing.TB, id PacketID) *Packet {
	p, err := Resolve(id)
	require.NoError(t, err)
	return p
}

func TestDecodeSigned(t *testing.T) {
	t.Parallel()
	distance := mustResolve(t, 19)
	temperature := mustResolve(t, 24)

	v, err := distance.Decode([]byte{0xff, 0x38})
	require.NoError(t, err)
	assert.Equal(t, -200, v)

	v, err = distance.Decode([]byte{0x80, 0x00})
	require.NoError(t, err)
	assert.Equal(t, -32768, v)

	v, err = distance.Decode([]byte{0x7f, 0xff})
	require.NoError(t, err)
	assert.Equal(t, 32767, v)

	v, err = temperature.Decode([]byte{0x9c})
	require.NoError(t, err)
	assert.Equal(t, -100, v)
}

func TestDecodeUnsigned(t *testing.T) {
	t.Parallel()
	voltage := mustResolve(t, 22)
	v, err := voltage.Decode([]byte{0x3f, 0xd0})
	require.NoError(t, err)
	assert.Equal(t, 16336, v)

	dirt := mustResolve(t, 15)
	v, err = dirt.Decode([]byte{0xff})
	require.NoError(t, err)
	assert.Equal(t, 255, v)
}

func TestDecodeBoolStrict(t *testing.T) {
	t.Parallel()
	wall := mustResolve(t, 8)

	v, err := wall.Decode([]byte{0})
	require.NoError(t, err)
	assert.Equal(t, false, v)

	v, err = wall.Decode([]byte{1})
	require.NoError(t, err)
	assert.Equal(t, true, v)

	_, err = wall.Decode([]byte{2})
	require.Error(t, err)
	assert.IsType(t, MalformedDataError{}, err)
}

func TestDecodeEnums(t *testing.T) {
	t.Parallel()
	charging := mustResolve(t, 21)
	v, err := charging.Decode([]byte{3})
	require.NoError(t, err)
	assert.Equal(t, ChargeTrickle, v)

	_, err = charging.Decode([]byte{6})
	require.Error(t, err)
	assert.IsType(t, MalformedDataError{}, err)

	bumps := mustResolve(t, 7)
	v, err = bumps.Decode([]byte{0x05})
	require.NoError(t, err)
	assert.Equal(t, BumpRight|WheelDropRight, v)

	_, err = bumps.Decode([]byte{0x10})
	require.Error(t, err)
	assert.IsType(t, MalformedDataError{}, err)

	mode := mustResolve(t, 35)
	v, err = mode.Decode([]byte{2})
	require.NoError(t, err)
	assert.Equal(t, ModeSafe, v)
}

func TestDecodeLengthMismatch(t *testing.T) {
	t.Parallel()
	voltage := mustResolve(t, 22)
	_, err := voltage.Decode([]byte{0x3f})
	require.Error(t, err)
	assert.IsType(t, MalformedDataError{}, err)

	wall := mustResolve(t, 8)
	_, err = wall.Decode([]byte{0, 1})
	require.Error(t, err)
	assert.IsType(t, MalformedDataError{}, err)
}

func TestDecodePadding(t *testing.T) {
	t.Parallel()
	pad := mustResolve(t, 33)
	v, err := pad.Decode([]byte{0xde, 0xad})
	require.NoError(t, err)
	assert.Nil(t, v)
}

// Round trip over the full 1-byte domain of every enum-backed packet.
func TestCodecRoundTripEnumDomain(t *testing.T) {
	t.Parallel()
	for _, id := range []PacketID{7, 14, 18, 21, 34, 35, 45, 58} {
		p := mustResolve(t, id)
		for b := 0; b <= 255; b++ {
			v, err := p.Decode([]byte{byte(b)})
			if err != nil {
				continue
			}
			enc, err := p.Encode(v)
			require.NoError(t, err, "id=%d byte=%02x", id, b)
			assert.Equal(t, []byte{byte(b)}, enc, "id=%d byte=%02x", id, b)
		}
	}
}

func TestCodecRoundTripInts(t *testing.T) {
	t.Parallel()
	distance := mustResolve(t, 19)
	for _, x := range []int{-32768, -200, -1, 0, 1, 200, 32767} {
		enc, err := distance.Encode(x)
		require.NoError(t, err)
		v, err := distance.Decode(enc)
		require.NoError(t, err)
		assert.Equal(t, x, v)
	}

	temperature := mustResolve(t, 24)
	for _, x := range []int{-128, -1, 0, 127} {
		enc, err := temperature.Encode(x)
		require.NoError(t, err)
		v, err := temperature.Decode(enc)
		require.NoError(t, err)
		assert.Equal(t, x, v)
	}
}

func TestEncodeRangeErrors(t *testing.T) {
	t.Parallel()
	distance := mustResolve(t, 19)
	_, err := distance.Encode(32768)
	require.Error(t, err)

	voltage := mustResolve(t, 22)
	_, err = voltage.Encode(-1)
	require.Error(t, err)

	temperature := mustResolve(t, 24)
	_, err = temperature.Encode(200)
	require.Error(t, err)
}

func TestEncodeGroupUnsupported(t *testing.T) {
	t.Parallel()
	g := mustResolve(t, 0)
	_, err := g.Encode(nil)
	require.Error(t, err)
}

func TestEncodePadding(t *testing.T) {
	t.Parallel()
	pad := mustResolve(t, 33)
	enc, err := pad.Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0}, enc)
}
