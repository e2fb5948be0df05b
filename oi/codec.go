package oi

import (
	"encoding/binary"
	"fmt"

	"github.com/juju/errors"
)

// Decode converts exactly Size() wire bytes into the typed value for
// this descriptor: int for integer kinds, bool, or one of the enum
// types. Groups decode into *Record. Padding decodes to nil, the
// bytes are consumed and discarded.
//
// All multi-byte integers are big-endian. Boolean bytes outside {0,1}
// and bytes outside an enum's value set fail with MalformedDataError,
// no silent clamping.
func (p *Packet) Decode(b []byte) (interface{}, error) {
	if len(b) != p.size {
		return nil, MalformedDataError{ID: p.ID,
			Reason: fmt.Sprintf("length expected=%d actual=%d", p.size, len(b))}
	}
	switch p.Kind {
	case KindInt:
		if p.width == 1 {
			return int(int8(b[0])), nil
		}
		return int(int16(binary.BigEndian.Uint16(b))), nil
	case KindUint:
		if p.width == 1 {
			return int(b[0]), nil
		}
		return int(binary.BigEndian.Uint16(b)), nil
	case KindBool:
		switch b[0] {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
		return nil, MalformedDataError{ID: p.ID, Reason: fmt.Sprintf("bool byte=%02x", b[0])}
	case KindFlags, KindState:
		v, ok := p.enum(b[0])
		if !ok {
			return nil, MalformedDataError{ID: p.ID, Reason: fmt.Sprintf("enum byte=%02x", b[0])}
		}
		return v, nil
	case KindPadding:
		return nil, nil
	case KindGroup:
		return DecodeList(p.flat, b)
	}
	return nil, errors.Errorf("oi: code error decode kind=%d", p.Kind)
}

// Encode is the inverse of Decode for scalar kinds. Padding encodes
// to zero bytes of its width. Groups are not encodable, the protocol
// never sends group payloads host-to-device.
func (p *Packet) Encode(v interface{}) ([]byte, error) {
	switch p.Kind {
	case KindInt, KindUint:
		i, ok := toInt(v)
		if !ok {
			return nil, errors.NotValidf("oi: encode packet=%d value=%v", p.ID, v)
		}
		return p.encodeInt(i)
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, errors.NotValidf("oi: encode packet=%d value=%v", p.ID, v)
		}
		if b {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case KindFlags, KindState:
		b, ok := toByte(v)
		if !ok {
			return nil, errors.NotValidf("oi: encode packet=%d value=%v", p.ID, v)
		}
		if _, valid := p.enum(b); !valid {
			return nil, MalformedDataError{ID: p.ID, Reason: fmt.Sprintf("enum byte=%02x", b)}
		}
		return []byte{b}, nil
	case KindPadding:
		return make([]byte, p.width), nil
	}
	return nil, errors.NotSupportedf("oi: encode packet=%d kind=%s", p.ID, p.Kind)
}

func (p *Packet) encodeInt(i int64) ([]byte, error) {
	var lo, hi int64
	switch {
	case p.Kind == KindInt && p.width == 1:
		lo, hi = -128, 127
	case p.Kind == KindInt && p.width == 2:
		lo, hi = -32768, 32767
	case p.Kind == KindUint && p.width == 1:
		lo, hi = 0, 255
	default:
		lo, hi = 0, 65535
	}
	if i < lo || i > hi {
		return nil, MalformedDataError{ID: p.ID, Reason: fmt.Sprintf("value=%d out of range [%d,%d]", i, lo, hi)}
	}
	if p.width == 1 {
		return []byte{byte(i)}, nil
	}
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, uint16(i))
	return b, nil
}

func toInt(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	}
	return 0, false
}

func toByte(v interface{}) (byte, bool) {
	if w, ok := v.(wireByter); ok {
		return w.wireByte(), true
	}
	switch x := v.(type) {
	case byte:
		return x, true
	case int:
		if x >= 0 && x <= 255 {
			return byte(x), true
		}
	}
	return 0, false
}
