package oi

// Sensor packet registry. Built once from the literal table below,
// read-only afterwards, safe to share by reference.

type PacketID uint8

type Kind uint8

const (
	KindInt     Kind = iota + 1 // signed big-endian integer
	KindUint                    // unsigned big-endian integer
	KindBool                    // 1 byte, strictly 0 or 1
	KindFlags                   // 1-byte bit-flag set
	KindState                   // 1-byte discrete state
	KindPadding                 // reserved wire bytes, no value
	KindGroup                   // concatenation of member packets
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindBool:
		return "bool"
	case KindFlags:
		return "flags"
	case KindState:
		return "state"
	case KindPadding:
		return "padding"
	case KindGroup:
		return "group"
	}
	return "invalid"
}

// Packet describes how one packet id looks on the wire. Immutable
// after registry init.
type Packet struct {
	ID   PacketID
	Name string // field name in group records, empty for padding
	Kind Kind

	width   uint8                          // scalar wire bytes, 1 or 2
	enum    func(byte) (interface{}, bool) // KindFlags/KindState byte -> typed value
	members []PacketID                     // KindGroup wire order

	size int       // memoized at init, groups included
	flat []*Packet // group members expanded to scalars, in wire order
}

func (p *Packet) Size() int { return p.size }

// Scalars returns the flattened scalar descriptors in wire order:
// the packet itself for scalar kinds, the expanded member list for
// groups. Padding members are included, they occupy wire bytes.
func (p *Packet) Scalars() []*Packet {
	if p.Kind == KindGroup {
		return p.flat
	}
	return []*Packet{p}
}

var registry = []Packet{
	{ID: 7, Name: "bumps_wheel_drops", Kind: KindFlags,
		enum: func(b byte) (interface{}, bool) { v := BumpsWheelDrops(b); return v, v.Valid() }},
	{ID: 8, Name: "wall", Kind: KindBool},
	{ID: 9, Name: "cliff_left", Kind: KindBool},
	{ID: 10, Name: "cliff_front_left", Kind: KindBool},
	{ID: 11, Name: "cliff_front_right", Kind: KindBool},
	{ID: 12, Name: "cliff_right", Kind: KindBool},
	{ID: 13, Name: "virtual_wall", Kind: KindBool},
	{ID: 14, Name: "wheel_overcurrents", Kind: KindFlags,
		enum: func(b byte) (interface{}, bool) { v := WheelOvercurrents(b); return v, v.Valid() }},
	{ID: 15, Name: "dirt_detect", Kind: KindUint, width: 1},
	{ID: 16, Kind: KindPadding, width: 1}, // reserved, only inside groups
	{ID: 17, Name: "infrared_omni", Kind: KindUint, width: 1},
	{ID: 18, Name: "buttons", Kind: KindFlags,
		enum: func(b byte) (interface{}, bool) { v := Buttons(b); return v, v.Valid() }},
	{ID: 19, Name: "distance", Kind: KindInt, width: 2},
	{ID: 20, Name: "angle", Kind: KindInt, width: 2},
	{ID: 21, Name: "charging_state", Kind: KindState,
		enum: func(b byte) (interface{}, bool) { v := ChargingState(b); return v, v.Valid() }},
	{ID: 22, Name: "voltage", Kind: KindUint, width: 2},
	{ID: 23, Name: "current", Kind: KindInt, width: 2},
	{ID: 24, Name: "temperature", Kind: KindInt, width: 1},
	{ID: 25, Name: "battery_charge", Kind: KindUint, width: 2},
	{ID: 26, Name: "battery_capacity", Kind: KindUint, width: 2},
	{ID: 27, Name: "wall_signal", Kind: KindUint, width: 2},
	{ID: 28, Name: "cliff_left_signal", Kind: KindUint, width: 2},
	{ID: 29, Name: "cliff_front_left_signal", Kind: KindUint, width: 2},
	{ID: 30, Name: "cliff_front_right_signal", Kind: KindUint, width: 2},
	{ID: 31, Name: "cliff_right_signal", Kind: KindUint, width: 2},
	{ID: 32, Kind: KindPadding, width: 1}, // reserved
	{ID: 33, Kind: KindPadding, width: 2}, // reserved
	{ID: 34, Name: "charging_sources", Kind: KindFlags,
		enum: func(b byte) (interface{}, bool) { v := ChargingSources(b); return v, v.Valid() }},
	{ID: 35, Name: "oi_mode", Kind: KindState,
		enum: func(b byte) (interface{}, bool) { v := Mode(b); return v, v.Valid() }},
	{ID: 36, Name: "song_number", Kind: KindUint, width: 1},
	{ID: 37, Name: "song_playing", Kind: KindBool},
	{ID: 38, Name: "stream_packets", Kind: KindUint, width: 1},
	{ID: 39, Name: "requested_velocity", Kind: KindInt, width: 2},
	{ID: 40, Name: "requested_radius", Kind: KindInt, width: 2},
	{ID: 41, Name: "requested_right_velocity", Kind: KindInt, width: 2},
	{ID: 42, Name: "requested_left_velocity", Kind: KindInt, width: 2},
	{ID: 43, Name: "left_encoder_counts", Kind: KindInt, width: 2},
	{ID: 44, Name: "right_encoder_counts", Kind: KindInt, width: 2},
	{ID: 45, Name: "light_bumper", Kind: KindFlags,
		enum: func(b byte) (interface{}, bool) { v := LightBumper(b); return v, v.Valid() }},
	{ID: 46, Name: "light_bump_left_signal", Kind: KindUint, width: 2},
	{ID: 47, Name: "light_bump_front_left_signal", Kind: KindUint, width: 2},
	{ID: 48, Name: "light_bump_center_left_signal", Kind: KindUint, width: 2},
	{ID: 49, Name: "light_bump_center_right_signal", Kind: KindUint, width: 2},
	{ID: 50, Name: "light_bump_front_right_signal", Kind: KindUint, width: 2},
	{ID: 51, Name: "light_bump_right_signal", Kind: KindUint, width: 2},
	{ID: 52, Name: "infrared_left", Kind: KindUint, width: 1},
	{ID: 53, Name: "infrared_right", Kind: KindUint, width: 1},
	{ID: 54, Name: "left_motor_current", Kind: KindInt, width: 2},
	{ID: 55, Name: "right_motor_current", Kind: KindInt, width: 2},
	{ID: 56, Name: "main_brush_current", Kind: KindInt, width: 2},
	{ID: 57, Name: "side_brush_current", Kind: KindInt, width: 2},
	{ID: 58, Name: "stasis", Kind: KindFlags,
		enum: func(b byte) (interface{}, bool) { v := Stasis(b); return v, v.Valid() }},

	{ID: 0, Name: "group_7_26", Kind: KindGroup, members: idRange(7, 26)},
	{ID: 1, Name: "group_7_16", Kind: KindGroup, members: idRange(7, 16)},
	{ID: 2, Name: "group_17_20", Kind: KindGroup, members: idRange(17, 20)},
	{ID: 3, Name: "group_21_26", Kind: KindGroup, members: idRange(21, 26)},
	{ID: 4, Name: "group_27_34", Kind: KindGroup, members: idRange(27, 34)},
	{ID: 5, Name: "group_35_42", Kind: KindGroup, members: idRange(35, 42)},
	{ID: 6, Name: "group_7_42", Kind: KindGroup, members: idRange(7, 42)},
	{ID: 100, Name: "all_sensors", Kind: KindGroup, members: idRange(7, 58)},
	{ID: 101, Name: "group_43_58", Kind: KindGroup, members: idRange(43, 58)},
	{ID: 106, Name: "group_46_51", Kind: KindGroup, members: idRange(46, 51)},
	{ID: 107, Name: "group_54_58", Kind: KindGroup, members: idRange(54, 58)},
}

var byID [256]*Packet
var byName = make(map[string]*Packet, len(registry))

func idRange(lo, hi PacketID) []PacketID {
	ids := make([]PacketID, 0, hi-lo+1)
	for id := lo; id <= hi; id++ {
		ids = append(ids, id)
	}
	return ids
}

func init() {
	for i := range registry {
		p := &registry[i]
		if byID[p.ID] != nil {
			panic("oi: duplicate packet id in registry")
		}
		byID[p.ID] = p
		if p.Name != "" {
			byName[p.Name] = p
		}
		if p.Kind != KindGroup {
			p.size = int(p.scalarWidth())
		}
	}
	// Group sizes depend on member scalars, resolve in second pass.
	for i := range registry {
		p := &registry[i]
		if p.Kind != KindGroup {
			continue
		}
		p.flat = make([]*Packet, 0, len(p.members))
		for _, id := range p.members {
			m := byID[id]
			if m == nil {
				panic("oi: group member id not in registry")
			}
			// registry groups reference scalars only; nested groups
			// would expand here via m.Scalars()
			p.flat = append(p.flat, m.Scalars()...)
		}
		p.size = 0
		for _, m := range p.flat {
			p.size += m.size
		}
	}
}

func (p *Packet) scalarWidth() uint8 {
	switch p.Kind {
	case KindBool, KindFlags, KindState:
		return 1
	case KindInt, KindUint, KindPadding:
		return p.width
	}
	panic("oi: scalarWidth on group")
}

// Resolve returns the descriptor for a packet id.
func Resolve(id PacketID) (*Packet, error) {
	if p := byID[id]; p != nil {
		return p, nil
	}
	return nil, UnknownPacketError{ID: id}
}

// ResolveName returns the descriptor for a symbolic packet name.
func ResolveName(name string) (*Packet, error) {
	if p, ok := byName[name]; ok {
		return p, nil
	}
	return nil, UnknownPacketError{Name: name}
}

func ResolveAll(ids []PacketID) ([]*Packet, error) {
	ps := make([]*Packet, len(ids))
	for i, id := range ids {
		p, err := Resolve(id)
		if err != nil {
			return nil, err
		}
		ps[i] = p
	}
	return ps, nil
}

func ResolveNames(names []string) ([]*Packet, error) {
	ps := make([]*Packet, len(names))
	for i, name := range names {
		p, err := ResolveName(name)
		if err != nil {
			return nil, err
		}
		ps[i] = p
	}
	return ps, nil
}
