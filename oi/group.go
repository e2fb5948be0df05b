package oi

import (
	"fmt"
	"strings"
)

// Record is an ordered field-name to value mapping produced by one
// group decode or one streaming frame. Field order is decode order.
// Never mutated after construction, owned by the caller.
type Record struct {
	fields []Field
	index  map[string]int
}

type Field struct {
	Name  string
	Value interface{}
}

func newRecord(capacity int) *Record {
	return &Record{
		fields: make([]Field, 0, capacity),
		index:  make(map[string]int, capacity),
	}
}

func (r *Record) append(name string, v interface{}) {
	r.index[name] = len(r.fields)
	r.fields = append(r.fields, Field{Name: name, Value: v})
}

func (r *Record) Len() int        { return len(r.fields) }
func (r *Record) Fields() []Field { return r.fields }

func (r *Record) Get(name string) (interface{}, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.fields[i].Value, true
}

func (r *Record) String() string {
	ss := make([]string, len(r.fields))
	for i, f := range r.fields {
		ss[i] = fmt.Sprintf("%s=%v", f.Name, f.Value)
	}
	return strings.Join(ss, " ")
}

// Layout is the decode plan for an ordered list of descriptors:
// groups flattened to scalars, byte offsets assigned in input order.
// Padding entries reserve offset space but are excluded from
// FieldNames and skipped during decode.
type Layout struct {
	Plan       []PlanEntry
	FieldNames []string
	TotalSize  int
}

type PlanEntry struct {
	Packet *Packet
	Offset int
}

func LayoutOf(packets ...*Packet) Layout {
	l := Layout{}
	for _, p := range packets {
		for _, s := range p.Scalars() {
			l.Plan = append(l.Plan, PlanEntry{Packet: s, Offset: l.TotalSize})
			l.TotalSize += s.size
			if s.Kind != KindPadding {
				l.FieldNames = append(l.FieldNames, s.Name)
			}
		}
	}
	return l
}

// DecodeList decodes a buffer holding the concatenated payloads of
// the given descriptors, in order, into a Record. The buffer length
// must match the layout exactly.
func DecodeList(packets []*Packet, b []byte) (*Record, error) {
	lay := LayoutOf(packets...)
	if len(b) != lay.TotalSize {
		id := PacketID(0)
		if len(packets) == 1 {
			id = packets[0].ID
		}
		return nil, MalformedDataError{ID: id,
			Reason: fmt.Sprintf("group length expected=%d actual=%d", lay.TotalSize, len(b))}
	}
	rec := newRecord(len(lay.FieldNames))
	for _, pe := range lay.Plan {
		if pe.Packet.Kind == KindPadding {
			continue
		}
		v, err := pe.Packet.Decode(b[pe.Offset : pe.Offset+pe.Packet.size])
		if err != nil {
			return nil, err
		}
		rec.append(pe.Packet.Name, v)
	}
	return rec, nil
}
