package quack

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/simeonmiteff/quack-sidekick/pkg/field"
)

// Wire layout, little-endian throughout, self-describing (the receiver
// derives T from the encoded sums length rather than expecting it
// out-of-band):
//
//	uint32 T              number of power sums that follow
//	[T]elem                the power sums, one per slot
//	int32  count           wrapping insert-minus-remove count
//	uint8  hasLast         1 if a last-value field follows, else 0
//	elem   last            only present when hasLast == 1
//
// encoding/binary is used directly rather than a generic serialization
// library: the format's exact little-endian, length-prefixed,
// no-inverse-table-included byte layout is a narrow enough concern that
// hand-writing it against the standard library is clearer than fitting it
// through a general-purpose codec built for a different wire shape
// (protobuf's varints and tags, for instance, would not produce the fixed
// layout the wire format requires).

// MarshalBinary encodes q per the wire layout above.
func (q *Quack32) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, uint32(len(q.sums)))
	for _, s := range q.sums {
		binary.Write(buf, binary.LittleEndian, s.Value())
	}
	binary.Write(buf, binary.LittleEndian, q.count)
	if q.hasLast {
		buf.WriteByte(1)
		binary.Write(buf, binary.LittleEndian, q.last.Value())
	} else {
		buf.WriteByte(0)
	}
	return buf.Bytes(), nil
}

// UnmarshalQuack32 decodes a Quack32 previously produced by MarshalBinary.
// The threshold is derived from the encoded sums length; it does not need
// to be known in advance, but callers expecting a specific configuration
// must check Threshold() themselves and refuse a mismatch, per the wire
// stability contract of the protocol.
func UnmarshalQuack32(data []byte) (*Quack32, error) {
	r := bytes.NewReader(data)
	var t uint32
	if err := binary.Read(r, binary.LittleEndian, &t); err != nil {
		return nil, fmt.Errorf("quack: reading threshold: %w", err)
	}
	q := &Quack32{sums: make([]field.Element32, t)}
	for i := range q.sums {
		var v uint32
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return nil, fmt.Errorf("quack: reading sum %d: %w", i, err)
		}
		q.sums[i] = field.NewElement32(v)
	}
	if err := binary.Read(r, binary.LittleEndian, &q.count); err != nil {
		return nil, fmt.Errorf("quack: reading count: %w", err)
	}
	hasLast, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("quack: reading hasLast flag: %w", err)
	}
	if hasLast != 0 {
		var v uint32
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return nil, fmt.Errorf("quack: reading last value: %w", err)
		}
		q.last = field.NewElement32(v)
		q.hasLast = true
	}
	return q, nil
}

// MarshalBinary encodes q per the wire layout above.
func (q *Quack16) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, uint32(len(q.sums)))
	for _, s := range q.sums {
		binary.Write(buf, binary.LittleEndian, s.Value())
	}
	binary.Write(buf, binary.LittleEndian, q.count)
	if q.hasLast {
		buf.WriteByte(1)
		binary.Write(buf, binary.LittleEndian, q.last.Value())
	} else {
		buf.WriteByte(0)
	}
	return buf.Bytes(), nil
}

// UnmarshalQuack16 decodes a Quack16 previously produced by MarshalBinary.
func UnmarshalQuack16(data []byte) (*Quack16, error) {
	r := bytes.NewReader(data)
	var t uint32
	if err := binary.Read(r, binary.LittleEndian, &t); err != nil {
		return nil, fmt.Errorf("quack: reading threshold: %w", err)
	}
	q := &Quack16{sums: make([]field.Element16, t)}
	for i := range q.sums {
		var v uint16
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return nil, fmt.Errorf("quack: reading sum %d: %w", i, err)
		}
		q.sums[i] = field.NewElement16(v)
	}
	if err := binary.Read(r, binary.LittleEndian, &q.count); err != nil {
		return nil, fmt.Errorf("quack: reading count: %w", err)
	}
	hasLast, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("quack: reading hasLast flag: %w", err)
	}
	if hasLast != 0 {
		var v uint16
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return nil, fmt.Errorf("quack: reading last value: %w", err)
		}
		q.last = field.NewElement16(v)
		q.hasLast = true
	}
	return q, nil
}

// MarshalBinary encodes q per the wire layout above. Sums are stored as
// plain (non-Montgomery) integers on the wire so the format does not leak
// the accumulating representation's internal choice of R.
func (q *Quack64) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, uint32(len(q.sums)))
	for _, s := range q.sums {
		binary.Write(buf, binary.LittleEndian, s.FromMontgomery64())
	}
	binary.Write(buf, binary.LittleEndian, q.count)
	if q.hasLast {
		buf.WriteByte(1)
		binary.Write(buf, binary.LittleEndian, q.last.FromMontgomery64())
	} else {
		buf.WriteByte(0)
	}
	return buf.Bytes(), nil
}

// UnmarshalQuack64 decodes a Quack64 previously produced by MarshalBinary,
// converting each plain wire value back into Montgomery form.
func UnmarshalQuack64(data []byte) (*Quack64, error) {
	r := bytes.NewReader(data)
	var t uint32
	if err := binary.Read(r, binary.LittleEndian, &t); err != nil {
		return nil, fmt.Errorf("quack: reading threshold: %w", err)
	}
	q := &Quack64{sums: make([]field.MontgomeryElement64, t)}
	for i := range q.sums {
		var v uint64
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return nil, fmt.Errorf("quack: reading sum %d: %w", i, err)
		}
		q.sums[i] = field.ToMontgomery64(v)
	}
	if err := binary.Read(r, binary.LittleEndian, &q.count); err != nil {
		return nil, fmt.Errorf("quack: reading count: %w", err)
	}
	hasLast, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("quack: reading hasLast flag: %w", err)
	}
	if hasLast != 0 {
		var v uint64
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return nil, fmt.Errorf("quack: reading last value: %w", err)
		}
		q.last = field.ToMontgomery64(v)
		q.hasLast = true
	}
	return q, nil
}
