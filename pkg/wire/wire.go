// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package wire encodes commitments, proofs and session identifiers as ordered
// tuples of fixed-width big-endian fields.
//
// Every field is framed as a protobuf length-delimited record whose field
// number is its position in the tuple, starting at 1.
package wire

import (
	"errors"
	"fmt"

	"MPC_PRESIGN/internal/params"
	"MPC_PRESIGN/pkg/BigInt"
	"MPC_PRESIGN/pkg/math/curve"
	"google.golang.org/protobuf/encoding/protowire"
)

var (
	ErrOverflow     = errors.New("wire: value does not fit its field")
	ErrFieldSize    = errors.New("wire: field has unexpected length")
	ErrFieldOrder   = errors.New("wire: field out of order")
	ErrTrailingData = errors.New("wire: trailing data after last field")
	ErrTruncated    = errors.New("wire: truncated tuple")
)

// Encoder appends fields to a tuple. The first error is sticky and returned by Bytes.
type Encoder struct {
	buf  []byte
	next protowire.Number
	err  error
}

// NewEncoder returns an empty tuple encoder.
func NewEncoder() *Encoder {
	return &Encoder{next: 1}
}

func (e *Encoder) append(b []byte) {
	if e.err != nil {
		return
	}
	e.buf = protowire.AppendTag(e.buf, e.next, protowire.BytesType)
	e.buf = protowire.AppendBytes(e.buf, b)
	e.next++
}

func (e *Encoder) fail(err error) {
	if e.err == nil {
		e.err = fmt.Errorf("field %d: %w", e.next, err)
	}
}

// Raw appends b unchanged.
func (e *Encoder) Raw(b []byte) *Encoder {
	e.append(b)
	return e
}

// Nat appends a non negative integer as size big endian bytes.
func (e *Encoder) Nat(x *BigInt.Nat, size int) *Encoder {
	if x == nil || x.Data == nil {
		e.fail(BigInt.ErrNilData)
		return e
	}
	if x.GetSign() < 0 || x.BitLen() > 8*size {
		e.fail(ErrOverflow)
		return e
	}
	e.append(x.FillBytes(make([]byte, size)))
	return e
}

// Int appends a signed integer as one sign byte followed by size bytes of magnitude.
func (e *Encoder) Int(x *BigInt.Nat, size int) *Encoder {
	if x == nil || x.Data == nil {
		e.fail(BigInt.ErrNilData)
		return e
	}
	if x.BitLen() > 8*size {
		e.fail(ErrOverflow)
		return e
	}
	out := make([]byte, 1+size)
	if x.GetSign() < 0 {
		out[0] = 1
	}
	x.Abs().FillBytes(out[1:])
	e.append(out)
	return e
}

// Scalar appends a curve scalar.
func (e *Encoder) Scalar(s curve.Scalar) *Encoder {
	if s == nil {
		e.fail(errors.New("nil scalar"))
		return e
	}
	b, err := s.MarshalBinary()
	if err != nil {
		e.fail(err)
		return e
	}
	e.append(b)
	return e
}

// Point appends a compressed curve point.
func (e *Encoder) Point(p curve.Point) *Encoder {
	if p == nil {
		e.fail(curve.ErrInvalidPoint)
		return e
	}
	b, err := p.MarshalBinary()
	if err != nil {
		e.fail(err)
		return e
	}
	e.append(b)
	return e
}

// Uint16 appends a two byte big endian value.
func (e *Encoder) Uint16(v uint16) *Encoder {
	e.append([]byte{byte(v >> 8), byte(v)})
	return e
}

// Bytes returns the encoded tuple, or the first error encountered.
func (e *Encoder) Bytes() ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.buf, nil
}

// Decoder reads the fields of a tuple in order. The first error is sticky and returned by Finish.
type Decoder struct {
	data []byte
	next protowire.Number
	err  error
}

// NewDecoder returns a decoder over data.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data, next: 1}
}

func (d *Decoder) fail(err error) {
	if d.err == nil {
		d.err = fmt.Errorf("field %d: %w", d.next, err)
	}
}

func (d *Decoder) field(size int) []byte {
	if d.err != nil {
		return nil
	}
	if len(d.data) == 0 {
		d.fail(ErrTruncated)
		return nil
	}
	num, typ, n := protowire.ConsumeTag(d.data)
	if n < 0 {
		d.fail(protowire.ParseError(n))
		return nil
	}
	if num != d.next || typ != protowire.BytesType {
		d.fail(ErrFieldOrder)
		return nil
	}
	v, m := protowire.ConsumeBytes(d.data[n:])
	if m < 0 {
		d.fail(protowire.ParseError(m))
		return nil
	}
	if size >= 0 && len(v) != size {
		d.fail(fmt.Errorf("have %d, need %d: %w", len(v), size, ErrFieldSize))
		return nil
	}
	d.data = d.data[n+m:]
	d.next++
	return v
}

// Raw reads a field of any length.
func (d *Decoder) Raw() []byte {
	v := d.field(-1)
	if v == nil {
		return nil
	}
	return append([]byte(nil), v...)
}

// Nat reads a non negative integer of exactly size bytes.
func (d *Decoder) Nat(size int) *BigInt.Nat {
	v := d.field(size)
	if v == nil {
		return nil
	}
	return new(BigInt.Nat).SetBytes(v)
}

// Int reads a signed integer with a magnitude of exactly size bytes.
func (d *Decoder) Int(size int) *BigInt.Nat {
	v := d.field(1 + size)
	if v == nil {
		return nil
	}
	x := new(BigInt.Nat).SetBytes(v[1:])
	switch v[0] {
	case 0:
	case 1:
		x.Neg(1)
	default:
		d.fail(errors.New("invalid sign byte"))
		return nil
	}
	return x
}

// Scalar reads a scalar of group.
func (d *Decoder) Scalar(group curve.Curve) curve.Scalar {
	v := d.field(params.BytesScalar)
	if v == nil {
		return nil
	}
	s := group.NewScalar()
	if err := s.UnmarshalBinary(v); err != nil {
		d.fail(err)
		return nil
	}
	return s
}

// Point reads a compressed point of group.
func (d *Decoder) Point(group curve.Curve) curve.Point {
	v := d.field(params.BytesPoint)
	if v == nil {
		return nil
	}
	p := group.NewPoint()
	if err := p.UnmarshalBinary(v); err != nil {
		d.fail(err)
		return nil
	}
	return p
}

// Uint16 reads a two byte big endian value.
func (d *Decoder) Uint16() uint16 {
	v := d.field(2)
	if v == nil {
		return 0
	}
	return uint16(v[0])<<8 | uint16(v[1])
}

// Finish returns the first error encountered, or ErrTrailingData if fields remain.
func (d *Decoder) Finish() error {
	if d.err != nil {
		return d.err
	}
	if len(d.data) != 0 {
		return ErrTrailingData
	}
	return nil
}

// More reports whether fields remain and no error occurred.
func (d *Decoder) More() bool {
	return d.err == nil && len(d.data) != 0
}
