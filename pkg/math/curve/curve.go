// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package curve

import (
	"encoding"
	"errors"

	"MPC_PRESIGN/pkg/BigInt"
)

// ErrInvalidPoint is returned when bytes do not decode to a point on the curve.
var ErrInvalidPoint = errors.New("curve: invalid point")

// Curve represents the group used for the signature.
type Curve interface {
	// NewPoint returns the identity element.
	NewPoint() Point
	// NewBasePoint returns the generator G.
	NewBasePoint() Point
	// NewScalar returns the scalar 0.
	NewScalar() Scalar
	Name() string
	ScalarBits() int
	SafeScalarBytes() int
	// Order returns q, the order of the group.
	Order() *BigInt.Nat
}

// Scalar is an element of ℤₚ. Arithmetic methods modify the receiver and return it.
type Scalar interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
	Curve() Curve
	Add(Scalar) Scalar
	Sub(Scalar) Scalar
	Mul(Scalar) Scalar
	Invert() Scalar
	Negate() Scalar
	IsZero() bool
	Equal(Scalar) bool
	Set(Scalar) Scalar
	SetNat(*BigInt.Nat) Scalar
	// Act computes s⋅P.
	Act(Point) Point
	// ActOnBase computes s⋅G.
	ActOnBase() Point
	Zeroize()
}

// Point is an element of the group. Arithmetic methods return a new Point.
type Point interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
	Curve() Curve
	Add(Point) Point
	Sub(Point) Point
	Set(Point) Point
	Negate() Point
	Equal(Point) bool
	IsIdentity() bool
	// XScalar returns the x coordinate of this point reduced modulo q.
	XScalar() Scalar
}

// MakeInt converts a scalar into a Nat in [0, q).
func MakeInt(s Scalar) *BigInt.Nat {
	bytes, err := s.MarshalBinary()
	if err != nil {
		panic(err)
	}
	return new(BigInt.Nat).SetBytes(bytes)
}

// FromHash converts a hash value to a scalar, following the ECDSA convention
// of keeping the leftmost ScalarBits bits.
func FromHash(group Curve, h []byte) Scalar {
	size := (group.ScalarBits() + 7) / 8
	if len(h) > size {
		h = h[:size]
	}
	n := new(BigInt.Nat).SetBytes(h)
	if excess := len(h)*8 - group.ScalarBits(); excess > 0 {
		n.Rsh(n, uint(excess), -1)
	}
	return group.NewScalar().SetNat(n)
}

// Sum adds all points together.
func Sum(group Curve, points ...Point) Point {
	out := group.NewPoint()
	for _, p := range points {
		out = out.Add(p)
	}
	return out
}
