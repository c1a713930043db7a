// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package zkdleq proves knowledge of (s, l) with V = s⋅G + l⋅H and, when a third
// base R is given, that S = s⋅R uses the same s.
//
// The challenge binds the prover's ID and optional extra data instead of an SSID.
package zkdleq

import (
	"io"

	"MPC_PRESIGN/pkg/BigInt"
	"MPC_PRESIGN/pkg/hash"
	"MPC_PRESIGN/pkg/math/curve"
	"MPC_PRESIGN/pkg/math/sample"
	"MPC_PRESIGN/pkg/party"
	"MPC_PRESIGN/pkg/wire"
	"MPC_PRESIGN/pkg/zk"
)

const kind = zk.KindDLEQ

type Public struct {
	// G, H are the bases of V.
	G, H curve.Point
	// V = s⋅G + l⋅H
	V curve.Point

	// R is the verifier supplied base of the linked variant, nil otherwise.
	R curve.Point
	// S = s⋅R
	S curve.Point
}

// Linked reports whether the statement includes S = s⋅R.
func (p Public) Linked() bool {
	return p.R != nil
}

type Private struct {
	S, L curve.Scalar
}

// Binding is what the challenge is bound to besides the statement.
type Binding struct {
	ID  party.ID
	Aux []byte
}

type Commitment struct {
	// C = a⋅G + b⋅H
	C curve.Point
	// Alpha = a⋅R, nil when not linked
	Alpha curve.Point
}

type Secrets struct {
	A, B curve.Scalar
}

func (s *Secrets) Zeroize() {
	if s == nil {
		return
	}
	s.A.Zeroize()
	s.B.Zeroize()
}

type Response struct {
	// T = a − e⋅s (mod q)
	T curve.Scalar
	// U = b − e⋅l (mod q)
	U curve.Scalar
}

type Proof struct {
	group curve.Curve
	*Commitment
	*Response
}

// Empty returns a proof ready to be unmarshalled.
func Empty(group curve.Curve) *Proof {
	return &Proof{group: group}
}

func (p Public) valid() bool {
	if p.G == nil || p.H == nil || p.V == nil {
		return false
	}
	return (p.R == nil) == (p.S == nil)
}

func SampleAndCommit(rand io.Reader, public Public) (*Secrets, *Commitment, error) {
	if rand == nil {
		return nil, nil, zk.Fail(kind, zk.ErrRngRequired)
	}
	if !public.valid() {
		return nil, nil, zk.Fail(kind, zk.ErrMissingKey)
	}
	group := public.G.Curve()
	s := &Secrets{
		A: sample.Scalar(rand, group),
		B: sample.Scalar(rand, group),
	}
	c := &Commitment{
		C: s.A.Act(public.G).Add(s.B.Act(public.H)),
	}
	if public.Linked() {
		c.Alpha = s.A.Act(public.R)
	}
	return s, c, nil
}

// Challenge returns e ∈ [0, q).
func Challenge(binding Binding, public Public, c *Commitment) (*BigInt.Nat, error) {
	h := hash.New()
	if err := h.WriteAny(public.G, public.H, public.V, c.C); err != nil {
		return nil, err
	}
	if public.Linked() {
		if err := h.WriteAny(public.R, public.S, c.Alpha); err != nil {
			return nil, err
		}
	}
	if err := h.WriteAny(binding.ID, binding.Aux); err != nil {
		return nil, err
	}
	return h.Challenge(public.G.Curve().Order()), nil
}

func Prove(private Private, secrets *Secrets, e *BigInt.Nat) *Response {
	group := private.S.Curve()
	eScalar := group.NewScalar().SetNat(e)
	// t = a − e⋅s
	t := group.NewScalar().Set(eScalar).Mul(private.S).Negate().Add(secrets.A)
	// u = b − e⋅l
	u := group.NewScalar().Set(eScalar).Mul(private.L).Negate().Add(secrets.B)
	return &Response{T: t, U: u}
}

// Verify checks t⋅G + u⋅H + e⋅V = C (equation 1) and, if linked, t⋅R + e⋅S = Alpha (equation 2).
func Verify(public Public, c *Commitment, e *BigInt.Nat, z *Response) error {
	if !public.valid() {
		return zk.Fail(kind, zk.ErrMissingKey)
	}
	if c == nil || z == nil || e == nil || c.C == nil || z.T == nil || z.U == nil ||
		(public.Linked() && c.Alpha == nil) {
		return zk.Fail(kind, zk.ErrNilProof)
	}
	group := public.G.Curve()
	eScalar := group.NewScalar().SetNat(e)

	lhs := z.T.Act(public.G).Add(z.U.Act(public.H)).Add(eScalar.Act(public.V))
	if !lhs.Equal(c.C) {
		return zk.InvalidProof(kind, 1)
	}
	if public.Linked() {
		lhs = z.T.Act(public.R).Add(eScalar.Act(public.S))
		if !lhs.Equal(c.Alpha) {
			return zk.InvalidProof(kind, 2)
		}
	}
	return nil
}

func NewProof(rand io.Reader, binding Binding, public Public, private Private) (*Proof, error) {
	secrets, commitment, err := SampleAndCommit(rand, public)
	if err != nil {
		return nil, err
	}
	defer secrets.Zeroize()

	e, err := Challenge(binding, public, commitment)
	if err != nil {
		return nil, err
	}
	return &Proof{
		group:      public.G.Curve(),
		Commitment: commitment,
		Response:   Prove(private, secrets, e),
	}, nil
}

func (p *Proof) Verify(binding Binding, public Public) error {
	if p == nil || p.Commitment == nil || p.Response == nil {
		return zk.Fail(kind, zk.ErrNilProof)
	}
	if !public.valid() {
		return zk.Fail(kind, zk.ErrMissingKey)
	}
	if public.Linked() && p.Alpha == nil {
		return zk.Fail(kind, zk.ErrNilProof)
	}
	e, err := Challenge(binding, public, p.Commitment)
	if err != nil {
		return err
	}
	return Verify(public, p.Commitment, e, p.Response)
}

// MarshalBinary encodes the proof as a tuple (C, t, u) or (C, t, u, Alpha).
func (p *Proof) MarshalBinary() ([]byte, error) {
	if p == nil || p.Commitment == nil || p.Response == nil {
		return nil, zk.Fail(kind, zk.ErrNilProof)
	}
	e := wire.NewEncoder().Point(p.C).Scalar(p.T).Scalar(p.U)
	if p.Alpha != nil {
		e.Point(p.Alpha)
	}
	return e.Bytes()
}

// UnmarshalBinary decodes a proof; the receiver must come from Empty.
func (p *Proof) UnmarshalBinary(data []byte) error {
	if p.group == nil {
		return zk.Fail(kind, zk.ErrMissingKey)
	}
	d := wire.NewDecoder(data)
	C := d.Point(p.group)
	t := d.Scalar(p.group)
	u := d.Scalar(p.group)
	var alpha curve.Point
	if d.More() {
		alpha = d.Point(p.group)
	}
	if err := d.Finish(); err != nil {
		return err
	}
	p.Commitment = &Commitment{C: C, Alpha: alpha}
	p.Response = &Response{T: t, U: u}
	return nil
}
