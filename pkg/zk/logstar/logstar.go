// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package zklogstar

import (
	"io"

	"MPC_PRESIGN/internal/params"
	"MPC_PRESIGN/pkg/BigInt"
	"MPC_PRESIGN/pkg/math/curve"
	"MPC_PRESIGN/pkg/math/sample"
	"MPC_PRESIGN/pkg/paillier"
	"MPC_PRESIGN/pkg/pedersen"
	"MPC_PRESIGN/pkg/wire"
	"MPC_PRESIGN/pkg/zk"
)

const kind = zk.KindLogStar

type Public struct {
	// C = Enc₀(x;ρ)
	// Encryption of x under the prover's key
	C *paillier.Ciphertext

	// X = x⋅G
	X curve.Point

	// G is the base point of the curve.
	// If G = nil, the default base point is used.
	G curve.Point

	Prover *paillier.PublicKey
	Aux    *pedersen.Parameters
}

type Private struct {
	// X is the plaintext of C and the discrete log of X.
	X *BigInt.Nat

	// Rho = ρ is nonce used to encrypt C.
	Rho *BigInt.Nat
}

type Commitment struct {
	// S = sˣtᵘ (mod N)
	S *BigInt.Nat
	// A = Enc₀(alpha; r)
	A *paillier.Ciphertext
	// Y = α⋅G
	Y curve.Point
	// D = sᵃtᵍ (mod N)
	D *BigInt.Nat
}

// Secrets is the randomness behind a Commitment.
type Secrets struct {
	Alpha, R, Mu, Gamma *BigInt.Nat
}

func (s *Secrets) Zeroize() {
	if s == nil {
		return
	}
	for _, x := range []*BigInt.Nat{s.Alpha, s.R, s.Mu, s.Gamma} {
		x.Zeroize()
	}
}

type Response struct {
	// Z1 = α + e x
	Z1 *BigInt.Nat
	// Z2 = r ρᵉ mod N
	Z2 *BigInt.Nat
	// Z3 = γ + e μ
	Z3 *BigInt.Nat
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
	return p.C != nil && p.X != nil && p.Prover != nil && p.Aux != nil
}

func (p Public) base() curve.Point {
	if p.G == nil {
		return p.X.Curve().NewBasePoint()
	}
	return p.G
}

func SampleAndCommit(rand io.Reader, public Public, private Private) (*Secrets, *Commitment, error) {
	if rand == nil {
		return nil, nil, zk.Fail(kind, zk.ErrRngRequired)
	}
	if !public.valid() || private.X == nil || private.Rho == nil {
		return nil, nil, zk.Fail(kind, zk.ErrMissingKey)
	}
	group := public.X.Curve()
	secrets := &Secrets{
		Alpha: sample.IntervalLEps(rand),
		R:     sample.UnitModN(rand, public.Prover.N()),
		Mu:    sample.IntervalLN(rand),
		Gamma: sample.IntervalLEpsN(rand),
	}
	commitment := &Commitment{
		S: public.Aux.Commit(private.X, secrets.Mu),
		A: public.Prover.EncWithNonce(secrets.Alpha, secrets.R),
		Y: group.NewScalar().SetNat(secrets.Alpha).Act(public.base()),
		D: public.Aux.Commit(secrets.Alpha, secrets.Gamma),
	}
	return secrets, commitment, nil
}

func Challenge(ctx zk.Context, public Public, commitment *Commitment) (*BigInt.Nat, error) {
	return ctx.Challenge(public.Aux, public.Prover, public.C, public.X, public.base(),
		commitment.S, commitment.A, commitment.Y, commitment.D)
}

func Prove(public Public, private Private, secrets *Secrets, e *BigInt.Nat) *Response {
	N0 := public.Prover.N()

	// z1 = α + e x,
	z1 := new(BigInt.Nat).Mul(e, private.X, -1)
	z1.Add(z1, secrets.Alpha, -1)

	// z2 = r ρᵉ mod N₀,
	z2 := public.Prover.Modulus().ExpI(private.Rho, e)
	z2.ModMul(z2, secrets.R, N0)

	// z3 = γ + e μ,
	z3 := new(BigInt.Nat).Mul(e, secrets.Mu, -1)
	z3.Add(z3, secrets.Gamma, -1)

	return &Response{Z1: z1, Z2: z2, Z3: z3}
}

// Verify checks, in order,
//
//  1. Enc₀(z₁;z₂) = A ⊕ (e ⊙ C)
//  2. z₁⋅G = Y + e⋅X
//  3. sᶻ¹tᶻ³ = D⋅Sᵉ (mod N̂)
func Verify(public Public, commitment *Commitment, e *BigInt.Nat, z *Response) error {
	if !public.valid() {
		return zk.Fail(kind, zk.ErrMissingKey)
	}
	if commitment == nil || z == nil || e == nil ||
		commitment.S == nil || commitment.A == nil || commitment.Y == nil || commitment.D == nil ||
		z.Z1 == nil || z.Z2 == nil || z.Z3 == nil {
		return zk.Fail(kind, zk.ErrNilProof)
	}
	if !BigInt.IsInIntervalLEps(z.Z1) {
		return zk.InvalidRange(kind)
	}
	if !public.Prover.ValidateCiphertexts(commitment.A) ||
		!BigInt.IsValidNatModN(public.Prover.N(), z.Z2) ||
		!BigInt.IsValidNatModN(public.Aux.N(), commitment.S, commitment.D) ||
		commitment.Y.IsIdentity() {
		return zk.InvalidRange(kind)
	}

	prover := public.Prover
	group := public.X.Curve()

	{
		// lhs = Enc(z₁;z₂)
		lhs := prover.EncWithNonce(z.Z1, z.Z2)
		// rhs = (e ⊙ C) ⊕ A
		rhs := public.C.Clone().Mul(prover, e).Add(prover, commitment.A)
		if !lhs.Equal(rhs) {
			return zk.InvalidProof(kind, 1)
		}
	}

	{
		// lhs = [z₁]G
		lhs := group.NewScalar().SetNat(z.Z1).Act(public.base())
		// rhs = Y + [e]X
		rhs := group.NewScalar().SetNat(e).Act(public.X).Add(commitment.Y)
		if !lhs.Equal(rhs) {
			return zk.InvalidProof(kind, 2)
		}
	}

	if !public.Aux.Verify(z.Z1, z.Z3, e, commitment.D, commitment.S) {
		return zk.InvalidProof(kind, 3)
	}
	return nil
}

func NewProof(rand io.Reader, ctx zk.Context, public Public, private Private) (*Proof, error) {
	secrets, commitment, err := SampleAndCommit(rand, public, private)
	if err != nil {
		return nil, err
	}
	defer secrets.Zeroize()

	e, err := Challenge(ctx, public, commitment)
	if err != nil {
		return nil, err
	}
	return &Proof{
		group:      public.X.Curve(),
		Commitment: commitment,
		Response:   Prove(public, private, secrets, e),
	}, nil
}

func (p *Proof) Verify(ctx zk.Context, public Public) error {
	if p == nil || p.Commitment == nil || p.Response == nil {
		return zk.Fail(kind, zk.ErrNilProof)
	}
	if !public.valid() {
		return zk.Fail(kind, zk.ErrMissingKey)
	}
	e, err := Challenge(ctx, public, p.Commitment)
	if err != nil {
		return err
	}
	return Verify(public, p.Commitment, e, p.Response)
}

// Instance binds a proof to its statement.
type Instance struct {
	Public Public
	Proof  *Proof
}

func (Instance) Kind() zk.Kind { return kind }

func (i Instance) Verify(ctx zk.Context) error { return i.Proof.Verify(ctx, i.Public) }

// MarshalBinary encodes the proof as a tuple (S, A, Y, D, z₁, z₂, z₃).
func (p *Proof) MarshalBinary() ([]byte, error) {
	if p == nil || p.Commitment == nil || p.Response == nil || p.A == nil {
		return nil, zk.Fail(kind, zk.ErrNilProof)
	}
	a, err := p.A.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return wire.NewEncoder().
		Nat(p.S, params.BytesIntModN).
		Raw(a).
		Point(p.Y).
		Nat(p.D, params.BytesIntModN).
		Int(p.Z1, params.BytesIntLEps).
		Nat(p.Z2, params.BytesPaillier).
		Int(p.Z3, params.BytesIntLEpsN).
		Bytes()
}

// UnmarshalBinary decodes a proof; the receiver must come from Empty.
func (p *Proof) UnmarshalBinary(data []byte) error {
	if p.group == nil {
		return zk.Fail(kind, zk.ErrMissingKey)
	}
	d := wire.NewDecoder(data)
	S := d.Nat(params.BytesIntModN)
	a := d.Raw()
	Y := d.Point(p.group)
	D := d.Nat(params.BytesIntModN)
	z1 := d.Int(params.BytesIntLEps)
	z2 := d.Nat(params.BytesPaillier)
	z3 := d.Int(params.BytesIntLEpsN)
	if err := d.Finish(); err != nil {
		return err
	}
	A := new(paillier.Ciphertext)
	if err := A.UnmarshalBinary(a); err != nil {
		return err
	}
	p.Commitment = &Commitment{S: S, A: A, Y: Y, D: D}
	p.Response = &Response{Z1: z1, Z2: z2, Z3: z3}
	return nil
}
