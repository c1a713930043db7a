// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package zkenc

import (
	"io"

	"MPC_PRESIGN/internal/params"
	"MPC_PRESIGN/pkg/BigInt"
	"MPC_PRESIGN/pkg/math/sample"
	"MPC_PRESIGN/pkg/paillier"
	"MPC_PRESIGN/pkg/pedersen"
	"MPC_PRESIGN/pkg/wire"
	"MPC_PRESIGN/pkg/zk"
)

const kind = zk.KindEnc

type Public struct {
	// K = Enc₀(k;ρ)
	K *paillier.Ciphertext

	Prover *paillier.PublicKey
	Aux    *pedersen.Parameters
}

type Private struct {
	// K = k ∈ 2ˡ = Dec₀(K)
	// plaintext of K
	K *BigInt.Nat

	// Rho = ρ
	// nonce of K
	Rho *BigInt.Nat
}

type Commitment struct {
	// S = sᵏtᵘ
	S *BigInt.Nat
	// A = Enc₀ (α, r)
	A *paillier.Ciphertext
	// C = sᵃtᵍ
	C *BigInt.Nat
}

// Secrets is the randomness behind a Commitment. It never leaves the prover.
type Secrets struct {
	// Alpha = α ∈ ± 2ˡ⁺ᵉ
	Alpha *BigInt.Nat
	// R = r ∈ ℤₙ₀ˣ
	R *BigInt.Nat
	// Mu = μ ∈ ± 2ˡ⋅N̂
	Mu *BigInt.Nat
	// Gamma = γ ∈ ± 2ˡ⁺ᵉ⋅N̂
	Gamma *BigInt.Nat
}

// Zeroize erases the secrets.
func (s *Secrets) Zeroize() {
	if s == nil {
		return
	}
	s.Alpha.Zeroize()
	s.R.Zeroize()
	s.Mu.Zeroize()
	s.Gamma.Zeroize()
}

type Response struct {
	// Z₁ = α + e⋅k
	Z1 *BigInt.Nat
	// Z₂ = r ⋅ ρᵉ mod N₀
	Z2 *BigInt.Nat
	// Z₃ = γ + e⋅μ
	Z3 *BigInt.Nat
}

type Proof struct {
	*Commitment
	*Response
}

func (p Public) valid() bool {
	return p.K != nil && p.Prover != nil && p.Aux != nil
}

// SampleAndCommit samples the proof's randomness from rand and commits to it.
func SampleAndCommit(rand io.Reader, public Public, private Private) (*Secrets, *Commitment, error) {
	if rand == nil {
		return nil, nil, zk.Fail(kind, zk.ErrRngRequired)
	}
	if !public.valid() || private.K == nil || private.Rho == nil {
		return nil, nil, zk.Fail(kind, zk.ErrMissingKey)
	}
	secrets := &Secrets{
		Alpha: sample.IntervalLEps(rand),
		R:     sample.UnitModN(rand, public.Prover.N()),
		Mu:    sample.IntervalLN(rand),
		Gamma: sample.IntervalLEpsN(rand),
	}
	commitment := &Commitment{
		S: public.Aux.Commit(private.K, secrets.Mu),
		A: public.Prover.EncWithNonce(secrets.Alpha, secrets.R),
		C: public.Aux.Commit(secrets.Alpha, secrets.Gamma),
	}
	return secrets, commitment, nil
}

// Challenge binds the public parameters, the statement, the commitment and the SSID.
func Challenge(ctx zk.Context, public Public, commitment *Commitment) (*BigInt.Nat, error) {
	return ctx.Challenge(public.Aux, public.Prover, public.K,
		commitment.S, commitment.A, commitment.C)
}

// Prove computes
//
//	z1 = α + e⋅k
//	z2 = r⋅ρᵉ (mod N₀)
//	z3 = γ + e⋅μ
func Prove(public Public, private Private, secrets *Secrets, e *BigInt.Nat) *Response {
	N := public.Prover.N()

	z1 := new(BigInt.Nat).Mul(e, private.K, -1)
	z1.Add(z1, secrets.Alpha, -1)

	z2 := public.Prover.Modulus().ExpI(private.Rho, e)
	z2.ModMul(z2, secrets.R, N)

	z3 := new(BigInt.Nat).Mul(e, secrets.Mu, -1)
	z3.Add(z3, secrets.Gamma, -1)

	return &Response{Z1: z1, Z2: z2, Z3: z3}
}

// Verify checks the response against the commitment for challenge e.
//
// Equation 1 is Enc₀(z₁;z₂) = A ⊕ (e ⊙ K), equation 2 is sᶻ¹tᶻ³ = C⋅Sᵉ (mod N̂).
func Verify(public Public, commitment *Commitment, e *BigInt.Nat, z *Response) error {
	if !public.valid() {
		return zk.Fail(kind, zk.ErrMissingKey)
	}
	if commitment == nil || z == nil || e == nil ||
		commitment.S == nil || commitment.A == nil || commitment.C == nil ||
		z.Z1 == nil || z.Z2 == nil || z.Z3 == nil {
		return zk.Fail(kind, zk.ErrNilProof)
	}
	if !BigInt.IsInIntervalLEps(z.Z1) {
		return zk.InvalidRange(kind)
	}
	if !public.Prover.ValidateCiphertexts(commitment.A) ||
		!BigInt.IsValidNatModN(public.Prover.N(), z.Z2) ||
		!BigInt.IsValidNatModN(public.Aux.N(), commitment.S, commitment.C) {
		return zk.InvalidRange(kind)
	}

	{
		// lhs = Enc(z₁;z₂)
		lhs := public.Prover.EncWithNonce(z.Z1, z.Z2)
		// rhs = (e ⊙ K) ⊕ A
		rhs := public.K.Clone().Mul(public.Prover, e).Add(public.Prover, commitment.A)
		if !lhs.Equal(rhs) {
			return zk.InvalidProof(kind, 1)
		}
	}

	if !public.Aux.Verify(z.Z1, z.Z3, e, commitment.C, commitment.S) {
		return zk.InvalidProof(kind, 2)
	}
	return nil
}

// NewProof runs SampleAndCommit, Challenge and Prove, and erases the secrets.
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
		Commitment: commitment,
		Response:   Prove(public, private, secrets, e),
	}, nil
}

// Verify recomputes the challenge and checks the proof.
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

// MarshalBinary encodes the proof as a tuple (S, A, C, z₁, z₂, z₃).
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
		Nat(p.C, params.BytesIntModN).
		Int(p.Z1, params.BytesIntLEps).
		Nat(p.Z2, params.BytesPaillier).
		Int(p.Z3, params.BytesIntLEpsN).
		Bytes()
}

func (p *Proof) UnmarshalBinary(data []byte) error {
	d := wire.NewDecoder(data)
	S := d.Nat(params.BytesIntModN)
	a := d.Raw()
	C := d.Nat(params.BytesIntModN)
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
	p.Commitment = &Commitment{S: S, A: A, C: C}
	p.Response = &Response{Z1: z1, Z2: z2, Z3: z3}
	return nil
}
