// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package zkaffp

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

const kind = zk.KindAffP

type Public struct {
	// Kv is a ciphertext encrypted with Nᵥ
	Kv *paillier.Ciphertext

	// Dv = (x ⨀ Kv) ⨁ Encᵥ(y;s)
	Dv *paillier.Ciphertext

	// Fp = Encₚ(y;r)
	Fp *paillier.Ciphertext

	// Xp = Encₚ(x;rₓ)
	Xp *paillier.Ciphertext

	// Prover = Nₚ
	// Verifier = Nᵥ
	Prover, Verifier *paillier.PublicKey
	Aux              *pedersen.Parameters
}

type Private struct {
	// X = x
	X *BigInt.Nat
	// Y = y
	Y *BigInt.Nat
	// S = s, nonce of Dv
	S *BigInt.Nat
	// Rx = rₓ, nonce of Xp
	Rx *BigInt.Nat
	// R = r, nonce of Fp
	R *BigInt.Nat
}

type Commitment struct {
	// A = (α ⊙ C) ⊕ Encᵥ(β, ρ)
	A *paillier.Ciphertext
	// Bₓ = Encₚ(α;ρₓ)
	Bx *paillier.Ciphertext
	// By = Encₚ(β, ρy)
	By *paillier.Ciphertext
	// E = sᵃ tᵍ (mod N)
	E *BigInt.Nat
	// S = sˣ tᵐ (mod N)
	S *BigInt.Nat
	// F = sᵇ tᵈ (mod N)
	F *BigInt.Nat
	// T = sʸ tᵘ (mod N)
	T *BigInt.Nat
}

type Secrets struct {
	Alpha, Beta         *BigInt.Nat
	Rho, RhoX, RhoY     *BigInt.Nat
	Gamma, M, Delta, Mu *BigInt.Nat
}

func (s *Secrets) Zeroize() {
	if s == nil {
		return
	}
	for _, x := range []*BigInt.Nat{s.Alpha, s.Beta, s.Rho, s.RhoX, s.RhoY, s.Gamma, s.M, s.Delta, s.Mu} {
		x.Zeroize()
	}
}

type Response struct {
	// Z1 = Z₁ = α + e⋅x
	Z1 *BigInt.Nat
	// Z2 = Z₂ = β + e⋅y
	Z2 *BigInt.Nat
	// Z3 = Z₃ = γ + e⋅m
	Z3 *BigInt.Nat
	// Z4 = Z₄ = δ + e⋅μ
	Z4 *BigInt.Nat
	// W = w = ρ⋅sᵉ (mod N₀)
	W *BigInt.Nat
	// Wx = wₓ = ρₓ⋅rₓᵉ (mod N₁)
	Wx *BigInt.Nat
	// Wy = wy = ρy⋅rᵉ (mod N₁)
	Wy *BigInt.Nat
}

type Proof struct {
	*Commitment
	*Response
}

func (p Public) valid() bool {
	return p.Kv != nil && p.Dv != nil && p.Fp != nil && p.Xp != nil &&
		p.Prover != nil && p.Verifier != nil && p.Aux != nil
}

func SampleAndCommit(rand io.Reader, public Public, private Private) (*Secrets, *Commitment, error) {
	if rand == nil {
		return nil, nil, zk.Fail(kind, zk.ErrRngRequired)
	}
	if !public.valid() || private.X == nil || private.Y == nil || private.S == nil || private.Rx == nil || private.R == nil {
		return nil, nil, zk.Fail(kind, zk.ErrMissingKey)
	}
	verifier, prover := public.Verifier, public.Prover

	s := &Secrets{
		Alpha: sample.IntervalLEps(rand),
		Beta:  sample.IntervalLPrimeEps(rand),
		Rho:   sample.UnitModN(rand, verifier.N()),
		RhoX:  sample.UnitModN(rand, prover.N()),
		RhoY:  sample.UnitModN(rand, prover.N()),
		Gamma: sample.IntervalLEpsN(rand),
		M:     sample.IntervalLN(rand),
		Delta: sample.IntervalLEpsN(rand),
		Mu:    sample.IntervalLN(rand),
	}

	// A = Encᵥ(β,ρ) ⊕ (α ⊙ Kv)
	cAlpha := public.Kv.Clone().Mul(verifier, s.Alpha)
	A := verifier.EncWithNonce(s.Beta, s.Rho).Add(verifier, cAlpha)

	return s, &Commitment{
		A:  A,
		Bx: prover.EncWithNonce(s.Alpha, s.RhoX),
		By: prover.EncWithNonce(s.Beta, s.RhoY),
		E:  public.Aux.Commit(s.Alpha, s.Gamma),
		S:  public.Aux.Commit(private.X, s.M),
		F:  public.Aux.Commit(s.Beta, s.Delta),
		T:  public.Aux.Commit(private.Y, s.Mu),
	}, nil
}

func Challenge(ctx zk.Context, public Public, commitment *Commitment) (*BigInt.Nat, error) {
	return ctx.Challenge(public.Aux, public.Prover, public.Verifier,
		public.Kv, public.Dv, public.Fp, public.Xp,
		commitment.A, commitment.Bx, commitment.By,
		commitment.E, commitment.S, commitment.F, commitment.T)
}

// Prove computes
//
//	z1 = α + e•x
//	z2 = β + e•y
//	z3 = γ + e•m
//	z4 = δ + e•μ
//	w  = ρ⋅sᵉ (mod N₀)
//	wx = ρₓ⋅rₓᵉ (mod N₁)
//	wy = ρy⋅rᵉ (mod N₁)
func Prove(public Public, private Private, s *Secrets, e *BigInt.Nat) *Response {
	z1 := new(BigInt.Nat).Mul(e, private.X, -1)
	z1.Add(z1, s.Alpha, -1)

	z2 := new(BigInt.Nat).Mul(e, private.Y, -1)
	z2.Add(z2, s.Beta, -1)

	z3 := new(BigInt.Nat).Mul(e, s.M, -1)
	z3.Add(z3, s.Gamma, -1)

	z4 := new(BigInt.Nat).Mul(e, s.Mu, -1)
	z4.Add(z4, s.Delta, -1)

	w := public.Verifier.Modulus().ExpI(private.S, e)
	w.ModMul(w, s.Rho, public.Verifier.N())

	wX := public.Prover.Modulus().ExpI(private.Rx, e)
	wX.ModMul(wX, s.RhoX, public.Prover.N())

	wY := public.Prover.Modulus().ExpI(private.R, e)
	wY.ModMul(wY, s.RhoY, public.Prover.N())

	return &Response{Z1: z1, Z2: z2, Z3: z3, Z4: z4, W: w, Wx: wX, Wy: wY}
}

// Verify checks, in order,
//
//  1. Encᵥ(z₂;w) ⊕ (z₁ ⊙ Kv) = A ⊕ (e ⊙ Dv)
//  2. Encₚ(z₁;wₓ) = Bₓ ⊕ (e ⊙ Xp)
//  3. Encₚ(z₂;wy) = By ⊕ (e ⊙ Fp)
//  4. sᶻ¹tᶻ³ = E⋅Sᵉ (mod N̂)
//  5. sᶻ²tᶻ⁴ = F⋅Tᵉ (mod N̂)
func Verify(public Public, c *Commitment, e *BigInt.Nat, z *Response) error {
	if !public.valid() {
		return zk.Fail(kind, zk.ErrMissingKey)
	}
	if c == nil || z == nil || e == nil ||
		c.A == nil || c.Bx == nil || c.By == nil || c.E == nil || c.S == nil || c.F == nil || c.T == nil ||
		z.Z1 == nil || z.Z2 == nil || z.Z3 == nil || z.Z4 == nil || z.W == nil || z.Wx == nil || z.Wy == nil {
		return zk.Fail(kind, zk.ErrNilProof)
	}
	if !BigInt.IsInIntervalLEps(z.Z1) || !BigInt.IsInIntervalLPrimeEps(z.Z2) {
		return zk.InvalidRange(kind)
	}
	verifier, prover := public.Verifier, public.Prover
	if !verifier.ValidateCiphertexts(c.A) || !prover.ValidateCiphertexts(c.Bx, c.By) ||
		!BigInt.IsValidNatModN(verifier.N(), z.W) || !BigInt.IsValidNatModN(prover.N(), z.Wx, z.Wy) ||
		!BigInt.IsValidNatModN(public.Aux.N(), c.E, c.S, c.F, c.T) {
		return zk.InvalidRange(kind)
	}

	{
		// tmp = z₁ ⊙ Kv
		// lhs = Enc₀(z₂;w) ⊕ z₁ ⊙ Kv
		tmp := public.Kv.Clone().Mul(verifier, z.Z1)
		lhs := verifier.EncWithNonce(z.Z2, z.W).Add(verifier, tmp)
		// rhs = (e ⊙ Dv) ⊕ A
		rhs := public.Dv.Clone().Mul(verifier, e).Add(verifier, c.A)
		if !lhs.Equal(rhs) {
			return zk.InvalidProof(kind, 1)
		}
	}

	{
		// lhs = Enc₁(z₁; wₓ)
		lhs := prover.EncWithNonce(z.Z1, z.Wx)
		// rhs = (e ⊙ Xp) ⊕ Bₓ
		rhs := public.Xp.Clone().Mul(prover, e).Add(prover, c.Bx)
		if !lhs.Equal(rhs) {
			return zk.InvalidProof(kind, 2)
		}
	}

	{
		// lhs = Enc₁(z₂; wy)
		lhs := prover.EncWithNonce(z.Z2, z.Wy)
		// rhs = (e ⊙ Fp) ⊕ By
		rhs := public.Fp.Clone().Mul(prover, e).Add(prover, c.By)
		if !lhs.Equal(rhs) {
			return zk.InvalidProof(kind, 3)
		}
	}

	if !public.Aux.Verify(z.Z1, z.Z3, e, c.E, c.S) {
		return zk.InvalidProof(kind, 4)
	}
	if !public.Aux.Verify(z.Z2, z.Z4, e, c.F, c.T) {
		return zk.InvalidProof(kind, 5)
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

// MarshalBinary encodes the proof as a tuple (A, Bₓ, By, E, S, F, T, z₁, z₂, z₃, z₄, w, wₓ, wy).
func (p *Proof) MarshalBinary() ([]byte, error) {
	if p == nil || p.Commitment == nil || p.Response == nil || p.A == nil || p.Bx == nil || p.By == nil {
		return nil, zk.Fail(kind, zk.ErrNilProof)
	}
	a, err := p.A.MarshalBinary()
	if err != nil {
		return nil, err
	}
	bx, err := p.Bx.MarshalBinary()
	if err != nil {
		return nil, err
	}
	by, err := p.By.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return wire.NewEncoder().
		Raw(a).
		Raw(bx).
		Raw(by).
		Nat(p.E, params.BytesIntModN).
		Nat(p.S, params.BytesIntModN).
		Nat(p.F, params.BytesIntModN).
		Nat(p.T, params.BytesIntModN).
		Int(p.Z1, params.BytesIntLEps).
		Int(p.Z2, params.BytesIntLPrimeEps).
		Int(p.Z3, params.BytesIntLEpsN).
		Int(p.Z4, params.BytesIntLEpsN).
		Nat(p.W, params.BytesPaillier).
		Nat(p.Wx, params.BytesPaillier).
		Nat(p.Wy, params.BytesPaillier).
		Bytes()
}

func (p *Proof) UnmarshalBinary(data []byte) error {
	d := wire.NewDecoder(data)
	a := d.Raw()
	bx := d.Raw()
	by := d.Raw()
	E := d.Nat(params.BytesIntModN)
	S := d.Nat(params.BytesIntModN)
	F := d.Nat(params.BytesIntModN)
	T := d.Nat(params.BytesIntModN)
	z1 := d.Int(params.BytesIntLEps)
	z2 := d.Int(params.BytesIntLPrimeEps)
	z3 := d.Int(params.BytesIntLEpsN)
	z4 := d.Int(params.BytesIntLEpsN)
	w := d.Nat(params.BytesPaillier)
	wx := d.Nat(params.BytesPaillier)
	wy := d.Nat(params.BytesPaillier)
	if err := d.Finish(); err != nil {
		return err
	}
	A, Bx, By := new(paillier.Ciphertext), new(paillier.Ciphertext), new(paillier.Ciphertext)
	for _, ct := range []struct {
		dst  *paillier.Ciphertext
		data []byte
	}{{A, a}, {Bx, bx}, {By, by}} {
		if err := ct.dst.UnmarshalBinary(ct.data); err != nil {
			return err
		}
	}
	p.Commitment = &Commitment{A: A, Bx: Bx, By: By, E: E, S: S, F: F, T: T}
	p.Response = &Response{Z1: z1, Z2: z2, Z3: z3, Z4: z4, W: w, Wx: wx, Wy: wy}
	return nil
}
