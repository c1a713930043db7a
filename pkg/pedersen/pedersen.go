// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package pedersen implements ring Pedersen commitments sˣ⋅tʸ mod N̂, the auxiliary
// parameters every range proof commits to.
package pedersen

import (
	"fmt"
	"io"

	"MPC_PRESIGN/internal/params"
	"MPC_PRESIGN/pkg/BigInt"
	"MPC_PRESIGN/pkg/math/arith"
	"MPC_PRESIGN/pkg/wire"
)

type Error string

const (
	ErrNilFields    Error = "contains nil field"
	ErrSEqualT      Error = "S cannot be equal to T"
	ErrNotValidModN Error = "S and T must be in [1,…,N-1] and coprime to N"
)

func (e Error) Error() string {
	return fmt.Sprintf("pedersen: %s", string(e))
}

// Parameters are the ring Pedersen parameters (N̂, s, t) of one party.
// The owner additionally knows λ with s = t^λ, which is proven with zkprm.
type Parameters struct {
	n    *arith.Modulus
	s, t *BigInt.Nat
}

// New wraps (n, s, t) without checking them, see ValidateParameters.
func New(n *arith.Modulus, s, t *BigInt.Nat) *Parameters {
	return &Parameters{n: n, s: s, t: t}
}

// ValidateParameters returns an error when
//   - n, s or t is nil,
//   - s or t is not a unit mod n,
//   - s = t.
func ValidateParameters(n *BigInt.Nat, s, t *BigInt.Nat) error {
	switch {
	case n == nil || s == nil || t == nil:
		return ErrNilFields
	case !BigInt.IsValidNatModN(n, s, t):
		return ErrNotValidModN
	case s.Cmp(t) == 0:
		return ErrSEqualT
	}
	return nil
}

// N = p•q, p ≡ q ≡ 3 mod 4.
func (p Parameters) N() *BigInt.Nat { return p.n.Nat() }

// NArith returns N as an arith.Modulus, with the factorization when known.
func (p Parameters) NArith() *arith.Modulus { return p.n }

// S = r² mod N.
func (p Parameters) S() *BigInt.Nat { return p.s }

// T = Sˡ mod N.
func (p Parameters) T() *BigInt.Nat { return p.t }

// pow returns b₁^e₁ ⋅ b₂^e₂ mod N, for signed exponents.
func (p Parameters) pow(b1, e1, b2, e2 *BigInt.Nat) *BigInt.Nat {
	x := p.n.ExpI(b1, e1)
	y := p.n.ExpI(b2, e2)
	return x.ModMul(x, y, p.n.Nat())
}

// Commit computes sˣ⋅tʸ mod N. The exponents are usually secret, the commitment is not.
func (p Parameters) Commit(x, y *BigInt.Nat) *BigInt.Nat {
	return p.pow(p.s, x, p.t, y)
}

// Verify returns true if sᵃ⋅tᵇ ≡ S⋅Tᵉ (mod N).
func (p Parameters) Verify(a, b, e *BigInt.Nat, S, T *BigInt.Nat) bool {
	if a == nil || b == nil || e == nil || S == nil || T == nil {
		return false
	}
	n := p.n.Nat()
	if !BigInt.IsValidNatModN(n, S, T) {
		return false
	}
	rhs := p.n.ExpI(T, e)
	rhs.ModMul(rhs, S, n)
	return p.Commit(a, b).Eq(rhs) == 1
}

// MarshalBinary encodes N, s and t as fixed width fields.
func (p *Parameters) MarshalBinary() ([]byte, error) {
	return wire.NewEncoder().
		Nat(p.n.Nat(), params.BytesIntModN).
		Nat(p.s, params.BytesIntModN).
		Nat(p.t, params.BytesIntModN).
		Bytes()
}

// UnmarshalBinary decodes and validates parameters written by MarshalBinary.
func (p *Parameters) UnmarshalBinary(data []byte) error {
	d := wire.NewDecoder(data)
	n := d.Nat(params.BytesIntModN)
	s := d.Nat(params.BytesIntModN)
	t := d.Nat(params.BytesIntModN)
	if err := d.Finish(); err != nil {
		return fmt.Errorf("pedersen: %w", err)
	}
	if err := ValidateParameters(n, s, t); err != nil {
		return err
	}
	*p = Parameters{n: arith.ModulusFromN(n), s: s, t: t}
	return nil
}

// BytesWritten is the length of the output of WriteTo.
const BytesWritten = 3 * params.BytesIntModN

// WriteTo writes N‖s‖t, each big endian in params.BytesIntModN bytes, for hash.Hash
// and for the packed sets of an SSID.
func (p *Parameters) WriteTo(w io.Writer) (int64, error) {
	if p == nil || p.n == nil || p.s == nil || p.t == nil {
		return 0, io.ErrUnexpectedEOF
	}
	buf := make([]byte, BytesWritten)
	p.n.Nat().FillBytes(buf[:params.BytesIntModN])
	p.s.FillBytes(buf[params.BytesIntModN : 2*params.BytesIntModN])
	p.t.FillBytes(buf[2*params.BytesIntModN:])
	n, err := w.Write(buf)
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain, and separates this type within hash.Hash.
func (Parameters) Domain() string {
	return "Pedersen Parameters"
}
