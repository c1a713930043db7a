// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package arith

import (
	"MPC_PRESIGN/pkg/BigInt"
)

// Modulus wraps a modulus n and enables faster modular exponentiation when
// the factorization is known.
// When n = p⋅q, xᵉ (mod n) can be computed with only two exponentiations
// with p and q respectively.
type Modulus struct {
	// represents modulus n
	n *BigInt.Nat
	// n = p⋅q
	p, q *BigInt.Nat
	// pInv = p⁻¹ (mod q)
	pInv *BigInt.Nat
}

// ModulusFromN creates a simple wrapper around a given modulus n.
// The modulus is not copied.
func ModulusFromN(n *BigInt.Nat) *Modulus {
	return &Modulus{
		n: n,
	}
}

// ModulusFromFactors creates the necessary cached values to accelerate
// exponentiation mod n. p and q must be coprime.
func ModulusFromFactors(p, q *BigInt.Nat) *Modulus {
	return &Modulus{
		n:    new(BigInt.Nat).Mul(p, q, -1),
		p:    p,
		q:    q,
		pInv: new(BigInt.Nat).ModInverse(p, q),
	}
}

func (nMod *Modulus) hasFactorization() bool {
	return nMod.p != nil && nMod.q != nil && nMod.pInv != nil
}

// Exp is equivalent to (BigInt.Nat).Exp(x, e, n).
// It returns xᵉ (mod n) in a new Nat, for e ≥ 0.
func (nMod *Modulus) Exp(x, e *BigInt.Nat) *BigInt.Nat {
	if !nMod.hasFactorization() {
		return new(BigInt.Nat).Exp(x, e, nMod.n)
	}
	var xp, xq BigInt.Nat
	xp.Mod(x, nMod.p)
	xq.Mod(x, nMod.q)
	xp.Exp(&xp, e, nMod.p) // x₁ = xᵉ (mod p)
	xq.Exp(&xq, e, nMod.q) // x₂ = xᵉ (mod q)
	// r = x₁ + p ⋅ [p⁻¹ (mod q) ⋅ (x₂ - x₁) (mod q)]
	h := new(BigInt.Nat).ModSub(&xq, &xp, nMod.q)
	h.ModMul(h, nMod.pInv, nMod.q)
	r := new(BigInt.Nat).Mul(h, nMod.p, -1)
	r.Add(r, &xp, -1)
	return r
}

// ExpI is equivalent to (BigInt.Nat).ExpI(x, e, n).
// It returns xᵉ (mod n) in a new Nat, e may be negative.
func (nMod *Modulus) ExpI(x, e *BigInt.Nat) *BigInt.Nat {
	y := nMod.Exp(x, e.Abs())
	if e.GetSign() < 0 {
		y.ModInverse(y, nMod.n)
	}
	return y
}

// Nat returns n.
func (nMod *Modulus) Nat() *BigInt.Nat {
	return nMod.n
}

// BitLen return the length of n
func (nMod *Modulus) BitLen() int {
	return nMod.n.BitLen()
}
