// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package paillier

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"MPC_PRESIGN/internal/params"
	"MPC_PRESIGN/pkg/BigInt"
	"MPC_PRESIGN/pkg/math/arith"
	"MPC_PRESIGN/pkg/math/sample"
	"MPC_PRESIGN/pkg/pedersen"
	"MPC_PRESIGN/pkg/pool"
)

var (
	ErrPrimeNil       = errors.New("paillier: prime is nil")
	ErrPrimeBadLength = errors.New("paillier: prime has the wrong length")
	ErrNotBlum        = errors.New("paillier: prime is not 3 mod 4")
	ErrNotSafePrime   = errors.New("paillier: (p-1)/2 is not prime")
	ErrInvalidCipher  = errors.New("paillier: failed to decrypt invalid ciphertext")
)

// SecretKey holds the factorization of the modulus of its PublicKey.
type SecretKey struct {
	*PublicKey
	p, q *BigInt.Nat
	// ϕ(N) = (p-1)(q-1) and ϕ⁻¹ mod N
	phi, phiInv *BigInt.Nat
	// p², q² and (p²)⁻¹ mod q², for exponentiation mod N² by CRT
	p2, q2, p2Inv *BigInt.Nat
}

// NewSecretKey samples two safe Blum primes with pl and returns the key they make up.
func NewSecretKey(pl *pool.Pool) *SecretKey {
	return NewSecretKeyFromPrimes(sample.Paillier(rand.Reader, pl))
}

// NewSecretKeyFromPrimes assumes p and q are distinct primes, see ValidatePrime.
func NewSecretKeyFromPrimes(p, q *BigInt.Nat) *SecretKey {
	one := new(BigInt.Nat).SetUint64(1)
	n := arith.ModulusFromFactors(p, q)

	phi := new(BigInt.Nat).Mul(
		new(BigInt.Nat).Sub(p, one, -1),
		new(BigInt.Nat).Sub(q, one, -1), -1)
	p2 := new(BigInt.Nat).Mul(p, p, -1)
	q2 := new(BigInt.Nat).Mul(q, q, -1)

	return &SecretKey{
		PublicKey: newPublicKey(n, arith.ModulusFromFactors(p2, q2)),
		p:         p,
		q:         q,
		phi:       phi,
		phiInv:    new(BigInt.Nat).ModInverse(phi, n.Nat()),
		p2:        p2,
		q2:        q2,
		p2Inv:     new(BigInt.Nat).ModInverse(p2, q2),
	}
}

// P is the first factor of N.
func (sk *SecretKey) P() *BigInt.Nat { return sk.p }

// Q is the second factor of N.
func (sk *SecretKey) Q() *BigInt.Nat { return sk.q }

// Phi is ϕ(N) = (p-1)(q-1), the order of ℤₙˣ.
func (sk *SecretKey) Phi() *BigInt.Nat { return sk.phi }

// Dec returns m ∈ ±(N-1)/2 with ct = (1+N)ᵐρᴺ, computed as L(ct^ϕ mod N²)⋅ϕ⁻¹ mod N
// where L(x) = (x-1)/N.
func (sk *SecretKey) Dec(ct *Ciphertext) (*BigInt.Nat, error) {
	if !sk.ValidateCiphertexts(ct) {
		return nil, ErrInvalidCipher
	}
	n := sk.nNat
	x := new(BigInt.Nat).CRTExpN2(ct.c, sk.phi, sk.nSquared.Nat(), sk.p2, sk.q2, sk.p, sk.q, sk.p2Inv)
	x.Sub(x, new(BigInt.Nat).SetUint64(1), -1)
	x.Div(x, n)
	x.ModMul(x, sk.phiInv, n)
	return new(BigInt.Nat).SetModSymmetric(x, n), nil
}

// GeneratePedersen samples ring Pedersen parameters over N, and returns them with the secret λ such that s = tˡ.
func (sk *SecretKey) GeneratePedersen(rand io.Reader) (*pedersen.Parameters, *BigInt.Nat) {
	s, t, lambda := sample.Pedersen(rand, sk.phi, sk.nNat)
	return pedersen.New(sk.n, s, t), lambda
}

// Zeroize erases the factorization of N.
func (sk *SecretKey) Zeroize() {
	if sk == nil {
		return
	}
	for _, x := range []*BigInt.Nat{sk.p, sk.q, sk.phi, sk.phiInv, sk.p2, sk.q2, sk.p2Inv} {
		x.Zeroize()
	}
}

// ValidatePrime checks that p is a safe Blum prime of params.BitsBlumPrime bits.
// The primality of p itself is not tested.
func ValidatePrime(p *BigInt.Nat) error {
	switch {
	case p == nil || p.Data == nil:
		return ErrPrimeNil
	case p.BitLen() != params.BitsBlumPrime:
		return fmt.Errorf("%w: have %d bits, need %d", ErrPrimeBadLength, p.BitLen(), params.BitsBlumPrime)
	case p.Bit(0) != 1 || p.Bit(1) != 1:
		return ErrNotBlum
	case !new(BigInt.Nat).Rsh(p, 1, -1).ProbablyPrime(1):
		return ErrNotSafePrime
	}
	return nil
}
