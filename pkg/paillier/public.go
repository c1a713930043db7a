// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package paillier implements the additively homomorphic Paillier cryptosystem
// with generator 1+N, over moduli N = p⋅q of safe Blum primes.
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
)

var (
	ErrPaillierNil    = errors.New("paillier: modulus N is nil")
	ErrPaillierLength = errors.New("paillier: modulus N has the wrong length")
	ErrPaillierEven   = errors.New("paillier: modulus N is even")
)

// PublicKey is the modulus N, with N² and the constants encryption needs.
type PublicKey struct {
	n, nSquared *arith.Modulus

	nNat     *BigInt.Nat
	nPlusOne *BigInt.Nat
	// (N-1)/2 bounds the absolute value of plaintexts
	nHalf *BigInt.Nat
}

// NewPublicKeyFromN returns the key of modulus n. Exponentiations do not use the factorization.
func NewPublicKeyFromN(n *BigInt.Nat) *PublicKey {
	return newPublicKey(arith.ModulusFromN(n), arith.ModulusFromN(new(BigInt.Nat).Mul(n, n, -1)))
}

func newPublicKey(n, nSquared *arith.Modulus) *PublicKey {
	nNat := n.Nat()
	return &PublicKey{
		n:        n,
		nSquared: nSquared,
		nNat:     nNat,
		nPlusOne: new(BigInt.Nat).Add(nNat, new(BigInt.Nat).SetUint64(1), -1),
		nHalf:    new(BigInt.Nat).Rsh(nNat, 1, -1),
	}
}

// ValidateN checks that n is odd and has params.BitsPaillier bits.
func ValidateN(n *BigInt.Nat) error {
	switch {
	case n == nil || n.Data == nil:
		return ErrPaillierNil
	case n.BitLen() != params.BitsPaillier:
		return fmt.Errorf("%w: have %d bits, need %d", ErrPaillierLength, n.BitLen(), params.BitsPaillier)
	case n.Bit(0) != 1:
		return ErrPaillierEven
	}
	return nil
}

// N is the public modulus.
func (pk *PublicKey) N() *BigInt.Nat { return pk.nNat }

// Modulus returns N as an arith.Modulus, which exponentiates faster when the key came from a SecretKey.
func (pk *PublicKey) Modulus() *arith.Modulus { return pk.n }

// Enc encrypts m with a fresh nonce from crypto/rand, and returns the nonce.
func (pk *PublicKey) Enc(m *BigInt.Nat) (*Ciphertext, *BigInt.Nat) {
	return pk.EncWithReader(rand.Reader, m)
}

// EncWithReader encrypts m with a nonce sampled from r, and returns the nonce.
func (pk *PublicKey) EncWithReader(r io.Reader, m *BigInt.Nat) (*Ciphertext, *BigInt.Nat) {
	nonce := sample.UnitModN(r, pk.nNat)
	return pk.EncWithNonce(m, nonce), nonce
}

// EncWithNonce returns (1+N)ᵐρᴺ mod N².
// It panics unless |m| ≤ (N-1)/2.
func (pk *PublicKey) EncWithNonce(m *BigInt.Nat, nonce *BigInt.Nat) *Ciphertext {
	if m.Abs().Cmp(pk.nHalf) == 1 {
		panic("paillier: plaintext outside of [-(N-1)/2, …, (N-1)/2]")
	}
	c := pk.nSquared.ExpI(pk.nPlusOne, m)
	c.ModMul(c, pk.nSquared.Exp(nonce, pk.nNat), pk.nSquared.Nat())
	return &Ciphertext{c: c}
}

// Equal compares the moduli.
func (pk *PublicKey) Equal(other *PublicKey) bool {
	return other != nil && pk.nNat.Cmp(other.nNat) == 0
}

// ValidateCiphertexts reports whether every ct is a unit mod N².
func (pk *PublicKey) ValidateCiphertexts(cts ...*Ciphertext) bool {
	for _, ct := range cts {
		if ct == nil || ct.c == nil || !BigInt.IsValidNatModN(pk.nSquared.Nat(), ct.c) {
			return false
		}
	}
	return true
}

// WriteTo writes N with a fixed width, for hash.Hash.
func (pk *PublicKey) WriteTo(w io.Writer) (int64, error) {
	if pk == nil {
		return 0, io.ErrUnexpectedEOF
	}
	buf := make([]byte, params.BytesPaillier)
	pk.nNat.FillBytes(buf)
	n, err := w.Write(buf)
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (PublicKey) Domain() string {
	return "Paillier PublicKey"
}
