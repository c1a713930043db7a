// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package sample

import (
	"io"

	"MPC_PRESIGN/internal/params"
	"MPC_PRESIGN/pkg/BigInt"
	"MPC_PRESIGN/pkg/math/curve"
)

// signed returns a uniform magnitude of bits bits with a uniform sign.
// One extra byte is read, its low bit is the sign.
func signed(rand io.Reader, bits int) *BigInt.Nat {
	buf := make([]byte, 1+(bits+7)/8)
	mustReadBits(rand, buf)
	if extra := 8*(len(buf)-1) - bits; extra > 0 {
		buf[1] &= 0xff >> extra
	}
	out := new(BigInt.Nat).SetBytes(buf[1:])
	out.Neg(int(buf[0] & 1))
	return out
}

// IntervalL returns an integer in ±2ˡ.
func IntervalL(rand io.Reader) *BigInt.Nat { return signed(rand, params.L) }

// IntervalLPrime returns an integer in ±2ˡ'.
func IntervalLPrime(rand io.Reader) *BigInt.Nat { return signed(rand, params.LPrime) }

// IntervalLEps returns an integer in ±2ˡ⁺ᵉ, the mask of a secret in ±2ˡ.
func IntervalLEps(rand io.Reader) *BigInt.Nat { return signed(rand, params.LPlusEpsilon) }

// IntervalLPrimeEps returns an integer in ±2ˡ'⁺ᵉ, the mask of a secret in ±2ˡ'.
func IntervalLPrimeEps(rand io.Reader) *BigInt.Nat { return signed(rand, params.LPrimePlusEpsilon) }

// IntervalLN returns an integer in ±2ˡ⋅N, the randomness of a Pedersen commitment.
func IntervalLN(rand io.Reader) *BigInt.Nat { return signed(rand, params.L+params.BitsIntModN) }

// IntervalLEpsN returns an integer in ±2ˡ⁺ᵉ⋅N, the mask of Pedersen randomness.
func IntervalLEpsN(rand io.Reader) *BigInt.Nat {
	return signed(rand, params.LPlusEpsilon+params.BitsIntModN)
}

// IntervalScalar returns an integer in ±q, a Fiat-Shamir challenge.
func IntervalScalar(rand io.Reader, group curve.Curve) *BigInt.Nat {
	return signed(rand, group.ScalarBits())
}
