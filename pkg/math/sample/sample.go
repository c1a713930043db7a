// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package sample draws the random values of the protocols: scalars, units and residues
// modulo N, signed integers in the proof intervals and Paillier primes.
//
// Every function reads from the given io.Reader, which may be NewSeededReader in tests.
// A reader that keeps failing is a fatal condition and panics.
package sample

import (
	"fmt"
	"io"

	"MPC_PRESIGN/internal/params"
	"MPC_PRESIGN/pkg/BigInt"
	"MPC_PRESIGN/pkg/math/curve"
)

const maxIterations = 255

var ErrMaxIterations = fmt.Errorf("sample: failed to generate after %d iterations", maxIterations)

func mustReadBits(rand io.Reader, buf []byte) {
	for i := 0; i < maxIterations; i++ {
		if _, err := io.ReadFull(rand, buf); err == nil {
			return
		}
	}
	panic(ErrMaxIterations)
}

// below rejection samples x < n with accept(x), reading as many bytes as n has.
func below(rand io.Reader, n *BigInt.Nat, accept func(*BigInt.Nat) bool) *BigInt.Nat {
	buf := make([]byte, (n.BitLen()+7)/8)
	if len(buf) == 0 {
		panic("sample: empty modulus")
	}
	// the top byte is masked to the bit length of n, so a draw succeeds with probability ≥ 1/2
	mask := byte(0xff >> (8*len(buf) - n.BitLen()))
	out := new(BigInt.Nat)
	for i := 0; i < maxIterations; i++ {
		mustReadBits(rand, buf)
		buf[0] &= mask
		out.SetBytes(buf)
		if out.Cmp(n) < 0 && accept(out) {
			return out
		}
	}
	panic(ErrMaxIterations)
}

// ModN samples an element of ℤₙ.
func ModN(rand io.Reader, n *BigInt.Nat) *BigInt.Nat {
	return below(rand, n, func(*BigInt.Nat) bool { return true })
}

// UnitModN returns a u ∈ ℤₙˣ.
func UnitModN(rand io.Reader, n *BigInt.Nat) *BigInt.Nat {
	return below(rand, n, func(u *BigInt.Nat) bool { return u.IsUnit(n) == 1 })
}

// Pedersen generates the s, t, λ such that s = tˡ.
func Pedersen(rand io.Reader, phi *BigInt.Nat, n *BigInt.Nat) (s, t, lambda *BigInt.Nat) {
	lambda = ModN(rand, phi)

	tau := UnitModN(rand, n)
	// t = τ² mod N
	t = new(BigInt.Nat).ModMul(tau, tau, n)
	// s = tˡ mod N
	s = new(BigInt.Nat).Exp(t, lambda, n)
	return
}

// Scalar returns a new *curve.Scalar by reading bytes from rand.
func Scalar(rand io.Reader, group curve.Curve) curve.Scalar {
	buffer := make([]byte, group.SafeScalarBytes()+params.SecBytes)
	mustReadBits(rand, buffer)
	n := new(BigInt.Nat).SetBytes(buffer)
	return group.NewScalar().SetNat(n)
}

// ScalarPointPair returns a new *curve.Scalar/*curve.Point tuple (x,X) by reading bytes from rand.
// The tuple satisfies X = x⋅G where G is the base point of the curve.
func ScalarPointPair(rand io.Reader, group curve.Curve) (curve.Scalar, curve.Point) {
	s := Scalar(rand, group)
	return s, s.ActOnBase()
}
