// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package polynomial

import (
	"MPC_PRESIGN/pkg/math/curve"
	"MPC_PRESIGN/pkg/party"
)

// Lagrange returns the coefficients lⱼ(0) of every signer, so that Σ lⱼ(0)⋅f(xⱼ) = f(0)
// for any polynomial f of degree < len(signers).
func Lagrange(group curve.Curve, signers []party.ID) map[party.ID]curve.Scalar {
	xs := points(group, signers)
	coefficients := make(map[party.ID]curve.Scalar, len(signers))
	for _, j := range signers {
		coefficients[j] = coefficient(group, xs, j)
	}
	return coefficients
}

// LagrangeSingle returns lⱼ(0) over signers, for a single j.
func LagrangeSingle(group curve.Curve, signers []party.ID, j party.ID) curve.Scalar {
	xs := points(group, signers)
	return coefficient(group, xs, j)
}

// points maps each signer to its evaluation point, it panics on a repeated signer.
func points(group curve.Curve, signers []party.ID) map[party.ID]curve.Scalar {
	xs := make(map[party.ID]curve.Scalar, len(signers))
	for _, id := range signers {
		if _, ok := xs[id]; ok {
			panic("polynomial: duplicate signer " + string(id))
		}
		xs[id] = id.Scalar(group)
	}
	return xs
}

// coefficient computes
//
//	lⱼ(0) = ∏ₘ xₘ / (xₘ - xⱼ),  m ≠ j.
//
// The denominators are multiplied together first so that only one inversion is needed.
// It panics if two signers map to the same scalar.
func coefficient(group curve.Curve, xs map[party.ID]curve.Scalar, j party.ID) curve.Scalar {
	num := group.NewScalar().SetNat(one())
	den := group.NewScalar().SetNat(one())
	diff := group.NewScalar()
	xj := xs[j]
	for m, xm := range xs {
		if m == j {
			continue
		}
		num.Mul(xm)
		diff.Set(xj).Negate().Add(xm)
		if diff.IsZero() {
			panic("polynomial: duplicate interpolation point")
		}
		den.Mul(diff)
	}
	return den.Invert().Mul(num)
}
