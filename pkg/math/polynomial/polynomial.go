// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package polynomial holds the Shamir sharing polynomials of the dealer and the
// Lagrange coefficients that turn a signer set's shares into additive ones.
package polynomial

import (
	"crypto/rand"
	"io"

	"MPC_PRESIGN/pkg/BigInt"
	"MPC_PRESIGN/pkg/math/curve"
	"MPC_PRESIGN/pkg/math/sample"
)

func one() *BigInt.Nat {
	return new(BigInt.Nat).SetUint64(1)
}

// Polynomial represents f(X) = a₀ + a₁⋅X + … + aₜ⋅Xᵗ.
type Polynomial struct {
	group        curve.Curve
	coefficients []curve.Scalar
}

// NewPolynomial generates a random Polynomial f(X) of the given degree, with f(0) = constant.
// A nil constant is replaced by 0, a nil rng by crypto/rand.
func NewPolynomial(rng io.Reader, group curve.Curve, degree int, constant curve.Scalar) *Polynomial {
	if rng == nil {
		rng = rand.Reader
	}
	polynomial := &Polynomial{
		group:        group,
		coefficients: make([]curve.Scalar, degree+1),
	}

	// if the constant is nil, we interpret it as 0.
	if constant == nil {
		constant = group.NewScalar()
	}
	polynomial.coefficients[0] = group.NewScalar().Set(constant)

	for i := 1; i <= degree; i++ {
		polynomial.coefficients[i] = sample.Scalar(rng, group)
	}
	return polynomial
}

// Evaluate evaluates a polynomial in a given variable index
// We use Horner's method: https://en.wikipedia.org/wiki/Horner%27s_method
func (p *Polynomial) Evaluate(index curve.Scalar) curve.Scalar {
	if index.IsZero() {
		panic("polynomial: attempt to leak secret")
	}

	result := p.group.NewScalar()
	// reverse order
	for i := len(p.coefficients) - 1; i >= 0; i-- {
		// bₙ₋₁ = bₙ * x + aₙ₋₁
		result.Mul(index).Add(p.coefficients[i])
	}
	return result
}

// Constant returns a reference to the constant coefficient of the polynomial.
func (p *Polynomial) Constant() curve.Scalar {
	return p.group.NewScalar().Set(p.coefficients[0])
}

// Degree is the highest power of the Polynomial.
func (p *Polynomial) Degree() uint32 {
	return uint32(len(p.coefficients)) - 1
}

// Zeroize erases the coefficients.
func (p *Polynomial) Zeroize() {
	for _, c := range p.coefficients {
		c.Zeroize()
	}
}
