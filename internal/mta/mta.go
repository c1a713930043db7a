// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package mta converts multiplicative shares into additive ones with Paillier encryption.
//
// The receiver j publishes K = Encⱼ(k). A sender i holding x answers with
//
//	D = (x ⊙ K) ⊕ Encⱼ(-β)   F = Encᵢ(-β)
//
// and keeps β, so that Decⱼ(D) + β = x⋅k. The proof that accompanies D and F
// depends on how x is committed to: a public point (affg) or a ciphertext (affp).
package mta

import (
	"io"

	"MPC_PRESIGN/pkg/BigInt"
	"MPC_PRESIGN/pkg/math/curve"
	"MPC_PRESIGN/pkg/math/sample"
	"MPC_PRESIGN/pkg/paillier"
	"MPC_PRESIGN/pkg/pedersen"
	"MPC_PRESIGN/pkg/zk"
	zkaffg "MPC_PRESIGN/pkg/zk/affg"
	zkaffp "MPC_PRESIGN/pkg/zk/affp"
)

// Pair is a sender and a receiver, seen from the sender.
type Pair struct {
	Sender   *paillier.SecretKey
	Receiver *paillier.PublicKey
	// Aux are the receiver's Pedersen parameters, which the proofs commit to.
	Aux *pedersen.Parameters
	// K is the receiver's encrypted share.
	K *paillier.Ciphertext
}

// Output is what the sender keeps (Beta) and sends (D, F).
type Output struct {
	Beta *BigInt.Nat
	D, F *paillier.Ciphertext
}

// conversion holds the randomness of one run, which the proofs need.
type conversion struct {
	Output
	negBeta, s, r *BigInt.Nat
}

func (p Pair) convert(rand io.Reader, x *BigInt.Nat) conversion {
	var c conversion
	c.negBeta = sample.IntervalLPrime(rand)
	c.F, c.r = p.Sender.EncWithReader(rand, c.negBeta)
	c.D, c.s = p.Receiver.EncWithReader(rand, c.negBeta)
	c.D.Add(p.Receiver, p.K.Clone().Mul(p.Receiver, x))
	c.Beta = c.negBeta.Clone().Neg(1)
	return c
}

// seal hands out the output of c once proving succeeded. Otherwise β is zeroized.
// The negated β only served the proof and is zeroized either way.
func seal[P any](c conversion, proof P, err error) (Output, P, error) {
	c.negBeta.Zeroize()
	if err != nil {
		c.Beta.Zeroize()
		var none P
		return Output{}, none, err
	}
	return c.Output, proof, nil
}

// AffG runs the conversion for x with X = x⋅G, and proves it with zkaffg.
func (p Pair) AffG(rand io.Reader, ctx zk.Context, x *BigInt.Nat, X curve.Point) (Output, *zkaffg.Proof, error) {
	c := p.convert(rand, x)
	proof, err := zkaffg.NewProof(rand, ctx, zkaffg.Public{
		Kv:       p.K,
		Dv:       c.D,
		Fp:       c.F,
		Xp:       X,
		Prover:   p.Sender.PublicKey,
		Verifier: p.Receiver,
		Aux:      p.Aux,
	}, zkaffg.Private{X: x, Y: c.negBeta, S: c.s, R: c.r})
	return seal(c, proof, err)
}

// AffP runs the conversion for x with X = Encᵢ(x; nonce), and proves it with zkaffp.
func (p Pair) AffP(rand io.Reader, ctx zk.Context, x *BigInt.Nat, X *paillier.Ciphertext, nonce *BigInt.Nat) (Output, *zkaffp.Proof, error) {
	c := p.convert(rand, x)
	proof, err := zkaffp.NewProof(rand, ctx, zkaffp.Public{
		Kv:       p.K,
		Dv:       c.D,
		Fp:       c.F,
		Xp:       X,
		Prover:   p.Sender.PublicKey,
		Verifier: p.Receiver,
		Aux:      p.Aux,
	}, zkaffp.Private{X: x, Y: c.negBeta, S: c.s, Rx: nonce, R: c.r})
	return seal(c, proof, err)
}

// Share returns Dec(D) + beta, the additive share of the party holding sk when
// D was sent to it and beta is what it kept as sender in the opposite direction.
func Share(sk *paillier.SecretKey, D *paillier.Ciphertext, beta *BigInt.Nat) (*BigInt.Nat, error) {
	alpha, err := sk.Dec(D)
	if err != nil {
		return nil, err
	}
	return alpha.Add(alpha, beta, -1), nil
}
