// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package ecdsa holds presignatures and the signatures made from them.
package ecdsa

import (
	"errors"

	"MPC_PRESIGN/pkg/math/curve"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	decred "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

type Signature struct {
	R curve.Point
	S curve.Scalar
}

// EmptySignature returns a new signature with a given curve, ready to be unmarshalled.
func EmptySignature(group curve.Curve) Signature {
	return Signature{R: group.NewPoint(), S: group.NewScalar()}
}

// Verify is a custom signature format using curve data.
func (sig Signature) Verify(X curve.Point, hash []byte) bool {
	group := X.Curve()

	r := sig.R.XScalar()
	if r.IsZero() || sig.S.IsZero() {
		return false
	}

	m := curve.FromHash(group, hash)
	sInv := group.NewScalar().Set(sig.S).Invert()
	mG := m.ActOnBase()
	rX := r.Act(X)
	R2 := mG.Add(rX)
	R2 = sInv.Act(R2)
	return R2.Equal(sig.R)
}

// Decred converts the signature to a secp256k1 ECDSA signature.
func (sig Signature) Decred() (*decred.Signature, error) {
	if _, ok := sig.S.Curve().(curve.Secp256k1); !ok {
		return nil, errors.New("ecdsa: signature is not over secp256k1")
	}
	rBytes, err := sig.R.XScalar().MarshalBinary()
	if err != nil {
		return nil, err
	}
	sBytes, err := sig.S.MarshalBinary()
	if err != nil {
		return nil, err
	}
	var r, s secp256k1.ModNScalar
	if r.SetByteSlice(rBytes) || s.SetByteSlice(sBytes) {
		return nil, errors.New("ecdsa: signature component overflows the group order")
	}
	return decred.NewSignature(&r, &s), nil
}

// VerifySecp256k1 checks the signature with the secp256k1 reference verifier.
func (sig Signature) VerifySecp256k1(X curve.Point, hash []byte) bool {
	s, err := sig.Decred()
	if err != nil {
		return false
	}
	data, err := X.MarshalBinary()
	if err != nil {
		return false
	}
	pk, err := secp256k1.ParsePubKey(data)
	if err != nil {
		return false
	}
	return s.Verify(hash, pk)
}

// Serialize returns the DER encoding with a low S value.
func (sig Signature) Serialize() ([]byte, error) {
	s, err := sig.Decred()
	if err != nil {
		return nil, err
	}
	return s.Serialize(), nil
}
