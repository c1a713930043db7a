// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package ecdsa

import (
	"errors"
	"fmt"

	"MPC_PRESIGN/internal/params"
	"MPC_PRESIGN/pkg/math/curve"
	"MPC_PRESIGN/pkg/party"
	"github.com/fxamacker/cbor/v2"
)

type PreSignature struct {
	// ID is a random identifier for this specific presignature.
	ID []byte
	// R = δ⁻¹⋅Γ = δ⁻¹⋅(∑ⱼ Γⱼ) = (∑ⱼδ⁻¹γⱼ)⋅G = k⁻¹⋅G
	R curve.Point
	// KShare = kᵢ
	KShare curve.Scalar
	// ChiShare = χᵢ
	ChiShare curve.Scalar
	// Signers is the sorted set of parties holding the other shares.
	Signers party.IDSlice
}

// Group returns the elliptic curve group associated with this PreSignature.
func (sig *PreSignature) Group() curve.Curve {
	return sig.R.Curve()
}

// EmptyPreSignature returns a PreSignature with a given group, ready for unmarshalling.
func EmptyPreSignature(group curve.Curve) *PreSignature {
	return &PreSignature{
		R:        group.NewPoint(),
		KShare:   group.NewScalar(),
		ChiShare: group.NewScalar(),
	}
}

// SignatureShare represents an individual additive share of the signature's "s" component.
type SignatureShare = curve.Scalar

// SignatureShare returns this party's share σᵢ = kᵢm+rχᵢ, where s = ∑ⱼσⱼ.
func (sig *PreSignature) SignatureShare(hash []byte) SignatureShare {
	m := curve.FromHash(sig.Group(), hash)
	r := sig.R.XScalar()
	mk := m.Mul(sig.KShare)
	rx := r.Mul(sig.ChiShare)
	return mk.Add(rx)
}

// Signature combines the given shares σⱼ and returns a pair (R,S), where S=∑ⱼσⱼ.
func (sig *PreSignature) Signature(shares map[party.ID]SignatureShare) (*Signature, error) {
	s := sig.Group().NewScalar()
	for _, j := range sig.Signers {
		sigma, ok := shares[j]
		if !ok || sigma == nil {
			return nil, fmt.Errorf("presignature: missing signature share of %s", j)
		}
		s.Add(sigma)
	}
	return &Signature{
		R: sig.R,
		S: s,
	}, nil
}

func (sig *PreSignature) Validate() error {
	if sig.R == nil || sig.R.IsIdentity() {
		return errors.New("presignature: R is identity")
	}
	if len(sig.ID) != params.SecBytes {
		return errors.New("presignature: ID has wrong length")
	}
	if sig.ChiShare == nil || sig.KShare == nil || sig.ChiShare.IsZero() || sig.KShare.IsZero() {
		return errors.New("presignature: ChiShare or KShare is invalid")
	}
	if len(sig.Signers) == 0 || !sig.Signers.Valid() {
		return errors.New("presignature: invalid signer set")
	}
	return nil
}

type preSignatureMarshal struct {
	ID       []byte
	R        []byte
	KShare   []byte
	ChiShare []byte
	Signers  []party.ID
}

func (sig *PreSignature) MarshalBinary() ([]byte, error) {
	var (
		m   preSignatureMarshal
		err error
	)
	m.ID, m.Signers = sig.ID, sig.Signers
	if m.R, err = sig.R.MarshalBinary(); err != nil {
		return nil, err
	}
	if m.KShare, err = sig.KShare.MarshalBinary(); err != nil {
		return nil, err
	}
	if m.ChiShare, err = sig.ChiShare.MarshalBinary(); err != nil {
		return nil, err
	}
	return cbor.Marshal(&m)
}

// UnmarshalBinary expects sig to come from EmptyPreSignature.
func (sig *PreSignature) UnmarshalBinary(data []byte) error {
	if sig.R == nil || sig.KShare == nil || sig.ChiShare == nil {
		return errors.New("presignature: UnmarshalBinary called without setting a group")
	}
	var m preSignatureMarshal
	if err := cbor.Unmarshal(data, &m); err != nil {
		return err
	}
	if err := sig.R.UnmarshalBinary(m.R); err != nil {
		return err
	}
	if err := sig.KShare.UnmarshalBinary(m.KShare); err != nil {
		return err
	}
	if err := sig.ChiShare.UnmarshalBinary(m.ChiShare); err != nil {
		return err
	}
	sig.ID = m.ID
	sig.Signers = party.NewIDSlice(m.Signers)
	return sig.Validate()
}
