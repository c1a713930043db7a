// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package presign

import (
	"bytes"
	"errors"
	"fmt"

	"MPC_PRESIGN/pkg/ecdsa"
	"MPC_PRESIGN/pkg/math/curve"
)

// Result is the output of a presign execution for one party.
type Result struct {
	PreSignature *ecdsa.PreSignature
	// PublicKey = X, the key the presignature signs for.
	PublicKey curve.Point
	// Reveal is only set when Options.Reveal was.
	Reveal *Reveal
}

// Reveal exposes the secrets of one party after an execution.
type Reveal struct {
	// ECDSA = xᵢ, scaled by the Lagrange coefficient of the signer set
	ECDSA curve.Scalar
	// K = kᵢ
	K curve.Scalar
	// Gamma = γᵢ
	Gamma curve.Scalar
	// Delta = δᵢ
	Delta curve.Scalar
	// Chi = χᵢ
	Chi curve.Scalar
}

// Validate checks the outputs of all signers of one execution against each other:
//
// - [∑ᵢ xᵢ]G = X,
// - ∑ᵢ δᵢ = (∑ᵢ kᵢ)(∑ᵢ γᵢ) and ∑ᵢ χᵢ = (∑ᵢ kᵢ)(∑ᵢ xᵢ),
// - R = [(∑ᵢ kᵢ)⁻¹]G,
// - every party holds the same R and the same ID.
//
// Every result must carry its Reveal.
func Validate(results ...*Result) error {
	if len(results) == 0 {
		return errors.New("presign: no results")
	}
	first := results[0]
	if first == nil || first.PreSignature == nil {
		return errors.New("presign: nil result")
	}
	group := first.PreSignature.Group()
	if len(results) != len(first.PreSignature.Signers) {
		return fmt.Errorf("presign: got %d results for %d signers", len(results), len(first.PreSignature.Signers))
	}

	x := group.NewScalar()
	k := group.NewScalar()
	gamma := group.NewScalar()
	delta := group.NewScalar()
	chi := group.NewScalar()
	for i, res := range results {
		if res == nil || res.PreSignature == nil {
			return fmt.Errorf("presign: result %d is nil", i)
		}
		if res.Reveal == nil {
			return fmt.Errorf("presign: result %d has no revealed secrets", i)
		}
		if !res.PreSignature.R.Equal(first.PreSignature.R) {
			return fmt.Errorf("presign: result %d has a different R", i)
		}
		if !bytes.Equal(res.PreSignature.ID, first.PreSignature.ID) {
			return fmt.Errorf("presign: result %d has a different ID", i)
		}
		if !res.PublicKey.Equal(first.PublicKey) {
			return fmt.Errorf("presign: result %d has a different public key", i)
		}
		if !res.Reveal.K.Equal(res.PreSignature.KShare) || !res.Reveal.Chi.Equal(res.PreSignature.ChiShare) {
			return fmt.Errorf("presign: result %d reveals shares it does not hold", i)
		}
		x.Add(res.Reveal.ECDSA)
		k.Add(res.Reveal.K)
		gamma.Add(res.Reveal.Gamma)
		delta.Add(res.Reveal.Delta)
		chi.Add(res.Reveal.Chi)
	}

	if !x.ActOnBase().Equal(first.PublicKey) {
		return errors.New("presign: shares do not add up to the public key")
	}
	if !group.NewScalar().Set(k).Mul(gamma).Equal(delta) {
		return errors.New("presign: δ ≠ kγ")
	}
	if !group.NewScalar().Set(k).Mul(x).Equal(chi) {
		return errors.New("presign: χ ≠ kx")
	}
	if !group.NewScalar().Set(k).Invert().ActOnBase().Equal(first.PreSignature.R) {
		return errors.New("presign: R ≠ k⁻¹⋅G")
	}
	return nil
}
