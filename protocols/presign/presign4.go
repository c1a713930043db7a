// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package presign

import (
	"errors"
	"fmt"

	"MPC_PRESIGN/internal/round"
	"MPC_PRESIGN/pkg/ecdsa"
	"MPC_PRESIGN/pkg/math/curve"
	"MPC_PRESIGN/pkg/party"
	"MPC_PRESIGN/pkg/ssid"
	zklogstar "MPC_PRESIGN/pkg/zk/logstar"
	log "github.com/sirupsen/logrus"
)

var _ round.Round = (*presign4)(nil)

type presign4 struct {
	*presign3

	// Gamma = ∑ⱼ Γⱼ
	Gamma curve.Point
	// ChiShare = χᵢ
	ChiShare curve.Scalar

	// DeltaShares[j] = δⱼ
	DeltaShares map[party.ID]curve.Scalar
	// BigDeltaShares[j] = Δⱼ = [kⱼ]•Γ
	BigDeltaShares map[party.ID]curve.Point
}

type broadcast4 struct {
	round.NormalBroadcastContent
	// DeltaShare = δⱼ
	DeltaShare curve.Scalar
	// BigDeltaShare = Δⱼ = [kⱼ]•Γ
	BigDeltaShare curve.Point
}

type message4 struct {
	Proof *zklogstar.Proof
}

// StoreBroadcastMessage implements round.BroadcastRound.
//
// - store δⱼ, Δⱼ.
func (r *presign4) StoreBroadcastMessage(msg round.Message) error {
	body, ok := msg.Content.(*broadcast4)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if body.DeltaShare == nil || body.BigDeltaShare == nil {
		return round.ErrNilFields
	}
	if body.DeltaShare.IsZero() || body.BigDeltaShare.IsIdentity() {
		return round.ErrNilFields
	}
	r.DeltaShares[msg.From] = body.DeltaShare
	r.BigDeltaShares[msg.From] = body.BigDeltaShare
	return nil
}

// VerifyMessage implements round.Round.
//
// - verify that Kⱼ encrypts log_Γ Δⱼ.
func (r *presign4) VerifyMessage(msg round.Message) error {
	from, to := msg.From, msg.To
	body, ok := msg.Content.(*message4)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if body.Proof == nil {
		return round.ErrNilFields
	}
	if err := body.Proof.Verify(r.context(from), zklogstar.Public{
		C:      r.K[from],
		X:      r.BigDeltaShares[from],
		G:      r.Gamma,
		Prover: r.Paillier[from],
		Aux:    r.Pedersen[to],
	}); err != nil {
		return fmt.Errorf("Δ: %w", err)
	}
	return nil
}

// StoreMessage implements round.Round.
func (presign4) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round
//
// - δ = ∑ⱼ δⱼ, and check [δ]G = ∑ⱼ Δⱼ
// - R = [δ⁻¹] Γ
// - id = ⊕ⱼ idⱼ
func (r *presign4) Finalize(chan<- *round.Message) (round.Session, error) {
	// δ = ∑ⱼ δⱼ
	// Δ = ∑ⱼ Δⱼ
	Delta := r.Group().NewScalar()
	BigDelta := r.Group().NewPoint()
	for _, j := range r.PartyIDs() {
		Delta.Add(r.DeltaShares[j])
		BigDelta = BigDelta.Add(r.BigDeltaShares[j])
	}

	// Δ == [δ]G
	deltaComputed := Delta.ActOnBase()
	if !deltaComputed.Equal(BigDelta) {
		return r.AbortRound(errors.New("computed Δ is inconsistent with [δ]G")), nil
	}
	if Delta.IsZero() {
		return r.AbortRound(errors.New("δ is zero")), nil
	}

	// R = [δ⁻¹] Γ
	deltaInv := r.Group().NewScalar().Set(Delta).Invert()
	R := deltaInv.Act(r.Gamma)

	contributions := make([][]byte, 0, r.N())
	for _, j := range r.PartyIDs() {
		contributions = append(contributions, r.PresignatureID[j])
	}
	presignatureID, err := ssid.XOR(contributions...)
	if err != nil {
		return r, err
	}

	preSignature := &ecdsa.PreSignature{
		ID:       presignatureID,
		R:        R,
		KShare:   r.KShare,
		ChiShare: r.ChiShare,
		Signers:  r.PartyIDs(),
	}
	if err = preSignature.Validate(); err != nil {
		return r, fmt.Errorf("presign: %w", err)
	}

	result := &Result{
		PreSignature: preSignature,
		PublicKey:    r.PublicKey,
	}
	if r.Options.Reveal {
		result.Reveal = &Reveal{
			ECDSA: r.SecretECDSA,
			K:     r.KShare,
			Gamma: r.GammaShare,
			Delta: r.DeltaShares[r.SelfID()],
			Chi:   r.ChiShare,
		}
	} else {
		r.GammaShare.Zeroize()
	}
	log.WithField("party", r.SelfID()).Debug("presign: done")
	return r.ResultRound(result), nil
}

// RoundNumber implements round.Content.
func (message4) RoundNumber() round.Number { return 4 }

// MessageContent implements round.Round.
func (r *presign4) MessageContent() round.Content {
	return &message4{Proof: zklogstar.Empty(r.Group())}
}

// RoundNumber implements round.Content.
func (broadcast4) RoundNumber() round.Number { return 4 }

// BroadcastContent implements round.BroadcastRound.
func (r *presign4) BroadcastContent() round.BroadcastContent {
	return &broadcast4{
		DeltaShare:    r.Group().NewScalar(),
		BigDeltaShare: r.Group().NewPoint(),
	}
}

// Number implements round.Round.
func (presign4) Number() round.Number { return 4 }
