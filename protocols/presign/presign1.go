// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package presign

import (
	"io"

	"MPC_PRESIGN/internal/params"
	"MPC_PRESIGN/internal/round"
	"MPC_PRESIGN/pkg/hash"
	"MPC_PRESIGN/pkg/math/curve"
	"MPC_PRESIGN/pkg/math/sample"
	"MPC_PRESIGN/pkg/paillier"
	"MPC_PRESIGN/pkg/party"
	"MPC_PRESIGN/pkg/pedersen"
	"MPC_PRESIGN/pkg/ssid"
	zkenc "MPC_PRESIGN/pkg/zk/enc"
)

var _ round.Round = (*presign1)(nil)

type presign1 struct {
	*round.Helper

	Options Options
	// sid is what every proof of this session is bound to.
	sid *ssid.SSID

	// SecretECDSA = xᵢ, scaled by the Lagrange coefficient of the signer set
	SecretECDSA curve.Scalar
	// SecretPaillier = (pᵢ, qᵢ)
	SecretPaillier *paillier.SecretKey

	// PublicKey = X
	PublicKey curve.Point
	// ECDSA[j] = Xⱼ
	ECDSA map[party.ID]curve.Point
	// Paillier[j] = Nⱼ
	Paillier map[party.ID]*paillier.PublicKey
	// Pedersen[j] = (Nⱼ,Sⱼ,Tⱼ)
	Pedersen map[party.ID]*pedersen.Parameters
}

// VerifyMessage implements round.Round.
func (presign1) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (presign1) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round
//
// - sample kᵢ, γᵢ <- 𝔽,
// - Gᵢ = Encᵢ(γᵢ;νᵢ)
// - Kᵢ = Encᵢ(kᵢ;ρᵢ)
// - commit to a presignature ID contribution
// - prove Kᵢ is in range, to every party j under the pedersen parameters of j.
func (r *presign1) Finalize(out chan<- *round.Message) (round.Session, error) {
	// γᵢ <- 𝔽,
	GammaShare := sample.Scalar(r.Rand(), r.Group())
	// Gᵢ = Encᵢ(γᵢ;νᵢ)
	G, GNonce := r.Paillier[r.SelfID()].EncWithReader(r.Rand(), curve.MakeInt(GammaShare))

	// kᵢ <- 𝔽,
	KShare := sample.Scalar(r.Rand(), r.Group())
	KShareInt := curve.MakeInt(KShare)
	// Kᵢ = Encᵢ(kᵢ;ρᵢ)
	K, KNonce := r.Paillier[r.SelfID()].EncWithReader(r.Rand(), KShareInt)

	presignatureID := make([]byte, params.SecBytes)
	if _, err := io.ReadFull(r.Rand(), presignatureID); err != nil {
		return r, err
	}
	commitmentID, decommitmentID, err := r.HashForID(r.SelfID()).Commit(presignatureID)
	if err != nil {
		return r, err
	}

	if err = r.BroadcastMessage(out, &broadcast2{
		K:            K,
		G:            G,
		CommitmentID: commitmentID,
	}); err != nil {
		return r, err
	}

	otherIDs := r.OtherPartyIDs()
	errs := r.Pool.Parallelize(len(otherIDs), func(i int) interface{} {
		j := otherIDs[i]
		msg := &message2{}
		if r.proves(r.SelfID()) {
			proof, err := zkenc.NewProof(r.Rand(), r.context(r.SelfID()), zkenc.Public{
				K:      K,
				Prover: r.Paillier[r.SelfID()],
				Aux:    r.Pedersen[j],
			}, zkenc.Private{
				K:   KShareInt,
				Rho: KNonce,
			})
			if err != nil {
				return err
			}
			msg.Proof = proof
		}
		return r.SendMessage(out, msg, j)
	})
	for _, err := range errs {
		if err != nil {
			return r, err.(error)
		}
	}

	return &presign2{
		presign1:       r,
		K:              map[party.ID]*paillier.Ciphertext{r.SelfID(): K},
		G:              map[party.ID]*paillier.Ciphertext{r.SelfID(): G},
		GammaShare:     GammaShare,
		KShare:         KShare,
		KNonce:         KNonce,
		GNonce:         GNonce,
		PresignatureID: map[party.ID][]byte{r.SelfID(): presignatureID},
		CommitmentID:   map[party.ID]hash.Commitment{r.SelfID(): commitmentID},
		DecommitmentID: decommitmentID,
	}, nil
}

// MessageContent implements round.Round.
func (presign1) MessageContent() round.Content { return nil }

// Number implements round.Round.
func (presign1) Number() round.Number { return 1 }
