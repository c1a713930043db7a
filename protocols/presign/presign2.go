// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package presign

import (
	"errors"
	"fmt"

	"MPC_PRESIGN/internal/mta"
	"MPC_PRESIGN/internal/round"
	"MPC_PRESIGN/pkg/BigInt"
	"MPC_PRESIGN/pkg/hash"
	"MPC_PRESIGN/pkg/math/curve"
	"MPC_PRESIGN/pkg/paillier"
	"MPC_PRESIGN/pkg/party"
	"MPC_PRESIGN/pkg/zk"
	zkenc "MPC_PRESIGN/pkg/zk/enc"
	zklogstar "MPC_PRESIGN/pkg/zk/logstar"
)

var _ round.Round = (*presign2)(nil)

type presign2 struct {
	*presign1

	// K[j] = Kⱼ = encⱼ(kⱼ)
	K map[party.ID]*paillier.Ciphertext
	// G[j] = Gⱼ = encⱼ(γⱼ)
	G map[party.ID]*paillier.Ciphertext

	// GammaShare = γᵢ
	GammaShare curve.Scalar
	// KShare = kᵢ
	KShare curve.Scalar

	// KNonce = ρᵢ
	KNonce *BigInt.Nat
	// GNonce = νᵢ
	GNonce *BigInt.Nat

	// PresignatureID[j] = idⱼ
	PresignatureID map[party.ID][]byte
	// CommitmentID[j] = Com(idⱼ)
	CommitmentID map[party.ID]hash.Commitment
	// DecommitmentID is the decommitment string for idᵢ
	DecommitmentID hash.Decommitment
}

type broadcast2 struct {
	round.ReliableBroadcastContent
	// K = Kᵢ
	K *paillier.Ciphertext
	// G = Gᵢ
	G *paillier.Ciphertext
	// CommitmentID = Com(idᵢ)
	CommitmentID hash.Commitment
}

type message2 struct {
	// Proof is nil when the sender is not a prover under the designated policy.
	Proof *zkenc.Proof
}

// StoreBroadcastMessage implements round.BroadcastRound.
//
// - store Kⱼ, Gⱼ, Com(idⱼ).
func (r *presign2) StoreBroadcastMessage(msg round.Message) error {
	body, ok := msg.Content.(*broadcast2)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if body.K == nil || body.G == nil {
		return round.ErrNilFields
	}
	if !r.Paillier[msg.From].ValidateCiphertexts(body.K, body.G) {
		return errors.New("invalid K, G")
	}
	if err := body.CommitmentID.Validate(); err != nil {
		return fmt.Errorf("commitment: %w", err)
	}
	r.K[msg.From] = body.K
	r.G[msg.From] = body.G
	r.CommitmentID[msg.From] = body.CommitmentID
	return nil
}

// VerifyMessage implements round.Round.
//
// - verify zkenc(Kⱼ).
func (r *presign2) VerifyMessage(msg round.Message) error {
	from, to := msg.From, msg.To
	body, ok := msg.Content.(*message2)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if body.Proof == nil {
		if r.proves(from) {
			return zk.Fail(zk.KindEnc, zk.ErrNilProof)
		}
		return nil
	}
	return body.Proof.Verify(r.context(from), zkenc.Public{
		K:      r.K[from],
		Prover: r.Paillier[from],
		Aux:    r.Pedersen[to],
	})
}

// StoreMessage implements round.Round.
func (presign2) StoreMessage(round.Message) error { return nil }

// exchange is the MtA state party i keeps for party j.
type exchange struct {
	err error
	// deltaBeta = βᵢⱼ, chiBeta = β̂ᵢⱼ
	deltaBeta, chiBeta *BigInt.Nat
	// deltaD = Dᵢⱼ, chiD = D̂ᵢⱼ, received from j in round 3
	deltaD, chiD *paillier.Ciphertext
}

// wipe zeroizes the β kept for j.
func (x *exchange) wipe() {
	x.deltaBeta.Zeroize()
	x.chiBeta.Zeroize()
}

// open returns αᵢⱼ + βᵢⱼ and α̂ᵢⱼ + β̂ᵢⱼ. The β are zeroized either way.
func (x *exchange) open(sk *paillier.SecretKey) (delta, chi *BigInt.Nat, err error) {
	defer x.wipe()
	if delta, err = mta.Share(sk, x.deltaD, x.deltaBeta); err != nil {
		return nil, nil, err
	}
	if chi, err = mta.Share(sk, x.chiD, x.chiBeta); err != nil {
		delta.Zeroize()
		return nil, nil, err
	}
	return delta, chi, nil
}

// collectExchanges keys the exchanges by peer. If one of them failed, the β of all are wiped.
func collectExchanges(ids []party.ID, results []interface{}) (map[party.ID]*exchange, error) {
	exchanges := make(map[party.ID]*exchange, len(ids))
	var err error
	for i, res := range results {
		e := res.(*exchange)
		if e.err != nil && err == nil {
			err = e.err
		}
		exchanges[ids[i]] = e
	}
	if err != nil {
		for _, e := range exchanges {
			e.wipe()
		}
		return nil, err
	}
	return exchanges, nil
}

// Finalize implements round.Round
//
// - Γᵢ = γᵢ⋅G
// - for every j, run the MtA for γᵢ⋅kⱼ (affp) and xᵢ⋅kⱼ (affg),
// - prove Gᵢ encrypts log Γᵢ (logstar),
// - decommit idᵢ.
func (r *presign2) Finalize(out chan<- *round.Message) (round.Session, error) {
	// Γᵢ = γᵢ⋅G
	BigGammaShare := r.GammaShare.ActOnBase()
	gamma := curve.MakeInt(r.GammaShare)
	x := curve.MakeInt(r.SecretECDSA)

	if err := r.BroadcastMessage(out, &broadcast3{
		BigGammaShare:  BigGammaShare,
		PresignatureID: r.PresignatureID[r.SelfID()],
		DecommitmentID: r.DecommitmentID,
	}); err != nil {
		return r, err
	}

	ctx := r.context(r.SelfID())
	otherIDs := r.OtherPartyIDs()
	results := r.Pool.Parallelize(len(otherIDs), func(i int) interface{} {
		j := otherIDs[i]

		pair := mta.Pair{
			Sender:   r.SecretPaillier,
			Receiver: r.Paillier[j],
			Aux:      r.Pedersen[j],
			K:        r.K[j],
		}
		delta, deltaProof, err := pair.AffP(r.Rand(), ctx, gamma, r.G[r.SelfID()], r.GNonce)
		if err != nil {
			return &exchange{err: err}
		}
		chi, chiProof, err := pair.AffG(r.Rand(), ctx, x, r.ECDSA[r.SelfID()])
		if err != nil {
			return &exchange{err: err, deltaBeta: delta.Beta}
		}
		logProof, err := zklogstar.NewProof(r.Rand(), ctx, zklogstar.Public{
			C:      r.G[r.SelfID()],
			X:      BigGammaShare,
			Prover: r.Paillier[r.SelfID()],
			Aux:    r.Pedersen[j],
		}, zklogstar.Private{
			X:   gamma,
			Rho: r.GNonce,
		})
		if err != nil {
			return &exchange{err: err, deltaBeta: delta.Beta, chiBeta: chi.Beta}
		}

		return &exchange{
			err: r.SendMessage(out, &message3{
				DeltaD:     delta.D,
				DeltaF:     delta.F,
				DeltaProof: deltaProof,
				ChiD:       chi.D,
				ChiF:       chi.F,
				ChiProof:   chiProof,
				LogProof:   logProof,
			}, j),
			deltaBeta: delta.Beta,
			chiBeta:   chi.Beta,
		}
	})
	exchanges, err := collectExchanges(otherIDs, results)
	if err != nil {
		return r, err
	}

	return &presign3{
		presign2:      r,
		exchanges:     exchanges,
		BigGammaShare: map[party.ID]curve.Point{r.SelfID(): BigGammaShare},
	}, nil
}

// RoundNumber implements round.Content.
func (message2) RoundNumber() round.Number { return 2 }

// MessageContent implements round.Round.
func (presign2) MessageContent() round.Content { return &message2{} }

// RoundNumber implements round.Content.
func (broadcast2) RoundNumber() round.Number { return 2 }

// BroadcastContent implements round.BroadcastRound.
func (presign2) BroadcastContent() round.BroadcastContent { return &broadcast2{} }

// Number implements round.Round.
func (presign2) Number() round.Number { return 2 }
