// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package presign

import (
	"errors"
	"fmt"

	"MPC_PRESIGN/internal/params"
	"MPC_PRESIGN/internal/round"
	"MPC_PRESIGN/pkg/BigInt"
	"MPC_PRESIGN/pkg/hash"
	"MPC_PRESIGN/pkg/math/curve"
	"MPC_PRESIGN/pkg/paillier"
	"MPC_PRESIGN/pkg/party"
	zkaffg "MPC_PRESIGN/pkg/zk/affg"
	zkaffp "MPC_PRESIGN/pkg/zk/affp"
	zklogstar "MPC_PRESIGN/pkg/zk/logstar"
	"golang.org/x/sync/errgroup"
)

var _ round.Round = (*presign3)(nil)

type presign3 struct {
	*presign2

	exchanges map[party.ID]*exchange

	// BigGammaShare[j] = Γⱼ = [γⱼ]⋅G
	BigGammaShare map[party.ID]curve.Point
}

type broadcast3 struct {
	round.NormalBroadcastContent
	// BigGammaShare = Γᵢ
	BigGammaShare curve.Point
	// PresignatureID = idᵢ
	PresignatureID []byte
	// DecommitmentID opens the commitment to idᵢ
	DecommitmentID hash.Decommitment
}

type message3 struct {
	DeltaD     *paillier.Ciphertext // DeltaD = Dⱼᵢ
	DeltaF     *paillier.Ciphertext // DeltaF = Fⱼᵢ
	DeltaProof *zkaffp.Proof
	ChiD       *paillier.Ciphertext // ChiD = D̂ⱼᵢ
	ChiF       *paillier.Ciphertext // ChiF = F̂ⱼᵢ
	ChiProof   *zkaffg.Proof
	LogProof   *zklogstar.Proof
}

// StoreBroadcastMessage implements round.BroadcastRound.
//
// - store Γⱼ, open the commitment to idⱼ.
func (r *presign3) StoreBroadcastMessage(msg round.Message) error {
	from := msg.From
	body, ok := msg.Content.(*broadcast3)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if body.BigGammaShare == nil || body.BigGammaShare.IsIdentity() {
		return round.ErrNilFields
	}
	if len(body.PresignatureID) != params.SecBytes {
		return errors.New("presignature ID has wrong length")
	}
	if err := body.DecommitmentID.Validate(); err != nil {
		return fmt.Errorf("decommitment: %w", err)
	}
	if !r.HashForID(from).Decommit(r.CommitmentID[from], body.DecommitmentID, body.PresignatureID) {
		return errors.New("failed to decommit presignature ID")
	}
	r.BigGammaShare[from] = body.BigGammaShare
	r.PresignatureID[from] = body.PresignatureID
	return nil
}

// VerifyMessage implements round.Round.
//
// - verify zkaffp, zkaffg and zklogstar, concurrently.
func (r *presign3) VerifyMessage(msg round.Message) error {
	from, to := msg.From, msg.To
	body, ok := msg.Content.(*message3)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if body.DeltaProof == nil || body.ChiProof == nil || body.LogProof == nil {
		return round.ErrNilFields
	}
	if !r.Paillier[to].ValidateCiphertexts(body.DeltaD, body.ChiD) {
		return errors.New("invalid D ciphertexts")
	}
	if !r.Paillier[from].ValidateCiphertexts(body.DeltaF, body.ChiF) {
		return errors.New("invalid F ciphertexts")
	}

	ctx := r.context(from)
	var proofs errgroup.Group
	proofs.Go(func() error {
		err := body.DeltaProof.Verify(ctx, zkaffp.Public{
			Kv:       r.K[to],
			Dv:       body.DeltaD,
			Fp:       body.DeltaF,
			Xp:       r.G[from],
			Prover:   r.Paillier[from],
			Verifier: r.Paillier[to],
			Aux:      r.Pedersen[to],
		})
		if err != nil {
			return fmt.Errorf("delta MtA: %w", err)
		}
		return nil
	})
	proofs.Go(func() error {
		err := body.ChiProof.Verify(ctx, zkaffg.Public{
			Kv:       r.K[to],
			Dv:       body.ChiD,
			Fp:       body.ChiF,
			Xp:       r.ECDSA[from],
			Prover:   r.Paillier[from],
			Verifier: r.Paillier[to],
			Aux:      r.Pedersen[to],
		})
		if err != nil {
			return fmt.Errorf("chi MtA: %w", err)
		}
		return nil
	})
	proofs.Go(func() error {
		err := body.LogProof.Verify(ctx, zklogstar.Public{
			C:      r.G[from],
			X:      r.BigGammaShare[from],
			Prover: r.Paillier[from],
			Aux:    r.Pedersen[to],
		})
		if err != nil {
			return fmt.Errorf("Γ: %w", err)
		}
		return nil
	})
	return proofs.Wait()
}

// StoreMessage implements round.Round.
//
// - store Dⱼᵢ, D̂ⱼᵢ.
func (r *presign3) StoreMessage(msg round.Message) error {
	body := msg.Content.(*message3)
	e := r.exchanges[msg.From]
	e.deltaD, e.chiD = body.DeltaD, body.ChiD
	return nil
}

// Finalize implements round.Round
//
// - decrypt αᵢⱼ, α̂ᵢⱼ,
// - δᵢ = γᵢ kᵢ + ∑ⱼ αᵢⱼ + βᵢⱼ
// - χᵢ = xᵢ kᵢ + ∑ⱼ α̂ᵢⱼ + β̂ᵢⱼ
// - Γ = ∑ⱼ Γⱼ
// - Δᵢ = [kᵢ]Γ, with a zklogstar proof to every j.
func (r *presign3) Finalize(out chan<- *round.Message) (round.Session, error) {
	KShareInt := curve.MakeInt(r.KShare)
	// δᵢ = γᵢ kᵢ
	delta := new(BigInt.Nat).Mul(curve.MakeInt(r.GammaShare), KShareInt, -1)
	defer delta.Zeroize()
	// χᵢ = xᵢ kᵢ
	chi := new(BigInt.Nat).Mul(curve.MakeInt(r.SecretECDSA), KShareInt, -1)
	defer chi.Zeroize()

	var culprits []party.ID
	for _, j := range r.OtherPartyIDs() {
		d, c, err := r.exchanges[j].open(r.SecretPaillier)
		if err != nil {
			culprits = append(culprits, j)
			continue
		}
		delta.Add(delta, d, -1)
		chi.Add(chi, c, -1)
		d.Zeroize()
		c.Zeroize()
	}
	if culprits != nil {
		return r.AbortRound(errors.New("failed to decrypt alpha shares for mta"), culprits...), nil
	}
	DeltaShareScalar := r.scalar(delta)
	ChiShareScalar := r.scalar(chi)

	// Γ = ∑ⱼ Γⱼ
	Gamma := r.Group().NewPoint()
	for _, j := range r.PartyIDs() {
		Gamma = Gamma.Add(r.BigGammaShare[j])
	}
	// Δᵢ = [kᵢ]Γ
	BigDeltaShare := r.KShare.Act(Gamma)

	if err := r.BroadcastMessage(out, &broadcast4{
		DeltaShare:    DeltaShareScalar,
		BigDeltaShare: BigDeltaShare,
	}); err != nil {
		return r, err
	}

	ctx := r.context(r.SelfID())
	otherIDs := r.OtherPartyIDs()
	errs := r.Pool.Parallelize(len(otherIDs), func(i int) interface{} {
		j := otherIDs[i]
		proof, err := zklogstar.NewProof(r.Rand(), ctx, zklogstar.Public{
			C:      r.K[r.SelfID()],
			X:      BigDeltaShare,
			G:      Gamma,
			Prover: r.Paillier[r.SelfID()],
			Aux:    r.Pedersen[j],
		}, zklogstar.Private{
			X:   KShareInt,
			Rho: r.KNonce,
		})
		if err != nil {
			return err
		}
		return r.SendMessage(out, &message4{Proof: proof}, j)
	})
	for _, err := range errs {
		if err != nil {
			return r, err.(error)
		}
	}

	return &presign4{
		presign3:       r,
		Gamma:          Gamma,
		ChiShare:       ChiShareScalar,
		DeltaShares:    map[party.ID]curve.Scalar{r.SelfID(): DeltaShareScalar},
		BigDeltaShares: map[party.ID]curve.Point{r.SelfID(): BigDeltaShare},
	}, nil
}

// scalar reduces n mod q, leaving no unreduced copy behind.
func (r *presign3) scalar(n *BigInt.Nat) curve.Scalar {
	reduced := n.Mod1(r.Group().Order())
	defer reduced.Zeroize()
	return r.Group().NewScalar().SetNat(reduced)
}

// RoundNumber implements round.Content.
func (message3) RoundNumber() round.Number { return 3 }

// MessageContent implements round.Round.
func (r *presign3) MessageContent() round.Content {
	return &message3{
		ChiProof: zkaffg.Empty(r.Group()),
		LogProof: zklogstar.Empty(r.Group()),
	}
}

// RoundNumber implements round.Content.
func (broadcast3) RoundNumber() round.Number { return 3 }

// BroadcastContent implements round.BroadcastRound.
func (r *presign3) BroadcastContent() round.BroadcastContent {
	return &broadcast3{
		BigGammaShare: r.Group().NewPoint(),
	}
}

// Number implements round.Round.
func (presign3) Number() round.Number { return 3 }
