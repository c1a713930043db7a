// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package presign implements the four round presigning protocol.
// Its output is an additive sharing of the nonce k and of χ = k⋅x, together with R = k⁻¹⋅G.
package presign

import (
	"errors"
	"fmt"
	"io"

	"MPC_PRESIGN/internal/round"
	"MPC_PRESIGN/pkg/math/curve"
	"MPC_PRESIGN/pkg/math/polynomial"
	"MPC_PRESIGN/pkg/paillier"
	"MPC_PRESIGN/pkg/party"
	"MPC_PRESIGN/pkg/pedersen"
	"MPC_PRESIGN/pkg/pool"
	"MPC_PRESIGN/pkg/protocol"
	"MPC_PRESIGN/pkg/ssid"
	"MPC_PRESIGN/pkg/zk"
	"MPC_PRESIGN/protocols/config"
	log "github.com/sirupsen/logrus"
)

const (
	protocolID                  = "cmp/presign-4round"
	protocolRounds round.Number = 4
)

// Policy selects who proves that Kᵢ encrypts a value in range.
type Policy uint8

const (
	// Pairwise makes every party prove to every other party.
	Pairwise Policy = iota
	// Designated makes a single party prove, and the others trust the rest.
	Designated
)

func (p Policy) String() string {
	switch p {
	case Pairwise:
		return "pairwise"
	case Designated:
		return "designated"
	default:
		return fmt.Sprintf("policy(%d)", uint8(p))
	}
}

// ParsePolicy is the inverse of Policy.String.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "pairwise":
		return Pairwise, nil
	case "designated":
		return Designated, nil
	}
	return 0, fmt.Errorf("presign: unknown prover policy %q", s)
}

// Options tune an execution. The zero value is the pairwise policy without revealed secrets.
type Options struct {
	Policy Policy
	// DesignatedProver is the only prover under Designated. Defaults to the first signer.
	DesignatedProver party.ID
	// Reveal attaches the party's secrets to the Result, for the validation pass.
	// Never set it outside of tests and demos.
	Reveal bool
	// Rand replaces crypto/rand, for reproducible runs.
	Rand io.Reader
}

// StartPresign returns a protocol.StartFunc for the presign protocol between signers.
func StartPresign(c *config.Config, signers []party.ID, pl *pool.Pool, opts Options) protocol.StartFunc {
	return func(sessionID []byte) (round.Session, error) {
		if c == nil {
			return nil, errors.New("presign: config is nil")
		}
		signerIDs := party.NewIDSlice(signers)
		if !c.CanSign(signerIDs) || len(signerIDs) != len(signers) {
			return nil, errors.New("presign: signers is not a valid signing subset")
		}
		// (N̂ⱼ, sⱼ, tⱼ) back every range proof of the session
		if err := c.ValidateAux(signerIDs, pl); err != nil {
			return nil, fmt.Errorf("presign: %w", err)
		}
		if opts.Policy == Designated {
			if opts.DesignatedProver == "" {
				opts.DesignatedProver = signerIDs[0]
			}
			if !signerIDs.Contains(opts.DesignatedProver) {
				return nil, fmt.Errorf("presign: designated prover %s is not a signer", opts.DesignatedProver)
			}
		}

		group := c.Group
		T := len(signerIDs)
		shares := make(map[party.ID]curve.Point, T)
		ECDSA := make(map[party.ID]curve.Point, T)
		Paillier := make(map[party.ID]*paillier.PublicKey, T)
		Pedersen := make(map[party.ID]*pedersen.Parameters, T)
		PublicKey := group.NewPoint()
		lagrange := polynomial.Lagrange(group, signerIDs)
		for _, j := range signerIDs {
			public := c.Public[j]
			shares[j] = public.ECDSA
			// scale public key share
			ECDSA[j] = lagrange[j].Act(public.ECDSA)
			Paillier[j] = public.Paillier
			Pedersen[j] = public.Pedersen
			PublicKey = PublicKey.Add(ECDSA[j])
		}

		SSID, err := ssid.New(ssid.Params{
			UID:       sessionID,
			RID:       c.RID,
			Rho:       c.Rho,
			Group:     group,
			PartyIDs:  signerIDs,
			Threshold: c.Threshold,
			Shares:    shares,
			Paillier:  Paillier,
			Pedersen:  Pedersen,
		})
		if err != nil {
			return nil, fmt.Errorf("presign: %w", err)
		}

		info := round.Info{
			ProtocolID:       protocolID,
			FinalRoundNumber: protocolRounds,
			SelfID:           c.ID,
			PartyIDs:         signerIDs,
			Threshold:        c.Threshold,
			Group:            group,
		}
		helper, err := round.NewSession(info, sessionID, pl, c, SSID)
		if err != nil {
			return nil, fmt.Errorf("presign: %w", err)
		}
		helper.WithRand(opts.Rand)
		log.WithFields(log.Fields{
			"party": c.ID,
			"ssid":  SSID.Fingerprint(),
		}).Debugf("presign: starting with %s prover policy", opts.Policy)

		return &presign1{
			Helper:         helper,
			Options:        opts,
			sid:            SSID,
			SecretECDSA:    group.NewScalar().Set(lagrange[c.ID]).Mul(c.ECDSA),
			SecretPaillier: c.Paillier,
			PublicKey:      PublicKey,
			ECDSA:          ECDSA,
			Paillier:       Paillier,
			Pedersen:       Pedersen,
		}, nil
	}
}

// context binds a proof to its prover and to the session.
func (r *presign1) context(prover party.ID) zk.Context {
	return zk.Context{Group: r.Group(), Hash: r.HashForID(prover), SSID: r.sid}
}

// proves reports whether id must send range proofs for its Kᵢ.
func (r *presign1) proves(id party.ID) bool {
	return r.Options.Policy != Designated || id == r.Options.DesignatedProver
}
