// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package config

import (
	"fmt"
	"io"

	"MPC_PRESIGN/pkg/BigInt"
	"MPC_PRESIGN/pkg/hash"
	"MPC_PRESIGN/pkg/paillier"
	"MPC_PRESIGN/pkg/party"
	"MPC_PRESIGN/pkg/pedersen"
	"MPC_PRESIGN/pkg/pool"
	zkprm "MPC_PRESIGN/pkg/zk/prm"
)

// ProveAux proves that s = t^λ for the Pedersen parameters of owner.
func ProveAux(rand io.Reader, owner party.ID, sk *paillier.SecretKey, aux *pedersen.Parameters, lambda *BigInt.Nat, pl *pool.Pool) (*zkprm.Proof, error) {
	return zkprm.NewProof(rand, hash.New(owner), zkprm.FromPedersen(aux), zkprm.Private{
		Alpha: lambda,
		Phi:   sk.Phi(),
		P:     sk.P(),
		Q:     sk.Q(),
	}, pl)
}

// VerifyAux checks the proof attached to the Pedersen parameters of owner.
func VerifyAux(owner party.ID, public *Public, pl *pool.Pool) error {
	if public == nil || public.Pedersen == nil {
		return fmt.Errorf("config: no Pedersen parameters for %s", owner)
	}
	if public.AuxProof == nil {
		return fmt.Errorf("config: no aux proof for %s", owner)
	}
	if err := public.AuxProof.Verify(hash.New(owner), zkprm.FromPedersen(public.Pedersen), pl); err != nil {
		return fmt.Errorf("config: aux setup of %s: %w", owner, err)
	}
	return nil
}

// ValidateAux verifies the auxiliary setup of every party in ids.
func (c *Config) ValidateAux(ids []party.ID, pl *pool.Pool) error {
	for _, j := range ids {
		public, ok := c.Public[j]
		if !ok {
			return fmt.Errorf("config: unknown party %s", j)
		}
		if err := VerifyAux(j, public, pl); err != nil {
			return err
		}
	}
	return nil
}
