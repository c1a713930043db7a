// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package config

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"MPC_PRESIGN/internal/params"
	"MPC_PRESIGN/pkg/BigInt"
	"MPC_PRESIGN/pkg/math/curve"
	"MPC_PRESIGN/pkg/math/polynomial"
	"MPC_PRESIGN/pkg/math/sample"
	"MPC_PRESIGN/pkg/paillier"
	"MPC_PRESIGN/pkg/party"
	"MPC_PRESIGN/pkg/pool"
	log "github.com/sirupsen/logrus"
	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"
)

// Dealer creates the key material of every party from a single secret.
// It stands in for a key generation protocol in tests and demos.
type Dealer struct {
	Group     curve.Curve
	Threshold int
	// Rand is used for the rid, rho and Pedersen parameters. Defaults to crypto/rand.
	Rand io.Reader
	Pool *pool.Pool
	// Paillier returns the Paillier key of the party at position i of the sorted IDs.
	// When nil, fresh keys are generated, which takes a while.
	Paillier func(i int) *paillier.SecretKey
}

// NewMnemonic returns a fresh 24 word BIP-39 mnemonic.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

// SecretFromMnemonic derives the group secret from the BIP-32 master key of mnemonic.
func SecretFromMnemonic(group curve.Curve, mnemonic, password string) (curve.Scalar, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, password)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	masterKey, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	n := new(BigInt.Nat).SetBytes(masterKey.Key)
	secret := group.NewScalar().SetNat(n)
	n.Zeroize()
	if secret.IsZero() {
		return nil, errors.New("config: mnemonic derives a zero secret")
	}
	return secret, nil
}

// Deal splits secret into Shamir shares of degree Threshold, one per ID, and
// gives every party a Paillier key and proven Pedersen parameters.
// A nil secret is sampled.
func (d *Dealer) Deal(ids []party.ID, secret curve.Scalar) (map[party.ID]*Config, error) {
	partyIDs := party.NewIDSlice(ids)
	if len(partyIDs) != len(ids) || !partyIDs.Valid() {
		return nil, errors.New("config: party IDs must be distinct and non empty")
	}
	if d.Group == nil {
		return nil, errors.New("config: dealer has no group")
	}
	if !ValidThreshold(d.Threshold, len(partyIDs)) {
		return nil, fmt.Errorf("config: threshold %d is invalid for %d parties", d.Threshold, len(partyIDs))
	}
	rng := d.Rand
	if rng == nil {
		rng = rand.Reader
	}
	if secret == nil {
		secret = sample.Scalar(rng, d.Group)
	}
	f := polynomial.NewPolynomial(rng, d.Group, d.Threshold, secret)
	defer f.Zeroize()

	rid, err := combined(rng, len(partyIDs))
	if err != nil {
		return nil, err
	}
	rho, err := combined(rng, len(partyIDs))
	if err != nil {
		return nil, err
	}

	shares := make(map[party.ID]curve.Scalar, len(partyIDs))
	secrets := make(map[party.ID]*paillier.SecretKey, len(partyIDs))
	public := make(map[party.ID]*Public, len(partyIDs))
	for i, j := range partyIDs {
		shares[j] = f.Evaluate(j.Scalar(d.Group))
		if d.Paillier != nil {
			secrets[j] = d.Paillier(i)
		} else {
			log.Infof("config: generating Paillier key for %s", j)
			secrets[j] = paillier.NewSecretKey(d.Pool)
		}
		if secrets[j] == nil {
			return nil, fmt.Errorf("config: no Paillier key for %s", j)
		}
		ped, lambda := secrets[j].GeneratePedersen(rng)
		proof, err := ProveAux(rng, j, secrets[j], ped, lambda, d.Pool)
		lambda.Zeroize()
		if err != nil {
			return nil, err
		}
		public[j] = &Public{
			ECDSA:    shares[j].ActOnBase(),
			Paillier: secrets[j].PublicKey,
			Pedersen: ped,
			AuxProof: proof,
		}
	}

	configs := make(map[party.ID]*Config, len(partyIDs))
	for _, j := range partyIDs {
		configs[j] = &Config{
			Group:     d.Group,
			ID:        j,
			Threshold: d.Threshold,
			ECDSA:     shares[j],
			Paillier:  secrets[j],
			RID:       append([]byte(nil), rid...),
			Rho:       append([]byte(nil), rho...),
			Public:    public,
		}
	}
	return configs, nil
}

// combined plays the part of n parties contributing to a shared random string.
func combined(rng io.Reader, n int) ([]byte, error) {
	out := make([]byte, params.SecBytes)
	contribution := make([]byte, params.SecBytes)
	for i := 0; i < n; i++ {
		if _, err := io.ReadFull(rng, contribution); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		for k := range out {
			out[k] ^= contribution[k]
		}
	}
	return out, nil
}
