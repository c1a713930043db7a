// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package config holds the key material of one party, the trusted dealer that
// creates it and the validation of the auxiliary (N̂, s, t) setup.
package config

import (
	"errors"
	"fmt"
	"io"

	"MPC_PRESIGN/internal/params"
	"MPC_PRESIGN/pkg/BigInt"
	"MPC_PRESIGN/pkg/math/arith"
	"MPC_PRESIGN/pkg/math/curve"
	"MPC_PRESIGN/pkg/math/polynomial"
	"MPC_PRESIGN/pkg/paillier"
	"MPC_PRESIGN/pkg/party"
	"MPC_PRESIGN/pkg/pedersen"
	zkprm "MPC_PRESIGN/pkg/zk/prm"
	"github.com/fxamacker/cbor/v2"
)

// Config represents the stored state of a party who participated in a successful keygen.
type Config struct {
	Group curve.Curve
	// ID of the party this config belongs to
	ID party.ID
	// Threshold is the maximum number of corrupted parties, a signer set needs Threshold+1 members.
	Threshold int
	// ECDSA is this party's share xᵢ of the secret ECDSA x.
	ECDSA curve.Scalar
	// Paillier is this party's Paillier secret key.
	Paillier *paillier.SecretKey
	// RID and Rho are the shared random identifiers agreed on at key generation.
	RID, Rho []byte
	// Public maps party.ID to public. It contains all parties, including this one.
	Public map[party.ID]*Public
}

// Public holds public information for a party.
type Public struct {
	// ECDSA public key share
	ECDSA curve.Point
	// Paillier is the party's Paillier public key.
	Paillier *paillier.PublicKey
	// Pedersen is the party's auxiliary (N̂, s, t).
	Pedersen *pedersen.Parameters
	// AuxProof shows that s lies in the group generated by t.
	AuxProof *zkprm.Proof
}

// EmptyConfig creates an empty Config with a fixed group, ready for unmarshalling.
func EmptyConfig(group curve.Curve) *Config {
	return &Config{Group: group}
}

// PartyIDs returns a sorted slice of party IDs.
func (c *Config) PartyIDs() party.IDSlice {
	ids := make([]party.ID, 0, len(c.Public))
	for j := range c.Public {
		ids = append(ids, j)
	}
	return party.NewIDSlice(ids)
}

// PublicPoint returns the group's public ECC point.
func (c *Config) PublicPoint() curve.Point {
	sum := c.Group.NewPoint()
	partyIDs := c.PartyIDs()
	l := polynomial.Lagrange(c.Group, partyIDs)
	for _, j := range partyIDs {
		sum = sum.Add(l[j].Act(c.Public[j].ECDSA))
	}
	return sum
}

// CanSign returns true if the given _sorted_ list of signers is
// a valid subset of the original parties of size > t,
// and includes self.
func (c *Config) CanSign(signers party.IDSlice) bool {
	if !ValidThreshold(c.Threshold, len(signers)) {
		return false
	}
	if len(signers) <= c.Threshold {
		return false
	}
	for _, j := range signers {
		if _, ok := c.Public[j]; !ok {
			return false
		}
	}
	return signers.Contains(c.ID)
}

// ValidThreshold reports whether 0 ≤ t < n.
func ValidThreshold(t, n int) bool {
	return t >= 0 && t < n && n <= 0xffff
}

// Validate checks that the config is internally consistent.
func (c *Config) Validate() error {
	if c.Group == nil {
		return errors.New("config: missing group")
	}
	if !ValidThreshold(c.Threshold, len(c.Public)) {
		return fmt.Errorf("config: threshold %d is invalid for %d parties", c.Threshold, len(c.Public))
	}
	if len(c.RID) != params.SecBytes || len(c.Rho) != params.SecBytes {
		return errors.New("config: rid and rho must be 32 bytes")
	}
	public, ok := c.Public[c.ID]
	if !ok {
		return errors.New("config: own public data missing")
	}
	if c.ECDSA == nil || c.ECDSA.IsZero() {
		return errors.New("config: ECDSA share is zero")
	}
	if !c.ECDSA.ActOnBase().Equal(public.ECDSA) {
		return errors.New("config: ECDSA share does not match its public point")
	}
	if c.Paillier == nil || !c.Paillier.PublicKey.Equal(public.Paillier) {
		return errors.New("config: Paillier secret does not match its public key")
	}
	for j, p := range c.Public {
		if p == nil || p.ECDSA == nil || p.Paillier == nil || p.Pedersen == nil {
			return fmt.Errorf("config: public data of %s is incomplete", j)
		}
		if p.AuxProof == nil {
			return fmt.Errorf("config: no aux proof for %s", j)
		}
		if p.ECDSA.IsIdentity() {
			return fmt.Errorf("config: public share of %s is the identity", j)
		}
		if err := paillier.ValidateN(p.Paillier.N()); err != nil {
			return fmt.Errorf("config: Paillier key of %s: %w", j, err)
		}
		if err := pedersen.ValidateParameters(p.Pedersen.N(), p.Pedersen.S(), p.Pedersen.T()); err != nil {
			return fmt.Errorf("config: Pedersen parameters of %s: %w", j, err)
		}
	}
	return nil
}

// WriteTo implements io.WriterTo interface.
func (c *Config) WriteTo(w io.Writer) (total int64, err error) {
	if c == nil {
		return 0, io.ErrUnexpectedEOF
	}
	var n int64
	for _, v := range [][]byte{c.RID, c.Rho} {
		var k int
		k, err = w.Write(v)
		total += int64(k)
		if err != nil {
			return
		}
	}
	for _, j := range c.PartyIDs() {
		n, err = j.WriteTo(w)
		total += n
		if err != nil {
			return
		}
		var data []byte
		if data, err = c.Public[j].ECDSA.MarshalBinary(); err != nil {
			return
		}
		var k int
		k, err = w.Write(data)
		total += int64(k)
		if err != nil {
			return
		}
		n, err = c.Public[j].Paillier.WriteTo(w)
		total += n
		if err != nil {
			return
		}
		n, err = c.Public[j].Pedersen.WriteTo(w)
		total += n
		if err != nil {
			return
		}
	}
	return
}

// Domain implements hash.WriterToWithDomain.
func (c *Config) Domain() string {
	return "CMP Config"
}

type publicMarshal struct {
	ID       party.ID
	ECDSA    []byte
	N        *BigInt.Nat
	S        *BigInt.Nat
	T        *BigInt.Nat
	AuxProof []byte
}

type configMarshal struct {
	ID        party.ID
	Threshold int
	ECDSA     []byte
	P, Q      *BigInt.Nat
	RID, Rho  []byte
	Public    []publicMarshal
}

func (c *Config) MarshalBinary() ([]byte, error) {
	ecdsa, err := c.ECDSA.MarshalBinary()
	if err != nil {
		return nil, err
	}
	cm := configMarshal{
		ID:        c.ID,
		Threshold: c.Threshold,
		ECDSA:     ecdsa,
		P:         c.Paillier.P(),
		Q:         c.Paillier.Q(),
		RID:       c.RID,
		Rho:       c.Rho,
		Public:    make([]publicMarshal, 0, len(c.Public)),
	}
	for _, j := range c.PartyIDs() {
		p := c.Public[j]
		point, err := p.ECDSA.MarshalBinary()
		if err != nil {
			return nil, err
		}
		pm := publicMarshal{
			ID:    j,
			ECDSA: point,
			N:     p.Paillier.N(),
			S:     p.Pedersen.S(),
			T:     p.Pedersen.T(),
		}
		if p.AuxProof != nil {
			if pm.AuxProof, err = p.AuxProof.MarshalBinary(); err != nil {
				return nil, err
			}
		}
		cm.Public = append(cm.Public, pm)
	}
	return cbor.Marshal(&cm)
}

func (c *Config) UnmarshalBinary(data []byte) error {
	if c.Group == nil {
		return errors.New("config: UnmarshalBinary called without setting a group")
	}
	var cm configMarshal
	if err := cbor.Unmarshal(data, &cm); err != nil {
		return err
	}
	if cm.P == nil || cm.Q == nil {
		return errors.New("config: missing Paillier primes")
	}
	secret := c.Group.NewScalar()
	if err := secret.UnmarshalBinary(cm.ECDSA); err != nil {
		return err
	}
	public := make(map[party.ID]*Public, len(cm.Public))
	for _, pm := range cm.Public {
		if _, dup := public[pm.ID]; dup {
			return fmt.Errorf("config: duplicate party %s", pm.ID)
		}
		if pm.N == nil || pm.S == nil || pm.T == nil {
			return fmt.Errorf("config: public data of %s is incomplete", pm.ID)
		}
		point := c.Group.NewPoint()
		if err := point.UnmarshalBinary(pm.ECDSA); err != nil {
			return err
		}
		p := &Public{
			ECDSA:    point,
			Paillier: paillier.NewPublicKeyFromN(pm.N),
			Pedersen: pedersen.New(arith.ModulusFromN(pm.N), pm.S, pm.T),
		}
		if len(pm.AuxProof) != 0 {
			p.AuxProof = &zkprm.Proof{}
			if err := p.AuxProof.UnmarshalBinary(pm.AuxProof); err != nil {
				return fmt.Errorf("config: aux proof of %s: %w", pm.ID, err)
			}
		}
		public[pm.ID] = p
	}
	for _, prime := range []*BigInt.Nat{cm.P, cm.Q} {
		if err := paillier.ValidatePrime(prime); err != nil {
			return fmt.Errorf("config: Paillier secret: %w", err)
		}
	}
	*c = Config{
		Group:     c.Group,
		ID:        cm.ID,
		Threshold: cm.Threshold,
		ECDSA:     secret,
		Paillier:  paillier.NewSecretKeyFromPrimes(cm.P, cm.Q),
		RID:       cm.RID,
		Rho:       cm.Rho,
		Public:    public,
	}
	return c.Validate()
}
