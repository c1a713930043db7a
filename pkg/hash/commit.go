// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package hash

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"

	"MPC_PRESIGN/internal/params"
	"github.com/zeebo/blake3"
)

// Commitment is the blake3 binding of a Decommitment and some data.
type Commitment []byte

// Decommitment is the random nonce revealed to open a Commitment.
type Decommitment []byte

func (c Commitment) Validate() error {
	if l := len(c); l != params.SecBytes {
		return fmt.Errorf("commitment: incorrect length (got %d, expected %d)", l, params.SecBytes)
	}
	return nil
}

func (d Decommitment) Validate() error {
	if l := len(d); l != params.SecBytes {
		return fmt.Errorf("decommitment: incorrect length (got %d, expected %d)", l, params.SecBytes)
	}
	return nil
}

func (hash *Hash) commitment(decommitment Decommitment, data ...interface{}) (Commitment, error) {
	h := hash.Clone()
	if err := h.WriteAny(data...); err != nil {
		return nil, err
	}
	if err := h.WriteAny(BytesWithDomain{TheDomain: "Decommitment", Bytes: decommitment}); err != nil {
		return nil, err
	}
	sum := blake3.Sum256(h.state)
	return sum[:], nil
}

// Commit creates a commitment to data, and returns a commitment hash, and a decommitment string such that
// commitment = h(data, decommitment).
func (hash *Hash) Commit(data ...interface{}) (Commitment, Decommitment, error) {
	decommitment := make(Decommitment, params.SecBytes)
	if _, err := io.ReadFull(rand.Reader, decommitment); err != nil {
		return nil, nil, errors.New("hash.Commit: failed to generate decommitment")
	}
	commitment, err := hash.commitment(decommitment, data...)
	if err != nil {
		return nil, nil, fmt.Errorf("hash.Commit: %w", err)
	}
	return commitment, decommitment, nil
}

// Decommit verifies that the commitment corresponds to the data and decommitment such that
// commitment = h(data, decommitment).
func (hash *Hash) Decommit(c Commitment, d Decommitment, data ...interface{}) bool {
	if c.Validate() != nil || d.Validate() != nil {
		return false
	}
	expected, err := hash.commitment(d, data...)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(expected, c) == 1
}
