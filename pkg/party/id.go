// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package party names the participants of a protocol.
package party

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"MPC_PRESIGN/pkg/BigInt"
	"MPC_PRESIGN/pkg/math/curve"
)

// MaxIDLength bounds an ID so that distinct IDs map to distinct non zero scalars.
const MaxIDLength = 31

var ErrInvalidID = errors.New("party: invalid ID")

// ID represents a unique identifier for a participant in our scheme.
// It is also the x coordinate of the participant's Shamir share.
type ID string

// Validate checks that id is usable as a share's evaluation point and as a hash input:
// it is non empty, at most MaxIDLength bytes, and contains no zero byte.
func (id ID) Validate() error {
	switch {
	case id == "":
		return fmt.Errorf("%w: empty", ErrInvalidID)
	case len(id) > MaxIDLength:
		return fmt.Errorf("%w: %q is longer than %d bytes", ErrInvalidID, id, MaxIDLength)
	case strings.IndexByte(string(id), 0) >= 0:
		return fmt.Errorf("%w: %q contains a zero byte", ErrInvalidID, id)
	}
	return nil
}

// Scalar interprets the bytes of id as a big endian integer.
func (id ID) Scalar(group curve.Curve) curve.Scalar {
	return group.NewScalar().SetNat(new(BigInt.Nat).SetBytes([]byte(id)))
}

// WriteTo makes ID implement the io.WriterTo interface.
func (id ID) WriteTo(w io.Writer) (int64, error) {
	if id == "" {
		return 0, io.ErrUnexpectedEOF
	}
	n, err := io.WriteString(w, string(id))
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain, and separates this type within hash.Hash.
func (ID) Domain() string {
	return "ID"
}
