// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package protocol

import (
	"errors"
	"fmt"

	"MPC_PRESIGN/internal/round"
	"MPC_PRESIGN/pkg/party"
	"MPC_PRESIGN/pkg/zk"
)

// Error is a custom error for protocols which contains information about the responsible round in which it occurred,
// the party responsible and, when a proof failed to verify, its kind.
type Error struct {
	// Culprit is empty if the identity of the misbehaving party cannot be known.
	Culprits []party.ID
	// Round is the round whose messages or finalization failed.
	Round round.Number
	// Proof is the kind of the proof which failed, or 0.
	Proof zk.Kind
	// Err is the underlying error.
	Err error
}

// NewError wraps err, extracting the failed proof kind if there is one.
func NewError(number round.Number, err error, culprits ...party.ID) *Error {
	e := &Error{
		Culprits: culprits,
		Round:    number,
		Err:      err,
	}
	var zkErr *zk.Error
	if errors.As(err, &zkErr) {
		e.Proof = zkErr.Kind
	}
	return e
}

// Error implement error.
func (e Error) Error() string {
	msg := fmt.Sprintf("round %d: %s", e.Round, e.Err)
	if e.Culprits == nil {
		return msg
	}
	return fmt.Sprintf("culprits: %v: %s", e.Culprits, msg)
}

// Unwrap implement errors.Wrapper.
func (e Error) Unwrap() error {
	return e.Err
}
