// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package zk holds what the Sigma proofs in its subpackages share: the proof
// kinds, the failure taxonomy and the Fiat-Shamir context.
package zk

import (
	"errors"
	"fmt"

	"MPC_PRESIGN/pkg/BigInt"
	"MPC_PRESIGN/pkg/hash"
	"MPC_PRESIGN/pkg/math/curve"
	"MPC_PRESIGN/pkg/ssid"
)

// Kind enumerates the proofs of this module.
type Kind uint8

const (
	KindEnc Kind = iota + 1
	KindLogStar
	KindAffG
	KindAffP
	KindDLEQ
	KindHiddenOrder
)

func (k Kind) String() string {
	switch k {
	case KindEnc:
		return "enc"
	case KindLogStar:
		return "logstar"
	case KindAffG:
		return "affg"
	case KindAffP:
		return "affp"
	case KindDLEQ:
		return "dleq"
	case KindHiddenOrder:
		return "hidden-order"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

var (
	ErrInvalidRange = errors.New("response out of range")
	ErrInvalidProof = errors.New("verification equation does not hold")
	ErrRngRequired  = errors.New("randomness source required")
	ErrMissingKey   = errors.New("missing public parameters")
	ErrMissingSSID  = errors.New("missing session identifier")
	ErrNilProof     = errors.New("nil proof")
)

// Error is returned by every verification in this module.
// Code is one of the sentinel errors above, so errors.Is(err, zk.ErrInvalidProof) holds.
type Error struct {
	Kind Kind
	Code error
	// Equation is the 1-based index of the failed equation when Code is ErrInvalidProof.
	Equation int
}

func (e *Error) Error() string {
	if e.Code == ErrInvalidProof {
		return fmt.Sprintf("zk %s: equation %d: %v", e.Kind, e.Equation, e.Code)
	}
	return fmt.Sprintf("zk %s: %v", e.Kind, e.Code)
}

func (e *Error) Unwrap() error { return e.Code }

// InvalidRange reports a response outside of its bound.
func InvalidRange(kind Kind) *Error {
	return &Error{Kind: kind, Code: ErrInvalidRange}
}

// InvalidProof reports that verification equation number equation failed.
func InvalidProof(kind Kind, equation int) *Error {
	return &Error{Kind: kind, Code: ErrInvalidProof, Equation: equation}
}

// Fail wraps code for kind.
func Fail(kind Kind, code error) *Error {
	return &Error{Kind: kind, Code: code}
}

// Context is what a challenge binds to besides the public parameters, the statement and the commitment.
type Context struct {
	Group curve.Curve
	// Hash is the transcript so far, usually holding the session and the prover's ID.
	// It is cloned and never modified.
	Hash *hash.Hash
	SSID *ssid.SSID
}

// Challenge returns e ∈ [0, q) derived from the transcript, data and the full SSID, in that order.
func (ctx Context) Challenge(data ...interface{}) (*BigInt.Nat, error) {
	if ctx.SSID == nil {
		return nil, ErrMissingSSID
	}
	var h *hash.Hash
	if ctx.Hash != nil {
		h = ctx.Hash.Clone()
	} else {
		h = hash.New()
	}
	if err := h.WriteAny(data...); err != nil {
		return nil, err
	}
	if err := h.WriteAny(ctx.SSID); err != nil {
		return nil, err
	}
	return h.Challenge(ctx.Group.Order()), nil
}

// Claim is a proof bound to the statement it proves.
type Claim interface {
	Kind() Kind
	Verify(ctx Context) error
}
