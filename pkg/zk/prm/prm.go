// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package zkprm proves knowledge of α with B₁ = B₀^α (mod N) in a group of unknown order.
//
// It is used on auxiliary Pedersen parameters (N̂, s, t) where s = t^λ.
package zkprm

import (
	"io"

	"MPC_PRESIGN/internal/params"
	"MPC_PRESIGN/pkg/BigInt"
	"MPC_PRESIGN/pkg/hash"
	"MPC_PRESIGN/pkg/math/arith"
	"MPC_PRESIGN/pkg/math/sample"
	"MPC_PRESIGN/pkg/pedersen"
	"MPC_PRESIGN/pkg/pool"
	"MPC_PRESIGN/pkg/wire"
	"MPC_PRESIGN/pkg/zk"
)

const kind = zk.KindHiddenOrder

// Rounds is the number of single bit challenge repetitions.
const Rounds = 128

type Public struct {
	N      *arith.Modulus
	B0, B1 *BigInt.Nat
}

// FromPedersen returns the statement s = t^λ (mod N̂).
func FromPedersen(aux *pedersen.Parameters) Public {
	return Public{N: aux.NArith(), B0: aux.T(), B1: aux.S()}
}

type Private struct {
	// Alpha is the discrete log of B1, Phi = ϕ(N).
	Alpha, Phi *BigInt.Nat
	// P, Q speed up the prover when set.
	P, Q *BigInt.Nat
}

type Proof struct {
	As, Zs [Rounds]*BigInt.Nat
}

func (p Public) valid() bool {
	if p.N == nil || p.B0 == nil || p.B1 == nil {
		return false
	}
	return BigInt.IsValidNatModN(p.N.Nat(), p.B0, p.B1)
}

// NewProof returns a proof with Aᵢ = B₀^aᵢ and zᵢ = aᵢ + eᵢ⋅α (mod ϕ(N)).
func NewProof(rand io.Reader, h *hash.Hash, public Public, private Private, pl *pool.Pool) (*Proof, error) {
	if rand == nil {
		return nil, zk.Fail(kind, zk.ErrRngRequired)
	}
	if !public.valid() || private.Alpha == nil || private.Phi == nil {
		return nil, zk.Fail(kind, zk.ErrMissingKey)
	}
	n := public.N
	if private.P != nil && private.Q != nil {
		n = arith.ModulusFromFactors(private.P, private.Q)
	}
	phi := private.Phi

	var as, As [Rounds]*BigInt.Nat
	lockedRand := pool.NewLockedReader(rand)
	pl.Parallelize(Rounds, func(i int) interface{} {
		as[i] = sample.ModN(lockedRand, phi)
		As[i] = n.Exp(public.B0, as[i])
		return nil
	})

	es, err := challenge(h, public, As)
	if err != nil {
		return nil, err
	}

	var Zs [Rounds]*BigInt.Nat
	for i := 0; i < Rounds; i++ {
		z := new(BigInt.Nat).SetNat(as[i])
		// the challenge is public
		if es[i] {
			z.ModAdd(z, private.Alpha, phi)
		}
		Zs[i] = z
		as[i].Zeroize()
	}
	return &Proof{As: As, Zs: Zs}, nil
}

// Verify checks B₀^zᵢ = Aᵢ⋅B₁^eᵢ (mod N) for every round.
// The returned error names the first failing round, counting from 1.
func (p *Proof) Verify(h *hash.Hash, public Public, pl *pool.Pool) error {
	if p == nil {
		return zk.Fail(kind, zk.ErrNilProof)
	}
	if !public.valid() {
		return zk.Fail(kind, zk.ErrMissingKey)
	}
	if public.B0.Cmp(public.B1) == 0 {
		return zk.InvalidRange(kind)
	}
	n := public.N.Nat()
	for i := 0; i < Rounds; i++ {
		if !BigInt.IsValidNatModN(n, p.As[i]) || p.Zs[i] == nil || p.Zs[i].Data == nil {
			return zk.InvalidRange(kind)
		}
		if p.Zs[i].GetSign() < 0 || p.Zs[i].Cmp(n) >= 0 {
			return zk.InvalidRange(kind)
		}
	}

	es, err := challenge(h, public, p.As)
	if err != nil {
		return err
	}

	one := new(BigInt.Nat).SetUint64(1)
	results := pl.Parallelize(Rounds, func(i int) interface{} {
		a := p.As[i]
		if a.Cmp(one) == 0 {
			return false
		}
		lhs := public.N.Exp(public.B0, p.Zs[i])
		rhs := a
		if es[i] {
			rhs = new(BigInt.Nat).ModMul(a, public.B1, n)
		}
		return lhs.Cmp(rhs) == 0
	})
	for i, r := range results {
		if ok, _ := r.(bool); !ok {
			return zk.InvalidProof(kind, i+1)
		}
	}
	return nil
}

// challenge unpacks Rounds bits from the digest, least significant bit first.
func challenge(h *hash.Hash, public Public, As [Rounds]*BigInt.Nat) ([]bool, error) {
	if h == nil {
		h = hash.New()
	} else {
		h = h.Clone()
	}
	if err := h.WriteAny(public.N.Nat(), public.B0, public.B1); err != nil {
		return nil, err
	}
	for _, a := range As {
		if err := h.WriteAny(a); err != nil {
			return nil, err
		}
	}

	packed := make([]byte, Rounds/8)
	if _, err := io.ReadFull(h.Digest(), packed); err != nil {
		return nil, err
	}
	es := make([]bool, Rounds)
	for i := range es {
		es[i] = (packed[i/8]>>(i%8))&1 == 1
	}
	return es, nil
}

// MarshalBinary encodes A₁, …, A₁₂₈ followed by z₁, …, z₁₂₈.
func (p *Proof) MarshalBinary() ([]byte, error) {
	if p == nil {
		return nil, zk.Fail(kind, zk.ErrNilProof)
	}
	e := wire.NewEncoder()
	for _, a := range p.As {
		e.Nat(a, params.BytesIntModN)
	}
	for _, z := range p.Zs {
		e.Nat(z, params.BytesIntModN)
	}
	return e.Bytes()
}

func (p *Proof) UnmarshalBinary(data []byte) error {
	d := wire.NewDecoder(data)
	var out Proof
	for i := range out.As {
		out.As[i] = d.Nat(params.BytesIntModN)
	}
	for i := range out.Zs {
		out.Zs[i] = d.Nat(params.BytesIntModN)
	}
	if err := d.Finish(); err != nil {
		return err
	}
	*p = out
	return nil
}
