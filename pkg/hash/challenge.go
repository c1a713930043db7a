// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package hash

import (
	"encoding/binary"

	"MPC_PRESIGN/pkg/BigInt"
	"github.com/minio/sha256-simd"
)

// Challenge maps the current state to an integer in [0, bound) by rejection sampling.
//
// Each candidate is derived from SHA-256(digest ‖ counter ‖ block), truncated to
// the bit length of bound; candidates ≥ bound are discarded and the counter is
// incremented. A bound ≤ 0 is a programming error and panics.
func (hash *Hash) Challenge(bound *BigInt.Nat) *BigInt.Nat {
	if bound == nil || bound.Data == nil || bound.GetSign() <= 0 {
		panic("hash: challenge bound must be positive")
	}
	digest := hash.Sum()
	bits := bound.BitLen()
	size := (bits + 7) / 8
	excess := uint(size*8 - bits)

	buf := make([]byte, 0, size+sha256.Size)
	candidate := new(BigInt.Nat)
	for counter := uint32(0); ; counter++ {
		buf = buf[:0]
		for block := uint32(0); len(buf) < size; block++ {
			h := sha256.New()
			_, _ = h.Write(digest)
			var tail [8]byte
			binary.BigEndian.PutUint32(tail[:4], counter)
			binary.BigEndian.PutUint32(tail[4:], block)
			_, _ = h.Write(tail[:])
			buf = h.Sum(buf)
		}
		b := buf[:size]
		b[0] &= 0xff >> excess
		candidate.SetBytes(b)
		if candidate.Cmp(bound) == -1 {
			return candidate
		}
	}
}
