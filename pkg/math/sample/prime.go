// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package sample

import (
	"io"
	"math/big"
	"sync"

	"MPC_PRESIGN/internal/params"
	"MPC_PRESIGN/pkg/BigInt"
	"MPC_PRESIGN/pkg/pool"
)

const (
	// sieveSize is the number of consecutive candidates examined per random start.
	sieveSize = 1 << 18
	// primeBound bounds the small primes used to sieve.
	primeBound = 1 << 20
	// millerRabinRounds for (p-1)/2, the same count math/big uses internally.
	millerRabinRounds = 20
)

var (
	smallPrimesOnce sync.Once
	smallPrimes     []uint32

	sieves = sync.Pool{New: func() interface{} {
		s := make([]bool, sieveSize)
		return &s
	}}
)

// oddPrimesBelow runs the sieve of Eratosthenes up to bound and drops 2.
func oddPrimesBelow(bound uint32) []uint32 {
	composite := make([]bool, bound)
	var out []uint32
	for p := uint32(3); p < bound; p += 2 {
		if composite[p] {
			continue
		}
		out = append(out, p)
		for m := uint64(p) * uint64(p); m < uint64(bound); m += 2 * uint64(p) {
			composite[m] = true
		}
	}
	return out
}

// markCandidates sets sieve[δ] when base+δ ≡ 3 mod 4 and neither base+δ nor (base+δ-1)/2
// has a small prime factor. base must be ≡ 3 mod 4.
func markCandidates(base *big.Int, sieve []bool) {
	for i := range sieve {
		sieve[i] = i%4 == 0
	}
	r := new(big.Int)
	for _, prime := range smallPrimes {
		pr := int(prime)
		// x ≡ 0 mod p means p | x, x ≡ 1 mod p means p | (x-1)/2.
		r.SetUint64(uint64(prime)).Mod(base, r)
		first := (pr - int(r.Uint64())) % pr
		for i := first; i < len(sieve); i += pr {
			sieve[i] = false
			if i+1 < len(sieve) {
				sieve[i+1] = false
			}
		}
	}
}

// tryBlumPrime looks for a safe prime p ≡ 3 mod 4 of exactly params.BitsBlumPrime bits,
// starting from a random point. It returns nil when the window holds none.
func tryBlumPrime(rand io.Reader) *BigInt.Nat {
	smallPrimesOnce.Do(func() { smallPrimes = oddPrimesBelow(primeBound) })

	buf := make([]byte, (params.BitsBlumPrime+7)/8)
	if _, err := io.ReadFull(rand, buf); err != nil {
		return nil
	}
	// the two top bits make the product of two such primes twice as long
	buf[0] |= 0xC0
	buf[len(buf)-1] |= 3
	base := new(big.Int).SetBytes(buf)

	sp := sieves.Get().(*[]bool)
	defer sieves.Put(sp)
	sieve := *sp
	markCandidates(base, sieve)

	p, half := new(big.Int), new(big.Int)
	for delta, ok := range sieve {
		if !ok {
			continue
		}
		p.SetInt64(int64(delta)).Add(p, base)
		if p.BitLen() > params.BitsBlumPrime {
			return nil
		}
		half.Rsh(p, 1)
		if !half.ProbablyPrime(millerRabinRounds) {
			continue
		}
		// a single round is enough for p once (p-1)/2 is prime
		if !p.ProbablyPrime(0) {
			continue
		}
		return new(BigInt.Nat).SetBig(p)
	}
	return nil
}

// Paillier returns two safe Blum primes p, q for a Paillier modulus N = p⋅q,
// searched for in parallel on pl.
func Paillier(rand io.Reader, pl *pool.Pool) (p, q *BigInt.Nat) {
	reader := pool.NewLockedReader(rand)
	results := pl.Search(2, func() interface{} {
		if prime := tryBlumPrime(reader); prime != nil {
			return prime
		}
		// a typed nil would count as a result
		return nil
	})
	return results[0].(*BigInt.Nat), results[1].(*BigInt.Nat)
}
