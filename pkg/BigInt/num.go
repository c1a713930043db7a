// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package BigInt

import (
	"errors"
	"fmt"
	"math/big"
	"runtime"
	"strings"

	"MPC_PRESIGN/internal/params"
)

// Nat wraps a big.Int.
// Nat can represent positive/negative numbers and 0
type Nat struct {
	Data *big.Int
}

var ErrNilData = errors.New("BigInt: nil data")

func (z *Nat) init() *Nat {
	if z.Data == nil {
		z.Data = new(big.Int)
	}
	return z
}

// SetBytes interprets a number in big-endian format, stores it in z, and returns z.
func (z *Nat) SetBytes(buf []byte) *Nat {
	z.init().Data.SetBytes(buf)
	return z
}

// BitLen return the length of the absolute value of z in bits.
func (z *Nat) BitLen() int {
	if z.Data == nil {
		return 0
	}
	return z.Data.BitLen()
}

// Bytes creates a slice containing the absolute value of z, in big endian
func (z *Nat) Bytes() []byte {
	if z.Data == nil {
		panic(ErrNilData)
	}
	return z.Data.Bytes()
}

// FillBytes writes the absolute value of z into buf, zero padded on the left.
// It panics if the value does not fit.
func (z *Nat) FillBytes(buf []byte) []byte {
	if z.Data == nil {
		panic(ErrNilData)
	}
	return z.Data.FillBytes(buf)
}

// Clone returns a copy of this value.
//
// This copy can safely be mutated without affecting the original.
func (z *Nat) Clone() *Nat {
	return new(Nat).SetNat(z)
}

// Bit returns the value of the i'th bit of |x|.
func (z *Nat) Bit(i uint) uint {
	return new(big.Int).Abs(z.Data).Bit(int(i))
}

// Abs return a new Nat of the Abs of z.
func (z *Nat) Abs() *Nat {
	return &Nat{Data: new(big.Int).Abs(z.Data)}
}

// MarshalBinary implements encoding.BinaryMarshaler.
// The first byte holds the sign (1 for negative), followed by the magnitude.
func (z *Nat) MarshalBinary() ([]byte, error) {
	if z.Data == nil {
		return nil, ErrNilData
	}
	out := make([]byte, 1, 1+len(z.Data.Bytes()))
	if z.Data.Sign() < 0 {
		out[0] = 1
	}
	return append(out, z.Data.Bytes()...), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (z *Nat) UnmarshalBinary(buf []byte) error {
	if len(buf) == 0 {
		return errors.New("BigInt: empty buffer")
	}
	if buf[0] > 1 {
		return fmt.Errorf("BigInt: invalid sign byte %d", buf[0])
	}
	z.init().Data.SetBytes(buf[1:])
	if buf[0] == 1 {
		z.Data.Neg(z.Data)
	}
	return nil
}

// SetHex modifies the value of z to hold a hex string, returning z
//
// The hex string must be in big endian order. If it contains characters
// other than 0..9, A..F, an error will be returned.
func (z *Nat) SetHex(hex string) (*Nat, error) {
	if _, ok := z.init().Data.SetString(hex, 16); !ok {
		return nil, fmt.Errorf("BigInt: invalid hex string %q", hex)
	}
	return z, nil
}

// String will represent this nat as an upper case decimal string.
func (z *Nat) String() string {
	if z.Data == nil {
		return "<nil>"
	}
	return strings.ToUpper(z.Data.String())
}

// Big returns a copy of z as a big.Int
func (z *Nat) Big() *big.Int {
	return new(big.Int).Set(z.Data)
}

// SetBig modifies z to contain the value of x,return z
func (z *Nat) SetBig(x *big.Int) *Nat {
	z.init().Data.Set(x)
	return z
}

// SetUint64 sets z to x, and returns z
func (z *Nat) SetUint64(x uint64) *Nat {
	z.init().Data.SetUint64(x)
	return z
}

// SetInt64 sets z to x, and returns z
func (z *Nat) SetInt64(x int64) *Nat {
	z.init().Data.SetInt64(x)
	return z
}

// Uint64 represents this number as uint64
//
// The behavior of this function is undefined if the announced length of z is > 64.
func (z *Nat) Uint64() uint64 {
	return z.Data.Uint64()
}

// SetNat copies the value of x into z
func (z *Nat) SetNat(x *Nat) *Nat {
	z.init().Data.Set(x.Data)
	return z
}

// GetSign returns:
//
//	-1 if x <  0
//	 0 if x == 0
//	+1 if x >  0
func (z *Nat) GetSign() int {
	return z.Data.Sign()
}

// Neg sets z to -z and returns z only when doit == 1
func (z *Nat) Neg(doit int) *Nat {
	if z.Data == nil {
		panic(ErrNilData)
	}
	if doit == 1 {
		z.Data.Neg(z.Data)
	}
	return z
}

// Mod calculates z <- x mod m and return z. The result is in 0..m-1.
func (z *Nat) Mod(x *Nat, m *Nat) *Nat {
	z.init().Data.Mod(x.Data, m.Data)
	return z
}

// Mod1 calculates z mod m into a new Nat, handling negatives correctly.
func (z *Nat) Mod1(m *Nat) *Nat {
	return new(Nat).Mod(z, m)
}

// Div calculates z <- x / m (Euclidean division), with m a Nat. Return z
func (z *Nat) Div(x *Nat, m *Nat) *Nat {
	z.init().Data.Div(x.Data, m.Data)
	return z
}

// ModAdd calculates z <- x + y mod m and return z
func (z *Nat) ModAdd(x *Nat, y *Nat, m *Nat) *Nat {
	z.init().Data.Add(x.Data, y.Data)
	z.Data.Mod(z.Data, m.Data)
	return z
}

// ModSub calculates z <- x - y mod m and return z
func (z *Nat) ModSub(x *Nat, y *Nat, m *Nat) *Nat {
	z.init().Data.Sub(x.Data, y.Data)
	z.Data.Mod(z.Data, m.Data)
	return z
}

// capTo reduces z modulo 2^cap when cap >= 0.
func (z *Nat) capTo(cap int) *Nat {
	if cap < 0 {
		return z
	}
	modulo := new(big.Int).Lsh(big.NewInt(1), uint(cap))
	z.Data.Mod(z.Data, modulo)
	return z
}

// Add calculates z <- x + y, modulo 2^cap and return z
// If cap < 0, the result is not reduced
func (z *Nat) Add(x *Nat, y *Nat, cap int) *Nat {
	z.init().Data.Add(x.Data, y.Data)
	return z.capTo(cap)
}

// Sub calculates z <- x - y, modulo 2^cap, and return z
func (z *Nat) Sub(x *Nat, y *Nat, cap int) *Nat {
	z.init().Data.Sub(x.Data, y.Data)
	return z.capTo(cap)
}

// ModMul calculates z <- x * y mod n and return z
func (z *Nat) ModMul(x *Nat, y *Nat, n *Nat) *Nat {
	z.init().Data.Mul(x.Data, y.Data)
	z.Data.Mod(z.Data, n.Data)
	return z
}

// Mul calculates z <- x * y, modulo 2^cap, and return z
func (z *Nat) Mul(x *Nat, y *Nat, cap int) *Nat {
	z.init().Data.Mul(x.Data, y.Data)
	return z.capTo(cap)
}

// Rsh calculates z <- x >> shift, producing a certain number of bits
// If cap < 0, the number of bits does not change
func (z *Nat) Rsh(x *Nat, shift uint, cap int) *Nat {
	z.init().Data.Rsh(x.Data, shift)
	return z.capTo(cap)
}

// Lsh calculates z <- x << shift, producing a certain number of bits
// If cap < 0, the number of bits does not change
func (z *Nat) Lsh(x *Nat, shift uint, cap int) *Nat {
	z.init().Data.Lsh(x.Data, shift)
	return z.capTo(cap)
}

// Exp sets z = x**y mod |n|, and returns z. y must be non negative.
func (z *Nat) Exp(x *Nat, y *Nat, n *Nat) *Nat {
	if z == nil {
		z = new(Nat)
	}
	z.init().Data.Exp(x.Data, y.Data, n.Data)
	return z
}

// ExpI sets z = x**y mod |n|, and returns z.
// Compared with Exp, ExpI works when y is negative, by inverting x^|y|.
func (z *Nat) ExpI(x *Nat, y *Nat, n *Nat) *Nat {
	z.init()
	abs := new(big.Int).Abs(y.Data)
	z.Data.Exp(x.Data, abs, n.Data)
	if y.Data.Sign() < 0 {
		z.Data.ModInverse(z.Data, n.Data)
	}
	return z
}

// Cmp compares two Nats, returning:
//
//	-1 if z <  y
//	 0 if z == y
//	+1 if z >  y
func (z *Nat) Cmp(y *Nat) int {
	return z.init().Data.Cmp(y.Data)
}

// Eq checks if z = y. return 1,else return 0
func (z *Nat) Eq(y *Nat) int {
	if z.Data.Cmp(y.Data) == 0 {
		return 1
	}
	return 0
}

// EqZero compares z to 0.
func (z *Nat) EqZero() int {
	if z.Data.Sign() == 0 {
		return 1
	}
	return 0
}

// Coprime returns 1 if gcd(x, y) == 1, and 0 otherwise
func (z *Nat) Coprime(y *Nat) int {
	if z.Data == nil || y.Data == nil {
		return 0
	}
	gcd := new(big.Int).GCD(nil, nil, new(big.Int).Abs(z.Data), new(big.Int).Abs(y.Data))
	if gcd.Cmp(big.NewInt(1)) == 0 {
		return 1
	}
	return 0
}

// ProbablyPrime performs n Miller-Rabin tests to check whether z is prime.
func (z *Nat) ProbablyPrime(n int) bool {
	return z.Data.ProbablyPrime(n)
}

// IsUnit checks if x is a unit, i.e. invertible, mod m.
func (z *Nat) IsUnit(m *Nat) int {
	return z.Coprime(m)
}

// ModInverse calculates z <- x^-1 mod m and return z
func (z *Nat) ModInverse(x *Nat, m *Nat) *Nat {
	z.init().Data.ModInverse(x.Data, m.Data)
	return z
}

// IsValidNatModN checks that ints are all in the range [1,…,N-1] and co-prime to N.
func IsValidNatModN(N *Nat, ints ...*Nat) bool {
	for _, i := range ints {
		if i == nil || i.Data == nil {
			return false
		}
		if i.Data.Sign() != 1 {
			return false
		}
		if i.Cmp(N) != -1 {
			return false
		}
		if i.IsUnit(N) != 1 {
			return false
		}
	}
	return true
}

// IsInIntervalLEps returns true if n ∈ [-2ˡ⁺ᵉ,…,2ˡ⁺ᵉ].
func IsInIntervalLEps(n *Nat) bool {
	if n == nil || n.Data == nil {
		return false
	}
	return n.BitLen() <= params.LPlusEpsilon
}

// IsInIntervalLPrimeEps returns true if n ∈ [-2ˡ'⁺ᵉ,…,2ˡ'⁺ᵉ].
func IsInIntervalLPrimeEps(n *Nat) bool {
	if n == nil || n.Data == nil {
		return false
	}
	return n.BitLen() <= params.LPrimePlusEpsilon
}

// SetModSymmetric takes a number x mod M, and returns a signed number centered around 0.
//
// This effectively takes numbers in the range:
//
//	{0, .., m - 1}
//
// And returns numbers in the range:
//
//	{-(m - 1)/2, ..., 0, ..., (m - 1)/2}
//
// In the case that m is even, there will simply be an extra negative number.
func (z *Nat) SetModSymmetric(x *Nat, m *Nat) *Nat {
	z.init().Data.Mod(x.Data, m.Data)
	negated := new(big.Int).Sub(m.Data, z.Data)
	if negated.Cmp(z.Data) <= 0 {
		z.Data.Neg(negated)
	}
	return z
}

// CheckInRange returns 1 if z is a valid output of SetModSymmetric for m.
func (z *Nat) CheckInRange(m *Nat) int {
	half := new(big.Int).Rsh(m.Data, 1)
	abs := new(big.Int).Abs(z.Data)
	if abs.Cmp(half) <= 0 {
		return 1
	}
	return 0
}

// CRTExpN implements Exp using CRT acceleration
// It returns xᵉ (mod n) where n = p⋅q and u = p⁻¹ (mod q).
func (z *Nat) CRTExpN(x, e, n, p, q, u *Nat) *Nat {
	one := new(Nat).SetUint64(1)
	ps1 := new(Nat).Sub(p, one, -1)
	qs1 := new(Nat).Sub(q, one, -1)

	xp := new(Nat).Mod(x, p)
	xq := new(Nat).Mod(x, q)
	ep := new(Nat).Mod(e, ps1)
	eq := new(Nat).Mod(e, qs1)

	xp.Exp(xp, ep, p) // x_p = xpᵉ (mod p)
	xq.Exp(xq, eq, q) // x_q = xqᵉ (mod q)

	// r = x_p + p ⋅ [u ⋅ (x_q - x_p) (mod q)]
	z.init()
	h := new(Nat).ModSub(xq, xp, q)
	h.ModMul(h, u, q)
	z.Mul(h, p, -1)
	z.Add(z, xp, -1)
	return z.Mod(z, n)
}

// CRTExpN2 returns xᵉ (mod n²) given p², q² and pinv2 = (p²)⁻¹ (mod q²).
func (z *Nat) CRTExpN2(x, e, n2, p2, q2, p, q, pinv2 *Nat) *Nat {
	ps1 := new(Nat).Sub(p2, p, -1) // φ(p²)
	qs1 := new(Nat).Sub(q2, q, -1) // φ(q²)

	xp := new(Nat).Mod(x, p2)
	xq := new(Nat).Mod(x, q2)
	ep := new(Nat).Mod(e, ps1)
	eq := new(Nat).Mod(e, qs1)

	xp.Exp(xp, ep, p2)
	xq.Exp(xq, eq, q2)

	z.init()
	h := new(Nat).ModSub(xq, xp, q2)
	h.ModMul(h, pinv2, q2)
	z.Mul(h, p2, -1)
	z.Add(z, xp, -1)
	return z.Mod(z, n2)
}

// Zeroize overwrites the limbs of z and resets it to 0.
func (z *Nat) Zeroize() {
	if z == nil || z.Data == nil {
		return
	}
	words := z.Data.Bits()
	for i := range words {
		words[i] = 0
	}
	runtime.KeepAlive(words)
	z.Data.SetUint64(0)
}
