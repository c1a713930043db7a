package paillier_test

import (
	"bytes"
	"crypto/rand"
	"testing"

	"MPC_PRESIGN/internal/params"
	"MPC_PRESIGN/internal/test"
	"MPC_PRESIGN/pkg/BigInt"
	"MPC_PRESIGN/pkg/paillier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncDec(t *testing.T) {
	sk := test.PaillierSecret(0)
	half := new(BigInt.Nat).Rsh(sk.N(), 1, -1)
	for _, m := range []*BigInt.Nat{
		new(BigInt.Nat).SetUint64(0),
		new(BigInt.Nat).SetInt64(42),
		new(BigInt.Nat).SetInt64(-42),
		half,
		half.Clone().Neg(1),
	} {
		ct, _ := sk.Enc(m)
		got, err := sk.Dec(ct)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Cmp(m), "decrypting %v", m)
	}

	assert.Panics(t, func() {
		sk.Enc(new(BigInt.Nat).Add(half, new(BigInt.Nat).SetUint64(1), -1))
	})
}

func TestEncWithNonce(t *testing.T) {
	sk := test.PaillierSecret(1)
	m := new(BigInt.Nat).SetInt64(-7)
	ct, nonce := sk.EncWithReader(rand.Reader, m)
	assert.True(t, ct.Equal(sk.EncWithNonce(m, nonce)))

	// a public key without the factorization encrypts the same way
	pk := paillier.NewPublicKeyFromN(sk.N())
	assert.True(t, pk.Equal(sk.PublicKey))
	assert.True(t, ct.Equal(pk.EncWithNonce(m, nonce)))
}

func TestHomomorphism(t *testing.T) {
	sk := test.PaillierSecret(0)
	a := new(BigInt.Nat).SetInt64(1000)
	b := new(BigInt.Nat).SetInt64(-37)
	ca, _ := sk.Enc(a)
	cb, _ := sk.Enc(b)

	sum, err := sk.Dec(ca.Clone().Add(sk.PublicKey, cb))
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Cmp(new(BigInt.Nat).SetInt64(963)))

	product, err := sk.Dec(ca.Clone().Mul(sk.PublicKey, b))
	require.NoError(t, err)
	assert.Equal(t, 0, product.Cmp(new(BigInt.Nat).SetInt64(-37000)))

	// the operands are left alone
	got, err := sk.Dec(ca)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Cmp(a))
}

func TestDecInvalid(t *testing.T) {
	sk := test.PaillierSecret(0)
	_, err := sk.Dec(nil)
	assert.ErrorIs(t, err, paillier.ErrInvalidCipher)

	var zero paillier.Ciphertext
	require.NoError(t, zero.UnmarshalBinary(make([]byte, params.BytesCiphertext)))
	_, err = sk.Dec(&zero)
	assert.ErrorIs(t, err, paillier.ErrInvalidCipher)

	// N shares a factor with N²
	var shared paillier.Ciphertext
	require.NoError(t, shared.UnmarshalBinary(sk.N().FillBytes(make([]byte, params.BytesCiphertext))))
	assert.False(t, sk.ValidateCiphertexts(&shared))

	assert.Error(t, zero.UnmarshalBinary([]byte{1, 2, 3}))
}

func TestValidatePrime(t *testing.T) {
	sk := test.PaillierSecret(0)
	assert.NoError(t, paillier.ValidatePrime(sk.P()))
	assert.NoError(t, paillier.ValidatePrime(sk.Q()))

	plus := func(k uint64) *BigInt.Nat {
		return new(BigInt.Nat).Add(sk.P(), new(BigInt.Nat).SetUint64(k), -1)
	}
	assert.ErrorIs(t, paillier.ValidatePrime(nil), paillier.ErrPrimeNil)
	assert.ErrorIs(t, paillier.ValidatePrime(new(BigInt.Nat).SetUint64(7)), paillier.ErrPrimeBadLength)
	assert.ErrorIs(t, paillier.ValidatePrime(plus(2)), paillier.ErrNotBlum)
	// (p+7)/2 = q+4 is a multiple of 3 for a safe prime p = 2q+1
	assert.ErrorIs(t, paillier.ValidatePrime(plus(8)), paillier.ErrNotSafePrime)
}

func TestValidateN(t *testing.T) {
	n := test.PaillierSecret(0).N()
	assert.NoError(t, paillier.ValidateN(n))
	assert.ErrorIs(t, paillier.ValidateN(nil), paillier.ErrPaillierNil)
	assert.ErrorIs(t, paillier.ValidateN(new(BigInt.Nat).SetUint64(15)), paillier.ErrPaillierLength)
	assert.ErrorIs(t, paillier.ValidateN(new(BigInt.Nat).Add(n, new(BigInt.Nat).SetUint64(1), -1)), paillier.ErrPaillierEven)
}

func TestWriteTo(t *testing.T) {
	sk := test.PaillierSecret(0)
	var buf bytes.Buffer
	n, err := sk.PublicKey.WriteTo(&buf)
	require.NoError(t, err)
	assert.EqualValues(t, params.BytesPaillier, n)
	assert.Equal(t, sk.N().FillBytes(make([]byte, params.BytesPaillier)), buf.Bytes())
}
