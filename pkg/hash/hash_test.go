package hash

import (
	"crypto/rand"
	"io"
	"math/big"
	"testing"

	"MPC_PRESIGN/pkg/BigInt"
	"MPC_PRESIGN/pkg/math/curve"
	"MPC_PRESIGN/pkg/math/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash_WriteAny(t *testing.T) {
	testFunc := func(vs ...interface{}) error {
		h := New()
		for _, v := range vs {
			if err := h.WriteAny(v); err != nil {
				return err
			}
		}
		return nil
	}
	b := big.NewInt(35)
	i := new(BigInt.Nat).SetBig(b)
	m := new(BigInt.Nat).SetBytes(b.Bytes())

	assert.NoError(t, testFunc(i, m))
	assert.NoError(t, testFunc(sample.Scalar(rand.Reader, curve.Secp256k1{})))
	assert.NoError(t, testFunc(sample.Scalar(rand.Reader, curve.Secp256k1{}).ActOnBase()))
	assert.NoError(t, testFunc([]byte{1, 4, 6}, "label", uint64(3), 7))
	assert.Error(t, testFunc(nil))
	assert.Error(t, testFunc(3.5))
}

func TestHash_DomainSeparation(t *testing.T) {
	a := New()
	require.NoError(t, a.WriteAny([]byte{1, 2}, []byte{3}))
	b := New()
	require.NoError(t, b.WriteAny([]byte{1}, []byte{2, 3}))
	assert.NotEqual(t, a.Sum(), b.Sum())

	c := New()
	require.NoError(t, c.WriteAny("ab"))
	d := New()
	require.NoError(t, d.WriteAny([]byte("ab")))
	assert.NotEqual(t, c.Sum(), d.Sum())
}

func TestHash_Clone(t *testing.T) {
	h := New()
	require.NoError(t, h.WriteAny([]byte("prefix")))
	c := h.Clone()
	assert.Equal(t, h.Sum(), c.Sum())
	f := h.Fork([]byte("suffix"))
	assert.NotEqual(t, h.Sum(), f.Sum())
	assert.Equal(t, h.Sum(), c.Sum())
}

func TestHash_Digest(t *testing.T) {
	h := New(BytesWithDomain{TheDomain: "test", Bytes: []byte{1}})
	a := make([]byte, 100)
	b := make([]byte, 100)
	_, err := io.ReadFull(h.Digest(), a)
	require.NoError(t, err)
	_, err = io.ReadFull(h.Clone().Digest(), b)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestChallenge(t *testing.T) {
	q := curve.Secp256k1{}.Order()
	h := New()
	require.NoError(t, h.WriteAny([]byte("statement")))
	e1 := h.Challenge(q)
	e2 := h.Clone().Challenge(q)
	assert.Equal(t, 1, e1.Eq(e2))
	assert.Equal(t, -1, e1.Cmp(q))
	assert.NotEqual(t, -1, e1.GetSign())

	small := new(BigInt.Nat).SetUint64(5)
	for i := 0; i < 50; i++ {
		hi := h.Fork(i)
		assert.Equal(t, -1, hi.Challenge(small).Cmp(small))
	}

	large := new(BigInt.Nat).Lsh(new(BigInt.Nat).SetUint64(1), 700, -1)
	assert.Equal(t, -1, h.Challenge(large).Cmp(large))

	assert.Panics(t, func() { h.Challenge(new(BigInt.Nat).SetUint64(0)) })
	assert.Panics(t, func() { h.Challenge(new(BigInt.Nat).SetInt64(-3)) })
}

func TestCommit(t *testing.T) {
	h := New()
	c, d, err := h.Commit([]byte("hello"), uint64(5))
	require.NoError(t, err)
	assert.True(t, h.Decommit(c, d, []byte("hello"), uint64(5)))
	assert.False(t, h.Decommit(c, d, []byte("hellp"), uint64(5)))
	d[0] ^= 1
	assert.False(t, h.Decommit(c, d, []byte("hello"), uint64(5)))
	assert.False(t, h.Decommit(c[:3], d, []byte("hello"), uint64(5)))
}
