package pedersen_test

import (
	"bytes"
	"crypto/rand"
	"testing"

	"MPC_PRESIGN/internal/params"
	"MPC_PRESIGN/internal/test"
	"MPC_PRESIGN/pkg/BigInt"
	"MPC_PRESIGN/pkg/math/sample"
	"MPC_PRESIGN/pkg/pedersen"
	"github.com/stretchr/testify/assert"
)

func TestPedersenCommitVerify(t *testing.T) {
	sk := test.PaillierSecret(0)
	ped, _ := sk.GeneratePedersen(rand.Reader)
	assert.NoError(t, pedersen.ValidateParameters(ped.N(), ped.S(), ped.T()))

	x := sample.IntervalLEps(rand.Reader)
	y := sample.IntervalLEpsN(rand.Reader)
	a := sample.IntervalLEps(rand.Reader)
	b := sample.IntervalLEpsN(rand.Reader)
	e := sample.IntervalScalar(rand.Reader, test.Group)

	S := ped.Commit(x, y)
	T := ped.Commit(a, b)

	// z₁ = a + e⋅x, z₂ = b + e⋅y
	z1 := new(BigInt.Nat).Mul(e, x, -1)
	z1.Add(z1, a, -1)
	z2 := new(BigInt.Nat).Mul(e, y, -1)
	z2.Add(z2, b, -1)
	assert.True(t, ped.Verify(z1, z2, e, T, S))

	z1.Add(z1, new(BigInt.Nat).SetUint64(1), -1)
	assert.False(t, ped.Verify(z1, z2, e, T, S))
	assert.False(t, ped.Verify(nil, z2, e, T, S))
}

func TestValidateParameters(t *testing.T) {
	n := new(BigInt.Nat).SetUint64(15)
	s := new(BigInt.Nat).SetUint64(2)
	assert.Equal(t, pedersen.ErrNilFields, pedersen.ValidateParameters(nil, s, s))
	assert.Equal(t, pedersen.ErrSEqualT, pedersen.ValidateParameters(n, s, s))
	assert.Equal(t, pedersen.ErrNotValidModN, pedersen.ValidateParameters(n, s, new(BigInt.Nat).SetUint64(5)))
}

func TestParametersMarshal(t *testing.T) {
	sk := test.PaillierSecret(1)
	ped, _ := sk.GeneratePedersen(rand.Reader)
	data, err := ped.MarshalBinary()
	assert.NoError(t, err)

	var decoded pedersen.Parameters
	assert.NoError(t, decoded.UnmarshalBinary(data))
	assert.Equal(t, 1, decoded.N().Eq(ped.N()))
	assert.Equal(t, 1, decoded.S().Eq(ped.S()))
	assert.Equal(t, 1, decoded.T().Eq(ped.T()))

	assert.Error(t, decoded.UnmarshalBinary(data[:len(data)-1]))
}

func TestParametersWriteTo(t *testing.T) {
	ped, _ := test.Pedersen(0)
	var buf bytes.Buffer
	n, err := ped.WriteTo(&buf)
	assert.NoError(t, err)
	assert.EqualValues(t, pedersen.BytesWritten, n)
	assert.Equal(t, 3*params.BytesIntModN, buf.Len())
	assert.Equal(t, ped.N().FillBytes(make([]byte, params.BytesIntModN)), buf.Bytes()[:params.BytesIntModN])
	assert.Equal(t, ped.T().FillBytes(make([]byte, params.BytesIntModN)), buf.Bytes()[2*params.BytesIntModN:])

	var empty *pedersen.Parameters
	_, err = empty.WriteTo(&buf)
	assert.Error(t, err)
}
