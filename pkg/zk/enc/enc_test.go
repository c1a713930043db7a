package zkenc_test

import (
	"crypto/rand"
	"math/big"
	"testing"

	"MPC_PRESIGN/internal/test"
	"MPC_PRESIGN/pkg/BigInt"
	"MPC_PRESIGN/pkg/hash"
	"MPC_PRESIGN/pkg/math/sample"
	"MPC_PRESIGN/pkg/zk"
	zkenc "MPC_PRESIGN/pkg/zk/enc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, k *BigInt.Nat) (zk.Context, zkenc.Public, zkenc.Private) {
	t.Helper()
	prover := test.PaillierSecret(0).PublicKey
	aux, _ := test.Pedersen(1)
	K, rho := prover.Enc(k)
	ctx := zk.Context{
		Group: test.Group,
		Hash:  hash.New(),
		SSID:  test.SSID(test.PartyIDs(2)),
	}
	return ctx, zkenc.Public{K: K, Prover: prover, Aux: aux}, zkenc.Private{K: k, Rho: rho}
}

// flipLow flips the lowest bit of |x|, keeping the sign.
func flipLow(x *BigInt.Nat) *BigInt.Nat {
	abs := x.Big()
	neg := abs.Sign() < 0
	abs.Abs(abs)
	abs.SetBit(abs, 0, abs.Bit(0)^1)
	if neg {
		abs.Neg(abs)
	}
	return new(BigInt.Nat).SetBig(abs)
}

func requireEquation(t *testing.T, err error, code error, equation int) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, code)
	var zkErr *zk.Error
	require.ErrorAs(t, err, &zkErr)
	assert.Equal(t, zk.KindEnc, zkErr.Kind)
	assert.Equal(t, equation, zkErr.Equation)
}

func TestEncSmallWitness(t *testing.T) {
	ctx, public, private := setup(t, new(BigInt.Nat).SetUint64(2))

	secrets, commitment, err := zkenc.SampleAndCommit(rand.Reader, public, private)
	require.NoError(t, err)
	e, err := zkenc.Challenge(ctx, public, commitment)
	require.NoError(t, err)
	response := zkenc.Prove(public, private, secrets, e)
	assert.NoError(t, zkenc.Verify(public, commitment, e, response))
}

func TestEnc(t *testing.T) {
	ctx, public, private := setup(t, sample.IntervalL(rand.Reader))

	proof, err := zkenc.NewProof(rand.Reader, ctx, public, private)
	require.NoError(t, err)
	assert.NoError(t, proof.Verify(ctx, public))

	data, err := proof.MarshalBinary()
	require.NoError(t, err)
	decoded := &zkenc.Proof{}
	require.NoError(t, decoded.UnmarshalBinary(data))
	assert.NoError(t, decoded.Verify(ctx, public))
	assert.NoError(t, zkenc.Instance{Public: public, Proof: decoded}.Verify(ctx))
}

func TestEncChallengeDeterministic(t *testing.T) {
	ctx, public, private := setup(t, sample.IntervalL(rand.Reader))
	_, commitment, err := zkenc.SampleAndCommit(rand.Reader, public, private)
	require.NoError(t, err)

	e1, err := zkenc.Challenge(ctx, public, commitment)
	require.NoError(t, err)
	e2, err := zkenc.Challenge(ctx, public, commitment)
	require.NoError(t, err)
	assert.Equal(t, 0, e1.Cmp(e2))
	assert.Equal(t, -1, e1.Cmp(test.Group.Order()))

	other := ctx
	other.SSID = test.SSID(test.PartyIDs(2))
	e3, err := zkenc.Challenge(other, public, commitment)
	require.NoError(t, err)
	assert.NotEqual(t, 0, e1.Cmp(e3))
}

func TestEncTampered(t *testing.T) {
	ctx, public, private := setup(t, sample.IntervalL(rand.Reader))
	secrets, commitment, err := zkenc.SampleAndCommit(rand.Reader, public, private)
	require.NoError(t, err)
	e, err := zkenc.Challenge(ctx, public, commitment)
	require.NoError(t, err)
	z := zkenc.Prove(public, private, secrets, e)
	require.NoError(t, zkenc.Verify(public, commitment, e, z))

	t.Run("z2", func(t *testing.T) {
		bad := *z
		bad.Z2 = flipLow(z.Z2)
		requireEquation(t, zkenc.Verify(public, commitment, e, &bad), zk.ErrInvalidProof, 1)
	})
	t.Run("z3", func(t *testing.T) {
		bad := *z
		bad.Z3 = flipLow(z.Z3)
		requireEquation(t, zkenc.Verify(public, commitment, e, &bad), zk.ErrInvalidProof, 2)
	})
	t.Run("z1 out of range", func(t *testing.T) {
		bad := *z
		bad.Z1 = new(BigInt.Nat).SetBig(new(big.Int).Lsh(big.NewInt(1), 800))
		requireEquation(t, zkenc.Verify(public, commitment, e, &bad), zk.ErrInvalidRange, 0)
	})
	t.Run("other statement", func(t *testing.T) {
		K, _ := public.Prover.Enc(sample.IntervalL(rand.Reader))
		other := public
		other.K = K
		requireEquation(t, zkenc.Verify(other, commitment, e, z), zk.ErrInvalidProof, 1)
	})
}

func TestEncRngRequired(t *testing.T) {
	_, public, private := setup(t, sample.IntervalL(rand.Reader))
	_, _, err := zkenc.SampleAndCommit(nil, public, private)
	assert.ErrorIs(t, err, zk.ErrRngRequired)

	_, _, err = zkenc.SampleAndCommit(rand.Reader, zkenc.Public{}, private)
	assert.ErrorIs(t, err, zk.ErrMissingKey)
}
