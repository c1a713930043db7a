package mta

import (
	"crypto/rand"
	"testing"

	"MPC_PRESIGN/internal/test"
	"MPC_PRESIGN/pkg/BigInt"
	"MPC_PRESIGN/pkg/hash"
	"MPC_PRESIGN/pkg/math/curve"
	"MPC_PRESIGN/pkg/math/sample"
	"MPC_PRESIGN/pkg/paillier"
	"MPC_PRESIGN/pkg/zk"
	zkaffg "MPC_PRESIGN/pkg/zk/affg"
	zkaffp "MPC_PRESIGN/pkg/zk/affp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setup returns the pair from i to j, with j's secret key and share k.
func setup(t *testing.T) (Pair, *paillier.SecretKey, curve.Scalar, zk.Context) {
	t.Helper()
	ctx := zk.Context{Group: test.Group, Hash: hash.New(), SSID: test.SSID(test.PartyIDs(2))}
	ski, skj := test.PaillierSecret(0), test.PaillierSecret(1)
	aux, _ := test.Pedersen(1)
	k := sample.Scalar(rand.Reader, test.Group)
	K, _ := skj.Enc(curve.MakeInt(k))
	return Pair{Sender: ski, Receiver: skj.PublicKey, Aux: aux, K: K}, skj, k, ctx
}

// product checks Decⱼ(D) + β = x⋅k mod q.
func product(t *testing.T, skj *paillier.SecretKey, out Output, x, k curve.Scalar) {
	t.Helper()
	sum, err := Share(skj, out.D, out.Beta)
	require.NoError(t, err)
	want := test.Group.NewScalar().Set(x).Mul(k)
	assert.True(t, want.Equal(test.Group.NewScalar().SetNat(sum)), "α + β should be x⋅k")
}

func TestAffG(t *testing.T) {
	pair, skj, k, ctx := setup(t)
	x := sample.Scalar(rand.Reader, test.Group)
	X := x.ActOnBase()

	out, proof, err := pair.AffG(rand.Reader, ctx, curve.MakeInt(x), X)
	require.NoError(t, err)
	product(t, skj, out, x, k)

	public := zkaffg.Public{
		Kv:       pair.K,
		Dv:       out.D,
		Fp:       out.F,
		Xp:       X,
		Prover:   pair.Sender.PublicKey,
		Verifier: pair.Receiver,
		Aux:      pair.Aux,
	}
	assert.NoError(t, proof.Verify(ctx, public))

	// F encrypts -β under the sender's key
	negBeta, err := pair.Sender.Dec(out.F)
	require.NoError(t, err)
	assert.Equal(t, 0, negBeta.Neg(1).Cmp(out.Beta))

	public.Xp = sample.Scalar(rand.Reader, test.Group).ActOnBase()
	assert.Error(t, proof.Verify(ctx, public))
}

func TestAffP(t *testing.T) {
	pair, skj, k, ctx := setup(t)
	x := sample.Scalar(rand.Reader, test.Group)
	X, nonce := pair.Sender.Enc(curve.MakeInt(x))

	out, proof, err := pair.AffP(rand.Reader, ctx, curve.MakeInt(x), X, nonce)
	require.NoError(t, err)
	product(t, skj, out, x, k)

	public := zkaffp.Public{
		Kv:       pair.K,
		Dv:       out.D,
		Fp:       out.F,
		Xp:       X,
		Prover:   pair.Sender.PublicKey,
		Verifier: pair.Receiver,
		Aux:      pair.Aux,
	}
	assert.NoError(t, proof.Verify(ctx, public))

	public.Dv = out.F
	assert.Error(t, proof.Verify(ctx, public))
}

func TestShareInvalid(t *testing.T) {
	_, skj, _, _ := setup(t)
	_, err := Share(skj, nil, new(BigInt.Nat).SetUint64(1))
	assert.ErrorIs(t, err, paillier.ErrInvalidCipher)
}

func zeroized(n *BigInt.Nat) bool {
	for _, w := range n.Data.Bits() {
		if w != 0 {
			return false
		}
	}
	return true
}

func TestSealZeroizes(t *testing.T) {
	pair, _, _, _ := setup(t)
	x := curve.MakeInt(sample.Scalar(rand.Reader, test.Group))

	c := pair.convert(rand.Reader, x)
	out, _, err := seal(c, &zkaffg.Proof{}, nil)
	require.NoError(t, err)
	assert.False(t, zeroized(out.Beta))
	assert.True(t, zeroized(c.negBeta))

	c = pair.convert(rand.Reader, x)
	out, proof, err := seal(c, &zkaffg.Proof{}, zk.ErrMissingKey)
	assert.ErrorIs(t, err, zk.ErrMissingKey)
	assert.Nil(t, proof)
	assert.Nil(t, out.Beta)
	assert.True(t, zeroized(c.Beta), "β is wiped when proving fails")
	assert.True(t, zeroized(c.negBeta))
}

func TestProofFailure(t *testing.T) {
	pair, _, _, ctx := setup(t)
	pair.Aux = nil
	x := sample.Scalar(rand.Reader, test.Group)

	out, proofG, err := pair.AffG(rand.Reader, ctx, curve.MakeInt(x), x.ActOnBase())
	assert.ErrorIs(t, err, zk.ErrMissingKey)
	assert.Nil(t, proofG)
	assert.Nil(t, out.Beta)

	X, nonce := pair.Sender.Enc(curve.MakeInt(x))
	out, proofP, err := pair.AffP(rand.Reader, ctx, curve.MakeInt(x), X, nonce)
	assert.ErrorIs(t, err, zk.ErrMissingKey)
	assert.Nil(t, proofP)
	assert.Nil(t, out.Beta)
}
