package zkaffg_test

import (
	"crypto/rand"
	"testing"

	"MPC_PRESIGN/internal/test"
	"MPC_PRESIGN/pkg/BigInt"
	"MPC_PRESIGN/pkg/hash"
	"MPC_PRESIGN/pkg/math/curve"
	"MPC_PRESIGN/pkg/math/sample"
	"MPC_PRESIGN/pkg/zk"
	zkaffg "MPC_PRESIGN/pkg/zk/affg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (zk.Context, zkaffg.Public, zkaffg.Private) {
	t.Helper()
	group := test.Group
	verifierPaillier := test.PaillierSecret(1).PublicKey
	verifierPedersen, _ := test.Pedersen(1)
	prover := test.PaillierSecret(0).PublicKey

	c := new(BigInt.Nat).SetUint64(12)
	C, _ := verifierPaillier.Enc(c)

	xScalar, X := sample.ScalarPointPair(rand.Reader, group)
	x := curve.MakeInt(xScalar)

	y := sample.IntervalLPrime(rand.Reader)
	Y, rhoY := prover.Enc(y)

	tmp := C.Clone().Mul(verifierPaillier, x)
	D, rho := verifierPaillier.Enc(y)
	D.Add(verifierPaillier, tmp)

	ctx := zk.Context{Group: group, Hash: hash.New(), SSID: test.SSID(test.PartyIDs(2))}
	public := zkaffg.Public{
		Kv:       C,
		Dv:       D,
		Fp:       Y,
		Xp:       X,
		Prover:   prover,
		Verifier: verifierPaillier,
		Aux:      verifierPedersen,
	}
	return ctx, public, zkaffg.Private{X: x, Y: y, S: rho, R: rhoY}
}

func TestAffG(t *testing.T) {
	ctx, public, private := setup(t)

	proof, err := zkaffg.NewProof(rand.Reader, ctx, public, private)
	require.NoError(t, err)
	assert.NoError(t, proof.Verify(ctx, public))

	data, err := proof.MarshalBinary()
	require.NoError(t, err)
	decoded := zkaffg.Empty(test.Group)
	require.NoError(t, decoded.UnmarshalBinary(data))
	assert.NoError(t, decoded.Verify(ctx, public))
}

func TestAffGTampered(t *testing.T) {
	ctx, public, private := setup(t)
	secrets, commitment, err := zkaffg.SampleAndCommit(rand.Reader, public, private)
	require.NoError(t, err)
	e, err := zkaffg.Challenge(ctx, public, commitment)
	require.NoError(t, err)
	z := zkaffg.Prove(public, private, secrets, e)
	require.NoError(t, zkaffg.Verify(public, commitment, e, z))

	one := new(BigInt.Nat).SetUint64(1)
	inc := func(x *BigInt.Nat) *BigInt.Nat { return new(BigInt.Nat).Add(x, one, -1) }

	tests := []struct {
		name     string
		tamper   func(z *zkaffg.Response, c *zkaffg.Commitment)
		equation int
	}{
		{"w", func(z *zkaffg.Response, _ *zkaffg.Commitment) { z.W = inc(z.W) }, 1},
		{"Bx", func(_ *zkaffg.Response, c *zkaffg.Commitment) { c.Bx = c.Bx.Add(test.Group.NewBasePoint()) }, 2},
		{"wy", func(z *zkaffg.Response, _ *zkaffg.Commitment) { z.Wy = inc(z.Wy) }, 3},
		{"z3", func(z *zkaffg.Response, _ *zkaffg.Commitment) { z.Z3 = inc(z.Z3) }, 4},
		{"z4", func(z *zkaffg.Response, _ *zkaffg.Commitment) { z.Z4 = inc(z.Z4) }, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			badZ, badC := *z, *commitment
			tt.tamper(&badZ, &badC)
			err := zkaffg.Verify(public, &badC, e, &badZ)
			require.ErrorIs(t, err, zk.ErrInvalidProof)
			var zkErr *zk.Error
			require.ErrorAs(t, err, &zkErr)
			assert.Equal(t, tt.equation, zkErr.Equation)
		})
	}

	t.Run("z2 out of range", func(t *testing.T) {
		badZ := *z
		badZ.Z2 = new(BigInt.Nat).Lsh(one, 1800, -1)
		assert.ErrorIs(t, zkaffg.Verify(public, commitment, e, &badZ), zk.ErrInvalidRange)
	})
}
