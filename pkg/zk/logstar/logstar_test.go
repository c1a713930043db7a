package zklogstar_test

import (
	"crypto/rand"
	"testing"

	"MPC_PRESIGN/internal/test"
	"MPC_PRESIGN/pkg/BigInt"
	"MPC_PRESIGN/pkg/hash"
	"MPC_PRESIGN/pkg/math/curve"
	"MPC_PRESIGN/pkg/math/sample"
	"MPC_PRESIGN/pkg/zk"
	zklogstar "MPC_PRESIGN/pkg/zk/logstar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, base curve.Point) (zk.Context, zklogstar.Public, zklogstar.Private) {
	t.Helper()
	group := test.Group
	prover := test.PaillierSecret(0).PublicKey
	aux, _ := test.Pedersen(1)

	x := sample.IntervalL(rand.Reader)
	C, rho := prover.Enc(x)
	xScalar := group.NewScalar().SetNat(x)
	var X curve.Point
	if base == nil {
		X = xScalar.ActOnBase()
	} else {
		X = xScalar.Act(base)
	}
	ctx := zk.Context{Group: group, Hash: hash.New(), SSID: test.SSID(test.PartyIDs(3))}
	public := zklogstar.Public{C: C, X: X, G: base, Prover: prover, Aux: aux}
	return ctx, public, zklogstar.Private{X: x, Rho: rho}
}

func equation(t *testing.T, err error) int {
	t.Helper()
	var zkErr *zk.Error
	require.ErrorAs(t, err, &zkErr)
	assert.Equal(t, zk.KindLogStar, zkErr.Kind)
	return zkErr.Equation
}

func TestLogStar(t *testing.T) {
	_, gamma := sample.ScalarPointPair(rand.Reader, test.Group)
	for name, base := range map[string]curve.Point{"generator": nil, "other base": gamma} {
		t.Run(name, func(t *testing.T) {
			ctx, public, private := setup(t, base)
			proof, err := zklogstar.NewProof(rand.Reader, ctx, public, private)
			require.NoError(t, err)
			assert.NoError(t, proof.Verify(ctx, public))

			data, err := proof.MarshalBinary()
			require.NoError(t, err)
			decoded := zklogstar.Empty(test.Group)
			require.NoError(t, decoded.UnmarshalBinary(data))
			assert.NoError(t, decoded.Verify(ctx, public))
		})
	}
}

func TestLogStarTampered(t *testing.T) {
	ctx, public, private := setup(t, nil)
	secrets, commitment, err := zklogstar.SampleAndCommit(rand.Reader, public, private)
	require.NoError(t, err)
	e, err := zklogstar.Challenge(ctx, public, commitment)
	require.NoError(t, err)
	z := zklogstar.Prove(public, private, secrets, e)
	require.NoError(t, zklogstar.Verify(public, commitment, e, z))

	one := new(BigInt.Nat).SetUint64(1)

	bad := *z
	bad.Z2 = new(BigInt.Nat).Add(z.Z2, one, -1)
	err = zklogstar.Verify(public, commitment, e, &bad)
	assert.ErrorIs(t, err, zk.ErrInvalidProof)
	assert.Equal(t, 1, equation(t, err))

	badCommitment := *commitment
	badCommitment.Y = commitment.Y.Add(test.Group.NewBasePoint())
	err = zklogstar.Verify(public, &badCommitment, e, z)
	assert.ErrorIs(t, err, zk.ErrInvalidProof)
	assert.Equal(t, 2, equation(t, err))

	bad = *z
	bad.Z3 = new(BigInt.Nat).Add(z.Z3, one, -1)
	err = zklogstar.Verify(public, commitment, e, &bad)
	assert.ErrorIs(t, err, zk.ErrInvalidProof)
	assert.Equal(t, 3, equation(t, err))

	otherX := public
	otherX.X = public.X.Add(test.Group.NewBasePoint())
	err = zklogstar.Verify(otherX, commitment, e, z)
	assert.Equal(t, 2, equation(t, err))
}

func TestLogStarRngRequired(t *testing.T) {
	_, public, private := setup(t, nil)
	_, _, err := zklogstar.SampleAndCommit(nil, public, private)
	assert.ErrorIs(t, err, zk.ErrRngRequired)
}
