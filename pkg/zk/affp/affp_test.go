package zkaffp_test

import (
	"crypto/rand"
	"testing"

	"MPC_PRESIGN/internal/test"
	"MPC_PRESIGN/pkg/BigInt"
	"MPC_PRESIGN/pkg/hash"
	"MPC_PRESIGN/pkg/math/sample"
	"MPC_PRESIGN/pkg/zk"
	zkaffp "MPC_PRESIGN/pkg/zk/affp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (zk.Context, zkaffp.Public, zkaffp.Private) {
	t.Helper()
	verifierPaillier := test.PaillierSecret(1).PublicKey
	verifierPedersen, _ := test.Pedersen(1)
	prover := test.PaillierSecret(0).PublicKey

	c := new(BigInt.Nat).SetUint64(12)
	C, _ := verifierPaillier.Enc(c)

	x := sample.IntervalL(rand.Reader)
	X, rhoX := prover.Enc(x)

	y := sample.IntervalLPrime(rand.Reader)
	Y, rhoY := prover.Enc(y)

	tmp := C.Clone().Mul(verifierPaillier, x)
	D, rho := verifierPaillier.Enc(y)
	D.Add(verifierPaillier, tmp)

	ctx := zk.Context{Group: test.Group, Hash: hash.New(), SSID: test.SSID(test.PartyIDs(2))}
	public := zkaffp.Public{
		Kv:       C,
		Dv:       D,
		Fp:       Y,
		Xp:       X,
		Prover:   prover,
		Verifier: verifierPaillier,
		Aux:      verifierPedersen,
	}
	return ctx, public, zkaffp.Private{X: x, Y: y, S: rho, Rx: rhoX, R: rhoY}
}

func TestAffP(t *testing.T) {
	ctx, public, private := setup(t)

	proof, err := zkaffp.NewProof(rand.Reader, ctx, public, private)
	require.NoError(t, err)
	assert.NoError(t, proof.Verify(ctx, public))

	data, err := proof.MarshalBinary()
	require.NoError(t, err)
	decoded := &zkaffp.Proof{}
	require.NoError(t, decoded.UnmarshalBinary(data))
	assert.NoError(t, decoded.Verify(ctx, public))
	assert.NoError(t, zkaffp.Instance{Public: public, Proof: decoded}.Verify(ctx))
}

func TestAffPTampered(t *testing.T) {
	ctx, public, private := setup(t)
	secrets, commitment, err := zkaffp.SampleAndCommit(rand.Reader, public, private)
	require.NoError(t, err)
	e, err := zkaffp.Challenge(ctx, public, commitment)
	require.NoError(t, err)
	z := zkaffp.Prove(public, private, secrets, e)
	require.NoError(t, zkaffp.Verify(public, commitment, e, z))

	one := new(BigInt.Nat).SetUint64(1)
	inc := func(x *BigInt.Nat) *BigInt.Nat { return new(BigInt.Nat).Add(x, one, -1) }

	tests := []struct {
		name     string
		tamper   func(z *zkaffp.Response)
		equation int
	}{
		{"w", func(z *zkaffp.Response) { z.W = inc(z.W) }, 1},
		{"wx", func(z *zkaffp.Response) { z.Wx = inc(z.Wx) }, 2},
		{"wy", func(z *zkaffp.Response) { z.Wy = inc(z.Wy) }, 3},
		{"z3", func(z *zkaffp.Response) { z.Z3 = inc(z.Z3) }, 4},
		{"z4", func(z *zkaffp.Response) { z.Z4 = inc(z.Z4) }, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := *z
			tt.tamper(&bad)
			err := zkaffp.Verify(public, commitment, e, &bad)
			require.ErrorIs(t, err, zk.ErrInvalidProof)
			var zkErr *zk.Error
			require.ErrorAs(t, err, &zkErr)
			assert.Equal(t, zk.KindAffP, zkErr.Kind)
			assert.Equal(t, tt.equation, zkErr.Equation)
		})
	}

	t.Run("other statement", func(t *testing.T) {
		other := public
		other.Dv = public.Dv.Clone().Add(public.Verifier, public.Kv)
		err := zkaffp.Verify(other, commitment, e, z)
		assert.ErrorIs(t, err, zk.ErrInvalidProof)
	})
}
