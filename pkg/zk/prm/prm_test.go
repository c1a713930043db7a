package zkprm_test

import (
	"crypto/rand"
	"testing"

	"MPC_PRESIGN/internal/test"
	"MPC_PRESIGN/pkg/BigInt"
	"MPC_PRESIGN/pkg/hash"
	"MPC_PRESIGN/pkg/pool"
	"MPC_PRESIGN/pkg/zk"
	zkprm "MPC_PRESIGN/pkg/zk/prm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup() (zkprm.Public, zkprm.Private) {
	sk := test.PaillierSecret(0)
	aux, lambda := test.Pedersen(0)
	return zkprm.FromPedersen(aux), zkprm.Private{
		Alpha: lambda,
		Phi:   sk.Phi(),
		P:     sk.P(),
		Q:     sk.Q(),
	}
}

func TestHiddenOrder(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	public, private := setup()
	h := hash.New()
	require.NoError(t, h.WriteAny("owner"))

	proof, err := zkprm.NewProof(rand.Reader, h, public, private, pl)
	require.NoError(t, err)
	assert.NoError(t, proof.Verify(h, public, pl))
	assert.NoError(t, proof.Verify(h, public, nil), "verification without a pool")

	data, err := proof.MarshalBinary()
	require.NoError(t, err)
	decoded := &zkprm.Proof{}
	require.NoError(t, decoded.UnmarshalBinary(data))
	assert.NoError(t, decoded.Verify(h, public, pl))

	assert.ErrorIs(t, proof.Verify(hash.New(), public, pl), zk.ErrInvalidProof)
}

func TestHiddenOrderFlippedRound(t *testing.T) {
	public, private := setup()
	proof, err := zkprm.NewProof(rand.Reader, nil, public, private, nil)
	require.NoError(t, err)

	bad := *proof
	n := public.N.Nat()
	bad.Zs[5] = new(BigInt.Nat).ModAdd(proof.Zs[5], new(BigInt.Nat).SetUint64(1), n)

	err = bad.Verify(nil, public, nil)
	var zkErr *zk.Error
	require.ErrorAs(t, err, &zkErr)
	assert.ErrorIs(t, err, zk.ErrInvalidProof)
	assert.Equal(t, zk.KindHiddenOrder, zkErr.Kind)
	assert.Equal(t, 6, zkErr.Equation)
}

func TestHiddenOrderWrongStatement(t *testing.T) {
	public, private := setup()
	proof, err := zkprm.NewProof(rand.Reader, nil, public, private, nil)
	require.NoError(t, err)

	other := public
	other.B1 = new(BigInt.Nat).ModMul(public.B1, public.B1, public.N.Nat())
	assert.ErrorIs(t, proof.Verify(nil, other, nil), zk.ErrInvalidProof)

	other = public
	other.B1 = public.B0
	assert.ErrorIs(t, proof.Verify(nil, other, nil), zk.ErrInvalidRange)

	_, err = zkprm.NewProof(nil, nil, public, private, nil)
	assert.ErrorIs(t, err, zk.ErrRngRequired)
}
