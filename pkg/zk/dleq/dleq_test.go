package zkdleq_test

import (
	"crypto/rand"
	"testing"

	"MPC_PRESIGN/internal/test"
	"MPC_PRESIGN/pkg/BigInt"
	"MPC_PRESIGN/pkg/math/sample"
	"MPC_PRESIGN/pkg/zk"
	zkdleq "MPC_PRESIGN/pkg/zk/dleq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statement(linked bool) (zkdleq.Public, zkdleq.Private) {
	group := test.Group
	s := sample.Scalar(rand.Reader, group)
	l := sample.Scalar(rand.Reader, group)
	_, H := sample.ScalarPointPair(rand.Reader, group)
	G := group.NewBasePoint()
	public := zkdleq.Public{
		G: G,
		H: H,
		V: s.Act(G).Add(l.Act(H)),
	}
	if linked {
		_, R := sample.ScalarPointPair(rand.Reader, group)
		public.R = R
		public.S = s.Act(R)
	}
	return public, zkdleq.Private{S: s, L: l}
}

func TestDLEQ(t *testing.T) {
	binding := zkdleq.Binding{ID: "a", Aux: []byte("round 3")}
	for _, linked := range []bool{false, true} {
		public, private := statement(linked)
		proof, err := zkdleq.NewProof(rand.Reader, binding, public, private)
		require.NoError(t, err)
		assert.NoError(t, proof.Verify(binding, public))

		data, err := proof.MarshalBinary()
		require.NoError(t, err)
		decoded := zkdleq.Empty(test.Group)
		require.NoError(t, decoded.UnmarshalBinary(data))
		assert.NoError(t, decoded.Verify(binding, public))
		assert.Equal(t, linked, decoded.Alpha != nil)

		assert.ErrorIs(t, proof.Verify(zkdleq.Binding{ID: "b", Aux: binding.Aux}, public), zk.ErrInvalidProof)
		assert.ErrorIs(t, proof.Verify(zkdleq.Binding{ID: "a"}, public), zk.ErrInvalidProof)
	}
}

func TestDLEQTampered(t *testing.T) {
	binding := zkdleq.Binding{ID: "a"}
	public, private := statement(true)
	secrets, commitment, err := zkdleq.SampleAndCommit(rand.Reader, public)
	require.NoError(t, err)
	e, err := zkdleq.Challenge(binding, public, commitment)
	require.NoError(t, err)
	z := zkdleq.Prove(private, secrets, e)
	require.NoError(t, zkdleq.Verify(public, commitment, e, z))

	one := test.Group.NewScalar().SetNat(new(BigInt.Nat).SetUint64(1))
	bad := &zkdleq.Response{T: test.Group.NewScalar().Set(z.T).Add(one), U: z.U}
	err = zkdleq.Verify(public, commitment, e, bad)
	var zkErr *zk.Error
	require.ErrorAs(t, err, &zkErr)
	assert.ErrorIs(t, err, zk.ErrInvalidProof)
	assert.Equal(t, zk.KindDLEQ, zkErr.Kind)
	assert.Equal(t, 1, zkErr.Equation)

	t.Run("wrong S", func(t *testing.T) {
		other := public
		other.S = public.S.Add(test.Group.NewBasePoint())
		err := zkdleq.Verify(other, commitment, e, z)
		require.ErrorAs(t, err, &zkErr)
		assert.Equal(t, 2, zkErr.Equation)
	})

	t.Run("missing alpha", func(t *testing.T) {
		err := zkdleq.Verify(public, &zkdleq.Commitment{C: commitment.C}, e, z)
		assert.ErrorIs(t, err, zk.ErrNilProof)
	})

	t.Run("half linked statement", func(t *testing.T) {
		other := public
		other.S = nil
		_, _, err := zkdleq.SampleAndCommit(rand.Reader, other)
		assert.ErrorIs(t, err, zk.ErrMissingKey)
	})
}
