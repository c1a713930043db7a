package party

import (
	"strings"
	"testing"

	"MPC_PRESIGN/pkg/BigInt"
	"MPC_PRESIGN/pkg/math/curve"
	"github.com/stretchr/testify/assert"
)

func TestIDSlice(t *testing.T) {
	ids := NewIDSlice([]ID{"c", "a", "b", "a"})
	assert.Equal(t, IDSlice{"a", "b", "c"}, ids)
	assert.True(t, ids.Valid())
	assert.True(t, ids.Contains("a", "c"))
	assert.False(t, ids.Contains("d"))
	assert.Equal(t, uint16(1), ids.Index("a"))
	assert.Equal(t, uint16(3), ids.Index("c"))
	assert.Equal(t, uint16(0), ids.Index("z"))
	assert.Equal(t, IDSlice{"a", "c"}, ids.Remove("b"))
	assert.False(t, IDSlice{"b", "a"}.Valid())
	assert.False(t, IDSlice{""}.Valid())
}

func TestIDValidate(t *testing.T) {
	assert.NoError(t, ID("a").Validate())
	assert.NoError(t, ID(strings.Repeat("x", MaxIDLength)).Validate())
	for _, id := range []ID{"", ID(strings.Repeat("x", MaxIDLength+1)), "a\x00b"} {
		assert.ErrorIs(t, id.Validate(), ErrInvalidID, "%q", id)
	}
	assert.False(t, IDSlice{"a", "b\x00"}.Valid())
}

func TestIDScalar(t *testing.T) {
	group := curve.Secp256k1{}
	a, b := ID("a").Scalar(group), ID("b").Scalar(group)
	assert.False(t, a.IsZero())
	assert.False(t, a.Equal(b))

	one := group.NewScalar().SetNat(new(BigInt.Nat).SetUint64(1))
	assert.True(t, ID("\x01").Scalar(group).Equal(one))
}
