package arith

import (
	"crypto/rand"
	"testing"

	"MPC_PRESIGN/pkg/BigInt"
	"MPC_PRESIGN/pkg/math/sample"
	"github.com/stretchr/testify/assert"
)

func TestModulusExp(t *testing.T) {
	p := new(BigInt.Nat).SetUint64(1000003)
	q := new(BigInt.Nat).SetUint64(998244353)
	crt := ModulusFromFactors(p, q)
	plain := ModulusFromN(new(BigInt.Nat).Mul(p, q, -1))
	assert.Equal(t, 1, crt.Nat().Eq(plain.Nat()))

	for i := 0; i < 10; i++ {
		x := sample.UnitModN(rand.Reader, plain.Nat())
		e := sample.IntervalL(rand.Reader)
		expected := new(BigInt.Nat).ExpI(x, e, plain.Nat())
		assert.Equal(t, 1, crt.ExpI(x, e).Eq(expected))
		assert.Equal(t, 1, plain.ExpI(x, e).Eq(expected))
		assert.Equal(t, 1, crt.Exp(x, e.Abs()).Eq(plain.Exp(x, e.Abs())))
	}
}
