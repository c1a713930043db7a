package wire_test

import (
	"crypto/rand"
	"testing"

	"MPC_PRESIGN/pkg/BigInt"
	"MPC_PRESIGN/pkg/math/curve"
	"MPC_PRESIGN/pkg/math/sample"
	"MPC_PRESIGN/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestTuple(t *testing.T) {
	group := curve.Secp256k1{}
	s := sample.Scalar(rand.Reader, group)
	P := s.ActOnBase()
	n := new(BigInt.Nat).SetUint64(0xbeef)
	i := new(BigInt.Nat).SetInt64(-12345)

	data, err := wire.NewEncoder().
		Raw([]byte("raw")).
		Nat(n, 4).
		Int(i, 8).
		Scalar(s).
		Point(P).
		Uint16(513).
		Bytes()
	require.NoError(t, err)

	d := wire.NewDecoder(data)
	raw := d.Raw()
	gotN := d.Nat(4)
	gotI := d.Int(8)
	gotS := d.Scalar(group)
	gotP := d.Point(group)
	u := d.Uint16()
	assert.False(t, d.More())
	require.NoError(t, d.Finish())

	assert.Equal(t, []byte("raw"), raw)
	assert.Equal(t, 0, gotN.Cmp(n))
	assert.Equal(t, 0, gotI.Cmp(i))
	assert.True(t, s.Equal(gotS))
	assert.True(t, P.Equal(gotP))
	assert.Equal(t, uint16(513), u)
}

func TestEncoderErrors(t *testing.T) {
	_, err := wire.NewEncoder().Nat(new(BigInt.Nat).SetUint64(256), 1).Bytes()
	assert.ErrorIs(t, err, wire.ErrOverflow)

	_, err = wire.NewEncoder().Nat(new(BigInt.Nat).SetInt64(-1), 1).Bytes()
	assert.ErrorIs(t, err, wire.ErrOverflow)

	_, err = wire.NewEncoder().Int(new(BigInt.Nat).SetInt64(-256), 1).Bytes()
	assert.ErrorIs(t, err, wire.ErrOverflow)

	// the first error sticks
	_, err = wire.NewEncoder().Nat(nil, 1).Uint16(1).Bytes()
	assert.ErrorIs(t, err, BigInt.ErrNilData)

	_, err = wire.NewEncoder().Point(nil).Bytes()
	assert.ErrorIs(t, err, curve.ErrInvalidPoint)
}

func TestDecoderErrors(t *testing.T) {
	data, err := wire.NewEncoder().Nat(new(BigInt.Nat).SetUint64(7), 3).Bytes()
	require.NoError(t, err)

	tests := map[string]struct {
		data   []byte
		decode func(d *wire.Decoder)
		want   error
	}{
		"wrong size": {data, func(d *wire.Decoder) { d.Nat(2) }, wire.ErrFieldSize},
		"trailing":   {data, func(d *wire.Decoder) {}, wire.ErrTrailingData},
		"truncated":  {data, func(d *wire.Decoder) { d.Nat(3); d.Nat(3) }, wire.ErrTruncated},
		"order": {
			protowire.AppendBytes(protowire.AppendTag(nil, 2, protowire.BytesType), []byte{1, 2}),
			func(d *wire.Decoder) { d.Uint16() },
			wire.ErrFieldOrder,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			d := wire.NewDecoder(tt.data)
			tt.decode(d)
			assert.ErrorIs(t, d.Finish(), tt.want)
		})
	}

	sign, err := wire.NewEncoder().Raw([]byte{2, 1}).Bytes()
	require.NoError(t, err)
	d := wire.NewDecoder(sign)
	assert.Nil(t, d.Int(1))
	assert.Error(t, d.Finish())

	point, err := wire.NewEncoder().Raw(append([]byte{5}, make([]byte, 32)...)).Bytes()
	require.NoError(t, err)
	d = wire.NewDecoder(point)
	assert.Nil(t, d.Point(curve.Secp256k1{}))
	assert.Error(t, d.Finish())
}
