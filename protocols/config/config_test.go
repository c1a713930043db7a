package config_test

import (
	"testing"

	"MPC_PRESIGN/internal/test"
	"MPC_PRESIGN/pkg/math/polynomial"
	"MPC_PRESIGN/pkg/math/sample"
	"MPC_PRESIGN/pkg/paillier"
	"MPC_PRESIGN/pkg/party"
	"MPC_PRESIGN/pkg/pedersen"
	"MPC_PRESIGN/pkg/zk"
	"MPC_PRESIGN/protocols/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dealer() *config.Dealer {
	return &config.Dealer{
		Group:     test.Group,
		Threshold: 1,
		Rand:      sample.NewSeededReader([]byte("config test")),
		Paillier: func(i int) *paillier.SecretKey {
			return test.PaillierSecret(i % test.PaillierKeys)
		},
	}
}

func TestDeal(t *testing.T) {
	ids := test.PartyIDs(3)
	secret := sample.Scalar(sample.NewSeededReader([]byte("secret")), test.Group)
	configs, err := dealer().Deal(ids, secret)
	require.NoError(t, err)
	require.Len(t, configs, 3)

	X := secret.ActOnBase()
	for _, id := range ids {
		c := configs[id]
		require.NoError(t, c.Validate())
		assert.True(t, X.Equal(c.PublicPoint()))
		assert.Equal(t, configs[ids[0]].RID, c.RID)
		assert.Equal(t, configs[ids[0]].Rho, c.Rho)
	}

	// any t+1 shares interpolate the secret
	signers := party.NewIDSlice([]party.ID{ids[0], ids[2]})
	l := polynomial.Lagrange(test.Group, signers)
	sum := test.Group.NewScalar()
	for _, j := range signers {
		sum.Add(test.Group.NewScalar().Set(l[j]).Mul(configs[j].ECDSA))
	}
	assert.True(t, sum.Equal(secret))

	c := configs[ids[0]]
	assert.True(t, c.CanSign(signers))
	assert.False(t, c.CanSign(party.NewIDSlice([]party.ID{ids[0]})), "too few signers")
	assert.False(t, c.CanSign(party.NewIDSlice([]party.ID{ids[1], ids[2]})), "self missing")
	assert.False(t, c.CanSign(party.NewIDSlice([]party.ID{ids[0], "z"})), "unknown signer")
}

func TestDealInvalid(t *testing.T) {
	d := dealer()
	_, err := d.Deal([]party.ID{"a", "a"}, nil)
	assert.Error(t, err)

	d.Threshold = 3
	_, err = d.Deal(test.PartyIDs(3), nil)
	assert.Error(t, err)
}

func TestMarshal(t *testing.T) {
	ids := test.PartyIDs(2)
	configs, err := dealer().Deal(ids, nil)
	require.NoError(t, err)
	c := configs[ids[1]]

	data, err := c.MarshalBinary()
	require.NoError(t, err)
	decoded := config.EmptyConfig(test.Group)
	require.NoError(t, decoded.UnmarshalBinary(data))

	assert.Equal(t, c.ID, decoded.ID)
	assert.Equal(t, c.Threshold, decoded.Threshold)
	assert.True(t, c.ECDSA.Equal(decoded.ECDSA))
	assert.True(t, c.PublicPoint().Equal(decoded.PublicPoint()))
	assert.Equal(t, 0, c.Paillier.N().Cmp(decoded.Paillier.N()))
	assert.Equal(t, c.RID, decoded.RID)
	for _, j := range ids {
		assert.True(t, c.Public[j].Paillier.Equal(decoded.Public[j].Paillier))
		assert.Equal(t, 0, c.Public[j].Pedersen.S().Cmp(decoded.Public[j].Pedersen.S()))
	}
	assert.NoError(t, decoded.ValidateAux(ids, nil))

	assert.Error(t, config.EmptyConfig(nil).UnmarshalBinary(data))

	// a config without the aux proof of a peer is rejected when loaded
	decoded.Public[ids[0]].AuxProof = nil
	assert.Error(t, decoded.Validate())
	stripped, err := decoded.MarshalBinary()
	require.NoError(t, err)
	assert.Error(t, config.EmptyConfig(test.Group).UnmarshalBinary(stripped))
}

func TestValidateAux(t *testing.T) {
	ids := test.PartyIDs(2)
	configs, err := dealer().Deal(ids, nil)
	require.NoError(t, err)
	c := configs[ids[0]]
	require.NoError(t, c.ValidateAux(ids, nil))

	// the proof is bound to its owner
	err = config.VerifyAux(ids[1], c.Public[ids[0]], nil)
	assert.ErrorIs(t, err, zk.ErrInvalidProof)

	// parameters for which the proof was not made
	other, _ := test.Pedersen(0)
	forged := *c.Public[ids[0]]
	forged.Pedersen = pedersen.New(other.NArith(), other.S(), other.T())
	err = config.VerifyAux(ids[0], &forged, nil)
	assert.ErrorIs(t, err, zk.ErrInvalidProof)

	forged.AuxProof = nil
	assert.Error(t, config.VerifyAux(ids[0], &forged, nil))
	assert.Error(t, c.ValidateAux([]party.ID{"z"}, nil))
}

func TestMnemonic(t *testing.T) {
	mnemonic, err := config.NewMnemonic()
	require.NoError(t, err)

	a, err := config.SecretFromMnemonic(test.Group, mnemonic, "")
	require.NoError(t, err)
	b, err := config.SecretFromMnemonic(test.Group, mnemonic, "")
	require.NoError(t, err)
	assert.True(t, a.Equal(b))

	c, err := config.SecretFromMnemonic(test.Group, mnemonic, "password")
	require.NoError(t, err)
	assert.False(t, a.Equal(c))

	_, err = config.SecretFromMnemonic(test.Group, "not a mnemonic", "")
	assert.Error(t, err)
}
