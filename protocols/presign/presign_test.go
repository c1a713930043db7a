package presign

import (
	"context"
	"errors"
	"testing"

	"MPC_PRESIGN/internal/round"
	"MPC_PRESIGN/internal/test"
	"MPC_PRESIGN/pkg/BigInt"
	"MPC_PRESIGN/pkg/ecdsa"
	"MPC_PRESIGN/pkg/math/sample"
	"MPC_PRESIGN/pkg/paillier"
	"MPC_PRESIGN/pkg/party"
	"MPC_PRESIGN/pkg/pool"
	"MPC_PRESIGN/pkg/protocol"
	"MPC_PRESIGN/pkg/zk"
	zkprm "MPC_PRESIGN/pkg/zk/prm"
	"MPC_PRESIGN/protocols/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"
)

var sessionID = []byte("presign test session")

func deal(t *testing.T, n, threshold int) (party.IDSlice, map[party.ID]*config.Config) {
	t.Helper()
	d := &config.Dealer{
		Group:     test.Group,
		Threshold: threshold,
		Rand:      sample.NewSeededReader([]byte("presign test dealer")),
		Paillier: func(i int) *paillier.SecretKey {
			return test.PaillierSecret(i % test.PaillierKeys)
		},
	}
	ids := test.PartyIDs(n)
	configs, err := d.Deal(ids, nil)
	require.NoError(t, err)
	return ids, configs
}

func startRounds(t *testing.T, configs map[party.ID]*config.Config, signers party.IDSlice, pl *pool.Pool, opts Options) []round.Session {
	t.Helper()
	rounds := make([]round.Session, 0, len(signers))
	for _, id := range signers {
		r, err := StartPresign(configs[id], signers, pl, opts)(sessionID)
		require.NoError(t, err)
		rounds = append(rounds, r)
	}
	return rounds
}

func collect(t *testing.T, rounds []round.Session) []*Result {
	t.Helper()
	results := make([]*Result, 0, len(rounds))
	for _, r := range rounds {
		require.IsType(t, &round.Output{}, r)
		result, ok := r.(*round.Output).Result.(*Result)
		require.True(t, ok)
		results = append(results, result)
	}
	return results
}

func messageHash(message string) []byte {
	h := make([]byte, 32)
	sha3.ShakeSum128(h, []byte(message))
	return h
}

// checkSignature finishes a signature from the presignatures of results and verifies it.
func checkSignature(t *testing.T, results []*Result) {
	t.Helper()
	m := messageHash("hello")
	shares := make(map[party.ID]ecdsa.SignatureShare, len(results))
	signers := results[0].PreSignature.Signers
	for i, res := range results {
		shares[signers[i]] = res.PreSignature.SignatureShare(m)
	}
	sig, err := results[0].PreSignature.Signature(shares)
	require.NoError(t, err)
	assert.True(t, sig.Verify(results[0].PublicKey, m))
	assert.True(t, sig.VerifySecp256k1(results[0].PublicKey, m))
	assert.False(t, sig.Verify(results[0].PublicKey, messageHash("bye")))
}

func TestPresign(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	cases := []struct {
		name      string
		n         int
		threshold int
		signers   int
	}{
		{"2 of 3", 3, 1, 2},
		{"3 of 3", 3, 2, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ids, configs := deal(t, tc.n, tc.threshold)
			signers := ids[:tc.signers]
			rounds := startRounds(t, configs, signers, pl, Options{Reveal: true})
			require.NoError(t, test.Run(rounds, nil))

			results := collect(t, rounds)
			require.NoError(t, Validate(results...))
			X := configs[ids[0]].PublicPoint()
			for _, res := range results {
				assert.True(t, X.Equal(res.PublicKey))
				assert.NoError(t, res.PreSignature.Validate())
			}
			checkSignature(t, results)
		})
	}
}

func TestPresignDesignated(t *testing.T) {
	ids, configs := deal(t, 3, 2)
	rounds := startRounds(t, configs, ids, nil, Options{
		Policy:           Designated,
		DesignatedProver: ids[1],
		Reveal:           true,
	})
	require.NoError(t, test.Run(rounds, nil))
	results := collect(t, rounds)
	require.NoError(t, Validate(results...))
	checkSignature(t, results)
}

func TestPresignSeeded(t *testing.T) {
	ids, configs := deal(t, 2, 1)
	run := func() []*Result {
		rounds := make([]round.Session, 0, len(ids))
		for _, id := range ids {
			r, err := StartPresign(configs[id], ids, nil, Options{
				Reveal: true,
				Rand:   sample.NewSeededReader([]byte("seed " + string(id))),
			})(sessionID)
			require.NoError(t, err)
			rounds = append(rounds, r)
		}
		require.NoError(t, test.Run(rounds, nil))
		return collect(t, rounds)
	}
	a, b := run(), run()
	require.NoError(t, Validate(a...))
	assert.True(t, a[0].PreSignature.R.Equal(b[0].PreSignature.R))
	assert.Equal(t, a[0].PreSignature.ID, b[0].PreSignature.ID)
}

// swapF replaces the F ciphertext of the affp proof by the one of the affg proof.
func swapF(victim party.ID) test.Tamper {
	return func(_, to party.ID, content round.Content) {
		if msg, ok := content.(*message3); ok && to == victim {
			msg.DeltaF = msg.ChiF
		}
	}
}

func TestPresignInvalidProof(t *testing.T) {
	ids, configs := deal(t, 2, 1)
	rounds := startRounds(t, configs, ids, nil, Options{})
	err := test.Run(rounds, swapF(ids[0]))
	require.Error(t, err)
	assert.ErrorIs(t, err, zk.ErrInvalidProof)
	var zkErr *zk.Error
	require.True(t, errors.As(err, &zkErr))
	assert.Equal(t, zk.KindAffP, zkErr.Kind)
}

func TestPresignLocal(t *testing.T) {
	ids, configs := deal(t, 3, 1)
	signers := party.NewIDSlice([]party.ID{ids[0], ids[2]})
	out, err := protocol.RunLocal(context.Background(), signers, func(id party.ID) protocol.StartFunc {
		return StartPresign(configs[id], signers, nil, Options{Reveal: true})
	}, sessionID)
	require.NoError(t, err)
	require.Len(t, out, 2)

	results := make([]*Result, 0, len(signers))
	for _, id := range signers {
		res, ok := out[id].(*Result)
		require.True(t, ok)
		results = append(results, res)
	}
	require.NoError(t, Validate(results...))
	checkSignature(t, results)
}

func TestPresignPolicyMismatch(t *testing.T) {
	ids, configs := deal(t, 3, 2)
	// ids[1] expects range proofs from everyone, ids[2] only sends them under the pairwise policy.
	_, err := protocol.RunLocal(context.Background(), ids, func(id party.ID) protocol.StartFunc {
		opts := Options{Policy: Designated, DesignatedProver: ids[0]}
		if id == ids[1] {
			opts = Options{}
		}
		return StartPresign(configs[id], ids, nil, opts)
	}, sessionID)
	require.Error(t, err)

	var protocolErr protocol.Error
	require.True(t, errors.As(err, &protocolErr))
	assert.Equal(t, round.Number(2), protocolErr.Round)
	assert.Equal(t, zk.KindEnc, protocolErr.Proof)
	assert.ErrorIs(t, err, zk.ErrNilProof)
}

func TestStartPresignInvalid(t *testing.T) {
	ids, configs := deal(t, 3, 1)

	_, err := StartPresign(nil, ids, nil, Options{})(sessionID)
	assert.Error(t, err)

	_, err = StartPresign(configs[ids[0]], []party.ID{ids[1], ids[2]}, nil, Options{})(sessionID)
	assert.Error(t, err, "self is not a signer")

	_, err = StartPresign(configs[ids[0]], []party.ID{ids[0]}, nil, Options{})(sessionID)
	assert.Error(t, err, "too few signers")

	_, err = StartPresign(configs[ids[0]], []party.ID{ids[0], ids[1], ids[1]}, nil, Options{})(sessionID)
	assert.Error(t, err, "duplicate signer")

	_, err = StartPresign(configs[ids[0]], []party.ID{ids[0], ids[1]}, nil, Options{
		Policy:           Designated,
		DesignatedProver: ids[2],
	})(sessionID)
	assert.Error(t, err, "designated prover outside of the signers")
}

func TestStartPresignAux(t *testing.T) {
	ids, configs := deal(t, 3, 1)
	r, err := StartPresign(configs[ids[0]], ids, nil, Options{})(sessionID)
	require.NoError(t, err)
	assert.Equal(t, round.Number(1), r.Number())

	// withAux returns a copy of the config of ids[0] in which ids[1] carries proof.
	withAux := func(proof *zkprm.Proof) *config.Config {
		c := *configs[ids[0]]
		c.Public = make(map[party.ID]*config.Public, len(ids))
		for j, p := range configs[ids[0]].Public {
			c.Public[j] = p
		}
		public := *c.Public[ids[1]]
		public.AuxProof = proof
		c.Public[ids[1]] = &public
		return &c
	}

	_, err = StartPresign(withAux(nil), ids, nil, Options{})(sessionID)
	assert.Error(t, err, "missing aux proof")

	_, err = StartPresign(withAux(configs[ids[0]].Public[ids[2]].AuxProof), ids, nil, Options{})(sessionID)
	var zkErr *zk.Error
	require.ErrorAs(t, err, &zkErr, "aux proof of another party")
	assert.Equal(t, zk.KindHiddenOrder, zkErr.Kind)

	// parties outside the signer set are not checked
	_, err = StartPresign(withAux(nil), party.IDSlice{ids[0], ids[2]}, nil, Options{})(sessionID)
	assert.NoError(t, err)
}

func TestValidate(t *testing.T) {
	ids, configs := deal(t, 2, 1)
	rounds := startRounds(t, configs, ids, nil, Options{Reveal: true})
	require.NoError(t, test.Run(rounds, nil))
	results := collect(t, rounds)
	require.NoError(t, Validate(results...))

	assert.Error(t, Validate())
	assert.Error(t, Validate(results[0]), "missing result")

	hidden := *results[1]
	hidden.Reveal = nil
	assert.Error(t, Validate(results[0], &hidden))

	wrongR := *results[1]
	preSignature := *results[1].PreSignature
	preSignature.R = test.Group.NewBasePoint()
	wrongR.PreSignature = &preSignature
	assert.Error(t, Validate(results[0], &wrongR))

	wrongChi := *results[1]
	reveal := *results[1].Reveal
	reveal.Gamma = sample.Scalar(sample.NewSeededReader([]byte("gamma")), test.Group)
	wrongChi.Reveal = &reveal
	assert.Error(t, Validate(results[0], &wrongChi))
}

func TestParsePolicy(t *testing.T) {
	for _, p := range []Policy{Pairwise, Designated} {
		parsed, err := ParsePolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
	}
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, Pairwise, p)
	_, err = ParsePolicy("everyone")
	assert.Error(t, err)
}

func wiped(n *BigInt.Nat) bool {
	for _, w := range n.Data.Bits() {
		if w != 0 {
			return false
		}
	}
	return true
}

func TestExchangeWipe(t *testing.T) {
	ids := test.PartyIDs(3)
	beta := func() *BigInt.Nat { return new(BigInt.Nat).SetUint64(0xdeadbeef) }
	results := []interface{}{
		&exchange{deltaBeta: beta(), chiBeta: beta()},
		&exchange{err: round.ErrOutChanFull, deltaBeta: beta()},
		&exchange{deltaBeta: beta(), chiBeta: beta()},
	}
	_, err := collectExchanges(ids, results)
	assert.ErrorIs(t, err, round.ErrOutChanFull)
	for i, res := range results {
		e := res.(*exchange)
		assert.True(t, wiped(e.deltaBeta), "δ β of %d", i)
		if e.chiBeta != nil {
			assert.True(t, wiped(e.chiBeta), "χ β of %d", i)
		}
	}

	results = []interface{}{&exchange{deltaBeta: beta(), chiBeta: beta()}}
	exchanges, err := collectExchanges(ids[:1], results)
	require.NoError(t, err)
	assert.False(t, wiped(exchanges[ids[0]].deltaBeta))

	// opening fails on a missing ciphertext and still wipes
	e := exchanges[ids[0]]
	_, _, err = e.open(test.PaillierSecret(0))
	assert.Error(t, err)
	assert.True(t, wiped(e.deltaBeta))
	assert.True(t, wiped(e.chiBeta))
}
