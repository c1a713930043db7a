// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package communication_test

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"MPC_PRESIGN/communication"
	"MPC_PRESIGN/internal/test"
	"MPC_PRESIGN/pkg/math/sample"
	"MPC_PRESIGN/pkg/paillier"
	"MPC_PRESIGN/pkg/party"
	"MPC_PRESIGN/pkg/protocol"
	"MPC_PRESIGN/protocols/config"
	"MPC_PRESIGN/protocols/presign"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func writePEM(t *testing.T, path, kind string, der []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: kind, Bytes: der}), 0o600))
}

// certificates writes a CA and one certificate per id to dir, and returns the TLS config of every id.
func certificates(t *testing.T, dir string, ids ...party.ID) map[party.ID]*tls.Config {
	t.Helper()
	caKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	caTemplate := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "test ca"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
	}
	caDER, err := x509.CreateCertificate(rand.Reader, caTemplate, caTemplate, &caKey.PublicKey, caKey)
	require.NoError(t, err)
	caCert, err := x509.ParseCertificate(caDER)
	require.NoError(t, err)
	caPath := filepath.Join(dir, "ca.pem")
	writePEM(t, caPath, "CERTIFICATE", caDER)

	configs := make(map[party.ID]*tls.Config, len(ids))
	for i, id := range ids {
		key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		require.NoError(t, err)
		template := &x509.Certificate{
			SerialNumber: big.NewInt(int64(i + 2)),
			Subject:      pkix.Name{CommonName: string(id)},
			NotBefore:    time.Now().Add(-time.Hour),
			NotAfter:     time.Now().Add(time.Hour),
			KeyUsage:     x509.KeyUsageDigitalSignature,
			ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
			IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
		}
		der, err := x509.CreateCertificate(rand.Reader, template, caCert, &key.PublicKey, caKey)
		require.NoError(t, err)
		keyDER, err := x509.MarshalECPrivateKey(key)
		require.NoError(t, err)

		certPath := filepath.Join(dir, string(id)+".pem")
		keyPath := filepath.Join(dir, string(id)+".key")
		writePEM(t, certPath, "CERTIFICATE", der)
		writePEM(t, keyPath, "EC PRIVATE KEY", keyDER)
		configs[id], err = communication.LoadTLSConfig(caPath, certPath, keyPath)
		require.NoError(t, err)
	}
	return configs
}

// connect builds a mesh where a listens and b dials.
func connect(t *testing.T, tlsConfigs map[party.ID]*tls.Config) (a, b *communication.LocalConn) {
	t.Helper()
	a = communication.NewLocalConn(&communication.LocalConfig{
		LocalID:          "a",
		LocalAddr:        "127.0.0.1:0",
		LocalCanBeServer: true,
		OtherPartyInfo:   []communication.Party{{ID: "b", ConnRole: communication.RoleClient}},
		TimeOutSecond:    10,
	}, tlsConfigs["a"])
	addr, err := a.Listen()
	require.NoError(t, err)
	b = communication.NewLocalConn(&communication.LocalConfig{
		LocalID:        "b",
		OtherPartyInfo: []communication.Party{{ID: "a", Address: addr.String(), ConnRole: communication.RoleServer}},
		TimeOutSecond:  10,
	}, tlsConfigs["b"])

	var group errgroup.Group
	group.Go(func() error { return a.StartServer(context.Background()) })
	group.Go(func() error { return b.StartServer(context.Background()) })
	require.NoError(t, group.Wait())
	t.Cleanup(func() {
		_ = a.Close()
		_ = b.Close()
	})
	return a, b
}

func TestP2p(t *testing.T) {
	a, _ := connect(t, certificates(t, t.TempDir(), "a", "b"))
	require.NoError(t, a.P2pSend("b", []byte("ping")))
	assert.Error(t, a.P2pSend("c", []byte("ping")))

	msg := &protocol.Message{From: "a", Protocol: "test", RoundNumber: 1, Data: []byte("x")}
	require.NoError(t, a.Send(msg))
}

func TestWrongCertificate(t *testing.T) {
	dir := t.TempDir()
	tlsConfigs := certificates(t, dir, "a", "b", "mallory")
	a := communication.NewLocalConn(&communication.LocalConfig{
		LocalID:          "a",
		LocalAddr:        "127.0.0.1:0",
		LocalCanBeServer: true,
		OtherPartyInfo:   []communication.Party{{ID: "b", ConnRole: communication.RoleClient}},
		TimeOutSecond:    2,
	}, tlsConfigs["a"])
	addr, err := a.Listen()
	require.NoError(t, err)
	defer a.Close()

	// mallory claims to be b
	mallory := communication.NewLocalConn(&communication.LocalConfig{
		LocalID:        "b",
		OtherPartyInfo: []communication.Party{{ID: "a", Address: addr.String(), ConnRole: communication.RoleServer}},
		TimeOutSecond:  2,
	}, tlsConfigs["mallory"])
	defer mallory.Close()

	var group errgroup.Group
	group.Go(func() error { return a.StartServer(context.Background()) })
	_ = mallory.StartServer(context.Background())
	assert.Error(t, group.Wait())
}

func TestPresignOverTLS(t *testing.T) {
	d := &config.Dealer{
		Group:     test.Group,
		Threshold: 1,
		Rand:      sample.NewSeededReader([]byte("communication test")),
		Paillier: func(i int) *paillier.SecretKey {
			return test.PaillierSecret(i % test.PaillierKeys)
		},
	}
	ids := party.IDSlice{"a", "b"}
	configs, err := d.Deal(ids, nil)
	require.NoError(t, err)

	a, b := connect(t, certificates(t, t.TempDir(), ids...))
	conns := map[party.ID]*communication.LocalConn{"a": a, "b": b}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	results := make(map[party.ID]*presign.Result, len(ids))
	handlers := make(map[party.ID]*protocol.MultiHandler, len(ids))
	for _, id := range ids {
		h, err := protocol.NewMultiHandler(presign.StartPresign(configs[id], ids, nil, presign.Options{Reveal: true}), []byte("tls session"))
		require.NoError(t, err)
		handlers[id] = h
	}
	var group errgroup.Group
	for _, id := range ids {
		id := id
		group.Go(func() error { return conns[id].HandlerLoop(ctx, handlers[id]) })
	}
	require.NoError(t, group.Wait())

	for _, id := range ids {
		r, err := handlers[id].Result()
		require.NoError(t, err)
		res, ok := r.(*presign.Result)
		require.True(t, ok)
		results[id] = res
	}
	require.NoError(t, presign.Validate(results["a"], results["b"]))
}
