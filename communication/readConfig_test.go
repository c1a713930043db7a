// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package communication

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"MPC_PRESIGN/pkg/party"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLocalConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "connConfig.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"localID": "b",
		"localAddr": "127.0.0.1:9001",
		"localCanBeServer": true,
		"otherPartyInfo": [
			{"id": "a", "addr": "127.0.0.1:9000", "connRole": "server"},
			{"id": "c", "connRole": "client"}
		],
		"timeOutSecond": 5
	}`), 0o600))

	cfg, err := LoadLocalConfig(path)
	require.NoError(t, err)
	assert.Equal(t, party.ID("b"), cfg.LocalID)
	assert.Len(t, cfg.OtherPartyInfo, 2)
	assert.Equal(t, party.IDSlice{"a", "b", "c"}, cfg.PartyIDs())

	_, err = LoadLocalConfig(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestLocalConfigValidate(t *testing.T) {
	cases := map[string]LocalConfig{
		"no local ID": {},
		"duplicate peer": {LocalID: "a", OtherPartyInfo: []Party{
			{ID: "b", Address: "x", ConnRole: RoleServer},
			{ID: "b", Address: "y", ConnRole: RoleServer},
		}},
		"self as peer":        {LocalID: "a", OtherPartyInfo: []Party{{ID: "a", Address: "x", ConnRole: RoleServer}}},
		"server without addr": {LocalID: "a", OtherPartyInfo: []Party{{ID: "b", ConnRole: RoleServer}}},
		"client of a client":  {LocalID: "a", OtherPartyInfo: []Party{{ID: "b", ConnRole: RoleClient}}},
		"unknown role":        {LocalID: "a", OtherPartyInfo: []Party{{ID: "b", ConnRole: "peer"}}},
	}
	for name, cfg := range cases {
		cfg := cfg
		assert.Error(t, cfg.Validate(), name)
	}
}

func TestFrame(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeFrame(&buf, []byte("hello")))
	require.NoError(t, writeFrame(&buf, nil))

	data, err := readFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
	data, err = readFrame(&buf)
	require.NoError(t, err)
	assert.Empty(t, data)
	_, err = readFrame(&buf)
	assert.Error(t, err)

	// truncated frame
	require.NoError(t, writeFrame(&buf, []byte("hello")))
	_, err = readFrame(bytes.NewReader(buf.Bytes()[:6]))
	assert.Error(t, err)

	var size [4]byte
	binary.BigEndian.PutUint32(size[:], maxFrame+1)
	_, err = readFrame(bytes.NewReader(size[:]))
	assert.Error(t, err)
}
