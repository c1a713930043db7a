// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package sample

import (
	"io"
	"sync"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/chacha20"
)

const seedDomain = "MPC_PRESIGN seeded reader"

type seededReader struct {
	mtx    sync.Mutex
	cipher *chacha20.Cipher
}

// NewSeededReader returns a deterministic stream of bytes derived from seed.
// It is meant for reproducible test runs, never for production key material.
func NewSeededReader(seed []byte) io.Reader {
	h := blake3.New()
	_, _ = h.Write([]byte(seedDomain))
	_, _ = h.Write(seed)
	key := h.Sum(nil)
	nonce := make([]byte, chacha20.NonceSize)
	c, err := chacha20.NewUnauthenticatedCipher(key, nonce)
	if err != nil {
		panic(err)
	}
	return &seededReader{cipher: c}
}

func (r *seededReader) Read(p []byte) (int, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	for i := range p {
		p[i] = 0
	}
	r.cipher.XORKeyStream(p, p)
	return len(p), nil
}
