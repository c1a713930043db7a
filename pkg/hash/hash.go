// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package hash

import (
	"bytes"
	"encoding"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"MPC_PRESIGN/pkg/BigInt"
	"MPC_PRESIGN/pkg/math/curve"
	"github.com/minio/sha256-simd"
)

// DigestLengthBytes is the size of a SHA-256 digest.
const DigestLengthBytes = sha256.Size

// WriterToWithDomain represents a type writing itself, and knowing its domain.
//
// Providing a domain string lets us distinguish the output of different types
// implementing this same interface.
type WriterToWithDomain interface {
	io.WriterTo

	// Domain returns a context string, which should be unique for each implementor
	Domain() string
}

// BytesWithDomain is a useful wrapper to annotate some chunk of data with a domain.
type BytesWithDomain struct {
	TheDomain string
	Bytes     []byte
}

func (b BytesWithDomain) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.Bytes)
	return int64(n), err
}

func (b BytesWithDomain) Domain() string {
	return b.TheDomain
}

// Hash is the Fiat-Shamir transcript. Every item is absorbed with its domain
// and its length, so that two different sequences never produce the same state.
type Hash struct {
	state []byte
}

// New creates a Hash struct with initial data absorbed.
func New(initialData ...WriterToWithDomain) *Hash {
	hash := &Hash{}
	for _, d := range initialData {
		_ = hash.WriteAny(d)
	}
	return hash
}

func (hash *Hash) absorb(domain string, data []byte) {
	var lengths [16]byte
	binary.BigEndian.PutUint64(lengths[:8], uint64(len(domain)))
	binary.BigEndian.PutUint64(lengths[8:], uint64(len(data)))
	hash.state = append(hash.state, lengths[:8]...)
	hash.state = append(hash.state, domain...)
	hash.state = append(hash.state, lengths[8:]...)
	hash.state = append(hash.state, data...)
}

// WriteAny takes many different data types and writes them to the hash state.
//
// Currently supported types:
//
//   - []byte
//   - string
//   - uint64 and int
//   - *BigInt.Nat
//   - curve.Scalar, curve.Point
//   - hash.WriterToWithDomain
//
// This function will apply its own domain separation for the first two types.
// The last type already suggests which domain to use, and this function respects it.
func (hash *Hash) WriteAny(data ...interface{}) error {
	for _, d := range data {
		switch t := d.(type) {
		case nil:
			return errors.New("hash.WriteAny: nil value")
		case []byte:
			hash.absorb("[]byte", t)
		case string:
			hash.absorb("string", []byte(t))
		case uint64:
			var buf [8]byte
			binary.BigEndian.PutUint64(buf[:], t)
			hash.absorb("uint64", buf[:])
		case int:
			var buf [8]byte
			binary.BigEndian.PutUint64(buf[:], uint64(t))
			hash.absorb("int", buf[:])
		case *BigInt.Nat:
			if t == nil || t.Data == nil {
				return errors.New("hash.WriteAny: nil BigInt.Nat")
			}
			b, _ := t.MarshalBinary()
			hash.absorb("BigInt.Nat", b)
		case curve.Scalar:
			if err := hash.writeMarshaler("curve.Scalar", t); err != nil {
				return err
			}
		case curve.Point:
			if err := hash.writeMarshaler("curve.Point", t); err != nil {
				return err
			}
		case WriterToWithDomain:
			var buf bytes.Buffer
			if _, err := t.WriteTo(&buf); err != nil {
				return fmt.Errorf("hash.WriteAny: %s: %w", t.Domain(), err)
			}
			hash.absorb(t.Domain(), buf.Bytes())
		default:
			return fmt.Errorf("hash.WriteAny: invalid type provided as input: %T", d)
		}
	}
	return nil
}

func (hash *Hash) writeMarshaler(domain string, m encoding.BinaryMarshaler) error {
	b, err := m.MarshalBinary()
	if err != nil {
		return fmt.Errorf("hash.WriteAny: %s: %w", domain, err)
	}
	hash.absorb(domain, b)
	return nil
}

// Sum returns the SHA-256 digest of the current state.
func (hash *Hash) Sum() []byte {
	out := sha256.Sum256(hash.state)
	return out[:]
}

// Digest returns a reader for the expanded output of the hash.
//
// The stream is SHA-256(sum ‖ counter) for counter = 0, 1, ...
func (hash *Hash) Digest() io.Reader {
	return &digestReader{seed: hash.Sum()}
}

type digestReader struct {
	seed    []byte
	counter uint32
	block   []byte
}

func (r *digestReader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(r.block) == 0 {
			r.block = counterBlock(r.seed, r.counter)
			r.counter++
		}
		c := copy(p[n:], r.block)
		r.block = r.block[c:]
		n += c
	}
	return n, nil
}

func counterBlock(seed []byte, counter uint32) []byte {
	h := sha256.New()
	_, _ = h.Write(seed)
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], counter)
	_, _ = h.Write(buf[:])
	return h.Sum(nil)
}

// Clone returns a copy of the Hash in its current state.
func (hash *Hash) Clone() *Hash {
	state := make([]byte, len(hash.state))
	copy(state, hash.state)
	return &Hash{state: state}
}

// Fork creates a Clone of the Hash and adds data to it.
func (hash *Hash) Fork(data ...interface{}) *Hash {
	newHash := hash.Clone()
	_ = newHash.WriteAny(data...)
	return newHash
}
