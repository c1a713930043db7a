// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package ssid builds the session identifier every challenge of a presign session binds to.
package ssid

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"MPC_PRESIGN/internal/params"
	"MPC_PRESIGN/pkg/math/curve"
	"MPC_PRESIGN/pkg/paillier"
	"MPC_PRESIGN/pkg/party"
	"MPC_PRESIGN/pkg/pedersen"
	"MPC_PRESIGN/pkg/wire"
	"github.com/zeebo/blake3"
)

const (
	// BytesRID is the length of the rid and rho contributions.
	BytesRID = params.SecBytes

	bytesPedersen = pedersen.BytesWritten
)

// SSID is an immutable aggregate of the public parameters of one session.
type SSID struct {
	uid       []byte
	rid       []byte
	rho       []byte
	shares    *PackedSet
	generator []byte
	order     []byte
	paillier  *PackedSet
	pedersen  *PackedSet
	threshold uint16
	players   uint16
}

// Params holds the inputs to New. All maps are keyed by the members of PartyIDs.
type Params struct {
	UID       []byte
	RID       []byte
	Rho       []byte
	Group     curve.Curve
	PartyIDs  party.IDSlice
	Threshold int
	Shares    map[party.ID]curve.Point
	Paillier  map[party.ID]*paillier.PublicKey
	Pedersen  map[party.ID]*pedersen.Parameters
}

// XOR combines rid contributions of equal length.
func XOR(contributions ...[]byte) ([]byte, error) {
	if len(contributions) == 0 {
		return nil, errors.New("ssid: no contributions")
	}
	out := make([]byte, len(contributions[0]))
	for _, c := range contributions {
		if len(c) != len(out) {
			return nil, fmt.Errorf("ssid: contribution has %d bytes, need %d", len(c), len(out))
		}
		for i := range out {
			out[i] ^= c[i]
		}
	}
	return out, nil
}

// New packs p into an SSID. Each party's slot index is its 1-based position in the sorted PartyIDs.
func New(p Params) (*SSID, error) {
	if len(p.RID) != BytesRID || len(p.Rho) != BytesRID {
		return nil, errors.New("ssid: rid and rho must be 32 bytes")
	}
	if !p.PartyIDs.Valid() {
		return nil, errors.New("ssid: invalid party ID set")
	}
	n := len(p.PartyIDs)
	if p.Threshold < 0 || p.Threshold >= n {
		return nil, fmt.Errorf("ssid: threshold %d invalid for %d parties", p.Threshold, n)
	}
	shares := make([]Entry, 0, n)
	moduli := make([]Entry, 0, n)
	aux := make([]Entry, 0, n)
	for _, id := range p.PartyIDs {
		index := p.PartyIDs.Index(id)
		X, ok := p.Shares[id]
		if !ok {
			return nil, fmt.Errorf("ssid: missing public share of %s", id)
		}
		share, err := X.MarshalBinary()
		if err != nil {
			return nil, err
		}
		shares = append(shares, Entry{Index: index, Value: share})

		pk, ok := p.Paillier[id]
		if !ok || pk == nil {
			return nil, fmt.Errorf("ssid: missing Paillier key of %s", id)
		}
		moduli = append(moduli, Entry{Index: index, Value: pk.N().FillBytes(make([]byte, params.BytesPaillier))})

		ped, ok := p.Pedersen[id]
		if !ok || ped == nil {
			return nil, fmt.Errorf("ssid: missing Pedersen parameters of %s", id)
		}
		var buf bytes.Buffer
		if _, err = ped.WriteTo(&buf); err != nil {
			return nil, err
		}
		aux = append(aux, Entry{Index: index, Value: buf.Bytes()})
	}

	generator, err := p.Group.NewBasePoint().MarshalBinary()
	if err != nil {
		return nil, err
	}
	s := &SSID{
		uid:       append([]byte(nil), p.UID...),
		rid:       append([]byte(nil), p.RID...),
		rho:       append([]byte(nil), p.Rho...),
		generator: generator,
		order:     p.Group.Order().FillBytes(make([]byte, params.BytesScalar)),
		threshold: uint16(p.Threshold),
		players:   uint16(n),
	}
	if s.shares, err = Pack(params.BytesPoint, shares); err != nil {
		return nil, err
	}
	if s.paillier, err = Pack(params.BytesPaillier, moduli); err != nil {
		return nil, err
	}
	if s.pedersen, err = Pack(bytesPedersen, aux); err != nil {
		return nil, err
	}
	return s, nil
}

// FromPacked assembles an SSID from sets received over the wire, in any slot order.
func FromPacked(uid, rid, rho []byte, group curve.Curve, shares, moduli, aux *PackedSet, threshold, players int) (*SSID, error) {
	generator, err := group.NewBasePoint().MarshalBinary()
	if err != nil {
		return nil, err
	}
	s := &SSID{
		uid:       append([]byte(nil), uid...),
		rid:       append([]byte(nil), rid...),
		rho:       append([]byte(nil), rho...),
		generator: generator,
		order:     group.Order().FillBytes(make([]byte, params.BytesScalar)),
		threshold: uint16(threshold),
		players:   uint16(players),
	}
	for _, set := range []struct {
		dst  **PackedSet
		src  *PackedSet
		size int
	}{
		{&s.shares, shares, params.BytesPoint},
		{&s.paillier, moduli, params.BytesPaillier},
		{&s.pedersen, aux, bytesPedersen},
	} {
		if set.src == nil || set.src.ItemSize != set.size || set.src.Len() != players {
			return nil, ErrWrongPackedSize
		}
		if *set.dst, err = set.src.Canonical(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// UID returns the unique session identifier.
func (s *SSID) UID() []byte { return s.uid }

// RID returns the combined rid.
func (s *SSID) RID() []byte { return s.rid }

// Shares returns the packed public key shares.
func (s *SSID) Shares() *PackedSet { return s.shares }

// Paillier returns the packed Paillier moduli.
func (s *SSID) Paillier() *PackedSet { return s.paillier }

// Pedersen returns the packed (N̂, s, t) triples.
func (s *SSID) Pedersen() *PackedSet { return s.pedersen }

// Threshold returns t.
func (s *SSID) Threshold() int { return int(s.threshold) }

// Players returns n.
func (s *SSID) Players() int { return int(s.players) }

// MarshalBinary encodes the SSID as a wire tuple in its hashing order.
func (s *SSID) MarshalBinary() ([]byte, error) {
	if s == nil {
		return nil, errors.New("ssid: nil SSID")
	}
	return wire.NewEncoder().
		Raw(s.uid).
		Raw(s.rid).
		Raw(s.rho).
		Raw(s.shares.Items).
		Raw(s.shares.Indices).
		Raw(s.generator).
		Raw(s.order).
		Raw(s.paillier.Items).
		Raw(s.paillier.Indices).
		Raw(s.pedersen.Items).
		Raw(s.pedersen.Indices).
		Uint16(s.threshold).
		Uint16(s.players).
		Bytes()
}

// UnmarshalBinary decodes an SSID produced by MarshalBinary. The slots of each set
// may arrive in any order and are sorted by index.
func (s *SSID) UnmarshalBinary(data []byte) error {
	d := wire.NewDecoder(data)
	uid, rid, rho := d.Raw(), d.Raw(), d.Raw()
	sharesItems, sharesIndices := d.Raw(), d.Raw()
	generator, order := d.Raw(), d.Raw()
	moduliItems, moduliIndices := d.Raw(), d.Raw()
	auxItems, auxIndices := d.Raw(), d.Raw()
	threshold, players := d.Uint16(), d.Uint16()
	if err := d.Finish(); err != nil {
		return err
	}
	sets := make([]*PackedSet, 3)
	for i, set := range []struct {
		size           int
		items, indices []byte
	}{
		{params.BytesPoint, sharesItems, sharesIndices},
		{params.BytesPaillier, moduliItems, moduliIndices},
		{bytesPedersen, auxItems, auxIndices},
	} {
		packed, err := NewPackedSet(set.size, set.items, set.indices)
		if err != nil {
			return err
		}
		if packed.Len() != int(players) {
			return ErrWrongPackedSize
		}
		if sets[i], err = packed.Canonical(); err != nil {
			return err
		}
	}
	shares, moduli, aux := sets[0], sets[1], sets[2]
	*s = SSID{
		uid:       uid,
		rid:       rid,
		rho:       rho,
		shares:    shares,
		generator: generator,
		order:     order,
		paillier:  moduli,
		pedersen:  aux,
		threshold: threshold,
		players:   players,
	}
	return nil
}

// WriteTo implements io.WriterTo and should be used within the hash.Hash function.
func (s *SSID) WriteTo(w io.Writer) (int64, error) {
	b, err := s.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain, and separates this type within hash.Hash.
func (*SSID) Domain() string {
	return "SSID"
}

// Equal reports whether both identifiers encode the same session.
func (s *SSID) Equal(other *SSID) bool {
	a, errA := s.MarshalBinary()
	b, errB := other.MarshalBinary()
	return errA == nil && errB == nil && bytes.Equal(a, b)
}

// Fingerprint returns a short blake3 digest of the SSID, suitable for logs.
func (s *SSID) Fingerprint() string {
	b, err := s.MarshalBinary()
	if err != nil {
		return "<invalid>"
	}
	sum := blake3.Sum256(b)
	return hex.EncodeToString(sum[:8])
}
