// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package ssid

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"MPC_PRESIGN/internal/params"
)

// ErrWrongPackedSize is returned when a packed set's octets do not match its declared shape.
var ErrWrongPackedSize = errors.New("ssid: packed set has wrong size")

// PackedSet is a set of fixed size values, concatenated, with a parallel array
// of 2 byte big endian indices naming the owner of each slot.
//
// Two sets holding the same (index, value) pairs in a different order are equal
// once canonicalized.
type PackedSet struct {
	ItemSize int
	Items    []byte
	Indices  []byte
}

// Entry is a single slot of a PackedSet.
type Entry struct {
	Index uint16
	Value []byte
}

// NewPackedSet validates the shape of items and indices and returns the set.
// Slots are kept in the order given.
func NewPackedSet(itemSize int, items, indices []byte) (*PackedSet, error) {
	if itemSize <= 0 {
		return nil, fmt.Errorf("item size %d: %w", itemSize, ErrWrongPackedSize)
	}
	if len(indices)%params.BytesIndex != 0 {
		return nil, fmt.Errorf("indices length %d: %w", len(indices), ErrWrongPackedSize)
	}
	count := len(indices) / params.BytesIndex
	if len(items) != count*itemSize {
		return nil, fmt.Errorf("have %d bytes for %d items of size %d: %w", len(items), count, itemSize, ErrWrongPackedSize)
	}
	return &PackedSet{
		ItemSize: itemSize,
		Items:    append([]byte(nil), items...),
		Indices:  append([]byte(nil), indices...),
	}, nil
}

// Pack builds a canonical PackedSet from entries. Every value must have length itemSize.
func Pack(itemSize int, entries []Entry) (*PackedSet, error) {
	items := make([]byte, 0, len(entries)*itemSize)
	indices := make([]byte, 0, len(entries)*params.BytesIndex)
	for _, e := range entries {
		if len(e.Value) != itemSize {
			return nil, fmt.Errorf("index %d has %d bytes, need %d: %w", e.Index, len(e.Value), itemSize, ErrWrongPackedSize)
		}
		items = append(items, e.Value...)
		indices = binary.BigEndian.AppendUint16(indices, e.Index)
	}
	s := &PackedSet{ItemSize: itemSize, Items: items, Indices: indices}
	return s.Canonical()
}

// Len returns the number of slots.
func (s *PackedSet) Len() int {
	return len(s.Indices) / params.BytesIndex
}

// Unpack splits the set into its entries, sorted by index.
// Duplicate indices are rejected.
func (s *PackedSet) Unpack() ([]Entry, error) {
	if _, err := NewPackedSet(s.ItemSize, s.Items, s.Indices); err != nil {
		return nil, err
	}
	entries := make([]Entry, s.Len())
	for i := range entries {
		entries[i] = Entry{
			Index: binary.BigEndian.Uint16(s.Indices[i*params.BytesIndex:]),
			Value: s.Items[i*s.ItemSize : (i+1)*s.ItemSize],
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Index < entries[j].Index })
	for i := 1; i < len(entries); i++ {
		if entries[i].Index == entries[i-1].Index {
			return nil, fmt.Errorf("ssid: duplicate index %d in packed set", entries[i].Index)
		}
	}
	return entries, nil
}

// Canonical returns a copy of s with its slots sorted by index.
func (s *PackedSet) Canonical() (*PackedSet, error) {
	entries, err := s.Unpack()
	if err != nil {
		return nil, err
	}
	out := &PackedSet{
		ItemSize: s.ItemSize,
		Items:    make([]byte, 0, len(s.Items)),
		Indices:  make([]byte, 0, len(s.Indices)),
	}
	for _, e := range entries {
		out.Items = append(out.Items, e.Value...)
		out.Indices = binary.BigEndian.AppendUint16(out.Indices, e.Index)
	}
	return out, nil
}

// Lookup returns the value stored at index.
func (s *PackedSet) Lookup(index uint16) ([]byte, bool) {
	for i := 0; i < s.Len(); i++ {
		if binary.BigEndian.Uint16(s.Indices[i*params.BytesIndex:]) == index {
			return s.Items[i*s.ItemSize : (i+1)*s.ItemSize], true
		}
	}
	return nil, false
}

// Equal reports whether both sets hold the same entries, regardless of order.
func (s *PackedSet) Equal(other *PackedSet) bool {
	a, errA := s.Canonical()
	b, errB := other.Canonical()
	if errA != nil || errB != nil {
		return false
	}
	return a.ItemSize == b.ItemSize && bytes.Equal(a.Items, b.Items) && bytes.Equal(a.Indices, b.Indices)
}
