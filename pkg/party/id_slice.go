// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package party

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"MPC_PRESIGN/internal/params"
)

// IDSlice is a sorted slice of unique party IDs.
type IDSlice []ID

// NewIDSlice returns a sorted copy of partyIDs without duplicates.
func NewIDSlice(partyIDs []ID) IDSlice {
	ids := make(IDSlice, 0, len(partyIDs))
	seen := make(map[ID]bool, len(partyIDs))
	for _, id := range partyIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Sort(ids)
	return ids
}

func (ids IDSlice) Len() int           { return len(ids) }
func (ids IDSlice) Less(i, j int) bool { return ids[i] < ids[j] }
func (ids IDSlice) Swap(i, j int)      { ids[i], ids[j] = ids[j], ids[i] }

// Contains returns true if the IDs are all contained in ids.
func (ids IDSlice) Contains(IDs ...ID) bool {
	for _, id := range IDs {
		if _, ok := ids.search(id); !ok {
			return false
		}
	}
	return true
}

func (ids IDSlice) search(id ID) (int, bool) {
	i := sort.Search(len(ids), func(i int) bool { return ids[i] >= id })
	return i, i < len(ids) && ids[i] == id
}

// Index returns the 1-based position of id, used as its owner index in packed sets.
// It returns 0 when id is absent.
func (ids IDSlice) Index(id ID) uint16 {
	i, ok := ids.search(id)
	if !ok {
		return 0
	}
	return uint16(i + 1)
}

// Copy returns an identical copy of the received.
func (ids IDSlice) Copy() IDSlice {
	a := make(IDSlice, len(ids))
	copy(a, ids)
	return a
}

// Remove finds id in ids and returns a copy of ids without it.
func (ids IDSlice) Remove(id ID) IDSlice {
	newIDs := make(IDSlice, 0, len(ids))
	for _, partyID := range ids {
		if partyID != id {
			newIDs = append(newIDs, partyID)
		}
	}
	return newIDs
}

// Valid returns true if ids is sorted, has no duplicates, and fits the 2 byte owner index.
func (ids IDSlice) Valid() bool {
	if len(ids) >= 1<<(8*params.BytesIndex) {
		return false
	}
	for i := range ids {
		if ids[i].Validate() != nil {
			return false
		}
		if i > 0 && ids[i-1] >= ids[i] {
			return false
		}
	}
	return true
}

// WriteTo implements io.WriterTo interface.
func (ids IDSlice) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, id := range ids {
		n, err := id.WriteTo(w)
		total += n
		if err != nil {
			return total, err
		}
		m, err := w.Write([]byte{0})
		total += int64(m)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Domain implements hash.WriterToWithDomain, and separates this type within hash.Hash.
func (IDSlice) Domain() string {
	return "IDSlice"
}

func (ids IDSlice) String() string {
	ss := make([]string, 0, len(ids))
	for _, id := range ids {
		ss = append(ss, string(id))
	}
	return fmt.Sprintf("[%s]", strings.Join(ss, ", "))
}
