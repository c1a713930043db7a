// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package pool

import (
	"io"
	"sync"
)

// LockedReader wraps a reader so that it can be shared by the workers of a Pool.
type LockedReader struct {
	mtx sync.Mutex
	r   io.Reader
}

// NewLockedReader creates a new LockedReader.
func NewLockedReader(r io.Reader) *LockedReader {
	return &LockedReader{r: r}
}

func (r *LockedReader) Read(p []byte) (int, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return io.ReadFull(r.r, p)
}
