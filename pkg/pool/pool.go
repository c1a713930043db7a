// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package pool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

type search struct {
	f       func() interface{}
	found   int64
	needed  int64
	results chan interface{}
}

type parallel struct {
	f  func(int) interface{}
	i  int
	wg *sync.WaitGroup
	r  []interface{}
}

type job struct {
	search   *search
	parallel *parallel
}

// Pool holds a fixed number of worker goroutines shared by the expensive
// operations of a session: prime search and repeated proof iterations.
//
// A nil *Pool is valid and runs every job on the calling goroutine.
type Pool struct {
	jobs    chan job
	workers int
	wg      sync.WaitGroup
}

// NewPool creates a new pool, with a certain number of workers.
//
// If count <= 0, this will use the number of available CPUs instead.
func NewPool(count int) *Pool {
	if count <= 0 {
		count = runtime.NumCPU()
	}
	p := &Pool{
		jobs:    make(chan job),
		workers: count,
	}
	p.wg.Add(count)
	for i := 0; i < count; i++ {
		go p.work()
	}
	return p
}

func (p *Pool) work() {
	defer p.wg.Done()
	for j := range p.jobs {
		switch {
		case j.search != nil:
			runSearch(j.search)
		case j.parallel != nil:
			j.parallel.r[j.parallel.i] = j.parallel.f(j.parallel.i)
			j.parallel.wg.Done()
		}
	}
}

func runSearch(s *search) {
	for atomic.LoadInt64(&s.found) < s.needed {
		res := s.f()
		if res == nil {
			continue
		}
		if atomic.AddInt64(&s.found, 1) <= s.needed {
			s.results <- res
		}
	}
}

// TearDown cleanly shuts down a pool.
//
// Calling this function twice will panic.
func (p *Pool) TearDown() {
	if p == nil {
		return
	}
	close(p.jobs)
	p.wg.Wait()
}

// Search runs f repeatedly until count non nil results are found.
func (p *Pool) Search(count int, f func() interface{}) []interface{} {
	s := &search{
		f:       f,
		needed:  int64(count),
		results: make(chan interface{}, count),
	}
	if p == nil {
		runSearch(s)
	} else {
		for i := 0; i < p.workers; i++ {
			p.jobs <- job{search: s}
		}
	}
	out := make([]interface{}, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, <-s.results)
	}
	return out
}

// Parallelize calls f(i) for i in [0, count) and returns the results in order.
func (p *Pool) Parallelize(count int, f func(int) interface{}) []interface{} {
	results := make([]interface{}, count)
	if p == nil {
		for i := 0; i < count; i++ {
			results[i] = f(i)
		}
		return results
	}
	var wg sync.WaitGroup
	wg.Add(count)
	for i := 0; i < count; i++ {
		p.jobs <- job{parallel: &parallel{f: f, i: i, wg: &wg, r: results}}
	}
	wg.Wait()
	return results
}
