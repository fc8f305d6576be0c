// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package memstore implements an in-memory sample store. It backs
// tests and serving samples loaded from line protocol files.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nosqlbench/perf/benchsample"
)

// A Store holds samples in memory, indexed by dataset and sorted by
// time. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	datasets map[string][]*benchsample.Sample
}

// New returns an empty store.
func New() *Store {
	return &Store{datasets: make(map[string][]*benchsample.Sample)}
}

// Add validates and adds samples to the store. Either all samples are
// added or none are.
func (s *Store) Add(samples ...*benchsample.Sample) error {
	for _, smp := range samples {
		if err := smp.Validate(); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	touched := make(map[string]bool)
	for _, smp := range samples {
		s.datasets[smp.Dataset] = append(s.datasets[smp.Dataset], smp.Clone())
		touched[smp.Dataset] = true
	}
	for ds := range touched {
		list := s.datasets[ds]
		sort.SliceStable(list, func(i, j int) bool { return list[i].Time.Before(list[j].Time) })
	}
	return nil
}

// A Scanner yields samples, like benchsample.Reader and
// benchsample.Files.
type Scanner interface {
	Scan() bool
	Sample() *benchsample.Sample
	Err() error
}

// Load adds every sample from sc and returns how many were read.
func (s *Store) Load(sc Scanner) (int, error) {
	var batch []*benchsample.Sample
	for sc.Scan() {
		batch = append(batch, sc.Sample())
	}
	if err := sc.Err(); err != nil {
		return 0, err
	}
	return len(batch), s.Add(batch...)
}

// Datasets returns the names of the datasets in the store, sorted.
func (s *Store) Datasets() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var names []string
	for name := range s.datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasDataset reports whether any sample of dataset was added.
func (s *Store) HasDataset(ctx context.Context, dataset string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.datasets[dataset]
	return ok, ctx.Err()
}

// Select returns the samples of dataset in [start, stop), in time
// order. The returned samples must not be modified.
func (s *Store) Select(ctx context.Context, dataset string, start, stop time.Time) ([]*benchsample.Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.datasets[dataset]
	i := sort.Search(len(list), func(i int) bool { return !list[i].Time.Before(start) })
	j := sort.Search(len(list), func(j int) bool { return !list[j].Time.Before(stop) })
	if i >= j {
		return nil, nil
	}
	return append([]*benchsample.Sample(nil), list[i:j]...), nil
}
