// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memstore

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nosqlbench/perf/benchsample"
)

const data = `# two scenarios
scenario1_crud,database=Redis,operation=insert latency_ms=5 1767225600000000000
scenario1_crud,database=Redis,operation=insert latency_ms=7 1767225630000000000
scenario1_crud,database=MongoDB,operation=insert latency_ms=9 1767225600000000000
scenario2_iot,database=Redis insert_time=12 1767225660000000000
`

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := New()
	n, err := s.Load(benchsample.NewReader(strings.NewReader(data), "data"))
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Errorf("loaded %d samples, want 4", n)
	}
	if got := strings.Join(s.Datasets(), ","); got != "scenario1_crud,scenario2_iot" {
		t.Errorf("got datasets %s", got)
	}
	if ok, _ := s.HasDataset(ctx, "scenario3_graph"); ok {
		t.Errorf("HasDataset(scenario3_graph) = true")
	}

	t0 := time.Unix(1767225600, 0)
	got, err := s.Select(ctx, "scenario1_crud", t0, t0.Add(30*time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d samples in [t0, t0+30s), want 2", len(got))
	}
	for _, smp := range got {
		if !smp.Time.Equal(t0) {
			t.Errorf("sample at %v outside range", smp.Time)
		}
	}
	if got, _ := s.Select(ctx, "scenario1_crud", t0.Add(time.Hour), t0.Add(2*time.Hour)); len(got) != 0 {
		t.Errorf("got %d samples from an empty range", len(got))
	}
}

func TestAddValidates(t *testing.T) {
	s := New()
	good := &benchsample.Sample{Dataset: "d", Time: time.Unix(1, 0), Tags: benchsample.Tags{"database": "Redis"}, Fields: benchsample.Fields{"x": 1}}
	bad := &benchsample.Sample{Dataset: "d", Time: time.Unix(1, 0), Fields: benchsample.Fields{"x": 1}}
	if err := s.Add(good, bad); !errors.Is(err, benchsample.ErrInvalidSample) {
		t.Errorf("got %v, want ErrInvalidSample", err)
	}
	if len(s.Datasets()) != 0 {
		t.Errorf("partial add after validation failure")
	}
}

func TestCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().Select(ctx, "d", time.Unix(0, 0), time.Unix(1, 0)); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}
