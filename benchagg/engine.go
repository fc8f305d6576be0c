// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchagg executes benchmark query specs against a sample
// store.
//
// The Engine selects a dataset's samples for the query range from a
// Source and evaluates the filter, group, window and aggregate stages
// in process. Stores that can evaluate the whole pipeline themselves
// implement Aggregator, and the Engine hands them the spec directly
// when Pushdown is enabled.
//
// The Engine only reads from its Source.
package benchagg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nosqlbench/perf/benchquery"
	"github.com/nosqlbench/perf/benchsample"
	"github.com/nosqlbench/perf/benchtable"
	"github.com/nosqlbench/perf/benchview"
)

// A Source is a read-only store of benchmark samples.
type Source interface {
	// HasDataset reports whether the store knows the dataset.
	HasDataset(ctx context.Context, dataset string) (bool, error)

	// Select returns the samples of dataset with times in
	// [start, stop), in any order.
	Select(ctx context.Context, dataset string, start, stop time.Time) ([]*benchsample.Sample, error)
}

// An Aggregator is a Source that can evaluate a complete spec,
// including windowing and pivoting, in the store. It must return the
// same table Engine would compute in process.
type Aggregator interface {
	Aggregate(ctx context.Context, spec *benchquery.Spec, now time.Time) (*benchtable.Table, error)
}

// DefaultTimeout bounds store access when Engine.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// DefaultMaxWindows bounds the number of windows a query may span
// when Engine.MaxWindows is zero.
const DefaultMaxWindows = 100000

// An Engine executes query specs.
type Engine struct {
	Source Source

	// Timeout bounds each store access. Zero means DefaultTimeout.
	Timeout time.Duration

	// Pushdown enables evaluating specs in the store when Source
	// implements Aggregator and the spec's filters allow it.
	Pushdown bool

	// MaxWindows rejects specs whose range spans more windows.
	// Zero means DefaultMaxWindows.
	MaxWindows int64

	// Logf, if non-nil, is called with warnings such as reshape
	// conflicts.
	Logf func(format string, args ...interface{})

	// Now returns the current time. Nil means time.Now.
	Now func() time.Time
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) logf(format string, args ...interface{}) {
	if e.Logf != nil {
		e.Logf(format, args...)
	}
}

func (e *Engine) timeout() time.Duration {
	if e.Timeout > 0 {
		return e.Timeout
	}
	return DefaultTimeout
}

// Execute runs spec and returns its result table.
//
// It fails with an EmptyDatasetError if the store does not know the
// dataset, and with a QueryTimeoutError if the store does not answer
// within the timeout. A query matching no samples returns an empty
// table.
func (e *Engine) Execute(ctx context.Context, spec *benchquery.Spec) (*benchtable.Table, error) {
	now := e.now()
	maxWindows := e.MaxWindows
	if maxWindows <= 0 {
		maxWindows = DefaultMaxWindows
	}
	if n := spec.WindowCount(now); n > maxWindows {
		return nil, &benchquery.InvalidSpecError{Param: "window", Msg: fmt.Sprintf("range spans %d windows, more than %d", n, maxWindows)}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout())
	defer cancel()

	dataset := spec.Dataset()
	ok, err := e.Source.HasDataset(ctx, dataset)
	if err != nil {
		return nil, e.storeError(ctx, dataset, err)
	}
	if !ok {
		return nil, &EmptyDatasetError{Dataset: dataset}
	}

	// The store only fills windows of series it has data for, so specs
	// that pin their series are filled in process.
	pinned := spec.CreateEmpty() && pinnedSeries(spec, spec.Dims()) != nil
	if agg, ok := e.Source.(Aggregator); ok && e.Pushdown && spec.Pushdown() && !pinned {
		t, err := agg.Aggregate(ctx, spec, now)
		if err != nil {
			return nil, e.storeError(ctx, dataset, err)
		}
		return t, nil
	}

	start, stop := spec.Range().Resolve(now)
	samples, err := e.Source.Select(ctx, dataset, start, stop)
	if err != nil {
		return nil, e.storeError(ctx, dataset, err)
	}
	// A source that ignores cancellation must not leak a late result.
	if ctx.Err() == context.DeadlineExceeded {
		return nil, e.storeError(ctx, dataset, ctx.Err())
	}

	t := Aggregate(spec, samples, now)
	if spec.Pivot() != nil {
		t = e.pivot(spec, t)
	}
	return t, nil
}

// pivot reshapes a tall result according to spec's pivot.
func (e *Engine) pivot(spec *benchquery.Spec, t *benchtable.Table) *benchtable.Table {
	pv := spec.Pivot()
	if pv.ValueColumn != benchquery.ValueCol {
		sel := benchtable.New(t.Columns...)
		for _, r := range t.Rows {
			if f, _ := r[benchquery.FieldDim].Text(); f == pv.ValueColumn {
				sel.Rows = append(sel.Rows, r)
			}
		}
		t = sel
	}
	out, conflicts := benchview.Pivot(t, pv.RowKey, pv.ColumnKey, benchquery.ValueCol)
	for _, c := range conflicts {
		e.logf("%s: warning: %v", spec.Dataset(), c)
	}
	return out
}

// storeError classifies an error from the store.
func (e *Engine) storeError(ctx context.Context, dataset string, err error) error {
	var ede *EmptyDatasetError
	if errors.As(err, &ede) || errors.Is(err, ErrQueryTimeout) {
		return err
	}
	if ctx.Err() == context.DeadlineExceeded || errors.Is(err, context.DeadlineExceeded) {
		return &QueryTimeoutError{Dataset: dataset, Timeout: e.timeout(), Err: err}
	}
	return fmt.Errorf("%s: %w", dataset, err)
}
