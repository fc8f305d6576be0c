// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dashboard exposes named comparison views to presentation
// layers. It holds no aggregation logic of its own: a view is a list
// of queries handed to a benchagg.Engine, merged with benchview.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/nosqlbench/perf/benchagg"
	"github.com/nosqlbench/perf/benchquery"
	"github.com/nosqlbench/perf/benchtable"
	"github.com/nosqlbench/perf/benchview"
)

// DefaultRetryWait is the wait before retrying a timed out query when
// Adapter.RetryWait is zero.
const DefaultRetryWait = 500 * time.Millisecond

// An Adapter runs views against an engine.
type Adapter struct {
	Catalog *benchquery.Catalog
	Engine  *benchagg.Engine

	// RetryWait is the initial backoff before a timed out query is
	// retried. Zero means DefaultRetryWait.
	RetryWait time.Duration

	// Logf, if non-nil, receives warnings.
	Logf func(format string, args ...interface{})

	views map[string]View
}

// New returns an Adapter serving views. Later views replace earlier
// ones with the same name.
func New(catalog *benchquery.Catalog, engine *benchagg.Engine, views []View) *Adapter {
	a := &Adapter{Catalog: catalog, Engine: engine, views: make(map[string]View)}
	for _, v := range views {
		a.views[v.Name] = v
	}
	return a
}

func (a *Adapter) logf(format string, args ...interface{}) {
	if a.Logf != nil {
		a.Logf(format, args...)
	}
}

// ListViews returns the names of the views, sorted.
func (a *Adapter) ListViews() []string {
	names := make([]string, 0, len(a.views))
	for name := range a.views {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// View returns the named view.
func (a *Adapter) View(name string) (View, bool) {
	v, ok := a.views[name]
	return v, ok
}

// An Option adjusts one RunView call.
type Option func(*runOptions)

type runOptions struct {
	tags map[string]string
}

// WithTag narrows every query of the view that knows tag key to
// samples whose key is value, replacing the view's own filter on key.
func WithTag(key, value string) Option {
	return func(o *runOptions) {
		if o.tags == nil {
			o.tags = make(map[string]string)
		}
		o.tags[key] = value
	}
}

// Specs builds the query specs of a view over tr. A zero tr means the
// view's default range.
func (a *Adapter) Specs(name string, tr benchquery.TimeRange, opts ...Option) ([]*benchquery.Spec, error) {
	v, ok := a.views[name]
	if !ok {
		return nil, &UnknownViewError{Name: name}
	}
	var o runOptions
	for _, opt := range opts {
		opt(&o)
	}
	if tr.IsZero() {
		var err error
		tr, err = benchquery.ParseTimeRange(v.DefaultRange)
		if err != nil {
			return nil, &benchquery.InvalidSpecError{Param: "time_range", Msg: err.Error()}
		}
	}

	now := time.Now()
	applied := make(map[string]bool)
	var specs []*benchquery.Spec
	for i := range v.Queries {
		p, err := v.Queries[i].Params(tr, now)
		if err != nil {
			return nil, err
		}
		if schema, ok := a.Catalog.Schema(p.Dataset); ok {
			for key, val := range o.tags {
				if key == benchquery.FieldDim || !schema.HasDim(key) {
					continue
				}
				if p.Tags == nil {
					p.Tags = make(map[string]benchquery.TagFilter)
				}
				p.Tags[key] = benchquery.Equals(val)
				applied[key] = true
			}
		}
		spec, err := a.Catalog.Build(p)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	for key := range o.tags {
		if !applied[key] {
			return nil, &benchquery.InvalidSpecError{Param: "tag_filters", Msg: fmt.Sprintf("no query of view %s has tag %q", name, key)}
		}
	}
	return specs, nil
}

// RunView evaluates the named view over tr. A zero tr means the view's
// default range. Specs are built fresh on every call, so an invalid
// view fails before any store access.
//
// A query that times out is retried once after a backoff. Other
// failures are returned immediately. No partial table is returned on
// failure.
func (a *Adapter) RunView(ctx context.Context, name string, tr benchquery.TimeRange, opts ...Option) (*benchtable.Table, error) {
	specs, err := a.Specs(name, tr, opts...)
	if err != nil {
		return nil, err
	}
	var tables []*benchtable.Table
	for _, spec := range specs {
		t, err := a.execute(ctx, spec)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	if len(tables) == 1 {
		return tables[0], nil
	}
	on := a.views[name].MergeOn
	if on == "" {
		on = benchquery.TimeCol
	}
	out, conflicts := benchview.MergeMetrics(tables, on)
	for _, c := range conflicts {
		a.logf("view %s: warning: %v", name, c)
	}
	return out, nil
}

// execute runs spec, retrying once on timeout.
func (a *Adapter) execute(ctx context.Context, spec *benchquery.Spec) (*benchtable.Table, error) {
	return retry(ctx, a, func() (*benchtable.Table, error) {
		return a.Engine.Execute(ctx, spec)
	})
}

// retry calls op, and once more after a backoff if it fails with
// benchagg.ErrQueryTimeout. Other errors are returned as is.
func retry[T any](ctx context.Context, a *Adapter, op func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = a.RetryWait
	if b.InitialInterval <= 0 {
		b.InitialInterval = DefaultRetryWait
	}
	tries := 0
	operation := func() (T, error) {
		tries++
		v, err := op()
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, benchagg.ErrQueryTimeout) {
			var zero T
			return zero, backoff.Permanent(err)
		}
		if tries == 1 {
			a.logf("%v; retrying", err)
		}
		return v, err
	}
	return backoff.Retry(ctx, operation, backoff.WithBackOff(b), backoff.WithMaxTries(2))
}
