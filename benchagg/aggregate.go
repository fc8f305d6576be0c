// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchagg

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aclements/go-moremath/stats"
	"github.com/nosqlbench/perf/benchquery"
	"github.com/nosqlbench/perf/benchsample"
	"github.com/nosqlbench/perf/benchtable"
)

// A series is the values of one (group, field) combination, bucketed
// by window index.
type series struct {
	dims    []benchtable.Value
	windows map[int64][]float64
}

// Aggregate evaluates spec over samples in process and returns the
// tall result: one row per non-empty (window, group, field) bucket,
// or per window and series if spec.CreateEmpty() is set. now resolves
// a relative range.
//
// With CreateEmpty, the series are those observed in range plus every
// series the spec determines on its own (see pinnedSeries), so a
// fully pinned query yields its windows even with no samples at all.
//
// Samples outside the range or rejected by the filters are ignored.
// Rows are ordered by window, then by the dimension values.
//
// Aggregate does not pivot; see Engine.Execute.
func Aggregate(spec *benchquery.Spec, samples []*benchsample.Sample, now time.Time) *benchtable.Table {
	start, stop := spec.Range().Resolve(now)
	w := spec.Window()
	dims := spec.Dims()
	out := benchtable.New(spec.Columns()...)

	bySeries := make(map[string]*series)
	lookup := func(vals []benchtable.Value) *series {
		keys := make([]string, len(vals))
		for i, v := range vals {
			keys[i] = v.Key()
		}
		key := strings.Join(keys, "\x00")
		sr := bySeries[key]
		if sr == nil {
			sr = &series{dims: vals, windows: make(map[int64][]float64)}
			bySeries[key] = sr
		}
		return sr
	}
	if spec.CreateEmpty() {
		for _, vals := range pinnedSeries(spec, dims) {
			lookup(vals)
		}
	}
	for _, s := range samples {
		if s.Time.Before(start) || !s.Time.Before(stop) {
			continue
		}
		if !spec.MatchTags(s) {
			continue
		}
		k := int64(s.Time.Sub(start) / w)
		for _, field := range s.Fields.Names() {
			if !spec.MatchField(field) {
				continue
			}
			vals := make([]benchtable.Value, len(dims))
			for i, dim := range dims {
				if dim == benchquery.FieldDim {
					vals[i] = benchtable.Str(field)
				} else if v, ok := s.Tags[dim]; ok {
					vals[i] = benchtable.Str(v)
				}
			}
			sr := lookup(vals)
			sr.windows[k] = append(sr.windows[k], s.Fields[field])
		}
	}

	all := make([]*series, 0, len(bySeries))
	for _, sr := range bySeries {
		all = append(all, sr)
	}
	sort.Slice(all, func(i, j int) bool {
		for d := range dims {
			if c := benchtable.Compare(all[i].dims[d], all[j].dims[d]); c != 0 {
				return c < 0
			}
		}
		return false
	})

	var windows []int64
	if spec.CreateEmpty() {
		for k, n := int64(0), spec.WindowCount(now); k < n; k++ {
			windows = append(windows, k)
		}
	} else {
		seen := make(map[int64]bool)
		for _, sr := range all {
			for k := range sr.windows {
				if !seen[k] {
					seen[k] = true
					windows = append(windows, k)
				}
			}
		}
		sort.Slice(windows, func(i, j int) bool { return windows[i] < windows[j] })
	}

	agg := spec.Agg()
	for _, k := range windows {
		t := benchtable.Time(start.Add(time.Duration(k) * w))
		for _, sr := range all {
			xs, ok := sr.windows[k]
			if !ok && !spec.CreateEmpty() {
				continue
			}
			row := benchtable.Row{benchquery.TimeCol: t}
			for i, dim := range dims {
				if !sr.dims[i].IsAbsent() {
					row[dim] = sr.dims[i]
				}
			}
			if ok {
				row[benchquery.ValueCol] = benchtable.Num(apply(agg, xs))
			}
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// pinnedSeries returns the dimension values of every series that spec
// names without reference to data: each dimension is either the field
// dimension with listed field names, or a tag restricted to listed
// values. If any dimension is open it returns nil.
func pinnedSeries(spec *benchquery.Spec, dims []string) [][]benchtable.Value {
	fields := spec.Fields()
	tags := spec.TagFilters()
	combos := [][]benchtable.Value{{}}
	for _, dim := range dims {
		var vals []string
		if dim == benchquery.FieldDim {
			for _, name := range fields.Names {
				if fields.Matches(name) {
					vals = append(vals, name)
				}
			}
		} else if f, ok := tags[dim]; ok {
			for _, v := range f.Values {
				if f.Matches(v, true) {
					vals = append(vals, v)
				}
			}
		}
		if len(vals) == 0 {
			return nil
		}
		next := make([][]benchtable.Value, 0, len(combos)*len(vals))
		for _, c := range combos {
			for _, v := range vals {
				next = append(next, append(c[:len(c):len(c)], benchtable.Str(v)))
			}
		}
		combos = next
	}
	return combos
}

// apply reduces a non-empty bucket.
func apply(agg benchquery.AggFunc, xs []float64) float64 {
	switch agg {
	case benchquery.AggMean:
		return stats.Mean(xs)
	case benchquery.AggSum:
		return stats.Sample{Xs: xs}.Sum()
	case benchquery.AggCount:
		return float64(len(xs))
	case benchquery.AggMin:
		min, _ := stats.Bounds(xs)
		return min
	case benchquery.AggMax:
		_, max := stats.Bounds(xs)
		return max
	}
	panic(fmt.Sprintf("unknown aggregation %q", agg))
}
