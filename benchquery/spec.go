// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchquery builds validated query specifications over
// benchmark datasets.
//
// A query is one parametrized pipeline:
//
//	select dataset in range
//	  -> filter by tags and fields
//	  -> group by dimensions
//	  -> aggregate per window
//	  -> pivot (optional)
//
// Filters are conjunctive across dimensions. Several field names are
// a logical OR within the field dimension only, so asking for two
// fields yields both, each aggregated separately.
//
// A Spec is immutable and is only constructed by Catalog.Build, which
// validates it against the dataset's schema. Build has no side
// effects; in particular it never touches a store.
package benchquery

import (
	"sort"
	"time"

	"github.com/nosqlbench/perf/benchsample"
)

// A PivotSpec reshapes a tall result into one row per RowKey value
// and one column per distinct ColumnKey value.
type PivotSpec struct {
	// RowKey is TimeCol or a group dimension.
	RowKey string
	// ColumnKey is a group dimension or FieldDim.
	ColumnKey string
	// ValueColumn is ValueCol or the name of a filtered field, in
	// which case only that field's rows are pivoted. ValueCol needs
	// FieldDim as a key or a single filtered field.
	ValueColumn string
}

// Params are the inputs to Build.
type Params struct {
	Dataset     string
	Range       TimeRange
	Fields      FieldFilter
	Tags        map[string]TagFilter
	GroupBy     []string
	Window      time.Duration
	Agg         AggFunc
	CreateEmpty bool
	Pivot       *PivotSpec
}

// A Spec is a validated query. Use the accessor methods to inspect
// it; they return copies.
type Spec struct {
	dataset     string
	rng         TimeRange
	fields      FieldFilter
	tags        map[string]TagFilter
	groupBy     []string
	window      time.Duration
	agg         AggFunc
	createEmpty bool
	pivot       *PivotSpec
}

// Build validates p against the catalog and returns the resulting
// Spec. Every error it returns matches ErrInvalidSpec.
func (c *Catalog) Build(p Params) (*Spec, error) {
	schema, ok := c.Schema(p.Dataset)
	if !ok {
		if p.Dataset == "" {
			return nil, invalid("dataset", "missing")
		}
		return nil, invalid("dataset", "unknown dataset %q", p.Dataset)
	}
	if !p.Agg.Valid() {
		return nil, invalid("aggregation_fn", "unknown aggregation %q (want one of %s)", p.Agg, aggFuncList())
	}
	if p.Window <= 0 {
		return nil, invalid("window", "window %v is not positive", p.Window)
	}
	if err := p.Range.valid(); err != nil {
		return nil, invalid("time_range", "%v", err)
	}
	for _, name := range p.Fields.Names {
		if !schema.HasField(name) {
			return nil, invalid("field_filter", "unknown field %q for dataset %s", name, p.Dataset)
		}
	}
	for key := range p.Tags {
		if key == FieldDim || !schema.HasDim(key) {
			return nil, invalid("tag_filters", "unknown tag %q for dataset %s", key, p.Dataset)
		}
	}
	seen := make(map[string]bool)
	for _, dim := range p.GroupBy {
		if !schema.HasDim(dim) {
			return nil, invalid("group_by", "unknown dimension %q for dataset %s", dim, p.Dataset)
		}
		if seen[dim] {
			return nil, invalid("group_by", "dimension %q repeated", dim)
		}
		seen[dim] = true
	}
	if pv := p.Pivot; pv != nil {
		if !schema.HasDim(pv.ColumnKey) {
			return nil, invalid("pivot.column_key", "unknown dimension %q for dataset %s", pv.ColumnKey, p.Dataset)
		}
		if pv.ColumnKey != FieldDim && !seen[pv.ColumnKey] {
			return nil, invalid("pivot.column_key", "dimension %q is not grouped", pv.ColumnKey)
		}
		if pv.RowKey != TimeCol && (!seen[pv.RowKey] || pv.RowKey == pv.ColumnKey) {
			return nil, invalid("pivot.row_key", "%q is neither %q nor another group dimension", pv.RowKey, TimeCol)
		}
		switch {
		case pv.ValueColumn == ValueCol && pv.ColumnKey != FieldDim && pv.RowKey != FieldDim && len(p.Fields.Names) != 1:
			// Each (row, column) cell would hold one value per field.
			return nil, invalid("pivot.value_column", "value column %s with column key %q needs exactly one field; name the field instead", ValueCol, pv.ColumnKey)
		case pv.ValueColumn == ValueCol:
		case pv.ColumnKey == FieldDim:
			return nil, invalid("pivot.value_column", "pivoting on %s requires value column %s", FieldDim, ValueCol)
		case !contains(p.Fields.Names, pv.ValueColumn):
			return nil, invalid("pivot.value_column", "%q is not among the filtered fields", pv.ValueColumn)
		}
	}

	s := &Spec{
		dataset:     p.Dataset,
		rng:         p.Range,
		fields:      p.Fields.clone(),
		tags:        make(map[string]TagFilter, len(p.Tags)),
		groupBy:     append([]string(nil), p.GroupBy...),
		window:      p.Window,
		agg:         p.Agg,
		createEmpty: p.CreateEmpty,
	}
	for k, f := range p.Tags {
		s.tags[k] = f.clone()
	}
	if p.Pivot != nil {
		pv := *p.Pivot
		s.pivot = &pv
	}
	return s, nil
}

// Dataset returns the dataset (measurement) the query reads.
func (s *Spec) Dataset() string { return s.dataset }

// Range returns the time range, relative or absolute.
func (s *Spec) Range() TimeRange { return s.rng }

// Window returns the aggregation window width.
func (s *Spec) Window() time.Duration { return s.window }

// Agg returns the function applied to each window.
func (s *Spec) Agg() AggFunc { return s.agg }

// CreateEmpty reports whether windows with no samples still yield a
// row with an absent value.
func (s *Spec) CreateEmpty() bool { return s.createEmpty }

// Fields returns a copy of the field filter.
func (s *Spec) Fields() FieldFilter { return s.fields.clone() }

// GroupBy returns a copy of the tag keys that split series, in the
// order given to Build.
func (s *Spec) GroupBy() []string { return append([]string(nil), s.groupBy...) }

// TagFilters returns a copy of the tag filters.
func (s *Spec) TagFilters() map[string]TagFilter {
	m := make(map[string]TagFilter, len(s.tags))
	for k, f := range s.tags {
		m[k] = f.clone()
	}
	return m
}

// Pivot returns a copy of the pivot, or nil if the result is tall.
func (s *Spec) Pivot() *PivotSpec {
	if s.pivot == nil {
		return nil
	}
	pv := *s.pivot
	return &pv
}

// Dims returns the dimension columns of the tall result: the group
// dimensions in order, followed by FieldDim if not grouped explicitly.
// The field is always part of a bucket's identity.
func (s *Spec) Dims() []string {
	dims := s.GroupBy()
	if !contains(dims, FieldDim) {
		dims = append(dims, FieldDim)
	}
	return dims
}

// Columns returns the columns of the tall result.
func (s *Spec) Columns() []string {
	return append(append([]string{TimeCol}, s.Dims()...), ValueCol)
}

// MatchTags reports whether the tags of smp pass every tag filter.
func (s *Spec) MatchTags(smp *benchsample.Sample) bool {
	for key, f := range s.tags {
		v, ok := smp.Tags[key]
		if !f.Matches(v, ok) {
			return false
		}
	}
	return true
}

// MatchField reports whether the named field passes the field filter.
func (s *Spec) MatchField(name string) bool {
	return s.fields.Matches(name)
}

// Pushdown reports whether every filter of s can be expressed in the
// store's query language. Predicates cannot.
func (s *Spec) Pushdown() bool {
	if s.fields.Match != nil {
		return false
	}
	for _, f := range s.tags {
		if f.Match != nil {
			return false
		}
	}
	return true
}

// WindowCount returns how many windows cover the range as of now.
func (s *Spec) WindowCount(now time.Time) int64 {
	start, stop := s.rng.Resolve(now)
	d := stop.Sub(start)
	return int64((d + s.window - 1) / s.window)
}

// tagKeys returns the tag filter keys in sorted order.
func (s *Spec) tagKeys() []string {
	var keys []string
	for k := range s.tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
