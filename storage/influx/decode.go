// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package influx

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/query"
	"github.com/nosqlbench/perf/benchquery"
	"github.com/nosqlbench/perf/benchsample"
	"github.com/nosqlbench/perf/benchtable"
)

// records is the part of api.QueryTableResult the decoders use.
type records interface {
	Next() bool
	Record() *query.FluxRecord
	Err() error
}

// reserved lists the Flux columns that never carry a tag.
var reserved = map[string]bool{
	"result":       true,
	"table":        true,
	"_start":       true,
	"_stop":        true,
	"_time":        true,
	"_value":       true,
	"_field":       true,
	"_measurement": true,
}

// decodeSamples reassembles samples from one record per field. Records
// with the same time and tag set belong to the same sample. Non-numeric
// field values are dropped.
func decodeSamples(dataset string, res records) ([]*benchsample.Sample, error) {
	var out []*benchsample.Sample
	byKey := make(map[string]*benchsample.Sample)
	for res.Next() {
		rec := res.Record()
		x, ok := toFloat(rec.Value())
		if !ok {
			continue
		}
		tags := make(benchsample.Tags)
		for k, v := range rec.Values() {
			if s, ok := v.(string); ok && !reserved[k] {
				tags[k] = s
			}
		}
		key := sampleKey(rec.Time(), tags)
		smp := byKey[key]
		if smp == nil {
			smp = &benchsample.Sample{
				Dataset: dataset,
				Time:    rec.Time().UTC(),
				Tags:    tags,
				Fields:  make(benchsample.Fields),
			}
			byKey[key] = smp
			out = append(out, smp)
		}
		smp.Fields[rec.Field()] = x
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}

func sampleKey(t time.Time, tags benchsample.Tags) string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(t.UnixNano(), 10))
	for _, k := range tags.Keys() {
		b.WriteString("\x00")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(tags[k])
	}
	return b.String()
}

func toFloat(v interface{}) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}

// cell converts a result value. A zero count can only come from an
// empty window, which the engine reports as absent.
func cell(spec *benchquery.Spec, v interface{}) benchtable.Value {
	x, ok := toFloat(v)
	if !ok || (spec.Agg() == benchquery.AggCount && x == 0) {
		return benchtable.Absent
	}
	return benchtable.Num(x)
}

// dim returns the value of a grouping dimension in rec.
func dim(rec *query.FluxRecord, name string) benchtable.Value {
	if name == benchquery.FieldDim {
		return benchtable.Str(rec.Field())
	}
	if s, ok := rec.ValueByKey(name).(string); ok {
		return benchtable.Str(s)
	}
	return benchtable.Absent
}

// decodeTable converts the result of spec's Flux script into the table
// the engine would have computed.
func decodeTable(spec *benchquery.Spec, res records) (*benchtable.Table, error) {
	if spec.Pivot() != nil {
		return decodePivot(spec, res)
	}
	dims := spec.Dims()
	t := benchtable.New(spec.Columns()...)
	for res.Next() {
		rec := res.Record()
		row := benchtable.Row{benchquery.TimeCol: benchtable.Time(rec.Time().UTC())}
		for _, d := range dims {
			if v := dim(rec, d); !v.IsAbsent() {
				row[d] = v
			}
		}
		if v := cell(spec, rec.Value()); !v.IsAbsent() {
			row[benchquery.ValueCol] = v
		}
		t.Rows = append(t.Rows, row)
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	t.SortBy(append([]string{benchquery.TimeCol}, dims...)...)
	return t, nil
}

// decodePivot merges the per-table rows of a pivoted result. Flux
// pivots each group separately, so one output row may be spread over
// several tables.
func decodePivot(spec *benchquery.Spec, res records) (*benchtable.Table, error) {
	pv := spec.Pivot()
	skip := make(map[string]bool)
	for _, d := range spec.Dims() {
		skip[d] = true
	}
	rowCol := pv.RowKey
	if rowCol == benchquery.TimeCol {
		rowCol = "_time"
	}
	skip[rowCol] = true

	var (
		rows  []benchtable.Row
		byKey = make(map[string]benchtable.Row)
		cols  = make(map[string]bool)
	)
	for res.Next() {
		rec := res.Record()
		var key benchtable.Value
		if pv.RowKey == benchquery.TimeCol {
			key = benchtable.Time(rec.Time().UTC())
		} else {
			key = dim(rec, pv.RowKey)
		}
		row := byKey[key.Key()]
		if row == nil {
			row = make(benchtable.Row)
			if !key.IsAbsent() {
				row[pv.RowKey] = key
			}
			byKey[key.Key()] = row
			rows = append(rows, row)
		}
		for k, v := range rec.Values() {
			if reserved[k] || skip[k] {
				continue
			}
			cols[k] = true
			if c := cell(spec, v); !c.IsAbsent() {
				row[k] = c
			}
		}
	}
	if err := res.Err(); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(cols))
	for c := range cols {
		names = append(names, c)
	}
	sort.Strings(names)
	t := benchtable.New(append([]string{pv.RowKey}, names...)...)
	t.Rows = rows
	t.SortBy(pv.RowKey)
	return t, nil
}
