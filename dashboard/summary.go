// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dashboard

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/nosqlbench/perf/benchagg"
	"github.com/nosqlbench/perf/benchquery"
	"github.com/nosqlbench/perf/benchsample"
	"github.com/nosqlbench/perf/benchtable"
	"github.com/nosqlbench/perf/benchview"
)

// A DatasetSummary reports what the store holds for one dataset.
type DatasetSummary struct {
	Dataset   string   `json:"dataset"`
	Title     string   `json:"title"`
	HasData   bool     `json:"has_data"`
	Samples   int      `json:"samples"`
	Databases []string `json:"databases,omitempty"`
}

// DefaultSummaryRange is the range Summary and Compare use when given
// a zero range.
const DefaultSummaryRange = 30 * 24 * time.Hour

// Summary reports, for every dataset in the catalog, whether the store
// knows it and how many samples fall in tr.
func (a *Adapter) Summary(ctx context.Context, tr benchquery.TimeRange) ([]DatasetSummary, error) {
	if tr.IsZero() {
		tr = benchquery.Last(DefaultSummaryRange)
	}
	var out []DatasetSummary
	for _, ds := range a.Catalog.Datasets() {
		schema, _ := a.Catalog.Schema(ds)
		s := DatasetSummary{Dataset: ds, Title: schema.Title}
		samples, err := a.samples(ctx, ds, tr)
		switch {
		case err == nil:
			s.HasData = true
		case isEmptyDataset(err):
		default:
			return nil, err
		}
		s.Samples = len(samples)
		dbs := make(map[string]bool)
		for _, smp := range samples {
			dbs[smp.Database()] = true
		}
		for db := range dbs {
			s.Databases = append(s.Databases, db)
		}
		sort.Strings(s.Databases)
		out = append(out, s)
	}
	return out, nil
}

func isEmptyDataset(err error) bool {
	var e *benchagg.EmptyDatasetError
	return errors.As(err, &e)
}

// samples fetches the raw samples of dataset in tr under the engine's
// timeout, retrying once on timeout like execute.
func (a *Adapter) samples(ctx context.Context, dataset string, tr benchquery.TimeRange) ([]*benchsample.Sample, error) {
	return retry(ctx, a, func() ([]*benchsample.Sample, error) {
		return a.selectSamples(ctx, dataset, tr)
	})
}

func (a *Adapter) selectSamples(ctx context.Context, dataset string, tr benchquery.TimeRange) ([]*benchsample.Sample, error) {
	timeout := a.Engine.Timeout
	if timeout <= 0 {
		timeout = benchagg.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	src := a.Engine.Source
	ok, err := src.HasDataset(ctx, dataset)
	if err == nil && !ok {
		return nil, &benchagg.EmptyDatasetError{Dataset: dataset}
	}
	var samples []*benchsample.Sample
	if err == nil {
		start, stop := tr.Resolve(a.now())
		samples, err = src.Select(ctx, dataset, start, stop)
	}
	if err == nil && ctx.Err() == context.DeadlineExceeded {
		err = ctx.Err()
	}
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, &benchagg.QueryTimeoutError{Dataset: dataset, Timeout: timeout, Err: err}
		}
		return nil, err
	}
	return samples, nil
}

func (a *Adapter) now() time.Time {
	if a.Engine.Now != nil {
		return a.Engine.Now()
	}
	return time.Now()
}

// A Comparison ranks databases by one metric of one scenario.
type Comparison struct {
	Name          string `yaml:"name" json:"name"`
	Title         string `yaml:"title" json:"title"`
	Dataset       string `yaml:"dataset" json:"dataset"`
	Field         string `yaml:"field" json:"field"`
	Operation     string `yaml:"operation,omitempty" json:"operation,omitempty"`
	LowerIsBetter bool   `yaml:"lower_is_better" json:"lower_is_better"`
}

// DefaultComparisons returns the standard cross-database rankings.
func DefaultComparisons() []Comparison {
	return []Comparison{
		{Name: "crud-insert", Title: "CRUD insert latency", Dataset: "scenario1_crud", Field: "latency_ms", Operation: "insert", LowerIsBetter: true},
		{Name: "crud-read", Title: "CRUD read latency", Dataset: "scenario1_crud", Field: "latency_ms", Operation: "read", LowerIsBetter: true},
		{Name: "iot-throughput", Title: "IoT insertion throughput", Dataset: "scenario2_iot", Field: "insert_throughput", LowerIsBetter: false},
		{Name: "keyvalue-get", Title: "Key-value GET latency", Dataset: "scenario4_keyvalue", Field: "get_latency_ms", LowerIsBetter: true},
	}
}

// compareStats are the statistics of a comparison, in column order.
var compareStats = []struct {
	col string
	agg benchquery.AggFunc
}{
	{benchview.ColCount, benchquery.AggCount},
	{benchview.ColMean, benchquery.AggMean},
	{benchview.ColMin, benchquery.AggMin},
	{benchview.ColMax, benchquery.AggMax},
}

// Compare computes count, mean, min and max of c.Field per database
// over tr and ranks the databases best first by mean. Each statistic
// is one engine query with a single window spanning tr. The result
// has columns rank, database, count, mean, min and max.
func (a *Adapter) Compare(ctx context.Context, c Comparison, tr benchquery.TimeRange) (*benchtable.Table, error) {
	if tr.IsZero() {
		tr = benchquery.Last(DefaultSummaryRange)
	}
	start, stop := tr.Resolve(a.now())
	p := benchquery.Params{
		Dataset: c.Dataset,
		Range:   tr,
		Fields:  benchquery.Fields(c.Field),
		GroupBy: []string{benchsample.TagDatabase},
		Window:  stop.Sub(start),
	}
	if c.Operation != "" {
		p.Tags = map[string]benchquery.TagFilter{benchsample.TagOperation: benchquery.Equals(c.Operation)}
	}

	// Build every spec first so a bad comparison never reaches the
	// store.
	specs := make([]*benchquery.Spec, len(compareStats))
	for i, st := range compareStats {
		p.Agg = st.agg
		spec, err := a.Catalog.Build(p)
		if err != nil {
			return nil, err
		}
		specs[i] = spec
	}

	tables := make([]*benchtable.Table, len(specs))
	for i, spec := range specs {
		t, err := a.execute(ctx, spec)
		if err != nil {
			return nil, err
		}
		col := compareStats[i].col
		stat := benchtable.New(benchsample.TagDatabase, col)
		for _, r := range t.Rows {
			if v := r[benchquery.ValueCol]; !v.IsAbsent() {
				stat.Rows = append(stat.Rows, benchtable.Row{benchsample.TagDatabase: r[benchsample.TagDatabase], col: v})
			}
		}
		tables[i] = stat
	}
	merged, conflicts := benchview.MergeMetrics(tables, benchsample.TagDatabase)
	for _, cf := range conflicts {
		a.logf("comparison %s: warning: %v", c.Name, cf)
	}
	return benchview.Rank(merged, benchview.ColMean, c.LowerIsBetter), nil
}
