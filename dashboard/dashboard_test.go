// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nosqlbench/perf/benchagg"
	"github.com/nosqlbench/perf/benchquery"
	"github.com/nosqlbench/perf/benchsample"
	"github.com/nosqlbench/perf/benchtable"
	"github.com/nosqlbench/perf/storage/memstore"
)

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

const data = `scenario1_crud,database=Redis,operation=insert latency_ms=5,cpu_percent=50 1767225600000000000
scenario1_crud,database=Redis,operation=insert latency_ms=7 1767225630000000000
scenario1_crud,database=MongoDB,operation=insert latency_ms=9 1767225600000000000
scenario1_crud,database=MongoDB,operation=read latency_ms=100 1767225610000000000
scenario3_graph_v2,database=Neo4j friends_of_friends_time=120,three_level_time=400 1767225600000000000
scenario3_graph_v2,database=ArangoDB friends_of_friends_time=95,three_level_time=310 1767225600000000000
scenario4_keyvalue,database=MongoDB get_latency_ms=0.5 1767225600000000000
scenario4_keyvalue,database=Redis get_latency_ms=0.25 1767225600000000000
`

func newStore(t *testing.T) *memstore.Store {
	t.Helper()
	st := memstore.New()
	if _, err := st.Load(benchsample.NewReader(strings.NewReader(data), "data")); err != nil {
		t.Fatal(err)
	}
	return st
}

func newAdapter(t *testing.T, src benchagg.Source) (*Adapter, *[]string) {
	var warnings []string
	logf := func(format string, args ...interface{}) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}
	e := &benchagg.Engine{
		Source: src,
		Now:    func() time.Time { return t0.Add(30 * time.Minute) },
		Logf:   logf,
	}
	a := New(benchquery.DefaultCatalog(), e, DefaultViews())
	a.RetryWait = time.Millisecond
	a.Logf = logf
	return a, &warnings
}

var firstHour = benchquery.Between(t0, t0.Add(time.Hour))

func check(t *testing.T, tab *benchtable.Table, i int, want map[string]benchtable.Value) {
	t.Helper()
	for col, w := range want {
		if got := tab.Get(i, col); !got.Equal(w) {
			t.Errorf("row %d column %s: got %v, want %v\n%s", i, col, got, w, tab)
		}
	}
}

func TestListViews(t *testing.T) {
	a, _ := newAdapter(t, memstore.New())
	got := strings.Join(a.ListViews(), " ")
	want := "cross-measurement database-metrics graph-traversal insert-cpu insert-latency iot-insert-vs-query iot-throughput"
	if got != want {
		t.Errorf("ListViews:\n got %s\nwant %s", got, want)
	}
}

// TestDefaultViewsBuild checks that every built-in view is valid
// against the built-in catalog.
func TestDefaultViewsBuild(t *testing.T) {
	a, _ := newAdapter(t, memstore.New())
	for _, name := range a.ListViews() {
		if _, err := a.Specs(name, benchquery.TimeRange{}); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestRunViewInsertLatency(t *testing.T) {
	a, warnings := newAdapter(t, newStore(t))
	tab, err := a.RunView(context.Background(), "insert-latency", benchquery.Between(t0, t0.Add(time.Minute)))
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(tab.Columns, ","); got != "time,MongoDB,Redis" {
		t.Errorf("got columns %s", got)
	}
	if tab.Len() != 1 {
		t.Fatalf("got %d rows, want 1:\n%s", tab.Len(), tab)
	}
	check(t, tab, 0, map[string]benchtable.Value{
		"time":    benchtable.Time(t0),
		"Redis":   benchtable.Num(6),
		"MongoDB": benchtable.Num(9),
	})
	if len(*warnings) != 0 {
		t.Errorf("unexpected warnings %v", *warnings)
	}
}

func TestRunViewGraphTraversal(t *testing.T) {
	a, _ := newAdapter(t, newStore(t))
	tab, err := a.RunView(context.Background(), "graph-traversal", firstHour)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(tab.Columns, ","); got != "database,friends_of_friends_time,three_level_time" {
		t.Errorf("got columns %s", got)
	}
	if tab.Len() != 2 {
		t.Fatalf("got %d rows, want 2:\n%s", tab.Len(), tab)
	}
	check(t, tab, 0, map[string]benchtable.Value{
		"database":                benchtable.Str("ArangoDB"),
		"friends_of_friends_time": benchtable.Num(95),
		"three_level_time":        benchtable.Num(310),
	})
	check(t, tab, 1, map[string]benchtable.Value{
		"database":                benchtable.Str("Neo4j"),
		"friends_of_friends_time": benchtable.Num(120),
		"three_level_time":        benchtable.Num(400),
	})
}

func TestRunViewCrossMeasurement(t *testing.T) {
	a, _ := newAdapter(t, newStore(t))
	tab, err := a.RunView(context.Background(), "cross-measurement", firstHour, WithTag("database", "MongoDB"))
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(tab.Columns, ","); got != "time,latency_ms,get_latency_ms" {
		t.Errorf("got columns %s", got)
	}
	if tab.Len() != 1 {
		t.Fatalf("got %d rows, want 1:\n%s", tab.Len(), tab)
	}
	// The read at t0+10s shares the window with the insert.
	check(t, tab, 0, map[string]benchtable.Value{
		"time":           benchtable.Time(t0),
		"latency_ms":     benchtable.Num(54.5),
		"get_latency_ms": benchtable.Num(0.5),
	})
}

func TestRunViewNoRows(t *testing.T) {
	a, _ := newAdapter(t, newStore(t))
	tab, err := a.RunView(context.Background(), "insert-latency", benchquery.Between(t0.Add(-time.Hour), t0))
	if err != nil {
		t.Fatalf("zero rows should not be an error: %v", err)
	}
	if tab.Len() != 0 {
		t.Errorf("got %d rows, want 0", tab.Len())
	}
}

func TestRunViewFailures(t *testing.T) {
	a, _ := newAdapter(t, newStore(t))
	ctx := context.Background()
	for _, test := range []struct {
		name   string
		view   string
		opts   []Option
		kind   string
		status int
	}{
		{"unknown view", "no-such-view", nil, KindUnknownView, http.StatusNotFound},
		{"unknown tag", "iot-throughput", []Option{WithTag("operation", "insert")}, KindInvalidSpec, http.StatusBadRequest},
		{"empty dataset", "iot-throughput", nil, KindEmptyDataset, http.StatusNotFound},
	} {
		_, err := a.RunView(ctx, test.view, firstHour, test.opts...)
		if err == nil {
			t.Errorf("%s: got nil error", test.name)
			continue
		}
		f := Describe(err)
		if f.Kind != test.kind || f.StatusCode() != test.status {
			t.Errorf("%s: got %s (%d), want %s (%d)", test.name, f.Kind, f.StatusCode(), test.kind, test.status)
		}
		if f.Message == "" {
			t.Errorf("%s: empty message", test.name)
		}
	}
}

func TestDescribe(t *testing.T) {
	for _, test := range []struct {
		err  error
		kind string
	}{
		{&benchquery.InvalidSpecError{Param: "window", Msg: "bad"}, KindInvalidSpec},
		{fmt.Errorf("view x: %w", &benchagg.EmptyDatasetError{Dataset: "d"}), KindEmptyDataset},
		{&benchagg.QueryTimeoutError{Dataset: "d", Err: context.DeadlineExceeded}, KindQueryTimeout},
		{&UnknownViewError{Name: "v"}, KindUnknownView},
		{errors.New("disk on fire"), KindInternal},
	} {
		if got := Describe(test.err).Kind; got != test.kind {
			t.Errorf("Describe(%v) = %s, want %s", test.err, got, test.kind)
		}
	}
	if got := (Failure{Kind: KindInternal}).StatusCode(); got != http.StatusInternalServerError {
		t.Errorf("internal status = %d", got)
	}
}

// stallingSource makes the first stalls Select calls wait for the
// deadline.
type stallingSource struct {
	*memstore.Store
	mu      sync.Mutex
	stalls  int
	selects int
}

func (s *stallingSource) Select(ctx context.Context, dataset string, start, stop time.Time) ([]*benchsample.Sample, error) {
	s.mu.Lock()
	s.selects++
	stall := s.selects <= s.stalls
	s.mu.Unlock()
	if stall {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.Store.Select(ctx, dataset, start, stop)
}

func TestRetryOnTimeout(t *testing.T) {
	src := &stallingSource{Store: newStore(t), stalls: 1}
	a, warnings := newAdapter(t, src)
	a.Engine.Timeout = 10 * time.Millisecond
	tab, err := a.RunView(context.Background(), "insert-latency", benchquery.Between(t0, t0.Add(time.Minute)))
	if err != nil {
		t.Fatalf("retry did not recover: %v", err)
	}
	if tab.Len() != 1 {
		t.Errorf("got %d rows, want 1", tab.Len())
	}
	if src.selects != 2 {
		t.Errorf("got %d selects, want 2", src.selects)
	}
	if len(*warnings) != 1 || !strings.Contains((*warnings)[0], "retrying") {
		t.Errorf("warnings = %v, want one retry notice", *warnings)
	}
}

func TestRetryOnce(t *testing.T) {
	src := &stallingSource{Store: newStore(t), stalls: 100}
	a, _ := newAdapter(t, src)
	a.Engine.Timeout = 10 * time.Millisecond
	_, err := a.RunView(context.Background(), "insert-latency", benchquery.Between(t0, t0.Add(time.Minute)))
	if !errors.Is(err, benchagg.ErrQueryTimeout) {
		t.Fatalf("got %v, want a query timeout", err)
	}
	if src.selects != 2 {
		t.Errorf("got %d selects, want exactly one retry", src.selects)
	}
}

// countingSource counts HasDataset calls.
type countingSource struct {
	*memstore.Store
	calls int
}

func (s *countingSource) HasDataset(ctx context.Context, dataset string) (bool, error) {
	s.calls++
	return s.Store.HasDataset(ctx, dataset)
}

func TestNoRetryOnEmptyDataset(t *testing.T) {
	src := &countingSource{Store: memstore.New()}
	a, _ := newAdapter(t, src)
	_, err := a.RunView(context.Background(), "iot-throughput", firstHour)
	if !errors.Is(err, benchagg.ErrEmptyDataset) {
		t.Fatalf("got %v, want empty dataset", err)
	}
	if src.calls != 1 {
		t.Errorf("store asked %d times, want 1", src.calls)
	}
}

func TestSummary(t *testing.T) {
	a, _ := newAdapter(t, newStore(t))
	sum, err := a.Summary(context.Background(), firstHour)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, s := range sum {
		got = append(got, fmt.Sprintf("%s:%v:%d:%s", s.Dataset, s.HasData, s.Samples, strings.Join(s.Databases, "+")))
	}
	want := []string{
		"scenario1_crud:true:4:MongoDB+Redis",
		"scenario2_iot:false:0:",
		"scenario3_graph:false:0:",
		"scenario3_graph_v2:true:2:ArangoDB+Neo4j",
		"scenario4_keyvalue:true:2:MongoDB+Redis",
		"scenario5_fulltext:false:0:",
		"scenario6_scalability:false:0:",
	}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("Summary:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestCompare(t *testing.T) {
	a, _ := newAdapter(t, newStore(t))
	cmp := DefaultComparisons()[0]
	tab, err := a.Compare(context.Background(), cmp, firstHour)
	if err != nil {
		t.Fatal(err)
	}
	want := `rank  database  count  mean  min  max
----  --------  -----  ----  ---  ---
   1  Redis         2     6    5    7
   2  MongoDB       1     9    9    9
`
	if got := tab.String(); got != want {
		t.Errorf("Compare got:\n%swant:\n%s", got, want)
	}
}

func TestCompareRetry(t *testing.T) {
	src := &stallingSource{Store: newStore(t), stalls: 1}
	a, warnings := newAdapter(t, src)
	a.Engine.Timeout = 10 * time.Millisecond
	tab, err := a.Compare(context.Background(), DefaultComparisons()[0], firstHour)
	if err != nil {
		t.Fatalf("retry did not recover: %v", err)
	}
	check(t, tab, 0, map[string]benchtable.Value{"database": benchtable.Str("Redis"), "mean": benchtable.Num(6)})
	// One query per statistic, plus the retried one.
	if src.selects != 5 {
		t.Errorf("got %d selects, want 5", src.selects)
	}
	if len(*warnings) != 1 || !strings.Contains((*warnings)[0], "retrying") {
		t.Errorf("warnings = %v, want one retry notice", *warnings)
	}

	src = &stallingSource{Store: newStore(t), stalls: 100}
	a, _ = newAdapter(t, src)
	a.Engine.Timeout = 10 * time.Millisecond
	if _, err := a.Compare(context.Background(), DefaultComparisons()[0], firstHour); !errors.Is(err, benchagg.ErrQueryTimeout) {
		t.Fatalf("got %v, want a query timeout", err)
	}
	if src.selects != 2 {
		t.Errorf("got %d selects, want exactly one retry", src.selects)
	}
}

func TestCompareNoSamples(t *testing.T) {
	a, _ := newAdapter(t, newStore(t))
	tab, err := a.Compare(context.Background(), DefaultComparisons()[0], benchquery.Between(t0.Add(time.Hour), t0.Add(2*time.Hour)))
	if err != nil {
		t.Fatal(err)
	}
	if tab.Len() != 0 {
		t.Errorf("got %d rows, want none:\n%s", tab.Len(), tab)
	}
	if got := strings.Join(tab.Columns, ","); got != "rank,database,count,mean,min,max" {
		t.Errorf("columns = %s", got)
	}
}

func TestSummaryRetry(t *testing.T) {
	src := &stallingSource{Store: newStore(t), stalls: 1}
	a, warnings := newAdapter(t, src)
	a.Engine.Timeout = 10 * time.Millisecond
	sum, err := a.Summary(context.Background(), firstHour)
	if err != nil {
		t.Fatalf("retry did not recover: %v", err)
	}
	if sum[0].Dataset != "scenario1_crud" || sum[0].Samples != 4 {
		t.Errorf("first summary = %+v", sum[0])
	}
	if len(*warnings) != 1 {
		t.Errorf("warnings = %v, want one retry notice", *warnings)
	}
}

func TestSeriesMeans(t *testing.T) {
	in := benchtable.New("time", "Neo4j", "ArangoDB")
	in.AddRow(benchtable.Row{"time": benchtable.Time(t0), "Neo4j": benchtable.Num(100), "ArangoDB": benchtable.Num(90)})
	in.AddRow(benchtable.Row{"time": benchtable.Time(t0.Add(time.Minute)), "Neo4j": benchtable.Num(140)})
	want := `series    mean
--------  ----
Neo4j      120
ArangoDB    90
`
	if got := seriesMeans(in).String(); got != want {
		t.Errorf("got:\n%swant:\n%s", got, want)
	}
}

func TestLoadViews(t *testing.T) {
	const src = `
- name: kv-get
  title: Key-value GET latency
  default_range: -6h
  lower_is_better: true
  queries:
    - dataset: scenario4_keyvalue
      fields: [get_latency_ms]
      group_by: [database]
      window: 5m
      agg: max
      pivot:
        row_key: time
        column_key: database
        value_column: get_latency_ms
`
	views, err := LoadViews(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(views) != 1 || views[0].Name != "kv-get" || !views[0].LowerIsBetter {
		t.Fatalf("got %+v", views)
	}
	q := views[0].Queries[0]
	if q.Window != "5m" || q.Agg != "max" || q.Pivot == nil || q.Pivot.ValueColumn != "get_latency_ms" {
		t.Errorf("got query %+v", q)
	}

	a := New(benchquery.DefaultCatalog(), &benchagg.Engine{Source: newStore(t)}, views)
	tab, err := a.RunView(context.Background(), "kv-get", benchquery.Between(t0, t0.Add(5*time.Minute)))
	if err != nil {
		t.Fatal(err)
	}
	check(t, tab, 0, map[string]benchtable.Value{
		"MongoDB": benchtable.Num(0.5),
		"Redis":   benchtable.Num(0.25),
	})

	var buf bytes.Buffer
	if err := WriteViews(&buf, DefaultViews()); err != nil {
		t.Fatal(err)
	}
	back, err := LoadViews(&buf)
	if err != nil {
		t.Fatalf("reading written views: %v", err)
	}
	if len(back) != len(DefaultViews()) {
		t.Errorf("got %d views back, want %d", len(back), len(DefaultViews()))
	}
}

func TestLoadViewsErrors(t *testing.T) {
	for _, src := range []string{
		"- title: no name\n  default_range: -1h\n  queries: [{dataset: d, agg: mean}]\n",
		"- name: a\n  default_range: -1h\n",
		"- name: a\n  default_range: yesterday\n  queries: [{dataset: d, agg: mean}]\n",
		"- name: a\n  default_range: -1h\n  chart: pie\n  queries: [{dataset: d, agg: mean}]\n",
		"- name: a\n  default_range: -1h\n  queries: [{dataset: d, agg: mean}]\n- name: a\n  default_range: -1h\n  queries: [{dataset: d, agg: mean}]\n",
	} {
		if _, err := LoadViews(strings.NewReader(src)); err == nil {
			t.Errorf("LoadViews(%q) succeeded", src)
		}
	}
}

func TestRenderChart(t *testing.T) {
	a, _ := newAdapter(t, newStore(t))
	line, err := a.RunView(context.Background(), "insert-latency", firstHour)
	if err != nil {
		t.Fatal(err)
	}
	bar, err := a.RunView(context.Background(), "graph-traversal", firstHour)
	if err != nil {
		t.Fatal(err)
	}
	for _, test := range []struct {
		tab    *benchtable.Table
		format string
		want   string
	}{
		{line, "png", "\x89PNG"},
		{line, "svg", "<svg"},
		{bar, "png", "\x89PNG"},
		{benchtable.New("time", "Redis"), "svg", "<svg"},
	} {
		var buf bytes.Buffer
		if err := RenderChart(&buf, test.tab, test.format, Chart{Title: "test"}); err != nil {
			t.Errorf("RenderChart(%s): %v", test.format, err)
			continue
		}
		if !strings.Contains(buf.String(), test.want) {
			t.Errorf("RenderChart(%s) output does not contain %q", test.format, test.want)
		}
	}
	if err := RenderChart(new(bytes.Buffer), line, "gif", Chart{}); err == nil {
		t.Errorf("RenderChart(gif) succeeded")
	}
}
