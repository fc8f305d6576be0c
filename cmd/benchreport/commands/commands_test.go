// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nosqlbench/perf/dashboard"
)

const data = `scenario1_crud,database=Redis,operation=insert latency_ms=5,cpu_percent=50 1767225600000000000
scenario1_crud,database=Redis,operation=insert latency_ms=7 1767225630000000000
scenario1_crud,database=MongoDB,operation=insert latency_ms=9 1767225600000000000
scenario1_crud,database=MongoDB,operation=read latency_ms=100 1767225610000000000
scenario3_graph_v2,database=Neo4j friends_of_friends_time=120,three_level_time=400 1767225600000000000
scenario3_graph_v2,database=ArangoDB friends_of_friends_time=95,three_level_time=310 1767225600000000000
`

const firstMinute = "2026-01-01T00:00:00Z/2026-01-01T00:01:00Z"

func writeData(t *testing.T) string {
	t.Helper()
	for _, k := range []string{"INFLUX_URL", "BENCHREPORT_DSN", "CLOUDSQL_CONNECTION_NAME"} {
		t.Setenv(k, "")
	}
	path := filepath.Join(t.TempDir(), "results.lp")
	if err := os.WriteFile(path, []byte(data), 0666); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestViews(t *testing.T) {
	out, err := run(t, "views")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"insert-latency", "graph-traversal", "cross-measurement"} {
		if !strings.Contains(out, name) {
			t.Errorf("views output lacks %s:\n%s", name, out)
		}
	}

	out, err = run(t, "views", "--yaml")
	if err != nil {
		t.Fatal(err)
	}
	views, err := dashboard.LoadViews(strings.NewReader(out))
	if err != nil {
		t.Fatalf("views --yaml output does not load: %v\n%s", err, out)
	}
	if len(views) != len(dashboard.DefaultViews()) {
		t.Errorf("got %d views, want %d", len(views), len(dashboard.DefaultViews()))
	}
}

func TestRun(t *testing.T) {
	path := writeData(t)
	out, err := run(t, "run", "--files", path, "--range", firstMinute, "--format", "csv", "insert-latency")
	if err != nil {
		t.Fatal(err)
	}
	if want := "time,MongoDB,Redis\n2026-01-01T00:00:00Z,9,6\n"; out != want {
		t.Errorf("got\n%s\nwant\n%s", out, want)
	}
}

func TestRunFormatFromEnv(t *testing.T) {
	path := writeData(t)
	t.Setenv("BENCHREPORT_FORMAT", "csv")
	t.Setenv("BENCHREPORT_RANGE", firstMinute)
	out, err := run(t, "run", "--files", path, "insert-latency")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "time,MongoDB,Redis\n") {
		t.Errorf("got\n%s", out)
	}
}

func TestRunTag(t *testing.T) {
	path := writeData(t)
	out, err := run(t, "run", "--files", path, "--range", firstMinute, "-f", "csv", "--tag", "database:Redis", "database-metrics")
	if err != nil {
		t.Fatal(err)
	}
	if want := "time,cpu_percent,latency_ms\n2026-01-01T00:00:00Z,50,6\n"; out != want {
		t.Errorf("got\n%s\nwant\n%s", out, want)
	}
}

func TestRunAll(t *testing.T) {
	path := writeData(t)
	out, err := run(t, "run", "--all", "--parallel", "2", "--files", path, "--range", firstMinute)
	if err != nil {
		t.Fatalf("%v\n%s", err, out)
	}
	for _, want := range []string{
		"## cross-measurement\n",
		"## graph-traversal\n",
		"iot-throughput: empty-dataset: ",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
	if i, j := strings.Index(out, "## graph-traversal"), strings.Index(out, "## insert-latency"); i > j {
		t.Errorf("views out of order:\n%s", out)
	}
}

func TestRunErrors(t *testing.T) {
	path := writeData(t)
	tests := [][]string{
		{"run", "--files", path},
		{"run", "--files", path, "--all", "insert-latency"},
		{"run", "--files", path, "--range", "soon", "insert-latency"},
		{"run", "--files", path, "--format", "xml", "insert-latency"},
		{"run", "--files", path, "--tag", "database", "insert-latency"},
		{"run", "--files", path, "nope"},
		{"compare", "--files", path, "nope"},
		{"chart", "--files", path, "--out", "x.gif", "insert-latency"},
	}
	for _, args := range tests {
		if out, err := run(t, args...); err == nil {
			t.Errorf("%s: succeeded:\n%s", strings.Join(args, " "), out)
		}
	}
}

func TestCompare(t *testing.T) {
	path := writeData(t)
	out, err := run(t, "compare", "--files", path, "--range", firstMinute, "--format", "csv", "crud-insert")
	if err != nil {
		t.Fatal(err)
	}
	if want := "rank,database,count,mean,min,max\n1,Redis,2,6,5,7\n2,MongoDB,1,9,9,9\n"; out != want {
		t.Errorf("got\n%s\nwant\n%s", out, want)
	}
}

func TestSummary(t *testing.T) {
	path := writeData(t)
	out, err := run(t, "summary", "--files", path, "--range", "2026-01-01T00:00:00Z/2026-01-02T00:00:00Z")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "MongoDB Redis") {
		t.Errorf("summary lacks databases of scenario1_crud:\n%s", out)
	}
	if !strings.HasSuffix(out, "\n6 samples in total\n") {
		t.Errorf("summary total is wrong:\n%s", out)
	}
}

func TestChart(t *testing.T) {
	path := writeData(t)
	chart := filepath.Join(t.TempDir(), "graph.svg")
	if out, err := run(t, "chart", "--files", path, "--range", firstMinute, "--out", chart, "graph-traversal"); err != nil {
		t.Fatalf("%v\n%s", err, out)
	}
	b, err := os.ReadFile(chart)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(b, []byte("<svg")) {
		t.Errorf("chart is not SVG")
	}
}
