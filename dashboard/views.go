// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dashboard

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/nosqlbench/perf/benchquery"
)

// A View is a named comparison: one or more queries whose results are
// merged into a single table.
type View struct {
	Name        string      `yaml:"name" json:"name"`
	Title       string      `yaml:"title" json:"title"`
	Description string      `yaml:"description,omitempty" json:"description,omitempty"`
	Queries     []ViewQuery `yaml:"queries" json:"queries"`

	// MergeOn is the column multi-query results are joined on.
	// Empty means benchquery.TimeCol.
	MergeOn string `yaml:"merge_on,omitempty" json:"merge_on,omitempty"`

	// DefaultRange is used when RunView is given a zero range, in
	// benchquery.ParseTimeRange syntax.
	DefaultRange string `yaml:"default_range" json:"default_range"`

	// LowerIsBetter orders databases in rankings and summaries.
	LowerIsBetter bool `yaml:"lower_is_better,omitempty" json:"lower_is_better,omitempty"`

	// Chart is "line" or "bar". Empty means line.
	Chart string `yaml:"chart,omitempty" json:"chart,omitempty"`
}

// A ViewQuery is the serializable form of benchquery.Params.
type ViewQuery struct {
	Dataset string              `yaml:"dataset" json:"dataset"`
	Fields  []string            `yaml:"fields,omitempty" json:"fields,omitempty"`
	Tags    map[string][]string `yaml:"tags,omitempty" json:"tags,omitempty"`
	GroupBy []string            `yaml:"group_by,omitempty" json:"group_by,omitempty"`

	// Window is a Go duration. Empty means a single window spanning
	// the whole range.
	Window      string     `yaml:"window,omitempty" json:"window,omitempty"`
	Agg         string     `yaml:"agg" json:"agg"`
	CreateEmpty bool       `yaml:"create_empty,omitempty" json:"create_empty,omitempty"`
	Pivot       *ViewPivot `yaml:"pivot,omitempty" json:"pivot,omitempty"`
}

// ViewPivot is the serializable form of benchquery.PivotSpec.
type ViewPivot struct {
	RowKey      string `yaml:"row_key" json:"row_key"`
	ColumnKey   string `yaml:"column_key" json:"column_key"`
	ValueColumn string `yaml:"value_column" json:"value_column"`
}

// Params converts q into query parameters over tr, resolved as of now.
// tags override the query's own tag filters.
func (q *ViewQuery) Params(tr benchquery.TimeRange, now time.Time) (benchquery.Params, error) {
	p := benchquery.Params{
		Dataset:     q.Dataset,
		Range:       tr,
		Fields:      benchquery.Fields(q.Fields...),
		GroupBy:     append([]string(nil), q.GroupBy...),
		Agg:         benchquery.AggFunc(q.Agg),
		CreateEmpty: q.CreateEmpty,
	}
	if q.Window == "" {
		start, stop := tr.Resolve(now)
		p.Window = stop.Sub(start)
	} else {
		d, err := time.ParseDuration(q.Window)
		if err != nil {
			return p, &benchquery.InvalidSpecError{Param: "window", Msg: err.Error()}
		}
		p.Window = d
	}
	if len(q.Tags) > 0 {
		p.Tags = make(map[string]benchquery.TagFilter, len(q.Tags))
		for k, vals := range q.Tags {
			p.Tags[k] = benchquery.Equals(vals...)
		}
	}
	if q.Pivot != nil {
		p.Pivot = &benchquery.PivotSpec{
			RowKey:      q.Pivot.RowKey,
			ColumnKey:   q.Pivot.ColumnKey,
			ValueColumn: q.Pivot.ValueColumn,
		}
	}
	return p, nil
}

// LoadViews reads a YAML list of views.
func LoadViews(r io.Reader) ([]View, error) {
	var views []View
	if err := yaml.NewDecoder(r).Decode(&views); err != nil {
		return nil, fmt.Errorf("decode views: %w", err)
	}
	seen := make(map[string]bool)
	for i := range views {
		v := &views[i]
		if v.Name == "" {
			return nil, fmt.Errorf("view %d: missing name", i)
		}
		if seen[v.Name] {
			return nil, fmt.Errorf("view %s: defined twice", v.Name)
		}
		seen[v.Name] = true
		if len(v.Queries) == 0 {
			return nil, fmt.Errorf("view %s: no queries", v.Name)
		}
		if _, err := benchquery.ParseTimeRange(v.DefaultRange); err != nil {
			return nil, fmt.Errorf("view %s: default_range: %w", v.Name, err)
		}
		switch v.Chart {
		case "", "line", "bar":
		default:
			return nil, fmt.Errorf("view %s: unknown chart %q", v.Name, v.Chart)
		}
	}
	return views, nil
}

// WriteViews writes views as YAML, in the form LoadViews reads.
func WriteViews(w io.Writer, views []View) error {
	data, err := yaml.Marshal(views)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func byDatabase(field string) *ViewPivot {
	return &ViewPivot{RowKey: benchquery.TimeCol, ColumnKey: "database", ValueColumn: field}
}

// DefaultViews returns the built-in comparison views, sorted by name.
func DefaultViews() []View {
	views := []View{
		{
			Name:          "insert-latency",
			Title:         "Insert latency per database",
			Description:   "Mean latency of CRUD insert operations, one series per database.",
			DefaultRange:  "-24h",
			LowerIsBetter: true,
			Queries: []ViewQuery{{
				Dataset: "scenario1_crud",
				Fields:  []string{"latency_ms"},
				Tags:    map[string][]string{"operation": {"insert"}},
				GroupBy: []string{"database"},
				Window:  "1m",
				Agg:     "mean",
				Pivot:   byDatabase("latency_ms"),
			}},
		},
		{
			Name:          "insert-cpu",
			Title:         "CPU during insert",
			Description:   "Mean CPU usage while inserting, one series per database.",
			DefaultRange:  "-24h",
			LowerIsBetter: true,
			Queries: []ViewQuery{{
				Dataset: "scenario1_crud",
				Fields:  []string{"cpu_percent"},
				Tags:    map[string][]string{"operation": {"insert"}},
				GroupBy: []string{"database"},
				Window:  "1m",
				Agg:     "mean",
				Pivot:   byDatabase("cpu_percent"),
			}},
		},
		{
			Name:         "database-metrics",
			Title:        "All CRUD metrics of one database",
			Description:  "Every CRUD metric of a single database, one series per field. Fields keep their own units.",
			DefaultRange: "-24h",
			Queries: []ViewQuery{{
				Dataset: "scenario1_crud",
				Tags:    map[string][]string{"database": {"MongoDB"}},
				Window:  "1m",
				Agg:     "mean",
				Pivot:   &ViewPivot{RowKey: benchquery.TimeCol, ColumnKey: benchquery.FieldDim, ValueColumn: benchquery.ValueCol},
			}},
		},
		{
			Name:          "cross-measurement",
			Title:         "CRUD and key-value latency of one database",
			Description:   "Latency measured by two scenarios for the same database.",
			DefaultRange:  "-24h",
			LowerIsBetter: true,
			Queries: []ViewQuery{
				{
					Dataset: "scenario1_crud",
					Fields:  []string{"latency_ms"},
					Tags:    map[string][]string{"database": {"Redis"}},
					Window:  "1m",
					Agg:     "mean",
					Pivot:   &ViewPivot{RowKey: benchquery.TimeCol, ColumnKey: benchquery.FieldDim, ValueColumn: benchquery.ValueCol},
				},
				{
					Dataset: "scenario4_keyvalue",
					Fields:  []string{"get_latency_ms"},
					Tags:    map[string][]string{"database": {"Redis"}},
					Window:  "1m",
					Agg:     "mean",
					Pivot:   &ViewPivot{RowKey: benchquery.TimeCol, ColumnKey: benchquery.FieldDim, ValueColumn: benchquery.ValueCol},
				},
			},
		},
		{
			Name:          "graph-traversal",
			Title:         "Graph traversal time",
			Description:   "Friends-of-friends and three-level traversal time per graph database.",
			DefaultRange:  "-24h",
			LowerIsBetter: true,
			Chart:         "bar",
			MergeOn:       "database",
			Queries: []ViewQuery{{
				Dataset: "scenario3_graph_v2",
				Fields:  []string{"friends_of_friends_time", "three_level_time"},
				GroupBy: []string{"database"},
				Agg:     "mean",
				Pivot:   &ViewPivot{RowKey: "database", ColumnKey: benchquery.FieldDim, ValueColumn: benchquery.ValueCol},
			}},
		},
		{
			Name:          "iot-insert-vs-query",
			Title:         "IoT insert vs. range query time",
			Description:   "Time to insert a batch of readings against time to query them back.",
			DefaultRange:  "-24h",
			LowerIsBetter: true,
			Chart:         "bar",
			MergeOn:       "database",
			Queries: []ViewQuery{{
				Dataset: "scenario2_iot",
				Fields:  []string{"insert_time", "range_query_time"},
				GroupBy: []string{"database"},
				Agg:     "mean",
				Pivot:   &ViewPivot{RowKey: "database", ColumnKey: benchquery.FieldDim, ValueColumn: benchquery.ValueCol},
			}},
		},
		{
			Name:         "iot-throughput",
			Title:        "IoT insertion throughput",
			Description:  "Readings inserted per second, one series per database.",
			DefaultRange: "-24h",
			Queries: []ViewQuery{{
				Dataset: "scenario2_iot",
				Fields:  []string{"insert_throughput"},
				GroupBy: []string{"database"},
				Window:  "1m",
				Agg:     "mean",
				Pivot:   byDatabase("insert_throughput"),
			}},
		},
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Name < views[j].Name })
	return views
}
