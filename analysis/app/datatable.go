// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package app

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/aclements/go-gg/table"
	"github.com/nosqlbench/perf/benchtable"
)

// column represents a column in a google.visualization.DataTable.
type column struct {
	Name  string `json:"id"`
	Type  string `json:"type"`
	Label string `json:"label"`
}

type cell struct {
	V interface{} `json:"v"`
}

type dataRow struct {
	C []cell `json:"c"`
}

// dataTable is the JSON form accepted by
// "new google.visualization.DataTable".
type dataTable struct {
	Cols []column  `json:"cols"`
	Rows []dataRow `json:"rows"`
}

// ggTable converts t to a go-gg table with one typed slice per column.
// Absent numbers become NaN, absent times the zero time and absent
// strings "". A column takes the kind of its first present cell.
func ggTable(t *benchtable.Table) *table.Table {
	var b table.Builder
	for _, col := range t.Columns {
		kind := benchtable.KindNumber
		for _, r := range t.Rows {
			if v := r.Get(col); !v.IsAbsent() {
				kind = v.Kind()
				break
			}
		}
		switch kind {
		case benchtable.KindTime:
			ts := make([]time.Time, t.Len())
			for i, r := range t.Rows {
				ts[i], _ = r.Get(col).Timestamp()
			}
			b.Add(col, ts)
		case benchtable.KindString:
			ss := make([]string, t.Len())
			for i, r := range t.Rows {
				ss[i] = r.Get(col).String()
				if r.Get(col).IsAbsent() {
					ss[i] = ""
				}
			}
			b.Add(col, ss)
		default:
			xs := make([]float64, t.Len())
			for i, r := range t.Rows {
				x, ok := r.Get(col).Float()
				if !ok {
					x = math.NaN()
				}
				xs[i] = x
			}
			b.Add(col, xs)
		}
	}
	return b.Done()
}

// toDataTable converts t to a DataTable. NaN numbers, zero times and
// empty strings are null cells, which charts draw as gaps.
func toDataTable(t *benchtable.Table) *dataTable {
	gt := ggTable(t)
	dt := &dataTable{Cols: []column{}, Rows: []dataRow{}}
	var slices []table.Slice
	for _, name := range t.Columns {
		c := column{Name: name, Label: name}
		col := gt.Column(name)
		slices = append(slices, col)
		switch col.(type) {
		case []string:
			c.Type = "string"
		case []time.Time:
			c.Type = "datetime"
		default:
			c.Type = "number"
		}
		dt.Cols = append(dt.Cols, c)
	}
	for i := 0; i < gt.Len(); i++ {
		row := dataRow{C: make([]cell, len(slices))}
		for j, s := range slices {
			switch column := s.(type) {
			case []string:
				if column[i] != "" {
					row.C[j].V = column[i]
				}
			case []time.Time:
				if !column[i].IsZero() {
					row.C[j].V = dateLiteral(column[i])
				}
			case []float64:
				if !math.IsNaN(column[i]) && !math.IsInf(column[i], 0) {
					row.C[j].V = column[i]
				}
			}
		}
		dt.Rows = append(dt.Rows, row)
	}
	return dt
}

// dateLiteral formats ts in the DataTable "Date(...)" string form.
// Months count from zero.
func dateLiteral(ts time.Time) string {
	ts = ts.UTC()
	return fmt.Sprintf("Date(%d,%d,%d,%d,%d,%d,%d)",
		ts.Year(), int(ts.Month())-1, ts.Day(),
		ts.Hour(), ts.Minute(), ts.Second(), ts.Nanosecond()/1e6)
}

func (dt *dataTable) String() string {
	data, err := json.Marshal(dt)
	if err != nil {
		panic(err)
	}
	return string(data)
}
