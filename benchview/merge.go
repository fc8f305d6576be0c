// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchview

import (
	"github.com/nosqlbench/perf/benchtable"
)

// MergeMetrics outer-joins tables on the column on.
//
// The result has the column on followed by the union of the other
// columns of tables, in order of first appearance. It has one row per
// distinct value of on, sorted by that value. Cells no table supplies
// are Absent. Rows with an absent join key are dropped.
//
// If two source cells land in the same output cell (the same key and
// column appear in more than one table, or more than once in one
// table), the later one wins and a ReshapeConflict is reported.
//
// When the value columns of the tables are disjoint, the result does
// not depend on the order of tables apart from column order.
func MergeMetrics(tables []*benchtable.Table, on string) (*benchtable.Table, []*ReshapeConflict) {
	cols := []string{on}
	seenCol := map[string]bool{on: true}
	for _, t := range tables {
		for _, col := range t.Columns {
			if !seenCol[col] {
				seenCol[col] = true
				cols = append(cols, col)
			}
		}
	}

	out := benchtable.New(cols...)
	byKey := make(map[string]benchtable.Row)
	var conflicts []*ReshapeConflict
	for _, t := range tables {
		for _, r := range t.Rows {
			kv := r[on]
			if kv.IsAbsent() {
				continue
			}
			row := byKey[kv.Key()]
			if row == nil {
				row = benchtable.Row{on: kv}
				byKey[kv.Key()] = row
				out.Rows = append(out.Rows, row)
			}
			for col, v := range r {
				if col == on {
					continue
				}
				if old, ok := row[col]; ok {
					conflicts = append(conflicts, &ReshapeConflict{Row: kv, Column: col, Old: old, New: v})
				}
				row[col] = v
			}
		}
	}
	out.SortBy(on)
	return out, conflicts
}
