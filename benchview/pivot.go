// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchview reshapes result tables into the layouts that
// comparison views need.
//
// Two primitives cover every view: Pivot turns a tall table into a
// wide one keyed by the distinct values of one dimension, and
// MergeMetrics outer-joins several tables on a shared row key.
// Neither normalizes units; callers that put several fields in one
// table are responsible for their scales being comparable.
package benchview

import (
	"fmt"
	"sort"

	"github.com/nosqlbench/perf/benchtable"
)

// A ReshapeConflict reports two source cells landing in the same
// output cell. The later one wins. Conflicts are warnings, not
// failures.
type ReshapeConflict struct {
	Row      benchtable.Value
	Column   string
	Old, New benchtable.Value
}

func (c *ReshapeConflict) Error() string {
	return fmt.Sprintf("reshape conflict at row %v, column %q: %v replaced by %v", c.Row, c.Column, c.Old, c.New)
}

// Pivot reshapes t into one row per distinct value of rowKey, in order
// of first appearance, and one column per distinct value of columnKey,
// sorted. Each cell holds the valueColumn of the source row with that
// (rowKey, columnKey) pair.
//
// If several source rows share a pair, the later one in t's row order
// wins and a ReshapeConflict is returned for each overwrite. A source
// row with an absent columnKey contributes no cell, but its row key
// still gets an output row. Pairs with no source row are Absent.
func Pivot(t *benchtable.Table, rowKey, columnKey, valueColumn string) (*benchtable.Table, []*ReshapeConflict) {
	type outRow struct {
		key  benchtable.Value
		vals map[string]benchtable.Value
		set  map[string]bool
	}
	var (
		rows      []*outRow
		byKey     = make(map[string]*outRow)
		colVals   = make(map[string]benchtable.Value)
		conflicts []*ReshapeConflict
	)
	for _, r := range t.Rows {
		rk := r[rowKey]
		or := byKey[rk.Key()]
		if or == nil {
			or = &outRow{key: rk, vals: make(map[string]benchtable.Value), set: make(map[string]bool)}
			byKey[rk.Key()] = or
			rows = append(rows, or)
		}
		cv := r[columnKey]
		if cv.IsAbsent() {
			continue
		}
		col := cv.String()
		colVals[col] = cv

		v := r[valueColumn]
		if or.set[col] {
			conflicts = append(conflicts, &ReshapeConflict{Row: rk, Column: col, Old: or.vals[col], New: v})
		}
		or.set[col] = true
		or.vals[col] = v
	}

	cols := make([]string, 0, len(colVals))
	for col := range colVals {
		cols = append(cols, col)
	}
	sort.Slice(cols, func(i, j int) bool {
		if c := benchtable.Compare(colVals[cols[i]], colVals[cols[j]]); c != 0 {
			return c < 0
		}
		return cols[i] < cols[j]
	})

	out := benchtable.New(append([]string{rowKey}, cols...)...)
	for _, or := range rows {
		row := make(benchtable.Row, len(or.vals)+1)
		if !or.key.IsAbsent() {
			row[rowKey] = or.key
		}
		for col, v := range or.vals {
			if !v.IsAbsent() {
				row[col] = v
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out, conflicts
}

// Unpivot is the inverse of Pivot: every present cell of t outside the
// rowKey column becomes one row with columns rowKey, columnKey (the
// cell's column name) and valueColumn. Absent cells produce no row.
func Unpivot(t *benchtable.Table, rowKey, columnKey, valueColumn string) *benchtable.Table {
	out := benchtable.New(rowKey, columnKey, valueColumn)
	for _, r := range t.Rows {
		for _, col := range t.Columns {
			if col == rowKey {
				continue
			}
			v := r[col]
			if v.IsAbsent() {
				continue
			}
			row := benchtable.Row{columnKey: benchtable.Str(col), valueColumn: v}
			if rk := r[rowKey]; !rk.IsAbsent() {
				row[rowKey] = rk
			}
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}
