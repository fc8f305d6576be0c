// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchtable implements the result tables produced by
// benchmark queries.
//
// A Table is an ordered list of columns and an ordered list of rows.
// Each row maps column names to Values. A missing cell reads as
// Absent, which is never confused with a measured zero and survives
// every output format: JSON writes null, CSV an empty cell and text
// output a "-".
package benchtable

import (
	"fmt"
	"sort"
	"strings"
)

// A Row maps column names to values. Columns missing from the map are
// Absent.
type Row map[string]Value

// Get returns the value of column col, or Absent.
func (r Row) Get(col string) Value {
	return r[col]
}

// A Table is the result of a query or of reshaping other tables.
type Table struct {
	Columns []string
	Rows    []Row
}

// New returns an empty table with the given columns.
func New(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Len returns the number of rows in t.
func (t *Table) Len() int {
	return len(t.Rows)
}

// AddRow appends r to t. Columns of r that t does not have are added
// to t in sorted order.
func (t *Table) AddRow(r Row) {
	var extra []string
	for col := range r {
		if !t.HasColumn(col) {
			extra = append(extra, col)
		}
	}
	sort.Strings(extra)
	t.Columns = append(t.Columns, extra...)
	t.Rows = append(t.Rows, r)
}

// HasColumn reports whether t has a column named col.
func (t *Table) HasColumn(col string) bool {
	return t.ColumnIndex(col) >= 0
}

// ColumnIndex returns the position of col in t.Columns, or -1.
func (t *Table) ColumnIndex(col string) int {
	for i, c := range t.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

// Get returns the value at row i, column col. It returns Absent if the
// cell is missing.
func (t *Table) Get(i int, col string) Value {
	if i < 0 || i >= len(t.Rows) {
		return Absent
	}
	return t.Rows[i][col]
}

// Column returns the values of column col, one per row.
func (t *Table) Column(col string) []Value {
	out := make([]Value, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[col]
	}
	return out
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	t2 := New(t.Columns...)
	t2.Rows = make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		r2 := make(Row, len(r))
		for k, v := range r {
			r2[k] = v
		}
		t2.Rows[i] = r2
	}
	return t2
}

// SortBy stably sorts the rows of t by the given columns, in order.
func (t *Table) SortBy(cols ...string) {
	sort.SliceStable(t.Rows, func(i, j int) bool {
		for _, col := range cols {
			if c := Compare(t.Rows[i][col], t.Rows[j][col]); c != 0 {
				return c < 0
			}
		}
		return false
	})
}

// Equal reports whether t and u have the same columns in the same
// order and the same rows.
func (t *Table) Equal(u *Table) bool {
	if len(t.Columns) != len(u.Columns) || len(t.Rows) != len(u.Rows) {
		return false
	}
	for i := range t.Columns {
		if t.Columns[i] != u.Columns[i] {
			return false
		}
	}
	for i := range t.Rows {
		for _, col := range t.Columns {
			if !t.Rows[i][col].Equal(u.Rows[i][col]) {
				return false
			}
		}
	}
	return true
}

// String returns t in text form. It is meant for debugging and test
// failure messages.
func (t *Table) String() string {
	var b strings.Builder
	if err := WriteText(&b, t); err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return b.String()
}
