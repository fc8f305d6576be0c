// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchtable

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nosqlbench/perf/internal/texttab"
)

// WriteText writes t as an aligned text table with a header row.
// Numbers are right-aligned and absent cells print as "-".
func WriteText(w io.Writer, t *Table) error {
	var tab texttab.Table
	header := make([]texttab.Cell, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = texttab.L(col)
	}
	tab.Add(header...)
	tab.AddRule()
	for _, r := range t.Rows {
		cells := make([]texttab.Cell, len(t.Columns))
		for i, col := range t.Columns {
			v := r[col]
			cells[i] = texttab.Cell{Text: v.String(), Right: v.Kind() == KindNumber || v.IsAbsent()}
		}
		tab.Add(cells...)
	}
	_, err := tab.WriteTo(w)
	return err
}

// WriteCSV writes t as CSV with a header row. Absent cells are empty.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	rec := make([]string, len(t.Columns))
	for _, r := range t.Rows {
		for i, col := range t.Columns {
			if v := r[col]; v.IsAbsent() {
				rec[i] = ""
			} else {
				rec[i] = v.String()
			}
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads a table written by WriteCSV. Empty cells are Absent,
// cells that parse as numbers or RFC 3339 times get those kinds, and
// everything else is a string.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("missing CSV header")
		}
		return nil, err
	}
	t := New(header...)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		row := make(Row, len(rec))
		for i, cell := range rec {
			if v := parseCell(cell); !v.IsAbsent() {
				row[header[i]] = v
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func parseCell(s string) Value {
	if s == "" {
		return Absent
	}
	if x, err := strconv.ParseFloat(s, 64); err == nil {
		return Num(x)
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return Time(t)
	}
	return Str(s)
}

type jsonTable struct {
	Columns []string  `json:"columns"`
	Types   []string  `json:"types,omitempty"`
	Rows    [][]Value `json:"rows"`
}

// columnKind returns the kind shared by every present cell of col, or
// KindAbsent if the column is empty or mixed.
func (t *Table) columnKind(col string) Kind {
	kind := KindAbsent
	for _, r := range t.Rows {
		k := r[col].Kind()
		switch {
		case k == KindAbsent:
		case kind == KindAbsent:
			kind = k
		case k != kind:
			return KindAbsent
		}
	}
	return kind
}

// MarshalJSON encodes t as
//
//	{"columns": [...], "types": [...], "rows": [[...], ...]}
//
// where each row lists its values in column order and Absent is null.
// types names the kind of each column ("number", "time" or "string"),
// or is empty for a column with no cells or with cells of several
// kinds. Times are RFC 3339 strings.
func (t *Table) MarshalJSON() ([]byte, error) {
	jt := jsonTable{
		Columns: t.Columns,
		Types:   make([]string, len(t.Columns)),
		Rows:    make([][]Value, len(t.Rows)),
	}
	if jt.Columns == nil {
		jt.Columns = []string{}
	}
	for j, col := range t.Columns {
		if k := t.columnKind(col); k != KindAbsent {
			jt.Types[j] = k.String()
		}
	}
	for i, r := range t.Rows {
		vals := make([]Value, len(t.Columns))
		for j, col := range t.Columns {
			vals[j] = r[col]
		}
		jt.Rows[i] = vals
	}
	return json.Marshal(jt)
}

// UnmarshalJSON decodes the form written by MarshalJSON. Strings in a
// column of type "time" decode as times; all other strings stay
// strings, whatever they look like.
func (t *Table) UnmarshalJSON(data []byte) error {
	var jt jsonTable
	if err := json.Unmarshal(data, &jt); err != nil {
		return err
	}
	if jt.Types != nil && len(jt.Types) != len(jt.Columns) {
		return fmt.Errorf("%d types for %d columns", len(jt.Types), len(jt.Columns))
	}
	t.Columns = jt.Columns
	t.Rows = make([]Row, len(jt.Rows))
	for i, vals := range jt.Rows {
		if len(vals) != len(jt.Columns) {
			return fmt.Errorf("row %d has %d values, want %d", i, len(vals), len(jt.Columns))
		}
		row := make(Row, len(vals))
		for j, v := range vals {
			if v.IsAbsent() {
				continue
			}
			if jt.Types != nil && jt.Types[j] == KindTime.String() {
				s, ok := v.Text()
				if !ok {
					return fmt.Errorf("row %d column %s: %v is not a time", i, jt.Columns[j], v)
				}
				ts, err := time.Parse(time.RFC3339Nano, s)
				if err != nil {
					return fmt.Errorf("row %d column %s: %v", i, jt.Columns[j], err)
				}
				v = Time(ts)
			}
			row[jt.Columns[j]] = v
		}
		t.Rows[i] = row
	}
	return nil
}
