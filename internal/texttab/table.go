// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package texttab lays out column-aligned text tables.
package texttab

import (
	"bytes"
	"io"
	"unicode/utf8"
)

// A Cell is one table entry.
type Cell struct {
	Text  string
	Right bool // pad on the left instead of the right
}

// L returns a left-aligned cell.
func L(s string) Cell { return Cell{Text: s} }

// R returns a right-aligned cell.
func R(s string) Cell { return Cell{Text: s, Right: true} }

// A Table collects rows of cells and writes them with every column
// padded to its widest cell. The zero Table is empty and ready to use.
type Table struct {
	// Sep separates columns. The default is two spaces.
	Sep string

	lines []line
}

type line struct {
	cells []Cell
	rule  bool
}

// Add appends a row. Rows may have different lengths.
func (t *Table) Add(cells ...Cell) {
	t.lines = append(t.lines, line{cells: cells})
}

// AddRule appends a row of dashes as wide as each column.
func (t *Table) AddRule() {
	t.lines = append(t.lines, line{rule: true})
}

func (t *Table) widths() []int {
	var w []int
	for _, l := range t.lines {
		for i, c := range l.cells {
			if i == len(w) {
				w = append(w, 0)
			}
			w[i] = max(w[i], utf8.RuneCountInString(c.Text))
		}
	}
	return w
}

// WriteTo writes the laid out table to w. Lines carry no trailing
// blanks.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	sep := t.Sep
	if sep == "" {
		sep = "  "
	}
	widths := t.widths()

	var buf bytes.Buffer
	for _, l := range t.lines {
		start := buf.Len()
		cells := l.cells
		if l.rule {
			cells = make([]Cell, len(widths))
			for i, n := range widths {
				cells[i].Text = string(bytes.Repeat([]byte{'-'}, n))
			}
		}
		for i, c := range cells {
			if i > 0 {
				buf.WriteString(sep)
			}
			pad := widths[i] - utf8.RuneCountInString(c.Text)
			if c.Right {
				buf.Write(bytes.Repeat([]byte{' '}, pad))
			}
			buf.WriteString(c.Text)
			if !c.Right {
				buf.Write(bytes.Repeat([]byte{' '}, pad))
			}
		}
		trimmed := bytes.TrimRight(buf.Bytes()[start:], " ")
		buf.Truncate(start + len(trimmed))
		buf.WriteByte('\n')
	}
	return buf.WriteTo(w)
}
