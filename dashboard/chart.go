// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dashboard

import (
	"fmt"
	"io"

	"github.com/nosqlbench/perf/benchquery"
	"github.com/nosqlbench/perf/benchtable"
	"github.com/nosqlbench/perf/benchview"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Chart describes how to draw a result table.
type Chart struct {
	Title  string
	YLabel string

	// Kind is "line" or "bar". Empty picks line for tables keyed by
	// time and bar otherwise.
	Kind string

	// Width and Height default to 20cm by 10cm.
	Width, Height vg.Length
}

// RenderChart draws t in format "png" or "svg". The first column of t
// is the x axis and every other column is a series. Absent cells are
// gaps in line charts and empty bars in bar charts. A bar chart of a
// table keyed by time shows one bar per series, its mean over all rows.
func RenderChart(w io.Writer, t *benchtable.Table, format string, c Chart) error {
	switch format {
	case "png", "svg":
	default:
		return fmt.Errorf("unsupported chart format %q", format)
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("cannot chart a table without columns")
	}
	kind := c.Kind
	if kind == "" {
		kind = "bar"
		if t.Len() > 0 && t.Get(0, t.Columns[0]).Kind() == benchtable.KindTime {
			kind = "line"
		}
	}

	pl := plot.New()
	pl.Title.Text = c.Title
	pl.X.Label.Text = t.Columns[0]
	pl.Y.Label.Text = c.YLabel
	pl.Add(plotter.NewGrid())
	pl.Legend.Top = true

	var err error
	switch kind {
	case "line":
		err = addLines(pl, t)
	case "bar":
		if t.Len() > 0 && t.Get(0, t.Columns[0]).Kind() == benchtable.KindTime {
			t = seriesMeans(t)
			pl.X.Label.Text = ""
		}
		err = addBars(pl, t)
	default:
		err = fmt.Errorf("unknown chart kind %q", kind)
	}
	if err != nil {
		return err
	}

	width, height := c.Width, c.Height
	if width == 0 {
		width = 20 * vg.Centimeter
	}
	if height == 0 {
		height = 10 * vg.Centimeter
	}
	wt, err := pl.WriterTo(width, height, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

func addLines(pl *plot.Plot, t *benchtable.Table) error {
	pl.X.Tick.Marker = plot.TimeTicks{Format: "01-02\n15:04"}
	key := t.Columns[0]
	for i, col := range t.Columns[1:] {
		clr := plotutil.Color(i)
		var segment plotter.XYs
		first := true
		flush := func() error {
			if len(segment) == 0 {
				return nil
			}
			l, err := plotter.NewLine(segment)
			if err != nil {
				return err
			}
			l.Color = clr
			l.Width = vg.Points(1.5)
			pl.Add(l)
			if first {
				pl.Legend.Add(col, l)
				first = false
			}
			segment = nil
			return nil
		}
		for _, r := range t.Rows {
			ts, tok := r[key].Timestamp()
			y, yok := r[col].Float()
			if !tok || !yok {
				if err := flush(); err != nil {
					return err
				}
				continue
			}
			segment = append(segment, plotter.XY{X: float64(ts.Unix()), Y: y})
		}
		if err := flush(); err != nil {
			return err
		}
	}
	return nil
}

// seriesMeans reduces a time-keyed table to one row per series with
// its mean.
func seriesMeans(t *benchtable.Table) *benchtable.Table {
	const series = "series"
	tall := benchview.Unpivot(t, t.Columns[0], series, benchquery.ValueCol)
	sum := benchview.Summarize(tall, series, benchquery.ValueCol)
	out := benchtable.New(series, benchview.ColMean)
	for _, r := range sum.Rows {
		out.AddRow(benchtable.Row{series: r[series], benchview.ColMean: r[benchview.ColMean]})
	}
	return out
}

func addBars(pl *plot.Plot, t *benchtable.Table) error {
	if t.Len() == 0 {
		return nil
	}
	key := t.Columns[0]
	var names []string
	for _, r := range t.Rows {
		names = append(names, r[key].String())
	}
	series := t.Columns[1:]
	width := vg.Points(14)
	for i, col := range series {
		vals := make(plotter.Values, t.Len())
		for j, r := range t.Rows {
			if x, ok := r[col].Float(); ok {
				vals[j] = x
			}
		}
		bc, err := plotter.NewBarChart(vals, width)
		if err != nil {
			return err
		}
		bc.Color = plotutil.Color(i)
		bc.LineStyle.Width = 0
		bc.Offset = vg.Length(2*i-len(series)+1) * width / 2
		pl.Add(bc)
		pl.Legend.Add(col, bc)
	}
	pl.NominalX(names...)
	return nil
}
