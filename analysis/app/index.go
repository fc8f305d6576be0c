// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package app

import (
	"bytes"
	"net/http"
	"net/url"

	"github.com/google/safehtml/template"
	"github.com/nosqlbench/perf/benchtable"
	"github.com/nosqlbench/perf/dashboard"
)

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

// indexData is the struct passed to indexTemplate.
type indexData struct {
	Views    []viewLink
	Selected string
	Title    string
	Desc     string
	Range    string
	Failure  *dashboard.Failure

	// Table is the DataTable JSON of the selected view.
	Table    string
	Kind     string
	ChartURL string
	Header   []string
	Rows     [][]string
}

type viewLink struct {
	Name     string
	Title    string
	Href     string
	Selected bool
}

func viewURL(path, name, rng string) string {
	q := url.Values{}
	if name != "" {
		q.Set("view", name)
	}
	if rng != "" {
		q.Set("range", rng)
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// index handles /.
// With no query, it shows the first view over its default range.
func (a *App) index(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	d := &indexData{Range: r.FormValue("range"), Selected: r.FormValue("view")}
	names := a.Adapter.ListViews()
	if d.Selected == "" && len(names) > 0 {
		d.Selected = names[0]
	}
	for _, name := range names {
		v, _ := a.Adapter.View(name)
		title := v.Title
		if title == "" {
			title = name
		}
		d.Views = append(d.Views, viewLink{
			Name:     name,
			Title:    title,
			Href:     viewURL("/", name, d.Range),
			Selected: name == d.Selected,
		})
	}
	if d.Selected != "" {
		a.fillView(r, d)
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, d); err != nil {
		a.logf(r, "index: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// fillView runs the selected view. Failures are shown on the page
// rather than failing the request.
func (a *App) fillView(r *http.Request, d *indexData) {
	v, _ := a.Adapter.View(d.Selected)
	d.Title, d.Desc = v.Title, v.Description
	if d.Title == "" {
		d.Title = d.Selected
	}
	tr, err := queryRange(r)
	var t *benchtable.Table
	if err == nil {
		t, err = a.Adapter.RunView(r.Context(), d.Selected, tr)
	}
	if err != nil {
		f := dashboard.Describe(err)
		a.failures.WithLabelValues(f.Kind).Inc()
		a.logf(r, "view %s: %v", d.Selected, err)
		d.Failure = &f
		return
	}

	d.Table = toDataTable(t).String()
	d.Kind = "LineChart"
	switch v.Chart {
	case "bar":
		d.Kind = "ColumnChart"
	case "":
		if t.Len() > 0 && len(t.Columns) > 0 && t.Get(0, t.Columns[0]).Kind() != benchtable.KindTime {
			d.Kind = "ColumnChart"
		}
	}
	d.ChartURL = viewURL("/views/"+url.PathEscape(d.Selected)+"/chart.svg", "", d.Range)
	d.Header = t.Columns
	for _, row := range t.Rows {
		var cells []string
		for _, col := range t.Columns {
			cells = append(cells, row.Get(col).String())
		}
		d.Rows = append(d.Rows, cells)
	}
}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>NoSQL benchmark comparison</title>
<script src="https://www.gstatic.com/charts/loader.js"></script>
<style>
body { font-family: sans-serif; margin: 1em 2em; }
nav a { margin-right: 1em; }
.failure { color: #a00; }
table.result { border-collapse: collapse; }
table.result td, table.result th { border: 1px solid #ccc; padding: 2px 6px; text-align: right; }
#chart { width: 900px; height: 400px; }
</style>
</head>
<body>
<nav>
{{range .Views}}{{if .Selected}}<b>{{.Title}}</b>{{else}}<a href="{{.Href}}">{{.Title}}</a>{{end}}
{{end}}
</nav>
<form action="/" method="get">
<input type="hidden" name="view" value="{{.Selected}}">
Range: <input type="text" name="range" value="{{.Range}}" placeholder="-24h">
<input type="submit" value="Show">
</form>
{{with .Title}}<h1>{{.}}</h1>{{end}}
{{with .Desc}}<p>{{.}}</p>{{end}}
{{if .Failure}}
<p class="failure">{{.Failure.Kind}}: {{.Failure.Message}}</p>
{{else if .Table}}
<div id="chart" data-kind="{{.Kind}}" data-table="{{.Table}}"></div>
<p><a href="{{.ChartURL}}">static chart</a></p>
{{if .Rows}}
<table class="result">
<tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}
</table>
{{else}}
<p>No samples in range.</p>
{{end}}
{{end}}
<script>
google.charts.load('current', {packages: ['corechart']});
google.charts.setOnLoadCallback(function() {
  var el = document.getElementById('chart');
  if (!el || !el.dataset.table) {
    return;
  }
  var data = new google.visualization.DataTable(JSON.parse(el.dataset.table));
  var chart;
  if (el.dataset.kind === 'ColumnChart') {
    chart = new google.visualization.ColumnChart(el);
  } else {
    chart = new google.visualization.LineChart(el);
  }
  chart.draw(data, {legend: {position: 'bottom'}});
});
</script>
</body>
</html>
`
