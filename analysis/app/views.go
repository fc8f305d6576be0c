// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package app

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/nosqlbench/perf/benchquery"
	"github.com/nosqlbench/perf/benchtable"
	"github.com/nosqlbench/perf/dashboard"
)

// queryRange parses the "range" form value. An empty range is the
// zero TimeRange, which callers replace with their default.
func queryRange(r *http.Request) (benchquery.TimeRange, error) {
	s := r.FormValue("range")
	if s == "" {
		return benchquery.TimeRange{}, nil
	}
	tr, err := benchquery.ParseTimeRange(s)
	if err != nil {
		return tr, &benchquery.InvalidSpecError{Param: "time_range", Msg: err.Error()}
	}
	return tr, nil
}

// queryTags parses repeated "tag=key:value" form values.
func queryTags(r *http.Request) ([]dashboard.Option, error) {
	var opts []dashboard.Option
	for _, kv := range r.Form["tag"] {
		k, v, ok := strings.Cut(kv, ":")
		if !ok || k == "" {
			return nil, &benchquery.InvalidSpecError{Param: "tag_filters", Msg: "tag " + kv + " is not key:value"}
		}
		opts = append(opts, dashboard.WithTag(k, v))
	}
	return opts, nil
}

// tableFormat returns the "format" form value, defaulting to json.
func tableFormat(r *http.Request) (string, error) {
	switch f := r.FormValue("format"); f {
	case "":
		return "json", nil
	case "json", "csv", "text":
		return f, nil
	default:
		return "", &benchquery.InvalidSpecError{Param: "format", Msg: "unknown format " + f}
	}
}

func (a *App) writeTable(w http.ResponseWriter, r *http.Request, t *benchtable.Table, format string) {
	var buf bytes.Buffer
	var err error
	contentType := "text/plain; charset=utf-8"
	switch format {
	case "csv":
		contentType = "text/csv; charset=utf-8"
		err = benchtable.WriteCSV(&buf, t)
	case "text":
		err = benchtable.WriteText(&buf, t)
	default:
		a.writeJSON(w, r, t)
		return
	}
	if err != nil {
		a.writeFailure(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(buf.Bytes())
}

// listViews handles /views.
func (a *App) listViews(w http.ResponseWriter, r *http.Request) {
	views := []dashboard.View{}
	for _, name := range a.Adapter.ListViews() {
		v, _ := a.Adapter.View(name)
		views = append(views, v)
	}
	a.writeJSON(w, r, views)
}

// runView handles /views/{name}.
func (a *App) runView(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		a.writeFailure(w, r, &benchquery.InvalidSpecError{Param: "form", Msg: err.Error()})
		return
	}
	tr, err := queryRange(r)
	if err != nil {
		a.writeFailure(w, r, err)
		return
	}
	opts, err := queryTags(r)
	if err != nil {
		a.writeFailure(w, r, err)
		return
	}
	format, err := tableFormat(r)
	if err != nil {
		a.writeFailure(w, r, err)
		return
	}
	t, err := a.Adapter.RunView(r.Context(), chi.URLParam(r, "name"), tr, opts...)
	if err != nil {
		a.writeFailure(w, r, err)
		return
	}
	a.writeTable(w, r, t, format)
}

// chart handles /views/{name}/chart.{format}.
func (a *App) chart(w http.ResponseWriter, r *http.Request) {
	name, format := chi.URLParam(r, "name"), chi.URLParam(r, "format")
	var contentType string
	switch format {
	case "png":
		contentType = "image/png"
	case "svg":
		contentType = "image/svg+xml"
	default:
		a.writeFailure(w, r, &benchquery.InvalidSpecError{Param: "format", Msg: "unknown chart format " + format})
		return
	}
	if err := r.ParseForm(); err != nil {
		a.writeFailure(w, r, &benchquery.InvalidSpecError{Param: "form", Msg: err.Error()})
		return
	}
	tr, err := queryRange(r)
	if err != nil {
		a.writeFailure(w, r, err)
		return
	}
	opts, err := queryTags(r)
	if err != nil {
		a.writeFailure(w, r, err)
		return
	}
	t, err := a.Adapter.RunView(r.Context(), name, tr, opts...)
	if err != nil {
		a.writeFailure(w, r, err)
		return
	}
	v, _ := a.Adapter.View(name)
	var buf bytes.Buffer
	if err := dashboard.RenderChart(&buf, t, format, dashboard.Chart{Title: v.Title, Kind: v.Chart}); err != nil {
		a.writeFailure(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(buf.Bytes())
}

// summary handles /summary.
func (a *App) summary(w http.ResponseWriter, r *http.Request) {
	tr, err := queryRange(r)
	if err != nil {
		a.writeFailure(w, r, err)
		return
	}
	sum, err := a.Adapter.Summary(r.Context(), tr)
	if err != nil {
		a.writeFailure(w, r, err)
		return
	}
	a.writeJSON(w, r, sum)
}

// listComparisons handles /compare.
func (a *App) listComparisons(w http.ResponseWriter, r *http.Request) {
	cs := append([]dashboard.Comparison{}, a.Comparisons...)
	a.writeJSON(w, r, cs)
}

// compare handles /compare/{name}.
func (a *App) compare(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var c *dashboard.Comparison
	for i := range a.Comparisons {
		if a.Comparisons[i].Name == name {
			c = &a.Comparisons[i]
		}
	}
	if c == nil {
		a.writeFailure(w, r, &dashboard.UnknownViewError{Name: name})
		return
	}
	tr, err := queryRange(r)
	if err != nil {
		a.writeFailure(w, r, err)
		return
	}
	format, err := tableFormat(r)
	if err != nil {
		a.writeFailure(w, r, err)
		return
	}
	t, err := a.Adapter.Compare(r.Context(), *c, tr)
	if err != nil {
		a.writeFailure(w, r, err)
		return
	}
	a.writeTable(w, r, t, format)
}
