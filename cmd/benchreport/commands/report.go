// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nosqlbench/perf/benchtable"
	"github.com/nosqlbench/perf/dashboard"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func writeTable(w io.Writer, t *benchtable.Table, format string) error {
	switch format {
	case "csv":
		return benchtable.WriteCSV(w, t)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(t)
	}
	return benchtable.WriteText(w, t)
}

func summaryCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Report which scenarios have data and how many samples",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tr, err := e.timeRange()
			if err != nil {
				return err
			}
			format, err := e.format()
			if err != nil {
				return err
			}
			a, st, err := e.adapter(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			sum, err := a.Summary(ctx, tr)
			if err != nil {
				return err
			}
			t := benchtable.New("dataset", "title", "samples", "databases")
			total := 0
			for _, s := range sum {
				total += s.Samples
				row := benchtable.Row{
					"dataset": benchtable.Str(s.Dataset),
					"title":   benchtable.Str(s.Title),
					"samples": benchtable.Num(float64(s.Samples)),
				}
				if s.HasData {
					row["databases"] = benchtable.Str(strings.Join(s.Databases, " "))
				}
				t.AddRow(row)
			}
			if err := writeTable(cmd.OutOrStdout(), t, format); err != nil {
				return err
			}
			if format == "text" {
				fmt.Fprintf(cmd.OutOrStdout(), "\n%d samples in total\n", total)
			}
			return nil
		},
	}
}

func viewsCmd(e *env) *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "views",
		Short: "List the available views",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			views := dashboard.DefaultViews()
			if path := e.v.GetString("views"); path != "" {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				defer f.Close()
				if views, err = dashboard.LoadViews(f); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
			}
			if asYAML {
				return dashboard.WriteViews(cmd.OutOrStdout(), views)
			}
			t := benchtable.New("name", "title", "queries", "range")
			for _, v := range views {
				t.AddRow(benchtable.Row{
					"name":    benchtable.Str(v.Name),
					"title":   benchtable.Str(v.Title),
					"queries": benchtable.Num(float64(len(v.Queries))),
					"range":   benchtable.Str(v.DefaultRange),
				})
			}
			t.SortBy("name")
			return benchtable.WriteText(cmd.OutOrStdout(), t)
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print the view definitions as YAML")
	return cmd
}

// result is the outcome of one view or comparison.
type result struct {
	name  string
	table *benchtable.Table
	err   error
}

// runAll evaluates fn for every name with at most parallel running at
// once. Results keep the order of names. Only internal failures stop
// the remaining evaluations.
func runAll(ctx context.Context, names []string, parallel int, fn func(ctx context.Context, name string) (*benchtable.Table, error)) ([]result, error) {
	results := make([]result, len(names))
	g, ctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		g.SetLimit(parallel)
	}
	for i, name := range names {
		g.Go(func() error {
			t, err := fn(ctx, name)
			results[i] = result{name: name, table: t, err: err}
			if err != nil && dashboard.Describe(err).Kind == dashboard.KindInternal {
				return fmt.Errorf("%s: %w", name, err)
			}
			return nil
		})
	}
	return results, g.Wait()
}

// printResults writes every result under a "## name" heading when
// there is more than one. Failures are reported in place. The returned
// error counts the failures other than empty datasets.
func printResults(w io.Writer, results []result, format string) error {
	failed := 0
	for i, r := range results {
		if len(results) > 1 && format != "json" {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "## %s\n", r.name)
		}
		if r.err != nil {
			f := dashboard.Describe(r.err)
			if f.Kind != dashboard.KindEmptyDataset {
				failed++
			}
			fmt.Fprintf(w, "%s: %v\n", r.name, f)
			continue
		}
		if err := writeTable(w, r.table, format); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d failed", failed, len(results))
	}
	return nil
}

func runCmd(e *env) *cobra.Command {
	var (
		all      bool
		parallel int
		tags     []string
	)
	cmd := &cobra.Command{
		Use:   "run [view...]",
		Short: "Evaluate views and print their tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if all == (len(args) > 0) {
				return errors.New("name views to run or pass --all")
			}
			tr, err := e.timeRange()
			if err != nil {
				return err
			}
			format, err := e.format()
			if err != nil {
				return err
			}
			var opts []dashboard.Option
			for _, kv := range tags {
				k, v, ok := strings.Cut(kv, ":")
				if !ok || k == "" {
					return fmt.Errorf("tag %q is not key:value", kv)
				}
				opts = append(opts, dashboard.WithTag(k, v))
			}
			a, st, err := e.adapter(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			names := args
			if all {
				names = a.ListViews()
			}
			results, err := runAll(ctx, names, parallel, func(ctx context.Context, name string) (*benchtable.Table, error) {
				return a.RunView(ctx, name, tr, opts...)
			})
			if err != nil {
				return err
			}
			return printResults(cmd.OutOrStdout(), results, format)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "run every view")
	cmd.Flags().IntVar(&parallel, "parallel", 4, "evaluate at most `n` views at once")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "narrow every query to samples with tag key:value")
	return cmd
}

func compareCmd(e *env) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "compare [comparison...]",
		Short: "Rank databases by one metric",
		Long: "Rank databases by the mean of one metric over raw samples.\n\nComparisons: " +
			strings.Join(comparisonNames(), ", "),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if all == (len(args) > 0) {
				return errors.New("name comparisons to run or pass --all")
			}
			tr, err := e.timeRange()
			if err != nil {
				return err
			}
			format, err := e.format()
			if err != nil {
				return err
			}
			byName := make(map[string]dashboard.Comparison)
			for _, c := range dashboard.DefaultComparisons() {
				byName[c.Name] = c
			}
			names := args
			if all {
				names = comparisonNames()
			}
			for _, name := range names {
				if _, ok := byName[name]; !ok {
					return &dashboard.UnknownViewError{Name: name}
				}
			}
			a, st, err := e.adapter(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			results, err := runAll(ctx, names, 1, func(ctx context.Context, name string) (*benchtable.Table, error) {
				return a.Compare(ctx, byName[name], tr)
			})
			if err != nil {
				return err
			}
			return printResults(cmd.OutOrStdout(), results, format)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "run every comparison")
	return cmd
}

func comparisonNames() []string {
	var names []string
	for _, c := range dashboard.DefaultComparisons() {
		names = append(names, c.Name)
	}
	return names
}

func chartCmd(e *env) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "chart view",
		Short: "Draw a view as a PNG or SVG chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			format := strings.TrimPrefix(filepath.Ext(out), ".")
			if format != "png" && format != "svg" {
				return fmt.Errorf("output file %q must end in .png or .svg", out)
			}
			tr, err := e.timeRange()
			if err != nil {
				return err
			}
			a, st, err := e.adapter(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			t, err := a.RunView(ctx, args[0], tr)
			if err != nil {
				return err
			}
			v, _ := a.View(args[0])
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := dashboard.RenderChart(f, t, format, dashboard.Chart{Title: v.Title, Kind: v.Chart}); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "chart.png", "write the chart to `file` (.png or .svg)")
	return cmd
}
