// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchview

import (
	"sort"

	"github.com/aclements/go-gg/ggstat"
	"github.com/aclements/go-gg/table"
	"github.com/nosqlbench/perf/benchtable"
)

// Summary column names.
const (
	ColCount = "count"
	ColMean  = "mean"
	ColMin   = "min"
	ColMax   = "max"
	ColRank  = "rank"
)

// Summarize computes, for each distinct value of the by column, the
// count, mean, min and max of the numeric column value. Rows where
// either is absent are ignored. The result has columns by, count,
// mean, min and max, with one row per group in order of first
// appearance.
func Summarize(t *benchtable.Table, by, value string) *benchtable.Table {
	out := benchtable.New(by, ColCount, ColMean, ColMin, ColMax)

	var keys []string
	var xs []float64
	for _, r := range t.Rows {
		k, v := r[by], r[value]
		x, ok := v.Float()
		if k.IsAbsent() || !ok {
			continue
		}
		keys = append(keys, k.String())
		xs = append(xs, x)
	}
	if len(xs) == 0 {
		return out
	}

	var tb table.Builder
	tb.Add(by, keys)
	tb.Add(value, xs)
	g := ggstat.Agg(by)(
		ggstat.AggCount(ColCount),
		ggstat.AggMean(value),
		ggstat.AggMin(value),
		ggstat.AggMax(value),
	).F(tb.Done())
	res := table.Flatten(g)

	groups := res.MustColumn(by).([]string)
	counts := res.MustColumn(ColCount).([]int)
	means := res.MustColumn("mean " + value).([]float64)
	mins := res.MustColumn("min " + value).([]float64)
	maxes := res.MustColumn("max " + value).([]float64)

	// Keep the order in which groups first appeared in t.
	first := make(map[string]int)
	for i, k := range keys {
		if _, ok := first[k]; !ok {
			first[k] = i
		}
	}
	idx := make([]int, len(groups))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return first[groups[idx[i]]] < first[groups[idx[j]]] })

	for _, i := range idx {
		out.Rows = append(out.Rows, benchtable.Row{
			by:       benchtable.Str(groups[i]),
			ColCount: benchtable.Num(float64(counts[i])),
			ColMean:  benchtable.Num(means[i]),
			ColMin:   benchtable.Num(mins[i]),
			ColMax:   benchtable.Num(maxes[i]),
		})
	}
	return out
}

// Rank orders the rows of t best first by the numeric column col and
// prepends a rank column numbered from 1. If lowerIsBetter, smaller
// values rank first. Rows with an absent col are kept last, unranked.
// Equal values keep their relative order.
func Rank(t *benchtable.Table, col string, lowerIsBetter bool) *benchtable.Table {
	out := t.Clone()
	cols := []string{ColRank}
	for _, c := range out.Columns {
		if c != ColRank {
			cols = append(cols, c)
		}
	}
	out.Columns = cols

	sort.SliceStable(out.Rows, func(i, j int) bool {
		a, aok := out.Rows[i][col].Float()
		b, bok := out.Rows[j][col].Float()
		switch {
		case !aok || !bok:
			return aok && !bok
		case lowerIsBetter:
			return a < b
		default:
			return a > b
		}
	})
	for i, r := range out.Rows {
		if _, ok := r[col].Float(); ok {
			r[ColRank] = benchtable.Num(float64(i + 1))
		} else {
			delete(r, ColRank)
		}
	}
	return out
}
