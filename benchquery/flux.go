// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchquery

import (
	"fmt"
	"strings"
	"time"
)

// Flux renders s as a Flux script against bucket, resolving a relative
// range as of now.
//
// Windows are anchored at the range start rather than at the epoch,
// and each window row is stamped with the window start, matching the
// engine's in-process semantics. Predicates (FieldFilter.Match,
// TagFilter.Match) are not rendered; callers should check Pushdown.
func (s *Spec) Flux(bucket string, now time.Time) string {
	start, stop := s.rng.Resolve(now)
	var b strings.Builder
	fmt.Fprintf(&b, "from(bucket: %s)\n", FluxString(bucket))
	fmt.Fprintf(&b, "  |> range(start: %s, stop: %s)\n", fluxTime(start), fluxTime(stop))
	fmt.Fprintf(&b, "  |> filter(fn: (r) => r._measurement == %s)\n", FluxString(s.dataset))
	if len(s.fields.Names) > 0 {
		fmt.Fprintf(&b, "  |> filter(fn: (r) => %s)\n", fluxOr("_field", s.fields.Names))
	}
	for _, key := range s.tagKeys() {
		if vals := s.tags[key].Values; len(vals) > 0 {
			fmt.Fprintf(&b, "  |> filter(fn: (r) => %s)\n", fluxOr(key, vals))
		} else {
			fmt.Fprintf(&b, "  |> filter(fn: (r) => exists r[%s])\n", FluxString(key))
		}
	}
	fmt.Fprintf(&b, "  |> group(columns: %s)\n", fluxList(s.Dims()))
	offset := time.Duration(start.UnixNano() % int64(s.window))
	if offset < 0 {
		offset += s.window
	}
	fmt.Fprintf(&b, "  |> aggregateWindow(every: %s, offset: %s, fn: %s, createEmpty: %t, timeSrc: \"_start\")\n",
		fluxDuration(s.window), fluxDuration(offset), s.agg, s.createEmpty)
	if pv := s.pivot; pv != nil {
		if pv.ValueColumn != ValueCol {
			fmt.Fprintf(&b, "  |> filter(fn: (r) => r._field == %s)\n", FluxString(pv.ValueColumn))
		}
		rowKey := pv.RowKey
		if rowKey == TimeCol {
			rowKey = "_time"
		}
		fmt.Fprintf(&b, "  |> pivot(rowKey: %s, columnKey: %s, valueColumn: \"_value\")\n",
			fluxList([]string{rowKey}), fluxList([]string{pv.ColumnKey}))
	}
	fmt.Fprintf(&b, "  |> yield(name: %s)\n", FluxString(string(s.agg)))
	return b.String()
}

func fluxOr(col string, vals []string) string {
	ref := "r[" + FluxString(col) + "]"
	if col == FieldDim {
		ref = "r._field"
	}
	var parts []string
	for _, v := range vals {
		parts = append(parts, ref+" == "+FluxString(v))
	}
	return strings.Join(parts, " or ")
}

func fluxList(xs []string) string {
	var parts []string
	for _, x := range xs {
		parts = append(parts, FluxString(x))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// FluxString quotes s as a Flux string literal.
func FluxString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "${", `\${`)
	return `"` + r.Replace(s) + `"`
}

func fluxTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// fluxDuration formats d as a Flux duration literal such as "1h30m".
// It is also valid input to ParseTimeRange.
func fluxDuration(d time.Duration) string {
	if d == 0 {
		return "0s"
	}
	var b strings.Builder
	if d < 0 {
		b.WriteByte('-')
		d = -d
	}
	for _, u := range []struct {
		unit string
		d    time.Duration
	}{
		{"h", time.Hour},
		{"m", time.Minute},
		{"s", time.Second},
		{"ms", time.Millisecond},
		{"us", time.Microsecond},
		{"ns", time.Nanosecond},
	} {
		if n := d / u.d; n > 0 {
			fmt.Fprintf(&b, "%d%s", n, u.unit)
			d -= n * u.d
		}
	}
	return b.String()
}
