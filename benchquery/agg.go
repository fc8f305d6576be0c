// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchquery

import (
	"sort"
	"strings"
)

// An AggFunc names the function used to reduce the values of one
// window bucket to a single value.
type AggFunc string

const (
	AggMean  AggFunc = "mean"
	AggSum   AggFunc = "sum"
	AggCount AggFunc = "count"
	AggMin   AggFunc = "min"
	AggMax   AggFunc = "max"
)

var aggFuncs = map[AggFunc]bool{
	AggMean:  true,
	AggSum:   true,
	AggCount: true,
	AggMin:   true,
	AggMax:   true,
}

// Valid reports whether a is one of the supported aggregation
// functions.
func (a AggFunc) Valid() bool {
	return aggFuncs[a]
}

// AggFuncs returns the supported aggregation functions in sorted order.
func AggFuncs() []AggFunc {
	var out []AggFunc
	for a := range aggFuncs {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func aggFuncList() string {
	var names []string
	for _, a := range AggFuncs() {
		names = append(names, string(a))
	}
	return strings.Join(names, ", ")
}
