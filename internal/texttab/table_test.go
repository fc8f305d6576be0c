// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package texttab

import (
	"strings"
	"testing"
)

func TestWriteTo(t *testing.T) {
	for _, test := range []struct {
		name  string
		build func(*Table)
		want  string
	}{
		{"plain", func(t *Table) {
			t.Add(L("a"), L("b"), L("c"))
			t.Add(L("d"), L("e"), L("f"))
		}, "a  b  c\nd  e  f\n"},
		{"padding", func(t *Table) {
			t.Add(L("a"), L("b"), L("c"))
			t.Add(L("long"), L("e"), L("long"))
		}, "a     b  c\nlong  e  long\n"},
		{"right", func(t *Table) {
			t.Add(L("database"), R("latency"))
			t.Add(L("Redis"), R("6"))
		}, "database  latency\nRedis           6\n"},
		{"rule", func(t *Table) {
			t.Add(L("x"), L("value"))
			t.AddRule()
			t.Add(L("☃"), R("1"))
		}, "x  value\n-  -----\n☃      1\n"},
		{"ragged", func(t *Table) {
			t.Add(L("a"))
			t.Add(L("bb"), L("c"))
		}, "a\nbb  c\n"},
		{"sep", func(t *Table) {
			t.Sep = " | "
			t.Add(L("k"), L("v"))
			t.Add(L("key"), L("v"))
		}, "k   | v\nkey | v\n"},
	} {
		t.Run(test.name, func(t *testing.T) {
			var tab Table
			test.build(&tab)
			var got strings.Builder
			n, err := tab.WriteTo(&got)
			if err != nil {
				t.Fatal(err)
			}
			if got.String() != test.want {
				t.Errorf("got:\n%swant:\n%s", got.String(), test.want)
			}
			if int(n) != got.Len() {
				t.Errorf("WriteTo = %d, wrote %d bytes", n, got.Len())
			}
		})
	}
}
