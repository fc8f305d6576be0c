// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchquery

// A FieldFilter selects which fields of a sample take part in a query.
//
// Names are OR-ed: a field matches if it is any of the names. Match, if
// non-nil, must additionally accept the field name. A zero FieldFilter
// matches every field.
type FieldFilter struct {
	Names []string
	Match func(name string) bool
}

// Matches reports whether the field called name passes f.
func (f FieldFilter) Matches(name string) bool {
	if len(f.Names) > 0 && !contains(f.Names, name) {
		return false
	}
	return f.Match == nil || f.Match(name)
}

func (f FieldFilter) clone() FieldFilter {
	return FieldFilter{Names: append([]string(nil), f.Names...), Match: f.Match}
}

// Fields returns a FieldFilter matching exactly the named fields.
func Fields(names ...string) FieldFilter {
	return FieldFilter{Names: names}
}

// A TagFilter selects samples by the value of one tag.
//
// Values are OR-ed. Match, if non-nil, must additionally accept the
// value. A sample without the tag never passes a TagFilter.
type TagFilter struct {
	Values []string
	Match  func(value string) bool
}

// Equals returns a TagFilter accepting any of values.
func Equals(values ...string) TagFilter {
	return TagFilter{Values: values}
}

// Matches reports whether a tag value passes f. present is false if
// the sample lacks the tag.
func (f TagFilter) Matches(value string, present bool) bool {
	if !present {
		return false
	}
	if len(f.Values) > 0 && !contains(f.Values, value) {
		return false
	}
	return f.Match == nil || f.Match(value)
}

func (f TagFilter) clone() TagFilter {
	return TagFilter{Values: append([]string(nil), f.Values...), Match: f.Match}
}

func contains(xs []string, x string) bool {
	for _, y := range xs {
		if x == y {
			return true
		}
	}
	return false
}
