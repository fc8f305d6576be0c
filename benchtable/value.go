// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchtable

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// A Kind is the type of a Value.
type Kind int

const (
	KindAbsent Kind = iota
	KindNumber
	KindTime
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindNumber:
		return "number"
	case KindTime:
		return "time"
	case KindString:
		return "string"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// A Value is one table cell: a number, a timestamp, a string, or
// absent. Absent is distinct from every number, including zero.
type Value struct {
	kind Kind
	num  float64
	t    time.Time
	str  string
}

// Absent is the value of a cell with no data. It is the zero Value.
var Absent Value

// Num returns a numeric value.
func Num(x float64) Value { return Value{kind: KindNumber, num: x} }

// Time returns a timestamp value.
func Time(t time.Time) Value { return Value{kind: KindTime, t: t} }

// Str returns a string value.
func Str(s string) Value { return Value{kind: KindString, str: s} }

// Kind returns the type of v.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether v is Absent.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// Float returns the number held by v, if any.
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Timestamp returns the time held by v, if any.
func (v Value) Timestamp() (time.Time, bool) {
	return v.t, v.kind == KindTime
}

// Text returns the string held by v, if any.
func (v Value) Text() (string, bool) {
	return v.str, v.kind == KindString
}

// Equal reports whether v and w are the same value.
func (v Value) Equal(w Value) bool {
	if v.kind != w.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == w.num || (math.IsNaN(v.num) && math.IsNaN(w.num))
	case KindTime:
		return v.t.Equal(w.t)
	case KindString:
		return v.str == w.str
	}
	return true
}

// Compare orders values: absent first, then numbers, times and strings,
// each in their natural order. It returns -1, 0 or +1.
func Compare(v, w Value) int {
	if v.kind != w.kind {
		if v.kind < w.kind {
			return -1
		}
		return 1
	}
	switch v.kind {
	case KindNumber:
		switch {
		case v.num < w.num:
			return -1
		case v.num > w.num:
			return 1
		}
	case KindTime:
		switch {
		case v.t.Before(w.t):
			return -1
		case v.t.After(w.t):
			return 1
		}
	case KindString:
		return strings.Compare(v.str, w.str)
	}
	return 0
}

// Key returns a string that uniquely identifies v among values of its
// kind. It is suitable as a map key.
func (v Value) Key() string {
	switch v.kind {
	case KindNumber:
		return "n" + strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindTime:
		return "t" + v.t.UTC().Format(time.RFC3339Nano)
	case KindString:
		return "s" + v.str
	}
	return "-"
}

// String formats v for display. Absent values are "-".
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindTime:
		return v.t.UTC().Format(time.RFC3339Nano)
	case KindString:
		return v.str
	}
	return "-"
}

// MarshalJSON encodes Absent as null, numbers as JSON numbers, and
// times (RFC 3339) and strings as JSON strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return nil, fmt.Errorf("cannot encode %v as JSON", v.num)
		}
		return json.Marshal(v.num)
	case KindTime:
		return json.Marshal(v.t.UTC().Format(time.RFC3339Nano))
	case KindString:
		return json.Marshal(v.str)
	}
	return []byte("null"), nil
}

// UnmarshalJSON decodes null as Absent. Every JSON string decodes as a
// string; Table.UnmarshalJSON turns the cells of time columns back
// into times.
func (v *Value) UnmarshalJSON(data []byte) error {
	var x interface{}
	if err := json.Unmarshal(data, &x); err != nil {
		return err
	}
	switch x := x.(type) {
	case nil:
		*v = Absent
	case float64:
		*v = Num(x)
	case string:
		*v = Str(x)
	default:
		return fmt.Errorf("cannot decode %s as a table value", data)
	}
	return nil
}
