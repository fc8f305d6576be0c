// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchsample defines the data point recorded by a NoSQL
// benchmark run and reads and writes it in InfluxDB line protocol.
//
// A Sample is one measurement instance: a dataset (the InfluxDB
// measurement, e.g. "scenario1_crud"), a timestamp, a set of string
// tags used for filtering and grouping, and a set of numeric fields
// holding the measured values.
//
// The reader and writer are streaming operations modeled on
// bufio.Scanner so that large exports can be processed incrementally.
package benchsample

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// Well-known tag keys.
const (
	// TagDatabase names the database under test. Every sample
	// carries it.
	TagDatabase = "database"

	// TagOperation names the operation of a CRUD-style scenario,
	// such as "insert" or "read".
	TagOperation = "operation"
)

// A Sample is a single benchmark measurement.
type Sample struct {
	// Dataset is the logical benchmark collection this sample
	// belongs to.
	Dataset string

	// Time is when the measurement was taken.
	Time time.Time

	// Tags are the string dimensions of the sample.
	Tags Tags

	// Fields are the measured values.
	Fields Fields
}

// Tags is a set of tag key/value pairs.
type Tags map[string]string

// Keys returns a sorted list of the keys in t.
func (t Tags) Keys() []string {
	var keys []string
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Fields is a set of named numeric measurements.
type Fields map[string]float64

// Names returns a sorted list of the field names in f.
func (f Fields) Names() []string {
	var names []string
	for k := range f {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Database returns the value of the database tag.
func (s *Sample) Database() string {
	return s.Tags[TagDatabase]
}

// Clone makes a copy of s that shares no state with s.
func (s *Sample) Clone() *Sample {
	s2 := &Sample{
		Dataset: s.Dataset,
		Time:    s.Time,
		Tags:    make(Tags, len(s.Tags)),
		Fields:  make(Fields, len(s.Fields)),
	}
	for k, v := range s.Tags {
		s2.Tags[k] = v
	}
	for k, v := range s.Fields {
		s2.Fields[k] = v
	}
	return s2
}

// ErrInvalidSample is returned (wrapped) by Validate.
var ErrInvalidSample = errors.New("invalid sample")

// Validate reports whether s is a well-formed sample.
func (s *Sample) Validate() error {
	switch {
	case s.Dataset == "":
		return fmt.Errorf("%w: missing dataset", ErrInvalidSample)
	case s.Time.IsZero():
		return fmt.Errorf("%w: %s: missing timestamp", ErrInvalidSample, s.Dataset)
	case s.Tags[TagDatabase] == "":
		return fmt.Errorf("%w: %s: missing %q tag", ErrInvalidSample, s.Dataset, TagDatabase)
	case len(s.Fields) == 0:
		return fmt.Errorf("%w: %s: no fields", ErrInvalidSample, s.Dataset)
	}
	for name, v := range s.Fields {
		if math.IsNaN(v) {
			return fmt.Errorf("%w: %s: field %q is NaN", ErrInvalidSample, s.Dataset, name)
		}
	}
	return nil
}

// String returns s in line protocol.
func (s *Sample) String() string {
	b, err := appendLine(nil, s)
	if err != nil {
		return fmt.Sprintf("<%s: %v>", s.Dataset, err)
	}
	return string(b)
}
