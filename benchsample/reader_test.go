// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchsample

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestReader(t *testing.T) {
	ts := time.Unix(1700000000, 0).UTC()
	type want struct {
		sample *Sample
		err    string
	}
	for _, test := range []struct {
		name  string
		input string
		want  []want
	}{
		{
			"basic",
			"scenario1_crud,database=MongoDB,operation=insert latency_ms=2.5,cpu_percent=40 1700000000000000000\n",
			[]want{{sample: &Sample{
				Dataset: "scenario1_crud",
				Time:    ts,
				Tags:    Tags{"database": "MongoDB", "operation": "insert"},
				Fields:  Fields{"latency_ms": 2.5, "cpu_percent": 40},
			}}},
		},
		{
			"comments and blanks",
			"# exported\n\n  \nscenario2_iot,database=Redis insert_rate=100i 1700000000000000000\n",
			[]want{{sample: &Sample{
				Dataset: "scenario2_iot",
				Time:    ts,
				Tags:    Tags{"database": "Redis"},
				Fields:  Fields{"insert_rate": 100},
			}}},
		},
		{
			"missing timestamp",
			"scenario2_iot,database=Redis insert_rate=1\n",
			[]want{{err: "test:1: missing timestamp"}},
		},
		{
			"string field",
			"scenario2_iot,database=Redis note=\"slow\" 1700000000000000000\n",
			[]want{{err: `test:1: field "note" is not numeric`}},
		},
		{
			"missing database",
			"# header\nscenario2_iot,host=a insert_rate=1 1700000000000000000\n",
			[]want{{err: `test:2: invalid sample: scenario2_iot: missing "database" tag`}},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			r := NewReader(strings.NewReader(test.input), "test")
			for _, w := range test.want {
				if w.err != "" {
					if r.Scan() {
						t.Fatalf("got sample %v, want error %s", r.Sample(), w.err)
					}
					var se *SyntaxError
					if !errors.As(r.Err(), &se) {
						t.Fatalf("got error %v, want *SyntaxError", r.Err())
					}
					if se.Error() != w.err {
						t.Errorf("got error %s, want %s", se, w.err)
					}
					return
				}
				if !r.Scan() {
					t.Fatalf("unexpected end of stream: %v", r.Err())
				}
				if got := r.Sample(); !reflect.DeepEqual(got, w.sample) {
					t.Errorf("got %+v, want %+v", got, w.sample)
				}
			}
			if r.Scan() {
				t.Errorf("got extra sample %v", r.Sample())
			}
			if err := r.Err(); err != nil {
				t.Errorf("unexpected error %v", err)
			}
		})
	}
}

func TestWriterRoundTrip(t *testing.T) {
	in := []*Sample{
		{
			Dataset: "scenario3_graph",
			Time:    time.Unix(1700000000, 5).UTC(),
			Tags:    Tags{"database": "Neo4j", "query": "shortest path"},
			Fields:  Fields{"query_latency_ms": 12.25, "depth": 3},
		},
		{
			Dataset: "scenario1_crud",
			Time:    time.Unix(1700000060, 0).UTC(),
			Tags:    Tags{"database": "Cassandra", "operation": "read"},
			Fields:  Fields{"latency_ms": 0.5},
		},
	}
	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, s := range in {
		if err := w.Write(s); err != nil {
			t.Fatal(err)
		}
	}
	out, err := ReadAll(&buf, "buf")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip mismatch:\n got %v\nwant %v", out, in)
	}
}

func TestWriterRejectsInvalid(t *testing.T) {
	var buf bytes.Buffer
	err := NewWriter(&buf).Write(&Sample{Dataset: "x", Time: time.Unix(1, 0), Fields: Fields{"a": 1}})
	if !errors.Is(err, ErrInvalidSample) {
		t.Errorf("got %v, want ErrInvalidSample", err)
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %q for invalid sample", buf.String())
	}
}

func TestSampleString(t *testing.T) {
	s := &Sample{
		Dataset: "scenario1_crud",
		Time:    time.Unix(0, 42),
		Tags:    Tags{"operation": "insert", "database": "MongoDB"},
		Fields:  Fields{"latency_ms": 2.5},
	}
	want := "scenario1_crud,database=MongoDB,operation=insert latency_ms=2.5 42"
	if got := s.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestClone(t *testing.T) {
	s := &Sample{
		Dataset: "d",
		Time:    time.Unix(1, 0),
		Tags:    Tags{"database": "Redis"},
		Fields:  Fields{"f": 1},
	}
	c := s.Clone()
	c.Tags["database"] = "MongoDB"
	c.Fields["f"] = 2
	if s.Database() != "Redis" || s.Fields["f"] != 1 {
		t.Errorf("Clone shares state with original: %v", s)
	}
}
