// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchsample

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"time"

	protocol "github.com/influxdata/line-protocol"
)

// A Reader reads samples in InfluxDB line protocol, one sample per
// line.
//
// Its API is modeled on bufio.Scanner. Blank lines and lines starting
// with "#" are skipped. Integer fields are converted to float64;
// string and boolean fields are rejected because they cannot be
// aggregated.
//
// To construct a new Reader, either call NewReader, or call Reset on
// a zeroed Reader.
type Reader struct {
	s   *bufio.Scanner
	err error // current I/O error

	parser  *protocol.Parser
	handler *protocol.MetricHandler

	sample   *Sample
	fileName string
	line     int
}

// A SyntaxError represents a syntax error on a particular line of a
// sample file.
type SyntaxError struct {
	FileName string
	Line     int
	Msg      string
}

func (e *SyntaxError) Pos() (fileName string, line int) {
	return e.FileName, e.Line
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.FileName, e.Line, e.Msg)
}

// NewReader constructs a reader to parse line protocol from r.
// fileName is used in error messages; it is purely diagnostic.
func NewReader(r io.Reader, fileName string) *Reader {
	reader := new(Reader)
	reader.Reset(r, fileName)
	return reader
}

// Reset resets the reader to begin reading from a new input.
func (r *Reader) Reset(ior io.Reader, fileName string) {
	r.s = bufio.NewScanner(ior)
	// Line protocol exports regularly exceed the 64K default.
	r.s.Buffer(nil, 1<<20)
	if fileName == "" {
		fileName = "<unknown>"
	}
	r.err = nil
	r.fileName = fileName
	r.line = 0
	r.sample = nil
	if r.parser == nil {
		r.handler = protocol.NewMetricHandler()
		r.handler.SetTimePrecision(time.Nanosecond)
		// A missing timestamp must not silently become "now".
		r.handler.SetTimeFunc(func() time.Time { return time.Time{} })
		r.parser = protocol.NewParser(r.handler)
	}
}

func (r *Reader) newSyntaxError(msg string) *SyntaxError {
	return &SyntaxError{r.fileName, r.line, msg}
}

// Scan advances the reader to the next sample and reports whether a
// sample was read. The caller should use the Sample method to get the
// sample. If Scan reaches EOF or an I/O error occurs, it returns false,
// in which case the caller should use the Err method to check for
// errors.
//
// A malformed line is reported as a *SyntaxError through Err.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}
	for r.s.Scan() {
		r.line++
		line := bytes.TrimSpace(r.s.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		s, err := r.parseLine(line)
		if err != nil {
			r.err = err
			return false
		}
		r.sample = s
		return true
	}
	if err := r.s.Err(); err != nil {
		r.err = err
	}
	return false
}

func (r *Reader) parseLine(line []byte) (*Sample, error) {
	// The parser expects a terminated line.
	buf := make([]byte, 0, len(line)+1)
	buf = append(append(buf, line...), '\n')
	ms, err := r.parser.Parse(buf)
	if err != nil {
		return nil, r.newSyntaxError(err.Error())
	}
	if len(ms) != 1 {
		return nil, r.newSyntaxError(fmt.Sprintf("expected one point, found %d", len(ms)))
	}
	m := ms[0]
	if m.Time().IsZero() {
		return nil, r.newSyntaxError("missing timestamp")
	}

	s := &Sample{
		Dataset: m.Name(),
		Time:    m.Time().UTC(),
		Tags:    make(Tags),
		Fields:  make(Fields),
	}
	for _, tag := range m.TagList() {
		s.Tags[tag.Key] = tag.Value
	}
	for _, f := range m.FieldList() {
		switch v := f.Value.(type) {
		case float64:
			s.Fields[f.Key] = v
		case int64:
			s.Fields[f.Key] = float64(v)
		case uint64:
			s.Fields[f.Key] = float64(v)
		default:
			return nil, r.newSyntaxError(fmt.Sprintf("field %q is not numeric", f.Key))
		}
	}
	if err := s.Validate(); err != nil {
		return nil, r.newSyntaxError(err.Error())
	}
	return s, nil
}

// Sample returns the sample that was just read by Scan. The Reader
// does not reuse the returned Sample; callers may retain it.
func (r *Reader) Sample() *Sample {
	return r.sample
}

// Err returns the first error encountered by the Reader, or nil at a
// clean EOF.
func (r *Reader) Err() error {
	return r.err
}

// ReadAll reads every sample from r.
func ReadAll(r io.Reader, fileName string) ([]*Sample, error) {
	var out []*Sample
	reader := NewReader(r, fileName)
	for reader.Scan() {
		out = append(out, reader.Sample())
	}
	return out, reader.Err()
}
