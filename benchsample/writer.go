// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchsample

import (
	"bytes"
	"io"
	"time"

	protocol "github.com/influxdata/line-protocol"
)

// A Writer writes samples in line protocol. Fields are written in
// sorted order so that output is deterministic.
type Writer struct {
	w   io.Writer
	buf bytes.Buffer
	enc *protocol.Encoder
}

// NewWriter returns a writer that writes samples to w.
func NewWriter(w io.Writer) *Writer {
	wr := &Writer{w: w}
	wr.enc = newEncoder(&wr.buf)
	return wr
}

func newEncoder(w io.Writer) *protocol.Encoder {
	enc := protocol.NewEncoder(w)
	enc.SetFieldSortOrder(protocol.SortFields)
	enc.SetPrecision(time.Nanosecond)
	enc.FailOnFieldErr(true)
	return enc
}

// Write writes a single sample.
func (w *Writer) Write(s *Sample) error {
	if err := s.Validate(); err != nil {
		return err
	}
	w.buf.Reset()
	m, err := toMetric(s)
	if err != nil {
		return err
	}
	if _, err := w.enc.Encode(m); err != nil {
		return err
	}
	_, err = w.w.Write(w.buf.Bytes())
	return err
}

func toMetric(s *Sample) (protocol.Metric, error) {
	fields := make(map[string]interface{}, len(s.Fields))
	for k, v := range s.Fields {
		fields[k] = v
	}
	return protocol.New(s.Dataset, s.Tags, fields, s.Time)
}

// appendLine appends the line protocol form of s, without the trailing
// newline, to b.
func appendLine(b []byte, s *Sample) ([]byte, error) {
	var buf bytes.Buffer
	m, err := toMetric(s)
	if err != nil {
		return b, err
	}
	if _, err := newEncoder(&buf).Encode(m); err != nil {
		return b, err
	}
	return append(b, bytes.TrimSuffix(buf.Bytes(), []byte("\n"))...), nil
}
