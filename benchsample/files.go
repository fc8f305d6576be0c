// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchsample

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Files scans the samples of several line protocol files in order.
// Names ending in ".zst" are zstd-compressed.
//
// With FileTag set, every sample is tagged with the label of its input
// under that key. The label is the path as given, with "#N" appended
// when the same path is listed more than once. If AllowLabels is set a
// path may be written label=path to choose the label explicitly.
type Files struct {
	Paths []string

	// AllowStdin reads "-" as standard input, and reads standard
	// input when Paths is empty.
	AllowStdin  bool
	AllowLabels bool
	FileTag     string

	pending []input // nil before the first Scan
	reader  Reader
	cur     *input
	closers []io.Closer
	err     error
}

type input struct {
	path, label string
	stdin       bool
}

// plan resolves Paths into the inputs to read.
func (f *Files) plan() []input {
	paths := f.Paths
	if f.AllowStdin && len(paths) == 0 {
		paths = []string{"-"}
	}
	ins := make([]input, 0, len(paths))
	seen := make(map[string]int)
	explicit := make([]bool, 0, len(paths))
	for _, p := range paths {
		in := input{path: p, label: p}
		if label, path, ok := strings.Cut(p, "="); ok && f.AllowLabels {
			in.path, in.label = path, label
			explicit = append(explicit, true)
		} else {
			seen[p]++
			explicit = append(explicit, false)
		}
		in.stdin = f.AllowStdin && in.path == "-"
		ins = append(ins, in)
	}

	next := make(map[string]int)
	for i := range ins {
		if explicit[i] || seen[ins[i].path] < 2 {
			continue
		}
		p := ins[i].path
		ins[i].label = fmt.Sprintf("%s#%d", p, next[p])
		next[p]++
	}
	return ins
}

// open starts reading in, returning the decompressed stream.
func (f *Files) open(in *input) (io.Reader, error) {
	var r io.Reader = os.Stdin
	if !in.stdin {
		file, err := os.Open(in.path)
		if err != nil {
			return nil, err
		}
		f.closers = append(f.closers, file)
		r = file
	}
	if strings.HasSuffix(in.path, ".zst") {
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", in.path, err)
		}
		f.closers = append(f.closers, zr.IOReadCloser())
		r = zr
	}
	return r, nil
}

func (f *Files) release() {
	for i := len(f.closers) - 1; i >= 0; i-- {
		f.closers[i].Close()
	}
	f.closers = f.closers[:0]
	f.cur = nil
}

// Scan advances to the next sample, moving on to the next input at
// the end of each one. It returns false at the end of the last input
// or on the first error, which Err then reports.
func (f *Files) Scan() bool {
	if f.err != nil {
		return false
	}
	if f.pending == nil {
		f.pending = f.plan()
	}
	for {
		if f.cur == nil {
			if len(f.pending) == 0 {
				return false
			}
			in := f.pending[0]
			f.pending = f.pending[1:]
			r, err := f.open(&in)
			if err != nil {
				f.release()
				f.err = err
				return false
			}
			f.cur = &in
			f.reader.Reset(r, in.path)
		}

		if f.reader.Scan() {
			if f.FileTag != "" {
				f.reader.Sample().Tags[f.FileTag] = f.cur.label
			}
			return true
		}
		err := f.reader.Err()
		f.release()
		if err != nil {
			f.err = err
			return false
		}
	}
}

// Sample returns the sample read by the last successful Scan.
func (f *Files) Sample() *Sample { return f.reader.Sample() }

// Err returns the error that stopped Scan, or nil if every input was
// read to the end.
func (f *Files) Err() error { return f.err }
