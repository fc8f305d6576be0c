// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package diff compares expected and actual test output.
package diff

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Diff returns a human-readable description of the differences between
// want and got, or "" if they are equal.
//
// If the "diff" command is available, the result is a unified diff.
// Otherwise it falls back to reporting the first differing line.
func Diff(want, got string) string {
	if want == got {
		return ""
	}
	if _, err := exec.LookPath("diff"); err != nil {
		return firstLine(want, got)
	}
	names := make([]string, 2)
	for i, s := range []string{want, got} {
		f, err := os.CreateTemp("", "benchtest")
		if err != nil {
			return err.Error()
		}
		defer os.Remove(f.Name())
		_, err = f.WriteString(s)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err.Error()
		}
		names[i] = f.Name()
	}

	data, err := exec.Command("diff", "-u", names[0], names[1]).CombinedOutput()
	if len(data) > 0 {
		// diff exits non-zero when the inputs differ.
		return string(data)
	}
	if err != nil {
		return err.Error()
	}
	return firstLine(want, got)
}

func firstLine(want, got string) string {
	wl, gl := strings.Split(want, "\n"), strings.Split(got, "\n")
	for i := 0; i < len(wl) || i < len(gl); i++ {
		var w, g string
		if i < len(wl) {
			w = wl[i]
		}
		if i < len(gl) {
			g = gl[i]
		}
		if w != g {
			return fmt.Sprintf("line %d:\nwant: %q\ngot:  %q", i+1, w, g)
		}
	}
	return fmt.Sprintf("want: %q\ngot:  %q", want, got)
}
