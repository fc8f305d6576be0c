// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dashboard

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/nosqlbench/perf/benchagg"
	"github.com/nosqlbench/perf/benchquery"
)

// ErrUnknownView is matched by errors naming a view that does not
// exist.
var ErrUnknownView = errors.New("unknown view")

// An UnknownViewError reports a view name the adapter does not serve.
type UnknownViewError struct {
	Name string
}

func (e *UnknownViewError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownView, e.Name)
}

func (e *UnknownViewError) Unwrap() error { return ErrUnknownView }

func (e *UnknownViewError) StatusCode() int { return http.StatusNotFound }

// Failure kinds.
const (
	KindInvalidSpec  = "invalid-spec"
	KindEmptyDataset = "empty-dataset"
	KindQueryTimeout = "query-timeout"
	KindUnknownView  = "unknown-view"
	KindInternal     = "internal"
)

// A Failure is the presentation form of an error. The presentation
// layer decides whether to show an empty chart or an error banner.
type Failure struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Describe classifies err.
func Describe(err error) Failure {
	f := Failure{Kind: KindInternal, Message: err.Error()}
	switch {
	case errors.Is(err, benchquery.ErrInvalidSpec):
		f.Kind = KindInvalidSpec
	case errors.Is(err, benchagg.ErrEmptyDataset):
		f.Kind = KindEmptyDataset
	case errors.Is(err, benchagg.ErrQueryTimeout):
		f.Kind = KindQueryTimeout
	case errors.Is(err, ErrUnknownView):
		f.Kind = KindUnknownView
	}
	return f
}

// StatusCode returns the HTTP status matching f's kind.
func (f Failure) StatusCode() int {
	switch f.Kind {
	case KindInvalidSpec:
		return http.StatusBadRequest
	case KindEmptyDataset, KindUnknownView:
		return http.StatusNotFound
	case KindQueryTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (f Failure) Error() string {
	return f.Kind + ": " + f.Message
}
