// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchquery

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrInvalidSpec is matched (via errors.Is) by every error Build
// returns.
var ErrInvalidSpec = errors.New("invalid query spec")

// An InvalidSpecError describes a malformed query. It is a
// programmer or configuration error and is never worth retrying.
type InvalidSpecError struct {
	// Param is the offending parameter, such as "group_by".
	Param string
	Msg   string
}

func (e *InvalidSpecError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidSpec, e.Param, e.Msg)
}

func (e *InvalidSpecError) Unwrap() error {
	return ErrInvalidSpec
}

// StatusCode returns the HTTP status for this error.
func (e *InvalidSpecError) StatusCode() int {
	return http.StatusBadRequest
}

func invalid(param, format string, args ...interface{}) error {
	return &InvalidSpecError{Param: param, Msg: fmt.Sprintf(format, args...)}
}
