// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchagg

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrEmptyDataset is matched by errors reporting that the store
	// does not know a dataset at all.
	ErrEmptyDataset = errors.New("dataset does not exist")

	// ErrQueryTimeout is matched by errors reporting that the store
	// did not answer in time.
	ErrQueryTimeout = errors.New("query timed out")
)

// An EmptyDatasetError reports a dataset unknown to the store. A
// dataset that exists but has no matching samples is not an error.
type EmptyDatasetError struct {
	Dataset string
}

func (e *EmptyDatasetError) Error() string {
	return fmt.Sprintf("%s: %s", e.Dataset, ErrEmptyDataset)
}

func (e *EmptyDatasetError) Unwrap() error { return ErrEmptyDataset }

func (e *EmptyDatasetError) StatusCode() int { return http.StatusNotFound }

// A QueryTimeoutError reports that store access exceeded its bound.
// No partial result accompanies it.
type QueryTimeoutError struct {
	Dataset string
	Timeout time.Duration
	Err     error
}

func (e *QueryTimeoutError) Error() string {
	if e.Timeout > 0 {
		return fmt.Sprintf("%s: %s after %v", e.Dataset, ErrQueryTimeout, e.Timeout)
	}
	return fmt.Sprintf("%s: %s", e.Dataset, ErrQueryTimeout)
}

// Is reports whether target is ErrQueryTimeout. Unwrap exposes the
// underlying store error.
func (e *QueryTimeoutError) Is(target error) bool { return target == ErrQueryTimeout }

func (e *QueryTimeoutError) Unwrap() error { return e.Err }

func (e *QueryTimeoutError) StatusCode() int { return http.StatusGatewayTimeout }
