// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchquery

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// A TimeRange is the half-open interval [start, stop) a query covers.
// It is either relative to the moment the query runs ("the last 24
// hours") or absolute.
//
// The zero TimeRange is empty and is rejected by Build; callers use
// it to mean "the default range" where one exists.
type TimeRange struct {
	last        time.Duration
	start, stop time.Time
}

// Last returns the relative range covering the duration d before the
// query runs.
func Last(d time.Duration) TimeRange {
	return TimeRange{last: d}
}

// Between returns the absolute range [start, stop).
func Between(start, stop time.Time) TimeRange {
	return TimeRange{start: start, stop: stop}
}

// ParseTimeRange parses a range of the form "-24h" (or "24h"; a "d"
// suffix counts days) or "start/stop" with RFC 3339 timestamps.
func ParseTimeRange(s string) (TimeRange, error) {
	if i := strings.Index(s, "/"); i >= 0 {
		start, err := time.Parse(time.RFC3339Nano, s[:i])
		if err != nil {
			return TimeRange{}, fmt.Errorf("bad range start: %w", err)
		}
		stop, err := time.Parse(time.RFC3339Nano, s[i+1:])
		if err != nil {
			return TimeRange{}, fmt.Errorf("bad range stop: %w", err)
		}
		return Between(start, stop), nil
	}
	d, err := parseDuration(strings.TrimPrefix(s, "-"))
	if err != nil {
		return TimeRange{}, fmt.Errorf("bad range %q: %w", s, err)
	}
	return Last(d), nil
}

func parseDuration(s string) (time.Duration, error) {
	if strings.HasSuffix(s, "d") {
		n, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0, err
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

// IsZero reports whether r is the zero TimeRange.
func (r TimeRange) IsZero() bool {
	return r.last == 0 && r.start.IsZero() && r.stop.IsZero()
}

// Relative returns the duration of a relative range and true, or 0
// and false for an absolute range.
func (r TimeRange) Relative() (time.Duration, bool) {
	if r.start.IsZero() && r.stop.IsZero() {
		return r.last, true
	}
	return 0, false
}

// Resolve returns the absolute bounds of r as of now.
func (r TimeRange) Resolve(now time.Time) (start, stop time.Time) {
	if d, ok := r.Relative(); ok {
		return now.Add(-d), now
	}
	return r.start, r.stop
}

func (r TimeRange) valid() error {
	if d, ok := r.Relative(); ok {
		if d <= 0 {
			return fmt.Errorf("relative range %v is empty", d)
		}
		return nil
	}
	if r.start.IsZero() || r.stop.IsZero() {
		return fmt.Errorf("absolute range needs both start and stop")
	}
	if !r.start.Before(r.stop) {
		return fmt.Errorf("range start %s is not before stop %s", r.start.Format(time.RFC3339), r.stop.Format(time.RFC3339))
	}
	return nil
}

// String returns r in the form accepted by ParseTimeRange.
func (r TimeRange) String() string {
	if d, ok := r.Relative(); ok {
		return "-" + fluxDuration(d)
	}
	return r.start.Format(time.RFC3339Nano) + "/" + r.stop.Format(time.RFC3339Nano)
}
