// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package influx serves benchmark samples from an InfluxDB 2 bucket.
//
// A Store is a benchagg.Source: Select fetches raw points and lets the
// engine aggregate them. It is also a benchagg.Aggregator: Aggregate
// renders the query as Flux and lets the server window and pivot.
package influx

import (
	"context"
	"fmt"
	"os"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/nosqlbench/perf/benchquery"
	"github.com/nosqlbench/perf/benchsample"
	"github.com/nosqlbench/perf/benchtable"
)

// Defaults used by ConfigFromEnv for unset variables.
const (
	DefaultURL    = "http://localhost:8086"
	DefaultOrg    = "ensa"
	DefaultBucket = "bench"
)

// Config describes how to reach the bucket holding benchmark samples.
type Config struct {
	URL    string
	Token  string
	Org    string
	Bucket string

	// Timeout bounds each HTTP request. Zero means the client default.
	Timeout time.Duration
}

// ConfigFromEnv returns a Config from INFLUX_URL, INFLUX_TOKEN,
// INFLUX_ORG and INFLUX_BUCKET.
func ConfigFromEnv() Config {
	return Config{
		URL:    getenv("INFLUX_URL", DefaultURL),
		Token:  os.Getenv("INFLUX_TOKEN"),
		Org:    getenv("INFLUX_ORG", DefaultOrg),
		Bucket: getenv("INFLUX_BUCKET", DefaultBucket),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// A Store reads and writes samples in one bucket. Measurements are
// datasets.
type Store struct {
	client influxdb2.Client
	query  api.QueryAPI
	write  api.WriteAPIBlocking
	bucket string
}

// Open returns a Store for cfg. It does not contact the server.
func Open(cfg Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("influx: missing server URL")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("influx: missing bucket")
	}
	opts := influxdb2.DefaultOptions()
	if cfg.Timeout > 0 {
		opts.SetHTTPRequestTimeout(uint((cfg.Timeout + time.Second - 1) / time.Second))
	}
	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, opts)
	return &Store{
		client: client,
		query:  client.QueryAPI(cfg.Org),
		write:  client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		bucket: cfg.Bucket,
	}, nil
}

// Close releases the client's resources.
func (s *Store) Close() {
	s.client.Close()
}

// HasDataset reports whether the bucket has a measurement named
// dataset.
func (s *Store) HasDataset(ctx context.Context, dataset string) (bool, error) {
	q := fmt.Sprintf(`import "influxdata/influxdb/schema"

schema.measurements(bucket: %s, start: 1970-01-01T00:00:00Z)
  |> filter(fn: (r) => r._value == %s)
`, benchquery.FluxString(s.bucket), benchquery.FluxString(dataset))
	res, err := s.query.Query(ctx, q)
	if err != nil {
		return false, err
	}
	defer res.Close()
	found := false
	for res.Next() {
		if v, ok := res.Record().Value().(string); ok && v == dataset {
			found = true
		}
	}
	return found, res.Err()
}

// Datasets returns the measurement names in the bucket.
func (s *Store) Datasets(ctx context.Context) ([]string, error) {
	q := fmt.Sprintf(`import "influxdata/influxdb/schema"

schema.measurements(bucket: %s, start: 1970-01-01T00:00:00Z)
`, benchquery.FluxString(s.bucket))
	res, err := s.query.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer res.Close()
	var names []string
	for res.Next() {
		if v, ok := res.Record().Value().(string); ok {
			names = append(names, v)
		}
	}
	return names, res.Err()
}

// Select returns the samples of dataset in [start, stop).
func (s *Store) Select(ctx context.Context, dataset string, start, stop time.Time) ([]*benchsample.Sample, error) {
	q := fmt.Sprintf(`from(bucket: %s)
  |> range(start: %s, stop: %s)
  |> filter(fn: (r) => r._measurement == %s)
`, benchquery.FluxString(s.bucket), start.UTC().Format(time.RFC3339Nano), stop.UTC().Format(time.RFC3339Nano), benchquery.FluxString(dataset))
	res, err := s.query.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer res.Close()
	return decodeSamples(dataset, res)
}

// Aggregate evaluates spec on the server.
func (s *Store) Aggregate(ctx context.Context, spec *benchquery.Spec, now time.Time) (*benchtable.Table, error) {
	res, err := s.query.Query(ctx, spec.Flux(s.bucket, now))
	if err != nil {
		return nil, err
	}
	defer res.Close()
	return decodeTable(spec, res)
}

// Write stores samples as points. Every sample is validated before any
// is sent.
func (s *Store) Write(ctx context.Context, samples ...*benchsample.Sample) error {
	points := make([]*write.Point, 0, len(samples))
	for _, smp := range samples {
		if err := smp.Validate(); err != nil {
			return err
		}
		fields := make(map[string]interface{}, len(smp.Fields))
		for k, v := range smp.Fields {
			fields[k] = v
		}
		points = append(points, influxdb2.NewPoint(smp.Dataset, smp.Tags, fields, smp.Time))
	}
	if len(points) == 0 {
		return nil
	}
	return s.write.WritePoint(ctx, points...)
}
