// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Localserver runs the benchmark comparison dashboard.
//
// Usage:
//
//	localserver [-addr address] [-views views.yaml] [-files a.lp,b.lp.zst]
//	            [-dsn file.db] [-influx-url url]
//
// With no store configured it serves an empty in-memory store. The
// Influx flags default to $INFLUX_URL, $INFLUX_TOKEN, $INFLUX_ORG and
// $INFLUX_BUCKET; $CLOUDSQL_* selects a Cloud SQL archive when -dsn is
// not given.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/nosqlbench/perf/analysis/app"
	"github.com/nosqlbench/perf/benchquery"
	"github.com/nosqlbench/perf/dashboard"
	"github.com/nosqlbench/perf/storage/backend"
	"github.com/nosqlbench/perf/storage/influx"
)

var env = influx.ConfigFromEnv()

var (
	addr      = flag.String("addr", "localhost:8080", "serve HTTP on `address`")
	viewsFile = flag.String("views", "", "load view definitions from YAML `file` instead of the built-in views")
	files     = flag.String("files", "", "comma-separated line protocol `files` to serve from memory")
	driver    = flag.String("driver", "sqlite3", "SQL `driver` for -dsn (sqlite3 or mysql)")
	dsn       = flag.String("dsn", "", "serve the SQL archive at `dsn`")
	timeout   = flag.Duration("timeout", 30*time.Second, "per-query `timeout`")

	influxURL     = flag.String("influx-url", os.Getenv("INFLUX_URL"), "serve the InfluxDB server at `url`")
	influxToken   = flag.String("influx-token", env.Token, "InfluxDB API `token`")
	influxOrg     = flag.String("influx-org", env.Org, "InfluxDB `organization`")
	influxBucket  = flag.String("influx-bucket", env.Bucket, "InfluxDB `bucket`")
	secretProject = flag.String("influx-secret-project", "", "Google Cloud `project` holding -influx-secret")
	secret        = flag.String("influx-secret", "", "read the InfluxDB token from Secret Manager `secret`")
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage of localserver:
	localserver [flags]
`)
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	log.SetPrefix("localserver: ")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 0 {
		flag.Usage()
	}

	views := dashboard.DefaultViews()
	if *viewsFile != "" {
		f, err := os.Open(*viewsFile)
		if err != nil {
			log.Fatal(err)
		}
		views, err = dashboard.LoadViews(f)
		f.Close()
		if err != nil {
			log.Fatalf("%s: %v", *viewsFile, err)
		}
	}

	cfg := backend.Config{
		Driver: *driver,
		DSN:    *dsn,
		Influx: influx.Config{
			URL:     *influxURL,
			Token:   *influxToken,
			Org:     *influxOrg,
			Bucket:  *influxBucket,
			Timeout: *timeout,
		},
		SecretProject: *secretProject,
		Secret:        *secret,
	}
	if *files != "" {
		cfg.Files = strings.Split(*files, ",")
	}
	if cfg.DSN == "" && cfg.Influx.URL == "" {
		if dsn, ok := backend.CloudSQLFromEnv(); ok {
			cfg.Driver, cfg.DSN = "mysql", dsn
		}
	}
	st, err := backend.Open(context.Background(), cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	adapter := dashboard.New(benchquery.DefaultCatalog(), st.Engine(*timeout, log.Printf), views)
	adapter.Logf = log.Printf
	a := app.New(adapter, log.Default())
	a.RegisterOnMux(http.DefaultServeMux)

	log.Printf("Serving %s store; listening on %s", st.Kind, *addr)

	log.Fatal(http.ListenAndServe(*addr, nil))
}
