// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Benchload loads benchmark samples into a sample store.
//
// Usage:
//
//	benchload [-v] [-file-tag key] [-dsn file.db | -influx-url url] file...
//
// Each input file holds samples in line protocol, one per line. Files
// ending in ".zst" are decompressed. The file "-" is standard input,
// and an input may be given as label=file with -file-tag.
//
// A SQL archive receives all files as one upload, which is committed
// only if every sample is valid. Benchload prints the upload ID. An
// InfluxDB bucket receives samples in batches of -batch.
//
// With -archive-bucket, the input files are also copied unchanged to
// that Cloud Storage bucket under uploads/<upload ID>/ once the load
// succeeds. InfluxDB loads are given a fresh ID.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/nosqlbench/perf/benchsample"
	"github.com/nosqlbench/perf/storage/backend"
	"github.com/nosqlbench/perf/storage/influx"
	"github.com/nosqlbench/perf/storage/memstore"
	"github.com/rs/xid"
)

var env = influx.ConfigFromEnv()

var (
	verbose = flag.Bool("v", false, "print verbose log messages")
	fileTag = flag.String("file-tag", "", "tag each sample with its input file under `key`")
	batch   = flag.Int("batch", 1000, "write InfluxDB samples `n` at a time")
	driver  = flag.String("driver", "sqlite3", "SQL `driver` for -dsn (sqlite3 or mysql)")
	dsn     = flag.String("dsn", "", "load into the SQL archive at `dsn`")

	influxURL     = flag.String("influx-url", os.Getenv("INFLUX_URL"), "load into the InfluxDB server at `url`")
	influxToken   = flag.String("influx-token", env.Token, "InfluxDB API `token`")
	influxOrg     = flag.String("influx-org", env.Org, "InfluxDB `organization`")
	influxBucket  = flag.String("influx-bucket", env.Bucket, "InfluxDB `bucket`")
	secretProject = flag.String("influx-secret-project", "", "Google Cloud `project` holding -influx-secret")
	secret        = flag.String("influx-secret", "", "read the InfluxDB token from Secret Manager `secret`")

	archiveBucket   = flag.String("archive-bucket", "", "copy the input files to Cloud Storage `bucket`")
	archiveEndpoint = flag.String("archive-endpoint", "", "Cloud Storage API `url` for -archive-bucket (emulators)")
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage of benchload:
	benchload [flags] file...
`)
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	log.SetPrefix("benchload: ")
	log.SetFlags(0)
	flag.Usage = usage
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		log.Fatal("no files to load")
	}

	cfg := backend.Config{
		Driver: *driver,
		DSN:    *dsn,
		Influx: influx.Config{
			URL:    *influxURL,
			Token:  *influxToken,
			Org:    *influxOrg,
			Bucket: *influxBucket,
		},
		SecretProject: *secretProject,
		Secret:        *secret,
	}
	if cfg.DSN == "" && cfg.Influx.URL == "" {
		if dsn, ok := backend.CloudSQLFromEnv(); ok {
			cfg.Driver, cfg.DSN = "mysql", dsn
		}
	}
	ctx := context.Background()
	st, err := backend.Open(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	start := time.Now()
	sc := &benchsample.Files{
		Paths:       files,
		AllowStdin:  true,
		AllowLabels: *fileTag != "",
		FileTag:     *fileTag,
	}
	res, err := load(ctx, st, sc, *batch)
	if err != nil {
		log.Fatal(err)
	}

	if *verbose {
		s := ""
		if len(files) != 1 {
			s = "s"
		}
		log.Printf("%d samples from %d file%s loaded in %.2f seconds.", res.Samples, len(files), s, time.Since(start).Seconds())
	}
	id := xid.New().String()
	if res.UploadID != 0 {
		id = strconv.FormatInt(res.UploadID, 10)
		fmt.Println(id)
	}

	if *archiveBucket != "" {
		fs, closeFS, err := openBucket(ctx, *archiveBucket, *archiveEndpoint)
		if err != nil {
			log.Fatal(err)
		}
		defer closeFS()
		names, err := archive(ctx, fs, id, files, *fileTag != "")
		if err != nil {
			log.Fatal(err)
		}
		if *verbose {
			for _, name := range names {
				log.Printf("archived gs://%s/%s", *archiveBucket, name)
			}
		}
	}
}

type loadResult struct {
	Samples  int
	UploadID int64
}

// load copies every sample of sc into st. Loading into an in-memory
// store is an error, since nothing would persist.
func load(ctx context.Context, st *backend.Store, sc memstore.Scanner, batchSize int) (loadResult, error) {
	var res loadResult
	switch st.Kind {
	case backend.KindSQL:
		u, err := st.SQL.NewUpload(ctx)
		if err != nil {
			return res, err
		}
		for sc.Scan() {
			if err := u.Insert(sc.Sample()); err != nil {
				u.Abort()
				return res, err
			}
		}
		if err := sc.Err(); err != nil {
			u.Abort()
			return res, err
		}
		if err := u.Commit(); err != nil {
			return res, err
		}
		res.Samples, res.UploadID = u.Count(), u.ID
		return res, nil

	case backend.KindInflux:
		if batchSize <= 0 {
			batchSize = 1
		}
		var pending []*benchsample.Sample
		flush := func() error {
			if len(pending) == 0 {
				return nil
			}
			if err := st.Influx.Write(ctx, pending...); err != nil {
				return err
			}
			res.Samples += len(pending)
			pending = pending[:0]
			return nil
		}
		for sc.Scan() {
			pending = append(pending, sc.Sample().Clone())
			if len(pending) == batchSize {
				if err := flush(); err != nil {
					return res, err
				}
			}
		}
		if err := sc.Err(); err != nil {
			return res, err
		}
		return res, flush()
	}
	return res, errors.New("no store configured; set -dsn or -influx-url")
}
