// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dbtest opens throwaway sample archives for tests.
package dbtest

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"flag"
	"fmt"
	"strings"
	"testing"

	_ "github.com/GoogleCloudPlatform/cloudsql-proxy/proxy/dialers/mysql"
	"github.com/nosqlbench/perf/benchsample"
	"github.com/nosqlbench/perf/storage/db"
	_ "github.com/nosqlbench/perf/storage/db/sqlite3"
)

var (
	cloud    = flag.Bool("cloud", false, "run archive tests against Cloud SQL instead of in-memory SQLite")
	cloudsql = flag.String("cloudsql", "nosqlbench:us-central1:bench-archive", "Cloud SQL `instance` for -cloud")
)

// cloudDSN creates a scratch database on the -cloudsql instance and
// drops it when t finishes.
func cloudDSN(t testing.TB) string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		t.Fatal(err)
	}
	name := "bench-test-" + base64.RawURLEncoding.EncodeToString(buf)
	server := fmt.Sprintf("root:@cloudsql(%s)/", *cloudsql)

	admin, err := sql.Open("mysql", server)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := admin.Exec("CREATE DATABASE `" + name + "`"); err != nil {
		admin.Close()
		t.Fatal(err)
	}
	t.Cleanup(func() {
		defer admin.Close()
		if _, err := admin.Exec("DROP DATABASE `" + name + "`"); err != nil {
			t.Errorf("drop %s: %v", name, err)
		}
	})
	t.Logf("archive database %q", name)
	return server + name
}

// NewDB returns an empty archive, SQLite in memory or a scratch Cloud
// SQL database with -cloud. It is closed when t finishes.
func NewDB(t testing.TB) *db.DB {
	t.Helper()
	driver, dsn := "sqlite3", ":memory:"
	if *cloud {
		driver, dsn = "mysql", cloudDSN(t)
	}
	d, err := db.OpenSQL(driver, dsn)
	if err != nil {
		t.Fatalf("open %s archive: %v", driver, err)
	}
	t.Cleanup(func() { d.Close() })

	ctx := context.Background()
	uploads, err := d.CountUploads(ctx)
	if err != nil {
		t.Fatal(err)
	}
	datasets, err := d.Datasets(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if uploads != 0 || len(datasets) != 0 {
		t.Fatalf("new archive has %d upload(s) and datasets %v", uploads, datasets)
	}
	return d
}

// Load stores the line protocol samples in text as one committed
// upload.
func Load(t testing.TB, d *db.DB, text string) *db.Upload {
	t.Helper()
	samples, err := benchsample.ReadAll(strings.NewReader(text), "data")
	if err != nil {
		t.Fatal(err)
	}
	u, err := d.NewUpload(context.Background())
	if err != nil {
		t.Fatalf("NewUpload: %v", err)
	}
	for _, s := range samples {
		if err := u.Insert(s); err != nil {
			u.Abort()
			t.Fatalf("Insert %v: %v", s, err)
		}
	}
	if err := u.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return u
}
