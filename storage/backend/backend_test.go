// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nosqlbench/perf/storage/influx"
)

const data = `scenario1_crud,database=Redis,operation=insert latency_ms=5 1767225600000000000
scenario1_crud,database=MongoDB,operation=insert latency_ms=9 1767225600000000000
`

func TestOpenFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crud.lp")
	if err := os.WriteFile(path, []byte(data), 0666); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	st, err := Open(ctx, Config{Files: []string{path}})
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	if st.Kind != KindMemory {
		t.Errorf("Kind = %s, want %s", st.Kind, KindMemory)
	}
	ok, err := st.Source.HasDataset(ctx, "scenario1_crud")
	if err != nil || !ok {
		t.Errorf("HasDataset = %v, %v; want true, nil", ok, err)
	}
	if e := st.Engine(time.Second, nil); e.Pushdown {
		t.Errorf("memory engine pushes down")
	}
}

func TestOpenEmpty(t *testing.T) {
	st, err := Open(context.Background(), Config{})
	if err != nil {
		t.Fatal(err)
	}
	if got := st.Memory.Datasets(); len(got) != 0 {
		t.Errorf("empty store has datasets %v", got)
	}
}

func TestOpenSQL(t *testing.T) {
	ctx := context.Background()
	st, err := Open(ctx, Config{DSN: ":memory:"})
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	if st.Kind != KindSQL || st.SQL == nil {
		t.Fatalf("got %+v, want a SQL store", st)
	}
	if n, err := st.SQL.CountUploads(ctx); err != nil || n != 0 {
		t.Errorf("CountUploads = %d, %v", n, err)
	}
}

func TestOpenInflux(t *testing.T) {
	st, err := Open(context.Background(), Config{Influx: influx.Config{URL: "http://localhost:8086", Bucket: "bench"}})
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	if st.Kind != KindInflux {
		t.Errorf("Kind = %s, want %s", st.Kind, KindInflux)
	}
	if e := st.Engine(0, nil); !e.Pushdown {
		t.Errorf("influx engine does not push down")
	}
}

func TestOpenConflict(t *testing.T) {
	_, err := Open(context.Background(), Config{DSN: ":memory:", Influx: influx.Config{URL: "http://localhost:8086"}})
	if err == nil {
		t.Errorf("Open with DSN and Influx URL succeeded")
	}
}

func TestOpenBadFile(t *testing.T) {
	_, err := Open(context.Background(), Config{Files: []string{filepath.Join(t.TempDir(), "missing.lp")}})
	if err == nil {
		t.Errorf("Open with missing file succeeded")
	}
}

func TestCloudSQLFromEnv(t *testing.T) {
	t.Setenv("CLOUDSQL_CONNECTION_NAME", "")
	if _, ok := CloudSQLFromEnv(); ok {
		t.Errorf("CloudSQLFromEnv ok with no instance")
	}
	t.Setenv("CLOUDSQL_CONNECTION_NAME", "nosqlbench:us-central1:bench-archive")
	t.Setenv("CLOUDSQL_USER", "bench")
	t.Setenv("CLOUDSQL_PASSWORD", "")
	t.Setenv("CLOUDSQL_DATABASE", "archive")
	dsn, ok := CloudSQLFromEnv()
	if want := "bench:@cloudsql(nosqlbench:us-central1:bench-archive)/archive"; !ok || dsn != want {
		t.Errorf("CloudSQLFromEnv = %q, %v; want %q, true", dsn, ok, want)
	}
}
