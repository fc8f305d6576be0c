// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nosqlbench/perf/benchsample"
	"github.com/nosqlbench/perf/storage/backend"
	"github.com/nosqlbench/perf/storage/influx"
)

const data = `scenario1_crud,database=Redis,operation=insert latency_ms=5 1767225600000000000
scenario1_crud,database=MongoDB,operation=insert latency_ms=9 1767225600000000000
scenario4_keyvalue,database=Redis get_latency_ms=0.25 1767225600000000000
`

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func openSQL(t *testing.T) *backend.Store {
	t.Helper()
	st, err := backend.Open(context.Background(), backend.Config{DSN: ":memory:"})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestLoadSQL(t *testing.T) {
	ctx := context.Background()
	st := openSQL(t)
	res, err := load(ctx, st, benchsample.NewReader(strings.NewReader(data), "data"), 0)
	if err != nil {
		t.Fatal(err)
	}
	if res.Samples != 3 || res.UploadID == 0 {
		t.Errorf("load = %+v, want 3 samples and an upload ID", res)
	}
	got, err := st.SQL.Select(ctx, "scenario1_crud", t0, t0.Add(time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("archive holds %d scenario1_crud samples, want 2", len(got))
	}
}

func TestLoadSQLInvalid(t *testing.T) {
	ctx := context.Background()
	st := openSQL(t)
	bad := data + "scenario1_crud,operation=insert latency_ms=1 1767225600000000000\n"
	if _, err := load(ctx, st, benchsample.NewReader(strings.NewReader(bad), "bad"), 0); err == nil {
		t.Fatal("load of a sample without database tag succeeded")
	}
	if n, err := st.SQL.CountUploads(ctx); err != nil || n != 0 {
		t.Errorf("CountUploads = %d, %v; want 0 after a failed load", n, err)
	}
}

func TestLoadInflux(t *testing.T) {
	var (
		mu     sync.Mutex
		writes []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		writes = append(writes, string(body))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	st, err := backend.Open(context.Background(), backend.Config{
		Influx: influx.Config{URL: srv.URL, Token: "token", Org: influx.DefaultOrg, Bucket: influx.DefaultBucket},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	res, err := load(context.Background(), st, benchsample.NewReader(strings.NewReader(data), "data"), 2)
	if err != nil {
		t.Fatal(err)
	}
	if res.Samples != 3 || res.UploadID != 0 {
		t.Errorf("load = %+v, want 3 samples", res)
	}
	if len(writes) != 2 {
		t.Fatalf("got %d write requests, want 2", len(writes))
	}
	if !strings.HasPrefix(writes[1], "scenario4_keyvalue,database=Redis get_latency_ms=0.25") {
		t.Errorf("second batch is %q", writes[1])
	}
}

func TestLoadMemory(t *testing.T) {
	st, err := backend.Open(context.Background(), backend.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := load(context.Background(), st, benchsample.NewReader(strings.NewReader(data), "data"), 0); err == nil {
		t.Errorf("load into memory succeeded")
	}
}

type memObjects struct {
	objects map[string]string
	meta    map[string]map[string]string
}

type memObject struct {
	strings.Builder
	fs   *memObjects
	name string
}

func (o *memObject) Close() error {
	o.fs.objects[o.name] = o.String()
	return nil
}

func (m *memObjects) NewWriter(ctx context.Context, name string, meta map[string]string) (io.WriteCloser, error) {
	m.meta[name] = meta
	return &memObject{fs: m, name: name}, nil
}

func TestArchive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crud.lp")
	if err := os.WriteFile(path, []byte(data), 0666); err != nil {
		t.Fatal(err)
	}
	fs := &memObjects{objects: map[string]string{}, meta: map[string]map[string]string{}}
	names, err := archive(context.Background(), fs, "7", []string{path, "run2=" + path}, true)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"uploads/7/0-crud.lp", "uploads/7/1-crud.lp"}
	if strings.Join(names, " ") != strings.Join(want, " ") {
		t.Fatalf("archive = %v, want %v", names, want)
	}
	for _, name := range want {
		if fs.objects[name] != data {
			t.Errorf("%s holds %q", name, fs.objects[name])
		}
	}
	if got := fs.meta[want[1]]["label"]; got != "run2" {
		t.Errorf("label of %s = %q, want run2", want[1], got)
	}
	if got := fs.meta[want[0]]["uploadid"]; got != "7" {
		t.Errorf("uploadid = %q, want 7", got)
	}

	if _, err := archive(context.Background(), fs, "8", []string{"-"}, false); err == nil {
		t.Errorf("archiving standard input succeeded")
	}
}
