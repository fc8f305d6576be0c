// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package backend opens the sample store a command is configured for:
// line protocol files held in memory, a SQL archive, or an InfluxDB
// bucket.
package backend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	_ "github.com/GoogleCloudPlatform/cloudsql-proxy/proxy/dialers/mysql"
	_ "github.com/go-sql-driver/mysql"
	"github.com/nosqlbench/perf/benchagg"
	"github.com/nosqlbench/perf/benchsample"
	"github.com/nosqlbench/perf/storage/db"
	_ "github.com/nosqlbench/perf/storage/db/sqlite3"
	"github.com/nosqlbench/perf/storage/influx"
	"github.com/nosqlbench/perf/storage/memstore"
)

// Store kinds.
const (
	KindMemory = "memory"
	KindSQL    = "sql"
	KindInflux = "influx"
)

// Config selects a store. At most one of DSN and Influx.URL may be
// set. With neither, Files are loaded into memory; with no files the
// store is empty.
type Config struct {
	Files []string

	// Driver is "sqlite3" (the default) or "mysql".
	Driver string
	DSN    string

	Influx influx.Config

	// SecretProject and Secret name a Secret Manager secret holding
	// the Influx token. Secret may also be a full resource name.
	SecretProject string
	Secret        string
}

// A Store is an open sample store.
type Store struct {
	Kind   string
	Source benchagg.Source

	// Exactly one of these is set, matching Kind.
	Memory *memstore.Store
	SQL    *db.DB
	Influx *influx.Store
}

// Open opens the store described by cfg.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	switch {
	case cfg.DSN != "" && cfg.Influx.URL != "":
		return nil, errors.New("both a SQL DSN and an Influx URL are configured")
	case cfg.Influx.URL != "":
		if cfg.Secret != "" {
			tok, err := influx.TokenFromSecret(ctx, cfg.SecretProject, cfg.Secret)
			if err != nil {
				return nil, err
			}
			cfg.Influx.Token = tok
		}
		st, err := influx.Open(cfg.Influx)
		if err != nil {
			return nil, err
		}
		return &Store{Kind: KindInflux, Source: st, Influx: st}, nil
	case cfg.DSN != "":
		driver := cfg.Driver
		if driver == "" {
			driver = "sqlite3"
		}
		d, err := db.OpenSQL(driver, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		return &Store{Kind: KindSQL, Source: d, SQL: d}, nil
	}
	st := memstore.New()
	if len(cfg.Files) > 0 {
		if _, err := st.Load(&benchsample.Files{Paths: cfg.Files}); err != nil {
			return nil, err
		}
	}
	return &Store{Kind: KindMemory, Source: st, Memory: st}, nil
}

// Engine returns an engine over s. Influx stores aggregate on the
// server.
func (s *Store) Engine(timeout time.Duration, logf func(string, ...interface{})) *benchagg.Engine {
	return &benchagg.Engine{
		Source:   s.Source,
		Timeout:  timeout,
		Pushdown: s.Kind == KindInflux,
		Logf:     logf,
	}
}

// Close releases the store's connections.
func (s *Store) Close() error {
	switch {
	case s.SQL != nil:
		return s.SQL.Close()
	case s.Influx != nil:
		s.Influx.Close()
	}
	return nil
}

// CloudSQLFromEnv returns a mysql DSN for the Cloud SQL instance named
// by CLOUDSQL_CONNECTION_NAME, CLOUDSQL_USER and CLOUDSQL_DATABASE.
// CLOUDSQL_PASSWORD may be empty. ok is false if the instance is not
// configured.
func CloudSQLFromEnv() (dsn string, ok bool) {
	var (
		connectionName = os.Getenv("CLOUDSQL_CONNECTION_NAME")
		user           = os.Getenv("CLOUDSQL_USER")
		password       = os.Getenv("CLOUDSQL_PASSWORD")
		dbName         = os.Getenv("CLOUDSQL_DATABASE")
	)
	if connectionName == "" || user == "" || dbName == "" {
		return "", false
	}
	return fmt.Sprintf("%s:%s@cloudsql(%s)/%s", user, password, connectionName, dbName), true
}
