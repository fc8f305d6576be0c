// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package commands implements the benchreport command tree.
package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/nosqlbench/perf/benchagg"
	"github.com/nosqlbench/perf/benchquery"
	"github.com/nosqlbench/perf/dashboard"
	"github.com/nosqlbench/perf/storage/backend"
	"github.com/nosqlbench/perf/storage/influx"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Execute runs the command named by os.Args.
func Execute() error {
	return newRootCmd().Execute()
}

// env holds the configuration shared by every subcommand.
type env struct {
	v *viper.Viper
}

func newRootCmd() *cobra.Command {
	e := &env{v: viper.New()}
	e.v.SetEnvPrefix("BENCHREPORT")
	e.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	e.v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:           "benchreport",
		Short:         "Query and compare NoSQL benchmark results",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := rootCmd.PersistentFlags()
	pf.StringSlice("files", nil, "line protocol files to load into memory")
	pf.String("driver", "sqlite3", "SQL driver for --dsn (sqlite3 or mysql)")
	pf.String("dsn", "", "SQL archive data source name")
	pf.String("influx-url", "", "InfluxDB server URL")
	pf.String("influx-token", "", "InfluxDB API token")
	pf.String("influx-org", influx.DefaultOrg, "InfluxDB organization")
	pf.String("influx-bucket", influx.DefaultBucket, "InfluxDB bucket")
	pf.String("influx-secret-project", "", "Google Cloud project holding --influx-secret")
	pf.String("influx-secret", "", "Secret Manager secret holding the InfluxDB token")
	pf.String("views", "", "YAML file of view definitions replacing the built-in views")
	pf.Duration("timeout", benchagg.DefaultTimeout, "per-query timeout")
	pf.StringP("range", "r", "", "time range, such as -24h or start/stop in RFC 3339 (default: each view's own)")
	pf.StringP("format", "f", "text", "output format: text, csv or json")
	e.v.BindPFlags(pf)
	for _, key := range []string{"influx-url", "influx-token", "influx-org", "influx-bucket"} {
		envKey := strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
		e.v.BindEnv(key, "BENCHREPORT_"+envKey, envKey)
	}

	rootCmd.AddCommand(summaryCmd(e))
	rootCmd.AddCommand(viewsCmd(e))
	rootCmd.AddCommand(runCmd(e))
	rootCmd.AddCommand(compareCmd(e))
	rootCmd.AddCommand(chartCmd(e))
	return rootCmd
}

func (e *env) backendConfig() backend.Config {
	cfg := backend.Config{
		Files:  e.v.GetStringSlice("files"),
		Driver: e.v.GetString("driver"),
		DSN:    e.v.GetString("dsn"),
		Influx: influx.Config{
			URL:     e.v.GetString("influx-url"),
			Token:   e.v.GetString("influx-token"),
			Org:     e.v.GetString("influx-org"),
			Bucket:  e.v.GetString("influx-bucket"),
			Timeout: e.v.GetDuration("timeout"),
		},
		SecretProject: e.v.GetString("influx-secret-project"),
		Secret:        e.v.GetString("influx-secret"),
	}
	if cfg.DSN == "" && cfg.Influx.URL == "" {
		if dsn, ok := backend.CloudSQLFromEnv(); ok {
			cfg.Driver, cfg.DSN = "mysql", dsn
		}
	}
	return cfg
}

// adapter opens the configured store and returns an adapter over it.
// The caller must close the returned store.
func (e *env) adapter(ctx context.Context) (*dashboard.Adapter, *backend.Store, error) {
	views := dashboard.DefaultViews()
	if path := e.v.GetString("views"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, err
		}
		views, err = dashboard.LoadViews(f)
		f.Close()
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	st, err := backend.Open(ctx, e.backendConfig())
	if err != nil {
		return nil, nil, err
	}
	a := dashboard.New(benchquery.DefaultCatalog(), st.Engine(e.v.GetDuration("timeout"), log.Printf), views)
	a.Logf = log.Printf
	return a, st, nil
}

func (e *env) timeRange() (benchquery.TimeRange, error) {
	s := e.v.GetString("range")
	if s == "" {
		return benchquery.TimeRange{}, nil
	}
	tr, err := benchquery.ParseTimeRange(s)
	if err != nil {
		return tr, &benchquery.InvalidSpecError{Param: "time_range", Msg: err.Error()}
	}
	return tr, nil
}

func (e *env) format() (string, error) {
	switch f := e.v.GetString("format"); f {
	case "text", "csv", "json":
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q", f)
	}
}
