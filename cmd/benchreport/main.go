// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Benchreport prints benchmark comparison views from the command line.
//
// Usage:
//
//	benchreport summary [--range -30d]
//	benchreport views [--yaml]
//	benchreport run [--range -24h] [--format text|csv|json] [--tag key:value] view...
//	benchreport run --all [--parallel 4]
//	benchreport compare [--all] comparison...
//	benchreport chart --out latency.png view
//
// The store is chosen by --files, --dsn or --influx-url. Every flag may
// also be set through a BENCHREPORT_ environment variable, such as
// BENCHREPORT_DSN, and the Influx flags also read INFLUX_URL,
// INFLUX_TOKEN, INFLUX_ORG and INFLUX_BUCKET.
package main

import (
	"log"
	"os"

	"github.com/nosqlbench/perf/cmd/benchreport/commands"
)

func main() {
	log.SetPrefix("benchreport: ")
	log.SetFlags(0)
	if err := commands.Execute(); err != nil {
		log.Print(err)
		os.Exit(1)
	}
}
