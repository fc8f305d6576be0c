// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import (
	"database/sql"
	"time"
)

func DBSQL(db *DB) *sql.DB {
	return db.sql
}

// SetNow overrides the upload creation clock and returns a function
// restoring it.
func SetNow(t time.Time) func() {
	old := now
	now = func() time.Time { return t }
	return func() { now = old }
}
