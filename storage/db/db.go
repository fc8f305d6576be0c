// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package db provides a SQL archive of benchmark samples. It serves
// as a sample source for the aggregation engine when InfluxDB is not
// available, and as long-term storage for exported runs.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/nosqlbench/perf/benchsample"
)

// DB is a sample archive in a SQL database. Methods may be called
// concurrently.
type DB struct {
	sql *sql.DB

	insertUpload *sql.Stmt
	insertSample *sql.Stmt
	hasDataset   *sql.Stmt
}

// OpenSQL opens the archive at dataSourceName with the named
// database/sql driver and creates its tables if they do not exist.
// The sqlite3 driver gets SQLite syntax; every other driver is
// addressed in MySQL syntax.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	conn, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if setup, ok := driverSetup[driverName]; ok {
		if err := setup(conn); err != nil {
			conn.Close()
			return nil, err
		}
	}
	d := &DB{sql: conn}
	if err := d.init(dialectFor(driverName)); err != nil {
		conn.Close()
		return nil, err
	}
	return d, nil
}

var driverSetup = map[string]func(*sql.DB) error{}

// RegisterOpenHook arranges for hook to run on every connection pool
// opened with driverName, before any table is created. Call it from
// an init function.
func RegisterOpenHook(driverName string, hook func(*sql.DB) error) {
	driverSetup[driverName] = hook
}

// A dialect holds the DDL fragments that differ between engines.
type dialect struct {
	serial      string // auto-incrementing primary key column type
	inlineIndex string // index clause inside CREATE TABLE Samples
	extra       []string
}

func dialectFor(driverName string) dialect {
	if driverName == "sqlite3" {
		return dialect{
			serial: "INTEGER PRIMARY KEY AUTOINCREMENT",
			extra:  []string{"CREATE INDEX IF NOT EXISTS SamplesDatasetTime ON Samples(Dataset, Time)"},
		}
	}
	return dialect{
		serial:      "SERIAL PRIMARY KEY AUTO_INCREMENT",
		inlineIndex: "INDEX (Dataset, Time),",
	}
}

func (d dialect) schema() []string {
	child := func(table, valueType string) string {
		return "CREATE TABLE IF NOT EXISTS " + table + ` (
	SampleID BIGINT UNSIGNED,
	Name VARCHAR(255),
	Value ` + valueType + `,
	PRIMARY KEY (SampleID, Name),
	FOREIGN KEY (SampleID) REFERENCES Samples(SampleID) ON UPDATE CASCADE ON DELETE CASCADE
)`
	}
	stmts := []string{
		"CREATE TABLE IF NOT EXISTS Uploads (UploadID " + d.serial + ", Created BIGINT)",
		`CREATE TABLE IF NOT EXISTS Samples (
	SampleID ` + d.serial + `,
	UploadID BIGINT UNSIGNED,
	Dataset VARCHAR(255),
	Time BIGINT,
	` + d.inlineIndex + `
	FOREIGN KEY (UploadID) REFERENCES Uploads(UploadID) ON UPDATE CASCADE ON DELETE CASCADE
)`,
		child("SampleTags", "VARCHAR(8192)"),
		child("SampleFields", "DOUBLE"),
	}
	return append(stmts, d.extra...)
}

// init creates missing tables and prepares the statements used on
// every insert.
func (db *DB) init(d dialect) error {
	for _, q := range d.schema() {
		if _, err := db.sql.Exec(q); err != nil {
			return fmt.Errorf("creating archive schema: %w", err)
		}
	}
	for _, st := range []struct {
		dst   **sql.Stmt
		query string
	}{
		{&db.insertUpload, "INSERT INTO Uploads(Created) VALUES (?)"},
		{&db.insertSample, "INSERT INTO Samples(UploadID, Dataset, Time) VALUES (?, ?, ?)"},
		{&db.hasDataset, "SELECT 1 FROM Samples WHERE Dataset = ? LIMIT 1"},
	} {
		stmt, err := db.sql.Prepare(st.query)
		if err != nil {
			return fmt.Errorf("preparing %q: %w", st.query, err)
		}
		*st.dst = stmt
	}
	return nil
}

// now is a hook for testing.
var now = time.Now

// An Upload is a batch of samples stored together, typically one
// input file. Samples inserted into an Upload become visible when it
// is committed.
type Upload struct {
	// ID is the upload's identifier.
	ID int64

	// count is the number of samples inserted so far.
	count int
	tx    *sql.Tx
	db    *DB
}

// NewUpload returns an upload for storing new samples.
func (db *DB) NewUpload(ctx context.Context) (*Upload, error) {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	res, err := tx.StmtContext(ctx, db.insertUpload).Exec(now().UnixNano())
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	return &Upload{ID: id, tx: tx, db: db}, nil
}

// Insert adds one sample to the upload.
func (u *Upload) Insert(s *benchsample.Sample) error {
	if err := s.Validate(); err != nil {
		return err
	}
	res, err := u.tx.Stmt(u.db.insertSample).Exec(u.ID, s.Dataset, s.Time.UnixNano())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	var args []interface{}
	for _, k := range s.Tags.Keys() {
		args = append(args, id, k, s.Tags[k])
	}
	if len(args) > 0 {
		if _, err := u.tx.Exec(multiInsert("SampleTags", len(args)/3), args...); err != nil {
			return err
		}
	}
	args = args[:0]
	for _, k := range s.Fields.Names() {
		args = append(args, id, k, s.Fields[k])
	}
	if _, err := u.tx.Exec(multiInsert("SampleFields", len(args)/3), args...); err != nil {
		return err
	}
	u.count++
	return nil
}

func multiInsert(table string, rows int) string {
	q := "INSERT INTO " + table + " VALUES " + strings.Repeat("(?, ?, ?), ", rows)
	return strings.TrimSuffix(q, ", ")
}

// Count returns the number of samples inserted into u.
func (u *Upload) Count() int {
	return u.count
}

// Commit makes the upload's samples visible.
func (u *Upload) Commit() error {
	return u.tx.Commit()
}

// Abort discards the upload.
func (u *Upload) Abort() error {
	return u.tx.Rollback()
}

// DeleteUpload deletes an upload and all of its samples.
func (db *DB) DeleteUpload(ctx context.Context, id int64) error {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	// Not every engine enforces cascades, so delete children first.
	for _, q := range []string{
		"DELETE FROM SampleTags WHERE SampleID IN (SELECT SampleID FROM Samples WHERE UploadID = ?)",
		"DELETE FROM SampleFields WHERE SampleID IN (SELECT SampleID FROM Samples WHERE UploadID = ?)",
		"DELETE FROM Samples WHERE UploadID = ?",
		"DELETE FROM Uploads WHERE UploadID = ?",
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// CountUploads returns the number of uploads in the database.
func (db *DB) CountUploads(ctx context.Context) (int, error) {
	var n int
	err := db.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM Uploads").Scan(&n)
	return n, err
}

// Datasets returns the names of the datasets with at least one
// sample, sorted.
func (db *DB) Datasets(ctx context.Context) ([]string, error) {
	rows, err := db.sql.QueryContext(ctx, "SELECT DISTINCT Dataset FROM Samples ORDER BY Dataset")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// HasDataset reports whether the archive has any sample of dataset.
func (db *DB) HasDataset(ctx context.Context, dataset string) (bool, error) {
	var one int
	err := db.hasDataset.QueryRowContext(ctx, dataset).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// Select returns the samples of dataset in [start, stop), in time
// order.
func (db *DB) Select(ctx context.Context, dataset string, start, stop time.Time) ([]*benchsample.Sample, error) {
	args := []interface{}{dataset, start.UnixNano(), stop.UnixNano()}
	const where = "s.Dataset = ? AND s.Time >= ? AND s.Time < ?"

	rows, err := db.sql.QueryContext(ctx, "SELECT s.SampleID, s.Time FROM Samples s WHERE "+where+" ORDER BY s.Time, s.SampleID", args...)
	if err != nil {
		return nil, err
	}
	var out []*benchsample.Sample
	byID := make(map[int64]*benchsample.Sample)
	for rows.Next() {
		var id, ns int64
		if err := rows.Scan(&id, &ns); err != nil {
			rows.Close()
			return nil, err
		}
		s := &benchsample.Sample{
			Dataset: dataset,
			Time:    time.Unix(0, ns).UTC(),
			Tags:    make(benchsample.Tags),
			Fields:  make(benchsample.Fields),
		}
		out = append(out, s)
		byID[id] = s
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()
	if len(out) == 0 {
		return nil, nil
	}

	err = db.scanChildren(ctx, "SELECT t.SampleID, t.Name, t.Value FROM SampleTags t JOIN Samples s ON s.SampleID = t.SampleID WHERE "+where, args,
		func(rows *sql.Rows) error {
			var id int64
			var name, value string
			if err := rows.Scan(&id, &name, &value); err != nil {
				return err
			}
			if s := byID[id]; s != nil {
				s.Tags[name] = value
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	err = db.scanChildren(ctx, "SELECT f.SampleID, f.Name, f.Value FROM SampleFields f JOIN Samples s ON s.SampleID = f.SampleID WHERE "+where, args,
		func(rows *sql.Rows) error {
			var id int64
			var name string
			var value float64
			if err := rows.Scan(&id, &name, &value); err != nil {
				return err
			}
			if s := byID[id]; s != nil {
				s.Fields[name] = value
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (db *DB) scanChildren(ctx context.Context, query string, args []interface{}, scan func(*sql.Rows) error) error {
	rows, err := db.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Close releases the prepared statements and the connection pool.
func (db *DB) Close() error {
	for _, stmt := range []*sql.Stmt{db.insertUpload, db.insertSample, db.hasDataset} {
		if err := stmt.Close(); err != nil {
			return err
		}
	}
	return db.sql.Close()
}
