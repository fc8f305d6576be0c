// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchquery

import (
	"sort"

	"github.com/nosqlbench/perf/benchsample"
)

// FieldDim is the pseudo-dimension naming a sample's field. It may be
// used in GroupBy and as a pivot column key.
const FieldDim = "_field"

// TimeCol is the column holding a window's start time. It is the
// usual pivot row key.
const TimeCol = "time"

// ValueCol is the column holding an aggregated value in a tall
// (unpivoted) result.
const ValueCol = "_value"

// A Schema describes the tags and fields of one dataset.
type Schema struct {
	Dataset     string
	Title       string
	Description string

	// Tags are the tag keys samples of this dataset carry. The
	// database tag is always implied.
	Tags []string

	// Fields are the field names samples of this dataset carry.
	// An empty list accepts any field.
	Fields []string

	// Operations lists the values of the operation tag, if the
	// dataset has one.
	Operations []string
}

// HasDim reports whether dim is a known dimension of the dataset.
func (s *Schema) HasDim(dim string) bool {
	return dim == FieldDim || dim == benchsample.TagDatabase || contains(s.Tags, dim)
}

// HasField reports whether name is a known field of the dataset.
func (s *Schema) HasField(name string) bool {
	return len(s.Fields) == 0 || contains(s.Fields, name)
}

// A Catalog is the set of datasets queries may address.
type Catalog struct {
	schemas map[string]*Schema
}

// NewCatalog returns a catalog of the given schemas. Later schemas
// replace earlier ones with the same dataset name.
func NewCatalog(schemas ...Schema) *Catalog {
	c := &Catalog{schemas: make(map[string]*Schema)}
	for i := range schemas {
		s := schemas[i]
		s.Tags = append([]string(nil), s.Tags...)
		s.Fields = append([]string(nil), s.Fields...)
		s.Operations = append([]string(nil), s.Operations...)
		c.schemas[s.Dataset] = &s
	}
	return c
}

// Datasets returns the dataset names in sorted order.
func (c *Catalog) Datasets() []string {
	var names []string
	for name := range c.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Schema returns the schema for dataset.
func (c *Catalog) Schema(dataset string) (*Schema, bool) {
	s, ok := c.schemas[dataset]
	return s, ok
}

// Databases are the databases the benchmark suite compares.
var Databases = []string{"MongoDB", "Redis", "Cassandra", "Neo4j"}

// DefaultCatalog returns the catalog of benchmark scenarios.
func DefaultCatalog() *Catalog {
	graphFields := []string{"create_users_time", "create_friendships_time", "friends_of_friends_time", "three_level_time"}
	return NewCatalog(
		Schema{
			Dataset:     "scenario1_crud",
			Title:       "CRUD operations",
			Description: "Basic create, read, update and delete operations.",
			Tags:        []string{benchsample.TagOperation},
			Fields:      []string{"latency_ms", "total_time", "cpu_percent", "memory_percent"},
			Operations:  []string{"insert", "read", "update", "delete"},
		},
		Schema{
			Dataset:     "scenario2_iot",
			Title:       "IoT / time series",
			Description: "Time series ingestion and range query performance.",
			Fields:      []string{"insert_time", "insert_throughput", "range_query_time", "insert_cpu", "insert_mem"},
		},
		Schema{
			Dataset:     "scenario3_graph",
			Title:       "Graph queries",
			Description: "Social network relationships and graph traversal.",
			Fields:      graphFields,
		},
		Schema{
			Dataset:     "scenario3_graph_v2",
			Title:       "Graph queries (v2)",
			Description: "Graph traversal, second revision of the workload.",
			Fields:      graphFields,
		},
		Schema{
			Dataset:     "scenario4_keyvalue",
			Title:       "Key-value speed",
			Description: "Very fast GET/SET operations.",
			Fields:      []string{"set_latency_ms", "get_latency_ms", "throughput_ops", "cpu_usage"},
		},
		Schema{
			Dataset:     "scenario5_fulltext",
			Title:       "Full-text search",
			Description: "Text indexing and search.",
			Fields:      []string{"insert_time", "index_build_time", "search_latency", "cpu_usage"},
		},
		Schema{
			Dataset:     "scenario6_scalability",
			Title:       "Scalability",
			Description: "Multi-threaded operations under concurrent load.",
			Fields:      []string{"create_time", "read_time", "update_time", "delete_time", "throughput_ops"},
		},
	)
}
