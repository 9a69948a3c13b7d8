// Package worker binds a test-runner process to a stable worker identity.
package worker

import "fmt"

// SchemaPrefix is the common prefix of every worker schema name.
const SchemaPrefix = "test_worker_"

// Context identifies one parallel test worker. All fields are derived from
// Index alone, so two processes allocating the same index always agree.
type Context struct {
	// Index is the test runner's worker number.
	Index int

	// Schema is the PostgreSQL schema holding this worker's cloned tables.
	Schema string

	// DataPrefix tags seeded entity names (e.g. "W3 Groceries") so rows from
	// different workers are visually distinguishable in the shared database.
	DataPrefix string

	// TenantLabel tags rows when isolation is enforced by row-level-security
	// policy instead of schema cloning.
	TenantLabel string
}

// Allocate derives the identity for a worker index. It is a pure function:
// the same index yields an identical Context in this or any other process,
// so no coordination between workers is needed.
func Allocate(index int) Context {
	return Context{
		Index:       index,
		Schema:      fmt.Sprintf("%s%d", SchemaPrefix, index),
		DataPrefix:  fmt.Sprintf("W%d", index),
		TenantLabel: fmt.Sprintf("w%d", index),
	}
}
