// Package isolation exposes the two interchangeable per-worker isolation
// strategies: schema cloning and tenant row tagging. They solve the same
// problem at different layers, so a deployment picks one behind a single
// interface instead of running both intertwined.
package isolation

import "context"

// Strategy prepares, resets, and tears down one worker's isolated slice of
// the shared database.
type Strategy interface {
	// Prepare makes the worker's slice ready for a suite run: provision the
	// worker schema, or ensure the row-tagging policies exist.
	Prepare(ctx context.Context, workerIndex int) error

	// Reset removes the worker's data between tests without touching
	// structure or other workers' rows.
	Reset(ctx context.Context, workerIndex int) error

	// Teardown removes everything the worker owns at end of suite.
	Teardown(ctx context.Context, workerIndex int) error
}
