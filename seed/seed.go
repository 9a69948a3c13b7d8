// Package seed builds worker-tagged fixture values for test data, so rows
// from different workers stay visually distinguishable even when isolation
// is enforced by schema or policy.
package seed

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/fluxocertolabs/workerdb/internal/worker"
)

// EntityName prefixes a human-readable entity name with the worker's tag,
// e.g. "W3 Groceries".
func EntityName(wctx worker.Context, base string) string {
	return wctx.DataPrefix + " " + base
}

// UniqueEmail returns a collision-free address for a seeded user, tagged
// with the worker and randomized so repeated suite runs never reuse one.
func UniqueEmail(wctx worker.Context) string {
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("%s+%s@e2e.fluxocerto.app", strings.ToLower(wctx.DataPrefix), suffix)
}
