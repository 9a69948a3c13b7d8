package lifecycle

import (
	"context"
	"fmt"

	"github.com/fluxocertolabs/workerdb/internal/db"
	"github.com/fluxocertolabs/workerdb/internal/schema"
	"github.com/fluxocertolabs/workerdb/internal/worker"
)

// ListNamespaces returns the names of every worker schema currently present
// in the database, in name order.
func (m *Manager) ListNamespaces(ctx context.Context) ([]string, error) {
	type row struct {
		Name string `db:"nspname"`
	}

	matches, err := db.Select[row](ctx, m.gw,
		`SELECT nspname FROM pg_catalog.pg_namespace WHERE nspname LIKE $1 ORDER BY nspname`,
		worker.SchemaPrefix+"%")
	if err != nil {
		return nil, err
	}

	names := make([]string, len(matches))
	for i, r := range matches {
		names[i] = r.Name
	}
	return names, nil
}

// NamespaceRowCounts reports the row count of every tracked table in one
// worker schema. Backs the status command and post-clear verification.
func (m *Manager) NamespaceRowCounts(ctx context.Context, index int) (map[string]int64, error) {
	ns := NamespaceName(index)
	counts := make(map[string]int64, len(schema.TrackedTables))

	type row struct {
		Count int64 `db:"count"`
	}

	for _, t := range schema.TrackedTables {
		matches, err := db.Select[row](ctx, m.gw,
			fmt.Sprintf("SELECT count(*) AS count FROM %s", qualified(ns, t.Name)))
		if err != nil {
			return nil, err
		}
		if len(matches) != 1 {
			return nil, fmt.Errorf("count query for %s.%s returned %d rows", ns, t.Name, len(matches))
		}
		counts[t.Name] = matches[0].Count
	}
	return counts, nil
}
