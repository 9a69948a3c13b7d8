package lifecycle

import (
	"context"
	"fmt"

	"github.com/fluxocertolabs/workerdb/internal/db"
	"github.com/fluxocertolabs/workerdb/internal/schema"
)

// columnShape is the per-column fingerprint used to compare a cloned table
// against its canonical original.
type columnShape struct {
	Name     string `db:"column_name"`
	DataType string `db:"data_type"`
	Nullable string `db:"is_nullable"`
}

// tableShape returns the ordered column shape of one table, or an empty
// slice when the table does not exist in the given schema.
func (m *Manager) tableShape(ctx context.Context, schemaName, table string) ([]columnShape, error) {
	query := `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`

	shape, err := db.Select[columnShape](ctx, m.gw, query, schemaName, table)
	if err != nil {
		return nil, fmt.Errorf("read shape of %s.%s: %w", schemaName, table, err)
	}
	return shape, nil
}

// namespaceDrifted reports whether any tracked table in the worker schema is
// missing or no longer matches the canonical table's column shape. Drift
// happens when the application's migrations run while worker schemas still
// reflect the previous shape; the caller responds by re-cloning.
func (m *Manager) namespaceDrifted(ctx context.Context, index int) (bool, error) {
	ns := NamespaceName(index)

	for _, t := range schema.TrackedTables {
		canonical, err := m.tableShape(ctx, schema.CanonicalSchema, t.Name)
		if err != nil {
			return false, err
		}

		cloned, err := m.tableShape(ctx, ns, t.Name)
		if err != nil {
			return false, err
		}

		if !shapesEqual(canonical, cloned) {
			m.logger.Debug("tracked table drifted", "schema", ns, "table", t.Name)
			return true, nil
		}
	}
	return false, nil
}

func shapesEqual(a, b []columnShape) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
