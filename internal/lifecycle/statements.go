package lifecycle

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/fluxocertolabs/workerdb/internal/config"
	"github.com/fluxocertolabs/workerdb/internal/schema"
)

// The builders in this file are pure: they turn the tracked-table descriptor
// into ordered SQL text and touch no database. Every statement they emit is
// individually idempotent (IF NOT EXISTS / IF EXISTS / drop-then-recreate),
// which is what lets concurrent or retried provisioning converge without a
// distributed lock.

// quoteIdent quotes a possibly schema-qualified identifier part by part.
func quoteIdent(name string) string {
	parts := strings.Split(name, ".")
	return pgx.Identifier(parts).Sanitize()
}

func qualified(schemaName, table string) string {
	return pgx.Identifier{schemaName, table}.Sanitize()
}

func createSchemaSQL(ns string) string {
	return fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", quoteIdent(ns))
}

func dropSchemaSQL(ns string) string {
	return fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", quoteIdent(ns))
}

func dropTableSQL(ns, table string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", qualified(ns, table))
}

func cloneTableSQL(ns, table string) string {
	return fmt.Sprintf(
		"CREATE TABLE %s (LIKE %s INCLUDING DEFAULTS INCLUDING CONSTRAINTS INCLUDING INDEXES)",
		qualified(ns, table), qualified(schema.CanonicalSchema, table),
	)
}

// addForeignKeySQL re-adds one foreign key after a clone. Local keys target
// the worker schema's own parent copy; shared keys target the canonical
// (possibly schema-qualified) parent.
func addForeignKeySQL(ns, table string, fk schema.ForeignKey, local bool) string {
	parent := quoteIdent(fk.ParentTable)
	if local {
		parent = qualified(ns, fk.ParentTable)
	}
	return fmt.Sprintf(
		"ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		qualified(ns, table),
		quoteIdent(fmt.Sprintf("%s_%s_fkey", table, fk.Column)),
		quoteIdent(fk.Column),
		parent,
		quoteIdent(fk.ParentColumn),
	)
}

func grantStatements(ns string, roles config.Roles) []string {
	writers := quoteIdent(roles.Service) + ", " + quoteIdent(roles.App)
	reader := quoteIdent(roles.ReadOnly)
	nsIdent := quoteIdent(ns)

	return []string{
		fmt.Sprintf("GRANT USAGE ON SCHEMA %s TO %s", nsIdent, writers),
		fmt.Sprintf("GRANT ALL ON ALL TABLES IN SCHEMA %s TO %s", nsIdent, writers),
		fmt.Sprintf("GRANT ALL ON ALL SEQUENCES IN SCHEMA %s TO %s", nsIdent, writers),
		fmt.Sprintf("GRANT USAGE ON SCHEMA %s TO %s", nsIdent, reader),
		fmt.Sprintf("GRANT SELECT ON ALL TABLES IN SCHEMA %s TO %s", nsIdent, reader),
	}
}

// createStatements is the full ordered provisioning script for one worker
// schema: container, then each tracked table in declared (parent-first)
// order as drop-then-clone, then foreign keys, then grants.
func createStatements(ns string, roles config.Roles) []string {
	stmts := []string{createSchemaSQL(ns)}

	for _, t := range schema.TrackedTables {
		stmts = append(stmts, dropTableSQL(ns, t.Name), cloneTableSQL(ns, t.Name))
	}

	// FKs come after every clone so local parents already exist even if the
	// descriptor ever interleaves unrelated tables between parent and child.
	for _, t := range schema.TrackedTables {
		for _, fk := range t.LocalFKs {
			stmts = append(stmts, addForeignKeySQL(ns, t.Name, fk, true))
		}
		for _, fk := range t.SharedFKs {
			stmts = append(stmts, addForeignKeySQL(ns, t.Name, fk, false))
		}
	}

	return append(stmts, grantStatements(ns, roles)...)
}

// clearStatements deletes every tracked table's rows in reverse of creation
// order, so child rows go before the parents they reference.
func clearStatements(ns string) []string {
	stmts := make([]string, 0, len(schema.TrackedTables))
	for i := len(schema.TrackedTables) - 1; i >= 0; i-- {
		stmts = append(stmts, fmt.Sprintf("DELETE FROM %s", qualified(ns, schema.TrackedTables[i].Name)))
	}
	return stmts
}
