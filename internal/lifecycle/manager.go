// Package lifecycle provisions, clears, and drops one isolated schema per
// parallel test worker.
//
// All operations are idempotent and safe under concurrent invocation from
// multiple worker processes: the container step is CREATE SCHEMA IF NOT
// EXISTS, table cloning is drop-then-recreate, and grants are no-ops when
// repeated. No distributed lock is taken; a retried run converges instead.
package lifecycle

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/fluxocertolabs/workerdb/internal/config"
	"github.com/fluxocertolabs/workerdb/internal/db"
	"github.com/fluxocertolabs/workerdb/internal/schema"
	"github.com/fluxocertolabs/workerdb/internal/worker"
)

// Manager owns the lifecycle of worker schemas. Failures from the gateway
// propagate unmodified: a half-provisioned schema must fail the worker's run,
// never degrade to a warning.
type Manager struct {
	gw     *db.Gateway
	roles  config.Roles
	logger *log.Logger
}

// NewManager builds a manager issuing DDL through the given gateway. A nil
// logger falls back to the package default.
func NewManager(gw *db.Gateway, roles config.Roles, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{gw: gw, roles: roles, logger: logger}
}

// NamespaceName returns the schema name for a worker index. Pure and stable
// across process restarts, so the same worker always lands in the same schema.
func NamespaceName(index int) string {
	return worker.Allocate(index).Schema
}

// NamespaceExists re-queries the catalog on every call. No caching: another
// process may have created or dropped the schema since the last check.
func (m *Manager) NamespaceExists(ctx context.Context, index int) (bool, error) {
	type row struct {
		Name string `db:"nspname"`
	}

	matches, err := db.Select[row](ctx, m.gw,
		`SELECT nspname FROM pg_catalog.pg_namespace WHERE nspname = $1`,
		NamespaceName(index))
	if err != nil {
		return false, err
	}
	return len(matches) > 0, nil
}

// CreateNamespace provisions the worker schema from scratch: container,
// parent-first clones of every tracked table, re-pointed foreign keys, and
// role grants. Safe to race with another process provisioning the same index.
func (m *Manager) CreateNamespace(ctx context.Context, index int) error {
	ns := NamespaceName(index)
	m.logger.Info("provisioning worker schema", "schema", ns, "tables", len(schema.TrackedTables))

	for _, stmt := range createStatements(ns, m.roles) {
		if err := m.gw.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("provision schema %s: %w", ns, err)
		}
	}
	return nil
}

// ClearNamespaceData deletes all rows from every tracked table in the worker
// schema, children before parents, so no cascade is needed.
func (m *Manager) ClearNamespaceData(ctx context.Context, index int) error {
	ns := NamespaceName(index)
	m.logger.Debug("clearing worker schema data", "schema", ns)

	for _, stmt := range clearStatements(ns) {
		if err := m.gw.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("clear schema %s: %w", ns, err)
		}
	}
	return nil
}

// EnsureNamespaceReady is the per-suite setup entry point: it creates the
// worker schema when absent, re-clones it when its table shapes have drifted
// from the canonical schema, and otherwise just clears its data. Calling it
// twice leaves the same observable state as calling it once.
func (m *Manager) EnsureNamespaceReady(ctx context.Context, index int) error {
	exists, err := m.NamespaceExists(ctx, index)
	if err != nil {
		return err
	}
	if !exists {
		return m.CreateNamespace(ctx, index)
	}

	drifted, err := m.namespaceDrifted(ctx, index)
	if err != nil {
		return err
	}
	if drifted {
		m.logger.Warn("worker schema shape is stale, re-cloning", "schema", NamespaceName(index))
		return m.CreateNamespace(ctx, index)
	}

	return m.ClearNamespaceData(ctx, index)
}

// DropNamespace removes the worker schema and everything inside it. Used at
// full-suite teardown and by cleanup utilities, never by per-test setup.
func (m *Manager) DropNamespace(ctx context.Context, index int) error {
	ns := NamespaceName(index)
	m.logger.Info("dropping worker schema", "schema", ns)

	if err := m.gw.Exec(ctx, dropSchemaSQL(ns)); err != nil {
		return fmt.Errorf("drop schema %s: %w", ns, err)
	}
	return nil
}

// DropAllNamespaces drops the schemas of workers 0 through maxWorkers-1.
func (m *Manager) DropAllNamespaces(ctx context.Context, maxWorkers int) error {
	for index := 0; index < maxWorkers; index++ {
		if err := m.DropNamespace(ctx, index); err != nil {
			return err
		}
	}
	return nil
}
